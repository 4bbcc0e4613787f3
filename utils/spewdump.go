package utils

import (
	"github.com/davecgh/go-spew/spew"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
	spewConfig.SortKeys = true
}

// SDump renders values for diagnostic dumps. Dumps of the same value are
// identical between runs.
func SDump(a ...interface{}) string {
	return spewConfig.Sdump(a...)
}
