package config

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// charmaps holds every single byte code page, keyed by lower case name.
var charmaps = func() map[string]*charmap.Charmap {
	m := make(map[string]*charmap.Charmap)
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			m[strings.ToLower(cm.String())] = cm
		}
	}
	return m
}()

// XNB strings store one byte per character, ISO 8859-1 maps them onto
// the first 256 runes unchanged.
var stringCharmap = charmap.ISO8859_1

// SetEncoding selects the code page used for content strings. Names are
// matched without regard to case.
func SetEncoding(name string) error {
	cm, ok := charmaps[strings.ToLower(name)]
	if !ok {
		return errors.Errorf("Unknown encoding %q, known encodings: %s", name, strings.Join(ListEncodings(), ", "))
	}
	stringCharmap = cm
	return nil
}

// ListEncodings returns the accepted encoding names in sorted order.
func ListEncodings() []string {
	names := make([]string, 0, len(charmaps))
	for _, cm := range charmaps {
		names = append(names, cm.String())
	}
	sort.Strings(names)
	return names
}

func GetEncoding() *charmap.Charmap {
	return stringCharmap
}
