package utils

import (
	"github.com/mogaika/xnbtool/config"

	"golang.org/x/text/transform"
)

// BytesToString maps a one-byte-per-character string through the configured
// charmap.
func BytesToString(bs []byte) (string, error) {
	s, _, err := transform.Bytes(config.GetEncoding().NewDecoder(), bs)
	if err != nil {
		return "", err
	}
	return string(s), nil
}

func StringToBytes(s string) ([]byte, error) {
	bs, _, err := transform.Bytes(config.GetEncoding().NewEncoder(), []byte(s))
	if err != nil {
		return nil, err
	}
	return bs, nil
}
