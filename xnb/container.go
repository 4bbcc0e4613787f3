// Package xnb reads the XNB container envelope and its compressed payload.
package xnb

import (
	"bytes"

	"github.com/pkg/errors"
)

// Container is a parsed header plus the decompressed content stream.
type Container struct {
	Header
	Data []byte
}

// Decode parses a whole XNB file held in memory.
func Decode(file []byte) (*Container, error) {
	h, err := ReadHeader(bytes.NewReader(file))
	if err != nil {
		return nil, err
	}

	end := int(h.CompressedSize)
	if end < h.Size() || end > len(file) {
		return nil, errors.Wrapf(ErrTruncatedPayload, "header declares %d bytes, file has %d", h.CompressedSize, len(file))
	}
	payload := file[h.Size():end]

	c := &Container{Header: *h}
	switch h.Compression {
	case CompressionLZX:
		c.Data, err = DecompressLZX(payload, h.UncompressedSize)
	case CompressionLZ4:
		c.Data, err = DecompressLZ4(payload, h.UncompressedSize)
	default:
		c.Data = payload
	}
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to decompress %v payload", h.Compression)
	}
	return c, nil
}
