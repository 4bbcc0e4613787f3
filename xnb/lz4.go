package xnb

import (
	"encoding/binary"

	lz4 "github.com/bkaradzic/go-lz4"
	"github.com/pkg/errors"
)

// DecompressLZ4 decodes a single raw LZ4 block. go-lz4 expects the
// uncompressed length in front of the block.
func DecompressLZ4(payload []byte, uncompressedSize uint32) ([]byte, error) {
	if uncompressedSize == 0 {
		return []byte{}, nil
	}

	src := make([]byte, len(payload)+4)
	binary.LittleEndian.PutUint32(src, uncompressedSize)
	copy(src[4:], payload)

	out, err := lz4.Decode(make([]byte, uncompressedSize), src)
	if err != nil {
		return nil, errors.Wrap(err, "lz4")
	}
	if len(out) != int(uncompressedSize) {
		return nil, errors.WithStack(SizeMismatchError{Expected: int(uncompressedSize), Actual: len(out)})
	}
	return out, nil
}
