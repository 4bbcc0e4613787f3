package xnb

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"

	"github.com/mogaika/xnbtool/xnb/lzx"
)

const (
	lzxWindowBits    = 16
	defaultFrameSize = 0x8000
	frameMarker      = 0xFF
)

var ErrTruncatedPayload = errors.New("compressed payload truncated")

type SizeMismatchError struct {
	Expected int
	Actual   int
}

func (e SizeMismatchError) Error() string {
	return fmt.Sprintf("decompressed %d bytes, header declares %d", e.Actual, e.Expected)
}

// readFrameHeader returns frame and block sizes and the number of header
// bytes consumed. A marker other than 0xFF is the high byte of the block size.
func readFrameHeader(buf []byte) (frameSize, blockSize, n int, err error) {
	if len(buf) < 2 {
		return 0, 0, 0, ErrTruncatedPayload
	}
	if buf[0] == frameMarker {
		if len(buf) < 5 {
			return 0, 0, 0, ErrTruncatedPayload
		}
		frameSize = int(binary.BigEndian.Uint16(buf[1:]))
		blockSize = int(binary.BigEndian.Uint16(buf[3:]))
		return frameSize, blockSize, 5, nil
	}
	return defaultFrameSize, int(binary.BigEndian.Uint16(buf)), 2, nil
}

// DecompressLZX demultiplexes the frame stream and feeds every block to one
// LZX decoder whose window persists across frames.
func DecompressLZX(payload []byte, uncompressedSize uint32) ([]byte, error) {
	dec, err := lzx.NewDecoder(lzxWindowBits)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, uncompressedSize)
	for pos := 0; pos < len(payload); {
		frameSize, blockSize, n, err := readFrameHeader(payload[pos:])
		if err != nil {
			return nil, errors.Wrapf(err, "frame header at payload offset %d", pos)
		}
		pos += n

		if frameSize == 0 || blockSize == 0 {
			break
		}
		if pos+blockSize > len(payload) {
			return nil, errors.Wrapf(ErrTruncatedPayload, "block of %d bytes at payload offset %d", blockSize, pos)
		}

		frame, err := dec.Decompress(payload[pos:pos+blockSize], frameSize)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to decompress frame at payload offset %d", pos)
		}
		out = append(out, frame...)
		pos += blockSize
	}

	if len(out) != int(uncompressedSize) {
		return nil, errors.WithStack(SizeMismatchError{Expected: int(uncompressedSize), Actual: len(out)})
	}
	return out, nil
}
