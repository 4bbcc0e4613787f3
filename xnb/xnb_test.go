package xnb

import (
	"bytes"
	"encoding/binary"
	"testing"

	lz4 "github.com/bkaradzic/go-lz4"
	"github.com/pkg/errors"
)

func buildFile(platform byte, version byte, flags byte, payload []byte, uncompressedSize int) []byte {
	var buf bytes.Buffer
	buf.WriteString(Magic)
	buf.WriteByte(platform)
	buf.WriteByte(version)
	buf.WriteByte(flags)

	size := headerSize + len(payload)
	if flags&(FlagLZX|FlagLZ4) != 0 {
		size = compressedHeaderSize + len(payload)
	}
	binary.Write(&buf, binary.LittleEndian, uint32(size))
	if flags&(FlagLZX|FlagLZ4) != 0 {
		binary.Write(&buf, binary.LittleEndian, uint32(uncompressedSize))
	}
	buf.Write(payload)
	return buf.Bytes()
}

func TestReadHeader(t *testing.T) {
	file := buildFile('x', 4, FlagHiDef|FlagLZX, []byte{1, 2}, 100)
	h, err := ReadHeader(bytes.NewReader(file))
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if h.Platform != PlatformXbox360 {
		t.Errorf("Platform=%v; expected %v", h.Platform, PlatformXbox360)
	}
	if !h.HiDef || !h.Compressed() || h.Compression != CompressionLZX {
		t.Errorf("unexpected flags in %+v", h)
	}
	if h.CompressedSize != 16 || h.UncompressedSize != 100 {
		t.Errorf("sizes %d/%d; expected 16/100", h.CompressedSize, h.UncompressedSize)
	}
	if h.Size() != compressedHeaderSize {
		t.Errorf("Size()=%d; expected %d", h.Size(), compressedHeaderSize)
	}
}

func TestReadHeaderUncompressedSkipsSize(t *testing.T) {
	file := buildFile('w', 4, 0, []byte{0xAA, 0xBB, 0xCC, 0xDD}, 0)
	h, err := ReadHeader(bytes.NewReader(file))
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if h.Compressed() || h.UncompressedSize != 0 {
		t.Errorf("uncompressed header read %+v", h)
	}
}

func TestReadHeaderErrors(t *testing.T) {
	valid := buildFile('w', 4, 0, nil, 0)

	badMagic := append([]byte{}, valid...)
	copy(badMagic, "XNX")

	badPlatform := append([]byte{}, valid...)
	badPlatform[3] = 'p'

	xna40 := append([]byte{}, valid...)
	xna40[4] = 5

	tests := []struct {
		name  string
		in    []byte
		check func(error) bool
	}{
		{"magic", badMagic, func(err error) bool { return errors.Is(err, ErrInvalidMagic) }},
		{"platform", badPlatform, func(err error) bool {
			_, ok := errors.Cause(err).(UnknownPlatformError)
			return ok
		}},
		{"version", xna40, func(err error) bool { return errors.Is(err, ErrUnsupportedVersion) }},
		{"short", valid[:6], func(err error) bool { return err != nil }},
	}
	for _, test := range tests {
		_, err := ReadHeader(bytes.NewReader(test.in))
		if err == nil || !test.check(err) {
			t.Errorf("ReadHeader(%s)=%v; unexpected error kind", test.name, err)
		}
	}
}

func TestReadFrameHeader(t *testing.T) {
	tests := []struct {
		in              []byte
		frame, block, n int
	}{
		{[]byte{0xFF, 0x12, 0x34, 0x00, 0x10}, 0x1234, 0x10, 5},
		{[]byte{0x01, 0x23}, defaultFrameSize, 0x0123, 2},
		{[]byte{0x00, 0x00}, defaultFrameSize, 0, 2},
	}
	for _, test := range tests {
		frame, block, n, err := readFrameHeader(test.in)
		if err != nil {
			t.Errorf("readFrameHeader(% x) failed: %v", test.in, err)
			continue
		}
		if frame != test.frame || block != test.block || n != test.n {
			t.Errorf("readFrameHeader(% x)=%d,%d,%d; expected %d,%d,%d",
				test.in, frame, block, n, test.frame, test.block, test.n)
		}
	}

	if _, _, _, err := readFrameHeader([]byte{0xFF, 0x00}); !errors.Is(err, ErrTruncatedPayload) {
		t.Errorf("readFrameHeader on short explicit frame: %v", err)
	}
}

// uncompressedLZXBlock is one LZX frame holding an uncompressed block with
// the given data: header bits, padding, three repeated offsets, raw bytes.
func uncompressedLZXBlock(data string) []byte {
	if len(data) != 5 {
		panic("block header below encodes length 5")
	}
	block := []byte{0x00, 0x30, 0x50, 0x00}
	for i := 0; i < 3; i++ {
		block = append(block, 1, 0, 0, 0)
	}
	return append(block, data...)
}

func explicitFrame(frameSize int, block []byte) []byte {
	frame := []byte{frameMarker, 0, 0, 0, 0}
	binary.BigEndian.PutUint16(frame[1:], uint16(frameSize))
	binary.BigEndian.PutUint16(frame[3:], uint16(len(block)))
	return append(frame, block...)
}

func TestDecompressLZX(t *testing.T) {
	payload := explicitFrame(5, uncompressedLZXBlock("hello"))

	out, err := DecompressLZX(payload, 5)
	if err != nil {
		t.Fatalf("DecompressLZX failed: %v", err)
	}
	if string(out) != "hello" {
		t.Errorf("DecompressLZX()=%q; expected %q", out, "hello")
	}

	// a zero block size ends the stream before trailing garbage
	terminated := append(append([]byte{}, payload...), 0x00, 0x00, 0xDE, 0xAD)
	out, err = DecompressLZX(terminated, 5)
	if err != nil {
		t.Fatalf("DecompressLZX with terminator failed: %v", err)
	}
	if string(out) != "hello" {
		t.Errorf("DecompressLZX()=%q; expected %q", out, "hello")
	}
}

func TestDecompressLZXSizeMismatch(t *testing.T) {
	payload := explicitFrame(5, uncompressedLZXBlock("hello"))
	_, err := DecompressLZX(payload, 6)
	mismatch, ok := errors.Cause(err).(SizeMismatchError)
	if !ok {
		t.Fatalf("DecompressLZX()=%v; expected SizeMismatchError", err)
	}
	if mismatch.Expected != 6 || mismatch.Actual != 5 {
		t.Errorf("mismatch %+v; expected 6/5", mismatch)
	}
}

func TestDecompressLZXTruncatedBlock(t *testing.T) {
	payload := explicitFrame(5, uncompressedLZXBlock("hello"))
	if _, err := DecompressLZX(payload[:len(payload)-3], 5); !errors.Is(err, ErrTruncatedPayload) {
		t.Errorf("DecompressLZX()=%v; expected ErrTruncatedPayload", err)
	}
}

func TestDecodeUncompressed(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03}
	c, err := Decode(buildFile('w', 4, 0, payload, 0))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(c.Data, payload) {
		t.Errorf("Data=% x; expected % x", c.Data, payload)
	}
}

func TestDecodeLZX(t *testing.T) {
	payload := explicitFrame(5, uncompressedLZXBlock("world"))
	c, err := Decode(buildFile('w', 4, FlagLZX, payload, 5))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if string(c.Data) != "world" {
		t.Errorf("Data=%q; expected %q", c.Data, "world")
	}
}

func TestDecodeLZ4(t *testing.T) {
	content := bytes.Repeat([]byte("skinned model "), 40)
	encoded, err := lz4.Encode(nil, content)
	if err != nil {
		t.Fatal(err)
	}

	c, err := Decode(buildFile('w', 4, FlagLZ4, encoded[4:], len(content)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(c.Data, content) {
		t.Errorf("LZ4 content mismatch: got %d bytes", len(c.Data))
	}
}

func TestDecodeSizeBeyondFile(t *testing.T) {
	file := buildFile('w', 4, 0, []byte{1, 2, 3}, 0)
	binary.LittleEndian.PutUint32(file[6:], uint32(len(file)+10))
	if _, err := Decode(file); !errors.Is(err, ErrTruncatedPayload) {
		t.Errorf("Decode()=%v; expected ErrTruncatedPayload", err)
	}
}
