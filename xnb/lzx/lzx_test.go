package lzx

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
)

// bitWriter produces the bit order read by bitReader.
type bitWriter struct {
	out []byte
	acc uint16
	n   uint
}

func (w *bitWriter) write(v uint32, bits uint) {
	for i := int(bits) - 1; i >= 0; i-- {
		w.acc = w.acc<<1 | uint16((v>>uint(i))&1)
		w.n++
		if w.n == 16 {
			w.out = append(w.out, byte(w.acc), byte(w.acc>>8))
			w.acc, w.n = 0, 0
		}
	}
}

// align pads to the next word, an aligned stream still gets a full padding word
// before uncompressed block data.
func (w *bitWriter) align(forUncompressed bool) {
	if w.n == 0 {
		if forUncompressed {
			w.write(0, 16)
		}
		return
	}
	w.write(0, 16-w.n)
}

func (w *bitWriter) blockHeader(kind blockType, length int) {
	w.write(uint32(kind), 3)
	w.write(uint32(length>>8), 16)
	w.write(uint32(length&0xff), 8)
}

func uncompressedFrame(first bool, data []byte, blockLength int) []byte {
	w := &bitWriter{}
	if first {
		w.write(0, 1)
	}
	w.blockHeader(blockUncompressed, blockLength)
	w.align(true)
	var rs [12]byte
	binary.LittleEndian.PutUint32(rs[0:], 1)
	binary.LittleEndian.PutUint32(rs[4:], 1)
	binary.LittleEndian.PutUint32(rs[8:], 1)
	return append(append(w.out, rs[:]...), data...)
}

func TestUncompressedBlock(t *testing.T) {
	d, err := NewDecoder(16)
	if err != nil {
		t.Fatal(err)
	}

	in := uncompressedFrame(true, []byte("hello"), 5)
	if !bytes.Equal(in[:4], []byte{0x00, 0x30, 0x50, 0x00}) {
		t.Fatalf("unexpected block header bytes % x", in[:4])
	}

	out, err := d.Decompress(in, 5)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if string(out) != "hello" {
		t.Errorf("Decompress()=%q; expected %q", out, "hello")
	}
}

func TestUncompressedBlockAcrossFrames(t *testing.T) {
	d, err := NewDecoder(16)
	if err != nil {
		t.Fatal(err)
	}

	first := uncompressedFrame(true, []byte("abcd"), 6)
	out, err := d.Decompress(first, 4)
	if err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if string(out) != "abcd" {
		t.Errorf("first frame=%q; expected %q", out, "abcd")
	}

	out, err = d.Decompress([]byte("ef"), 2)
	if err != nil {
		t.Fatalf("second frame: %v", err)
	}
	if string(out) != "ef" {
		t.Errorf("second frame=%q; expected %q", out, "ef")
	}
}

// writePretree emits pretree lengths: symbols 0, 9, 18 get 2 bits, 8 and 17
// get 3 bits. Canonical codes: 0=00 9=01 18=10 8=110 17=111.
func writePretree(w *bitWriter) {
	for sym := 0; sym < pretreeMaxSymbols; sym++ {
		switch sym {
		case 0, 9, 18:
			w.write(2, 4)
		case 8, 17:
			w.write(3, 4)
		default:
			w.write(0, 4)
		}
	}
}

var pretreeCodes = map[int]struct {
	code uint32
	bits uint
}{
	0:  {0, 2},
	9:  {1, 2},
	18: {2, 2},
	8:  {6, 3},
	17: {7, 3},
}

func writePre(w *bitWriter, sym int) {
	c := pretreeCodes[sym]
	w.write(c.code, c.bits)
}

func writeZeroRun(w *bitWriter, n int) {
	for n >= 20 {
		run := n
		if run > 51 {
			run = 51
		}
		writePre(w, 18)
		w.write(uint32(run-20), 5)
		n -= run
	}
	for ; n > 0; n-- {
		writePre(w, 0)
	}
}

// verbatimFrame encodes a verbatim block where literals 0..254 have 8 bit
// codes equal to their value, and symbols 255 and 256 have 9 bit codes 510
// and 511. Symbol 256 is a match of length 2 at repeated offset R0.
func verbatimFrame(symbols []int, blockLength int) []byte {
	w := &bitWriter{}
	w.write(0, 1)
	w.blockHeader(blockVerbatim, blockLength)

	// main tree 0..256: lengths 8 (delta 9), then 255 gets 9 (delta 8)
	writePretree(w)
	for i := 0; i < 255; i++ {
		writePre(w, 9)
	}
	writePre(w, 8)

	// main tree 256..512: symbol 256 gets 9, the rest stay zero
	writePretree(w)
	writePre(w, 8)
	writeZeroRun(w, 512-257)

	// length tree stays empty
	writePretree(w)
	writeZeroRun(w, numSecondaryLengths)

	for _, sym := range symbols {
		switch {
		case sym < 255:
			w.write(uint32(sym), 8)
		case sym == 255:
			w.write(510, 9)
		default:
			w.write(511, 9)
		}
	}
	w.align(false)
	return w.out
}

func TestVerbatimBlock(t *testing.T) {
	d, err := NewDecoder(16)
	if err != nil {
		t.Fatal(err)
	}

	in := verbatimFrame([]int{'a', 'b', 256, 'c'}, 5)
	out, err := d.Decompress(in, 5)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if string(out) != "abbbc" {
		t.Errorf("Decompress()=%q; expected %q", out, "abbbc")
	}
}

func TestInvalidBlockType(t *testing.T) {
	d, err := NewDecoder(16)
	if err != nil {
		t.Fatal(err)
	}

	w := &bitWriter{}
	w.write(0, 1)
	w.blockHeader(blockType(5), 4)
	w.align(false)

	if _, err := d.Decompress(w.out, 4); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Decompress()=%v; expected ErrCorrupt", err)
	}
}

func TestTruncatedUncompressedBlock(t *testing.T) {
	d, err := NewDecoder(16)
	if err != nil {
		t.Fatal(err)
	}

	in := uncompressedFrame(true, []byte("ab"), 8)
	if _, err := d.Decompress(in, 8); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Decompress()=%v; expected ErrCorrupt", err)
	}
}

func TestWindowSize(t *testing.T) {
	for _, bits := range []uint{14, 22} {
		if _, err := NewDecoder(bits); !errors.Is(err, ErrWindowSize) {
			t.Errorf("NewDecoder(%d)=%v; expected ErrWindowSize", bits, err)
		}
	}
}

func TestCopyMatchOverlap(t *testing.T) {
	window := make([]byte, 16)
	copy(window, "xy")
	pos := copyMatch(window, 2, 2, 6)
	if pos != 8 {
		t.Errorf("copyMatch returned position %d; expected 8", pos)
	}
	if string(window[:8]) != "xyxyxyxy" {
		t.Errorf("window=%q; expected %q", window[:8], "xyxyxyxy")
	}
}

func TestCopyMatchWrap(t *testing.T) {
	window := make([]byte, 8)
	copy(window[6:], "pq")
	pos := copyMatch(window, 0, 2, 4)
	if pos != 4 {
		t.Errorf("copyMatch returned position %d; expected 4", pos)
	}
	if string(window[:4]) != "pqpq" {
		t.Errorf("window=%q; expected %q", window[:4], "pqpq")
	}
}
