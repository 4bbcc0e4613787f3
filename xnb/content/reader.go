package content

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/xnbtool/utils"
)

// Reader is a cursor over the decompressed content stream. It holds the type
// table so nested content can be dispatched from any decoder.
type Reader struct {
	data        []byte
	pos         int
	typeReaders []TypeReader
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) Offset() int               { return r.pos }
func (r *Reader) Remaining() int            { return len(r.data) - r.pos }
func (r *Reader) TypeReaders() []TypeReader { return r.typeReaders }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, errors.WithStack(&TruncatedError{Offset: r.pos, Need: n})
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadU8()
	return v != 0, err
}

func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	return math.Float32frombits(v), err
}

// Read7BitEncodedInt reads the compact integer used for type ids, shared
// references and string lengths: 7 bits per byte, low group first, high bit
// set on every byte but the last.
func (r *Reader) Read7BitEncodedInt() (uint32, error) {
	var v uint32
	for shift := uint(0); shift < 35; shift += 7 {
		b, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		v |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, errors.Wrapf(ErrEncodedInt, "at offset %d", r.pos)
}

// Append7BitEncodedInt is the encoder matching Read7BitEncodedInt.
func Append7BitEncodedInt(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// ReadString reads a 7-bit length prefixed string, one byte per character.
func (r *Reader) ReadString() (string, error) {
	n, err := r.Read7BitEncodedInt()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	s, err := utils.BytesToString(b)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to decode string at offset %d", r.pos-int(n))
	}
	return s, nil
}

// ReadCount reads a 4-byte element count. A count whose elements cannot fit
// into the rest of the stream is reported as truncation before anything is
// allocated.
func (r *Reader) ReadCount(minElementSize int) (int, error) {
	at := r.pos
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	if int32(v) < 0 {
		return 0, errors.Errorf("negative element count %d at offset %d", int32(v), at)
	}
	if need := int64(v) * int64(minElementSize); need > int64(r.Remaining()) {
		return 0, errors.WithStack(&TruncatedError{Offset: r.pos, Need: int(need)})
	}
	return int(v), nil
}

func (r *Reader) readFloats(dst []float32) error {
	b, err := r.take(4 * len(dst))
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return nil
}

func (r *Reader) ReadVec3() (v mgl32.Vec3, err error) {
	err = r.readFloats(v[:])
	return
}

// ReadQuat reads x, y, z, w.
func (r *Reader) ReadQuat() (mgl32.Quat, error) {
	var f [4]float32
	if err := r.readFloats(f[:]); err != nil {
		return mgl32.Quat{}, err
	}
	return mgl32.Quat{W: f[3], V: mgl32.Vec3{f[0], f[1], f[2]}}, nil
}

// ReadMat4 reads sixteen floats. The stored order is row major with
// translation in the fourth row, which is the column major layout of mgl32.
func (r *Reader) ReadMat4() (m mgl32.Mat4, err error) {
	err = r.readFloats(m[:])
	return
}
