package content

import (
	"encoding/binary"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// stream builds content streams the way the content pipeline writes them.
type stream struct {
	buf []byte
}

func (s *stream) u8(v byte) *stream { s.buf = append(s.buf, v); return s }

func (s *stream) boolean(v bool) *stream {
	if v {
		return s.u8(1)
	}
	return s.u8(0)
}

func (s *stream) u16(v uint16) *stream {
	s.buf = binary.LittleEndian.AppendUint16(s.buf, v)
	return s
}

func (s *stream) u32(v uint32) *stream {
	s.buf = binary.LittleEndian.AppendUint32(s.buf, v)
	return s
}

func (s *stream) f32(v ...float32) *stream {
	for _, f := range v {
		s.u32(math.Float32bits(f))
	}
	return s
}

func (s *stream) varint(v uint32) *stream {
	s.buf = Append7BitEncodedInt(s.buf, v)
	return s
}

func (s *stream) str(v string) *stream {
	s.varint(uint32(len(v)))
	s.buf = append(s.buf, v...)
	return s
}

func (s *stream) mat4(m mgl32.Mat4) *stream { return s.f32(m[:]...) }

func (s *stream) header(shared uint32, readers ...string) *stream {
	s.varint(uint32(len(readers)))
	for _, name := range readers {
		s.str(name)
		s.u32(0)
	}
	return s.varint(shared)
}

func TestRead7BitEncodedIntRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 0x7f, 0x80, 0x3fff, 0x4000, 1 << 21, 1 << 28, math.MaxInt32}
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		values = append(values, uint32(rnd.Int31()))
	}

	for _, v := range values {
		r := NewReader(Append7BitEncodedInt(nil, v))
		got, err := r.Read7BitEncodedInt()
		if err != nil {
			t.Fatalf("Read7BitEncodedInt(%d) failed: %v", v, err)
		}
		if got != v {
			t.Errorf("Read7BitEncodedInt(encode(%d))=%d; expected %d", v, got, v)
		}
		if r.Remaining() != 0 {
			t.Errorf("Read7BitEncodedInt(encode(%d)) left %d bytes", v, r.Remaining())
		}
	}
}

func TestRead7BitEncodedIntTooLong(t *testing.T) {
	r := NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	if _, err := r.Read7BitEncodedInt(); !errors.Is(err, ErrEncodedInt) {
		t.Errorf("Read7BitEncodedInt()=%v; expected ErrEncodedInt", err)
	}

	r = NewReader([]byte{0x80})
	if _, err := r.Read7BitEncodedInt(); !errors.Is(err, ErrTruncated) {
		t.Errorf("Read7BitEncodedInt()=%v; expected ErrTruncated", err)
	}
}

func TestReadStringMapsBytesToRunes(t *testing.T) {
	r := NewReader([]byte{3, 'a', 0xe9, 0xff})
	s, err := r.ReadString()
	if err != nil {
		t.Fatal(err)
	}
	if s != "aéÿ" {
		t.Errorf("ReadString()=%q; expected %q", s, "aéÿ")
	}
}

func TestShortName(t *testing.T) {
	for _, tc := range []struct {
		name     string
		expected string
	}{
		{StringReaderName, StringReaderName},
		{StringReaderName + ", Microsoft.Xna.Framework, Version=3.1.0.0", StringReaderName},
		{"XNAnimation.Pipeline.SkinnedModelReader,XNAnimation", SkinnedModelReaderName},
	} {
		if got := (TypeReader{Name: tc.name}).ShortName(); got != tc.expected {
			t.Errorf("ShortName(%q)=%q; expected %q", tc.name, got, tc.expected)
		}
	}
}

func TestDecodeString(t *testing.T) {
	s := &stream{}
	s.header(0, StringReaderName+", Microsoft.Xna.Framework, Version=3.1.0.0, Culture=neutral")
	s.varint(1).str("hello")

	g, err := Decode(s.buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.TypeReaders) != 1 || g.TypeReaders[0].ShortName() != StringReaderName {
		t.Errorf("TypeReaders=%v; expected one string reader", g.TypeReaders)
	}
	if g.Primary != String("hello") {
		t.Errorf("Primary=%#v; expected %q", g.Primary, "hello")
	}
	if len(g.Shared) != 0 {
		t.Errorf("len(Shared)=%d; expected 0", len(g.Shared))
	}
}

func TestDecodeNullPrimary(t *testing.T) {
	s := (&stream{}).header(0, StringReaderName).varint(0)
	g, err := Decode(s.buf)
	if err != nil {
		t.Fatal(err)
	}
	if g.Primary != nil {
		t.Errorf("Primary=%#v; expected nil", g.Primary)
	}
}

func TestDecodeUnresolvedType(t *testing.T) {
	s := (&stream{}).header(0, "Magicka.ContentReaders.ItemReader, Magicka").varint(1).u32(0)
	_, err := Decode(s.buf)

	var unresolved *UnresolvedTypeError
	if !errors.As(err, &unresolved) {
		t.Fatalf("Decode()=%v; expected UnresolvedTypeError", err)
	}
	if unresolved.Name != "Magicka.ContentReaders.ItemReader" {
		t.Errorf("UnresolvedTypeError.Name=%q", unresolved.Name)
	}
	if !strings.Contains(err.Error(), "Magicka.ContentReaders.ItemReader") {
		t.Errorf("error %q does not name the type", err)
	}
}

func TestDecodeInvalidTypeID(t *testing.T) {
	s := (&stream{}).header(0, StringReaderName).varint(2)
	var invalid *InvalidTypeIDError
	if _, err := Decode(s.buf); !errors.As(err, &invalid) || invalid.ID != 2 {
		t.Errorf("Decode()=%v; expected InvalidTypeIDError for id 2", err)
	}
}

func TestDecodeSharedPool(t *testing.T) {
	s := (&stream{}).header(2, StringReaderName, Int32ReaderName)
	s.varint(1).str("primary")
	s.varint(2).u32(42)
	s.varint(0)

	g, err := Decode(s.buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Shared) != 2 {
		t.Fatalf("len(Shared)=%d; expected 2", len(g.Shared))
	}

	for _, tc := range []struct {
		ref      SharedRef
		expected Content
	}{
		{0, nil},
		{1, Int32(42)},
		{2, nil},
	} {
		c, err := g.Resolve(tc.ref)
		if err != nil {
			t.Errorf("Resolve(%d) failed: %v", tc.ref, err)
		}
		if c != tc.expected {
			t.Errorf("Resolve(%d)=%#v; expected %#v", tc.ref, c, tc.expected)
		}
	}

	var invalid *InvalidRefError
	if _, err := g.Resolve(3); !errors.As(err, &invalid) {
		t.Errorf("Resolve(3)=%v; expected InvalidRefError", err)
	}
}

func TestTypedRefs(t *testing.T) {
	bone := &SkinnedModelBone{Name: "root"}
	clip := &SkinnedModelAnimationClip{Name: "idle"}
	effect := &BasicEffect{Alpha: 1}
	g := &Graph{Shared: []Content{bone, clip, effect}}

	if b, err := g.Bone(0); b != nil || err != nil {
		t.Errorf("Bone(0)=%v, %v; expected absent", b, err)
	}
	if b, err := g.Bone(1); b != bone || err != nil {
		t.Errorf("Bone(1)=%v, %v; expected %v", b, err, bone)
	}
	if c, err := g.AnimationClip(2); c != clip || err != nil {
		t.Errorf("AnimationClip(2)=%v, %v; expected %v", c, err, clip)
	}
	if m, err := g.Material(3); m != effect || err != nil {
		t.Errorf("Material(3)=%v, %v; expected %v", m, err, effect)
	}

	var invalid *InvalidRefError
	if _, err := g.Bone(2); !errors.As(err, &invalid) || invalid.Actual != clip {
		t.Errorf("Bone(2)=%v; expected variant mismatch", err)
	}
	if _, err := g.AnimationClip(4); !errors.As(err, &invalid) || invalid.Index != 4 {
		t.Errorf("AnimationClip(4)=%v; expected out of range", err)
	}
	if _, err := g.Material(1); !errors.As(err, &invalid) {
		t.Errorf("Material(1)=%v; expected variant mismatch", err)
	}
}
