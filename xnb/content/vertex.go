package content

import (
	"fmt"

	"github.com/pkg/errors"
)

type VertexElementFormat uint8

const (
	FormatSingle VertexElementFormat = iota
	FormatVector2
	FormatVector3
	FormatVector4
	FormatColor
	FormatByte4
	FormatShort2
	FormatShort4
	FormatRgba32
	FormatNormalizedShort2
	FormatNormalizedShort4
	FormatRg32
	FormatRgba64
	FormatUInt101010
	FormatNormalized101010
	FormatHalfVector2
	FormatHalfVector4
)

var formatSizes = [...]int{
	FormatSingle:           4,
	FormatVector2:          8,
	FormatVector3:          12,
	FormatVector4:          16,
	FormatColor:            4,
	FormatByte4:            4,
	FormatShort2:           4,
	FormatShort4:           8,
	FormatRgba32:           4,
	FormatNormalizedShort2: 4,
	FormatNormalizedShort4: 8,
	FormatRg32:             4,
	FormatRgba64:           8,
	FormatUInt101010:       4,
	FormatNormalized101010: 4,
	FormatHalfVector2:      4,
	FormatHalfVector4:      8,
}

var formatNames = [...]string{
	"Single", "Vector2", "Vector3", "Vector4", "Color", "Byte4", "Short2",
	"Short4", "Rgba32", "NormalizedShort2", "NormalizedShort4", "Rg32",
	"Rgba64", "UInt101010", "Normalized101010", "HalfVector2", "HalfVector4",
}

// Size is the encoded size of one value in bytes.
func (f VertexElementFormat) Size() int {
	return formatSizes[f]
}

func (f VertexElementFormat) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("VertexElementFormat(%d)", uint8(f))
}

type VertexElementMethod uint8

const (
	MethodDefault VertexElementMethod = iota
	MethodPartialU
	MethodPartialV
	MethodCrossUV
	MethodUV
	MethodLookUp
	MethodLookUpPresampled
)

type VertexElementUsage uint8

const (
	UsagePosition VertexElementUsage = iota
	UsageBlendWeight
	UsageBlendIndices
	UsageNormal
	UsagePointSize
	UsageTextureCoordinate
	UsageTangent
	UsageBinormal
	UsageTessellateFactor
	_
	UsageColor
	UsageFog
	UsageDepth
	UsageSample
)

func (u VertexElementUsage) String() string {
	switch u {
	case UsagePosition:
		return "Position"
	case UsageBlendWeight:
		return "BlendWeight"
	case UsageBlendIndices:
		return "BlendIndices"
	case UsageNormal:
		return "Normal"
	case UsagePointSize:
		return "PointSize"
	case UsageTextureCoordinate:
		return "TextureCoordinate"
	case UsageTangent:
		return "Tangent"
	case UsageBinormal:
		return "Binormal"
	case UsageTessellateFactor:
		return "TessellateFactor"
	case UsageColor:
		return "Color"
	case UsageFog:
		return "Fog"
	case UsageDepth:
		return "Depth"
	case UsageSample:
		return "Sample"
	default:
		return fmt.Sprintf("VertexElementUsage(%d)", uint8(u))
	}
}

func readFormat(r *Reader) (VertexElementFormat, error) {
	v, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	if int(v) >= len(formatSizes) {
		return 0, errors.WithStack(&UnknownKindError{Kind: "vertex element format", Value: uint32(v)})
	}
	return VertexElementFormat(v), nil
}

func readMethod(r *Reader) (VertexElementMethod, error) {
	v, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	switch m := VertexElementMethod(v); m {
	case MethodDefault, MethodPartialU, MethodPartialV, MethodCrossUV,
		MethodUV, MethodLookUp, MethodLookUpPresampled:
		return m, nil
	}
	return 0, errors.WithStack(&UnknownKindError{Kind: "vertex element method", Value: uint32(v)})
}

func readUsage(r *Reader) (VertexElementUsage, error) {
	v, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	switch u := VertexElementUsage(v); u {
	case UsagePosition, UsageBlendWeight, UsageBlendIndices, UsageNormal,
		UsagePointSize, UsageTextureCoordinate, UsageTangent, UsageBinormal,
		UsageTessellateFactor, UsageColor, UsageFog, UsageDepth, UsageSample:
		return u, nil
	}
	return 0, errors.WithStack(&UnknownKindError{Kind: "vertex element usage", Value: uint32(v)})
}

type VertexElement struct {
	Stream     uint16
	Offset     uint16
	Format     VertexElementFormat
	Method     VertexElementMethod
	Usage      VertexElementUsage
	UsageIndex uint8
}

// End is the first byte after the element inside a vertex.
func (e VertexElement) End() int {
	return int(e.Offset) + e.Format.Size()
}

type VertexDeclaration struct {
	Elements []VertexElement
}

func (*VertexDeclaration) isContent() {}

// Stride is the vertex size implied by the elements.
func (d *VertexDeclaration) Stride() int {
	stride := 0
	for _, e := range d.Elements {
		if end := e.End(); end > stride {
			stride = end
		}
	}
	return stride
}

func (d *VertexDeclaration) Find(usage VertexElementUsage, index uint8) (VertexElement, bool) {
	for _, e := range d.Elements {
		if e.Usage == usage && e.UsageIndex == index {
			return e, true
		}
	}
	return VertexElement{}, false
}

// Skinned reports whether vertices carry bone indices.
func (d *VertexDeclaration) Skinned() bool {
	_, ok := d.Find(UsageBlendIndices, 0)
	return ok
}

func readVertexDeclaration(r *Reader) (Content, error) {
	const elementSize = 8
	count, err := r.ReadCount(elementSize)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read element count")
	}

	d := &VertexDeclaration{Elements: make([]VertexElement, count)}
	for i := range d.Elements {
		if err := readVertexElement(r, &d.Elements[i]); err != nil {
			return nil, errors.Wrapf(err, "Failed to read vertex element %d", i)
		}
	}
	return d, nil
}

func readVertexElement(r *Reader, e *VertexElement) (err error) {
	if e.Stream, err = r.ReadU16(); err != nil {
		return err
	}
	if e.Offset, err = r.ReadU16(); err != nil {
		return err
	}
	if e.Format, err = readFormat(r); err != nil {
		return err
	}
	if e.Method, err = readMethod(r); err != nil {
		return err
	}
	if e.Usage, err = readUsage(r); err != nil {
		return err
	}
	e.UsageIndex, err = r.ReadU8()
	return err
}

type VertexBuffer struct {
	Data []byte `json:"-"`
}

func (*VertexBuffer) isContent() {}

func readVertexBuffer(r *Reader) (Content, error) {
	size, err := r.ReadCount(1)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read vertex buffer size")
	}
	data, err := r.ReadBytes(size)
	if err != nil {
		return nil, err
	}
	return &VertexBuffer{Data: data}, nil
}

type IndexBuffer struct {
	Is16Bit bool
	Data    []byte `json:"-"`
}

func (*IndexBuffer) isContent() {}

// IndexSize is the size of one index in bytes.
func (b *IndexBuffer) IndexSize() int {
	if b.Is16Bit {
		return 2
	}
	return 4
}

func readIndexBuffer(r *Reader) (Content, error) {
	is16, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	size, err := r.ReadCount(1)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read index buffer size")
	}
	data, err := r.ReadBytes(size)
	if err != nil {
		return nil, err
	}
	return &IndexBuffer{Is16Bit: is16, Data: data}, nil
}
