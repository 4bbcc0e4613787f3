package export

import (
	"fmt"

	"github.com/qmuntal/gltf/binary"
)

type RegionKind int

const (
	RegionPadding RegionKind = iota
	RegionVertices
	RegionIndices
	RegionInverseBindMatrices
	RegionTimes
	RegionTranslations
	RegionRotations
	RegionScales
)

func (k RegionKind) String() string {
	switch k {
	case RegionPadding:
		return "padding"
	case RegionVertices:
		return "vertices"
	case RegionIndices:
		return "indices"
	case RegionInverseBindMatrices:
		return "inverse bind matrices"
	case RegionTimes:
		return "times"
	case RegionTranslations:
		return "translations"
	case RegionRotations:
		return "rotations"
	case RegionScales:
		return "scales"
	default:
		return fmt.Sprintf("RegionKind(%d)", int(k))
	}
}

// Region is one contiguous run of the packed buffer. Count is the number of
// elements stored in it.
type Region struct {
	Kind   RegionKind
	Offset int
	Length int
	Count  int
}

func (r Region) End() int {
	return r.Offset + r.Length
}

// Packer builds the single binary buffer of an exported scene. Every region
// starts on a 4 byte boundary so each buffer view stays aligned for float
// accessors. The filler sits between two data regions and is recorded as a
// RegionPadding entry, so Regions lists padding too and the region lengths
// always add up to the buffer length.
type Packer struct {
	buf     []byte
	regions []Region
}

func (p *Packer) align() {
	if pad := (4 - len(p.buf)%4) % 4; pad != 0 {
		p.regions = append(p.regions, Region{Kind: RegionPadding, Offset: len(p.buf), Length: pad})
		p.buf = append(p.buf, make([]byte, pad)...)
	}
}

func (p *Packer) Append(kind RegionKind, data []byte, count int) Region {
	p.align()
	r := Region{Kind: kind, Offset: len(p.buf), Length: len(data), Count: count}
	p.buf = append(p.buf, data...)
	p.regions = append(p.regions, r)
	return r
}

// AppendFloats writes little endian floats, components of them per element.
func (p *Packer) AppendFloats(kind RegionKind, values []float32, components int) (Region, error) {
	data := make([]byte, 4*len(values))
	if err := binary.Write(data, 0, values); err != nil {
		return Region{}, err
	}
	return p.Append(kind, data, len(values)/components), nil
}

func (p *Packer) Bytes() []byte {
	return p.buf
}

func (p *Packer) Regions() []Region {
	return p.regions
}

func (p *Packer) Len() int {
	return len(p.buf)
}
