package content

import (
	"fmt"

	"github.com/pkg/errors"
)

// SurfaceFormat is the raw pixel format value. It is kept as stored, only
// the texture converter interprets it.
type SurfaceFormat uint32

const (
	SurfaceColor SurfaceFormat = 1
	SurfaceDxt1  SurfaceFormat = 0x1c
	SurfaceDxt3  SurfaceFormat = 0x1e
	SurfaceDxt5  SurfaceFormat = 0x20
)

func (f SurfaceFormat) String() string {
	switch f {
	case SurfaceColor:
		return "Color"
	case SurfaceDxt1:
		return "Dxt1"
	case SurfaceDxt3:
		return "Dxt3"
	case SurfaceDxt5:
		return "Dxt5"
	default:
		return fmt.Sprintf("SurfaceFormat(%d)", uint32(f))
	}
}

type Texture2D struct {
	Format SurfaceFormat
	Width  uint32
	Height uint32
	Mips   [][]byte `json:"-"`
}

func (*Texture2D) isContent() {}

func readTexture2D(r *Reader) (Content, error) {
	t := &Texture2D{}
	format, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	t.Format = SurfaceFormat(format)
	if t.Width, err = r.ReadU32(); err != nil {
		return nil, err
	}
	if t.Height, err = r.ReadU32(); err != nil {
		return nil, err
	}

	mipCount, err := r.ReadCount(4)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read mip count")
	}
	t.Mips = make([][]byte, mipCount)
	for i := range t.Mips {
		size, err := r.ReadCount(1)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read mip %d size", i)
		}
		if t.Mips[i], err = r.ReadBytes(size); err != nil {
			return nil, errors.Wrapf(err, "Failed to read mip %d", i)
		}
	}
	return t, nil
}
