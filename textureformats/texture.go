// Package textureformats converts Texture2D surfaces into images.
package textureformats

import (
	"image"
	"image/png"
	"io"

	"github.com/pkg/errors"

	"github.com/mogaika/xnbtool/xnb/content"
)

// Image decodes the first mip level of the texture.
func Image(t *content.Texture2D) (*image.NRGBA, error) {
	if len(t.Mips) == 0 {
		return nil, errors.New("texture has no mip levels")
	}
	w, h := int(t.Width), int(t.Height)
	data := t.Mips[0]

	var need int
	var decode func(data []byte, w, h int) *image.NRGBA
	switch t.Format {
	case content.SurfaceColor:
		need, decode = w*h*4, DecodeImageBGRA
	case content.SurfaceDxt1:
		need, decode = blockCount(w, h)*8, DecompressImageDX1
	case content.SurfaceDxt3:
		need, decode = blockCount(w, h)*16, DecompressImageDX3
	case content.SurfaceDxt5:
		need, decode = blockCount(w, h)*16, DecompressImageDX5
	default:
		return nil, errors.WithStack(&content.UnknownKindError{Kind: "surface format", Value: uint32(t.Format)})
	}

	if len(data) < need {
		return nil, errors.Errorf("%v mip of %dx%d has %d bytes, need %d", t.Format, w, h, len(data), need)
	}
	return decode(data, w, h), nil
}

func WritePNG(w io.Writer, t *content.Texture2D) error {
	img, err := Image(t)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return errors.Wrap(err, "Failed to encode png")
	}
	return nil
}
