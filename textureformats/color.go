package textureformats

import (
	"image"
)

// DecodeImageBGRA converts 32 bit BGRA pixels, the in-memory layout of the
// Color surface format.
func DecodeImageBGRA(data []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		src := data[i*4 : i*4+4]
		dst := img.Pix[i*4 : i*4+4]
		dst[0], dst[1], dst[2], dst[3] = src[2], src[1], src[0], src[3]
	}
	return img
}
