package textureformats

import (
	"image"
	"image/color"
)

func DecompressImageDX1(data []byte, w, h int) *image.NRGBA {
	return decompressImageDX(w, h,
		func(blockIndex int, outColors []color.NRGBA) {
			decompressColorBlock(data[blockIndex*8:], true, outColors)
		})
}
