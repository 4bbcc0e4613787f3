package textureformats

import (
	"image"
	"image/color"
)

// decompressBlockDXT3 reads 4 bit explicit alpha followed by a color block.
func decompressBlockDXT3(blockData []byte, outColors []color.NRGBA) {
	decompressColorBlock(blockData[8:], false, outColors)

	for i := 0; i < 16; i++ {
		a := blockData[i/2]
		if i%2 == 0 {
			a &= 0xf
		} else {
			a >>= 4
		}
		outColors[i].A = a<<4 | a
	}
}

func DecompressImageDX3(data []byte, w, h int) *image.NRGBA {
	return decompressImageDX(w, h,
		func(blockIndex int, outColors []color.NRGBA) {
			decompressBlockDXT3(data[blockIndex*0x10:], outColors)
		})
}
