package textureformats

import (
	"encoding/binary"
	"image"
	"image/color"
)

// Based on github.com/xdanieldzd/GXTConvert

func decompressBlockDXT5(blockData []byte, outColors []color.NRGBA) {
	alpha0 := uint32(blockData[0])
	alpha1 := uint32(blockData[1])

	// 48 bit alpha codes, three bits per pixel
	var codes [8]byte
	copy(codes[:], blockData[2:8])
	alphaCodes := binary.LittleEndian.Uint64(codes[:])

	decompressColorBlock(blockData[8:], false, outColors)

	for i := uint32(0); i < 16; i++ {
		alphaCode := uint32(alphaCodes>>(3*i)) & 7

		var finalAlpha byte
		if alphaCode == 0 {
			finalAlpha = byte(alpha0)
		} else if alphaCode == 1 {
			finalAlpha = byte(alpha1)
		} else {
			if alpha0 > alpha1 {
				finalAlpha = byte(((8-alphaCode)*alpha0 + (alphaCode-1)*alpha1) / 7)
			} else {
				if alphaCode == 6 {
					finalAlpha = 0
				} else if alphaCode == 7 {
					finalAlpha = 0xff
				} else {
					finalAlpha = byte(((6-alphaCode)*alpha0 + (alphaCode-1)*alpha1) / 5)
				}
			}
		}

		outColors[i].A = finalAlpha
	}
}

func DecompressImageDX5(data []byte, w, h int) *image.NRGBA {
	return decompressImageDX(w, h,
		func(blockIndex int, outColors []color.NRGBA) {
			decompressBlockDXT5(data[blockIndex*0x10:], outColors)
		})
}
