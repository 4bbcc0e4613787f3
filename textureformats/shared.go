package textureformats

import (
	"image"
	"image/color"
)

// Based on github.com/xdanieldzd/GXTConvert

func rgb565fromUint16(v uint16) (r, g, b uint16) {
	r = (v >> 11) & 0x1f
	g = (v >> 5) & 0x3f
	b = (v >> 0) & 0x1f

	r = (r << 3) | (r >> 2)
	g = (g << 2) | (g >> 4)
	b = (b << 3) | (b >> 2)

	return
}

// dxColorFromPosition resolves a 2 bit color code. Three color mode (DXT1
// with color0 <= color1) makes code 3 transparent black.
func dxColorFromPosition(positionCode uint32, threeColor bool, r0, g0, b0 uint16, r1, g1, b1 uint16) color.NRGBA {
	switch positionCode {
	case 0:
		return color.NRGBA{R: byte(r0), G: byte(g0), B: byte(b0), A: 0xff}
	case 1:
		return color.NRGBA{R: byte(r1), G: byte(g1), B: byte(b1), A: 0xff}
	case 2:
		if threeColor {
			return color.NRGBA{R: byte((r0 + r1) / 2), G: byte((g0 + g1) / 2), B: byte((b0 + b1) / 2), A: 0xff}
		}
		return color.NRGBA{R: byte((2*r0 + r1) / 3), G: byte((2*g0 + g1) / 3), B: byte((2*b0 + b1) / 3), A: 0xff}
	default:
		if threeColor {
			return color.NRGBA{}
		}
		return color.NRGBA{R: byte((r0 + 2*r1) / 3), G: byte((g0 + 2*g1) / 3), B: byte((b0 + 2*b1) / 3), A: 0xff}
	}
}

// decompressColorBlock decodes the 8 byte color half shared by all DXT
// formats into outColors, alpha is left to the caller unless three color
// mode is allowed.
func decompressColorBlock(blockData []byte, allowThreeColor bool, outColors []color.NRGBA) {
	color0 := uint16(blockData[0]) | uint16(blockData[1])<<8
	color1 := uint16(blockData[2]) | uint16(blockData[3])<<8
	code := uint32(blockData[4]) | uint32(blockData[5])<<8 | uint32(blockData[6])<<16 | uint32(blockData[7])<<24

	r0, g0, b0 := rgb565fromUint16(color0)
	r1, g1, b1 := rgb565fromUint16(color1)
	threeColor := allowThreeColor && color0 <= color1

	for i := uint32(0); i < 16; i++ {
		positionCode := (code >> (2 * i)) & 3
		outColors[i] = dxColorFromPosition(positionCode, threeColor, r0, g0, b0, r1, g1, b1)
	}
}

// decompressImageDX places blocks left to right, top to bottom. Blocks
// overhanging the image edge are clipped.
func decompressImageDX(w, h int, blockmethod func(blockIndex int, colors []color.NRGBA)) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	blocksW := (w + 3) / 4
	blocksH := (h + 3) / 4

	colors := make([]color.NRGBA, 4*4)

	for iBlock := 0; iBlock < blocksW*blocksH; iBlock++ {
		blockmethod(iBlock, colors)

		bx := (iBlock % blocksW) * 4
		by := (iBlock / blocksW) * 4
		for iColor, c := range colors {
			x, y := bx+iColor%4, by+iColor/4
			if x < w && y < h {
				img.SetNRGBA(x, y, c)
			}
		}
	}

	return img
}

func blockCount(w, h int) int {
	return ((w + 3) / 4) * ((h + 3) / 4)
}
