// Package lzx implements the LZX decompressor used by XNB content files.
//
// The decoder keeps its sliding window, repeated offsets and Huffman trees
// between calls: every Decompress call consumes one compressed frame and
// returns exactly the requested number of output bytes.
package lzx

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	minMatch            = 2
	numChars            = 256
	numPrimaryLengths   = 7
	numSecondaryLengths = 249

	pretreeMaxSymbols  = 20
	pretreeTableBits   = 6
	maintreeMaxSymbols = numChars + 50*8
	maintreeTableBits  = 12
	lengthMaxSymbols   = numSecondaryLengths + 1
	lengthTableBits    = 12
	alignedMaxSymbols  = 8
	alignedTableBits   = 7

	lenTableSafety = 64

	// E8 translation is only applied to the first 32768 frames
	intelMaxFrames = 32768
)

type blockType uint8

const (
	blockInvalid blockType = iota
	blockVerbatim
	blockAligned
	blockUncompressed
)

var (
	ErrCorrupt           = errors.New("lzx: corrupt stream")
	ErrWindowSize        = errors.New("lzx: unsupported window size")
	errTableOverrun      = errors.Wrap(ErrCorrupt, "huffman table overrun")
	errBlockType         = errors.Wrap(ErrCorrupt, "invalid block type")
	errInputExhausted    = errors.Wrap(ErrCorrupt, "input exhausted")
	errWindowOverrun     = errors.Wrap(ErrCorrupt, "run crosses window end")
	errUncompressedShort = errors.Wrap(ErrCorrupt, "uncompressed block past input end")
)

var (
	extraBits    [52]uint8
	positionBase [51]uint32
)

func init() {
	for i, j := 0, uint8(0); i <= 50; i += 2 {
		extraBits[i] = j
		extraBits[i+1] = j
		if i != 0 && j < 17 {
			j++
		}
	}
	for i, j := 0, uint32(0); i <= 50; i++ {
		positionBase[i] = j
		j += 1 << extraBits[i]
	}
}

type Decoder struct {
	window     []byte
	windowSize int
	windowPos  int
	framePos   int

	r0, r1, r2 uint32

	mainElements int
	headerRead   bool

	blockType      blockType
	blockLength    int
	blockRemaining int

	intelFileSize int32
	intelCurPos   int32
	intelStarted  bool
	framesRead    int

	pretree  *tree
	maintree *tree
	length   *tree
	aligned  *tree
}

// NewDecoder creates a decoder with a window of 1<<windowBits bytes.
// XNB files always use 16.
func NewDecoder(windowBits uint) (*Decoder, error) {
	if windowBits < 15 || windowBits > 21 {
		return nil, errors.Wrapf(ErrWindowSize, "%d bits", windowBits)
	}

	var posnSlots int
	switch windowBits {
	case 20:
		posnSlots = 42
	case 21:
		posnSlots = 50
	default:
		posnSlots = int(windowBits) << 1
	}

	size := 1 << windowBits
	return &Decoder{
		window:       make([]byte, size),
		windowSize:   size,
		r0:           1,
		r1:           1,
		r2:           1,
		mainElements: numChars + posnSlots<<3,
		pretree:      newTree(pretreeMaxSymbols, pretreeTableBits),
		maintree:     newTree(maintreeMaxSymbols, maintreeTableBits),
		length:       newTree(lengthMaxSymbols, lengthTableBits),
		aligned:      newTree(alignedMaxSymbols, alignedTableBits),
	}, nil
}

// Decompress decodes one frame from in and returns outLen bytes.
func (d *Decoder) Decompress(in []byte, outLen int) ([]byte, error) {
	if outLen <= 0 || d.framePos+outLen > d.windowSize {
		return nil, errors.Wrapf(ErrCorrupt, "invalid frame size %d", outLen)
	}

	br := &bitReader{data: in}
	window := d.window
	windowPos := d.windowPos
	r0, r1, r2 := d.r0, d.r1, d.r2

	if !d.headerRead {
		if br.read(1) != 0 {
			i := br.read(16)
			j := br.read(16)
			d.intelFileSize = int32(i<<16 | j)
		}
		d.headerRead = true
	}

	// a match of the previous frame may already have produced some of our bytes
	ahead := windowPos - d.framePos
	if ahead < 0 || ahead > outLen {
		return nil, errors.Wrap(ErrCorrupt, "previous frame overran this one")
	}
	togo := outLen - ahead

	for togo > 0 {
		if d.blockRemaining == 0 {
			if d.blockType == blockUncompressed {
				if d.blockLength&1 == 1 {
					br.pos++
				}
				br.reset()
			}

			d.blockType = blockType(br.read(3))
			i := br.read(16)
			j := br.read(8)
			d.blockLength = int(i<<8 | j)
			d.blockRemaining = d.blockLength

			switch d.blockType {
			case blockAligned:
				for i := 0; i < 8; i++ {
					d.aligned.lens[i] = uint8(br.read(3))
				}
				if err := d.aligned.build(); err != nil {
					return nil, errors.Wrap(err, "aligned tree")
				}
				fallthrough
			case blockVerbatim:
				if err := d.readLengths(br, d.maintree.lens, 0, numChars); err != nil {
					return nil, err
				}
				if err := d.readLengths(br, d.maintree.lens, numChars, d.mainElements); err != nil {
					return nil, err
				}
				if err := d.maintree.build(); err != nil {
					return nil, errors.Wrap(err, "main tree")
				}
				if d.maintree.lens[0xE8] != 0 {
					d.intelStarted = true
				}
				if err := d.readLengths(br, d.length.lens, 0, numSecondaryLengths); err != nil {
					return nil, err
				}
				if err := d.length.build(); err != nil {
					return nil, errors.Wrap(err, "length tree")
				}
			case blockUncompressed:
				d.intelStarted = true
				// 1 to 16 bits of padding align the stream to a word
				br.ensure(16)
				if br.bitsLeft > 16 {
					br.pos -= 2
				}
				if br.pos+12 > len(in) {
					return nil, errUncompressedShort
				}
				r0 = binary.LittleEndian.Uint32(in[br.pos:])
				r1 = binary.LittleEndian.Uint32(in[br.pos+4:])
				r2 = binary.LittleEndian.Uint32(in[br.pos+8:])
				br.pos += 12
			default:
				return nil, errors.Wrapf(errBlockType, "%d", d.blockType)
			}
		}

		// the last tables of a frame may be read with up to 16 bits of lookahead
		if br.pos > len(in) {
			if br.pos > len(in)+2 || br.bitsLeft < 16 {
				return nil, errInputExhausted
			}
		}

		for d.blockRemaining > 0 && togo > 0 {
			thisRun := d.blockRemaining
			if thisRun > togo {
				thisRun = togo
			}
			togo -= thisRun
			d.blockRemaining -= thisRun

			windowPos &= d.windowSize - 1
			if windowPos+thisRun > d.windowSize {
				return nil, errWindowOverrun
			}

			switch d.blockType {
			case blockVerbatim, blockAligned:
				for thisRun > 0 {
					mainElement, err := br.readHuffSym(d.maintree)
					if err != nil {
						return nil, err
					}
					if mainElement < numChars {
						window[windowPos] = byte(mainElement)
						windowPos++
						thisRun--
						continue
					}

					mainElement -= numChars
					matchLength := int(mainElement & numPrimaryLengths)
					if matchLength == numPrimaryLengths {
						footer, err := br.readHuffSym(d.length)
						if err != nil {
							return nil, err
						}
						matchLength += int(footer)
					}
					matchLength += minMatch

					matchOffset := mainElement >> 3
					switch matchOffset {
					case 0:
						matchOffset = r0
					case 1:
						matchOffset = r1
						r1 = r0
						r0 = matchOffset
					case 2:
						matchOffset = r2
						r2 = r0
						r0 = matchOffset
					default:
						if d.blockType == blockVerbatim {
							matchOffset, err = verbatimOffset(br, matchOffset)
						} else {
							matchOffset, err = d.alignedOffset(br, matchOffset)
						}
						if err != nil {
							return nil, err
						}
						r2 = r1
						r1 = r0
						r0 = matchOffset
					}

					if int(matchOffset) > d.windowSize || windowPos+matchLength > d.windowSize {
						return nil, errWindowOverrun
					}

					thisRun -= matchLength
					windowPos = copyMatch(window, windowPos, int(matchOffset), matchLength)
				}

				// the final match of a run may overrun into the next one
				if thisRun < 0 {
					if -thisRun > d.blockRemaining {
						return nil, errors.Wrap(ErrCorrupt, "match overruns block")
					}
					d.blockRemaining += thisRun
				}
			case blockUncompressed:
				if br.pos+thisRun > len(in) {
					return nil, errUncompressedShort
				}
				copy(window[windowPos:], in[br.pos:br.pos+thisRun])
				br.pos += thisRun
				windowPos += thisRun
			default:
				return nil, errors.Wrapf(errBlockType, "%d", d.blockType)
			}
		}
	}

	out := make([]byte, outLen)
	copy(out, window[d.framePos:d.framePos+outLen])

	d.windowPos = windowPos & (d.windowSize - 1)
	d.framePos = (d.framePos + outLen) & (d.windowSize - 1)
	d.r0, d.r1, d.r2 = r0, r1, r2

	d.intelTranslate(out)
	d.framesRead++

	return out, nil
}

func verbatimOffset(br *bitReader, slot uint32) (uint32, error) {
	if slot == 3 {
		return 1, nil
	}
	if int(slot) >= len(positionBase) {
		return 0, errors.Wrapf(ErrCorrupt, "position slot %d", slot)
	}
	verbatim := br.read(uint(extraBits[slot]))
	return positionBase[slot] - 2 + verbatim, nil
}

func (d *Decoder) alignedOffset(br *bitReader, slot uint32) (uint32, error) {
	if int(slot) >= len(positionBase) {
		return 0, errors.Wrapf(ErrCorrupt, "position slot %d", slot)
	}
	extra := uint(extraBits[slot])
	offset := positionBase[slot] - 2

	switch {
	case extra > 3:
		offset += br.read(extra-3) << 3
		aligned, err := br.readHuffSym(d.aligned)
		if err != nil {
			return 0, err
		}
		offset += aligned
	case extra == 3:
		aligned, err := br.readHuffSym(d.aligned)
		if err != nil {
			return 0, err
		}
		offset += aligned
	case extra > 0:
		offset += br.read(extra)
	default:
		offset = 1
	}
	return offset, nil
}

// copyMatch copies length bytes from offset bytes back, wrapping around the
// window start, and returns the new window position.
func copyMatch(window []byte, pos, offset, length int) int {
	dst := pos
	var src int
	if pos >= offset {
		src = dst - offset
	} else {
		src = dst + len(window) - offset
		if wrapped := offset - pos; wrapped < length {
			for i := 0; i < wrapped; i++ {
				window[dst] = window[src]
				dst++
				src++
			}
			length -= wrapped
			src = 0
		}
	}
	// byte by byte, source and destination may overlap
	for i := 0; i < length; i++ {
		window[dst] = window[src]
		dst++
		src++
	}
	return dst
}

func (d *Decoder) readLengths(br *bitReader, lens []uint8, first, last int) error {
	for x := 0; x < pretreeMaxSymbols; x++ {
		d.pretree.lens[x] = uint8(br.read(4))
	}
	if err := d.pretree.build(); err != nil {
		return errors.Wrap(err, "pretree")
	}

	for x := first; x < last; {
		z, err := br.readHuffSym(d.pretree)
		if err != nil {
			return err
		}

		var run int
		var value uint8
		switch z {
		case 17:
			run = int(br.read(4)) + 4
		case 18:
			run = int(br.read(5)) + 20
		case 19:
			run = int(br.read(1)) + 4
			z, err = br.readHuffSym(d.pretree)
			if err != nil {
				return err
			}
			value = deltaLength(lens[x], z)
		default:
			run = 1
			value = deltaLength(lens[x], z)
		}

		if x+run > len(lens) {
			return errors.Wrap(ErrCorrupt, "length run past table end")
		}
		for ; run > 0; run-- {
			lens[x] = value
			x++
		}
	}
	return nil
}

func deltaLength(prev uint8, z uint32) uint8 {
	v := int(prev) - int(z)
	if v < 0 {
		v += 17
	}
	return uint8(v)
}

func (d *Decoder) intelTranslate(out []byte) {
	if d.intelFileSize == 0 || d.framesRead >= intelMaxFrames {
		return
	}
	if !d.intelStarted || len(out) <= 10 {
		d.intelCurPos += int32(len(out))
		return
	}

	curPos := d.intelCurPos
	fileSize := d.intelFileSize
	end := len(out) - 10
	for i := 0; i < end; {
		if out[i] != 0xE8 {
			i++
			curPos++
			continue
		}
		i++
		absOff := int32(binary.LittleEndian.Uint32(out[i:]))
		if absOff >= -curPos && absOff < fileSize {
			var relOff int32
			if absOff >= 0 {
				relOff = absOff - curPos
			} else {
				relOff = absOff + fileSize
			}
			binary.LittleEndian.PutUint32(out[i:], uint32(relOff))
		}
		i += 4
		curPos += 5
	}
	d.intelCurPos += int32(len(out))
}
