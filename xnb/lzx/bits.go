package lzx

// bitReader reads bits most significant first out of little-endian 16-bit
// words. Reads past the end of data yield zero bits; callers compare pos
// with len(data) to detect exhaustion.
type bitReader struct {
	data     []byte
	pos      int
	buf      uint32
	bitsLeft uint
}

func (br *bitReader) reset() {
	br.buf = 0
	br.bitsLeft = 0
}

func (br *bitReader) byteAt(i int) uint32 {
	if i < len(br.data) {
		return uint32(br.data[i])
	}
	return 0
}

// ensure makes at least n bits available, n <= 17.
func (br *bitReader) ensure(n uint) {
	for br.bitsLeft < n {
		word := br.byteAt(br.pos+1)<<8 | br.byteAt(br.pos)
		br.pos += 2
		br.buf |= word << (16 - br.bitsLeft)
		br.bitsLeft += 16
	}
}

func (br *bitReader) peek(n uint) uint32 {
	return br.buf >> (32 - n)
}

func (br *bitReader) remove(n uint) {
	br.buf <<= n
	br.bitsLeft -= n
}

func (br *bitReader) read(n uint) uint32 {
	if n == 0 {
		return 0
	}
	br.ensure(n)
	v := br.peek(n)
	br.remove(n)
	return v
}

func (br *bitReader) readHuffSym(t *tree) (uint32, error) {
	br.ensure(16)
	i := uint32(t.table[br.peek(t.tableBits)])
	if i >= uint32(t.maxSymbols) {
		j := uint32(1) << (32 - t.tableBits)
		for {
			j >>= 1
			if j == 0 {
				return 0, errTableOverrun
			}
			i <<= 1
			if br.buf&j != 0 {
				i |= 1
			}
			if int(i) >= len(t.table) {
				return 0, errTableOverrun
			}
			i = uint32(t.table[i])
			if i < uint32(t.maxSymbols) {
				break
			}
		}
	}
	br.remove(uint(t.lens[i]))
	return i, nil
}
