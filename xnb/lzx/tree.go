package lzx

// tree is a canonical Huffman decode table. Codes up to tableBits long are
// looked up directly, longer ones walk a binary tree stored after the direct
// entries.
type tree struct {
	table      []uint16
	lens       []uint8
	maxSymbols int
	tableBits  uint
}

func newTree(maxSymbols int, tableBits uint) *tree {
	return &tree{
		table:      make([]uint16, (1<<tableBits)+(maxSymbols<<1)),
		lens:       make([]uint8, maxSymbols+lenTableSafety),
		maxSymbols: maxSymbols,
		tableBits:  tableBits,
	}
}

func (t *tree) build() error {
	nbits := uint32(t.tableBits)
	nsyms := uint32(t.maxSymbols)

	pos := uint32(0)
	tableMask := uint32(1) << nbits
	bitMask := tableMask >> 1
	nextSymbol := bitMask
	bitNum := uint32(1)

	for ; bitNum <= nbits; bitNum++ {
		for sym := uint32(0); sym < nsyms; sym++ {
			if uint32(t.lens[sym]) != bitNum {
				continue
			}
			leaf := pos
			if pos += bitMask; pos > tableMask {
				return errTableOverrun
			}
			for fill := bitMask; fill > 0; fill-- {
				t.table[leaf] = uint16(sym)
				leaf++
			}
		}
		bitMask >>= 1
	}

	if pos != tableMask {
		for sym := pos; sym < tableMask; sym++ {
			t.table[sym] = 0
		}

		pos <<= 16
		tableMask <<= 16
		bitMask = 1 << 15

		for ; bitNum <= 16; bitNum++ {
			for sym := uint32(0); sym < nsyms; sym++ {
				if uint32(t.lens[sym]) != bitNum {
					continue
				}
				leaf := pos >> 16
				for fill := uint32(0); fill < bitNum-nbits; fill++ {
					if t.table[leaf] == 0 {
						if int(nextSymbol<<1)+1 >= len(t.table) {
							return errTableOverrun
						}
						t.table[nextSymbol<<1] = 0
						t.table[(nextSymbol<<1)+1] = 0
						t.table[leaf] = uint16(nextSymbol)
						nextSymbol++
					}
					leaf = uint32(t.table[leaf]) << 1
					if (pos>>(15-fill))&1 == 1 {
						leaf++
					}
				}
				t.table[leaf] = uint16(sym)

				if pos += bitMask; pos > tableMask {
					return errTableOverrun
				}
			}
			bitMask >>= 1
		}
	}

	if pos == tableMask {
		return nil
	}

	// an all-zero table is valid and never read
	for sym := uint32(0); sym < nsyms; sym++ {
		if t.lens[sym] != 0 {
			return errTableOverrun
		}
	}
	return nil
}
