package mappers

import (
	"famigo/hw"
)

var NROM = MapperDesc{
	Name: "NROM",
	New: func(b *base) hw.Mapper {
		return &nrom{base: b}
	},
}

// nrom has no banking at all: 16 or 32 KB of fixed PRG ROM (the 16 KB
// variant mirrors its single bank at $8000 and $C000) and a fixed 8 KB
// CHR bank.
type nrom struct {
	*base
}

func (m *nrom) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		return m.cart.PRG[int(addr-0x8000)%len(m.cart.PRG)]
	case addr >= 0x6000:
		return m.prgRAMRead(addr)
	}
	return 0
}

func (m *nrom) CPUWrite(addr uint16, val uint8) {
	switch {
	case addr >= 0x8000:
		m.romWrite(addr, val)
	case addr >= 0x6000:
		m.prgRAMWrite(addr, val)
	}
}

func (m *nrom) CHRRead(addr uint16) uint8       { return m.chrRead8K(addr) }
func (m *nrom) CHRWrite(addr uint16, val uint8) { m.chrWrite8K(addr, val) }
