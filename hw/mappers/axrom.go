package mappers

import (
	"famigo/hw"
	"famigo/hw/snapshot"
	"famigo/ines"
)

var AOROM = MapperDesc{
	Name: "AOROM",
	New: func(b *base) hw.Mapper {
		return &axrom{base: b}
	},
}

// axrom switches the whole 32 KB PRG window at once and selects one of
// the two single-screen nametables with bit 4 of the same register.
type axrom struct {
	*base

	prgbank uint32
	screenB bool
}

func (m *axrom) Mirroring() ines.Mirroring {
	if m.screenB {
		return ines.OnlyBScreen
	}
	return ines.OnlyAScreen
}

func (m *axrom) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		nbanks := uint32(len(m.cart.PRG) >> 15)
		return m.cart.PRG[(m.prgbank%nbanks)<<15|uint32(addr&0x7FFF)]
	case addr >= 0x6000:
		return m.prgRAMRead(addr)
	}
	return 0
}

func (m *axrom) CPUWrite(addr uint16, val uint8) {
	switch {
	case addr >= 0x8000:
		m.prgbank = uint32(val & 0x07)
		m.screenB = val&0x10 != 0
	case addr >= 0x6000:
		m.prgRAMWrite(addr, val)
	}
}

func (m *axrom) CHRRead(addr uint16) uint8       { return m.chrRead8K(addr) }
func (m *axrom) CHRWrite(addr uint16, val uint8) { m.chrWrite8K(addr, val) }

func (m *axrom) SaveState(state *snapshot.Mapper) {
	m.saveBase(state)
	state.PRGBank = m.prgbank
	state.SingleScreenB = m.screenB
}

func (m *axrom) SetState(state *snapshot.Mapper) {
	m.loadBase(state)
	m.prgbank = state.PRGBank
	m.screenB = state.SingleScreenB
}
