package mappers

import (
	"famigo/hw"
	"famigo/hw/snapshot"
)

var UxROM = MapperDesc{
	Name: "UxROM",
	New: func(b *base) hw.Mapper {
		return &uxrom{
			base:     b,
			bankmask: uint32(len(b.cart.PRG)>>14) - 1,
		}
	},
}

// uxrom switches a 16 KB PRG bank at $8000 and keeps the last bank fixed
// at $C000. CHR is 8 KB of RAM.
type uxrom struct {
	*base

	prgbank  uint32
	bankmask uint32
}

func (m *uxrom) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0xC000:
		return m.cart.PRG[len(m.cart.PRG)-0x4000+int(addr-0xC000)]
	case addr >= 0x8000:
		return m.cart.PRG[int(m.prgbank)*0x4000+int(addr-0x8000)]
	case addr >= 0x6000:
		return m.prgRAMRead(addr)
	}
	return 0
}

func (m *uxrom) CPUWrite(addr uint16, val uint8) {
	switch {
	case addr >= 0x8000:
		prev := m.prgbank
		m.prgbank = uint32(val) & m.bankmask
		if prev != m.prgbank {
			modMapper.DebugZ("PRG bank switch").Uint32("bank", m.prgbank).End()
		}
	case addr >= 0x6000:
		m.prgRAMWrite(addr, val)
	}
}

func (m *uxrom) CHRRead(addr uint16) uint8       { return m.chrRead8K(addr) }
func (m *uxrom) CHRWrite(addr uint16, val uint8) { m.chrWrite8K(addr, val) }

func (m *uxrom) SaveState(state *snapshot.Mapper) {
	m.saveBase(state)
	state.PRGBank = m.prgbank
}

func (m *uxrom) SetState(state *snapshot.Mapper) {
	m.loadBase(state)
	m.prgbank = state.PRGBank
}
