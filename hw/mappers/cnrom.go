package mappers

import (
	"famigo/hw"
	"famigo/hw/snapshot"
)

var CNROM = MapperDesc{
	Name: "CNROM",
	New: func(b *base) hw.Mapper {
		return &cnrom{base: b}
	},
}

// cnrom keeps its 32 KB of PRG fixed and switches the whole 8 KB CHR
// bank through writes anywhere in $8000-$FFFF.
type cnrom struct {
	*base

	chrbank uint32
}

func (m *cnrom) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		return m.cart.PRG[int(addr-0x8000)%len(m.cart.PRG)]
	case addr >= 0x6000:
		return m.prgRAMRead(addr)
	}
	return 0
}

func (m *cnrom) CPUWrite(addr uint16, val uint8) {
	switch {
	case addr >= 0x8000:
		nbanks := uint32(len(m.cart.CHR) >> 13)
		m.chrbank = uint32(val&0x03) % nbanks
	case addr >= 0x6000:
		m.prgRAMWrite(addr, val)
	}
}

func (m *cnrom) CHRRead(addr uint16) uint8 {
	return m.cart.CHR[m.chrbank<<13|uint32(addr&0x1FFF)]
}

func (m *cnrom) CHRWrite(addr uint16, val uint8) {
	if !m.cart.HasCHRRAM() {
		modMapper.DebugZ("write to CHR ROM ignored").Hex16("addr", addr).End()
		return
	}
	m.cart.CHR[m.chrbank<<13|uint32(addr&0x1FFF)] = val
}

func (m *cnrom) SaveState(state *snapshot.Mapper) {
	m.saveBase(state)
	state.CHRBank = m.chrbank
}

func (m *cnrom) SetState(state *snapshot.Mapper) {
	m.loadBase(state)
	m.chrbank = state.CHRBank
}
