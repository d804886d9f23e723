package mappers

import (
	"famigo/hw"
	"famigo/hw/snapshot"
	"famigo/ines"
)

var MMC1 = MapperDesc{
	Name: "MMC1",
	New: func(b *base) hw.Mapper {
		m := &mmc1{base: b}
		// Power-up has the fix-last PRG mode selected, so $C000 holds
		// the last bank even on boards that never touch the control reg.
		m.control = 0x0C
		return m
	},
}

// mmc1 is driven through a serial port: five 1-bit writes fill the shift
// register, the fifth also commits it to the register selected by
// address bits 13-14. A write with bit 7 set resets the sequence and
// forces the fix-last PRG mode.
type mmc1 struct {
	*base

	serial uint8 // 5-bit shift register
	count  uint8 // bits shifted so far

	control  uint8 // mirroring, PRG mode, CHR mode
	chrbank0 uint32
	chrbank1 uint32
	prgbank  uint32
}

func (m *mmc1) prgMode() uint8 { return m.control >> 2 & 3 }
func (m *mmc1) chrMode() uint8 { return m.control >> 4 & 1 }

func (m *mmc1) Mirroring() ines.Mirroring {
	switch m.control & 3 {
	case 0:
		return ines.OnlyAScreen
	case 1:
		return ines.OnlyBScreen
	case 2:
		return ines.VertMirroring
	default:
		return ines.HorzMirroring
	}
}

func (m *mmc1) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		return m.cart.PRG[m.prgIndex(addr)%len(m.cart.PRG)]
	case addr >= 0x6000:
		return m.prgRAMRead(addr)
	}
	return 0
}

func (m *mmc1) prgIndex(addr uint16) int {
	off := int(addr - 0x8000)
	switch m.prgMode() {
	case 0, 1: // 32 KB, low bit of the bank number ignored
		return int(m.prgbank&0x0E)*0x4000 + off
	case 2: // first bank fixed at $8000
		if addr < 0xC000 {
			return off
		}
		return int(m.prgbank)*0x4000 + off - 0x4000
	default: // 3: last bank fixed at $C000
		if addr < 0xC000 {
			return int(m.prgbank)*0x4000 + off
		}
		return len(m.cart.PRG) - 0x4000 + off - 0x4000
	}
}

func (m *mmc1) CPUWrite(addr uint16, val uint8) {
	switch {
	case addr >= 0x8000:
		m.writeSerial(addr, val)
	case addr >= 0x6000:
		m.prgRAMWrite(addr, val)
	}
}

func (m *mmc1) writeSerial(addr uint16, val uint8) {
	if val&0x80 != 0 {
		// Reset: discard the partial value, force fix-last PRG mode.
		m.serial = 0
		m.count = 0
		m.control |= 0x0C
		return
	}

	m.serial = m.serial>>1 | val&1<<4
	m.count++
	if m.count < 5 {
		return
	}

	m.writeReg(addr, m.serial)
	m.serial = 0
	m.count = 0
}

func (m *mmc1) writeReg(addr uint16, val uint8) {
	switch addr >> 13 & 3 {
	case 0: // $8000-$9FFF: control
		m.control = val
		modMapper.DebugZ("write control").
			Hex8("val", val).
			Uint8("prgmode", m.prgMode()).
			Uint8("chrmode", m.chrMode()).
			End()
	case 1: // $A000-$BFFF: CHR bank 0
		m.chrbank0 = uint32(val & 0x1F)
	case 2: // $C000-$DFFF: CHR bank 1
		m.chrbank1 = uint32(val & 0x1F)
	case 3: // $E000-$FFFF: PRG bank
		m.prgbank = uint32(val & 0x0F)
	}
}

func (m *mmc1) chrIndex(addr uint16) uint32 {
	if m.chrMode() == 0 {
		// One 8 KB bank, low bit of the bank number ignored.
		return (m.chrbank0&0x1E)<<12 | uint32(addr&0x1FFF)
	}
	if addr < 0x1000 {
		return m.chrbank0<<12 | uint32(addr&0x0FFF)
	}
	return m.chrbank1<<12 | uint32(addr&0x0FFF)
}

func (m *mmc1) CHRRead(addr uint16) uint8 {
	return m.cart.CHR[m.chrIndex(addr)%uint32(len(m.cart.CHR))]
}

func (m *mmc1) CHRWrite(addr uint16, val uint8) {
	if !m.cart.HasCHRRAM() {
		modMapper.DebugZ("write to CHR ROM ignored").Hex16("addr", addr).End()
		return
	}
	m.cart.CHR[m.chrIndex(addr)%uint32(len(m.cart.CHR))] = val
}

func (m *mmc1) SaveState(state *snapshot.Mapper) {
	m.saveBase(state)
	state.Serial = m.serial
	state.Count = m.count
	state.Control = m.control
	state.CHRBank0 = m.chrbank0
	state.CHRBank1 = m.chrbank1
	state.PRGBank = m.prgbank
}

func (m *mmc1) SetState(state *snapshot.Mapper) {
	m.loadBase(state)
	m.serial = state.Serial
	m.count = state.Count
	m.control = state.Control
	m.chrbank0 = state.CHRBank0
	m.chrbank1 = state.CHRBank1
	m.prgbank = state.PRGBank
}
