package mappers

import (
	"famigo/hw"
	"famigo/hw/snapshot"
	"famigo/ines"
)

var MMC3 = MapperDesc{
	Name: "MMC3",
	New: func(b *base) hw.Mapper {
		m := &mmc3{base: b}
		// Sane mapping before the game writes any register: R6/R7 at
		// banks 0 and 1, last two banks fixed.
		m.bankRegs = [8]uint8{0, 2, 4, 5, 6, 7, 0, 1}
		return m
	},
}

// mmc3 banks PRG in 8 KB and CHR in 1 KB slices, and counts scanlines by
// watching the PPU A12 line: the line rises once per scanline when the
// background and sprite pattern tables straddle $1000, which clocks the
// IRQ counter.
type mmc3 struct {
	*base

	bankSelect uint8
	bankRegs   [8]uint8 // R0..R7
	mirrorReg  uint8
	ramProtect uint8

	irqLatch   uint8
	irqCounter uint8
	irqReload  bool
	irqEnabled bool
	irqFlag    bool
	lastA12    bool
}

func (m *mmc3) Mirroring() ines.Mirroring {
	// Four-screen boards bypass the mirroring register entirely.
	if m.cart.Mirroring() == ines.FourScreen {
		return ines.FourScreen
	}
	if m.mirrorReg&1 != 0 {
		return ines.HorzMirroring
	}
	return ines.VertMirroring
}

func (m *mmc3) IRQPending() bool { return m.irqFlag }

// NotifyA12 clocks the IRQ counter on every low-to-high transition of
// the PPU A12 line. At zero the counter reloads from the latch,
// otherwise it decrements; hitting zero with IRQs enabled raises the
// flag, which sticks until acknowledged via $E000.
func (m *mmc3) NotifyA12(high bool) {
	rising := high && !m.lastA12
	m.lastA12 = high
	if !rising {
		return
	}

	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqLatch
		m.irqReload = false
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled {
		m.irqFlag = true
		modMapper.DebugZ("scanline IRQ").Uint8("latch", m.irqLatch).End()
	}
}

func (m *mmc3) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		return m.cart.PRG[m.prgIndex(addr)]
	case addr >= 0x6000:
		return m.prgRAMRead(addr)
	}
	return 0
}

// prgIndex maps the four 8 KB CPU windows. PRG mode swaps which of
// $8000 and $C000 is switchable and which is fixed to the second-to-last
// bank; $A000 is always R7 and $E000 always the last bank.
func (m *mmc3) prgIndex(addr uint16) int {
	nbanks := len(m.cart.PRG) >> 13
	mode1 := m.bankSelect&0x40 != 0

	var bank int
	switch addr >> 13 & 3 {
	case 0: // $8000
		if mode1 {
			bank = nbanks - 2
		} else {
			bank = int(m.bankRegs[6]) % nbanks
		}
	case 1: // $A000
		bank = int(m.bankRegs[7]) % nbanks
	case 2: // $C000
		if mode1 {
			bank = int(m.bankRegs[6]) % nbanks
		} else {
			bank = nbanks - 2
		}
	case 3: // $E000
		bank = nbanks - 1
	}
	return bank<<13 + int(addr&0x1FFF)
}

func (m *mmc3) CPUWrite(addr uint16, val uint8) {
	switch {
	case addr >= 0x8000:
		m.writeReg(addr, val)
	case addr >= 0x6000:
		if m.ramProtect&0x40 == 0 {
			m.prgRAMWrite(addr, val)
		}
	}
}

func (m *mmc3) writeReg(addr uint16, val uint8) {
	even := addr&1 == 0
	switch {
	case addr < 0xA000:
		if even {
			m.bankSelect = val
		} else {
			m.bankRegs[m.bankSelect&7] = val
		}
	case addr < 0xC000:
		if even {
			m.mirrorReg = val
		} else {
			m.ramProtect = val
		}
	case addr < 0xE000:
		if even {
			m.irqLatch = val
		} else {
			// $C001: reload on the next A12 clock
			m.irqReload = true
		}
	default:
		if even {
			// $E000: disable and acknowledge
			m.irqEnabled = false
			m.irqFlag = false
		} else {
			// $E001: enable
			m.irqEnabled = true
		}
	}
}

// chrIndex maps the eight 1 KB PPU windows: two 2 KB banks (R0, R1) and
// four 1 KB banks (R2-R5), with CHR mode flipping the $0000/$1000
// halves.
func (m *mmc3) chrIndex(addr uint16) int {
	if m.bankSelect&0x80 != 0 {
		addr ^= 0x1000
	}

	var bank int
	switch {
	case addr < 0x0800:
		bank = int(m.bankRegs[0]&0xFE) + int(addr>>10&1)
	case addr < 0x1000:
		bank = int(m.bankRegs[1]&0xFE) + int(addr>>10&1)
	default:
		bank = int(m.bankRegs[2+(addr>>10&3)])
	}
	nbanks := len(m.cart.CHR) >> 10
	return (bank%nbanks)<<10 + int(addr&0x03FF)
}

func (m *mmc3) CHRRead(addr uint16) uint8 {
	return m.cart.CHR[m.chrIndex(addr)]
}

func (m *mmc3) CHRWrite(addr uint16, val uint8) {
	if !m.cart.HasCHRRAM() {
		modMapper.DebugZ("write to CHR ROM ignored").Hex16("addr", addr).End()
		return
	}
	m.cart.CHR[m.chrIndex(addr)] = val
}

func (m *mmc3) SaveState(state *snapshot.Mapper) {
	m.saveBase(state)
	state.BankSelect = m.bankSelect
	state.BankRegs = m.bankRegs
	state.MirrorReg = m.mirrorReg
	state.RAMProtect = m.ramProtect
	state.IRQLatch = m.irqLatch
	state.IRQCounter = m.irqCounter
	state.IRQReload = m.irqReload
	state.IRQEnabled = m.irqEnabled
	state.IRQFlag = m.irqFlag
	state.LastA12 = m.lastA12
}

func (m *mmc3) SetState(state *snapshot.Mapper) {
	m.loadBase(state)
	m.bankSelect = state.BankSelect
	m.bankRegs = state.BankRegs
	m.mirrorReg = state.MirrorReg
	m.ramProtect = state.RAMProtect
	m.irqLatch = state.IRQLatch
	m.irqCounter = state.IRQCounter
	m.irqReload = state.IRQReload
	m.irqEnabled = state.IRQEnabled
	m.irqFlag = state.IRQFlag
	m.lastA12 = state.LastA12
}
