package apu

import (
	"famigo/hw/hwdefs"
)

// frameCounter sequences the envelope, length and sweep clocks. The step
// boundaries are the documented half-cycle offsets rounded to the nearest
// CPU cycle: a 4-step sequence spans 29828 CPU cycles (14914 APU cycles),
// a 5-step one 37281.
type frameCounter struct {
	mode5   bool
	inhibit bool
	cycle   uint32
	irq     bool
}

func (a *APU) tickFrameCounter() {
	fc := &a.fc
	fc.cycle++
	switch fc.cycle {
	case 7457:
		a.quarterFrame()
	case 14913:
		a.quarterFrame()
		a.halfFrame()
	case 22371:
		a.quarterFrame()
	case 29828:
		if !fc.mode5 {
			a.quarterFrame()
			a.halfFrame()
			if !fc.inhibit {
				fc.irq = true
				a.cpu.SetIRQSource(hwdefs.FrameCounter)
			}
			fc.cycle = 0
		}
	case 37281:
		a.quarterFrame()
		a.halfFrame()
		fc.cycle = 0
	}
}

// $4017 write. Bit 7 selects the 5-step sequence, bit 6 inhibits the
// frame IRQ and acknowledges a pending one. Selecting the 5-step
// sequence clocks every unit immediately.
func (a *APU) writeFrameCounter(val uint8) {
	a.fc.mode5 = val&0x80 != 0
	a.fc.inhibit = val&0x40 != 0
	a.fc.cycle = 0
	if a.fc.inhibit {
		a.fc.irq = false
		a.cpu.ClearIRQSource(hwdefs.FrameCounter)
	}
	if a.fc.mode5 {
		a.quarterFrame()
		a.halfFrame()
	}
}
