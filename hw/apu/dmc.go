package apu

import (
	"famigo/hw/hwdefs"
	"famigo/hw/snapshot"
)

// DMC timer periods in APU cycles (the channel is ticked at half the CPU
// clock, like the pulses).
var dmcPeriods = [16]uint16{
	214, 190, 170, 160, 143, 127, 113, 107, 95, 80, 71, 64, 53, 42, 36, 27,
}

// dmc plays 1-bit delta-encoded samples fetched from CPU address space.
// Each fetch steals whole CPU cycles through the stall mechanism. The
// channel can loop its sample or raise an IRQ when it runs out.
type dmc struct {
	cpu cpu

	enabled bool
	value   uint8 // 7-bit DAC level

	sampleAddr uint16
	sampleLen  uint16

	currentAddr uint16
	currentLen  uint16
	shift       uint8
	bits        uint8
	tickPeriod  uint16
	tickValue   uint16

	loop       bool
	irqEnabled bool
	irq        bool
}

// $4010
func (d *dmc) writeCtrl(val uint8) {
	d.irqEnabled = val&0x80 != 0
	d.loop = val&0x40 != 0
	d.tickPeriod = dmcPeriods[val&0x0F]
	if !d.irqEnabled {
		d.clearIRQ()
	}
}

// $4011: direct 7-bit load of the DAC.
func (d *dmc) writeValue(val uint8) {
	d.value = val & 0x7F
}

// $4012: sample address, %11AAAAAA.AA000000.
func (d *dmc) writeAddr(val uint8) {
	d.sampleAddr = 0xC000 | uint16(val)<<6
}

// $4013: sample length, %LLLL.LLLL0001.
func (d *dmc) writeLength(val uint8) {
	d.sampleLen = uint16(val)<<4 | 1
}

func (d *dmc) setEnabled(on bool) {
	d.enabled = on
	if !on {
		d.currentLen = 0
	} else if d.currentLen == 0 {
		d.restart()
	}
}

func (d *dmc) restart() {
	d.currentAddr = d.sampleAddr
	d.currentLen = d.sampleLen
}

func (d *dmc) clearIRQ() {
	d.irq = false
	d.cpu.ClearIRQSource(hwdefs.DMC)
}

func (d *dmc) tickTimer() {
	if !d.enabled {
		return
	}
	d.tickReader()
	if d.tickValue == 0 {
		d.tickValue = d.tickPeriod
		d.tickShifter()
	} else {
		d.tickValue--
	}
}

// tickReader refills the sample buffer from memory. The fetch goes over
// the CPU bus and stalls the CPU for four cycles.
func (d *dmc) tickReader() {
	if d.currentLen == 0 || d.bits != 0 {
		return
	}
	d.cpu.AddStall(4)
	d.shift = d.cpu.ReadMem(d.currentAddr)
	d.bits = 8
	d.currentAddr++
	if d.currentAddr == 0 {
		d.currentAddr = 0x8000 // address space wraps back into ROM
	}
	d.currentLen--
	if d.currentLen == 0 {
		if d.loop {
			d.restart()
		} else if d.irqEnabled {
			d.irq = true
			d.cpu.SetIRQSource(hwdefs.DMC)
		}
	}
}

// tickShifter walks the delta counter up or down by 2 per sample bit,
// saturating at the 7-bit range.
func (d *dmc) tickShifter() {
	if d.bits == 0 {
		return
	}
	if d.shift&1 == 1 {
		if d.value <= 125 {
			d.value += 2
		}
	} else if d.value >= 2 {
		d.value -= 2
	}
	d.shift >>= 1
	d.bits--
}

func (d *dmc) output() uint8 { return d.value }

func (d *dmc) saveState(state *snapshot.DMC) {
	state.Enabled = d.enabled
	state.Value = d.value
	state.SampleAddr = d.sampleAddr
	state.SampleLen = d.sampleLen
	state.CurrentAddr = d.currentAddr
	state.CurrentLen = d.currentLen
	state.ShiftReg = d.shift
	state.BitCount = d.bits
	state.TickPeriod = d.tickPeriod
	state.TickValue = d.tickValue
	state.Loop = d.loop
	state.IRQEnabled = d.irqEnabled
}

func (d *dmc) setState(state *snapshot.DMC) {
	d.enabled = state.Enabled
	d.value = state.Value
	d.sampleAddr = state.SampleAddr
	d.sampleLen = state.SampleLen
	d.currentAddr = state.CurrentAddr
	d.currentLen = state.CurrentLen
	d.shift = state.ShiftReg
	d.bits = state.BitCount
	d.tickPeriod = state.TickPeriod
	d.tickValue = state.TickValue
	d.loop = state.Loop
	d.irqEnabled = state.IRQEnabled
}
