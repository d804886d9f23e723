package apu

import (
	"famigo/hw/snapshot"
)

// The four duty sequences: 12.5%, 25%, 50% and 75% (25% negated).
var dutyTable = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

// pulse is one of the two square wave channels. The only asymmetry
// between them is the sweep unit's negate adjustment on channel 1.
type pulse struct {
	channel uint8 // 1 or 2

	duty        uint8
	dutyPos     uint8
	timerPeriod uint16
	timerValue  uint16

	env envelope
	lc  lengthCounter

	sweepEnabled bool
	sweepPeriod  uint8
	sweepNegate  bool
	sweepShift   uint8
	sweepReload  bool
	sweepDivider uint8
}

// $4000/$4004
func (p *pulse) writeCtrl(val uint8) {
	p.duty = val >> 6
	p.lc.halt = val&0x20 != 0
	p.env.write(val)
}

// $4001/$4005
func (p *pulse) writeSweep(val uint8) {
	p.sweepEnabled = val&0x80 != 0
	p.sweepPeriod = val >> 4 & 0x07
	p.sweepNegate = val&0x08 != 0
	p.sweepShift = val & 0x07
	p.sweepReload = true
}

// $4002/$4006
func (p *pulse) writeTimerLo(val uint8) {
	p.timerPeriod = p.timerPeriod&0xFF00 | uint16(val)
}

// $4003/$4007
func (p *pulse) writeTimerHi(val uint8) {
	p.timerPeriod = p.timerPeriod&0x00FF | uint16(val&0x07)<<8
	p.lc.load(val)
	p.env.start = true
	p.dutyPos = 0
}

func (p *pulse) tickTimer() {
	if p.timerValue == 0 {
		p.timerValue = p.timerPeriod
		p.dutyPos = (p.dutyPos + 1) & 7
	} else {
		p.timerValue--
	}
}

// sweepTarget computes the period the sweep unit is aiming for. Channel 1
// subtracts one extra in negate mode (one's complement adder).
func (p *pulse) sweepTarget() int {
	delta := int(p.timerPeriod >> p.sweepShift)
	if p.sweepNegate {
		target := int(p.timerPeriod) - delta
		if p.channel == 1 {
			target--
		}
		return target
	}
	return int(p.timerPeriod) + delta
}

// sweepMuted reports the sweep unit's silencing condition, which applies
// whether or not sweeping is enabled.
func (p *pulse) sweepMuted() bool {
	return p.timerPeriod < 8 || p.sweepTarget() > 0x7FF
}

func (p *pulse) tickSweep() {
	if p.sweepDivider == 0 && p.sweepEnabled && p.sweepShift > 0 && !p.sweepMuted() {
		target := p.sweepTarget()
		if target < 0 {
			target = 0
		}
		p.timerPeriod = uint16(target)
	}
	if p.sweepDivider == 0 || p.sweepReload {
		p.sweepDivider = p.sweepPeriod
		p.sweepReload = false
	} else {
		p.sweepDivider--
	}
}

func (p *pulse) output() uint8 {
	if !p.lc.active() || p.sweepMuted() || dutyTable[p.duty][p.dutyPos] == 0 {
		return 0
	}
	return p.env.output()
}

func (p *pulse) saveState(state *snapshot.Pulse) {
	state.Duty = p.duty
	state.DutyPos = p.dutyPos
	state.TimerPeriod = p.timerPeriod
	state.TimerValue = p.timerValue
	p.env.saveState(&state.Envelope)
	p.lc.saveState(&state.Length)
	state.SweepEnabled = p.sweepEnabled
	state.SweepPeriod = p.sweepPeriod
	state.SweepNegate = p.sweepNegate
	state.SweepShift = p.sweepShift
	state.SweepReload = p.sweepReload
	state.SweepDivider = p.sweepDivider
}

func (p *pulse) setState(state *snapshot.Pulse) {
	p.duty = state.Duty
	p.dutyPos = state.DutyPos
	p.timerPeriod = state.TimerPeriod
	p.timerValue = state.TimerValue
	p.env.setState(&state.Envelope)
	p.lc.setState(&state.Length)
	p.sweepEnabled = state.SweepEnabled
	p.sweepPeriod = state.SweepPeriod
	p.sweepNegate = state.SweepNegate
	p.sweepShift = state.SweepShift
	p.sweepReload = state.SweepReload
	p.sweepDivider = state.SweepDivider
}
