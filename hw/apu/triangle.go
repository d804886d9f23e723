package apu

import (
	"famigo/hw/snapshot"
)

// The 32-step triangle sequence, descending then ascending.
var triangleTable = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

// triangle has no volume control: it either steps through its sequence
// or holds still, gated by both the length and the linear counter.
type triangle struct {
	timerPeriod uint16
	timerValue  uint16
	seqPos      uint8

	lc           lengthCounter
	control      bool // halts length, keeps linear reloading
	linearReload uint8
	linearValue  uint8
	linearFlag   bool
}

// $4008
func (t *triangle) writeLinear(val uint8) {
	t.control = val&0x80 != 0
	t.lc.halt = t.control
	t.linearReload = val & 0x7F
}

// $400A
func (t *triangle) writeTimerLo(val uint8) {
	t.timerPeriod = t.timerPeriod&0xFF00 | uint16(val)
}

// $400B
func (t *triangle) writeTimerHi(val uint8) {
	t.timerPeriod = t.timerPeriod&0x00FF | uint16(val&0x07)<<8
	t.lc.load(val)
	t.linearFlag = true
}

func (t *triangle) tickTimer() {
	if !t.lc.active() || t.linearValue == 0 {
		return
	}
	if t.timerValue == 0 {
		t.timerValue = t.timerPeriod
		t.seqPos = (t.seqPos + 1) & 31
	} else {
		t.timerValue--
	}
}

func (t *triangle) tickLinear() {
	if t.linearFlag {
		t.linearValue = t.linearReload
	} else if t.linearValue > 0 {
		t.linearValue--
	}
	if !t.control {
		t.linearFlag = false
	}
}

func (t *triangle) output() uint8 {
	if !t.lc.active() || t.linearValue == 0 {
		return 0
	}
	return triangleTable[t.seqPos]
}

func (t *triangle) saveState(state *snapshot.Triangle) {
	state.TimerPeriod = t.timerPeriod
	state.TimerValue = t.timerValue
	state.SeqPos = t.seqPos
	t.lc.saveState(&state.Length)
	state.LinearValue = t.linearValue
	state.LinearReload = t.linearReload
	state.LinearFlag = t.linearFlag
	state.Control = t.control
}

func (t *triangle) setState(state *snapshot.Triangle) {
	t.timerPeriod = state.TimerPeriod
	t.timerValue = state.TimerValue
	t.seqPos = state.SeqPos
	t.lc.setState(&state.Length)
	t.linearValue = state.LinearValue
	t.linearReload = state.LinearReload
	t.linearFlag = state.LinearFlag
	t.control = state.Control
}
