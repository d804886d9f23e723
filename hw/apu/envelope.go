package apu

import (
	"famigo/hw/snapshot"
)

// envelope is the volume unit shared by the pulse and noise channels:
// either a constant volume or a looping 15-to-0 decay.
type envelope struct {
	start    bool
	loop     bool
	constant bool
	period   uint8
	divider  uint8
	decay    uint8
}

func (e *envelope) write(val uint8) {
	e.loop = val&0x20 != 0
	e.constant = val&0x10 != 0
	e.period = val & 0x0F
}

func (e *envelope) tick() {
	if e.start {
		e.start = false
		e.decay = 15
		e.divider = e.period
		return
	}
	if e.divider > 0 {
		e.divider--
		return
	}
	e.divider = e.period
	if e.decay > 0 {
		e.decay--
	} else if e.loop {
		e.decay = 15
	}
}

func (e *envelope) output() uint8 {
	if e.constant {
		return e.period
	}
	return e.decay
}

func (e *envelope) saveState(state *snapshot.Envelope) {
	state.Start = e.start
	state.Loop = e.loop
	state.Constant = e.constant
	state.Period = e.period
	state.Divider = e.divider
	state.Volume = e.decay
}

func (e *envelope) setState(state *snapshot.Envelope) {
	e.start = state.Start
	e.loop = state.Loop
	e.constant = state.Constant
	e.period = state.Period
	e.divider = state.Divider
	e.decay = state.Volume
}
