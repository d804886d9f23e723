package hw

import (
	"famigo/hw/snapshot"
)

// Button bit positions in a controller snapshot, bit 0 = A.
const (
	ButtonA = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller is a standard NES pad: an 8-bit shift register restarted by
// the $4016 strobe and drained one bit per read, LSB (the A button) first.
type Controller struct {
	buttons uint8 // current host snapshot
	index   uint8 // next bit to report
	strobe  bool
}

func NewController() *Controller {
	return &Controller{}
}

// SetButtons stores the host snapshot of pressed buttons, bit 0 = A.
// While the strobe is high the shift register tracks it continuously.
func (ct *Controller) SetButtons(buttons uint8) {
	ct.buttons = buttons
}

// Read shifts out the next button bit. After all eight bits have been
// read, official pads report 1.
func (ct *Controller) Read() uint8 {
	if ct.strobe {
		return ct.buttons & 1
	}
	if ct.index > 7 {
		return 1
	}
	val := ct.buttons >> ct.index & 1
	ct.index++
	return val
}

// WriteStrobe drives the strobe line from bit 0 of a $4016 write.
// While it is high the shift sequence is held at bit 0. Reads shift out
// the snapshot most recently given to SetButtons; no separate copy is
// latched at the strobe.
func (ct *Controller) WriteStrobe(val uint8) {
	ct.strobe = val&1 == 1
	if ct.strobe {
		ct.index = 0
	}
}

func (ct *Controller) SaveState(state *snapshot.Controller) {
	state.Buttons = ct.buttons
	state.Index = ct.index
	state.Strobe = ct.strobe
}

func (ct *Controller) SetState(state *snapshot.Controller) {
	ct.buttons = state.Buttons
	ct.index = state.Index
	ct.strobe = state.Strobe
}
