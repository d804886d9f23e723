package apu

import (
	"famigo/hw/snapshot"
)

// The 16 documented noise timer periods (NTSC).
var noisePeriods = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068,
}

// noise generates pseudo-random output from a 15-bit linear feedback
// shift register. Mode 1 shortens the sequence to a metallic buzz.
type noise struct {
	mode        bool
	lfsr        uint16
	timerPeriod uint16
	timerValue  uint16

	env envelope
	lc  lengthCounter
}

// $400C
func (n *noise) writeCtrl(val uint8) {
	n.lc.halt = val&0x20 != 0
	n.env.write(val)
}

// $400E
func (n *noise) writePeriod(val uint8) {
	n.mode = val&0x80 != 0
	n.timerPeriod = noisePeriods[val&0x0F]
}

// $400F
func (n *noise) writeLength(val uint8) {
	n.lc.load(val)
	n.env.start = true
}

func (n *noise) tickTimer() {
	if n.timerValue == 0 {
		n.timerValue = n.timerPeriod
		n.tickLFSR()
	} else {
		n.timerValue--
	}
}

// tickLFSR shifts the register right, feeding back bit 0 XOR bit 1 (or
// bit 6 in short mode) into bit 14.
func (n *noise) tickLFSR() {
	shift := uint16(1)
	if n.mode {
		shift = 6
	}
	feedback := (n.lfsr ^ n.lfsr>>shift) & 1
	n.lfsr = n.lfsr>>1 | feedback<<14
}

func (n *noise) output() uint8 {
	if !n.lc.active() || n.lfsr&1 == 1 {
		return 0
	}
	return n.env.output()
}

func (n *noise) saveState(state *snapshot.Noise) {
	state.Mode = n.mode
	state.LFSR = n.lfsr
	state.TimerPeriod = n.timerPeriod
	state.TimerValue = n.timerValue
	n.env.saveState(&state.Envelope)
	n.lc.saveState(&state.Length)
}

func (n *noise) setState(state *snapshot.Noise) {
	n.mode = state.Mode
	n.lfsr = state.LFSR
	n.timerPeriod = state.TimerPeriod
	n.timerValue = state.TimerValue
	n.env.setState(&state.Envelope)
	n.lc.setState(&state.Length)
}
