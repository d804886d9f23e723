package apu

import (
	"famigo/hw/snapshot"
)

// lengthTable translates the 5-bit load index written to the channel
// length registers into an actual counter value.
var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6, 160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

// lengthCounter silences its channel when it reaches zero. Channels
// disabled through $4015 keep it pinned at zero.
type lengthCounter struct {
	enabled bool
	halt    bool
	value   uint8
}

func (lc *lengthCounter) load(val uint8) {
	if lc.enabled {
		lc.value = lengthTable[val>>3]
	}
}

func (lc *lengthCounter) tick() {
	if !lc.halt && lc.value > 0 {
		lc.value--
	}
}

func (lc *lengthCounter) setEnabled(on bool) {
	lc.enabled = on
	if !on {
		lc.value = 0
	}
}

func (lc *lengthCounter) active() bool { return lc.value > 0 }

func (lc *lengthCounter) saveState(state *snapshot.Length) {
	state.Enabled = lc.enabled
	state.Halt = lc.halt
	state.Value = lc.value
}

func (lc *lengthCounter) setState(state *snapshot.Length) {
	lc.enabled = state.Enabled
	lc.halt = state.Halt
	lc.value = state.Value
}
