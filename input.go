package main

import (
	"sync/atomic"

	"github.com/veandco/go-sdl2/sdl"
)

// padState tracks the pressed buttons of both pads. The SDL event loop
// writes it, the emulation goroutine reads one snapshot per frame.
type padState struct {
	keys1 [8]sdl.Scancode
	keys2 [8]sdl.Scancode

	// pad 1 in the low byte, pad 2 in the next one
	state atomic.Uint32
}

func newPadState(cfg InputConfig) *padState {
	ps := &padState{}
	bind := func(dst *[8]sdl.Scancode, pad PadConfig) {
		for i, name := range pad.keys() {
			if name != "" {
				dst[i] = sdl.GetScancodeFromName(name)
			}
		}
	}
	bind(&ps.keys1, cfg.Pad1)
	bind(&ps.keys2, cfg.Pad2)
	return ps
}

func (ps *padState) handleKey(e *sdl.KeyboardEvent) {
	down := e.Type == sdl.KEYDOWN
	for i, sc := range ps.keys1 {
		if sc != sdl.SCANCODE_UNKNOWN && sc == e.Keysym.Scancode {
			ps.setBit(uint(i), down)
		}
	}
	for i, sc := range ps.keys2 {
		if sc != sdl.SCANCODE_UNKNOWN && sc == e.Keysym.Scancode {
			ps.setBit(uint(i+8), down)
		}
	}
}

func (ps *padState) setBit(bit uint, on bool) {
	for {
		old := ps.state.Load()
		val := old &^ (1 << bit)
		if on {
			val = old | 1<<bit
		}
		if ps.state.CompareAndSwap(old, val) {
			return
		}
	}
}

// snapshot returns the current 8-bit snapshot of each pad, bit 0 = A.
func (ps *padState) snapshot() (uint8, uint8) {
	v := ps.state.Load()
	return uint8(v), uint8(v >> 8)
}
