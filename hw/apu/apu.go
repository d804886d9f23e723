// Package apu implements the NES audio processing unit: two pulse
// channels, a triangle, a noise channel and the DMC, sequenced by the
// frame counter and mixed down to a 44.1 kHz sample stream.
package apu

import (
	"famigo/emu/log"
	"famigo/hw/hwdefs"
	"famigo/hw/snapshot"
)

// cpu is the view of the CPU the APU needs: the IRQ lines, the stall
// accounting for DMC fetches, and the address space DMC samples are read
// from.
type cpu interface {
	SetIRQSource(hwdefs.IRQSource)
	ClearIRQSource(hwdefs.IRQSource)
	HasIRQSource(hwdefs.IRQSource) bool
	AddStall(int)
	ReadMem(uint16) uint8
}

type APU struct {
	cpu   cpu
	mixer *Mixer

	Pulse1   pulse
	Pulse2   pulse
	Triangle triangle
	Noise    noise
	DMC      dmc

	fc frameCounter

	cycle      uint64 // CPU cycles since power-up
	frameCycle uint32 // CPU cycles since the last EndFrame
}

func New(cpu cpu, mixer *Mixer) *APU {
	a := &APU{cpu: cpu, mixer: mixer}
	a.Pulse1.channel = 1
	a.Pulse2.channel = 2
	a.Noise.lfsr = 1
	a.DMC.cpu = cpu
	return a
}

func (a *APU) Reset() {
	a.WriteRegister(0x4015, 0)
	a.fc = frameCounter{}
	a.frameCycle = 0
	a.mixer.Reset()
}

// Step advances the APU by one CPU cycle. The pulse, noise and DMC
// timers run at half the CPU clock, the triangle timer at full speed.
func (a *APU) Step() {
	a.cycle++
	a.frameCycle++

	if a.cycle&1 == 0 {
		a.Pulse1.tickTimer()
		a.Pulse2.tickTimer()
		a.Noise.tickTimer()
		a.DMC.tickTimer()
	}
	a.Triangle.tickTimer()

	a.tickFrameCounter()

	out := mix(a.Pulse1.output(), a.Pulse2.output(),
		a.Triangle.output(), a.Noise.output(), a.DMC.output())
	a.mixer.AddSample(a.frameCycle, out)
}

// SetVolume scales the mixer output; 1.0 is full scale.
func (a *APU) SetVolume(v float64) { a.mixer.SetVolume(v) }

// EndFrame flushes the current audio frame into the mixer's output queue.
// The hub calls it once per video frame.
func (a *APU) EndFrame() {
	a.mixer.EndFrame(a.frameCycle)
	a.frameCycle = 0
}

func (a *APU) quarterFrame() {
	a.Pulse1.env.tick()
	a.Pulse2.env.tick()
	a.Noise.env.tick()
	a.Triangle.tickLinear()
}

func (a *APU) halfFrame() {
	a.Pulse1.lc.tick()
	a.Pulse2.lc.tick()
	a.Triangle.lc.tick()
	a.Noise.lc.tick()
	a.Pulse1.tickSweep()
	a.Pulse2.tickSweep()
}

// mix combines the instantaneous channel levels with the console's
// nonlinear two-group DAC formulas.
func mix(p1, p2, t, n, d uint8) float64 {
	pulse := 0.0
	if p1+p2 > 0 {
		pulse = 95.88 / (8128.0/float64(p1+p2) + 100.0)
	}
	tnd := 0.0
	if t > 0 || n > 0 || d > 0 {
		tnd = 159.79 / (1.0/(float64(t)/8227.0+float64(n)/12241.0+float64(d)/22638.0) + 100.0)
	}
	return pulse + tnd
}

// WriteRegister dispatches a CPU write to $4000-$4013, $4015 or $4017.
func (a *APU) WriteRegister(addr uint16, val uint8) {
	switch addr {
	case 0x4000:
		a.Pulse1.writeCtrl(val)
	case 0x4001:
		a.Pulse1.writeSweep(val)
	case 0x4002:
		a.Pulse1.writeTimerLo(val)
	case 0x4003:
		a.Pulse1.writeTimerHi(val)
	case 0x4004:
		a.Pulse2.writeCtrl(val)
	case 0x4005:
		a.Pulse2.writeSweep(val)
	case 0x4006:
		a.Pulse2.writeTimerLo(val)
	case 0x4007:
		a.Pulse2.writeTimerHi(val)
	case 0x4008:
		a.Triangle.writeLinear(val)
	case 0x400A:
		a.Triangle.writeTimerLo(val)
	case 0x400B:
		a.Triangle.writeTimerHi(val)
	case 0x400C:
		a.Noise.writeCtrl(val)
	case 0x400E:
		a.Noise.writePeriod(val)
	case 0x400F:
		a.Noise.writeLength(val)
	case 0x4010:
		a.DMC.writeCtrl(val)
	case 0x4011:
		a.DMC.writeValue(val)
	case 0x4012:
		a.DMC.writeAddr(val)
	case 0x4013:
		a.DMC.writeLength(val)
	case 0x4015:
		a.writeStatus(val)
	case 0x4017:
		a.writeFrameCounter(val)
	}
}

// $4015 write: per-channel enables. Disabling a channel clears its
// length counter; enabling the DMC restarts its sample if exhausted.
func (a *APU) writeStatus(val uint8) {
	log.ModSound.DebugZ("write status").Hex8("val", val).End()

	// Any $4015 write acknowledges a pending DMC interrupt.
	a.DMC.clearIRQ()

	a.Pulse1.lc.setEnabled(val&0x01 != 0)
	a.Pulse2.lc.setEnabled(val&0x02 != 0)
	a.Triangle.lc.setEnabled(val&0x04 != 0)
	a.Noise.lc.setEnabled(val&0x08 != 0)
	a.DMC.setEnabled(val&0x10 != 0)
}

// ReadStatus implements the $4015 read: length-counter activity bits plus
// the two interrupt flags. Reading acknowledges the frame counter IRQ.
func (a *APU) ReadStatus() uint8 {
	var st uint8
	if a.Pulse1.lc.active() {
		st |= 0x01
	}
	if a.Pulse2.lc.active() {
		st |= 0x02
	}
	if a.Triangle.lc.active() {
		st |= 0x04
	}
	if a.Noise.lc.active() {
		st |= 0x08
	}
	if a.DMC.currentLen > 0 {
		st |= 0x10
	}
	if a.fc.irq {
		st |= 0x40
	}
	if a.DMC.irq {
		st |= 0x80
	}

	a.fc.irq = false
	a.cpu.ClearIRQSource(hwdefs.FrameCounter)
	return st
}

func (a *APU) SaveState(state *snapshot.APU) {
	a.Pulse1.saveState(&state.Pulse1)
	a.Pulse2.saveState(&state.Pulse2)
	a.Triangle.saveState(&state.Triangle)
	a.Noise.saveState(&state.Noise)
	a.DMC.saveState(&state.DMC)
	state.FrameMode5 = a.fc.mode5
	state.FrameInhibit = a.fc.inhibit
	state.FrameCycle = a.fc.cycle
	state.FrameIRQ = a.fc.irq
	state.SampleCursor = a.frameCycle
}

func (a *APU) SetState(state *snapshot.APU) {
	a.Pulse1.setState(&state.Pulse1)
	a.Pulse2.setState(&state.Pulse2)
	a.Triangle.setState(&state.Triangle)
	a.Noise.setState(&state.Noise)
	a.DMC.setState(&state.DMC)
	a.fc.mode5 = state.FrameMode5
	a.fc.inhibit = state.FrameInhibit
	a.fc.cycle = state.FrameCycle
	a.fc.irq = state.FrameIRQ
	a.frameCycle = state.SampleCursor
}
