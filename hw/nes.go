// Package hw emulates the NES hardware: the 2A03 CPU, the PPU, the APU,
// the cartridge mappers and the bus tying them together on a single
// deterministic clock.
package hw

import (
	"image"

	"famigo/emu/log"
	"famigo/hw/apu"
	"famigo/hw/hwdefs"
	"famigo/hw/snapshot"
)

const snapshotVersion = 1

// NES is the owning hub. Simulated time only advances through Tick: the
// CPU executes one instruction, then the PPU runs three dots and the APU
// one cycle for every CPU cycle consumed. The ordering is fixed, which
// makes whole runs reproducible.
type NES struct {
	Bus    *Bus
	CPU    *CPU
	PPU    *PPU
	APU    *apu.APU
	Mapper Mapper
	Cart   *Cartridge

	mixer *apu.Mixer
}

// PowerUp wires a console around the given cartridge and mapper and puts
// every component in its documented power-on state.
func PowerUp(cart *Cartridge, mapper Mapper) *NES {
	bus := &Bus{
		Mapper:      mapper,
		Controller1: NewController(),
		Controller2: NewController(),
	}
	cpu := NewCPU(bus)
	ppu := NewPPU(mapper, cpu)
	mixer := apu.NewMixer()

	bus.CPU = cpu
	bus.PPU = ppu
	bus.APU = apu.New(cpu, mixer)

	nes := &NES{
		Bus:    bus,
		CPU:    cpu,
		PPU:    ppu,
		APU:    bus.APU,
		Mapper: mapper,
		Cart:   cart,
		mixer:  mixer,
	}
	cpu.Reset()

	log.ModEmu.InfoZ("power up").
		Hex16("PC", cpu.PC).
		String("mirroring", mapper.Mirroring().String()).
		End()
	return nes
}

// Tick executes one CPU instruction and advances the PPU and APU in
// lockstep. Returns the CPU cycles consumed, or the error that must stop
// the run loop.
func (n *NES) Tick() (int, error) {
	cycles, err := n.CPU.Step()
	if err != nil {
		return cycles, err
	}

	for range cycles * 3 {
		n.PPU.Step()
	}
	for range cycles {
		n.APU.Step()
	}
	n.Mapper.Step(int64(cycles))

	// The mapper IRQ line is level-driven: mirror it into the CPU's
	// wired-OR sources every tick.
	if n.Mapper.IRQPending() {
		n.CPU.SetIRQSource(hwdefs.External)
	} else {
		n.CPU.ClearIRQSource(hwdefs.External)
	}

	return cycles, nil
}

// RunFrame ticks until the PPU finishes the current frame, then flushes
// the audio frame.
func (n *NES) RunFrame() error {
	frame := n.PPU.Frame
	for n.PPU.Frame == frame {
		if _, err := n.Tick(); err != nil {
			return err
		}
	}
	n.APU.EndFrame()
	return nil
}

// Reset performs a soft reset: CPU back to the reset vector, PPU and APU
// reinitialized, RAM and cartridge memory preserved.
func (n *NES) Reset() {
	n.CPU.Reset()
	n.PPU.Reset()
	n.APU.Reset()
	log.ModEmu.InfoZ("reset").Hex16("PC", n.CPU.PC).End()
}

// Frame returns the last completed frame.
func (n *NES) Frame() *image.RGBA { return n.PPU.Output() }

// Samples drains the audio output queue.
func (n *NES) Samples() []int16 { return n.mixer.Drain() }

// SetButtons feeds the host input snapshot of one controller, bit 0 = A.
func (n *NES) SetButtons(pad int, buttons uint8) {
	switch pad {
	case 0:
		n.Bus.Controller1.SetButtons(buttons)
	case 1:
		n.Bus.Controller2.SetButtons(buttons)
	}
}

// SaveState captures the console state at the current instruction
// boundary: registers and memories of every component, without the PPU's
// in-flight rendering pipeline (see package snapshot for what is left out).
func (n *NES) SaveState() *snapshot.NES {
	state := &snapshot.NES{Version: snapshotVersion}
	n.CPU.SaveState(&state.CPU)
	n.PPU.SaveState(&state.PPU)
	n.APU.SaveState(&state.APU)
	state.RAM = n.Bus.RAM
	n.Mapper.SaveState(&state.Mapper)
	n.Bus.Controller1.SaveState(&state.Controllers[0])
	n.Bus.Controller2.SaveState(&state.Controllers[1])

	fb := n.PPU.Output()
	state.FrameBuffer = append([]byte(nil), fb.Pix...)
	return state
}

// RestoreState restores a snapshot previously taken with SaveState.
func (n *NES) RestoreState(state *snapshot.NES) {
	n.PPU.SetState(&state.PPU)
	n.APU.SetState(&state.APU)
	n.Bus.RAM = state.RAM
	n.Mapper.SetState(&state.Mapper)
	n.Bus.Controller1.SetState(&state.Controllers[0])
	n.Bus.Controller2.SetState(&state.Controllers[1])
	// The CPU comes last: restoring other components must not leave
	// stray interrupt requests behind.
	n.CPU.SetState(&state.CPU)

	if len(state.FrameBuffer) == len(n.PPU.Output().Pix) {
		copy(n.PPU.Output().Pix, state.FrameBuffer)
	}
}
