package apu

import (
	"math"
	"testing"

	"famigo/hw/hwdefs"
)

// stubCPU records IRQ line changes and serves DMC fetches from a flat
// memory image.
type stubCPU struct {
	irq   hwdefs.IRQSource
	stall int
	mem   [0x10000]byte
}

func (s *stubCPU) SetIRQSource(src hwdefs.IRQSource)      { s.irq |= src }
func (s *stubCPU) ClearIRQSource(src hwdefs.IRQSource)    { s.irq &^= src }
func (s *stubCPU) HasIRQSource(src hwdefs.IRQSource) bool { return s.irq&src != 0 }
func (s *stubCPU) AddStall(n int)                         { s.stall += n }
func (s *stubCPU) ReadMem(addr uint16) uint8              { return s.mem[addr] }

func newTestAPU() (*APU, *stubCPU) {
	cpu := &stubCPU{}
	return New(cpu, NewMixer()), cpu
}

func TestFrameIRQIn4StepMode(t *testing.T) {
	a, cpu := newTestAPU()

	for range 29827 {
		a.Step()
	}
	if cpu.HasIRQSource(hwdefs.FrameCounter) {
		t.Fatal("frame IRQ asserted before the end of the sequence")
	}
	a.Step() // cycle 29828
	if !cpu.HasIRQSource(hwdefs.FrameCounter) {
		t.Fatal("no frame IRQ at the end of the 4-step sequence")
	}

	// $4015 read reports and acknowledges it.
	if st := a.ReadStatus(); st&0x40 == 0 {
		t.Error("status bit 6 clear, want set")
	}
	if st := a.ReadStatus(); st&0x40 != 0 {
		t.Error("frame IRQ not acknowledged by status read")
	}
	if cpu.HasIRQSource(hwdefs.FrameCounter) {
		t.Error("IRQ line still asserted after acknowledge")
	}
}

func TestNoFrameIRQIn5StepMode(t *testing.T) {
	a, cpu := newTestAPU()
	a.WriteRegister(0x4017, 0x80)

	for range 40000 {
		a.Step()
	}
	if cpu.HasIRQSource(hwdefs.FrameCounter) {
		t.Error("frame IRQ asserted in 5-step mode")
	}
}

func TestFrameIRQInhibit(t *testing.T) {
	a, cpu := newTestAPU()
	a.WriteRegister(0x4017, 0x40)

	for range 30000 {
		a.Step()
	}
	if cpu.HasIRQSource(hwdefs.FrameCounter) {
		t.Error("frame IRQ asserted with the inhibit flag set")
	}
}

func TestLengthCounterLoadAndCount(t *testing.T) {
	a, _ := newTestAPU()
	a.WriteRegister(0x4015, 0x01)    // enable pulse 1
	a.WriteRegister(0x4003, 0x01<<3) // length index 1 -> 254
	if got := a.Pulse1.lc.value; got != 254 {
		t.Fatalf("length = %d, want 254", got)
	}

	// Two half-frame clocks per 4-step sequence.
	for range 29828 {
		a.Step()
	}
	if got := a.Pulse1.lc.value; got != 252 {
		t.Errorf("length = %d after one sequence, want 252", got)
	}
}

func TestLengthCounterIgnoredWhenDisabled(t *testing.T) {
	a, _ := newTestAPU()
	a.WriteRegister(0x4003, 0x01<<3)
	if got := a.Pulse1.lc.value; got != 0 {
		t.Errorf("length = %d with channel disabled, want 0", got)
	}
}

func TestDisablingChannelClearsLength(t *testing.T) {
	a, _ := newTestAPU()
	a.WriteRegister(0x4015, 0x01)
	a.WriteRegister(0x4003, 0x01<<3)
	a.WriteRegister(0x4015, 0x00)
	if got := a.Pulse1.lc.value; got != 0 {
		t.Errorf("length = %d after disable, want 0", got)
	}
	if st := a.ReadStatus(); st&0x01 != 0 {
		t.Error("status reports pulse 1 active after disable")
	}
}

func TestPulseMuting(t *testing.T) {
	var p pulse
	p.channel = 1
	p.lc.enabled = true
	p.duty = 2
	p.dutyPos = 1 // duty 50% outputs 1 at position 1
	p.env.constant = true
	p.env.period = 10
	p.lc.value = 5

	p.timerPeriod = 7 // below 8: muted
	if got := p.output(); got != 0 {
		t.Errorf("output = %d with timer < 8, want 0", got)
	}

	p.timerPeriod = 100
	if got := p.output(); got != 10 {
		t.Errorf("output = %d, want 10", got)
	}

	p.lc.value = 0
	if got := p.output(); got != 0 {
		t.Errorf("output = %d with length 0, want 0", got)
	}
}

func TestNoiseLFSRPeriod(t *testing.T) {
	var n noise
	n.lfsr = 1

	// In long mode the LFSR cycles through 32767 states.
	seen := n.lfsr
	steps := 0
	for {
		n.tickLFSR()
		steps++
		if n.lfsr == seen {
			break
		}
		if steps > 1<<16 {
			t.Fatal("LFSR did not cycle")
		}
	}
	if steps != 32767 {
		t.Errorf("LFSR period = %d, want 32767", steps)
	}
}

func TestTriangleLinearCounter(t *testing.T) {
	var tr triangle
	tr.lc.enabled = true

	tr.writeLinear(0x05)  // control clear, reload 5
	tr.writeTimerHi(0x08) // sets the reload flag, length index 1

	tr.tickLinear()
	if tr.linearValue != 5 {
		t.Fatalf("linear = %d after reload, want 5", tr.linearValue)
	}
	if tr.linearFlag {
		t.Fatal("reload flag survives with control clear")
	}
	tr.tickLinear()
	if tr.linearValue != 4 {
		t.Errorf("linear = %d, want 4", tr.linearValue)
	}
}

func TestDMCFetchStallsAndIRQ(t *testing.T) {
	a, cpu := newTestAPU()
	for i := range cpu.mem[:] {
		cpu.mem[i] = 0xFF
	}

	a.WriteRegister(0x4010, 0x8F) // IRQ enabled, fastest rate
	a.WriteRegister(0x4012, 0x00) // sample at $C000
	a.WriteRegister(0x4013, 0x00) // length 1
	a.WriteRegister(0x4015, 0x10) // enable DMC

	for range 300 {
		a.Step()
	}
	if cpu.stall == 0 {
		t.Error("DMC fetch did not stall the CPU")
	}
	if !cpu.HasIRQSource(hwdefs.DMC) {
		t.Error("no DMC IRQ after the sample ran out")
	}

	// $4015 write acknowledges it.
	a.WriteRegister(0x4015, 0x00)
	if cpu.HasIRQSource(hwdefs.DMC) {
		t.Error("DMC IRQ still asserted after $4015 write")
	}
}

func TestMixerFormula(t *testing.T) {
	if got := mix(0, 0, 0, 0, 0); got != 0 {
		t.Errorf("mix(silence) = %v, want 0", got)
	}

	// Full-scale pulses: 95.88 / (8128/30 + 100).
	want := 95.88 / (8128.0/30.0 + 100.0)
	if got := mix(15, 15, 0, 0, 0); math.Abs(got-want) > 1e-9 {
		t.Errorf("mix(pulses) = %v, want %v", got, want)
	}

	// Triangle alone.
	want = 159.79 / (1.0/(15.0/8227.0) + 100.0)
	if got := mix(0, 0, 15, 0, 0); math.Abs(got-want) > 1e-9 {
		t.Errorf("mix(triangle) = %v, want %v", got, want)
	}
}

func TestSamplesPerFrame(t *testing.T) {
	a, _ := newTestAPU()

	// Make some noise so the blip buffer sees deltas.
	a.WriteRegister(0x4015, 0x01)
	a.WriteRegister(0x4000, 0xBF) // duty 50%, constant volume 15
	a.WriteRegister(0x4002, 0x80)
	a.WriteRegister(0x4003, 0x08)

	for range 29780 {
		a.Step()
	}
	a.EndFrame()

	samples := a.mixer.Drain()
	if len(samples) < 700 || len(samples) > 760 {
		t.Errorf("%d samples per frame, want ~735", len(samples))
	}
}
