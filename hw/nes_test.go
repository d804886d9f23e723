package hw

import (
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
)

// ppuPos returns the PPU position as an absolute dot count, valid while
// rendering is disabled (no odd-frame skip).
func ppuPos(p *PPU) uint64 {
	return p.Frame*NumScanlines*NumDots + uint64(p.Scanline+1)*NumDots + uint64(p.Dot)
}

// One Bus tick advances the PPU by exactly three dots and the APU by one
// cycle per CPU cycle.
func TestTickRatio(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA, 0xEA, 0xEA, 0xEA)

	for range 4 {
		before := ppuPos(nes.PPU)
		cycles, err := nes.Tick()
		if err != nil {
			t.Fatal(err)
		}
		if got := ppuPos(nes.PPU) - before; got != uint64(cycles)*3 {
			t.Fatalf("PPU advanced %d dots for %d CPU cycles, want %d",
				got, cycles, cycles*3)
		}
	}
}

func TestVBlankTiming(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA) // NOPs; PRG zero-fill would decode BRK
	m := nes.Mapper.(*testMapper)
	for i := range m.prg[:0x4000] {
		m.prg[i] = 0xEA
	}

	for !nes.PPU.nmiOccurred {
		if _, err := nes.Tick(); err != nil {
			t.Fatal(err)
		}
	}

	// Vblank starts at scanline 241 dot 1, which is 241*341+1 dots into
	// the frame, around CPU cycle 27394. Allow one scanline of slack for
	// instruction granularity.
	got := nes.CPU.Cycles
	if got < 27380 || got > 27530 {
		t.Errorf("vblank entered at CPU cycle %d, want ~27394", got)
	}
}

func TestFrameAdvance(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	m := nes.Mapper.(*testMapper)
	for i := range m.prg[:0x4000] {
		m.prg[i] = 0xEA
	}

	// 29780 CPU cycles is one frame of 89341 dots, give or take.
	for nes.CPU.Cycles < 29780 {
		if _, err := nes.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	if nes.PPU.Frame < 1 {
		t.Errorf("frame = %d after 29780 CPU cycles, want >= 1", nes.PPU.Frame)
	}
}

func TestRunFrameProducesAudio(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	m := nes.Mapper.(*testMapper)
	for i := range m.prg[:0x4000] {
		m.prg[i] = 0xEA
	}

	if err := nes.RunFrame(); err != nil {
		t.Fatal(err)
	}
	samples := nes.Samples()

	// ~44100/60 mono samples per video frame.
	if len(samples) < 700 || len(samples) > 760 {
		t.Errorf("got %d samples per frame, want ~735", len(samples))
	}
}

func TestResetPreservesRAM(t *testing.T) {
	nes, _ := newTestNES(t, 0xA9, 0x42, 0x8D, 0x00, 0x02)
	step(t, nes)
	step(t, nes)

	nes.Reset()
	if nes.Bus.RAM[0x0200] != 0x42 {
		t.Error("RAM content lost across reset")
	}
	if nes.CPU.PC != 0x8000 {
		t.Errorf("PC = $%04X after reset, want $8000", nes.CPU.PC)
	}
}

func TestSaveRestoreState(t *testing.T) {
	nes, _ := newTestNES(t, 0xA9, 0x42, 0x8D, 0x00, 0x02, 0x4C, 0x00, 0x80)

	for range 100 {
		if _, err := nes.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	state := nes.SaveState()

	// Run further, then rewind.
	for range 100 {
		if _, err := nes.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	nes.RestoreState(state)

	if diff := gocmp.Diff(state, nes.SaveState()); diff != "" {
		t.Errorf("state mismatch after restore (-saved +restored):\n%s", diff)
	}
}
