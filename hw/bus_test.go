package hw

import (
	"testing"
)

func TestRAMMirroring(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	bus := nes.Bus

	bus.Write8(0x0042, 0xAB)
	for _, addr := range []uint16{0x0042, 0x0842, 0x1042, 0x1842} {
		if got := bus.Read8(addr); got != 0xAB {
			t.Errorf("Read8($%04X) = $%02X, want $AB", addr, got)
		}
	}

	// The whole 8KB window folds onto the low 2KB.
	for addr := uint16(0); addr < 0x2000; addr += 7 {
		if got, want := bus.Read8(addr), bus.Read8(addr&0x07FF); got != want {
			t.Fatalf("Read8($%04X) = $%02X, want $%02X", addr, got, want)
		}
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	bus := nes.Bus

	// Writing PPUADDR through a mirror at $3FF8+6 must have the same
	// visible effect as $2006.
	bus.Write8(0x3FFE, 0x21)
	bus.Write8(0x2006, 0x08)
	if nes.PPU.v != 0x2108 {
		t.Errorf("v = $%04X, want $2108", nes.PPU.v)
	}

	// Reading PPUSTATUS through a mirror clears vblank like $2002 does.
	nes.PPU.nmiOccurred = true
	bus.Read8(0x200A)
	if nes.PPU.nmiOccurred {
		t.Error("vblank flag still set after mirrored PPUSTATUS read")
	}
}

func TestOpenBusReads(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	bus := nes.Bus

	// $4018-$401F is undriven: reads return the last bus value.
	bus.Write8(0x0000, 0x5A)
	bus.Read8(0x0000)
	if got := bus.Read8(0x4018); got != 0x5A {
		t.Errorf("open bus read = $%02X, want $5A", got)
	}
}

func TestOAMDMA(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA, 0xEA)
	bus := nes.Bus

	for i := 0; i < 256; i++ {
		bus.RAM[0x0200+i] = uint8(i)
	}

	nes.CPU.Cycles = 8 // even
	bus.Write8(0x4014, 0x02)

	// The next step consumes the whole stall.
	cycles := step(t, nes)
	if cycles != 513 {
		t.Errorf("DMA stall = %d cycles, want 513", cycles)
	}

	// OAM now holds the page. Bytes at offset 2 of each sprite mask out
	// the nonexistent attribute bits on readback.
	for i := 0; i < 256; i++ {
		bus.Write8(0x2003, uint8(i))
		want := uint8(i)
		if i&3 == 2 {
			want &= 0xE3
		}
		if got := bus.Read8(0x2004); got != want {
			t.Fatalf("OAM[%d] = $%02X, want $%02X", i, got, want)
		}
	}
}

func TestOAMDMAOddCycleCostsOneMore(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA, 0xEA)

	nes.CPU.Cycles = 9 // odd
	nes.Bus.Write8(0x4014, 0x02)
	if cycles := step(t, nes); cycles != 514 {
		t.Errorf("DMA stall = %d cycles, want 514", cycles)
	}
}

func TestControllerReadSequence(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	bus := nes.Bus

	// A and Right pressed.
	nes.SetButtons(0, 0b1000_0001)
	bus.Write8(0x4016, 1)
	bus.Write8(0x4016, 0)

	want := []uint8{1, 0, 0, 0, 0, 0, 0, 1}
	for i, w := range want {
		if got := bus.Read8(0x4016) & 1; got != w {
			t.Errorf("read %d = %d, want %d", i, got, w)
		}
	}

	// Past the eighth bit, official pads report 1.
	if got := bus.Read8(0x4016) & 1; got != 1 {
		t.Error("read past bit 7 = 0, want 1")
	}
}
