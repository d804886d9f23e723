package hw

import (
	"testing"

	"famigo/ines"
)

// stepPPUTo advances the PPU alone until it reaches the given position.
func stepPPUTo(p *PPU, scanline, dot int) {
	for p.Scanline != scanline || p.Dot != dot {
		p.Step()
	}
}

func TestVBlankFlagSetAndCleared(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	bus := nes.Bus

	bus.Write8(0x2000, 0x00)
	bus.Write8(0x2001, 0x00)

	stepPPUTo(nes.PPU, 241, 1)

	// First read returns the vblank bit, and clears it.
	if got := bus.Read8(0x2002); got&0x80 == 0 {
		t.Error("vblank bit clear after scanline 241 dot 1")
	}
	if got := bus.Read8(0x2002); got&0x80 != 0 {
		t.Error("vblank bit still set on second PPUSTATUS read")
	}
}

func TestPreRenderClearsStatusFlags(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	p := nes.PPU

	stepPPUTo(p, 241, 1)
	p.sprite0Hit = true
	p.spriteOverflow = true

	stepPPUTo(p, -1, 1)
	if p.nmiOccurred || p.sprite0Hit || p.spriteOverflow {
		t.Errorf("status flags after pre-render dot 1: vblank=%v hit=%v overflow=%v",
			p.nmiOccurred, p.sprite0Hit, p.spriteOverflow)
	}
}

func TestVBlankNMI(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	nes.Bus.Write8(0x2000, 0x80) // NMI enable

	stepPPUTo(nes.PPU, 241, 1)
	if !nes.CPU.nmiPending {
		t.Error("no NMI latched at vblank start with PPUCTRL bit 7 set")
	}

	// Clearing bit 7 before the CPU sampled the edge drops it.
	nes.Bus.Write8(0x2000, 0x00)
	if nes.CPU.nmiPending {
		t.Error("NMI still latched after clearing PPUCTRL bit 7")
	}
}

func TestScrollRegisterWrites(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	bus := nes.Bus
	p := nes.PPU

	// $2005 first write: coarse X and fine X.
	bus.Write8(0x2005, 0x7D) // 0b01111_101
	if p.t&0x1F != 0x0F {
		t.Errorf("coarse X = %d, want 15", p.t&0x1F)
	}
	if p.x != 5 {
		t.Errorf("fine X = %d, want 5", p.x)
	}

	// Second write: coarse Y and fine Y.
	bus.Write8(0x2005, 0x5E) // 0b01011_110
	if got := p.t >> 5 & 0x1F; got != 0x0B {
		t.Errorf("coarse Y = %d, want 11", got)
	}
	if got := p.t >> 12 & 7; got != 6 {
		t.Errorf("fine Y = %d, want 6", got)
	}
	if p.w {
		t.Error("write toggle still set after the second write")
	}
}

// Writing PPUADDR high then low and then reading PPUSTATUS must not
// corrupt v: the status read only resets the write toggle.
func TestAddrThenStatusKeepsV(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	bus := nes.Bus

	bus.Write8(0x2006, 0x21)
	bus.Write8(0x2006, 0x08)
	bus.Read8(0x2002)

	if nes.PPU.v != 0x2108 {
		t.Errorf("v = $%04X, want $2108", nes.PPU.v)
	}
}

func TestVRAMIncrement(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	bus := nes.Bus

	bus.Write8(0x2000, 0x00) // +1
	bus.Write8(0x2006, 0x20)
	bus.Write8(0x2006, 0x00)
	bus.Write8(0x2007, 0xAA)
	if nes.PPU.v != 0x2001 {
		t.Errorf("v = $%04X, want $2001", nes.PPU.v)
	}

	bus.Write8(0x2000, 0x04) // +32
	bus.Write8(0x2007, 0xBB)
	if nes.PPU.v != 0x2021 {
		t.Errorf("v = $%04X, want $2021", nes.PPU.v)
	}
}

func TestPPUDATAReadBuffer(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	bus := nes.Bus

	// Write two bytes at $2000 (nametable RAM).
	bus.Write8(0x2006, 0x20)
	bus.Write8(0x2006, 0x00)
	bus.Write8(0x2007, 0x11)
	bus.Write8(0x2007, 0x22)

	// Rewind and read back: the first read returns the stale buffer.
	bus.Write8(0x2006, 0x20)
	bus.Write8(0x2006, 0x00)
	bus.Read8(0x2007) // garbage, fills buffer
	if got := bus.Read8(0x2007); got != 0x11 {
		t.Errorf("first buffered read = $%02X, want $11", got)
	}
	if got := bus.Read8(0x2007); got != 0x22 {
		t.Errorf("second buffered read = $%02X, want $22", got)
	}
}

func TestPaletteMirroring(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	p := nes.PPU

	p.writePalette(0x3F10, 0x2A)
	if got := p.readPalette(0x3F00); got != 0x2A {
		t.Errorf("palette $3F00 = $%02X, want $2A (via $3F10)", got)
	}
	p.writePalette(0x3F04, 0x17)
	if got := p.readPalette(0x3F14); got != 0x17 {
		t.Errorf("palette $3F14 = $%02X, want $17 (via $3F04)", got)
	}

	// Non-mirror entries stay distinct.
	p.writePalette(0x3F01, 0x01)
	p.writePalette(0x3F11, 0x02)
	if p.readPalette(0x3F01) == p.readPalette(0x3F11) {
		t.Error("$3F01 and $3F11 alias, want distinct")
	}
}

func TestNametableMirroring(t *testing.T) {
	nes, m := newTestNES(t, 0xEA)
	p := nes.PPU

	m.mirror = ines.HorzMirroring // $2000 and $2400 share a bank
	p.write(0x2005, 0x42)
	if got := p.read(0x2405); got != 0x42 {
		t.Errorf("horizontal: $2405 = $%02X, want $42", got)
	}
	if got := p.read(0x2805); got == 0x42 {
		t.Error("horizontal: $2805 aliases $2005, want distinct bank")
	}

	m.mirror = ines.VertMirroring // $2000 and $2800 share a bank
	p.write(0x2006, 0x24)
	if got := p.read(0x2806); got != 0x24 {
		t.Errorf("vertical: $2806 = $%02X, want $24", got)
	}
}

func TestOddFrameDotSkip(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	p := nes.PPU

	// Rendering enabled, odd frame: dot 340 of the pre-render line is
	// skipped.
	p.writeMask(0x08)
	p.Scanline, p.Dot, p.Frame = -1, 338, 1
	p.Step()
	if p.Scanline != -1 || p.Dot != 339 {
		t.Fatalf("at (%d,%d), want (-1,339)", p.Scanline, p.Dot)
	}
	p.Step()
	if p.Scanline != 0 || p.Dot != 0 {
		t.Errorf("at (%d,%d), want (0,0) after skip", p.Scanline, p.Dot)
	}

	// Even frame: the full 341 dots run.
	p.Scanline, p.Dot, p.Frame = -1, 338, 2
	p.Step()
	p.Step()
	if p.Scanline != -1 || p.Dot != 340 {
		t.Errorf("at (%d,%d), want (-1,340) without skip", p.Scanline, p.Dot)
	}

	// Rendering disabled: no skip either, whatever the frame parity.
	p.writeMask(0x00)
	p.Scanline, p.Dot, p.Frame = -1, 338, 3
	p.Step()
	p.Step()
	if p.Scanline != -1 || p.Dot != 340 {
		t.Errorf("at (%d,%d), want (-1,340) with rendering off", p.Scanline, p.Dot)
	}
}

func TestSpriteEvaluationLimit(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	p := nes.PPU

	// Nine sprites on scanline 50: eight selected, overflow set.
	for i := 0; i < 9; i++ {
		p.oam[i*4+0] = 50 // Y
		p.oam[i*4+1] = 1  // tile
		p.oam[i*4+2] = 0
		p.oam[i*4+3] = uint8(i * 8)
	}
	p.writeMask(0x18)
	p.Scanline = 50
	p.evaluateSprites()

	if p.spriteCount != 8 {
		t.Errorf("spriteCount = %d, want 8", p.spriteCount)
	}
	if !p.spriteOverflow {
		t.Error("sprite overflow clear, want set")
	}
}

func TestSpriteEvaluationNoOverflow(t *testing.T) {
	nes, _ := newTestNES(t, 0xEA)
	p := nes.PPU

	for i := 0; i < 8; i++ {
		p.oam[i*4+0] = 50
		p.oam[i*4+3] = uint8(i * 8)
	}
	for i := 8; i < 64; i++ {
		p.oam[i*4+0] = 0xF0 // offscreen
	}
	p.writeMask(0x18)
	p.Scanline = 50
	p.evaluateSprites()

	if p.spriteCount != 8 {
		t.Errorf("spriteCount = %d, want 8", p.spriteCount)
	}
	if p.spriteOverflow {
		t.Error("sprite overflow set with exactly 8 sprites in range")
	}
}

// The MMC3 A12 watch: a sequence of CHR accesses at $0000, $1000,
// $1000, $0000, $1000 produces exactly two rising edges.
func TestA12RisingEdges(t *testing.T) {
	nes, m := newTestNES(t, 0xEA)
	p := nes.PPU

	for _, addr := range []uint16{0x0000, 0x1000, 0x1000, 0x0000, 0x1000} {
		p.read(addr)
	}
	if m.a12Rises != 2 {
		t.Errorf("A12 rising edges = %d, want 2", m.a12Rises)
	}
}
