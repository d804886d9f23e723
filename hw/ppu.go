package hw

import (
	"image"

	"famigo/emu/log"
	"famigo/hw/snapshot"
	"famigo/ines"
)

const (
	NumScanlines = 262 // scanlines per frame, pre-render included
	NumDots      = 341 // PPU cycles per scanline
)

// PPU is the NES picture processing unit. It renders dot by dot: 341 dots
// per scanline, 262 scanlines per frame, three dots per CPU cycle. The
// scanline counter runs from -1 (pre-render) to 260 (last vblank line).
type PPU struct {
	mapper PPUMem
	cpu    *CPU

	Scanline int // -1 to 260
	Dot      int // 0 to 340
	Frame    uint64

	nt      [2048]uint8 // internal nametable RAM
	extraNT [2048]uint8 // cartridge VRAM, four-screen boards only
	palette [32]uint8
	oam     [256]uint8
	secOAM  [32]uint8

	front *image.RGBA
	back  *image.RGBA

	// Internal registers. v is the current VRAM address, t the temporary
	// one, x the fine X scroll and w the shared write toggle of $2005/$2006.
	v uint16
	t uint16
	x uint8
	w bool

	// PPUCTRL
	ctrl         uint8
	vramIncr32   bool
	spriteTable  uint16
	bgTable      uint16
	spriteSize16 bool
	nmiOutput    bool

	// PPUMASK
	greyscale       bool
	showLeftBg      bool
	showLeftSprites bool
	showBg          bool
	showSprites     bool
	emphasis        uint8

	// PPUSTATUS
	nmiOccurred    bool // vblank flag
	sprite0Hit     bool
	spriteOverflow bool

	oamAddr    uint8
	readBuffer uint8
	register   uint8 // last value on the PPU data bus

	// Background pipeline: latched fetch bytes feeding two 16-bit pattern
	// shifters and their attribute companions.
	ntByte     uint8
	atByte     uint8
	tileLo     uint8
	tileHi     uint8
	bgShiftLo  uint16
	bgShiftHi  uint16
	atShiftLo  uint16
	atShiftHi  uint16

	// Sprite pipeline: up to eight sprites with per-sprite pattern
	// shifters, attribute byte and X counter.
	spriteCount   int
	spriteShiftLo [8]uint8
	spriteShiftHi [8]uint8
	spriteAttr    [8]uint8
	spriteX       [8]uint8
	spriteIndex   [8]uint8
	secCursor     int
}

func NewPPU(mapper PPUMem, cpu *CPU) *PPU {
	p := &PPU{
		mapper: mapper,
		cpu:    cpu,
		front:  image.NewRGBA(image.Rect(0, 0, 256, 240)),
		back:   image.NewRGBA(image.Rect(0, 0, 256, 240)),
	}
	return p
}

// Output returns the last completed frame.
func (p *PPU) Output() *image.RGBA { return p.front }

func (p *PPU) Reset() {
	p.writeCtrl(0)
	p.writeMask(0)
	p.w = false
	p.readBuffer = 0
	p.oamAddr = 0
	p.Scanline = 0
	p.Dot = 0
}

func (p *PPU) renderingEnabled() bool {
	return p.showBg || p.showSprites
}

// tick advances the dot counter. The pre-render line of odd frames is one
// dot short when rendering is enabled.
func (p *PPU) tick() {
	if p.renderingEnabled() && p.Scanline == -1 && p.Dot == 339 && p.Frame&1 == 1 {
		p.Dot = 0
		p.Scanline = 0
		return
	}
	p.Dot++
	if p.Dot >= NumDots {
		p.Dot = 0
		p.Scanline++
		if p.Scanline > 260 {
			p.Scanline = -1
			p.Frame++
		}
	}
}

// Step advances the PPU by one dot.
func (p *PPU) Step() {
	p.tick()

	rendering := p.renderingEnabled()
	visible := p.Scanline >= 0 && p.Scanline < 240
	pre := p.Scanline == -1

	if rendering && (visible || pre) {
		if (p.Dot >= 2 && p.Dot <= 257) || (p.Dot >= 321 && p.Dot <= 337) {
			p.shiftBackground()
			switch (p.Dot - 1) % 8 {
			case 0:
				p.loadShifters()
				p.ntByte = p.read(0x2000 | p.v&0x0FFF)
			case 2:
				p.fetchAttribute()
			case 4:
				p.tileLo = p.read(p.tileAddr())
			case 6:
				p.tileHi = p.read(p.tileAddr() + 8)
			case 7:
				p.incrementX()
			}
		}
		if p.Dot == 256 {
			p.incrementY()
		}
		if p.Dot == 257 {
			p.loadShifters()
			p.copyX()
		}
		if p.Dot == 338 || p.Dot == 340 {
			// dummy nametable fetches closing the scanline
			p.ntByte = p.read(0x2000 | p.v&0x0FFF)
		}
		if pre && p.Dot >= 280 && p.Dot <= 304 {
			p.copyY()
		}

		if p.Dot == 257 {
			if visible {
				p.evaluateSprites()
			} else {
				p.spriteCount = 0
			}
		}
	}

	if visible && p.Dot >= 1 && p.Dot <= 256 {
		p.renderPixel()
	}

	if p.Scanline == 241 && p.Dot == 1 {
		p.setVBlank()
	}
	if pre && p.Dot == 1 {
		p.nmiOccurred = false
		p.sprite0Hit = false
		p.spriteOverflow = false
	}
}

/* background pipeline */

func (p *PPU) shiftBackground() {
	p.bgShiftLo <<= 1
	p.bgShiftHi <<= 1
	p.atShiftLo <<= 1
	p.atShiftHi <<= 1
}

// loadShifters moves the latched tile into the low byte of the shifters.
// The attribute shifters get eight copies of their bit so that the same
// bit index selects pattern and palette.
func (p *PPU) loadShifters() {
	p.bgShiftLo = p.bgShiftLo&0xFF00 | uint16(p.tileLo)
	p.bgShiftHi = p.bgShiftHi&0xFF00 | uint16(p.tileHi)
	lo, hi := uint16(0), uint16(0)
	if p.atByte&1 != 0 {
		lo = 0xFF
	}
	if p.atByte&2 != 0 {
		hi = 0xFF
	}
	p.atShiftLo = p.atShiftLo&0xFF00 | lo
	p.atShiftHi = p.atShiftHi&0xFF00 | hi
}

func (p *PPU) fetchAttribute() {
	addr := 0x23C0 | p.v&0x0C00 | p.v>>4&0x38 | p.v>>2&0x07
	shift := p.v >> 4 & 4 | p.v & 2
	p.atByte = p.read(addr) >> shift & 3
}

func (p *PPU) tileAddr() uint16 {
	fineY := p.v >> 12 & 7
	return p.bgTable + uint16(p.ntByte)*16 + fineY
}

func (p *PPU) backgroundPixel() uint8 {
	if !p.showBg {
		return 0
	}
	mux := uint16(0x8000) >> p.x
	var px uint8
	if p.bgShiftLo&mux != 0 {
		px |= 1
	}
	if p.bgShiftHi&mux != 0 {
		px |= 2
	}
	var pal uint8
	if p.atShiftLo&mux != 0 {
		pal |= 1
	}
	if p.atShiftHi&mux != 0 {
		pal |= 2
	}
	return pal<<2 | px
}

func (p *PPU) renderPixel() {
	x := p.Dot - 1
	y := p.Scanline

	bg := p.backgroundPixel()
	i, sp := p.spritePixel(x)

	if x < 8 && !p.showLeftBg {
		bg = 0
	}
	if x < 8 && !p.showLeftSprites {
		sp = 0
	}

	b := bg&3 != 0
	s := sp&3 != 0

	var color uint8
	switch {
	case !b && !s:
		color = 0
	case !b && s:
		color = sp | 0x10
	case b && !s:
		color = bg
	default:
		// Sprite 0 hit needs both layers opaque, and never fires on the
		// first or last visible dot.
		if p.spriteIndex[i] == 0 && x >= 1 && x < 255 {
			p.sprite0Hit = true
		}
		if p.spriteAttr[i]&0x20 == 0 {
			color = sp | 0x10
		} else {
			color = bg
		}
	}

	idx := p.readPalette(uint16(color)) & 0x3F
	if p.greyscale {
		idx &= 0x30
	}
	p.back.SetRGBA(x, y, masterPalette[idx])
}

/* scrolling, the loopy way */

func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400 // next horizontal nametable
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
	} else {
		p.v &^= 0x7000
		y := p.v >> 5 & 0x1F
		switch y {
		case 29:
			y = 0
			p.v ^= 0x0800 // next vertical nametable
		case 31:
			y = 0 // out of bounds, no nametable switch
		default:
			y++
		}
		p.v = p.v&^0x03E0 | y<<5
	}
}

func (p *PPU) copyX() {
	// v: ....A.. ...BCDEF <- t: ....A.. ...BCDEF
	p.v = p.v&0xFBE0 | p.t&0x041F
}

func (p *PPU) copyY() {
	// v: GHIA.BC DEF..... <- t: GHIA.BC DEF.....
	p.v = p.v&0x841F | p.t&0x7BE0
}

/* vblank and NMI */

func (p *PPU) setVBlank() {
	p.front, p.back = p.back, p.front
	p.nmiOccurred = true
	if p.nmiOutput {
		p.cpu.TriggerNMI()
	}
}

/* CPU-visible registers */

// ReadReg reads one of the eight CPU-mapped registers at $2000-$2007.
func (p *PPU) ReadReg(addr uint16) uint8 {
	switch addr {
	case 0x2002:
		return p.readStatus()
	case 0x2004:
		return p.readOAMData()
	case 0x2007:
		return p.readData()
	}
	// Write-only registers read back the stale PPU data bus.
	return p.register
}

// WriteReg writes one of the eight CPU-mapped registers at $2000-$2007.
func (p *PPU) WriteReg(addr uint16, val uint8) {
	p.register = val
	switch addr {
	case 0x2000:
		p.writeCtrl(val)
	case 0x2001:
		p.writeMask(val)
	case 0x2003:
		p.oamAddr = val
	case 0x2004:
		p.oam[p.oamAddr] = val
		p.oamAddr++
	case 0x2005:
		p.writeScroll(val)
	case 0x2006:
		p.writeAddr(val)
	case 0x2007:
		p.writeData(val)
	}
}

// PPUCTRL: $2000
func (p *PPU) writeCtrl(val uint8) {
	p.ctrl = val
	p.vramIncr32 = val&0x04 != 0
	p.spriteTable = uint16(val&0x08) << 9 // 0 or $1000
	p.bgTable = uint16(val&0x10) << 8     // 0 or $1000
	p.spriteSize16 = val&0x20 != 0

	prev := p.nmiOutput
	p.nmiOutput = val&0x80 != 0
	if !prev && p.nmiOutput && p.nmiOccurred {
		// Toggling the NMI enable during vblank pulls the line low again.
		p.cpu.TriggerNMI()
	}
	if prev && !p.nmiOutput {
		// Disabling before the CPU sampled the edge drops the pending NMI.
		p.cpu.CancelNMI()
	}

	// t: ...BA.. ........ = d: ......BA
	p.t = p.t&0xF3FF | uint16(val&0x03)<<10
}

// PPUMASK: $2001
func (p *PPU) writeMask(val uint8) {
	p.greyscale = val&0x01 != 0
	p.showLeftBg = val&0x02 != 0
	p.showLeftSprites = val&0x04 != 0
	p.showBg = val&0x08 != 0
	p.showSprites = val&0x10 != 0
	p.emphasis = val >> 5
}

// PPUSTATUS: $2002. Reading clears the vblank flag and resets the
// $2005/$2006 write toggle.
func (p *PPU) readStatus() uint8 {
	val := p.register & 0x1F
	if p.spriteOverflow {
		val |= 1 << 5
	}
	if p.sprite0Hit {
		val |= 1 << 6
	}
	if p.nmiOccurred {
		val |= 1 << 7
	}
	p.nmiOccurred = false
	p.w = false
	return val
}

// PPUSCROLL: $2005
func (p *PPU) writeScroll(val uint8) {
	if !p.w {
		// t: ....... ...HGFED = d: HGFED...
		// x:              CBA = d: .....CBA
		p.t = p.t&0xFFE0 | uint16(val)>>3
		p.x = val & 0x07
	} else {
		// t: CBA..HG FED..... = d: HGFEDCBA
		p.t = p.t&0x8FFF | uint16(val&0x07)<<12
		p.t = p.t&0xFC1F | uint16(val&0xF8)<<2
	}
	p.w = !p.w
}

// PPUADDR: $2006
func (p *PPU) writeAddr(val uint8) {
	if !p.w {
		// t: .FEDCBA ........ = d: ..FEDCBA, bit 14 cleared
		p.t = p.t&0x00FF | uint16(val&0x3F)<<8
	} else {
		// t: ....... HGFEDCBA = d: HGFEDCBA, then v = t
		p.t = p.t&0xFF00 | uint16(val)
		p.v = p.t
	}
	p.w = !p.w
}

// PPUDATA: $2007 (read). Reads below the palette go through the internal
// read buffer; palette reads are immediate but still refresh the buffer
// with the nametable byte underneath.
func (p *PPU) readData() uint8 {
	addr := p.v & 0x3FFF
	var val uint8
	if addr < 0x3F00 {
		val = p.readBuffer
		p.readBuffer = p.read(addr)
	} else {
		val = p.read(addr)
		p.readBuffer = p.read(addr - 0x1000)
	}
	p.incrementV()
	return val
}

// PPUDATA: $2007 (write)
func (p *PPU) writeData(val uint8) {
	p.write(p.v&0x3FFF, val)
	p.incrementV()
}

// incrementV bumps v by 1 or 32 after each PPUDATA access, per PPUCTRL
// bit 2.
func (p *PPU) incrementV() {
	if p.vramIncr32 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x7FFF
}

// OAMDATA: $2004 (read). During rendering the OAM bus is busy with sprite
// evaluation, reads observe secondary OAM instead.
func (p *PPU) readOAMData() uint8 {
	if p.renderingEnabled() && p.Scanline >= 0 && p.Scanline < 240 {
		if p.Dot >= 1 && p.Dot <= 64 {
			return 0xFF // secondary OAM clear phase
		}
		return p.secOAM[p.secCursor&0x1F]
	}
	val := p.oam[p.oamAddr]
	if p.oamAddr&3 == 2 {
		val &= 0xE3 // attribute bits 2-4 don't exist
	}
	return val
}

/* PPU address space */

// Nametable bank selection per mirroring mode, for the four logical
// nametables at $2000, $2400, $2800 and $2C00. Banks 2 and 3 live in
// cartridge VRAM and only four-screen boards select them.
var ntBanks = [5][4]uint16{
	ines.HorzMirroring: {0, 0, 1, 1},
	ines.VertMirroring: {0, 1, 0, 1},
	ines.OnlyAScreen:   {0, 0, 0, 0},
	ines.OnlyBScreen:   {1, 1, 1, 1},
	ines.FourScreen:    {0, 1, 2, 3},
}

func (p *PPU) ntSlot(addr uint16) (*[2048]uint8, uint16) {
	rel := addr & 0x0FFF
	bank := ntBanks[p.mapper.Mirroring()][rel>>10]
	off := rel & 0x03FF
	if bank >= 2 {
		return &p.extraNT, (bank-2)<<10 | off
	}
	return &p.nt, bank<<10 | off
}

func (p *PPU) read(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.mapper.NotifyA12(addr&0x1000 != 0)
		return p.mapper.CHRRead(addr)
	case addr < 0x3F00:
		bank, off := p.ntSlot(addr)
		return bank[off]
	default:
		return p.readPalette(addr)
	}
}

func (p *PPU) write(addr uint16, val uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.mapper.NotifyA12(addr&0x1000 != 0)
		p.mapper.CHRWrite(addr, val)
	case addr < 0x3F00:
		bank, off := p.ntSlot(addr)
		bank[off] = val
	default:
		p.writePalette(addr, val)
	}
}

// paletteIndex folds the $3F00-$3FFF range onto the 32 bytes of palette
// RAM; the mirror entries $3F10/$3F14/$3F18/$3F1C are structurally the
// same cells as $3F00/$3F04/$3F08/$3F0C.
func paletteIndex(addr uint16) uint16 {
	addr &= 0x1F
	if addr >= 0x10 && addr&3 == 0 {
		addr -= 0x10
	}
	return addr
}

func (p *PPU) readPalette(addr uint16) uint8 {
	return p.palette[paletteIndex(addr)]
}

func (p *PPU) writePalette(addr uint16, val uint8) {
	p.palette[paletteIndex(addr)] = val
}

/* save states */

func (p *PPU) SaveState(state *snapshot.PPU) {
	state.V = p.v
	state.T = p.t
	state.X = p.x
	state.W = p.w
	state.Ctrl = p.ctrl
	state.Mask = p.maskBits()
	state.OAMAddr = p.oamAddr
	state.ReadBuf = p.readBuffer
	state.OpenBus = p.register
	state.Scanline = p.Scanline
	state.Dot = p.Dot
	state.Frame = p.Frame
	state.VBlank = p.nmiOccurred
	state.SpriteZeroHit = p.sprite0Hit
	state.SpriteOverflow = p.spriteOverflow
	state.NMIOutput = p.nmiOutput
	state.Palette = p.palette
	state.Nametable = p.nt
	state.ExtraNT = p.extraNT
	state.OAM = p.oam
	state.SecOAM = p.secOAM
}

func (p *PPU) SetState(state *snapshot.PPU) {
	p.writeCtrl(state.Ctrl)
	p.writeMask(state.Mask)
	p.v = state.V
	p.t = state.T
	p.x = state.X
	p.w = state.W
	p.oamAddr = state.OAMAddr
	p.readBuffer = state.ReadBuf
	p.register = state.OpenBus
	p.Scanline = state.Scanline
	p.Dot = state.Dot
	p.Frame = state.Frame
	p.nmiOccurred = state.VBlank
	p.sprite0Hit = state.SpriteZeroHit
	p.spriteOverflow = state.SpriteOverflow
	p.nmiOutput = state.NMIOutput
	p.palette = state.Palette
	p.nt = state.Nametable
	p.extraNT = state.ExtraNT
	p.oam = state.OAM
	p.secOAM = state.SecOAM

	log.ModPPU.DebugZ("restored state").
		Int("scanline", p.Scanline).
		Int("dot", p.Dot).
		Uint64("frame", p.Frame).
		End()
}

func (p *PPU) maskBits() uint8 {
	var val uint8
	if p.greyscale {
		val |= 0x01
	}
	if p.showLeftBg {
		val |= 0x02
	}
	if p.showLeftSprites {
		val |= 0x04
	}
	if p.showBg {
		val |= 0x08
	}
	if p.showSprites {
		val |= 0x10
	}
	return val | p.emphasis<<5
}
