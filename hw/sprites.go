package hw

import (
	"math/bits"
)

// Sprite evaluation for the next scanline. Hardware spreads this over
// dots 65-256 (selection into secondary OAM) and 257-320 (pattern
// fetches); the model runs both phases at dot 257 with identical results,
// including the buggy overflow scan past the eighth sprite.
func (p *PPU) evaluateSprites() {
	h := 8
	if p.spriteSize16 {
		h = 16
	}

	for i := range p.secOAM {
		p.secOAM[i] = 0xFF
	}

	count := 0
	n := 0
	for ; n < 64; n++ {
		y := p.oam[n*4]
		row := p.Scanline - int(y)
		if row < 0 || row >= h {
			continue
		}
		copy(p.secOAM[count*4:count*4+4], p.oam[n*4:n*4+4])
		p.fetchSprite(count, n, row)
		count++
		if count == 8 {
			n++
			break
		}
	}
	p.spriteCount = count
	p.secCursor = count * 4

	// The dummy pattern fetches of unused sprite slots still drive the
	// A12 line, which MMC3 listens to.
	for i := count; i < 8; i++ {
		p.dummySpriteFetch()
	}

	if count == 8 {
		p.overflowScan(n, h)
	}
}

// overflowScan looks for a ninth in-range sprite the way the hardware
// does: after the eighth hit, the evaluation logic starts misindexing
// OAM, treating successive attribute/X bytes as Y coordinates. Games see
// both false positives and false negatives from this.
func (p *PPU) overflowScan(n, h int) {
	m := 0
	for ; n < 64; n++ {
		y := p.oam[n*4+m]
		row := p.Scanline - int(y)
		if row >= 0 && row < h {
			p.spriteOverflow = true
			return
		}
		m = (m + 1) & 3
	}
}

// fetchSprite loads the pattern shifters, attribute and X counter of
// sprite slot i from OAM entry n.
func (p *PPU) fetchSprite(i, n, row int) {
	tile := p.oam[n*4+1]
	attr := p.oam[n*4+2]

	var addr uint16
	if !p.spriteSize16 {
		if attr&0x80 != 0 {
			row = 7 - row // vertical flip
		}
		addr = p.spriteTable + uint16(tile)*16 + uint16(row)
	} else {
		if attr&0x80 != 0 {
			row = 15 - row
		}
		table := uint16(tile&1) * 0x1000
		tile &= 0xFE
		if row > 7 {
			tile++
			row -= 8
		}
		addr = table + uint16(tile)*16 + uint16(row)
	}

	lo := p.read(addr)
	hi := p.read(addr + 8)
	if attr&0x40 != 0 {
		lo = bits.Reverse8(lo) // horizontal flip
		hi = bits.Reverse8(hi)
	}

	p.spriteShiftLo[i] = lo
	p.spriteShiftHi[i] = hi
	p.spriteAttr[i] = attr
	p.spriteX[i] = p.oam[n*4+3]
	p.spriteIndex[i] = uint8(n)
}

// dummySpriteFetch performs the pattern fetch of an empty sprite slot.
// The hardware fetches tile $FF there, which selects the upper pattern
// table in 8x16 mode.
func (p *PPU) dummySpriteFetch() {
	addr := p.spriteTable + 0xFF0
	if p.spriteSize16 {
		addr = 0x1000 + 0xFF0
	}
	p.read(addr)
	p.read(addr + 8)
}

// spritePixel returns the sprite slot and 4-bit color of the frontmost
// opaque sprite pixel at x, or zeros when every sprite is transparent
// there.
func (p *PPU) spritePixel(x int) (int, uint8) {
	if !p.showSprites {
		return 0, 0
	}
	for i := 0; i < p.spriteCount; i++ {
		offset := x - int(p.spriteX[i])
		if offset < 0 || offset > 7 {
			continue
		}
		mux := uint8(0x80) >> offset
		var px uint8
		if p.spriteShiftLo[i]&mux != 0 {
			px |= 1
		}
		if p.spriteShiftHi[i]&mux != 0 {
			px |= 2
		}
		if px == 0 {
			continue
		}
		return i, p.spriteAttr[i]&3<<2 | px
	}
	return 0, 0
}
