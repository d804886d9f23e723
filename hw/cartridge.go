package hw

import (
	"famigo/ines"
)

// Cartridge is the memory resident on the game cartridge: PRG ROM, CHR
// ROM (or 8KB of CHR RAM on boards without CHR ROM), and optional PRG RAM,
// possibly battery-backed. ROM contents are immutable after loading, only
// PRG RAM and CHR RAM ever change.
type Cartridge struct {
	PRG    []byte // PRG ROM
	CHR    []byte // CHR ROM, or CHR RAM when the header declares no CHR banks
	PRGRAM []byte // 8KB of PRG RAM at $6000-$7FFF, not all boards have it wired

	chrRAM  bool
	battery bool
	mirror  ines.Mirroring
}

func NewCartridge(rom *ines.Rom) *Cartridge {
	cart := &Cartridge{
		PRG:     rom.PRG,
		CHR:     rom.CHR,
		PRGRAM:  make([]byte, 0x2000),
		battery: rom.HasBattery(),
		mirror:  rom.Mirroring(),
	}
	if len(cart.CHR) == 0 {
		cart.CHR = make([]byte, 0x2000)
		cart.chrRAM = true
	}
	if len(rom.Trainer) == 512 {
		copy(cart.PRGRAM[0x1000:], rom.Trainer)
	}
	return cart
}

// Battery indicates battery-backed PRG RAM, which the host should persist.
func (c *Cartridge) Battery() bool { return c.battery }

// HasCHRRAM indicates the CHR space is RAM and thus writable.
func (c *Cartridge) HasCHRRAM() bool { return c.chrRAM }

// Mirroring returns the nametable arrangement hardwired on the board.
func (c *Cartridge) Mirroring() ines.Mirroring { return c.mirror }
