// Package mappers implements the cartridge mapper family. Each variant
// is a small state machine layered over the shared base; the registry
// maps iNES mapper numbers to constructors.
package mappers

import (
	"fmt"

	"famigo/emu/log"
	"famigo/hw"
	"famigo/ines"
)

var modMapper = log.NewModule("mapper")

type MapperDesc struct {
	Name string
	New  func(*base) hw.Mapper
}

var All = map[uint16]MapperDesc{
	0: NROM,
	1: MMC1,
	2: UxROM,
	3: CNROM,
	4: MMC3,
	7: AOROM,
}

// New builds the mapper for the given iNES mapper number.
func New(cart *hw.Cartridge, number uint16) (hw.Mapper, error) {
	desc, ok := All[number]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported mapper %d", ines.ErrBadRom, number)
	}
	if len(cart.PRG) == 0 || len(cart.PRG)%0x4000 != 0 {
		return nil, fmt.Errorf("%w: PRG ROM size %d is not a multiple of 16K", ines.ErrBadRom, len(cart.PRG))
	}

	m := desc.New(&base{
		name:   desc.Name,
		number: number,
		cart:   cart,
		mirror: cart.Mirroring(),
	})

	modMapper.InfoZ("loaded mapper").
		String("name", desc.Name).
		Uint16("number", number).
		Int("prg", len(cart.PRG)).
		Int("chr", len(cart.CHR)).
		End()
	return m, nil
}
