package mappers

import (
	"famigo/hw"
	"famigo/hw/snapshot"
	"famigo/ines"
)

// base carries what every mapper variant needs: the cartridge memory and
// the current mirroring. It provides the no-op defaults of the optional
// Mapper methods, variants override what they use.
type base struct {
	name   string
	number uint16
	cart   *hw.Cartridge
	mirror ines.Mirroring
}

func (b *base) Mirroring() ines.Mirroring { return b.mirror }
func (b *base) IRQPending() bool          { return false }
func (b *base) NotifyA12(bool)            {}
func (b *base) Step(int64)                {}
func (b *base) Cart() *hw.Cartridge       { return b.cart }

// prgRAMRead and prgRAMWrite serve the $6000-$7FFF window.

func (b *base) prgRAMRead(addr uint16) uint8 {
	return b.cart.PRGRAM[addr&0x1FFF]
}

func (b *base) prgRAMWrite(addr uint16, val uint8) {
	b.cart.PRGRAM[addr&0x1FFF] = val
}

// chrRead8K and chrWrite8K serve boards with a single fixed 8KB CHR bank.

func (b *base) chrRead8K(addr uint16) uint8 {
	return b.cart.CHR[addr&0x1FFF]
}

func (b *base) chrWrite8K(addr uint16, val uint8) {
	if !b.cart.HasCHRRAM() {
		modMapper.DebugZ("write to CHR ROM ignored").
			String("mapper", b.name).
			Hex16("addr", addr).
			End()
		return
	}
	b.cart.CHR[addr&0x1FFF] = val
}

// romWrite logs a CPU write landing on fixed ROM. The hardware tolerates
// it (the write just doesn't stick), so neither is it an error here.
func (b *base) romWrite(addr uint16, val uint8) {
	modMapper.DebugZ("write to PRG ROM ignored").
		String("mapper", b.name).
		Hex16("addr", addr).
		Hex8("val", val).
		End()
}

func (b *base) saveBase(state *snapshot.Mapper) {
	state.Number = b.number
	state.PRGRAM = append(state.PRGRAM[:0], b.cart.PRGRAM...)
	if b.cart.HasCHRRAM() {
		state.CHRRAM = append(state.CHRRAM[:0], b.cart.CHR...)
	}
}

func (b *base) loadBase(state *snapshot.Mapper) {
	if len(state.PRGRAM) == len(b.cart.PRGRAM) {
		copy(b.cart.PRGRAM, state.PRGRAM)
	}
	if b.cart.HasCHRRAM() && len(state.CHRRAM) == len(b.cart.CHR) {
		copy(b.cart.CHR, state.CHRRAM)
	}
}

func (b *base) SaveState(state *snapshot.Mapper) { b.saveBase(state) }
func (b *base) SetState(state *snapshot.Mapper)  { b.loadBase(state) }
