package hw

import (
	"famigo/hw/snapshot"
	"famigo/ines"
)

// Mapper is the cartridge-resident logic translating CPU accesses in
// $4020-$FFFF and PPU accesses in $0000-$1FFF to banked ROM/RAM, and
// possibly generating IRQs.
//
// The PPU reports the level of its A12 address line through NotifyA12 on
// every pattern table access; MMC3 clocks its IRQ counter on the rising
// edge, other mappers ignore it.
type Mapper interface {
	CPURead(addr uint16) uint8
	CPUWrite(addr uint16, val uint8)
	CHRRead(addr uint16) uint8
	CHRWrite(addr uint16, val uint8)

	Mirroring() ines.Mirroring
	IRQPending() bool
	NotifyA12(high bool)

	// Step advances mapper-internal counters that run off the CPU clock.
	// A no-op for every supported mapper but part of the contract.
	Step(cycles int64)

	Cart() *Cartridge

	SaveState(*snapshot.Mapper)
	SetState(*snapshot.Mapper)
}

// PPUMem is the view of the mapper the PPU renders from: the pattern
// tables plus the A12 line it exposes to the cartridge.
type PPUMem interface {
	CHRRead(addr uint16) uint8
	CHRWrite(addr uint16, val uint8)
	Mirroring() ines.Mirroring
	NotifyA12(high bool)
}
