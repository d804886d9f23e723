package hw

import (
	"testing"

	"famigo/hw/snapshot"
	"famigo/ines"
)

// testMapper is a minimal NROM-like board: 32KB of PRG, 8KB of CHR RAM,
// 8KB of PRG RAM, no IRQ. It also counts A12 rising edges so PPU tests
// can observe the line.
type testMapper struct {
	prg    [0x8000]byte
	ram    [0x2000]byte
	chr    [0x2000]byte
	mirror ines.Mirroring

	lastA12  bool
	a12Rises int
}

func (m *testMapper) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		return m.prg[addr-0x8000]
	case addr >= 0x6000:
		return m.ram[addr-0x6000]
	}
	return 0
}

func (m *testMapper) CPUWrite(addr uint16, val uint8) {
	switch {
	case addr >= 0x8000:
		// ROM, ignore
	case addr >= 0x6000:
		m.ram[addr-0x6000] = val
	}
}

func (m *testMapper) CHRRead(addr uint16) uint8       { return m.chr[addr&0x1FFF] }
func (m *testMapper) CHRWrite(addr uint16, val uint8) { m.chr[addr&0x1FFF] = val }
func (m *testMapper) Mirroring() ines.Mirroring       { return m.mirror }
func (m *testMapper) IRQPending() bool                { return false }
func (m *testMapper) Step(int64)                      {}
func (m *testMapper) Cart() *Cartridge                { return nil }
func (m *testMapper) SaveState(*snapshot.Mapper)      {}
func (m *testMapper) SetState(*snapshot.Mapper)       {}

func (m *testMapper) NotifyA12(high bool) {
	if high && !m.lastA12 {
		m.a12Rises++
	}
	m.lastA12 = high
}

// newTestNES powers up a console running the given program at $8000,
// with the reset vector pointing there.
func newTestNES(tb testing.TB, program ...byte) (*NES, *testMapper) {
	tb.Helper()

	m := &testMapper{mirror: ines.HorzMirroring}
	copy(m.prg[:], program)
	m.prg[0x7FFC] = 0x00 // reset vector: $8000
	m.prg[0x7FFD] = 0x80

	cart := &Cartridge{PRGRAM: make([]byte, 0x2000)}
	return PowerUp(cart, m), m
}
