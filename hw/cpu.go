package hw

import (
	"errors"
	"fmt"
	"io"

	"famigo/emu/log"
	"famigo/hw/hwdefs"
	"famigo/hw/snapshot"
)

// Locations reserved for vector pointers.
const (
	NMIVector   = uint16(0xFFFA) // Non-Maskable Interrupt
	ResetVector = uint16(0xFFFC) // Reset
	IRQVector   = uint16(0xFFFE) // Interrupt Request
)

// ErrDecode reports an opcode the CPU doesn't implement. Real hardware
// would execute whatever the illegal opcode happens to do; the model treats
// it as fatal and stops the run loop.
var ErrDecode = errors.New("decode error")

// P is the 6502 status register. D is kept readable and writable but has
// no effect on arithmetic (2A03 behavior). U always reads back as 1. B is
// not a stored bit: it only exists in copies of P pushed on the stack.
type P uint8

const (
	flagC P = 1 << iota // carry
	flagZ               // zero
	flagI               // interrupt disable
	flagD               // decimal (no effect)
	flagB               // "break", phantom
	flagU               // unused, reads as 1
	flagV               // overflow
	flagN               // negative
)

func (p P) C() bool { return p&flagC != 0 }
func (p P) Z() bool { return p&flagZ != 0 }
func (p P) I() bool { return p&flagI != 0 }
func (p P) D() bool { return p&flagD != 0 }
func (p P) B() bool { return p&flagB != 0 }
func (p P) V() bool { return p&flagV != 0 }
func (p P) N() bool { return p&flagN != 0 }

func (p *P) set(f P, v bool) {
	if v {
		*p |= f
	} else {
		*p &^= f
	}
}

func (p *P) setC(v bool) { p.set(flagC, v) }
func (p *P) setI(v bool) { p.set(flagI, v) }
func (p *P) setV(v bool) { p.set(flagV, v) }

// setZN sets the zero and negative flags from a result byte, the way
// every load/arithmetic/logic instruction does.
func (p *P) setZN(v uint8) {
	p.set(flagZ, v == 0)
	p.set(flagN, v&0x80 != 0)
}

func (p P) String() string {
	buf := []byte("nv-bdizc")
	for i, f := range []P{flagN, flagV, flagU, flagB, flagD, flagI, flagZ, flagC} {
		if p&f != 0 {
			buf[i] &^= 0x20
		}
	}
	return string(buf)
}

// CPUBus is the view of the system the CPU executes against: the CPU
// memory map, owned and implemented by the Bus.
type CPUBus interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, val uint8)
}

// CPU is a Ricoh 2A03, the 6502 derivative in the NES (binary mode only).
type CPU struct {
	mem CPUBus

	A, X, Y uint8
	SP      uint8
	PC      uint16
	P       P

	Cycles uint64

	// Pending stall cycles from OAM or DMC DMA, consumed before the next
	// instruction.
	stall int

	nmiPending bool
	irqFlag    hwdefs.IRQSource

	tracer io.Writer
}

func NewCPU(mem CPUBus) *CPU {
	return &CPU{
		mem: mem,
		SP:  0xFD,
		P:   flagI | flagU,
	}
}

// Reset puts the CPU in its documented post-reset state: PC from the reset
// vector, SP at $FD, interrupts disabled. Burns 7 cycles.
func (c *CPU) Reset() {
	c.PC = c.read16(ResetVector)
	c.SP = 0xFD
	c.P = flagI | flagU
	c.Cycles += 7
	c.nmiPending = false
	c.stall = 0
}

// TriggerNMI latches an NMI request; it is serviced at the next
// instruction boundary.
func (c *CPU) TriggerNMI() { c.nmiPending = true }

// CancelNMI drops a latched NMI that hasn't been serviced yet. Happens
// when PPUCTRL bit 7 is cleared before the CPU sampled the edge.
func (c *CPU) CancelNMI() { c.nmiPending = false }

// The IRQ line is the logical OR of its sources; it stays asserted until
// every source is cleared.

func (c *CPU) SetIRQSource(src hwdefs.IRQSource)      { c.irqFlag |= src }
func (c *CPU) ClearIRQSource(src hwdefs.IRQSource)    { c.irqFlag &^= src }
func (c *CPU) HasIRQSource(src hwdefs.IRQSource) bool { return c.irqFlag&src != 0 }

// AddStall halts the CPU for n extra cycles, accounted for whole at the
// next Step. Used by OAM DMA and DMC sample fetches.
func (c *CPU) AddStall(n int) { c.stall += n }

// CurrentCycle returns the number of cycles executed since power-up.
func (c *CPU) CurrentCycle() uint64 { return c.Cycles }

// ReadMem reads from the CPU address space without cycle side effects
// beyond the bus access itself. The DMC sample reader uses it.
func (c *CPU) ReadMem(addr uint16) uint8 { return c.mem.Read8(addr) }

// SetTraceOutput enables per-instruction execution tracing to w.
func (c *CPU) SetTraceOutput(w io.Writer) { c.tracer = w }

// Step executes one instruction, or services a pending interrupt, and
// returns the number of cycles consumed. An unimplemented opcode returns
// an error wrapping ErrDecode.
func (c *CPU) Step() (int, error) {
	if c.stall > 0 {
		n := c.stall
		c.stall = 0
		c.Cycles += uint64(n)
		return n, nil
	}

	start := c.Cycles

	// NMI wins over IRQ; IRQ is level-sampled and masked by the I flag.
	if c.nmiPending {
		c.nmiPending = false
		c.interrupt(NMIVector)
	} else if c.irqFlag != 0 && !c.P.I() {
		c.interrupt(IRQVector)
	}

	opcode := c.read8(c.PC)
	op := &ops[opcode]
	if op.fn == nil {
		log.ModCPU.WarnZ("unknown opcode").
			Hex8("opcode", opcode).
			Hex16("PC", c.PC).
			End()
		return int(c.Cycles - start), fmt.Errorf("%w: opcode $%02X at $%04X", ErrDecode, opcode, c.PC)
	}

	if c.tracer != nil {
		c.trace(op)
	}

	addr, pageCrossed := c.operand(op.mode)
	c.PC += uint16(op.size)
	c.Cycles += uint64(op.cycles)
	if pageCrossed {
		c.Cycles += uint64(op.page)
	}

	op.fn(c, addr, op.mode)

	return int(c.Cycles - start), nil
}

// interrupt runs the 7-cycle NMI/IRQ sequence: push PC and P (with B
// clear, U set), set I, load the vector.
func (c *CPU) interrupt(vector uint16) {
	c.push16(c.PC)
	c.push8(uint8((c.P &^ flagB) | flagU))
	c.P.setI(true)
	c.PC = c.read16(vector)
	c.Cycles += 7
}

// operand computes the effective address for the current instruction and
// reports whether an indexed access crossed a page boundary.
func (c *CPU) operand(mode addrMode) (addr uint16, pageCrossed bool) {
	switch mode {
	case modeAbsolute:
		addr = c.read16(c.PC + 1)
	case modeAbsoluteX:
		base := c.read16(c.PC + 1)
		addr = base + uint16(c.X)
		pageCrossed = pagesDiffer(base, addr)
	case modeAbsoluteY:
		base := c.read16(c.PC + 1)
		addr = base + uint16(c.Y)
		pageCrossed = pagesDiffer(base, addr)
	case modeImmediate:
		addr = c.PC + 1
	case modeZeroPage:
		addr = uint16(c.read8(c.PC + 1))
	case modeZeroPageX:
		addr = uint16(c.read8(c.PC+1)+c.X) & 0xFF
	case modeZeroPageY:
		addr = uint16(c.read8(c.PC+1)+c.Y) & 0xFF
	case modeIndirect:
		addr = c.read16bug(c.read16(c.PC + 1))
	case modeIndexedIndirect:
		addr = c.read16bug(uint16(c.read8(c.PC+1) + c.X))
	case modeIndirectIndexed:
		base := c.read16bug(uint16(c.read8(c.PC + 1)))
		addr = base + uint16(c.Y)
		pageCrossed = pagesDiffer(base, addr)
	case modeRelative:
		off := uint16(c.read8(c.PC + 1))
		if off < 0x80 {
			addr = c.PC + 2 + off
		} else {
			addr = c.PC + 2 + off - 0x100
		}
	case modeAccumulator, modeImplied:
		// no operand
	}
	return addr, pageCrossed
}

func pagesDiffer(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

func (c *CPU) read8(addr uint16) uint8 {
	return c.mem.Read8(addr)
}

func (c *CPU) write8(addr uint16, val uint8) {
	c.mem.Write8(addr, val)
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.read8(addr))
	hi := uint16(c.read8(addr + 1))
	return hi<<8 | lo
}

// read16bug reads a 16-bit pointer reproducing the 6502 wraparound: the
// high byte is fetched from the same page as the low byte when the pointer
// sits at the end of a page. JMP ($xxFF) and the zero page indirect modes
// all go through here.
func (c *CPU) read16bug(addr uint16) uint16 {
	hiaddr := addr&0xFF00 | uint16(uint8(addr)+1)
	lo := uint16(c.read8(addr))
	hi := uint16(c.read8(hiaddr))
	return hi<<8 | lo
}

/* stack operations */

func (c *CPU) push8(val uint8) {
	c.write8(0x0100+uint16(c.SP), val)
	c.SP--
}

func (c *CPU) push16(val uint16) {
	c.push8(uint8(val >> 8))
	c.push8(uint8(val))
}

func (c *CPU) pull8() uint8 {
	c.SP++
	return c.read8(0x0100 + uint16(c.SP))
}

func (c *CPU) pull16() uint16 {
	lo := uint16(c.pull8())
	hi := uint16(c.pull8())
	return hi<<8 | lo
}

func (c *CPU) trace(op *opdef) {
	raw := make([]byte, 0, 3)
	for i := range op.size {
		raw = append(raw, c.read8(c.PC+uint16(i)))
	}
	fmt.Fprintf(c.tracer, "%04X  %-9s %s A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d\n",
		c.PC, fmt.Sprintf("% X", raw), op.name, c.A, c.X, c.Y, uint8(c.P), c.SP, c.Cycles)
}

func (c *CPU) SaveState(state *snapshot.CPU) {
	state.PC = c.PC
	state.SP = c.SP
	state.P = uint8(c.P)
	state.A = c.A
	state.X = c.X
	state.Y = c.Y
	state.Cycles = c.Cycles
	state.Stall = c.stall
	state.NMIPending = c.nmiPending
	state.IRQFlag = uint8(c.irqFlag)
}

func (c *CPU) SetState(state *snapshot.CPU) {
	c.PC = state.PC
	c.SP = state.SP
	c.P = P(state.P)
	c.A = state.A
	c.X = state.X
	c.Y = state.Y
	c.Cycles = state.Cycles
	c.stall = state.Stall
	c.nmiPending = state.NMIPending
	c.irqFlag = hwdefs.IRQSource(state.IRQFlag)
}
