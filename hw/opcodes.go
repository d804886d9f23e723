package hw

// addrMode is one of the 13 6502 addressing modes.
type addrMode uint8

const (
	modeImplied addrMode = iota
	modeAccumulator
	modeImmediate
	modeZeroPage
	modeZeroPageX
	modeZeroPageY
	modeRelative
	modeAbsolute
	modeAbsoluteX
	modeAbsoluteY
	modeIndirect
	modeIndexedIndirect // (zp,X)
	modeIndirectIndexed // (zp),Y
)

type opdef struct {
	name   string
	mode   addrMode
	size   uint8
	cycles uint8
	page   uint8 // extra cycles when an indexed read crosses a page
	fn     func(*CPU, uint16, addrMode)
}

// ops maps each opcode to its definition. Entries with a nil fn are
// unimplemented opcodes: executing one is a decode error. The multi-byte
// unofficial NOPs tolerated by common test ROMs are filled in at init.
var ops = [256]opdef{
	0x00: {"BRK", modeImplied, 1, 7, 0, brk},
	0x01: {"ORA", modeIndexedIndirect, 2, 6, 0, ora},
	0x05: {"ORA", modeZeroPage, 2, 3, 0, ora},
	0x06: {"ASL", modeZeroPage, 2, 5, 0, asl},
	0x08: {"PHP", modeImplied, 1, 3, 0, php},
	0x09: {"ORA", modeImmediate, 2, 2, 0, ora},
	0x0A: {"ASL", modeAccumulator, 1, 2, 0, asl},
	0x0D: {"ORA", modeAbsolute, 3, 4, 0, ora},
	0x0E: {"ASL", modeAbsolute, 3, 6, 0, asl},
	0x10: {"BPL", modeRelative, 2, 2, 0, bpl},
	0x11: {"ORA", modeIndirectIndexed, 2, 5, 1, ora},
	0x15: {"ORA", modeZeroPageX, 2, 4, 0, ora},
	0x16: {"ASL", modeZeroPageX, 2, 6, 0, asl},
	0x18: {"CLC", modeImplied, 1, 2, 0, clc},
	0x19: {"ORA", modeAbsoluteY, 3, 4, 1, ora},
	0x1D: {"ORA", modeAbsoluteX, 3, 4, 1, ora},
	0x1E: {"ASL", modeAbsoluteX, 3, 7, 0, asl},
	0x20: {"JSR", modeAbsolute, 3, 6, 0, jsr},
	0x21: {"AND", modeIndexedIndirect, 2, 6, 0, and},
	0x24: {"BIT", modeZeroPage, 2, 3, 0, bit},
	0x25: {"AND", modeZeroPage, 2, 3, 0, and},
	0x26: {"ROL", modeZeroPage, 2, 5, 0, rol},
	0x28: {"PLP", modeImplied, 1, 4, 0, plp},
	0x29: {"AND", modeImmediate, 2, 2, 0, and},
	0x2A: {"ROL", modeAccumulator, 1, 2, 0, rol},
	0x2C: {"BIT", modeAbsolute, 3, 4, 0, bit},
	0x2D: {"AND", modeAbsolute, 3, 4, 0, and},
	0x2E: {"ROL", modeAbsolute, 3, 6, 0, rol},
	0x30: {"BMI", modeRelative, 2, 2, 0, bmi},
	0x31: {"AND", modeIndirectIndexed, 2, 5, 1, and},
	0x35: {"AND", modeZeroPageX, 2, 4, 0, and},
	0x36: {"ROL", modeZeroPageX, 2, 6, 0, rol},
	0x38: {"SEC", modeImplied, 1, 2, 0, sec},
	0x39: {"AND", modeAbsoluteY, 3, 4, 1, and},
	0x3D: {"AND", modeAbsoluteX, 3, 4, 1, and},
	0x3E: {"ROL", modeAbsoluteX, 3, 7, 0, rol},
	0x40: {"RTI", modeImplied, 1, 6, 0, rti},
	0x41: {"EOR", modeIndexedIndirect, 2, 6, 0, eor},
	0x45: {"EOR", modeZeroPage, 2, 3, 0, eor},
	0x46: {"LSR", modeZeroPage, 2, 5, 0, lsr},
	0x48: {"PHA", modeImplied, 1, 3, 0, pha},
	0x49: {"EOR", modeImmediate, 2, 2, 0, eor},
	0x4A: {"LSR", modeAccumulator, 1, 2, 0, lsr},
	0x4C: {"JMP", modeAbsolute, 3, 3, 0, jmp},
	0x4D: {"EOR", modeAbsolute, 3, 4, 0, eor},
	0x4E: {"LSR", modeAbsolute, 3, 6, 0, lsr},
	0x50: {"BVC", modeRelative, 2, 2, 0, bvc},
	0x51: {"EOR", modeIndirectIndexed, 2, 5, 1, eor},
	0x55: {"EOR", modeZeroPageX, 2, 4, 0, eor},
	0x56: {"LSR", modeZeroPageX, 2, 6, 0, lsr},
	0x58: {"CLI", modeImplied, 1, 2, 0, cli},
	0x59: {"EOR", modeAbsoluteY, 3, 4, 1, eor},
	0x5D: {"EOR", modeAbsoluteX, 3, 4, 1, eor},
	0x5E: {"LSR", modeAbsoluteX, 3, 7, 0, lsr},
	0x60: {"RTS", modeImplied, 1, 6, 0, rts},
	0x61: {"ADC", modeIndexedIndirect, 2, 6, 0, adc},
	0x65: {"ADC", modeZeroPage, 2, 3, 0, adc},
	0x66: {"ROR", modeZeroPage, 2, 5, 0, ror},
	0x68: {"PLA", modeImplied, 1, 4, 0, pla},
	0x69: {"ADC", modeImmediate, 2, 2, 0, adc},
	0x6A: {"ROR", modeAccumulator, 1, 2, 0, ror},
	0x6C: {"JMP", modeIndirect, 3, 5, 0, jmp},
	0x6D: {"ADC", modeAbsolute, 3, 4, 0, adc},
	0x6E: {"ROR", modeAbsolute, 3, 6, 0, ror},
	0x70: {"BVS", modeRelative, 2, 2, 0, bvs},
	0x71: {"ADC", modeIndirectIndexed, 2, 5, 1, adc},
	0x75: {"ADC", modeZeroPageX, 2, 4, 0, adc},
	0x76: {"ROR", modeZeroPageX, 2, 6, 0, ror},
	0x78: {"SEI", modeImplied, 1, 2, 0, sei},
	0x79: {"ADC", modeAbsoluteY, 3, 4, 1, adc},
	0x7D: {"ADC", modeAbsoluteX, 3, 4, 1, adc},
	0x7E: {"ROR", modeAbsoluteX, 3, 7, 0, ror},
	0x81: {"STA", modeIndexedIndirect, 2, 6, 0, sta},
	0x84: {"STY", modeZeroPage, 2, 3, 0, sty},
	0x85: {"STA", modeZeroPage, 2, 3, 0, sta},
	0x86: {"STX", modeZeroPage, 2, 3, 0, stx},
	0x88: {"DEY", modeImplied, 1, 2, 0, dey},
	0x8A: {"TXA", modeImplied, 1, 2, 0, txa},
	0x8C: {"STY", modeAbsolute, 3, 4, 0, sty},
	0x8D: {"STA", modeAbsolute, 3, 4, 0, sta},
	0x8E: {"STX", modeAbsolute, 3, 4, 0, stx},
	0x90: {"BCC", modeRelative, 2, 2, 0, bcc},
	0x91: {"STA", modeIndirectIndexed, 2, 6, 0, sta},
	0x94: {"STY", modeZeroPageX, 2, 4, 0, sty},
	0x95: {"STA", modeZeroPageX, 2, 4, 0, sta},
	0x96: {"STX", modeZeroPageY, 2, 4, 0, stx},
	0x98: {"TYA", modeImplied, 1, 2, 0, tya},
	0x99: {"STA", modeAbsoluteY, 3, 5, 0, sta},
	0x9A: {"TXS", modeImplied, 1, 2, 0, txs},
	0x9D: {"STA", modeAbsoluteX, 3, 5, 0, sta},
	0xA0: {"LDY", modeImmediate, 2, 2, 0, ldy},
	0xA1: {"LDA", modeIndexedIndirect, 2, 6, 0, lda},
	0xA2: {"LDX", modeImmediate, 2, 2, 0, ldx},
	0xA4: {"LDY", modeZeroPage, 2, 3, 0, ldy},
	0xA5: {"LDA", modeZeroPage, 2, 3, 0, lda},
	0xA6: {"LDX", modeZeroPage, 2, 3, 0, ldx},
	0xA8: {"TAY", modeImplied, 1, 2, 0, tay},
	0xA9: {"LDA", modeImmediate, 2, 2, 0, lda},
	0xAA: {"TAX", modeImplied, 1, 2, 0, tax},
	0xAC: {"LDY", modeAbsolute, 3, 4, 0, ldy},
	0xAD: {"LDA", modeAbsolute, 3, 4, 0, lda},
	0xAE: {"LDX", modeAbsolute, 3, 4, 0, ldx},
	0xB0: {"BCS", modeRelative, 2, 2, 0, bcs},
	0xB1: {"LDA", modeIndirectIndexed, 2, 5, 1, lda},
	0xB4: {"LDY", modeZeroPageX, 2, 4, 0, ldy},
	0xB5: {"LDA", modeZeroPageX, 2, 4, 0, lda},
	0xB6: {"LDX", modeZeroPageY, 2, 4, 0, ldx},
	0xB8: {"CLV", modeImplied, 1, 2, 0, clv},
	0xB9: {"LDA", modeAbsoluteY, 3, 4, 1, lda},
	0xBA: {"TSX", modeImplied, 1, 2, 0, tsx},
	0xBC: {"LDY", modeAbsoluteX, 3, 4, 1, ldy},
	0xBD: {"LDA", modeAbsoluteX, 3, 4, 1, lda},
	0xBE: {"LDX", modeAbsoluteY, 3, 4, 1, ldx},
	0xC0: {"CPY", modeImmediate, 2, 2, 0, cpy},
	0xC1: {"CMP", modeIndexedIndirect, 2, 6, 0, cmp},
	0xC4: {"CPY", modeZeroPage, 2, 3, 0, cpy},
	0xC5: {"CMP", modeZeroPage, 2, 3, 0, cmp},
	0xC6: {"DEC", modeZeroPage, 2, 5, 0, dec},
	0xC8: {"INY", modeImplied, 1, 2, 0, iny},
	0xC9: {"CMP", modeImmediate, 2, 2, 0, cmp},
	0xCA: {"DEX", modeImplied, 1, 2, 0, dex},
	0xCC: {"CPY", modeAbsolute, 3, 4, 0, cpy},
	0xCD: {"CMP", modeAbsolute, 3, 4, 0, cmp},
	0xCE: {"DEC", modeAbsolute, 3, 6, 0, dec},
	0xD0: {"BNE", modeRelative, 2, 2, 0, bne},
	0xD1: {"CMP", modeIndirectIndexed, 2, 5, 1, cmp},
	0xD5: {"CMP", modeZeroPageX, 2, 4, 0, cmp},
	0xD6: {"DEC", modeZeroPageX, 2, 6, 0, dec},
	0xD8: {"CLD", modeImplied, 1, 2, 0, cld},
	0xD9: {"CMP", modeAbsoluteY, 3, 4, 1, cmp},
	0xDD: {"CMP", modeAbsoluteX, 3, 4, 1, cmp},
	0xDE: {"DEC", modeAbsoluteX, 3, 7, 0, dec},
	0xE0: {"CPX", modeImmediate, 2, 2, 0, cpx},
	0xE1: {"SBC", modeIndexedIndirect, 2, 6, 0, sbc},
	0xE4: {"CPX", modeZeroPage, 2, 3, 0, cpx},
	0xE5: {"SBC", modeZeroPage, 2, 3, 0, sbc},
	0xE6: {"INC", modeZeroPage, 2, 5, 0, inc},
	0xE8: {"INX", modeImplied, 1, 2, 0, inx},
	0xE9: {"SBC", modeImmediate, 2, 2, 0, sbc},
	0xEA: {"NOP", modeImplied, 1, 2, 0, nop},
	0xEC: {"CPX", modeAbsolute, 3, 4, 0, cpx},
	0xED: {"SBC", modeAbsolute, 3, 4, 0, sbc},
	0xEE: {"INC", modeAbsolute, 3, 6, 0, inc},
	0xF0: {"BEQ", modeRelative, 2, 2, 0, beq},
	0xF1: {"SBC", modeIndirectIndexed, 2, 5, 1, sbc},
	0xF5: {"SBC", modeZeroPageX, 2, 4, 0, sbc},
	0xF6: {"INC", modeZeroPageX, 2, 6, 0, inc},
	0xF8: {"SED", modeImplied, 1, 2, 0, sed},
	0xF9: {"SBC", modeAbsoluteY, 3, 4, 1, sbc},
	0xFD: {"SBC", modeAbsoluteX, 3, 4, 1, sbc},
	0xFE: {"INC", modeAbsoluteX, 3, 7, 0, inc},
}

func init() {
	// Multi-byte unofficial NOPs. Common test ROMs execute these, so they
	// decode like NOP with the length and timing of their addressing mode.
	fill := func(def opdef, opcodes ...uint8) {
		for _, op := range opcodes {
			ops[op] = def
		}
	}
	fill(opdef{"NOP", modeImplied, 1, 2, 0, nop}, 0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA)
	fill(opdef{"NOP", modeImmediate, 2, 2, 0, nop}, 0x80, 0x82, 0x89, 0xC2, 0xE2)
	fill(opdef{"NOP", modeZeroPage, 2, 3, 0, nop}, 0x04, 0x44, 0x64)
	fill(opdef{"NOP", modeZeroPageX, 2, 4, 0, nop}, 0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4)
	fill(opdef{"NOP", modeAbsolute, 3, 4, 0, nop}, 0x0C)
	fill(opdef{"NOP", modeAbsoluteX, 3, 4, 1, nop}, 0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC)
}

/* loads and stores */

func lda(c *CPU, addr uint16, _ addrMode) {
	c.A = c.read8(addr)
	c.P.setZN(c.A)
}

func ldx(c *CPU, addr uint16, _ addrMode) {
	c.X = c.read8(addr)
	c.P.setZN(c.X)
}

func ldy(c *CPU, addr uint16, _ addrMode) {
	c.Y = c.read8(addr)
	c.P.setZN(c.Y)
}

func sta(c *CPU, addr uint16, _ addrMode) { c.write8(addr, c.A) }
func stx(c *CPU, addr uint16, _ addrMode) { c.write8(addr, c.X) }
func sty(c *CPU, addr uint16, _ addrMode) { c.write8(addr, c.Y) }

/* register transfers */

func tax(c *CPU, _ uint16, _ addrMode) { c.X = c.A; c.P.setZN(c.X) }
func tay(c *CPU, _ uint16, _ addrMode) { c.Y = c.A; c.P.setZN(c.Y) }
func txa(c *CPU, _ uint16, _ addrMode) { c.A = c.X; c.P.setZN(c.A) }
func tya(c *CPU, _ uint16, _ addrMode) { c.A = c.Y; c.P.setZN(c.A) }
func tsx(c *CPU, _ uint16, _ addrMode) { c.X = c.SP; c.P.setZN(c.X) }
func txs(c *CPU, _ uint16, _ addrMode) { c.SP = c.X }

/* stack */

func pha(c *CPU, _ uint16, _ addrMode) { c.push8(c.A) }

func pla(c *CPU, _ uint16, _ addrMode) {
	c.A = c.pull8()
	c.P.setZN(c.A)
}

// PHP pushes P with both B and U set; PLP ignores them on the way back.

func php(c *CPU, _ uint16, _ addrMode) {
	c.push8(uint8(c.P | flagB | flagU))
}

func plp(c *CPU, _ uint16, _ addrMode) {
	c.P = P(c.pull8())&^flagB | flagU
}

/* arithmetic */

func adc(c *CPU, addr uint16, _ addrMode) {
	a := c.A
	b := c.read8(addr)
	carry := uint8(0)
	if c.P.C() {
		carry = 1
	}
	c.A = a + b + carry
	c.P.setZN(c.A)
	c.P.setC(int(a)+int(b)+int(carry) > 0xFF)
	c.P.setV((a^b)&0x80 == 0 && (a^c.A)&0x80 != 0)
}

func sbc(c *CPU, addr uint16, _ addrMode) {
	a := c.A
	b := c.read8(addr)
	carry := uint8(0)
	if c.P.C() {
		carry = 1
	}
	c.A = a - b - (1 - carry)
	c.P.setZN(c.A)
	c.P.setC(int(a)-int(b)-int(1-carry) >= 0)
	c.P.setV((a^b)&0x80 != 0 && (a^c.A)&0x80 != 0)
}

func compare(c *CPU, reg, val uint8) {
	c.P.setZN(reg - val)
	c.P.setC(reg >= val)
}

func cmp(c *CPU, addr uint16, _ addrMode) { compare(c, c.A, c.read8(addr)) }
func cpx(c *CPU, addr uint16, _ addrMode) { compare(c, c.X, c.read8(addr)) }
func cpy(c *CPU, addr uint16, _ addrMode) { compare(c, c.Y, c.read8(addr)) }

/* increments and decrements */

func inc(c *CPU, addr uint16, _ addrMode) {
	val := c.read8(addr) + 1
	c.write8(addr, val)
	c.P.setZN(val)
}

func dec(c *CPU, addr uint16, _ addrMode) {
	val := c.read8(addr) - 1
	c.write8(addr, val)
	c.P.setZN(val)
}

func inx(c *CPU, _ uint16, _ addrMode) { c.X++; c.P.setZN(c.X) }
func iny(c *CPU, _ uint16, _ addrMode) { c.Y++; c.P.setZN(c.Y) }
func dex(c *CPU, _ uint16, _ addrMode) { c.X--; c.P.setZN(c.X) }
func dey(c *CPU, _ uint16, _ addrMode) { c.Y--; c.P.setZN(c.Y) }

/* logic */

func and(c *CPU, addr uint16, _ addrMode) {
	c.A &= c.read8(addr)
	c.P.setZN(c.A)
}

func ora(c *CPU, addr uint16, _ addrMode) {
	c.A |= c.read8(addr)
	c.P.setZN(c.A)
}

func eor(c *CPU, addr uint16, _ addrMode) {
	c.A ^= c.read8(addr)
	c.P.setZN(c.A)
}

func bit(c *CPU, addr uint16, _ addrMode) {
	val := c.read8(addr)
	c.P.setV(val&0x40 != 0)
	c.P.set(flagN, val&0x80 != 0)
	c.P.set(flagZ, val&c.A == 0)
}

/* shifts and rotates */

func asl(c *CPU, addr uint16, mode addrMode) {
	if mode == modeAccumulator {
		c.P.setC(c.A&0x80 != 0)
		c.A <<= 1
		c.P.setZN(c.A)
		return
	}
	val := c.read8(addr)
	c.P.setC(val&0x80 != 0)
	val <<= 1
	c.write8(addr, val)
	c.P.setZN(val)
}

func lsr(c *CPU, addr uint16, mode addrMode) {
	if mode == modeAccumulator {
		c.P.setC(c.A&1 != 0)
		c.A >>= 1
		c.P.setZN(c.A)
		return
	}
	val := c.read8(addr)
	c.P.setC(val&1 != 0)
	val >>= 1
	c.write8(addr, val)
	c.P.setZN(val)
}

func rol(c *CPU, addr uint16, mode addrMode) {
	carry := uint8(0)
	if c.P.C() {
		carry = 1
	}
	if mode == modeAccumulator {
		c.P.setC(c.A&0x80 != 0)
		c.A = c.A<<1 | carry
		c.P.setZN(c.A)
		return
	}
	val := c.read8(addr)
	c.P.setC(val&0x80 != 0)
	val = val<<1 | carry
	c.write8(addr, val)
	c.P.setZN(val)
}

func ror(c *CPU, addr uint16, mode addrMode) {
	carry := uint8(0)
	if c.P.C() {
		carry = 0x80
	}
	if mode == modeAccumulator {
		c.P.setC(c.A&1 != 0)
		c.A = c.A>>1 | carry
		c.P.setZN(c.A)
		return
	}
	val := c.read8(addr)
	c.P.setC(val&1 != 0)
	val = val>>1 | carry
	c.write8(addr, val)
	c.P.setZN(val)
}

/* jumps and calls */

func jmp(c *CPU, addr uint16, _ addrMode) { c.PC = addr }

func jsr(c *CPU, addr uint16, _ addrMode) {
	c.push16(c.PC - 1)
	c.PC = addr
}

func rts(c *CPU, _ uint16, _ addrMode) {
	c.PC = c.pull16() + 1
}

// BRK pushes the address past its padding byte and P with B set, then
// takes the IRQ vector with interrupts disabled.
func brk(c *CPU, _ uint16, _ addrMode) {
	c.push16(c.PC + 1)
	c.push8(uint8(c.P | flagB | flagU))
	c.P.setI(true)
	c.PC = c.read16(IRQVector)
}

func rti(c *CPU, _ uint16, _ addrMode) {
	c.P = P(c.pull8())&^flagB | flagU
	c.PC = c.pull16()
}

/* branches */

// branch moves PC to addr, adding one cycle for the taken branch and
// another one when the target sits on a different page.
func (c *CPU) branch(addr uint16) {
	c.Cycles++
	if pagesDiffer(c.PC, addr) {
		c.Cycles++
	}
	c.PC = addr
}

func bcc(c *CPU, addr uint16, _ addrMode) {
	if !c.P.C() {
		c.branch(addr)
	}
}

func bcs(c *CPU, addr uint16, _ addrMode) {
	if c.P.C() {
		c.branch(addr)
	}
}

func beq(c *CPU, addr uint16, _ addrMode) {
	if c.P.Z() {
		c.branch(addr)
	}
}

func bne(c *CPU, addr uint16, _ addrMode) {
	if !c.P.Z() {
		c.branch(addr)
	}
}

func bmi(c *CPU, addr uint16, _ addrMode) {
	if c.P.N() {
		c.branch(addr)
	}
}

func bpl(c *CPU, addr uint16, _ addrMode) {
	if !c.P.N() {
		c.branch(addr)
	}
}

func bvc(c *CPU, addr uint16, _ addrMode) {
	if !c.P.V() {
		c.branch(addr)
	}
}

func bvs(c *CPU, addr uint16, _ addrMode) {
	if c.P.V() {
		c.branch(addr)
	}
}

/* flag operations */

func clc(c *CPU, _ uint16, _ addrMode) { c.P.setC(false) }
func sec(c *CPU, _ uint16, _ addrMode) { c.P.setC(true) }
func cli(c *CPU, _ uint16, _ addrMode) { c.P.setI(false) }
func sei(c *CPU, _ uint16, _ addrMode) { c.P.setI(true) }
func clv(c *CPU, _ uint16, _ addrMode) { c.P.setV(false) }
func cld(c *CPU, _ uint16, _ addrMode) { c.P.set(flagD, false) }
func sed(c *CPU, _ uint16, _ addrMode) { c.P.set(flagD, true) }

func nop(*CPU, uint16, addrMode) {}
