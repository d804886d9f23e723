package snapshot

import (
	"fmt"

	"github.com/go-faster/jx"
)

// Encode serializes a console snapshot to JSON. Large memories travel as
// base64 blobs, everything else as plain fields.
func Encode(state *NES) []byte {
	var e jx.Encoder

	e.ObjStart()
	field(&e, "version")
	e.Int(state.Version)

	field(&e, "cpu")
	encodeCPU(&e, &state.CPU)
	field(&e, "ppu")
	encodePPU(&e, &state.PPU)
	field(&e, "apu")
	encodeAPU(&e, &state.APU)

	field(&e, "ram")
	e.Base64(state.RAM[:])

	field(&e, "mapper")
	encodeMapper(&e, &state.Mapper)

	field(&e, "controllers")
	e.ArrStart()
	for i := range state.Controllers {
		encodeController(&e, &state.Controllers[i])
	}
	e.ArrEnd()

	field(&e, "framebuffer")
	e.Base64(state.FrameBuffer)

	e.ObjEnd()
	return e.Bytes()
}

// Decode deserializes a snapshot produced by Encode.
func Decode(data []byte) (*NES, error) {
	state := new(NES)
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "version":
			return u(&state.Version, d)
		case "cpu":
			return decodeCPU(d, &state.CPU)
		case "ppu":
			return decodePPU(d, &state.PPU)
		case "apu":
			return decodeAPU(d, &state.APU)
		case "ram":
			return blobInto(d, state.RAM[:])
		case "mapper":
			return decodeMapper(d, &state.Mapper)
		case "controllers":
			i := 0
			return d.Arr(func(d *jx.Decoder) error {
				if i >= len(state.Controllers) {
					return d.Skip()
				}
				err := decodeController(d, &state.Controllers[i])
				i++
				return err
			})
		case "framebuffer":
			blob, err := d.Base64()
			state.FrameBuffer = blob
			return err
		}
		return d.Skip()
	})
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return state, nil
}

func field(e *jx.Encoder, name string) { e.FieldStart(name) }

// u decodes a JSON number into any unsigned-ish integer field.
func u[T ~int | ~uint8 | ~uint16 | ~uint32 | ~uint64](dst *T, d *jx.Decoder) error {
	v, err := d.Int64()
	*dst = T(v)
	return err
}

func blobInto(d *jx.Decoder, dst []byte) error {
	blob, err := d.Base64()
	if err != nil {
		return err
	}
	if len(blob) != len(dst) {
		return fmt.Errorf("blob size mismatch: got %d, want %d", len(blob), len(dst))
	}
	copy(dst, blob)
	return nil
}

/* per-component sections */

func encodeCPU(e *jx.Encoder, c *CPU) {
	e.ObjStart()
	field(e, "pc")
	e.UInt64(uint64(c.PC))
	field(e, "sp")
	e.UInt64(uint64(c.SP))
	field(e, "p")
	e.UInt64(uint64(c.P))
	field(e, "a")
	e.UInt64(uint64(c.A))
	field(e, "x")
	e.UInt64(uint64(c.X))
	field(e, "y")
	e.UInt64(uint64(c.Y))
	field(e, "cycles")
	e.UInt64(c.Cycles)
	field(e, "stall")
	e.Int(c.Stall)
	field(e, "nmi")
	e.Bool(c.NMIPending)
	field(e, "irq")
	e.UInt64(uint64(c.IRQFlag))
	e.ObjEnd()
}

func decodeCPU(d *jx.Decoder, c *CPU) error {
	return d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "pc":
			return u(&c.PC, d)
		case "sp":
			return u(&c.SP, d)
		case "p":
			return u(&c.P, d)
		case "a":
			return u(&c.A, d)
		case "x":
			return u(&c.X, d)
		case "y":
			return u(&c.Y, d)
		case "cycles":
			return u(&c.Cycles, d)
		case "stall":
			return u(&c.Stall, d)
		case "nmi":
			c.NMIPending, err = d.Bool()
			return err
		case "irq":
			return u(&c.IRQFlag, d)
		}
		return d.Skip()
	})
}

func encodePPU(e *jx.Encoder, p *PPU) {
	e.ObjStart()
	field(e, "v")
	e.UInt64(uint64(p.V))
	field(e, "t")
	e.UInt64(uint64(p.T))
	field(e, "x")
	e.UInt64(uint64(p.X))
	field(e, "w")
	e.Bool(p.W)
	field(e, "ctrl")
	e.UInt64(uint64(p.Ctrl))
	field(e, "mask")
	e.UInt64(uint64(p.Mask))
	field(e, "oamaddr")
	e.UInt64(uint64(p.OAMAddr))
	field(e, "readbuf")
	e.UInt64(uint64(p.ReadBuf))
	field(e, "openbus")
	e.UInt64(uint64(p.OpenBus))
	field(e, "scanline")
	e.Int(p.Scanline)
	field(e, "dot")
	e.Int(p.Dot)
	field(e, "frame")
	e.UInt64(p.Frame)
	field(e, "vblank")
	e.Bool(p.VBlank)
	field(e, "sprite0hit")
	e.Bool(p.SpriteZeroHit)
	field(e, "overflow")
	e.Bool(p.SpriteOverflow)
	field(e, "nmiout")
	e.Bool(p.NMIOutput)
	field(e, "palette")
	e.Base64(p.Palette[:])
	field(e, "nametable")
	e.Base64(p.Nametable[:])
	field(e, "extrant")
	e.Base64(p.ExtraNT[:])
	field(e, "oam")
	e.Base64(p.OAM[:])
	field(e, "secoam")
	e.Base64(p.SecOAM[:])
	e.ObjEnd()
}

func decodePPU(d *jx.Decoder, p *PPU) error {
	return d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "v":
			return u(&p.V, d)
		case "t":
			return u(&p.T, d)
		case "x":
			return u(&p.X, d)
		case "w":
			p.W, err = d.Bool()
			return err
		case "ctrl":
			return u(&p.Ctrl, d)
		case "mask":
			return u(&p.Mask, d)
		case "oamaddr":
			return u(&p.OAMAddr, d)
		case "readbuf":
			return u(&p.ReadBuf, d)
		case "openbus":
			return u(&p.OpenBus, d)
		case "scanline":
			return u(&p.Scanline, d)
		case "dot":
			return u(&p.Dot, d)
		case "frame":
			return u(&p.Frame, d)
		case "vblank":
			p.VBlank, err = d.Bool()
			return err
		case "sprite0hit":
			p.SpriteZeroHit, err = d.Bool()
			return err
		case "overflow":
			p.SpriteOverflow, err = d.Bool()
			return err
		case "nmiout":
			p.NMIOutput, err = d.Bool()
			return err
		case "palette":
			return blobInto(d, p.Palette[:])
		case "nametable":
			return blobInto(d, p.Nametable[:])
		case "extrant":
			return blobInto(d, p.ExtraNT[:])
		case "oam":
			return blobInto(d, p.OAM[:])
		case "secoam":
			return blobInto(d, p.SecOAM[:])
		}
		return d.Skip()
	})
}

func encodeAPU(e *jx.Encoder, a *APU) {
	e.ObjStart()
	field(e, "pulse1")
	encodePulse(e, &a.Pulse1)
	field(e, "pulse2")
	encodePulse(e, &a.Pulse2)
	field(e, "triangle")
	encodeTriangle(e, &a.Triangle)
	field(e, "noise")
	encodeNoise(e, &a.Noise)
	field(e, "dmc")
	encodeDMC(e, &a.DMC)
	field(e, "mode5")
	e.Bool(a.FrameMode5)
	field(e, "inhibit")
	e.Bool(a.FrameInhibit)
	field(e, "framecycle")
	e.UInt64(uint64(a.FrameCycle))
	field(e, "frameirq")
	e.Bool(a.FrameIRQ)
	field(e, "cursor")
	e.UInt64(uint64(a.SampleCursor))
	e.ObjEnd()
}

func decodeAPU(d *jx.Decoder, a *APU) error {
	return d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "pulse1":
			return decodePulse(d, &a.Pulse1)
		case "pulse2":
			return decodePulse(d, &a.Pulse2)
		case "triangle":
			return decodeTriangle(d, &a.Triangle)
		case "noise":
			return decodeNoise(d, &a.Noise)
		case "dmc":
			return decodeDMC(d, &a.DMC)
		case "mode5":
			a.FrameMode5, err = d.Bool()
			return err
		case "inhibit":
			a.FrameInhibit, err = d.Bool()
			return err
		case "framecycle":
			return u(&a.FrameCycle, d)
		case "frameirq":
			a.FrameIRQ, err = d.Bool()
			return err
		case "cursor":
			return u(&a.SampleCursor, d)
		}
		return d.Skip()
	})
}

func encodeEnvelope(e *jx.Encoder, v *Envelope) {
	e.ObjStart()
	field(e, "start")
	e.Bool(v.Start)
	field(e, "loop")
	e.Bool(v.Loop)
	field(e, "constant")
	e.Bool(v.Constant)
	field(e, "period")
	e.UInt64(uint64(v.Period))
	field(e, "divider")
	e.UInt64(uint64(v.Divider))
	field(e, "volume")
	e.UInt64(uint64(v.Volume))
	e.ObjEnd()
}

func decodeEnvelope(d *jx.Decoder, v *Envelope) error {
	return d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "start":
			v.Start, err = d.Bool()
			return err
		case "loop":
			v.Loop, err = d.Bool()
			return err
		case "constant":
			v.Constant, err = d.Bool()
			return err
		case "period":
			return u(&v.Period, d)
		case "divider":
			return u(&v.Divider, d)
		case "volume":
			return u(&v.Volume, d)
		}
		return d.Skip()
	})
}

func encodeLength(e *jx.Encoder, l *Length) {
	e.ObjStart()
	field(e, "enabled")
	e.Bool(l.Enabled)
	field(e, "halt")
	e.Bool(l.Halt)
	field(e, "value")
	e.UInt64(uint64(l.Value))
	e.ObjEnd()
}

func decodeLength(d *jx.Decoder, l *Length) error {
	return d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "enabled":
			l.Enabled, err = d.Bool()
			return err
		case "halt":
			l.Halt, err = d.Bool()
			return err
		case "value":
			return u(&l.Value, d)
		}
		return d.Skip()
	})
}

func encodePulse(e *jx.Encoder, p *Pulse) {
	e.ObjStart()
	field(e, "duty")
	e.UInt64(uint64(p.Duty))
	field(e, "dutypos")
	e.UInt64(uint64(p.DutyPos))
	field(e, "period")
	e.UInt64(uint64(p.TimerPeriod))
	field(e, "timer")
	e.UInt64(uint64(p.TimerValue))
	field(e, "env")
	encodeEnvelope(e, &p.Envelope)
	field(e, "len")
	encodeLength(e, &p.Length)
	field(e, "sweepen")
	e.Bool(p.SweepEnabled)
	field(e, "sweepperiod")
	e.UInt64(uint64(p.SweepPeriod))
	field(e, "sweepneg")
	e.Bool(p.SweepNegate)
	field(e, "sweepshift")
	e.UInt64(uint64(p.SweepShift))
	field(e, "sweepreload")
	e.Bool(p.SweepReload)
	field(e, "sweepdiv")
	e.UInt64(uint64(p.SweepDivider))
	e.ObjEnd()
}

func decodePulse(d *jx.Decoder, p *Pulse) error {
	return d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "duty":
			return u(&p.Duty, d)
		case "dutypos":
			return u(&p.DutyPos, d)
		case "period":
			return u(&p.TimerPeriod, d)
		case "timer":
			return u(&p.TimerValue, d)
		case "env":
			return decodeEnvelope(d, &p.Envelope)
		case "len":
			return decodeLength(d, &p.Length)
		case "sweepen":
			p.SweepEnabled, err = d.Bool()
			return err
		case "sweepperiod":
			return u(&p.SweepPeriod, d)
		case "sweepneg":
			p.SweepNegate, err = d.Bool()
			return err
		case "sweepshift":
			return u(&p.SweepShift, d)
		case "sweepreload":
			p.SweepReload, err = d.Bool()
			return err
		case "sweepdiv":
			return u(&p.SweepDivider, d)
		}
		return d.Skip()
	})
}

func encodeTriangle(e *jx.Encoder, t *Triangle) {
	e.ObjStart()
	field(e, "period")
	e.UInt64(uint64(t.TimerPeriod))
	field(e, "timer")
	e.UInt64(uint64(t.TimerValue))
	field(e, "seqpos")
	e.UInt64(uint64(t.SeqPos))
	field(e, "len")
	encodeLength(e, &t.Length)
	field(e, "linear")
	e.UInt64(uint64(t.LinearValue))
	field(e, "linreload")
	e.UInt64(uint64(t.LinearReload))
	field(e, "linflag")
	e.Bool(t.LinearFlag)
	field(e, "control")
	e.Bool(t.Control)
	e.ObjEnd()
}

func decodeTriangle(d *jx.Decoder, t *Triangle) error {
	return d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "period":
			return u(&t.TimerPeriod, d)
		case "timer":
			return u(&t.TimerValue, d)
		case "seqpos":
			return u(&t.SeqPos, d)
		case "len":
			return decodeLength(d, &t.Length)
		case "linear":
			return u(&t.LinearValue, d)
		case "linreload":
			return u(&t.LinearReload, d)
		case "linflag":
			t.LinearFlag, err = d.Bool()
			return err
		case "control":
			t.Control, err = d.Bool()
			return err
		}
		return d.Skip()
	})
}

func encodeNoise(e *jx.Encoder, n *Noise) {
	e.ObjStart()
	field(e, "mode")
	e.Bool(n.Mode)
	field(e, "lfsr")
	e.UInt64(uint64(n.LFSR))
	field(e, "period")
	e.UInt64(uint64(n.TimerPeriod))
	field(e, "timer")
	e.UInt64(uint64(n.TimerValue))
	field(e, "env")
	encodeEnvelope(e, &n.Envelope)
	field(e, "len")
	encodeLength(e, &n.Length)
	e.ObjEnd()
}

func decodeNoise(d *jx.Decoder, n *Noise) error {
	return d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "mode":
			n.Mode, err = d.Bool()
			return err
		case "lfsr":
			return u(&n.LFSR, d)
		case "period":
			return u(&n.TimerPeriod, d)
		case "timer":
			return u(&n.TimerValue, d)
		case "env":
			return decodeEnvelope(d, &n.Envelope)
		case "len":
			return decodeLength(d, &n.Length)
		}
		return d.Skip()
	})
}

func encodeDMC(e *jx.Encoder, dm *DMC) {
	e.ObjStart()
	field(e, "enabled")
	e.Bool(dm.Enabled)
	field(e, "value")
	e.UInt64(uint64(dm.Value))
	field(e, "sampleaddr")
	e.UInt64(uint64(dm.SampleAddr))
	field(e, "samplelen")
	e.UInt64(uint64(dm.SampleLen))
	field(e, "curaddr")
	e.UInt64(uint64(dm.CurrentAddr))
	field(e, "curlen")
	e.UInt64(uint64(dm.CurrentLen))
	field(e, "shift")
	e.UInt64(uint64(dm.ShiftReg))
	field(e, "bits")
	e.UInt64(uint64(dm.BitCount))
	field(e, "period")
	e.UInt64(uint64(dm.TickPeriod))
	field(e, "timer")
	e.UInt64(uint64(dm.TickValue))
	field(e, "loop")
	e.Bool(dm.Loop)
	field(e, "irqen")
	e.Bool(dm.IRQEnabled)
	e.ObjEnd()
}

func decodeDMC(d *jx.Decoder, dm *DMC) error {
	return d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "enabled":
			dm.Enabled, err = d.Bool()
			return err
		case "value":
			return u(&dm.Value, d)
		case "sampleaddr":
			return u(&dm.SampleAddr, d)
		case "samplelen":
			return u(&dm.SampleLen, d)
		case "curaddr":
			return u(&dm.CurrentAddr, d)
		case "curlen":
			return u(&dm.CurrentLen, d)
		case "shift":
			return u(&dm.ShiftReg, d)
		case "bits":
			return u(&dm.BitCount, d)
		case "period":
			return u(&dm.TickPeriod, d)
		case "timer":
			return u(&dm.TickValue, d)
		case "loop":
			dm.Loop, err = d.Bool()
			return err
		case "irqen":
			dm.IRQEnabled, err = d.Bool()
			return err
		}
		return d.Skip()
	})
}

func encodeMapper(e *jx.Encoder, m *Mapper) {
	e.ObjStart()
	field(e, "number")
	e.UInt64(uint64(m.Number))
	field(e, "prgbank")
	e.UInt64(uint64(m.PRGBank))
	field(e, "chrbank")
	e.UInt64(uint64(m.CHRBank))
	field(e, "serial")
	e.UInt64(uint64(m.Serial))
	field(e, "count")
	e.UInt64(uint64(m.Count))
	field(e, "control")
	e.UInt64(uint64(m.Control))
	field(e, "chrbank0")
	e.UInt64(uint64(m.CHRBank0))
	field(e, "chrbank1")
	e.UInt64(uint64(m.CHRBank1))
	field(e, "screenb")
	e.Bool(m.SingleScreenB)
	field(e, "bankselect")
	e.UInt64(uint64(m.BankSelect))
	field(e, "bankregs")
	e.Base64(m.BankRegs[:])
	field(e, "mirror")
	e.UInt64(uint64(m.MirrorReg))
	field(e, "ramprotect")
	e.UInt64(uint64(m.RAMProtect))
	field(e, "irqlatch")
	e.UInt64(uint64(m.IRQLatch))
	field(e, "irqcounter")
	e.UInt64(uint64(m.IRQCounter))
	field(e, "irqreload")
	e.Bool(m.IRQReload)
	field(e, "irqenabled")
	e.Bool(m.IRQEnabled)
	field(e, "irqflag")
	e.Bool(m.IRQFlag)
	field(e, "lasta12")
	e.Bool(m.LastA12)
	field(e, "prgram")
	e.Base64(m.PRGRAM)
	field(e, "chrram")
	e.Base64(m.CHRRAM)
	e.ObjEnd()
}

func decodeMapper(d *jx.Decoder, m *Mapper) error {
	return d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "number":
			return u(&m.Number, d)
		case "prgbank":
			return u(&m.PRGBank, d)
		case "chrbank":
			return u(&m.CHRBank, d)
		case "serial":
			return u(&m.Serial, d)
		case "count":
			return u(&m.Count, d)
		case "control":
			return u(&m.Control, d)
		case "chrbank0":
			return u(&m.CHRBank0, d)
		case "chrbank1":
			return u(&m.CHRBank1, d)
		case "screenb":
			m.SingleScreenB, err = d.Bool()
			return err
		case "bankselect":
			return u(&m.BankSelect, d)
		case "bankregs":
			return blobInto(d, m.BankRegs[:])
		case "mirror":
			return u(&m.MirrorReg, d)
		case "ramprotect":
			return u(&m.RAMProtect, d)
		case "irqlatch":
			return u(&m.IRQLatch, d)
		case "irqcounter":
			return u(&m.IRQCounter, d)
		case "irqreload":
			m.IRQReload, err = d.Bool()
			return err
		case "irqenabled":
			m.IRQEnabled, err = d.Bool()
			return err
		case "irqflag":
			m.IRQFlag, err = d.Bool()
			return err
		case "lasta12":
			m.LastA12, err = d.Bool()
			return err
		case "prgram":
			m.PRGRAM, err = d.Base64()
			return err
		case "chrram":
			m.CHRRAM, err = d.Base64()
			return err
		}
		return d.Skip()
	})
}

func encodeController(e *jx.Encoder, c *Controller) {
	e.ObjStart()
	field(e, "buttons")
	e.UInt64(uint64(c.Buttons))
	field(e, "index")
	e.UInt64(uint64(c.Index))
	field(e, "strobe")
	e.Bool(c.Strobe)
	e.ObjEnd()
}

func decodeController(d *jx.Decoder, c *Controller) error {
	return d.Obj(func(d *jx.Decoder, key string) (err error) {
		switch key {
		case "buttons":
			return u(&c.Buttons, d)
		case "index":
			return u(&c.Index, d)
		case "strobe":
			c.Strobe, err = d.Bool()
			return err
		}
		return d.Skip()
	})
}
