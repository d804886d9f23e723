package snapshot

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func sampleState() *NES {
	state := &NES{Version: 1}

	state.CPU = CPU{
		PC: 0xC123, SP: 0xF0, P: 0x65, A: 0x42, X: 0x01, Y: 0xFF,
		Cycles: 123456789, Stall: 3, NMIPending: true, IRQFlag: 0x05,
	}

	state.PPU.V = 0x2108
	state.PPU.T = 0x0C00
	state.PPU.X = 5
	state.PPU.W = true
	state.PPU.Scanline = -1
	state.PPU.Dot = 340
	state.PPU.Frame = 42
	state.PPU.VBlank = true
	for i := range state.PPU.Palette {
		state.PPU.Palette[i] = uint8(i)
	}
	for i := range state.PPU.OAM {
		state.PPU.OAM[i] = uint8(i * 3)
	}
	state.PPU.Nametable[0x123] = 0xAB

	state.APU.Pulse1 = Pulse{
		Duty: 2, DutyPos: 5, TimerPeriod: 0x123, TimerValue: 0x45,
		Envelope: Envelope{Start: true, Period: 7, Volume: 12},
		Length:   Length{Enabled: true, Value: 40},
		SweepEnabled: true, SweepPeriod: 3, SweepNegate: true, SweepShift: 2,
	}
	state.APU.Noise = Noise{Mode: true, LFSR: 0x4001, TimerPeriod: 202}
	state.APU.DMC = DMC{Enabled: true, Value: 64, SampleAddr: 0xC000, CurrentLen: 17}
	state.APU.FrameMode5 = true
	state.APU.FrameCycle = 12345
	state.APU.SampleCursor = 4567

	state.RAM[0x200] = 0x42
	state.RAM[0x7FF] = 0x99

	state.Mapper = Mapper{
		Number: 4, BankSelect: 0x46, BankRegs: [8]uint8{0, 2, 4, 5, 6, 7, 3, 1},
		IRQLatch: 4, IRQCounter: 2, IRQEnabled: true, LastA12: true,
		PRGRAM: []byte{1, 2, 3}, CHRRAM: []byte{},
	}

	state.Controllers[0] = Controller{Buttons: 0x81, Index: 3}
	state.Controllers[1] = Controller{Strobe: true}

	state.FrameBuffer = []byte{10, 20, 30, 40}
	return state
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	state := sampleState()

	got, err := Decode(Encode(state))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(state, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte("{not json")); err == nil {
		t.Error("no error decoding garbage")
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	state, err := Decode([]byte(`{"version": 2, "future": {"a": [1,2,3]}}`))
	if err != nil {
		t.Fatal(err)
	}
	if state.Version != 2 {
		t.Errorf("version = %d, want 2", state.Version)
	}
}
