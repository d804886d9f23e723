package hw

import (
	"testing"
)

func TestControllerStrobeHighTracksA(t *testing.T) {
	ct := NewController()
	ct.WriteStrobe(1)

	ct.SetButtons(0x01)
	if got := ct.Read() & 1; got != 1 {
		t.Errorf("A pressed, read = %d, want 1", got)
	}
	ct.SetButtons(0x00)
	if got := ct.Read() & 1; got != 0 {
		t.Errorf("A released, read = %d, want 0", got)
	}

	// While the strobe stays high the shift index never advances.
	ct.SetButtons(0x02)
	for range 5 {
		if got := ct.Read() & 1; got != 0 {
			t.Fatal("index advanced with strobe high")
		}
	}
}

func TestControllerShiftOrder(t *testing.T) {
	ct := NewController()
	ct.SetButtons(0b0001_1010) // B, Start, Up... bit order A,B,Sel,Start,Up,..
	ct.WriteStrobe(1)
	ct.WriteStrobe(0)

	want := []uint8{0, 1, 0, 1, 1, 0, 0, 0}
	for i, w := range want {
		if got := ct.Read(); got != w {
			t.Errorf("bit %d = %d, want %d", i, got, w)
		}
	}
}
