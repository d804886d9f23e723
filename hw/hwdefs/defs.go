// Package hwdefs holds the handful of definitions shared between the hw
// package and its sub-packages.
package hwdefs

// IRQSource identifies one of the sources wired-OR'ed onto the CPU IRQ line.
type IRQSource uint8

const (
	External     IRQSource = 1 << iota // cartridge mapper
	FrameCounter                       // APU frame counter
	DMC                                // APU delta modulation channel
)
