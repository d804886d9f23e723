package apu

import (
	"github.com/arl/blip"

	"famigo/emu/log"
)

const (
	// SampleRate is the output rate of the mixer.
	SampleRate = 44100

	// ntscClockRate is the NTSC CPU clock the mixer resamples from.
	ntscClockRate = 1789773

	// Headroom for a few frames of samples between host reads.
	maxQueuedSamples = SampleRate / 60 * 8
)

// Mixer accumulates the per-cycle DAC level as band-limited deltas and
// resamples them to 44.1 kHz, queueing roughly 735 mono samples per video
// frame for the host to drain.
type Mixer struct {
	buf    *blip.Buffer
	prev   int32
	out    []int16
	volume float64
}

func NewMixer() *Mixer {
	m := &Mixer{
		buf:    blip.NewBuffer(maxQueuedSamples),
		volume: 1.0,
	}
	m.buf.SetRates(ntscClockRate, SampleRate)
	return m
}

func (m *Mixer) Reset() {
	m.buf.Clear()
	m.prev = 0
	m.out = m.out[:0]
}

// SetVolume scales the output amplitude; 1.0 is full scale.
func (m *Mixer) SetVolume(v float64) {
	m.volume = v
}

// AddSample records the DAC level at the given CPU cycle of the current
// frame. level is the mixed output in [0, 1].
func (m *Mixer) AddSample(cycle uint32, level float64) {
	amp := int32(level * m.volume * 30000)
	if amp != m.prev {
		m.buf.AddDelta(uint64(cycle), amp-m.prev)
		m.prev = amp
	}
}

// EndFrame closes the current time frame, clocks long, and moves the
// resampled output into the queue.
func (m *Mixer) EndFrame(clocks uint32) {
	m.buf.EndFrame(int(clocks))

	avail := m.buf.SamplesAvailable()
	if len(m.out)+avail > maxQueuedSamples {
		// The host isn't draining: drop the backlog rather than grow it.
		log.ModSound.WarnZ("audio queue overrun").Int("queued", len(m.out)).End()
		m.out = m.out[:0]
	}
	start := len(m.out)
	m.out = append(m.out, make([]int16, avail)...)
	m.buf.ReadSamples(m.out[start:], avail, blip.Mono)
}

// Drain returns the queued samples and empties the queue.
func (m *Mixer) Drain() []int16 {
	s := m.out
	m.out = nil
	return s
}
