package main

import (
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/sync/errgroup"

	"famigo/emu/log"
	"famigo/hw"
	"famigo/hw/apu"
	"famigo/hw/mappers"
	"famigo/ines"
)

const (
	screenW = 256
	screenH = 240
	scale   = 3
)

func runROM(opts Run) {
	cfg := LoadConfigOrDefault()

	rom, err := ines.Open(opts.RomPath)
	checkf(err, "failed to read %s", opts.RomPath)

	cart := hw.NewCartridge(rom)
	mapper, err := mappers.New(cart, rom.Mapper())
	checkf(err, "failed to load %s", opts.RomPath)

	nes := hw.PowerUp(cart, mapper)
	if opts.Trace != nil {
		nes.CPU.SetTraceOutput(opts.Trace)
		defer opts.Trace.Close()
	}

	savPath := strings.TrimSuffix(opts.RomPath, filepath.Ext(opts.RomPath)) + ".sav"
	if cart.Battery() {
		loadBatteryRAM(cart, savPath)
	}

	err = runLoop(nes, cfg)

	if cart.Battery() {
		saveBatteryRAM(cart, savPath)
	}
	checkf(err, "emulation stopped")
}

func loadBatteryRAM(cart *hw.Cartridge, path string) {
	data, err := os.ReadFile(path)
	if err != nil || len(data) != len(cart.PRGRAM) {
		return
	}
	copy(cart.PRGRAM, data)
	log.ModEmu.InfoZ("loaded battery RAM").String("path", path).End()
}

func saveBatteryRAM(cart *hw.Cartridge, path string) {
	if err := os.WriteFile(path, cart.PRGRAM, 0o644); err != nil {
		log.ModEmu.WarnZ("failed to save battery RAM").Error("err", err).End()
		return
	}
	log.ModEmu.InfoZ("saved battery RAM").String("path", path).End()
}

// hostFrame is what the emulation goroutine hands to the presentation
// loop: a copy of the frame buffer plus the audio produced during it.
type hostFrame struct {
	pix     []byte
	samples []int16
}

// runLoop drives the console. The core runs in its own goroutine,
// producing one hostFrame per video frame; the main goroutine owns SDL:
// events, texture upload and the audio queue. The two sides communicate
// only through the frame channel and the input snapshot.
func runLoop(nes *hw.NES, cfg Config) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return err
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow("famigo",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		screenW*scale, screenH*scale, sdl.WINDOW_SHOWN)
	if err != nil {
		return err
	}
	defer window.Destroy()

	rflags := uint32(sdl.RENDERER_ACCELERATED)
	if !cfg.Video.DisableVSync {
		rflags |= sdl.RENDERER_PRESENTVSYNC
	}
	renderer, err := sdl.CreateRenderer(window, -1, rflags)
	if err != nil {
		return err
	}
	defer renderer.Destroy()

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING, screenW, screenH)
	if err != nil {
		return err
	}
	defer texture.Destroy()

	spec := sdl.AudioSpec{
		Freq:     apu.SampleRate,
		Format:   sdl.AUDIO_S16LSB,
		Channels: 1,
		Samples:  1024,
	}
	audio, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		return err
	}
	defer sdl.CloseAudioDevice(audio)
	sdl.PauseAudioDevice(audio, false)

	nes.APU.SetVolume(cfg.Audio.Volume)

	pads := newPadState(cfg.Input)

	frames := make(chan hostFrame, 1)
	done := make(chan struct{})

	var g errgroup.Group
	g.Go(func() error {
		defer close(frames)
		for {
			select {
			case <-done:
				return nil
			default:
			}

			p1, p2 := pads.snapshot()
			nes.SetButtons(0, p1)
			nes.SetButtons(1, p2)

			if err := nes.RunFrame(); err != nil {
				return err
			}

			f := hostFrame{
				pix:     append([]byte(nil), nes.Frame().Pix...),
				samples: nes.Samples(),
			}
			select {
			case frames <- f:
			case <-done:
				return nil
			}
		}
	})

	running := true
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				if e.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
					running = false
					break
				}
				pads.handleKey(e)
			}
		}

		f, ok := <-frames
		if !ok {
			break
		}
		if err := texture.Update(nil, unsafe.Pointer(&f.pix[0]), screenW*4); err != nil {
			log.ModEmu.WarnZ("texture update failed").Error("err", err).End()
		}
		renderer.Clear()
		renderer.Copy(texture, nil, nil)
		renderer.Present()

		if len(f.samples) > 0 {
			buf := unsafe.Slice((*byte)(unsafe.Pointer(&f.samples[0])), len(f.samples)*2)
			if err := sdl.QueueAudio(audio, buf); err != nil {
				log.ModSound.DebugZ("failed to queue audio").Error("err", err).End()
			}
		}
	}

	close(done)
	for range frames {
		// unblock the producer
	}
	return g.Wait()
}
