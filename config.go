package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"famigo/emu/log"
	"famigo/hw"
)

// Config is the famigo host configuration, stored as TOML in the user
// config directory.
type Config struct {
	Input InputConfig `toml:"input"`
	Video VideoConfig `toml:"video"`
	Audio AudioConfig `toml:"audio"`
}

// InputConfig maps SDL scancode names to pad buttons, one section per
// controller.
type InputConfig struct {
	Pad1 PadConfig `toml:"pad1"`
	Pad2 PadConfig `toml:"pad2"`
}

type PadConfig struct {
	A      string `toml:"a"`
	B      string `toml:"b"`
	Select string `toml:"select"`
	Start  string `toml:"start"`
	Up     string `toml:"up"`
	Down   string `toml:"down"`
	Left   string `toml:"left"`
	Right  string `toml:"right"`
}

// keys returns the scancode names indexed by button bit.
func (p *PadConfig) keys() [8]string {
	return [8]string{
		hw.ButtonA:      p.A,
		hw.ButtonB:      p.B,
		hw.ButtonSelect: p.Select,
		hw.ButtonStart:  p.Start,
		hw.ButtonUp:     p.Up,
		hw.ButtonDown:   p.Down,
		hw.ButtonLeft:   p.Left,
		hw.ButtonRight:  p.Right,
	}
}

type VideoConfig struct {
	DisableVSync bool `toml:"disable_vsync"`
}

type AudioConfig struct {
	Volume float64 `toml:"volume"`
}

const cfgFilename = "config.toml"

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	dir = filepath.Join(dir, "famigo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.ModEmu.Warnf("failed to create config directory %s: %v", dir, err)
		return "."
	}
	return dir
}

func defaultConfig() Config {
	return Config{
		Input: InputConfig{
			Pad1: PadConfig{
				A: "X", B: "Z", Select: "Right Shift", Start: "Return",
				Up: "Up", Down: "Down", Left: "Left", Right: "Right",
			},
		},
		Audio: AudioConfig{Volume: 1.0},
	}
}

// LoadConfigOrDefault loads the configuration from the famigo config
// directory, or provides a default one.
func LoadConfigOrDefault() Config {
	var cfg Config
	_, err := toml.DecodeFile(filepath.Join(configDir(), cfgFilename), &cfg)
	if err != nil {
		return defaultConfig()
	}
	return cfg
}

// SaveConfig into the famigo config directory.
func SaveConfig(cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(configDir(), cfgFilename), buf, 0o644)
}
