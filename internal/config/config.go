// Package config loads the play-session settings shared by the cmd/
// tools: hit windows, gauge kind, audio device preferences, from a TOML
// file, following the flag-driven defaults pattern of the original
// reverb configuration this package replaces.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ksonengine/core/judge"
)

// Config is the on-disk settings file for a play session.
type Config struct {
	Audio struct {
		OutputHz     int     `toml:"output_hz"`
		BufferFrames int     `toml:"buffer_frames"`
		Volume       float64 `toml:"volume"`
	} `toml:"audio"`

	Judge struct {
		Gauge         string  `toml:"gauge"` // "normal" or "hard"
		PerfectMS     float64 `toml:"perfect_ms"`
		GoodMS        float64 `toml:"good_ms"`
		HoldMS        float64 `toml:"hold_ms"`
		MissMS        float64 `toml:"miss_ms"`
		SlamMS        float64 `toml:"slam_ms"`
		LaserTolerance float64 `toml:"laser_tolerance"`
	} `toml:"judge"`
}

// Default returns the built-in defaults, matching judge.DefaultHitWindow
// and a 44.1kHz stereo output.
func Default() Config {
	var c Config
	c.Audio.OutputHz = 44100
	c.Audio.BufferFrames = 1024
	c.Audio.Volume = 1.0

	w := judge.DefaultHitWindow()
	c.Judge.Gauge = "normal"
	c.Judge.PerfectMS = w.Perfect
	c.Judge.GoodMS = w.Good
	c.Judge.HoldMS = w.Hold
	c.Judge.MissMS = w.Miss
	c.Judge.SlamMS = w.Slam
	c.Judge.LaserTolerance = judge.LaserTolerance
	return c
}

// Load reads and parses a TOML config file, filling in any field absent
// from the file with its default value.
func Load(path string) (Config, error) {
	c := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c, nil
	}
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// Save writes c to path as TOML.
func Save(c Config, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// HitWindow builds a judge.HitWindow from the configured judge section.
func (c Config) HitWindow() judge.HitWindow {
	return judge.HitWindow{
		Perfect: c.Judge.PerfectMS,
		Good:    c.Judge.GoodMS,
		Hold:    c.Judge.HoldMS,
		Miss:    c.Judge.MissMS,
		Slam:    c.Judge.SlamMS,
	}
}

// GaugeKind parses the configured gauge name, defaulting to Normal for
// an unrecognized value.
func (c Config) GaugeKind() judge.GaugeKind {
	if c.Judge.Gauge == "hard" {
		return judge.GaugeHard
	}
	return judge.GaugeNormal
}
