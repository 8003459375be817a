package config

import (
	"path/filepath"
	"testing"

	"github.com/ksonengine/core/judge"
)

func TestDefaultMatchesJudgeDefaults(t *testing.T) {
	c := Default()
	w := judge.DefaultHitWindow()
	if c.Judge.PerfectMS != w.Perfect || c.Judge.GoodMS != w.Good || c.Judge.MissMS != w.Miss {
		t.Fatalf("Default().Judge = %+v, want windows matching %+v", c.Judge, w)
	}
	if c.GaugeKind() != judge.GaugeNormal {
		t.Fatalf("Default().GaugeKind() = %v, want GaugeNormal", c.GaugeKind())
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load() err = %v, want nil", err)
	}
	if c != Default() {
		t.Fatalf("Load(missing) = %+v, want %+v", c, Default())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	c := Default()
	c.Judge.Gauge = "hard"
	c.Audio.Volume = 0.75

	if err := Save(c, path); err != nil {
		t.Fatalf("Save() err = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if got != c {
		t.Fatalf("round trip = %+v, want %+v", got, c)
	}
	if got.GaugeKind() != judge.GaugeHard {
		t.Fatalf("GaugeKind() = %v, want GaugeHard", got.GaugeKind())
	}
}

func TestHitWindowBuildsFromConfig(t *testing.T) {
	c := Default()
	c.Judge.PerfectMS = 20
	hw := c.HitWindow()
	if hw.Perfect != 20 {
		t.Fatalf("HitWindow().Perfect = %v, want 20", hw.Perfect)
	}
}
