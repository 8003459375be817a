package kson

import "testing"

func generate(t *testing.T, c *Chart) *ScoreTickSequence {
	t.Helper()
	tm := NewTimingMap(c)
	seq, err := GenerateScoreTicks(c, tm)
	if err != nil {
		t.Fatalf("GenerateScoreTicks: %v", err)
	}
	return seq
}

func TestScoreTickSingleChip(t *testing.T) {
	c := cloneTestChart()
	c.BT[0] = []Interval{{Y: 480}}

	seq := generate(t, c)
	if len(seq.Ticks) != 1 {
		t.Fatalf("got %d ticks, want 1", len(seq.Ticks))
	}
	got := seq.Ticks[0]
	if got.Kind != KindChip || got.Lane != 0 || got.Tick != 480 {
		t.Errorf("got %+v, want Chip{lane=0}@480", got)
	}
}

func TestScoreTickOneBeatHold(t *testing.T) {
	c := cloneTestChart()
	c.BT[0] = []Interval{{Y: 0, L: 240}}

	seq := generate(t, c)
	want := []Tick{60, 120, 180}
	if len(seq.Ticks) != len(want) {
		t.Fatalf("got %d ticks, want %d", len(seq.Ticks), len(want))
	}
	for i, tick := range want {
		if seq.Ticks[i].Tick != tick || seq.Ticks[i].Kind != KindHold {
			t.Errorf("tick %d = %+v, want Hold@%d", i, seq.Ticks[i], tick)
		}
	}
}

func TestScoreTickSlam(t *testing.T) {
	c := cloneTestChart()
	c.Laser[0] = []LaserSection{{
		Y: 0,
		Points: []GraphPoint{
			{RY: 0, V: 0.0, VF: f(1.0)},
			{RY: 480, V: 1.0},
		},
	}}

	seq := generate(t, c)
	if seq.Ticks[0].Kind != KindSlam || seq.Ticks[0].Tick != 0 {
		t.Fatalf("first tick = %+v, want Slam@0", seq.Ticks[0])
	}
	if seq.Ticks[0].StartV != 0 || seq.Ticks[0].EndV != 1 {
		t.Errorf("slam values = (%v,%v), want (0,1)", seq.Ticks[0].StartV, seq.Ticks[0].EndV)
	}
	if seq.Summary.SlamCount != 1 {
		t.Errorf("SlamCount = %d, want 1", seq.Summary.SlamCount)
	}
	foundLaserPoint := false
	for _, tk := range seq.Ticks[1:] {
		if tk.Kind == KindLaserPoint {
			foundLaserPoint = true
			if tk.TargetV != 1.0 {
				t.Errorf("laser point target = %v, want 1.0 (constant segment)", tk.TargetV)
			}
		}
	}
	if !foundLaserPoint {
		t.Error("expected at least one LaserPoint after the slam")
	}
}

func TestScoreTickTempoChange(t *testing.T) {
	c := cloneTestChart()
	c.BPM = []BPMPoint{{Tick: 0, BPM: 120}, {Tick: 960, BPM: 240}}
	c.BT[0] = []Interval{{Y: 1920}}

	tm := NewTimingMap(c)
	if got := tm.TickToMS(1920); got != 3000 {
		t.Fatalf("TickToMS(1920) = %v, want 3000", got)
	}
}

func TestScoreTickHighBPMHoldStep(t *testing.T) {
	c := cloneTestChart()
	c.BPM = []BPMPoint{{Tick: 0, BPM: 300}}
	c.BT[0] = []Interval{{Y: 0, L: 120}}

	seq := generate(t, c)
	if len(seq.Ticks) != 1 {
		t.Fatalf("got %d ticks, want 1", len(seq.Ticks))
	}
	if seq.Ticks[0].Tick != 60 {
		t.Errorf("hold tick = %d, want 60", seq.Ticks[0].Tick)
	}
}

func TestScoreTickEmptyLaserSegment(t *testing.T) {
	c := cloneTestChart()
	c.Laser[0] = []LaserSection{{
		Y:      0,
		Points: []GraphPoint{{RY: 0, V: 0.5}, {RY: 1, V: 0.5}},
	}}

	seq := generate(t, c)
	if len(seq.Ticks) != 1 {
		t.Fatalf("got %d ticks, want 1", len(seq.Ticks))
	}
	got := seq.Ticks[0]
	if got.Kind != KindLaserPoint || got.Tick != 0 || got.TargetV != 0.5 {
		t.Errorf("got %+v, want LaserPoint{target_v=0.5}@0", got)
	}
}

func TestScoreTickEmptyLaserSegmentMidSection(t *testing.T) {
	c := cloneTestChart()
	c.Laser[0] = []LaserSection{{
		Y: 0,
		Points: []GraphPoint{
			{RY: 0, V: 0.0},
			{RY: 480, V: 1.0},
			{RY: 490, V: 0.5},
		},
	}}

	seq := generate(t, c)

	var found *ScoreTick
	for i := range seq.Ticks {
		if seq.Ticks[i].Tick == 485 {
			found = &seq.Ticks[i]
		}
	}
	if found == nil {
		t.Fatalf("got %+v, want a LaserPoint at tick 485 for the too-short second segment", seq.Ticks)
	}
	if found.Kind != KindLaserPoint || found.TargetV != 0.75 {
		t.Errorf("got %+v, want LaserPoint{target_v=0.75}@485", found)
	}
}

func TestScoreTickOrderAndTieBreak(t *testing.T) {
	c := cloneTestChart()
	c.BT[0] = []Interval{{Y: 480}}
	c.Laser[0] = []LaserSection{{
		Y: 480,
		Points: []GraphPoint{
			{RY: 0, V: 0.0, VF: f(1.0)},
			{RY: 480, V: 1.0},
		},
	}}

	seq := generate(t, c)
	for i := 1; i < len(seq.Ticks); i++ {
		if seq.Ticks[i].Tick < seq.Ticks[i-1].Tick {
			t.Fatalf("tick order violated at index %d: %+v then %+v", i, seq.Ticks[i-1], seq.Ticks[i])
		}
	}
	// At tick 480 the slam must sort before the chip.
	var sawSlam, sawChipAfter bool
	for _, tk := range seq.Ticks {
		if tk.Tick != 480 {
			continue
		}
		if tk.Kind == KindSlam {
			sawSlam = true
		}
		if tk.Kind == KindChip {
			if !sawSlam {
				t.Fatalf("chip at tick 480 sorted before slam")
			}
			sawChipAfter = true
		}
	}
	if !sawSlam || !sawChipAfter {
		t.Fatalf("expected both a slam and a chip at tick 480")
	}
}

func TestScoreCapBounds(t *testing.T) {
	c := cloneTestChart()
	c.BT[0] = []Interval{{Y: 0}, {Y: 480}, {Y: 960}}

	seq := generate(t, c)
	if seq.Summary.Total != 3 || seq.Summary.ChipCount != 3 {
		t.Fatalf("summary = %+v, want 3 chips", seq.Summary)
	}
}

func TestMalformedLaserRejected(t *testing.T) {
	c := cloneTestChart()
	c.Laser[0] = []LaserSection{{Y: 0, Points: []GraphPoint{{RY: 0, V: 0}}}}

	tm := NewTimingMap(c)
	if _, err := GenerateScoreTicks(c, tm); err == nil {
		t.Fatal("expected error for laser section with one point")
	}
}
