package judge

import (
	"testing"

	kson "github.com/ksonengine/core"
)

func fourChipChart() (*kson.TimingMap, *kson.ScoreTickSequence) {
	c := &kson.Chart{
		Resolution: 240,
		BPM:        []kson.BPMPoint{{Tick: 0, BPM: 120}},
		TimeSig:    []kson.TimeSigPoint{{Measure: 0, Num: 4, Denom: 4}},
	}
	c.BT[0] = []kson.Interval{{Y: 0}, {Y: 240}, {Y: 480}, {Y: 720}}
	tm := kson.NewTimingMap(c)
	seq, err := kson.GenerateScoreTicks(c, tm)
	if err != nil {
		panic(err)
	}
	return tm, seq
}

func TestSummarizePerfect(t *testing.T) {
	tm, seq := fourChipChart()
	j := NewJudge(seq, tm, DefaultHitWindow(), GaugeNormal, 2000)

	for _, tk := range seq.Ticks {
		ms := tm.TickToMS(tk.Tick)
		j.Update(ms, []InputEvent{{Kind: InputButtonPress, TimeMS: ms, Lane: tk.Lane}})
	}

	r := Summarize(j)
	if r.Badge != ClearPerfect {
		t.Errorf("Badge = %v, want ClearPerfect", r.Badge)
	}
	if r.Score != 10_000_000 {
		t.Errorf("Score = %d, want 10000000", r.Score)
	}
	if r.Grade != GradeS {
		t.Errorf("Grade = %v, want GradeS", r.Grade)
	}
	if r.MissCount != 0 || r.CritCount != 4 {
		t.Errorf("CritCount/MissCount = %d/%d, want 4/0", r.CritCount, r.MissCount)
	}
}

func TestSummarizeAllMissesIsNotCleared(t *testing.T) {
	tm, seq := fourChipChart()
	window := DefaultHitWindow()
	j := NewJudge(seq, tm, window, GaugeNormal, 2000)

	for _, tk := range seq.Ticks {
		j.Update(tm.TickToMS(tk.Tick)+window.Miss+10, nil)
	}

	r := Summarize(j)
	if r.Score != 0 {
		t.Errorf("Score = %d, want 0", r.Score)
	}
	if r.Badge != ClearPlayed {
		t.Errorf("Badge = %v, want ClearPlayed", r.Badge)
	}
	if r.Grade != GradeD {
		t.Errorf("Grade = %v, want GradeD", r.Grade)
	}
}

func TestSummarizeManualExitIsClearNone(t *testing.T) {
	tm, seq := fourChipChart()
	j := NewJudge(seq, tm, DefaultHitWindow(), GaugeNormal, 2000)

	j.Update(0, []InputEvent{{Kind: InputButtonPress, TimeMS: 0, Lane: 0}})
	j.Abort(10)

	r := Summarize(j)
	if r.Outcome != OutcomeManualExit {
		t.Fatalf("Outcome = %v, want OutcomeManualExit", r.Outcome)
	}
	if r.Badge != ClearNone {
		t.Errorf("Badge = %v, want ClearNone", r.Badge)
	}
}

func TestSummarizeHardGaugeDeathIsClearPlayed(t *testing.T) {
	tm, seq := fourChipChart()
	window := DefaultHitWindow()
	j := NewJudge(seq, tm, window, GaugeHard, 2000)

	for _, tk := range seq.Ticks {
		j.Update(tm.TickToMS(tk.Tick)+window.Miss+10, nil)
	}

	r := Summarize(j)
	if r.Outcome != OutcomeFailed {
		t.Fatalf("Outcome = %v, want OutcomeFailed", r.Outcome)
	}
	if r.Badge != ClearPlayed {
		t.Errorf("Badge = %v, want ClearPlayed", r.Badge)
	}
}

func TestGradeThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  Grade
	}{
		{10_000_000, GradeS},
		{9_900_000, GradeS},
		{9_850_000, GradeAAA},
		{9_000_000, GradeA},
		{8_000_000, GradeB},
		{7_000_000, GradeC},
		{0, GradeD},
	}
	for _, c := range cases {
		if got := gradeForScore(c.score); got != c.want {
			t.Errorf("gradeForScore(%d) = %v, want %v", c.score, got, c.want)
		}
	}
}
