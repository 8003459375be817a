package judge

import (
	"sort"

	kson "github.com/ksonengine/core"
)

// slamDeltaThreshold is the minimum magnitude of an accumulated laser
// delta, in the correct direction, required to satisfy a LaserSlam. Not
// chart-specified; a design choice documented in DESIGN.md.
const slamDeltaThreshold = 0.15

type holdStateKind int

const (
	holdIdle holdStateKind = iota
	holdActive
	holdBroken
)

type holdLaneState struct {
	state         holdStateKind
	intervalStart kson.Tick
}

type laserSideState struct {
	locked     bool
	trackedV   float64
	pendingDue float64 // accumulated delta since the last satisfied slam
}

// Judge consumes an immutable score-tick sequence and a stream of
// timestamped input events, maintaining combo, score, gauge, and the
// per-lane/per-side continuous state the format requires. It is created
// once per play and owned exclusively by the caller's game-tick loop.
type Judge struct {
	ticks  []kson.ScoreTick
	idealMS []float64
	judged []bool

	window HitWindow
	total  int

	cursor int

	chipIdx [6][]int

	holdIdx []int
	holdPos int

	laserIdx []int
	laserPos int

	holdState  [6]holdLaneState
	laserState [2]laserSideState
	pressed    [6]bool

	combo, maxCombo int
	earned          int

	gauge *Gauge

	judgments []Judgment

	droppedInputs int

	lastSampleMS     float64
	sampleIntervalMS float64

	outcome    PlayOutcome
	terminated bool
}

// NewJudge builds a Judge for a score-tick sequence, given the timing
// map used to compute each tick's ideal millisecond time, the hit
// windows in effect, the gauge kind to track, and the total duration of
// the play in milliseconds (used to space gauge samples).
func NewJudge(seq *kson.ScoreTickSequence, tm *kson.TimingMap, window HitWindow, gaugeKind GaugeKind, totalDurationMS float64) *Judge {
	j := &Judge{
		ticks:   seq.Ticks,
		idealMS: make([]float64, len(seq.Ticks)),
		judged:  make([]bool, len(seq.Ticks)),
		window:  window,
		total:   seq.Summary.Total,
		gauge:   NewGauge(gaugeKind, seq.Summary.Total),
	}
	if totalDurationMS <= 0 {
		totalDurationMS = 1
	}
	j.sampleIntervalMS = totalDurationMS / gaugeSampleCount

	for i, t := range seq.Ticks {
		j.idealMS[i] = tm.TickToMS(t.Tick)
		switch t.Kind {
		case kson.KindChip:
			j.chipIdx[t.Lane] = append(j.chipIdx[t.Lane], i)
		case kson.KindHold:
			j.holdIdx = append(j.holdIdx, i)
		case kson.KindLaserPoint, kson.KindSlam:
			j.laserIdx = append(j.laserIdx, i)
		}
	}
	return j
}

// Judgments returns every judgment emitted so far, in emission order.
func (j *Judge) Judgments() []Judgment { return j.judgments }

// Combo returns the current combo and the maximum combo reached so far.
func (j *Judge) Combo() (current, max int) { return j.combo, j.maxCombo }

// Score returns the running score on the fixed 10,000,000-point scale.
func (j *Judge) Score() int {
	if j.total == 0 {
		return 0
	}
	return (10_000_000 * j.earned) / (2 * j.total)
}

// Gauge returns the gauge being tracked.
func (j *Judge) Gauge() *Gauge { return j.gauge }

// Update advances the judge to playback position tMS, draining the given
// input events (which need not already be time-sorted), and returns the
// judgments newly emitted by this call.
func (j *Judge) Update(tMS float64, events []InputEvent) []Judgment {
	start := len(j.judgments)

	events = j.reorderAndFilter(tMS, events)

	j.missSweep(tMS)
	for _, ev := range events {
		j.applyInput(ev, tMS)
	}
	j.processHolds(tMS)
	j.processLasers(tMS)

	if tMS-j.lastSampleMS >= j.sampleIntervalMS {
		j.gauge.Sample()
		j.lastSampleMS = tMS
	}

	return j.judgments[start:]
}

// reorderAndFilter sorts events by timestamp and drops any whose
// timestamp is more than window.Good in the past, counting each as a
// dropped input.
func (j *Judge) reorderAndFilter(tMS float64, events []InputEvent) []InputEvent {
	sort.SliceStable(events, func(a, b int) bool { return events[a].TimeMS < events[b].TimeMS })
	kept := events[:0:0]
	for _, ev := range events {
		if tMS-ev.TimeMS > j.window.Good {
			j.droppedInputs++
			continue
		}
		kept = append(kept, ev)
	}
	return kept
}

func (j *Judge) missSweep(tMS float64) {
	for j.cursor < len(j.ticks) {
		if j.judged[j.cursor] {
			j.cursor++
			continue
		}
		if j.idealMS[j.cursor] >= tMS-j.window.Miss {
			break
		}
		j.emit(j.cursor, JudgmentMiss, 0, tMS)
		j.cursor++
	}
}

func (j *Judge) applyInput(ev InputEvent, tMS float64) {
	switch ev.Kind {
	case InputButtonPress:
		j.applyButtonPress(ev)
	case InputButtonRelease:
		if ev.Lane >= 0 && ev.Lane < 6 {
			j.pressed[ev.Lane] = false
		}
	case InputLaserUpdate:
		j.applyLaserUpdate(ev)
	}
}

func (j *Judge) applyButtonPress(ev InputEvent) {
	if ev.Lane < 0 || ev.Lane >= 6 {
		return
	}
	j.pressed[ev.Lane] = true

	best, bestDelta := -1, j.window.Good+1
	for _, idx := range j.chipIdx[ev.Lane] {
		if j.judged[idx] {
			continue
		}
		delta := ev.TimeMS - j.idealMS[idx]
		if absF(delta) > bestDelta {
			continue
		}
		if absF(delta) <= j.window.Good {
			best, bestDelta = idx, absF(delta)
		}
	}
	if best < 0 {
		return // ghost press: not scoring
	}
	delta := ev.TimeMS - j.idealMS[best]
	if absF(delta) <= j.window.Perfect {
		j.emit(best, JudgmentCrit, delta, ev.TimeMS)
	} else {
		j.emit(best, JudgmentNear, delta, ev.TimeMS)
	}
}

func (j *Judge) applyLaserUpdate(ev InputEvent) {
	if ev.Side < 0 || ev.Side >= 2 {
		return
	}
	s := &j.laserState[ev.Side]
	s.pendingDue += ev.Delta
	if !s.locked {
		s.trackedV += ev.Delta
		if s.trackedV < 0 {
			s.trackedV = 0
		} else if s.trackedV > 1 {
			s.trackedV = 1
		}
	}
}

func (j *Judge) processHolds(tMS float64) {
	for j.holdPos < len(j.holdIdx) {
		idx := j.holdIdx[j.holdPos]
		if j.judged[idx] {
			j.holdPos++
			continue
		}
		if j.idealMS[idx] > tMS {
			break
		}
		lane := j.ticks[idx].Lane
		if j.pressed[lane] {
			j.holdState[lane] = holdLaneState{state: holdActive, intervalStart: j.ticks[idx].StartTick}
			j.emit(idx, JudgmentCrit, 0, tMS)
		} else {
			j.holdState[lane] = holdLaneState{state: holdBroken, intervalStart: j.ticks[idx].StartTick}
			j.emit(idx, JudgmentMiss, 0, tMS)
		}
		j.holdPos++
	}
}

func (j *Judge) processLasers(tMS float64) {
	for j.laserPos < len(j.laserIdx) {
		idx := j.laserIdx[j.laserPos]
		if j.judged[idx] {
			j.laserPos++
			continue
		}
		tick := j.ticks[idx]
		s := &j.laserState[tick.Side]

		switch tick.Kind {
		case kson.KindSlam:
			if tMS < j.idealMS[idx]-j.window.Slam {
				return
			}
			if tMS > j.idealMS[idx]+j.window.Slam {
				j.emit(idx, JudgmentMiss, 0, tMS)
				j.laserPos++
				continue
			}
			direction := tick.EndV - tick.StartV
			if (direction > 0 && s.pendingDue >= slamDeltaThreshold) ||
				(direction < 0 && s.pendingDue <= -slamDeltaThreshold) {
				s.trackedV = tick.EndV
				s.locked = true
				s.pendingDue = 0
				j.emit(idx, JudgmentCrit, 0, tMS)
				j.laserPos++
			}
			// else: wait for more input until the window elapses above.

		case kson.KindLaserPoint:
			if j.idealMS[idx] > tMS {
				return
			}
			if absF(s.trackedV-tick.TargetV) <= LaserTolerance {
				s.locked = true
				s.trackedV = tick.TargetV
				j.emit(idx, JudgmentCrit, 0, tMS)
			} else {
				s.locked = false
				j.emit(idx, JudgmentMiss, 0, tMS)
			}
			j.laserPos++
		}
	}
}

func (j *Judge) emit(idx int, kind JudgmentKind, delta, tMS float64) {
	j.judged[idx] = true
	jg := Judgment{Tick: j.ticks[idx], Kind: kind, DeltaMS: delta, TimeMS: tMS}
	j.judgments = append(j.judgments, jg)

	switch kind {
	case JudgmentCrit:
		j.earned += 2
		j.combo++
		j.gauge.ApplyCrit()
	case JudgmentNear:
		j.earned++
		j.combo++
		j.gauge.ApplyNear()
	case JudgmentMiss:
		j.combo = 0
		j.gauge.ApplyMiss()
	}
	if j.combo > j.maxCombo {
		j.maxCombo = j.combo
	}
}

// Abort flushes Miss judgments for every un-judged tick and marks the
// play as manually exited.
func (j *Judge) Abort(tMS float64) {
	for i := range j.ticks {
		if !j.judged[i] {
			j.emit(i, JudgmentMiss, 0, tMS)
		}
	}
	j.outcome = OutcomeManualExit
	j.terminated = true
}

// Done reports whether every tick has been judged, and if so under what
// outcome. A Hard gauge that has died is reported as OutcomeFailed.
func (j *Judge) Done() (PlayOutcome, bool) {
	if j.terminated {
		return j.outcome, true
	}
	for _, done := range j.judged {
		if !done {
			return 0, false
		}
	}
	if j.gauge.Kind == GaugeHard && j.gauge.IsDead() {
		return OutcomeFailed, true
	}
	return OutcomeCompleted, true
}

// DroppedInputs returns the count of input events discarded for arriving
// more than window.Good in the past.
func (j *Judge) DroppedInputs() int { return j.droppedInputs }

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
