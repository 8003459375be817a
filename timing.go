package kson

// TimingMap derives bidirectional tick<->millisecond mappings from a
// Chart's tempo map, and a measure<->tick mapping from its time-signature
// map. It is built once from an immutable Chart and never mutated
// afterward; all of its methods are pure functions of the tick/ms/measure
// argument.
type TimingMap struct {
	resolution Tick
	bpm        []BPMPoint // always non-empty, first entry at tick 0
	tsSpans    []tsSpan
	lastTick   Tick
}

type tsSpan struct {
	startMeasure    int
	startTick       Tick
	ticksPerMeasure Tick
}

// NewTimingMap builds a TimingMap from a Chart. The chart is assumed to
// have already passed Validate.
func NewTimingMap(c *Chart) *TimingMap {
	bpm := c.BPM
	if len(bpm) == 0 {
		bpm = []BPMPoint{{Tick: 0, BPM: 120}}
	}

	ts := c.TimeSig
	if len(ts) == 0 {
		ts = []TimeSigPoint{{Measure: 0, Num: 4, Denom: 4}}
	}

	spans := make([]tsSpan, len(ts))
	prevMeasure, prevStartTick := 0, Tick(0)
	prevNum, prevDenom := ts[0].Num, ts[0].Denom
	for i, sig := range ts {
		prevTicksPerMeasure := c.Resolution * 4 * Tick(prevNum) / Tick(prevDenom)
		startTick := prevStartTick + Tick(sig.Measure-prevMeasure)*prevTicksPerMeasure
		if i == 0 {
			startTick = 0
		}
		spans[i] = tsSpan{
			startMeasure:    sig.Measure,
			startTick:       startTick,
			ticksPerMeasure: c.Resolution * 4 * Tick(sig.Num) / Tick(sig.Denom),
		}
		prevMeasure, prevStartTick, prevNum, prevDenom = sig.Measure, startTick, sig.Num, sig.Denom
	}

	return &TimingMap{
		resolution: c.Resolution,
		bpm:        bpm,
		tsSpans:    spans,
		lastTick:   lastTickOf(c),
	}
}

func lastTickOf(c *Chart) Tick {
	var last Tick
	for lane := range c.BT {
		if n := len(c.BT[lane]); n > 0 {
			iv := c.BT[lane][n-1]
			if end := iv.Y + iv.L; end > last {
				last = end
			}
		}
	}
	for lane := range c.FX {
		if n := len(c.FX[lane]); n > 0 {
			iv := c.FX[lane][n-1].Interval
			if end := iv.Y + iv.L; end > last {
				last = end
			}
		}
	}
	for side := range c.Laser {
		for _, sec := range c.Laser[side] {
			if n := len(sec.Points); n > 0 {
				if end := sec.Y + sec.Points[n-1].RY; end > last {
					last = end
				}
			}
		}
	}
	return last
}

// beatMS is the duration in milliseconds of one quarter-note at bpm.
func beatMS(bpm float64) float64 {
	return 60000.0 / bpm
}

func (tm *TimingMap) msFromTicks(ticks Tick, bpm float64) float64 {
	return 60000.0 * float64(ticks) / (bpm * float64(tm.resolution))
}

func (tm *TimingMap) ticksFromMS(ms float64, bpm float64) float64 {
	return ms / (beatMS(bpm) / float64(tm.resolution))
}

// TickToMS maps a tick to its ideal wall-clock time in milliseconds,
// summing per-segment durations across every tempo entry at or before
// tick, plus the residual within the final segment. Monotone
// non-decreasing in tick.
func (tm *TimingMap) TickToMS(tick Tick) float64 {
	var ms float64
	prev := tm.bpm[0]
	for _, b := range tm.bpm {
		if b.Tick > tick {
			break
		}
		ms += tm.msFromTicks(b.Tick-prev.Tick, prev.BPM)
		prev = b
	}
	return ms + tm.msFromTicks(tick-prev.Tick, prev.BPM)
}

// MSToTick is the inverse of TickToMS, returning a fractional tick.
func (tm *TimingMap) MSToTick(ms float64) float64 {
	if ms < 0 {
		ms = 0
	}
	remaining := ms
	var ret Tick
	prev := tm.bpm[0]
	for _, b := range tm.bpm {
		newMS := tm.TickToMS(b.Tick)
		if newMS > ms {
			break
		}
		ret = b.Tick
		remaining = ms - newMS
		prev = b
	}
	return float64(ret) + tm.ticksFromMS(remaining, prev.BPM)
}

// BPMAtTick returns the BPM of the last tempo entry effective at or
// before tick.
func (tm *TimingMap) BPMAtTick(tick Tick) float64 {
	prev := tm.bpm[0]
	for _, b := range tm.bpm {
		if b.Tick > tick {
			break
		}
		prev = b
	}
	return prev.BPM
}

// MeasureToTick maps a 0-indexed measure number to its starting tick,
// accumulating resolution*4*n/d across each time-signature span.
func (tm *TimingMap) MeasureToTick(m int) Tick {
	span := tm.tsSpans[0]
	for _, s := range tm.tsSpans {
		if s.startMeasure > m {
			break
		}
		span = s
	}
	return span.startTick + Tick(m-span.startMeasure)*span.ticksPerMeasure
}

// TickToMeasure is the inverse of MeasureToTick.
func (tm *TimingMap) TickToMeasure(tick Tick) int {
	span := tm.tsSpans[0]
	for _, s := range tm.tsSpans {
		if s.startTick > tick {
			break
		}
		span = s
	}
	return span.startMeasure + int((tick-span.startTick)/span.ticksPerMeasure)
}

// LastTick returns the maximum end tick across every note, interval, and
// laser section in the chart this map was built from.
func (tm *TimingMap) LastTick() Tick {
	return tm.lastTick
}
