package kson

import "sort"

// ScoreTickKind discriminates the four score-tick shapes.
type ScoreTickKind int

const (
	KindSlam ScoreTickKind = iota
	KindLaserPoint
	KindHold
	KindChip
)

// tieRank orders ticks that share an absolute tick: slams before laser
// samples before holds before chips, per the documented tie-break. Values
// double as the zero-based KindX ordering above, so tieRank is simply the
// kind itself.
func (k ScoreTickKind) tieRank() int { return int(k) }

// ScoreTick is one entry of the generated schedule. Which fields are
// meaningful depends on Kind:
//   - KindChip: Lane.
//   - KindHold: Lane, StartTick (the owning interval's start).
//   - KindLaserPoint: Side, TargetV.
//   - KindSlam: Side, StartV, EndV.
type ScoreTick struct {
	Tick      Tick
	Kind      ScoreTickKind
	Lane      int
	StartTick Tick
	Side      int
	TargetV   float64
	StartV    float64
	EndV      float64
}

// ScoreTickSummary fixes the point budget for scoring: how many ticks of
// each kind the generated sequence contains.
type ScoreTickSummary struct {
	ChipCount       int
	HoldCount       int
	LaserPointCount int
	SlamCount       int
	Total           int
}

// ScoreTickSequence is the immutable, ascending-tick-ordered output of
// GenerateScoreTicks.
type ScoreTickSequence struct {
	Ticks   []ScoreTick
	Summary ScoreTickSummary
}

// getHoldStepAt returns the hold/laser sampling cadence in effect at y:
// resolution/4 ordinarily, resolution/2 once the tempo exceeds 255 BPM.
func getHoldStepAt(y Tick, c *Chart, tm *TimingMap) Tick {
	if tm.BPMAtTick(y) > 255.0 {
		return c.Resolution / 2
	}
	return c.Resolution / 4
}

// GenerateScoreTicks produces the fully determined score-tick schedule
// for a chart: one deterministic pass per lane family, as specified.
// The chart must satisfy Validate's invariants; a laser section with
// fewer than two points is rejected with ErrMalformedChart.
func GenerateScoreTicks(c *Chart, tm *TimingMap) (*ScoreTickSequence, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var ticks []ScoreTick

	for lane := 0; lane < 4; lane++ {
		for _, iv := range c.BT[lane] {
			ticks = append(ticks, ticksFromInterval(iv, lane, c, tm)...)
		}
	}
	for lane := 0; lane < 2; lane++ {
		for _, iv := range c.FX[lane] {
			ticks = append(ticks, ticksFromInterval(iv.Interval, 4+lane, c, tm)...)
		}
	}
	for side := 0; side < 2; side++ {
		for _, sec := range c.Laser[side] {
			ticks = append(ticks, ticksFromLaserSection(sec, side, c, tm)...)
		}
	}

	sort.SliceStable(ticks, func(i, j int) bool {
		if ticks[i].Tick != ticks[j].Tick {
			return ticks[i].Tick < ticks[j].Tick
		}
		return ticks[i].Kind.tieRank() < ticks[j].Kind.tieRank()
	})

	var sum ScoreTickSummary
	for _, t := range ticks {
		sum.Total++
		switch t.Kind {
		case KindChip:
			sum.ChipCount++
		case KindHold:
			sum.HoldCount++
		case KindLaserPoint:
			sum.LaserPointCount++
		case KindSlam:
			sum.SlamCount++
		}
	}

	return &ScoreTickSequence{Ticks: ticks, Summary: sum}, nil
}

func ticksFromInterval(iv Interval, lane int, c *Chart, tm *TimingMap) []ScoreTick {
	if iv.L == 0 {
		return []ScoreTick{{Tick: iv.Y, Kind: KindChip, Lane: lane}}
	}

	var res []ScoreTick
	y := iv.Y
	step := getHoldStepAt(y, c, tm)
	y += step
	y -= y % step
	for y <= iv.Y+iv.L-step {
		res = append(res, ScoreTick{Tick: y, Kind: KindHold, Lane: lane, StartTick: iv.Y})
		step = getHoldStepAt(y, c, tm)
		y += step
	}

	if len(res) == 0 {
		res = append(res, ScoreTick{Tick: iv.Y + iv.L/2, Kind: KindHold, Lane: lane, StartTick: iv.Y})
	}
	return res
}

func slamAt(p GraphPoint, side int, sectionY Tick) (ScoreTick, bool) {
	if !p.IsSlam() {
		return ScoreTick{}, false
	}
	return ScoreTick{
		Tick:   sectionY + p.RY,
		Kind:   KindSlam,
		Side:   side,
		StartV: p.V,
		EndV:   *p.VF,
	}, true
}

func ticksFromLaserSection(sec LaserSection, side int, c *Chart, tm *TimingMap) []ScoreTick {
	var res []ScoreTick

	first := true
	for i := 0; i < len(sec.Points)-1; i++ {
		s, e := sec.Points[i], sec.Points[i+1]
		segStart := len(res)

		if t, ok := slamAt(s, side, sec.Y); ok {
			res = append(res, t)
		}

		y := sec.Y + s.RY
		step := getHoldStepAt(y, c, tm)
		if s.VF != nil || first {
			y += step
		}
		y -= y % step

		for y <= sec.Y+e.RY-step {
			if len(res) > 0 && res[len(res)-1].Tick == y {
				step = getHoldStepAt(y, c, tm)
				y += step
				continue
			}
			res = append(res, ScoreTick{
				Tick:    y,
				Kind:    KindLaserPoint,
				Side:    side,
				TargetV: sec.ValueAt(y),
			})
			step = getHoldStepAt(y, c, tm)
			y += step
		}

		if len(res) == segStart {
			mid := sec.Y + (s.RY+e.RY)/2
			res = append(res, ScoreTick{
				Tick:    mid,
				Kind:    KindLaserPoint,
				Side:    side,
				TargetV: sec.ValueAt(mid),
			})
		}
		first = false
	}

	if t, ok := slamAt(sec.Points[len(sec.Points)-1], side, sec.Y); ok {
		res = append(res, t)
	}

	return res
}
