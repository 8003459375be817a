// Package kson models a KSON/KSH rhythm-game chart: its tempo and
// time-signature maps, its four button lanes, two FX lanes and two laser
// lanes, and the timing queries and score-tick schedule derived from them.
//
// A Chart is immutable once parsed. TimingMap and the score-tick sequence
// are pure functions of a Chart and are computed once, at load time.
package kson

// Tick is an integer musical position, Resolution units per quarter-note.
type Tick int64

// DefaultResolution is used for a chart whose resolution is unset or zero.
const DefaultResolution Tick = 240

// BT and FX lane indices, and the two laser sides, as used throughout the
// package and by callers correlating Score Ticks back to a lane/side.
const (
	LaneBT0 = iota
	LaneBT1
	LaneBT2
	LaneBT3
	LaneFX0
	LaneFX1
)

const (
	SideLeft = iota
	SideRight
)

// BPMPoint is one entry of the tempo map: the BPM in effect from Tick
// onward, until the next entry (or the end of the chart).
type BPMPoint struct {
	Tick Tick
	BPM  float64
}

// TimeSigPoint is one entry of the time-signature map: the signature in
// effect from Measure onward (0-indexed).
type TimeSigPoint struct {
	Measure int
	Num     int
	Denom   int
}

// Interval is a button note: Y is the start tick, L is the duration in
// ticks. L == 0 marks a chip; L > 0 marks a hold.
type Interval struct {
	Y Tick
	L Tick
}

// FXInterval is an Interval on an FX lane, optionally tagged with the
// effect definition engaged for its duration. Effect may be nil, meaning
// the lane is held with no audio effect attached.
type FXInterval struct {
	Interval
	Effect *EffectDef
}

// EffectDef names an audio effect and carries its parameter table, keyed
// by parameter name, values still in their chart-source string form
// (e.g. "400-800", "120.5s", "50%") pending interpolation-shape parsing.
type EffectDef struct {
	Name   string
	Params map[string]string
}

// GraphPoint is one node of a laser section's path.
//
// RY is the tick offset from the owning section's Y, non-decreasing within
// a section. V is the lane position on entry to this node, in [0,1]. VF,
// when non-nil and different from V, marks this point as a slam: an
// instantaneous jump from V to *VF collocated at RY. A and B, when both
// non-nil and different, parameterise a curved ease from this point to the
// next one; otherwise that segment is linear.
type GraphPoint struct {
	RY Tick
	V  float64
	VF *float64
	A  *float64
	B  *float64
}

// IsSlam reports whether this point encodes an instantaneous laser jump.
func (p GraphPoint) IsSlam() bool {
	return p.VF != nil && *p.VF != p.V
}

// ExitValue is the lane position leaving this point: VF if present,
// otherwise V.
func (p GraphPoint) ExitValue() float64 {
	if p.VF != nil {
		return *p.VF
	}
	return p.V
}

// LaserSection is one connected piecewise path for one laser side.
type LaserSection struct {
	Y      Tick
	Points []GraphPoint
	Wide   int // 1 or 2; horizontal scale
}

// ValueAt returns the interpolated lane position at an absolute tick
// within the section, walking the segment the tick falls in and easing
// between its endpoints. Ticks before the first point or after the last
// clamp to that point's value.
func (s LaserSection) ValueAt(tick Tick) float64 {
	ry := tick - s.Y
	last := s.Points[len(s.Points)-1]
	if ry <= s.Points[0].RY {
		return s.Points[0].V
	}
	if ry >= last.RY {
		return last.ExitValue()
	}
	for i := 0; i < len(s.Points)-1; i++ {
		p0, p1 := s.Points[i], s.Points[i+1]
		if ry < p0.RY || ry > p1.RY {
			continue
		}
		if p1.RY == p0.RY {
			return p1.V
		}
		start := p0.ExitValue()
		end := p1.V
		t := float64(ry-p0.RY) / float64(p1.RY-p0.RY)
		return start + (end-start)*curveEase(t, p0.A, p0.B)
	}
	return last.ExitValue()
}

// curveEase maps t in [0,1] through the segment's ease curve: linear
// unless both a and b are present and differ, in which case it follows
// the 2-D curve through (0,0), (a,b), (1,1) described by the graph
// point's a/b parameters.
//
// The reference renderer's exact parameterisation isn't part of this
// retrieval (see DESIGN.md, the curveEase entry); this implements it as
// a quadratic Bezier with control point (a,b), solved for the eased y
// given x=t via a fixed number of Newton iterations — monotone for any
// a,b in [0,1], which is all the format allows.
func curveEase(t float64, a, b *float64) float64 {
	if a == nil || b == nil || *a == *b {
		return t
	}
	cx, cy := *a, *b

	bezX := func(u float64) float64 { return 2*(1-u)*u*cx + u*u }
	bezY := func(u float64) float64 { return 2*(1-u)*u*cy + u*u }
	bezXPrime := func(u float64) float64 { return 2*cx - 4*cx*u + 2*u }

	u := t
	for i := 0; i < 8; i++ {
		d := bezXPrime(u)
		if d == 0 {
			break
		}
		u -= (bezX(u) - t) / d
		if u < 0 {
			u = 0
		} else if u > 1 {
			u = 1
		}
	}
	return bezY(u)
}

// BGMInfo names the backing audio file and its alignment against the
// chart's tick timeline.
type BGMInfo struct {
	Filename        string
	OffsetMS        int // signed; positive delays audio, negative advances it
	PreviewOffsetMS int
	PreviewDuration int
	Volume          float64
}

// ChartMeta carries the descriptive, non-timing chart metadata.
type ChartMeta struct {
	Title        string
	Artist       string
	Effector     string
	Jacket       string
	Illustrator  string
	Level        int
	Difficulty   string
}

// Chart is the immutable in-memory representation of a song: tempo map,
// time-signature map, four button lanes, two FX lanes, two laser lanes,
// and the backing-audio reference. A Chart is built once, by ParseKSH or
// ParseKSON, and never mutated afterward.
type Chart struct {
	Resolution Tick
	BPM        []BPMPoint
	TimeSig    []TimeSigPoint
	BT         [4][]Interval
	FX         [2][]FXInterval
	Laser      [2][]LaserSection
	Audio      BGMInfo
	Meta       ChartMeta
}

// Validate checks the invariants from the data model: strictly increasing
// tempo/time-signature ticks and measures, a tempo entry effective at tick
// 0, non-overlapping same-lane intervals, and well-formed laser sections
// (at least two points, non-decreasing RY, first point at RY=0).
func (c *Chart) Validate() error {
	if c.Resolution <= 0 {
		return wrapMalformed("resolution must be positive")
	}
	if len(c.BPM) == 0 || c.BPM[0].Tick != 0 {
		return wrapMalformed("bpm sequence must have an entry at tick 0")
	}
	for i := 1; i < len(c.BPM); i++ {
		if c.BPM[i].Tick <= c.BPM[i-1].Tick {
			return wrapMalformed("bpm ticks must be strictly increasing")
		}
	}
	for i := 1; i < len(c.TimeSig); i++ {
		if c.TimeSig[i].Measure <= c.TimeSig[i-1].Measure {
			return wrapMalformed("time signature measures must be strictly increasing")
		}
	}
	for lane := range c.BT {
		if err := validateIntervals(c.BT[lane]); err != nil {
			return err
		}
	}
	for lane := range c.FX {
		ivs := make([]Interval, len(c.FX[lane]))
		for i, iv := range c.FX[lane] {
			ivs[i] = iv.Interval
		}
		if err := validateIntervals(ivs); err != nil {
			return err
		}
	}
	for side := range c.Laser {
		for _, sec := range c.Laser[side] {
			if err := validateLaserSection(sec); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateIntervals(ivs []Interval) error {
	prevEnd := Tick(-1)
	for _, iv := range ivs {
		if iv.Y < 0 {
			return wrapMalformed("interval start must be non-negative")
		}
		if iv.Y < prevEnd {
			return wrapMalformed("intervals within a lane must not overlap")
		}
		prevEnd = iv.Y + iv.L
	}
	return nil
}

func validateLaserSection(sec LaserSection) error {
	if len(sec.Points) < 2 {
		return wrapMalformed("laser section must have at least two graph points")
	}
	if sec.Points[0].RY != 0 {
		return wrapMalformed("laser section's first point must have ry=0")
	}
	for i := 1; i < len(sec.Points); i++ {
		if sec.Points[i].RY < sec.Points[i-1].RY {
			return wrapMalformed("laser section points must have non-decreasing ry")
		}
	}
	return nil
}
