package judge

// GaugeKind selects which clear rule and increment scale a Gauge uses.
type GaugeKind int

const (
	GaugeNormal GaugeKind = iota
	GaugeHard
)

// gaugeSampleCount is the size of the rolling display buffer; Gauge
// appends one sample roughly every total_duration/gaugeSampleCount of
// playback.
const gaugeSampleCount = 256

// clearThresholdNormal is the Normal-gauge value at or above which a
// play counts as cleared at song end.
const clearThresholdNormal = 0.70

// Gauge is the bounded performance indicator tracked by a Judge.
//
// The exact increment/decrement formula is not part of this
// implementation's reference material (see DESIGN.md, "gauge-increment
// formula"); this scales increments so that a perfect full combo of
// totalTicks judgments exactly fills the gauge to 1.0, satisfying the
// boundary properties the format requires: Normal never drops below 0
// and clears at >=0.70, Hard can reach exactly 0 and then latches dead.
type Gauge struct {
	Kind    GaugeKind
	Value   float64
	Samples []float64
	dead    bool

	total     int
	critStep  float64
	nearStep  float64
	missStep  float64
}

// NewGauge builds a Gauge scaled against totalTicks, the score-tick
// summary's total count.
func NewGauge(kind GaugeKind, totalTicks int) *Gauge {
	if totalTicks <= 0 {
		totalTicks = 1
	}
	g := &Gauge{Kind: kind, total: totalTicks}
	switch kind {
	case GaugeHard:
		g.critStep = 1.0 / float64(totalTicks)
		g.nearStep = 0.25 / float64(totalTicks)
		g.missStep = 2.0 / float64(totalTicks)
	default:
		g.critStep = 1.0 / float64(totalTicks)
		g.nearStep = 0.5 / float64(totalTicks)
		g.missStep = 1.0 / float64(totalTicks)
	}
	return g
}

func (g *Gauge) clamp() {
	if g.Value <= 0 {
		g.Value = 0
		if g.Kind == GaugeHard {
			g.dead = true
		}
	}
	if g.Value > 1 {
		g.Value = 1
	}
}

// ApplyCrit records a Crit judgment against the gauge.
func (g *Gauge) ApplyCrit() {
	g.Value += g.critStep
	g.clamp()
}

// ApplyNear records a Near judgment against the gauge.
func (g *Gauge) ApplyNear() {
	g.Value += g.nearStep
	g.clamp()
}

// ApplyMiss records a Miss judgment against the gauge.
func (g *Gauge) ApplyMiss() {
	g.Value -= g.missStep
	g.clamp()
}

// Sample appends the current value to the rolling display buffer,
// discarding the oldest sample once gaugeSampleCount is reached.
func (g *Gauge) Sample() {
	if len(g.Samples) >= gaugeSampleCount {
		copy(g.Samples, g.Samples[1:])
		g.Samples = g.Samples[:len(g.Samples)-1]
	}
	g.Samples = append(g.Samples, g.Value)
}

// IsCleared reports whether the gauge meets its clear condition.
func (g *Gauge) IsCleared() bool {
	if g.Kind == GaugeHard {
		return !g.dead
	}
	return g.Value >= clearThresholdNormal
}

// IsDead reports whether a Hard gauge has ever reached 0.
func (g *Gauge) IsDead() bool {
	return g.dead
}
