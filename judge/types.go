// Package judge consumes an immutable score-tick sequence and a stream
// of timestamped input events, and produces a running score, combo, and
// gauge, culminating in a single ScoreResult when play ends.
package judge

import kson "github.com/ksonengine/core"

// HitWindow is the set of symmetric time tolerances (in milliseconds)
// used to classify a tick's judgment.
type HitWindow struct {
	Perfect float64
	Good    float64
	Hold    float64
	Miss    float64
	Slam    float64
}

// DefaultHitWindow mirrors the reference KSH client's default tolerances.
func DefaultHitWindow() HitWindow {
	return HitWindow{Perfect: 46, Good: 92, Hold: 92, Miss: 150, Slam: 100}
}

// LaserTolerance is the default width, in normalised laser units, within
// which the tracked cursor is considered locked to the chart's target.
const LaserTolerance = 1.0 / 12.0

// JudgmentKind classifies how a score tick was resolved.
type JudgmentKind int

const (
	JudgmentCrit JudgmentKind = iota
	JudgmentNear
	JudgmentMiss
)

// Judgment is the outcome recorded for one score tick.
type Judgment struct {
	Tick    kson.ScoreTick
	Kind    JudgmentKind
	DeltaMS float64 // signed input time minus ideal time, positive = late; zero for lasers/holds
	TimeMS  float64 // playback time the judgment was emitted at
}

// InputKind discriminates the three input event shapes.
type InputKind int

const (
	InputButtonPress InputKind = iota
	InputButtonRelease
	InputLaserUpdate
)

// InputEvent is a single timestamped input: a button press/release for
// one of six lanes, or a laser axis update for one of two sides.
type InputEvent struct {
	Kind   InputKind
	TimeMS float64
	Lane   int     // InputButtonPress/InputButtonRelease: 0..6
	Side   int     // InputLaserUpdate: 0..2
	Pos    float64 // InputLaserUpdate: current axis position
	Delta  float64 // InputLaserUpdate: change since the previous update
}

// PlayOutcome names how a play ended.
type PlayOutcome int

const (
	OutcomeCompleted PlayOutcome = iota
	OutcomeManualExit
	OutcomeFailed
)
