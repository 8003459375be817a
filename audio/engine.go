package audio

import (
	"sort"

	"github.com/ksonengine/core/audio/fx"
	"github.com/ksonengine/core/audio/mixer"
)

// change is a scheduled engage/disengage of a processor at a given
// output frame, the audio-side mirror of an FX lane interval's edges.
type change struct {
	atFrame int
	engage  bool
	proc    fx.Processor
}

// DefaultLeadInMS is the lead-in duration a play session uses when the
// chart does not specify one.
const DefaultLeadInMS = 1500

// Engine pulls PCM from a Source at a fixed output rate, applying
// whichever effects are scheduled to be active at the current frame.
// It mirrors the tick-boundary pull loop of a tracker player: each call
// to GenerateAudio advances only as far as the next scheduled change (or
// buffer exhaustion), so an effect chain is always applied to a uniform
// chunk instead of a mid-chunk partial one.
type Engine struct {
	src       *Source
	outputHz  int
	pos       uint32 // 16.16 fixed point, in source frames
	rate      uint32
	volume    int // 0..256

	framePos int // output frames generated so far, for scheduling and position queries

	leadInFrames int // total lead-in length, fixed at SetLeadIn time
	leadInLeft   int // remaining lead-in frames; emits silence while positive

	stopped   bool
	fxEnabled bool

	changes []change
	active  []fx.Processor

	ended bool
}

// NewEngine builds an Engine that plays src at outputHz, with no lead-in
// and effects enabled.
func NewEngine(src *Source, outputHz int) *Engine {
	return &Engine{
		src:       src,
		outputHz:  outputHz,
		volume:    256,
		fxEnabled: true,
	}
}

// SetLeadIn sets the silent countdown emitted before any source audio,
// resetting it to the full duration. Call before the first GenerateAudio.
func (e *Engine) SetLeadIn(ms float64) {
	frames := int(ms * float64(e.outputHz) / 1000)
	if frames < 0 {
		frames = 0
	}
	e.leadInFrames = frames
	e.leadInLeft = frames
}

// Stop sets the stopped flag; every subsequent GenerateAudio call emits
// only silence and Ended reports true.
func (e *Engine) Stop() { e.stopped = true }

// SetFXEnabled toggles whether active scheduled effects are audible;
// when false, the base source plays through unprocessed even while
// effects remain scheduled and active.
func (e *Engine) SetFXEnabled(enabled bool) { e.fxEnabled = enabled }

// Schedule activates proc for the half-open output-frame range
// [startFrame, endFrame).
func (e *Engine) Schedule(startFrame, endFrame int, proc fx.Processor) {
	e.changes = append(e.changes, change{atFrame: startFrame, engage: true, proc: proc})
	e.changes = append(e.changes, change{atFrame: endFrame, engage: false, proc: proc})
	sort.SliceStable(e.changes, func(i, j int) bool { return e.changes[i].atFrame < e.changes[j].atFrame })
}

// SetVolume sets playback gain as a 0..256 fixed-point multiplier (256 = unity).
func (e *Engine) SetVolume(v int) { e.volume = v }

// PositionFrames returns the number of output frames generated so far.
func (e *Engine) PositionFrames() int { return e.framePos }

// PositionMS returns the current playback position in milliseconds:
// negative and counting up to zero during lead-in, then the source
// position thereafter. Strictly non-decreasing across calls.
func (e *Engine) PositionMS() float64 {
	if e.leadInLeft > 0 {
		return -float64(e.leadInLeft) * 1000 / float64(e.outputHz)
	}
	return float64(e.framePos) * 1000 / float64(e.outputHz)
}

// Ended reports whether the source has been fully consumed or the
// engine has been stopped.
func (e *Engine) Ended() bool { return e.ended || e.stopped }

// GenerateAudio fills out (interleaved stereo int16) with the next
// len(out)/2 frames of playback, mixing the base source at its natural
// rate and running the currently active effect chain over each chunk
// bounded by the next scheduled change. If stopped, out is left silent.
// While the lead-in countdown is positive, out is left silent and the
// countdown is decremented instead of pulling from the source.
func (e *Engine) GenerateAudio(out []int16) {
	if e.rate == 0 {
		e.rate = mixer.Rate(float64(e.src.SampleRate), float64(e.outputHz))
	}
	for i := range out {
		out[i] = 0
	}

	if e.stopped {
		return
	}

	framesWanted := len(out) / 2
	offset := 0
	for offset < framesWanted {
		if e.leadInLeft > 0 {
			chunk := framesWanted - offset
			if chunk > e.leadInLeft {
				chunk = e.leadInLeft
			}
			e.leadInLeft -= chunk
			offset += chunk
			continue
		}

		e.applyDueChanges()

		remain := framesWanted - offset
		if next, ok := e.nextChangeFrame(); ok {
			untilChange := next - e.framePos
			if untilChange < remain && untilChange > 0 {
				remain = untilChange
			}
		}
		if remain <= 0 {
			remain = 1
		}

		chunk := out[offset*2 : (offset+remain)*2]
		if e.ended {
			offset += remain
			e.framePos += remain
			continue
		}

		newPos, produced := mixer.MixStereo(e.pos, e.rate, e.volume, e.volume, e.src.Samples, chunk)
		e.pos = newPos
		if produced < remain {
			e.ended = true
		}

		if e.fxEnabled {
			for _, p := range e.active {
				p.Process(chunk, e.outputHz)
			}
		}

		offset += remain
		e.framePos += remain
	}
}

func (e *Engine) applyDueChanges() {
	for len(e.changes) > 0 && e.changes[0].atFrame <= e.framePos {
		c := e.changes[0]
		e.changes = e.changes[1:]
		if c.engage {
			e.active = append(e.active, c.proc)
		} else {
			for i, p := range e.active {
				if p == c.proc {
					e.active = append(e.active[:i], e.active[i+1:]...)
					break
				}
			}
		}
	}
}

func (e *Engine) nextChangeFrame() (int, bool) {
	if len(e.changes) == 0 {
		return 0, false
	}
	return e.changes[0].atFrame, true
}
