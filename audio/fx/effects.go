package fx

import "math"

// Retrigger repeats a short captured window of audio on a fixed period,
// the classic "loop gate" effect applied to an FX interval.
type Retrigger struct {
	period int // frames per loop
	buf     []int16
	filled  int
	pos     int
}

func NewRetrigger(periodFrames int) *Retrigger {
	if periodFrames < 1 {
		periodFrames = 1
	}
	return &Retrigger{period: periodFrames, buf: make([]int16, periodFrames*2)}
}

func (r *Retrigger) Process(buf []int16, sampleRate int) {
	frames := len(buf) / 2
	for i := 0; i < frames; i++ {
		if r.filled < r.period {
			r.buf[r.filled*2] = buf[i*2]
			r.buf[r.filled*2+1] = buf[i*2+1]
			r.filled++
		} else {
			buf[i*2] = r.buf[r.pos*2]
			buf[i*2+1] = r.buf[r.pos*2+1]
			r.pos = (r.pos + 1) % r.period
		}
	}
}

// Gate periodically silences the signal: audio passes for Duty of each
// Period, and is zeroed for the remainder.
type Gate struct {
	Period int
	Duty   float64
	phase  int
}

func (g *Gate) Process(buf []int16, sampleRate int) {
	if g.Period < 1 {
		g.Period = 1
	}
	on := int(float64(g.Period) * g.Duty)
	frames := len(buf) / 2
	for i := 0; i < frames; i++ {
		if g.phase >= on {
			buf[i*2], buf[i*2+1] = 0, 0
		}
		g.phase = (g.phase + 1) % g.Period
	}
}

// Flanger mixes the signal with a short LFO-modulated delay line.
type Flanger struct {
	LFOHz         float64
	DepthSamples  float64
	Mix           float64

	delay    []int16
	pos      int
	lfoPhase float64
}

func NewFlanger(lfoHz, depthSamples, mix float64, maxDelayFrames int) *Flanger {
	return &Flanger{LFOHz: lfoHz, DepthSamples: depthSamples, Mix: mix, delay: make([]int16, maxDelayFrames*2)}
}

func (f *Flanger) Process(buf []int16, sampleRate int) {
	n := len(f.delay) / 2
	if n == 0 {
		return
	}
	frames := len(buf) / 2
	for i := 0; i < frames; i++ {
		mod := (math.Sin(f.lfoPhase) + 1) / 2 * f.DepthSamples
		readPos := (f.pos - int(mod) + n) % n

		for ch := 0; ch < 2; ch++ {
			dry := float64(buf[i*2+ch])
			wet := float64(f.delay[readPos*2+ch])
			f.delay[f.pos*2+ch] = buf[i*2+ch]
			out := dry*(1-f.Mix) + wet*f.Mix
			buf[i*2+ch] = clampInt16(out)
		}

		f.pos = (f.pos + 1) % n
		f.lfoPhase += 2 * math.Pi * f.LFOHz / float64(sampleRate)
	}
}

type allpass struct {
	a, x1, y1 float64
}

func (ap *allpass) process(x float64) float64 {
	y := -ap.a*x + ap.x1 + ap.a*ap.y1
	ap.x1, ap.y1 = x, y
	return y
}

// Phaser sweeps a cascade of all-pass stages with an LFO, the classic
// notch-sweeping effect.
type Phaser struct {
	CenterHz, DepthHz, LFOHz, Mix float64

	stages   [2][4]allpass
	lfoPhase float64
}

func (p *Phaser) Process(buf []int16, sampleRate int) {
	frames := len(buf) / 2
	for i := 0; i < frames; i++ {
		mod := (math.Sin(p.lfoPhase) + 1) / 2
		freq := p.CenterHz + mod*p.DepthHz
		a := allpassCoeff(freq, float64(sampleRate))

		for ch := 0; ch < 2; ch++ {
			x := float64(buf[i*2+ch]) / 32768
			y := x
			for s := range p.stages[ch] {
				p.stages[ch][s].a = a
				y = p.stages[ch][s].process(y)
			}
			out := x*(1-p.Mix) + y*p.Mix
			buf[i*2+ch] = clampInt16(out * 32768)
		}
		p.lfoPhase += 2 * math.Pi * p.LFOHz / float64(sampleRate)
	}
}

func allpassCoeff(freq, sampleRate float64) float64 {
	tanHalf := math.Tan(math.Pi * freq / sampleRate)
	return (tanHalf - 1) / (tanHalf + 1)
}

// BitCrusher reduces effective sample depth and rate, the classic
// lo-fi digital-distortion effect.
type BitCrusher struct {
	Bits       int
	Downsample int

	held    [2]int16
	counter int
}

func (b *BitCrusher) Process(buf []int16, sampleRate int) {
	if b.Downsample < 1 {
		b.Downsample = 1
	}
	levels := math.Pow(2, float64(b.Bits))
	frames := len(buf) / 2
	for i := 0; i < frames; i++ {
		if b.counter == 0 {
			for ch := 0; ch < 2; ch++ {
				v := float64(buf[i*2+ch]) / 32768
				q := math.Round(v*levels/2) / (levels / 2)
				b.held[ch] = clampInt16(q * 32768)
			}
		}
		buf[i*2+0] = b.held[0]
		buf[i*2+1] = b.held[1]
		b.counter = (b.counter + 1) % b.Downsample
	}
}

// Wobble is a low-pass filter whose cutoff is swept by an LFO, the
// "wah"/dubstep-wobble effect.
type Wobble struct {
	MinHz, MaxHz, LFOHz float64

	filter   Biquad
	lfoPhase float64
}

func (w *Wobble) Process(buf []int16, sampleRate int) {
	frames := len(buf) / 2
	step := 64 // recompute coefficients in small chunks, not every sample
	for i := 0; i < frames; i += step {
		end := i + step
		if end > frames {
			end = frames
		}
		mod := (math.Sin(w.lfoPhase) + 1) / 2
		cutoff := w.MinHz + mod*(w.MaxHz-w.MinHz)
		w.filter.SetCoefficients(cutoff, float64(sampleRate), 0.707, 0)
		w.filter.Process(buf[i*2:end*2], sampleRate)
		w.lfoPhase += 2 * math.Pi * w.LFOHz * float64(end-i) / float64(sampleRate)
	}
}

// TapeStop ramps playback rate down to zero over durationFrames, simulating
// power loss on a tape deck.
type TapeStop struct {
	durationFrames int
	elapsed        int
	pos            float64
	buf            []int16 // snapshot of audio at the moment TapeStop engaged
}

func NewTapeStop(durationFrames int) *TapeStop {
	return &TapeStop{durationFrames: durationFrames}
}

func (t *TapeStop) Process(buf []int16, sampleRate int) {
	if t.buf == nil {
		t.buf = append([]int16(nil), buf...)
	}
	frames := len(buf) / 2
	srcFrames := len(t.buf) / 2
	for i := 0; i < frames; i++ {
		progress := float64(t.elapsed) / float64(t.durationFrames)
		if progress > 1 {
			progress = 1
		}
		rate := 1 - progress
		idx := int(t.pos)
		if idx >= srcFrames-1 || rate <= 0 {
			buf[i*2], buf[i*2+1] = 0, 0
		} else {
			buf[i*2+0] = t.buf[idx*2+0]
			buf[i*2+1] = t.buf[idx*2+1]
			t.pos += rate
		}
		t.elapsed++
	}
}

// Echo is a feedback delay line.
type Echo struct {
	Feedback, Mix float64

	buf []int16
	pos int
}

func NewEcho(delayFrames int, feedback, mix float64) *Echo {
	return &Echo{Feedback: feedback, Mix: mix, buf: make([]int16, delayFrames*2)}
}

func (e *Echo) Process(buf []int16, sampleRate int) {
	n := len(e.buf) / 2
	if n == 0 {
		return
	}
	frames := len(buf) / 2
	for i := 0; i < frames; i++ {
		for ch := 0; ch < 2; ch++ {
			dry := float64(buf[i*2+ch])
			wet := float64(e.buf[e.pos*2+ch])
			fed := dry + wet*e.Feedback
			e.buf[e.pos*2+ch] = clampInt16(fed)
			out := dry*(1-e.Mix) + wet*e.Mix
			buf[i*2+ch] = clampInt16(out)
		}
		e.pos = (e.pos + 1) % n
	}
}

// SideChain ducks the signal's amplitude on a fixed rhythmic envelope,
// simulating side-chain compression against a kick drum.
type SideChain struct {
	PeriodFrames int
	AttackFrames int
	Depth        float64 // 0..1, how far gain dips
	phase        int
}

func (s *SideChain) Process(buf []int16, sampleRate int) {
	if s.PeriodFrames < 1 {
		s.PeriodFrames = 1
	}
	frames := len(buf) / 2
	for i := 0; i < frames; i++ {
		var gain float64
		if s.phase < s.AttackFrames && s.AttackFrames > 0 {
			gain = 1 - s.Depth*(1-float64(s.phase)/float64(s.AttackFrames))
		} else {
			gain = 1
		}
		buf[i*2+0] = clampInt16(float64(buf[i*2+0]) * gain)
		buf[i*2+1] = clampInt16(float64(buf[i*2+1]) * gain)
		s.phase = (s.phase + 1) % s.PeriodFrames
	}
}
