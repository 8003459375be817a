package fx

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PitchShift shifts pitch by Ratio (1 = unchanged, 2 = up an octave)
// using a phase vocoder: an FFT-domain time-stretch by 1/Ratio, which
// preserves pitch while changing duration, followed by linear-interpolation
// resampling by Ratio, which restores the original duration while shifting
// pitch. Stereo input is downmixed to mono for the analysis/resynthesis
// and the result is written to both output channels; this loses stereo
// width, a simplification acceptable for the chart-driven one-shot effect
// use here.
type PitchShift struct {
	Ratio float64

	blockSize int
	hop       int
	fft       *fourier.FFT

	window    []float64
	lastPhase []float64
	sumPhase  []float64

	pending []float64 // accumulated mono input awaiting a full block
}

// NewPitchShift builds a phase-vocoder pitch shifter at the given ratio
// using a 1024-sample analysis block with 4x overlap.
func NewPitchShift(ratio float64) *PitchShift {
	const n = 1024
	p := &PitchShift{
		Ratio:     ratio,
		blockSize: n,
		hop:       n / 4,
		fft:       fourier.NewFFT(n),
		window:    make([]float64, n),
		lastPhase: make([]float64, n/2+1),
		sumPhase:  make([]float64, n/2+1),
	}
	for i := range p.window {
		p.window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return p
}

func (p *PitchShift) Process(buf []int16, sampleRate int) {
	if p.Ratio == 1 {
		return
	}
	frames := len(buf) / 2
	for i := 0; i < frames; i++ {
		mono := (float64(buf[i*2]) + float64(buf[i*2+1])) / 2 / 32768
		p.pending = append(p.pending, mono)
	}

	for len(p.pending) >= p.blockSize {
		block := p.pending[:p.blockSize]
		shifted := p.processBlock(block, sampleRate)
		resampled := resampleLinear(shifted, p.Ratio)

		n := len(resampled)
		if n > frames {
			n = frames
		}
		for i := 0; i < n; i++ {
			s := clampInt16(resampled[i] * 32768)
			buf[i*2] = s
			buf[i*2+1] = s
		}
		p.pending = p.pending[p.hop:]
		break // one block per call keeps latency bounded to a single chunk
	}
}

func (p *PitchShift) processBlock(block []float64, sampleRate int) []float64 {
	windowed := make([]float64, p.blockSize)
	for i, v := range block {
		windowed[i] = v * p.window[i]
	}
	spectrum := p.fft.Coefficients(nil, windowed)

	binFreq := 2 * math.Pi * float64(p.hop) / float64(p.blockSize)
	for i, c := range spectrum {
		phase := math.Atan2(imag(c), real(c))
		delta := phase - p.lastPhase[i]
		p.lastPhase[i] = phase

		// Unwrap to [-pi, pi] and express as deviation from the bin's
		// expected phase advance per hop.
		expected := binFreq * float64(i)
		delta -= expected
		delta = math.Mod(delta+math.Pi, 2*math.Pi) - math.Pi
		trueFreq := expected + delta

		p.sumPhase[i] += trueFreq * p.Ratio
		mag := math.Hypot(real(c), imag(c))
		spectrum[i] = complex(mag*math.Cos(p.sumPhase[i]), mag*math.Sin(p.sumPhase[i]))
	}

	out := p.fft.Sequence(nil, spectrum)
	for i := range out {
		out[i] /= float64(p.blockSize)
	}
	return out
}

func resampleLinear(in []float64, factor float64) []float64 {
	if factor <= 0 {
		factor = 1
	}
	n := int(float64(len(in)) / factor)
	out := make([]float64, n)
	for i := range out {
		srcPos := float64(i) * factor
		i0 := int(srcPos)
		if i0 >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := srcPos - float64(i0)
		out[i] = in[i0]*(1-frac) + in[i0+1]*frac
	}
	return out
}
