package fx

import (
	"strconv"

	kson "github.com/ksonengine/core"
)

// Build constructs the Processor named by def, reading its numeric
// parameters from def.Params with the given defaults when a key is
// absent or unparsable. sampleRate and framesHint (the FX interval's
// length in output frames) size any internal buffers.
func Build(def *kson.EffectDef, sampleRate, framesHint int) Processor {
	if def == nil {
		return nil
	}
	switch def.Name {
	case "retrigger":
		period := paramInt(def, "period", framesHint/8, sampleRate)
		return NewRetrigger(period)
	case "gate":
		period := paramInt(def, "period", framesHint/4, sampleRate)
		return &Gate{Period: period, Duty: paramFloat(def, "duty", 0.5)}
	case "flanger":
		return NewFlanger(paramFloat(def, "rate", 0.5), paramFloat(def, "depth", 200), paramFloat(def, "mix", 0.5), sampleRate/50)
	case "phaser":
		return &Phaser{CenterHz: paramFloat(def, "center", 800), DepthHz: paramFloat(def, "depth", 600), LFOHz: paramFloat(def, "rate", 0.5), Mix: paramFloat(def, "mix", 0.5)}
	case "pitch_shift":
		return NewPitchShift(paramFloat(def, "ratio", 1.25))
	case "bitcrusher":
		return &BitCrusher{Bits: int(paramFloat(def, "bits", 8)), Downsample: int(paramFloat(def, "downsample", 4))}
	case "wobble":
		return &Wobble{MinHz: paramFloat(def, "min_hz", 200), MaxHz: paramFloat(def, "max_hz", 4000), LFOHz: paramFloat(def, "rate", 2)}
	case "tapestop":
		return NewTapeStop(framesHint)
	case "echo":
		return NewEcho(paramInt(def, "delay", sampleRate/8, sampleRate), paramFloat(def, "feedback", 0.4), paramFloat(def, "mix", 0.4))
	case "sidechain":
		return &SideChain{PeriodFrames: paramInt(def, "period", sampleRate/2, sampleRate), AttackFrames: paramInt(def, "attack", sampleRate/20, sampleRate)}
	case "low_pass":
		return NewBiquad(LowPass, paramFloat(def, "freq", 1000), float64(sampleRate), paramFloat(def, "q", 0.707), 0)
	case "high_pass":
		return NewBiquad(HighPass, paramFloat(def, "freq", 1000), float64(sampleRate), paramFloat(def, "q", 0.707), 0)
	case "peaking_filter":
		return NewBiquad(Peaking, paramFloat(def, "freq", 1000), float64(sampleRate), paramFloat(def, "q", 1), paramFloat(def, "gain", 6))
	case "reverb":
		return NewReverb(float32(paramFloat(def, "decay", 0.35)), int(paramFloat(def, "delay_ms", 120)), sampleRate)
	default:
		return nil
	}
}

func paramFloat(def *kson.EffectDef, key string, fallback float64) float64 {
	if def == nil || def.Params == nil {
		return fallback
	}
	s, ok := def.Params[key]
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}

func paramInt(def *kson.EffectDef, key string, fallbackFrames, sampleRate int) int {
	if def != nil && def.Params != nil {
		if s, ok := def.Params[key]; ok {
			if v, err := strconv.ParseFloat(s, 64); err == nil {
				return int(v)
			}
		}
	}
	if fallbackFrames < 1 {
		return 1
	}
	return fallbackFrames
}
