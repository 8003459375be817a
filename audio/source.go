// Package audio implements playback of a chart's BGM track: pull-based
// PCM generation, position queries, and a chain of runtime effects
// scheduled against the chart's tick timeline.
package audio

import clone "github.com/huandu/go-clone/generic"

// Source is a decoded PCM clip: interleaved stereo int16 samples at a
// fixed sample rate. Engine treats a Source as immutable once built.
type Source struct {
	SampleRate int
	Samples    []int16 // interleaved L/R
}

// Frames returns the number of stereo frames in the source.
func (s *Source) Frames() int { return len(s.Samples) / 2 }

// Clone returns an independent copy of the source, suitable for
// restarting playback (e.g. practice mode replay) without re-decoding.
func (s *Source) Clone() *Source {
	c := clone.Clone(*s)
	return &c
}
