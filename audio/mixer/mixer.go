// Package mixer provides fixed-point fractional-rate resampling kernels
// used to mix a PCM source into an output buffer at an arbitrary
// playback rate. The position and rate are both 16.16 fixed point, so a
// source can be read at any ratio relative to the output sample rate
// without an intermediate resampled copy.
package mixer

// Rate converts a ratio of source-Hz to output-Hz into the 16.16
// fixed-point step used by MixStereo/MixMono.
func Rate(sourceHz, outputHz float64) uint32 {
	return uint32((sourceHz / outputHz) * 65536)
}

// MixStereo resamples src (interleaved stereo int16) at fixed-point
// position pos advancing by dr per output frame, and accumulates lvol/rvol
// scaled samples into out (also interleaved stereo, already zeroed by the
// caller if a fresh mix is wanted). It returns the advanced position and
// the number of output frames actually produced before the source was
// exhausted.
//
// vol is a 0..256 fixed-point gain; the >>8 in the inner loop matches the
// scale so unity gain is 256.
func MixStereo(pos, dr uint32, lvol, rvol int, src []int16, out []int16) (newPos uint32, frames int) {
	srcFrames := uint32(len(src) / 2)
	n := 0
	for pos>>16 < srcFrames && n*2+1 < len(out) {
		l := int(src[(pos>>16)*2+0])
		r := int(src[(pos>>16)*2+1])
		out[n*2+0] += int16((l * lvol) >> 8)
		out[n*2+1] += int16((r * rvol) >> 8)
		pos += dr
		n++
	}
	return pos, n
}

// MixMono is MixStereo for a single-channel source, writing the same
// scaled sample into both output channels.
func MixMono(pos, dr uint32, lvol, rvol int, src []int16, out []int16) (newPos uint32, frames int) {
	srcFrames := uint32(len(src))
	n := 0
	for pos>>16 < srcFrames && n*2+1 < len(out) {
		s := int(src[pos>>16])
		out[n*2+0] += int16((s * lvol) >> 8)
		out[n*2+1] += int16((s * rvol) >> 8)
		pos += dr
		n++
	}
	return pos, n
}
