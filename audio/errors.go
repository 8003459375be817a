package audio

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by BGM loading. Each wraps a lower-level cause
// with fmt.Errorf("%w", ...) so callers can errors.Is against the
// sentinel while still seeing the underlying reason.
var (
	// ErrAudioOpen means the BGM file could not be opened or decoded
	// by its format's decoder.
	ErrAudioOpen = errors.New("kson/audio: open error")

	// ErrAudioFormat means the file decoded but its format is
	// unsupported or its stream produced no usable samples.
	ErrAudioFormat = errors.New("kson/audio: format error")
)

func wrapAudioOpen(name string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrAudioOpen, name, cause)
}

func wrapAudioFormat(reason string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAudioFormat, fmt.Sprintf(reason, args...))
}
