package audio

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestDecodeUnsupportedFormatReturnsAudioFormatError(t *testing.T) {
	r := io.NopCloser(bytes.NewReader(nil))
	_, err := Decode(r, "song.xyz")
	if !errors.Is(err, ErrAudioFormat) {
		t.Fatalf("Decode() err = %v, want ErrAudioFormat", err)
	}
}

func TestDecodeMalformedFileReturnsAudioOpenError(t *testing.T) {
	r := io.NopCloser(bytes.NewReader([]byte("not a real wav file")))
	_, err := Decode(r, "song.wav")
	if !errors.Is(err, ErrAudioOpen) {
		t.Fatalf("Decode() err = %v, want ErrAudioOpen", err)
	}
}
