package audio

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// Decode reads an entire BGM file into memory as a Source, selecting a
// decoder by the file extension in name ("wav", "ogg", "mp3", "flac").
func Decode(r io.ReadCloser, name string) (*Source, error) {
	var streamer beep.StreamSeekCloser
	var format beep.Format
	var err error

	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "wav":
		streamer, format, err = wav.Decode(r)
	case "ogg":
		streamer, format, err = vorbis.Decode(r)
	case "mp3":
		streamer, format, err = mp3.Decode(r)
	case "flac":
		streamer, format, err = flac.Decode(r)
	default:
		return nil, wrapAudioFormat("unsupported BGM format %q", name)
	}
	if err != nil {
		return nil, wrapAudioOpen(name, err)
	}
	defer streamer.Close()

	if format.NumChannels < 1 {
		return nil, wrapAudioFormat("%s: invalid channel count %d", name, format.NumChannels)
	}

	src := &Source{SampleRate: int(format.SampleRate)}
	buf := make([][2]float64, 512)
	for {
		n, ok := streamer.Stream(buf)
		if n > 0 {
			for i := 0; i < n; i++ {
				src.Samples = append(src.Samples,
					floatToInt16(buf[i][0]),
					floatToInt16(buf[i][1]))
			}
		}
		if !ok {
			break
		}
	}
	if len(src.Samples) == 0 {
		return nil, wrapAudioFormat("%s: stream produced no samples", name)
	}
	return src, nil
}

func floatToInt16(v float64) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}
