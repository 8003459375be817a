// ksonrender mixes a chart's BGM and scheduled effects down to a WAV
// file, without portaudio or any realtime playback.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	kson "github.com/ksonengine/core"
	"github.com/ksonengine/core/audio"
	"github.com/ksonengine/core/audio/fx"
	"github.com/ksonengine/core/wav"
)

const outputHz = 44100

func main() {
	log.SetFlags(0)
	log.SetPrefix("ksonrender: ")

	wavOut := flag.String("wav", "", "output WAVE filename")
	flag.Parse()
	if *wavOut == "" || len(flag.Args()) == 0 {
		log.Fatal("usage: ksonrender -wav out.wav chart.kson")
	}

	chartPath := flag.Arg(0)
	data, err := os.ReadFile(chartPath)
	if err != nil {
		log.Fatal(err)
	}

	var chart *kson.Chart
	switch strings.ToLower(filepath.Ext(chartPath)) {
	case ".ksh":
		chart, err = kson.ParseKSH(data)
	default:
		chart, err = kson.ParseKSON(data)
	}
	if err != nil {
		log.Fatal(err)
	}

	bgmF, err := os.Open(filepath.Join(filepath.Dir(chartPath), chart.Audio.Filename))
	if err != nil {
		log.Fatal(err)
	}
	src, err := audio.Decode(bgmF, chart.Audio.Filename)
	if err != nil {
		log.Fatal(err)
	}

	tm := kson.NewTimingMap(chart)
	engine := audio.NewEngine(src, outputHz)
	for lane := 0; lane < 2; lane++ {
		for _, iv := range chart.FX[lane] {
			if iv.Effect == nil {
				continue
			}
			start := int(tm.TickToMS(iv.Y) * outputHz / 1000)
			end := int(tm.TickToMS(iv.Y+iv.L) * outputHz / 1000)
			if proc := fx.Build(iv.Effect, outputHz, end-start); proc != nil {
				engine.Schedule(start, end, proc)
			}
		}
	}

	wavF, err := os.Create(*wavOut)
	if err != nil {
		log.Fatal(err)
	}
	defer wavF.Close()

	wavW, err := wav.NewWriter(wavF, outputHz)
	if err != nil {
		log.Fatal(err)
	}
	defer wavW.Finish()

	buf := make([]int16, 4096)
	for !engine.Ended() {
		engine.GenerateAudio(buf)
		if err := wavW.WriteFrame(buf); err != nil {
			log.Fatal(err)
		}
	}
}
