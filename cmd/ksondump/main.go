// ksondump prints a chart's metadata, timing map, and generated
// score-tick summary without playing any audio.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	kson "github.com/ksonengine/core"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("ksondump: ")

	if len(os.Args) <= 1 {
		log.Fatal("Missing chart filename")
	}

	name := os.Args[1]
	data, err := os.ReadFile(name)
	if err != nil {
		log.Fatal(err)
	}

	var chart *kson.Chart
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ksh":
		chart, err = kson.ParseKSH(data)
	case ".kson":
		chart, err = kson.ParseKSON(data)
	default:
		err = fmt.Errorf("unsupported chart %q", name)
	}
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s - %s [%s] (%s)\n", chart.Meta.Artist, chart.Meta.Title, chart.Meta.Difficulty, chart.Meta.Effector)
	fmt.Printf("resolution=%d bpm=%v\n", chart.Resolution, chart.BPM)

	tm := kson.NewTimingMap(chart)
	fmt.Printf("last tick=%d duration=%.1fms\n", tm.LastTick(), tm.TickToMS(tm.LastTick()))

	seq, err := kson.GenerateScoreTicks(chart, tm)
	if err != nil {
		log.Fatal(err)
	}
	s := seq.Summary
	fmt.Printf("ticks: chip=%d hold=%d laser=%d slam=%d total=%d\n",
		s.ChipCount, s.HoldCount, s.LaserPointCount, s.SlamCount, s.Total)
}
