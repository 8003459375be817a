// ksonplay plays a KSON/KSH chart interactively: the four BT lanes on the
// keyboard, judged live against the BGM track. FX lanes and laser lanes
// have no key binding, so their ticks are judged without input.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/fatih/color"
	"github.com/gordonklaus/portaudio"

	kson "github.com/ksonengine/core"
	"github.com/ksonengine/core/audio"
	"github.com/ksonengine/core/audio/fx"
	"github.com/ksonengine/core/internal/config"
	"github.com/ksonengine/core/judge"
)

var (
	flagConfig = flag.String("config", "", "path to a TOML config file")
	flagHard   = flag.Bool("hard", false, "use the Hard gauge")
)

// lane keys for the four BT lanes on a QWERTY keyboard.
var laneKeys = map[keys.KeyCode]int{
	keys.KeyD: kson.LaneBT0,
	keys.KeyF: kson.LaneBT1,
	keys.KeyJ: kson.LaneBT2,
	keys.KeyK: kson.LaneBT3,
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("ksonplay: ")
	flag.Parse()

	if len(flag.Args()) == 0 {
		log.Fatal("Missing chart filename")
	}

	cfg := config.Default()
	if *flagConfig != "" {
		var err error
		cfg, err = config.Load(*flagConfig)
		if err != nil {
			log.Fatal(err)
		}
	}
	if *flagHard {
		cfg.Judge.Gauge = "hard"
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	chart, err := loadChart(data, flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}

	tm := kson.NewTimingMap(chart)
	seq, err := kson.GenerateScoreTicks(chart, tm)
	if err != nil {
		log.Fatal(err)
	}

	durationMS := tm.TickToMS(tm.LastTick())
	j := judge.NewJudge(seq, tm, cfg.HitWindow(), cfg.GaugeKind(), durationMS)

	src, err := loadBGM(chart, flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	engine := audio.NewEngine(src, cfg.Audio.OutputHz)
	engine.SetLeadIn(audio.DefaultLeadInMS)
	scheduleEffects(engine, chart, tm, cfg.Audio.OutputHz)

	if err := portaudio.Initialize(); err != nil {
		log.Fatal(err)
	}
	defer portaudio.Terminate()

	var pending []judge.InputEvent
	stop, err := keyboard.Listen(func(k keys.Key) (bool, error) {
		lane, ok := laneKeys[k.Code]
		if !ok {
			if k.Code == keys.KeyEscape || k.Code == keys.CtrlC {
				return true, nil
			}
			return false, nil
		}
		pending = append(pending, judge.InputEvent{
			Kind: judge.InputButtonPress, TimeMS: engine.PositionMS(), Lane: lane,
		})
		return false, nil
	})
	if err != nil {
		log.Fatal(err)
	}
	defer stop()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT)

	stream, err := portaudio.OpenDefaultStream(0, 2, float64(cfg.Audio.OutputHz), cfg.Audio.BufferFrames, func(out []int16) {
		engine.GenerateAudio(out)
		events := pending
		pending = nil
		j.Update(engine.PositionMS(), events)
	})
	if err != nil {
		log.Fatal(err)
	}
	defer stream.Close()
	stream.Start()
	defer stream.Stop()

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for {
		select {
		case <-sigch:
			j.Abort(engine.PositionMS())
			engine.Stop()
			printResult(j)
			return
		default:
		}
		if _, done := j.Done(); done {
			printResult(j)
			return
		}
		cur, max := j.Combo()
		fmt.Printf("\rcombo %s max %s gauge %s   ",
			green(cur), yellow(max), red(fmt.Sprintf("%.1f%%", j.Gauge().Value*100)))
		time.Sleep(50 * time.Millisecond)
	}
}

func loadChart(data []byte, name string) (*kson.Chart, error) {
	if len(name) > 4 && name[len(name)-4:] == ".ksh" {
		return kson.ParseKSH(data)
	}
	return kson.ParseKSON(data)
}

func loadBGM(chart *kson.Chart, chartPath string) (*audio.Source, error) {
	dir := chartPath[:max(0, lastSlash(chartPath)+1)]
	f, err := os.Open(dir + chart.Audio.Filename)
	if err != nil {
		return nil, err
	}
	return audio.Decode(f, chart.Audio.Filename)
}

func scheduleEffects(e *audio.Engine, chart *kson.Chart, tm *kson.TimingMap, outputHz int) {
	for lane := 0; lane < 2; lane++ {
		for _, iv := range chart.FX[lane] {
			if iv.Effect == nil {
				continue
			}
			start := int(tm.TickToMS(iv.Y) * float64(outputHz) / 1000)
			end := int(tm.TickToMS(iv.Y+iv.L) * float64(outputHz) / 1000)
			if proc := fx.Build(iv.Effect, outputHz, end-start); proc != nil {
				e.Schedule(start, end, proc)
			}
		}
	}
}

func printResult(j *judge.Judge) {
	r := judge.Summarize(j)
	fmt.Printf("\nscore %d  grade %v  badge %v  max combo %d\n", r.Score, r.Grade, r.Badge, r.MaxCombo)
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}
