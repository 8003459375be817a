package kson

import "encoding/json"

// wire* types mirror the KSON JSON schema (short lowercase keys, camelCase
// for compound names such as "timeSig" and "chartAuthor") and convert
// to/from the in-memory Chart. An FX interval's effect is carried by name
// only: EffectDef.Params is not written, and ParseKSON yields an empty
// parameter table.

type wireBPM struct {
	Y   Tick    `json:"y"`
	BPM float64 `json:"bpm"`
}

type wireTimeSig struct {
	Measure int `json:"idx"`
	Num     int `json:"n"`
	Denom   int `json:"d"`
}

type wireInterval struct {
	Y Tick `json:"y"`
	L Tick `json:"l,omitempty"`
}

type wireFXInterval struct {
	Y      Tick    `json:"y"`
	L      Tick    `json:"l,omitempty"`
	Effect *string `json:"effect,omitempty"`
}

type wireGraphPoint struct {
	RY Tick     `json:"ry"`
	V  float64  `json:"v"`
	VF *float64 `json:"vf,omitempty"`
	A  *float64 `json:"a,omitempty"`
	B  *float64 `json:"b,omitempty"`
}

type wireLaserSection struct {
	Y      Tick             `json:"y"`
	Points []wireGraphPoint `json:"v"`
	Wide   int              `json:"w,omitempty"`
}

type wireBGM struct {
	Filename        string  `json:"filename,omitempty"`
	OffsetMS        int     `json:"offset,omitempty"`
	PreviewOffsetMS int     `json:"previewOffset,omitempty"`
	PreviewDuration int     `json:"previewDuration,omitempty"`
	Volume          float64 `json:"vol,omitempty"`
}

type wireMeta struct {
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Effector    string `json:"chartAuthor,omitempty"`
	Jacket      string `json:"jacketFilename,omitempty"`
	Illustrator string `json:"jacketAuthor,omitempty"`
	Level       int    `json:"level,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
}

type wireChart struct {
	Resolution Tick               `json:"resolution"`
	BPM        []wireBPM          `json:"bpm"`
	TimeSig    []wireTimeSig      `json:"timeSig,omitempty"`
	BT         [4][]wireInterval  `json:"bt"`
	FX         [2][]wireFXInterval `json:"fx"`
	Laser      [2][]wireLaserSection `json:"laser"`
	Audio      wireBGM            `json:"audio"`
	Meta       wireMeta           `json:"meta"`
}

// MarshalKSON serializes a Chart to its KSON JSON representation.
func MarshalKSON(c *Chart) ([]byte, error) {
	w := wireChart{
		Resolution: c.Resolution,
		Audio: wireBGM{
			Filename:        c.Audio.Filename,
			OffsetMS:        c.Audio.OffsetMS,
			PreviewOffsetMS: c.Audio.PreviewOffsetMS,
			PreviewDuration: c.Audio.PreviewDuration,
			Volume:          c.Audio.Volume,
		},
		Meta: wireMeta{
			Title:       c.Meta.Title,
			Artist:      c.Meta.Artist,
			Effector:    c.Meta.Effector,
			Jacket:      c.Meta.Jacket,
			Illustrator: c.Meta.Illustrator,
			Level:       c.Meta.Level,
			Difficulty:  c.Meta.Difficulty,
		},
	}
	for _, b := range c.BPM {
		w.BPM = append(w.BPM, wireBPM{Y: b.Tick, BPM: b.BPM})
	}
	for _, t := range c.TimeSig {
		w.TimeSig = append(w.TimeSig, wireTimeSig{Measure: t.Measure, Num: t.Num, Denom: t.Denom})
	}
	for lane := range c.BT {
		for _, iv := range c.BT[lane] {
			w.BT[lane] = append(w.BT[lane], wireInterval{Y: iv.Y, L: iv.L})
		}
	}
	for lane := range c.FX {
		for _, iv := range c.FX[lane] {
			var name *string
			if iv.Effect != nil {
				name = &iv.Effect.Name
			}
			w.FX[lane] = append(w.FX[lane], wireFXInterval{Y: iv.Y, L: iv.L, Effect: name})
		}
	}
	for side := range c.Laser {
		for _, sec := range c.Laser[side] {
			ws := wireLaserSection{Y: sec.Y, Wide: sec.Wide}
			for _, p := range sec.Points {
				ws.Points = append(ws.Points, wireGraphPoint{RY: p.RY, V: p.V, VF: p.VF, A: p.A, B: p.B})
			}
			w.Laser[side] = append(w.Laser[side], ws)
		}
	}
	return json.Marshal(w)
}

// ParseKSON parses a KSON JSON chart file into a Chart.
func ParseKSON(data []byte) (*Chart, error) {
	var w wireChart
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, wrapParse("invalid KSON: %v", err)
	}

	c := &Chart{
		Resolution: w.Resolution,
		Audio: BGMInfo{
			Filename:        w.Audio.Filename,
			OffsetMS:        w.Audio.OffsetMS,
			PreviewOffsetMS: w.Audio.PreviewOffsetMS,
			PreviewDuration: w.Audio.PreviewDuration,
			Volume:          w.Audio.Volume,
		},
		Meta: ChartMeta{
			Title:       w.Meta.Title,
			Artist:      w.Meta.Artist,
			Effector:    w.Meta.Effector,
			Jacket:      w.Meta.Jacket,
			Illustrator: w.Meta.Illustrator,
			Level:       w.Meta.Level,
			Difficulty:  w.Meta.Difficulty,
		},
	}
	if c.Resolution == 0 {
		c.Resolution = DefaultResolution
	}
	for _, b := range w.BPM {
		c.BPM = append(c.BPM, BPMPoint{Tick: b.Y, BPM: b.BPM})
	}
	if len(c.BPM) == 0 {
		c.BPM = []BPMPoint{{Tick: 0, BPM: 120}}
	}
	for _, t := range w.TimeSig {
		c.TimeSig = append(c.TimeSig, TimeSigPoint{Measure: t.Measure, Num: t.Num, Denom: t.Denom})
	}
	for lane := range w.BT {
		for _, iv := range w.BT[lane] {
			c.BT[lane] = append(c.BT[lane], Interval{Y: iv.Y, L: iv.L})
		}
	}
	for lane := range w.FX {
		for _, iv := range w.FX[lane] {
			var def *EffectDef
			if iv.Effect != nil {
				def = &EffectDef{Name: *iv.Effect, Params: map[string]string{}}
			}
			c.FX[lane] = append(c.FX[lane], FXInterval{Interval: Interval{Y: iv.Y, L: iv.L}, Effect: def})
		}
	}
	for side := range w.Laser {
		for _, ws := range w.Laser[side] {
			sec := LaserSection{Y: ws.Y, Wide: ws.Wide}
			if sec.Wide == 0 {
				sec.Wide = 1
			}
			for _, p := range ws.Points {
				sec.Points = append(sec.Points, GraphPoint{RY: p.RY, V: p.V, VF: p.VF, A: p.A, B: p.B})
			}
			c.Laser[side] = append(c.Laser[side], sec)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
