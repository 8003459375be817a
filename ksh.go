package kson

import (
	"bytes"
	"strconv"
	"strings"
)

// laserChars is the base-51 alphabet KSH uses to encode a laser graph
// point's position in [0,1]: index/50.
const laserChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmno"

// fxSelectorChars are the long-FX grid characters that select an entry
// from the chart's "fx=" effect list, in order. '0' (no note) and '2'
// (one-shot chip, no selectable effect) are reserved and excluded.
const fxSelectorChars = "13456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// parseFXList parses a chart's "fx=" header value, a semicolon-separated
// list of effect specs, into the EffectDefs the fxSelectorChars alphabet
// indexes into. Each spec is "name" or "name:key=val,key2=val2".
func parseFXList(value string) []*EffectDef {
	var defs []*EffectDef
	for _, spec := range strings.Split(value, ";") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			defs = append(defs, nil)
			continue
		}
		name, paramStr, _ := strings.Cut(spec, ":")
		def := &EffectDef{Name: name}
		if paramStr != "" {
			def.Params = map[string]string{}
			for _, kv := range strings.Split(paramStr, ",") {
				k, v, ok := strings.Cut(kv, "=")
				if ok {
					def.Params[k] = v
				}
			}
		}
		defs = append(defs, def)
	}
	return defs
}

// fxDefForChar resolves a long-FX grid character to the EffectDef it
// selects from defs, or nil if the character or index is out of range.
func fxDefForChar(ch byte, defs []*EffectDef) *EffectDef {
	idx := strings.IndexByte(fxSelectorChars, ch)
	if idx < 0 || idx >= len(defs) {
		return nil
	}
	return defs[idx]
}

func laserCharToValue(ch byte) (float64, error) {
	idx := strings.IndexByte(laserChars, ch)
	if idx < 0 {
		return 0, wrapParse("invalid laser character %q", string(ch))
	}
	return float64(idx) / float64(len(laserChars)-1), nil
}

func laserValueToChar(v float64) byte {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	i := int(v*float64(len(laserChars)-1) + 0.5)
	return laserChars[i]
}

// isBeatLine reports whether a measure-section line is a note line of the
// form "<4 BT>|<2 FX>|<2 laser>" rather than a key=value line or blank.
func isBeatLine(s string) bool {
	if len(s) < 10 {
		return false
	}
	b := s[0]
	return (b == '0' || b == '1' || b == '2') && s[4] == '|' && s[7] == '|'
}

type kshLaserBuilder struct {
	y      Tick
	points []GraphPoint
	wide   int
}

// ParseKSH parses the plain-text KSH chart format into a Chart. A leading
// byte-order mark is stripped if present. The metadata section (key=value
// lines) runs up to the first "--" line; each subsequent measure section
// is terminated by its own "--".
func ParseKSH(data []byte) (*Chart, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	parts := strings.Split(string(data), "\n--")
	if len(parts) == 0 {
		return nil, wrapParse("empty KSH file")
	}

	c := &Chart{Resolution: DefaultResolution}
	num, den := 4, 4
	var fxDefs []*EffectDef

	for _, line := range strings.Split(parts[0], "\n") {
		line = strings.TrimRight(line, "\r")
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, value := kv[0], kv[1]
		switch key {
		case "title":
			c.Meta.Title = value
		case "artist":
			c.Meta.Artist = value
		case "effect":
			c.Meta.Effector = value
		case "jacket":
			c.Meta.Jacket = value
		case "illustrator":
			c.Meta.Illustrator = value
		case "t":
			if bpm, err := strconv.ParseFloat(value, 64); err == nil {
				c.BPM = append(c.BPM, BPMPoint{Tick: 0, BPM: bpm})
			}
		case "o":
			if off, err := strconv.Atoi(value); err == nil {
				c.Audio.OffsetMS = off
			}
		case "fx":
			fxDefs = parseFXList(value)
		case "m":
			c.Audio.Filename = value
		case "po":
			if v, err := strconv.Atoi(value); err == nil {
				c.Audio.PreviewOffsetMS = v
			}
		case "plength":
			if v, err := strconv.Atoi(value); err == nil {
				c.Audio.PreviewDuration = v
			}
		case "level":
			if v, err := strconv.Atoi(value); err == nil {
				c.Meta.Level = v
			}
		case "difficulty":
			c.Meta.Difficulty = value
		}
	}
	if len(c.BPM) == 0 {
		c.BPM = []BPMPoint{{Tick: 0, BPM: 120}}
	}

	var y Tick
	var lastBT, lastLaser [4]byte
	var longYBT [4]Tick
	var lastFX [2]byte
	var longYFX [2]Tick
	var longFXChar [2]byte
	lastLaser[2], lastLaser[3] = '-', '-'
	lastFX[0], lastFX[1] = '0', '0'
	laserBuilders := [2]*kshLaserBuilder{{wide: 1}, {wide: 1}}

	measureIndex := 0
	for _, measure := range parts[1:] {
		lines := strings.Split(measure, "\n")

		lineCount := 0
		for _, l := range lines {
			if isBeatLine(l) {
				lineCount++
			}
		}
		if lineCount == 0 {
			continue
		}
		ticksPerLine := c.Resolution * 4 * Tick(num) / Tick(den) / Tick(lineCount)
		hasReadNotes := false

		for _, line := range lines {
			line = strings.TrimRight(line, "\r")
			switch {
			case isBeatLine(line):
				hasReadNotes = true
				chars := []byte(line)

				for i := 0; i < 4; i++ {
					switch {
					case chars[i] == '1':
						c.BT[i] = append(c.BT[i], Interval{Y: y})
					case chars[i] == '2' && lastBT[i] != '2':
						longYBT[i] = y
					case chars[i] != '2' && lastBT[i] == '2':
						c.BT[i] = append(c.BT[i], Interval{Y: longYBT[i], L: y - longYBT[i]})
					}
					lastBT[i] = chars[i]
				}

				for i := 0; i < 2; i++ {
					ch := chars[i+5]
					switch {
					case ch == '2':
						c.FX[i] = append(c.FX[i], FXInterval{Interval: Interval{Y: y}})
					case ch == '0' && lastFX[i] != '0' && lastFX[i] != '2':
						c.FX[i] = append(c.FX[i], FXInterval{Interval: Interval{Y: longYFX[i], L: y - longYFX[i]}, Effect: fxDefForChar(longFXChar[i], fxDefs)})
					case ch != '0' && ch != '2' && (lastFX[i] == '0' || lastFX[i] == '2'):
						longYFX[i] = y
						longFXChar[i] = ch
					}
					lastFX[i] = ch
				}

				for i := 0; i < 2; i++ {
					ch := chars[i+8]
					lb := laserBuilders[i]
					switch {
					case ch == '-' && lastLaser[i+2] != '-':
						c.Laser[i] = append(c.Laser[i], LaserSection{Y: lb.y, Points: lb.points, Wide: lb.wide})
						laserBuilders[i] = &kshLaserBuilder{wide: 1}
					case ch != '-' && ch != ':' && lastLaser[i+2] == '-':
						v, err := laserCharToValue(ch)
						if err != nil {
							return nil, err
						}
						lb.y = y
						lb.points = append(lb.points, GraphPoint{RY: 0, V: v})
					case ch != '-' && ch != ':':
						v, err := laserCharToValue(ch)
						if err != nil {
							return nil, err
						}
						lb.points = append(lb.points, GraphPoint{RY: y - lb.y, V: v})
					}
					lastLaser[i+2] = ch
				}

				y += ticksPerLine

			case strings.Contains(line, "="):
				kv := strings.SplitN(line, "=", 2)
				key, value := kv[0], kv[1]
				switch key {
				case "beat":
					n, d, err := parseTimeSig(value)
					if err != nil {
						return nil, err
					}
					num, den = n, d
					at := measureIndex
					if hasReadNotes {
						at++
					}
					if !hasReadNotes {
						ticksPerLine = c.Resolution * 4 * Tick(num) / Tick(den) / Tick(lineCount)
					}
					c.TimeSig = append(c.TimeSig, TimeSigPoint{Measure: at, Num: num, Denom: den})
				case "t":
					bpm, err := strconv.ParseFloat(value, 64)
					if err != nil {
						return nil, wrapParse("invalid bpm %q", value)
					}
					c.BPM = append(c.BPM, BPMPoint{Tick: y, BPM: bpm})
				case "laserrange_l":
					laserBuilders[0].wide = laserWideFrom(value)
				case "laserrange_r":
					laserBuilders[1].wide = laserWideFrom(value)
				}
			}
		}
		measureIndex++
	}

	for i := 0; i < 4; i++ {
		if lastBT[i] == '2' {
			c.BT[i] = append(c.BT[i], Interval{Y: longYBT[i], L: y - longYBT[i]})
		}
	}
	for i := 0; i < 2; i++ {
		if lastFX[i] != '0' && lastFX[i] != '2' {
			c.FX[i] = append(c.FX[i], FXInterval{Interval: Interval{Y: longYFX[i], L: y - longYFX[i]}, Effect: fxDefForChar(longFXChar[i], fxDefs)})
		}
		if lastLaser[i+2] != '-' {
			lb := laserBuilders[i]
			c.Laser[i] = append(c.Laser[i], LaserSection{Y: lb.y, Points: lb.points, Wide: lb.wide})
		}
	}

	applySlamPostPass(c)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func laserWideFrom(s string) int {
	if len(s) > 0 && s[0] == '2' {
		return 2
	}
	return 1
}

func parseTimeSig(s string) (int, int, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, 0, wrapParse("invalid time signature %q", s)
	}
	n, err1 := strconv.Atoi(parts[0])
	d, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || n <= 0 || d <= 0 {
		return 0, 0, wrapParse("invalid time signature %q", s)
	}
	return n, d, nil
}

// applySlamPostPass collapses pairs of consecutive laser points within
// resolution/8 ticks of each other into a single slam point, per KSH's
// load-time-only slam detection. It is not applied to charts parsed from
// KSON, which carry explicit vf.
func applySlamPostPass(c *Chart) {
	threshold := c.Resolution / 8
	for side := range c.Laser {
		for secIdx, sec := range c.Laser[side] {
			if len(sec.Points) < 2 {
				continue
			}
			remove := make(map[int]bool)
			prev := 0
			for next := 1; next < len(sec.Points); next++ {
				if sec.Points[next].RY-sec.Points[prev].RY <= threshold {
					vf := sec.Points[next].V
					sec.Points[prev].VF = &vf
					remove[next] = true
					delete(remove, prev)
				}
				prev = next
			}
			var kept []GraphPoint
			for i, p := range sec.Points {
				if remove[i] {
					continue
				}
				if p.VF != nil && *p.VF == p.V {
					p.VF = nil
				}
				kept = append(kept, p)
			}
			sec.Points = kept
			c.Laser[side][secIdx] = sec
		}
	}
}
