package kson

import "testing"

const sampleKSH = "title=Test Song\n" +
	"artist=Test Artist\n" +
	"effect=Tester\n" +
	"t=120\n" +
	"m=test.ogg\n" +
	"o=0\n" +
	"level=10\n" +
	"difficulty=light\n" +
	"--\n" +
	"1000|00|--\n" +
	"0000|00|--\n" +
	"0000|00|--\n" +
	"0000|00|--\n" +
	"--\n"

func TestParseKSHMetadata(t *testing.T) {
	c, err := ParseKSH([]byte(sampleKSH))
	if err != nil {
		t.Fatalf("ParseKSH: %v", err)
	}
	if c.Meta.Title != "Test Song" {
		t.Errorf("Title = %q, want %q", c.Meta.Title, "Test Song")
	}
	if c.Meta.Difficulty != "light" {
		t.Errorf("Difficulty = %q, want %q", c.Meta.Difficulty, "light")
	}
	if c.Audio.Filename != "test.ogg" {
		t.Errorf("Audio.Filename = %q, want %q", c.Audio.Filename, "test.ogg")
	}
	if len(c.BPM) == 0 || c.BPM[0].BPM != 120 {
		t.Fatalf("BPM = %+v, want first entry 120", c.BPM)
	}
}

func TestParseKSHSingleChip(t *testing.T) {
	c, err := ParseKSH([]byte(sampleKSH))
	if err != nil {
		t.Fatalf("ParseKSH: %v", err)
	}
	if len(c.BT[0]) != 1 {
		t.Fatalf("BT[0] = %+v, want one chip", c.BT[0])
	}
	if c.BT[0][0].Y != 0 || c.BT[0][0].L != 0 {
		t.Errorf("BT[0][0] = %+v, want {Y:0 L:0}", c.BT[0][0])
	}
	for lane := 1; lane < 4; lane++ {
		if len(c.BT[lane]) != 0 {
			t.Errorf("BT[%d] = %+v, want empty", lane, c.BT[lane])
		}
	}
}

func TestParseKSHBTHold(t *testing.T) {
	data := "t=120\n--\n" +
		"2000|00|--\n" +
		"0000|00|--\n" +
		"0000|00|--\n" +
		"0000|00|--\n" +
		"--\n"
	c, err := ParseKSH([]byte(data))
	if err != nil {
		t.Fatalf("ParseKSH: %v", err)
	}
	if len(c.BT[0]) != 1 {
		t.Fatalf("BT[0] = %+v, want one hold", c.BT[0])
	}
	iv := c.BT[0][0]
	if iv.Y != 0 || iv.L != 240 {
		t.Errorf("BT[0][0] = %+v, want {Y:0 L:240}", iv)
	}
}

func TestParseKSHFXLongNoteResolvesEffect(t *testing.T) {
	data := "t=120\n" +
		"fx=retrigger:period=8;flanger\n" +
		"--\n" +
		"0000|10|--\n" +
		"0000|00|--\n" +
		"0000|00|--\n" +
		"0000|00|--\n" +
		"--\n"
	c, err := ParseKSH([]byte(data))
	if err != nil {
		t.Fatalf("ParseKSH: %v", err)
	}
	if len(c.FX[0]) != 1 {
		t.Fatalf("FX[0] = %+v, want one interval", c.FX[0])
	}
	eff := c.FX[0][0].Effect
	if eff == nil || eff.Name != "retrigger" {
		t.Fatalf("FX[0][0].Effect = %+v, want retrigger", eff)
	}
	if eff.Params["period"] != "8" {
		t.Errorf("Effect.Params[period] = %q, want %q", eff.Params["period"], "8")
	}
}

func TestParseKSHFXChipHasNoEffect(t *testing.T) {
	data := "t=120\n--\n" +
		"0000|20|--\n" +
		"0000|00|--\n" +
		"0000|00|--\n" +
		"0000|00|--\n" +
		"--\n"
	c, err := ParseKSH([]byte(data))
	if err != nil {
		t.Fatalf("ParseKSH: %v", err)
	}
	if len(c.FX[0]) != 1 || c.FX[0][0].Effect != nil {
		t.Fatalf("FX[0] = %+v, want one chip interval with nil Effect", c.FX[0])
	}
}

func TestKSHKSONRoundTrip(t *testing.T) {
	c, err := ParseKSH([]byte(sampleKSH))
	if err != nil {
		t.Fatalf("ParseKSH: %v", err)
	}
	tm := NewTimingMap(c)
	want, err := GenerateScoreTicks(c, tm)
	if err != nil {
		t.Fatalf("GenerateScoreTicks: %v", err)
	}

	data, err := MarshalKSON(c)
	if err != nil {
		t.Fatalf("MarshalKSON: %v", err)
	}
	c2, err := ParseKSON(data)
	if err != nil {
		t.Fatalf("ParseKSON: %v", err)
	}
	tm2 := NewTimingMap(c2)
	got, err := GenerateScoreTicks(c2, tm2)
	if err != nil {
		t.Fatalf("GenerateScoreTicks (round-tripped): %v", err)
	}

	if got.Summary != want.Summary {
		t.Errorf("round-tripped summary = %+v, want %+v", got.Summary, want.Summary)
	}
	if len(got.Ticks) != len(want.Ticks) {
		t.Fatalf("round-tripped tick count = %d, want %d", len(got.Ticks), len(want.Ticks))
	}
	for i := range want.Ticks {
		if got.Ticks[i] != want.Ticks[i] {
			t.Errorf("tick %d = %+v, want %+v", i, got.Ticks[i], want.Ticks[i])
		}
	}
}
