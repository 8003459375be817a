package fx

import "testing"

func TestInterpolateLinearEndpoints(t *testing.T) {
	if v := Interpolate(Linear, 0, 10, 20); v != 10 {
		t.Errorf("Interpolate(0) = %v, want 10", v)
	}
	if v := Interpolate(Linear, 1, 10, 20); v != 20 {
		t.Errorf("Interpolate(1) = %v, want 20", v)
	}
	if v := Interpolate(Linear, 0.5, 10, 20); v != 15 {
		t.Errorf("Interpolate(0.5) = %v, want 15", v)
	}
}

func TestInterpolateSmoothMonotone(t *testing.T) {
	prev := -1.0
	for i := 0; i <= 10; i++ {
		v := float64(i) / 10
		got := Interpolate(Smooth, v, 0, 1)
		if got < prev {
			t.Fatalf("Smooth not monotone at v=%v", v)
		}
		prev = got
	}
}

func TestBiquadLowPassAttenuatesHighFrequency(t *testing.T) {
	b := NewBiquad(LowPass, 200, 44100, 0.707, 0)
	buf := make([]int16, 2*1024)
	for i := 0; i < 1024; i++ {
		// a high frequency tone well above the cutoff
		if i%2 == 0 {
			buf[i*2], buf[i*2+1] = 16000, 16000
		} else {
			buf[i*2], buf[i*2+1] = -16000, -16000
		}
	}
	b.Process(buf, 44100)

	var maxAbs int
	for _, v := range buf[len(buf)-200:] {
		a := int(v)
		if a < 0 {
			a = -a
		}
		if a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs > 8000 {
		t.Errorf("low-pass left a high-frequency tone largely unattenuated: maxAbs=%d", maxAbs)
	}
}

func TestGateSilencesOffPortion(t *testing.T) {
	g := &Gate{Period: 10, Duty: 0.5}
	buf := make([]int16, 2*10)
	for i := range buf {
		buf[i] = 1000
	}
	g.Process(buf, 44100)

	if buf[0] == 0 {
		t.Error("Gate silenced the on portion")
	}
	if buf[18] != 0 || buf[19] != 0 {
		t.Error("Gate did not silence the off portion")
	}
}

func TestRetriggerLoopsCapturedWindow(t *testing.T) {
	r := NewRetrigger(4)
	buf := []int16{1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8}
	r.Process(buf, 44100)

	if buf[8] != 1 || buf[9] != 1 {
		t.Errorf("Retrigger frame 4 = %d,%d want 1,1 (loop restart)", buf[8], buf[9])
	}
}
