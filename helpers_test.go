package kson

import clone "github.com/huandu/go-clone/generic"

// testChart is a minimal 120 BPM, 4/4, 240-resolution chart reused as a
// base fixture across tests. Callers clone it with clone.Clone before
// mutating a field, so one test's edits never leak into another's.
var testChart = Chart{
	Resolution: 240,
	BPM:        []BPMPoint{{Tick: 0, BPM: 120}},
	TimeSig:    []TimeSigPoint{{Measure: 0, Num: 4, Denom: 4}},
}

func cloneTestChart() *Chart {
	c := clone.Clone(testChart)
	return &c
}

func f(v float64) *float64 { return &v }
