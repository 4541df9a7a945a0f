package builtins

import (
	"math"

	"github.com/arborly/audiograph/proc"
	"github.com/arborly/audiograph/signal"
)

// OnePole is a one-pole low-pass smoother: y[n] = a0*x[n] + b1*y[n-1],
// with a0/b1 derived each call from Cutoff and the active sample rate.
// Its feedback is entirely internal state (prev) rather than a graph edge,
// so it runs as an ordinary trivial-SCC node even though it implements a
// recursive filter.
type OnePole struct {
	proc.Base
	Cutoff float32

	prev float32
}

// NewOnePole returns a OnePole with the given cutoff frequency in Hz.
func NewOnePole(cutoff float32) *OnePole { return &OnePole{Cutoff: cutoff} }

func (f *OnePole) Name() string { return "one_pole" }
func (f *OnePole) InputSpec() []proc.PortSpec {
	return []proc.PortSpec{{Name: "in", Type: signal.TypeOf(signal.Float32)}}
}
func (f *OnePole) OutputSpec() []proc.PortSpec {
	return []proc.PortSpec{{Name: "out", Type: signal.TypeOf(signal.Float32)}}
}

func (f *OnePole) Process(in proc.Inputs, out proc.Outputs) error {
	sr := float32(in.Env.SampleRate)
	cutoff := f.Cutoff
	if cutoff < 0 {
		cutoff = 0
	}
	if max := sr * 0.5; cutoff > max {
		cutoff = max
	}
	b1 := float32(math.Exp(float64(-2 * math.Pi * cutoff / sr)))
	a0 := 1 - b1

	src := in.At(0)
	dst := out.At(0)
	start, end := in.Env.Mode.Range(dst.Len())
	for i := start; i < end; i++ {
		var x float32
		if src != nil {
			x = src.GetFloat32(i)
		}
		y := a0*x + b1*f.prev
		dst.SetFloat32(i, y)
		f.prev = y
	}
	return nil
}
