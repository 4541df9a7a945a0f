// Package builtins collects reference Processor implementations: simple
// enough to exercise every path of the engine and scheduler, but real
// enough to be useful in a graph on their own.
package builtins

import (
	"github.com/arborly/audiograph/proc"
	"github.com/arborly/audiograph/signal"
)

// Constant emits the same float32 value on every sample of every block.
type Constant struct {
	proc.Base
	Value float32
}

// NewConstant returns a Constant processor holding value.
func NewConstant(value float32) *Constant { return &Constant{Value: value} }

func (c *Constant) Name() string               { return "constant" }
func (c *Constant) InputSpec() []proc.PortSpec { return nil }
func (c *Constant) OutputSpec() []proc.PortSpec {
	return []proc.PortSpec{{Name: "out", Type: signal.TypeOf(signal.Float32)}}
}

func (c *Constant) Process(in proc.Inputs, out proc.Outputs) error {
	buf := out.At(0)
	start, end := in.Env.Mode.Range(buf.Len())
	for i := start; i < end; i++ {
		buf.SetFloat32(i, c.Value)
	}
	return nil
}

// Gain multiplies its input by a fixed factor. An unconnected input reads
// as zero, so an unconnected Gain emits silence rather than panicking.
type Gain struct {
	proc.Base
	Factor float32
}

// NewGain returns a Gain processor holding factor.
func NewGain(factor float32) *Gain { return &Gain{Factor: factor} }

func (g *Gain) Name() string { return "gain" }
func (g *Gain) InputSpec() []proc.PortSpec {
	return []proc.PortSpec{{Name: "in", Type: signal.TypeOf(signal.Float32)}}
}
func (g *Gain) OutputSpec() []proc.PortSpec {
	return []proc.PortSpec{{Name: "out", Type: signal.TypeOf(signal.Float32)}}
}

func (g *Gain) Process(in proc.Inputs, out proc.Outputs) error {
	src := in.At(0)
	dst := out.At(0)
	start, end := in.Env.Mode.Range(dst.Len())
	for i := start; i < end; i++ {
		var v float32
		if src != nil {
			v = src.GetFloat32(i)
		}
		dst.SetFloat32(i, v*g.Factor)
	}
	return nil
}

// Passthrough copies its input to its output unchanged, substituting
// silence for an unconnected input. It is the same processor shape
// graph.AddAudioInput/AddAudioOutput use internally, exported here for
// client graphs that need an explicit no-op node (e.g. a tap point).
type Passthrough struct{ proc.Base }

func (p *Passthrough) Name() string { return "passthrough" }
func (p *Passthrough) InputSpec() []proc.PortSpec {
	return []proc.PortSpec{{Name: "in", Type: signal.TypeOf(signal.Float32)}}
}
func (p *Passthrough) OutputSpec() []proc.PortSpec {
	return []proc.PortSpec{{Name: "out", Type: signal.TypeOf(signal.Float32)}}
}

func (p *Passthrough) Process(in proc.Inputs, out proc.Outputs) error {
	src := in.At(0)
	dst := out.At(0)
	start, end := in.Env.Mode.Range(dst.Len())
	for i := start; i < end; i++ {
		var v float32
		if src != nil {
			v = src.GetFloat32(i)
		}
		dst.SetFloat32(i, v)
	}
	return nil
}

// Impulse emits 1.0 at sample 0 of the very first block it ever processes
// and 0.0 everywhere else, useful for probing a feedback path's decay.
type Impulse struct {
	proc.Base
	fired bool
}

func (p *Impulse) Name() string              { return "impulse" }
func (p *Impulse) InputSpec() []proc.PortSpec { return nil }
func (p *Impulse) OutputSpec() []proc.PortSpec {
	return []proc.PortSpec{{Name: "out", Type: signal.TypeOf(signal.Float32)}}
}

func (p *Impulse) Process(in proc.Inputs, out proc.Outputs) error {
	buf := out.At(0)
	start, end := in.Env.Mode.Range(buf.Len())
	for i := start; i < end; i++ {
		if !p.fired && i == 0 {
			buf.SetFloat32(i, 1)
		} else {
			buf.SetFloat32(i, 0)
		}
	}
	p.fired = true
	return nil
}
