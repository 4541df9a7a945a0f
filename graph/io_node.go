package graph

import (
	"github.com/arborly/audiograph/proc"
	"github.com/arborly/audiograph/signal"
)

// ioPassthrough is the built-in processor behind AddAudioInput and
// AddAudioOutput: a single float32 port in, the same port out, with a
// silent default when unconnected. AddAudioOutput nodes are read from by
// the caller (there is nothing downstream). AddAudioInput nodes are not
// written into by the caller: each block, Process overwrites their output
// with their input, or with silence when the input is unconnected. Passthrough
// behavior keeps both roles addressable through the same node/port model
// as every other Processor.
type ioPassthrough struct {
	proc.Base
	label string
}

func newIOPassthrough(label string) *ioPassthrough {
	return &ioPassthrough{label: label}
}

func (p *ioPassthrough) Name() string { return p.label }

func (p *ioPassthrough) InputSpec() []proc.PortSpec {
	return []proc.PortSpec{{Name: "in", Type: signal.TypeOf(signal.Float32)}}
}

func (p *ioPassthrough) OutputSpec() []proc.PortSpec {
	return []proc.PortSpec{{Name: "out", Type: signal.TypeOf(signal.Float32)}}
}

func (p *ioPassthrough) Process(in proc.Inputs, out proc.Outputs) error {
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
