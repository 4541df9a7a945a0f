// Package proc defines the contract every node in a signal graph
// implements: a fixed input/output port shape plus three lifecycle calls
// (Allocate, ResizeBuffers, Process) that together enforce the engine's
// no-allocation-in-the-hot-path discipline.
package proc

import (
	"fmt"

	"github.com/arborly/audiograph/signal"
)

// PortSpec names and types a single input or output port of a Processor.
type PortSpec struct {
	Name string
	Type signal.Type
}

// ProcessMode tells Process whether to run over the whole block at once or
// over a single sample within it. Nodes inside a feedback cycle are driven
// one sample at a time so that a 1-sample delay through the cycle is
// observable; acyclic nodes run once per block in Block mode.
type ProcessMode struct {
	sampleIndex int
	perSample   bool
}

// Block is the whole-block ProcessMode.
var Block = ProcessMode{}

// Sample returns the ProcessMode for a single sample at index within the
// current block.
func Sample(index int) ProcessMode {
	return ProcessMode{sampleIndex: index, perSample: true}
}

// IsSample reports whether this mode addresses a single sample, and if so
// which index.
func (m ProcessMode) IsSample() (index int, ok bool) {
	return m.sampleIndex, m.perSample
}

// Range returns the [start, end) span of buffer indices a Process call
// should touch this call, given a buffer of length n: the whole buffer in
// Block mode, a single index in Sample mode. Every Processor meant to be
// safe to wire into a feedback cycle should drive its loop off this
// instead of ranging over the buffer unconditionally, since a node inside
// a non-trivial SCC is called once per sample with the same
// still-in-progress block buffer each time.
func (m ProcessMode) Range(n int) (start, end int) {
	if !m.perSample {
		return 0, n
	}
	return m.sampleIndex, m.sampleIndex + 1
}

func (m ProcessMode) String() string {
	if m.perSample {
		return fmt.Sprintf("Sample(%d)", m.sampleIndex)
	}
	return "Block"
}

// Env carries the ambient parameters a Processor's Process call may need:
// the active sample rate, the current block size, and the ProcessMode.
type Env struct {
	SampleRate float64
	BlockSize  int
	Mode       ProcessMode
}

// Error is the error the graph node wrapper returns when Processor.Process
// fails. NodeName is filled in by that wrapper (see WithNode), not the
// Processor itself, so Processors never need to know their own graph
// identity.
type Error struct {
	NodeName string
	Err      error
}

func (e *Error) Error() string {
	if e.NodeName == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.NodeName, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// WithNode returns a copy of err annotated with a node name, wrapping it
// into *Error if it is not one already.
func WithNode(name string, err error) error {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*Error); ok {
		pe2 := *pe
		pe2.NodeName = name
		return &pe2
	}
	return &Error{NodeName: name, Err: err}
}

// Inputs gives a Processor read access to its input buffers for the
// current call. An unconnected input is represented by a nil *signal.Buffer
// at that index.
type Inputs struct {
	Specs []PortSpec
	Bufs  []*signal.Buffer
	Env   Env
}

// NumInputs returns the number of declared input ports.
func (in Inputs) NumInputs() int { return len(in.Specs) }

// At returns the input buffer at index, or nil if that input is
// unconnected. It panics if index is out of range.
func (in Inputs) At(index int) *signal.Buffer {
	return in.Bufs[index]
}

// Outputs gives a Processor write access to its output buffers for the
// current call.
type Outputs struct {
	Specs []PortSpec
	Bufs  []*signal.Buffer
	Mode  ProcessMode
}

// NumOutputs returns the number of declared output ports.
func (out Outputs) NumOutputs() int { return len(out.Specs) }

// At returns the output buffer at index, ready to be written into. It
// panics if index is out of range.
func (out Outputs) At(index int) *signal.Buffer {
	return out.Bufs[index]
}

// Processor is the unit of computation in a signal graph: a stateful unit
// mapping a fixed set of typed input ports to a fixed set of typed output
// ports, plus lifecycle hooks for (re)allocation.
//
// Allocate is the only call permitted to allocate memory; it runs once
// before processing starts and again whenever the graph is rebuilt around
// this node. ResizeBuffers runs whenever the sample rate or block size
// changes and must adjust internal state (e.g. re-tune a filter
// coefficient) without allocating. Process runs every block (or, inside a
// feedback cycle, every sample) and must not allocate.
type Processor interface {
	// Name identifies the processor kind for diagnostics; it is not a
	// graph identity (graph.NodeID serves that role).
	Name() string

	InputSpec() []PortSpec
	OutputSpec() []PortSpec

	// Allocate is called once before processing starts, and again any
	// time the sample rate or the maximum block size changes. It is the
	// only method permitted to allocate.
	Allocate(sampleRate float64, maxBlockSize int)

	// ResizeBuffers is called whenever the sample rate or the active
	// block size changes, after Allocate has already sized things for
	// the new maximum. It must not allocate.
	ResizeBuffers(sampleRate float64, blockSize int)

	// Process runs the processor over one block or one sample, per
	// env.Mode. It must not allocate.
	Process(in Inputs, out Outputs) error
}

// Base provides zero-value-safe default implementations of Allocate and
// ResizeBuffers for Processors that hold no internal state, so concrete
// types can embed it and only implement Name/InputSpec/OutputSpec/Process.
type Base struct{}

func (Base) Allocate(sampleRate float64, maxBlockSize int)     {}
func (Base) ResizeBuffers(sampleRate float64, blockSize int)   {}
