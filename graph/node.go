package graph

import (
	"github.com/google/uuid"

	"github.com/arborly/audiograph/proc"
	"github.com/arborly/audiograph/signal"
)

// NodeID stably identifies a node for the lifetime of the Graph it belongs
// to, including across removals of other nodes. It carries no positional
// meaning (unlike an index into a slice), which is what lets removal be
// cheap and identity stay valid.
type NodeID uuid.UUID

// String renders the NodeID for diagnostics.
func (id NodeID) String() string { return uuid.UUID(id).String() }

func newNodeID() NodeID { return NodeID(uuid.New()) }

// node wraps a Processor with its cached port specs and one output buffer
// per declared output port. The buffers are (re)allocated by Allocate and
// merely resized by ResizeBuffers. The node records its own NodeID and
// display name; the Processor itself knows neither, so process tags any
// error the Processor returns with the node's cached name.
type node struct {
	id   NodeID
	name string
	proc proc.Processor

	inputSpecs  []proc.PortSpec
	outputSpecs []proc.PortSpec
	outputs     []*signal.Buffer

	// inputScratch is reused across process calls so that gathering
	// predecessor pointers each block never allocates.
	inputScratch []*signal.Buffer

	selfLoop bool // set by the graph when an edge from id to id exists
}

func newNode(id NodeID, p proc.Processor) *node {
	return &node{
		id:          id,
		name:        p.Name(),
		proc:        p,
		inputSpecs:  p.InputSpec(),
		outputSpecs: p.OutputSpec(),
	}
}

// allocate delegates to the Processor and then (re)creates this node's
// output buffers sized to maxBlockSize. This is the only node-level
// operation permitted to allocate.
func (n *node) allocate(sampleRate float64, maxBlockSize int) {
	n.proc.Allocate(sampleRate, maxBlockSize)
	n.outputs = make([]*signal.Buffer, len(n.outputSpecs))
	for i, spec := range n.outputSpecs {
		n.outputs[i] = signal.NewBuffer(spec.Type, maxBlockSize, maxBlockSize)
	}
	n.inputScratch = make([]*signal.Buffer, len(n.inputSpecs))
}

// resizeBuffers delegates to the Processor and logically resizes this
// node's output buffers in place. Must not allocate.
func (n *node) resizeBuffers(sampleRate float64, blockSize int) {
	n.proc.ResizeBuffers(sampleRate, blockSize)
	for _, buf := range n.outputs {
		buf.Resize(blockSize)
	}
}

// process gathers the supplied predecessor buffers (one slot per input
// port, nil if unconnected), runs the Processor, and writes into this
// node's own output buffers. Any error is tagged with the node's name.
func (n *node) process(inputs []*signal.Buffer, env proc.Env) error {
	in := proc.Inputs{Specs: n.inputSpecs, Bufs: inputs, Env: env}
	out := proc.Outputs{Specs: n.outputSpecs, Bufs: n.outputs, Mode: env.Mode}
	if err := n.proc.Process(in, out); err != nil {
		return proc.WithNode(n.name, err)
	}
	return nil
}

// ID returns the node's stable identity.
func (n *node) ID() NodeID { return n.id }

// Name returns the node's diagnostic name.
func (n *node) Name() string { return n.name }

// InputSpec returns the node's declared input ports.
func (n *node) InputSpec() []proc.PortSpec { return n.inputSpecs }

// OutputSpec returns the node's declared output ports.
func (n *node) OutputSpec() []proc.PortSpec { return n.outputSpecs }

// Output returns the node's current output buffer at index.
func (n *node) Output(index int) *signal.Buffer { return n.outputs[index] }
