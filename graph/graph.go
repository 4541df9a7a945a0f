package graph

import (
	"fmt"

	"github.com/arborly/audiograph/proc"
	"github.com/arborly/audiograph/signal"
)

// MaxInputPorts bounds how many input ports a single node may declare. The
// engine gathers predecessor buffers into a fixed-capacity array indexed
// by target input port; a Processor declaring more than this many inputs
// is rejected at AddNode time rather than failing later inside a block.
const MaxInputPorts = 32

type edgeKey struct {
	target      NodeID
	targetInput int
}

// Graph is the mutable node/edge topology: a directed multigraph of
// Processors with fan-in capped at 1 per input port and unbounded fan-out.
// It owns every node's buffers exclusively; NodeIDs are the only handles
// callers hold. A Graph is not safe for concurrent mutation — per the
// single-writer discipline, only one goroutine (the audio worker, once
// playback starts) may call its mutating methods at a time.
type Graph struct {
	nodes map[NodeID]*node
	order []NodeID // insertion order, used as a deterministic tie-break

	edgesByTarget map[edgeKey]Edge
	outgoing      map[NodeID][]Edge
	incoming      map[NodeID][]Edge

	inputs  []NodeID
	outputs []NodeID

	sampleRate   float64
	blockSize    int
	maxBlockSize int
	allocated    bool

	needsReschedule bool
	visitOrder      []NodeID
	sccs            [][]NodeID
	sccSelfLoop     []bool

	strictConnections bool
}

// New returns an empty Graph. When strictConnections is true, Connect
// returns ErrDuplicateConnection instead of silently replacing an existing
// edge at the target port.
func New(strictConnections bool) *Graph {
	return &Graph{
		nodes:             make(map[NodeID]*node),
		edgesByTarget:     make(map[edgeKey]Edge),
		outgoing:          make(map[NodeID][]Edge),
		incoming:          make(map[NodeID][]Edge),
		needsReschedule:   true,
		strictConnections: strictConnections,
	}
}

// SampleRate returns the sample rate last passed to Allocate or
// ResizeBuffers.
func (g *Graph) SampleRate() float64 { return g.sampleRate }

// BlockSize returns the block size last passed to Allocate or
// ResizeBuffers.
func (g *Graph) BlockSize() int { return g.blockSize }

// MaxBlockSize returns the largest block size the graph's buffers are
// currently sized for.
func (g *Graph) MaxBlockSize() int { return g.maxBlockSize }

// Allocated reports whether Allocate has been called at least once.
func (g *Graph) Allocated() bool { return g.allocated }

// Inputs returns the NodeIDs registered via AddAudioInput, in registration
// order.
func (g *Graph) Inputs() []NodeID { return append([]NodeID(nil), g.inputs...) }

// Outputs returns the NodeIDs registered via AddAudioOutput, in
// registration order.
func (g *Graph) Outputs() []NodeID { return append([]NodeID(nil), g.outputs...) }

// NeedsReschedule reports whether a structural mutation has happened since
// the schedule was last rebuilt.
func (g *Graph) NeedsReschedule() bool { return g.needsReschedule }

// HasNode reports whether id names a node currently in the graph.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// NodeName returns id's diagnostic name, or "" if id is not in the graph.
func (g *Graph) NodeName(id NodeID) string {
	if n, ok := g.nodes[id]; ok {
		return n.Name()
	}
	return ""
}

// NumInputPorts returns id's declared input port count.
func (g *Graph) NumInputPorts(id NodeID) int {
	if n, ok := g.nodes[id]; ok {
		return len(n.inputSpecs)
	}
	return 0
}

// NumOutputPorts returns id's declared output port count.
func (g *Graph) NumOutputPorts(id NodeID) int {
	if n, ok := g.nodes[id]; ok {
		return len(n.outputSpecs)
	}
	return 0
}

// OutputBuffer returns id's current output buffer at portIndex. It panics
// if id or portIndex is invalid; callers that accept untrusted indices
// should check NumOutputPorts first.
func (g *Graph) OutputBuffer(id NodeID, portIndex int) *signal.Buffer {
	return g.nodes[id].Output(portIndex)
}

// AddNode constructs a node around p and inserts it into the graph. If the
// graph has already been allocated, the new node is immediately allocated
// and resized to the graph's current sample rate and block size so it is
// usable without waiting for a full re-allocation pass.
func (g *Graph) AddNode(p proc.Processor) (NodeID, error) {
	if len(p.InputSpec()) > MaxInputPorts {
		return NodeID{}, fmt.Errorf("%w: %q declares %d", ErrTooManyInputPorts, p.Name(), len(p.InputSpec()))
	}
	id := newNodeID()
	n := newNode(id, p)
	if g.allocated {
		n.allocate(g.sampleRate, g.maxBlockSize)
		if g.blockSize != g.maxBlockSize {
			n.resizeBuffers(g.sampleRate, g.blockSize)
		}
	}
	g.nodes[id] = n
	g.order = append(g.order, id)
	g.needsReschedule = true
	return id, nil
}

// AddAudioInput adds a passthrough node to the graph and appends it to the
// input role list. Its output copies whatever is connected to its sole
// input port and feeds the rest of the graph like any other node's; with
// nothing connected it emits silence every block. The Graph has no other
// way to inject external samples into it.
func (g *Graph) AddAudioInput() (NodeID, error) {
	id, err := g.AddNode(newIOPassthrough(fmt.Sprintf("audio_in_%d", len(g.inputs))))
	if err != nil {
		return NodeID{}, err
	}
	g.inputs = append(g.inputs, id)
	return id, nil
}

// AddAudioOutput adds a passthrough node to the graph and appends it to the
// output role list. The playback loop reads each output node's sole
// output buffer once per block.
func (g *Graph) AddAudioOutput() (NodeID, error) {
	id, err := g.AddNode(newIOPassthrough(fmt.Sprintf("audio_out_%d", len(g.outputs))))
	if err != nil {
		return NodeID{}, err
	}
	g.outputs = append(g.outputs, id)
	return id, nil
}

func (g *Graph) checkPort(id NodeID, outputPort int, inputPort int) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: node %s", ErrIndexOutOfBounds, id)
	}
	if outputPort >= 0 && outputPort >= len(n.outputSpecs) {
		return fmt.Errorf("%w: node %s output port %d", ErrIndexOutOfBounds, id, outputPort)
	}
	if inputPort >= 0 && inputPort >= len(n.inputSpecs) {
		return fmt.Errorf("%w: node %s input port %d", ErrIndexOutOfBounds, id, inputPort)
	}
	return nil
}

// Connect joins source's sourceOutput port to target's targetInput port.
// Preconditions: both nodes exist, both port indices are in range, and the
// two ports' signal types match. If target/targetInput already has an
// incoming edge, the default policy silently replaces it; in strict mode
// (see New) ErrDuplicateConnection is returned instead and nothing
// changes.
func (g *Graph) Connect(source NodeID, sourceOutput int, target NodeID, targetInput int) error {
	if err := g.checkPort(source, sourceOutput, -1); err != nil {
		return err
	}
	if err := g.checkPort(target, -1, targetInput); err != nil {
		return err
	}
	srcType := g.nodes[source].outputSpecs[sourceOutput].Type
	dstType := g.nodes[target].inputSpecs[targetInput].Type
	if !srcType.Equal(dstType) {
		return fmt.Errorf("%w: %v output vs %v input", ErrTypeMismatch, srcType, dstType)
	}

	key := edgeKey{target: target, targetInput: targetInput}
	if existing, dup := g.edgesByTarget[key]; dup {
		if g.strictConnections {
			return fmt.Errorf("%w: target %s port %d", ErrDuplicateConnection, target, targetInput)
		}
		g.removeEdge(existing)
	}

	edge := Edge{Source: source, SourceOutput: sourceOutput, Target: target, TargetInput: targetInput}
	g.addEdge(edge)
	return nil
}

func (g *Graph) addEdge(e Edge) {
	key := edgeKey{target: e.Target, targetInput: e.TargetInput}
	g.edgesByTarget[key] = e
	g.outgoing[e.Source] = append(g.outgoing[e.Source], e)
	g.incoming[e.Target] = append(g.incoming[e.Target], e)
	if e.Source == e.Target {
		g.nodes[e.Target].selfLoop = true
	}
	g.needsReschedule = true
}

func (g *Graph) removeEdge(e Edge) {
	key := edgeKey{target: e.Target, targetInput: e.TargetInput}
	delete(g.edgesByTarget, key)
	g.outgoing[e.Source] = removeEdgeValue(g.outgoing[e.Source], e)
	g.incoming[e.Target] = removeEdgeValue(g.incoming[e.Target], e)
	if e.Source == e.Target {
		if n, ok := g.nodes[e.Target]; ok {
			n.selfLoop = false
			for _, other := range g.incoming[e.Target] {
				if other.Source == e.Target {
					n.selfLoop = true
					break
				}
			}
		}
	}
	g.needsReschedule = true
}

func removeEdgeValue(edges []Edge, target Edge) []Edge {
	out := edges[:0]
	for _, e := range edges {
		if e != target {
			out = append(out, e)
		}
	}
	return out
}

// Disconnect removes the edge feeding (target, targetInput), if any. It is
// a no-op, not an error, if no such edge exists.
func (g *Graph) Disconnect(target NodeID, targetInput int) error {
	if err := g.checkPort(target, -1, targetInput); err != nil {
		return err
	}
	key := edgeKey{target: target, targetInput: targetInput}
	if e, ok := g.edgesByTarget[key]; ok {
		g.removeEdge(e)
	}
	return nil
}

// DisconnectAllInputs removes every edge feeding into id.
func (g *Graph) DisconnectAllInputs(id NodeID) error {
	if !g.HasNode(id) {
		return fmt.Errorf("%w: node %s", ErrIndexOutOfBounds, id)
	}
	for _, e := range append([]Edge(nil), g.incoming[id]...) {
		g.removeEdge(e)
	}
	return nil
}

// DisconnectAllOutputs removes every edge sourced from id.
func (g *Graph) DisconnectAllOutputs(id NodeID) error {
	if !g.HasNode(id) {
		return fmt.Errorf("%w: node %s", ErrIndexOutOfBounds, id)
	}
	for _, e := range append([]Edge(nil), g.outgoing[id]...) {
		g.removeEdge(e)
	}
	return nil
}

// DisconnectAll removes every edge touching id, incoming or outgoing.
func (g *Graph) DisconnectAll(id NodeID) error {
	if err := g.DisconnectAllInputs(id); err != nil {
		return err
	}
	return g.DisconnectAllOutputs(id)
}

// RemoveNode disconnects every edge touching id and removes it from the
// graph.
func (g *Graph) RemoveNode(id NodeID) error {
	if !g.HasNode(id) {
		return fmt.Errorf("%w: node %s", ErrIndexOutOfBounds, id)
	}
	_ = g.DisconnectAll(id)
	delete(g.nodes, id)
	delete(g.outgoing, id)
	delete(g.incoming, id)
	g.order = removeNodeValue(g.order, id)
	g.inputs = removeNodeValue(g.inputs, id)
	g.outputs = removeNodeValue(g.outputs, id)
	g.needsReschedule = true
	return nil
}

func removeNodeValue(ids []NodeID, target NodeID) []NodeID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// ReplaceNodeGracefully disconnects old's outgoing edges and rewires each
// to the same output port number on replacement, dropping any edge whose
// port index is out of range for replacement's output spec. Incoming edges
// to old are left untouched — rewiring them is the caller's
// responsibility, since the caller is the only one who knows whether
// replacement's input ports mean the same thing as old's.
//
// This does not run GC: a node orphaned by the drop of an out-of-range
// edge stays in the graph until the caller explicitly calls GC.
func (g *Graph) ReplaceNodeGracefully(old, replacement NodeID) error {
	if !g.HasNode(old) {
		return fmt.Errorf("%w: node %s", ErrIndexOutOfBounds, old)
	}
	if !g.HasNode(replacement) {
		return fmt.Errorf("%w: node %s", ErrIndexOutOfBounds, replacement)
	}
	replacementOutputs := len(g.nodes[replacement].outputSpecs)

	oldOutgoing := append([]Edge(nil), g.outgoing[old]...)
	// Validate every rewire before removing anything, so a type mismatch
	// leaves the graph unchanged.
	for _, e := range oldOutgoing {
		if e.SourceOutput >= replacementOutputs {
			continue
		}
		srcType := g.nodes[replacement].outputSpecs[e.SourceOutput].Type
		dstType := g.nodes[e.Target].inputSpecs[e.TargetInput].Type
		if !srcType.Equal(dstType) {
			return fmt.Errorf("%w: %v output vs %v input", ErrTypeMismatch, srcType, dstType)
		}
	}
	for _, e := range oldOutgoing {
		g.removeEdge(e)
		if e.SourceOutput >= replacementOutputs {
			continue // orphaned: port does not exist on the replacement
		}
		if err := g.Connect(replacement, e.SourceOutput, e.Target, e.TargetInput); err != nil {
			return err
		}
	}
	return nil
}

// GC removes every node that has no directed path to any node in the
// output role list, repeating until a fixed point. It is never called
// implicitly by Allocate, ResizeBuffers, or Process; callers invoke it
// explicitly when they want to reclaim dead subgraphs. It returns the IDs
// removed.
func (g *Graph) GC() []NodeID {
	var removed []NodeID
	for {
		reachable := g.reachesAnyOutput()
		progress := false
		for _, id := range append([]NodeID(nil), g.order...) {
			if reachable[id] {
				continue
			}
			isOutput := false
			for _, o := range g.outputs {
				if o == id {
					isOutput = true
					break
				}
			}
			if isOutput {
				continue
			}
			_ = g.RemoveNode(id)
			removed = append(removed, id)
			progress = true
		}
		if !progress {
			break
		}
	}
	return removed
}

// reachesAnyOutput returns, for every node, whether a directed path from
// that node reaches a node in the output role list.
func (g *Graph) reachesAnyOutput() map[NodeID]bool {
	reach := make(map[NodeID]bool, len(g.nodes))
	var visit func(id NodeID) bool
	visiting := make(map[NodeID]bool)
	visit = func(id NodeID) bool {
		if v, done := reach[id]; done {
			return v
		}
		if visiting[id] {
			return false
		}
		visiting[id] = true
		for _, o := range g.outputs {
			if o == id {
				reach[id] = true
				visiting[id] = false
				return true
			}
		}
		for _, e := range g.outgoing[id] {
			if e.Target != id && visit(e.Target) {
				reach[id] = true
				visiting[id] = false
				return true
			}
		}
		reach[id] = false
		visiting[id] = false
		return false
	}
	for _, id := range g.order {
		visit(id)
	}
	return reach
}

// Allocate (re)allocates every node's output buffers for maxBlockSize at
// sampleRate and sets the current block size to maxBlockSize; smaller
// blocks take a later ResizeBuffers call. This is the only Graph-level
// operation permitted to allocate.
func (g *Graph) Allocate(sampleRate float64, maxBlockSize int) {
	g.sampleRate = sampleRate
	g.maxBlockSize = maxBlockSize
	g.blockSize = maxBlockSize
	for _, id := range g.VisitOrder() {
		g.nodes[id].allocate(sampleRate, maxBlockSize)
	}
	g.allocated = true
}

// ResizeBuffers resizes every node's buffers to blockSize without
// allocating. blockSize must not exceed the graph's current MaxBlockSize.
func (g *Graph) ResizeBuffers(sampleRate float64, blockSize int) {
	g.sampleRate = sampleRate
	g.blockSize = blockSize
	for _, id := range g.VisitOrder() {
		g.nodes[id].resizeBuffers(sampleRate, blockSize)
	}
}

// ProcessNode gathers id's currently-connected predecessor output buffers
// (nil for an unconnected input port) and runs its Processor once under
// env. It does not allocate.
func (g *Graph) ProcessNode(id NodeID, env proc.Env) error {
	n := g.nodes[id]
	for i := range n.inputScratch {
		n.inputScratch[i] = nil
	}
	for _, e := range g.incoming[id] {
		n.inputScratch[e.TargetInput] = g.nodes[e.Source].Output(e.SourceOutput)
	}
	return n.process(n.inputScratch, env)
}

// HasSelfLoop reports whether id has an edge from itself to itself.
func (g *Graph) HasSelfLoop(id NodeID) bool {
	if n, ok := g.nodes[id]; ok {
		return n.selfLoop
	}
	return false
}
