// Package engine drives one graph.Graph through a single block of
// execution: rebuilding the schedule when the topology is dirty, running
// each strongly-connected component in dependency order, and choosing
// block-mode or per-sample-mode execution per the shape of that
// component.
package engine

import (
	"fmt"

	"github.com/arborly/audiograph/graph"
	"github.com/arborly/audiograph/proc"
)

// Engine executes one graph.Graph. It holds no state of its own beyond a
// reference to the graph: all topology and buffers live there, so an
// Engine is cheap to construct and safe to discard between blocks.
type Engine struct {
	g *graph.Graph
}

// New returns an Engine over g.
func New(g *graph.Graph) *Engine {
	return &Engine{g: g}
}

// Graph returns the underlying graph.
func (e *Engine) Graph() *graph.Graph { return e.g }

// Process runs one block of audio through the entire graph: rebuilding the
// schedule if the topology has changed since the last call, then walking
// each strongly-connected component in dependency order. A trivial SCC
// (one node, no self-loop) runs once in Block mode; any other SCC — a
// self-loop or a multi-node cycle — runs once per sample index in Sample
// mode, in the SCC's fixed intra-order, so that a node reads a
// predecessor's previous-sample output if that predecessor comes later in
// the intra-order, or its current-sample output if it comes earlier and
// has already run this iteration.
//
// Process requires the graph to have been allocated at least once.
func (e *Engine) Process() error {
	if !e.g.Allocated() {
		return graph.ErrNotAllocated
	}
	e.g.EnsureScheduled()

	blockSize := e.g.BlockSize()
	sampleRate := e.g.SampleRate()

	for _, scc := range e.g.SCCs() {
		if e.g.IsTrivialSCC(scc) {
			env := proc.Env{SampleRate: sampleRate, BlockSize: blockSize, Mode: proc.Block}
			if err := e.g.ProcessNode(scc[0], env); err != nil {
				return fmt.Errorf("engine: %w", err)
			}
			continue
		}
		for i := 0; i < blockSize; i++ {
			env := proc.Env{SampleRate: sampleRate, BlockSize: blockSize, Mode: proc.Sample(i)}
			for _, id := range scc {
				if err := e.g.ProcessNode(id, env); err != nil {
					return fmt.Errorf("engine: %w", err)
				}
			}
		}
	}
	return nil
}
