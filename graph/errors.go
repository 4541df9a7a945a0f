package graph

import "errors"

// Construction errors. All of these are returned synchronously from a
// mutation call and leave the Graph unchanged: every mutation validates its
// arguments fully before touching any state.
var (
	// ErrIndexOutOfBounds is returned when a node or port index does not
	// exist at the time of the call.
	ErrIndexOutOfBounds = errors.New("graph: index out of bounds")

	// ErrTypeMismatch is returned when Connect is asked to join two ports
	// whose signal types differ.
	ErrTypeMismatch = errors.New("graph: signal type mismatch")

	// ErrDuplicateConnection is returned by Connect in strict mode when
	// the target port already has an incoming edge. In the default
	// (replace) mode the existing edge is silently replaced instead.
	ErrDuplicateConnection = errors.New("graph: target port already connected")

	// ErrMismatchedGraphs names the error kind for a NodeID from one Graph
	// passed to a method of another Graph. No Graph method returns it: a
	// NodeID carries no record of its Graph, so a foreign NodeID is
	// reported as ErrIndexOutOfBounds like any other unknown node.
	ErrMismatchedGraphs = errors.New("graph: node belongs to a different graph")

	// ErrNotAllocated is returned by Process when the graph has not yet
	// been allocated via Allocate.
	ErrNotAllocated = errors.New("graph: not allocated")

	// ErrTooManyInputPorts is returned by AddNode when a Processor
	// declares more input ports than MaxInputPorts. This is checked at
	// registration time so the engine never has to handle it mid-block.
	ErrTooManyInputPorts = errors.New("graph: processor declares more input ports than MaxInputPorts")
)
