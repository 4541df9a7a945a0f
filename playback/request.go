package playback

import (
	"github.com/arborly/audiograph/graph"
	"github.com/arborly/audiograph/proc"
)

type editKind int

const (
	editAddNode editKind = iota
	editRemoveNode
	editConnect
)

// editRequest is one live-edit request. It carries its own reply channel
// (buffered 1) rather than relying on a shared response channel: the
// worker drains editCh strictly in order and does not start the next
// request until it has sent this one's reply, which gives the same FIFO
// request/response pairing a shared channel would, without the caller
// having to match replies back to requests itself.
type editRequest struct {
	kind editKind

	processor proc.Processor // AddNode

	node graph.NodeID // RemoveNode

	source       graph.NodeID // Connect
	sourceOutput int
	target       graph.NodeID
	targetInput  int

	reply chan editResponse
}

// editResponse is the result of one editRequest.
type editResponse struct {
	node graph.NodeID
	err  error
}
