package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arborly/audiograph/graph"
	"github.com/arborly/audiograph/proc"
	"github.com/arborly/audiograph/signal"
)

// stub is a minimal proc.Processor for exercising graph wiring without
// pulling in a concrete DSP implementation.
type stub struct {
	proc.Base
	name    string
	inputs  []proc.PortSpec
	outputs []proc.PortSpec
}

func newStub(name string, numIn, numOut int) *stub {
	s := &stub{name: name}
	for i := 0; i < numIn; i++ {
		s.inputs = append(s.inputs, proc.PortSpec{Name: "in", Type: signal.TypeOf(signal.Float32)})
	}
	for i := 0; i < numOut; i++ {
		s.outputs = append(s.outputs, proc.PortSpec{Name: "out", Type: signal.TypeOf(signal.Float32)})
	}
	return s
}

func (s *stub) Name() string                  { return s.name }
func (s *stub) InputSpec() []proc.PortSpec     { return s.inputs }
func (s *stub) OutputSpec() []proc.PortSpec    { return s.outputs }
func (s *stub) Process(in proc.Inputs, out proc.Outputs) error {
	for i := 0; i < out.NumOutputs(); i++ {
		buf := out.At(i)
		for j := range buf.Float32s() {
			buf.SetFloat32(j, 1)
		}
	}
	return nil
}

func TestConnectDisconnectRoundTrip(t *testing.T) {
	g := graph.New(false)
	a, err := g.AddNode(newStub("a", 0, 1))
	require.NoError(t, err)
	b, err := g.AddNode(newStub("b", 1, 0))
	require.NoError(t, err)

	require.NoError(t, g.Connect(a, 0, b, 0))
	require.NoError(t, g.Disconnect(b, 0))
	// Structurally equivalent to pre-connect state: no incoming edge on b.
	require.NoError(t, g.DisconnectAllInputs(b))
}

func TestConnectRejectsTypeMismatch(t *testing.T) {
	g := graph.New(false)
	floatOut := newStub("f", 0, 1)
	boolIn := &stub{name: "b", inputs: []proc.PortSpec{{Name: "in", Type: signal.TypeOf(signal.Bool)}}}
	a, _ := g.AddNode(floatOut)
	b, _ := g.AddNode(boolIn)
	err := g.Connect(a, 0, b, 0)
	require.ErrorIs(t, err, graph.ErrTypeMismatch)
}

func TestConnectRejectsOutOfRangePorts(t *testing.T) {
	g := graph.New(false)
	a, _ := g.AddNode(newStub("a", 0, 1))
	b, _ := g.AddNode(newStub("b", 1, 0))
	require.ErrorIs(t, g.Connect(a, 5, b, 0), graph.ErrIndexOutOfBounds)
	require.ErrorIs(t, g.Connect(a, 0, b, 5), graph.ErrIndexOutOfBounds)
}

func TestDuplicateConnectionDefaultReplacesStrictErrors(t *testing.T) {
	lenient := graph.New(false)
	a1, _ := lenient.AddNode(newStub("a1", 0, 1))
	a2, _ := lenient.AddNode(newStub("a2", 0, 1))
	b, _ := lenient.AddNode(newStub("b", 1, 0))
	require.NoError(t, lenient.Connect(a1, 0, b, 0))
	require.NoError(t, lenient.Connect(a2, 0, b, 0)) // replaces silently

	strict := graph.New(true)
	c1, _ := strict.AddNode(newStub("c1", 0, 1))
	c2, _ := strict.AddNode(newStub("c2", 0, 1))
	d, _ := strict.AddNode(newStub("d", 1, 0))
	require.NoError(t, strict.Connect(c1, 0, d, 0))
	require.ErrorIs(t, strict.Connect(c2, 0, d, 0), graph.ErrDuplicateConnection)
}

func TestAddNodeRejectsTooManyInputPorts(t *testing.T) {
	g := graph.New(false)
	_, err := g.AddNode(newStub("huge", graph.MaxInputPorts+1, 0))
	require.ErrorIs(t, err, graph.ErrTooManyInputPorts)
}

func TestAddRemoveNodeIsNoOpOnInvariants(t *testing.T) {
	g := graph.New(false)
	a, _ := g.AddNode(newStub("a", 0, 1))
	require.True(t, g.HasNode(a))
	require.NoError(t, g.RemoveNode(a))
	require.False(t, g.HasNode(a))
}

func TestSchedulerDeterministicAcrossRebuilds(t *testing.T) {
	g := graph.New(false)
	a, _ := g.AddNode(newStub("a", 0, 1))
	b, _ := g.AddNode(newStub("b", 1, 1))
	c, _ := g.AddNode(newStub("c", 1, 0))
	require.NoError(t, g.Connect(a, 0, b, 0))
	require.NoError(t, g.Connect(b, 0, c, 0))

	order1 := g.VisitOrder()
	// Disconnecting and reconnecting marks the schedule dirty, so the next
	// VisitOrder call rebuilds it.
	require.NoError(t, g.Disconnect(c, 0))
	require.NoError(t, g.Connect(b, 0, c, 0))
	require.True(t, g.NeedsReschedule())
	order2 := g.VisitOrder()
	require.Equal(t, order1, order2)
	require.Equal(t, []graph.NodeID{a, b, c}, order1)
}

func TestSCCDetectsSelfLoopAsNonTrivial(t *testing.T) {
	g := graph.New(false)
	a, _ := g.AddNode(newStub("a", 1, 1))
	require.NoError(t, g.Connect(a, 0, a, 0))

	sccs := g.SCCs()
	require.Len(t, sccs, 1)
	require.False(t, g.IsTrivialSCC(sccs[0]))
	require.True(t, g.HasSelfLoop(a))
}

func TestSCCGroupsCycleTogether(t *testing.T) {
	g := graph.New(false)
	a, _ := g.AddNode(newStub("a", 1, 1))
	b, _ := g.AddNode(newStub("b", 1, 1))
	require.NoError(t, g.Connect(a, 0, b, 0))
	require.NoError(t, g.Connect(b, 0, a, 0))

	sccs := g.SCCs()
	require.Len(t, sccs, 1)
	require.ElementsMatch(t, []graph.NodeID{a, b}, sccs[0])
	require.False(t, g.IsTrivialSCC(sccs[0]))
}

func TestReplaceNodeGracefullyRewiresAndDropsOrphans(t *testing.T) {
	g := graph.New(true)
	a, _ := g.AddNode(newStub("a", 0, 2))
	b, _ := g.AddAudioOutput()
	c, _ := g.AddAudioOutput()
	require.NoError(t, g.Connect(a, 0, b, 0))
	require.NoError(t, g.Connect(a, 1, c, 0))

	aPrime, _ := g.AddNode(newStub("a_prime", 0, 1))
	require.NoError(t, g.ReplaceNodeGracefully(a, aPrime))

	// a'.out0 -> b.in0: b copies a_prime's output (a itself never runs, so
	// its buffers stay zero).
	g.Allocate(48000, 4)
	env := proc.Env{SampleRate: 48000, BlockSize: 4, Mode: proc.Block}
	require.NoError(t, g.ProcessNode(aPrime, env))
	require.NoError(t, g.ProcessNode(b, env))
	for _, v := range g.OutputBuffer(b, 0).Float32s() {
		require.Equal(t, float32(1), v)
	}
	// a'.out1 doesn't exist, so a.out1 -> c.in0 was dropped: this strict
	// graph accepts a new edge into c.in0.
	require.NoError(t, g.Connect(aPrime, 0, c, 0))
}

func TestGCRemovesNodesWithNoPathToOutput(t *testing.T) {
	g := graph.New(false)
	out, _ := g.AddAudioOutput()
	kept, _ := g.AddNode(newStub("kept", 0, 1))
	orphan, _ := g.AddNode(newStub("orphan", 0, 1))
	require.NoError(t, g.Connect(kept, 0, out, 0))

	removed := g.GC()
	require.Contains(t, removed, orphan)
	require.False(t, g.HasNode(orphan))
	require.True(t, g.HasNode(kept))
	require.True(t, g.HasNode(out))
}

func TestAllocateThenProcessNode(t *testing.T) {
	g := graph.New(false)
	a, _ := g.AddNode(newStub("a", 0, 1))
	out, _ := g.AddAudioOutput()
	require.NoError(t, g.Connect(a, 0, out, 0))

	g.Allocate(48000, 128)
	env := proc.Env{SampleRate: 48000, BlockSize: 128, Mode: proc.Block}
	require.NoError(t, g.ProcessNode(a, env))
	require.NoError(t, g.ProcessNode(out, env))

	buf := g.OutputBuffer(out, 0)
	for _, v := range buf.Float32s() {
		require.Equal(t, float32(1), v)
	}
}
