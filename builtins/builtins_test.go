package builtins_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arborly/audiograph/builtins"
	"github.com/arborly/audiograph/engine"
	"github.com/arborly/audiograph/graph"
	"github.com/arborly/audiograph/proc"
	"github.com/arborly/audiograph/signal"
)

func runOneBlock(t *testing.T, wire func(g *graph.Graph) graph.NodeID, blockSize int) []float32 {
	t.Helper()
	g := graph.New(false)
	tap := wire(g)
	g.Allocate(48000, blockSize)
	eng := engine.New(g)
	require.NoError(t, eng.Process())
	return append([]float32(nil), g.OutputBuffer(tap, 0).Float32s()...)
}

func TestConstantEmitsFixedValue(t *testing.T) {
	got := runOneBlock(t, func(g *graph.Graph) graph.NodeID {
		c, _ := g.AddNode(builtins.NewConstant(0.25))
		return c
	}, 8)
	for _, v := range got {
		require.Equal(t, float32(0.25), v)
	}
}

func TestGainScalesInput(t *testing.T) {
	got := runOneBlock(t, func(g *graph.Graph) graph.NodeID {
		c, _ := g.AddNode(builtins.NewConstant(1.0))
		gn, _ := g.AddNode(builtins.NewGain(3.0))
		require.NoError(t, g.Connect(c, 0, gn, 0))
		return gn
	}, 8)
	for _, v := range got {
		require.Equal(t, float32(3.0), v)
	}
}

func TestGainUnconnectedIsSilent(t *testing.T) {
	got := runOneBlock(t, func(g *graph.Graph) graph.NodeID {
		gn, _ := g.AddNode(builtins.NewGain(5.0))
		return gn
	}, 8)
	for _, v := range got {
		require.Equal(t, float32(0), v)
	}
}

func TestImpulseFiresOnceAtSampleZero(t *testing.T) {
	got := runOneBlock(t, func(g *graph.Graph) graph.NodeID {
		imp, _ := g.AddNode(&builtins.Impulse{})
		return imp
	}, 4)
	require.Equal(t, []float32{1, 0, 0, 0}, got)
}

func TestOnePoleDoesNotAllocateDuringProcess(t *testing.T) {
	g := graph.New(false)
	c, _ := g.AddNode(builtins.NewConstant(1.0))
	f, _ := g.AddNode(builtins.NewOnePole(500))
	require.NoError(t, g.Connect(c, 0, f, 0))
	g.Allocate(48000, 64)
	eng := engine.New(g)
	require.NoError(t, eng.Process())

	allocs := testing.AllocsPerRun(50, func() {
		_ = eng.Process()
	})
	require.Zero(t, allocs)
}

// TestGainTouchesOnlyItsOwnSampleIndex pins down the contract a Processor
// must honor to be safe inside a feedback cycle: in Sample mode it must
// write (and read) only the addressed index, leaving the rest of the
// shared block buffer alone. Without this, a node wired into a real
// feedback loop (as opposed to an unconnected dummy self-loop) would
// recompute the whole block from partially-stale data on every one of the
// cycle's per-sample calls.
func TestGainTouchesOnlyItsOwnSampleIndex(t *testing.T) {
	src := signal.NewBuffer(signal.TypeOf(signal.Float32), 4, 4)
	dst := signal.NewBuffer(signal.TypeOf(signal.Float32), 4, 4)
	for i := 0; i < 4; i++ {
		src.SetFloat32(i, float32(i+1))
		dst.SetFloat32(i, -1) // sentinel: untouched slots must keep this
	}

	g := builtins.NewGain(2.0)
	in := proc.Inputs{
		Specs: g.InputSpec(),
		Bufs:  []*signal.Buffer{src},
		Env:   proc.Env{SampleRate: 48000, BlockSize: 4, Mode: proc.Sample(2)},
	}
	out := proc.Outputs{Specs: g.OutputSpec(), Bufs: []*signal.Buffer{dst}, Mode: in.Env.Mode}
	require.NoError(t, g.Process(in, out))

	require.Equal(t, float32(-1), dst.GetFloat32(0))
	require.Equal(t, float32(-1), dst.GetFloat32(1))
	require.Equal(t, float32(6), dst.GetFloat32(2)) // src[2]=3, factor=2
	require.Equal(t, float32(-1), dst.GetFloat32(3))
}

func TestMIDIGateClosedWithoutInput(t *testing.T) {
	g := graph.New(false)
	gate, _ := g.AddNode(&builtins.MIDIGate{})
	g.Allocate(48000, 4)

	eng := engine.New(g)
	require.NoError(t, eng.Process())
	for _, v := range g.OutputBuffer(gate, 0).Bools() {
		require.False(t, v)
	}
}
