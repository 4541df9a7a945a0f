package playback_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arborly/audiograph/graph"
	"github.com/arborly/audiograph/playback"
	"github.com/arborly/audiograph/proc"
	"github.com/arborly/audiograph/signal"
)

// fakeSink is an in-memory AudioSink driven by a fixed schedule of block
// sizes; it records every frame it is handed.
type fakeSink struct {
	mu         sync.Mutex
	sampleRate float64
	channels   int
	schedule   []int // successive BlockSize() values; repeats last entry once exhausted
	remaining  int
	step       int
	frames     [][]float32
	done       bool
}

func newFakeSink(sampleRate float64, channels int, schedule []int, totalSamples int) *fakeSink {
	return &fakeSink{sampleRate: sampleRate, channels: channels, schedule: schedule, remaining: totalSamples}
}

func (s *fakeSink) SampleRate() float64    { return s.sampleRate }
func (s *fakeSink) OutputChannels() int    { return s.channels }

func (s *fakeSink) BlockSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step >= len(s.schedule) {
		return s.schedule[len(s.schedule)-1]
	}
	b := s.schedule[s.step]
	s.step++
	return b
}

func (s *fakeSink) SamplesNeeded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

func (s *fakeSink) Write(frame []float32) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := append([]float32(nil), frame...)
	s.frames = append(s.frames, cp)
	if s.remaining > 0 {
		s.remaining--
	}
	return 1, nil
}

type constant struct {
	proc.Base
	value float32
}

func (c *constant) Name() string               { return "constant" }
func (c *constant) InputSpec() []proc.PortSpec  { return nil }
func (c *constant) OutputSpec() []proc.PortSpec {
	return []proc.PortSpec{{Name: "out", Type: signal.TypeOf(signal.Float32)}}
}
func (c *constant) Process(in proc.Inputs, out proc.Outputs) error {
	buf := out.At(0)
	for i := range buf.Float32s() {
		buf.SetFloat32(i, c.value)
	}
	return nil
}

func TestLoopIdleToRunningToStopped(t *testing.T) {
	g := graph.New(false)
	out, _ := g.AddAudioOutput()
	_ = out
	g.Allocate(48000, 64)

	l := playback.New(g)
	require.Equal(t, playback.Idle, l.State())

	sink := newFakeSink(48000, 1, []int{64}, 64)
	l.Play(sink)

	deadline := time.After(2 * time.Second)
	for l.SamplesWritten() < 64 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for samples")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	_, err := l.Stop()
	require.NoError(t, err)
	require.Equal(t, playback.Stopped, l.State())
}

func TestLoopLiveAddConnect(t *testing.T) {
	g := graph.New(false)
	out, _ := g.AddAudioOutput()
	g.Allocate(48000, 32)

	l := playback.New(g)
	sink := newFakeSink(48000, 1, []int{32}, 1<<20)
	l.Play(sink)

	id, err := l.AddNode(&constant{value: 0.5})
	require.NoError(t, err)
	require.NoError(t, l.Connect(id, 0, out, 0))

	time.Sleep(50 * time.Millisecond)
	graphBack, stopErr := l.Stop()
	require.NoError(t, stopErr)
	require.NotNil(t, graphBack)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.NotEmpty(t, sink.frames)
	last := sink.frames[len(sink.frames)-1]
	require.Equal(t, float32(0.5), last[0])
}

func TestLoopRejectsEditsBeforePlay(t *testing.T) {
	g := graph.New(false)
	g.Allocate(48000, 32)
	l := playback.New(g)
	_, err := l.AddNode(&constant{value: 1})
	require.ErrorIs(t, err, playback.ErrSinkNotStarted)
}
