// Package playback bridges a push-driven render thread to a pull-driven
// AudioSink: a single worker goroutine repeatedly asks the sink how much
// it wants, runs the engine for that much, writes the result, and between
// blocks services a queue of live graph edits.
package playback

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/arborly/audiograph/engine"
	"github.com/arborly/audiograph/graph"
	"github.com/arborly/audiograph/proc"
)

// ErrorHook is called from the worker goroutine when a fatal error ends
// playback (a processor failure or a sink error). It must not block; it
// exists for diagnostics, not control flow — the error itself is also
// returned from Stop.
type ErrorHook func(error)

// Loop owns a graph.Graph across its playback lifetime: Idle before Play,
// Running while its worker goroutine drives the Engine from a sink's
// demand, Stopping while draining in-flight edits, Stopped once the
// worker has exited and handed the Graph back.
type Loop struct {
	eng *engine.Engine

	state atomic.Int32

	editCh chan editRequest
	killCh chan struct{}
	doneCh chan struct{}

	samplesWritten  atomic.Uint64
	durationWritten atomic.Int64 // nanoseconds
	sampleRate      atomic.Uint64
	blockSize       atomic.Int64

	runErr error // set once, before doneCh closes

	frameBuf []float32 // reused across writeBlock calls

	log     *slog.Logger
	onError ErrorHook
}

// New returns a Loop over g, in the Idle state.
func New(g *graph.Graph, opts ...Option) *Loop {
	l := &Loop{
		eng:    engine.New(g),
		editCh: make(chan editRequest, 64),
		killCh: make(chan struct{}, 1),
		doneCh: make(chan struct{}),
		log:    slog.Default(),
	}
	l.state.Store(int32(Idle))
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Option configures a Loop at construction time.
type Option func(*Loop)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// WithErrorHook registers a callback invoked when the worker exits due to
// a fatal error.
func WithErrorHook(hook ErrorHook) Option {
	return func(l *Loop) { l.onError = hook }
}

// State returns the Loop's current lifecycle state.
func (l *Loop) State() State { return State(l.state.Load()) }

// Play transitions the Loop from Idle to Running and spawns its worker
// goroutine, which drives the Engine from sink's demand until Stop is
// called or a fatal error occurs. Play returns immediately; it does not
// block for playback to finish.
func (l *Loop) Play(sink AudioSink) {
	if !l.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return
	}
	l.sampleRate.Store(floatBits(sink.SampleRate()))
	l.blockSize.Store(int64(l.eng.Graph().BlockSize()))
	go l.run(sink)
}

func (l *Loop) run(sink AudioSink) {
	defer close(l.doneCh)
	g := l.eng.Graph()

	for {
		select {
		case <-l.killCh:
			l.drainEditsOnExit()
			l.state.Store(int32(Stopped))
			return
		default:
		}

		l.drainEdits()

		if sink.SamplesNeeded() <= 0 {
			select {
			case <-l.killCh:
				l.drainEditsOnExit()
				l.state.Store(int32(Stopped))
				return
			case <-time.After(time.Millisecond):
			}
			continue
		}

		for sink.SamplesNeeded() > 0 {
			select {
			case <-l.killCh:
				l.drainEditsOnExit()
				l.state.Store(int32(Stopped))
				return
			default:
			}

			requested := sink.BlockSize()
			switch {
			case requested > g.MaxBlockSize():
				l.log.Debug("reallocating graph buffers", "samples", requested)
				g.Allocate(sink.SampleRate(), requested)
			case requested != g.BlockSize():
				l.log.Debug("resizing graph buffers", "samples", requested)
				g.ResizeBuffers(sink.SampleRate(), requested)
			}
			l.blockSize.Store(int64(g.BlockSize()))
			l.sampleRate.Store(floatBits(sink.SampleRate()))

			if err := l.eng.Process(); err != nil {
				l.fail(fmt.Errorf("playback: %w", err))
				l.state.Store(int32(Stopped))
				return
			}

			accepted, err := l.writeBlock(sink)
			if err != nil {
				l.fail(fmt.Errorf("%w: %w", ErrSinkError, err))
				l.state.Store(int32(Stopped))
				return
			}

			l.samplesWritten.Add(uint64(accepted))
			seconds := float64(accepted) / float64(sink.OutputChannels()) / sink.SampleRate()
			l.durationWritten.Add(int64(seconds * float64(time.Second)))
		}
	}
}

func (l *Loop) writeBlock(sink AudioSink) (int, error) {
	g := l.eng.Graph()
	blockSize := g.BlockSize()
	channels := sink.OutputChannels()
	outputs := g.Outputs()

	if cap(l.frameBuf) < channels {
		l.frameBuf = make([]float32, channels)
	}
	frame := l.frameBuf[:channels]
	accepted := 0
	for i := 0; i < blockSize; i++ {
		for c := 0; c < channels; c++ {
			var v float32
			if c < len(outputs) {
				v = g.OutputBuffer(outputs[c], 0).GetFloat32(i)
			}
			frame[c] = v
		}
		n, err := sink.Write(frame)
		accepted += n
		if err != nil {
			return accepted, err
		}
	}
	return accepted, nil
}

func (l *Loop) fail(err error) {
	l.runErr = err
	if l.onError != nil {
		l.onError(err)
	}
}

// drainEdits services every edit request currently queued, in order,
// applying each to the Graph and replying before looking at the next one.
func (l *Loop) drainEdits() {
	for {
		select {
		case req := <-l.editCh:
			req.reply <- l.applyEdit(req)
		default:
			return
		}
	}
}

// drainEditsOnExit services remaining queued edits with a failure marker,
// so callers blocked on a reply are never stranded.
func (l *Loop) drainEditsOnExit() {
	for {
		select {
		case req := <-l.editCh:
			req.reply <- editResponse{err: ErrSinkNotStarted}
		default:
			return
		}
	}
}

func (l *Loop) applyEdit(req editRequest) editResponse {
	g := l.eng.Graph()
	switch req.kind {
	case editAddNode:
		id, err := g.AddNode(req.processor)
		return editResponse{node: id, err: err}
	case editRemoveNode:
		err := g.RemoveNode(req.node)
		return editResponse{node: req.node, err: err}
	case editConnect:
		err := g.Connect(req.source, req.sourceOutput, req.target, req.targetInput)
		return editResponse{err: err}
	default:
		return editResponse{err: fmt.Errorf("playback: unknown edit kind %d", req.kind)}
	}
}

func (l *Loop) send(req editRequest) (graph.NodeID, error) {
	if l.State() != Running {
		return graph.NodeID{}, ErrSinkNotStarted
	}
	select {
	case l.editCh <- req:
	case <-l.doneCh:
		return graph.NodeID{}, ErrSinkNotStarted
	}
	select {
	case resp := <-req.reply:
		return resp.node, resp.err
	case <-l.doneCh:
		return graph.NodeID{}, ErrStreamReceiveError
	}
}

// AddNode requests that processor be added to the graph between blocks,
// blocking until the worker confirms it.
func (l *Loop) AddNode(processor proc.Processor) (graph.NodeID, error) {
	return l.send(editRequest{kind: editAddNode, processor: processor, reply: make(chan editResponse, 1)})
}

// RemoveNode requests that id (and its incident edges) be removed between
// blocks, blocking until the worker confirms it.
func (l *Loop) RemoveNode(id graph.NodeID) error {
	_, err := l.send(editRequest{kind: editRemoveNode, node: id, reply: make(chan editResponse, 1)})
	return err
}

// Connect requests a connection between blocks, blocking until the worker
// confirms it.
func (l *Loop) Connect(source graph.NodeID, sourceOutput int, target graph.NodeID, targetInput int) error {
	_, err := l.send(editRequest{
		kind: editConnect, source: source, sourceOutput: sourceOutput,
		target: target, targetInput: targetInput, reply: make(chan editResponse, 1),
	})
	return err
}

// Stop signals the worker to exit, waits for it, and returns ownership of
// the Graph along with any fatal error that ended playback early.
func (l *Loop) Stop() (*graph.Graph, error) {
	if l.State() == Idle {
		l.state.Store(int32(Stopped))
		return l.eng.Graph(), nil
	}
	l.state.CompareAndSwap(int32(Running), int32(Stopping))
	select {
	case l.killCh <- struct{}{}:
	default:
	}
	<-l.doneCh
	return l.eng.Graph(), l.runErr
}

// RunFor spins until duration of audio has been written, then stops the
// loop. It is meant for offline rendering (e.g. against a WAV sink) where
// there is no external clock to wait on.
func (l *Loop) RunFor(duration time.Duration) (*graph.Graph, error) {
	for l.DurationWritten() < duration {
		if l.State() != Running {
			break
		}
		time.Sleep(time.Millisecond)
	}
	return l.Stop()
}

// SamplesWritten returns the monotonically increasing count of samples
// accepted by the sink so far.
func (l *Loop) SamplesWritten() uint64 { return l.samplesWritten.Load() }

// DurationWritten returns the approximate duration of audio written so
// far, derived from SamplesWritten.
func (l *Loop) DurationWritten() time.Duration { return time.Duration(l.durationWritten.Load()) }

// SampleRate returns the sink sample rate most recently observed by the
// worker.
func (l *Loop) SampleRate() float64 { return floatFromBits(l.sampleRate.Load()) }

// BlockSize returns the graph block size most recently observed by the
// worker.
func (l *Loop) BlockSize() int { return int(l.blockSize.Load()) }

func floatBits(f float64) uint64     { return math.Float64bits(f) }
func floatFromBits(b uint64) float64 { return math.Float64frombits(b) }
