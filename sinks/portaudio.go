package sinks

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudio drives a real output device through the PortAudio host API.
// The stream's own callback runs on a dedicated real-time thread and pulls
// from a small ring buffer filled by Write; Write itself runs on the
// Loop's worker goroutine and never touches the device directly.
type PortAudio struct {
	stream *portaudio.Stream

	sampleRate float64
	channels   int
	blockSize  int

	mu     sync.Mutex
	ring   []float32
	read   int
	filled int
}

// NewPortAudio opens the host's default output device at sampleRate with
// channels output channels, buffering ringBlocks blocks of blockSize
// frames between the worker goroutine and the real-time callback.
func NewPortAudio(sampleRate float64, blockSize, channels, ringBlocks int) (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("sinks: portaudio init: %w", err)
	}

	device, err := portaudio.DefaultOutputDevice()
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("sinks: default output device: %w", err)
	}

	p := &PortAudio{
		sampleRate: sampleRate,
		channels:   channels,
		blockSize:  blockSize,
		ring:       make([]float32, ringBlocks*blockSize*channels),
	}

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Channels: channels,
			Device:   device,
			Latency:  device.DefaultLowOutputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: blockSize,
	}

	stream, err := portaudio.OpenStream(params, p.fillFromRing)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("sinks: open output stream: %w", err)
	}
	p.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("sinks: start output stream: %w", err)
	}

	return p, nil
}

// fillFromRing is the PortAudio callback: it runs on the host's real-time
// thread and must not allocate or block.
func (p *PortAudio) fillFromRing(out []float32) {
	p.mu.Lock()
	n := len(out)
	if n > p.filled {
		n = p.filled
	}
	cap := len(p.ring)
	for i := 0; i < n; i++ {
		out[i] = p.ring[(p.read+i)%cap]
	}
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
	p.read = (p.read + n) % cap
	p.filled -= n
	p.mu.Unlock()
}

func (p *PortAudio) SampleRate() float64 { return p.sampleRate }
func (p *PortAudio) OutputChannels() int { return p.channels }
func (p *PortAudio) BlockSize() int      { return p.blockSize }

func (p *PortAudio) SamplesNeeded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ring) - p.filled
}

// Write appends one interleaved frame to the ring buffer, dropping it (and
// reporting 0 accepted) if the ring has no room — backpressure from a
// slow-draining device should never block the worker goroutine.
func (p *PortAudio) Write(frame []float32) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cap := len(p.ring)
	if p.filled+len(frame) > cap {
		return 0, nil
	}
	write := (p.read + p.filled) % cap
	for i, v := range frame {
		p.ring[(write+i)%cap] = v
	}
	p.filled += len(frame)
	return len(frame), nil
}

// Close stops and closes the stream and terminates the PortAudio host.
func (p *PortAudio) Close() error {
	if err := p.stream.Stop(); err != nil {
		return fmt.Errorf("sinks: stop output stream: %w", err)
	}
	if err := p.stream.Close(); err != nil {
		return fmt.Errorf("sinks: close output stream: %w", err)
	}
	return portaudio.Terminate()
}
