// Package sinks collects playback.AudioSink implementations: a discard
// sink for testing and benchmarking, a WAV file writer for offline
// rendering, and a PortAudio stream for real-time output.
package sinks

// Null discards every frame written to it while still reporting demand
// like a real output, so a graph can be driven without a sound card or a
// file — useful in tests and benchmarks.
type Null struct {
	sampleRate float64
	blockSize  int
	channels   int
}

// NewNull returns a Null sink that always wants exactly one block's worth
// of samples at a time.
func NewNull(sampleRate float64, blockSize, channels int) *Null {
	return &Null{sampleRate: sampleRate, blockSize: blockSize, channels: channels}
}

func (n *Null) SampleRate() float64   { return n.sampleRate }
func (n *Null) OutputChannels() int   { return n.channels }
func (n *Null) BlockSize() int        { return n.blockSize }
func (n *Null) SamplesNeeded() int    { return n.blockSize * n.channels }
func (n *Null) Write(frame []float32) (int, error) {
	return len(frame), nil
}
