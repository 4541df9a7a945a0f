package playback

// AudioSink is the pull interface the Loop drives: it reports how much
// more audio it wants and accepts frames one at a time. Concrete sinks
// (a sound card, a WAV writer, a /dev/null discard) live in package
// sinks; AudioSink is the only contract between them and the Loop.
type AudioSink interface {
	// SampleRate returns the sink's current sample rate.
	SampleRate() float64

	// OutputChannels returns the number of interleaved channels the sink
	// expects per frame.
	OutputChannels() int

	// BlockSize returns the sink's preferred block size. It may change
	// between calls; the Loop adapts the graph to match.
	BlockSize() int

	// SamplesNeeded reports how many more samples the sink wants right
	// now, counted across all channels (one frame of N channels is N
	// samples). Zero or negative means the sink is satisfied for the
	// moment.
	SamplesNeeded() int

	// Write pushes one interleaved frame (OutputChannels() values) to the
	// sink and returns the number of samples actually accepted, or an
	// error.
	Write(frame []float32) (int, error)
}
