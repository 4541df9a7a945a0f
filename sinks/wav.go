package sinks

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Wav writes interleaved frames to a 16-bit PCM WAV file, converting from
// the engine's float32 range of [-1, 1]. If maxDuration is nonzero,
// SamplesNeeded reports zero once that much audio has been written so a
// driving Loop stops on its own, matching an offline render with a fixed
// length.
type Wav struct {
	f   *os.File
	enc *wav.Encoder
	buf *goaudio.IntBuffer

	sampleRate float64
	channels   int
	blockSize  int
	maxSamples int64 // 0 means unbounded
	written    int64
}

// NewWav creates filename and prepares it for streaming PCM output at the
// given sample rate and channel count. maxDuration of zero means the file
// grows until Close (or its driving Loop) stops it.
func NewWav(filename string, sampleRate float64, blockSize, channels int, maxDuration time.Duration) (*Wav, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("sinks: create wav file: %w", err)
	}
	enc := wav.NewEncoder(f, int(sampleRate), 16, channels, 1)

	var maxSamples int64
	if maxDuration > 0 {
		maxSamples = int64(maxDuration.Seconds()*sampleRate) * int64(channels)
	}

	return &Wav{
		f:    f,
		enc:  enc,
		buf: &goaudio.IntBuffer{
			Format: &goaudio.Format{SampleRate: int(sampleRate), NumChannels: channels},
			Data:   make([]int, channels),
		},
		sampleRate: sampleRate,
		channels:   channels,
		blockSize:  blockSize,
		maxSamples: maxSamples,
	}, nil
}

func (w *Wav) SampleRate() float64 { return w.sampleRate }
func (w *Wav) OutputChannels() int { return w.channels }
func (w *Wav) BlockSize() int      { return w.blockSize }

func (w *Wav) SamplesNeeded() int {
	if w.maxSamples == 0 {
		return w.blockSize * w.channels
	}
	remaining := w.maxSamples - w.written
	if remaining < 0 {
		return 0
	}
	if remaining > int64(w.blockSize*w.channels) {
		return w.blockSize * w.channels
	}
	return int(remaining)
}

// Write encodes one interleaved frame as 16-bit PCM and returns the
// number of samples accepted (always len(frame), barring an encoder
// error).
func (w *Wav) Write(frame []float32) (int, error) {
	for i, v := range frame {
		w.buf.Data[i] = floatToPCM16(v)
	}
	w.buf.Data = w.buf.Data[:len(frame)]
	if err := w.enc.Write(w.buf); err != nil {
		return 0, fmt.Errorf("sinks: write wav samples: %w", err)
	}
	w.written += int64(len(frame))
	return len(frame), nil
}

// Close finalizes the WAV header and closes the underlying file. It must
// be called exactly once, after the driving Loop has stopped.
func (w *Wav) Close() error {
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return fmt.Errorf("sinks: finalize wav file: %w", err)
	}
	return w.f.Close()
}

func floatToPCM16(v float32) int {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int(math.Round(float64(v) * 32767))
}

var _ io.Closer = (*Wav)(nil)
