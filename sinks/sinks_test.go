package sinks_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arborly/audiograph/sinks"
)

func TestNullAlwaysWantsOneBlock(t *testing.T) {
	n := sinks.NewNull(48000, 64, 2)
	require.Equal(t, 128, n.SamplesNeeded())
	accepted, err := n.Write([]float32{0.1, 0.2})
	require.NoError(t, err)
	require.Equal(t, 2, accepted)
	require.Equal(t, 128, n.SamplesNeeded(), "Null never reduces its demand, it just discards")
}

func TestWavUnboundedWritesFramesToFile(t *testing.T) {
	path := t.TempDir() + "/out.wav"
	w, err := sinks.NewWav(path, 48000, 4, 1, 0)
	require.NoError(t, err)

	require.Equal(t, 4, w.SamplesNeeded())
	for i := 0; i < 4; i++ {
		n, err := w.Write([]float32{0.5})
		require.NoError(t, err)
		require.Equal(t, 1, n)
	}
	require.NoError(t, w.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestWavSamplesNeededShrinksToMaxDuration(t *testing.T) {
	path := t.TempDir() + "/bounded.wav"
	// One second at 10 samples/sec, mono: exactly 10 samples total.
	w, err := sinks.NewWav(path, 10, 4, 1, time.Second)
	require.NoError(t, err)
	defer w.Close()

	require.Equal(t, 4, w.SamplesNeeded())
	for i := 0; i < 8; i++ {
		_, err := w.Write([]float32{0})
		require.NoError(t, err)
	}
	require.Equal(t, 2, w.SamplesNeeded(), "8 of 10 total samples written, 2 remain")

	for i := 0; i < 2; i++ {
		_, err := w.Write([]float32{0})
		require.NoError(t, err)
	}
	require.Equal(t, 0, w.SamplesNeeded(), "sink is fully drained at its max duration")
}
