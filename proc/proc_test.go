package proc_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arborly/audiograph/proc"
)

func TestProcessModeSampleAndBlock(t *testing.T) {
	idx, ok := proc.Block.IsSample()
	require.False(t, ok)
	require.Zero(t, idx)

	idx, ok = proc.Sample(7).IsSample()
	require.True(t, ok)
	require.Equal(t, 7, idx)
	require.Equal(t, "Sample(7)", proc.Sample(7).String())
	require.Equal(t, "Block", proc.Block.String())
}

func TestProcessModeRangeBlockVsSample(t *testing.T) {
	start, end := proc.Block.Range(8)
	require.Equal(t, 0, start)
	require.Equal(t, 8, end)

	start, end = proc.Sample(3).Range(8)
	require.Equal(t, 3, start)
	require.Equal(t, 4, end)
}

func TestErrorWithNodeWrapsOnce(t *testing.T) {
	base := errors.New("boom")
	wrapped := proc.WithNode("gain1", base)
	require.EqualError(t, wrapped, "gain1: boom")
	require.ErrorIs(t, wrapped, base)

	rewrapped := proc.WithNode("gain2", wrapped)
	require.EqualError(t, rewrapped, "gain2: boom")
}

func TestWithNodeNilIsNil(t *testing.T) {
	require.NoError(t, proc.WithNode("x", nil))
}
