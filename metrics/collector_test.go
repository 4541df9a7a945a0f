package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/arborly/audiograph/builtins"
	"github.com/arborly/audiograph/graph"
	"github.com/arborly/audiograph/metrics"
	"github.com/arborly/audiograph/playback"
	"github.com/arborly/audiograph/sinks"
)

func gaugeValue(t *testing.T, families []*dto.MetricFamily, name string) float64 {
	t.Helper()
	for _, mf := range families {
		if mf.GetName() == name {
			require.Len(t, mf.Metric, 1)
			return mf.Metric[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %q not found", name)
	return 0
}

func TestCollectorReportsIdleLoopByDefault(t *testing.T) {
	g := graph.New(false)
	g.AddNode(builtins.NewConstant(1))
	g.Allocate(48000, 16)
	loop := playback.New(g)

	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(metrics.NewCollector(loop)))

	families, err := registry.Gather()
	require.NoError(t, err)
	require.Equal(t, float64(playback.Idle), gaugeValue(t, families, "audiograph_loop_state"))
}

func TestCollectorTracksProgressAfterPlay(t *testing.T) {
	g := graph.New(false)
	g.AddNode(builtins.NewConstant(1))
	g.Allocate(48000, 16)
	loop := playback.New(g)

	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(metrics.NewCollector(loop)))

	sink := sinks.NewNull(48000, 16, 1)
	loop.Play(sink)
	_, err := loop.RunFor(time.Millisecond)
	require.NoError(t, err)

	families, err := registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	require.Greater(t, gaugeValue(t, families, "audiograph_duration_written_seconds"), float64(0))
}
