// Package metrics exposes a playback.Loop's progress as Prometheus
// metrics, read lazily at scrape time from the same atomics the Loop
// itself uses — there is no separate instrumentation path through the
// render hot loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arborly/audiograph/playback"
)

// Collector adapts a *playback.Loop to prometheus.Collector.
type Collector struct {
	loop *playback.Loop

	samplesWritten  *prometheus.Desc
	durationSeconds *prometheus.Desc
	sampleRate      *prometheus.Desc
	blockSize       *prometheus.Desc
	state           *prometheus.Desc
}

// NewCollector returns a Collector over loop. Register it with a
// prometheus.Registerer to expose the loop's state.
func NewCollector(loop *playback.Loop) *Collector {
	return &Collector{
		loop: loop,
		samplesWritten: prometheus.NewDesc(
			"audiograph_samples_written_total",
			"Total samples accepted by the active sink since Play.",
			nil, nil,
		),
		durationSeconds: prometheus.NewDesc(
			"audiograph_duration_written_seconds",
			"Audio duration accepted by the active sink since Play.",
			nil, nil,
		),
		sampleRate: prometheus.NewDesc(
			"audiograph_sample_rate_hertz",
			"Sample rate most recently observed from the active sink.",
			nil, nil,
		),
		blockSize: prometheus.NewDesc(
			"audiograph_block_size_samples",
			"Graph block size most recently observed by the worker.",
			nil, nil,
		),
		state: prometheus.NewDesc(
			"audiograph_loop_state",
			"Current playback.Loop state (0=Idle, 1=Running, 2=Stopping, 3=Stopped).",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.samplesWritten
	ch <- c.durationSeconds
	ch <- c.sampleRate
	ch <- c.blockSize
	ch <- c.state
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.samplesWritten, prometheus.CounterValue, float64(c.loop.SamplesWritten()))
	ch <- prometheus.MustNewConstMetric(c.durationSeconds, prometheus.GaugeValue, c.loop.DurationWritten().Seconds())
	ch <- prometheus.MustNewConstMetric(c.sampleRate, prometheus.GaugeValue, c.loop.SampleRate())
	ch <- prometheus.MustNewConstMetric(c.blockSize, prometheus.GaugeValue, float64(c.loop.BlockSize()))
	ch <- prometheus.MustNewConstMetric(c.state, prometheus.GaugeValue, float64(c.loop.State()))
}

var _ prometheus.Collector = (*Collector)(nil)
