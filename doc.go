// Package audiograph is the root of a directed-graph audio engine: nodes
// (package proc) connected by typed edges (package graph), scheduled into
// block- and sample-granularity execution (package engine), and driven
// live from a pull-based sink (package playback). Packages signal,
// builtins, sinks, midiio, metrics, and config supply the concrete
// buffer representation, reference processors, output backends, MIDI
// bridging, observability, and settings loading respectively.
package audiograph
