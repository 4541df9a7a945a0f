package midiio

import (
	"log/slog"

	"github.com/rakyll/portmidi"

	"github.com/arborly/audiograph/proc"
	"github.com/arborly/audiograph/signal"
)

// PortMIDISource surfaces live MIDI hardware input as Message-kind signal
// values: one event per sample slot it arrived in, signal.Bang() on every
// slot that saw nothing. It has no inputs — it is always a graph root.
//
// Opening the device is deferred to Allocate, so a PortMIDISource can be
// constructed (and wired into a graph) before a real-time sample rate is
// known. If the device cannot be opened, Allocate logs and leaves the
// source silent rather than failing the whole graph's allocation.
type PortMIDISource struct {
	proc.Base
	deviceID portmidi.DeviceID

	stream *portmidi.Stream
	events <-chan portmidi.Event
}

// NewPortMIDISource returns a source reading from the given PortMIDI
// device ID, typically portmidi.DefaultInputDeviceID().
func NewPortMIDISource(deviceID portmidi.DeviceID) *PortMIDISource {
	return &PortMIDISource{deviceID: deviceID}
}

func (s *PortMIDISource) Name() string              { return "portmidi_source" }
func (s *PortMIDISource) InputSpec() []proc.PortSpec { return nil }
func (s *PortMIDISource) OutputSpec() []proc.PortSpec {
	return []proc.PortSpec{{Name: "midi", Type: signal.TypeOf(signal.Message)}}
}

func (s *PortMIDISource) Allocate(sampleRate float64, maxBlockSize int) {
	if s.stream != nil {
		return
	}
	if err := portmidi.Initialize(); err != nil {
		slog.Default().Warn("portmidi: initialize failed, source will stay silent", "err", err)
		return
	}
	stream, err := portmidi.NewInputStream(s.deviceID, 1024)
	if err != nil {
		slog.Default().Warn("portmidi: open input stream failed, source will stay silent",
			"device", s.deviceID, "err", err)
		return
	}
	s.stream = stream
	s.events = stream.Listen()
}

// Close stops the underlying PortMIDI stream, if one was opened.
func (s *PortMIDISource) Close() error {
	if s.stream == nil {
		return nil
	}
	err := s.stream.Close()
	s.stream = nil
	s.events = nil
	return err
}

func (s *PortMIDISource) Process(in proc.Inputs, out proc.Outputs) error {
	dst := out.At(0)
	msgs := dst.Messages()
	start, end := in.Env.Mode.Range(dst.Len())
	for i := start; i < end; i++ {
		msgs[i] = signal.Bang()
		if s.events == nil {
			continue
		}
		select {
		case e := <-s.events:
			msgs[i] = signal.MIDIMsg([]byte{byte(e.Status), byte(e.Data1), byte(e.Data2)})
		default:
		}
	}
	return nil
}
