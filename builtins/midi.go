package builtins

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/arborly/audiograph/proc"
	"github.com/arborly/audiograph/signal"
)

// MIDIGate turns a stream of Message-kind signals carrying raw MIDI bytes
// into a Bool gate: true from a note-on with nonzero velocity until the
// next note-off (or a zero-velocity note-on, its common alias). Channel
// and key are not compared: any note-off closes the gate, and a note-on
// for a second key keeps it open.
type MIDIGate struct {
	proc.Base
	gate bool
}

func (g *MIDIGate) Name() string { return "midi_gate" }
func (g *MIDIGate) InputSpec() []proc.PortSpec {
	return []proc.PortSpec{{Name: "midi", Type: signal.TypeOf(signal.Message)}}
}
func (g *MIDIGate) OutputSpec() []proc.PortSpec {
	return []proc.PortSpec{{Name: "gate", Type: signal.TypeOf(signal.Bool)}}
}

func (g *MIDIGate) Process(in proc.Inputs, out proc.Outputs) error {
	src := in.At(0)
	dst := out.At(0)
	start, end := in.Env.Mode.Range(dst.Len())
	for i := start; i < end; i++ {
		if src != nil {
			msg := src.GetMessage(i)
			if msg.Kind == signal.MessageMIDI {
				g.applyMIDI(msg.MIDI)
			}
		}
		dst.SetBool(i, g.gate)
	}
	return nil
}

func (g *MIDIGate) applyMIDI(raw []byte) {
	m := midi.Message(raw)
	var channel, key, velocity uint8
	switch {
	case m.GetNoteOn(&channel, &key, &velocity):
		g.gate = velocity > 0
	case m.GetNoteOff(&channel, &key, &velocity):
		g.gate = false
	}
}
