// Package midiio bridges MIDI hardware and wire bytes to the graph's
// Message-kind signal values, built on gitlab.com/gomidi/midi/v2 for
// encoding/decoding and github.com/rakyll/portmidi for hardware input.
package midiio

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/arborly/audiograph/signal"
)

// NoteOn returns a signal.Message carrying a raw MIDI note-on event.
func NoteOn(channel, key, velocity uint8) signal.Message {
	return signal.MIDIMsg(midi.NoteOn(channel, key, velocity))
}

// NoteOff returns a signal.Message carrying a raw MIDI note-off event.
func NoteOff(channel, key uint8) signal.Message {
	return signal.MIDIMsg(midi.NoteOff(channel, key))
}

// ControlChange returns a signal.Message carrying a raw MIDI CC event.
func ControlChange(channel, controller, value uint8) signal.Message {
	return signal.MIDIMsg(midi.ControlChange(channel, controller, value))
}

// Decode reports the note, velocity, and on/off-ness of msg if it carries
// a note-on or note-off event, for callers that need more than the simple
// gate built into package builtins.
func Decode(msg signal.Message) (channel, key, velocity uint8, on, ok bool) {
	if msg.Kind != signal.MessageMIDI {
		return 0, 0, 0, false, false
	}
	m := midi.Message(msg.MIDI)
	if m.GetNoteOn(&channel, &key, &velocity) {
		return channel, key, velocity, velocity > 0, true
	}
	if m.GetNoteOff(&channel, &key, &velocity) {
		return channel, key, velocity, false, true
	}
	return 0, 0, 0, false, false
}
