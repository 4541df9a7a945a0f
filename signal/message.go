package signal

import "fmt"

// MessageKind distinguishes the payload carried by a Message value.
type MessageKind uint8

const (
	// MessageBang is a content-free trigger ("do whatever it is you do").
	MessageBang MessageKind = iota
	MessageBool
	MessageInt
	MessageFloat
	MessageString
	// MessageMIDI carries raw MIDI bytes; see package midiio for a typed
	// wrapper built on top of it.
	MessageMIDI
)

// Message is the Message-kind signal value. It is a small closed variant
// rather than an interface so that a slice of Message never escapes to the
// heap element-by-element.
type Message struct {
	Kind   MessageKind
	Bool   bool
	Int    int64
	Float  float32
	String string
	MIDI   []byte
}

// Bang returns a content-free trigger message.
func Bang() Message { return Message{Kind: MessageBang} }

// BoolMsg wraps a boolean payload.
func BoolMsg(b bool) Message { return Message{Kind: MessageBool, Bool: b} }

// IntMsg wraps an integer payload.
func IntMsg(i int64) Message { return Message{Kind: MessageInt, Int: i} }

// FloatMsg wraps a float payload.
func FloatMsg(f float32) Message { return Message{Kind: MessageFloat, Float: f} }

// MIDIMsg wraps raw MIDI bytes.
func MIDIMsg(raw []byte) Message { return Message{Kind: MessageMIDI, MIDI: raw} }

// SameKind reports whether two messages carry the same payload kind.
func (m Message) SameKind(other Message) bool { return m.Kind == other.Kind }

func (m Message) String() string {
	switch m.Kind {
	case MessageBang:
		return "bang"
	case MessageBool:
		return fmt.Sprintf("%v", m.Bool)
	case MessageInt:
		return fmt.Sprintf("%d", m.Int)
	case MessageFloat:
		return fmt.Sprintf("%g", m.Float)
	case MessageString:
		return m.String
	case MessageMIDI:
		return fmt.Sprintf("MIDI(% X)", m.MIDI)
	default:
		return "unknown"
	}
}
