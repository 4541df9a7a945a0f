// Package signal defines the runtime-typed value domain that flows across
// graph edges: a small closed set of signal kinds and a type-erased,
// fixed-capacity buffer for each.
package signal

import "fmt"

// Kind identifies a concrete signal value type. Two Types compare
// equal iff they denote the same Kind.
type Kind uint8

const (
	// Float32 carries a single-precision audio sample.
	Float32 Kind = iota
	// Bool carries a boolean control/gate value.
	Bool
	// Int64 carries an integer control value (e.g. a sample counter).
	Int64
	// Message carries a MIDI-style event (see package midiio).
	Message
)

func (k Kind) String() string {
	switch k {
	case Float32:
		return "float32"
	case Bool:
		return "bool"
	case Int64:
		return "int64"
	case Message:
		return "message"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Type is a runtime handle identifying a concrete signal value type. It
// carries a stable Kind and a display name used for diagnostics.
type Type struct {
	kind Kind
	name string
}

// TypeOf returns the canonical Type for a Kind.
func TypeOf(k Kind) Type {
	return Type{kind: k, name: k.String()}
}

// Named returns a Type with the same Kind but a caller-supplied display
// name, useful when a PortSpec wants a domain-specific label ("frequency")
// distinct from the underlying Kind's name.
func (t Type) Named(name string) Type {
	t.name = name
	return t
}

// Kind returns the underlying signal kind.
func (t Type) Kind() Kind { return t.kind }

// Name returns the display name.
func (t Type) Name() string { return t.name }

// Equal reports whether two Types denote the same concrete value type.
// Equality is Kind equality; the display name is purely descriptive.
func (t Type) Equal(other Type) bool { return t.kind == other.kind }

func (t Type) String() string { return t.name }
