package signal

import "fmt"

// MaxBufferLength bounds a single Buffer's length. The engine never needs
// more than one block's worth of samples in a buffer at once; this exists
// to make a runaway block-size request fail loudly instead of silently
// exhausting memory.
const MaxBufferLength = 1 << 20

// Buffer is a contiguous, fixed-element-type sequence of signal values: a
// type-erased buffer that preserves its Type at runtime without per-element
// virtual dispatch. It is represented as a tagged union of one slice per
// Kind (see spec's guidance for tagged-union target languages) rather than
// as an interface{} slice, so the hot path never boxes a sample.
//
// Invariants: every element is initialized; Len is fixed between Resize
// calls; Type never changes after construction.
type Buffer struct {
	typ    Type
	length int
	floats []float32
	bools  []bool
	ints   []int64
	msgs   []Message
}

// NewBuffer constructs a Buffer of the given Type with length zero-valued
// elements, backed by storage pre-grown to maxLen so that later Resize
// calls (up to maxLen) never allocate.
func NewBuffer(typ Type, length, maxLen int) *Buffer {
	if length > maxLen {
		maxLen = length
	}
	if maxLen > MaxBufferLength {
		panic(fmt.Sprintf("signal: buffer length %d exceeds MaxBufferLength", maxLen))
	}
	b := &Buffer{typ: typ, length: length}
	switch typ.Kind() {
	case Float32:
		b.floats = make([]float32, length, maxLen)
	case Bool:
		b.bools = make([]bool, length, maxLen)
	case Int64:
		b.ints = make([]int64, length, maxLen)
	case Message:
		b.msgs = make([]Message, length, maxLen)
	default:
		panic(fmt.Sprintf("signal: unknown kind %v", typ.Kind()))
	}
	return b
}

// Type returns the buffer's signal type.
func (b *Buffer) Type() Type { return b.typ }

// Len returns the buffer's current length.
func (b *Buffer) Len() int { return b.length }

// Cap returns the buffer's backing capacity, the largest length Resize can
// reach without allocating.
func (b *Buffer) Cap() int {
	switch b.typ.Kind() {
	case Float32:
		return cap(b.floats)
	case Bool:
		return cap(b.bools)
	case Int64:
		return cap(b.ints)
	case Message:
		return cap(b.msgs)
	default:
		return 0
	}
}

// Resize logically truncates or extends the buffer to n elements. It must
// not allocate: n must not exceed Cap(). Newly exposed elements (when
// growing back up after a shrink) retain whatever zero/prior value they
// held; callers that depend on a clean slate should overwrite explicitly.
func (b *Buffer) Resize(n int) {
	if n < 0 || n > b.Cap() {
		panic(fmt.Sprintf("signal: Resize(%d) exceeds capacity %d", n, b.Cap()))
	}
	b.length = n
	switch b.typ.Kind() {
	case Float32:
		b.floats = b.floats[:n]
	case Bool:
		b.bools = b.bools[:n]
	case Int64:
		b.ints = b.ints[:n]
	case Message:
		b.msgs = b.msgs[:n]
	}
}

func assertKind(t Type, want Kind, op string) {
	if t.Kind() != want {
		panic(fmt.Sprintf("signal: %s: buffer holds %v, not %v", op, t.Kind(), want))
	}
}

// Float32s returns the buffer's backing slice as float32s. It panics if the
// buffer's Type is not Float32.
func (b *Buffer) Float32s() []float32 {
	assertKind(b.typ, Float32, "Float32s")
	return b.floats
}

// Bools returns the buffer's backing slice as bools. It panics if the
// buffer's Type is not Bool.
func (b *Buffer) Bools() []bool {
	assertKind(b.typ, Bool, "Bools")
	return b.bools
}

// Int64s returns the buffer's backing slice as int64s. It panics if the
// buffer's Type is not Int64.
func (b *Buffer) Int64s() []int64 {
	assertKind(b.typ, Int64, "Int64s")
	return b.ints
}

// Messages returns the buffer's backing slice as Messages. It panics if the
// buffer's Type is not Message.
func (b *Buffer) Messages() []Message {
	assertKind(b.typ, Message, "Messages")
	return b.msgs
}

// GetFloat32 returns the element at index, bounds-checked.
func (b *Buffer) GetFloat32(index int) float32 { return b.Float32s()[index] }

// SetFloat32 sets the element at index, bounds-checked.
func (b *Buffer) SetFloat32(index int, v float32) { b.Float32s()[index] = v }

// GetBool returns the element at index, bounds-checked.
func (b *Buffer) GetBool(index int) bool { return b.Bools()[index] }

// SetBool sets the element at index, bounds-checked.
func (b *Buffer) SetBool(index int, v bool) { b.Bools()[index] = v }

// GetInt64 returns the element at index, bounds-checked.
func (b *Buffer) GetInt64(index int) int64 { return b.Int64s()[index] }

// SetInt64 sets the element at index, bounds-checked.
func (b *Buffer) SetInt64(index int, v int64) { b.Ints()[index] = v }

// Ints is an alias of Int64s kept short for call sites that set values.
func (b *Buffer) Ints() []int64 { return b.Int64s() }

// GetMessage returns the element at index, bounds-checked.
func (b *Buffer) GetMessage(index int) Message { return b.Messages()[index] }

// SetMessage sets the element at index, bounds-checked.
func (b *Buffer) SetMessage(index int, v Message) { b.Messages()[index] = v }

// CloneFrom copies other's contents into b. Both buffers must share a Type
// and a Len; this is semantically a memcpy for the populated slice.
func (b *Buffer) CloneFrom(other *Buffer) {
	if !b.typ.Equal(other.typ) {
		panic(fmt.Sprintf("signal: CloneFrom: type mismatch %v vs %v", b.typ, other.typ))
	}
	if b.length != other.length {
		panic(fmt.Sprintf("signal: CloneFrom: length mismatch %d vs %d", b.length, other.length))
	}
	switch b.typ.Kind() {
	case Float32:
		copy(b.floats, other.floats)
	case Bool:
		copy(b.bools, other.bools)
	case Int64:
		copy(b.ints, other.ints)
	case Message:
		copy(b.msgs, other.msgs)
	}
}
