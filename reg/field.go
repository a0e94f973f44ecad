package reg

import "math/bits"

// Field is any field descriptor of the register tagged T.
type Field[T any] interface {
	Bits() Bits
	tag(T)
}

// Readable is a field descriptor of T whose value may be read.
type Readable[T any] interface {
	Field[T]
	read(T)
}

// Settable is a single-bit descriptor of T that may be written with 1.
type Settable[T any] interface {
	Field[T]
	set(T)
}

// Clearable is a single-bit descriptor of T that may be written with 0.
type Clearable[T any] interface {
	Field[T]
	clear(T)
}

// Modifiable is a descriptor of T whose read value may be written back.
type Modifiable[T any] interface {
	Readable[T]
	modify(T)
}

// Decoder is a readable descriptor of T yielding values of type V.
type Decoder[T any, V any] interface {
	Readable[T]
	Get(Snapshot[T]) V
}

type field[T any] struct {
	bits Bits
}

func (f field[T]) Bits() Bits     { return f.bits }
func (f field[T]) Mask() uint32   { return f.bits.Mask() }
func (f field[T]) String() string { return f.bits.String() }
func (field[T]) tag(T)            {}

func (f field[T]) val(v uint32) Val[T] {
	return Val[T]{bits: f.bits, raw: f.bits.Encode(v)}
}

func (f field[T]) opaque(g Getter) Val[T] {
	return Val[T]{bits: f.bits, raw: f.bits.Encode(g.Get()), opaque: true}
}

func (f field[T]) flag(on bool) Val[T] {
	if on {
		return Val[T]{bits: f.bits, raw: f.bits.Mask()}
	}
	return Val[T]{bits: f.bits}
}

// RO is a read-only field holding values of type V.
type RO[T any, V Value] struct{ field[T] }

func (f RO[T, V]) Get(s Snapshot[T]) V { return V(f.bits.Decode(s.word)) }
func (RO[T, V]) read(T)                {}

// WO is a write-only field.
type WO[T any, V Value] struct{ field[T] }

func (f WO[T, V]) To(v V) Val[T]         { return f.val(uint32(v)) }
func (f WO[T, V]) From(g Getter) Val[T] { return f.opaque(g) }

// RW is a read-write field.
type RW[T any, V Value] struct{ field[T] }

func (f RW[T, V]) Get(s Snapshot[T]) V   { return V(f.bits.Decode(s.word)) }
func (f RW[T, V]) To(v V) Val[T]         { return f.val(uint32(v)) }
func (f RW[T, V]) From(g Getter) Val[T] { return f.opaque(g) }
func (RW[T, V]) read(T)                  {}
func (RW[T, V]) modify(T)                {}

// RS is a field the hardware sets. Software observes it and may set it
// explicitly; writes never read back first.
type RS[T any, V Value] struct{ field[T] }

func (f RS[T, V]) Get(s Snapshot[T]) V { return V(f.bits.Decode(s.word)) }
func (f RS[T, V]) To(v V) Val[T]       { return f.val(uint32(v)) }
func (RS[T, V]) read(T)                {}

// RC1 is a status field cleared by writing 1 to it. Writing 0 has no effect.
type RC1[T any, V Value] struct{ field[T] }

func (f RC1[T, V]) Get(s Snapshot[T]) V { return V(f.bits.Decode(s.word)) }
func (f RC1[T, V]) To(v V) Val[T]       { return f.val(uint32(v)) }
func (RC1[T, V]) read(T)                {}

// ROFlag is a read-only single-bit field.
type ROFlag[T any] struct{ field[T] }

func (f ROFlag[T]) Get(s Snapshot[T]) bool { return s.word&f.bits.Mask() != 0 }
func (ROFlag[T]) read(T)                   {}

// WOFlag is a write-only single-bit field.
type WOFlag[T any] struct{ field[T] }

func (f WOFlag[T]) To(on bool) Val[T] { return f.flag(on) }
func (WOFlag[T]) set(T)               {}
func (WOFlag[T]) clear(T)             {}

// RWFlag is a read-write single-bit field.
type RWFlag[T any] struct{ field[T] }

func (f RWFlag[T]) Get(s Snapshot[T]) bool { return s.word&f.bits.Mask() != 0 }
func (f RWFlag[T]) To(on bool) Val[T]      { return f.flag(on) }
func (RWFlag[T]) read(T)                   {}
func (RWFlag[T]) set(T)                    {}
func (RWFlag[T]) clear(T)                  {}
func (RWFlag[T]) modify(T)                 {}

// RSFlag is a single bit set by hardware or explicitly by software.
type RSFlag[T any] struct{ field[T] }

func (f RSFlag[T]) Get(s Snapshot[T]) bool { return s.word&f.bits.Mask() != 0 }
func (RSFlag[T]) read(T)                   {}
func (RSFlag[T]) set(T)                    {}

// RC1Flag is a status bit cleared by writing 1. Set clears it.
type RC1Flag[T any] struct{ field[T] }

func (f RC1Flag[T]) Get(s Snapshot[T]) bool { return s.word&f.bits.Mask() != 0 }
func (RC1Flag[T]) read(T)                   {}
func (RC1Flag[T]) set(T)                    {}

// FieldOption adjusts the declaration of a single field.
type FieldOption uint8

const (
	// Alias allows the field to share bits with fields declared before it,
	// for registers exposing one status bit under several names.
	Alias FieldOption = 1 << iota
)

func declare[T any](t *Table[T], name string, pos Pos, n uint8, mode Mode, valueBits int, opts []FieldOption) field[T] {
	b := Bits{Name: name, Pos: pos, Len: n, Mode: mode}
	alias := false
	for _, o := range opts {
		if o&Alias != 0 {
			alias = true
		}
	}
	t.add(b, valueBits, alias)
	return field[T]{bits: b}
}

func sizeOf[V Value]() int {
	return bits.Len64(uint64(^V(0)))
}

// NewRO declares a read-only field of n bits at pos.
func NewRO[V Value, T any](t *Table[T], name string, pos Pos, n uint8, opts ...FieldOption) RO[T, V] {
	return RO[T, V]{declare(t, name, pos, n, ReadOnly, sizeOf[V](), opts)}
}

// NewWO declares a write-only field of n bits at pos.
func NewWO[V Value, T any](t *Table[T], name string, pos Pos, n uint8, opts ...FieldOption) WO[T, V] {
	return WO[T, V]{declare(t, name, pos, n, WriteOnly, sizeOf[V](), opts)}
}

// NewRW declares a read-write field of n bits at pos.
func NewRW[V Value, T any](t *Table[T], name string, pos Pos, n uint8, opts ...FieldOption) RW[T, V] {
	return RW[T, V]{declare(t, name, pos, n, ReadWrite, sizeOf[V](), opts)}
}

// NewRS declares a read-set field of n bits at pos.
func NewRS[V Value, T any](t *Table[T], name string, pos Pos, n uint8, opts ...FieldOption) RS[T, V] {
	return RS[T, V]{declare(t, name, pos, n, ReadSet, sizeOf[V](), opts)}
}

// NewRC1 declares a write-1-to-clear field of n bits at pos.
func NewRC1[V Value, T any](t *Table[T], name string, pos Pos, n uint8, opts ...FieldOption) RC1[T, V] {
	return RC1[T, V]{declare(t, name, pos, n, ReadClearOnWrite1, sizeOf[V](), opts)}
}

func NewROFlag[T any](t *Table[T], name string, pos Pos, opts ...FieldOption) ROFlag[T] {
	return ROFlag[T]{declare(t, name, pos, 1, ReadOnly, 1, opts)}
}

func NewWOFlag[T any](t *Table[T], name string, pos Pos, opts ...FieldOption) WOFlag[T] {
	return WOFlag[T]{declare(t, name, pos, 1, WriteOnly, 1, opts)}
}

func NewRWFlag[T any](t *Table[T], name string, pos Pos, opts ...FieldOption) RWFlag[T] {
	return RWFlag[T]{declare(t, name, pos, 1, ReadWrite, 1, opts)}
}

func NewRSFlag[T any](t *Table[T], name string, pos Pos, opts ...FieldOption) RSFlag[T] {
	return RSFlag[T]{declare(t, name, pos, 1, ReadSet, 1, opts)}
}

func NewRC1Flag[T any](t *Table[T], name string, pos Pos, opts ...FieldOption) RC1Flag[T] {
	return RC1Flag[T]{declare(t, name, pos, 1, ReadClearOnWrite1, 1, opts)}
}
