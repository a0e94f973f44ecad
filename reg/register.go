package reg

import (
	"fmt"

	"omibyte.io/stm32hal/mmio"
)

// Register is a typed handle on one memory-mapped register. It holds no
// register state; every operation goes to the bus.
type Register[T any] struct {
	name   string
	bus    mmio.Bus
	base   uintptr
	offset uintptr
	reset  uint32
	table  *Table[T]
}

// Option configures a register declaration.
type Option func(*options)

type options struct {
	reset uint32
}

// ResetValue sets the value the register holds after reset. The default is 0.
func ResetValue(v uint32) Option {
	return func(o *options) { o.reset = v }
}

// Declare binds table t to the register at base+offset on bus. It reports
// every problem recorded while the table's fields were declared.
func Declare[T any](name string, bus mmio.Bus, base, offset uintptr, t *Table[T], opts ...Option) (*Register[T], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := t.Err(); err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	addr := base + offset
	if !t.width.Aligned(addr) {
		return nil, fmt.Errorf("register %s: %w: %#x for %s access", name, ErrAlign, addr, t.width)
	}
	if o.reset&^t.width.Mask() != 0 {
		return nil, fmt.Errorf("register %s: %w: reset value %#x", name, ErrWidth, o.reset)
	}

	return &Register[T]{
		name:   name,
		bus:    bus,
		base:   base,
		offset: offset,
		reset:  o.reset,
		table:  t,
	}, nil
}

// MustDeclare is like Declare but panics on error. It is meant for package
// level register variables.
func MustDeclare[T any](name string, bus mmio.Bus, base, offset uintptr, t *Table[T], opts ...Option) *Register[T] {
	r, err := Declare(name, bus, base, offset, t, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Register[T]) Name() string       { return r.name }
func (r *Register[T]) Addr() uintptr      { return r.base + r.offset }
func (r *Register[T]) Base() uintptr      { return r.base }
func (r *Register[T]) Offset() uintptr    { return r.offset }
func (r *Register[T]) Width() mmio.Width  { return r.table.width }
func (r *Register[T]) Table() *Table[T]   { return r.table }
func (r *Register[T]) ResetValue() uint32 { return r.reset }

// Cell returns the memory cell the register designates.
func (r *Register[T]) Cell() mmio.Cell {
	return mmio.At(r.bus, r.base+r.offset, r.table.width)
}

// On returns a copy of the register bound to bus.
func (r *Register[T]) On(bus mmio.Bus) *Register[T] {
	c := *r
	c.bus = bus
	return &c
}

// Load reads the raw register word.
func (r *Register[T]) Load() uint32 { return r.Cell().Load() }

// Store writes a raw register word.
func (r *Register[T]) Store(v uint32) { r.Cell().Store(v) }

// Reset stores the reset value.
func (r *Register[T]) Reset() { r.Cell().Store(r.reset) }

// Default returns the reset value as a snapshot, for decoding per-field
// defaults with a descriptor's Get.
func (r *Register[T]) Default() Snapshot[T] {
	return Snapshot[T]{word: r.reset}
}

// Read loads the register once. The fields document what the caller is about
// to decode and must be readable; decode with each descriptor's Get.
func (r *Register[T]) Read(fields ...Readable[T]) Snapshot[T] {
	return Snapshot[T]{word: r.Cell().Load()}
}

// ReadMode selects how ReadValues reports each field.
type ReadMode uint8

const (
	// ValueOnly shifts every field down to bit 0.
	ValueOnly ReadMode = iota
	// WithPosition leaves every field in place.
	WithPosition
)

// ReadValues loads the register once and returns the requested fields in
// request order.
func (r *Register[T]) ReadValues(mode ReadMode, fields ...Readable[T]) []uint32 {
	word := r.Cell().Load()
	out := make([]uint32, len(fields))
	for i, f := range fields {
		b := f.Bits()
		if mode == WithPosition {
			out[i] = word & b.Mask()
		} else {
			out[i] = b.Decode(word)
		}
	}
	return out
}

// Write stores vals in one transaction. The store is direct when any value
// belongs to a write-only or read-set field, when the values cover every
// writable bit of the register, or when every writable bit of the register is
// write-1-to-clear. Otherwise the register is loaded once and the untouched
// fields are preserved, except write-1-to-clear bits, which are written back
// as 0.
func (r *Register[T]) Write(vals ...Val[T]) {
	if len(vals) == 0 {
		return
	}

	var mask, bits uint32
	direct := false
	for _, v := range vals {
		m := v.bits.Mask()
		mask |= m
		bits = bits&^m | v.raw
		if v.bits.Mode.Direct() {
			direct = true
		}
	}

	cell := r.Cell()
	w1cOnly := r.table.writable&^r.table.w1c == 0
	if direct || w1cOnly || mask&r.table.writable == r.table.writable {
		cell.Store(bits)
		return
	}
	cur := cell.Load()
	cell.Store(cur&^mask&^r.table.w1c | bits)
}

// WriteGroup writes every value of g in one transaction.
func (r *Register[T]) WriteGroup(g Group[T]) {
	r.Write(g.vals...)
}

// Set writes 1 to every flag.
func (r *Register[T]) Set(flags ...Settable[T]) {
	vals := make([]Val[T], len(flags))
	for i, f := range flags {
		b := f.Bits()
		vals[i] = Val[T]{bits: b, raw: b.Mask()}
	}
	r.Write(vals...)
}

// Clear writes 0 to every flag.
func (r *Register[T]) Clear(flags ...Clearable[T]) {
	vals := make([]Val[T], len(flags))
	for i, f := range flags {
		vals[i] = Val[T]{bits: f.Bits()}
	}
	r.Write(vals...)
}

// Capture loads the register once and returns the current value of every
// field as a group, ready to be transformed and written back.
func (r *Register[T]) Capture(fields ...Modifiable[T]) Group[T] {
	word := r.Cell().Load()
	vals := make([]Val[T], len(fields))
	for i, f := range fields {
		b := f.Bits()
		vals[i] = Val[T]{bits: b, raw: word & b.Mask()}
	}
	return Group[T]{vals: vals}
}

func (r *Register[T]) String() string {
	return fmt.Sprintf("%s@%#08x", r.name, r.Addr())
}

// Get loads r once and decodes f.
func Get[T, V any](r *Register[T], f Decoder[T, V]) V {
	return f.Get(r.Read(f))
}

// Get2 loads r once and decodes two fields.
func Get2[T, A, B any](r *Register[T], fa Decoder[T, A], fb Decoder[T, B]) (A, B) {
	s := r.Read(fa, fb)
	return fa.Get(s), fb.Get(s)
}

// Get3 loads r once and decodes three fields.
func Get3[T, A, B, C any](r *Register[T], fa Decoder[T, A], fb Decoder[T, B], fc Decoder[T, C]) (A, B, C) {
	s := r.Read(fa, fb, fc)
	return fa.Get(s), fb.Get(s), fc.Get(s)
}
