package reg

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"omibyte.io/stm32hal/mmio"
)

// Table is the ordered field list of the register tagged T. Declaration
// problems are collected rather than returned so that descriptors can be
// declared as package variables; they surface when the table is bound to a
// register by Declare.
type Table[T any] struct {
	width    mmio.Width
	fields   []Bits
	used     uint32
	writable uint32
	w1c      uint32
	errs     []error
}

// NewTable returns an empty table for registers of the given access width.
func NewTable[T any](w mmio.Width) *Table[T] {
	t := &Table[T]{width: w}
	if !w.Valid() {
		t.errs = append(t.errs, fmt.Errorf("%w: %s", mmio.ErrWidth, w))
	}
	return t
}

func (t *Table[T]) add(b Bits, valueBits int, alias bool) {
	switch {
	case b.Len == 0:
		t.errs = append(t.errs, fmt.Errorf("%s: %w", b.Name, ErrEmpty))
		return
	case b.End() > int(t.width):
		t.errs = append(t.errs, fmt.Errorf("%s: %w: bits %d..%d in a %d-bit register", b.Name, ErrWidth, b.Pos, b.End()-1, t.width))
		return
	case valueBits < int(b.Len):
		t.errs = append(t.errs, fmt.Errorf("%s: %w: %d-bit value for %d-bit field", b.Name, ErrValueTooNarrow, valueBits, b.Len))
	}
	if slices.IndexFunc(t.fields, func(f Bits) bool { return f.Name == b.Name }) >= 0 {
		t.errs = append(t.errs, fmt.Errorf("%w: %s", ErrDuplicate, b.Name))
	}
	if m := b.Mask(); t.used&m != 0 && !alias {
		i := slices.IndexFunc(t.fields, func(f Bits) bool { return f.Mask()&m != 0 })
		t.errs = append(t.errs, fmt.Errorf("%s: %w %s", b.Name, ErrOverlap, t.fields[i].Name))
	}

	t.fields = append(t.fields, b)
	t.used |= b.Mask()
	if b.Mode.Writable() {
		t.writable |= b.Mask()
	}
	if b.Mode == ReadClearOnWrite1 {
		t.w1c |= b.Mask()
	}
}

// Width returns the access width of registers using this table.
func (t *Table[T]) Width() mmio.Width { return t.width }

// Fields returns the fields in declaration order.
func (t *Table[T]) Fields() []Bits { return slices.Clone(t.fields) }

// Lookup finds a field by name. It is meant for tooling; register access
// never looks fields up.
func (t *Table[T]) Lookup(name string) (Bits, bool) {
	i := slices.IndexFunc(t.fields, func(f Bits) bool { return f.Name == name })
	if i < 0 {
		return Bits{}, false
	}
	return t.fields[i], true
}

// WritableMask returns the union of every writable field.
func (t *Table[T]) WritableMask() uint32 { return t.writable }

// Err reports every problem found while declaring fields, or nil.
func (t *Table[T]) Err() error { return errors.Join(t.errs...) }
