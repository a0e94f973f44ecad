package reg

import (
	"fmt"

	"omibyte.io/stm32hal/mmio"
)

// Bank is a run of identical registers sharing one table, addressed through
// a Policy. NVIC enable bits, GPIO alternate function selectors and EXTI line
// sources are banks.
type Bank[T any, F Field[T]] struct {
	name   string
	regs   []*Register[T]
	fields []F
	policy Policy
}

// BankLayout places the registers of a bank: register k lives at
// Base+Offset+k*Stride.
type BankLayout struct {
	Base   uintptr
	Offset uintptr
	Stride uintptr
	Count  int
}

// NewBank declares layout.Count registers over table t. fields lists the
// fields of one register in the order the policy indexes them.
func NewBank[T any, F Field[T]](name string, bus mmio.Bus, layout BankLayout, t *Table[T], fields []F, p Policy, opts ...Option) (*Bank[T, F], error) {
	if len(fields) != p.PerGroup() {
		return nil, fmt.Errorf("bank %s: %w: %d fields, %d per register", name, ErrPolicy, len(fields), p.PerGroup())
	}
	if _, strided := p.(Strided); strided {
		for k, f := range fields {
			if want := p.Locate(k).Bit; f.Bits().Pos != want {
				return nil, fmt.Errorf("bank %s: %w: field %s at bit %d, policy expects %d", name, ErrPolicy, f.Bits().Name, f.Bits().Pos, want)
			}
		}
	}

	b := &Bank[T, F]{
		name:   name,
		regs:   make([]*Register[T], layout.Count),
		fields: fields,
		policy: p,
	}
	for k := range b.regs {
		r, err := Declare(fmt.Sprintf("%s%d", name, k), bus, layout.Base, layout.Offset+uintptr(k)*layout.Stride, t, opts...)
		if err != nil {
			return nil, fmt.Errorf("bank %s: %w", name, err)
		}
		b.regs[k] = r
	}
	return b, nil
}

// MustBank is like NewBank but panics on error.
func MustBank[T any, F Field[T]](name string, bus mmio.Bus, layout BankLayout, t *Table[T], fields []F, p Policy, opts ...Option) *Bank[T, F] {
	b, err := NewBank(name, bus, layout, t, fields, p, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// Len returns the number of indexes the bank covers.
func (b *Bank[T, F]) Len() int { return len(b.regs) * len(b.fields) }

// Lookup resolves index i to its register and field.
func (b *Bank[T, F]) Lookup(i int) (*Register[T], F, error) {
	if i < 0 || i >= b.Len() {
		var zero F
		return nil, zero, fmt.Errorf("%s: %w: %d not in [0, %d)", b.name, ErrIndexRange, i, b.Len())
	}
	loc := b.policy.Locate(i)
	return b.regs[loc.Group], b.fields[loc.Index], nil
}

// At is like Lookup but panics when i is out of range.
func (b *Bank[T, F]) At(i int) (*Register[T], F) {
	r, f, err := b.Lookup(i)
	if err != nil {
		panic(err)
	}
	return r, f
}

// Register returns sub-register k.
func (b *Bank[T, F]) Register(k int) *Register[T] { return b.regs[k] }

// Registers returns every sub-register in address order.
func (b *Bank[T, F]) Registers() []*Register[T] {
	return append([]*Register[T](nil), b.regs...)
}

// Fields returns the field list shared by every sub-register.
func (b *Bank[T, F]) Fields() []F { return append([]F(nil), b.fields...) }

// Policy returns the bank's index policy.
func (b *Bank[T, F]) Policy() Policy { return b.policy }

// On returns a copy of the bank bound to bus.
func (b *Bank[T, F]) On(bus mmio.Bus) *Bank[T, F] {
	c := *b
	c.regs = make([]*Register[T], len(b.regs))
	for k, r := range b.regs {
		c.regs[k] = r.On(bus)
	}
	return &c
}
