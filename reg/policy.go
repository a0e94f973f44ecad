package reg

import "fmt"

// Location addresses one field within a bank of identical registers.
type Location struct {
	// Group is the sub-register.
	Group int
	// Index is the field within the sub-register's field list.
	Index int
	// Bit is the field's first bit within the sub-register.
	Bit Pos
}

func (l Location) String() string {
	return fmt.Sprintf("(%d, %d)", l.Group, l.Index)
}

// Policy maps an external index, such as a pin or an interrupt number, onto
// a sub-register and a field within it.
type Policy interface {
	Locate(i int) Location
	// PerGroup is the number of fields in each sub-register.
	PerGroup() int
}

// Linear packs Width single-bit fields into each sub-register: index i lands
// in sub-register i/Width at bit i%Width.
type Linear struct {
	Width int
}

func (p Linear) Locate(i int) Location {
	return Location{Group: i / p.Width, Index: i % p.Width, Bit: Pos(i % p.Width)}
}

func (p Linear) PerGroup() int { return p.Width }

// Strided packs PerGroup fields of Stride bits each into every sub-register.
type Strided struct {
	Fields int
	Stride int
}

func (p Strided) Locate(i int) Location {
	k := i % p.Fields
	return Location{Group: i / p.Fields, Index: k, Bit: Pos(k * p.Stride)}
}

func (p Strided) PerGroup() int { return p.Fields }
