package reg

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Pos is a bit offset within a register.
type Pos uint8

// Value is the set of types a multi-bit field may be declared with. Named
// unsigned types (enumerations) qualify.
type Value interface {
	constraints.Unsigned
}

// Getter is implemented by aggregate values that know their own raw encoding.
// Such values are passed to a field through From and are opaque to
// Group.Complement.
type Getter interface {
	Get() uint32
}

// Bits is the untyped description of one field: where it sits, how wide it is
// and how it may be accessed.
type Bits struct {
	Name string
	Pos  Pos
	Len  uint8
	Mode Mode
}

// Mask returns the field's bits in place.
func (b Bits) Mask() uint32 {
	return uint32((uint64(1)<<b.Len)-1) << b.Pos
}

// Encode shifts v into place. Bits of v beyond the field length are dropped.
func (b Bits) Encode(v uint32) uint32 {
	return (v << b.Pos) & b.Mask()
}

// Decode extracts the field from a register word.
func (b Bits) Decode(word uint32) uint32 {
	return (word & b.Mask()) >> b.Pos
}

// End returns the first bit position after the field.
func (b Bits) End() int {
	return int(b.Pos) + int(b.Len)
}

func (b Bits) String() string {
	if b.Len == 1 {
		return fmt.Sprintf("%s[%d] %s", b.Name, b.Pos, b.Mode)
	}
	return fmt.Sprintf("%s[%d:%d] %s", b.Name, b.End()-1, b.Pos, b.Mode)
}
