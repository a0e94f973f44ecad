package reg

import "fmt"

// Val is one encoded field value of the register tagged T, ready to be
// written. Vals are produced by the To and From methods of writable
// descriptors and by Register.Capture.
type Val[T any] struct {
	bits   Bits
	raw    uint32
	opaque bool
}

// Bits returns the field the value belongs to.
func (v Val[T]) Bits() Bits { return v.bits }

// Raw returns the value shifted into place.
func (v Val[T]) Raw() uint32 { return v.raw }

// Value returns the value shifted down to bit 0.
func (v Val[T]) Value() uint32 { return v.raw >> v.bits.Pos }

// Opaque reports whether the value was built from a Getter.
func (v Val[T]) Opaque() bool { return v.opaque }

func (v Val[T]) String() string {
	return fmt.Sprintf("%s=%#x", v.bits.Name, v.Value())
}

// Snapshot is a register word captured by one load.
type Snapshot[T any] struct {
	word uint32
}

// Word returns the captured register word.
func (s Snapshot[T]) Word() uint32 { return s.word }
