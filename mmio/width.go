package mmio

import "fmt"

// Width is the size of a single bus access in bits.
type Width uint8

const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
)

// Bytes returns the number of bytes moved by one access of this width.
func (w Width) Bytes() uintptr {
	return uintptr(w) / 8
}

// Mask returns a value with every bit of the access width set.
func (w Width) Mask() uint32 {
	if w >= Width32 {
		return 0xFFFFFFFF
	}
	return (uint32(1) << w) - 1
}

// Valid reports whether w is one of the access widths the bus supports.
func (w Width) Valid() bool {
	switch w {
	case Width8, Width16, Width32:
		return true
	}
	return false
}

// Aligned reports whether addr is naturally aligned for this width.
func (w Width) Aligned(addr uintptr) bool {
	return addr%w.Bytes() == 0
}

func (w Width) String() string {
	switch w {
	case Width8:
		return "byte"
	case Width16:
		return "halfword"
	case Width32:
		return "word"
	}
	return fmt.Sprintf("width(%d)", uint8(w))
}
