package mmio

// Cell is one register sized memory location on a bus. The operators read
// through or write through on every call; a Cell holds no value of its own.
type Cell struct {
	bus   Bus
	addr  uintptr
	width Width
}

// At returns the cell of the given width at addr on bus.
func At(bus Bus, addr uintptr, w Width) Cell {
	return Cell{bus: bus, addr: addr, width: w}
}

func (c Cell) Addr() uintptr { return c.addr }
func (c Cell) Width() Width  { return c.width }
func (c Cell) Bus() Bus      { return c.bus }

// Load reads the cell.
func (c Cell) Load() uint32 {
	return c.bus.Load(c.addr, c.width) & c.width.Mask()
}

// Store writes value to the cell.
func (c Cell) Store(value uint32) {
	c.bus.Store(c.addr, c.width, value&c.width.Mask())
}

// Or returns the current value OR v.
func (c Cell) Or(v uint32) uint32 { return c.Load() | v }

// And returns the current value AND v.
func (c Cell) And(v uint32) uint32 { return c.Load() & v }

// Xor returns the current value XOR v.
func (c Cell) Xor(v uint32) uint32 { return c.Load() ^ v }

// Not returns the complement of the current value, limited to the cell width.
func (c Cell) Not() uint32 { return ^c.Load() & c.width.Mask() }

// Shl returns the current value shifted left by n, limited to the cell width.
func (c Cell) Shl(n uint) uint32 { return (c.Load() << n) & c.width.Mask() }

// Shr returns the current value shifted right by n.
func (c Cell) Shr(n uint) uint32 { return c.Load() >> n }

// SetBits performs cell |= mask.
func (c Cell) SetBits(mask uint32) { c.Store(c.Load() | mask) }

// ClearBits performs cell &^= mask.
func (c Cell) ClearBits(mask uint32) { c.Store(c.Load() &^ mask) }

// ToggleBits performs cell ^= mask.
func (c Cell) ToggleBits(mask uint32) { c.Store(c.Load() ^ mask) }

// MaskBits performs cell &= mask.
func (c Cell) MaskBits(mask uint32) { c.Store(c.Load() & mask) }

// HasBits reports whether every bit of mask is set.
func (c Cell) HasBits(mask uint32) bool { return c.Load()&mask == mask }
