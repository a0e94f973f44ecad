// Package mmio is the only place raw peripheral memory is touched. A Bus moves
// values of a given width to and from an address; a Cell pins one register
// sized location on a bus and exposes the bitwise operators register code is
// built from. Nothing in this package interprets bits.
package mmio

// Bus performs single loads and stores. Every call reaches the underlying
// memory; implementations never cache.
type Bus interface {
	Load(addr uintptr, w Width) uint32
	Store(addr uintptr, w Width, value uint32)
}

// Hardware is the bus of the running target: loads and stores go straight to
// the physical address with volatile semantics.
var Hardware Bus = hardware{}
