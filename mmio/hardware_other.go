//go:build !tinygo

package mmio

import (
	"sync/atomic"
	"unsafe"
)

// hardware on a hosted toolchain. Word accesses go through sync/atomic so the
// compiler can neither merge nor drop them; narrower accesses are plain
// pointer operations, which the gc compiler never elides across calls.
type hardware struct{}

func (hardware) Load(addr uintptr, w Width) uint32 {
	switch w {
	case Width8:
		return uint32(*(*uint8)(unsafe.Pointer(addr)))
	case Width16:
		return uint32(*(*uint16)(unsafe.Pointer(addr)))
	default:
		return atomic.LoadUint32((*uint32)(unsafe.Pointer(addr)))
	}
}

func (hardware) Store(addr uintptr, w Width, value uint32) {
	switch w {
	case Width8:
		*(*uint8)(unsafe.Pointer(addr)) = uint8(value)
	case Width16:
		*(*uint16)(unsafe.Pointer(addr)) = uint16(value)
	default:
		atomic.StoreUint32((*uint32)(unsafe.Pointer(addr)), value)
	}
}
