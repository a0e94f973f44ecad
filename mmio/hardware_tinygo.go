//go:build tinygo

package mmio

import (
	"runtime/volatile"
	"unsafe"
)

type hardware struct{}

func (hardware) Load(addr uintptr, w Width) uint32 {
	switch w {
	case Width8:
		return uint32(volatile.LoadUint8((*uint8)(unsafe.Pointer(addr))))
	case Width16:
		return uint32(volatile.LoadUint16((*uint16)(unsafe.Pointer(addr))))
	default:
		return volatile.LoadUint32((*uint32)(unsafe.Pointer(addr)))
	}
}

func (hardware) Store(addr uintptr, w Width, value uint32) {
	switch w {
	case Width8:
		volatile.StoreUint8((*uint8)(unsafe.Pointer(addr)), uint8(value))
	case Width16:
		volatile.StoreUint16((*uint16)(unsafe.Pointer(addr)), uint16(value))
	default:
		volatile.StoreUint32((*uint32)(unsafe.Pointer(addr)), value)
	}
}
