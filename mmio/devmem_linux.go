//go:build linux && !tinygo

package mmio

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"omibyte.io/stm32hal/pkg"
)

// DevMem is a bus over a window of physical memory mapped through /dev/mem.
// It serves parts that run Linux next to the peripherals described by the
// register tables (STM32MP1 class devices), and bench setups with a memory
// mapped debug adapter. Addresses passed to Load and Store are physical.
type DevMem struct {
	base uintptr
	mem  []byte
}

// OpenDevMem maps size bytes of physical memory starting at base. base must
// be page aligned.
func OpenDevMem(base uintptr, size int) (*DevMem, error) {
	if base%uintptr(os.Getpagesize()) != 0 {
		return nil, fmt.Errorf("%w: base %#x is not page aligned", ErrUnaligned, base)
	}

	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/mem: %w", err)
	}
	defer f.Close()

	mem, err := unix.Mmap(int(f.Fd()), int64(base), size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %#x+%#x: %w", base, size, err)
	}

	pkg.LogDebug(pkg.ComponentDevMem, "mapped window", "base", fmt.Sprintf("%#x", base), "size", size)
	return &DevMem{base: base, mem: mem}, nil
}

// Close unmaps the window. The bus must not be used afterwards.
func (d *DevMem) Close() error {
	if d.mem == nil {
		return nil
	}
	err := unix.Munmap(d.mem)
	d.mem = nil
	pkg.LogDebug(pkg.ComponentDevMem, "unmapped window", "base", fmt.Sprintf("%#x", d.base))
	return err
}

func (d *DevMem) ptr(addr uintptr, w Width) unsafe.Pointer {
	if !w.Aligned(addr) {
		panic(fmt.Errorf("%w: %s access at %#x", ErrUnaligned, w, addr))
	}
	if addr < d.base || addr+w.Bytes() > d.base+uintptr(len(d.mem)) {
		panic(fmt.Errorf("%w: %#x", ErrOutside, addr))
	}
	return unsafe.Pointer(&d.mem[addr-d.base])
}

// Load implements Bus.
func (d *DevMem) Load(addr uintptr, w Width) uint32 {
	p := d.ptr(addr, w)
	switch w {
	case Width8:
		return uint32(*(*uint8)(p))
	case Width16:
		return uint32(*(*uint16)(p))
	default:
		return atomic.LoadUint32((*uint32)(p))
	}
}

// Store implements Bus.
func (d *DevMem) Store(addr uintptr, w Width, value uint32) {
	p := d.ptr(addr, w)
	switch w {
	case Width8:
		*(*uint8)(p) = uint8(value)
	case Width16:
		*(*uint16)(p) = uint16(value)
	default:
		atomic.StoreUint32((*uint32)(p), value)
	}
}
