//go:build linux && !tinygo

package mmio

import (
	"encoding/binary"
	"errors"
	"testing"
)

const windowBase = 0x40020000

func newWindow() *DevMem {
	return &DevMem{base: windowBase, mem: make([]byte, 4096)}
}

func TestDevMemLoadStore(t *testing.T) {
	tests := []struct {
		addr  uintptr
		w     Width
		value uint32
	}{
		{windowBase, Width32, 0xA8001400},
		{windowBase + 0x14, Width32, 0xDEADBEEF},
		{windowBase + 0x22, Width16, 0xBEEF},
		{windowBase + 0x31, Width8, 0x5A},
		{windowBase + 0xFFC, Width32, 0x12345678},
	}
	for _, tt := range tests {
		d := newWindow()
		d.Store(tt.addr, tt.w, tt.value)
		if got := d.Load(tt.addr, tt.w); got != tt.value {
			t.Errorf("%s at %#x: got %#x, want %#x", tt.w, tt.addr, got, tt.value)
		}

		off := tt.addr - windowBase
		var raw uint32
		switch tt.w {
		case Width8:
			raw = uint32(d.mem[off])
		case Width16:
			raw = uint32(binary.NativeEndian.Uint16(d.mem[off:]))
		default:
			raw = binary.NativeEndian.Uint32(d.mem[off:])
		}
		if raw != tt.value {
			t.Errorf("%s at %#x: window holds %#x", tt.w, tt.addr, raw)
		}
	}
}

func TestDevMemSubWordKeepsNeighbours(t *testing.T) {
	d := newWindow()
	d.Store(windowBase+4, Width32, 0xFFFFFFFF)
	d.Store(windowBase+5, Width8, 0)

	if got := d.Load(windowBase+4, Width8); got != 0xFF {
		t.Errorf("byte 4 = %#x", got)
	}
	if got := d.Load(windowBase+5, Width8); got != 0 {
		t.Errorf("byte 5 = %#x", got)
	}
	if got := d.Load(windowBase+6, Width16); got != 0xFFFF {
		t.Errorf("half word 6 = %#x", got)
	}
}

func TestDevMemPanics(t *testing.T) {
	tests := []struct {
		name string
		addr uintptr
		w    Width
		want error
	}{
		{"unaligned word", windowBase + 2, Width32, ErrUnaligned},
		{"unaligned half word", windowBase + 1, Width16, ErrUnaligned},
		{"below window", windowBase - 4, Width32, ErrOutside},
		{"past window", windowBase + 0x1000, Width32, ErrOutside},
		{"byte past window", windowBase + 0x1000, Width8, ErrOutside},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, tt.want) {
					t.Fatalf("recovered %v, want %v", r, tt.want)
				}
			}()
			newWindow().Load(tt.addr, tt.w)
		})
	}
}

func TestDevMemAsBus(t *testing.T) {
	d := newWindow()
	c := At(d, windowBase+0x18, Width32)
	c.Store(0x0001)
	c.SetBits(0x0100)
	if !c.HasBits(0x0101) {
		t.Fatalf("cell = %#x", c.Load())
	}
}
