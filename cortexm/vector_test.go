package cortexm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func newTable(t *testing.T) *VectorTable {
	t.Helper()
	v, err := NewVectorTable([]string{"WWDG", "PVD", ""})
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestVectorLayout(t *testing.T) {
	v := newTable(t)
	tests := []struct {
		offset   uintptr
		name     string
		reserved bool
		fallback Fallback
	}{
		{0x00, "InitialSP", false, Nop},
		{0x04, "Reset", false, Halt},
		{0x08, "NMI", false, Nop},
		{0x0C, "HardFault", false, Halt},
		{0x10, "MemManage", false, Halt},
		{0x14, "BusFault", false, Halt},
		{0x18, "UsageFault", false, Halt},
		{0x1C, "", true, Nop},
		{0x20, "", true, Nop},
		{0x24, "", true, Nop},
		{0x28, "", true, Nop},
		{0x2C, "SVC", false, Nop},
		{0x30, "DebugMon", false, Nop},
		{0x34, "", true, Nop},
		{0x38, "PendSV", false, Nop},
		{0x3C, "SysTick", false, Nop},
		{0x40, "WWDG", false, Nop},
		{0x44, "PVD", false, Nop},
		{0x48, "", true, Nop},
	}

	layout := v.Layout()
	if len(layout) != len(tests) {
		t.Fatalf("%d slots, want %d", len(layout), len(tests))
	}
	for i, tt := range tests {
		s := layout[i]
		if s.Offset() != tt.offset || s.Name != tt.name || s.Reserved != tt.reserved || s.Fallback != tt.fallback {
			t.Errorf("slot %d = %+v at %#x, want %s at %#x", i, s, s.Offset(), tt.name, tt.offset)
		}
	}
	if got := layout[16].IRQ(); got != 0 {
		t.Errorf("first device slot IRQ = %d", got)
	}
	if got := v.Alignment(); got != 128 {
		t.Errorf("Alignment = %d", got)
	}
}

func TestVectorDispatch(t *testing.T) {
	v := newTable(t)
	halted := 0
	v.SetHalt(func() { halted++ })

	v.Dispatch(NonMaskableInt)
	v.Dispatch(SysTick)
	if halted != 0 {
		t.Fatalf("nop fallbacks halted %d times", halted)
	}
	v.Dispatch(HardFault)
	v.Dispatch(UsageFault)
	if halted != 2 {
		t.Fatalf("fault fallbacks halted %d times, want 2", halted)
	}

	ran := 0
	if err := v.Override(HardFault, func() { ran++ }); err != nil {
		t.Fatal(err)
	}
	if err := v.Override(1, func() { ran += 10 }); err != nil {
		t.Fatal(err)
	}
	v.Dispatch(HardFault)
	v.Dispatch(1)
	if ran != 11 || halted != 2 {
		t.Fatalf("ran = %d, halted = %d", ran, halted)
	}

	if err := v.Restore(HardFault); err != nil {
		t.Fatal(err)
	}
	v.Dispatch(HardFault)
	if halted != 3 || v.Overridden(HardFault) {
		t.Fatalf("restored slot did not halt")
	}
}

func TestVectorOverrideErrors(t *testing.T) {
	v := newTable(t)
	h := func() {}
	tests := []struct {
		irq  IRQ
		h    Handler
		want error
	}{
		{IRQ(-16), h, ErrReservedSlot},
		{IRQ(-9), h, ErrReservedSlot},
		{IRQ(-3), h, ErrReservedSlot},
		{IRQ(2), h, ErrReservedSlot},
		{IRQ(3), h, ErrIRQRange},
		{IRQ(-17), h, ErrIRQRange},
		{IRQ(0), nil, ErrNilHandler},
	}
	for _, tt := range tests {
		if err := v.Override(tt.irq, tt.h); !errors.Is(err, tt.want) {
			t.Errorf("Override(%d) = %v, want %v", tt.irq, err, tt.want)
		}
	}

	if _, err := NewVectorTable(make([]string, MaxIRQs+1)); !errors.Is(err, ErrTooManyIRQs) {
		t.Errorf("NewVectorTable(241) = %v", err)
	}
}

var symbols = map[string]uint32{
	"Nop_Handler":     0x08000100,
	"Halt_Handler":    0x08000104,
	"Reset_Handler":   0x08000200,
	"WWDG_IRQHandler": 0x08000300,
}

func TestVectorImage(t *testing.T) {
	v := newTable(t)
	img, err := v.Image(0x20020000, symbols)
	if err != nil {
		t.Fatal(err)
	}
	if len(img) != 19*4 {
		t.Fatalf("image is %d bytes", len(img))
	}

	word := func(i int) uint32 { return binary.LittleEndian.Uint32(img[4*i:]) }
	tests := []struct {
		slot int
		want uint32
	}{
		{0, 0x20020000},
		{1, 0x08000201},
		{2, 0x08000101},
		{3, 0x08000105},
		{7, 0},
		{13, 0},
		{15, 0x08000101},
		{16, 0x08000301},
		{17, 0x08000101},
		{18, 0},
	}
	for _, tt := range tests {
		if got := word(tt.slot); got != tt.want {
			t.Errorf("slot %d = %#x, want %#x", tt.slot, got, tt.want)
		}
	}

	if _, err := v.Image(0, map[string]uint32{"Nop_Handler": 1}); !errors.Is(err, ErrUnresolved) {
		t.Errorf("missing Halt_Handler: %v", err)
	}
}

func TestVectorHex(t *testing.T) {
	v := newTable(t)
	var buf bytes.Buffer
	if err := v.WriteHex(&buf, 0x08000000, 0x20020000, symbols); err != nil {
		t.Fatal(err)
	}
	out := strings.ToUpper(buf.String())
	if !strings.Contains(out, ":020000040800F2") {
		t.Errorf("no extended linear address record for 0x0800:\n%s", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), ":00000001FF") {
		t.Errorf("no end of file record:\n%s", out)
	}
}

func TestVectorAssembly(t *testing.T) {
	v := newTable(t)
	var buf bytes.Buffer
	if err := v.WriteAssembly(&buf); err != nil {
		t.Fatal(err)
	}
	asm := buf.String()

	for _, want := range []string{
		".section .isr_vector",
		"    .long __stack\n",
		"    VEC_HALT Reset_Handler /* 0x04 */\n",
		"    VEC_HALT HardFault_Handler /* 0x0c */\n",
		"    .long 0 /* 0x1c reserved */\n",
		"    VEC_NOP SysTick_Handler /* 0x3c */\n",
		"    VEC_NOP WWDG_IRQHandler /* 0x40 */\n",
		"    .long 0 /* 0x48 reserved */\n",
	} {
		if !strings.Contains(asm, want) {
			t.Errorf("assembly lacks %q", want)
		}
	}
	if got := strings.Count(asm, "    VEC_"); got != 12 {
		t.Errorf("%d handler entries, want 12", got)
	}
}
