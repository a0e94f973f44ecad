package f4

import (
	"testing"

	"omibyte.io/stm32hal/cortexm"
	"omibyte.io/stm32hal/critical"
	"omibyte.io/stm32hal/mmio"
)

func TestIRQNumbers(t *testing.T) {
	tests := []struct {
		irq  IRQ
		num  int
		name string
	}{
		{WWDG, 0, "WWDG"},
		{EXTI0, 6, "EXTI0"},
		{EXTI9_5, 23, "EXTI9_5"},
		{USART1, 37, "USART1"},
		{EXTI15_10, 40, "EXTI15_10"},
		{DMA2Stream7, 70, "DMA2_Stream7"},
		{FPU, 81, "FPU"},
	}
	for _, tt := range tests {
		if int(tt.irq) != tt.num {
			t.Errorf("%s = %d, want %d", tt.name, tt.irq, tt.num)
		}
		if got := tt.irq.String(); got != tt.name {
			t.Errorf("String(%d) = %q, want %q", tt.num, got, tt.name)
		}
	}
	if NumIRQs != 82 {
		t.Errorf("NumIRQs = %d", NumIRQs)
	}
	if got := IRQ(NumIRQs).String(); got != "IRQ(82)" {
		t.Errorf("String = %q", got)
	}
}

func TestVectorTable(t *testing.T) {
	vt, err := NewVectorTable()
	if err != nil {
		t.Fatal(err)
	}
	if vt.IRQs() != NumIRQs {
		t.Fatalf("IRQs = %d", vt.IRQs())
	}
	layout := vt.Layout()
	slot := layout[USART1.IRQ().Exception()]
	if got := slot.Symbol(); got != "USART1_IRQHandler" {
		t.Errorf("USART1 symbol = %q", got)
	}
	if got := slot.Offset(); got != 0xD4 {
		t.Errorf("USART1 offset = %#x, want 0xd4", got)
	}
	for _, s := range layout[cortexm.SystemExceptions:] {
		if s.Reserved {
			t.Errorf("slot %d reserved", s.Exception)
		}
	}
}

func TestAttachDeviceInterrupt(t *testing.T) {
	vt, err := NewVectorTable()
	if err != nil {
		t.Fatal(err)
	}
	mem := mmio.NewMemory()
	cortexm.Model(mem, NumIRQs)
	c, err := cortexm.NewController(mem, vt, critical.NewSimulated(PriorityBits))
	if err != nil {
		t.Fatal(err)
	}

	hits := 0
	if err := c.Attach(USART1.IRQ(), func() { hits++ }); err != nil {
		t.Fatal(err)
	}
	// USART1 is IRQ 37: ISER1 bit 5.
	if got := mem.Peek(0xE000E104); got != 1<<5 {
		t.Fatalf("ISER1 = %#x, want 0x20", got)
	}

	c.NVIC.SetPending(USART1.IRQ())
	if !c.Deliver(USART1.IRQ()) || hits != 1 {
		t.Fatalf("Deliver: hits = %d", hits)
	}
}
