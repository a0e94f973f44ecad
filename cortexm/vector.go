package cortexm

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/marcinbor85/gohex"
)

// Handler is an exception or interrupt handler.
type Handler func()

// Fallback is what a slot does when no handler was installed.
type Fallback uint8

const (
	// Nop returns at once. Used where a missing handler is harmless.
	Nop Fallback = iota
	// Halt stops the program. Used for faults, where carrying on is unsafe.
	Halt
)

// Symbol returns the link-time name of the fallback routine.
func (f Fallback) Symbol() string {
	if f == Halt {
		return "Halt_Handler"
	}
	return "Nop_Handler"
}

func (f Fallback) String() string {
	if f == Halt {
		return "halt"
	}
	return "nop"
}

// StackSymbol is the linker symbol holding the initial stack pointer.
const StackSymbol = "__stack"

// Slot is one entry of the vector table.
type Slot struct {
	// Exception is the exception number and the slot's index. Slot 0 holds
	// the initial stack pointer.
	Exception int
	Name      string
	Reserved  bool
	Fallback  Fallback
}

// Offset returns the byte offset of the slot within the table.
func (s Slot) Offset() uintptr { return uintptr(s.Exception) * 4 }

// IRQ returns the interrupt number dispatched through the slot.
func (s Slot) IRQ() IRQ { return IRQ(s.Exception - SystemExceptions) }

// Symbol returns the handler name the slot resolves to at link time.
func (s Slot) Symbol() string {
	switch {
	case s.Exception == 0:
		return StackSymbol
	case s.Reserved:
		return ""
	case s.Exception < SystemExceptions:
		return s.Name + "_Handler"
	}
	return s.Name + "_IRQHandler"
}

var systemSlots = [SystemExceptions]Slot{
	{Exception: 0, Name: "InitialSP"},
	{Exception: 1, Name: "Reset", Fallback: Halt},
	{Exception: 2, Name: "NMI", Fallback: Nop},
	{Exception: 3, Name: "HardFault", Fallback: Halt},
	{Exception: 4, Name: "MemManage", Fallback: Halt},
	{Exception: 5, Name: "BusFault", Fallback: Halt},
	{Exception: 6, Name: "UsageFault", Fallback: Halt},
	{Exception: 7, Reserved: true},
	{Exception: 8, Reserved: true},
	{Exception: 9, Reserved: true},
	{Exception: 10, Reserved: true},
	{Exception: 11, Name: "SVC", Fallback: Nop},
	{Exception: 12, Name: "DebugMon", Fallback: Nop},
	{Exception: 13, Reserved: true},
	{Exception: 14, Name: "PendSV", Fallback: Nop},
	{Exception: 15, Name: "SysTick", Fallback: Nop},
}

// VectorTable is the Cortex-M exception vector table of one target. Every
// slot starts out on its fallback; Override installs a handler.
type VectorTable struct {
	slots    []Slot
	handlers []Handler
	halt     Handler
}

// NewVectorTable lays out a table with one device interrupt slot per entry
// of irqNames, in interrupt number order. An empty name marks a reserved
// interrupt slot.
func NewVectorTable(irqNames []string) (*VectorTable, error) {
	if len(irqNames) > MaxIRQs {
		return nil, fmt.Errorf("%w: %d", ErrTooManyIRQs, len(irqNames))
	}
	slots := make([]Slot, 0, SystemExceptions+len(irqNames))
	slots = append(slots, systemSlots[:]...)
	for i, name := range irqNames {
		slots = append(slots, Slot{
			Exception: SystemExceptions + i,
			Name:      name,
			Reserved:  name == "",
			Fallback:  Nop,
		})
	}
	return &VectorTable{
		slots:    slots,
		handlers: make([]Handler, len(slots)),
		halt:     halt,
	}, nil
}

func halt() {
	for {
	}
}

// SetHalt replaces the routine Halt slots run. The default spins forever.
func (v *VectorTable) SetHalt(h Handler) { v.halt = h }

// IRQs returns the number of device interrupt slots.
func (v *VectorTable) IRQs() int { return len(v.slots) - SystemExceptions }

// Layout returns every slot in table order.
func (v *VectorTable) Layout() []Slot { return append([]Slot(nil), v.slots...) }

// Size returns the table size in bytes.
func (v *VectorTable) Size() uint32 { return uint32(len(v.slots)) * 4 }

// Alignment returns the alignment the table needs to be used through VTOR:
// the size rounded up to a power of two, at least 128 bytes.
func (v *VectorTable) Alignment() uint32 {
	a := uint32(128)
	for a < v.Size() {
		a <<= 1
	}
	return a
}

func (v *VectorTable) slot(irq IRQ) (int, error) {
	exc := irq.Exception()
	switch {
	case exc == 0:
		return 0, fmt.Errorf("%w: initial stack pointer", ErrReservedSlot)
	case exc < 0 || exc >= len(v.slots):
		return 0, fmt.Errorf("%w: %s", ErrIRQRange, irq)
	case v.slots[exc].Reserved:
		return 0, fmt.Errorf("%w: exception %d", ErrReservedSlot, exc)
	}
	return exc, nil
}

// Override installs h for irq, replacing the fallback.
func (v *VectorTable) Override(irq IRQ, h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	exc, err := v.slot(irq)
	if err != nil {
		return err
	}
	v.handlers[exc] = h
	return nil
}

// Restore puts irq back on its fallback.
func (v *VectorTable) Restore(irq IRQ) error {
	exc, err := v.slot(irq)
	if err != nil {
		return err
	}
	v.handlers[exc] = nil
	return nil
}

// Overridden reports whether a handler is installed for irq.
func (v *VectorTable) Overridden(irq IRQ) bool {
	exc, err := v.slot(irq)
	return err == nil && v.handlers[exc] != nil
}

// Handler returns what the slot of irq runs: the installed handler or the
// fallback. Reserved and out of range slots halt.
func (v *VectorTable) Handler(irq IRQ) Handler {
	exc, err := v.slot(irq)
	if err != nil {
		return v.halt
	}
	if h := v.handlers[exc]; h != nil {
		return h
	}
	if v.slots[exc].Fallback == Halt {
		return v.halt
	}
	return func() {}
}

// Dispatch runs the handler of irq.
func (v *VectorTable) Dispatch(irq IRQ) {
	v.Handler(irq)()
}

// Image renders the table as the core reads it. sp is the initial stack
// pointer; symbols maps handler names to their addresses. A slot without a
// symbol of its own resolves to its fallback routine, as weak linkage would.
func (v *VectorTable) Image(sp uint32, symbols map[string]uint32) ([]byte, error) {
	img := make([]byte, v.Size())
	for _, s := range v.slots {
		var word uint32
		switch {
		case s.Exception == 0:
			word = sp
		case s.Reserved:
		default:
			addr, ok := symbols[s.Symbol()]
			if !ok {
				addr, ok = symbols[s.Fallback.Symbol()]
			}
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnresolved, s.Symbol())
			}
			// Thumb state.
			word = addr | 1
		}
		binary.LittleEndian.PutUint32(img[s.Offset():], word)
	}
	return img, nil
}

// WriteHex writes the image of the table, placed at base, as Intel HEX.
func (v *VectorTable) WriteHex(w io.Writer, base, sp uint32, symbols map[string]uint32) error {
	img, err := v.Image(sp, symbols)
	if err != nil {
		return err
	}
	mem := gohex.NewMemory()
	if err = mem.AddBinary(base, img); err != nil {
		return err
	}
	mem.DumpIntelHex(w, 16)
	return nil
}

// WriteAssembly writes the table as a GNU assembler .isr_vector section. Every
// handler is a weak alias of its fallback, so defining a function of the same
// name overrides it at link time.
func (v *VectorTable) WriteAssembly(w io.Writer) error {
	var b strings.Builder

	b.WriteString(`.syntax unified
.thumb

// Fallback for handlers whose absence is harmless.
.section .text.Nop_Handler
.global  Nop_Handler
.type    Nop_Handler, %function
Nop_Handler:
    bx   lr
.size Nop_Handler, .-Nop_Handler

// Fallback for faults.
.section .text.Halt_Handler
.global  Halt_Handler
.type    Halt_Handler, %function
Halt_Handler:
    wfe
    b    Halt_Handler
.size Halt_Handler, .-Halt_Handler

.macro VEC_NOP handler
    .weak  \handler
    .set   \handler, Nop_Handler
    .long  \handler
.endm

.macro VEC_HALT handler
    .weak  \handler
    .set   \handler, Halt_Handler
    .long  \handler
.endm

.section .isr_vector, "a", %progbits
.global  __isr_vector
.type    __isr_vector, %object
__isr_vector:
`)
	for _, s := range v.slots {
		switch {
		case s.Exception == 0:
			fmt.Fprintf(&b, "    .long %s\n", StackSymbol)
		case s.Reserved:
			fmt.Fprintf(&b, "    .long 0 /* %#02x reserved */\n", s.Offset())
		case s.Fallback == Halt:
			fmt.Fprintf(&b, "    VEC_HALT %s /* %#02x */\n", s.Symbol(), s.Offset())
		default:
			fmt.Fprintf(&b, "    VEC_NOP %s /* %#02x */\n", s.Symbol(), s.Offset())
		}
	}
	b.WriteString(".size __isr_vector, .-__isr_vector\n")

	_, err := io.WriteString(w, b.String())
	return err
}
