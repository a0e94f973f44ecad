package cortexm

import (
	"fmt"

	"omibyte.io/stm32hal/mmio"
	"omibyte.io/stm32hal/reg"
)

const (
	// NVICBase is the address of the first NVIC register, ISER0.
	NVICBase = 0xE000E100
	// STIRAddr is the software trigger interrupt register. It sits in the
	// System Control Space apart from the other NVIC registers.
	STIRAddr = 0xE000EF00
)

type (
	iser struct{}
	icer struct{}
	ispr struct{}
	icpr struct{}
	iabr struct{}
	ipr  struct{}
	stir struct{}
)

func bitsOf[F any](n int, declare func(i int) F) []F {
	fs := make([]F, n)
	for i := range fs {
		fs[i] = declare(i)
	}
	return fs
}

var (
	iserTable = reg.NewTable[iser](mmio.Width32)
	setEna    = bitsOf(32, func(i int) reg.RSFlag[iser] {
		return reg.NewRSFlag(iserTable, fmt.Sprintf("SETENA%d", i), reg.Pos(i))
	})

	icerTable = reg.NewTable[icer](mmio.Width32)
	clrEna    = bitsOf(32, func(i int) reg.RC1Flag[icer] {
		return reg.NewRC1Flag(icerTable, fmt.Sprintf("CLRENA%d", i), reg.Pos(i))
	})

	isprTable = reg.NewTable[ispr](mmio.Width32)
	setPend   = bitsOf(32, func(i int) reg.RSFlag[ispr] {
		return reg.NewRSFlag(isprTable, fmt.Sprintf("SETPEND%d", i), reg.Pos(i))
	})

	icprTable = reg.NewTable[icpr](mmio.Width32)
	clrPend   = bitsOf(32, func(i int) reg.RC1Flag[icpr] {
		return reg.NewRC1Flag(icprTable, fmt.Sprintf("CLRPEND%d", i), reg.Pos(i))
	})

	iabrTable = reg.NewTable[iabr](mmio.Width32)
	active    = bitsOf(32, func(i int) reg.ROFlag[iabr] {
		return reg.NewROFlag(iabrTable, fmt.Sprintf("ACTIVE%d", i), reg.Pos(i))
	})

	iprTable = reg.NewTable[ipr](mmio.Width8)
	iprPri   = reg.NewRW[uint8](iprTable, "PRI", 0, 8)

	stirTable = reg.NewTable[stir](mmio.Width32)
	intID     = reg.NewWO[uint16](stirTable, "INTID", 0, 9)
)

// NVIC is the interrupt controller of one core. Its methods panic when given
// an interrupt number the controller does not have, like an out of range
// slice index. System exceptions are routed to the SCB where the operation
// exists for them.
type NVIC struct {
	ISER *reg.Bank[iser, reg.RSFlag[iser]]
	ICER *reg.Bank[icer, reg.RC1Flag[icer]]
	ISPR *reg.Bank[ispr, reg.RSFlag[ispr]]
	ICPR *reg.Bank[icpr, reg.RC1Flag[icpr]]
	IABR *reg.Bank[iabr, reg.ROFlag[iabr]]
	IPR  *reg.Bank[ipr, reg.RW[ipr, uint8]]
	STIR *reg.Register[stir]

	scb  *SCB
	irqs int
}

// NewNVIC declares the registers of an NVIC with irqs device interrupts.
func NewNVIC(bus mmio.Bus, irqs int, scb *SCB) (*NVIC, error) {
	if irqs <= 0 || irqs > MaxIRQs {
		return nil, fmt.Errorf("%w: %d", ErrTooManyIRQs, irqs)
	}
	words := (irqs + 31) / 32
	bank := func(offset uintptr) reg.BankLayout {
		return reg.BankLayout{Base: NVICBase, Offset: offset, Stride: 4, Count: words}
	}
	linear := reg.Linear{Width: 32}

	var (
		n   = &NVIC{scb: scb, irqs: irqs}
		err error
	)
	if n.ISER, err = reg.NewBank("ISER", bus, bank(0x000), iserTable, setEna, linear); err != nil {
		return nil, err
	}
	if n.ICER, err = reg.NewBank("ICER", bus, bank(0x080), icerTable, clrEna, linear); err != nil {
		return nil, err
	}
	if n.ISPR, err = reg.NewBank("ISPR", bus, bank(0x100), isprTable, setPend, linear); err != nil {
		return nil, err
	}
	if n.ICPR, err = reg.NewBank("ICPR", bus, bank(0x180), icprTable, clrPend, linear); err != nil {
		return nil, err
	}
	if n.IABR, err = reg.NewBank("IABR", bus, bank(0x200), iabrTable, active, linear); err != nil {
		return nil, err
	}
	n.IPR, err = reg.NewBank("IPR", bus, reg.BankLayout{Base: NVICBase, Offset: 0x300, Stride: 1, Count: irqs},
		iprTable, []reg.RW[ipr, uint8]{iprPri}, reg.Linear{Width: 1})
	if err != nil {
		return nil, err
	}
	if n.STIR, err = reg.Declare("STIR", bus, STIRAddr, 0, stirTable); err != nil {
		return nil, err
	}
	return n, nil
}

// IRQs returns the number of device interrupts.
func (n *NVIC) IRQs() int { return n.irqs }

func (n *NVIC) index(irq IRQ) int {
	if irq < 0 || int(irq) >= n.irqs {
		panic(fmt.Errorf("%w: %s with %d device interrupts", ErrIRQRange, irq, n.irqs))
	}
	return int(irq)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Enable enables irq. For MemManage, BusFault and UsageFault it enables the
// fault handler.
func (n *NVIC) Enable(irq IRQ) {
	if irq.System() {
		must(n.scb.EnableFault(irq))
		return
	}
	r, f := n.ISER.At(n.index(irq))
	r.Set(f)
}

// Disable disables irq.
func (n *NVIC) Disable(irq IRQ) {
	if irq.System() {
		must(n.scb.DisableFault(irq))
		return
	}
	r, f := n.ICER.At(n.index(irq))
	r.Set(f)
}

// IsEnabled reports whether irq is enabled.
func (n *NVIC) IsEnabled(irq IRQ) bool {
	if irq.System() {
		return n.scb.FaultEnabled(irq)
	}
	r, f := n.ISER.At(n.index(irq))
	return reg.Get(r, f)
}

// IsPending reports whether irq is pending.
func (n *NVIC) IsPending(irq IRQ) bool {
	if irq.System() {
		p, err := n.scb.IsPending(irq)
		must(err)
		return p
	}
	r, f := n.ISPR.At(n.index(irq))
	return reg.Get(r, f)
}

// SetPending pends irq.
func (n *NVIC) SetPending(irq IRQ) {
	if irq.System() {
		must(n.scb.SetPending(irq))
		return
	}
	r, f := n.ISPR.At(n.index(irq))
	r.Set(f)
}

// ClearPending removes the pending state of irq.
func (n *NVIC) ClearPending(irq IRQ) {
	if irq.System() {
		must(n.scb.ClearPending(irq))
		return
	}
	r, f := n.ICPR.At(n.index(irq))
	r.Set(f)
}

// IsActive reports whether the handler of irq is running or preempted.
func (n *NVIC) IsActive(irq IRQ) bool {
	if irq.System() {
		return n.scb.ActiveVector() == irq.Exception()
	}
	r, f := n.IABR.At(n.index(irq))
	return reg.Get(r, f)
}

// SetPriority sets the priority of irq. Lower values preempt higher ones;
// the bits below the implemented ones are ignored by the hardware.
func (n *NVIC) SetPriority(irq IRQ, priority uint8) {
	if irq.System() {
		must(n.scb.SetPriority(irq, priority))
		return
	}
	r, f := n.IPR.At(n.index(irq))
	r.Write(f.To(priority))
}

// Priority returns the priority of irq.
func (n *NVIC) Priority(irq IRQ) uint8 {
	if irq.System() {
		p, err := n.scb.Priority(irq)
		must(err)
		return p
	}
	r, f := n.IPR.At(n.index(irq))
	return reg.Get(r, f)
}

// Trigger pends irq from software through STIR.
func (n *NVIC) Trigger(irq IRQ) {
	n.STIR.Write(intID.To(uint16(n.index(irq))))
}
