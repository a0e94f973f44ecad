package cortexm

import (
	"fmt"

	"omibyte.io/stm32hal/mmio"
	"omibyte.io/stm32hal/reg"
)

// SCBBase is the address of the System Control Block.
const SCBBase = 0xE000ED00

const vectKey = 0x05FA

type (
	icsr  struct{}
	vtor  struct{}
	aircr struct{}
	shpr  struct{}
	shcsr struct{}
)

var (
	icsrTable   = reg.NewTable[icsr](mmio.Width32)
	vectActive  = reg.NewRO[uint16](icsrTable, "VECTACTIVE", 0, 9)
	retToBase   = reg.NewROFlag(icsrTable, "RETTOBASE", 11)
	vectPending = reg.NewRO[uint16](icsrTable, "VECTPENDING", 12, 9)
	isrPending  = reg.NewROFlag(icsrTable, "ISRPENDING", 22)
	pendSTClr   = reg.NewWOFlag(icsrTable, "PENDSTCLR", 25)
	pendSTSet   = reg.NewRSFlag(icsrTable, "PENDSTSET", 26)
	pendSVClr   = reg.NewWOFlag(icsrTable, "PENDSVCLR", 27)
	pendSVSet   = reg.NewRSFlag(icsrTable, "PENDSVSET", 28)
	nmiPendSet  = reg.NewRSFlag(icsrTable, "NMIPENDSET", 31)

	vtorTable = reg.NewTable[vtor](mmio.Width32)
	tblOff    = reg.NewRW[uint32](vtorTable, "TBLOFF", 7, 25)

	aircrTable    = reg.NewTable[aircr](mmio.Width32)
	vectReset     = reg.NewWOFlag(aircrTable, "VECTRESET", 0)
	vectClrActive = reg.NewWOFlag(aircrTable, "VECTCLRACTIVE", 1)
	sysResetReq   = reg.NewWOFlag(aircrTable, "SYSRESETREQ", 2)
	priGroup      = reg.NewRW[uint8](aircrTable, "PRIGROUP", 8, 3)
	endianness    = reg.NewROFlag(aircrTable, "ENDIANNESS", 15)
	vectKeyStat   = reg.NewRO[uint16](aircrTable, "VECTKEYSTAT", 16, 16)
	vectKeyField  = reg.NewWO[uint16](aircrTable, "VECTKEY", 16, 16, reg.Alias)

	shprTable = reg.NewTable[shpr](mmio.Width8)
	shprPri   = reg.NewRW[uint8](shprTable, "PRI", 0, 8)

	shcsrTable     = reg.NewTable[shcsr](mmio.Width32)
	memFaultPended = reg.NewRWFlag(shcsrTable, "MEMFAULTPENDED", 13)
	busFaultPended = reg.NewRWFlag(shcsrTable, "BUSFAULTPENDED", 14)
	svcallPended   = reg.NewRWFlag(shcsrTable, "SVCALLPENDED", 15)
	memFaultEna    = reg.NewRWFlag(shcsrTable, "MEMFAULTENA", 16)
	busFaultEna    = reg.NewRWFlag(shcsrTable, "BUSFAULTENA", 17)
	usgFaultEna    = reg.NewRWFlag(shcsrTable, "USGFAULTENA", 18)
)

// SCB is the System Control Block: pend bits, vector table relocation,
// priority grouping and system handler priorities.
type SCB struct {
	ICSR  *reg.Register[icsr]
	VTOR  *reg.Register[vtor]
	AIRCR *reg.Register[aircr]
	SHCSR *reg.Register[shcsr]
	SHPR  *reg.Bank[shpr, reg.RW[shpr, uint8]]
}

// NewSCB declares the SCB registers on bus.
func NewSCB(bus mmio.Bus) (*SCB, error) {
	var (
		s   SCB
		err error
	)
	if s.ICSR, err = reg.Declare("ICSR", bus, SCBBase, 0x04, icsrTable); err != nil {
		return nil, err
	}
	if s.VTOR, err = reg.Declare("VTOR", bus, SCBBase, 0x08, vtorTable); err != nil {
		return nil, err
	}
	if s.AIRCR, err = reg.Declare("AIRCR", bus, SCBBase, 0x0C, aircrTable, reg.ResetValue(0xFA050000)); err != nil {
		return nil, err
	}
	if s.SHCSR, err = reg.Declare("SHCSR", bus, SCBBase, 0x24, shcsrTable); err != nil {
		return nil, err
	}
	// One byte per exception from MemManage (4) to SysTick (15).
	s.SHPR, err = reg.NewBank("SHPR", bus, reg.BankLayout{Base: SCBBase, Offset: 0x18, Stride: 1, Count: 12},
		shprTable, []reg.RW[shpr, uint8]{shprPri}, reg.Linear{Width: 1})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func reservedException(exc int) bool {
	return (exc >= 7 && exc <= 10) || exc == 13
}

func (s *SCB) priorityByte(irq IRQ) (*reg.Register[shpr], reg.RW[shpr, uint8], error) {
	exc := irq.Exception()
	switch {
	case !irq.System() || exc < 1:
		return nil, reg.RW[shpr, uint8]{}, fmt.Errorf("%w: %s is not a system exception", ErrIRQRange, irq)
	case exc < 4:
		return nil, reg.RW[shpr, uint8]{}, fmt.Errorf("%w: %s", ErrFixedPriority, irq)
	case reservedException(exc):
		return nil, reg.RW[shpr, uint8]{}, fmt.Errorf("%w: exception %d", ErrReservedSlot, exc)
	}
	return s.SHPR.Lookup(exc - 4)
}

// SetPriority sets the priority of a configurable system exception.
func (s *SCB) SetPriority(irq IRQ, priority uint8) error {
	r, f, err := s.priorityByte(irq)
	if err != nil {
		return err
	}
	r.Write(f.To(priority))
	return nil
}

// Priority returns the priority of a configurable system exception.
func (s *SCB) Priority(irq IRQ) (uint8, error) {
	r, f, err := s.priorityByte(irq)
	if err != nil {
		return 0, err
	}
	return reg.Get(r, f), nil
}

// SetPending pends NMI, PendSV or SysTick.
func (s *SCB) SetPending(irq IRQ) error {
	switch irq {
	case NonMaskableInt:
		s.ICSR.Set(nmiPendSet)
	case PendSV:
		s.ICSR.Set(pendSVSet)
	case SysTick:
		s.ICSR.Set(pendSTSet)
	default:
		return fmt.Errorf("%w: pend %s", ErrNotSupported, irq)
	}
	return nil
}

// ClearPending removes the pending state of PendSV or SysTick.
func (s *SCB) ClearPending(irq IRQ) error {
	switch irq {
	case PendSV:
		s.ICSR.Set(pendSVClr)
	case SysTick:
		s.ICSR.Set(pendSTClr)
	default:
		return fmt.Errorf("%w: clear pending %s", ErrNotSupported, irq)
	}
	return nil
}

// IsPending reports whether NMI, PendSV or SysTick is pending.
func (s *SCB) IsPending(irq IRQ) (bool, error) {
	switch irq {
	case NonMaskableInt:
		return reg.Get(s.ICSR, nmiPendSet), nil
	case PendSV:
		return reg.Get(s.ICSR, pendSVSet), nil
	case SysTick:
		return reg.Get(s.ICSR, pendSTSet), nil
	case MemoryManagement:
		return reg.Get(s.SHCSR, memFaultPended), nil
	case BusFault:
		return reg.Get(s.SHCSR, busFaultPended), nil
	case SVCall:
		return reg.Get(s.SHCSR, svcallPended), nil
	}
	return false, fmt.Errorf("%w: pending state of %s", ErrNotSupported, irq)
}

func faultEnable(irq IRQ) (reg.RWFlag[shcsr], bool) {
	switch irq {
	case MemoryManagement:
		return memFaultEna, true
	case BusFault:
		return busFaultEna, true
	case UsageFault:
		return usgFaultEna, true
	}
	return reg.RWFlag[shcsr]{}, false
}

// EnableFault enables the MemManage, BusFault or UsageFault handler. Disabled
// faults escalate to HardFault.
func (s *SCB) EnableFault(irq IRQ) error {
	f, ok := faultEnable(irq)
	if !ok {
		return fmt.Errorf("%w: enable %s", ErrNotSupported, irq)
	}
	s.SHCSR.Set(f)
	return nil
}

// DisableFault reverses EnableFault.
func (s *SCB) DisableFault(irq IRQ) error {
	f, ok := faultEnable(irq)
	if !ok {
		return fmt.Errorf("%w: disable %s", ErrNotSupported, irq)
	}
	s.SHCSR.Clear(f)
	return nil
}

// FaultEnabled reports whether a configurable fault handler is enabled.
// Other exceptions are always enabled.
func (s *SCB) FaultEnabled(irq IRQ) bool {
	f, ok := faultEnable(irq)
	if !ok {
		return true
	}
	return reg.Get(s.SHCSR, f)
}

// ActiveVector returns the exception number currently executing, 0 in thread
// mode.
func (s *SCB) ActiveVector() int {
	return int(reg.Get(s.ICSR, vectActive))
}

// PendingVector returns the highest priority pending exception number.
func (s *SCB) PendingVector() int {
	return int(reg.Get(s.ICSR, vectPending))
}

// VectorTableOffset returns the address of the active vector table.
func (s *SCB) VectorTableOffset() uint32 {
	return reg.Get(s.VTOR, tblOff) << 7
}

// Relocate points the core at a vector table at addr, which must be 128-byte
// aligned.
func (s *SCB) Relocate(addr uint32) error {
	if addr&0x7F != 0 {
		return fmt.Errorf("%w: %#08x", ErrVTORAlign, addr)
	}
	s.VTOR.Write(tblOff.To(addr >> 7))
	return nil
}

// PriorityGrouping returns the AIRCR PRIGROUP split point.
func (s *SCB) PriorityGrouping() uint8 {
	return reg.Get(s.AIRCR, priGroup)
}

// SetPriorityGrouping sets the PRIGROUP split between group priority and
// subpriority.
func (s *SCB) SetPriorityGrouping(group uint8) {
	s.AIRCR.Write(vectKeyField.To(vectKey), priGroup.To(group&7))
}

// SystemReset requests a system reset, keeping the priority grouping.
func (s *SCB) SystemReset() {
	group := reg.Get(s.AIRCR, priGroup)
	s.AIRCR.Write(vectKeyField.To(vectKey), priGroup.To(group), sysResetReq.To(true))
}
