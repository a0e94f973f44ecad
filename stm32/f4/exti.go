package f4

import (
	"fmt"

	"omibyte.io/stm32hal/cortexm"
	"omibyte.io/stm32hal/mmio"
	"omibyte.io/stm32hal/reg"
)

// EXTIBase is the address of the external interrupt controller.
const EXTIBase = 0x40013C00

// Line is an EXTI line. Lines 0 to 15 follow the GPIO pin selected in SYSCFG,
// the rest are wired to internal events.
type Line uint8

// NumLines is the number of EXTI lines.
const NumLines = 23

func (l Line) check() {
	if l >= NumLines {
		panic(fmt.Errorf("%w: %d", ErrLineRange, l))
	}
}

// IRQ returns the interrupt the line is delivered through.
func (l Line) IRQ() IRQ {
	l.check()
	switch {
	case l <= 4:
		return EXTI0 + IRQ(l)
	case l <= 9:
		return EXTI9_5
	case l <= 15:
		return EXTI15_10
	}
	return internalLines[l-16]
}

var internalLines = [...]IRQ{PVD, RTCAlarm, OTGFSWakeup, ETHWakeup, OTGHSWakeup, TampStamp, RTCWakeup}

// Edge selects the signal edges a line triggers on.
type Edge uint8

const (
	Rising Edge = 1 << iota
	Falling

	Both = Rising | Falling
)

type (
	imr   struct{}
	emr   struct{}
	rtsr  struct{}
	ftsr  struct{}
	swier struct{}
	pr    struct{}
)

func lineFlags[T any, F any](t *reg.Table[T], prefix string, declare func(t *reg.Table[T], name string, pos reg.Pos, opts ...reg.FieldOption) F) []F {
	return perPin(NumLines, func(i int) F {
		return declare(t, fmt.Sprintf("%s%d", prefix, i), reg.Pos(i))
	})
}

var (
	imrTable = reg.NewTable[imr](mmio.Width32)
	imrLine  = lineFlags(imrTable, "MR", reg.NewRWFlag[imr])

	emrTable = reg.NewTable[emr](mmio.Width32)
	emrLine  = lineFlags(emrTable, "MR", reg.NewRWFlag[emr])

	rtsrTable = reg.NewTable[rtsr](mmio.Width32)
	rtsrLine  = lineFlags(rtsrTable, "TR", reg.NewRWFlag[rtsr])

	ftsrTable = reg.NewTable[ftsr](mmio.Width32)
	ftsrLine  = lineFlags(ftsrTable, "TR", reg.NewRWFlag[ftsr])

	swierTable = reg.NewTable[swier](mmio.Width32)
	swierLine  = lineFlags(swierTable, "SWIER", reg.NewRWFlag[swier])

	prTable = reg.NewTable[pr](mmio.Width32)
	prLine  = lineFlags(prTable, "PR", reg.NewRC1Flag[pr])
)

// Exti is the external interrupt and event controller.
type Exti struct {
	IMR   *reg.Register[imr]
	EMR   *reg.Register[emr]
	RTSR  *reg.Register[rtsr]
	FTSR  *reg.Register[ftsr]
	SWIER *reg.Register[swier]
	// PR reads the pending lines; writing 1 clears a line.
	PR *reg.Register[pr]
}

var EXTI = MustExti(mmio.Hardware)

// NewExti declares the EXTI registers on bus.
func NewExti(bus mmio.Bus) (*Exti, error) {
	var (
		e   Exti
		err error
	)
	if e.IMR, err = reg.Declare("EXTI_IMR", bus, EXTIBase, 0x00, imrTable); err != nil {
		return nil, err
	}
	if e.EMR, err = reg.Declare("EXTI_EMR", bus, EXTIBase, 0x04, emrTable); err != nil {
		return nil, err
	}
	if e.RTSR, err = reg.Declare("EXTI_RTSR", bus, EXTIBase, 0x08, rtsrTable); err != nil {
		return nil, err
	}
	if e.FTSR, err = reg.Declare("EXTI_FTSR", bus, EXTIBase, 0x0C, ftsrTable); err != nil {
		return nil, err
	}
	if e.SWIER, err = reg.Declare("EXTI_SWIER", bus, EXTIBase, 0x10, swierTable); err != nil {
		return nil, err
	}
	if e.PR, err = reg.Declare("EXTI_PR", bus, EXTIBase, 0x14, prTable); err != nil {
		return nil, err
	}
	return &e, nil
}

// MustExti is like NewExti but panics on error.
func MustExti(bus mmio.Bus) *Exti {
	e, err := NewExti(bus)
	if err != nil {
		panic(err)
	}
	return e
}

// EnableInterrupt unmasks the interrupt request of line.
func (e *Exti) EnableInterrupt(l Line) {
	l.check()
	e.IMR.Set(imrLine[l])
}

// DisableInterrupt masks the interrupt request of line.
func (e *Exti) DisableInterrupt(l Line) {
	l.check()
	e.IMR.Clear(imrLine[l])
}

// InterruptEnabled reports whether the interrupt request of line is unmasked.
func (e *Exti) InterruptEnabled(l Line) bool {
	l.check()
	return reg.Get(e.IMR, imrLine[l])
}

// EnableEvent unmasks the event request of line.
func (e *Exti) EnableEvent(l Line) {
	l.check()
	e.EMR.Set(emrLine[l])
}

// DisableEvent masks the event request of line.
func (e *Exti) DisableEvent(l Line) {
	l.check()
	e.EMR.Clear(emrLine[l])
}

// SetTrigger selects the edges line triggers on. Edges left out are
// disabled.
func (e *Exti) SetTrigger(l Line, edge Edge) {
	l.check()
	e.RTSR.Write(rtsrLine[l].To(edge&Rising != 0))
	e.FTSR.Write(ftsrLine[l].To(edge&Falling != 0))
}

// Trigger returns the edges line triggers on.
func (e *Exti) Trigger(l Line) Edge {
	l.check()
	var edge Edge
	if reg.Get(e.RTSR, rtsrLine[l]) {
		edge |= Rising
	}
	if reg.Get(e.FTSR, ftsrLine[l]) {
		edge |= Falling
	}
	return edge
}

// Generate raises a software request on line. It sets the pending bit if
// the line is unmasked.
func (e *Exti) Generate(l Line) {
	l.check()
	e.SWIER.Set(swierLine[l])
}

// IsPending reports whether line has a pending request.
func (e *Exti) IsPending(l Line) bool {
	l.check()
	return reg.Get(e.PR, prLine[l])
}

// Pending returns the pending bits of every line.
func (e *Exti) Pending() uint32 {
	return e.PR.Load() & (1<<NumLines - 1)
}

// ClearPending acknowledges every line in one store. Other pending lines are
// left alone.
func (e *Exti) ClearPending(lines ...Line) {
	flags := make([]reg.Settable[pr], len(lines))
	for i, l := range lines {
		l.check()
		flags[i] = prLine[l]
	}
	e.PR.Set(flags...)
}

// ConfigurePin routes pin of port onto its EXTI line, selects the trigger
// edges and unmasks the interrupt request. It returns the interrupt to enable
// in the NVIC.
func (e *Exti) ConfigurePin(s *SysCfg, port Port, pin Pin, edge Edge) cortexm.IRQ {
	s.SetSource(pin, port)
	l := Line(pin)
	e.SetTrigger(l, edge)
	e.EnableInterrupt(l)
	return l.IRQ().IRQ()
}
