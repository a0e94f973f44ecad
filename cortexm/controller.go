package cortexm

import (
	"omibyte.io/stm32hal/critical"
	"omibyte.io/stm32hal/mmio"
)

// Controller ties the vector table to the NVIC so that installing a handler
// and enabling its interrupt is one step.
type Controller struct {
	NVIC    *NVIC
	SCB     *SCB
	Vectors *VectorTable

	section *critical.Section
}

// NewController declares the NVIC and SCB on bus, sized for vectors.
// Handler installation is guarded by a global critical section on core.
func NewController(bus mmio.Bus, vectors *VectorTable, core critical.Core) (*Controller, error) {
	scb, err := NewSCB(bus)
	if err != nil {
		return nil, err
	}
	nvic, err := NewNVIC(bus, vectors.IRQs(), scb)
	if err != nil {
		return nil, err
	}
	section, err := critical.NewSection(core, 0)
	if err != nil {
		return nil, err
	}
	return &Controller{NVIC: nvic, SCB: scb, Vectors: vectors, section: section}, nil
}

// Attach installs h for irq and then enables irq. Configurable faults are
// enabled through SHCSR; other system exceptions are always enabled.
func (c *Controller) Attach(irq IRQ, h Handler) error {
	var err error
	c.section.Do(func() {
		err = c.Vectors.Override(irq, h)
	})
	if err != nil {
		return err
	}

	if !irq.System() {
		c.NVIC.Enable(irq)
	} else if _, ok := faultEnable(irq); ok {
		return c.SCB.EnableFault(irq)
	}
	return nil
}

// Detach disables irq and puts its slot back on the fallback.
func (c *Controller) Detach(irq IRQ) error {
	if _, err := c.Vectors.slot(irq); err != nil {
		return err
	}

	if !irq.System() {
		c.NVIC.Disable(irq)
		c.NVIC.ClearPending(irq)
	} else if _, ok := faultEnable(irq); ok {
		if err := c.SCB.DisableFault(irq); err != nil {
			return err
		}
	}

	var err error
	c.section.Do(func() {
		err = c.Vectors.Restore(irq)
	})
	return err
}

// Deliver runs the handler of irq if the interrupt is enabled and pending,
// clearing the pending state first as the core does on entry. It reports
// whether a handler ran. It stands in for exception entry on simulated buses.
func (c *Controller) Deliver(irq IRQ) bool {
	if irq.System() || !c.NVIC.IsEnabled(irq) || !c.NVIC.IsPending(irq) {
		return false
	}
	c.NVIC.ClearPending(irq)
	c.Vectors.Dispatch(irq)
	return true
}
