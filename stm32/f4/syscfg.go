package f4

import (
	"fmt"

	"omibyte.io/stm32hal/mmio"
	"omibyte.io/stm32hal/reg"
)

// SYSCFGBase is the address of the system configuration controller.
const SYSCFGBase = 0x40013800

type exticr struct{}

var (
	exticrTable = reg.NewTable[exticr](mmio.Width32)
	extiSource  = perPin(4, func(i int) reg.RW[exticr, Port] {
		return reg.NewRW[Port](exticrTable, fmt.Sprintf("EXTI%d", i), reg.Pos(4*i), 4)
	})
)

// SysCfg is the part of the system configuration controller that routes GPIO
// pins onto EXTI lines. EXTICR1..4 each hold four port selectors: line n is
// selected in EXTICR(n/4+1) at bit 4*(n%4).
type SysCfg struct {
	EXTICR *reg.Bank[exticr, reg.RW[exticr, Port]]
}

var SYSCFG = MustSysCfg(mmio.Hardware)

// NewSysCfg declares the EXTICR registers on bus.
func NewSysCfg(bus mmio.Bus) (*SysCfg, error) {
	b, err := reg.NewBank("SYSCFG_EXTICR", bus, reg.BankLayout{Base: SYSCFGBase, Offset: 0x08, Stride: 4, Count: 4},
		exticrTable, extiSource, reg.Strided{Fields: 4, Stride: 4})
	if err != nil {
		return nil, err
	}
	return &SysCfg{EXTICR: b}, nil
}

// MustSysCfg is like NewSysCfg but panics on error.
func MustSysCfg(bus mmio.Bus) *SysCfg {
	s, err := NewSysCfg(bus)
	if err != nil {
		panic(err)
	}
	return s
}

// SetSource routes pin of port onto the EXTI line with the pin's number.
func (s *SysCfg) SetSource(pin Pin, port Port) {
	pin.check()
	if port >= NumPorts {
		panic(fmt.Errorf("%w: %d", ErrPortRange, uint8(port)))
	}
	r, f := s.EXTICR.At(int(pin))
	r.Write(f.To(port))
}

// Source returns the port routed onto the EXTI line of pin.
func (s *SysCfg) Source(pin Pin) Port {
	pin.check()
	r, f := s.EXTICR.At(int(pin))
	return reg.Get(r, f)
}
