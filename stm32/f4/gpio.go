package f4

import (
	"fmt"

	"omibyte.io/stm32hal/mmio"
	"omibyte.io/stm32hal/reg"
)

// GPIOBase is the address of GPIOA. Ports follow every 0x400 bytes.
const GPIOBase = 0x40020000

// Port selects a GPIO port.
type Port uint8

const (
	PortA Port = iota
	PortB
	PortC
	PortD
	PortE
	PortF
	PortG
	PortH
	PortI

	NumPorts = iota
)

// Base returns the address of the port's register block.
func (p Port) Base() uintptr { return GPIOBase + uintptr(p)*0x400 }

func (p Port) String() string {
	if p >= NumPorts {
		return fmt.Sprintf("Port(%d)", uint8(p))
	}
	return "GPIO" + string(rune('A'+p))
}

// Pin is a pin number within a port, which is also its EXTI line.
type Pin uint8

// PinsPerPort is the number of pins of every port.
const PinsPerPort = 16

func (p Pin) check() {
	if p >= PinsPerPort {
		panic(fmt.Errorf("%w: %d", ErrPinRange, p))
	}
}

// Mode is the MODER setting of a pin.
type Mode uint8

const (
	Input Mode = iota
	Output
	AltFunction
	Analog
)

// OutputType is the OTYPER setting of a pin.
type OutputType uint8

const (
	PushPull OutputType = iota
	OpenDrain
)

// Speed is the OSPEEDR setting of a pin.
type Speed uint8

const (
	LowSpeed Speed = iota
	MediumSpeed
	HighSpeed
	VeryHighSpeed
)

// Pull is the PUPDR setting of a pin.
type Pull uint8

const (
	NoPull Pull = iota
	PullUp
	PullDown
)

// AltFunc selects one of the sixteen alternate functions of a pin.
type AltFunc uint8

const (
	AF0 AltFunc = iota
	AF1
	AF2
	AF3
	AF4
	AF5
	AF6
	AF7
	AF8
	AF9
	AF10
	AF11
	AF12
	AF13
	AF14
	AF15
)

type (
	moder   struct{}
	otyper  struct{}
	ospeedr struct{}
	pupdr   struct{}
	idr     struct{}
	odr     struct{}
	bsrr    struct{}
	lckr    struct{}
	afr     struct{}
)

func perPin[F any](n int, declare func(i int) F) []F {
	fs := make([]F, n)
	for i := range fs {
		fs[i] = declare(i)
	}
	return fs
}

var (
	moderTable = reg.NewTable[moder](mmio.Width32)
	moderPin   = perPin(PinsPerPort, func(i int) reg.RW[moder, Mode] {
		return reg.NewRW[Mode](moderTable, fmt.Sprintf("MODER%d", i), reg.Pos(2*i), 2)
	})

	otyperTable = reg.NewTable[otyper](mmio.Width32)
	otyperPin   = perPin(PinsPerPort, func(i int) reg.RW[otyper, OutputType] {
		return reg.NewRW[OutputType](otyperTable, fmt.Sprintf("OT%d", i), reg.Pos(i), 1)
	})

	ospeedrTable = reg.NewTable[ospeedr](mmio.Width32)
	ospeedrPin   = perPin(PinsPerPort, func(i int) reg.RW[ospeedr, Speed] {
		return reg.NewRW[Speed](ospeedrTable, fmt.Sprintf("OSPEEDR%d", i), reg.Pos(2*i), 2)
	})

	pupdrTable = reg.NewTable[pupdr](mmio.Width32)
	pupdrPin   = perPin(PinsPerPort, func(i int) reg.RW[pupdr, Pull] {
		return reg.NewRW[Pull](pupdrTable, fmt.Sprintf("PUPDR%d", i), reg.Pos(2*i), 2)
	})

	idrTable = reg.NewTable[idr](mmio.Width32)
	idrPin   = perPin(PinsPerPort, func(i int) reg.ROFlag[idr] {
		return reg.NewROFlag(idrTable, fmt.Sprintf("IDR%d", i), reg.Pos(i))
	})

	odrTable = reg.NewTable[odr](mmio.Width32)
	odrPin   = perPin(PinsPerPort, func(i int) reg.RWFlag[odr] {
		return reg.NewRWFlag(odrTable, fmt.Sprintf("ODR%d", i), reg.Pos(i))
	})

	bsrrTable = reg.NewTable[bsrr](mmio.Width32)
	bsrrSet   = perPin(PinsPerPort, func(i int) reg.WOFlag[bsrr] {
		return reg.NewWOFlag(bsrrTable, fmt.Sprintf("BS%d", i), reg.Pos(i))
	})
	bsrrReset = perPin(PinsPerPort, func(i int) reg.WOFlag[bsrr] {
		return reg.NewWOFlag(bsrrTable, fmt.Sprintf("BR%d", i), reg.Pos(PinsPerPort+i))
	})

	lckrTable = reg.NewTable[lckr](mmio.Width32)
	lckrPin   = perPin(PinsPerPort, func(i int) reg.RWFlag[lckr] {
		return reg.NewRWFlag(lckrTable, fmt.Sprintf("LCK%d", i), reg.Pos(i))
	})
	lckrKey = reg.NewRWFlag(lckrTable, "LCKK", 16)

	afrTable = reg.NewTable[afr](mmio.Width32)
	afrPin   = perPin(8, func(i int) reg.RW[afr, AltFunc] {
		return reg.NewRW[AltFunc](afrTable, fmt.Sprintf("AFR%d", i), reg.Pos(4*i), 4)
	})
)

// GPIO is the register block of one port.
type GPIO struct {
	Port    Port
	MODER   *reg.Register[moder]
	OTYPER  *reg.Register[otyper]
	OSPEEDR *reg.Register[ospeedr]
	PUPDR   *reg.Register[pupdr]
	IDR     *reg.Register[idr]
	ODR     *reg.Register[odr]
	BSRR    *reg.Register[bsrr]
	LCKR    *reg.Register[lckr]
	// AFR is AFRL followed by AFRH, eight four bit selectors each.
	AFR *reg.Bank[afr, reg.RW[afr, AltFunc]]
}

var (
	GPIOA = MustGPIO(mmio.Hardware, PortA)
	GPIOB = MustGPIO(mmio.Hardware, PortB)
	GPIOC = MustGPIO(mmio.Hardware, PortC)
	GPIOD = MustGPIO(mmio.Hardware, PortD)
	GPIOE = MustGPIO(mmio.Hardware, PortE)
	GPIOF = MustGPIO(mmio.Hardware, PortF)
	GPIOG = MustGPIO(mmio.Hardware, PortG)
	GPIOH = MustGPIO(mmio.Hardware, PortH)
	GPIOI = MustGPIO(mmio.Hardware, PortI)
)

// NewGPIO declares the registers of port p on bus.
func NewGPIO(bus mmio.Bus, p Port) (*GPIO, error) {
	if p >= NumPorts {
		return nil, fmt.Errorf("%w: %d", ErrPortRange, uint8(p))
	}
	base := p.Base()
	name := p.String() + "_"

	var (
		g   = &GPIO{Port: p}
		err error
	)
	if g.MODER, err = reg.Declare(name+"MODER", bus, base, 0x00, moderTable); err != nil {
		return nil, err
	}
	if g.OTYPER, err = reg.Declare(name+"OTYPER", bus, base, 0x04, otyperTable); err != nil {
		return nil, err
	}
	if g.OSPEEDR, err = reg.Declare(name+"OSPEEDR", bus, base, 0x08, ospeedrTable); err != nil {
		return nil, err
	}
	if g.PUPDR, err = reg.Declare(name+"PUPDR", bus, base, 0x0C, pupdrTable); err != nil {
		return nil, err
	}
	if g.IDR, err = reg.Declare(name+"IDR", bus, base, 0x10, idrTable); err != nil {
		return nil, err
	}
	if g.ODR, err = reg.Declare(name+"ODR", bus, base, 0x14, odrTable); err != nil {
		return nil, err
	}
	if g.BSRR, err = reg.Declare(name+"BSRR", bus, base, 0x18, bsrrTable); err != nil {
		return nil, err
	}
	if g.LCKR, err = reg.Declare(name+"LCKR", bus, base, 0x1C, lckrTable); err != nil {
		return nil, err
	}
	g.AFR, err = reg.NewBank(name+"AFR", bus, reg.BankLayout{Base: base, Offset: 0x20, Stride: 4, Count: 2},
		afrTable, afrPin, reg.Strided{Fields: 8, Stride: 4})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// MustGPIO is like NewGPIO but panics on error.
func MustGPIO(bus mmio.Bus, p Port) *GPIO {
	g, err := NewGPIO(bus, p)
	if err != nil {
		panic(err)
	}
	return g
}

func valsOf[T any](pins []Pin, val func(p Pin) reg.Val[T]) []reg.Val[T] {
	vals := make([]reg.Val[T], len(pins))
	for i, p := range pins {
		p.check()
		vals[i] = val(p)
	}
	return vals
}

// SetMode sets the mode of every pin in one write.
func (g *GPIO) SetMode(mode Mode, pins ...Pin) {
	g.MODER.Write(valsOf(pins, func(p Pin) reg.Val[moder] { return moderPin[p].To(mode) })...)
}

// Mode returns the mode of pin.
func (g *GPIO) Mode(pin Pin) Mode {
	pin.check()
	return reg.Get(g.MODER, moderPin[pin])
}

// SetOutputType sets the output driver of every pin in one write.
func (g *GPIO) SetOutputType(t OutputType, pins ...Pin) {
	g.OTYPER.Write(valsOf(pins, func(p Pin) reg.Val[otyper] { return otyperPin[p].To(t) })...)
}

// SetSpeed sets the slew rate of every pin in one write.
func (g *GPIO) SetSpeed(s Speed, pins ...Pin) {
	g.OSPEEDR.Write(valsOf(pins, func(p Pin) reg.Val[ospeedr] { return ospeedrPin[p].To(s) })...)
}

// SetPull sets the pull resistor of every pin in one write.
func (g *GPIO) SetPull(pull Pull, pins ...Pin) {
	g.PUPDR.Write(valsOf(pins, func(p Pin) reg.Val[pupdr] { return pupdrPin[p].To(pull) })...)
}

// Pull returns the pull resistor setting of pin.
func (g *GPIO) Pull(pin Pin) Pull {
	pin.check()
	return reg.Get(g.PUPDR, pupdrPin[pin])
}

// Setup sets the mode and the pull resistor of every pin.
func (g *GPIO) Setup(mode Mode, pull Pull, pins ...Pin) {
	g.SetMode(mode, pins...)
	g.SetPull(pull, pins...)
}

// SetAltFunc selects the alternate function of every pin. Pins sharing an
// AFR register are written together.
func (g *GPIO) SetAltFunc(af AltFunc, pins ...Pin) {
	var regs [2][]reg.Val[afr]
	for _, p := range pins {
		p.check()
		loc := g.AFR.Policy().Locate(int(p))
		_, f := g.AFR.At(int(p))
		regs[loc.Group] = append(regs[loc.Group], f.To(af))
	}
	for k, vals := range regs {
		if len(vals) > 0 {
			g.AFR.Register(k).Write(vals...)
		}
	}
}

// AltFunc returns the alternate function selected for pin.
func (g *GPIO) AltFunc(pin Pin) AltFunc {
	pin.check()
	r, f := g.AFR.At(int(pin))
	return reg.Get(r, f)
}

// Set drives every pin high through BSRR, without reading the port.
func (g *GPIO) Set(pins ...Pin) {
	flags := make([]reg.Settable[bsrr], len(pins))
	for i, p := range pins {
		p.check()
		flags[i] = bsrrSet[p]
	}
	g.BSRR.Set(flags...)
}

// Reset drives every pin low through BSRR, without reading the port.
func (g *GPIO) Reset(pins ...Pin) {
	flags := make([]reg.Settable[bsrr], len(pins))
	for i, p := range pins {
		p.check()
		flags[i] = bsrrReset[p]
	}
	g.BSRR.Set(flags...)
}

// Toggle inverts the output latch of every pin.
func (g *GPIO) Toggle(pins ...Pin) {
	fields := make([]reg.Modifiable[odr], len(pins))
	for i, p := range pins {
		p.check()
		fields[i] = odrPin[p]
	}
	g.ODR.WriteGroup(g.ODR.Capture(fields...).Complement())
}

// Get reports the input level of pin.
func (g *GPIO) Get(pin Pin) bool {
	pin.check()
	return reg.Get(g.IDR, idrPin[pin])
}

// Output reports the output latch of pin.
func (g *GPIO) Output(pin Pin) bool {
	pin.check()
	return reg.Get(g.ODR, odrPin[pin])
}

// Input returns the input levels of the whole port.
func (g *GPIO) Input() uint16 {
	return uint16(g.IDR.Load())
}

// Lock freezes the configuration of pins until the next reset. It runs the
// LCKK write sequence and reports whether the lock took hold.
func (g *GPIO) Lock(pins ...Pin) bool {
	var locked [PinsPerPort]bool
	for _, p := range pins {
		p.check()
		locked[p] = true
	}
	vals := make([]reg.Val[lckr], PinsPerPort+1)
	for i, f := range lckrPin {
		vals[i] = f.To(locked[i])
	}
	seq := func(key bool) {
		vals[PinsPerPort] = lckrKey.To(key)
		g.LCKR.Write(vals...)
	}
	seq(true)
	seq(false)
	seq(true)
	g.LCKR.Load()
	return reg.Get(g.LCKR, lckrKey)
}
