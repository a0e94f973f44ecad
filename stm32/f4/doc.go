// Package f4 holds register tables for a few STM32F4 peripherals: GPIO ports,
// the SYSCFG external interrupt source selectors and the EXTI controller,
// together with the device interrupt numbers of the STM32F405/407 line.
//
// The package level peripherals (GPIOA, SYSCFG, EXTI, ...) sit on
// mmio.Hardware. Constructors taking a bus build the same peripherals on a
// simulated address space:
//
//	mem := mmio.NewMemory()
//	f4.Model(mem)
//	port, _ := f4.NewGPIO(mem, f4.PortA)
//	port.SetMode(f4.Output, 5)
//	port.Set(5)
package f4
