package f4

import "omibyte.io/stm32hal/mmio"

// Model installs the store behaviour of the tables in this package on a
// simulated bus: BSRR drives the output latch of its port and EXTI_PR clears
// on write 1.
func Model(mem *mmio.Memory) {
	for p := Port(0); p < NumPorts; p++ {
		mem.OnStore(p.Base()+0x18, p.Base()+0x14, func(cur, v uint32) uint32 {
			cur &^= v >> PinsPerPort
			return cur | v&0xFFFF
		})
	}
	mem.ClearOnWrite1(EXTIBase+0x14, EXTIBase+0x14)
}
