package cortexm

import "omibyte.io/stm32hal/mmio"

// Model installs the store behaviour of the NVIC and SCB registers on a
// simulated bus: set-enable and set-pending words read back through their
// clear counterparts, ICSR set and clear bits act on the pend flags and
// AIRCR ignores writes without the key.
func Model(mem *mmio.Memory, irqs int) {
	for k := 0; k < (irqs+31)/32; k++ {
		off := uintptr(4 * k)
		pair(mem, NVICBase+0x000+off, NVICBase+0x080+off)
		pair(mem, NVICBase+0x100+off, NVICBase+0x180+off)
	}

	const (
		icsrAddr  = SCBBase + 0x04
		aircrAddr = SCBBase + 0x0C

		nmiPend = 1 << 31
		svSet   = 1 << 28
		svClr   = 1 << 27
		stSet   = 1 << 26
		stClr   = 1 << 25
	)
	mem.OnStore(icsrAddr, icsrAddr, func(cur, v uint32) uint32 {
		cur |= v & (nmiPend | svSet | stSet)
		if v&svClr != 0 {
			cur &^= svSet
		}
		if v&stClr != 0 {
			cur &^= stSet
		}
		return cur
	})

	mem.Poke(aircrAddr, 0xFA050000)
	mem.OnStore(aircrAddr, aircrAddr, func(cur, v uint32) uint32 {
		if v>>16 != vectKey {
			return cur
		}
		return 0xFA050000 | v&0x700
	})
}

func pair(mem *mmio.Memory, set, clear uintptr) {
	mem.SetOnWrite1(set, set)
	mem.ClearOnWrite1(clear, set)
	mem.Mirror(clear, set)
}
