//go:build tinygo && cortexm

package critical

import "device/arm"

type cortexM struct {
	bits uint8
}

// CortexM returns the Core of the running Cortex-M processor. STM32F4 parts
// implement 4 priority bits.
func CortexM(priorityBits uint8) Core {
	return cortexM{bits: priorityBits}
}

func (cortexM) InterruptsDisabled() bool {
	return arm.AsmFull("mrs {}, PRIMASK", nil)&1 != 0
}

func (cortexM) DisableInterrupts() { arm.Asm("cpsid i") }
func (cortexM) EnableInterrupts()  { arm.Asm("cpsie i") }

func (cortexM) BasePri() uint8 {
	return uint8(arm.AsmFull("mrs {}, BASEPRI", nil))
}

func (cortexM) SetBasePri(v uint8) {
	arm.AsmFull("msr BASEPRI, {value}", map[string]interface{}{
		"value": uint32(v),
	})
}

func (c cortexM) PriorityBits() uint8 { return c.bits }
