// Package cortexm drives the Cortex-M interrupt machinery: the NVIC and SCB
// registers, declared on top of package reg, and the vector table the core
// dispatches through.
package cortexm

import "strconv"

// IRQ is an interrupt number in CMSIS numbering: device interrupts count up
// from 0, system exceptions are negative.
type IRQ int16

const (
	Reset            IRQ = -15
	NonMaskableInt   IRQ = -14
	HardFault        IRQ = -13
	MemoryManagement IRQ = -12
	BusFault         IRQ = -11
	UsageFault       IRQ = -10
	SVCall           IRQ = -5
	DebugMonitor     IRQ = -4
	PendSV           IRQ = -2
	SysTick          IRQ = -1
)

// MaxIRQs is the largest number of device interrupts an NVIC supports.
const MaxIRQs = 240

// SystemExceptions is the number of vector table slots ahead of the first
// device interrupt, the initial stack pointer included.
const SystemExceptions = 16

var systemNames = map[IRQ]string{
	Reset:            "Reset",
	NonMaskableInt:   "NMI",
	HardFault:        "HardFault",
	MemoryManagement: "MemManage",
	BusFault:         "BusFault",
	UsageFault:       "UsageFault",
	SVCall:           "SVC",
	DebugMonitor:     "DebugMon",
	PendSV:           "PendSV",
	SysTick:          "SysTick",
}

// Exception returns the exception number, which is also the vector table
// slot.
func (i IRQ) Exception() int { return int(i) + SystemExceptions }

// System reports whether i names a system exception.
func (i IRQ) System() bool { return i < 0 }

func (i IRQ) String() string {
	if n, ok := systemNames[i]; ok {
		return n
	}
	return "IRQ" + strconv.Itoa(int(i))
}
