package cortexm

import "errors"

var (
	ErrIRQRange      = errors.New("interrupt number out of range")
	ErrTooManyIRQs   = errors.New("more device interrupts than the NVIC supports")
	ErrReservedSlot  = errors.New("vector table slot is reserved")
	ErrNilHandler    = errors.New("nil handler")
	ErrFixedPriority = errors.New("exception has a fixed priority")
	ErrNotSupported  = errors.New("operation not supported for this exception")
	ErrUnresolved    = errors.New("unresolved handler symbol")
	ErrVTORAlign     = errors.New("vector table address not aligned")
)
