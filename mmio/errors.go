package mmio

import "errors"

var (
	ErrWidth     = errors.New("unsupported access width")
	ErrUnaligned = errors.New("unaligned access")
	ErrOutside   = errors.New("address outside mapped window")
)
