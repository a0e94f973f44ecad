package critical

import "errors"

var (
	ErrCeiling      = errors.New("priority ceiling not representable")
	ErrPriorityBits = errors.New("invalid number of priority bits")
)
