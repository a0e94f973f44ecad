package f4

import "errors"

var (
	ErrPinRange  = errors.New("pin out of range")
	ErrLineRange = errors.New("EXTI line out of range")
	ErrPortRange = errors.New("GPIO port out of range")
)
