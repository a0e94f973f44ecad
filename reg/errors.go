package reg

import "errors"

var (
	ErrOverlap        = errors.New("field overlaps an earlier field")
	ErrWidth          = errors.New("field exceeds register width")
	ErrEmpty          = errors.New("field has zero length")
	ErrDuplicate      = errors.New("duplicate field name")
	ErrValueTooNarrow = errors.New("value type narrower than field")
	ErrAlign          = errors.New("register address not aligned to its width")
	ErrIndexRange     = errors.New("index out of range")
	ErrPolicy         = errors.New("field list does not match index policy")
)
