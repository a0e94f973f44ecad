package pkg

import "errors"

// Tooling errors.
var (
	// ErrUnsupportedDevice indicates a device description the generator has no
	// backend for.
	ErrUnsupportedDevice = errors.New("unsupported device")

	// ErrUnknownTarget indicates a series or chip missing from the target
	// catalogue.
	ErrUnknownTarget = errors.New("unknown target")

	// ErrDerivedCycle indicates peripherals deriving from each other in a loop.
	ErrDerivedCycle = errors.New("cyclic derivedFrom chain")

	// ErrMissingBase indicates a derivedFrom reference to a peripheral that does
	// not exist.
	ErrMissingBase = errors.New("derivedFrom names an unknown peripheral")

	// ErrNoModule indicates that no go.mod was found above an output directory.
	ErrNoModule = errors.New("no go.mod found")
)
