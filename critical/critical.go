// Package critical provides scoped interrupt masking. A Section with ceiling
// 0 disables interrupts globally through PRIMASK; a non-zero ceiling raises
// BASEPRI so that only interrupts of strictly higher priority preempt.
//
// Guards save the mask state they find on entry and only undo what they
// changed themselves, so sections nest:
//
//	g := sec.Enter()
//	defer g.Exit()
package critical

import "fmt"

// Core is the interrupt mask state of one processor.
type Core interface {
	// InterruptsDisabled reports whether PRIMASK is set.
	InterruptsDisabled() bool
	DisableInterrupts()
	EnableInterrupts()

	// BasePri returns BASEPRI. Zero means no priority masking.
	BasePri() uint8
	SetBasePri(v uint8)

	// PriorityBits is the number of implemented priority bits, counted from
	// bit 7 down.
	PriorityBits() uint8
}

// Section is a reusable critical section configuration.
type Section struct {
	core    Core
	ceiling uint8
}

// NewSection returns a section masking every interrupt whose priority value
// is ceiling or greater. A ceiling of 0 masks all interrupts.
func NewSection(core Core, ceiling uint8) (*Section, error) {
	if err := checkCeiling(core.PriorityBits(), ceiling); err != nil {
		return nil, err
	}
	return &Section{core: core, ceiling: ceiling}, nil
}

// MustSection is like NewSection but panics on error.
func MustSection(core Core, ceiling uint8) *Section {
	s, err := NewSection(core, ceiling)
	if err != nil {
		panic(err)
	}
	return s
}

func checkCeiling(bits, ceiling uint8) error {
	if bits == 0 || bits > 8 {
		return fmt.Errorf("%w: %d priority bits", ErrPriorityBits, bits)
	}
	unused := uint8(0xFF) >> bits
	if ceiling&unused != 0 {
		return fmt.Errorf("%w: %#02x uses bits below the %d implemented", ErrCeiling, ceiling, bits)
	}
	return nil
}

// Ceiling returns the section's priority ceiling.
func (s *Section) Ceiling() uint8 { return s.ceiling }

// Global reports whether the section disables all interrupts.
func (s *Section) Global() bool { return s.ceiling == 0 }

// Guard returns a guard in the Created state.
func (s *Section) Guard() *Guard {
	return &Guard{section: s}
}

// Enter masks interrupts and returns the active guard.
func (s *Section) Enter() *Guard {
	return s.Guard().Enter()
}

// Do runs fn with interrupts masked. The mask is restored even if fn panics.
func (s *Section) Do(fn func()) {
	g := s.Enter()
	defer g.Exit()
	fn()
}
