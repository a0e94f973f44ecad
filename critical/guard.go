package critical

// State is the life cycle stage of a Guard.
type State uint8

const (
	Created State = iota
	Active
	Destroyed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Active:
		return "active"
	case Destroyed:
		return "destroyed"
	}
	return "invalid"
}

// Guard is one entry into a Section.
type Guard struct {
	section *Section
	state   State

	// disabled is PRIMASK as found on entry, basepri BASEPRI as found on entry.
	disabled bool
	basepri  uint8
}

// Enter captures the current mask state and masks interrupts. It has no
// effect unless the guard is in the Created state.
func (g *Guard) Enter() *Guard {
	if g.state != Created {
		return g
	}
	core := g.section.core
	if g.section.Global() {
		g.disabled = core.InterruptsDisabled()
		if !g.disabled {
			core.DisableInterrupts()
		}
	} else {
		g.basepri = core.BasePri()
		// A stricter ceiling already in place is kept.
		if g.basepri == 0 || g.section.ceiling < g.basepri {
			core.SetBasePri(g.section.ceiling)
		}
	}
	g.state = Active
	return g
}

// Exit unmasks what Enter masked, unless an enclosing section had already
// masked it. Exit is idempotent.
func (g *Guard) Exit() {
	if g.state != Active {
		g.state = Destroyed
		return
	}
	core := g.section.core
	if g.section.Global() {
		if !g.disabled {
			core.EnableInterrupts()
		}
	} else if g.basepri == 0 {
		// Nested ceiling guards leave BASEPRI to the outermost one.
		core.SetBasePri(0)
	}
	g.state = Destroyed
}

// State returns the guard's life cycle stage.
func (g *Guard) State() State { return g.state }
