package reg

import "golang.org/x/exp/slices"

// Group is an ordered set of field values written as one transaction.
type Group[T any] struct {
	vals []Val[T]
}

// GroupOf builds a group from vals, keeping their order.
func GroupOf[T any](vals ...Val[T]) Group[T] {
	return Group[T]{vals: slices.Clone(vals)}
}

// Concat returns g followed by every value of others.
func (g Group[T]) Concat(others ...Group[T]) Group[T] {
	out := slices.Clone(g.vals)
	for _, o := range others {
		out = append(out, o.vals...)
	}
	return Group[T]{vals: out}
}

// Complement negates every integral value within its own field. Values built
// from a Getter pass through unchanged.
func (g Group[T]) Complement() Group[T] {
	out := make([]Val[T], len(g.vals))
	for i, v := range g.vals {
		if !v.opaque {
			v.raw = ^v.raw & v.bits.Mask()
		}
		out[i] = v
	}
	return Group[T]{vals: out}
}

// Vals returns the values in order.
func (g Group[T]) Vals() []Val[T] { return slices.Clone(g.vals) }

// Len returns the number of values in the group.
func (g Group[T]) Len() int { return len(g.vals) }

// Mask returns the union of the fields the group touches.
func (g Group[T]) Mask() uint32 {
	var m uint32
	for _, v := range g.vals {
		m |= v.bits.Mask()
	}
	return m
}
