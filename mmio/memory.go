package mmio

import (
	"fmt"
	"sync"
)

// Op is the direction of a recorded bus access.
type Op uint8

const (
	OpLoad Op = iota
	OpStore
)

func (o Op) String() string {
	if o == OpLoad {
		return "load"
	}
	return "store"
}

// Access is one recorded bus transaction.
type Access struct {
	Op    Op
	Addr  uintptr
	Width Width
	Value uint32
}

func (a Access) String() string {
	return fmt.Sprintf("%s %s %#08x = %#x", a.Op, a.Width, a.Addr, a.Value)
}

// StoreRule rewrites the word at a target address when a store hits the
// address the rule is installed on. cur is the target's current word, v the
// stored value aligned into a word. The returned word replaces the target.
type StoreRule func(cur, v uint32) uint32

type rule struct {
	target uintptr
	apply  StoreRule
}

// Memory is a simulated, sparse, little-endian address space. It records
// every access made through the Bus interface so tests can count bus traffic,
// and it can model registers whose stores do not simply replace the stored
// word (write-1-to-clear status flags, set/clear register pairs).
//
// Memory is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	words   map[uintptr]uint32
	rules   map[uintptr]rule
	mirrors map[uintptr]uintptr
	trace   []Access
	tracing bool
}

// NewMemory returns an empty address space with tracing enabled.
func NewMemory() *Memory {
	return &Memory{
		words:   make(map[uintptr]uint32),
		rules:   make(map[uintptr]rule),
		mirrors: make(map[uintptr]uintptr),
		tracing: true,
	}
}

func split(addr uintptr, w Width) (base uintptr, shift uint) {
	if !w.Valid() {
		panic(fmt.Errorf("%w: %d", ErrWidth, uint8(w)))
	}
	if !w.Aligned(addr) {
		panic(fmt.Errorf("%w: %s access at %#x", ErrUnaligned, w, addr))
	}
	return addr &^ 3, uint(addr&3) * 8
}

// Load implements Bus.
func (m *Memory) Load(addr uintptr, w Width) uint32 {
	base, shift := split(addr, w)

	m.mu.Lock()
	defer m.mu.Unlock()

	if target, ok := m.mirrors[base]; ok {
		base = target
	}
	v := (m.words[base] >> shift) & w.Mask()
	if m.tracing {
		m.trace = append(m.trace, Access{Op: OpLoad, Addr: addr, Width: w, Value: v})
	}
	return v
}

// Store implements Bus.
func (m *Memory) Store(addr uintptr, w Width, value uint32) {
	base, shift := split(addr, w)
	value &= w.Mask()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tracing {
		m.trace = append(m.trace, Access{Op: OpStore, Addr: addr, Width: w, Value: value})
	}

	if r, ok := m.rules[base]; ok {
		m.words[r.target] = r.apply(m.words[r.target], value<<shift)
		return
	}

	mask := w.Mask() << shift
	m.words[base] = (m.words[base] &^ mask) | (value << shift)
}

// Poke sets the word containing addr without recording an access or running
// store rules. It is how tests preset hardware state.
func (m *Memory) Poke(addr uintptr, value uint32) {
	m.mu.Lock()
	m.words[addr&^3] = value
	m.mu.Unlock()
}

// Peek returns the word containing addr without recording an access.
// Mirrors are followed.
func (m *Memory) Peek(addr uintptr) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	base := addr &^ 3
	if target, ok := m.mirrors[base]; ok {
		base = target
	}
	return m.words[base]
}

// OnStore installs a rule on the word at addr. Stores to addr no longer
// write addr; they rewrite target through fn instead. target may equal addr.
func (m *Memory) OnStore(addr, target uintptr, fn StoreRule) {
	m.mu.Lock()
	m.rules[addr&^3] = rule{target: target &^ 3, apply: fn}
	m.mu.Unlock()
}

// ClearOnWrite1 models a register at addr where writing 1 clears the
// corresponding bit of target and writing 0 has no effect.
func (m *Memory) ClearOnWrite1(addr, target uintptr) {
	m.OnStore(addr, target, func(cur, v uint32) uint32 { return cur &^ v })
}

// SetOnWrite1 models a register at addr where writing 1 sets the
// corresponding bit of target and writing 0 has no effect.
func (m *Memory) SetOnWrite1(addr, target uintptr) {
	m.OnStore(addr, target, func(cur, v uint32) uint32 { return cur | v })
}

// Mirror makes loads of addr observe target. It is used together with
// ClearOnWrite1/SetOnWrite1 for register pairs such as NVIC ISER/ICER that
// read back the same state.
func (m *Memory) Mirror(addr, target uintptr) {
	m.mu.Lock()
	m.mirrors[addr&^3] = target &^ 3
	m.mu.Unlock()
}

// SetTracing turns access recording on or off.
func (m *Memory) SetTracing(on bool) {
	m.mu.Lock()
	m.tracing = on
	m.mu.Unlock()
}

// Trace returns a copy of the recorded accesses.
func (m *Memory) Trace() []Access {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Access, len(m.trace))
	copy(out, m.trace)
	return out
}

// ResetTrace drops every recorded access.
func (m *Memory) ResetTrace() {
	m.mu.Lock()
	m.trace = m.trace[:0]
	m.mu.Unlock()
}

// Count returns how many recorded accesses of kind op touched addr.
func (m *Memory) Count(op Op, addr uintptr) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.trace {
		if a.Op == op && a.Addr == addr {
			n++
		}
	}
	return n
}
