package critical

import "sync"

// Simulated is a Core for hosted tests. Raise models an interrupt request:
// the handler runs at once when the request is not masked and is held
// pending otherwise, to run as soon as a mask change lets it through.
type Simulated struct {
	mu       sync.Mutex
	primask  bool
	basepri  uint8
	bits     uint8
	pending  []request
	disables int
}

type request struct {
	priority uint8
	isr      func()
}

// NewSimulated returns an unmasked core with the given number of implemented
// priority bits.
func NewSimulated(priorityBits uint8) *Simulated {
	return &Simulated{bits: priorityBits}
}

func (c *Simulated) InterruptsDisabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.primask
}

func (c *Simulated) DisableInterrupts() {
	c.mu.Lock()
	c.primask = true
	c.disables++
	c.mu.Unlock()
}

func (c *Simulated) EnableInterrupts() {
	c.mu.Lock()
	c.primask = false
	c.mu.Unlock()
	c.deliver()
}

func (c *Simulated) BasePri() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.basepri
}

func (c *Simulated) SetBasePri(v uint8) {
	c.mu.Lock()
	c.basepri = v & c.implemented()
	c.mu.Unlock()
	c.deliver()
}

func (c *Simulated) PriorityBits() uint8 { return c.bits }

// Disables returns how many times PRIMASK was set.
func (c *Simulated) Disables() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disables
}

// Raise requests an interrupt of the given priority. It reports whether isr
// ran before Raise returned.
func (c *Simulated) Raise(priority uint8, isr func()) bool {
	c.mu.Lock()
	priority &= c.implemented()
	if c.masked(priority) {
		c.pending = append(c.pending, request{priority: priority, isr: isr})
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()
	isr()
	return true
}

// Pending returns the number of requests held back by the current mask.
func (c *Simulated) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Simulated) implemented() uint8 {
	return ^(uint8(0xFF) >> c.bits)
}

func (c *Simulated) masked(priority uint8) bool {
	return c.primask || (c.basepri != 0 && priority >= c.basepri)
}

func (c *Simulated) deliver() {
	for {
		c.mu.Lock()
		i := -1
		for k, r := range c.pending {
			if !c.masked(r.priority) {
				i = k
				break
			}
		}
		if i < 0 {
			c.mu.Unlock()
			return
		}
		r := c.pending[i]
		c.pending = append(c.pending[:i], c.pending[i+1:]...)
		c.mu.Unlock()
		r.isr()
	}
}
