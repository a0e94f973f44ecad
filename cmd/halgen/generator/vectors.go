package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"omibyte.io/stm32hal/cortexm"
	"omibyte.io/stm32hal/pkg"
)

type interrupt struct {
	name  string
	desc  string
	value int
}

// interrupts collects the device interrupts in number order. The first
// peripheral in declaration order to name a number wins.
func (g *Generator) interrupts() []interrupt {
	byValue := map[int]interrupt{}
	for _, p := range g.device.Peripherals.Elements {
		for _, irq := range p.Interrupts {
			v := int(irq.Value)
			if v >= cortexm.MaxIRQs {
				pkg.LogWarn(pkg.ComponentGen, "skipping interrupt", "name", irq.Name, "value", v)
				continue
			}
			if prev, ok := byValue[v]; ok {
				if prev.name != irq.Name {
					pkg.LogDebug(pkg.ComponentGen, "shared interrupt", "value", v, "kept", prev.name, "dropped", irq.Name)
				}
				continue
			}
			byValue[v] = interrupt{name: symbol(irq.Name), desc: comment(irq.Description), value: v}
		}
	}

	values := maps.Keys(byValue)
	slices.Sort(values)
	out := make([]interrupt, len(values))
	for i, v := range values {
		out[i] = byValue[v]
	}
	return out
}

// vectorNames lays irqs out by number. Numbers no peripheral names are
// reserved.
func (g *Generator) vectorNames(irqs []interrupt) []string {
	n := 0
	if len(irqs) > 0 {
		n = irqs[len(irqs)-1].value + 1
	}
	if g.opts.Target != nil && g.opts.Target.IRQs > n {
		n = g.opts.Target.IRQs
	}
	names := make([]string, n)
	for _, irq := range irqs {
		names[irq.value] = irq.name
	}
	return names
}

// VectorNames returns the device interrupt names by number, padded to the
// target's interrupt count. Reserved numbers are empty.
func (g *Generator) VectorNames() []string {
	return g.vectorNames(g.interrupts())
}

func (g *Generator) priorityBits() uint64 {
	if bits := uint64(g.device.CPU.NVICPriorityBits); bits != 0 {
		return bits
	}
	if g.opts.Target != nil && g.opts.Target.PriorityBits != 0 {
		return uint64(g.opts.Target.PriorityBits)
	}
	return 4
}

func (g *Generator) generateIRQ(irqs []interrupt, out string) error {
	var w strings.Builder
	g.writePreamble(&w)

	fmt.Fprintln(&w, `import "omibyte.io/stm32hal/cortexm"`)
	fmt.Fprintln(&w)

	fmt.Fprintln(&w, "// IRQ is a device interrupt number.")
	fmt.Fprintln(&w, "type IRQ int16")
	fmt.Fprintln(&w)

	names := namer{}
	fmt.Fprintln(&w, "const (")
	for _, irq := range irqs {
		if irq.desc != "" {
			fmt.Fprintf(&w, "// %s\n", irq.desc)
		}
		fmt.Fprintf(&w, "%s IRQ = %d\n", names.unique("IRQ"+exported(irq.name)), irq.value)
	}
	fmt.Fprintln(&w, ")")
	fmt.Fprintln(&w)

	vectors := g.vectorNames(irqs)
	fmt.Fprintln(&w, "const (")
	fmt.Fprintln(&w, "// NumIRQs is the number of device interrupt slots.")
	fmt.Fprintf(&w, "NumIRQs = %d\n", len(vectors))
	fmt.Fprintln(&w, "// PriorityBits is the number of implemented NVIC priority bits.")
	fmt.Fprintf(&w, "PriorityBits = %d\n", g.priorityBits())
	fmt.Fprintln(&w, ")")
	fmt.Fprintln(&w)

	fmt.Fprintln(&w, "var irqNames = [NumIRQs]string{")
	for _, irq := range irqs {
		fmt.Fprintf(&w, "%d: %q,\n", irq.value, irq.name)
	}
	fmt.Fprintln(&w, "}")
	fmt.Fprintln(&w)

	fmt.Fprintln(&w, "// IRQ converts to the core interrupt number.")
	fmt.Fprintln(&w, "func (i IRQ) IRQ() cortexm.IRQ { return cortexm.IRQ(i) }")
	fmt.Fprintln(&w)
	fmt.Fprintln(&w, "// NewVectorTable lays out the vector table of the device.")
	fmt.Fprintln(&w, "func NewVectorTable() (*cortexm.VectorTable, error) {")
	fmt.Fprintln(&w, "return cortexm.NewVectorTable(irqNames[:])")
	fmt.Fprintln(&w, "}")

	return writeGo(out, "irq.go", w.String())
}

func (g *Generator) generateVectors(irqs []interrupt, out string) error {
	vt, err := cortexm.NewVectorTable(g.vectorNames(irqs))
	if err != nil {
		return err
	}

	fname := filepath.Join(out, "vectors.s")
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err = vt.WriteAssembly(f); err != nil {
		f.Close()
		return err
	}
	pkg.LogInfo(pkg.ComponentVector, "vector table", "file", fname, "irqs", vt.IRQs(), "size", vt.Size())
	return f.Close()
}
