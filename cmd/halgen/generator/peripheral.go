package generator

import (
	"fmt"
	"strings"

	"omibyte.io/stm32hal/cmd/halgen/svd"
	"omibyte.io/stm32hal/pkg"
)

// instances returns the peripherals sharing the registers of root, root
// first.
func (g *Generator) instances(root string) []svd.PeripheralElement {
	var out []svd.PeripheralElement
	for _, p := range g.ordered {
		if g.root[p.Name] == root {
			out = append(out, p)
		}
	}
	return out
}

func (g *Generator) generatePeripheral(periph svd.PeripheralElement, out string) error {
	var w strings.Builder
	g.writePreamble(&w)

	typeName := exported(periph.Name)
	tagPrefix := unexported(periph.Name)
	regs := g.registers(periph, typeName)

	// Write package imports
	fmt.Fprintln(&w, "import (")
	fmt.Fprintln(&w, `"omibyte.io/stm32hal/mmio"`)
	if len(regs) > 0 {
		fmt.Fprintln(&w, `"omibyte.io/stm32hal/reg"`)
	}
	fmt.Fprintln(&w, ")")
	fmt.Fprintln(&w)

	// Tag types, one per register
	if len(regs) > 0 {
		fmt.Fprintln(&w, "type (")
		for _, r := range regs {
			fmt.Fprintf(&w, "%s struct{}\n", tagPrefix+r.ident)
		}
		fmt.Fprintln(&w, ")")
		fmt.Fprintln(&w)
	}

	// Enumerated field values
	for _, r := range regs {
		for _, f := range r.fields {
			if f.enum != nil {
				writeEnum(&w, f)
			}
		}
	}

	// Field tables
	if len(regs) > 0 {
		fmt.Fprintln(&w, "var (")
		for _, r := range regs {
			tag := tagPrefix + r.ident
			table := tag + "Table"
			fmt.Fprintf(&w, "%s = reg.NewTable[%s](mmio.Width%d)\n", table, tag, r.width)
			if len(r.fields) == 0 {
				fmt.Fprintln(&w)
				continue
			}
			fmt.Fprintf(&w, "\n// %s%s holds the fields of %s.%s.\n", typeName, r.ident, periph.Name, r.name)
			fmt.Fprintf(&w, "%s%s = struct {\n", typeName, r.ident)
			for _, f := range r.fields {
				typ, _ := f.descriptor(tag, table)
				if f.desc != "" {
					fmt.Fprintf(&w, "// %s\n", f.desc)
				}
				fmt.Fprintf(&w, "%s %s\n", f.ident, typ)
			}
			fmt.Fprintln(&w, "}{")
			for _, f := range r.fields {
				_, decl := f.descriptor(tag, table)
				fmt.Fprintf(&w, "%s: %s,\n", f.ident, decl)
			}
			fmt.Fprintln(&w, "}")
			fmt.Fprintln(&w)
		}
		fmt.Fprintln(&w, ")")
		fmt.Fprintln(&w)
	}

	// Register block
	if desc := comment(periph.Description); desc != "" {
		fmt.Fprintf(&w, "// %s is the register block of %s: %s\n", typeName, periph.Name, desc)
	} else {
		fmt.Fprintf(&w, "// %s is the register block of %s.\n", typeName, periph.Name)
	}
	fmt.Fprintf(&w, "type %s struct {\n", typeName)
	for _, r := range regs {
		if r.desc != "" {
			fmt.Fprintf(&w, "// %s\n", r.desc)
		}
		fmt.Fprintf(&w, "%s *reg.Register[%s]\n", r.ident, tagPrefix+r.ident)
	}
	fmt.Fprintln(&w, "}")
	fmt.Fprintln(&w)

	// Constructor
	fmt.Fprintf(&w, "// New%s declares the registers of a %s block at base on bus.\n", typeName, typeName)
	fmt.Fprintf(&w, "func New%s(bus mmio.Bus, base uintptr) (*%s, error) {\n", typeName, typeName)
	if len(regs) == 0 {
		fmt.Fprintf(&w, "return &%s{}, nil\n}\n\n", typeName)
	} else {
		fmt.Fprintf(&w, "var (\np %s\nerr error\n)\n", typeName)
		for _, r := range regs {
			opts := ""
			if r.reset != nil {
				opts = fmt.Sprintf(", reg.ResetValue(%#x)", *r.reset)
			}
			fmt.Fprintf(&w, "if p.%s, err = reg.Declare(%q, bus, base, %#x, %sTable%s); err != nil {\n",
				r.ident, r.name, r.offset, tagPrefix+r.ident, opts)
			fmt.Fprintln(&w, "return nil, err")
			fmt.Fprintln(&w, "}")
		}
		fmt.Fprintln(&w, "return &p, nil")
		fmt.Fprintln(&w, "}")
		fmt.Fprintln(&w)
	}

	fmt.Fprintf(&w, "func must%s(bus mmio.Bus, base uintptr) *%s {\n", typeName, typeName)
	fmt.Fprintf(&w, "p, err := New%s(bus, base)\n", typeName)
	fmt.Fprintln(&w, "if err != nil {\npanic(err)\n}")
	fmt.Fprintln(&w, "return p")
	fmt.Fprintln(&w, "}")
	fmt.Fprintln(&w)

	// Instances on the hardware bus
	instances := g.instances(periph.Name)
	fmt.Fprintln(&w, "var (")
	for _, p := range instances {
		fmt.Fprintf(&w, "%s = must%s(mmio.Hardware, %#x)\n", symbol(p.Name), typeName, uint64(p.BaseAddress))
	}
	fmt.Fprintln(&w, ")")

	pkg.LogDebug(pkg.ComponentGen, "peripheral",
		"name", periph.Name, "registers", len(regs), "instances", len(instances))
	return writeGo(out, strings.ToLower(symbol(periph.Name))+".go", w.String())
}

func writeEnum(w *strings.Builder, f field) {
	fmt.Fprintf(w, "// %s is a value of the %s field.\n", f.enum.ident, f.name)
	fmt.Fprintf(w, "type %s %s\n\n", f.enum.ident, uintType(f.bits.Len))
	fmt.Fprintln(w, "const (")
	for _, v := range f.enum.values {
		if v.desc != "" {
			fmt.Fprintf(w, "// %s %s\n", v.ident, v.desc)
		}
		fmt.Fprintf(w, "%s %s = %#x\n", v.ident, f.enum.ident, v.value)
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintln(w)
}
