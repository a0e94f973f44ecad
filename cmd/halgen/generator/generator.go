// Package generator turns an SVD device description into a Go package of
// register tables on the reg surface, an interrupt enumeration and the
// vector table in assembly.
package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/tools/imports"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"omibyte.io/stm32hal/cmd/halgen/svd"
	"omibyte.io/stm32hal/pkg"
	"omibyte.io/stm32hal/targets"
)

// Options control a generator run.
type Options struct {
	// Out is the directory the package directory is created in.
	Out string
	// Package names the generated package. Defaults to the lower cased
	// device name.
	Package string
	// Target, when set, provides the linker memory layout and fills in
	// what the device description leaves out.
	Target *targets.TargetInfo
}

// Generator renders one device.
type Generator struct {
	device svd.DeviceElement
	opts   Options

	// ordered lists the peripherals with every base before the peripherals
	// derived from it.
	ordered []svd.PeripheralElement
	// root maps a peripheral to the peripheral whose registers it uses.
	root map[string]string
}

// New validates device and prepares a run.
func New(device svd.DeviceElement, opts Options) (*Generator, error) {
	if opts.Package == "" {
		opts.Package = strings.ToLower(symbol(device.Name))
	}
	if opts.Package == "" {
		return nil, fmt.Errorf("%w: device has no name", pkg.ErrUnsupportedDevice)
	}

	ordered, err := order(device.Peripherals.Elements)
	if err != nil {
		return nil, err
	}
	g := &Generator{
		device:  device,
		opts:    opts,
		ordered: ordered,
		root:    make(map[string]string, len(ordered)),
	}
	for _, p := range ordered {
		if p.DerivedFrom == "" {
			g.root[p.Name] = p.Name
		} else {
			g.root[p.Name] = g.root[p.DerivedFrom]
		}
	}
	return g, nil
}

// order sorts peripherals topologically along derivedFrom, keeping the
// declaration order among independent peripherals.
func order(periphs []svd.PeripheralElement) ([]svd.PeripheralElement, error) {
	dg := simple.NewDirectedGraph()
	index := make(map[string]int64, len(periphs))
	for i, p := range periphs {
		dg.AddNode(simple.Node(i))
		index[p.Name] = int64(i)
	}

	for i, p := range periphs {
		if p.DerivedFrom == "" {
			continue
		}
		if p.DerivedFrom == p.Name {
			return nil, fmt.Errorf("%w: %s", pkg.ErrDerivedCycle, p.Name)
		}
		base, ok := index[p.DerivedFrom]
		if !ok {
			return nil, fmt.Errorf("%w: %s derives from %s", pkg.ErrMissingBase, p.Name, p.DerivedFrom)
		}
		dg.SetEdge(dg.NewEdge(dg.Node(base), dg.Node(int64(i))))
	}

	sorted, err := topo.SortStabilized(dg, func(nodes []graph.Node) {
		sortNodes(nodes)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrDerivedCycle, err)
	}

	out := make([]svd.PeripheralElement, len(sorted))
	for i, n := range sorted {
		out[i] = periphs[n.ID()]
	}
	return out, nil
}

func sortNodes(nodes []graph.Node) {
	slices.SortFunc(nodes, func(a, b graph.Node) bool {
		return a.ID() < b.ID()
	})
}

// Generate writes the package into Out/Package.
func (g *Generator) Generate() error {
	// Create the output directory for the chip
	outputDir := filepath.Join(g.opts.Out, g.opts.Package)
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return err
	}
	pkg.LogInfo(pkg.ComponentGen, "generating", "device", g.device.Name, "package", g.opts.Package, "dir", outputDir)

	if err := g.generateDoc(outputDir); err != nil {
		return err
	}

	// Generate every peripheral that others derive from or that stands
	// alone; derived peripherals become instances of their root
	for _, p := range g.ordered {
		if g.root[p.Name] != p.Name {
			continue
		}
		if err := g.generatePeripheral(p, outputDir); err != nil {
			return err
		}
	}

	irqs := g.interrupts()
	if err := g.generateIRQ(irqs, outputDir); err != nil {
		return err
	}
	if err := g.generateVectors(irqs, outputDir); err != nil {
		return err
	}

	if g.opts.Target != nil {
		if err := g.generateLinkerScript(outputDir); err != nil {
			return err
		}
	}
	return nil
}

// writeGo formats src, fixing up imports, and writes it to dir/name.
func writeGo(dir, name, src string) error {
	fname := filepath.Join(dir, name)
	buf, err := imports.Process(fname, []byte(src), nil)
	if err != nil {
		return fmt.Errorf("error formatting %s: %w", fname, err)
	}
	pkg.LogDebug(pkg.ComponentGen, "writing", "file", fname, "bytes", len(buf))
	return os.WriteFile(fname, buf, 0644)
}

func (g *Generator) writePreamble(w *strings.Builder) {
	fmt.Fprintf(w, "// Code generated by halgen from %s. DO NOT EDIT.\n\n", g.device.Name)
	fmt.Fprintf(w, "package %s\n\n", g.opts.Package)
}

func (g *Generator) generateDoc(out string) error {
	var w strings.Builder
	fmt.Fprintf(&w, "// Code generated by halgen from %s. DO NOT EDIT.\n\n", g.device.Name)
	fmt.Fprintf(&w, "// Package %s holds the register tables of the %s.\n", g.opts.Package, g.device.Name)
	if desc := comment(g.device.Description); desc != "" {
		fmt.Fprintf(&w, "//\n// %s\n", desc)
	}

	// Pin the import path when the output sits inside a module
	path, err := ImportPath(out)
	if err != nil {
		pkg.LogWarn(pkg.ComponentGen, "no import comment", "error", err)
		fmt.Fprintf(&w, "package %s\n", g.opts.Package)
	} else {
		fmt.Fprintf(&w, "package %s // import %q\n", g.opts.Package, path)
	}
	return writeGo(out, "doc.go", w.String())
}

func (g *Generator) generateLinkerScript(out string) error {
	f, err := os.Create(filepath.Join(out, "target.ld"))
	if err != nil {
		return err
	}
	if err = g.opts.Target.WriteLinkerScript(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
