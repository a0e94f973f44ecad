package targets

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"omibyte.io/stm32hal/cortexm"
	"omibyte.io/stm32hal/pkg"
)

//go:embed targets.yaml
var rawTargets []byte

var targets Targets

func All() Targets {
	return slices.Clone(targets)
}

type Targets []TargetInfo

type TargetInfo struct {
	Series       string   `yaml:"series"`
	Chips        []string `yaml:"chips"`
	Cpu          string   `yaml:"cpu"`
	Architecture string   `yaml:"architecture"`
	Triple       string   `yaml:"triple"`
	Features     []string `yaml:"features"`
	Float        string   `yaml:"float"`
	PriorityBits uint8    `yaml:"priorityBits"`
	IRQs         int      `yaml:"irqs"`
	Flash        Region   `yaml:"flash"`
	RAM          Region   `yaml:"ram"`
	StackSize    uint32   `yaml:"stackSize"`
}

// Region is a memory region of a chip.
type Region struct {
	Origin uint32 `yaml:"origin"`
	Size   uint32 `yaml:"size"`
}

// FormatFeatureString returns the CPU features in LLVM attribute form.
func (t TargetInfo) FormatFeatureString() string {
	features := make([]string, len(t.Features))
	for i, feature := range t.Features {
		features[i] = "+" + feature
	}
	return strings.Join(features, ",")
}

// Validate checks the entry against what the NVIC can hold.
func (t TargetInfo) Validate() error {
	if t.IRQs <= 0 || t.IRQs > cortexm.MaxIRQs {
		return fmt.Errorf("%s: %w: %d", t.Series, cortexm.ErrTooManyIRQs, t.IRQs)
	}
	if t.PriorityBits == 0 || t.PriorityBits > 8 {
		return fmt.Errorf("%s: invalid priority bits %d", t.Series, t.PriorityBits)
	}
	return nil
}

// WriteLinkerScript writes the MEMORY layout of the target.
func (t TargetInfo) WriteLinkerScript(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintln(&b, "MEMORY")
	fmt.Fprintln(&b, "{")
	fmt.Fprintf(&b, "\tFLASH (rx) : ORIGIN = %#08x, LENGTH = %dK\n", t.Flash.Origin, t.Flash.Size/1024)
	fmt.Fprintf(&b, "\tRAM (xrw)  : ORIGIN = %#08x, LENGTH = %dK\n", t.RAM.Origin, t.RAM.Size/1024)
	fmt.Fprintln(&b, "}")
	fmt.Fprintf(&b, "__stack_size = %#x;\n", t.StackSize)
	fmt.Fprintln(&b, "INCLUDE program.ld")
	_, err := io.WriteString(w, b.String())
	return err
}

// StackTop is the initial stack pointer: the end of RAM.
func (t TargetInfo) StackTop() uint32 {
	return t.RAM.Origin + t.RAM.Size
}

func (t Targets) FindBySeries(name string) (TargetInfo, error) {
	i := slices.IndexFunc(t, func(target TargetInfo) bool {
		return target.Series == strings.ToLower(name)
	})
	if i < 0 {
		return TargetInfo{}, fmt.Errorf("%w: series %q", pkg.ErrUnknownTarget, name)
	}
	return t[i], nil
}

func (t Targets) FindByChip(name string) (TargetInfo, error) {
	for _, target := range t {
		if slices.Contains(target.Chips, strings.ToLower(name)) {
			return target, nil
		}
	}
	return TargetInfo{}, fmt.Errorf("%w: chip %q", pkg.ErrUnknownTarget, name)
}

// Find looks name up as a series first and as a chip second.
func (t Targets) Find(name string) (TargetInfo, error) {
	if target, err := t.FindBySeries(name); err == nil {
		return target, nil
	}
	return t.FindByChip(name)
}

func init() {
	var t struct {
		Elements []TargetInfo `yaml:"targets"`
	}
	if err := yaml.Unmarshal(rawTargets, &t); err != nil {
		panic(err)
	}

	targets = t.Elements
}
