package generator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"omibyte.io/stm32hal/cmd/halgen/svd"
	"omibyte.io/stm32hal/pkg"
	"omibyte.io/stm32hal/reg"
	"omibyte.io/stm32hal/targets"
)

func loadDevice(t *testing.T) svd.DeviceElement {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", "stm32test.svd"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	device, err := svd.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	return device
}

func names(ps []svd.PeripheralElement) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestOrder(t *testing.T) {
	periphs := []svd.PeripheralElement{
		{Name: "GPIOC", DerivedFrom: "GPIOB"},
		{Name: "TIM2"},
		{Name: "GPIOB", DerivedFrom: "GPIOA"},
		{Name: "GPIOA"},
	}
	ordered, err := order(periphs)
	if err != nil {
		t.Fatal(err)
	}
	got := names(ordered)
	if len(got) != len(periphs) {
		t.Fatalf("order = %v", got)
	}
	pos := make(map[string]int, len(got))
	for i, n := range got {
		pos[n] = i
	}
	for _, p := range periphs {
		if p.DerivedFrom != "" && pos[p.DerivedFrom] > pos[p.Name] {
			t.Errorf("%s placed before its base %s: %v", p.Name, p.DerivedFrom, got)
		}
	}
}

func TestOrderErrors(t *testing.T) {
	tests := []struct {
		name    string
		periphs []svd.PeripheralElement
		want    error
	}{
		{"cycle", []svd.PeripheralElement{
			{Name: "A", DerivedFrom: "B"},
			{Name: "B", DerivedFrom: "A"},
		}, pkg.ErrDerivedCycle},
		{"self", []svd.PeripheralElement{
			{Name: "A", DerivedFrom: "A"},
		}, pkg.ErrDerivedCycle},
		{"missing", []svd.PeripheralElement{
			{Name: "A", DerivedFrom: "Z"},
		}, pkg.ErrMissingBase},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := order(tt.periphs); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestIdentifiers(t *testing.T) {
	tests := []struct {
		fn   func(string) string
		in   string
		want string
	}{
		{exported, "TAMP_STAMP", "TampStamp"},
		{exported, "USART1", "Usart1"},
		{exported, "CH[0]_CFG", "Ch0Cfg"},
		{exported, "2", "V2"},
		{exported, "__", ""},
		{unexported, "GPIOA", "gpioa"},
		{unexported, "EXTI_PR", "extiPr"},
		{symbol, "OTG_FS-WKUP", "OTG_FS_WKUP"},
	}
	for _, tt := range tests {
		if got := tt.fn(tt.in); got != tt.want {
			t.Errorf("%q -> %q, want %q", tt.in, got, tt.want)
		}
	}

	n := namer{}
	if a, b, c := n.unique("X"), n.unique("X"), n.unique("Y"); a != "X" || b != "X_2" || c != "Y" {
		t.Errorf("namer: %s %s %s", a, b, c)
	}
}

func TestAccessMode(t *testing.T) {
	tests := []struct {
		access, modified string
		want             reg.Mode
	}{
		{"read-only", "", reg.ReadOnly},
		{"write-only", "", reg.WriteOnly},
		{"write-only", "oneToClear", reg.WriteOnly},
		{"read-write", "", reg.ReadWrite},
		{"", "", reg.ReadWrite},
		{"read-write", "oneToClear", reg.ReadClearOnWrite1},
		{"read-write", "oneToSet", reg.ReadSet},
		{"read-writeOnce", "", reg.ReadWrite},
	}
	for _, tt := range tests {
		got, ok := accessMode(tt.access, tt.modified)
		if !ok || got != tt.want {
			t.Errorf("%s/%s = %s, want %s", tt.access, tt.modified, got, tt.want)
		}
	}
	if _, ok := accessMode("execute", ""); ok {
		t.Error("unknown access accepted")
	}
}

func TestExpand(t *testing.T) {
	periph := svd.PeripheralElement{
		Name: "DMA",
		Registers: svd.RegistersElement{
			RegisterElements: []svd.RegisterElement{
				{Name: "ISR", AddressOffset: 0x0},
				{Name: "IFCR", AddressOffset: 0x4},
				{Name: "MUX%s", AddressOffset: 0x80, Count: 2, Increment: 4},
			},
			ClusterElements: []svd.ClusterElement{
				{Name: "CH[%s]", AddressOffset: 0x8, Count: 2, Increment: 0x14, Registers: []svd.RegisterElement{
					{Name: "CCR", AddressOffset: 0x0},
					{Name: "CNDTR", AddressOffset: 0x4},
				}},
				{Name: "LOCK", AddressOffset: 0x60, Registers: []svd.RegisterElement{
					{Name: "KEY%s", AddressOffset: 0x8, Count: 2, Increment: 4},
				}},
			},
		},
	}

	want := []struct {
		name   string
		offset svd.Integer
	}{
		{"ISR", 0x0},
		{"IFCR", 0x4},
		{"CH0_CCR", 0x8},
		{"CH0_CNDTR", 0xC},
		{"CH1_CCR", 0x1C},
		{"CH1_CNDTR", 0x20},
		{"LOCK_KEY0", 0x68},
		{"LOCK_KEY1", 0x6C},
		{"MUX0", 0x80},
		{"MUX1", 0x84},
	}

	got := (&Generator{}).expand(periph)
	if len(got) != len(want) {
		t.Fatalf("got %d registers, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Name != w.name || got[i].GetAddressOffset() != w.offset {
			t.Errorf("register %d: got %s@%#x, want %s@%#x", i, got[i].Name, got[i].GetAddressOffset(), w.name, w.offset)
		}
		if got[i].Count != 0 {
			t.Errorf("%s still has dim %d", got[i].Name, got[i].Count)
		}
	}
}

func TestImportPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/dev\n\ngo 1.21\n"), 0644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "chips", "f4")
	if err := os.MkdirAll(sub, 0750); err != nil {
		t.Fatal(err)
	}

	got, err := ImportPath(sub)
	if err != nil {
		t.Fatal(err)
	}
	if got != "example.com/dev/chips/f4" {
		t.Errorf("ImportPath = %q", got)
	}
	if got, _ := ImportPath(dir); got != "example.com/dev" {
		t.Errorf("ImportPath(root) = %q", got)
	}

	bad := t.TempDir()
	if err := os.WriteFile(filepath.Join(bad, "go.mod"), []byte("go 1.21\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportPath(bad); !errors.Is(err, pkg.ErrNoModule) {
		t.Errorf("err = %v, want ErrNoModule", err)
	}
}

// flat collapses runs of white space so assertions do not depend on gofmt
// alignment.
func flat(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Join(strings.Fields(string(b)), " ")
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/dev\n"), 0644); err != nil {
		t.Fatal(err)
	}
	target, err := targets.All().FindBySeries("stm32f4")
	if err != nil {
		t.Fatal(err)
	}

	g, err := New(loadDevice(t), Options{Out: dir, Target: &target})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Generate(); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "stm32test")

	tests := []struct {
		file string
		want []string
		not  []string
	}{
		{"doc.go", []string{
			`package stm32test // import "example.com/dev/stm32test"`,
		}, nil},
		{"gpioa.go", []string{
			"gpioaModer struct{}",
			"gpioaModerTable = reg.NewTable[gpioaModer](mmio.Width32)",
			"type GpioaModerModer1 uint8",
			"GpioaModerModer1Output GpioaModerModer1 = 0x1",
			"Moder1 reg.RW[gpioaModer, GpioaModerModer1]",
			`Moder1: reg.NewRW[GpioaModerModer1](gpioaModerTable, "MODER1", 2, 2),`,
			`Moder0: reg.NewRW[uint8](gpioaModerTable, "MODER0", 0, 2),`,
			`Idr0 reg.ROFlag[gpioaIdr]`,
			`Bs0: reg.NewWOFlag(gpioaBsrrTable, "BS0", 0),`,
			`reg.Declare("MODER", bus, base, 0x0, gpioaModerTable, reg.ResetValue(0xa8000000))`,
			`reg.Declare("AFR1", bus, base, 0x24, gpioaAfr1Table)`,
			"GPIOA = mustGpioa(mmio.Hardware, 0x40020000)",
			"GPIOB = mustGpioa(mmio.Hardware, 0x40020400)",
		}, []string{"TooBig", "WIDE"}},
		{"exti.go", []string{
			`Pr0: reg.NewRC1Flag(extiPrTable, "PR0", 0),`,
		}, nil},
		{"iwdg.go", []string{
			"iwdgKrTable = reg.NewTable[iwdgKr](mmio.Width16)",
			`Key: reg.NewWO[uint16](iwdgKrTable, "KEY", 0, 16),`,
			`Status: reg.NewRO[uint8](iwdgSrTable, "STATUS", 0, 2, reg.Alias),`,
			`reg.Declare("CH1_CFG", bus, base, 0x34, iwdgCh1CfgTable)`,
			"iwdgCh0CfgTable = reg.NewTable[iwdgCh0Cfg](mmio.Width8)",
		}, nil},
		{"wwdg.go", []string{
			"func NewWwdg(bus mmio.Bus, base uintptr) (*Wwdg, error) { return &Wwdg{}, nil }",
		}, nil},
		{"irq.go", []string{
			"IRQWwdgAlias IRQ = 0",
			"// EXTI Line0 interrupt IRQExti0 IRQ = 6",
			"NumIRQs = 82",
			"PriorityBits = 4",
			`6: "EXTI0",`,
		}, []string{"IRQWwdg IRQ"}},
		{"vectors.s", []string{
			"VEC_NOP EXTI1_IRQHandler /* 0x5c */",
			"VEC_NOP WWDG_ALIAS_IRQHandler /* 0x40 */",
			".long 0 /* 0x44 reserved */",
		}, nil},
		{"target.ld", []string{
			"FLASH (rx) : ORIGIN = 0x08000000, LENGTH = 1024K",
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			src := flat(t, filepath.Join(out, tt.file))
			for _, want := range tt.want {
				if !strings.Contains(src, want) {
					t.Errorf("missing %q", want)
				}
			}
			for _, not := range tt.not {
				if strings.Contains(src, not) {
					t.Errorf("unexpected %q", not)
				}
			}
		})
	}
}

func TestGenerateWithoutTarget(t *testing.T) {
	dir := t.TempDir()
	g, err := New(loadDevice(t), Options{Out: dir, Package: "chip"})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Generate(); err != nil {
		t.Fatal(err)
	}

	src := flat(t, filepath.Join(dir, "chip", "irq.go"))
	if !strings.Contains(src, "NumIRQs = 8") {
		t.Errorf("irq.go: %s", src)
	}
	if _, err := os.Stat(filepath.Join(dir, "chip", "target.ld")); !os.IsNotExist(err) {
		t.Errorf("target.ld written without a target: %v", err)
	}
}
