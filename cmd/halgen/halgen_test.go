package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"omibyte.io/stm32hal/mmio"
	"omibyte.io/stm32hal/pkg"
	"omibyte.io/stm32hal/reg"
)

const testSVD = "generator/testdata/stm32test.svd"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// row returns the fields of the layout line for exception exc.
func row(out string, exc string) []string {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == exc {
			return fields
		}
	}
	return nil
}

func TestTargets(t *testing.T) {
	out, err := run(t, "targets")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"stm32f0", "stm32f1", "stm32f4", "cortex-m4", "1024K@0x08000000"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if got := row(out, "stm32f4"); len(got) < 3 || got[2] != "+vfp4,+thumb2" {
		t.Errorf("stm32f4 features: %v", got)
	}
	if got := row(out, "stm32f0"); len(got) < 3 || got[2] != "-" {
		t.Errorf("stm32f0 features: %v", got)
	}
}

func TestVectorsLayout(t *testing.T) {
	out, err := run(t, "vectors", "stm32f4")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		exc  string
		want []string
	}{
		{"0", []string{"0", "0x00", "__stack", "-"}},
		{"3", []string{"3", "0x0c", "HardFault_Handler", "Halt_Handler"}},
		{"7", []string{"7", "0x1c", "(reserved)", "-"}},
		{"53", []string{"53", "0xd4", "USART1_IRQHandler", "Nop_Handler"}},
		{"97", []string{"97", "0x184", "FPU_IRQHandler", "Nop_Handler"}},
	}
	for _, test := range tests {
		got := row(out, test.exc)
		if strings.Join(got, " ") != strings.Join(test.want, " ") {
			t.Errorf("exception %s: got %v, want %v", test.exc, got, test.want)
		}
	}
	if row(out, "98") != nil {
		t.Error("stm32f4 table has more than 82 interrupts")
	}
}

func TestVectorsAssembly(t *testing.T) {
	out, err := run(t, "vectors", "stm32f0", "--format", "asm")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		".section .isr_vector",
		"VEC_NOP IRQ0_IRQHandler /* 0x40 */",
		"VEC_NOP IRQ31_IRQHandler /* 0xbc */",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestVectorsFromSVD(t *testing.T) {
	out, err := run(t, "vectors", "stm32f0", "--svd", testSVD)
	if err != nil {
		t.Fatal(err)
	}
	if got := row(out, "16"); len(got) < 3 || got[2] != "WWDG_ALIAS_IRQHandler" {
		t.Errorf("IRQ 0: %v", got)
	}
	if got := row(out, "17"); len(got) < 3 || got[2] != "(reserved)" {
		t.Errorf("IRQ 1: %v", got)
	}
	if got := row(out, "23"); len(got) < 3 || got[2] != "EXTI1_IRQHandler" {
		t.Errorf("IRQ 7: %v", got)
	}
	if row(out, "47") == nil || row(out, "48") != nil {
		t.Error("table not padded to the 32 interrupts of stm32f0")
	}
}

func TestVectorsHex(t *testing.T) {
	dir := t.TempDir()
	symbols := filepath.Join(dir, "symbols.yaml")
	if err := os.WriteFile(symbols, []byte("Nop_Handler: 0x08000300\nHalt_Handler: 0x08000310\n"), 0644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "vectors.hex")

	if _, err := run(t, "vectors", "stm32f4", "--format", "hex", "--symbols", symbols, "-o", output); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	hex := strings.ToUpper(string(data))
	if !strings.Contains(hex, ":020000040800F2") {
		t.Errorf("image not placed at flash origin:\n%s", hex)
	}
	if !strings.HasSuffix(strings.TrimSpace(hex), ":00000001FF") {
		t.Errorf("no end of file record:\n%s", hex)
	}
}

func TestVectorsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown target", []string{"vectors", "stm32h7"}, pkg.ErrUnknownTarget},
		{"hex without symbols", []string{"vectors", "stm32f4", "--format", "hex"}, nil},
		{"unknown format", []string{"vectors", "stm32f4", "--format", "elf"}, nil},
		{"no target", []string{"vectors"}, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := run(t, test.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if test.want != nil && !errors.Is(err, test.want) {
				t.Fatalf("got %v, want %v", err, test.want)
			}
		})
	}
}

func TestGen(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "gen", "--in", testSVD, "--out", dir, "--package", "dev", "--target", "stm32f4")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "STM32TEST") || !strings.Contains(out, "Done.") {
		t.Errorf("unexpected output:\n%s", out)
	}
	for _, name := range []string{"doc.go", "gpioa.go", "exti.go", "irq.go", "vectors.s", "target.ld"} {
		if _, err := os.Stat(filepath.Join(dir, "dev", name)); err != nil {
			t.Error(err)
		}
	}
}

func TestGenErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"missing input flag", []string{"gen"}, nil},
		{"missing file", []string{"gen", "--in", "testdata/none.svd"}, os.ErrNotExist},
		{"unknown target", []string{"gen", "--in", testSVD, "--target", "avr"}, pkg.ErrUnknownTarget},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := run(t, test.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if test.want != nil && !errors.Is(err, test.want) {
				t.Fatalf("got %v, want %v", err, test.want)
			}
		})
	}
}

func TestLogFlags(t *testing.T) {
	defer pkg.SetLogger(pkg.DefaultLogger)

	if _, err := run(t, "--log-level", "loud", "targets"); err == nil {
		t.Error("invalid log level accepted")
	}
	if _, err := run(t, "--log-format", "xml", "targets"); err == nil {
		t.Error("invalid log format accepted")
	}
	if _, err := run(t, "--log-level", "debug", "--log-format", "json", "targets"); err != nil {
		t.Fatal(err)
	}
	if got := pkg.GetLogLevel().String(); got != "DEBUG" {
		t.Errorf("log level = %s", got)
	}
	pkg.SetLogLevel(slog.LevelWarn)
}

type closeCounter struct{ n int }

func (c *closeCounter) Close() error {
	c.n++
	return nil
}

// fakeBus routes peek and poke to mem for the duration of the test.
func fakeBus(t *testing.T, mem *mmio.Memory) *closeCounter {
	t.Helper()
	c := &closeCounter{}
	prev := openBus
	openBus = func(uintptr) (mmio.Bus, io.Closer, error) { return mem, c, nil }
	t.Cleanup(func() { openBus = prev })
	return c
}

func TestPeek(t *testing.T) {
	mem := mmio.NewMemory()
	mem.Poke(0x40020000, 0xA8001400)
	closer := fakeBus(t, mem)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"peek", "0x40020000"}, "0x40020000: 0xa8001400"},
		{[]string{"peek", "0x40020002", "--width", "16"}, "0x40020002: 0xa800"},
		{[]string{"peek", "0x40020001", "-w", "8"}, "0x40020001: 0x14"},
	}
	for _, test := range tests {
		out, err := run(t, test.args...)
		if err != nil {
			t.Fatalf("%v: %v", test.args, err)
		}
		if got := strings.TrimSpace(out); got != test.want {
			t.Errorf("%v: got %q, want %q", test.args, got, test.want)
		}
	}
	if closer.n != len(tests) {
		t.Errorf("window closed %d times, want %d", closer.n, len(tests))
	}
	if n := mem.Count(mmio.OpStore, 0x40020000); n != 0 {
		t.Errorf("peek stored %d times", n)
	}
}

func TestPoke(t *testing.T) {
	mem := mmio.NewMemory()
	mem.Poke(0x40020014, 0xFFFF0000)
	fakeBus(t, mem)

	if _, err := run(t, "poke", "0x40020014", "0x1234", "-w", "16"); err != nil {
		t.Fatal(err)
	}
	if got := mem.Peek(0x40020014); got != 0xFFFF1234 {
		t.Errorf("half word poke: word = %#x", got)
	}

	if _, err := run(t, "poke", "0x40020014", "0x00000001"); err != nil {
		t.Fatal(err)
	}
	if got := mem.Peek(0x40020014); got != 1 {
		t.Errorf("word poke: word = %#x", got)
	}
	if n := mem.Count(mmio.OpLoad, 0x40020014); n != 0 {
		t.Errorf("poke loaded %d times", n)
	}
}

func TestPeekPokeErrors(t *testing.T) {
	fakeBus(t, mmio.NewMemory())

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"bad width", []string{"peek", "0x40020000", "-w", "24"}, mmio.ErrWidth},
		{"unaligned", []string{"peek", "0x40020002"}, reg.ErrAlign},
		{"bad address", []string{"peek", "GPIOA"}, nil},
		{"value too wide", []string{"poke", "0x40020000", "0x100", "-w", "8"}, mmio.ErrWidth},
		{"missing value", []string{"poke", "0x40020000"}, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := run(t, test.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if test.want != nil && !errors.Is(err, test.want) {
				t.Fatalf("got %v, want %v", err, test.want)
			}
		})
	}
}
