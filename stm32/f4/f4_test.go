package f4

import (
	"errors"
	"testing"

	"omibyte.io/stm32hal/mmio"
)

func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, target) {
			t.Errorf("recovered %v, want %v", r, target)
		}
	}()
	fn()
}

func newMemory(t *testing.T) *mmio.Memory {
	t.Helper()
	mem := mmio.NewMemory()
	Model(mem)
	return mem
}
