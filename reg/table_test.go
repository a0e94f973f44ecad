package reg

import (
	"errors"
	"testing"

	"omibyte.io/stm32hal/mmio"
)

type scratch struct{}

func TestTableErrors(t *testing.T) {
	tests := []struct {
		name  string
		width mmio.Width
		build func(tb *Table[scratch])
		want  error
	}{
		{"ok", mmio.Width32, func(tb *Table[scratch]) {
			NewRW[uint8](tb, "A", 0, 4)
			NewRWFlag(tb, "B", 4)
		}, nil},
		{"overlap", mmio.Width32, func(tb *Table[scratch]) {
			NewRW[uint8](tb, "A", 0, 4)
			NewRW[uint8](tb, "B", 2, 4)
		}, ErrOverlap},
		{"alias", mmio.Width32, func(tb *Table[scratch]) {
			NewROFlag(tb, "FLAG", 3)
			NewRC1Flag(tb, "FLAG_CLR", 3, Alias)
		}, nil},
		{"width", mmio.Width16, func(tb *Table[scratch]) {
			NewRW[uint16](tb, "A", 12, 8)
		}, ErrWidth},
		{"duplicate", mmio.Width32, func(tb *Table[scratch]) {
			NewRWFlag(tb, "A", 0)
			NewRWFlag(tb, "A", 1)
		}, ErrDuplicate},
		{"narrow value", mmio.Width32, func(tb *Table[scratch]) {
			NewRW[uint8](tb, "A", 0, 12)
		}, ErrValueTooNarrow},
		{"empty", mmio.Width32, func(tb *Table[scratch]) {
			NewRW[uint8](tb, "A", 0, 0)
		}, ErrEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := NewTable[scratch](tt.width)
			tt.build(tb)
			err := tb.Err()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if _, err := Declare("R", mmio.NewMemory(), 0, 0, tb); !errors.Is(err, tt.want) {
				t.Fatalf("Declare: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTableOrderAndMasks(t *testing.T) {
	tb := NewTable[scratch](mmio.Width32)
	NewRW[uint8](tb, "MODE", 4, 4)
	NewROFlag(tb, "BUSY", 0)
	NewWOFlag(tb, "GO", 1)

	var names []string
	for _, f := range tb.Fields() {
		names = append(names, f.Name)
	}
	if len(names) != 3 || names[0] != "MODE" || names[1] != "BUSY" || names[2] != "GO" {
		t.Fatalf("fields = %v", names)
	}
	if got := tb.WritableMask(); got != 0xF2 {
		t.Errorf("WritableMask = %#x, want 0xF2", got)
	}
	if b, ok := tb.Lookup("GO"); !ok || b.Mode != WriteOnly {
		t.Errorf("Lookup(GO) = %v, %v", b, ok)
	}
	if _, ok := tb.Lookup("NOPE"); ok {
		t.Error("Lookup(NOPE) found a field")
	}
}

func TestDeclareErrors(t *testing.T) {
	tb := NewTable[scratch](mmio.Width16)
	NewRW[uint8](tb, "A", 0, 8)

	if _, err := Declare("R", mmio.NewMemory(), 0x4000, 1, tb); !errors.Is(err, ErrAlign) {
		t.Errorf("unaligned: got %v", err)
	}
	if _, err := Declare("R", mmio.NewMemory(), 0x4000, 2, tb, ResetValue(0x10000)); !errors.Is(err, ErrWidth) {
		t.Errorf("wide reset: got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustDeclare did not panic")
		}
	}()
	MustDeclare("R", mmio.NewMemory(), 0x4000, 3, tb)
}
