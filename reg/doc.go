// Package reg models memory-mapped peripheral registers as typed handles over
// ordered bit-field tables.
//
// A register is identified by a tag type T. Its fields are declared once,
// against a *Table[T], as typed descriptors (RO, WO, RW, RS, RC1 and their
// single-bit Flag variants). Because every descriptor carries T, a field of
// one register cannot be handed to another, and because each access mode is
// its own type, reading a write-only field or writing a read-only one does not
// compile. What the type system cannot express (overlap, width, value type
// size) is checked when the register is declared.
//
//	type moder struct{}
//
//	var (
//		moderTable = reg.NewTable[moder](mmio.Width32)
//		MODE0      = reg.NewRW[PinMode](moderTable, "MODE0", 0, 2)
//		MODE1      = reg.NewRW[PinMode](moderTable, "MODE1", 2, 2)
//		MODER      = reg.MustDeclare("MODER", mmio.Hardware, 0x40020000, 0x00, moderTable)
//	)
//
//	MODER.Write(MODE0.To(Output), MODE1.To(Output)) // one load, one store
//	mode := reg.Get(MODER, MODE0)                     // one load
//
// Every Read, Write, Set and Clear touches the bus with at most one load and
// exactly one store.
package reg
