package generator

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"omibyte.io/stm32hal/cmd/halgen/svd"
	"omibyte.io/stm32hal/mmio"
	"omibyte.io/stm32hal/pkg"
	"omibyte.io/stm32hal/reg"
)

type register struct {
	name   string
	ident  string
	desc   string
	offset uint64
	width  mmio.Width
	reset  *uint64
	fields []field
}

type field struct {
	name  string
	ident string
	desc  string
	bits  reg.Bits
	alias bool
	enum  *enum
}

type enum struct {
	ident  string
	values []enumValue
}

type enumValue struct {
	ident string
	desc  string
	value uint64
}

// accessMode maps SVD access and modifiedWriteValues onto a register mode.
func accessMode(access, modified string) (reg.Mode, bool) {
	var mode reg.Mode
	switch access {
	case "read-only":
		mode = reg.ReadOnly
	case "write-only", "writeOnce":
		mode = reg.WriteOnly
	case "read-write", "read-writeOnce", "":
		mode = reg.ReadWrite
	default:
		return 0, false
	}
	if !mode.Readable() {
		return mode, true
	}
	switch modified {
	case "oneToClear":
		return reg.ReadClearOnWrite1, true
	case "oneToSet":
		return reg.ReadSet, true
	}
	return mode, true
}

func widthOf(bits svd.Integer) (mmio.Width, bool) {
	switch bits {
	case 8:
		return mmio.Width8, true
	case 16:
		return mmio.Width16, true
	case 32:
		return mmio.Width32, true
	}
	return 0, false
}

// expand lists the registers of a peripheral with dim arrays and clusters
// unrolled, in address order.
func (g *Generator) expand(periph svd.PeripheralElement) []svd.RegisterElement {
	var out []svd.RegisterElement
	add := func(prefix string, base svd.Addressable, step svd.Integer, r svd.RegisterElement) {
		offset := base.GetAddressOffset() + step
		if r.Count == 0 {
			r.Name = prefix + r.Name
			r.AddressOffset = offset + r.GetAddressOffset()
			out = append(out, r)
			return
		}
		for i := svd.Integer(0); i < r.Count; i++ {
			e := r
			e.Name = prefix + dimName(r.Name, i)
			e.AddressOffset = offset + r.GetAddressOffset() + i*r.Increment
			e.Count = 0
			out = append(out, e)
		}
	}

	for _, r := range periph.Registers.RegisterElements {
		add("", svd.ClusterElement{}, 0, r)
	}
	for _, c := range periph.Registers.ClusterElements {
		count := c.Count
		if count == 0 {
			count = 1
		}
		for i := svd.Integer(0); i < count; i++ {
			prefix := dimName(c.Name, i) + "_"
			for _, r := range c.Registers {
				add(prefix, c, i*c.Increment, r)
			}
		}
	}

	slices.SortStableFunc(out, func(a, b svd.RegisterElement) bool {
		return a.AddressOffset < b.AddressOffset
	})
	return out
}

func dimName(name string, i svd.Integer) string {
	idx := strconv.FormatUint(uint64(i), 10)
	if strings.Contains(name, "[%s]") {
		return strings.ReplaceAll(name, "[%s]", idx)
	}
	return strings.ReplaceAll(name, "%s", idx)
}

// registers converts the SVD registers of periph. Registers and fields the
// register core cannot declare are skipped with a warning.
func (g *Generator) registers(periph svd.PeripheralElement, typeIdent string) []register {
	var (
		out   []register
		names = namer{}
	)
	for _, r := range g.expand(periph) {
		size := r.Size
		if size == 0 {
			size = g.device.RegisterSize
		}
		if size == 0 {
			size = 32
		}
		width, ok := widthOf(size)
		if !ok {
			pkg.LogWarn(pkg.ComponentGen, "skipping register", "peripheral", periph.Name, "register", r.Name, "size", uint64(size))
			continue
		}

		ident := exported(r.Name)
		if ident == "" {
			continue
		}
		rr := register{
			name:   r.Name,
			ident:  names.unique(ident),
			desc:   comment(r.Description),
			offset: uint64(r.AddressOffset),
			width:  width,
		}
		if r.ResetValue != nil {
			v := uint64(*r.ResetValue) & uint64(width.Mask())
			rr.reset = &v
		}
		rr.fields = g.fields(periph, r, rr, typeIdent+rr.ident)
		out = append(out, rr)
	}
	return out
}

func (g *Generator) fields(periph svd.PeripheralElement, r svd.RegisterElement, rr register, prefix string) []field {
	var (
		out   []field
		used  uint32
		names = namer{}
		seen  = map[string]bool{}
	)
	for _, f := range r.Fields.Elements {
		pos, n, err := f.Bits()
		if err != nil || n == 0 || int(pos)+int(n) > int(rr.width) || seen[f.Name] {
			pkg.LogWarn(pkg.ComponentGen, "skipping field",
				"peripheral", periph.Name, "register", r.Name, "field", f.Name, "error", err)
			continue
		}
		access := f.Access
		if access == "" {
			access = r.Access
		}
		if access == "" {
			access = g.device.DefaultAccess
		}
		mode, ok := accessMode(access, f.ModifiedWriteValues)
		if !ok {
			pkg.LogWarn(pkg.ComponentGen, "skipping field with unknown access",
				"register", r.Name, "field", f.Name, "access", access)
			continue
		}
		ident := exported(f.Name)
		if ident == "" {
			continue
		}
		seen[f.Name] = true

		ff := field{
			name:  f.Name,
			ident: names.unique(ident),
			desc:  comment(f.Description),
			bits:  reg.Bits{Name: f.Name, Pos: reg.Pos(pos), Len: n, Mode: mode},
		}
		mask := ff.bits.Mask()
		ff.alias = used&mask != 0
		used |= mask

		if len(f.EnumeratedValues.Elements) > 0 {
			ff.enum = enumOf(prefix+ff.ident, ff.bits, f.EnumeratedValues)
		}
		out = append(out, ff)
	}
	return out
}

func enumOf(ident string, b reg.Bits, ev svd.EnumeratedValuesElement) *enum {
	e := &enum{ident: ident}
	names := namer{}
	limit := uint64(b.Mask() >> b.Pos)
	for _, v := range ev.Elements {
		vi := exported(v.Name)
		if vi == "" || uint64(v.Value) > limit {
			continue
		}
		e.values = append(e.values, enumValue{
			ident: names.unique(ident + vi),
			desc:  comment(v.Description),
			value: uint64(v.Value),
		})
	}
	if len(e.values) == 0 {
		return nil
	}
	return e
}

// valueType returns the Go type a field's values are expressed in.
func (f field) valueType() string {
	if f.enum != nil {
		return f.enum.ident
	}
	return uintType(f.bits.Len)
}

func uintType(bits uint8) string {
	switch {
	case bits <= 8:
		return "uint8"
	case bits <= 16:
		return "uint16"
	}
	return "uint32"
}

func (f field) flag() bool {
	return f.bits.Len == 1 && f.enum == nil
}

func kind(m reg.Mode) string {
	switch m {
	case reg.ReadOnly:
		return "RO"
	case reg.WriteOnly:
		return "WO"
	case reg.ReadSet:
		return "RS"
	case reg.ReadClearOnWrite1:
		return "RC1"
	}
	return "RW"
}

// descriptor returns the Go type of the field's descriptor and the
// expression declaring it in table.
func (f field) descriptor(tag, table string) (typ, decl string) {
	k := kind(f.bits.Mode)
	opts := ""
	if f.alias {
		opts = ", reg.Alias"
	}
	if f.flag() {
		typ = fmt.Sprintf("reg.%sFlag[%s]", k, tag)
		decl = fmt.Sprintf("reg.New%sFlag(%s, %q, %d%s)", k, table, f.name, f.bits.Pos, opts)
		return typ, decl
	}
	typ = fmt.Sprintf("reg.%s[%s, %s]", k, tag, f.valueType())
	decl = fmt.Sprintf("reg.New%s[%s](%s, %q, %d, %d%s)", k, f.valueType(), table, f.name, f.bits.Pos, f.bits.Len, opts)
	return typ, decl
}
