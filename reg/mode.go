package reg

// Mode is the access mode of a bit-field. The low byte distinguishes the
// write flavours of readable and writable fields.
type Mode uint16

const (
	readable Mode = 0x100
	writable Mode = 0x010

	ReadOnly          Mode = 0x100
	WriteOnly         Mode = 0x010
	ReadWrite         Mode = 0x110
	ReadSet           Mode = 0x111
	ReadClearOnWrite1 Mode = 0x112
)

func (m Mode) Readable() bool { return m&readable != 0 }
func (m Mode) Writable() bool { return m&writable != 0 }

// Settable reports whether a single bit of this mode may be written with 1.
func (m Mode) Settable() bool { return m.Writable() }

// Clearable reports whether a single bit of this mode may be written with 0
// and keep that meaning. Writing 0 to a read-set or write-1-to-clear bit is a
// no-op on hardware.
func (m Mode) Clearable() bool { return m == ReadWrite || m == WriteOnly }

// Direct reports whether a write touching this mode must be a plain store.
// Reading back such a register does not yield a value worth preserving.
// Write-1-to-clear fields are not direct: a plain store would zero the
// read-write fields sharing their register.
func (m Mode) Direct() bool {
	return m == WriteOnly || m == ReadSet
}

func (m Mode) String() string {
	switch m {
	case ReadOnly:
		return "read-only"
	case WriteOnly:
		return "write-only"
	case ReadWrite:
		return "read-write"
	case ReadSet:
		return "read-set"
	case ReadClearOnWrite1:
		return "read-clear-on-write-1"
	}
	return "mode(invalid)"
}
