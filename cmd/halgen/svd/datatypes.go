package svd

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Integer is an SVD scaledNonNegativeInteger: decimal, or hexadecimal with
// a 0x prefix.
type Integer uint64

func (h *Integer) UnmarshalXML(d *xml.Decoder, start xml.StartElement) (err error) {
	var v string
	if err = d.DecodeElement(&v, &start); err != nil {
		return err
	}
	v = strings.TrimSpace(v)

	var value uint64
	if s, ok := cutHex(v); ok {
		value, err = strconv.ParseUint(s, 16, 64)
	} else {
		value, err = strconv.ParseUint(v, 10, 64)
	}

	if err != nil {
		return err
	}
	*h = Integer(value)
	return nil
}

func cutHex(v string) (string, bool) {
	if s, ok := strings.CutPrefix(v, "0x"); ok {
		return s, true
	}
	return strings.CutPrefix(v, "0X")
}
