package svd

import (
	"strings"
	"testing"
)

const sample = `<?xml version="1.0" encoding="utf-8"?>
<device>
  <name>TESTCHIP</name>
  <size>32</size>
  <access>read-write</access>
  <cpu>
    <name>CM4</name>
    <nvicPrioBits>4</nvicPrioBits>
  </cpu>
  <peripherals>
    <peripheral>
      <name>TIM2</name>
      <baseAddress>0x40000000</baseAddress>
      <interrupt><name>TIM2</name><value>28</value></interrupt>
      <registers>
        <register>
          <name>CR1</name>
          <addressOffset>0x0</addressOffset>
          <resetValue>0X0000</resetValue>
          <fields>
            <field><name>CEN</name><bitOffset>0</bitOffset><bitWidth>1</bitWidth></field>
            <field><name>CKD</name><bitRange>[9:8]</bitRange></field>
          </fields>
        </register>
      </registers>
    </peripheral>
    <peripheral derivedFrom="TIM2">
      <name>TIM3</name>
      <baseAddress>1073742848</baseAddress>
    </peripheral>
  </peripherals>
</device>`

func TestDecode(t *testing.T) {
	device, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	if device.Name != "TESTCHIP" || device.CPU.NVICPriorityBits != 4 || device.RegisterSize != 32 {
		t.Fatalf("device = %+v", device)
	}

	i, ok := device.Peripherals.Find("TIM3")
	if !ok {
		t.Fatal("TIM3 not found")
	}
	tim3 := device.Peripherals.Elements[i]
	if tim3.DerivedFrom != "TIM2" || tim3.BaseAddress != 0x40000400 {
		t.Errorf("TIM3 = %+v", tim3)
	}

	cr1 := device.Peripherals.Elements[0].Registers.RegisterElements[0]
	if cr1.ResetValue == nil || *cr1.ResetValue != 0 {
		t.Errorf("CR1 reset = %v", cr1.ResetValue)
	}
}

func TestFieldBits(t *testing.T) {
	tests := []struct {
		field  FieldElement
		offset uint8
		width  uint8
		fails  bool
	}{
		{FieldElement{Name: "A", BitOffset: 4, BitWidth: 3}, 4, 3, false},
		{FieldElement{Name: "B", BitRange: "[9:8]"}, 8, 2, false},
		{FieldElement{Name: "C", BitRange: "[31:0]"}, 0, 32, false},
		{FieldElement{Name: "D", BitRange: "[3-0]"}, 0, 0, true},
		{FieldElement{Name: "E", BitRange: "[0:3]"}, 0, 0, true},
	}
	for _, tt := range tests {
		offset, width, err := tt.field.Bits()
		if (err != nil) != tt.fails {
			t.Errorf("%s: err = %v", tt.field.Name, err)
			continue
		}
		if !tt.fails && (offset != tt.offset || width != tt.width) {
			t.Errorf("%s: (%d, %d), want (%d, %d)", tt.field.Name, offset, width, tt.offset, tt.width)
		}
	}
}
