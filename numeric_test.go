package egress

import (
	"testing"

	"github.com/cockroachdb/apd/v2"
)

func mustDecimal(t *testing.T, s string) *apd.Decimal {
	t.Helper()
	d, _, err := apd.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestNumericRoundTrip(t *testing.T) {
	tests := []string{
		"0",
		"0.00",
		"1",
		"-1",
		"42",
		"1000.02",
		"-0.0001",
		"9999",
		"10000",
		"12345678.87654321",
		"1000000",
		"0.000000001",
		"-99999999999999999999.9999999999",
	}

	for _, tt := range tests {
		t.Run(tt, func(t *testing.T) {
			want := mustDecimal(t, tt)
			p := encodeNumeric(want)
			have, err := decodeNumeric(nil, -1, p.Value)
			if err != nil {
				t.Fatal(err)
			}
			d := have.(*apd.Decimal)
			if d.Cmp(want) != 0 {
				t.Errorf("\nhave: %s\nwant: %s", d, want)
			}
			if d.Negative != want.Negative {
				t.Errorf("negative = %v, want %v", d.Negative, want.Negative)
			}
		})
	}
}

func TestNumericNaN(t *testing.T) {
	d := &apd.Decimal{Form: apd.NaN}
	p := encodeNumeric(d)
	have, err := decodeNumeric(nil, -1, p.Value)
	if err != nil {
		t.Fatal(err)
	}
	if have.(*apd.Decimal).Form != apd.NaN {
		t.Errorf("have %s", have)
	}
}

// Wire representations the backend actually sends: groups are base
// 10000, the weight places the first group, and all-zero edge groups
// are omitted.
func TestNumericDecodeWire(t *testing.T) {
	tests := []struct {
		name   string
		groups []uint16
		weight int16
		sign   uint16
		dscale int16
		want   string
	}{
		{"one-and-a-half", []uint16{1, 5000}, 0, numericPos, 1, "1.5"},
		{"grouped", []uint16{1000, 2}, 0, numericPos, 4, "1000.0002"},
		{"negative-fraction", []uint16{1}, -1, numericNeg, 4, "-0.0001"},
		{"deep-fraction", []uint16{1000}, -2, numericPos, 5, "0.00001"},
		{"trailing-zeros-trimmed", []uint16{1, 5000}, 0, numericPos, 3, "1.500"},
		{"zero-with-scale", nil, 0, numericPos, 2, "0.00"},
		{"large-gap", []uint16{7}, 3, numericPos, 0, "7000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w writeBuf
			w.uint16(uint16(len(tt.groups)))
			w.int16(tt.weight)
			w.uint16(tt.sign)
			w.int16(tt.dscale)
			for _, g := range tt.groups {
				w.uint16(g)
			}

			have, err := decodeNumeric(nil, -1, w)
			if err != nil {
				t.Fatal(err)
			}
			want := mustDecimal(t, tt.want)
			d := have.(*apd.Decimal)
			if d.Cmp(want) != 0 {
				t.Errorf("\nhave: %s\nwant: %s", d, want)
			}
		})
	}
}

func TestNumericDecodeBadSign(t *testing.T) {
	var w writeBuf
	w.uint16(0)
	w.int16(0)
	w.uint16(0x8000)
	w.int16(0)
	if _, err := decodeNumeric(nil, -1, w); err == nil {
		t.Fatal("bad sign accepted")
	}
}

func TestNumericDecodeEmpty(t *testing.T) {
	have, err := decodeNumeric(nil, -1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if have.(*apd.Decimal).Cmp(mustDecimal(t, "0")) != 0 {
		t.Errorf("have %s", have)
	}
}
