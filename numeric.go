package egress

import (
	"strings"

	"github.com/cockroachdb/apd/v2"
	"github.com/egress-db/egress/oid"
)

// The numeric wire format is a header of four 16-bit big-endian fields —
// digit-group count, weight, sign, display scale — followed by the digit
// groups, each holding 4 decimal digits in base 10000. The weight is the
// group index, counted from the decimal point, of the first group sent;
// all-zero groups at either end are omitted.

const (
	numericPos = 0x0000
	numericNeg = 0x4000
	numericNaN = 0xC000

	// decimal digits per base-10000 group
	decDigits = 4
)

func decodeNumeric(_ *Codec, _ int, b []byte) (interface{}, error) {
	if len(b) == 0 {
		return new(apd.Decimal), nil
	}
	r := readBuf(b)
	ndigits, err := r.uint16()
	if err != nil {
		return nil, errorf(Data, "numeric: %s", err)
	}
	weight, err := r.int16()
	if err != nil {
		return nil, errorf(Data, "numeric: %s", err)
	}
	sign, err := r.uint16()
	if err != nil {
		return nil, errorf(Data, "numeric: %s", err)
	}
	dscale, err := r.int16()
	if err != nil {
		return nil, errorf(Data, "numeric: %s", err)
	}

	if sign == numericNaN {
		d := new(apd.Decimal)
		d.Form = apd.NaN
		return d, nil
	}
	if sign != numericPos && sign != numericNeg {
		return nil, errorf(Data, "numeric: unsupported sign %#x", sign)
	}

	d := new(apd.Decimal)
	if ndigits > 0 {
		// Lay every group out as exactly 4 decimal digits, zero-padded on
		// the left: 1 -> "0001", 123 -> "0123".
		digits := make([]byte, 0, int(ndigits)*decDigits)
		for i := 0; i < int(ndigits); i++ {
			g, err := r.uint16()
			if err != nil {
				return nil, errorf(Data, "numeric: %s", err)
			}
			if g > 9999 {
				return nil, errorf(Data, "numeric: digit group %d out of range", g)
			}
			digits = append(digits,
				byte('0'+g/1000), byte('0'+g/100%10), byte('0'+g/10%10), byte('0'+g%10))
		}

		// The groups right of the decimal point are those past index
		// `weight`; the backend may have sent more trailing digits than
		// dscale keeps significant, so trim back to dscale.
		rhs := (int(ndigits) - (int(weight) + 1)) * decDigits
		if over := rhs - int(dscale); over > 0 {
			rhs -= over
			digits = digits[:len(digits)-over]
		}
		if _, ok := d.Coeff.SetString(string(digits), 10); !ok {
			return nil, errorf(Data, "numeric: bad digit string %q", digits)
		}
		d.Exponent = -int32(rhs)
	} else if dscale > 0 {
		d.Exponent = -int32(dscale)
	}
	if sign == numericNeg {
		d.Negative = true
	}
	return d, nil
}

func encodeNumeric(d *apd.Decimal) Param {
	var w writeBuf
	if d.Form == apd.NaN {
		w.uint16(0)
		w.int16(0)
		w.uint16(numericNaN)
		w.int16(0)
		return Param{OID: oid.T_numeric, Value: w, Binary: true}
	}

	digits := d.Coeff.String()
	dscale := 0
	if d.Exponent < 0 {
		dscale = int(-d.Exponent)
	} else if d.Exponent > 0 {
		digits += strings.Repeat("0", int(d.Exponent))
	}

	// Split into integer and fractional digits, then into base-10000
	// groups: integer digits padded to a group boundary on the left,
	// fractional digits on the right.
	intDigits, fracDigits := "", digits
	if len(digits) > dscale {
		intDigits = digits[:len(digits)-dscale]
		fracDigits = digits[len(digits)-dscale:]
	} else {
		fracDigits = strings.Repeat("0", dscale-len(digits)) + digits
	}
	if pad := len(intDigits) % decDigits; pad != 0 {
		intDigits = strings.Repeat("0", decDigits-pad) + intDigits
	}
	if pad := len(fracDigits) % decDigits; pad != 0 {
		fracDigits += strings.Repeat("0", decDigits-pad)
	}

	weight := len(intDigits)/decDigits - 1
	groups := make([]uint16, 0, (len(intDigits)+len(fracDigits))/decDigits)
	for _, s := range []string{intDigits, fracDigits} {
		for i := 0; i < len(s); i += decDigits {
			g := uint16(s[i]-'0')*1000 + uint16(s[i+1]-'0')*100 +
				uint16(s[i+2]-'0')*10 + uint16(s[i+3]-'0')
			groups = append(groups, g)
		}
	}

	// The backend omits all-zero groups at either end; the weight tracks
	// what was dropped in front.
	for len(groups) > 0 && groups[0] == 0 {
		groups = groups[1:]
		weight--
	}
	for len(groups) > 0 && groups[len(groups)-1] == 0 {
		groups = groups[:len(groups)-1]
	}
	if len(groups) == 0 {
		weight = 0
	}

	sign := uint16(numericPos)
	if d.Negative {
		sign = numericNeg
	}
	w.uint16(uint16(len(groups)))
	w.int16(int16(weight))
	w.uint16(sign)
	w.int16(int16(dscale))
	for _, g := range groups {
		w.uint16(g)
	}
	return Param{OID: oid.T_numeric, Value: w, Binary: true}
}
