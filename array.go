package egress

import "github.com/egress-db/egress/oid"

// Array wire format: dimension count, flags (ignored), the element type
// OID, then per dimension an (upper bound, lower bound) pair, then each
// element as a length-prefixed value. An element length of -1 is a SQL
// NULL element, not an absent one.
//
// Only one-dimensional arrays are handled; anything else fails with
// UnsupportedArrayDimensionError rather than decoding a truncation.
func decodeArray(c *Codec, mod int, b []byte) (interface{}, error) {
	if len(b) == 0 {
		return []interface{}{}, nil
	}
	r := readBuf(b)
	ndim, err := r.int32()
	if err != nil {
		return nil, errorf(Data, "array: %s", err)
	}
	if _, err := r.int32(); err != nil { // flags
		return nil, errorf(Data, "array: %s", err)
	}
	elemTyp, err := r.int32()
	if err != nil {
		return nil, errorf(Data, "array: %s", err)
	}
	if ndim == 0 {
		return []interface{}{}, nil
	}
	if ndim != 1 {
		return nil, errorf(UnsupportedArrayDimension, "%d-dimensional array; only one dimension is handled", ndim)
	}

	dim, err := r.int32()
	if err != nil {
		return nil, errorf(Data, "array: %s", err)
	}
	if _, err := r.int32(); err != nil { // lower bound
		return nil, errorf(Data, "array: %s", err)
	}

	vals := make([]interface{}, 0, dim)
	for i := int32(0); i < dim; i++ {
		n, err := r.int32()
		if err != nil {
			return nil, errorf(Data, "array: %s", err)
		}
		if n == -1 {
			vals = append(vals, nil)
			continue
		}
		eb, err := r.next(int(n))
		if err != nil {
			return nil, errorf(Data, "array: %s", err)
		}
		v, err := c.Decode(oid.Oid(elemTyp), mod, eb)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}
