package egress

import (
	"encoding/json"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/cockroachdb/apd/v2"
	"github.com/egress-db/egress/oid"
)

// Param is an encoded statement parameter ready for ExecParams. A nil
// Value is sent as SQL NULL. OID 0 (or oid.T_unknown) with text format
// asks the server to infer the type.
type Param struct {
	OID    oid.Oid
	Value  []byte
	Binary bool
}

// Parameter may be implemented by values that know their own wire
// encoding; Encode consults it before the built-in conversions.
type Parameter interface {
	EncodeParam() (Param, error)
}

// Decoder converts the binary wire representation of one value into a
// native value. mod is the column's type modifier. Decoders receive the
// codec so container types can dispatch recursively.
type Decoder func(c *Codec, mod int, b []byte) (interface{}, error)

// Codec translates between PostgreSQL binary representations and native
// values. Decoders for all default types are pre-configured by NewCodec;
// they cannot be overridden, so that values keep behaving as documented.
type Codec struct {
	decoders       map[oid.Oid]Decoder
	defaultDecoder Decoder
}

// defaultCodec is built once at init and never mutated afterwards;
// connections use it unless given their own codec.
var defaultCodec *Codec

func init() {
	defaultCodec = NewCodec()
}

// NewCodec returns a codec with decoders for all default types
// pre-configured.
func NewCodec() *Codec {
	c := &Codec{decoders: make(map[oid.Oid]Decoder)}
	c.decoders[oid.T_bool] = decodeBool
	c.decoders[oid.T_bytea] = decodeBytea
	c.decoders[oid.T_char] = decodeText
	c.decoders[oid.T_name] = decodeText
	c.decoders[oid.T_int2] = decodeInt2
	c.decoders[oid.T_int4] = decodeInt4
	c.decoders[oid.T_int8] = decodeInt8
	c.decoders[oid.T_text] = decodeText
	c.decoders[oid.T_oid] = decodeInt4
	c.decoders[oid.T_cidr] = decodeInet
	c.decoders[oid.T_float4] = decodeFloat4
	c.decoders[oid.T_float8] = decodeFloat8
	c.decoders[oid.T_inet] = decodeInet
	c.decoders[oid.T_unknown] = decodeText
	c.decoders[oid.T_bpchar] = decodeText
	c.decoders[oid.T_varchar] = decodeText
	c.decoders[oid.T_date] = decodeDate
	c.decoders[oid.T_time] = decodeTime
	c.decoders[oid.T_timestamp] = decodeTimestamp
	c.decoders[oid.T_timestamptz] = decodeTimestamp
	c.decoders[oid.T_interval] = decodeInterval
	c.decoders[oid.T_timetz] = decodeTime
	c.decoders[oid.T_numeric] = decodeNumeric
	c.decoders[oid.T_uuid] = decodeUUID
	c.decoders[oid.T_jsonb] = decodeJSONB
	for _, t := range []oid.Oid{
		oid.T_int2vector, oid.T__bool, oid.T__bytea, oid.T__name,
		oid.T__int2, oid.T__int4, oid.T__text, oid.T__varchar, oid.T__int8,
		oid.T__float4, oid.T__float8, oid.T__inet, oid.T__timestamp,
		oid.T__date, oid.T__time, oid.T__timestamptz, oid.T__numeric,
		oid.T__uuid, oid.T__jsonb,
	} {
		c.decoders[t] = decodeArray
	}
	return c
}

// RegisterDecoder adds a decoder for a type OID. Decoders can only be
// registered once; the default types are pre-configured and cannot be
// replaced.
func (c *Codec) RegisterDecoder(typ oid.Oid, d Decoder) error {
	if _, exists := c.decoders[typ]; exists {
		return errorf(Programming, "decoder already exists for oid %d", typ)
	}
	c.decoders[typ] = d
	return nil
}

// RegisterDefaultDecoder sets a catch-all decoder used when no decoder
// matches by OID. Without one, decoding an unknown OID fails with
// UnsupportedTypeError.
func (c *Codec) RegisterDefaultDecoder(d Decoder) {
	c.defaultDecoder = d
}

// Decode converts the binary bytes of one non-NULL value. SQL NULL never
// reaches Decode: the cursor checks the result handle's null flag first.
// A zero-length value is valid input and yields the type's zero value.
func (c *Codec) Decode(typ oid.Oid, mod int, b []byte) (interface{}, error) {
	dec, ok := c.decoders[typ]
	if !ok {
		if c.defaultDecoder == nil {
			return nil, errorf(UnsupportedType, "no decoder for type oid %d", typ)
		}
		dec = c.defaultDecoder
	}
	return dec(c, mod, b)
}

// Encode converts a native value into its wire parameter form. Values
// implementing Parameter encode themselves. Unhandled types degrade to
// their string form tagged type-unknown, so the server infers the type.
func (c *Codec) Encode(v interface{}) (Param, error) {
	switch x := v.(type) {
	case nil:
		return Param{}, nil
	case Parameter:
		return x.EncodeParam()
	case bool:
		b := byte(0)
		if x {
			b = 1
		}
		return Param{OID: oid.T_bool, Value: []byte{b}, Binary: true}, nil
	case int:
		return encodeInt(int64(x)), nil
	case int16:
		return encodeInt(int64(x)), nil
	case int32:
		return encodeInt(int64(x)), nil
	case int64:
		return encodeInt(x), nil
	case float32:
		var w writeBuf
		w.int32(int32(math.Float32bits(x)))
		return Param{OID: oid.T_float4, Value: w, Binary: true}, nil
	case float64:
		var w writeBuf
		w.int64(int64(math.Float64bits(x)))
		return Param{OID: oid.T_float8, Value: w, Binary: true}, nil
	case []byte:
		return Param{OID: oid.T_bytea, Value: x, Binary: true}, nil
	case string:
		// Callers often pass strings for other types and rely on the SQL
		// parser to sort it out, so strings go as "guess this" text.
		return Param{OID: oid.T_unknown, Value: []byte(x)}, nil
	case time.Time:
		return encodeTimestamp(x), nil
	case time.Duration:
		return encodeInterval(x), nil
	case *apd.Decimal:
		return encodeNumeric(x), nil
	case apd.Decimal:
		return encodeNumeric(&x), nil
	default:
		return Param{OID: oid.T_unknown, Value: []byte(fmt.Sprint(v))}, nil
	}
}

// RegisterDecoder adds a decoder to the default codec.
func RegisterDecoder(typ oid.Oid, d Decoder) error {
	return defaultCodec.RegisterDecoder(typ, d)
}

// RegisterDefaultDecoder sets the default codec's catch-all decoder.
func RegisterDefaultDecoder(d Decoder) {
	defaultCodec.RegisterDefaultDecoder(d)
}

// encodeInt picks the narrowest integer type that holds n, the way the
// backend prefers int2/int4/int8 parameters.
func encodeInt(n int64) Param {
	var w writeBuf
	switch {
	case n >= math.MinInt16 && n <= math.MaxInt16:
		w.int16(int16(n))
		return Param{OID: oid.T_int2, Value: w, Binary: true}
	case n >= math.MinInt32 && n <= math.MaxInt32:
		w.int32(int32(n))
		return Param{OID: oid.T_int4, Value: w, Binary: true}
	default:
		w.int64(n)
		return Param{OID: oid.T_int8, Value: w, Binary: true}
	}
}

func decodeBool(_ *Codec, _ int, b []byte) (interface{}, error) {
	if len(b) == 0 {
		return false, nil
	}
	return b[0] != 0, nil
}

func decodeBytea(_ *Codec, _ int, b []byte) (interface{}, error) {
	v := make([]byte, len(b))
	copy(v, b)
	return v, nil
}

func decodeText(_ *Codec, _ int, b []byte) (interface{}, error) {
	return string(b), nil
}

func decodeInt2(_ *Codec, _ int, b []byte) (interface{}, error) {
	if len(b) == 0 {
		return int64(0), nil
	}
	r := readBuf(b)
	n, err := r.int16()
	if err != nil {
		return nil, errorf(Data, "int2: %s", err)
	}
	return int64(n), nil
}

func decodeInt4(_ *Codec, _ int, b []byte) (interface{}, error) {
	if len(b) == 0 {
		return int64(0), nil
	}
	r := readBuf(b)
	n, err := r.int32()
	if err != nil {
		return nil, errorf(Data, "int4: %s", err)
	}
	return int64(n), nil
}

func decodeInt8(_ *Codec, _ int, b []byte) (interface{}, error) {
	if len(b) == 0 {
		return int64(0), nil
	}
	r := readBuf(b)
	n, err := r.int64()
	if err != nil {
		return nil, errorf(Data, "int8: %s", err)
	}
	return n, nil
}

func decodeFloat4(_ *Codec, _ int, b []byte) (interface{}, error) {
	if len(b) == 0 {
		return float64(0), nil
	}
	r := readBuf(b)
	n, err := r.int32()
	if err != nil {
		return nil, errorf(Data, "float4: %s", err)
	}
	return float64(math.Float32frombits(uint32(n))), nil
}

func decodeFloat8(_ *Codec, _ int, b []byte) (interface{}, error) {
	if len(b) == 0 {
		return float64(0), nil
	}
	r := readBuf(b)
	n, err := r.int64()
	if err != nil {
		return nil, errorf(Data, "float8: %s", err)
	}
	return math.Float64frombits(uint64(n)), nil
}

func decodeUUID(_ *Codec, _ int, b []byte) (interface{}, error) {
	if len(b) == 0 {
		return "", nil
	}
	if len(b) != 16 {
		return nil, errorf(Data, "uuid: expected 16 bytes, got %d", len(b))
	}
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16]), nil
}

func decodeJSONB(_ *Codec, _ int, b []byte) (interface{}, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if b[0] != 1 {
		return nil, errorf(Data, "jsonb: unknown version %d", b[0])
	}
	var v interface{}
	if err := json.Unmarshal(b[1:], &v); err != nil {
		return nil, errorf(Data, "jsonb: %s", err)
	}
	return v, nil
}

// inet/cidr wire format: address family, netmask bits, is-cidr flag,
// address length, then the address bytes.
func decodeInet(_ *Codec, _ int, b []byte) (interface{}, error) {
	if len(b) == 0 {
		return "", nil
	}
	if len(b) < 4 || len(b) < 4+int(b[3]) {
		return nil, errorf(Data, "inet: value truncated")
	}
	bits := int(b[1])
	addr := net.IP(b[4 : 4+int(b[3])])
	max := 8 * int(b[3])
	if bits < max {
		return fmt.Sprintf("%s/%d", addr.String(), bits), nil
	}
	return addr.String(), nil
}
