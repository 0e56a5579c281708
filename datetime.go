package egress

import (
	"math"
	"time"

	"github.com/egress-db/egress/oid"
)

// PostgreSQL's binary date and timestamp formats count from 2000-01-01.
var postgresEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Infinite dates and timestamps are sent as sentinel values.
const (
	datePosInfinity = 0x7FFFFFFF
	dateNegInfinity = -0x7FFFFFFF - 1
)

// DatePositiveInfinity and DateNegativeInfinity are the values `infinity`
// and `-infinity` decode to for date and timestamp columns.
var (
	DatePositiveInfinity = time.Date(9999, time.December, 31, 23, 59, 59, 999999000, time.UTC)
	DateNegativeInfinity = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// Clock represents a value of the PostgreSQL `time` types: a time of day
// with no date attached.
type Clock struct {
	Hour, Minute, Second, Microsecond int
}

// EncodeParam implements Parameter. The wire value is microseconds since
// midnight in a 64-bit integer.
func (c Clock) EncodeParam() (Param, error) {
	return encodeClock(c), nil
}

func encodeClock(c Clock) Param {
	us := ((int64(c.Hour)*60+int64(c.Minute))*60+int64(c.Second))*1e6 + int64(c.Microsecond)
	var w writeBuf
	w.int64(us)
	return Param{OID: oid.T_time, Value: w, Binary: true}
}

func decodeTime(_ *Codec, _ int, b []byte) (interface{}, error) {
	if len(b) == 0 {
		return Clock{}, nil
	}
	// timetz carries a trailing zone offset; the time of day part is
	// identical.
	r := readBuf(b)
	us, err := r.int64()
	if err != nil {
		return nil, errorf(Data, "time: %s", err)
	}
	c := Clock{Microsecond: int(us % 1e6)}
	s := us / 1e6
	c.Second = int(s % 60)
	m := s / 60
	c.Minute = int(m % 60)
	c.Hour = int(m / 60)
	return c, nil
}

// date: days since 2000-01-01 in a 32-bit integer.
func decodeDate(_ *Codec, _ int, b []byte) (interface{}, error) {
	if len(b) == 0 {
		return time.Time{}, nil
	}
	r := readBuf(b)
	days, err := r.int32()
	if err != nil {
		return nil, errorf(Data, "date: %s", err)
	}
	switch days {
	case datePosInfinity:
		return DatePositiveInfinity, nil
	case dateNegInfinity:
		return DateNegativeInfinity, nil
	}
	return postgresEpoch.AddDate(0, 0, int(days)), nil
}

// Date represents a PostgreSQL `date` value: a calendar day with no time
// of day attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// EncodeParam implements Parameter.
func (d Date) EncodeParam() (Param, error) {
	return encodeDate(time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)), nil
}

func encodeDate(t time.Time) Param {
	y, m, d := t.Date()
	days := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Sub(postgresEpoch) / (24 * time.Hour)
	var w writeBuf
	w.int32(int32(days))
	return Param{OID: oid.T_date, Value: w, Binary: true}
}

// timestamp/timestamptz: microseconds since 2000-01-01 in a 64-bit
// integer. timestamptz is always transmitted in UTC.
func decodeTimestamp(_ *Codec, _ int, b []byte) (interface{}, error) {
	if len(b) == 0 {
		return time.Time{}, nil
	}
	r := readBuf(b)
	us, err := r.int64()
	if err != nil {
		return nil, errorf(Data, "timestamp: %s", err)
	}
	switch us {
	case math.MaxInt64:
		return DatePositiveInfinity, nil
	case math.MinInt64:
		return DateNegativeInfinity, nil
	}
	return postgresEpoch.Add(time.Duration(us) * time.Microsecond), nil
}

func encodeTimestamp(t time.Time) Param {
	us := t.UTC().Sub(postgresEpoch) / time.Microsecond
	var w writeBuf
	w.int64(int64(us))
	return Param{OID: oid.T_timestamptz, Value: w, Binary: true}
}

// interval: microseconds within the day, then whole days, then whole
// months, each big-endian.
func decodeInterval(_ *Codec, _ int, b []byte) (interface{}, error) {
	if len(b) == 0 {
		return time.Duration(0), nil
	}
	r := readBuf(b)
	us, err := r.int64()
	if err != nil {
		return nil, errorf(Data, "interval: %s", err)
	}
	days, err := r.int32()
	if err != nil {
		return nil, errorf(Data, "interval: %s", err)
	}
	months, err := r.int32()
	if err != nil {
		return nil, errorf(Data, "interval: %s", err)
	}
	d := time.Duration(us) * time.Microsecond
	d += time.Duration(int64(days)+int64(months)*30) * 24 * time.Hour
	return d, nil
}

func encodeInterval(d time.Duration) Param {
	days := int32(d / (24 * time.Hour))
	rem := d % (24 * time.Hour)
	months := days / 30
	days %= 30
	var w writeBuf
	w.int64(int64(rem / time.Microsecond))
	w.int32(days)
	w.int32(months)
	return Param{OID: oid.T_interval, Value: w, Binary: true}
}
