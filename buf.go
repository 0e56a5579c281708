package egress

import (
	"encoding/binary"
	"errors"
)

// readBuf walks a binary value from the wire. All multi-byte fields in
// PostgreSQL binary representations are big-endian.
type readBuf []byte

var errShortRead = errors.New("egress: binary value truncated")

func (b *readBuf) int64() (n int64, err error) {
	if len(*b) < 8 {
		return 0, errShortRead
	}
	n = int64(binary.BigEndian.Uint64(*b))
	*b = (*b)[8:]
	return
}

func (b *readBuf) int32() (n int32, err error) {
	if len(*b) < 4 {
		return 0, errShortRead
	}
	n = int32(binary.BigEndian.Uint32(*b))
	*b = (*b)[4:]
	return
}

func (b *readBuf) int16() (n int16, err error) {
	if len(*b) < 2 {
		return 0, errShortRead
	}
	n = int16(binary.BigEndian.Uint16(*b))
	*b = (*b)[2:]
	return
}

func (b *readBuf) uint16() (n uint16, err error) {
	if len(*b) < 2 {
		return 0, errShortRead
	}
	n = binary.BigEndian.Uint16(*b)
	*b = (*b)[2:]
	return
}

func (b *readBuf) next(n int) (v []byte, err error) {
	if n < 0 || len(*b) < n {
		return nil, errShortRead
	}
	v = (*b)[:n]
	*b = (*b)[n:]
	return
}

// writeBuf accumulates a binary value in wire order.
type writeBuf []byte

func (b *writeBuf) int64(n int64) {
	x := make([]byte, 8)
	binary.BigEndian.PutUint64(x, uint64(n))
	*b = append(*b, x...)
}

func (b *writeBuf) int32(n int32) {
	x := make([]byte, 4)
	binary.BigEndian.PutUint32(x, uint32(n))
	*b = append(*b, x...)
}

func (b *writeBuf) int16(n int16) {
	x := make([]byte, 2)
	binary.BigEndian.PutUint16(x, uint16(n))
	*b = append(*b, x...)
}

func (b *writeBuf) uint16(n uint16) {
	x := make([]byte, 2)
	binary.BigEndian.PutUint16(x, n)
	*b = append(*b, x...)
}

func (b *writeBuf) bytes(v []byte) {
	*b = append(*b, v...)
}
