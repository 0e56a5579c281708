package egress

import (
	"github.com/egress-db/egress/driver"
	"github.com/egress-db/egress/oid"
)

// Variable-length type modifiers carry a 4-byte header the backend adds
// on top of the declared size.
const modHeaderSize = 4

// Row is one decoded result row, positionally aligned with the cursor's
// Description.
type Row []interface{}

// FieldDescription describes one output column of an executed statement.
type FieldDescription struct {
	Name string
	// OID of the column's data type.
	OID oid.Oid
	// Size is the type's fixed byte width; negative values denote
	// variable-width types (see pg_type.typlen).
	Size int
	// Mod is the type modifier (pg_attribute.atttypmod); its meaning is
	// type-specific.
	Mod int
}

// TypeName returns the pg_type name of the column's type, or "" when the
// OID is not one the codec knows.
func (fd FieldDescription) TypeName() string {
	return oid.TypeName[fd.OID]
}

// InternalSize returns the column's internal storage size: the fixed
// width when the type has one, otherwise the size derived from the type
// modifier; -1 when the length is unbounded.
func (fd FieldDescription) InternalSize() int {
	if fd.Size >= 0 {
		return fd.Size
	}
	switch fd.OID {
	case oid.T_varchar, oid.T_bpchar:
		if fd.Mod >= modHeaderSize {
			return fd.Mod - modHeaderSize
		}
	}
	return -1
}

// DisplaySize returns the recommended display width, when one can be
// derived from the descriptor.
func (fd FieldDescription) DisplaySize() (int, bool) {
	switch fd.OID {
	case oid.T_varchar, oid.T_bpchar:
		if fd.Mod >= modHeaderSize {
			return fd.Mod - modHeaderSize, true
		}
	}
	return 0, false
}

// PrecisionScale returns the precision and scale for numeric columns,
// packed by the backend into the high and low 16 bits of the modifier.
// ok is false for every other type.
func (fd FieldDescription) PrecisionScale() (precision, scale int, ok bool) {
	switch fd.OID {
	case oid.T_numeric, oid.T__numeric:
		if fd.Mod < modHeaderSize {
			return 0, 0, false
		}
		mod := fd.Mod - modHeaderSize
		return (mod >> 16) & 0xffff, mod & 0xffff, true
	}
	return 0, 0, false
}

// describeResult derives the per-column descriptors from a result
// handle, in wire column order.
func describeResult(res driver.Result) []FieldDescription {
	n := res.FieldCount()
	if n == 0 {
		return nil
	}
	desc := make([]FieldDescription, n)
	for i := 0; i < n; i++ {
		desc[i] = FieldDescription{
			Name: res.FieldName(i),
			OID:  res.FieldType(i),
			Size: res.FieldSize(i),
			Mod:  res.FieldMod(i),
		}
	}
	return desc
}
