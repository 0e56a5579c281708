package egress

import (
	"testing"

	"github.com/egress-db/egress/internal/pqtest"
	"github.com/egress-db/egress/oid"
)

func TestFieldDescription(t *testing.T) {
	t.Run("fixed-width", func(t *testing.T) {
		fd := FieldDescription{Name: "id", OID: oid.T_int4, Size: 4, Mod: -1}
		if fd.TypeName() != "INT4" {
			t.Errorf("type name = %q", fd.TypeName())
		}
		if fd.InternalSize() != 4 {
			t.Errorf("internal size = %d", fd.InternalSize())
		}
		if _, ok := fd.DisplaySize(); ok {
			t.Error("display size defined for int4")
		}
		if _, _, ok := fd.PrecisionScale(); ok {
			t.Error("precision defined for int4")
		}
	})

	t.Run("varchar", func(t *testing.T) {
		// varchar(80): the modifier is the declared length plus the header.
		fd := FieldDescription{Name: "name", OID: oid.T_varchar, Size: -1, Mod: 84}
		if fd.InternalSize() != 80 {
			t.Errorf("internal size = %d", fd.InternalSize())
		}
		if n, ok := fd.DisplaySize(); !ok || n != 80 {
			t.Errorf("display size = %d, %v", n, ok)
		}
	})

	t.Run("unconstrained-text", func(t *testing.T) {
		fd := FieldDescription{Name: "body", OID: oid.T_text, Size: -1, Mod: -1}
		if fd.InternalSize() != -1 {
			t.Errorf("internal size = %d", fd.InternalSize())
		}
	})

	t.Run("numeric", func(t *testing.T) {
		// numeric(10,2) packs precision and scale into the modifier.
		fd := FieldDescription{Name: "amount", OID: oid.T_numeric, Size: -1, Mod: (10<<16 | 2) + 4}
		p, s, ok := fd.PrecisionScale()
		if !ok || p != 10 || s != 2 {
			t.Errorf("precision, scale = %d, %d, %v", p, s, ok)
		}
	})
}

func TestDescribeResult(t *testing.T) {
	res := pqtest.Rows([]pqtest.Col{
		pqtest.Int4Col("id"),
		{Name: "name", Type: oid.T_varchar, Size: -1, Mod: 36},
	})
	desc := describeResult(res)
	if len(desc) != 2 {
		t.Fatalf("len = %d", len(desc))
	}
	if desc[0].Name != "id" || desc[0].OID != oid.T_int4 || desc[0].Size != 4 {
		t.Errorf("desc[0] = %+v", desc[0])
	}
	if desc[1].Name != "name" || desc[1].InternalSize() != 32 {
		t.Errorf("desc[1] = %+v", desc[1])
	}
}

func TestDescribeResultNoColumns(t *testing.T) {
	if desc := describeResult(pqtest.Command("1")); desc != nil {
		t.Errorf("desc = %+v", desc)
	}
}
