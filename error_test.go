package egress

import (
	"errors"
	"testing"
)

func TestClassifyState(t *testing.T) {
	tests := []struct {
		code string
		want ErrorKind
	}{
		{"23505", Integrity},
		{"23503", Integrity},
		{"42601", Programming},
		{"42P01", Programming},
		{"40001", Programming},
		{"22012", Data},
		{"22P02", Data},
		{"0A000", NotSupported},
		{"25001", Internal},
		{"XX000", Internal},
		{"P0001", Internal},
		{"53300", Operational},
		{"57014", Operational},
		{"28P01", Operational},

		// Unknown classes and malformed codes fall back to the base kind.
		{"99999", Database},
		{"", Database},
		{"4", Database},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if have := classifyState(tt.code); have != tt.want {
				t.Errorf("have %s, want %s", have, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		in   *Error
		want string
	}{
		{
			&Error{Kind: Integrity, Code: "23505", Message: `duplicate key value violates unique constraint "t_pkey"`},
			`egress: IntegrityError: duplicate key value violates unique constraint "t_pkey" (23505)`,
		},
		{
			&Error{Kind: Interface, Message: "cursor is closed"},
			"egress: InterfaceError: cursor is closed",
		},
		{
			&Error{Message: "something unclassifiable"},
			"egress: DatabaseError: something unclassifiable",
		},
	}

	for _, tt := range tests {
		if have := tt.in.Error(); have != tt.want {
			t.Errorf("\nhave: %q\nwant: %q", have, tt.want)
		}
	}
}

func TestErrorSQLState(t *testing.T) {
	err := error(&Error{Kind: Programming, Code: "42601", Message: "syntax error"})
	var sqlErr interface{ SQLState() string }
	if !errors.As(err, &sqlErr) {
		t.Fatal("SQLState interface not satisfied")
	}
	if state := sqlErr.SQLState(); state != "42601" {
		t.Fatalf("unexpected SQL state %v", state)
	}
}
