package pqtest

import "strings"

// ErrorContains reports whether the error message contains want; a nil
// error matches only the empty string.
func ErrorContains(have error, want string) bool {
	if have == nil {
		return want == ""
	}
	if want == "" {
		return false
	}
	return strings.Contains(have.Error(), want)
}
