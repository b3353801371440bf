// ABOUTME: Email syntax check used before registration and login submit
// ABOUTME: Thin wrapper around go-playground/validator

package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// ValidEmail reports whether s is a syntactically valid email address
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return v.Var(s, "email") == nil
}
