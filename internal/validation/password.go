// ABOUTME: Password strength policy shared by form gating and live feedback
// ABOUTME: Pure predicates; the aggregate policy is the AND of all requirements

package validation

import "unicode/utf8"

// MinPasswordLength is the minimum number of characters in a password
const MinPasswordLength = 8

// Requirement is one line of the password checklist
type Requirement struct {
	Label string
	Met   bool
}

type rule struct {
	label string
	check func(string) bool
}

// rules is the single definition of the policy. Requirements and
// MeetsStrengthPolicy both read from it.
var rules = []rule{
	{"At least 8 characters long", HasMinLength},
	{"At least one uppercase letter", HasUpper},
	{"At least one lowercase letter", HasLower},
	{"At least one number", HasDigit},
	{"At least one special character", HasSpecial},
}

// HasMinLength reports whether p has at least MinPasswordLength characters
func HasMinLength(p string) bool {
	return utf8.RuneCountInString(p) >= MinPasswordLength
}

// HasUpper reports whether p contains an ASCII uppercase letter
func HasUpper(p string) bool {
	return containsAny(p, func(r rune) bool { return r >= 'A' && r <= 'Z' })
}

// HasLower reports whether p contains an ASCII lowercase letter
func HasLower(p string) bool {
	return containsAny(p, func(r rune) bool { return r >= 'a' && r <= 'z' })
}

// HasDigit reports whether p contains an ASCII digit
func HasDigit(p string) bool {
	return containsAny(p, isDigit)
}

// HasSpecial reports whether p contains a character that is not an ASCII
// letter, digit or space
func HasSpecial(p string) bool {
	return containsAny(p, func(r rune) bool {
		return !isLetter(r) && !isDigit(r) && r != ' '
	})
}

// MeetsStrengthPolicy reports whether p satisfies every requirement
func MeetsStrengthPolicy(p string) bool {
	for _, r := range rules {
		if !r.check(p) {
			return false
		}
	}
	return true
}

// Requirements evaluates each rule against p, in display order
func Requirements(p string) []Requirement {
	out := make([]Requirement, len(rules))
	for i, r := range rules {
		out[i] = Requirement{Label: r.label, Met: r.check(p)}
	}
	return out
}

func containsAny(p string, pred func(rune) bool) bool {
	for _, r := range p {
		if pred(r) {
			return true
		}
	}
	return false
}

func isLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
