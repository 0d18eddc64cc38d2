package password

import "strings"

const specialChars = `!@#$%^&*(),.?":{}|<>`

var denyList = []string{"password", "123456", "qwerty", "admin", "welcome"}

// StrengthError carries the user-displayable reason a candidate password was
// rejected. It is a ValidationError at the HTTP boundary.
type StrengthError struct {
	Reason string
}

func (e *StrengthError) Error() string { return e.Reason }

// ValidateStrength checks the rules in order; the first violation wins and
// its message is the UI contract.
func ValidateStrength(pw string) (bool, string) {
	if len(pw) < 8 {
		return false, "Password must be at least 8 characters long"
	}
	// bcrypt only hashes the first 72 bytes; reject longer input instead of
	// silently truncating it.
	if len(pw) > 72 {
		return false, "Password must be no longer than 72 characters"
	}
	if !strings.ContainsFunc(pw, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		return false, "Password must contain at least one uppercase letter"
	}
	if !strings.ContainsFunc(pw, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		return false, "Password must contain at least one lowercase letter"
	}
	if !strings.ContainsFunc(pw, func(r rune) bool { return r >= '0' && r <= '9' }) {
		return false, "Password must contain at least one number"
	}
	if !strings.ContainsAny(pw, specialChars) {
		return false, "Password must contain at least one special character"
	}
	lower := strings.ToLower(pw)
	for _, banned := range denyList {
		if strings.Contains(lower, banned) {
			return false, "Password is too common, please choose a stronger one"
		}
	}
	return true, ""
}
