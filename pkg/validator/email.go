package validator

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidEmail indicates the email address is malformed
var ErrInvalidEmail = errors.New("email address is invalid")

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail trims and lower-cases an email address and checks its shape
func ValidateEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(normalized) {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}
