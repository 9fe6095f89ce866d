package domain

import (
	"regexp"
	"strings"
)

// emailPattern matches a basic local@domain.tld shape. It deliberately
// stays loose; real deliverability is proven by the reset-email flow.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// MinPasswordLength is the sign-up password floor. Shorter passwords are
// rejected as weak before any credential is created.
const MinPasswordLength = 6
