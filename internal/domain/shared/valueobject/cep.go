package valueobject

import (
	"fmt"
	"strings"
)

// CEP is a value object representing a Brazilian postal code
// Stored as 8 digits without the hyphen
type CEP struct {
	value string
}

// NewCEP creates a CEP from a raw string, accepting "01310-100" or "01310100"
func NewCEP(raw string) (CEP, error) {
	digits := stripNonDigits(raw)
	if len(digits) != 8 {
		return CEP{}, fmt.Errorf("postal code must have 8 digits, got %q", raw)
	}
	// A CEP of all zeros is not assigned
	if digits == "00000000" {
		return CEP{}, fmt.Errorf("postal code %q is not valid", raw)
	}
	return CEP{value: digits}, nil
}

// String returns the CEP digits without formatting
func (c CEP) String() string {
	return c.value
}

// Formatted returns the CEP in "01310-100" form
func (c CEP) Formatted() string {
	return FormatCEP(c.value)
}

// FormatCEP formats an 8-digit CEP string with the conventional hyphen
func FormatCEP(digits string) string {
	if len(digits) != 8 {
		return digits
	}
	return digits[:5] + "-" + digits[5:]
}

// stripNonDigits removes every non-digit rune from s
func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
