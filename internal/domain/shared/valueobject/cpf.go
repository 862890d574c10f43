package valueobject

import (
	"fmt"
)

// CPF is a value object representing a Brazilian taxpayer id (CPF)
// Stored as 11 digits without punctuation
type CPF struct {
	value string
}

// NewCPF creates a CPF from a raw string, accepting "123.456.789-09" or
// "12345678909", and validates the two check digits
func NewCPF(raw string) (CPF, error) {
	digits := stripNonDigits(raw)
	if len(digits) != 11 {
		return CPF{}, fmt.Errorf("tax id must have 11 digits, got %q", raw)
	}
	if allSameDigit(digits) {
		return CPF{}, fmt.Errorf("tax id %q is not valid", raw)
	}
	if !validCPFChecksum(digits) {
		return CPF{}, fmt.Errorf("tax id %q has an invalid check digit", raw)
	}
	return CPF{value: digits}, nil
}

// String returns the CPF digits without formatting
func (c CPF) String() string {
	return c.value
}

// Formatted returns the CPF in "123.456.789-09" form
func (c CPF) Formatted() string {
	d := c.value
	if len(d) != 11 {
		return d
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

// allSameDigit reports whether every rune in digits is identical
// (e.g. "11111111111", which passes the checksum but is not assigned)
func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

// validCPFChecksum verifies the two CPF verification digits
func validCPFChecksum(digits string) bool {
	return cpfCheckDigit(digits, 9) == int(digits[9]-'0') &&
		cpfCheckDigit(digits, 10) == int(digits[10]-'0')
}

// cpfCheckDigit computes the check digit over the first n digits
func cpfCheckDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}
