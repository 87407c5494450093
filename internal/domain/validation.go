package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	SIRENLength     = 9
	MaxInvoiceTotal = "1000000000000" // 1 trillion
	MaxPageSize     = 500
	DefaultPageSize = 50
)

var sirenRegex = regexp.MustCompile(`^[0-9]{9}$`)

// NormalizeSIREN strips every whitespace character from s.
func NormalizeSIREN(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// IsValidSIREN reports whether s is exactly nine ASCII digits once whitespace
// is removed. It is a format check only; the Luhn key is not verified.
func IsValidSIREN(s string) bool {
	return sirenRegex.MatchString(NormalizeSIREN(s))
}

// ValidateSIREN returns ErrInvalidSiren when s is not a valid SIREN.
func ValidateSIREN(s string) error {
	if !IsValidSIREN(s) {
		return fmt.Errorf("%w: got %q", ErrInvalidSiren, s)
	}
	return nil
}

// ValidateAmount validates an invoice total.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxInvoiceTotal)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxInvoiceTotal)
	}

	return nil
}

// ParseAmount parses a decimal amount coming from an untyped source.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}

	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}

	return d, nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
