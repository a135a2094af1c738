package flow

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Bounds for free-text input fields.
const (
	// MaxNameLength bounds category and customer names.
	MaxNameLength = 64
	// MinCustomerNameLength is the minimum customer name length.
	MinCustomerNameLength = 2
	// MaxSKULength bounds SKU strings.
	MaxSKULength = 32
)

// Validation errors. Their messages are shown to the admin verbatim when a
// flow re-prompts, so they are phrased for humans.
var (
	ErrEmptyName        = errors.New("the name cannot be empty")
	ErrNameTooLong      = errors.New("the name is too long (64 characters max)")
	ErrNameTooShort     = errors.New("the name needs at least 2 characters")
	ErrInvalidPrice     = errors.New("that doesn't look like a price; send a number like 12,50")
	ErrNonPositivePrice = errors.New("the price must be greater than zero")
	ErrEmptySKU         = errors.New("the SKU cannot be empty")
	ErrInvalidSKU       = errors.New("the SKU may only contain letters and digits")
	ErrSKUTooLong       = errors.New("the SKU is too long (32 characters max)")
	ErrInvalidDelta     = errors.New("send a signed amount like +10, -5 or 0")
)

// ValidateCategoryName trims and bounds a category name.
func ValidateCategoryName(text string) (string, error) {
	name := strings.TrimSpace(text)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

// ValidateCustomerName trims a customer name and requires at least two
// characters.
func ValidateCustomerName(text string) (string, error) {
	name := strings.TrimSpace(text)
	if utf8.RuneCountInString(name) < MinCustomerNameLength {
		return "", ErrNameTooShort
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

// parseDecimal parses a decimal accepting both comma and dot as the
// fractional separator and rejecting non-finite results.
func parseDecimal(text string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

// ParsePrice parses a positive price.
func ParsePrice(text string) (float64, error) {
	v, err := parseDecimal(text)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	if v <= 0 {
		return 0, ErrNonPositivePrice
	}
	return v, nil
}

// ParseBalanceDelta parses a signed balance adjustment. Zero is a valid
// no-op; the resulting balance is clamped by the persistence layer, not here.
func ParseBalanceDelta(text string) (float64, error) {
	v, err := parseDecimal(text)
	if err != nil {
		return 0, ErrInvalidDelta
	}
	return v, nil
}

// ValidateSKU trims and bounds an alphanumeric SKU.
func ValidateSKU(text string) (string, error) {
	sku := strings.TrimSpace(text)
	if sku == "" {
		return "", ErrEmptySKU
	}
	if len(sku) > MaxSKULength {
		return "", ErrSKUTooLong
	}
	for _, r := range sku {
		if !isAlphanumeric(r) {
			return "", ErrInvalidSKU
		}
	}
	return sku, nil
}

func isAlphanumeric(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// DigitsOnly strips every non-digit character; used to normalize remote
// identifiers and phone-number lookups.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
