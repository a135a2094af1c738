package flow

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateCategoryName(t *testing.T) {
	name, err := ValidateCategoryName("  Bebidas  ")
	if err != nil || name != "Bebidas" {
		t.Errorf("got (%q, %v), want (Bebidas, nil)", name, err)
	}
	if _, err := ValidateCategoryName("   "); !errors.Is(err, ErrEmptyName) {
		t.Errorf("blank name: got %v, want ErrEmptyName", err)
	}
	if _, err := ValidateCategoryName(strings.Repeat("x", MaxNameLength+1)); !errors.Is(err, ErrNameTooLong) {
		t.Errorf("long name: got %v, want ErrNameTooLong", err)
	}
}

func TestValidateCustomerName(t *testing.T) {
	if _, err := ValidateCustomerName("A"); !errors.Is(err, ErrNameTooShort) {
		t.Errorf("one-char name: got %v, want ErrNameTooShort", err)
	}
	name, err := ValidateCustomerName(" Ana ")
	if err != nil || name != "Ana" {
		t.Errorf("got (%q, %v), want (Ana, nil)", name, err)
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12,50", 12.5},
		{"12.50", 12.5},
		{" 7 ", 7},
		{"0,01", 0.01},
	}
	for _, c := range cases {
		got, err := ParsePrice(c.in)
		if err != nil || got != c.want {
			t.Errorf("ParsePrice(%q) = (%v, %v), want (%v, nil)", c.in, got, err, c.want)
		}
	}

	for _, in := range []string{"abc", "", "12,50,00", "NaN", "Inf"} {
		if _, err := ParsePrice(in); !errors.Is(err, ErrInvalidPrice) {
			t.Errorf("ParsePrice(%q): got %v, want ErrInvalidPrice", in, err)
		}
	}
	for _, in := range []string{"0", "-3", "-0,50"} {
		if _, err := ParsePrice(in); !errors.Is(err, ErrNonPositivePrice) {
			t.Errorf("ParsePrice(%q): got %v, want ErrNonPositivePrice", in, err)
		}
	}
}

func TestParseBalanceDelta(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"+10", 10},
		{"-5", -5},
		{"0", 0},
		{"-2,50", -2.5},
	}
	for _, c := range cases {
		got, err := ParseBalanceDelta(c.in)
		if err != nil || got != c.want {
			t.Errorf("ParseBalanceDelta(%q) = (%v, %v), want (%v, nil)", c.in, got, err, c.want)
		}
	}
	if _, err := ParseBalanceDelta("ten"); !errors.Is(err, ErrInvalidDelta) {
		t.Errorf("got %v, want ErrInvalidDelta", err)
	}
}

func TestValidateSKU(t *testing.T) {
	sku, err := ValidateSKU(" ABC123 ")
	if err != nil || sku != "ABC123" {
		t.Errorf("got (%q, %v), want (ABC123, nil)", sku, err)
	}
	if _, err := ValidateSKU(""); !errors.Is(err, ErrEmptySKU) {
		t.Errorf("empty SKU: got %v, want ErrEmptySKU", err)
	}
	if _, err := ValidateSKU("AB-12"); !errors.Is(err, ErrInvalidSKU) {
		t.Errorf("hyphenated SKU: got %v, want ErrInvalidSKU", err)
	}
	if _, err := ValidateSKU(strings.Repeat("A", MaxSKULength+1)); !errors.Is(err, ErrSKUTooLong) {
		t.Errorf("long SKU: got %v, want ErrSKUTooLong", err)
	}
}

func TestDigitsOnly(t *testing.T) {
	cases := []struct{ in, want string }{
		{"+55 (11) 99999-0000", "5511999990000"},
		{"5511999990000", "5511999990000"},
		{"abc", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := DigitsOnly(c.in); got != c.want {
			t.Errorf("DigitsOnly(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
