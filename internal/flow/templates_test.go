package flow

import (
	"strings"
	"testing"
)

func TestRenderSubstitutesTokens(t *testing.T) {
	got := Render("Hi {name}, balance is {balance}.", map[string]string{
		"name":    "Ana",
		"balance": "10.00",
	})
	if got != "Hi Ana, balance is 10.00." {
		t.Errorf("Render = %q", got)
	}
}

func TestRenderLeavesUnknownTokens(t *testing.T) {
	got := Render("Hi {name} {unknown}", map[string]string{"name": "Ana"})
	if got != "Hi Ana {unknown}" {
		t.Errorf("Render = %q, unresolved token should remain", got)
	}
}

func TestRenderRepeatedToken(t *testing.T) {
	got := Render("{name} and {name}", map[string]string{"name": "Ana"})
	if got != "Ana and Ana" {
		t.Errorf("Render = %q", got)
	}
}

func TestRenderNilBindings(t *testing.T) {
	if got := Render("plain text", nil); got != "plain text" {
		t.Errorf("Render = %q", got)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{12.5, "12.50"},
		{0, "0.00"},
		{0.005, "0.01"},
		{1234, "1234.00"},
	}
	for _, c := range cases {
		if got := FormatMoney(c.in); got != c.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPromptTemplatesCarryExpectedTokens(t *testing.T) {
	// Rendering a prompt with its documented bindings must leave no
	// unresolved tokens behind.
	bindings := map[string]string{
		"name":    "Bebidas",
		"price":   "12.50",
		"sku":     "BEB01",
		"items":   "3",
		"balance": "10.00",
		"reason":  "too long",
	}
	tpls := []string{
		TplCategoryRenamePrompt, TplCategoryPricePrompt, TplCategorySKUPrompt,
		TplCustomerNamePrompt, TplCustomerBalancePrompt,
		TplCategoryRenamed, TplCategoryPriceSet, TplCategorySKUSet,
		TplCategoryDetail, TplCustomerRenamed, TplCustomerBalanceSet,
		TplCustomerBlocked, TplCustomerUnblocked, TplInvalidInput,
	}
	for _, tpl := range tpls {
		got := Render(tpl, bindings)
		if strings.Contains(got, "{") || strings.Contains(got, "}") {
			t.Errorf("template %q rendered with unresolved tokens: %q", tpl, got)
		}
	}
}
