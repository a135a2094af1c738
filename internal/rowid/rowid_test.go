package rowid

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	prefixes := []Prefix{
		CategoryRenamePick, CategoryRenamePage,
		CategoryPricePick, CategoryPricePage,
		CategorySKUPick, CategorySKUPage,
		CategoryBrowseRow, CategoryBrowsePage,
		CustomerRow, CustomerPage,
		CustomerEditName, CustomerEditBalance,
		CustomerToggleBlock, CustomerEditBack,
	}
	for _, p := range prefixes {
		encoded := Encode(p, 42)
		id, ok := Decode(encoded, p)
		if !ok {
			t.Errorf("Decode(%q, %q) failed", encoded, p)
			continue
		}
		if id != 42 {
			t.Errorf("Decode(%q, %q) = %d, want 42", encoded, p, id)
		}
	}
}

func TestDecodeRejectsWrongPrefix(t *testing.T) {
	encoded := Encode(CategoryRenamePick, 7)
	if _, ok := Decode(encoded, CategoryPricePick); ok {
		t.Errorf("Decode accepted %q against prefix %q", encoded, CategoryPricePick)
	}
	if _, ok := Decode(encoded, CustomerRow); ok {
		t.Errorf("Decode accepted %q against prefix %q", encoded, CustomerRow)
	}
}

func TestDecodeRejectsSiblingPrefix(t *testing.T) {
	// "cat_rn:" must not match ids of the "cat_rn_pg:" family; the colon
	// terminator keeps the remainder non-numeric.
	encoded := Encode(CategoryRenamePage, 2)
	if _, ok := Decode(encoded, CategoryRenamePick); ok {
		t.Errorf("Decode accepted page id %q against the pick prefix", encoded)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"cat_rn:",
		"cat_rn:abc",
		"cat_rn:12x",
		"flow_cancel",
		"menu_cat_rename",
	}
	for _, c := range cases {
		if id, ok := Decode(c, CategoryRenamePick); ok {
			t.Errorf("Decode(%q) = %d, want rejection", c, id)
		}
	}
}

func TestDecodeNegativeID(t *testing.T) {
	// Negative ids round-trip; validity of the id is the caller's concern.
	id, ok := Decode("cust:-3", CustomerRow)
	if !ok || id != -3 {
		t.Errorf("Decode(cust:-3) = %d, %v, want -3, true", id, ok)
	}
}
