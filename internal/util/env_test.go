package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"off", true, false},
		{"", true, true},
		{"", false, false},
		{"garbage", true, true},
	}
	for _, c := range cases {
		t.Setenv("ZAPSTORE_TEST_BOOL", c.value)
		if got := ParseBoolEnv("ZAPSTORE_TEST_BOOL", c.def); got != c.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", c.value, c.def, got, c.want)
		}
	}
}

func TestParseAdminBindings(t *testing.T) {
	got, err := ParseAdminBindings("+55 11 99999-0000:1, 5511888880000:2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("parsed %d bindings, want 2", len(got))
	}
	if got[0].RemoteID != "5511999990000" || got[0].OwnerID != 1 {
		t.Errorf("first binding = %+v", got[0])
	}
	if got[1].RemoteID != "5511888880000" || got[1].OwnerID != 2 {
		t.Errorf("second binding = %+v", got[1])
	}
}

func TestParseAdminBindingsEmpty(t *testing.T) {
	got, err := ParseAdminBindings("  ")
	if err != nil || got != nil {
		t.Errorf("blank input = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestParseAdminBindingsErrors(t *testing.T) {
	for _, in := range []string{
		"5511999990000",      // no owner
		"5511999990000:abc",  // non-numeric owner
		"no-digits-here:1",   // phone without digits
	} {
		if _, err := ParseAdminBindings(in); err == nil {
			t.Errorf("ParseAdminBindings(%q) accepted invalid input", in)
		}
	}
}
