package models

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 24, "short"},
		{"", 24, ""},
		{strings.Repeat("a", 24), 24, strings.Repeat("a", 24)},
		{strings.Repeat("a", 25), 24, strings.Repeat("a", 23) + Ellipsis},
		{"ação de venda", 5, "ação" + Ellipsis},
		{"anything", 0, "anything"},
	}
	for _, c := range cases {
		got := Truncate(c.in, c.max)
		if got != c.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", c.in, c.max, got, c.want)
		}
		if c.max > 0 && utf8.RuneCountInString(got) > c.max {
			t.Errorf("Truncate(%q, %d) exceeds limit: %q", c.in, c.max, got)
		}
	}
}

func TestButtonsPayloadValidate(t *testing.T) {
	valid := ButtonsPayload{Body: "pick", Buttons: []Button{{ID: "a", Title: "A"}}}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}

	empty := ButtonsPayload{Body: "  ", Buttons: []Button{{ID: "a"}}}
	if err := empty.Validate(); !errors.Is(err, ErrEmptyBody) {
		t.Errorf("blank body: got %v, want ErrEmptyBody", err)
	}

	none := ButtonsPayload{Body: "pick"}
	if err := none.Validate(); !errors.Is(err, ErrNoButtons) {
		t.Errorf("no buttons: got %v, want ErrNoButtons", err)
	}

	four := ButtonsPayload{Body: "pick", Buttons: make([]Button, MaxButtons+1)}
	for i := range four.Buttons {
		four.Buttons[i] = Button{ID: "x", Title: "X"}
	}
	if err := four.Validate(); !errors.Is(err, ErrTooManyButtons) {
		t.Errorf("too many buttons: got %v, want ErrTooManyButtons", err)
	}

	noID := ButtonsPayload{Body: "pick", Buttons: []Button{{Title: "A"}}}
	if err := noID.Validate(); !errors.Is(err, ErrEmptySelectableID) {
		t.Errorf("button without id: got %v, want ErrEmptySelectableID", err)
	}
}

func TestListPayloadValidate(t *testing.T) {
	row := ListRow{ID: "r", Title: "Row"}
	valid := ListPayload{Body: "pick", Sections: []ListSection{{Rows: []ListRow{row}}}}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}

	empty := ListPayload{Body: "pick"}
	if err := empty.Validate(); !errors.Is(err, ErrNoListRows) {
		t.Errorf("no rows: got %v, want ErrNoListRows", err)
	}

	rows := make([]ListRow, MaxListRows+1)
	for i := range rows {
		rows[i] = row
	}
	over := ListPayload{Body: "pick", Sections: []ListSection{{Rows: rows}}}
	if err := over.Validate(); !errors.Is(err, ErrTooManyListRows) {
		t.Errorf("eleven rows: got %v, want ErrTooManyListRows", err)
	}

	// Rows are counted across sections, not per section.
	split := ListPayload{Body: "pick", Sections: []ListSection{
		{Rows: rows[:6]},
		{Rows: rows[:5]},
	}}
	if err := split.Validate(); !errors.Is(err, ErrTooManyListRows) {
		t.Errorf("split sections over limit: got %v, want ErrTooManyListRows", err)
	}

	longTitle := ListPayload{Body: "pick", Sections: []ListSection{{Rows: []ListRow{
		{ID: "r", Title: strings.Repeat("a", MaxRowTitleLength+1)},
	}}}}
	if err := longTitle.Validate(); !errors.Is(err, ErrRowTitleTooLong) {
		t.Errorf("long title: got %v, want ErrRowTitleTooLong", err)
	}
}

func TestInboundEventIsSelection(t *testing.T) {
	if (InboundEvent{Text: "hi"}).IsSelection() {
		t.Error("text event reported as selection")
	}
	if !(InboundEvent{SelectionID: "cat_rn:1"}).IsSelection() {
		t.Error("selection event not reported as selection")
	}
}
