// Package models defines the core data structures for ZapStore's
// conversational admin engine.
//
// It includes the outbound payload shapes handed to the messaging transport
// and the inbound event shape produced by it, which are shared across modules.
package models

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Transport limits for interactive WhatsApp payloads.
const (
	// MaxListRows defines the maximum number of selectable rows in a list message
	MaxListRows = 10
	// MaxRowTitleLength defines the maximum length of a list row title
	MaxRowTitleLength = 24
	// MaxRowDescriptionLength defines the maximum length of a list row description
	MaxRowDescriptionLength = 60
	// MaxButtons defines the maximum number of reply buttons in a buttons message
	MaxButtons = 3
	// MaxButtonTitleLength defines the maximum length of a reply button title
	MaxButtonTitleLength = 20
	// MaxInteractiveBodyLength defines the maximum body length of an interactive payload
	MaxInteractiveBodyLength = 1024
)

// Ellipsis is appended when a field is truncated to fit a transport limit.
const Ellipsis = "…"

// Error variables for payload validation and testability.
var (
	ErrEmptyRecipient    = errors.New("recipient cannot be empty")
	ErrEmptyBody         = errors.New("payload body cannot be empty")
	ErrNoListRows        = errors.New("list payload requires at least one row")
	ErrTooManyListRows   = errors.New("list payload exceeds maximum row count")
	ErrRowTitleTooLong   = errors.New("list row title exceeds maximum length")
	ErrRowDescTooLong    = errors.New("list row description exceeds maximum length")
	ErrNoButtons         = errors.New("buttons payload requires at least one button")
	ErrTooManyButtons    = errors.New("buttons payload exceeds maximum button count")
	ErrButtonTitleLong   = errors.New("button title exceeds maximum length")
	ErrBodyTooLong       = errors.New("interactive body exceeds maximum length")
	ErrEmptySelectableID = errors.New("selectable element requires an id")
)

// Truncate limits s to max runes, appending a single ellipsis character when
// truncation occurs. The result never exceeds max runes.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + Ellipsis
}

// TextPayload is a plain outbound text message.
type TextPayload struct {
	Body string `json:"body"`
}

// Button is a single reply button of a ButtonsPayload.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ButtonsPayload is an interactive message with up to three reply buttons.
type ButtonsPayload struct {
	Header  string   `json:"header,omitempty"`
	Body    string   `json:"body"`
	Footer  string   `json:"footer,omitempty"`
	Buttons []Button `json:"buttons"`
}

// Validate checks the payload against the transport limits.
func (p *ButtonsPayload) Validate() error {
	if strings.TrimSpace(p.Body) == "" {
		return ErrEmptyBody
	}
	if utf8.RuneCountInString(p.Body) > MaxInteractiveBodyLength {
		return ErrBodyTooLong
	}
	if len(p.Buttons) == 0 {
		return ErrNoButtons
	}
	if len(p.Buttons) > MaxButtons {
		return ErrTooManyButtons
	}
	for _, b := range p.Buttons {
		if b.ID == "" {
			return ErrEmptySelectableID
		}
		if utf8.RuneCountInString(b.Title) > MaxButtonTitleLength {
			return ErrButtonTitleLong
		}
	}
	return nil
}

// ListRow is a single selectable row of a ListPayload.
type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ListSection groups rows under an optional section title.
type ListSection struct {
	Title string    `json:"title,omitempty"`
	Rows  []ListRow `json:"rows"`
}

// ListPayload is an interactive list message with up to ten selectable rows.
type ListPayload struct {
	Header     string        `json:"header,omitempty"`
	Body       string        `json:"body"`
	Footer     string        `json:"footer,omitempty"`
	ButtonText string        `json:"button_text"`
	Sections   []ListSection `json:"sections"`
}

// RowCount returns the total number of rows across all sections.
func (p *ListPayload) RowCount() int {
	n := 0
	for _, s := range p.Sections {
		n += len(s.Rows)
	}
	return n
}

// Validate checks the payload against the transport limits.
func (p *ListPayload) Validate() error {
	if strings.TrimSpace(p.Body) == "" {
		return ErrEmptyBody
	}
	if utf8.RuneCountInString(p.Body) > MaxInteractiveBodyLength {
		return ErrBodyTooLong
	}
	n := p.RowCount()
	if n == 0 {
		return ErrNoListRows
	}
	if n > MaxListRows {
		return ErrTooManyListRows
	}
	for _, s := range p.Sections {
		for _, r := range s.Rows {
			if r.ID == "" {
				return ErrEmptySelectableID
			}
			if utf8.RuneCountInString(r.Title) > MaxRowTitleLength {
				return ErrRowTitleTooLong
			}
			if utf8.RuneCountInString(r.Description) > MaxRowDescriptionLength {
				return ErrRowDescTooLong
			}
		}
	}
	return nil
}

// Rows returns all rows across sections in order.
func (p *ListPayload) Rows() []ListRow {
	rows := make([]ListRow, 0, p.RowCount())
	for _, s := range p.Sections {
		rows = append(rows, s.Rows...)
	}
	return rows
}

// InboundEvent is a single inbound webhook/transport event from a remote
// party. Exactly one of Text and SelectionID is expected to be set: a button
// tap or list selection carries the selected row/button id, a free-text
// message carries the text.
type InboundEvent struct {
	From        string `json:"from"`
	Text        string `json:"text,omitempty"`
	SelectionID string `json:"selection_id,omitempty"`
	Time        int64  `json:"time"`
}

// IsSelection reports whether the event is a button tap or list selection.
func (e InboundEvent) IsSelection() bool {
	return e.SelectionID != ""
}
