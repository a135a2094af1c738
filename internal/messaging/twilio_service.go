package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zapstore-app/zapstore/internal/models"
	"github.com/zapstore-app/zapstore/internal/twiliowhatsapp"
)

// TwilioService implements Service over the Twilio WhatsApp Business API.
//
// Twilio's plain messaging channel cannot carry native list/button payloads,
// so interactive payloads degrade to numbered text menus: the service
// remembers the last menu rendered per recipient and maps a bare-number
// reply received on the webhook back to the underlying row/button id.
type TwilioService struct {
	client twiliowhatsapp.Sender
	events chan models.InboundEvent
	done   chan struct{}

	mu        sync.RWMutex
	stopped   bool
	lastMenus map[string][]string // recipient -> row ids of the last rendered menu
}

// NewTwilioService creates a new TwilioService over the given client.
func NewTwilioService(client twiliowhatsapp.Sender) *TwilioService {
	return &TwilioService{
		client:    client,
		events:    make(chan models.InboundEvent, DefaultChannelBufferSize),
		done:      make(chan struct{}),
		lastMenus: make(map[string][]string),
	}
}

// ValidateAndCanonicalizeRecipient strips all non-digit characters and
// requires at least 6 digits.
func (s *TwilioService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	if recipient == "" {
		return "", models.ErrEmptyRecipient
	}
	canonical := phoneNumberRegex.ReplaceAllString(recipient, "")
	if canonical == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(canonical) < 6 {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum 6 digits required)", canonical)
	}
	return canonical, nil
}

// Start is a no-op: inbound messages arrive via the HTTP webhook.
func (s *TwilioService) Start(ctx context.Context) error {
	return nil
}

// Stop closes channels and stops the service.
func (s *TwilioService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.done)
	close(s.events)
	return nil
}

func (s *TwilioService) isStopped() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopped
}

// SendText sends a plain text message and clears any remembered menu for the
// recipient, so a stray number reply is not misread as a selection.
func (s *TwilioService) SendText(ctx context.Context, to, body string) error {
	if s.isStopped() {
		return ErrServiceStopped
	}
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		return err
	}
	s.rememberMenu(canonical, nil)
	return s.client.SendMessage(ctx, canonical, body)
}

// SendButtons renders a buttons payload as a numbered text menu.
func (s *TwilioService) SendButtons(ctx context.Context, to string, payload models.ButtonsPayload) error {
	if s.isStopped() {
		return ErrServiceStopped
	}
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		return err
	}

	var b strings.Builder
	if payload.Header != "" {
		b.WriteString("*" + payload.Header + "*\n\n")
	}
	b.WriteString(payload.Body)
	b.WriteString("\n")
	ids := make([]string, 0, len(payload.Buttons))
	for i, btn := range payload.Buttons {
		fmt.Fprintf(&b, "\n%d. %s", i+1, btn.Title)
		ids = append(ids, btn.ID)
	}
	b.WriteString("\n\nReply with a number.")
	if payload.Footer != "" {
		b.WriteString("\n_" + payload.Footer + "_")
	}

	if err := s.client.SendMessage(ctx, canonical, b.String()); err != nil {
		return err
	}
	s.rememberMenu(canonical, ids)
	return nil
}

// SendList renders a list payload as a numbered text menu.
func (s *TwilioService) SendList(ctx context.Context, to string, payload models.ListPayload) error {
	if s.isStopped() {
		return ErrServiceStopped
	}
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		return err
	}

	var b strings.Builder
	if payload.Header != "" {
		b.WriteString("*" + payload.Header + "*\n\n")
	}
	b.WriteString(payload.Body)
	b.WriteString("\n")
	var ids []string
	n := 0
	for _, section := range payload.Sections {
		if section.Title != "" {
			b.WriteString("\n_" + section.Title + "_")
		}
		for _, row := range section.Rows {
			n++
			fmt.Fprintf(&b, "\n%d. %s", n, row.Title)
			if row.Description != "" {
				fmt.Fprintf(&b, " — %s", row.Description)
			}
			ids = append(ids, row.ID)
		}
	}
	b.WriteString("\n\nReply with a number.")
	if payload.Footer != "" {
		b.WriteString("\n_" + payload.Footer + "_")
	}

	if err := s.client.SendMessage(ctx, canonical, b.String()); err != nil {
		return err
	}
	s.rememberMenu(canonical, ids)
	return nil
}

// Events returns the channel of inbound events.
func (s *TwilioService) Events() <-chan models.InboundEvent {
	return s.events
}

func (s *TwilioService) rememberMenu(recipient string, ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ids == nil {
		delete(s.lastMenus, recipient)
		return
	}
	s.lastMenus[recipient] = ids
}

// resolveSelection maps a bare-number reply to the remembered menu's row id.
func (s *TwilioService) resolveSelection(recipient, body string) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(body))
	if err != nil {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids, ok := s.lastMenus[recipient]
	if !ok || n < 1 || n > len(ids) {
		return "", false
	}
	return ids[n-1], true
}

// WebhookHandler handles inbound Twilio webhook requests, emitting them as
// engine events.
func (s *TwilioService) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.Error("Failed to parse Twilio webhook form", "error", err)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	from := r.FormValue("From")
	body := r.FormValue("Body")
	if from == "" || body == "" {
		slog.Warn("Twilio webhook missing fields", "from_set", from != "", "body_set", body != "")
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	canonical, err := s.ValidateAndCanonicalizeRecipient(from)
	if err != nil {
		slog.Warn("Twilio webhook sender rejected", "error", err)
		http.Error(w, "Bad sender", http.StatusBadRequest)
		return
	}

	ev := models.InboundEvent{From: canonical, Time: time.Now().Unix()}
	if id, ok := s.resolveSelection(canonical, body); ok {
		ev.SelectionID = id
	} else {
		ev.Text = body
	}
	slog.Info("Twilio webhook inbound", "from", canonical, "selection", ev.SelectionID != "")

	s.safeEmit(ev)
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *TwilioService) safeEmit(ev models.InboundEvent) {
	if s.isStopped() {
		slog.Warn("TwilioService dropping inbound event (service stopped)", "from", ev.From)
		return
	}
	select {
	case s.events <- ev:
		slog.Debug("TwilioService emitted inbound event", "from", ev.From)
	case <-time.After(DefaultChannelTimeout):
		slog.Warn("TwilioService events channel blocked, dropping event", "from", ev.From)
	}
}
