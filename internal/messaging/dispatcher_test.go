package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/zapstore-app/zapstore/internal/models"
)

// stubService implements Service with a switchable failure mode.
type stubService struct {
	fail  bool
	sent  int
	evs   chan models.InboundEvent
	lastB models.ButtonsPayload
	lastL models.ListPayload
}

func newStubService(fail bool) *stubService {
	return &stubService{fail: fail, evs: make(chan models.InboundEvent)}
}

func (s *stubService) ValidateAndCanonicalizeRecipient(r string) (string, error) {
	return r, nil
}

func (s *stubService) SendText(ctx context.Context, to, body string) error {
	if s.fail {
		return errors.New("transport down")
	}
	s.sent++
	return nil
}

func (s *stubService) SendButtons(ctx context.Context, to string, p models.ButtonsPayload) error {
	if s.fail {
		return errors.New("transport down")
	}
	s.sent++
	s.lastB = p
	return nil
}

func (s *stubService) SendList(ctx context.Context, to string, p models.ListPayload) error {
	if s.fail {
		return errors.New("transport down")
	}
	s.sent++
	s.lastL = p
	return nil
}

func (s *stubService) Start(ctx context.Context) error { return nil }
func (s *stubService) Stop() error                     { return nil }

func (s *stubService) Events() <-chan models.InboundEvent { return s.evs }

func validButtons() models.ButtonsPayload {
	return models.ButtonsPayload{Body: "pick", Buttons: []models.Button{{ID: "a", Title: "A"}}}
}

func validList() models.ListPayload {
	return models.ListPayload{Body: "pick", Sections: []models.ListSection{{
		Rows: []models.ListRow{{ID: "r", Title: "Row"}},
	}}}
}

func TestDispatcherReportsDelivery(t *testing.T) {
	svc := newStubService(false)
	d := NewDispatcher(svc)
	ctx := context.Background()

	if !d.SendText(ctx, "5511999990000", "hi") {
		t.Error("SendText = false, want true")
	}
	if !d.SendButtons(ctx, "5511999990000", validButtons()) {
		t.Error("SendButtons = false, want true")
	}
	if !d.SendList(ctx, "5511999990000", validList()) {
		t.Error("SendList = false, want true")
	}
	if svc.sent != 3 {
		t.Errorf("service saw %d sends, want 3", svc.sent)
	}
}

func TestDispatcherNeverPropagatesTransportFailure(t *testing.T) {
	d := NewDispatcher(newStubService(true))
	ctx := context.Background()

	if d.SendText(ctx, "5511999990000", "hi") {
		t.Error("SendText = true on failing transport, want false")
	}
	if d.SendButtons(ctx, "5511999990000", validButtons()) {
		t.Error("SendButtons = true on failing transport, want false")
	}
	if d.SendList(ctx, "5511999990000", validList()) {
		t.Error("SendList = true on failing transport, want false")
	}
}

func TestDispatcherRejectsInvalidPayloadsBeforeSending(t *testing.T) {
	svc := newStubService(false)
	d := NewDispatcher(svc)
	ctx := context.Background()

	if d.SendButtons(ctx, "5511999990000", models.ButtonsPayload{Body: "no buttons"}) {
		t.Error("invalid buttons payload reported as delivered")
	}
	rows := make([]models.ListRow, models.MaxListRows+1)
	for i := range rows {
		rows[i] = models.ListRow{ID: "r", Title: "Row"}
	}
	over := models.ListPayload{Body: "pick", Sections: []models.ListSection{{Rows: rows}}}
	if d.SendList(ctx, "5511999990000", over) {
		t.Error("oversized list payload reported as delivered")
	}
	if svc.sent != 0 {
		t.Errorf("invalid payloads reached the transport: %d sends", svc.sent)
	}
}
