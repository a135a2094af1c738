package messaging

import (
	"context"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/zapstore-app/zapstore/internal/models"
)

// recordingTwilioClient captures the text bodies sent through Twilio.
type recordingTwilioClient struct {
	bodies []string
	tos    []string
}

func (c *recordingTwilioClient) SendMessage(ctx context.Context, to, body string) error {
	c.tos = append(c.tos, to)
	c.bodies = append(c.bodies, body)
	return nil
}

func postWebhook(t *testing.T, svc *TwilioService, from, body string) int {
	t.Helper()
	form := url.Values{"From": {from}, "Body": {body}}
	req := httptest.NewRequest("POST", "/webhook/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	svc.WebhookHandler(w, req)
	return w.Code
}

func drainEvent(t *testing.T, svc *TwilioService) models.InboundEvent {
	t.Helper()
	select {
	case ev := <-svc.Events():
		return ev
	default:
		t.Fatal("no event emitted")
		return models.InboundEvent{}
	}
}

func TestTwilioServiceRendersNumberedList(t *testing.T) {
	client := &recordingTwilioClient{}
	svc := NewTwilioService(client)

	err := svc.SendList(context.Background(), "5511999990000", models.ListPayload{
		Body: "Pick one.",
		Sections: []models.ListSection{{
			Title: "Categories",
			Rows: []models.ListRow{
				{ID: "cat_rn:1", Title: "Bebidas", Description: "R$ 8.00"},
				{ID: "cat_rn:2", Title: "Doces"},
			},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.bodies) != 1 {
		t.Fatalf("sent %d messages, want 1", len(client.bodies))
	}
	body := client.bodies[0]
	for _, want := range []string{"1. Bebidas", "2. Doces", "R$ 8.00", "Reply with a number."} {
		if !strings.Contains(body, want) {
			t.Errorf("rendered menu %q missing %q", body, want)
		}
	}
}

func TestTwilioServiceMapsNumberReplyToRowID(t *testing.T) {
	svc := NewTwilioService(&recordingTwilioClient{})
	err := svc.SendList(context.Background(), "5511999990000", models.ListPayload{
		Body: "Pick one.",
		Sections: []models.ListSection{{Rows: []models.ListRow{
			{ID: "cat_rn:1", Title: "Bebidas"},
			{ID: "cat_rn:2", Title: "Doces"},
		}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if code := postWebhook(t, svc, "whatsapp:+5511999990000", "2"); code != 200 {
		t.Fatalf("webhook status = %d, want 200", code)
	}
	ev := drainEvent(t, svc)
	if ev.SelectionID != "cat_rn:2" {
		t.Errorf("SelectionID = %q, want cat_rn:2", ev.SelectionID)
	}
	if ev.From != "5511999990000" {
		t.Errorf("From = %q, want canonical digits", ev.From)
	}
}

func TestTwilioServiceOutOfRangeNumberIsText(t *testing.T) {
	svc := NewTwilioService(&recordingTwilioClient{})
	if err := svc.SendButtons(context.Background(), "5511999990000", models.ButtonsPayload{
		Body:    "Continue?",
		Buttons: []models.Button{{ID: "flow_cancel", Title: "Cancel"}},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	postWebhook(t, svc, "whatsapp:+5511999990000", "9")
	ev := drainEvent(t, svc)
	if ev.SelectionID != "" || ev.Text != "9" {
		t.Errorf("out-of-range reply = %+v, want plain text", ev)
	}
}

func TestTwilioServiceTextClearsRememberedMenu(t *testing.T) {
	svc := NewTwilioService(&recordingTwilioClient{})
	if err := svc.SendList(context.Background(), "5511999990000", models.ListPayload{
		Body: "Pick one.",
		Sections: []models.ListSection{{Rows: []models.ListRow{
			{ID: "cat_rn:1", Title: "Bebidas"},
		}}},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A plain text send invalidates the menu mapping.
	if err := svc.SendText(context.Background(), "5511999990000", "done"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	postWebhook(t, svc, "whatsapp:+5511999990000", "1")
	ev := drainEvent(t, svc)
	if ev.SelectionID != "" || ev.Text != "1" {
		t.Errorf("reply after text = %+v, want plain text event", ev)
	}
}

func TestTwilioServiceWebhookRejectsMissingFields(t *testing.T) {
	svc := NewTwilioService(&recordingTwilioClient{})
	if code := postWebhook(t, svc, "", "hi"); code != 400 {
		t.Errorf("missing From: status = %d, want 400", code)
	}
	if code := postWebhook(t, svc, "whatsapp:+5511999990000", ""); code != 400 {
		t.Errorf("missing Body: status = %d, want 400", code)
	}
}

func TestTwilioServiceStopRejectsSends(t *testing.T) {
	svc := NewTwilioService(&recordingTwilioClient{})
	if err := svc.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SendText(context.Background(), "5511999990000", "hi"); err != ErrServiceStopped {
		t.Errorf("send after stop: got %v, want ErrServiceStopped", err)
	}
	// Stop is idempotent.
	if err := svc.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}
