package messaging

import (
	"context"
	"log/slog"

	"github.com/zapstore-app/zapstore/internal/models"
)

// Dispatcher wraps a Service's send primitives with logging and failure
// containment. It never propagates a transport error to the caller: delivery
// is best-effort and decoupled from the correctness of the state machine, and
// there is no retry queue — a failed send is only logged.
type Dispatcher struct {
	svc Service
}

// NewDispatcher creates a Dispatcher over the given service.
func NewDispatcher(svc Service) *Dispatcher {
	return &Dispatcher{svc: svc}
}

// SendText delivers a plain text message, returning whether it was sent.
func (d *Dispatcher) SendText(ctx context.Context, to, body string) bool {
	if err := d.svc.SendText(ctx, to, body); err != nil {
		slog.Error("Dispatcher text delivery failed", "error", err, "to", to)
		return false
	}
	slog.Debug("Dispatcher text delivered", "to", to, "body_length", len(body))
	return true
}

// SendButtons delivers an interactive buttons message, returning whether it
// was sent.
func (d *Dispatcher) SendButtons(ctx context.Context, to string, payload models.ButtonsPayload) bool {
	if err := payload.Validate(); err != nil {
		slog.Error("Dispatcher rejecting invalid buttons payload", "error", err, "to", to)
		return false
	}
	if err := d.svc.SendButtons(ctx, to, payload); err != nil {
		slog.Error("Dispatcher buttons delivery failed", "error", err, "to", to)
		return false
	}
	slog.Debug("Dispatcher buttons delivered", "to", to, "buttons", len(payload.Buttons))
	return true
}

// SendList delivers an interactive list message, returning whether it was
// sent.
func (d *Dispatcher) SendList(ctx context.Context, to string, payload models.ListPayload) bool {
	if err := payload.Validate(); err != nil {
		slog.Error("Dispatcher rejecting invalid list payload", "error", err, "to", to)
		return false
	}
	if err := d.svc.SendList(ctx, to, payload); err != nil {
		slog.Error("Dispatcher list delivery failed", "error", err, "to", to)
		return false
	}
	slog.Debug("Dispatcher list delivered", "to", to, "rows", payload.RowCount())
	return true
}
