// Package messaging provides the transport abstraction and outbound dispatch
// for the admin conversation.
package messaging

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/zapstore-app/zapstore/internal/models"
)

// Constants for messaging service configuration.
const (
	// DefaultChannelBufferSize defines the buffer size for inbound event channels
	DefaultChannelBufferSize = 100
	// DefaultChannelTimeout defines the timeout for non-blocking channel operations
	DefaultChannelTimeout = 1 * time.Second
)

// ErrServiceStopped is returned by send operations after Stop.
var ErrServiceStopped = errors.New("messaging service is stopped")

// phoneNumberRegex matches every non-digit character, for recipient
// canonicalization.
var phoneNumberRegex = regexp.MustCompile(`\D`)

// Service defines a pluggable message delivery abstraction. It sends plain
// and interactive payloads and provides a channel of inbound events.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a
	// recipient identifier to its digits-only form.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendText sends a plain text message.
	SendText(ctx context.Context, to, body string) error

	// SendButtons sends an interactive reply-buttons message.
	SendButtons(ctx context.Context, to string, payload models.ButtonsPayload) error

	// SendList sends an interactive list message.
	SendList(ctx context.Context, to string, payload models.ListPayload) error

	// Start begins any background processing (e.g., event polling).
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error

	// Events returns a channel of inbound events (free text, button taps,
	// list selections).
	Events() <-chan models.InboundEvent
}
