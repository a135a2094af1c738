// Package whatsapp wraps the Whatsmeow client for WhatsApp integration.
//
// It provides methods for sending text and interactive list/button messages
// and for extracting inbound events from WhatsApp messages.
package whatsapp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"github.com/zapstore-app/zapstore/internal/models"
	"github.com/zapstore-app/zapstore/internal/store"
)

// Constants for WhatsApp client configuration.
const (
	// DefaultSQLitePath is the default path for the whatsmeow SQLite database
	DefaultSQLitePath = "/var/lib/zapstore/whatsmeow.db"
	// JIDSuffix is the WhatsApp JID suffix for regular users
	JIDSuffix = "s.whatsapp.net"
)

// Sender is the outbound surface of the WhatsApp client, abstracted for
// production and testing.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
	SendButtons(ctx context.Context, to string, payload models.ButtonsPayload) error
	SendList(ctx context.Context, to string, payload models.ListPayload) error
}

// Opts holds configuration options for the WhatsApp client.
type Opts struct {
	DBDSN       string // whatsmeow database connection string
	QRPath      string // path to write login QR code
	NumericCode bool   // use numeric login code instead of QR code
}

// Option defines a configuration option for the WhatsApp client.
type Option func(*Opts)

// WithDBDSN sets the whatsmeow database connection string.
func WithDBDSN(dsn string) Option {
	return func(o *Opts) {
		o.DBDSN = dsn
	}
}

// WithQRCodeOutput instructs the client to write the login QR code to the
// specified path.
func WithQRCodeOutput(path string) Option {
	return func(o *Opts) {
		o.QRPath = path
	}
}

// WithNumericCode instructs the client to use a numeric login code instead of
// a QR code.
func WithNumericCode() Option {
	return func(o *Opts) {
		o.NumericCode = true
	}
}

// Client wraps the Whatsmeow client for modular use.
type Client struct {
	waClient *whatsmeow.Client
}

// NewClient creates a new WhatsApp client, applying any provided options and
// driving the first-login QR/code flow when no session exists yet.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("WhatsApp NewClient options set", "DBDSN_set", cfg.DBDSN != "", "QRPath_set", cfg.QRPath != "", "NumericCode", cfg.NumericCode)

	dbDSN := cfg.DBDSN
	if dbDSN == "" {
		dbDSN = DefaultSQLitePath
		slog.Debug("No WhatsApp database DSN provided, using default SQLite path", "default_path", dbDSN)
	}

	var dbDriver string
	if store.DetectDSNType(dbDSN) == "postgres" {
		dbDriver = "postgres"
	} else {
		dbDriver = "sqlite3"
		if !strings.Contains(dbDSN, "_foreign_keys") && !strings.Contains(dbDSN, "foreign_keys") {
			slog.Warn("SQLite database for WhatsApp does not appear to have foreign keys enabled. "+
				"The whatsmeow library strongly recommends enabling foreign keys for data integrity.",
				"dsn_example", "file:"+dbDSN+"?_foreign_keys=on")
		}
	}

	logger := waLog.Stdout("Database", "INFO", true)
	ctx := context.Background()
	container, err := sqlstore.New(ctx, dbDriver, dbDSN, logger)
	if err != nil {
		slog.Error("Failed to initialize WhatsApp DB store", "error", err)
		return nil, fmt.Errorf("failed to initialize WhatsApp database store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		slog.Error("Failed to get first device from store", "error", err)
		return nil, fmt.Errorf("failed to get device from WhatsApp store: %w", err)
	}

	clientLog := waLog.Stdout("Client", "INFO", true)
	waClient := whatsmeow.NewClient(deviceStore, clientLog)

	if waClient.Store.ID == nil {
		slog.Info("WhatsApp login required; starting QR code flow")
		qrChan, _ := waClient.GetQRChannel(context.Background())
		if err := waClient.Connect(); err != nil {
			slog.Error("Failed to connect to WhatsApp during login", "error", err)
			return nil, fmt.Errorf("failed to connect to WhatsApp during login: %w", err)
		}
		writer := io.Writer(os.Stdout)
		if cfg.QRPath != "" {
			f, ferr := os.Create(cfg.QRPath)
			if ferr != nil {
				slog.Error("Failed to create QR file", "error", ferr)
				return nil, fmt.Errorf("failed to create QR file: %w", ferr)
			}
			defer f.Close()
			writer = f
		}
		for evt := range qrChan {
			if evt.Event == "code" {
				if cfg.NumericCode {
					fmt.Fprintln(writer, evt.Code)
				} else {
					qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, writer)
				}
			} else {
				slog.Debug("WhatsApp login event", "event", evt.Event)
			}
		}
	} else {
		slog.Debug("WhatsApp already logged in, connecting to server")
		if err := waClient.Connect(); err != nil {
			slog.Error("Failed to connect to WhatsApp server", "error", err)
			return nil, fmt.Errorf("failed to connect to WhatsApp server: %w", err)
		}
	}
	slog.Info("WhatsApp client connected successfully")
	return &Client{waClient: waClient}, nil
}

func (c *Client) checkReady(to, body string) error {
	if c.waClient == nil {
		return fmt.Errorf("whatsapp client not initialized")
	}
	if to == "" {
		return fmt.Errorf("recipient cannot be empty")
	}
	if body == "" {
		return fmt.Errorf("message body cannot be empty")
	}
	return nil
}

func (c *Client) send(ctx context.Context, to string, msg *waE2E.Message) error {
	jid := types.NewJID(to, JIDSuffix)
	if _, err := c.waClient.SendMessage(ctx, jid, msg); err != nil {
		slog.Error("Failed to send WhatsApp message", "error", err, "to", to)
		return fmt.Errorf("failed to send message to %s: %w", to, err)
	}
	return nil
}

// SendText sends a plain WhatsApp text message.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	if err := c.checkReady(to, body); err != nil {
		return err
	}
	slog.Debug("Sending WhatsApp text", "to", to, "body_length", len(body))
	return c.send(ctx, to, &waE2E.Message{Conversation: &body})
}

// SendButtons sends an interactive reply-buttons message.
func (c *Client) SendButtons(ctx context.Context, to string, payload models.ButtonsPayload) error {
	if err := c.checkReady(to, payload.Body); err != nil {
		return err
	}

	buttons := make([]*waE2E.ButtonsMessage_Button, 0, len(payload.Buttons))
	for _, b := range payload.Buttons {
		buttons = append(buttons, &waE2E.ButtonsMessage_Button{
			ButtonID:   proto.String(b.ID),
			ButtonText: &waE2E.ButtonsMessage_Button_ButtonText{DisplayText: proto.String(b.Title)},
			Type:       waE2E.ButtonsMessage_Button_RESPONSE.Enum(),
		})
	}
	msg := &waE2E.ButtonsMessage{
		ContentText: proto.String(payload.Body),
		Buttons:     buttons,
	}
	if payload.Header != "" {
		msg.HeaderType = waE2E.ButtonsMessage_TEXT.Enum()
		msg.Header = &waE2E.ButtonsMessage_Text{Text: payload.Header}
	}
	if payload.Footer != "" {
		msg.FooterText = proto.String(payload.Footer)
	}

	slog.Debug("Sending WhatsApp buttons", "to", to, "buttons", len(buttons))
	return c.send(ctx, to, &waE2E.Message{ButtonsMessage: msg})
}

// SendList sends an interactive list message.
func (c *Client) SendList(ctx context.Context, to string, payload models.ListPayload) error {
	if err := c.checkReady(to, payload.Body); err != nil {
		return err
	}

	sections := make([]*waE2E.ListMessage_Section, 0, len(payload.Sections))
	for _, s := range payload.Sections {
		rows := make([]*waE2E.ListMessage_Row, 0, len(s.Rows))
		for _, r := range s.Rows {
			rows = append(rows, &waE2E.ListMessage_Row{
				RowID:       proto.String(r.ID),
				Title:       proto.String(r.Title),
				Description: proto.String(r.Description),
			})
		}
		sections = append(sections, &waE2E.ListMessage_Section{
			Title: proto.String(s.Title),
			Rows:  rows,
		})
	}
	msg := &waE2E.ListMessage{
		Title:       proto.String(payload.Header),
		Description: proto.String(payload.Body),
		ButtonText:  proto.String(payload.ButtonText),
		ListType:    waE2E.ListMessage_SINGLE_SELECT.Enum(),
		Sections:    sections,
	}
	if payload.Footer != "" {
		msg.FooterText = proto.String(payload.Footer)
	}

	slog.Debug("Sending WhatsApp list", "to", to, "rows", payload.RowCount())
	return c.send(ctx, to, &waE2E.Message{ListMessage: msg})
}

// GetClient returns the underlying whatsmeow client for event handling.
func (c *Client) GetClient() *whatsmeow.Client {
	return c.waClient
}

// ExtractEvent converts an inbound WhatsApp message into an engine event.
// List selections and button taps become selection events; plain and
// extended text become text events. Other message kinds (media, reactions)
// are skipped with ok=false.
func ExtractEvent(evt *events.Message) (models.InboundEvent, bool) {
	if evt == nil || evt.Message == nil {
		return models.InboundEvent{}, false
	}

	out := models.InboundEvent{
		From: evt.Info.Sender.User,
		Time: evt.Info.Timestamp.Unix(),
	}

	if lr := evt.Message.GetListResponseMessage(); lr != nil {
		out.SelectionID = lr.GetSingleSelectReply().GetSelectedRowID()
		return out, out.SelectionID != ""
	}
	if br := evt.Message.GetButtonsResponseMessage(); br != nil {
		out.SelectionID = br.GetSelectedButtonID()
		return out, out.SelectionID != ""
	}
	if tr := evt.Message.GetTemplateButtonReplyMessage(); tr != nil {
		out.SelectionID = tr.GetSelectedID()
		return out, out.SelectionID != ""
	}
	if text := evt.Message.GetConversation(); text != "" {
		out.Text = text
		return out, true
	}
	if ext := evt.Message.GetExtendedTextMessage(); ext != nil && ext.GetText() != "" {
		out.Text = ext.GetText()
		return out, true
	}

	slog.Debug("WhatsApp ignoring unsupported message kind", "from", out.From)
	return models.InboundEvent{}, false
}

// MockClient implements Sender but does nothing, for tests.
type MockClient struct{}

// NewMockClient creates a no-op Sender.
func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) SendText(ctx context.Context, to, body string) error {
	return nil
}

func (m *MockClient) SendButtons(ctx context.Context, to string, payload models.ButtonsPayload) error {
	return nil
}

func (m *MockClient) SendList(ctx context.Context, to string, payload models.ListPayload) error {
	return nil
}
