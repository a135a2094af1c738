package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zapstore-app/zapstore/internal/flow"
	"github.com/zapstore-app/zapstore/internal/messaging"
	"github.com/zapstore-app/zapstore/internal/store"
	"github.com/zapstore-app/zapstore/internal/twiliowhatsapp"
	"github.com/zapstore-app/zapstore/internal/util"
	"github.com/zapstore-app/zapstore/internal/whatsapp"
)

// Constants for API server configuration.
const (
	// DefaultAddr is the default API server address
	DefaultAddr = ":8080"
	// DefaultShutdownTimeout bounds graceful HTTP shutdown
	DefaultShutdownTimeout = 10 * time.Second

	// BackendWhatsmeow selects the native whatsmeow WhatsApp transport
	BackendWhatsmeow = "whatsmeow"
	// BackendTwilio selects the Twilio WhatsApp transport with text fallback
	BackendTwilio = "twilio"
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr    string
	Backend string
	Admins  []util.AdminBinding
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the API server listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) {
		o.Addr = addr
	}
}

// WithBackend selects the messaging backend ("whatsmeow" or "twilio").
func WithBackend(backend string) Option {
	return func(o *Opts) {
		o.Backend = backend
	}
}

// WithAdmins sets the admin bindings seeded into the store at startup.
func WithAdmins(admins []util.AdminBinding) Option {
	return func(o *Opts) {
		o.Admins = admins
	}
}

// Server wires the store, messaging service and flow engine together and
// exposes the observability HTTP endpoints.
type Server struct {
	st        store.Store
	msg       messaging.Service
	twilioSvc *messaging.TwilioService // non-nil only for the Twilio backend
	engine    *flow.Engine
}

// Run bootstraps the full service: store, messaging backend, flow engine,
// inbound event pump and HTTP server. It blocks until SIGINT/SIGTERM and then
// shuts down gracefully.
func Run(waOpts []whatsapp.Option, storeOpts []store.Option, apiOpts ...Option) error {
	cfg := Opts{Addr: DefaultAddr, Backend: BackendWhatsmeow}
	for _, opt := range apiOpts {
		opt(&cfg)
	}
	slog.Debug("API Run options resolved", "addr", cfg.Addr, "backend", cfg.Backend, "admins", len(cfg.Admins))

	st, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	for _, a := range cfg.Admins {
		if err := st.UpsertAdmin(a.RemoteID, a.OwnerID); err != nil {
			return fmt.Errorf("failed to seed admin %s: %w", a.RemoteID, err)
		}
	}
	slog.Info("Admin bindings seeded", "count", len(cfg.Admins))

	srv := &Server{st: st}
	switch cfg.Backend {
	case BackendTwilio:
		client, terr := twiliowhatsapp.NewClient()
		if terr != nil {
			return fmt.Errorf("failed to initialize Twilio client: %w", terr)
		}
		twilioSvc := messaging.NewTwilioService(client)
		srv.msg = twilioSvc
		srv.twilioSvc = twilioSvc
	case BackendWhatsmeow, "":
		client, werr := whatsapp.NewClient(waOpts...)
		if werr != nil {
			return fmt.Errorf("failed to initialize WhatsApp client: %w", werr)
		}
		srv.msg = messaging.NewWhatsAppService(client)
	default:
		return fmt.Errorf("unknown messaging backend %q", cfg.Backend)
	}

	srv.engine = flow.NewEngine(st, messaging.NewDispatcher(srv.msg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.msg.Start(ctx); err != nil {
		return fmt.Errorf("failed to start messaging service: %w", err)
	}
	defer func() {
		if serr := srv.msg.Stop(); serr != nil {
			slog.Error("Failed to stop messaging service", "error", serr)
		}
	}()

	go srv.pumpEvents(ctx)

	httpServer := &http.Server{Addr: cfg.Addr, Handler: srv.routes()}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("ZapStore API listening", "addr", cfg.Addr, "backend", cfg.Backend)
		if lerr := httpServer.ListenAndServe(); lerr != nil && !errors.Is(lerr, http.ErrServerClosed) {
			errCh <- lerr
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("API server failed: %w", err)
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping API server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API server shutdown failed: %w", err)
	}
	return nil
}

// buildStore selects a backend from the options: in-memory when no DSN is
// configured, otherwise SQLite or PostgreSQL by DSN shape.
func buildStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Info("No store DSN configured, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(cfg.DSN) == "postgres" {
		slog.Info("Using PostgreSQL store")
		return store.NewPostgresStore(storeOpts...)
	}
	slog.Info("Using SQLite store", "path", cfg.DSN)
	return store.NewSQLiteStore(storeOpts...)
}

// pumpEvents forwards inbound messaging events to the flow engine until the
// events channel closes or the context is cancelled.
func (s *Server) pumpEvents(ctx context.Context) {
	for {
		select {
		case ev, ok := <-s.msg.Events():
			if !ok {
				slog.Debug("Messaging events channel closed, stopping event pump")
				return
			}
			if err := s.engine.HandleEvent(ctx, ev); err != nil {
				slog.Error("Flow engine failed to handle event", "error", err, "from", ev.From)
			}
		case <-ctx.Done():
			slog.Debug("Event pump stopping due to context cancellation")
			return
		}
	}
}

// routes builds the HTTP mux for the observability and webhook endpoints.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/sessions", s.sessionsHandler)
	mux.HandleFunc("/sessions/", s.sessionDeleteHandler)
	if s.twilioSvc != nil {
		mux.HandleFunc("/webhook/twilio", s.twilioSvc.WebhookHandler)
	}
	return mux
}
