// Package store provides storage backends for ZapStore.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/zapstore-app/zapstore/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore implements Store on a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "dsn_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open PostgreSQL connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("PostgreSQL ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run PostgreSQL migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgreSQL migrations applied")

	return &PostgresStore{db: db}, nil
}

// Close closes the PostgreSQL connection pool.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing PostgreSQL connection pool")
	return s.db.Close()
}

func (s *PostgresStore) UpsertAdmin(remoteID string, ownerID int64) error {
	_, err := s.db.Exec(`
		INSERT INTO admins (remote_id, owner_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (remote_id) DO UPDATE SET owner_id = EXCLUDED.owner_id`,
		remoteID, ownerID, time.Now())
	if err != nil {
		slog.Error("PostgresStore UpsertAdmin failed", "error", err, "remoteID", remoteID)
		return fmt.Errorf("failed to upsert admin %s: %w", remoteID, err)
	}
	return nil
}

func (s *PostgresStore) GetAdmin(remoteID string) (*models.Admin, error) {
	var a models.Admin
	err := s.db.QueryRow(`SELECT remote_id, owner_id, created_at FROM admins WHERE remote_id = $1`, remoteID).
		Scan(&a.RemoteID, &a.OwnerID, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetAdmin failed", "error", err, "remoteID", remoteID)
		return nil, fmt.Errorf("failed to query admin %s: %w", remoteID, err)
	}
	return &a, nil
}

func (s *PostgresStore) GetSession(remoteID string) (*models.Session, error) {
	row := s.db.QueryRow(`
		SELECT remote_id, owner_id, flow_state, flow_context, created_at, last_interaction_at
		FROM sessions WHERE remote_id = $1`, remoteID)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetSession not found", "remoteID", remoteID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetSession failed", "error", err, "remoteID", remoteID)
		return nil, fmt.Errorf("failed to query session %s: %w", remoteID, err)
	}
	return sess, nil
}

func (s *PostgresStore) UpsertSession(remoteID string, ownerID int64) (*models.Session, error) {
	now := time.Now()
	_, err := s.db.Exec(`
		INSERT INTO sessions (remote_id, owner_id, flow_state, flow_context, created_at, last_interaction_at)
		VALUES ($1, $2, NULL, NULL, $3, $3)
		ON CONFLICT (remote_id) DO UPDATE SET owner_id = EXCLUDED.owner_id, last_interaction_at = EXCLUDED.last_interaction_at`,
		remoteID, ownerID, now)
	if err != nil {
		slog.Error("PostgresStore UpsertSession failed", "error", err, "remoteID", remoteID)
		return nil, fmt.Errorf("failed to upsert session %s: %w", remoteID, err)
	}
	return s.GetSession(remoteID)
}

func (s *PostgresStore) TouchSession(remoteID string) error {
	_, err := s.db.Exec(`UPDATE sessions SET last_interaction_at = $1 WHERE remote_id = $2`, time.Now(), remoteID)
	if err != nil {
		slog.Error("PostgresStore TouchSession failed", "error", err, "remoteID", remoteID)
		return fmt.Errorf("failed to touch session %s: %w", remoteID, err)
	}
	return nil
}

func (s *PostgresStore) SetSessionFlow(remoteID string, flow *models.FlowContext) error {
	stateTag, contextJSON, err := models.EncodeFlowContext(flow)
	if err != nil {
		slog.Error("PostgresStore SetSessionFlow encode failed", "error", err, "remoteID", remoteID)
		return fmt.Errorf("failed to encode flow context: %w", err)
	}
	_, err = s.db.Exec(`
		UPDATE sessions SET flow_state = $1, flow_context = $2, last_interaction_at = $3 WHERE remote_id = $4`,
		nilIfEmpty(stateTag), nilIfEmpty(contextJSON), time.Now(), remoteID)
	if err != nil {
		slog.Error("PostgresStore SetSessionFlow failed", "error", err, "remoteID", remoteID, "state", stateTag)
		return fmt.Errorf("failed to set session flow for %s: %w", remoteID, err)
	}
	slog.Debug("PostgresStore SetSessionFlow succeeded", "remoteID", remoteID, "state", stateTag)
	return nil
}

func (s *PostgresStore) DeleteSession(remoteID string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE remote_id = $1`, remoteID)
	if err != nil {
		slog.Error("PostgresStore DeleteSession failed", "error", err, "remoteID", remoteID)
		return fmt.Errorf("failed to delete session %s: %w", remoteID, err)
	}
	return nil
}

func (s *PostgresStore) ListSessions() ([]models.Session, error) {
	rows, err := s.db.Query(`
		SELECT remote_id, owner_id, flow_state, flow_context, created_at, last_interaction_at
		FROM sessions ORDER BY last_interaction_at DESC`)
	if err != nil {
		slog.Error("PostgresStore ListSessions query failed", "error", err)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (s *PostgresStore) ListCategories(ownerID int64) ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_id, name, price, sku, item_count, created_at, updated_at
		FROM categories WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		slog.Error("PostgresStore ListCategories query failed", "error", err, "ownerID", ownerID)
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

func (s *PostgresStore) GetCategory(id int64) (*models.Category, error) {
	row := s.db.QueryRow(`
		SELECT id, owner_id, name, price, sku, item_count, created_at, updated_at
		FROM categories WHERE id = $1`, id)
	c, err := scanCategoryRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetCategory failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to query category %d: %w", id, err)
	}
	return c, nil
}

func (s *PostgresStore) updateCategory(id int64, query string, args ...interface{}) (*models.Category, error) {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		slog.Error("PostgresStore category update failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to update category %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return s.GetCategory(id)
}

func (s *PostgresStore) RenameCategory(id int64, name string) (*models.Category, error) {
	return s.updateCategory(id, `UPDATE categories SET name = $1, updated_at = $2 WHERE id = $3`, name, time.Now(), id)
}

func (s *PostgresStore) SetCategoryPrice(id int64, price float64) (*models.Category, error) {
	return s.updateCategory(id, `UPDATE categories SET price = $1, updated_at = $2 WHERE id = $3`, price, time.Now(), id)
}

func (s *PostgresStore) SetCategorySKU(id int64, sku string) (*models.Category, error) {
	return s.updateCategory(id, `UPDATE categories SET sku = $1, updated_at = $2 WHERE id = $3`, sku, time.Now(), id)
}

func (s *PostgresStore) GetCustomer(id int64) (*models.Customer, error) {
	row := s.db.QueryRow(`
		SELECT id, owner_id, name, phone, balance, blocked, purchase_count, created_at, updated_at
		FROM customers WHERE id = $1`, id)
	c, err := scanCustomerRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetCustomer failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to query customer %d: %w", id, err)
	}
	return c, nil
}

func (s *PostgresStore) FindCustomerByPhone(ownerID int64, digits string) (*models.Customer, error) {
	if digits == "" {
		return nil, nil
	}
	row := s.db.QueryRow(`
		SELECT id, owner_id, name, phone, balance, blocked, purchase_count, created_at, updated_at
		FROM customers WHERE owner_id = $1 AND (phone = $2 OR phone LIKE '%' || $2) ORDER BY id LIMIT 1`,
		ownerID, digits)
	c, err := scanCustomerRow(row)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore FindCustomerByPhone not found", "ownerID", ownerID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore FindCustomerByPhone failed", "error", err, "ownerID", ownerID)
		return nil, fmt.Errorf("failed to find customer by phone: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) updateCustomer(id int64, query string, args ...interface{}) (*models.Customer, error) {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		slog.Error("PostgresStore customer update failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to update customer %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return s.GetCustomer(id)
}

func (s *PostgresStore) SetCustomerName(id int64, name string) (*models.Customer, error) {
	return s.updateCustomer(id, `UPDATE customers SET name = $1, updated_at = $2 WHERE id = $3`, name, time.Now(), id)
}

func (s *PostgresStore) AdjustCustomerBalance(id int64, delta float64) (*models.Customer, error) {
	return s.updateCustomer(id,
		`UPDATE customers SET balance = GREATEST(0, balance + $1), updated_at = $2 WHERE id = $3`,
		delta, time.Now(), id)
}

func (s *PostgresStore) ToggleCustomerBlocked(id int64) (*models.Customer, error) {
	return s.updateCustomer(id,
		`UPDATE customers SET blocked = NOT blocked, updated_at = $1 WHERE id = $2`,
		time.Now(), id)
}
