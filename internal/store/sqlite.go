// Package store provides storage backends for ZapStore.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/zapstore-app/zapstore/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore implements Store on a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN. The DSN is a
// file path; missing parent directories are created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "dsn_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied")

	return &SQLiteStore{db: db}, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}

func (s *SQLiteStore) UpsertAdmin(remoteID string, ownerID int64) error {
	_, err := s.db.Exec(`
		INSERT INTO admins (remote_id, owner_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT(remote_id) DO UPDATE SET owner_id = excluded.owner_id`,
		remoteID, ownerID, time.Now())
	if err != nil {
		slog.Error("SQLiteStore UpsertAdmin failed", "error", err, "remoteID", remoteID)
		return fmt.Errorf("failed to upsert admin %s: %w", remoteID, err)
	}
	return nil
}

func (s *SQLiteStore) GetAdmin(remoteID string) (*models.Admin, error) {
	var a models.Admin
	err := s.db.QueryRow(`SELECT remote_id, owner_id, created_at FROM admins WHERE remote_id = ?`, remoteID).
		Scan(&a.RemoteID, &a.OwnerID, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetAdmin failed", "error", err, "remoteID", remoteID)
		return nil, fmt.Errorf("failed to query admin %s: %w", remoteID, err)
	}
	return &a, nil
}

func (s *SQLiteStore) GetSession(remoteID string) (*models.Session, error) {
	row := s.db.QueryRow(`
		SELECT remote_id, owner_id, flow_state, flow_context, created_at, last_interaction_at
		FROM sessions WHERE remote_id = ?`, remoteID)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetSession not found", "remoteID", remoteID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetSession failed", "error", err, "remoteID", remoteID)
		return nil, fmt.Errorf("failed to query session %s: %w", remoteID, err)
	}
	return sess, nil
}

func (s *SQLiteStore) UpsertSession(remoteID string, ownerID int64) (*models.Session, error) {
	now := time.Now()
	_, err := s.db.Exec(`
		INSERT INTO sessions (remote_id, owner_id, flow_state, flow_context, created_at, last_interaction_at)
		VALUES (?, ?, NULL, NULL, ?, ?)
		ON CONFLICT(remote_id) DO UPDATE SET owner_id = excluded.owner_id, last_interaction_at = excluded.last_interaction_at`,
		remoteID, ownerID, now, now)
	if err != nil {
		slog.Error("SQLiteStore UpsertSession failed", "error", err, "remoteID", remoteID)
		return nil, fmt.Errorf("failed to upsert session %s: %w", remoteID, err)
	}
	return s.GetSession(remoteID)
}

func (s *SQLiteStore) TouchSession(remoteID string) error {
	_, err := s.db.Exec(`UPDATE sessions SET last_interaction_at = ? WHERE remote_id = ?`, time.Now(), remoteID)
	if err != nil {
		slog.Error("SQLiteStore TouchSession failed", "error", err, "remoteID", remoteID)
		return fmt.Errorf("failed to touch session %s: %w", remoteID, err)
	}
	return nil
}

func (s *SQLiteStore) SetSessionFlow(remoteID string, flow *models.FlowContext) error {
	stateTag, contextJSON, err := models.EncodeFlowContext(flow)
	if err != nil {
		slog.Error("SQLiteStore SetSessionFlow encode failed", "error", err, "remoteID", remoteID)
		return fmt.Errorf("failed to encode flow context: %w", err)
	}
	_, err = s.db.Exec(`
		UPDATE sessions SET flow_state = ?, flow_context = ?, last_interaction_at = ? WHERE remote_id = ?`,
		nilIfEmpty(stateTag), nilIfEmpty(contextJSON), time.Now(), remoteID)
	if err != nil {
		slog.Error("SQLiteStore SetSessionFlow failed", "error", err, "remoteID", remoteID, "state", stateTag)
		return fmt.Errorf("failed to set session flow for %s: %w", remoteID, err)
	}
	slog.Debug("SQLiteStore SetSessionFlow succeeded", "remoteID", remoteID, "state", stateTag)
	return nil
}

func (s *SQLiteStore) DeleteSession(remoteID string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE remote_id = ?`, remoteID)
	if err != nil {
		slog.Error("SQLiteStore DeleteSession failed", "error", err, "remoteID", remoteID)
		return fmt.Errorf("failed to delete session %s: %w", remoteID, err)
	}
	return nil
}

func (s *SQLiteStore) ListSessions() ([]models.Session, error) {
	rows, err := s.db.Query(`
		SELECT remote_id, owner_id, flow_state, flow_context, created_at, last_interaction_at
		FROM sessions ORDER BY last_interaction_at DESC`)
	if err != nil {
		slog.Error("SQLiteStore ListSessions query failed", "error", err)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (s *SQLiteStore) ListCategories(ownerID int64) ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_id, name, price, sku, item_count, created_at, updated_at
		FROM categories WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		slog.Error("SQLiteStore ListCategories query failed", "error", err, "ownerID", ownerID)
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

func (s *SQLiteStore) GetCategory(id int64) (*models.Category, error) {
	row := s.db.QueryRow(`
		SELECT id, owner_id, name, price, sku, item_count, created_at, updated_at
		FROM categories WHERE id = ?`, id)
	c, err := scanCategoryRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetCategory failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to query category %d: %w", id, err)
	}
	return c, nil
}

// updateCategory runs the update and returns the fresh record, or nil when
// the category no longer exists.
func (s *SQLiteStore) updateCategory(id int64, query string, args ...interface{}) (*models.Category, error) {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		slog.Error("SQLiteStore category update failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to update category %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return s.GetCategory(id)
}

func (s *SQLiteStore) RenameCategory(id int64, name string) (*models.Category, error) {
	return s.updateCategory(id, `UPDATE categories SET name = ?, updated_at = ? WHERE id = ?`, name, time.Now(), id)
}

func (s *SQLiteStore) SetCategoryPrice(id int64, price float64) (*models.Category, error) {
	return s.updateCategory(id, `UPDATE categories SET price = ?, updated_at = ? WHERE id = ?`, price, time.Now(), id)
}

func (s *SQLiteStore) SetCategorySKU(id int64, sku string) (*models.Category, error) {
	return s.updateCategory(id, `UPDATE categories SET sku = ?, updated_at = ? WHERE id = ?`, sku, time.Now(), id)
}

func (s *SQLiteStore) GetCustomer(id int64) (*models.Customer, error) {
	row := s.db.QueryRow(`
		SELECT id, owner_id, name, phone, balance, blocked, purchase_count, created_at, updated_at
		FROM customers WHERE id = ?`, id)
	c, err := scanCustomerRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetCustomer failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to query customer %d: %w", id, err)
	}
	return c, nil
}

func (s *SQLiteStore) FindCustomerByPhone(ownerID int64, digits string) (*models.Customer, error) {
	if digits == "" {
		return nil, nil
	}
	row := s.db.QueryRow(`
		SELECT id, owner_id, name, phone, balance, blocked, purchase_count, created_at, updated_at
		FROM customers WHERE owner_id = ? AND (phone = ? OR phone LIKE '%' || ?) ORDER BY id LIMIT 1`,
		ownerID, digits, digits)
	c, err := scanCustomerRow(row)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore FindCustomerByPhone not found", "ownerID", ownerID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore FindCustomerByPhone failed", "error", err, "ownerID", ownerID)
		return nil, fmt.Errorf("failed to find customer by phone: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) updateCustomer(id int64, query string, args ...interface{}) (*models.Customer, error) {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		slog.Error("SQLiteStore customer update failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to update customer %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return s.GetCustomer(id)
}

func (s *SQLiteStore) SetCustomerName(id int64, name string) (*models.Customer, error) {
	return s.updateCustomer(id, `UPDATE customers SET name = ?, updated_at = ? WHERE id = ?`, name, time.Now(), id)
}

func (s *SQLiteStore) AdjustCustomerBalance(id int64, delta float64) (*models.Customer, error) {
	return s.updateCustomer(id,
		`UPDATE customers SET balance = MAX(0, balance + ?), updated_at = ? WHERE id = ?`,
		delta, time.Now(), id)
}

func (s *SQLiteStore) ToggleCustomerBlocked(id int64) (*models.Customer, error) {
	return s.updateCustomer(id,
		`UPDATE customers SET blocked = NOT blocked, updated_at = ? WHERE id = ?`,
		time.Now(), id)
}
