// Package store provides storage backends for ZapStore.
//
// It persists conversation sessions, administrator bindings, and the
// category/customer records the admin engine mutates. SQLite and PostgreSQL
// backends are selected by DSN; an in-memory backend supports tests and
// development.
package store

import "github.com/zapstore-app/zapstore/internal/models"

// Store is the persistence contract consumed by the flow engine and the API
// layer.
//
// Lookups return (nil, nil) when the record does not exist; callers must
// treat a nil record as "not found" rather than an error. Session writes are
// last-write-wins per remote id: concurrent events for the same remote
// identifier are not serialized, the second write simply overwrites the flow
// state.
type Store interface {
	// Admin bindings.

	// UpsertAdmin binds a remote messaging identifier to an owner,
	// overwriting any previous binding.
	UpsertAdmin(remoteID string, ownerID int64) error
	// GetAdmin returns the binding for a remote identifier, or nil.
	GetAdmin(remoteID string) (*models.Admin, error)

	// Sessions.

	// GetSession returns the session for a remote identifier, or nil. A
	// stored flow whose context fails the tag/shape check is surfaced as no
	// active flow.
	GetSession(remoteID string) (*models.Session, error)
	// UpsertSession creates the session on first contact or rebinds its
	// owner, preserving any existing flow state.
	UpsertSession(remoteID string, ownerID int64) (*models.Session, error)
	// TouchSession updates the session's last-interaction timestamp only.
	TouchSession(remoteID string) error
	// SetSessionFlow replaces the session's flow state; nil clears it.
	SetSessionFlow(remoteID string, flow *models.FlowContext) error
	// DeleteSession removes the session record.
	DeleteSession(remoteID string) error
	// ListSessions returns all sessions, for observability.
	ListSessions() ([]models.Session, error)

	// Categories.

	ListCategories(ownerID int64) ([]models.Category, error)
	GetCategory(id int64) (*models.Category, error)
	// RenameCategory sets the category name and returns the updated record,
	// or nil if the category no longer exists.
	RenameCategory(id int64, name string) (*models.Category, error)
	SetCategoryPrice(id int64, price float64) (*models.Category, error)
	SetCategorySKU(id int64, sku string) (*models.Category, error)

	// Customers.

	GetCustomer(id int64) (*models.Customer, error)
	// FindCustomerByPhone matches a customer of the owner whose phone digits
	// end with (or equal) the given digit string.
	FindCustomerByPhone(ownerID int64, digits string) (*models.Customer, error)
	SetCustomerName(id int64, name string) (*models.Customer, error)
	// AdjustCustomerBalance applies a signed delta and clamps the resulting
	// balance to be non-negative. The delta itself is applied as submitted;
	// duplicate webhook delivery of the same event will apply it twice.
	AdjustCustomerBalance(id int64, delta float64) (*models.Customer, error)
	ToggleCustomerBlocked(id int64) (*models.Customer, error)

	// Close releases the backend's resources.
	Close() error
}
