package store

import (
	"database/sql"

	"github.com/zapstore-app/zapstore/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanSession scans a session row, decoding the stored flow columns through
// the tag/shape check so a corrupt record degrades to no active flow.
func scanSession(r rowScanner) (*models.Session, error) {
	var sess models.Session
	var stateTag, contextJSON sql.NullString
	err := r.Scan(&sess.RemoteID, &sess.OwnerID, &stateTag, &contextJSON, &sess.CreatedAt, &sess.LastInteractionAt)
	if err != nil {
		return nil, err
	}
	sess.Flow = models.DecodeFlowContext(stateTag.String, contextJSON.String)
	return &sess, nil
}

func collectSessions(rows *sql.Rows) ([]models.Session, error) {
	var out []models.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sess)
	}
	return out, rows.Err()
}

func scanCategoryRow(r rowScanner) (*models.Category, error) {
	var c models.Category
	err := r.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Price, &c.SKU, &c.ItemCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectCategories(rows *sql.Rows) ([]models.Category, error) {
	var out []models.Category
	for rows.Next() {
		c, err := scanCategoryRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanCustomerRow(r rowScanner) (*models.Customer, error) {
	var c models.Customer
	err := r.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Phone, &c.Balance, &c.Blocked, &c.PurchaseCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
