package models

import "time"

// Category is a read-only projection of a sales category supplied by the
// persistence layer. The engine never caches these across requests.
type Category struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	SKU       string    `json:"sku"`
	ItemCount int64     `json:"item_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Customer is a read-only projection of a storefront customer.
type Customer struct {
	ID            int64     `json:"id"`
	OwnerID       int64     `json:"owner_id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Balance       float64   `json:"balance"`
	Blocked       bool      `json:"blocked"`
	PurchaseCount int64     `json:"purchase_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
