package repository

import "time"

// User represents a shop account row.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Product is a catalog entry. Prices are stored in cents.
type Product struct {
	ID         string
	SKU        string
	Name       string
	PriceCents int64
	SortOrder  int
}

// CartLine is a cart row joined with its product.
type CartLine struct {
	ID        string
	ProductID string
	Name      string
	Quantity  int
	UnitCents int64
	AddedAt   time.Time
}

// TotalCents is quantity times unit price.
func (l CartLine) TotalCents() int64 { return int64(l.Quantity) * l.UnitCents }
