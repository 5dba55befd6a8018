package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// CartRepo handles per-user cart items.
type CartRepo struct{ db *sql.DB }

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{db: db} }

// Add inserts a line and returns its id.
func (r *CartRepo) Add(ctx context.Context, userID, productID string, quantity int) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO cart_items(id, user_id, product_id, quantity, added_at)
	VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, id, userID, productID, quantity)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *CartRepo) Remove(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ?`, id)
	return err
}

func (r *CartRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	return err
}

// List returns the user's cart oldest first.
func (r *CartRepo) List(ctx context.Context, userID string) ([]CartLine, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT c.id, c.product_id, p.name, c.quantity, p.price_cents, c.added_at
	FROM cart_items c JOIN products p ON p.id = c.product_id
	WHERE c.user_id = ?
	ORDER BY c.added_at, c.rowid
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CartLine
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Name, &l.Quantity, &l.UnitCents, &l.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
