package repository

import (
	"context"
	"database/sql"
	"errors"
)

// SessionRepo stores the single signed-in user of the local app.
type SessionRepo struct{ db *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

func (r *SessionRepo) SignIn(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO sessions(id, user_id, started_at) VALUES(1, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id, started_at=excluded.started_at;
	`, userID)
	return err
}

func (r *SessionRepo) SignOut(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = 1`)
	return err
}

// CurrentUserID returns "" when nobody is signed in.
func (r *SessionRepo) CurrentUserID(ctx context.Context) (string, error) {
	var id sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM sessions WHERE id = 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id.String, nil
}
