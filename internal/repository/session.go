// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/hexago/unimatch/internal/models"
)

// SaveSession inserts a new session record.
func (r *Repository) SaveSession(ctx context.Context, session *models.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (session_key, expiry, data) VALUES (?, ?, ?)`,
		session.SessionKey, session.Expiry, session.Data)
	return err
}

// GetSession retrieves a session row by key. Expiry is not checked
// here; the session service owns that rule.
func (r *Repository) GetSession(ctx context.Context, key string) (*models.Session, error) {
	var session models.Session
	if err := r.db.GetContext(ctx, &session, `SELECT * FROM sessions WHERE session_key = ?`, key); err != nil {
		return nil, wrapError(err)
	}
	return &session, nil
}

// DeleteSession removes a session record. Deleting an absent session
// is a no-op.
func (r *Repository) DeleteSession(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_key = ?`, key)
	return err
}

// MergeSessionData shallow-merges partial into the session payload,
// incoming keys winning. Read and write run in one immediate
// transaction; ErrNotFound if the session disappeared in between.
func (r *Repository) MergeSessionData(ctx context.Context, key string, partial models.SessionData) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var data models.SessionData
	if err := tx.GetContext(ctx, &data, `SELECT data FROM sessions WHERE session_key = ?`, key); err != nil {
		return wrapError(err)
	}

	if data == nil {
		data = models.SessionData{}
	}
	for k, v := range partial {
		data[k] = v
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET data = ? WHERE session_key = ?`, data, key); err != nil {
		return err
	}

	return tx.Commit()
}

// RemoveSessionDataKey deletes a single field from the session
// payload. ErrNotFound if the session does not exist.
func (r *Repository) RemoveSessionDataKey(ctx context.Context, key, field string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET data = json_remove(data, '$.' || ?) WHERE session_key = ?`,
		field, key)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpiredSessions removes sessions whose expiry has passed.
func (r *Repository) DeleteExpiredSessions(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expiry < ?`, time.Now())
	return err
}
