// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

// Package session manages server-side session records. Sessions are
// keyed by an opaque random key and live for a fixed TTL; an expired
// session is indistinguishable from an absent one to callers.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hexago/unimatch/internal/models"
	"github.com/hexago/unimatch/internal/repository"
)

// DefaultTTL is the session lifetime.
const DefaultTTL = 10 * time.Minute

// ErrNotFound is returned for absent and expired sessions alike.
var ErrNotFound = repository.ErrNotFound

// Service issues, reads, mutates and deletes sessions.
type Service struct {
	repo *repository.Repository
	ttl  time.Duration
	now  func() time.Time
}

// NewService creates a session service. A non-positive ttl falls back
// to DefaultTTL.
func NewService(repo *repository.Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{repo: repo, ttl: ttl, now: time.Now}
}

// Start mints a new session for the user and returns its key.
func (s *Service) Start(ctx context.Context, userID int64) (string, error) {
	key := uuid.NewString()
	session := &models.Session{
		SessionKey: key,
		Expiry:     s.now().Add(s.ttl),
		Data:       models.SessionData{models.SessionUserIDKey: userID},
	}

	if err := s.repo.SaveSession(ctx, session); err != nil {
		return "", err
	}

	slog.Debug("session_started", "user_id", userID)
	return key, nil
}

// Get returns the session payload, or ErrNotFound when the session is
// absent or expired. Callers cannot tell the two apart.
func (s *Service) Get(ctx context.Context, key string) (models.SessionData, error) {
	session, err := s.repo.GetSession(ctx, key)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		return nil, ErrNotFound
	}
	return session.Data, nil
}

// Delete removes the session. Deleting an absent session is a no-op.
func (s *Service) Delete(ctx context.Context, key string) error {
	return s.repo.DeleteSession(ctx, key)
}

// Update shallow-merges partial into the session payload, incoming
// keys winning. ErrNotFound if the session vanished in between.
func (s *Service) Update(ctx context.Context, key string, partial models.SessionData) error {
	return s.repo.MergeSessionData(ctx, key, partial)
}

// GenerateFormToken mints an anti-forgery token, attaches it to the
// session payload and returns it. Requires an active session.
func (s *Service) GenerateFormToken(ctx context.Context, key string) (string, error) {
	if _, err := s.Get(ctx, key); err != nil {
		return "", err
	}

	token := uuid.NewString()
	if err := s.Update(ctx, key, models.SessionData{models.SessionFormTokenKey: token}); err != nil {
		return "", err
	}
	return token, nil
}

// CancelToken removes the anti-forgery token from the session payload.
func (s *Service) CancelToken(ctx context.Context, key string) error {
	return s.repo.RemoveSessionDataKey(ctx, key, models.SessionFormTokenKey)
}
