// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexago/unimatch/internal/models"
	"github.com/hexago/unimatch/internal/repository"
	"github.com/hexago/unimatch/internal/testutil"
)

func newSession(key string, expiry time.Time) *models.Session {
	return &models.Session{
		SessionKey: key,
		Expiry:     expiry,
		Data:       models.SessionData{models.SessionUserIDKey: int64(1)},
	}
}

func TestSaveAndGetSession(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	expiry := time.Now().Add(10 * time.Minute)
	require.NoError(t, repo.SaveSession(ctx, newSession("key-1", expiry)))

	stored, err := repo.GetSession(ctx, "key-1")

	require.NoError(t, err)
	assert.Equal(t, "key-1", stored.SessionKey)
	assert.Equal(t, int64(1), stored.Data.UserID())
	assert.WithinDuration(t, expiry, stored.Expiry, time.Second)
}

func TestGetSessionNotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetSession(context.Background(), "no-such-key")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteSession(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, newSession("key-1", time.Now().Add(time.Minute))))

	require.NoError(t, repo.DeleteSession(ctx, "key-1"))
	require.NoError(t, repo.DeleteSession(ctx, "key-1"))

	_, err := repo.GetSession(ctx, "key-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMergeSessionData(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, newSession("key-1", time.Now().Add(time.Minute))))

	err := repo.MergeSessionData(ctx, "key-1", models.SessionData{"theme": "dark", "lang": "de"})
	require.NoError(t, err)
	err = repo.MergeSessionData(ctx, "key-1", models.SessionData{"theme": "light"})
	require.NoError(t, err)

	stored, err := repo.GetSession(ctx, "key-1")

	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Data.UserID())
	assert.Equal(t, "light", stored.Data["theme"])
	assert.Equal(t, "de", stored.Data["lang"])
}

func TestMergeSessionDataNotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	err := repo.MergeSessionData(context.Background(), "no-such-key", models.SessionData{"a": "b"})

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRemoveSessionDataKey(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	session := newSession("key-1", time.Now().Add(time.Minute))
	session.Data[models.SessionFormTokenKey] = "the-token"
	require.NoError(t, repo.SaveSession(ctx, session))

	require.NoError(t, repo.RemoveSessionDataKey(ctx, "key-1", models.SessionFormTokenKey))

	stored, err := repo.GetSession(ctx, "key-1")
	require.NoError(t, err)
	assert.Empty(t, stored.Data.FormToken())
	assert.Equal(t, int64(1), stored.Data.UserID())
}

func TestRemoveSessionDataKeyNotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	err := repo.RemoveSessionDataKey(context.Background(), "no-such-key", models.SessionFormTokenKey)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteExpiredSessions(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, newSession("stale", time.Now().Add(-time.Minute))))
	require.NoError(t, repo.SaveSession(ctx, newSession("fresh", time.Now().Add(time.Minute))))

	require.NoError(t, repo.DeleteExpiredSessions(ctx))

	_, err := repo.GetSession(ctx, "stale")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetSession(ctx, "fresh")
	assert.NoError(t, err)
}
