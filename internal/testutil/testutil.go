// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"

	"github.com/hexago/unimatch/internal/database"
	"github.com/hexago/unimatch/internal/models"
	"github.com/hexago/unimatch/internal/repository"
	"github.com/hexago/unimatch/internal/services/credentials"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestStudent creates a student account. The stored password is the
// salted hash of "Passw0rd!" + username.
func NewTestStudent(t *testing.T, repo *repository.Repository, username, email string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashPassword(t, "Passw0rd!"+username),
		AccountType:  models.AccountTypeStudent,
		Nationality:  "Dutch",
		Country:      "Netherlands",
		City:         "Utrecht",
		Education:    "Bachelor",
		StudyField:   "Computer Science",
		GPA:          "8.1",
		Languages:    models.StringList{"English", "Dutch"},
		Needs:        models.StringList{"Scholarship"},
	}
	_, err := repo.CreateUser(context.Background(), user)
	require.NoError(t, err)
	return user
}

// NewTestUniversity creates a university account.
func NewTestUniversity(t *testing.T, repo *repository.Repository, username, email string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashPassword(t, "Passw0rd!"+username),
		AccountType:  models.AccountTypeUniversity,
		Country:      "Germany",
		City:         "Munich",
		MinGPA:       "7.0",
		Services:     models.StringList{"Housing"},
		Programs: models.Programs{
			{Name: "MSc Informatics", Field: "Computer Science", Languages: []string{"English"}},
		},
	}
	_, err := repo.CreateUser(context.Background(), user)
	require.NoError(t, err)
	return user
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := credentials.CreateSaltedHash(password)
	require.NoError(t, err)
	return hash
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
