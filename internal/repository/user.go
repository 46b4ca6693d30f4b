// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hexago/unimatch/internal/models"
)

// userColumns lists the columns UpdateUserFields may touch. Anything
// else is a programming error, not user input.
var userColumns = map[string]struct{}{
	"username":      {},
	"nationality":   {},
	"country":       {},
	"city":          {},
	"education":     {},
	"study_field":   {},
	"gpa":           {},
	"min_gpa":       {},
	"languages":     {},
	"needs":         {},
	"services":      {},
	"programs":      {},
	"matches":       {},
	"match_records": {},
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by their username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE username = ?`, username); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByType retrieves the first user with the given account type.
func (r *Repository) GetUserByType(ctx context.Context, accountType string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE account_type = ? ORDER BY id LIMIT 1`, accountType); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// ListUniversities returns all university accounts ordered by name.
func (r *Repository) ListUniversities(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT * FROM users WHERE account_type = ? ORDER BY username`, models.AccountTypeUniversity)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser inserts a new user and returns its id. The caller is
// responsible for hashing the password beforehand.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, account_type,
		    nationality, country, city, education, study_field, gpa, min_gpa,
		    languages, needs, services, programs, matches, match_records)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.AccountType,
		user.Nationality, user.Country, user.City, user.Education, user.StudyField,
		user.GPA, user.MinGPA,
		user.Languages, user.Needs, user.Services, user.Programs,
		user.Matches, user.MatchRecords)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	user.ID = id
	return id, nil
}

// UpdateUserFields sets the given columns on the user with the given
// email. Column names outside the allowed set are rejected.
func (r *Repository) UpdateUserFields(ctx context.Context, email string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, ok := userColumns[name]; !ok {
			return fmt.Errorf("update of column %q is not allowed", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	assignments := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+1)
	for _, name := range names {
		assignments = append(assignments, name+" = ?")
		args = append(args, fields[name])
	}
	assignments = append(assignments, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, email)

	query := "UPDATE users SET " + strings.Join(assignments, ", ") + " WHERE email = ?"
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// StoreResetKey stores a reset key with its expiry on the user record,
// replacing any previous key.
func (r *Repository) StoreResetKey(ctx context.Context, email, key string, expiry time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET reset_key = ?, reset_key_expiry = ?, updated_at = CURRENT_TIMESTAMP WHERE email = ?`,
		key, expiry, email)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetUserByResetKey retrieves the user holding the given reset key.
// Expiry is not checked here; the account workflow owns that rule.
func (r *Repository) GetUserByResetKey(ctx context.Context, key string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE reset_key = ?`, key); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// ClearResetKey removes the reset key record from a user.
func (r *Repository) ClearResetKey(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET reset_key = NULL, reset_key_expiry = NULL, updated_at = CURRENT_TIMESTAMP WHERE email = ?`,
		email)
	return err
}

// UpdatePassword stores a new password hash for the user. Returns
// false when no user carries that email.
func (r *Repository) UpdatePassword(ctx context.Context, email, passwordHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE email = ?`,
		passwordHash, email)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AppendStudentMatch appends universityEmail to the student's accepted
// list unless it is already present. The read and write run in one
// immediate transaction, so concurrent acceptances serialize instead
// of losing updates. Returns true when the list actually grew.
func (r *Repository) AppendStudentMatch(ctx context.Context, studentEmail, universityEmail string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var matches models.StringList
	if err := tx.GetContext(ctx, &matches, `SELECT matches FROM users WHERE email = ?`, studentEmail); err != nil {
		return false, wrapError(err)
	}

	if matches.Contains(universityEmail) {
		return false, nil
	}

	matches = append(matches, universityEmail)
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET matches = ?, updated_at = CURRENT_TIMESTAMP WHERE email = ?`,
		matches, studentEmail); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
