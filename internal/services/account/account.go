// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

// Package account implements registration validation, login
// verification and the password-reset workflow. Validation outcomes
// are structured results; the presentation layer owns their wording.
package account

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hexago/unimatch/internal/models"
	"github.com/hexago/unimatch/internal/repository"
	"github.com/hexago/unimatch/internal/services/credentials"
)

// ResetKeyTTL is how long a password-reset key stays valid.
const ResetKeyTTL = 5 * time.Minute

// Failure reasons carried by CheckLogin and ResetPassword results.
// Login failures share a single reason so the response cannot reveal
// whether the email or the password was wrong.
const (
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonWeakPassword       = "weak_password"
	ReasonPasswordMismatch   = "password_mismatch"
	ReasonBadResetKey        = "bad_reset_key"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// dummyHash keeps the login path doing credential work even for
// unknown emails, so response timing stays flat.
var dummyHash, _ = credentials.CreateSaltedHash(uuid.NewString())

// LoginResult is the outcome of a login check.
type LoginResult struct {
	OK     bool
	UserID int64
	Reason string
}

// ResetResult is the outcome of a password reset.
type ResetResult struct {
	OK     bool
	Reason string
}

// Service implements the account and reset workflow on top of the
// persistence gateway.
type Service struct {
	repo *repository.Repository
	now  func() time.Time
}

// NewService creates an account service.
func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ValidateEmail reports whether the email is syntactically valid AND
// not already registered. Both conditions must hold.
func (s *Service) ValidateEmail(ctx context.Context, email string) (bool, error) {
	if !emailPattern.MatchString(email) {
		return false, nil
	}
	exists, err := s.CheckEmailExists(ctx, email)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// CheckEmailExists reports whether a user carries the email,
// independent of syntax.
func (s *Service) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ValidateUsername returns the user carrying the username, or
// ErrNotFound.
func (s *Service) ValidateUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repo.GetUserByUsername(ctx, username)
}

// CreateUser hashes the plain-text password on the user in place and
// persists the record. The caller is responsible for prior
// validation; nothing is re-validated here.
func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	hash, err := credentials.CreateSaltedHash(user.PasswordHash)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if _, err := s.repo.CreateUser(ctx, user); err != nil {
		return err
	}

	slog.Info("user_created", "user_id", user.ID, "account_type", user.AccountType)
	return nil
}

// CheckLogin verifies email and password. Both failure modes return
// the identical reason.
func (s *Service) CheckLogin(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		credentials.VerifyPassword(password, dummyHash)
		slog.Warn("login_failed", "reason", "unknown_email")
		return LoginResult{Reason: ReasonInvalidCredentials}, nil
	}
	if err != nil {
		return LoginResult{}, err
	}

	if !credentials.VerifyPassword(password, user.PasswordHash) {
		slog.Warn("login_failed", "user_id", user.ID, "reason", "wrong_password")
		return LoginResult{Reason: ReasonInvalidCredentials}, nil
	}

	slog.Info("login_success", "user_id", user.ID)
	return LoginResult{OK: true, UserID: user.ID}, nil
}

// StoreResetKey mints a reset key, stores it on the user record with
// a 5-minute expiry (replacing any prior key) and returns it.
func (s *Service) StoreResetKey(ctx context.Context, email string) (string, error) {
	key := uuid.NewString()
	if err := s.repo.StoreResetKey(ctx, email, key, s.now().Add(ResetKeyTTL)); err != nil {
		return "", err
	}
	return key, nil
}

// GetUserByResetKey returns the user owning the key, or ErrNotFound
// when the key is unknown or its expiry has passed.
func (s *Service) GetUserByResetKey(ctx context.Context, key string) (*models.User, error) {
	user, err := s.repo.GetUserByResetKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if user.ResetKeyExpiry == nil || !s.now().Before(*user.ResetKeyExpiry) {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

// ResetPassword consumes a reset key and stores a new password. The
// check order decides which reason the caller sees: strength first,
// confirmation match second, key validity third.
func (s *Service) ResetPassword(ctx context.Context, key, newPassword, confirmed string) (ResetResult, error) {
	if !credentials.ValidatePassword(newPassword) {
		return ResetResult{Reason: ReasonWeakPassword}, nil
	}
	if strings.TrimSpace(newPassword) != strings.TrimSpace(confirmed) {
		return ResetResult{Reason: ReasonPasswordMismatch}, nil
	}

	user, err := s.GetUserByResetKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return ResetResult{Reason: ReasonBadResetKey}, nil
	}
	if err != nil {
		return ResetResult{}, err
	}

	hash, err := credentials.CreateSaltedHash(newPassword)
	if err != nil {
		return ResetResult{}, err
	}
	if _, err := s.repo.UpdatePassword(ctx, user.Email, hash); err != nil {
		return ResetResult{}, err
	}
	if err := s.repo.ClearResetKey(ctx, user.Email); err != nil {
		return ResetResult{}, err
	}

	slog.Info("password_reset", "user_id", user.ID)
	return ResetResult{OK: true}, nil
}

// UpdatePassword hashes and stores a new password for the user with
// the given email. Returns false when no such user exists.
func (s *Service) UpdatePassword(ctx context.Context, email, newPassword string) (bool, error) {
	hash, err := credentials.CreateSaltedHash(newPassword)
	if err != nil {
		return false, err
	}
	return s.repo.UpdatePassword(ctx, email, hash)
}

// Profile is the projection of a user record for the profile view.
// Empty scalar fields read "Not specified".
type Profile struct {
	Username       string
	Email          string
	AccountType    string
	Nationality    string
	Country        string
	City           string
	KnownLanguages []string
	Needs          []string
	StudyField     string
	EducationLevel string
	GPA            string
	MinGPA         string
	Services       []string
	Programs       models.Programs
}

// GetProfile returns the profile projection for a user.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		Username:       user.Username,
		Email:          user.Email,
		AccountType:    user.AccountType,
		Nationality:    orNotSpecified(user.Nationality),
		Country:        orNotSpecified(user.Country),
		City:           orNotSpecified(user.City),
		KnownLanguages: user.Languages,
		Needs:          user.Needs,
		StudyField:     orNotSpecified(user.StudyField),
		EducationLevel: orNotSpecified(user.Education),
		GPA:            orNotSpecified(user.GPA),
		MinGPA:         orNotSpecified(user.MinGPA),
		Services:       user.Services,
		Programs:       user.Programs,
	}, nil
}

func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}
