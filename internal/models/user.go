// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

package models

import "time"

// Account kinds. Every user is exactly one of the two.
const (
	AccountTypeStudent    = "Student"
	AccountTypeUniversity = "University"
)

// User is a registered account, student or university. The
// list-valued profile fields live in JSON text columns; PasswordHash
// holds a "salt:digest" credential and never a plain-text password.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64  `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	AccountType  string `db:"account_type" json:"account_type"`

	// Shared profile fields.
	Nationality string `db:"nationality" json:"nationality"`
	Country     string `db:"country" json:"country"`
	City        string `db:"city" json:"city"`

	// Student profile fields.
	Education  string     `db:"education" json:"education"`
	StudyField string     `db:"study_field" json:"study_field"`
	GPA        string     `db:"gpa" json:"gpa"`
	Languages  StringList `db:"languages" json:"languages"`
	Needs      StringList `db:"needs" json:"needs"`

	// University profile fields.
	MinGPA   string     `db:"min_gpa" json:"min_gpa"`
	Services StringList `db:"services" json:"services"`
	Programs Programs   `db:"programs" json:"programs"`

	// Matches holds, for a student, the emails of universities that
	// accepted them. MatchRecords caches, for a university, the last
	// projection of the recommendations snapshot.
	Matches      StringList   `db:"matches" json:"matches"`
	MatchRecords MatchRecords `db:"match_records" json:"match_records"`

	// Reset key record; both nil unless a reset is pending.
	ResetKey       *string    `db:"reset_key" json:"-"`
	ResetKeyExpiry *time.Time `db:"reset_key_expiry" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsUniversity reports whether the account is a university account.
func (u *User) IsUniversity() bool {
	return u.AccountType == AccountTypeUniversity
}

// IsStudent reports whether the account is a student account.
func (u *User) IsStudent() bool {
	return u.AccountType == AccountTypeStudent
}
