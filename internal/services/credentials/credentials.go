// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

// Package credentials implements the password policy and the salted
// hash credential format. A stored credential is "salt:digest", both
// parts hex-encoded, with a fresh random salt per call.
package credentials

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// MinLength is the minimum password length.
	MinLength = 8
	// SpecialChars is the accepted special-character set.
	SpecialChars = "!@#$%^&*(),.?\":{}|<>"

	saltLength = 16
	iterations = 10_000
	digestLen  = 32
)

// ValidatePassword reports whether the password satisfies all five
// strength rules: minimum length, a digit, a special character, an
// uppercase and a lowercase letter.
func ValidatePassword(password string) bool {
	if len(password) < MinLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(SpecialChars, r):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasDigit && hasSpecial
}

// CreateSaltedHash derives a credential from the password with a
// fresh random salt. Two calls on the same password yield different
// credentials.
func CreateSaltedHash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	digest := pbkdf2.Key([]byte(password), salt, iterations, digestLen, sha256.New)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(digest), nil
}

// VerifyPassword reports whether the password matches the stored
// credential. The digest comparison is constant-time.
func VerifyPassword(password, stored string) bool {
	saltHex, digestHex, ok := strings.Cut(stored, ":")
	if !ok {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(digestHex)
	if err != nil {
		return false
	}

	digest := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(digest, expected) == 1
}
