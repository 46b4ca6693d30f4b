// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

package credentials_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexago/unimatch/internal/services/credentials"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"all rules satisfied", "Abc123!x", true},
		{"too short", "Ab1!xyz", false},
		{"no digit", "Abcdefg!", false},
		{"no special character", "Abcdefg1", false},
		{"no uppercase", "abc123!x", false},
		{"no lowercase", "ABC123!X", false},
		{"empty", "", false},
		{"long valid", "Sup3r-Secret-Passphrase!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, credentials.ValidatePassword(tt.password))
		})
	}
}

func TestCreateSaltedHashFormat(t *testing.T) {
	hash, err := credentials.CreateSaltedHash("Abc123!x")

	require.NoError(t, err)
	parts := strings.Split(hash, ":")
	require.Len(t, parts, 2)
	assert.NotEmpty(t, parts[0])
	assert.NotEmpty(t, parts[1])
}

func TestCreateSaltedHashIsSalted(t *testing.T) {
	first, err := credentials.CreateSaltedHash("Abc123!x")
	require.NoError(t, err)
	second, err := credentials.CreateSaltedHash("Abc123!x")
	require.NoError(t, err)

	// Fresh random salt per call, so equal passwords hash differently.
	assert.NotEqual(t, first, second)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := credentials.CreateSaltedHash("Abc123!x")
	require.NoError(t, err)

	assert.True(t, credentials.VerifyPassword("Abc123!x", hash))
	assert.False(t, credentials.VerifyPassword("Abc123!y", hash))
	assert.False(t, credentials.VerifyPassword("", hash))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	assert.False(t, credentials.VerifyPassword("Abc123!x", "not-a-hash"))
	assert.False(t, credentials.VerifyPassword("Abc123!x", "zz:zz"))
	assert.False(t, credentials.VerifyPassword("Abc123!x", ""))
}
