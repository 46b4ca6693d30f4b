// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

package models

// MatchRecord is one precomputed student recommendation for a
// university: counterpart email, display name, and a similarity score
// in [0,1] rounded to two decimals.
type MatchRecord struct {
	Email string  `json:"email"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}
