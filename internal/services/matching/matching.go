// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

// Package matching reads the precomputed recommendations snapshot and
// lets universities accept matched students. The snapshot is produced
// by an offline model and re-read wholesale on every listing.
package matching

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"os"

	"github.com/hexago/unimatch/internal/models"
	"github.com/hexago/unimatch/internal/repository"
)

// Status of an acceptance. Re-accepting an existing pairing is a
// no-op reported distinctly from a fresh acceptance.
type Status string

const (
	StatusAccepted        Status = "accepted"
	StatusAlreadyAccepted Status = "already_accepted"
)

// entry is one university's slice of the recommendations file.
type entry struct {
	UniversityEmail string `json:"universityEmail"`
	Students        []struct {
		Email string  `json:"email"`
		Name  string  `json:"name"`
		Score float64 `json:"score"`
	} `json:"students"`
}

// Service implements the matching adapter.
type Service struct {
	repo *repository.Repository
	path string
}

// NewService creates a matching service reading the recommendations
// snapshot at path.
func NewService(repo *repository.Repository, path string) *Service {
	return &Service{repo: repo, path: path}
}

// Matches returns the precomputed match records for a university and
// caches them on its user record. A missing entry or an unreadable
// snapshot is a recoverable condition: the result is nil and the user
// record stays untouched.
func (s *Service) Matches(ctx context.Context, universityEmail string) ([]models.MatchRecord, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		slog.Warn("recommendations_unreadable", "path", s.path, "error", err)
		return nil, nil
	}

	var entries []entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		slog.Warn("recommendations_malformed", "path", s.path, "error", err)
		return nil, nil
	}

	for _, e := range entries {
		if e.UniversityEmail != universityEmail {
			continue
		}

		records := make(models.MatchRecords, 0, len(e.Students))
		for _, student := range e.Students {
			records = append(records, models.MatchRecord{
				Email: student.Email,
				Name:  student.Name,
				Score: math.Round(student.Score*100) / 100,
			})
		}

		if err := s.repo.UpdateUserFields(ctx, universityEmail, map[string]any{"match_records": records}); err != nil {
			slog.Warn("match_cache_write_failed", "university", universityEmail, "error", err)
		}
		return records, nil
	}

	return nil, nil
}

// Unaccepted filters out students the university has already
// accepted. Students that vanished from the store are kept; the
// acceptance check is best-effort display logic.
func (s *Service) Unaccepted(ctx context.Context, universityEmail string, records []models.MatchRecord) []models.MatchRecord {
	filtered := make([]models.MatchRecord, 0, len(records))
	for _, record := range records {
		student, err := s.repo.GetUserByEmail(ctx, record.Email)
		if err == nil && student.Matches.Contains(universityEmail) {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}

// Accept appends the university to the student's accepted list.
// Idempotent: a repeated acceptance reports StatusAlreadyAccepted and
// leaves the list unchanged.
func (s *Service) Accept(ctx context.Context, universityEmail, studentEmail string) (Status, error) {
	appended, err := s.repo.AppendStudentMatch(ctx, studentEmail, universityEmail)
	if errors.Is(err, repository.ErrNotFound) {
		return "", err
	}
	if err != nil {
		return "", err
	}

	if !appended {
		return StatusAlreadyAccepted, nil
	}

	slog.Info("match_accepted", "university", universityEmail, "student", studentEmail)
	return StatusAccepted, nil
}
