// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hexago/unimatch/internal/repository"
	"github.com/hexago/unimatch/internal/services/matching"
)

// MyMatches lists the recommended students a university has not yet
// accepted. Students are bounced back to their dashboard.
func (h *Handlers) MyMatches(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.repo.GetUserByID(ctx, userID(c))
	if err != nil {
		return err
	}
	if !user.IsUniversity() {
		return redirectMessage(c, "/dashboard", "matches_universities_only", "error")
	}

	records, err := h.matches.Matches(ctx, user.Email)
	if err != nil {
		return err
	}

	data := h.pageData(c)
	data["Matches"] = h.matches.Unaccepted(ctx, user.Email, records)
	return c.Render(http.StatusOK, "my_matches.html", data)
}

// AcceptMatch records that the university accepted the student.
// Accepting twice is harmless and reported as such.
func (h *Handlers) AcceptMatch(c echo.Context) error {
	ctx := c.Request().Context()

	studentEmail := c.FormValue("studentEmail")
	if studentEmail == "" {
		return redirectMessage(c, "/my-matches", "student_email_missing", "error")
	}

	user, err := h.repo.GetUserByID(ctx, userID(c))
	if err != nil {
		return err
	}
	if !user.IsUniversity() {
		return redirectMessage(c, "/dashboard", "matches_universities_only", "error")
	}

	status, err := h.matches.Accept(ctx, user.Email, studentEmail)
	if errors.Is(err, repository.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "student not found")
	}
	if err != nil {
		return err
	}

	if status == matching.StatusAlreadyAccepted {
		return redirectMessage(c, "/my-matches", "match_already_accepted", "info")
	}
	return redirectMessage(c, "/my-matches", "match_accepted", "success")
}
