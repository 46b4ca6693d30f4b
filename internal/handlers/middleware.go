// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/hexago/unimatch/internal/services/session"
)

// RequireSession guards routes that need a logged-in user. A missing
// cookie redirects to the login page; a cookie whose session is absent
// or expired does too, with a message saying the session ran out.
func (h *Handlers) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := h.cookies.Read(c)
		if key == "" {
			return redirectMessage(c, "/login", "login_required", "error")
		}

		data, err := h.sessions.Get(c.Request().Context(), key)
		if errors.Is(err, session.ErrNotFound) {
			h.cookies.Clear(c)
			return redirectMessage(c, "/login", "session_expired", "error")
		}
		if err != nil {
			return err
		}

		id := data.UserID()
		if id == 0 {
			h.cookies.Clear(c)
			return redirectMessage(c, "/login", "login_required", "error")
		}

		c.Set(ctxUserIDKey, id)
		return next(c)
	}
}
