// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hexago/unimatch/internal/i18n"
	"github.com/hexago/unimatch/internal/models"
	"github.com/hexago/unimatch/internal/services/account"
)

// userID returns the user id set by RequireSession.
func userID(c echo.Context) int64 {
	id, _ := c.Get(ctxUserIDKey).(int64)
	return id
}

// pageData seeds template data with the status message carried in the
// query string, already translated before it was put there.
func (h *Handlers) pageData(c echo.Context) map[string]any {
	return map[string]any{
		"Message": c.QueryParam("message"),
		"Type":    c.QueryParam("type"),
	}
}

// redirectMessage redirects to path with a translated status message
// in the query string.
func redirectMessage(c echo.Context, path, messageID, messageType string) error {
	return redirectMessageParams(c, path, messageID, messageType, nil)
}

// redirectMessageParams is redirectMessage with extra query
// parameters.
func redirectMessageParams(c echo.Context, path, messageID, messageType string, extra url.Values) error {
	params := url.Values{}
	for name, values := range extra {
		params[name] = values
	}
	params.Set("message", i18n.T(c.Request().Context(), messageID))
	params.Set("type", messageType)
	return c.Redirect(http.StatusSeeOther, path+"?"+params.Encode())
}

// messageForReason maps workflow failure reasons onto message ids.
func messageForReason(reason string) string {
	switch reason {
	case account.ReasonInvalidCredentials:
		return "login_invalid"
	case account.ReasonWeakPassword:
		return "password_policy"
	case account.ReasonPasswordMismatch:
		return "password_mismatch"
	case account.ReasonBadResetKey:
		return "reset_link_invalid"
	default:
		return "unexpected_error"
	}
}

// splitList turns a comma-separated form value into a trimmed list.
// Empty items are dropped.
func splitList(value string) models.StringList {
	parts := strings.Split(value, ",")
	list := make(models.StringList, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}

var programFieldPattern = regexp.MustCompile(`^program(\d+)$`)

// parsePrograms assembles program entries from numbered form fields:
// programN names the program, fieldN and languagesN fill it in.
func parsePrograms(form url.Values) models.Programs {
	programs := models.Programs{}
	for name := range form {
		match := programFieldPattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		programName := strings.TrimSpace(form.Get(name))
		if programName == "" {
			continue
		}
		programs = append(programs, models.Program{
			Name:      programName,
			Field:     strings.TrimSpace(form.Get("field" + match[1])),
			Languages: splitList(form.Get("languages" + match[1])),
		})
	}
	return programs
}
