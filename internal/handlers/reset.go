// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/hexago/unimatch/internal/i18n"
	"github.com/hexago/unimatch/internal/repository"
	"github.com/hexago/unimatch/internal/services/account"
)

// ResetPasswordPage renders the reset-request form.
func (h *Handlers) ResetPasswordPage(c echo.Context) error {
	return c.Render(http.StatusOK, "reset_password.html", h.pageData(c))
}

// ResetPasswordRequest mints a reset key for a registered email and
// mails the reset link.
func (h *Handlers) ResetPasswordRequest(c echo.Context) error {
	ctx := c.Request().Context()
	email := c.FormValue("email")

	exists, err := h.accounts.CheckEmailExists(ctx, email)
	if err != nil {
		return err
	}
	if !exists {
		return redirectMessage(c, "/reset-password", "reset_email_unknown", "error")
	}

	key, err := h.accounts.StoreResetKey(ctx, email)
	if err != nil {
		return err
	}
	if err := h.mailer.SendResetKey(email, key); err != nil {
		return err
	}

	return redirectMessage(c, "/reset-password", "reset_email_sent", "success")
}

// UpdatePasswordPage renders the new-password form behind a reset
// link. An unknown or expired key renders the form disabled-by-message
// rather than redirecting, so the page cannot bounce onto itself.
func (h *Handlers) UpdatePasswordPage(c echo.Context) error {
	ctx := c.Request().Context()
	key := c.QueryParam("key")
	data := h.pageData(c)
	data["ResetKey"] = key

	if _, err := h.accounts.GetUserByResetKey(ctx, key); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		data["Message"] = i18n.T(ctx, "reset_link_invalid")
		data["Type"] = "error"
		return c.Render(http.StatusOK, "update_password.html", data)
	}

	// A logged-in visitor additionally gets an anti-forgery token
	// bound to their session.
	if sessionKey := h.cookies.Read(c); sessionKey != "" {
		if token, err := h.sessions.GenerateFormToken(ctx, sessionKey); err == nil {
			data["FormToken"] = token
		}
	}

	return c.Render(http.StatusOK, "update_password.html", data)
}

// UpdatePassword consumes the reset key and stores the new password.
func (h *Handlers) UpdatePassword(c echo.Context) error {
	ctx := c.Request().Context()
	resetKey := c.FormValue("resetKey")

	// When the submitter holds a session with a token attached, the
	// form must echo it back.
	if sessionKey := h.cookies.Read(c); sessionKey != "" {
		if data, err := h.sessions.Get(ctx, sessionKey); err == nil {
			if token := data.FormToken(); token != "" && token != c.FormValue("formToken") {
				return echo.NewHTTPError(http.StatusForbidden, "form token mismatch")
			}
		}
	}

	result, err := h.accounts.ResetPassword(ctx,
		resetKey, c.FormValue("newPassword"), c.FormValue("confirmedPassword"))
	if err != nil {
		return err
	}
	if !result.OK {
		if result.Reason == account.ReasonBadResetKey {
			return redirectMessage(c, "/reset-password", "reset_link_invalid", "error")
		}
		return redirectMessageParams(c, "/update-password",
			messageForReason(result.Reason), "error", url.Values{"key": {resetKey}})
	}

	if sessionKey := h.cookies.Read(c); sessionKey != "" {
		_ = h.sessions.CancelToken(ctx, sessionKey)
	}

	return redirectMessage(c, "/login", "password_reset_success", "success")
}
