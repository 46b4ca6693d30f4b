// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/labstack/echo/v4"

	"github.com/hexago/unimatch/internal/config"
)

// SessionCookie signs the opaque session key into an HttpOnly cookie.
// The key itself stays server-side; the cookie only proves the client
// was handed it by us.
type SessionCookie struct {
	name   string
	secure bool
	codec  *securecookie.SecureCookie
}

// NewSessionCookie creates the cookie codec. Without a configured
// hash key a random one is generated, which invalidates cookies on
// restart; fine for development, set one in production.
func NewSessionCookie(cfg *config.AuthConfig) *SessionCookie {
	hashKey := []byte(cfg.CookieHashKey)
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
	}
	return &SessionCookie{
		name:   cfg.CookieName,
		secure: cfg.CookieSecure,
		codec:  securecookie.New(hashKey, nil),
	}
}

// Write sets the session cookie carrying the signed session key.
func (sc *SessionCookie) Write(c echo.Context, sessionKey string) error {
	encoded, err := sc.codec.Encode(sc.name, sessionKey)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     sc.name,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   sc.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read returns the session key from the request cookie, or "" when
// the cookie is absent or fails signature verification.
func (sc *SessionCookie) Read(c echo.Context) string {
	cookie, err := c.Cookie(sc.name)
	if err != nil {
		return ""
	}
	var sessionKey string
	if err := sc.codec.Decode(sc.name, cookie.Value, &sessionKey); err != nil {
		return ""
	}
	return sessionKey
}

// Clear expires the session cookie.
func (sc *SessionCookie) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sc.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sc.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
