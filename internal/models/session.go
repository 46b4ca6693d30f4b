// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Payload keys used by the session service.
const (
	SessionUserIDKey    = "user_id"
	SessionFormTokenKey = "form_token"
)

// SessionData is the free-form session payload stored as a JSON text
// column. Numbers round-trip as float64, so use the typed accessors.
type SessionData map[string]any

func (d *SessionData) Scan(src any) error {
	return scanJSON(src, d)
}

func (d SessionData) Value() (driver.Value, error) {
	if d == nil {
		d = SessionData{}
	}
	b, err := json.Marshal(d)
	return string(b), err
}

// UserID returns the owning user's id, or 0 if the payload has none.
func (d SessionData) UserID() int64 {
	switch v := d[SessionUserIDKey].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	default:
		return 0
	}
}

// FormToken returns the anti-forgery token, or "" if none is attached.
func (d SessionData) FormToken() string {
	token, _ := d[SessionFormTokenKey].(string)
	return token
}

// Session is a server-side session record keyed by an opaque random
// key. A session past its expiry is treated as absent by callers even
// while the row still exists.
type Session struct {
	SessionKey string      `db:"session_key" json:"session_key"`
	Expiry     time.Time   `db:"expiry" json:"expiry"`
	Data       SessionData `db:"data" json:"data"`
}

// Expired reports whether the session expiry has passed at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.Expiry)
}
