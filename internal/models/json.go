// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// scanJSON decodes a TEXT/BLOB column into dst. NULL and the empty
// string leave dst untouched.
func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", src)
	}
}

// StringList is a []string stored as a JSON text column.
type StringList []string

func (l *StringList) Scan(src any) error {
	return scanJSON(src, l)
}

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	return string(b), err
}

// Contains reports whether the list contains s.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// Programs is a university's program list stored as a JSON text column.
type Programs []Program

// Program describes a single degree program offered by a university.
type Program struct {
	Name      string   `json:"program"`
	Field     string   `json:"field"`
	Languages []string `json:"languages"`
}

func (p *Programs) Scan(src any) error {
	return scanJSON(src, p)
}

func (p Programs) Value() (driver.Value, error) {
	if p == nil {
		p = Programs{}
	}
	b, err := json.Marshal(p)
	return string(b), err
}

// MatchRecords is a list of match records stored as a JSON text column.
type MatchRecords []MatchRecord

func (m *MatchRecords) Scan(src any) error {
	return scanJSON(src, m)
}

func (m MatchRecords) Value() (driver.Value, error) {
	if m == nil {
		m = MatchRecords{}
	}
	b, err := json.Marshal(m)
	return string(b), err
}
