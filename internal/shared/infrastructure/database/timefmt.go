package database

import (
	"database/sql"
	"time"
)

// TextTimeLayout is how SQLite stores timestamps: fixed width UTC so that
// string comparison matches time order.
const TextTimeLayout = "2006-01-02T15:04:05.000000Z"

// FormatTextTime renders t in TextTimeLayout.
func FormatTextTime(t time.Time) string {
	return t.UTC().Format(TextTimeLayout)
}

// ParseTextTime parses a TextTimeLayout value, also accepting RFC 3339.
func ParseTextTime(s string) (time.Time, error) {
	t, err := time.Parse(TextTimeLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
	}
	return t.UTC(), err
}

// NullTextTime renders an optional time.
func NullTextTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatTextTime(*t), Valid: true}
}

// ParseNullTextTime parses an optional time; invalid input yields nil.
func ParseNullTextTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := ParseTextTime(s.String)
	if err != nil {
		return nil
	}
	return &t
}
