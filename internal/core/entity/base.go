package entity

import (
	"time"

	"marketmodels/internal/core/id"
)

// Base column names shared by every table.
const (
	ColumnID        = "id"
	ColumnCreatedAt = "created_at"
)

// TimeLayout renders created_at as exactly CreatedAtLength characters,
// e.g. "2024-06-01T08:30:00.000Z".
const TimeLayout = "2006-01-02T15:04:05.000Z"

// CreatedAtLength is the fixed length of a persisted creation timestamp.
const CreatedAtLength = 24

// Base contains the identity fields common to every model.
// Both are assigned once by the store layer and never updated.
type Base struct {
	// ID is the primary key (UUID string)
	ID string `db:"id" json:"id"`

	// CreatedAt is the UTC creation time formatted with TimeLayout
	CreatedAt string `db:"created_at" json:"created_at"`
}

// NewBase creates a Base with a generated ID stamped at now.
func NewBase(now time.Time) Base {
	return Base{
		ID:        id.New(),
		CreatedAt: FormatTime(now),
	}
}

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a created_at value.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// IsBaseColumn reports whether col is managed by the store layer
// rather than by callers.
func IsBaseColumn(col string) bool {
	return col == ColumnID || col == ColumnCreatedAt
}
