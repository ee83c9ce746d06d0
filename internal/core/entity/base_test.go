package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketmodels/internal/core/id"
)

func TestFormatTime_FixedLength(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		time.Date(1999, 12, 31, 23, 59, 59, 999_000_000, time.FixedZone("x", 3600)),
	}
	for _, tm := range times {
		s := FormatTime(tm)
		assert.Len(t, s, CreatedAtLength, s)

		back, err := ParseTime(s)
		require.NoError(t, err)
		assert.True(t, back.Equal(tm.Truncate(time.Millisecond)))
	}
}

func TestNewBase(t *testing.T) {
	b := NewBase(time.Now())
	assert.True(t, id.Valid(b.ID))
	assert.Len(t, b.CreatedAt, CreatedAtLength)
	assert.True(t, IsBaseColumn("id"))
	assert.True(t, IsBaseColumn("created_at"))
	assert.False(t, IsBaseColumn("lat"))
}
