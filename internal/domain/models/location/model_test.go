package location_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketmodels/internal/core/apperror"
	"marketmodels/internal/domain/contract"
	"marketmodels/internal/domain/models/location"
)

func farmA() map[string]any {
	return map[string]any{
		"lat":     45.0,
		"lng":     -93.0,
		"geohash": "9zx1c3k2",
		"label":   "Farm A",
	}
}

func TestValidate_FarmA(t *testing.T) {
	out, err := contract.Validate(location.Definition, farmA(), contract.Create)
	require.NoError(t, err)
	assert.Equal(t, farmA(), out)

	loc, ok := location.Parse(out)
	require.True(t, ok)
	assert.Equal(t, 45.0, loc.Lat)
	assert.Equal(t, -93.0, loc.Lng)
	assert.Equal(t, "9zx1c3k2", loc.Geohash)
	require.NotNil(t, loc.Label)
	assert.Equal(t, "Farm A", *loc.Label)
	assert.Nil(t, loc.GcID)
}

func TestValidate_LatOutOfRange(t *testing.T) {
	in := farmA()
	in["lat"] = 95.0

	_, err := contract.Validate(location.Definition, in, contract.Create)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, apperror.FieldErrors{
		"lat": "model.location_gcs.schema.lat.max",
	}, apperror.FieldsOf(err))
}

func TestValidate_Bounds(t *testing.T) {
	tests := []struct {
		field string
		value float64
		rule  string
	}{
		{"lat", 90, ""},
		{"lat", 90.0001, "max"},
		{"lat", -90, ""},
		{"lat", -91, "min"},
		{"lng", 180, ""},
		{"lng", 180.5, "max"},
		{"lng", -180, ""},
		{"lng", -181, "min"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			in := farmA()
			in[tt.field] = tt.value

			_, err := contract.Validate(location.Definition, in, contract.Create)
			if tt.rule == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, "model.location_gcs.schema."+tt.field+"."+tt.rule, apperror.FieldsOf(err)[tt.field])
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	_, err := contract.Validate(location.Definition, map[string]any{"lat": "north", "label": 7}, contract.Create)
	assert.Equal(t, apperror.FieldErrors{
		"lat":     "model.location_gcs.schema.lat.required",
		"lng":     "model.location_gcs.schema.lng.required",
		"geohash": "model.location_gcs.schema.geohash.required",
		"label":   "model.location_gcs.schema.label.type",
	}, apperror.FieldsOf(err))
}

func TestParse(t *testing.T) {
	t.Run("missing required", func(t *testing.T) {
		in := farmA()
		delete(in, "geohash")
		_, ok := location.Parse(in)
		assert.False(t, ok)
	})

	t.Run("numeric string is not a number", func(t *testing.T) {
		in := farmA()
		in["lat"] = "45"
		_, ok := location.Parse(in)
		assert.False(t, ok)
	})

	t.Run("wrong typed optional is unset", func(t *testing.T) {
		in := farmA()
		in["label"] = 12
		loc, ok := location.Parse(in)
		require.True(t, ok)
		assert.Nil(t, loc.Label)
	})

	t.Run("not a record", func(t *testing.T) {
		_, ok := location.Parse("9zx1c3k2")
		assert.False(t, ok)
		_, ok = location.Parse(nil)
		assert.False(t, ok)
	})

	t.Run("identity copied", func(t *testing.T) {
		in := farmA()
		in["id"] = "0190f0a0-0000-7000-8000-000000000000"
		in["created_at"] = "2026-01-02T03:04:05.000Z"
		loc, ok := location.Parse(in)
		require.True(t, ok)
		assert.Equal(t, "0190f0a0-0000-7000-8000-000000000000", loc.ID)
		assert.Equal(t, "2026-01-02T03:04:05.000Z", loc.CreatedAt)
	})

	t.Run("identity must be a string", func(t *testing.T) {
		in := farmA()
		in["id"] = 42
		_, ok := location.Parse(in)
		assert.False(t, ok)
	})
}

func TestParse_RoundTrip(t *testing.T) {
	in := farmA()
	in["gc_country_name"] = "United States"

	loc, ok := location.Parse(in)
	require.True(t, ok)

	rec := contract.ToRecord(loc)
	assert.Equal(t, in, rec)

	again, ok := location.Parse(rec)
	require.True(t, ok)
	assert.Equal(t, loc, again)
}

func TestParseList(t *testing.T) {
	list, ok := location.ParseList([]any{farmA(), map[string]any{"lat": 1.0}, farmA()})
	require.True(t, ok)
	assert.Len(t, list, 2)

	list, ok = location.ParseList([]any{})
	require.True(t, ok)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	list, ok = location.ParseList([]any{"x", 1})
	require.True(t, ok)
	assert.Empty(t, list)

	_, ok = location.ParseList(farmA())
	assert.False(t, ok)
}

func TestDefinition(t *testing.T) {
	assert.Equal(t, []string{"id", "geohash"}, location.Definition.Selectors)

	on, ok := location.Definition.List(location.ListOnTradeProduct)
	require.True(t, ok)
	assert.Equal(t, "trade_product_location", on.Relation)
	assert.Equal(t, "trade_product", on.Other)
	assert.False(t, on.Exclude)

	off, ok := location.Definition.List(location.ListOffTradeProduct)
	require.True(t, ok)
	assert.True(t, off.Exclude)

	geohash := location.Definition.MustField("geohash")
	assert.True(t, geohash.Accepts("9zx1c3k2"))
	assert.False(t, geohash.Accepts("9zx1c3ka"))
}
