package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketmodels/internal/core/apperror"
	"marketmodels/internal/core/entity"
)

func TestCoerce(t *testing.T) {
	def := testDef()

	tests := []struct {
		name  string
		field string
		raw   string
		want  any
	}{
		{"integer", "year", "2023", int64(2023)},
		{"integer with spaces", "year", " 2023 ", int64(2023)},
		{"number", "weight", "2.5", 2.5},
		{"negative number", "weight", "-93", float64(-93)},
		{"string", "note", "dry process", "dry process"},
		{"numeric-looking string stays string", "code", "0042", "0042"},
		{"enum passes through", "unit", "lb", "lb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := def.Coerce(tt.field, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerce_BadNumber(t *testing.T) {
	def := testDef()

	_, err := def.Coerce("weight", "heavy")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, apperror.FieldErrors{"weight": "model.test_model.schema.weight.number"}, apperror.FieldsOf(err))

	_, err = def.Coerce("year", "2023.5")
	require.Error(t, err)
	assert.Equal(t, "model.test_model.schema.year.integer", apperror.FieldsOf(err)["year"])
}

func TestCoerce_UnknownFieldIsFatal(t *testing.T) {
	def := testDef()
	assert.Panics(t, func() { _, _ = def.Coerce("bogus_field", "x") })
}

func TestCoerceForm(t *testing.T) {
	def := testDef()

	out, err := def.CoerceForm(map[string]string{
		"year":   "2021",
		"weight": "1.25",
		"note":   "",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"year": int64(2021), "weight": 1.25}, out)

	_, err = def.CoerceForm(map[string]string{"year": "x", "weight": "y"})
	require.Error(t, err)
	assert.Equal(t, []string{"weight", "year"}, apperror.FieldsOf(err).Keys())

	assert.Panics(t, func() { _, _ = def.CoerceForm(map[string]string{"bogus": ""}) })
}

type priced struct {
	entity.Base
	Price float64  `db:"price" field:"required" scale:"2"`
	Raw   *float64 `db:"raw"`
}

func TestCoerce_Scale(t *testing.T) {
	def := Inspect(priced{}, "priced")

	price := def.MustField("price")
	assert.Equal(t, int32(2), price.Scale)
	assert.Zero(t, def.MustField("raw").Scale)

	got, err := def.Coerce("price", "7.125")
	require.NoError(t, err)
	assert.Equal(t, 7.13, got)

	got, err = def.Coerce("raw", "7.125")
	require.NoError(t, err)
	assert.Equal(t, 7.125, got)

	assert.Equal(t, 0.3, price.Quantize(0.1+0.2))
	assert.Equal(t, -2.5, price.Quantize(-2.499))
}

func TestInspect_ScaleNeedsNumber(t *testing.T) {
	type bad struct {
		Code string `db:"code" field:"required" scale:"2"`
	}
	assert.Panics(t, func() { Inspect(bad{}, "bad") })

	type zero struct {
		Price float64 `db:"price" field:"required" scale:"0"`
	}
	assert.Panics(t, func() { Inspect(zero{}, "zero") })
}
