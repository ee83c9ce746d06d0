package contract

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketmodels/internal/core/apperror"
	"marketmodels/internal/core/entity"
	"marketmodels/internal/metadata"
)

type grade string

func (grade) Values() []string { return []string{"a", "b"} }
func (grade) Fallback() string { return "b" }

type sample struct {
	entity.Base
	Name  string   `db:"name" field:"required,immutable"`
	Score float64  `db:"score" field:"required" validate:"gte=0,lte=10"`
	Count int64    `db:"count" field:"required" validate:"gt=0"`
	Grade grade    `db:"grade" field:"required"`
	Note  *string  `db:"note" validate:"max=5"`
	Ratio *float64 `db:"ratio"`
	Alt   *grade   `db:"alt"`
}

var sampleDef = metadata.Inspect(sample{}, "sample")

func rec() map[string]any {
	return map[string]any{"name": "x", "score": 1.5, "count": int64(3), "grade": "a"}
}

func TestParse_NumericKinds(t *testing.T) {
	tests := []struct {
		name  string
		score any
		count any
		ok    bool
	}{
		{"float64", 1.5, 3.0, true},
		{"ints", 2, int32(3), true},
		{"uint", uint8(2), uint16(3), true},
		{"json.Number", json.Number("2.5"), json.Number("3"), true},
		{"fractional count", 1.0, 3.5, false},
		{"NaN", math.NaN(), 3, false},
		{"Inf", 1.0, math.Inf(1), false},
		{"string score", "1.5", 3, false},
		{"bool count", 1.0, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rec()
			r["score"] = tt.score
			r["count"] = tt.count
			_, ok := Parse[sample](sampleDef, r)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestParse_Enums(t *testing.T) {
	r := rec()
	r["grade"] = "z"
	r["alt"] = "a"

	s, ok := Parse[sample](sampleDef, r)
	require.True(t, ok)
	assert.Equal(t, grade("b"), s.Grade)
	require.NotNil(t, s.Alt)
	assert.Equal(t, grade("a"), *s.Alt)

	r["grade"] = ""
	_, ok = Parse[sample](sampleDef, r)
	assert.False(t, ok)
}

func TestParse_EmptyRequiredString(t *testing.T) {
	r := rec()
	r["name"] = ""
	_, ok := Parse[sample](sampleDef, r)
	assert.False(t, ok)
}

func TestParse_PointerRecord(t *testing.T) {
	r := rec()
	_, ok := Parse[sample](sampleDef, &r)
	assert.True(t, ok)

	var nilMap map[string]any
	_, ok = Parse[sample](sampleDef, nilMap)
	assert.False(t, ok)
}

func TestToRecord_Idempotent(t *testing.T) {
	ratio := 0.25
	s := sample{
		Base:  entity.Base{ID: "0190f0a0-0000-7000-8000-000000000000", CreatedAt: "2026-01-02T03:04:05.000Z"},
		Name:  "x",
		Score: 2,
		Count: 4,
		Grade: "a",
		Ratio: &ratio,
	}

	r := ToRecord(&s)
	assert.Equal(t, map[string]any{
		"id":         "0190f0a0-0000-7000-8000-000000000000",
		"created_at": "2026-01-02T03:04:05.000Z",
		"name":       "x",
		"score":      2.0,
		"count":      int64(4),
		"grade":      "a",
		"ratio":      0.25,
	}, r)

	back, ok := Parse[sample](sampleDef, r)
	require.True(t, ok)
	assert.Equal(t, s, back)
	assert.Equal(t, r, ToRecord(back))

	assert.Nil(t, ToRecord(42))
}

func TestParseList_Kinds(t *testing.T) {
	list, ok := ParseList[sample](sampleDef, []map[string]any{rec(), {"name": "y"}})
	require.True(t, ok)
	assert.Len(t, list, 1)

	_, ok = ParseList[sample](sampleDef, nil)
	assert.False(t, ok)
	_, ok = ParseList[sample](sampleDef, "rows")
	assert.False(t, ok)
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(map[string]any)
		field string
		rule  string
	}{
		{"above lte", func(r map[string]any) { r["score"] = 11.0 }, "score", "max"},
		{"below gte", func(r map[string]any) { r["score"] = -1.0 }, "score", "min"},
		{"zero count", func(r map[string]any) { r["count"] = 0 }, "count", "positive"},
		{"fractional count", func(r map[string]any) { r["count"] = 1.5 }, "count", "integer"},
		{"mistyped count", func(r map[string]any) { r["count"] = "3" }, "count", "required"},
		{"bad enum", func(r map[string]any) { r["grade"] = "z" }, "grade", "enum"},
		{"long note", func(r map[string]any) { r["note"] = "too long" }, "note", "max"},
		{"mistyped ratio", func(r map[string]any) { r["ratio"] = "half" }, "ratio", "type"},
		{"empty name", func(r map[string]any) { r["name"] = "" }, "name", "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rec()
			tt.edit(r)
			_, err := Validate(sampleDef, r, Create)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
			assert.Equal(t, apperror.FieldErrors{
				tt.field: metadata.ErrorKey("sample", tt.field, tt.rule),
			}, apperror.FieldsOf(err))
		})
	}
}

func TestValidate_Converts(t *testing.T) {
	r := rec()
	r["count"] = json.Number("7")
	r["score"] = 3

	out, err := Validate(sampleDef, r, Create)
	require.NoError(t, err)
	assert.Equal(t, int64(7), out["count"])
	assert.Equal(t, 3.0, out["score"])
}

func TestValidate_UpdateMode(t *testing.T) {
	out, err := Validate(sampleDef, map[string]any{"score": 4.0}, Update)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"score": 4.0}, out)

	_, err = Validate(sampleDef, map[string]any{"name": "y"}, Update)
	assert.Equal(t, "model.sample.schema.name.immutable", apperror.FieldsOf(err)["name"])

	out, err = Validate(sampleDef, map[string]any{}, Update)
	require.NoError(t, err)
	assert.Empty(t, out)
}
