package tradeproduct_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketmodels/internal/core/apperror"
	"marketmodels/internal/domain/contract"
	"marketmodels/internal/domain/models/tradeproduct"
	"marketmodels/internal/domain/models/units"
)

func beans() map[string]any {
	return map[string]any{
		"key":            "hue-2024-a",
		"title":          "Washed Catuai",
		"summary":        "Green coffee, 60kg sacks",
		"year":           int64(2024),
		"qty_amt":        60.0,
		"qty_unit":       "kg",
		"qty_label":      "sack",
		"qty_avail":      int64(40),
		"price_amt":      7.5,
		"price_currency": "usd",
		"price_qty_amt":  1.0,
		"price_qty_unit": "lb",
		"lot":            "A1",
	}
}

func TestParse_Product(t *testing.T) {
	p, ok := tradeproduct.Parse(beans())
	require.True(t, ok)

	assert.Equal(t, "hue-2024-a", p.Key)
	assert.Equal(t, int64(2024), p.Year)
	assert.Equal(t, units.Kilogram, p.QtyUnit)
	assert.Equal(t, units.Pound, p.PriceQtyUnit)
	require.NotNil(t, p.Lot)
	assert.Equal(t, "A1", *p.Lot)
	assert.Nil(t, p.Varietal)
}

func TestParse_UnknownUnitFallsBack(t *testing.T) {
	in := beans()
	in["qty_unit"] = "bushel"

	p, ok := tradeproduct.Parse(in)
	require.True(t, ok)
	assert.Equal(t, units.DefaultMassUnit, p.QtyUnit)
}

func TestParse_Numbers(t *testing.T) {
	t.Run("json numbers", func(t *testing.T) {
		var rec map[string]any
		raw, err := json.Marshal(beans())
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &rec))

		p, ok := tradeproduct.Parse(rec)
		require.True(t, ok)
		assert.Equal(t, int64(40), p.QtyAvail)
	})

	t.Run("fractional year", func(t *testing.T) {
		in := beans()
		in["year"] = 2024.5
		_, ok := tradeproduct.Parse(in)
		assert.False(t, ok)
	})

	t.Run("string quantity", func(t *testing.T) {
		in := beans()
		in["qty_amt"] = "60"
		_, ok := tradeproduct.Parse(in)
		assert.False(t, ok)
	})
}

func TestParse_RoundTrip(t *testing.T) {
	p, ok := tradeproduct.Parse(beans())
	require.True(t, ok)

	rec := contract.ToRecord(p)
	assert.Equal(t, beans(), rec)

	again, ok := tradeproduct.Parse(rec)
	require.True(t, ok)
	assert.Equal(t, p, again)
}

func TestValidate_Product(t *testing.T) {
	_, err := contract.Validate(tradeproduct.Definition, beans(), contract.Create)
	require.NoError(t, err)

	in := beans()
	in["year"] = 0
	in["qty_unit"] = "bushel"
	in["price_currency"] = "dollars"
	in["lot"] = ""
	in["extra"] = "dropped"

	_, err = contract.Validate(tradeproduct.Definition, in, contract.Create)
	assert.Equal(t, apperror.FieldErrors{
		"year":           "model.trade_product.schema.year.positive",
		"qty_unit":       "model.trade_product.schema.qty_unit.enum",
		"price_currency": "model.trade_product.schema.price_currency.length",
		"lot":            "model.trade_product.schema.lot.min",
	}, apperror.FieldsOf(err))
}

func TestValidate_DropsUnknownKeys(t *testing.T) {
	in := beans()
	in["extra"] = "dropped"

	out, err := contract.Validate(tradeproduct.Definition, in, contract.Create)
	require.NoError(t, err)
	assert.NotContains(t, out, "extra")
}

func TestValidate_RoundsToScale(t *testing.T) {
	in := beans()
	in["price_amt"] = 7.123456
	in["qty_amt"] = 60.0004

	out, err := contract.Validate(tradeproduct.Definition, in, contract.Create)
	require.NoError(t, err)
	assert.Equal(t, 7.1235, out["price_amt"])
	assert.Equal(t, 60.0, out["qty_amt"])

	in["price_amt"] = 0.00001
	_, err = contract.Validate(tradeproduct.Definition, in, contract.Create)
	assert.Equal(t, "model.trade_product.schema.price_amt.positive", apperror.FieldsOf(err)["price_amt"])
}

func TestCoerceForm(t *testing.T) {
	out, err := tradeproduct.Definition.CoerceForm(map[string]string{
		"year":      "2024",
		"qty_amt":   "60.5",
		"qty_label": "sack",
		"price_amt": "7.99999",
		"notes":     "",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"year":      int64(2024),
		"qty_amt":   60.5,
		"qty_label": "sack",
		"price_amt": 8.0,
	}, out)

	_, err = tradeproduct.Definition.CoerceForm(map[string]string{"qty_avail": "forty"})
	assert.Equal(t, "model.trade_product.schema.qty_avail.number", apperror.FieldsOf(err)["qty_avail"])
}

func TestDefinition(t *testing.T) {
	assert.Equal(t, [][]string{{"key", "lot", "varietal"}}, tradeproduct.Definition.Uniques)

	defaults := map[string]any{}
	for _, f := range tradeproduct.Definition.FormFields() {
		if f.Default != nil {
			defaults[f.Name] = f.Default
		}
	}
	assert.Equal(t, "usd", defaults["price_currency"])
	assert.Equal(t, "kg", defaults["qty_unit"])

	for _, v := range tradeproduct.Definition.FormDefaults() {
		assert.Equal(t, "", v)
	}
}
