// Package tradeproduct provides the trade product model: a lot of goods
// with its quantity and asking price.
package tradeproduct

import (
	"marketmodels/internal/core/entity"
	"marketmodels/internal/domain/contract"
	"marketmodels/internal/domain/models/relations"
	"marketmodels/internal/domain/models/units"
	"marketmodels/internal/metadata"
)

// Name is the entity and table name.
const Name = relations.TradeProductTable

// List kinds answered besides "all". The value is a location id.
const (
	ListOnLocation  = "on_location"
	ListOffLocation = "off_location"
)

// TradeProduct is one product lot offered for trade.
type TradeProduct struct {
	entity.Base

	Key     string `db:"key" json:"key" field:"required"`
	Title   string `db:"title" json:"title" field:"required"`
	Summary string `db:"summary" json:"summary" field:"required"`

	Process  *string `db:"process" json:"process,omitempty"`
	Lot      *string `db:"lot" json:"lot,omitempty" validate:"min=1,max=120"`
	Varietal *string `db:"varietal" json:"varietal,omitempty"`
	Profile  *string `db:"profile" json:"profile,omitempty"`
	Year     int64   `db:"year" json:"year" field:"required" validate:"gt=0"`

	QtyAmt   float64        `db:"qty_amt" json:"qty_amt" field:"required" scale:"3" validate:"gt=0"`
	QtyUnit  units.MassUnit `db:"qty_unit" json:"qty_unit" field:"required" sql:"CHAR(4)"`
	QtyLabel string         `db:"qty_label" json:"qty_label" field:"required"`
	QtyAvail int64          `db:"qty_avail" json:"qty_avail" field:"required" validate:"gt=0"`

	PriceAmt      float64        `db:"price_amt" json:"price_amt" field:"required" scale:"4" validate:"gt=0"`
	PriceCurrency string         `db:"price_currency" json:"price_currency" field:"required" sql:"CHAR(3)" validate:"len=3"`
	PriceQtyAmt   float64        `db:"price_qty_amt" json:"price_qty_amt" field:"required" scale:"3" validate:"gt=0"`
	PriceQtyUnit  units.MassUnit `db:"price_qty_unit" json:"price_qty_unit" field:"required" sql:"CHAR(4)"`

	Notes *string `db:"notes" json:"notes,omitempty"`
}

// Definition is the registered contract of TradeProduct. A product is
// unique per key, lot and varietal.
var Definition = metadata.Inspect(TradeProduct{}, Name).
	WithSelectors(entity.ColumnID).
	WithUnique("key", "lot", "varietal").
	WithLists(relations.Lists(relations.TradeProductLocation, Name, ListOnLocation, ListOffLocation, entity.ColumnID)...).
	WithForm("year", metadata.Form{Label: "Harvest year", Validation: metadata.RegexNum, Charset: metadata.RegexNumCh}).
	WithForm("qty_amt", metadata.Form{Label: "Quantity", Validation: metadata.RegexNum, Charset: metadata.RegexNumCh, Default: 1}).
	WithForm("qty_unit", metadata.Form{Label: "Unit", Validation: metadata.RegexWordOnly, Charset: metadata.RegexWordOnly, Default: string(units.Kilogram)}).
	WithForm("qty_avail", metadata.Form{Label: "Available", Validation: metadata.RegexNum, Charset: metadata.RegexNumCh}).
	WithForm("price_amt", metadata.Form{Label: "Price", Validation: metadata.RegexPrice, Charset: metadata.RegexPriceCh, Default: 1}).
	WithForm("price_currency", metadata.Form{Label: "Currency", Validation: metadata.RegexCurrency, Charset: metadata.RegexCurrencyCh, Default: "usd"}).
	WithForm("price_qty_amt", metadata.Form{Label: "Per quantity", Validation: metadata.RegexNum, Charset: metadata.RegexNumCh, Default: 1}).
	WithForm("price_qty_unit", metadata.Form{Label: "Per unit", Validation: metadata.RegexWordOnly, Charset: metadata.RegexWordOnly, Default: string(units.Kilogram)})

// Parse interprets rec as a TradeProduct. Unknown mass units read back
// as units.DefaultMassUnit.
func Parse(rec any) (TradeProduct, bool) {
	return contract.Parse[TradeProduct](Definition, rec)
}

// ParseList parses a result set, dropping rows that are not products.
func ParseList(v any) ([]TradeProduct, bool) {
	return contract.ParseList[TradeProduct](Definition, v)
}
