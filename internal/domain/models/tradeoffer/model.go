// Package tradeoffer provides the trade offer model: a price quoted for a
// trade product, removed together with its product.
package tradeoffer

import (
	"marketmodels/internal/core/entity"
	"marketmodels/internal/domain/contract"
	"marketmodels/internal/domain/models/relations"
	"marketmodels/internal/domain/models/units"
	"marketmodels/internal/metadata"
)

// Name is the entity and table name.
const Name = relations.TradeOfferTable

// ListByProduct lists the offers of one trade product id.
const ListByProduct = "by_trade_product"

// TradeOffer is a priced offer for a trade product.
type TradeOffer struct {
	entity.Base

	TradeProductID string `db:"trade_product_id" json:"trade_product_id" field:"required,immutable" sql:"CHAR(36)" ref:"trade_product" validate:"uuid"`

	PriceAmt      float64        `db:"price_amt" json:"price_amt" field:"required" scale:"4" validate:"gt=0"`
	PriceCurrency string         `db:"price_currency" json:"price_currency" field:"required" sql:"CHAR(3)" validate:"len=3"`
	PriceQtyAmt   float64        `db:"price_qty_amt" json:"price_qty_amt" field:"required" scale:"3" validate:"gt=0"`
	PriceQtyUnit  units.MassUnit `db:"price_qty_unit" json:"price_qty_unit" field:"required" sql:"CHAR(4)"`

	QtyAvail  *int64  `db:"qty_avail" json:"qty_avail,omitempty" validate:"gt=0"`
	ExpiresAt *string `db:"expires_at" json:"expires_at,omitempty" sql:"CHAR(24)" validate:"datetime=2006-01-02T15:04:05.000Z"`
	Notes     *string `db:"notes" json:"notes,omitempty"`
}

// Definition is the registered contract of TradeOffer.
var Definition = metadata.Inspect(TradeOffer{}, Name).
	WithSelectors(entity.ColumnID).
	WithLists(metadata.ListDef{Kind: ListByProduct, Column: "trade_product_id"}).
	WithForm("trade_product_id", metadata.Form{Validation: metadata.RegexNoSpace, Charset: metadata.RegexNoSpaceCh, Hidden: true}).
	WithForm("price_amt", metadata.Form{Label: "Price", Validation: metadata.RegexPrice, Charset: metadata.RegexPriceCh, Default: 1}).
	WithForm("price_currency", metadata.Form{Label: "Currency", Validation: metadata.RegexCurrency, Charset: metadata.RegexCurrencyCh, Default: "usd"}).
	WithForm("price_qty_amt", metadata.Form{Label: "Per quantity", Validation: metadata.RegexNum, Charset: metadata.RegexNumCh, Default: 1}).
	WithForm("price_qty_unit", metadata.Form{Label: "Per unit", Validation: metadata.RegexWordOnly, Charset: metadata.RegexWordOnly, Default: string(units.Kilogram)})

// Parse interprets rec as a TradeOffer.
func Parse(rec any) (TradeOffer, bool) {
	return contract.Parse[TradeOffer](Definition, rec)
}

// ParseList parses a result set, dropping rows that are not offers.
func ParseList(v any) ([]TradeOffer, bool) {
	return contract.ParseList[TradeOffer](Definition, v)
}
