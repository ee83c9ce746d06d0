// Package location provides the geocoded location model.
// A location is identified by its geohash; the gc_* fields cache the result
// of reverse geocoding the coordinates.
package location

import (
	"regexp"

	"marketmodels/internal/core/entity"
	"marketmodels/internal/domain/contract"
	"marketmodels/internal/domain/models/relations"
	"marketmodels/internal/metadata"
)

// Name is the entity and table name.
const Name = relations.LocationTable

// List kinds answered besides "all".
const (
	ListOnTradeProduct  = "on_trade_product"
	ListOffTradeProduct = "off_trade_product"
)

// Location is a point on the globe.
type Location struct {
	entity.Base

	Lat     float64 `db:"lat" json:"lat" field:"required" validate:"min=-90,max=90"`
	Lng     float64 `db:"lng" json:"lng" field:"required" validate:"min=-180,max=180"`
	Geohash string  `db:"geohash" json:"geohash" field:"required,immutable,unique" sql:"CHAR(12)" validate:"max=12"`
	Label   *string `db:"label" json:"label,omitempty"`

	// Reverse geocoding cache
	GcID          *string `db:"gc_id" json:"gc_id,omitempty"`
	GcName        *string `db:"gc_name" json:"gc_name,omitempty"`
	GcAdmin1ID    *string `db:"gc_admin1_id" json:"gc_admin1_id,omitempty"`
	GcAdmin1Name  *string `db:"gc_admin1_name" json:"gc_admin1_name,omitempty"`
	GcCountryID   *string `db:"gc_country_id" json:"gc_country_id,omitempty"`
	GcCountryName *string `db:"gc_country_name" json:"gc_country_name,omitempty"`
}

var regexGeohash = regexp.MustCompile(`^[0-9b-hjkmnp-z]{1,12}$`)
var regexGeohashCh = regexp.MustCompile(`^[0-9b-hjkmnp-z]$`)

// Definition is the registered contract of Location.
var Definition = metadata.Inspect(Location{}, Name).
	WithSelectors(entity.ColumnID, "geohash").
	WithLists(relations.Lists(relations.TradeProductLocation, Name, ListOnTradeProduct, ListOffTradeProduct, entity.ColumnID)...).
	WithForm("lat", metadata.Form{Label: "Latitude", Validation: metadata.RegexDecimal, Charset: metadata.RegexDecimalCh}).
	WithForm("lng", metadata.Form{Label: "Longitude", Validation: metadata.RegexDecimal, Charset: metadata.RegexDecimalCh}).
	WithForm("geohash", metadata.Form{Label: "Geohash", Validation: regexGeohash, Charset: regexGeohashCh, Hidden: true}).
	WithForm("label", metadata.Form{Label: "Label", Placeholder: "Farm name or landmark", Validation: metadata.RegexText, Charset: metadata.RegexTextCh})

// Parse interprets rec as a Location.
func Parse(rec any) (Location, bool) {
	return contract.Parse[Location](Definition, rec)
}

// ParseList parses a result set, dropping rows that are not locations.
func ParseList(v any) ([]Location, bool) {
	return contract.ParseList[Location](Definition, v)
}
