// Package relations declares the join tables linking two models by id.
// Deleting either endpoint removes the link.
package relations

import "marketmodels/internal/metadata"

// Table names of the linked models.
const (
	LocationTable     = "location_gcs"
	ProfileTable      = "nostr_profile"
	RelayTable        = "nostr_relay"
	TradeProductTable = "trade_product"
	TradeOfferTable   = "trade_offer"
)

// ProfileRelay links profiles to the relays they publish on.
var ProfileRelay = metadata.RelationDef{
	Name:  "nostr_profile_relay",
	Left:  ProfileTable,
	Right: RelayTable,
}

// TradeProductLocation links trade products to where they are offered.
var TradeProductLocation = metadata.RelationDef{
	Name:  "trade_product_location",
	Left:  TradeProductTable,
	Right: LocationTable,
}

// All lists the relations in creation order.
func All() []metadata.RelationDef {
	return []metadata.RelationDef{ProfileRelay, TradeProductLocation}
}

// Lists returns the on/off list definitions a model gets from rel: the
// rows linked to a given far-side row, and the rows not linked to it.
// farColumn is the far-side column the query value is matched against.
func Lists(rel metadata.RelationDef, own, onKind, offKind, farColumn string) []metadata.ListDef {
	far := rel.Right
	if own == rel.Right {
		far = rel.Left
	}
	return []metadata.ListDef{
		{Kind: onKind, Relation: rel.Name, Other: far, OtherColumn: farColumn},
		{Kind: offKind, Relation: rel.Name, Other: far, OtherColumn: farColumn, Exclude: true},
	}
}
