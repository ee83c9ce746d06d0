// Package models registers every record kind and derives the schema
// upgrade list from them.
package models

import (
	"marketmodels/internal/domain/models/location"
	"marketmodels/internal/domain/models/profile"
	"marketmodels/internal/domain/models/relations"
	"marketmodels/internal/domain/models/relay"
	"marketmodels/internal/domain/models/tradeoffer"
	"marketmodels/internal/domain/models/tradeproduct"
	"marketmodels/internal/metadata"
	"marketmodels/internal/schema"
)

// Registry holds the definitions of all kinds and relations.
var Registry = newRegistry()

// Upgrades is the schema of the store. Tables come in dependency order;
// new statements are appended, never inserted.
var Upgrades = append(
	schema.Build(Definitions(), relations.All()),
	schema.Index(tradeoffer.Name, "trade_product_id"),
)

// Definitions returns the kind definitions in table creation order.
func Definitions() []*metadata.EntityDef {
	return []*metadata.EntityDef{
		location.Definition,
		profile.Definition,
		relay.Definition,
		tradeproduct.Definition,
		tradeoffer.Definition,
	}
}

func newRegistry() *metadata.Registry {
	r := metadata.NewRegistry()
	for _, def := range Definitions() {
		r.Register(def)
	}
	for _, rel := range relations.All() {
		r.RegisterRelation(rel)
	}
	return r
}
