package schema

import (
	"strings"

	"marketmodels/internal/metadata"
)

// ForeignKeysOn is the first statement of every upgrade list. Executors
// apply PRAGMA entries outside a transaction, where SQLite honors them.
const ForeignKeysOn = "PRAGMA foreign_keys = ON;"

// Upgrades is an append-only list of schema statements. The statement at
// index i brings a store from version i to version i+1; entries are never
// edited or reordered once released.
type Upgrades []string

// Version is the schema version reached after every statement ran.
func (u Upgrades) Version() int {
	return len(u)
}

// Script renders the whole list as one SQL script.
func (u Upgrades) Script() string {
	return strings.Join(u, "\n\n") + "\n"
}

// Build starts an upgrade list with the foreign key pragma, then one table
// per entity in the given order, then one join table per relation.
func Build(defs []*metadata.EntityDef, rels []metadata.RelationDef) Upgrades {
	u := Upgrades{ForeignKeysOn}
	for _, def := range defs {
		u = append(u, TableFor(def).DDL())
	}
	for _, rel := range rels {
		u = append(u, RelationDDL(rel))
	}
	return u
}
