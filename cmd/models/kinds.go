package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"marketmodels/internal/domain"
	"marketmodels/internal/domain/models"
	"marketmodels/internal/domain/models/location"
	"marketmodels/internal/domain/models/profile"
	"marketmodels/internal/domain/models/relay"
	"marketmodels/internal/domain/models/tradeoffer"
	"marketmodels/internal/domain/models/tradeproduct"
	"marketmodels/internal/domain/query"
	"marketmodels/internal/metadata"
)

// kind binds a model definition to its typed service, so commands can
// work by name.
type kind struct {
	def  *metadata.EntityDef
	add  func(ctx context.Context, store domain.Store, input map[string]any) (string, error)
	get  func(ctx context.Context, store domain.Store, q query.Get) (any, error)
	drop func(ctx context.Context, store domain.Store, on query.ByKey) error
}

func kindOf[T any](def *metadata.EntityDef) kind {
	return kind{
		def: def,
		add: func(ctx context.Context, store domain.Store, input map[string]any) (string, error) {
			return domain.NewModelService[T](store, def).Add(ctx, input)
		},
		get: func(ctx context.Context, store domain.Store, q query.Get) (any, error) {
			return domain.NewModelService[T](store, def).Get(ctx, q)
		},
		drop: func(ctx context.Context, store domain.Store, on query.ByKey) error {
			return domain.NewModelService[T](store, def).Delete(ctx, on)
		},
	}
}

var kinds = map[string]kind{
	location.Name:     kindOf[location.Location](location.Definition),
	profile.Name:      kindOf[profile.Profile](profile.Definition),
	relay.Name:        kindOf[relay.Relay](relay.Definition),
	tradeproduct.Name: kindOf[tradeproduct.TradeProduct](tradeproduct.Definition),
	tradeoffer.Name:   kindOf[tradeoffer.TradeOffer](tradeoffer.Definition),
}

func lookupKind(name string) (kind, error) {
	k, ok := kinds[name]
	if !ok {
		return kind{}, fmt.Errorf("unknown kind %q (one of %s)", name, strings.Join(kindNames(), ", "))
	}
	// registered definitions and the command table must agree
	models.Registry.MustGet(name)
	return k, nil
}

func kindNames() []string {
	names := make([]string, 0, len(kinds))
	for n := range kinds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
