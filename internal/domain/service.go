package domain

import (
	"context"
	"fmt"

	"marketmodels/internal/core/apperror"
	"marketmodels/internal/core/entity"
	"marketmodels/internal/domain/contract"
	"marketmodels/internal/domain/query"
	"marketmodels/internal/metadata"
	"marketmodels/pkg/logger"
)

// ModelService validates input for one model kind, hands descriptors to
// the store and parses what comes back.
type ModelService[T any] struct {
	store Store
	def   *metadata.EntityDef
	hooks *HookRegistry
}

// NewModelService creates a service for the kind described by def. T must
// be the struct def was inspected from.
func NewModelService[T any](store Store, def *metadata.EntityDef) *ModelService[T] {
	return &ModelService[T]{
		store: store,
		def:   def,
		hooks: NewHookRegistry(),
	}
}

// Definition returns the entity definition served.
func (s *ModelService[T]) Definition() *metadata.EntityDef {
	return s.def
}

// Hooks returns the hook registry for external registration.
func (s *ModelService[T]) Hooks() *HookRegistry {
	return s.hooks
}

func (s *ModelService[T]) normalizeGetErr(err error, key any) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.def.Name, key)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.def.Name).WithDetail("key", key)
}

// Add validates input and inserts it, returning the new id.
func (s *ModelService[T]) Add(ctx context.Context, input map[string]any) (string, error) {
	// 1. Validate against the declared rules
	fields, err := contract.Validate(s.def, input, contract.Create)
	if err != nil {
		return "", err
	}

	// 2. Run before-create hooks
	if err := s.hooks.Run(ctx, BeforeCreate, fields); err != nil {
		return "", err
	}

	// 3. Insert
	newID, err := s.store.Insert(ctx, s.def, fields)
	if err != nil {
		return "", fmt.Errorf("add %s: %w", s.def.Name, err)
	}

	// 4. Run after-create hooks; the row already exists
	fields[entity.ColumnID] = newID
	if err := s.hooks.Run(ctx, AfterCreate, fields); err != nil {
		logger.Warn(ctx, "after-create hook failed", "entity", s.def.Name, "id", newID, "error", err)
	}

	return newID, nil
}

// Get runs q and parses the rows. Rows that do not fit the model are
// dropped; a ByKey read with no parsable row is NOT_FOUND.
func (s *ModelService[T]) Get(ctx context.Context, q query.Get) ([]T, error) {
	rows, err := s.store.Select(ctx, q)
	if err != nil {
		return nil, s.normalizeGetErr(err, q.Selector)
	}

	list, _ := contract.ParseList[T](s.def, rows)
	if len(list) < len(rows) {
		logger.Debug(ctx, "rows dropped by parser", "entity", s.def.Name, "rows", len(rows), "parsed", len(list))
	}
	if q.Single() && len(list) == 0 {
		k := q.Selector.(query.ByKey)
		return nil, apperror.NewNotFound(s.def.Name, k.Value).WithDetail("column", k.Column)
	}
	return list, nil
}

// One reads the row selected by column = value.
func (s *ModelService[T]) One(ctx context.Context, column string, value any) (T, error) {
	var zero T

	k, err := query.Key(s.def, column, value)
	if err != nil {
		return zero, err
	}
	q, err := query.NewGet(s.def, k, query.SortNone)
	if err != nil {
		return zero, err
	}
	list, err := s.Get(ctx, q)
	if err != nil {
		return zero, err
	}
	return list[0], nil
}

// List reads a named list; kind "all" reads every row.
func (s *ModelService[T]) List(ctx context.Context, kind string, value any, sort query.Sort) ([]T, error) {
	sel, err := query.List(s.def, kind, value)
	if err != nil {
		return nil, err
	}
	q, err := query.NewGet(s.def, sel, sort)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, q)
}

// Update writes the fields of q to the matched row.
func (s *ModelService[T]) Update(ctx context.Context, q query.Update) error {
	if q.Entity != s.def {
		return apperror.NewInvalidQuery("update built for another entity").WithDetail("entity", s.def.Name)
	}
	if err := s.hooks.Run(ctx, BeforeUpdate, q.Fields); err != nil {
		return err
	}

	n, err := s.store.Update(ctx, q)
	if err != nil {
		return fmt.Errorf("update %s: %w", s.def.Name, err)
	}
	if n == 0 {
		return apperror.NewNotFound(s.def.Name, q.On.Value).WithDetail("column", q.On.Column)
	}

	if err := s.hooks.Run(ctx, AfterUpdate, q.Fields); err != nil {
		logger.Warn(ctx, "after-update hook failed", "entity", s.def.Name, "error", err)
	}
	return nil
}

// Delete removes the row matched by on, together with its links and
// dependent rows.
func (s *ModelService[T]) Delete(ctx context.Context, on query.ByKey) error {
	q, err := query.NewDelete(s.def, on)
	if err != nil {
		return err
	}

	rec := contract.Record{on.Column: on.Value}
	if err := s.hooks.Run(ctx, BeforeDelete, rec); err != nil {
		return err
	}

	n, err := s.store.Delete(ctx, q)
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.def.Name, err)
	}
	if n == 0 {
		return apperror.NewNotFound(s.def.Name, on.Value).WithDetail("column", on.Column)
	}

	if err := s.hooks.Run(ctx, AfterDelete, rec); err != nil {
		logger.Warn(ctx, "after-delete hook failed", "entity", s.def.Name, "error", err)
	}
	return nil
}

// Relate links the row ownID of this kind to otherID through rel.
func (s *ModelService[T]) Relate(ctx context.Context, rel metadata.RelationDef, ownID, otherID string) error {
	left, right, err := s.orient(rel, ownID, otherID)
	if err != nil {
		return err
	}
	if err := s.store.Relate(ctx, rel, left, right); err != nil {
		return fmt.Errorf("relate %s: %w", rel.Name, err)
	}
	return nil
}

// Unrelate removes the link between ownID and otherID.
func (s *ModelService[T]) Unrelate(ctx context.Context, rel metadata.RelationDef, ownID, otherID string) error {
	left, right, err := s.orient(rel, ownID, otherID)
	if err != nil {
		return err
	}
	if err := s.store.Unrelate(ctx, rel, left, right); err != nil {
		return fmt.Errorf("unrelate %s: %w", rel.Name, err)
	}
	return nil
}

func (s *ModelService[T]) orient(rel metadata.RelationDef, ownID, otherID string) (string, string, error) {
	own, _, ok := rel.ColumnFor(s.def.Name)
	if !ok {
		return "", "", apperror.NewInvalidQuery(fmt.Sprintf("%s is not part of %s", s.def.Name, rel.Name))
	}
	if own == metadata.LeftColumn {
		return ownID, otherID, nil
	}
	return otherID, ownID, nil
}
