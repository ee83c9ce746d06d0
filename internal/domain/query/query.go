// Package query builds the descriptors handed to a store executor.
//
// A descriptor names its target through a Selector and never carries SQL:
// columns come from the entity registry, values travel as bind parameters.
package query

import (
	"fmt"

	"marketmodels/internal/core/apperror"
	"marketmodels/internal/core/entity"
	"marketmodels/internal/domain/contract"
	"marketmodels/internal/metadata"
)

// Selector targets rows of one entity. The implementations are ByKey,
// ListAll and ListRelation.
type Selector interface {
	selector()
}

// ByKey selects the row whose unique column equals Value.
type ByKey struct {
	Column string
	Value  any
}

// ListAll selects every row.
type ListAll struct{}

// ListRelation selects a named list: the rows linked (or not linked) through
// a relation to the row identified by Value, or the rows whose foreign key
// equals Value.
type ListRelation struct {
	Kind  string
	Value any
}

func (ByKey) selector()        {}
func (ListAll) selector()      {}
func (ListRelation) selector() {}

// Sort orders a list by creation time. The zero value keeps insertion order.
type Sort string

const (
	SortNone   Sort = ""
	SortNewest Sort = "newest"
	SortOldest Sort = "oldest"
)

// ParseSort accepts "", "newest" and "oldest".
func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case SortNone, SortNewest, SortOldest:
		return Sort(s), nil
	}
	return SortNone, apperror.NewInvalidQuery(fmt.Sprintf("unknown sort %q", s)).
		WithDetail("sort", s)
}

// OrderBy returns the ORDER BY clause, empty for SortNone.
func (s Sort) OrderBy() string {
	switch s {
	case SortNewest:
		return entity.ColumnCreatedAt + " DESC"
	case SortOldest:
		return entity.ColumnCreatedAt + " ASC"
	}
	return ""
}

// Get reads rows.
type Get struct {
	Entity   *metadata.EntityDef
	Selector Selector
	Sort     Sort
}

// Single reports whether the read targets at most one row.
func (g Get) Single() bool {
	_, ok := g.Selector.(ByKey)
	return ok
}

// Update writes Fields to the row matched by On. Only the supplied fields
// are written; omitted fields keep their stored values.
type Update struct {
	Entity *metadata.EntityDef
	On     ByKey
	Fields map[string]any
}

// Delete removes the row matched by On, cascading to its relations.
type Delete struct {
	Entity *metadata.EntityDef
	On     ByKey
}

// Key builds an exact-match selector. column must be one of def's selector
// columns.
func Key(def *metadata.EntityDef, column string, value any) (ByKey, error) {
	if !def.HasSelector(column) {
		return ByKey{}, apperror.NewInvalidQuery(fmt.Sprintf("%s cannot be selected by %q", def.Name, column)).
			WithDetail("entity", def.Name).
			WithDetail("column", column)
	}
	if value == nil || value == "" {
		return ByKey{}, apperror.NewInvalidQuery(fmt.Sprintf("%s selector %q has no value", def.Name, column)).
			WithDetail("entity", def.Name).
			WithDetail("column", column)
	}
	if f, ok := def.Field(column); ok && f.Type.Numeric() {
		v, err := def.Coerce(column, fmt.Sprint(value))
		if err != nil {
			return ByKey{}, err
		}
		value = v
	}
	return ByKey{Column: column, Value: value}, nil
}

// List builds a list selector. kind is "all" or one of def's list kinds.
func List(def *metadata.EntityDef, kind string, value any) (Selector, error) {
	if kind == metadata.ListAll {
		return ListAll{}, nil
	}
	if _, ok := def.List(kind); !ok {
		return nil, apperror.NewInvalidQuery(fmt.Sprintf("%s has no list %q", def.Name, kind)).
			WithDetail("entity", def.Name).
			WithDetail("list", kind)
	}
	if value == nil || value == "" {
		return nil, apperror.NewInvalidQuery(fmt.Sprintf("%s list %q needs a value", def.Name, kind)).
			WithDetail("entity", def.Name).
			WithDetail("list", kind)
	}
	return ListRelation{Kind: kind, Value: value}, nil
}

// NewGet builds a read descriptor. A sort only applies to list selectors;
// a ByKey selector with a sort is rejected.
func NewGet(def *metadata.EntityDef, sel Selector, sort Sort) (Get, error) {
	switch s := sel.(type) {
	case ByKey:
		if sort != SortNone {
			return Get{}, apperror.NewInvalidQuery("sort applies to list queries only").
				WithDetail("entity", def.Name).
				WithDetail("sort", string(sort))
		}
		if !def.HasSelector(s.Column) {
			return Get{}, apperror.NewInvalidQuery(fmt.Sprintf("%s cannot be selected by %q", def.Name, s.Column))
		}
	case ListAll:
	case ListRelation:
		if _, ok := def.List(s.Kind); !ok {
			return Get{}, apperror.NewInvalidQuery(fmt.Sprintf("%s has no list %q", def.Name, s.Kind))
		}
	case nil:
		return Get{}, apperror.NewInvalidQuery("missing selector")
	}
	if sort.OrderBy() == "" && sort != SortNone {
		return Get{}, apperror.NewInvalidQuery(fmt.Sprintf("unknown sort %q", sort))
	}
	return Get{Entity: def, Selector: sel, Sort: sort}, nil
}

// NewUpdate builds a partial update. Every key of fields must be a field
// of def; an unknown key is an integration error and panics. Values are
// checked against the field rules; immutable fields are refused.
func NewUpdate(def *metadata.EntityDef, on ByKey, fields map[string]any) (Update, error) {
	if !def.HasSelector(on.Column) {
		return Update{}, apperror.NewInvalidQuery(fmt.Sprintf("%s cannot be selected by %q", def.Name, on.Column))
	}
	for k := range fields {
		if entity.IsBaseColumn(k) {
			return Update{}, apperror.NewFieldErrors(def.Name, apperror.FieldErrors{
				k: metadata.ErrorKey(def.Name, k, "immutable"),
			})
		}
		def.MustField(k)
	}
	if len(fields) == 0 {
		return Update{}, apperror.NewInvalidQuery("update has no fields").
			WithDetail("entity", def.Name)
	}

	clean, err := contract.Validate(def, fields, contract.Update)
	if err != nil {
		return Update{}, err
	}
	return Update{Entity: def, On: on, Fields: clean}, nil
}

// NewDelete builds a delete descriptor.
func NewDelete(def *metadata.EntityDef, on ByKey) (Delete, error) {
	if !def.HasSelector(on.Column) {
		return Delete{}, apperror.NewInvalidQuery(fmt.Sprintf("%s cannot be selected by %q", def.Name, on.Column))
	}
	return Delete{Entity: def, On: on}, nil
}
