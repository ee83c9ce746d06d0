// Package domain provides the model service and the store contract it runs
// against.
package domain

import (
	"context"

	"marketmodels/internal/domain/contract"
	"marketmodels/internal/domain/query"
	"marketmodels/internal/metadata"
)

// --- Store Interface ---

// Store executes query descriptors against persisted tables. Rows come
// back untyped; callers parse them with the contract package.
type Store interface {
	// Insert writes a new row, assigning id and created_at, and returns the id.
	Insert(ctx context.Context, def *metadata.EntityDef, fields contract.Record) (string, error)

	// Select returns the rows matched by q, ordered by q.Sort.
	Select(ctx context.Context, q query.Get) ([]contract.Record, error)

	// Update writes q.Fields and returns the number of rows changed.
	Update(ctx context.Context, q query.Update) (int64, error)

	// Delete removes the matched row and returns the number of rows removed.
	Delete(ctx context.Context, q query.Delete) (int64, error)

	// Relate links left and right through rel. Linking twice is a no-op.
	Relate(ctx context.Context, rel metadata.RelationDef, leftID, rightID string) error

	// Unrelate removes a link.
	Unrelate(ctx context.Context, rel metadata.RelationDef, leftID, rightID string) error
}

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	AfterCreate  HookEvent = "after_create"
	BeforeUpdate HookEvent = "before_update"
	AfterUpdate  HookEvent = "after_update"
	BeforeDelete HookEvent = "before_delete"
	AfterDelete  HookEvent = "after_delete"
)

// Hook runs at a lifecycle point. rec holds the validated fields for
// create and update, and the selector column/value pair for delete.
// Before-hooks may modify rec; their error aborts the operation.
type Hook func(ctx context.Context, rec contract.Record) error

// HookRegistry stores lifecycle hooks for one model.
type HookRegistry struct {
	hooks map[HookEvent][]Hook
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{
		hooks: make(map[HookEvent][]Hook),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry) On(event HookEvent, hook Hook) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event.
func (r *HookRegistry) Run(ctx context.Context, event HookEvent, rec contract.Record) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
