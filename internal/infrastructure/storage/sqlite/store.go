package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"marketmodels/internal/core/apperror"
	"marketmodels/internal/core/entity"
	"marketmodels/internal/domain"
	"marketmodels/internal/domain/contract"
	"marketmodels/internal/domain/query"
	"marketmodels/internal/metadata"
	"marketmodels/pkg/logger"
)

var tracer = otel.Tracer("marketmodels/sqlite")

// Compile-time check that Store implements domain.Store.
var _ domain.Store = (*Store)(nil)

// Store executes query descriptors against a SQLite database created from
// the schema upgrade list.
type Store struct {
	db       *sql.DB
	registry *metadata.Registry
	now      func() time.Time
	log      *logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the clock stamping created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the store logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore creates a store. registry resolves the far side of relation
// lists.
func NewStore(db *sql.DB, registry *metadata.Registry, opts ...Option) *Store {
	s := &Store{
		db:       db,
		registry: registry,
		now:      time.Now,
		log:      logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("sqlite")
	return s
}

// Builder returns a new squirrel builder with SQLite placeholder format.
func (s *Store) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
}

func (s *Store) startSpan(ctx context.Context, op, table string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "sqlite."+op,
		trace.WithAttributes(
			attribute.String("db.system", "sqlite"),
			attribute.String("db.sql.table", table),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Insert writes a new row with a fresh id and creation time.
func (s *Store) Insert(ctx context.Context, def *metadata.EntityDef, fields contract.Record) (_ string, err error) {
	ctx, span := s.startSpan(ctx, "Insert", def.Name)
	defer func() { endSpan(span, err) }()

	base := entity.NewBase(s.now())
	data := make(map[string]any, len(fields)+2)
	for _, col := range def.FieldNames() {
		if v, ok := fields[col]; ok {
			data[col] = v
		}
	}
	data[entity.ColumnID] = base.ID
	data[entity.ColumnCreatedAt] = base.CreatedAt

	sqlStr, args, err := s.Builder().Insert(def.Name).SetMap(data).ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return "", s.mapErr(ctx, def.Name, "insert", err)
	}

	span.SetAttributes(attribute.String("entity.id", base.ID))
	s.log.WithContext(ctx).Debugw("row inserted", "table", def.Name, "id", base.ID)
	return base.ID, nil
}

// Select returns the rows matched by q.
func (s *Store) Select(ctx context.Context, q query.Get) (_ []contract.Record, err error) {
	def := q.Entity
	ctx, span := s.startSpan(ctx, "Select", def.Name)
	defer func() { endSpan(span, err) }()

	b := s.Builder().Select(def.Columns()...).From(def.Name)

	switch sel := q.Selector.(type) {
	case query.ByKey:
		b = b.Where(squirrel.Eq{sel.Column: sel.Value}).Limit(1)
	case query.ListAll:
	case query.ListRelation:
		where, err := s.listWhere(def, sel)
		if err != nil {
			return nil, err
		}
		b = b.Where(where)
	default:
		return nil, apperror.NewInvalidQuery(fmt.Sprintf("unsupported selector %T", q.Selector))
	}
	if order := q.Sort.OrderBy(); order != "" {
		b = b.OrderBy(order)
	}

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []map[string]any
	if err := sqlscan.Select(ctx, s.db, &rows, sqlStr, args...); err != nil {
		return nil, s.mapErr(ctx, def.Name, "select", err)
	}

	out := make([]contract.Record, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	span.SetAttributes(attribute.Int("db.rows", len(out)))
	return out, nil
}

// listWhere renders the filter of a named list. Relation lists match the
// far-side row by its list column, then keep the rows linked (or not
// linked) to it through the join table.
func (s *Store) listWhere(def *metadata.EntityDef, sel query.ListRelation) (squirrel.Sqlizer, error) {
	list, ok := def.List(sel.Kind)
	if !ok {
		return nil, apperror.NewInvalidQuery(fmt.Sprintf("%s has no list %q", def.Name, sel.Kind))
	}
	if list.Column != "" {
		return squirrel.Eq{list.Column: sel.Value}, nil
	}

	rel, ok := s.registry.Relation(list.Relation)
	if !ok {
		panic(apperror.NewIntegration("registry", list.Relation))
	}
	own, other, ok := rel.ColumnFor(def.Name)
	if !ok {
		panic(apperror.NewIntegration(rel.Name, def.Name))
	}

	far := squirrel.Select(entity.ColumnID).From(list.Other).Where(squirrel.Eq{list.OtherColumn: sel.Value})
	farSQL, farArgs, err := far.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list filter: %w", err)
	}
	linked := squirrel.Select(own).From(rel.Name).Where(other+" IN ("+farSQL+")", farArgs...)
	linkedSQL, linkedArgs, err := linked.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list filter: %w", err)
	}

	op := " IN "
	if list.Exclude {
		op = " NOT IN "
	}
	return squirrel.Expr(entity.ColumnID+op+"("+linkedSQL+")", linkedArgs...), nil
}

// Update writes the supplied fields only.
func (s *Store) Update(ctx context.Context, q query.Update) (_ int64, err error) {
	def := q.Entity
	ctx, span := s.startSpan(ctx, "Update", def.Name)
	defer func() { endSpan(span, err) }()

	data := make(map[string]any, len(q.Fields))
	for col, v := range q.Fields {
		// never update identity columns
		if entity.IsBaseColumn(col) {
			continue
		}
		def.MustField(col)
		data[col] = v
	}
	if len(data) == 0 {
		return 0, apperror.NewInvalidQuery("update has no fields")
	}

	sqlStr, args, err := s.Builder().
		Update(def.Name).
		SetMap(data).
		Where(squirrel.Eq{q.On.Column: q.On.Value}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, s.mapErr(ctx, def.Name, "update", err)
	}
	return res.RowsAffected()
}

// Delete removes the matched row. Foreign keys cascade to join rows and
// dependent tables.
func (s *Store) Delete(ctx context.Context, q query.Delete) (_ int64, err error) {
	def := q.Entity
	ctx, span := s.startSpan(ctx, "Delete", def.Name)
	defer func() { endSpan(span, err) }()

	sqlStr, args, err := s.Builder().
		Delete(def.Name).
		Where(squirrel.Eq{q.On.Column: q.On.Value}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, s.mapErr(ctx, def.Name, "delete", err)
	}
	return res.RowsAffected()
}

// Relate inserts a join row; an existing link is left as is.
func (s *Store) Relate(ctx context.Context, rel metadata.RelationDef, leftID, rightID string) (err error) {
	ctx, span := s.startSpan(ctx, "Relate", rel.Name)
	defer func() { endSpan(span, err) }()

	sqlStr, args, err := s.Builder().
		Insert(rel.Name).
		Options("OR IGNORE").
		Columns(metadata.LeftColumn, metadata.RightColumn).
		Values(leftID, rightID).
		ToSql()
	if err != nil {
		return fmt.Errorf("build relate: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return s.mapErr(ctx, rel.Name, "relate", err)
	}
	return nil
}

// Unrelate deletes a join row.
func (s *Store) Unrelate(ctx context.Context, rel metadata.RelationDef, leftID, rightID string) (err error) {
	ctx, span := s.startSpan(ctx, "Unrelate", rel.Name)
	defer func() { endSpan(span, err) }()

	sqlStr, args, err := s.Builder().
		Delete(rel.Name).
		Where(squirrel.Eq{metadata.LeftColumn: leftID, metadata.RightColumn: rightID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build unrelate: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return s.mapErr(ctx, rel.Name, "unrelate", err)
	}
	return nil
}

// mapErr turns driver errors into AppErrors: unique violations become
// DUPLICATE_ENTRY, foreign key violations NOT_FOUND of the referenced row.
func (s *Store) mapErr(ctx context.Context, table, op string, err error) error {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return apperror.NewDuplicate(table).WithCause(err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return apperror.NewNotFound("referenced row", table).WithCause(err)
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL, sqlite3.SQLITE_CONSTRAINT_CHECK:
			return apperror.NewValidation(fmt.Sprintf("%s rejected by table constraint", table)).WithCause(err)
		}
	}
	s.log.WithContext(ctx).Errorw("statement failed", "table", table, "op", op, "error", err)
	return apperror.NewDatabase(op+" "+table, err)
}
