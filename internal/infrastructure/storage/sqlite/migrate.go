package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"marketmodels/internal/schema"
	"marketmodels/pkg/logger"
)

// newProvider registers every entry of upgrades as a goose Go migration;
// entry i is version i+1.
func newProvider(db *sql.DB, upgrades schema.Upgrades) (*goose.Provider, error) {
	migrations := make([]*goose.Migration, 0, len(upgrades))
	for i, stmt := range upgrades {
		version := int64(i + 1)
		if isPragma(stmt) {
			// recorded only; connection settings are applied by applyPragmas
			migrations = append(migrations, goose.NewGoMigration(version, nil, nil))
			continue
		}
		migrations = append(migrations, goose.NewGoMigration(version, &goose.GoFunc{RunTx: execTx(stmt)}, nil))
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, nil,
		goose.WithGoMigrations(migrations...),
		goose.WithDisableGlobalRegistry(true),
	)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, nil
}

func execTx(stmt string) func(context.Context, *sql.Tx) error {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, stmt)
		return err
	}
}

// SQLite ignores PRAGMA statements inside a transaction.
func isPragma(stmt string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(stmt)), "PRAGMA")
}

func applyPragmas(ctx context.Context, db *sql.DB, upgrades schema.Upgrades) error {
	for _, stmt := range upgrades {
		if !isPragma(stmt) {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply %q: %w", stmt, err)
		}
	}
	return nil
}

// Version returns the number of statements of upgrades applied to db.
func Version(ctx context.Context, db *sql.DB, upgrades schema.Upgrades) (int, error) {
	provider, err := newProvider(db, upgrades)
	if err != nil {
		return 0, err
	}
	v, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v), nil
}

// Migrate applies the statements of upgrades not yet applied to db. Each
// statement runs in its own transaction together with its version record,
// so an interrupted run resumes where it stopped. It returns the number of
// statements applied.
func Migrate(ctx context.Context, db *sql.DB, upgrades schema.Upgrades) (_ int, err error) {
	ctx, span := tracer.Start(ctx, "sqlite.Migrate",
		trace.WithAttributes(attribute.Int("schema.target", upgrades.Version())),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	provider, err := newProvider(db, upgrades)
	if err != nil {
		return 0, err
	}
	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if current > int64(upgrades.Version()) {
		return 0, fmt.Errorf("schema version %d is newer than this build (%d)", current, upgrades.Version())
	}

	if err := applyPragmas(ctx, db, upgrades); err != nil {
		return 0, err
	}

	log := logger.FromContext(ctx).WithComponent("migrate")
	results, err := provider.Up(ctx)
	if err != nil {
		var partial *goose.PartialError
		if errors.As(err, &partial) {
			return len(partial.Applied), fmt.Errorf("apply schema version %d: %w", partial.Failed.Source.Version, partial.Err)
		}
		return 0, fmt.Errorf("migrate from version %d: %w", current, err)
	}

	for _, r := range results {
		log.Debugw("schema upgraded", "version", r.Source.Version, "duration", r.Duration)
	}
	if len(results) > 0 {
		log.Debugw("schema up to date", "from", current, "to", upgrades.Version())
	}
	return len(results), nil
}
