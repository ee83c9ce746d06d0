// Package main is the models command: it prints the schema and form
// descriptors of every record kind, validates and coerces input, and reads
// and writes records in the SQLite store.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marketmodels/internal/config"
	"marketmodels/internal/domain/models"
	"marketmodels/internal/infrastructure/storage/sqlite"
	"marketmodels/pkg/logger"
)

// app holds what the store-backed commands share.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *sql.DB
	store *sqlite.Store
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	log.Debugw("database opened", "path", cfg.DBPath)

	return &app{
		cfg:   cfg,
		log:   log,
		db:    db,
		store: sqlite.NewStore(db, models.Registry, sqlite.WithLogger(log)),
	}, nil
}

func (a *app) Close() error {
	_ = a.log.Sync()
	return a.db.Close()
}

// withApp wraps a store-backed command.
func withApp(run func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(logger.WithLogger(ctx, a.log), cmd, a, args)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "models",
		Short:         "Record kinds of the market: schema, forms, validation and storage",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the schema upgrade list as SQL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd.OutOrStdout())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "form <kind>",
		Short: "Print the form descriptors of a kind as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForm(cmd.OutOrStdout(), args[0])
		},
	})

	validateCmd := &cobra.Command{
		Use:   "validate <kind> <file|->",
		Short: "Validate a JSON record and print the accepted fields or the field errors",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			update, _ := cmd.Flags().GetBool("update")
			return runValidate(cmd.OutOrStdout(), cmd.InOrStdin(), args[0], args[1], update)
		},
	}
	validateCmd.Flags().Bool("update", false, "Validate as a partial update")
	root.AddCommand(validateCmd)

	root.AddCommand(&cobra.Command{
		Use:   "coerce <kind> <field> <value>",
		Short: "Convert a form value to the type bound into queries",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoerce(cmd.OutOrStdout(), args[0], args[1], args[2])
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema upgrades to the database",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			return runMigrate(ctx, cmd.OutOrStdout(), a)
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "add <kind> <file|->",
		Short: "Validate a JSON record and insert it, printing the new id",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			rec, err := readRecord(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runAdd(ctx, cmd.OutOrStdout(), a, args[0], rec)
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "import-relay <url> <nip11.json|->",
		Short: "Add a relay from its NIP-11 information document",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			doc, err := readFile(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runImportRelay(ctx, cmd.OutOrStdout(), a, args[0], doc)
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "import-profile <public-key> <metadata.json|->",
		Short: "Add a profile from the content of its metadata event",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			content, err := readFile(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runImportProfile(ctx, cmd.OutOrStdout(), a, args[0], content)
		}),
	})

	var la listArgs
	listCmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "Print the rows of a named list",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			return runList(ctx, cmd.OutOrStdout(), a, args[0], la)
		}),
	}
	listCmd.Flags().StringVarP(&la.list, "list", "l", "all", "List kind")
	listCmd.Flags().StringVarP(&la.value, "value", "v", "", "Value the list kind is scoped to")
	listCmd.Flags().StringVarP(&la.sort, "sort", "s", "", "Sort: newest or oldest")
	root.AddCommand(listCmd)

	root.AddCommand(&cobra.Command{
		Use:   "get <kind> <column> <value>",
		Short: "Print the row matching a selector column",
		Args:  cobra.ExactArgs(3),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			return runGet(ctx, cmd.OutOrStdout(), a, args[0], args[1], args[2])
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "delete <kind> <column> <value>",
		Short: "Delete the row matching a selector column",
		Args:  cobra.ExactArgs(3),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			return runDelete(ctx, cmd.OutOrStdout(), a, args[0], args[1], args[2])
		}),
	})

	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
