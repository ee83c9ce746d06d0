package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"marketmodels/internal/core/apperror"
	"marketmodels/internal/domain/contract"
	"marketmodels/internal/domain/models"
	"marketmodels/internal/domain/models/profile"
	"marketmodels/internal/domain/models/relay"
	"marketmodels/internal/domain/query"
	"marketmodels/internal/infrastructure/storage/sqlite"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readRecord decodes a JSON object from path, "-" meaning stdin. Files
// ending in .yaml or .yml are decoded as YAML. JSON numbers are kept as
// json.Number so integer fields are checked exactly.
func readRecord(path string, stdin io.Reader) (map[string]any, error) {
	raw, err := readFile(path, stdin)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var rec map[string]any
		if err := yaml.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return rec, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec map[string]any
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return rec, nil
}

func readFile(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// reportInvalid prints the field errors of a validation failure and
// returns an error for the exit status; other errors pass through.
func reportInvalid(w io.Writer, err error) error {
	fields := apperror.FieldsOf(err)
	if len(fields) == 0 {
		return err
	}
	if werr := writeJSON(w, map[string]any{"errors": fields}); werr != nil {
		return werr
	}
	return fmt.Errorf("%d invalid field(s)", len(fields))
}

func runSchema(w io.Writer) error {
	_, err := io.WriteString(w, models.Upgrades.Script())
	return err
}

func runForm(w io.Writer, name string) error {
	k, err := lookupKind(name)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{
		"entity":   k.def.Name,
		"fields":   k.def.FormFields(),
		"defaults": k.def.FormDefaults(),
	})
}

func runValidate(w io.Writer, stdin io.Reader, name, path string, update bool) error {
	k, err := lookupKind(name)
	if err != nil {
		return err
	}
	rec, err := readRecord(path, stdin)
	if err != nil {
		return err
	}

	mode := contract.Create
	if update {
		mode = contract.Update
	}
	clean, err := contract.Validate(k.def, rec, mode)
	if err != nil {
		return reportInvalid(w, err)
	}
	return writeJSON(w, clean)
}

// runCoerce converts one form value. An unknown field name is reported as
// an error instead of crashing the tool.
func runCoerce(w io.Writer, name, field, value string) (err error) {
	k, err := lookupKind(name)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			appErr, ok := r.(*apperror.AppError)
			if !ok {
				panic(r)
			}
			err = appErr
		}
	}()

	v, err := k.def.Coerce(field, value)
	if err != nil {
		return reportInvalid(w, err)
	}
	return writeJSON(w, map[string]any{"field": field, "value": v, "type": fmt.Sprintf("%T", v)})
}

func runMigrate(ctx context.Context, w io.Writer, a *app) error {
	n, err := sqlite.Migrate(ctx, a.db, models.Upgrades)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "applied %d statement(s), schema version %d\n", n, models.Upgrades.Version())
	return err
}

func runAdd(ctx context.Context, w io.Writer, a *app, name string, input map[string]any) error {
	k, err := lookupKind(name)
	if err != nil {
		return err
	}
	newID, err := k.add(ctx, a.store, input)
	if err != nil {
		return reportInvalid(w, err)
	}
	_, err = fmt.Fprintln(w, newID)
	return err
}

func runImportRelay(ctx context.Context, w io.Writer, a *app, url string, doc []byte) error {
	input, err := relay.FromInfo(url, doc)
	if err != nil {
		return err
	}
	return runAdd(ctx, w, a, relay.Name, input)
}

func runImportProfile(ctx context.Context, w io.Writer, a *app, publicKey string, content []byte) error {
	input, err := profile.FromMetadata(publicKey, content)
	if err != nil {
		return err
	}
	return runAdd(ctx, w, a, profile.Name, input)
}

// listArgs selects rows for the list and get commands.
type listArgs struct {
	list  string
	value string
	sort  string
}

func runList(ctx context.Context, w io.Writer, a *app, name string, args listArgs) error {
	k, err := lookupKind(name)
	if err != nil {
		return err
	}
	sort, err := query.ParseSort(args.sort)
	if err != nil {
		return err
	}
	var value any
	if args.value != "" {
		value = args.value
	}
	sel, err := query.List(k.def, args.list, value)
	if err != nil {
		return err
	}
	q, err := query.NewGet(k.def, sel, sort)
	if err != nil {
		return err
	}
	rows, err := k.get(ctx, a.store, q)
	if err != nil {
		return err
	}
	return writeJSON(w, rows)
}

func runGet(ctx context.Context, w io.Writer, a *app, name, column, value string) error {
	k, err := lookupKind(name)
	if err != nil {
		return err
	}
	key, err := query.Key(k.def, column, value)
	if err != nil {
		return err
	}
	q, err := query.NewGet(k.def, key, query.SortNone)
	if err != nil {
		return err
	}
	rows, err := k.get(ctx, a.store, q)
	if err != nil {
		return err
	}
	return writeJSON(w, rows)
}

func runDelete(ctx context.Context, w io.Writer, a *app, name, column, value string) error {
	k, err := lookupKind(name)
	if err != nil {
		return err
	}
	key, err := query.Key(k.def, column, value)
	if err != nil {
		return err
	}
	if err := k.drop(ctx, a.store, key); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "deleted %s %s=%s\n", name, column, value)
	return err
}
