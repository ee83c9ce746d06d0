// Package contract turns untyped records into typed models and back.
//
// Parsing is the lenient path used for rows read back from storage and for
// records fetched from elsewhere: a record that does not fit a model is an
// expected outcome, reported as (zero, false). Validate is the strict path
// applied to user-submitted data before it is written.
package contract

import (
	"encoding/json"
	"math"
	"reflect"

	"marketmodels/internal/core/entity"
	"marketmodels/internal/metadata"
)

// Record is the untyped shape exchanged with the store executor.
type Record = map[string]any

// Parse interprets rec as a model of kind def.
//
// Required fields must be present with the exact primitive type (numbers
// for number and integer fields, non-empty strings otherwise). Optional
// fields with a wrong type are left unset. Enum values outside the closed
// set normalize to the field's fallback. id and created_at are copied when
// present and must then be strings.
func Parse[T any](def *metadata.EntityDef, rec any) (T, bool) {
	var zero T

	m, ok := asRecord(rec)
	if !ok {
		return zero, false
	}

	out := reflect.New(reflect.TypeOf(zero)).Elem()
	layout := layoutOf(out.Type())

	for _, col := range []string{entity.ColumnID, entity.ColumnCreatedAt} {
		raw, present := m[col]
		if !present || raw == nil {
			continue
		}
		s, isStr := raw.(string)
		if !isStr {
			return zero, false
		}
		if idx, ok := layout[col]; ok {
			out.FieldByIndex(idx).SetString(s)
		}
	}

	for _, f := range def.Fields {
		v, ok := fieldValue(f, m[f.Name])
		if !ok {
			if f.Required {
				return zero, false
			}
			continue
		}
		idx, ok := layout[f.Name]
		if !ok {
			continue
		}
		assign(out.FieldByIndex(idx), v)
	}

	return out.Interface().(T), true
}

// ParseList parses every element of v independently and drops the ones
// that do not fit. A v that is not a list yields (nil, false); an empty
// list yields an empty, non-nil result.
func ParseList[T any](def *metadata.EntityDef, v any) ([]T, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	list := make([]T, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		if o, ok := Parse[T](def, rv.Index(i).Interface()); ok {
			list = append(list, o)
		}
	}
	return list, true
}

// ToRecord is the inverse of Parse: it renders a model as a record,
// omitting unset optional fields and empty identity fields.
func ToRecord(model any) Record {
	rv := reflect.ValueOf(model)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	layout := layoutOf(rv.Type())
	rec := make(Record, len(layout))
	for col, idx := range layout {
		fv := rv.FieldByIndex(idx)
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		if entity.IsBaseColumn(col) && fv.String() == "" {
			continue
		}
		rec[col] = primitive(fv)
	}
	return rec
}

func asRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case *map[string]any:
		if m == nil || *m == nil {
			return nil, false
		}
		return *m, true
	}
	return nil, false
}

// fieldValue converts raw to the Go value stored for f, reporting false
// when raw is absent or has the wrong primitive type.
func fieldValue(f metadata.FieldDef, raw any) (any, bool) {
	if raw == nil {
		return nil, false
	}
	switch f.Type {
	case metadata.TypeNumber:
		return toFloat(raw)
	case metadata.TypeInteger:
		return toInt(raw)
	case metadata.TypeEnum:
		s, ok := raw.(string)
		if !ok || (f.Required && s == "") {
			return nil, false
		}
		return NormalizeEnum(f, s), true
	default:
		s, ok := raw.(string)
		if !ok || (f.Required && s == "") {
			return nil, false
		}
		return s, true
	}
}

// NormalizeEnum maps s into f's closed value set, falling back to the
// field's documented default for anything unrecognized.
func NormalizeEnum(f metadata.FieldDef, s string) string {
	for _, o := range f.Options {
		if o == s {
			return s
		}
	}
	return f.Fallback
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

func assign(fv reflect.Value, v any) {
	t := fv.Type()
	if t.Kind() == reflect.Ptr {
		p := reflect.New(t.Elem())
		p.Elem().Set(reflect.ValueOf(v).Convert(t.Elem()))
		fv.Set(p)
		return
	}
	fv.Set(reflect.ValueOf(v).Convert(t))
}

// primitive unwraps named types (enums, int kinds) to plain Go primitives.
func primitive(v reflect.Value) any {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return v.Interface()
}
