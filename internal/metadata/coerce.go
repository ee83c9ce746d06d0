package metadata

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"marketmodels/internal/core/apperror"
)

// ErrorKey builds the localizable key reported for a failed rule,
// e.g. "model.location_gcs.schema.lat.max".
func ErrorKey(entity, field, rule string) string {
	return "model." + entity + ".schema." + field + "." + rule
}

// Coerce converts a (field, text) pair coming from a form into the value
// bound into a query: float64 for number fields, int64 for integer fields,
// the text itself otherwise.
//
// An unparsable number is a validation failure. A field name the registry
// does not know means caller and registry drifted apart; Coerce panics with
// an integration error in that case.
func (d *EntityDef) Coerce(field, raw string) (any, error) {
	f := d.MustField(field)

	switch f.Type {
	case TypeString, TypeEnum:
		return raw, nil
	case TypeNumber, TypeInteger:
		n, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, apperror.NewFieldErrors(d.Name, apperror.FieldErrors{
				field: ErrorKey(d.Name, field, "number"),
			}).WithCause(err)
		}
		if f.Type == TypeNumber {
			if f.Scale > 0 {
				n = n.Round(f.Scale)
			}
			return n.InexactFloat64(), nil
		}
		if !n.IsInteger() {
			return nil, apperror.NewFieldErrors(d.Name, apperror.FieldErrors{
				field: ErrorKey(d.Name, field, "integer"),
			})
		}
		return n.IntPart(), nil
	default:
		panic(apperror.NewIntegration(d.Name, fmt.Sprintf("%s (type %q)", field, f.Type)))
	}
}

// Quantize rounds x half away from zero to the field's scale.
func (f FieldDef) Quantize(x float64) float64 {
	if f.Scale <= 0 {
		return x
	}
	return decimal.NewFromFloat(x).Round(f.Scale).InexactFloat64()
}

// CoerceForm coerces every pair of a submitted form. Blank values are
// skipped so that untouched inputs do not overwrite stored data. Failures
// for several fields are reported together.
func (d *EntityDef) CoerceForm(form map[string]string) (map[string]any, error) {
	out := make(map[string]any, len(form))
	failed := apperror.FieldErrors{}

	for k, v := range form {
		if v == "" {
			d.MustField(k)
			continue
		}
		val, err := d.Coerce(k, v)
		if err != nil {
			for fk, fv := range apperror.FieldsOf(err) {
				failed[fk] = fv
			}
			continue
		}
		out[k] = val
	}

	if len(failed) > 0 {
		return nil, apperror.NewFieldErrors(d.Name, failed)
	}
	return out, nil
}
