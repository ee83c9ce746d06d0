package contract

import (
	"net/url"

	"github.com/go-playground/validator/v10"

	"marketmodels/internal/core/apperror"
	"marketmodels/internal/metadata"
)

// Mode selects which schema applies to submitted data.
type Mode int

const (
	// Create requires every required field.
	Create Mode = iota
	// Update accepts any subset of fields and rejects immutable ones.
	Update
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("wsurl", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		if err != nil {
			return false
		}
		return (u.Scheme == "ws" || u.Scheme == "wss") && u.Host != ""
	})
	return v
}

// ruleNames maps validator tags onto the rule suffix of an error key.
var ruleNames = map[string]string{
	"len": "length",
	"gt":  "positive",
	"gte": "min",
	"lte": "max",
}

// Validate applies the declarative rules of def to user-submitted input and
// returns the accepted values converted to their storage types. Keys that
// are not fields of def are dropped. Every failing field is reported in one
// validation error.
func Validate(def *metadata.EntityDef, input map[string]any, mode Mode) (map[string]any, error) {
	out := make(map[string]any, len(input))
	failed := apperror.FieldErrors{}

	for _, f := range def.Fields {
		raw, present := input[f.Name]
		if !present || raw == nil {
			if mode == Create && f.Required {
				failed[f.Name] = metadata.ErrorKey(def.Name, f.Name, "required")
			}
			continue
		}

		if mode == Update && f.Immutable {
			failed[f.Name] = metadata.ErrorKey(def.Name, f.Name, "immutable")
			continue
		}

		v, rule := check(f, raw)
		if rule != "" {
			failed[f.Name] = metadata.ErrorKey(def.Name, f.Name, rule)
			continue
		}
		out[f.Name] = v
	}

	if len(failed) > 0 {
		return nil, apperror.NewFieldErrors(def.Name, failed)
	}
	return out, nil
}

// check converts raw for f and runs its rules, returning the failed rule.
func check(f metadata.FieldDef, raw any) (any, string) {
	var v any
	switch f.Type {
	case metadata.TypeNumber:
		n, ok := toFloat(raw)
		if !ok {
			return nil, typeRule(f)
		}
		v = f.Quantize(n)
	case metadata.TypeInteger:
		if _, ok := toFloat(raw); !ok {
			return nil, typeRule(f)
		}
		n, ok := toInt(raw)
		if !ok {
			return nil, "integer"
		}
		v = n
	case metadata.TypeEnum:
		s, ok := raw.(string)
		if !ok {
			return nil, typeRule(f)
		}
		if NormalizeEnum(f, s) != s {
			return nil, "enum"
		}
		v = s
	default:
		s, ok := raw.(string)
		if !ok {
			return nil, typeRule(f)
		}
		if f.Required && s == "" {
			return nil, "required"
		}
		v = s
	}

	if f.Rules == "" {
		return v, ""
	}
	if err := validate.Var(v, f.Rules); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			tag := errs[0].Tag()
			if name, ok := ruleNames[tag]; ok {
				return nil, name
			}
			return nil, tag
		}
		return nil, "invalid"
	}
	return v, ""
}

// typeRule names a wrong-typed value: a required field is reported as
// missing, an optional one as mistyped.
func typeRule(f metadata.FieldDef) string {
	if f.Required {
		return "required"
	}
	return "type"
}
