package metadata

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"marketmodels/internal/core/entity"
)

// Enum is implemented by string types with a closed value set.
// Values outside the set normalize to Fallback.
type Enum interface {
	Values() []string
	Fallback() string
}

var (
	enumType = reflect.TypeOf((*Enum)(nil)).Elem()
	baseType = reflect.TypeOf(entity.Base{})
)

// Inspect analyzes a model struct and returns its EntityDef.
//
// Field tags:
//
//	db:"lat"                      column and record key
//	field:"required,immutable,unique"
//	validate:"min=-90,max=90"     rules for user-submitted values
//	sql:"CHAR(12)"                column type override
//	ref:"trade_product"           foreign key, cascading on delete
//	scale:"4"                     decimal places kept for number fields
//
// Required fields must be values and optional fields pointers; anything else
// is a definition bug and panics.
func Inspect(model any, name string) *EntityDef {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	def := &EntityDef{
		Name:      name,
		Label:     guessLabel(name),
		Fields:    make([]FieldDef, 0, t.NumField()),
		Selectors: []string{entity.ColumnID},
	}

	inspectStruct(t, def)
	def.reindex()

	return def
}

func inspectStruct(t reflect.Type, def *EntityDef) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.PkgPath != "" { // unexported
			continue
		}

		// id and created_at are handled by the table layout
		if field.Anonymous {
			if field.Type != baseType {
				inspectStruct(field.Type, def)
			}
			continue
		}

		name := field.Tag.Get("db")
		if name == "" || name == "-" {
			continue
		}

		flags := tagSet(field.Tag.Get("field"))
		fDef := FieldDef{
			Name:       name,
			Required:   flags["required"],
			Immutable:  flags["immutable"],
			Unique:     flags["unique"],
			Rules:      field.Tag.Get("validate"),
			SQLType:    field.Tag.Get("sql"),
			References: field.Tag.Get("ref"),
		}

		isPtr := field.Type.Kind() == reflect.Ptr
		if fDef.Required == isPtr {
			panic(fmt.Sprintf("metadata: %s.%s: required fields must be values, optional fields pointers", def.Name, name))
		}

		mapFieldType(&fDef, field)
		if tag := field.Tag.Get("scale"); tag != "" {
			scale, err := strconv.ParseInt(tag, 10, 32)
			if err != nil || scale < 1 || fDef.Type != TypeNumber {
				panic(fmt.Sprintf("metadata: %s.%s: scale %q needs a positive count on a number field", def.Name, name, tag))
			}
			fDef.Scale = int32(scale)
		}
		fDef.Form = defaultForm(fDef)

		def.Fields = append(def.Fields, fDef)
	}
}

func mapFieldType(def *FieldDef, field reflect.StructField) {
	t := field.Type
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Implements(enumType) {
		e := reflect.Zero(t).Interface().(Enum)
		def.Type = TypeEnum
		def.Options = e.Values()
		def.Fallback = e.Fallback()
		return
	}

	switch t.Kind() {
	case reflect.String:
		def.Type = TypeString
	case reflect.Int, reflect.Int32, reflect.Int64:
		def.Type = TypeInteger
	case reflect.Float32, reflect.Float64:
		def.Type = TypeNumber
	default:
		panic(fmt.Sprintf("metadata: field %s has unsupported kind %s", field.Name, t.Kind()))
	}
}

func tagSet(tag string) map[string]bool {
	set := make(map[string]bool)
	for _, p := range strings.Split(tag, ",") {
		if p = strings.TrimSpace(p); p != "" {
			set[p] = true
		}
	}
	return set
}

// guessLabel turns "trade_product" into "Trade Product".
func guessLabel(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
