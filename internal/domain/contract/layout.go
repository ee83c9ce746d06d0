package contract

import (
	"reflect"
	"sync"
)

// layout maps a "db" column name to the index path of its struct field,
// following embedded structs such as entity.Base.
type layout map[string][]int

// Global cache for type layouts; a type is reflected once.
var typeCache sync.Map // map[reflect.Type]layout

func layoutOf(t reflect.Type) layout {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if cached, ok := typeCache.Load(t); ok {
		return cached.(layout)
	}

	l := make(layout)
	if t.Kind() == reflect.Struct {
		collect(t, nil, l)
	}

	typeCache.Store(t, l)
	return l
}

func collect(t reflect.Type, prefix []int, l layout) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" && !field.Anonymous {
			continue
		}

		idx := make([]int, len(prefix)+1)
		copy(idx, prefix)
		idx[len(prefix)] = i

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collect(field.Type, idx, l)
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		l[tag] = idx
	}
}
