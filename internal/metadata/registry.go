package metadata

import (
	"fmt"
	"sort"

	"marketmodels/internal/core/apperror"
	"marketmodels/internal/core/entity"
)

// FieldType defines the storage type of a field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"  // float64, REAL
	TypeInteger FieldType = "integer" // int64, INTEGER
	TypeEnum    FieldType = "enum"    // closed string set with a fallback
)

// Numeric reports whether values of t are bound as numbers.
func (t FieldType) Numeric() bool {
	return t == TypeNumber || t == TypeInteger
}

// EntityDef describes one record kind: its fields, the columns usable as an
// exact-match selector, and the list queries it answers.
type EntityDef struct {
	// Name is also the table name
	Name   string     `json:"name"`
	Label  string     `json:"label,omitempty"`
	Fields []FieldDef `json:"fields"`

	// Selectors is the closed list of columns a ByKey selector may use.
	Selectors []string `json:"selectors"`

	// Lists enumerates the named list queries besides "all".
	Lists []ListDef `json:"lists,omitempty"`

	// Uniques holds composite uniqueness constraints.
	Uniques [][]string `json:"-"`

	index map[string]int
}

// FieldDef describes a field.
type FieldDef struct {
	Name      string    `json:"name"`
	Type      FieldType `json:"type"`
	Required  bool      `json:"required,omitempty"`
	Immutable bool      `json:"immutable,omitempty"`

	// Rules are validator tags applied to user-submitted values.
	Rules string `json:"rules,omitempty"`

	// Scale is the number of decimal places kept for a TypeNumber field;
	// 0 keeps the value as given.
	Scale int32 `json:"scale,omitempty"`

	// Options and Fallback are set for TypeEnum fields.
	Options  []string `json:"options,omitempty"`
	Fallback string   `json:"fallback,omitempty"`

	Form Form `json:"-"`

	// Column layout
	SQLType    string `json:"-"` // overrides the type-derived column type
	Unique     bool   `json:"-"`
	References string `json:"-"` // referenced table; cascades on delete
}

// ListDef describes a relation-scoped list query, e.g. the profiles attached
// (or not attached) to a relay.
type ListDef struct {
	Kind     string `json:"kind"`
	Relation string `json:"relation"`

	// Other is the entity on the far side of the relation and OtherColumn
	// the column of Other matched against the query value.
	Other       string `json:"other"`
	OtherColumn string `json:"otherColumn"`

	// Exclude selects the rows NOT linked to the matched entity.
	Exclude bool `json:"exclude,omitempty"`

	// Column, when set instead of Relation, filters on a foreign key
	// column of this entity.
	Column string `json:"column,omitempty"`
}

// ListAll is the list kind every entity answers.
const ListAll = "all"

// RelationDef describes a join table linking two entities by id pairs.
// Rows are removed when either endpoint is deleted.
type RelationDef struct {
	Name  string `json:"name"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Relation columns: LeftColumn references Left(id), RightColumn Right(id).
const (
	LeftColumn  = "tb_kr_0"
	RightColumn = "tb_kr_1"
)

// ColumnFor returns the join column that references entity, and the one
// that references the far side.
func (r RelationDef) ColumnFor(entity string) (own, other string, ok bool) {
	switch entity {
	case r.Left:
		return LeftColumn, RightColumn, true
	case r.Right:
		return RightColumn, LeftColumn, true
	}
	return "", "", false
}

// Field returns the named field.
func (d *EntityDef) Field(name string) (FieldDef, bool) {
	i, ok := d.lookup()[name]
	if !ok {
		return FieldDef{}, false
	}
	return d.Fields[i], true
}

// MustField returns the named field, panicking with an integration error
// when the registry does not know it.
func (d *EntityDef) MustField(name string) FieldDef {
	f, ok := d.Field(name)
	if !ok {
		panic(apperror.NewIntegration(d.Name, name))
	}
	return f
}

// FieldNames returns the domain field names in declaration order.
func (d *EntityDef) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// Columns returns every persisted column: id, created_at, then domain fields.
func (d *EntityDef) Columns() []string {
	return append([]string{entity.ColumnID, entity.ColumnCreatedAt}, d.FieldNames()...)
}

// HasSelector reports whether col may be used as an exact-match selector.
func (d *EntityDef) HasSelector(col string) bool {
	for _, s := range d.Selectors {
		if s == col {
			return true
		}
	}
	return false
}

// List returns the relation-scoped list definition for kind.
func (d *EntityDef) List(kind string) (ListDef, bool) {
	for _, l := range d.Lists {
		if l.Kind == kind {
			return l, true
		}
	}
	return ListDef{}, false
}

func (d *EntityDef) lookup() map[string]int {
	if d.index == nil {
		d.reindex()
	}
	return d.index
}

func (d *EntityDef) reindex() {
	d.index = make(map[string]int, len(d.Fields))
	for i, f := range d.Fields {
		d.index[f.Name] = i
	}
}

// --- Construction helpers, used while a kind package initializes ---

// WithSelectors sets the exact-match selector columns.
func (d *EntityDef) WithSelectors(cols ...string) *EntityDef {
	d.Selectors = cols
	return d
}

// WithLists adds relation-scoped list queries.
func (d *EntityDef) WithLists(lists ...ListDef) *EntityDef {
	d.Lists = append(d.Lists, lists...)
	return d
}

// WithUnique adds a composite uniqueness constraint.
func (d *EntityDef) WithUnique(cols ...string) *EntityDef {
	d.Uniques = append(d.Uniques, cols)
	return d
}

// WithForm replaces the form descriptor of a field.
func (d *EntityDef) WithForm(name string, form Form) *EntityDef {
	i, ok := d.lookup()[name]
	if !ok {
		panic(apperror.NewIntegration(d.Name, name))
	}
	d.Fields[i].Form = form
	return d
}

// Registry stores entity and relation definitions.
// It is filled once at init time and only read afterwards.
type Registry struct {
	entities  map[string]*EntityDef
	relations map[string]RelationDef
}

func NewRegistry() *Registry {
	return &Registry{
		entities:  make(map[string]*EntityDef),
		relations: make(map[string]RelationDef),
	}
}

// Register adds def, panicking on a duplicate name or a selector that is
// not a column.
func (r *Registry) Register(def *EntityDef) {
	if _, dup := r.entities[def.Name]; dup {
		panic(fmt.Sprintf("metadata: entity %q registered twice", def.Name))
	}
	for _, s := range def.Selectors {
		if s != entity.ColumnID {
			def.MustField(s)
		}
	}
	def.reindex()
	r.entities[def.Name] = def
}

// RegisterRelation adds a join table definition.
func (r *Registry) RegisterRelation(rel RelationDef) {
	if _, dup := r.relations[rel.Name]; dup {
		panic(fmt.Sprintf("metadata: relation %q registered twice", rel.Name))
	}
	r.relations[rel.Name] = rel
}

func (r *Registry) Get(name string) (*EntityDef, bool) {
	d, ok := r.entities[name]
	return d, ok
}

// MustGet returns the named entity or panics with an integration error.
func (r *Registry) MustGet(name string) *EntityDef {
	d, ok := r.entities[name]
	if !ok {
		panic(apperror.NewIntegration("registry", name))
	}
	return d
}

func (r *Registry) Relation(name string) (RelationDef, bool) {
	rel, ok := r.relations[name]
	return rel, ok
}

// List returns the entity definitions sorted by name.
func (r *Registry) List() []*EntityDef {
	list := make([]*EntityDef, 0, len(r.entities))
	for _, def := range r.entities {
		list = append(list, def)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Relations returns the relation definitions sorted by name.
func (r *Registry) Relations() []RelationDef {
	list := make([]RelationDef, 0, len(r.relations))
	for _, rel := range r.relations {
		list = append(list, rel)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}
