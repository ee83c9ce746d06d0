// Package schema derives SQLite table definitions from entity contracts and
// keeps the ordered list of statements that brings a store up to date.
package schema

import (
	"fmt"
	"strings"

	"marketmodels/internal/core/entity"
	"marketmodels/internal/core/id"
	"marketmodels/internal/metadata"
)

// Column is one column of a table.
type Column struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
	Unique     bool
	Check      string
	References string
}

// Table is the column layout of one entity.
type Table struct {
	Name    string
	Columns []Column
	Uniques [][]string
}

// TableFor derives the table of def: id and created_at with fixed-length
// checks, then one column per field typed after the field (REAL for
// numbers, INTEGER for integers, TEXT otherwise) unless the field carries
// an explicit SQL type.
func TableFor(def *metadata.EntityDef) Table {
	t := Table{
		Name: def.Name,
		Columns: []Column{
			{
				Name:       entity.ColumnID,
				Type:       fmt.Sprintf("CHAR(%d)", id.Length),
				NotNull:    true,
				PrimaryKey: true,
				Check:      fmt.Sprintf("length(%s) = %d", entity.ColumnID, id.Length),
			},
			{
				Name:    entity.ColumnCreatedAt,
				Type:    fmt.Sprintf("CHAR(%d)", entity.CreatedAtLength),
				NotNull: true,
				Check:   fmt.Sprintf("length(%s) = %d", entity.ColumnCreatedAt, entity.CreatedAtLength),
			},
		},
		Uniques: def.Uniques,
	}

	for _, f := range def.Fields {
		col := Column{
			Name:       f.Name,
			Type:       columnType(f),
			NotNull:    f.Required,
			Unique:     f.Unique,
			References: f.References,
		}
		if f.SQLType == fmt.Sprintf("CHAR(%d)", id.Length) && f.References != "" {
			col.Check = fmt.Sprintf("length(%s) = %d", f.Name, id.Length)
		}
		t.Columns = append(t.Columns, col)
	}
	return t
}

func columnType(f metadata.FieldDef) string {
	if f.SQLType != "" {
		return f.SQLType
	}
	switch f.Type {
	case metadata.TypeNumber:
		return "REAL"
	case metadata.TypeInteger:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// DDL renders the CREATE TABLE statement.
func (t Table) DDL() string {
	lines := make([]string, 0, len(t.Columns)+len(t.Uniques))
	var fks []string

	for _, c := range t.Columns {
		var b strings.Builder
		b.WriteString(c.Name)
		b.WriteString(" ")
		b.WriteString(c.Type)
		if c.PrimaryKey {
			b.WriteString(" PRIMARY KEY")
		}
		if c.NotNull {
			b.WriteString(" NOT NULL")
		}
		if c.Unique {
			b.WriteString(" UNIQUE")
		}
		if c.Check != "" {
			b.WriteString(" CHECK(" + c.Check + ")")
		}
		lines = append(lines, b.String())

		if c.References != "" {
			fks = append(fks, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s) ON DELETE CASCADE",
				c.Name, c.References, entity.ColumnID))
		}
	}
	for _, u := range t.Uniques {
		lines = append(lines, "UNIQUE ("+strings.Join(u, ", ")+")")
	}
	lines = append(lines, fks...)

	return "CREATE TABLE IF NOT EXISTS " + t.Name + " (\n\t" + strings.Join(lines, ",\n\t") + "\n);"
}

// RelationDDL renders the join table of rel: two id columns referencing
// the linked tables, a composite primary key, cascading deletes.
func RelationDDL(rel metadata.RelationDef) string {
	idType := fmt.Sprintf("CHAR(%d)", id.Length)
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
	%[2]s %[4]s NOT NULL,
	%[3]s %[4]s NOT NULL,
	FOREIGN KEY (%[2]s) REFERENCES %[5]s(id) ON DELETE CASCADE,
	FOREIGN KEY (%[3]s) REFERENCES %[6]s(id) ON DELETE CASCADE,
	PRIMARY KEY (%[2]s, %[3]s)
);`, rel.Name, metadata.LeftColumn, metadata.RightColumn, idType, rel.Left, rel.Right)
}

// Index renders a CREATE INDEX statement.
func Index(table string, cols ...string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s);",
		table, strings.Join(cols, "_"), table, strings.Join(cols, ", "))
}
