package schema_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketmodels/internal/core/entity"
	"marketmodels/internal/metadata"
	"marketmodels/internal/schema"
)

type crop struct {
	entity.Base
	Name  string  `db:"name" field:"required,unique"`
	Yield float64 `db:"yield" field:"required"`
	Year  int64   `db:"year" field:"required"`
	Code  *string `db:"code" sql:"CHAR(4)"`
}

type harvest struct {
	entity.Base
	CropID string  `db:"crop_id" field:"required" sql:"CHAR(36)" ref:"crop"`
	Notes  *string `db:"notes"`
}

func TestTableFor_Columns(t *testing.T) {
	def := metadata.Inspect(crop{}, "crop").WithUnique("name", "year")
	table := schema.TableFor(def)

	require.Len(t, table.Columns, 6)
	assert.Equal(t, "crop", table.Name)

	byName := map[string]schema.Column{}
	for _, c := range table.Columns {
		byName[c.Name] = c
	}
	assert.Equal(t, "CHAR(36)", byName["id"].Type)
	assert.True(t, byName["id"].PrimaryKey)
	assert.Equal(t, "CHAR(24)", byName["created_at"].Type)
	assert.Equal(t, "REAL", byName["yield"].Type)
	assert.Equal(t, "INTEGER", byName["year"].Type)
	assert.Equal(t, "TEXT", byName["name"].Type)
	assert.True(t, byName["name"].Unique)
	assert.True(t, byName["name"].NotNull)
	assert.Equal(t, "CHAR(4)", byName["code"].Type)
	assert.False(t, byName["code"].NotNull)
}

func TestTable_DDL(t *testing.T) {
	def := metadata.Inspect(crop{}, "crop").WithUnique("name", "year")
	ddl := schema.TableFor(def).DDL()

	assert.True(t, strings.HasPrefix(ddl, "CREATE TABLE IF NOT EXISTS crop ("))
	assert.Contains(t, ddl, "id CHAR(36) PRIMARY KEY NOT NULL CHECK(length(id) = 36)")
	assert.Contains(t, ddl, "created_at CHAR(24) NOT NULL CHECK(length(created_at) = 24)")
	assert.Contains(t, ddl, "name TEXT NOT NULL UNIQUE")
	assert.Contains(t, ddl, "yield REAL NOT NULL")
	assert.Contains(t, ddl, "code CHAR(4),")
	assert.Contains(t, ddl, "UNIQUE (name, year)")
}

func TestTable_DDLForeignKey(t *testing.T) {
	ddl := schema.TableFor(metadata.Inspect(harvest{}, "harvest")).DDL()

	assert.Contains(t, ddl, "crop_id CHAR(36) NOT NULL CHECK(length(crop_id) = 36)")
	assert.Contains(t, ddl, "FOREIGN KEY (crop_id) REFERENCES crop(id) ON DELETE CASCADE")
}

func TestRelationDDL(t *testing.T) {
	ddl := schema.RelationDDL(metadata.RelationDef{Name: "crop_harvest", Left: "crop", Right: "harvest"})

	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS crop_harvest")
	assert.Contains(t, ddl, "FOREIGN KEY (tb_kr_0) REFERENCES crop(id) ON DELETE CASCADE")
	assert.Contains(t, ddl, "FOREIGN KEY (tb_kr_1) REFERENCES harvest(id) ON DELETE CASCADE")
	assert.Contains(t, ddl, "PRIMARY KEY (tb_kr_0, tb_kr_1)")
}

func TestUpgrades(t *testing.T) {
	u := schema.Build(
		[]*metadata.EntityDef{metadata.Inspect(crop{}, "crop"), metadata.Inspect(harvest{}, "harvest")},
		[]metadata.RelationDef{{Name: "crop_harvest", Left: "crop", Right: "harvest"}},
	)

	require.Len(t, u, 4)
	assert.Equal(t, schema.ForeignKeysOn, u[0])
	assert.Contains(t, u[1], "TABLE IF NOT EXISTS crop ")
	assert.Contains(t, u[2], "TABLE IF NOT EXISTS harvest ")
	assert.Contains(t, u[3], "crop_harvest")
	assert.Equal(t, 4, u.Version())

	assert.True(t, strings.HasPrefix(u.Script(), schema.ForeignKeysOn+"\n\n"))
}

func TestIndex(t *testing.T) {
	assert.Equal(t,
		"CREATE INDEX IF NOT EXISTS idx_harvest_crop_id ON harvest(crop_id);",
		schema.Index("harvest", "crop_id"))
}
