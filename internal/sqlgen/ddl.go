// Package sqlgen derives DDL and parameterized DML from resource definitions.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/nrjais/aerostore/internal/schema"
)

// ColumnType returns the SQL column type a field is created with.
func ColumnType(field schema.FieldDefinition) string {
	switch field.Type {
	case schema.Timestamp:
		return "TIMESTAMP WITH TIME ZONE"
	case schema.Enum, schema.Text:
		return "TEXT"
	case schema.Int2:
		return "SMALLINT"
	case schema.Int4:
		return "INTEGER"
	case schema.Int8:
		return "BIGINT"
	case schema.Numeric, schema.Float8:
		return "DOUBLE PRECISION"
	case schema.Float4:
		return "REAL"
	case schema.Bytea:
		return "BYTEA"
	case schema.Bool:
		return "BOOLEAN"
	case schema.UUID:
		return "UUID"
	case schema.PointZ:
		return fmt.Sprintf("GEOMETRY(POINTZ, %d)", schema.SRID)
	case schema.LineStringZ:
		return fmt.Sprintf("GEOMETRY(LINESTRINGZ, %d)", schema.SRID)
	case schema.PolygonZ:
		return fmt.Sprintf("GEOMETRY(POLYGONZ, %d)", schema.SRID)
	case schema.TextArray:
		return "TEXT[]"
	case schema.UUIDArray:
		return "UUID[]"
	case schema.Int8Array:
		return "BIGINT[]"
	default:
		return strings.ToUpper(string(field.Type))
	}
}

// CreateTable builds the CREATE TABLE statement. Simple resources get a generated uuid key;
// linked ones a composite key over every id column.
func CreateTable(def schema.ResourceDefinition) string {
	var cols []string
	for _, id := range def.IDColumns {
		if def.Kind == schema.Simple {
			cols = append(cols, id+" UUID DEFAULT uuid_generate_v4()")
		} else {
			cols = append(cols, id+" UUID NOT NULL")
		}
	}

	for _, name := range def.FieldNames() {
		field := def.Fields[name]
		col := name + " " + ColumnType(field)
		if field.HasDefault() {
			col += " DEFAULT " + field.Default
		}
		if field.Mandatory {
			col += " NOT NULL"
		}
		cols = append(cols, col)
	}
	cols = append(cols, "PRIMARY KEY ("+strings.Join(def.IDColumns, ", ")+")")

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)", def.TableName, strings.Join(cols, ",\n    "))
}

func DropTable(def schema.ResourceDefinition) string {
	return "DROP TABLE IF EXISTS " + def.TableName
}
