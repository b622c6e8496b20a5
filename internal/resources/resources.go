// Package resources declares the concrete aviation resources served by the storage service.
package resources

import (
	"fmt"
	"strings"

	"github.com/nrjais/aerostore/internal/schema"
	"github.com/nrjais/aerostore/pkg/api"
)

var (
	FlightStatusEnum   = schema.NewEnumType("FlightStatus", api.FlightStatusName)
	FlightPriorityEnum = schema.NewEnumType("FlightPriority", api.FlightPriorityName)
	ParcelStatusEnum   = schema.NewEnumType("ParcelStatus", api.ParcelStatusName)
	ScannerTypeEnum    = schema.NewEnumType("ScannerType", api.ScannerTypeName)
	ScannerStatusEnum  = schema.NewEnumType("ScannerStatus", api.ScannerStatusName)
	AuthMethodEnum     = schema.NewEnumType("AuthMethod", api.AuthMethodName)
	GroupTypeEnum      = schema.NewEnumType("GroupType", api.GroupTypeName)
)

// withAudit adds the created, updated and soft-delete timestamps every simple resource carries.
func withAudit(fields map[string]schema.FieldDefinition) map[string]schema.FieldDefinition {
	fields[schema.CreatedAt] = schema.NewField(schema.Timestamp, true).WithDefault("NOW()").SetReadOnly()
	fields[schema.UpdatedAt] = schema.NewField(schema.Timestamp, true).WithDefault("NOW()").SetReadOnly()
	fields[schema.DeletedAt] = schema.NewField(schema.Timestamp, false).SetInternal()
	return fields
}

// foreignKey adds the constraint unless a constraint of the same name already exists, so the
// statement can be re-run against an existing table.
func foreignKey(table, column, refTable, refColumn string) string {
	return addConstraint(table, column, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)", column, refTable, refColumn))
}

func cascadingForeignKey(table, column, refTable, refColumn string) string {
	return addConstraint(table, column,
		fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE CASCADE", column, refTable, refColumn))
}

func addConstraint(table, column, body string) string {
	name := fmt.Sprintf("fk_%s_%s", table, column)
	return fmt.Sprintf("DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') "+
		"THEN ALTER TABLE %s ADD CONSTRAINT %s %s; END IF; END $$", name, table, name, body)
}

func gistIndex(table, column string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s USING GIST (%s)", table, column, table, column)
}

func index(table string, columns ...string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s)",
		table, strings.Join(columns, "_"), table, strings.Join(columns, ", "))
}

// linkDefinition declares a pure join table between two simple resources. Rows cascade with
// either side.
func linkDefinition(name, table, ownerTable, ownerID, otherTable, otherID string) schema.ResourceDefinition {
	return schema.ResourceDefinition{
		Name:      name,
		Kind:      schema.Linked,
		TableName: table,
		IDColumns: []string{ownerID, otherID},
		Fields:    map[string]schema.FieldDefinition{},
		TableIndices: []string{
			cascadingForeignKey(table, ownerID, ownerTable, ownerID),
			cascadingForeignKey(table, otherID, otherTable, otherID),
			index(table, otherID),
		},
	}
}

// Definitions returns every resource definition, referenced tables first.
func Definitions() []schema.ResourceDefinition {
	return []schema.ResourceDefinition{
		Vertiport.Definition,
		Vertipad.Definition,
		Vehicle.Definition,
		Pilot.Definition,
		User.Definition,
		Group.Definition,
		Scanner.Definition,
		FlightPlan.Definition,
		Parcel.Definition,
		FlightPlanParcel.Definition,
		GroupUser.Definition,
		GroupVehicle.Definition,
		GroupVertiport.Definition,
		GroupVertipad.Definition,
	}
}

// NewRegistry validates and registers every resource.
func NewRegistry() (*schema.Registry, error) {
	return schema.NewRegistry(Definitions()...)
}
