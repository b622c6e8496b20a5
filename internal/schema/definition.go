package schema

import (
	"sort"

	"github.com/samber/lo"
)

// Well-known audit columns.
const (
	DeletedAt = "deleted_at"
	CreatedAt = "created_at"
	UpdatedAt = "updated_at"
)

// ResourceKind is the shape of a resource table.
type ResourceKind int

const (
	// Simple resources have a single generated UUID primary key.
	Simple ResourceKind = iota
	// Linked resources are pure join tables keyed by two or more foreign ids.
	Linked
	// SimpleLinked resources are keyed like Linked ones but carry their own data.
	SimpleLinked
)

func (k ResourceKind) String() string {
	switch k {
	case Simple:
		return "simple"
	case Linked:
		return "linked"
	case SimpleLinked:
		return "simple_linked"
	default:
		return "unknown"
	}
}

// ResourceDefinition is the static schema of one resource.
type ResourceDefinition struct {
	Name      string       `validate:"required"`
	Kind      ResourceKind `validate:"min=0,max=2"`
	TableName string       `validate:"required,lowercase"`
	IDColumns []string     `validate:"required,min=1,dive,required,lowercase"`
	// Fields excludes the id columns.
	Fields map[string]FieldDefinition `validate:"dive,keys,required,lowercase,endkeys"`
	// TableIndices are raw DDL statements executed after the table exists.
	TableIndices []string
}

// FieldNames returns the field names in a stable order.
func (d ResourceDefinition) FieldNames() []string {
	names := lo.Keys(d.Fields)
	sort.Strings(names)
	return names
}

// Columns returns the id columns followed by the field names.
func (d ResourceDefinition) Columns() []string {
	return append(append([]string{}, d.IDColumns...), d.FieldNames()...)
}

func (d ResourceDefinition) Field(name string) (FieldDefinition, bool) {
	f, ok := d.Fields[name]
	return f, ok
}

func (d ResourceDefinition) IsIDColumn(name string) bool {
	return lo.Contains(d.IDColumns, name)
}

// HasColumn reports whether name is an id column or a declared field, internal ones included.
func (d ResourceDefinition) HasColumn(name string) bool {
	if d.IsIDColumn(name) {
		return true
	}
	_, ok := d.Fields[name]
	return ok
}

// ColumnType returns the storage type of any column. Id columns are uuids.
func (d ResourceDefinition) ColumnType(name string) (StorageType, bool) {
	if d.IsIDColumn(name) {
		return UUID, true
	}
	f, ok := d.Fields[name]
	if !ok {
		return "", false
	}
	return f.Type, true
}

// IsArchivable reports whether delete is a soft delete for this resource.
func (d ResourceDefinition) IsArchivable() bool {
	_, ok := d.Fields[DeletedAt]
	return ok
}

func (d ResourceDefinition) HasUpdatedAt() bool {
	_, ok := d.Fields[UpdatedAt]
	return ok
}

// IDColumn returns the primary key column of a simple resource.
func (d ResourceDefinition) IDColumn() string {
	if len(d.IDColumns) == 0 {
		return ""
	}
	return d.IDColumns[0]
}
