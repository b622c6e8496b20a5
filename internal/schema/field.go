package schema

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// StorageType is the column type a field is persisted as.
type StorageType string

const (
	Text        StorageType = "text"
	UUID        StorageType = "uuid"
	Int2        StorageType = "int2"
	Int4        StorageType = "int4"
	Int8        StorageType = "int8"
	Numeric     StorageType = "numeric"
	Float4      StorageType = "float4"
	Float8      StorageType = "float8"
	Bool        StorageType = "bool"
	Bytea       StorageType = "bytea"
	Timestamp   StorageType = "timestamptz"
	PointZ      StorageType = "pointz"
	LineStringZ StorageType = "linestringz"
	PolygonZ    StorageType = "polygonz"
	Enum        StorageType = "enum"
	TextArray   StorageType = "text[]"
	UUIDArray   StorageType = "uuid[]"
	Int8Array   StorageType = "int8[]"
)

// IsGeometry reports whether values of this type are stored as PostGIS geometry.
func (t StorageType) IsGeometry() bool {
	return t == PointZ || t == LineStringZ || t == PolygonZ
}

// IsArray reports whether the column holds an array of scalars.
func (t StorageType) IsArray() bool {
	return t == TextArray || t == UUIDArray || t == Int8Array
}

// EnumType maps the integer tags used on the wire to the names persisted in the database.
// Tags are not stable across versions; names are.
type EnumType struct {
	Name   string
	Values map[int32]string
}

// NewEnumType builds an EnumType from the tag -> name table of a wire enum.
func NewEnumType(name string, values map[int32]string) *EnumType {
	return &EnumType{Name: name, Values: values}
}

func (e *EnumType) NameOf(tag int32) (string, bool) {
	name, ok := e.Values[tag]
	return name, ok
}

func (e *EnumType) TagOf(name string) (int32, bool) {
	for tag, n := range e.Values {
		if n == name {
			return tag, true
		}
	}
	return 0, false
}

// Names returns the variant names sorted by tag.
func (e *EnumType) Names() []string {
	tags := lo.Keys(e.Values)
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return lo.Map(tags, func(tag int32, _ int) string { return e.Values[tag] })
}

// FieldDefinition describes one non-id column of a resource table.
type FieldDefinition struct {
	Type      StorageType `validate:"required"`
	Mandatory bool
	// Default is a raw SQL literal or expression, empty when the column has no default.
	Default string
	// Internal fields never appear in the wire data of a resource.
	Internal bool
	// ReadOnly fields are returned on reads and ignored on insert/update.
	ReadOnly bool
	Enum     *EnumType
}

func NewField(t StorageType, mandatory bool) FieldDefinition {
	return FieldDefinition{Type: t, Mandatory: mandatory}
}

func NewEnumField(e *EnumType, mandatory bool) FieldDefinition {
	return FieldDefinition{Type: Enum, Mandatory: mandatory, Enum: e}
}

func (f FieldDefinition) WithDefault(expr string) FieldDefinition {
	f.Default = expr
	return f
}

func (f FieldDefinition) SetInternal() FieldDefinition {
	f.Internal = true
	return f
}

func (f FieldDefinition) SetReadOnly() FieldDefinition {
	f.ReadOnly = true
	return f
}

func (f FieldDefinition) HasDefault() bool {
	return f.Default != ""
}

// Writable reports whether the field takes part in insert/update statements.
func (f FieldDefinition) Writable() bool {
	return !f.Internal && !f.ReadOnly
}

func (f FieldDefinition) String() string {
	return fmt.Sprintf("%s(mandatory=%t, default=%q, internal=%t, read_only=%t)",
		f.Type, f.Mandatory, f.Default, f.Internal, f.ReadOnly)
}
