// Package resource bridges wire objects and storage rows for every resource shape.
package resource

import (
	"github.com/google/uuid"
	"github.com/nrjais/aerostore/internal/schema"
	"github.com/nrjais/aerostore/internal/validation"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var (
	// ErrMissingID is returned when an id column required by an operation is absent.
	ErrMissingID = errors.New("missing id")
	// ErrInvalidID is returned when an id is not a valid uuid.
	ErrInvalidID = errors.New("invalid id")
	// ErrNoData is returned when a write carries no data object.
	ErrNoData = errors.New("missing data")
)

// Data is the field accessor every resource data type provides.
type Data = validation.FieldAccessor

// Fields is the column -> value view of a data object.
type Fields map[string]schema.Value

func (f Fields) FieldValue(name string) (schema.Value, error) {
	v, ok := f[name]
	if !ok {
		return nil, errors.Errorf("no value for field %q", name)
	}
	return v, nil
}

// Descriptor is the per-resource table of conversions the generic operations run on.
type Descriptor[D any] struct {
	Definition schema.ResourceDefinition
	// Values returns every non-internal field of d.
	Values func(d *D) Fields
	// FromRow reads d back from a row; errors are collected by the reader.
	FromRow func(r *schema.RowReader) *D
}

// NoData is the data type of pure link resources.
type NoData struct{}

// LinkDescriptor describes a linked resource without data.
func LinkDescriptor(def schema.ResourceDefinition) Descriptor[NoData] {
	return Descriptor[NoData]{
		Definition: def,
		Values:     func(*NoData) Fields { return Fields{} },
		FromRow:    func(*schema.RowReader) *NoData { return &NoData{} },
	}
}

// Accessor returns the field accessor for d.
func (desc Descriptor[D]) Accessor(d *D) Data {
	return desc.Values(d)
}

// Object is one resource instance: its ids, its data when known and whether it is archived.
type Object[D any] struct {
	IDs      map[string]string
	Data     *D
	archived bool
	def      schema.ResourceDefinition
}

func (desc Descriptor[D]) NewObject(ids map[string]string, data *D) Object[D] {
	if ids == nil {
		ids = map[string]string{}
	}
	return Object[D]{IDs: ids, Data: data, def: desc.Definition}
}

func (o Object[D]) Definition() schema.ResourceDefinition {
	return o.def
}

// IsArchived is true only for archivable resources whose deleted_at is set.
func (o Object[D]) IsArchived() bool {
	return o.def.IsArchivable() && o.archived
}

// TryGetIDField returns the primary key column of a simple resource.
func (o Object[D]) TryGetIDField() (string, error) {
	if o.def.Kind != schema.Simple || len(o.def.IDColumns) != 1 {
		return "", errors.Wrapf(ErrMissingID, "%s has no single id column", o.def.Name)
	}
	return o.def.IDColumns[0], nil
}

// TryGetUUID returns the parsed primary key of a simple resource.
func (o Object[D]) TryGetUUID() (uuid.UUID, error) {
	col, err := o.TryGetIDField()
	if err != nil {
		return uuid.Nil, err
	}
	return o.parseID(col)
}

// TryGetUUIDs parses every id column of the resource.
func (o Object[D]) TryGetUUIDs() (map[string]uuid.UUID, error) {
	out := make(map[string]uuid.UUID, len(o.def.IDColumns))
	for _, col := range o.def.IDColumns {
		id, err := o.parseID(col)
		if err != nil {
			return nil, err
		}
		out[col] = id
	}
	return out, nil
}

// IDMap returns the canonical textual form of every id column, validating each.
func (o Object[D]) IDMap() (map[string]string, error) {
	ids, err := o.TryGetUUIDs()
	if err != nil {
		return nil, err
	}
	return lo.MapValues(ids, func(id uuid.UUID, _ string) string { return id.String() }), nil
}

// PartialIDMap validates whichever id columns are present.
func (o Object[D]) PartialIDMap() (map[string]string, error) {
	out := make(map[string]string, len(o.IDs))
	for col := range o.IDs {
		if !o.def.IsIDColumn(col) {
			return nil, errors.Wrapf(ErrInvalidID, "%s is not an id column of %s", col, o.def.Name)
		}
		id, err := o.parseID(col)
		if err != nil {
			return nil, err
		}
		out[col] = id.String()
	}
	if len(out) == 0 {
		return nil, errors.Wrapf(ErrMissingID, "%s needs at least one of %v", o.def.Name, o.def.IDColumns)
	}
	return out, nil
}

func (o Object[D]) parseID(col string) (uuid.UUID, error) {
	raw, ok := o.IDs[col]
	if !ok || raw == "" {
		return uuid.Nil, errors.Wrapf(ErrMissingID, "%s.%s", o.def.Name, col)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrapf(ErrInvalidID, "%s.%s %q", o.def.Name, col, raw)
	}
	return id, nil
}

// ObjectFromRow converts a stored row into an Object.
func (desc Descriptor[D]) ObjectFromRow(row schema.Row) (Object[D], error) {
	reader := schema.NewRowReader(desc.Definition, row)
	ids := make(map[string]string, len(desc.Definition.IDColumns))
	for _, col := range desc.Definition.IDColumns {
		ids[col] = reader.UUID(col)
	}
	data := desc.FromRow(reader)
	if err := reader.Err(); err != nil {
		return Object[D]{}, err
	}
	obj := desc.NewObject(ids, data)
	obj.archived = row.IsArchived()
	return obj, nil
}
