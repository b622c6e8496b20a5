package schema

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrInvalidDefinition is returned when a resource definition is misconfigured.
var ErrInvalidDefinition = errors.New("invalid resource definition")

// ErrUnknownResource is returned when a resource is not registered.
var ErrUnknownResource = errors.New("unknown resource")

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Registry holds the definitions of every resource. It is immutable after NewRegistry.
type Registry struct {
	defs  map[string]ResourceDefinition
	order []string
}

// NewRegistry validates the definitions and returns a registry that keeps their order.
// Tables are created in that order and dropped in reverse.
func NewRegistry(defs ...ResourceDefinition) (*Registry, error) {
	validate := validator.New()
	r := &Registry{defs: make(map[string]ResourceDefinition, len(defs))}
	tables := make(map[string]string, len(defs))

	for _, def := range defs {
		if err := validate.Struct(def); err != nil {
			return nil, errors.Wrapf(ErrInvalidDefinition, "resource %q: %v", def.Name, err)
		}
		if err := checkDefinition(def); err != nil {
			return nil, err
		}
		if _, exists := r.defs[def.Name]; exists {
			return nil, errors.Wrapf(ErrInvalidDefinition, "resource %q registered twice", def.Name)
		}
		if other, exists := tables[def.TableName]; exists {
			return nil, errors.Wrapf(ErrInvalidDefinition, "resources %q and %q share table %q", other, def.Name, def.TableName)
		}
		tables[def.TableName] = def.Name
		r.defs[def.Name] = def
		r.order = append(r.order, def.Name)
	}
	return r, nil
}

func checkDefinition(def ResourceDefinition) error {
	fail := func(format string, args ...any) error {
		return errors.Wrapf(ErrInvalidDefinition, "resource %q: "+format, append([]any{def.Name}, args...)...)
	}

	if !identifierPattern.MatchString(def.TableName) {
		return fail("table name %q is not a valid identifier", def.TableName)
	}

	switch def.Kind {
	case Simple:
		if len(def.IDColumns) != 1 {
			return fail("simple resources need exactly one id column, got %d", len(def.IDColumns))
		}
	case Linked, SimpleLinked:
		if len(def.IDColumns) < 2 {
			return fail("%s resources need at least two id columns, got %d", def.Kind, len(def.IDColumns))
		}
	}

	if dup := lo.FindDuplicates(def.IDColumns); len(dup) > 0 {
		return fail("duplicate id columns %v", dup)
	}

	for _, col := range def.IDColumns {
		if !identifierPattern.MatchString(col) {
			return fail("id column %q is not a valid identifier", col)
		}
		if _, ok := def.Fields[col]; ok {
			return fail("id column %q is also declared as a field", col)
		}
	}

	for _, name := range def.FieldNames() {
		field := def.Fields[name]
		if !identifierPattern.MatchString(name) {
			return fail("field %q is not a valid identifier", name)
		}
		if field.Type == Enum && (field.Enum == nil || len(field.Enum.Values) == 0) {
			return fail("enum field %q has no enum type", name)
		}
		if field.Type != Enum && field.Enum != nil {
			return fail("field %q of type %s carries an enum type", name, field.Type)
		}
		if def.Kind == Linked && field.Mandatory && !field.HasDefault() {
			return fail("linked resource field %q is mandatory without a default", name)
		}
	}

	if deletedAt, ok := def.Fields[DeletedAt]; ok {
		if deletedAt.Type != Timestamp || !deletedAt.Internal {
			return fail("%s must be an internal timestamp field", DeletedAt)
		}
	}
	return nil
}

// Get returns the definition of a registered resource.
func (r *Registry) Get(name string) (ResourceDefinition, error) {
	def, ok := r.defs[name]
	if !ok {
		return ResourceDefinition{}, errors.Wrapf(ErrUnknownResource, "%q", name)
	}
	return def, nil
}

// MustGet is Get for static wiring code where a miss is a programming error.
func (r *Registry) MustGet(name string) ResourceDefinition {
	def, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return def
}

// Names returns resource names in registration order.
func (r *Registry) Names() []string {
	return append([]string{}, r.order...)
}

// Definitions returns all definitions in registration order.
func (r *Registry) Definitions() []ResourceDefinition {
	return lo.Map(r.order, func(name string, _ int) ResourceDefinition { return r.defs[name] })
}
