// Package validation converts the fields of a data object into bound SQL parameters,
// reporting every invalid field in a single pass.
package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nrjais/aerostore/internal/schema"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrFieldAccessor marks a data object that cannot produce a declared field, or produces a
// value of the wrong kind. It is an implementation bug, never a user error.
var ErrFieldAccessor = errors.New("field accessor failed")

// FieldAccessor is implemented by every resource data type.
type FieldAccessor interface {
	FieldValue(name string) (schema.Value, error)
}

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// Result is the request-scoped outcome of a validation pass.
type Result struct {
	Success bool
	Errors  []FieldError
}

func (r *Result) add(field, format string, args ...any) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) finish() Result {
	r.Success = len(r.Errors) == 0
	return *r
}

// Param is one validated column value ready for binding.
type Param struct {
	Column string
	Type   schema.StorageType
	Arg    any
}

type Params []Param

func (p Params) Columns() []string {
	return lo.Map(p, func(param Param, _ int) string { return param.Column })
}

func (p Params) Args() []any {
	return lo.Map(p, func(param Param, _ int) any { return param.Arg })
}

func (p Params) Get(column string) (Param, bool) {
	return lo.Find(p, func(param Param) bool { return param.Column == column })
}

type mode int

const (
	// insert binds NULL for unset optional fields and leaves defaulted ones to the column default.
	insert mode = iota
	// update skips every unset field.
	update
	// masked binds exactly the fields named in a mask; unset means clear.
	masked
)

// Validate checks every writable field of data for an insert.
func Validate(def schema.ResourceDefinition, data FieldAccessor) (Params, Result, error) {
	return validate(def, data, writableFields(def), insert)
}

// ValidateUpdate checks data for an update. With an empty mask every provided or mandatory
// field is bound; otherwise only the masked fields are, and naming an unknown, internal or
// read-only field is a validation error.
func ValidateUpdate(def schema.ResourceDefinition, data FieldAccessor, mask []string) (Params, Result, error) {
	if len(mask) == 0 {
		return validate(def, data, writableFields(def), update)
	}

	var res Result
	var fields []string
	for _, name := range lo.Uniq(mask) {
		field, ok := def.Fields[name]
		switch {
		case !ok || field.Internal:
			res.add(name, "unknown field")
		case field.ReadOnly:
			res.add(name, "field is read-only")
		default:
			fields = append(fields, name)
		}
	}
	sort.Strings(fields)

	params, fieldRes, err := validate(def, data, fields, masked)
	if err != nil {
		return nil, Result{}, err
	}
	res.Errors = append(res.Errors, fieldRes.Errors...)
	return params, res.finish(), nil
}

func writableFields(def schema.ResourceDefinition) []string {
	return lo.Filter(def.FieldNames(), func(name string, _ int) bool {
		return def.Fields[name].Writable()
	})
}

func validate(def schema.ResourceDefinition, data FieldAccessor, fields []string, m mode) (Params, Result, error) {
	var res Result
	params := make(Params, 0, len(fields))

	for _, name := range fields {
		field := def.Fields[name]
		value, err := data.FieldValue(name)
		if err != nil {
			return nil, Result{}, errors.Wrapf(ErrFieldAccessor, "%s.%s: %v", def.Name, name, err)
		}

		if schema.IsNull(value) || isNullTime(value) {
			switch {
			case field.Mandatory && m == masked:
				res.add(name, "mandatory field cannot be cleared")
			case field.Mandatory && !field.HasDefault():
				res.add(name, "mandatory field is missing")
			case m == insert && !field.Mandatory, m == masked:
				params = append(params, Param{Column: name, Type: field.Type, Arg: nil})
			}
			continue
		}

		arg, ok, err := convert(&res, name, field, value)
		if err != nil {
			return nil, Result{}, errors.Wrapf(ErrFieldAccessor, "%s.%s: %v", def.Name, name, err)
		}
		if ok {
			params = append(params, Param{Column: name, Type: field.Type, Arg: arg})
		}
	}
	return params, res.finish(), nil
}

func isNullTime(v schema.Value) bool {
	t, ok := v.(schema.Time)
	return ok && t.Timestamp == nil
}

// convert checks one non-null value. ok is false when a validation error was recorded;
// err is set only when the value kind does not fit the storage type.
func convert(res *Result, name string, field schema.FieldDefinition, value schema.Value) (any, bool, error) {
	before := len(res.Errors)
	mismatch := func() (any, bool, error) {
		return nil, false, errors.Errorf("value %T does not fit storage type %s", value, field.Type)
	}

	var arg any
	switch field.Type {
	case schema.Text:
		v, ok := value.(schema.String)
		if !ok {
			return mismatch()
		}
		arg = string(v)

	case schema.UUID:
		v, ok := value.(schema.String)
		if !ok {
			return mismatch()
		}
		arg = checkUUID(res, name, string(v))

	case schema.Int2, schema.Int4, schema.Int8:
		v, ok := value.(schema.Int)
		if !ok {
			return mismatch()
		}
		arg = checkInt(res, name, field.Type, int64(v))

	case schema.Numeric, schema.Float8:
		switch v := value.(type) {
		case schema.Float:
			arg = checkFinite(res, name, float64(v))
		case schema.Int:
			arg = float64(v)
		default:
			return mismatch()
		}

	case schema.Float4:
		var f float64
		switch v := value.(type) {
		case schema.Float:
			f = checkFinite(res, name, float64(v))
		case schema.Int:
			f = float64(v)
		default:
			return mismatch()
		}
		if math.Abs(f) > math.MaxFloat32 {
			res.add(name, "value %g out of range for %s", f, field.Type)
		}
		arg = float32(f)

	case schema.Bool:
		v, ok := value.(schema.Bool)
		if !ok {
			return mismatch()
		}
		arg = bool(v)

	case schema.Bytea:
		v, ok := value.(schema.Bytes)
		if !ok {
			return mismatch()
		}
		arg = []byte(v)

	case schema.Timestamp:
		v, ok := value.(schema.Time)
		if !ok {
			return mismatch()
		}
		arg = checkTimestamp(res, name, v)

	case schema.PointZ:
		v, ok := value.(schema.Point)
		if !ok {
			return mismatch()
		}
		checkPoint(res, name, "", schema.GeoPointZ(v))
		arg = ewkb(res, name, value)

	case schema.LineStringZ:
		v, ok := value.(schema.LineString)
		if !ok {
			return mismatch()
		}
		checkLineString(res, name, "", schema.GeoLineStringZ(v), 2)
		arg = ewkb(res, name, value)

	case schema.PolygonZ:
		v, ok := value.(schema.Polygon)
		if !ok {
			return mismatch()
		}
		checkPolygon(res, name, schema.GeoPolygonZ(v))
		arg = ewkb(res, name, value)

	case schema.Enum:
		v, ok := value.(schema.Int)
		if !ok {
			return mismatch()
		}
		variant, known := field.Enum.NameOf(int32(v))
		if !known || int64(int32(v)) != int64(v) {
			res.add(name, "unknown %s variant %d", field.Enum.Name, int64(v))
		}
		arg = variant

	case schema.TextArray:
		v, ok := value.(schema.StringList)
		if !ok {
			return mismatch()
		}
		arg = []string(v)

	case schema.UUIDArray:
		v, ok := value.(schema.StringList)
		if !ok {
			return mismatch()
		}
		ids := make([]string, 0, len(v))
		for i, s := range v {
			ids = append(ids, checkUUID(res, fmt.Sprintf("%s[%d]", name, i), s))
		}
		arg = ids

	case schema.Int8Array:
		v, ok := value.(schema.IntList)
		if !ok {
			return mismatch()
		}
		arg = []int64(v)

	default:
		return mismatch()
	}

	if len(res.Errors) > before {
		return nil, false, nil
	}
	return arg, true, nil
}

func checkUUID(res *Result, name, s string) string {
	id, err := uuid.Parse(s)
	if err != nil {
		res.add(name, "invalid uuid %q", s)
		return ""
	}
	return id.String()
}

func checkInt(res *Result, name string, t schema.StorageType, v int64) any {
	switch t {
	case schema.Int2:
		if v < math.MinInt16 || v > math.MaxInt16 {
			res.add(name, "value %d out of range for %s", v, t)
		}
		return int16(v)
	case schema.Int4:
		if v < math.MinInt32 || v > math.MaxInt32 {
			res.add(name, "value %d out of range for %s", v, t)
		}
		return int32(v)
	default:
		return v
	}
}

func checkFinite(res *Result, name string, f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		res.add(name, "value %g is not a finite number", f)
	}
	return f
}

func checkTimestamp(res *Result, name string, v schema.Time) time.Time {
	if err := v.CheckValid(); err != nil {
		res.add(name, "invalid timestamp: %v", err)
		return time.Time{}
	}
	return v.AsTime()
}

// checkPoint records one error per out-of-range point.
func checkPoint(res *Result, name, where string, p schema.GeoPointZ) {
	var problems []string
	if math.IsNaN(p.Longitude) || p.Longitude < -180 || p.Longitude > 180 {
		problems = append(problems, fmt.Sprintf("longitude %g not in [-180, 180]", p.Longitude))
	}
	if math.IsNaN(p.Latitude) || p.Latitude < -90 || p.Latitude > 90 {
		problems = append(problems, fmt.Sprintf("latitude %g not in [-90, 90]", p.Latitude))
	}
	if math.IsNaN(p.Altitude) || math.IsInf(p.Altitude, 0) {
		problems = append(problems, fmt.Sprintf("altitude %g is not finite", p.Altitude))
	}
	if len(problems) == 0 {
		return
	}
	res.add(name, "%s%s", where, strings.Join(problems, ", "))
}

func checkLineString(res *Result, name, where string, l schema.GeoLineStringZ, minPoints int) {
	if len(l.Points) < minPoints {
		res.add(name, "%sneeds at least %d points, got %d", where, minPoints, len(l.Points))
	}
	for i, p := range l.Points {
		checkPoint(res, name, fmt.Sprintf("%spoint %d: ", where, i), p)
	}
}

func checkPolygon(res *Result, name string, poly schema.GeoPolygonZ) {
	if len(poly.Rings) == 0 {
		res.add(name, "polygon needs at least one ring")
		return
	}
	for i, ring := range poly.Rings {
		where := fmt.Sprintf("ring %d ", i)
		checkLineString(res, name, where, ring, 4)
		if len(ring.Points) >= 4 && ring.Points[0] != ring.Points[len(ring.Points)-1] {
			res.add(name, "%sis not closed", where)
		}
	}
}

func ewkb(res *Result, name string, v schema.Value) []byte {
	b, err := schema.EncodeEWKB(v)
	if err != nil {
		res.add(name, "invalid geometry: %v", err)
		return nil
	}
	return b
}
