package schema

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ErrRowConversion is returned when a database row does not match the resource schema.
var ErrRowConversion = errors.New("row conversion failed")

// Row maps column names to the values returned by the driver.
type Row map[string]any

// RowReader reads typed values out of a Row. The first failure is kept and
// returned by Err; later reads return zero values.
type RowReader struct {
	def ResourceDefinition
	row Row
	err error
}

func NewRowReader(def ResourceDefinition, row Row) *RowReader {
	return &RowReader{def: def, row: row}
}

func (r *RowReader) Err() error {
	return r.err
}

func (r *RowReader) fail(col string, format string, args ...any) {
	if r.err == nil {
		r.err = errors.Wrapf(ErrRowConversion, "%s.%s: %s", r.def.TableName, col, fmt.Sprintf(format, args...))
	}
}

// raw returns the driver value of col; ok is false when the column is NULL.
func (r *RowReader) raw(col string) (any, bool) {
	if r.err != nil {
		return nil, false
	}
	v, exists := r.row[col]
	if !exists {
		r.fail(col, "column missing from row")
		return nil, false
	}
	return v, v != nil
}

func (r *RowReader) required(col string) (any, bool) {
	v, ok := r.raw(col)
	if !ok && r.err == nil {
		r.fail(col, "unexpected NULL")
	}
	return v, ok
}

func (r *RowReader) String(col string) string {
	v, ok := r.required(col)
	if !ok {
		return ""
	}
	return r.toString(col, v)
}

func (r *RowReader) OptString(col string) *string {
	v, ok := r.raw(col)
	if !ok {
		return nil
	}
	s := r.toString(col, v)
	return &s
}

func (r *RowReader) toString(col string, v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		r.fail(col, "expected text, got %T", v)
		return ""
	}
}

// UUID returns the textual form of a uuid column.
func (r *RowReader) UUID(col string) string {
	v, ok := r.required(col)
	if !ok {
		return ""
	}
	return r.toUUID(col, v)
}

func (r *RowReader) OptUUID(col string) *string {
	v, ok := r.raw(col)
	if !ok {
		return nil
	}
	s := r.toUUID(col, v)
	return &s
}

func (r *RowReader) toUUID(col string, v any) string {
	switch t := v.(type) {
	case [16]byte:
		return uuid.UUID(t).String()
	case uuid.UUID:
		return t.String()
	case pgtype.UUID:
		if !t.Valid {
			r.fail(col, "unexpected NULL uuid")
			return ""
		}
		return uuid.UUID(t.Bytes).String()
	case string:
		id, err := uuid.Parse(t)
		if err != nil {
			r.fail(col, "invalid uuid %q: %v", t, err)
			return ""
		}
		return id.String()
	default:
		r.fail(col, "expected uuid, got %T", v)
		return ""
	}
}

func (r *RowReader) Bool(col string) bool {
	v, ok := r.required(col)
	if !ok {
		return false
	}
	return r.toBool(col, v)
}

func (r *RowReader) OptBool(col string) *bool {
	v, ok := r.raw(col)
	if !ok {
		return nil
	}
	b := r.toBool(col, v)
	return &b
}

func (r *RowReader) toBool(col string, v any) bool {
	b, ok := v.(bool)
	if !ok {
		r.fail(col, "expected bool, got %T", v)
	}
	return b
}

func (r *RowReader) Int(col string) int64 {
	v, ok := r.required(col)
	if !ok {
		return 0
	}
	return r.toInt(col, v)
}

func (r *RowReader) OptInt(col string) *int64 {
	v, ok := r.raw(col)
	if !ok {
		return nil
	}
	i := r.toInt(col, v)
	return &i
}

func (r *RowReader) Int32(col string) int32 {
	return int32(r.Int(col))
}

func (r *RowReader) OptInt32(col string) *int32 {
	i := r.OptInt(col)
	if i == nil {
		return nil
	}
	v := int32(*i)
	return &v
}

func (r *RowReader) toInt(col string, v any) int64 {
	switch t := v.(type) {
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	default:
		r.fail(col, "expected integer, got %T", v)
		return 0
	}
}

func (r *RowReader) Float(col string) float64 {
	v, ok := r.required(col)
	if !ok {
		return 0
	}
	return r.toFloat(col, v)
}

func (r *RowReader) OptFloat(col string) *float64 {
	v, ok := r.raw(col)
	if !ok {
		return nil
	}
	f := r.toFloat(col, v)
	return &f
}

func (r *RowReader) toFloat(col string, v any) float64 {
	switch t := v.(type) {
	case float32:
		return float64(t)
	case float64:
		return t
	case int64:
		return float64(t)
	default:
		r.fail(col, "expected float, got %T", v)
		return 0
	}
}

func (r *RowReader) Bytes(col string) []byte {
	v, ok := r.raw(col)
	if !ok {
		return nil
	}
	b, isBytes := v.([]byte)
	if !isBytes {
		r.fail(col, "expected bytes, got %T", v)
	}
	return b
}

// Timestamp returns nil for NULL columns.
func (r *RowReader) Timestamp(col string) *timestamppb.Timestamp {
	v, ok := r.raw(col)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return timestamppb.New(t)
	case pgtype.Timestamptz:
		if !t.Valid {
			return nil
		}
		return timestamppb.New(t.Time)
	default:
		r.fail(col, "expected timestamp, got %T", v)
		return nil
	}
}

// Enum maps the persisted variant name back to its wire tag.
func (r *RowReader) Enum(col string) int32 {
	v, ok := r.required(col)
	if !ok {
		return 0
	}
	return r.toEnum(col, v)
}

func (r *RowReader) OptEnum(col string) *int32 {
	v, ok := r.raw(col)
	if !ok {
		return nil
	}
	tag := r.toEnum(col, v)
	return &tag
}

func (r *RowReader) toEnum(col string, v any) int32 {
	field, ok := r.def.Fields[col]
	if !ok || field.Enum == nil {
		r.fail(col, "column is not an enum")
		return 0
	}
	name := r.toString(col, v)
	if r.err != nil {
		return 0
	}
	tag, ok := field.Enum.TagOf(name)
	if !ok {
		r.fail(col, "unknown %s variant %q", field.Enum.Name, name)
		return 0
	}
	return tag
}

func (r *RowReader) Point(col string) GeoPointZ {
	p := r.OptPoint(col)
	if p == nil {
		r.fail(col, "unexpected NULL")
		return GeoPointZ{}
	}
	return *p
}

func (r *RowReader) OptPoint(col string) *GeoPointZ {
	b := r.Bytes(col)
	if b == nil {
		return nil
	}
	p, err := DecodePointZ(b)
	if err != nil {
		r.fail(col, "%v", err)
		return nil
	}
	return &p
}

func (r *RowReader) LineString(col string) GeoLineStringZ {
	l := r.OptLineString(col)
	if l == nil {
		r.fail(col, "unexpected NULL")
		return GeoLineStringZ{}
	}
	return *l
}

func (r *RowReader) OptLineString(col string) *GeoLineStringZ {
	b := r.Bytes(col)
	if b == nil {
		return nil
	}
	l, err := DecodeLineStringZ(b)
	if err != nil {
		r.fail(col, "%v", err)
		return nil
	}
	return &l
}

func (r *RowReader) Polygon(col string) GeoPolygonZ {
	p := r.OptPolygon(col)
	if p == nil {
		r.fail(col, "unexpected NULL")
		return GeoPolygonZ{}
	}
	return *p
}

func (r *RowReader) OptPolygon(col string) *GeoPolygonZ {
	b := r.Bytes(col)
	if b == nil {
		return nil
	}
	p, err := DecodePolygonZ(b)
	if err != nil {
		r.fail(col, "%v", err)
		return nil
	}
	return &p
}

// StringList reads text[] and uuid[] columns.
func (r *RowReader) StringList(col string) []string {
	v, ok := r.raw(col)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if str, ok := e.(string); ok {
				out = append(out, str)
				continue
			}
			out = append(out, r.toUUID(col, e))
		}
		return out
	case [][16]byte:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, uuid.UUID(e).String())
		}
		return out
	default:
		r.fail(col, "expected array, got %T", v)
		return nil
	}
}

func (r *RowReader) IntList(col string) []int64 {
	v, ok := r.raw(col)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []int64:
		return t
	case []any:
		out := make([]int64, 0, len(t))
		for _, e := range t {
			out = append(out, r.toInt(col, e))
		}
		return out
	default:
		r.fail(col, "expected integer array, got %T", v)
		return nil
	}
}

// IsArchived reports whether the row carries a non-NULL deleted_at column.
func (r Row) IsArchived() bool {
	v, ok := r[DeletedAt]
	return ok && v != nil
}
