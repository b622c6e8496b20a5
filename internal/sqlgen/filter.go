package sqlgen

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nrjais/aerostore/internal/schema"
	"github.com/nrjais/aerostore/pkg/api"
	"github.com/pkg/errors"
)

// ErrInvalidFilter is returned for search requests that cannot be compiled.
var ErrInvalidFilter = errors.New("invalid search filter")

// PageLimits bounds search pagination.
type PageLimits struct {
	DefaultPerPage int32
	MaxPerPage     int32
}

func invalid(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidFilter, format, args...)
}

// Search compiles an advanced search filter into a SELECT over the resource table.
// Every referenced column must exist on the resource, internal columns included.
func Search(def schema.ResourceDefinition, filter api.AdvancedSearchFilter, limits PageLimits) (Statement, error) {
	var st Statement
	var where strings.Builder

	for i, f := range filter.Filters {
		pred, err := st.predicate(def, f)
		if err != nil {
			return Statement{}, err
		}
		if i > 0 {
			op := api.And
			if f.ComparisonOperator != nil {
				op = *f.ComparisonOperator
			}
			switch op {
			case api.And:
				where.WriteString(" AND ")
			case api.Or:
				where.WriteString(" OR ")
			default:
				return Statement{}, invalid("unknown comparison operator %d", op)
			}
		}
		where.WriteString(pred)
	}

	sql := fmt.Sprintf("SELECT %s FROM %s", SelectList(def), def.TableName)
	if where.Len() > 0 {
		sql += " WHERE " + where.String()
	}

	order, err := orderBy(def, filter.OrderBy)
	if err != nil {
		return Statement{}, err
	}
	sql += order

	limit, offset := paginate(filter, limits)
	if limit > 0 {
		sql += " LIMIT " + st.bind(limit) + " OFFSET " + st.bind(offset)
	}
	st.SQL = sql
	return st, nil
}

// paginate returns LIMIT and OFFSET for a 1-based page number.
func paginate(filter api.AdvancedSearchFilter, limits PageLimits) (int64, int64) {
	perPage := filter.ResultsPerPage
	if perPage <= 0 {
		perPage = limits.DefaultPerPage
	}
	if limits.MaxPerPage > 0 && perPage > limits.MaxPerPage {
		perPage = limits.MaxPerPage
	}
	if perPage <= 0 {
		return 0, 0
	}
	page := filter.PageNumber
	if page < 1 {
		page = 1
	}
	return int64(perPage), int64(page-1) * int64(perPage)
}

func orderBy(def schema.ResourceDefinition, sorts []api.SortOption) (string, error) {
	if len(sorts) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(sorts))
	for _, s := range sorts {
		t, ok := def.ColumnType(s.SortField)
		if !ok {
			return "", invalid("cannot sort on unknown column %q", s.SortField)
		}
		if t.IsGeometry() || t.IsArray() {
			return "", invalid("cannot sort on %s column %q", t, s.SortField)
		}
		dir := "ASC"
		if s.SortOrder == api.Descending {
			dir = "DESC"
		}
		parts = append(parts, s.SortField+" "+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

func (s *Statement) predicate(def schema.ResourceDefinition, f api.FilterOption) (string, error) {
	col := f.SearchField
	t, ok := def.ColumnType(col)
	if !ok {
		return "", invalid("unknown column %q", col)
	}
	field := def.Fields[col]

	want := func(n int) error {
		if len(f.SearchValue) != n {
			return invalid("%s on %q needs %d value(s), got %d", f.PredicateOperator, col, n, len(f.SearchValue))
		}
		return nil
	}
	scalar := func(op string) (string, error) {
		if err := want(1); err != nil {
			return "", err
		}
		if t.IsGeometry() || t.IsArray() || t == schema.Bytea {
			return "", invalid("%s is not supported on %s column %q", f.PredicateOperator, t, col)
		}
		arg, err := parseValue(col, t, field.Enum, f.SearchValue[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", col, op, s.bind(arg)), nil
	}
	geo := func(fn string) (string, error) {
		if err := want(1); err != nil {
			return "", err
		}
		if !t.IsGeometry() {
			return "", invalid("%s needs a geometry column, %q is %s", f.PredicateOperator, col, t)
		}
		return fmt.Sprintf("%s(%s, ST_GeomFromText(%s, %d))", fn, col, s.bind(f.SearchValue[0]), schema.SRID), nil
	}

	switch f.PredicateOperator {
	case api.Equals:
		return scalar("=")
	case api.NotEquals:
		return scalar("<>")
	case api.Greater:
		return scalar(">")
	case api.GreaterOrEqual:
		return scalar(">=")
	case api.Less:
		return scalar("<")
	case api.LessOrEqual:
		return scalar("<=")
	case api.Like, api.ILike:
		if t != schema.Text && t != schema.Enum {
			return "", invalid("%s needs a text column, %q is %s", f.PredicateOperator, col, t)
		}
		if err := want(1); err != nil {
			return "", err
		}
		op := "LIKE"
		if f.PredicateOperator == api.ILike {
			op = "ILIKE"
		}
		return fmt.Sprintf("%s %s %s", col, op, s.bind(f.SearchValue[0])), nil
	case api.IsNull:
		if err := want(0); err != nil {
			return "", err
		}
		return col + " IS NULL", nil
	case api.IsNotNull:
		if err := want(0); err != nil {
			return "", err
		}
		return col + " IS NOT NULL", nil
	case api.In, api.NotIn:
		if len(f.SearchValue) == 0 {
			return "", invalid("%s on %q needs at least one value", f.PredicateOperator, col)
		}
		if t.IsGeometry() || t.IsArray() || t == schema.Bytea {
			return "", invalid("%s is not supported on %s column %q", f.PredicateOperator, t, col)
		}
		placeholders := make([]string, 0, len(f.SearchValue))
		for _, v := range f.SearchValue {
			arg, err := parseValue(col, t, field.Enum, v)
			if err != nil {
				return "", err
			}
			placeholders = append(placeholders, s.bind(arg))
		}
		op := "IN"
		if f.PredicateOperator == api.NotIn {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", col, op, strings.Join(placeholders, ", ")), nil
	case api.Between:
		if err := want(2); err != nil {
			return "", err
		}
		if t.IsGeometry() || t.IsArray() || t == schema.Bytea || t == schema.Bool {
			return "", invalid("BETWEEN is not supported on %s column %q", t, col)
		}
		from, err := parseValue(col, t, field.Enum, f.SearchValue[0])
		if err != nil {
			return "", err
		}
		to, err := parseValue(col, t, field.Enum, f.SearchValue[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", col, s.bind(from), s.bind(to)), nil
	case api.GeoIntersect:
		return geo("ST_Intersects")
	case api.GeoWithin:
		return geo("ST_Within")
	case api.GeoDisjoint:
		return geo("ST_Disjoint")
	default:
		return "", invalid("unknown predicate operator %d", f.PredicateOperator)
	}
}

// parseValue converts a textual search value to the driver type of the column.
func parseValue(col string, t schema.StorageType, enum *schema.EnumType, v string) (any, error) {
	bad := func(err error) error {
		return invalid("value %q for %s column %q: %v", v, t, col, err)
	}
	switch t {
	case schema.UUID:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, bad(err)
		}
		return id.String(), nil
	case schema.Int2, schema.Int4, schema.Int8:
		bits := map[schema.StorageType]int{schema.Int2: 16, schema.Int4: 32, schema.Int8: 64}[t]
		i, err := strconv.ParseInt(v, 10, bits)
		if err != nil {
			return nil, bad(err)
		}
		switch t {
		case schema.Int2:
			return int16(i), nil
		case schema.Int4:
			return int32(i), nil
		}
		return i, nil
	case schema.Float4:
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return nil, bad(err)
		}
		return float32(f), nil
	case schema.Numeric, schema.Float8:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, bad(err)
		}
		return f, nil
	case schema.Bool:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, bad(err)
		}
		return b, nil
	case schema.Timestamp:
		ts, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, bad(err)
		}
		return ts, nil
	case schema.Enum:
		if _, ok := enum.TagOf(v); ok {
			return v, nil
		}
		tag, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, bad(errors.Errorf("not a %s variant", enum.Name))
		}
		name, ok := enum.NameOf(int32(tag))
		if !ok {
			return nil, bad(errors.Errorf("not a %s variant", enum.Name))
		}
		return name, nil
	default:
		return v, nil
	}
}
