package sqlgen

import (
	"fmt"
	"strings"

	"github.com/nrjais/aerostore/internal/schema"
	"github.com/nrjais/aerostore/internal/validation"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var (
	// ErrUnknownColumn is returned when a statement references a column the resource does not have.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrMissingIDs is returned when a statement needs id columns that were not supplied.
	ErrMissingIDs = errors.New("missing id columns")
)

// Statement is a parameterized query and its arguments.
type Statement struct {
	SQL  string
	Args []any
}

func (s *Statement) bind(arg any) string {
	s.Args = append(s.Args, arg)
	return fmt.Sprintf("$%d", len(s.Args))
}

// bindColumn binds a value for column, wrapping geometry in ST_GeomFromEWKB.
func (s *Statement) bindColumn(t schema.StorageType, arg any) string {
	placeholder := s.bind(arg)
	if t.IsGeometry() {
		return "ST_GeomFromEWKB(" + placeholder + ")"
	}
	return placeholder
}

func selectColumn(def schema.ResourceDefinition, col string) string {
	if t, _ := def.ColumnType(col); t.IsGeometry() {
		return fmt.Sprintf("ST_AsEWKB(%s) AS %s", col, col)
	}
	return col
}

// SelectList returns every column of the resource, geometry read back as EWKB.
func SelectList(def schema.ResourceDefinition) string {
	return strings.Join(lo.Map(def.Columns(), func(col string, _ int) string {
		return selectColumn(def, col)
	}), ", ")
}

// whereIDs appends equality predicates for the given id columns in definition order.
// With full set, every id column must be present.
func (s *Statement) whereIDs(def schema.ResourceDefinition, ids map[string]string, full bool) (string, error) {
	for col := range ids {
		if !def.IsIDColumn(col) {
			return "", errors.Wrapf(ErrUnknownColumn, "%s is not an id column of %s", col, def.Name)
		}
	}

	var preds []string
	var missing []string
	for _, col := range def.IDColumns {
		v, ok := ids[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		preds = append(preds, col+" = "+s.bind(v))
	}
	if len(preds) == 0 || (full && len(missing) > 0) {
		return "", errors.Wrapf(ErrMissingIDs, "%s needs %v", def.Name, missing)
	}
	return strings.Join(preds, " AND "), nil
}

// Insert builds the INSERT for the validated params. Id values are included for linked
// resources; simple resources rely on the generated key.
func Insert(def schema.ResourceDefinition, ids map[string]string, params validation.Params) (Statement, error) {
	var st Statement
	var cols, values []string

	if def.Kind != schema.Simple {
		for _, col := range def.IDColumns {
			v, ok := ids[col]
			if !ok {
				return Statement{}, errors.Wrapf(ErrMissingIDs, "%s needs %s", def.Name, col)
			}
			cols = append(cols, col)
			values = append(values, st.bind(v))
		}
	}

	for _, p := range params {
		if !def.HasColumn(p.Column) {
			return Statement{}, errors.Wrapf(ErrUnknownColumn, "%s.%s", def.Name, p.Column)
		}
		cols = append(cols, p.Column)
		values = append(values, st.bindColumn(p.Type, p.Arg))
	}

	if len(cols) == 0 {
		st.SQL = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING %s", def.TableName, SelectList(def))
		return st, nil
	}
	st.SQL = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		def.TableName, strings.Join(cols, ", "), strings.Join(values, ", "), SelectList(def))
	return st, nil
}

// Update builds an UPDATE whose SET clause is restricted to params. updated_at is refreshed
// when declared; archived rows are never updated.
func Update(def schema.ResourceDefinition, ids map[string]string, params validation.Params) (Statement, error) {
	var st Statement
	var sets []string
	for _, p := range params {
		if !def.HasColumn(p.Column) || def.IsIDColumn(p.Column) {
			return Statement{}, errors.Wrapf(ErrUnknownColumn, "%s.%s", def.Name, p.Column)
		}
		sets = append(sets, p.Column+" = "+st.bindColumn(p.Type, p.Arg))
	}
	if def.HasUpdatedAt() {
		sets = append(sets, schema.UpdatedAt+" = NOW()")
	}
	if len(sets) == 0 {
		return Statement{}, errors.Errorf("update of %s has no columns", def.Name)
	}

	where, err := st.whereIDs(def, ids, true)
	if err != nil {
		return Statement{}, err
	}
	if def.IsArchivable() {
		where += " AND " + schema.DeletedAt + " IS NULL"
	}

	st.SQL = fmt.Sprintf("UPDATE %s SET %s WHERE %s RETURNING %s",
		def.TableName, strings.Join(sets, ", "), where, SelectList(def))
	return st, nil
}

// SelectByIDs selects rows matching the given id columns; linked resources may pass a subset.
func SelectByIDs(def schema.ResourceDefinition, ids map[string]string) (Statement, error) {
	var st Statement
	where, err := st.whereIDs(def, ids, def.Kind == schema.Simple)
	if err != nil {
		return Statement{}, err
	}
	st.SQL = fmt.Sprintf("SELECT %s FROM %s WHERE %s", SelectList(def), def.TableName, where)
	return st, nil
}

// SelectWhereAny selects rows whose column matches any of values.
func SelectWhereAny(def schema.ResourceDefinition, column string, values []string) (Statement, error) {
	if !def.HasColumn(column) {
		return Statement{}, errors.Wrapf(ErrUnknownColumn, "%s.%s", def.Name, column)
	}
	var st Statement
	placeholder := st.bind(values)
	st.SQL = fmt.Sprintf("SELECT %s FROM %s WHERE %s = ANY(%s)", SelectList(def), def.TableName, column, placeholder)
	return st, nil
}

// SoftDeleteCheck locks the row and reads its deletion timestamp.
func SoftDeleteCheck(def schema.ResourceDefinition, ids map[string]string) (Statement, error) {
	var st Statement
	where, err := st.whereIDs(def, ids, true)
	if err != nil {
		return Statement{}, err
	}
	st.SQL = fmt.Sprintf("SELECT %s FROM %s WHERE %s FOR UPDATE", schema.DeletedAt, def.TableName, where)
	return st, nil
}

func SoftDelete(def schema.ResourceDefinition, ids map[string]string) (Statement, error) {
	var st Statement
	where, err := st.whereIDs(def, ids, true)
	if err != nil {
		return Statement{}, err
	}
	st.SQL = fmt.Sprintf("UPDATE %s SET %s = NOW() WHERE %s AND %s IS NULL",
		def.TableName, schema.DeletedAt, where, schema.DeletedAt)
	return st, nil
}

func HardDelete(def schema.ResourceDefinition, ids map[string]string) (Statement, error) {
	return deleteWhere(def, ids, true)
}

// DeleteForIDs deletes every row matching a subset of the id columns.
func DeleteForIDs(def schema.ResourceDefinition, ids map[string]string) (Statement, error) {
	return deleteWhere(def, ids, false)
}

func deleteWhere(def schema.ResourceDefinition, ids map[string]string, full bool) (Statement, error) {
	var st Statement
	where, err := st.whereIDs(def, ids, full)
	if err != nil {
		return Statement{}, err
	}
	st.SQL = fmt.Sprintf("DELETE FROM %s WHERE %s", def.TableName, where)
	return st, nil
}

// LinkInsert returns the idempotent insert of one link row; arguments follow IDColumns order.
func LinkInsert(def schema.ResourceDefinition) string {
	placeholders := lo.Map(def.IDColumns, func(_ string, i int) string { return fmt.Sprintf("$%d", i+1) })
	cols := strings.Join(def.IDColumns, ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		def.TableName, cols, strings.Join(placeholders, ", "), cols)
}

// Unlink deletes the links from owner to any of others.
func Unlink(def schema.ResourceDefinition, owner, other string, ownerID string, otherIDs []string) (Statement, error) {
	if !def.IsIDColumn(owner) || !def.IsIDColumn(other) {
		return Statement{}, errors.Wrapf(ErrUnknownColumn, "%s or %s in %s", owner, other, def.Name)
	}
	var st Statement
	st.SQL = fmt.Sprintf("DELETE FROM %s WHERE %s = %s AND %s = ANY(%s)",
		def.TableName, owner, st.bind(ownerID), other, st.bind(otherIDs))
	return st, nil
}

// LinkedIDs selects the other-side ids linked to owner.
func LinkedIDs(def schema.ResourceDefinition, owner, other string, ownerID string) (Statement, error) {
	if !def.IsIDColumn(owner) || !def.IsIDColumn(other) {
		return Statement{}, errors.Wrapf(ErrUnknownColumn, "%s or %s in %s", owner, other, def.Name)
	}
	var st Statement
	st.SQL = fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s ORDER BY %s",
		other, def.TableName, owner, st.bind(ownerID), other)
	return st, nil
}
