// Package store implements the generic resource operations once, over resource descriptors.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/nrjais/aerostore/internal/db"
	"github.com/nrjais/aerostore/internal/resource"
	"github.com/nrjais/aerostore/internal/schema"
	"github.com/nrjais/aerostore/internal/sqlgen"
	"github.com/nrjais/aerostore/internal/validation"
	"github.com/nrjais/aerostore/pkg/api"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrAlreadyArchived is returned when deleting a soft-deleted record. Delete is not idempotent.
	ErrAlreadyArchived = errors.New("already archived")
	ErrConflict        = errors.New("already exists")
	ErrInvalidFilter   = sqlgen.ErrInvalidFilter
)

// classify maps constraint violations to store errors; other errors are wrapped as is.
func classify(err error, format string, args ...any) error {
	switch {
	case db.IsUniqueViolation(err):
		return errors.Wrapf(ErrConflict, format+": %v", append(args, err)...)
	case db.IsForeignKeyViolation(err):
		return errors.Wrapf(ErrNotFound, format+": referenced record missing: %v", append(args, err)...)
	default:
		return errors.Wrapf(err, format, args...)
	}
}

func queryRows(ctx context.Context, q db.Querier, st sqlgen.Statement) ([]schema.Row, error) {
	rows, err := q.Query(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, err
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	out := make([]schema.Row, 0, len(maps))
	for _, m := range maps {
		out = append(out, schema.Row(m))
	}
	return out, nil
}

// Repository runs the generic operations of one simple or simple-linked resource.
type Repository[D any] struct {
	pool   db.PostgresPool
	desc   resource.Descriptor[D]
	limits sqlgen.PageLimits
}

func NewRepository[D any](pool db.PostgresPool, desc resource.Descriptor[D], limits sqlgen.PageLimits) *Repository[D] {
	return &Repository[D]{pool: pool, desc: desc, limits: limits}
}

func (r *Repository[D]) Descriptor() resource.Descriptor[D] {
	return r.desc
}

func (r *Repository[D]) def() schema.ResourceDefinition {
	return r.desc.Definition
}

func (r *Repository[D]) CreateTable(ctx context.Context) error {
	return CreateTable(ctx, r.pool, r.def())
}

func (r *Repository[D]) DropTable(ctx context.Context) error {
	return DropTable(ctx, r.pool, r.def())
}

func (r *Repository[D]) toObjects(rows []schema.Row) ([]resource.Object[D], error) {
	objs := make([]resource.Object[D], 0, len(rows))
	for _, row := range rows {
		obj, err := r.desc.ObjectFromRow(row)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

// GetByID returns the record with every id column of obj. Archived records are returned too.
func (r *Repository[D]) GetByID(ctx context.Context, obj resource.Object[D]) (resource.Object[D], error) {
	ids, err := obj.IDMap()
	if err != nil {
		return resource.Object[D]{}, err
	}
	st, err := sqlgen.SelectByIDs(r.def(), ids)
	if err != nil {
		return resource.Object[D]{}, err
	}
	rows, err := queryRows(ctx, r.pool, st)
	if err != nil {
		return resource.Object[D]{}, errors.Wrapf(err, "failed to get %s", r.def().Name)
	}
	if len(rows) == 0 {
		return resource.Object[D]{}, errors.Wrapf(ErrNotFound, "%s %v", r.def().Name, ids)
	}
	return r.desc.ObjectFromRow(rows[0])
}

// GetForIDs returns every record matching the id columns present in obj.
func (r *Repository[D]) GetForIDs(ctx context.Context, obj resource.Object[D]) ([]resource.Object[D], error) {
	ids, err := obj.PartialIDMap()
	if err != nil {
		return nil, err
	}
	st, err := sqlgen.SelectByIDs(r.def(), ids)
	if err != nil {
		return nil, err
	}
	rows, err := queryRows(ctx, r.pool, st)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s for %v", r.def().Name, ids)
	}
	return r.toObjects(rows)
}

// GetWhereIDs returns the simple records whose id is in ids.
func (r *Repository[D]) GetWhereIDs(ctx context.Context, ids []string) ([]resource.Object[D], error) {
	st, err := sqlgen.SelectWhereAny(r.def(), r.def().IDColumn(), ids)
	if err != nil {
		return nil, err
	}
	rows, err := queryRows(ctx, r.pool, st)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s by ids", r.def().Name)
	}
	return r.toObjects(rows)
}

func (r *Repository[D]) Search(ctx context.Context, filter api.AdvancedSearchFilter) ([]resource.Object[D], error) {
	st, err := sqlgen.Search(r.def(), filter, r.limits)
	if err != nil {
		return nil, err
	}
	zap.S().Debugw("Searching", "resource", r.def().Name, "sql", st.SQL)
	rows, err := queryRows(ctx, r.pool, st)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search %s", r.def().Name)
	}
	return r.toObjects(rows)
}

// Insert validates and stores obj. A failed validation is returned as data with a nil object.
func (r *Repository[D]) Insert(ctx context.Context, obj resource.Object[D]) (*resource.Object[D], validation.Result, error) {
	if obj.Data == nil {
		return nil, validation.Result{}, errors.Wrapf(resource.ErrNoData, "insert %s", r.def().Name)
	}
	params, res, err := validation.Validate(r.def(), r.desc.Accessor(obj.Data))
	if err != nil || !res.Success {
		return nil, res, err
	}

	var ids map[string]string
	if r.def().Kind != schema.Simple {
		if ids, err = obj.IDMap(); err != nil {
			return nil, validation.Result{}, err
		}
	}
	st, err := sqlgen.Insert(r.def(), ids, params)
	if err != nil {
		return nil, validation.Result{}, err
	}

	rows, err := queryRows(ctx, r.pool, st)
	if err != nil {
		return nil, validation.Result{}, classify(err, "failed to insert %s", r.def().Name)
	}
	if len(rows) != 1 {
		return nil, validation.Result{}, errors.Errorf("insert %s returned %d rows", r.def().Name, len(rows))
	}
	inserted, err := r.desc.ObjectFromRow(rows[0])
	if err != nil {
		return nil, validation.Result{}, err
	}
	zap.S().Debugw("Inserted", "resource", r.def().Name, "ids", inserted.IDs)
	return &inserted, res, nil
}

// Update validates obj and writes the masked fields, or every provided field when mask is empty.
func (r *Repository[D]) Update(ctx context.Context, obj resource.Object[D], mask []string) (*resource.Object[D], validation.Result, error) {
	if obj.Data == nil {
		return nil, validation.Result{}, errors.Wrapf(resource.ErrNoData, "update %s", r.def().Name)
	}
	ids, err := obj.IDMap()
	if err != nil {
		return nil, validation.Result{}, err
	}
	params, res, err := validation.ValidateUpdate(r.def(), r.desc.Accessor(obj.Data), mask)
	if err != nil || !res.Success {
		return nil, res, err
	}

	if len(params) == 0 && !r.def().HasUpdatedAt() {
		current, err := r.GetByID(ctx, obj)
		if err != nil {
			return nil, validation.Result{}, err
		}
		return &current, res, nil
	}

	st, err := sqlgen.Update(r.def(), ids, params)
	if err != nil {
		return nil, validation.Result{}, err
	}
	rows, err := queryRows(ctx, r.pool, st)
	if err != nil {
		return nil, validation.Result{}, classify(err, "failed to update %s", r.def().Name)
	}
	if len(rows) == 0 {
		return nil, validation.Result{}, errors.Wrapf(ErrNotFound, "%s %v", r.def().Name, ids)
	}
	updated, err := r.desc.ObjectFromRow(rows[0])
	if err != nil {
		return nil, validation.Result{}, err
	}
	return &updated, res, nil
}

// Delete archives the record when the resource declares deleted_at and removes it otherwise.
// Deleting an archived record fails with ErrAlreadyArchived.
func (r *Repository[D]) Delete(ctx context.Context, obj resource.Object[D]) error {
	ids, err := obj.IDMap()
	if err != nil {
		return err
	}
	if !r.def().IsArchivable() {
		return hardDelete(ctx, r.pool, r.def(), ids)
	}

	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		check, err := sqlgen.SoftDeleteCheck(r.def(), ids)
		if err != nil {
			return err
		}
		rows, err := queryRows(ctx, tx, check)
		if err != nil {
			return errors.Wrapf(err, "failed to lock %s", r.def().Name)
		}
		if len(rows) == 0 {
			return errors.Wrapf(ErrNotFound, "%s %v", r.def().Name, ids)
		}
		if rows[0].IsArchived() {
			return errors.Wrapf(ErrAlreadyArchived, "%s %v", r.def().Name, ids)
		}

		st, err := sqlgen.SoftDelete(r.def(), ids)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, st.SQL, st.Args...)
		if err != nil {
			return errors.Wrapf(err, "failed to archive %s", r.def().Name)
		}
		if tag.RowsAffected() == 0 {
			return errors.Wrapf(ErrNotFound, "%s %v", r.def().Name, ids)
		}
		zap.S().Debugw("Archived", "resource", r.def().Name, "ids", ids)
		return nil
	})
}

func hardDelete(ctx context.Context, q db.Querier, def schema.ResourceDefinition, ids map[string]string) error {
	st, err := sqlgen.HardDelete(def, ids)
	if err != nil {
		return err
	}
	tag, err := q.Exec(ctx, st.SQL, st.Args...)
	if err != nil {
		return errors.Wrapf(err, "failed to delete %s", def.Name)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(ErrNotFound, "%s %v", def.Name, ids)
	}
	return nil
}
