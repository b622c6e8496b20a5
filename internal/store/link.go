package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nrjais/aerostore/internal/db"
	"github.com/nrjais/aerostore/internal/resource"
	"github.com/nrjais/aerostore/internal/schema"
	"github.com/nrjais/aerostore/internal/sqlgen"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// LinkRepository manages a pure join table between an owner and an other resource.
type LinkRepository struct {
	pool  db.PostgresPool
	def   schema.ResourceDefinition
	owner string
	other string
}

func NewLinkRepository(pool db.PostgresPool, def schema.ResourceDefinition, owner, other string) (*LinkRepository, error) {
	if def.Kind != schema.Linked {
		return nil, errors.Wrapf(schema.ErrInvalidDefinition, "%s is not a linked resource", def.Name)
	}
	if !def.IsIDColumn(owner) || !def.IsIDColumn(other) || owner == other {
		return nil, errors.Wrapf(schema.ErrInvalidDefinition, "%s does not link %s to %s", def.Name, owner, other)
	}
	return &LinkRepository{pool: pool, def: def, owner: owner, other: other}, nil
}

func (r *LinkRepository) Definition() schema.ResourceDefinition {
	return r.def
}

func (r *LinkRepository) CreateTable(ctx context.Context) error {
	return CreateTable(ctx, r.pool, r.def)
}

func (r *LinkRepository) DropTable(ctx context.Context) error {
	return DropTable(ctx, r.pool, r.def)
}

func canonicalIDs(ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.Wrapf(resource.ErrInvalidID, "%q", raw)
		}
		out = append(out, id.String())
	}
	return out, nil
}

func (r *LinkRepository) canonical(ownerID string, otherIDs []string) (string, []string, error) {
	owner, err := canonicalIDs([]string{ownerID})
	if err != nil {
		return "", nil, err
	}
	others, err := canonicalIDs(otherIDs)
	if err != nil {
		return "", nil, err
	}
	return owner[0], others, nil
}

// LinkIDs links owner to every id in otherIDs in one transaction. Existing pairs are kept,
// so linking is idempotent. With replace set, all previous links of owner are removed first.
func (r *LinkRepository) LinkIDs(ctx context.Context, ownerID string, otherIDs []string, replace bool) error {
	owner, others, err := r.canonical(ownerID, otherIDs)
	if err != nil {
		return err
	}

	err = db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if replace {
			st, err := sqlgen.DeleteForIDs(r.def, map[string]string{r.owner: owner})
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, st.SQL, st.Args...); err != nil {
				return errors.Wrapf(err, "failed to clear links of %s", owner)
			}
		}

		insert := sqlgen.LinkInsert(r.def)
		for _, other := range others {
			if _, err := tx.Exec(ctx, insert, r.args(owner, other)...); err != nil {
				return classify(err, "failed to link %s to %s", owner, other)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	zap.S().Debugw("Linked", "resource", r.def.Name, "owner", owner, "count", len(others), "replace", replace)
	return nil
}

// args orders owner and other by the table's id columns.
func (r *LinkRepository) args(owner, other string) []any {
	args := make([]any, 0, len(r.def.IDColumns))
	for _, col := range r.def.IDColumns {
		switch col {
		case r.owner:
			args = append(args, owner)
		case r.other:
			args = append(args, other)
		}
	}
	return args
}

// UnlinkIDs removes the links from owner to otherIDs; missing links are ignored.
func (r *LinkRepository) UnlinkIDs(ctx context.Context, ownerID string, otherIDs []string) error {
	owner, others, err := r.canonical(ownerID, otherIDs)
	if err != nil {
		return err
	}
	st, err := sqlgen.Unlink(r.def, r.owner, r.other, owner, others)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, st.SQL, st.Args...); err != nil {
		return errors.Wrapf(err, "failed to unlink %s", owner)
	}
	return nil
}

// DeleteForIDs removes every link matching a subset of the id columns.
func (r *LinkRepository) DeleteForIDs(ctx context.Context, ids map[string]string) error {
	st, err := sqlgen.DeleteForIDs(r.def, ids)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, st.SQL, st.Args...); err != nil {
		return errors.Wrapf(err, "failed to delete %s rows", r.def.Name)
	}
	return nil
}

// GetLinkedIDs returns the other-side ids linked to owner.
func (r *LinkRepository) GetLinkedIDs(ctx context.Context, ownerID string) ([]string, error) {
	owner, _, err := r.canonical(ownerID, nil)
	if err != nil {
		return nil, err
	}
	st, err := sqlgen.LinkedIDs(r.def, r.owner, r.other, owner)
	if err != nil {
		return nil, err
	}
	rows, err := queryRows(ctx, r.pool, st)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get linked ids of %s", owner)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		reader := schema.NewRowReader(r.def, row)
		id := reader.UUID(r.other)
		if err := reader.Err(); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetLinked returns the other-side records linked to owner.
func GetLinked[D any](ctx context.Context, links *LinkRepository, other *Repository[D], ownerID string) ([]resource.Object[D], error) {
	ids, err := links.GetLinkedIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return other.GetWhereIDs(ctx, ids)
}
