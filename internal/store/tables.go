package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/nrjais/aerostore/internal/db"
	"github.com/nrjais/aerostore/internal/schema"
	"github.com/nrjais/aerostore/internal/sqlgen"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// CreateTable creates the resource table in one transaction and its declared indices in a
// second one. An index failure rolls back only the indices; the table stays.
func CreateTable(ctx context.Context, pool db.PostgresPool, def schema.ResourceDefinition) error {
	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, sqlgen.CreateTable(def))
		return err
	})
	if err != nil {
		return errors.Wrapf(err, "failed to create table %s", def.TableName)
	}
	zap.S().Infow("Table created", "table", def.TableName, "kind", def.Kind.String())
	return createIndices(ctx, pool, def)
}

// createIndices runs the declared index and constraint statements in one transaction. The
// statements are idempotent, so they are re-run for tables that already exist.
func createIndices(ctx context.Context, pool db.PostgresPool, def schema.ResourceDefinition) error {
	if len(def.TableIndices) == 0 {
		return nil
	}
	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		for _, stmt := range def.TableIndices {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return errors.Wrapf(err, "index statement %q", stmt)
			}
		}
		return nil
	})
	if err != nil {
		zap.S().Errorw("Failed to create table indices, table kept", "table", def.TableName, "error", err)
		return errors.Wrapf(err, "failed to create indices for %s", def.TableName)
	}
	return nil
}

func DropTable(ctx context.Context, pool db.PostgresPool, def schema.ResourceDefinition) error {
	if _, err := pool.Exec(ctx, sqlgen.DropTable(def)); err != nil {
		return errors.Wrapf(err, "failed to drop table %s", def.TableName)
	}
	zap.S().Infow("Table dropped", "table", def.TableName)
	return nil
}

func tableExists(ctx context.Context, pool db.PostgresPool, table string) (bool, error) {
	var exists bool
	if err := pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", table).Scan(&exists); err != nil {
		return false, errors.Wrapf(err, "failed to check table %s", table)
	}
	return exists, nil
}

// InitTables creates every missing table in registry order and ensures the indices of existing
// ones. With rebuild set, all tables are dropped first in reverse order.
func InitTables(ctx context.Context, pool db.PostgresPool, reg *schema.Registry, rebuild bool) error {
	defs := reg.Definitions()
	if rebuild {
		for _, def := range lo.Reverse(append([]schema.ResourceDefinition{}, defs...)) {
			if err := DropTable(ctx, pool, def); err != nil {
				return err
			}
		}
	}

	for _, def := range defs {
		exists, err := tableExists(ctx, pool, def.TableName)
		if err != nil {
			return err
		}
		if exists {
			zap.S().Debugw("Table exists, ensuring indices", "table", def.TableName)
			if err := createIndices(ctx, pool, def); err != nil {
				return err
			}
			continue
		}
		if err := CreateTable(ctx, pool, def); err != nil {
			return err
		}
	}
	return nil
}
