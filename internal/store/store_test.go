package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nrjais/aerostore/internal/resource"
	"github.com/nrjais/aerostore/internal/schema"
	"github.com/nrjais/aerostore/internal/sqlgen"
	"github.com/nrjais/aerostore/pkg/api"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var padStatus = schema.NewEnumType("PadStatus", map[int32]string{0: "AVAILABLE", 1: "CLOSED"})

type padData struct {
	Name   string
	Status int32
	Seats  *int64
	Geo    *schema.GeoPointZ
}

var padDesc = resource.Descriptor[padData]{
	Definition: schema.ResourceDefinition{
		Name:      "pad",
		Kind:      schema.Simple,
		TableName: "pad",
		IDColumns: []string{"pad_id"},
		Fields: map[string]schema.FieldDefinition{
			"name":       schema.NewField(schema.Text, true),
			"status":     schema.NewEnumField(padStatus, true).WithDefault("'AVAILABLE'"),
			"seats":      schema.NewField(schema.Int2, false),
			"geo":        schema.NewField(schema.PointZ, false),
			"created_at": schema.NewField(schema.Timestamp, true).WithDefault("NOW()").SetReadOnly(),
			"deleted_at": schema.NewField(schema.Timestamp, false).SetInternal(),
		},
		TableIndices: []string{
			"CREATE INDEX IF NOT EXISTS pad_geo_idx ON pad USING GIST (geo)",
			"CREATE UNIQUE INDEX IF NOT EXISTS pad_name_idx ON pad (name)",
		},
	},
	Values: func(d *padData) resource.Fields {
		return resource.Fields{
			"name":   schema.String(d.Name),
			"status": schema.Int(d.Status),
			"seats":  schema.OptInt(d.Seats),
			"geo":    schema.OptPoint(d.Geo),
		}
	},
	FromRow: func(r *schema.RowReader) *padData {
		return &padData{
			Name:   r.String("name"),
			Status: r.Enum("status"),
			Seats:  r.OptInt("seats"),
			Geo:    r.OptPoint("geo"),
		}
	},
}

var groupPadDef = schema.ResourceDefinition{
	Name:      "group_pad",
	Kind:      schema.Linked,
	TableName: "group_pad",
	IDColumns: []string{"group_id", "pad_id"},
	Fields:    map[string]schema.FieldDefinition{},
}

var padColumns = padDesc.Definition.Columns()

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func padRow(mock pgxmock.PgxPoolIface, id uuid.UUID, name, status string, deletedAt any) *pgxmock.Rows {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return mock.NewRows(padColumns).AddRow([16]byte(id), created, deletedAt, nil, name, int16(4), status)
}

func TestRepository_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewRepository(mock, padDesc, sqlgen.PageLimits{DefaultPerPage: 10})
	id := uuid.New()

	insertSQL := "INSERT INTO pad (geo, name, seats, status) VALUES (ST_GeomFromEWKB($1), $2, $3, $4) RETURNING " +
		sqlgen.SelectList(padDesc.Definition)
	seats := int64(4)
	mock.ExpectQuery(insertSQL).
		WithArgs(nil, "north", int16(4), "CLOSED").
		WillReturnRows(padRow(mock, id, "north", "CLOSED", nil))

	in := &padData{Name: "north", Status: 1, Seats: &seats}
	inserted, res, err := repo.Insert(ctx, padDesc.FromData(in))
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotNil(t, inserted)
	assert.Equal(t, id.String(), inserted.IDs["pad_id"])

	mock.ExpectQuery("SELECT " + sqlgen.SelectList(padDesc.Definition) + " FROM pad WHERE pad_id = $1").
		WithArgs(id.String()).
		WillReturnRows(padRow(mock, id, "north", "CLOSED", nil))

	got, err := repo.GetByID(ctx, padDesc.FromID(api.Id{Id: id.String()}))
	require.NoError(t, err)
	assert.Equal(t, in, got.Data)
	assert.False(t, got.IsArchived())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertValidationFailure(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock, padDesc, sqlgen.PageLimits{})

	seats := int64(100000)
	obj, res, err := repo.Insert(context.Background(), padDesc.FromData(&padData{Status: 7, Seats: &seats}))
	require.NoError(t, err)
	assert.Nil(t, obj)
	assert.False(t, res.Success)
	assert.Len(t, res.Errors, 2)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, _, err = repo.Insert(context.Background(), padDesc.FromData(nil))
	assert.ErrorIs(t, err, resource.ErrNoData)
}

func TestRepository_InsertConflict(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock, padDesc, sqlgen.PageLimits{})

	mock.ExpectQuery("INSERT INTO pad (geo, name, seats, status) VALUES (ST_GeomFromEWKB($1), $2, $3, $4) RETURNING " +
		sqlgen.SelectList(padDesc.Definition)).
		WithArgs(nil, "north", nil, "AVAILABLE").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, _, err := repo.Insert(context.Background(), padDesc.FromData(&padData{Name: "north"}))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRepository_GetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock, padDesc, sqlgen.PageLimits{})
	id := uuid.New()

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT " + sqlgen.SelectList(padDesc.Definition) + " FROM pad WHERE pad_id = $1").
			WithArgs(id.String()).
			WillReturnRows(mock.NewRows(padColumns))
		_, err := repo.GetByID(context.Background(), padDesc.FromID(api.Id{Id: id.String()}))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := repo.GetByID(context.Background(), padDesc.FromID(api.Id{Id: "pad-1"}))
		assert.ErrorIs(t, err, resource.ErrInvalidID)
	})

	t.Run("unknown enum in storage", func(t *testing.T) {
		mock.ExpectQuery("SELECT " + sqlgen.SelectList(padDesc.Definition) + " FROM pad WHERE pad_id = $1").
			WithArgs(id.String()).
			WillReturnRows(padRow(mock, id, "north", "DEMOLISHED", nil))
		_, err := repo.GetByID(context.Background(), padDesc.FromID(api.Id{Id: id.String()}))
		assert.ErrorIs(t, err, schema.ErrRowConversion)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateWithMask(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewRepository(mock, padDesc, sqlgen.PageLimits{})
	id := uuid.New()

	mock.ExpectQuery("UPDATE pad SET name = $1 WHERE pad_id = $2 AND deleted_at IS NULL RETURNING " +
		sqlgen.SelectList(padDesc.Definition)).
		WithArgs("south", id.String()).
		WillReturnRows(padRow(mock, id, "south", "AVAILABLE", nil))

	obj, mask := padDesc.FromUpdate(api.UpdateObject[padData]{
		Id:   id.String(),
		Data: &padData{Name: "south", Status: 1},
		Mask: &api.FieldMask{Paths: []string{"name"}},
	})
	updated, res, err := repo.Update(ctx, obj, mask)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "south", updated.Data.Name)
	assert.Equal(t, int32(0), updated.Data.Status)

	t.Run("archived or missing row", func(t *testing.T) {
		mock.ExpectQuery("UPDATE pad SET name = $1 WHERE pad_id = $2 AND deleted_at IS NULL RETURNING " +
			sqlgen.SelectList(padDesc.Definition)).
			WithArgs("south", id.String()).
			WillReturnRows(mock.NewRows(padColumns))
		_, _, err := repo.Update(ctx, obj, mask)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("mask naming internal field", func(t *testing.T) {
		_, res, err := repo.Update(ctx, obj, []string{"deleted_at"})
		require.NoError(t, err)
		assert.False(t, res.Success)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SoftDelete(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewRepository(mock, padDesc, sqlgen.PageLimits{})
	id := uuid.New()
	obj := padDesc.FromID(api.Id{Id: id.String()})
	selectSQL := "SELECT " + sqlgen.SelectList(padDesc.Definition) + " FROM pad WHERE pad_id = $1"
	archivedAt := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(selectSQL).WithArgs(id.String()).WillReturnRows(padRow(mock, id, "north", "AVAILABLE", nil))
	before, err := repo.GetByID(ctx, obj)
	require.NoError(t, err)
	assert.False(t, before.IsArchived())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT deleted_at FROM pad WHERE pad_id = $1 FOR UPDATE").
		WithArgs(id.String()).
		WillReturnRows(mock.NewRows([]string{"deleted_at"}).AddRow(nil))
	mock.ExpectExec("UPDATE pad SET deleted_at = NOW() WHERE pad_id = $1 AND deleted_at IS NULL").
		WithArgs(id.String()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	require.NoError(t, repo.Delete(ctx, obj))

	mock.ExpectQuery(selectSQL).WithArgs(id.String()).WillReturnRows(padRow(mock, id, "north", "AVAILABLE", archivedAt))
	after, err := repo.GetByID(ctx, obj)
	require.NoError(t, err)
	assert.True(t, after.IsArchived())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT deleted_at FROM pad WHERE pad_id = $1 FOR UPDATE").
		WithArgs(id.String()).
		WillReturnRows(mock.NewRows([]string{"deleted_at"}).AddRow(archivedAt))
	mock.ExpectRollback()
	err = repo.Delete(ctx, obj)
	assert.ErrorIs(t, err, ErrAlreadyArchived)

	t.Run("missing record", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT deleted_at FROM pad WHERE pad_id = $1 FOR UPDATE").
			WithArgs(id.String()).
			WillReturnRows(mock.NewRows([]string{"deleted_at"}))
		mock.ExpectRollback()
		assert.ErrorIs(t, repo.Delete(ctx, obj), ErrNotFound)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_HardDelete(t *testing.T) {
	def := padDesc.Definition
	def.Name, def.TableName = "note", "note"
	def.IDColumns = []string{"note_id"}
	def.Fields = map[string]schema.FieldDefinition{"name": schema.NewField(schema.Text, true)}
	desc := resource.Descriptor[padData]{Definition: def, Values: padDesc.Values, FromRow: padDesc.FromRow}

	mock := newMock(t)
	repo := NewRepository(mock, desc, sqlgen.PageLimits{})
	id := uuid.New().String()

	mock.ExpectExec("DELETE FROM note WHERE note_id = $1").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, repo.Delete(context.Background(), desc.FromID(api.Id{Id: id})))

	mock.ExpectExec("DELETE FROM note WHERE note_id = $1").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), desc.FromID(api.Id{Id: id})), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SearchPagination(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock, padDesc, sqlgen.PageLimits{DefaultPerPage: 10, MaxPerPage: 50})
	third, fourth := uuid.New(), uuid.New()

	rows := padRow(mock, third, "c", "AVAILABLE", nil)
	rows.AddRow([16]byte(fourth), time.Now(), nil, nil, "d", nil, "AVAILABLE")
	mock.ExpectQuery("SELECT "+sqlgen.SelectList(padDesc.Definition)+" FROM pad WHERE deleted_at IS NULL ORDER BY name ASC LIMIT $1 OFFSET $2").
		WithArgs(int64(2), int64(2)).
		WillReturnRows(rows)

	filter := api.NewSearch().SearchIsNull("deleted_at").Sort("name", api.Ascending).Page(2, 2)
	objs, err := repo.Search(context.Background(), *filter)
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, third.String(), objs[0].IDs["pad_id"])
	assert.Equal(t, fourth.String(), objs[1].IDs["pad_id"])

	_, err = repo.Search(context.Background(), *api.NewSearch().SearchEquals("bogus", "x"))
	assert.ErrorIs(t, err, ErrInvalidFilter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkRepository(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	links, err := NewLinkRepository(mock, groupPadDef, "group_id", "pad_id")
	require.NoError(t, err)

	group := uuid.New().String()
	a, b, c, d := uuid.New().String(), uuid.New().String(), uuid.New().String(), uuid.New().String()
	insert := sqlgen.LinkInsert(groupPadDef)
	linkedSQL := "SELECT pad_id FROM group_pad WHERE group_id = $1 ORDER BY pad_id"

	t.Run("linking twice keeps one row", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(insert).WithArgs(group, a).WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		mock.ExpectBegin()
		mock.ExpectExec(insert).WithArgs(group, a).WillReturnResult(pgxmock.NewResult("INSERT", 0))
		mock.ExpectCommit()
		mock.ExpectQuery(linkedSQL).WithArgs(group).
			WillReturnRows(mock.NewRows([]string{"pad_id"}).AddRow(uuid.MustParse(a)))

		require.NoError(t, links.LinkIDs(ctx, group, []string{a}, false))
		require.NoError(t, links.LinkIDs(ctx, group, []string{a}, false))
		ids, err := links.GetLinkedIDs(ctx, group)
		require.NoError(t, err)
		assert.Equal(t, []string{a}, ids)
	})

	t.Run("replace drops previous links", func(t *testing.T) {
		mock.ExpectBegin()
		for _, other := range []string{a, b, c} {
			mock.ExpectExec(insert).WithArgs(group, other).WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}
		mock.ExpectCommit()
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM group_pad WHERE group_id = $1").WithArgs(group).
			WillReturnResult(pgxmock.NewResult("DELETE", 3))
		mock.ExpectExec(insert).WithArgs(group, d).WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		mock.ExpectQuery(linkedSQL).WithArgs(group).
			WillReturnRows(mock.NewRows([]string{"pad_id"}).AddRow([16]byte(uuid.MustParse(d))))

		require.NoError(t, links.LinkIDs(ctx, group, []string{a, b, c}, false))
		require.NoError(t, links.LinkIDs(ctx, group, []string{d}, true))
		ids, err := links.GetLinkedIDs(ctx, group)
		require.NoError(t, err)
		assert.Equal(t, []string{d}, ids)
	})

	t.Run("failed insert rolls back replace", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM group_pad WHERE group_id = $1").WithArgs(group).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectExec(insert).WithArgs(group, a).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := links.LinkIDs(ctx, group, []string{a}, true)
		assert.Error(t, err)
	})

	t.Run("invalid ids never reach the database", func(t *testing.T) {
		assert.ErrorIs(t, links.LinkIDs(ctx, group, []string{"nope"}, false), resource.ErrInvalidID)
		assert.ErrorIs(t, links.LinkIDs(ctx, "nope", []string{a}, false), resource.ErrInvalidID)
	})

	t.Run("unlink", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM group_pad WHERE group_id = $1 AND pad_id = ANY($2)").
			WithArgs(group, []string{a, b}).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		require.NoError(t, links.UnlinkIDs(ctx, group, []string{a, b}))
	})

	t.Run("get linked records", func(t *testing.T) {
		repo := NewRepository(mock, padDesc, sqlgen.PageLimits{})
		mock.ExpectQuery(linkedSQL).WithArgs(group).
			WillReturnRows(mock.NewRows([]string{"pad_id"}).AddRow(uuid.MustParse(d)))
		mock.ExpectQuery("SELECT "+sqlgen.SelectList(padDesc.Definition)+" FROM pad WHERE pad_id = ANY($1)").
			WithArgs([]string{d}).
			WillReturnRows(padRow(mock, uuid.MustParse(d), "delta", "AVAILABLE", nil))

		objs, err := GetLinked(ctx, links, repo, group)
		require.NoError(t, err)
		require.Len(t, objs, 1)
		assert.Equal(t, "delta", objs[0].Data.Name)
	})

	t.Run("wrong columns", func(t *testing.T) {
		_, err := NewLinkRepository(mock, groupPadDef, "group_id", "vehicle_id")
		assert.ErrorIs(t, err, schema.ErrInvalidDefinition)
		_, err = NewLinkRepository(mock, padDesc.Definition, "pad_id", "pad_id")
		assert.ErrorIs(t, err, schema.ErrInvalidDefinition)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTable(t *testing.T) {
	ctx := context.Background()
	def := padDesc.Definition

	t.Run("index failure keeps table", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(sqlgen.CreateTable(def)).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
		mock.ExpectCommit()
		mock.ExpectBegin()
		mock.ExpectExec(def.TableIndices[0]).WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))
		mock.ExpectExec(def.TableIndices[1]).WillReturnError(errors.New("duplicate key"))
		mock.ExpectRollback()

		err := CreateTable(ctx, mock, def)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "indices")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("init skips existing tables and rebuild drops in reverse", func(t *testing.T) {
		reg, err := schema.NewRegistry(def, groupPadDef)
		require.NoError(t, err)

		mock := newMock(t)
		mock.ExpectExec("DROP TABLE IF EXISTS group_pad").WillReturnResult(pgxmock.NewResult("DROP TABLE", 0))
		mock.ExpectExec("DROP TABLE IF EXISTS pad").WillReturnResult(pgxmock.NewResult("DROP TABLE", 0))
		mock.ExpectQuery("SELECT to_regclass($1) IS NOT NULL").WithArgs("pad").
			WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectBegin()
		mock.ExpectExec(def.TableIndices[0]).WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))
		mock.ExpectExec(def.TableIndices[1]).WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))
		mock.ExpectCommit()
		mock.ExpectQuery("SELECT to_regclass($1) IS NOT NULL").WithArgs("group_pad").
			WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec(sqlgen.CreateTable(groupPadDef)).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
		mock.ExpectCommit()

		require.NoError(t, InitTables(ctx, mock, reg, true))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("indices retried after a failed first boot", func(t *testing.T) {
		reg, err := schema.NewRegistry(def)
		require.NoError(t, err)

		mock := newMock(t)
		mock.ExpectQuery("SELECT to_regclass($1) IS NOT NULL").WithArgs("pad").
			WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec(sqlgen.CreateTable(def)).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
		mock.ExpectCommit()
		mock.ExpectBegin()
		mock.ExpectExec(def.TableIndices[0]).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		require.Error(t, InitTables(ctx, mock, reg, false))

		mock.ExpectQuery("SELECT to_regclass($1) IS NOT NULL").WithArgs("pad").
			WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectBegin()
		mock.ExpectExec(def.TableIndices[0]).WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))
		mock.ExpectExec(def.TableIndices[1]).WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))
		mock.ExpectCommit()

		require.NoError(t, InitTables(ctx, mock, reg, false))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
