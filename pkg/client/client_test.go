package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nrjais/aerostore/internal/grpcapi"
	"github.com/nrjais/aerostore/internal/resources"
	"github.com/nrjais/aerostore/internal/sqlgen"
	"github.com/nrjais/aerostore/pkg/api"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// newTestClient serves every resource over an in-memory listener backed by mock.
func newTestClient(t *testing.T, mock pgxmock.PgxPoolIface) *Client {
	t.Helper()
	services, err := grpcapi.ResourceServices(mock, sqlgen.PageLimits{DefaultPerPage: 50, MaxPerPage: 500})
	require.NoError(t, err)

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	grpcapi.Register(srv, services...)
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	c, err := NewClient(ClientConfig{ServerAddr: "passthrough:///bufnet", Timeout: 5 * time.Second},
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	assert.Error(t, err)

	c, err := NewClient(ClientConfig{ServerAddr: "localhost:50051"})
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}

func TestResourceClient(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	now := time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)
	columns := resources.Pilot.Definition.Columns()

	t.Run("is ready", func(t *testing.T) {
		c := newTestClient(t, newMock(t))
		ready, err := c.Pilots().IsReady(ctx)
		require.NoError(t, err)
		assert.True(t, ready)
	})

	t.Run("insert", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("INSERT INTO pilot").
			WithArgs("Bessie", "Coleman").
			WillReturnRows(mock.NewRows(columns).AddRow([16]byte(id), now, nil, "Bessie", "Coleman", now))
		c := newTestClient(t, mock)

		resp, err := c.Pilots().Insert(ctx, &api.PilotData{FirstName: "Bessie", LastName: "Coleman"})
		require.NoError(t, err)
		assert.True(t, resp.ValidationResult.Success)
		require.NotNil(t, resp.Object)
		assert.Equal(t, id.String(), resp.Object.Id)
		assert.Equal(t, "Coleman", resp.Object.Data.LastName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update with mask", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("UPDATE pilot SET last_name = \\$1, updated_at = NOW\\(\\)").
			WithArgs("Earhart", id.String()).
			WillReturnRows(mock.NewRows(columns).AddRow([16]byte(id), now, nil, "Amelia", "Earhart", now))
		c := newTestClient(t, mock)

		resp, err := c.Pilots().Update(ctx, &api.UpdateObject[api.PilotData]{
			Id:   id.String(),
			Data: &api.PilotData{LastName: "Earhart"},
			Mask: &api.FieldMask{Paths: []string{"last_name"}},
		})
		require.NoError(t, err)
		assert.True(t, resp.ValidationResult.Success)
		assert.Equal(t, "Amelia", resp.Object.Data.FirstName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete missing", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT deleted_at FROM pilot").
			WithArgs(id.String()).
			WillReturnRows(mock.NewRows([]string{"deleted_at"}))
		mock.ExpectRollback()
		c := newTestClient(t, mock)

		err := c.Pilots().Delete(ctx, id.String())
		assert.Equal(t, codes.NotFound, status.Code(err))
	})
}

func TestLinkedResourceClient(t *testing.T) {
	ctx := context.Background()
	plan, parcel := uuid.New(), uuid.New()

	mock := newMock(t)
	mock.ExpectQuery("SELECT .* FROM flight_plan_parcel WHERE flight_plan_id = \\$1 AND parcel_id = \\$2").
		WithArgs(plan.String(), parcel.String()).
		WillReturnRows(mock.NewRows([]string{"flight_plan_id", "parcel_id", "acquire", "deliver"}).
			AddRow([16]byte(plan), [16]byte(parcel), true, true))
	c := newTestClient(t, mock)

	obj, err := c.FlightPlanParcels().GetById(ctx, api.NewIds(
		api.FieldValue{Field: "flight_plan_id", Value: plan.String()},
		api.FieldValue{Field: "parcel_id", Value: parcel.String()},
	))
	require.NoError(t, err)
	assert.True(t, obj.Data.Acquire)
	assert.True(t, obj.Data.Deliver)
	assert.Equal(t, parcel.String(), api.Ids{Ids: obj.Ids}.Map()["parcel_id"])
}

func TestLinkClient(t *testing.T) {
	ctx := context.Background()
	group, user := uuid.New(), uuid.New()

	t.Run("link and list", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO group_user").
			WithArgs(group.String(), user.String()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		mock.ExpectQuery("SELECT user_id FROM group_user").
			WithArgs(group.String()).
			WillReturnRows(mock.NewRows([]string{"user_id"}).AddRow([16]byte(user)))
		c := newTestClient(t, mock)

		require.NoError(t, c.GroupUsers().Link(ctx, group.String(), user.String()))
		ids, err := c.GroupUsers().GetLinkedIds(ctx, group.String())
		require.NoError(t, err)
		assert.Equal(t, []string{user.String()}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unlink", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec("DELETE FROM group_user").
			WithArgs(group.String(), []string{user.String()}).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		c := newTestClient(t, mock)

		require.NoError(t, c.GroupUsers().Unlink(ctx, group.String(), user.String()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
