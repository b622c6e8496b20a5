package grpcapi

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nrjais/aerostore/internal/db"
	"github.com/nrjais/aerostore/internal/resource"
	"github.com/nrjais/aerostore/internal/resources"
	"github.com/nrjais/aerostore/internal/sqlgen"
	"github.com/nrjais/aerostore/internal/store"
	"github.com/nrjais/aerostore/pkg/api"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

var limits = sqlgen.PageLimits{DefaultPerPage: 50, MaxPerPage: 500}

var pilotColumns = resources.Pilot.Definition.Columns()

// startServer serves services over an in-memory listener and returns a connected client.
func startServer(t *testing.T, services ...Service) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(RecoveryInterceptor(), LoggingInterceptor()))
	Register(srv, services...)
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func fkViolation() error {
	return &pgconn.PgError{Code: db.ForeignKeyViolation}
}

func pilotMethod(method string) string {
	return "/" + ServiceName("pilot", RpcService) + "/" + method
}

func TestSimpleService(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("is ready", func(t *testing.T) {
		conn := startServer(t, NewSimpleService(store.NewRepository(newMock(t), resources.Pilot, limits)))
		var out api.ReadyResponse
		require.NoError(t, conn.Invoke(ctx, pilotMethod("IsReady"), &api.ReadyRequest{}, &out))
		assert.True(t, out.Ready)
	})

	t.Run("get by id", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT .* FROM pilot WHERE pilot_id = \\$1").
			WithArgs(id.String()).
			WillReturnRows(mock.NewRows(pilotColumns).AddRow([16]byte(id), now, nil, "Amelia", "Earhart", now))
		conn := startServer(t, NewSimpleService(store.NewRepository(mock, resources.Pilot, limits)))

		var out api.Object[api.PilotData]
		require.NoError(t, conn.Invoke(ctx, pilotMethod("GetById"), &api.Id{Id: id.String()}, &out))
		assert.Equal(t, id.String(), out.Id)
		require.NotNil(t, out.Data)
		assert.Equal(t, "Amelia", out.Data.FirstName)
		assert.Equal(t, now, out.Data.CreatedAt.AsTime())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get by id not found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT .* FROM pilot").
			WithArgs(id.String()).
			WillReturnRows(mock.NewRows(pilotColumns))
		conn := startServer(t, NewSimpleService(store.NewRepository(mock, resources.Pilot, limits)))

		var out api.Object[api.PilotData]
		err := conn.Invoke(ctx, pilotMethod("GetById"), &api.Id{Id: id.String()}, &out)
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("invalid id is internal", func(t *testing.T) {
		conn := startServer(t, NewSimpleService(store.NewRepository(newMock(t), resources.Pilot, limits)))
		var out api.Object[api.PilotData]
		err := conn.Invoke(ctx, pilotMethod("GetById"), &api.Id{Id: "not-a-uuid"}, &out)
		assert.Equal(t, codes.Internal, status.Code(err))
	})

	t.Run("validation failure is data", func(t *testing.T) {
		mock := newMock(t)
		conn := startServer(t, NewSimpleService(store.NewRepository(mock, resources.Vertipad, limits)))

		var out api.Response[api.VertipadData]
		err := conn.Invoke(ctx, "/"+ServiceName("vertipad", RpcService)+"/Insert",
			&api.VertipadData{VertiportId: "bad", Name: "pad 1"}, &out)
		require.NoError(t, err)
		require.NotNil(t, out.ValidationResult)
		assert.False(t, out.ValidationResult.Success)
		assert.Len(t, out.ValidationResult.Errors, 2)
		assert.Nil(t, out.Object)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update without data", func(t *testing.T) {
		conn := startServer(t, NewSimpleService(store.NewRepository(newMock(t), resources.Pilot, limits)))
		var out api.Response[api.PilotData]
		err := conn.Invoke(ctx, pilotMethod("Update"), &api.UpdateObject[api.PilotData]{Id: id.String()}, &out)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("delete archived record", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT deleted_at FROM pilot").
			WithArgs(id.String()).
			WillReturnRows(mock.NewRows([]string{"deleted_at"}).AddRow(now))
		mock.ExpectRollback()
		conn := startServer(t, NewSimpleService(store.NewRepository(mock, resources.Pilot, limits)))

		var out api.Empty
		err := conn.Invoke(ctx, pilotMethod("Delete"), &api.Id{Id: id.String()}, &out)
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("search with unknown column", func(t *testing.T) {
		conn := startServer(t, NewSimpleService(store.NewRepository(newMock(t), resources.Pilot, limits)))
		var out api.List[api.PilotData]
		err := conn.Invoke(ctx, pilotMethod("Search"), api.NewSearch().SearchEquals("callsign", "x"), &out)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("search", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT .* FROM pilot WHERE").
			WithArgs("Earhart", int64(10), int64(0)).
			WillReturnRows(mock.NewRows(pilotColumns).
				AddRow([16]byte(id), now, nil, "Amelia", "Earhart", now).
				AddRow([16]byte(uuid.New()), now, nil, "Mary", "Earhart", now))
		conn := startServer(t, NewSimpleService(store.NewRepository(mock, resources.Pilot, limits)))

		var out api.List[api.PilotData]
		filter := api.NewSearch().SearchEquals("last_name", "Earhart").Page(1, 10)
		require.NoError(t, conn.Invoke(ctx, pilotMethod("Search"), filter, &out))
		assert.Len(t, out.List, 2)
		assert.Equal(t, "Mary", out.List[1].Data.FirstName)
	})
}

func TestSimpleLinkedService(t *testing.T) {
	ctx := context.Background()
	plan, parcel := uuid.New(), uuid.New()
	method := "/" + ServiceName("flight_plan_parcel", RpcService) + "/"
	ids := []api.FieldValue{
		{Field: "flight_plan_id", Value: plan.String()},
		{Field: "parcel_id", Value: parcel.String()},
	}

	t.Run("insert", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("INSERT INTO flight_plan_parcel").
			WithArgs(plan.String(), parcel.String(), true, false).
			WillReturnRows(mock.NewRows([]string{"flight_plan_id", "parcel_id", "acquire", "deliver"}).
				AddRow([16]byte(plan), [16]byte(parcel), true, false))
		conn := startServer(t, NewSimpleLinkedService(store.NewRepository(mock, resources.FlightPlanParcel, limits)))

		var out api.LinkedResponse[api.FlightPlanParcelData]
		in := &api.LinkedObject[api.FlightPlanParcelData]{Ids: ids, Data: &api.FlightPlanParcelData{Acquire: true}}
		require.NoError(t, conn.Invoke(ctx, method+"Insert", in, &out))
		assert.True(t, out.ValidationResult.Success)
		require.NotNil(t, out.Object)
		assert.Equal(t, ids, out.Object.Ids)
		assert.True(t, out.Object.Data.Acquire)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get for partial ids", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT .* FROM flight_plan_parcel WHERE flight_plan_id = \\$1").
			WithArgs(plan.String()).
			WillReturnRows(mock.NewRows([]string{"flight_plan_id", "parcel_id", "acquire", "deliver"}).
				AddRow([16]byte(plan), [16]byte(parcel), false, true))
		conn := startServer(t, NewSimpleLinkedService(store.NewRepository(mock, resources.FlightPlanParcel, limits)))

		var out api.LinkedList[api.FlightPlanParcelData]
		require.NoError(t, conn.Invoke(ctx, method+"GetForIds", &api.Ids{Ids: ids[:1]}, &out))
		require.Len(t, out.List, 1)
		assert.True(t, out.List[0].Data.Deliver)
	})

	t.Run("delete missing", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec("DELETE FROM flight_plan_parcel").
			WithArgs(plan.String(), parcel.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		conn := startServer(t, NewSimpleLinkedService(store.NewRepository(mock, resources.FlightPlanParcel, limits)))

		var out api.Empty
		err := conn.Invoke(ctx, method+"Delete", &api.Ids{Ids: ids}, &out)
		assert.Equal(t, codes.NotFound, status.Code(err))
	})
}

func TestLinkService(t *testing.T) {
	ctx := context.Background()
	group, vehicle := uuid.New(), uuid.New()
	method := "/" + ServiceName("group_vehicle", RpcLinkService) + "/"

	newService := func(t *testing.T, mock pgxmock.PgxPoolIface) *LinkService[api.VehicleData] {
		links, err := store.NewLinkRepository(mock, resources.GroupVehicle.Definition, "group_id", "vehicle_id")
		require.NoError(t, err)
		return NewLinkService(links, store.NewRepository(mock, resources.Vehicle, limits))
	}

	t.Run("replace linked", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM group_vehicle").
			WithArgs(group.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 3))
		mock.ExpectExec("INSERT INTO group_vehicle").
			WithArgs(group.String(), vehicle.String()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		conn := startServer(t, newService(t, mock))

		req := &api.LinkRequest{Id: group.String(), OtherIdList: &api.IdList{Ids: []string{vehicle.String()}}}
		var out api.Empty
		require.NoError(t, conn.Invoke(ctx, method+"ReplaceLinked", req, &out))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get linked ids", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT vehicle_id FROM group_vehicle").
			WithArgs(group.String()).
			WillReturnRows(mock.NewRows([]string{"vehicle_id"}).AddRow([16]byte(vehicle)))
		conn := startServer(t, newService(t, mock))

		var out api.IdList
		require.NoError(t, conn.Invoke(ctx, method+"GetLinkedIds", &api.Id{Id: group.String()}, &out))
		assert.Equal(t, []string{vehicle.String()}, out.Ids)
	})

	t.Run("get linked without links", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT vehicle_id FROM group_vehicle").
			WithArgs(group.String()).
			WillReturnRows(mock.NewRows([]string{"vehicle_id"}))
		conn := startServer(t, newService(t, mock))

		var out api.List[api.VehicleData]
		require.NoError(t, conn.Invoke(ctx, method+"GetLinked", &api.Id{Id: group.String()}, &out))
		assert.Empty(t, out.List)
	})

	t.Run("link to missing record", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO group_vehicle").
			WithArgs(group.String(), vehicle.String()).
			WillReturnError(fkViolation())
		mock.ExpectRollback()
		conn := startServer(t, newService(t, mock))

		req := &api.LinkRequest{Id: group.String(), OtherIdList: &api.IdList{Ids: []string{vehicle.String()}}}
		var out api.Empty
		err := conn.Invoke(ctx, method+"Link", req, &out)
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("link with invalid id", func(t *testing.T) {
		conn := startServer(t, newService(t, newMock(t)))
		req := &api.LinkRequest{Id: "group", OtherIdList: &api.IdList{Ids: []string{vehicle.String()}}}
		var out api.Empty
		err := conn.Invoke(ctx, method+"Link", req, &out)
		assert.Equal(t, codes.Internal, status.Code(err))
	})
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{errors.Wrap(store.ErrNotFound, "pilot"), codes.NotFound},
		{errors.Wrap(store.ErrAlreadyArchived, "pilot"), codes.FailedPrecondition},
		{errors.Wrap(store.ErrInvalidFilter, "unknown column"), codes.InvalidArgument},
		{errors.Wrap(store.ErrConflict, "email"), codes.AlreadyExists},
		{errors.Wrap(resource.ErrNoData, "insert"), codes.InvalidArgument},
		{errors.Wrap(resource.ErrInvalidID, "x"), codes.Internal},
		{errors.New("connection reset"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(toStatus("Test", tt.err)))
		})
	}
}

func TestResourceServices(t *testing.T) {
	services, err := ResourceServices(newMock(t), limits)
	require.NoError(t, err)
	assert.Len(t, services, 14)

	names := make(map[string]bool)
	for _, svc := range services {
		desc := svc.ServiceDesc()
		assert.False(t, names[desc.ServiceName], desc.ServiceName)
		names[desc.ServiceName] = true
	}
	assert.True(t, names["aerostore.group_user.RpcLinkService"])
	assert.True(t, names["aerostore.flight_plan_parcel.RpcService"])

	srv := grpc.NewServer()
	Register(srv, services...)
	assert.Len(t, srv.GetServiceInfo(), 14)
}
