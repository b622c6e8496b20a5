package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestSplitMethod(t *testing.T) {
	service, method := splitMethod("/aerostore.vehicle.RpcService/GetById")
	assert.Equal(t, "aerostore.vehicle.RpcService", service)
	assert.Equal(t, "GetById", method)
}

func TestUnaryServerInterceptor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, reg)
	interceptor := m.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/aerostore.vehicle.RpcService/GetById"}

	_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)

	_, err = interceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.NotFound, "missing")
	})
	assert.Equal(t, codes.NotFound, status.Code(err))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("aerostore.vehicle.RpcService", "GetById", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("aerostore.vehicle.RpcService", "GetById", "NotFound")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.latency))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "aerostore_grpc_requests_total")
}
