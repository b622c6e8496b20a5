package grpcapi

import (
	"github.com/nrjais/aerostore/internal/resource"
	"github.com/nrjais/aerostore/internal/store"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps a store error to the status returned to callers. Unclassified errors are
// logged and hidden behind codes.Internal.
func toStatus(method string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, store.ErrAlreadyArchived):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, store.ErrInvalidFilter):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, store.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, resource.ErrNoData):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		zap.S().Errorw("Request failed", "method", method, "error", err)
		return status.Errorf(codes.Internal, "%s failed", method)
	}
}
