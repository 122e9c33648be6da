package api

import (
	"context"
	"errors"

	"github.com/solatis/decisiontree/internal/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errInvalidRequest = errors.New("invalid request")

// StatusCode classifies err for the wire:
// malformed input is InvalidArgument, an unknown tree NotFound, an operation
// the node cannot perform FailedPrecondition, and anything else (storage)
// Unavailable.
func StatusCode(err error) codes.Code {
	var (
		constructErr *types.ConstructionError
		opErr        *types.OperationError
	)
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.As(err, &constructErr),
		errors.Is(err, errInvalidRequest),
		errors.Is(err, types.ErrDefinitionTooLarge):
		return codes.InvalidArgument
	case errors.Is(err, types.ErrTreeNotFound):
		return codes.NotFound
	case errors.As(err, &opErr):
		return codes.FailedPrecondition
	default:
		return codes.Unavailable
	}
}

// toStatus converts a service error into a gRPC status error.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(StatusCode(err), err.Error())
}
