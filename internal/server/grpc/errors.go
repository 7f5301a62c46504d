package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/simplog/internal/common"
	"github.com/dmitrijs2005/simplog/internal/logging"
	"github.com/dmitrijs2005/simplog/internal/server/conflicts"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const errorDomain = "simplog"

// toStatus maps a service error onto a gRPC status carrying an ErrorInfo.
// Unclassified errors are logged and reported as a bare internal error.
func toStatus(ctx context.Context, log logging.Logger, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var (
		code   codes.Code
		reason string
		meta   map[string]string
		msg    = err.Error()
	)

	switch {
	case errors.Is(err, common.ErrorValidation):
		code, reason = codes.InvalidArgument, "VALIDATION"
	case errors.Is(err, common.ErrorIdentityMismatch):
		code, reason = codes.InvalidArgument, "IDENTITY_MISMATCH"
	case errors.Is(err, common.ErrorConflict):
		code, reason = codes.AlreadyExists, "CONFLICT"
		var ce *conflicts.ConflictError
		if errors.As(err, &ce) {
			meta = map[string]string{"fields": strings.Join(ce.Fields.Names(), ",")}
		}
	case errors.Is(err, common.ErrorAlreadyExists):
		code, reason = codes.AlreadyExists, "ALREADY_EXISTS"
	case errors.Is(err, common.ErrorNotFound):
		code, reason = codes.NotFound, "NOT_FOUND"
	case errors.Is(err, common.ErrorUnauthorized):
		code, reason = codes.Unauthenticated, "UNAUTHORIZED"
	case errors.Is(err, common.ErrTokenExpired):
		code, reason = codes.Unauthenticated, "TOKEN_EXPIRED"
	case errors.Is(err, common.ErrInvalidToken):
		code, reason = codes.Unauthenticated, "INVALID_TOKEN"
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		log.Error(ctx, "request failed", "error", err)
		code, reason, msg = codes.Internal, "INTERNAL", common.ErrorInternal.Error()
	}

	st := status.New(code, msg)
	if withInfo, derr := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   reason,
		Domain:   errorDomain,
		Metadata: meta,
	}); derr == nil {
		st = withInfo
	}
	return st.Err()
}

// ErrorReason extracts the ErrorInfo reason from a status error, or "".
func ErrorReason(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}
