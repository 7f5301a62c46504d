package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/simplog/internal/common"
	"github.com/dmitrijs2005/simplog/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const subjectKey ctxKey = "subject"

// SubjectFromContext returns the token subject stored by the access token
// interceptor.
func SubjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectKey).(string)
	return v, ok
}

// protectedMethods require a bearer token.
var protectedMethods = map[string]bool{
	rpc.FullMethod(rpc.MethodListEmployees):  true,
	rpc.FullMethod(rpc.MethodPageEmployees):  true,
	rpc.FullMethod(rpc.MethodEmployeeTotals): true,
	rpc.FullMethod(rpc.MethodGetEmployee):    true,
	rpc.FullMethod(rpc.MethodCreateEmployee): true,
	rpc.FullMethod(rpc.MethodUpdateEmployee): true,
	rpc.FullMethod(rpc.MethodDeleteEmployee): true,
}

// credentialMethods check a password and are rate limited per peer.
var credentialMethods = map[string]bool{
	rpc.FullMethod(rpc.MethodRegisterUser): true,
	rpc.FullMethod(rpc.MethodLogin):        true,
	rpc.FullMethod(rpc.MethodDeleteUser):   true,
}

func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get(common.AuthorizationHeaderName) {
		if strings.HasPrefix(v, common.BearerPrefix) {
			return strings.TrimSpace(strings.TrimPrefix(v, common.BearerPrefix))
		}
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if protectedMethods[info.FullMethod] {

		token := bearerToken(ctx)
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		claims, err := s.issuer.Parse(token)
		if err != nil {
			return nil, toStatus(ctx, s.logger, err)
		}

		ctx = context.WithValue(ctx, subjectKey, claims.Subject)
	}

	return handler(ctx, req)
}

func (s *GRPCServer) rateLimitInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.limiter != nil && credentialMethods[info.FullMethod] {
		if !s.limiter.Allow(peerKey(ctx)) {
			s.metrics.RecordRateLimited(methodName(info.FullMethod))
			s.logger.Warn(ctx, "rate limit exceeded", "method", info.FullMethod, "peer", peerKey(ctx))
			return nil, status.Error(codes.ResourceExhausted, "too many requests, retry later")
		}
	}
	return handler(ctx, req)
}

// observeInterceptor records latency and status code for every RPC.
func (s *GRPCServer) observeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	elapsed := time.Since(start)

	code := status.Code(err)
	s.metrics.RecordRPC(methodName(info.FullMethod), code.String(), elapsed)
	s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "code", code.String(), "duration", elapsed)

	return resp, err
}

func methodName(full string) string {
	if i := strings.LastIndexByte(full, '/'); i >= 0 {
		return full[i+1:]
	}
	return full
}
