package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/gophforum/internal/api"
	"github.com/dmitrijs2005/gophforum/internal/common"
)

type ctxKey string

const (
	userIDKey    ctxKey = "userID"
	requestIDKey ctxKey = "requestID"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "x-request-id"

func userIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func firstMetadata(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// observeInterceptor tags the call with a request id, then logs and
// records its outcome.
func (s *GRPCServer) observeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	reqID := firstMetadata(ctx, RequestIDHeader)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	ctx = context.WithValue(ctx, requestIDKey, reqID)
	_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, reqID))

	resp, err := handler(ctx, req)

	code := status.Code(err)
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveRPC(info.FullMethod, code.String(), elapsed)
	}
	s.logger.Info(ctx, "rpc",
		"method", info.FullMethod,
		"code", code.String(),
		"duration_ms", elapsed.Milliseconds(),
		"request_id", reqID,
	)

	return resp, err
}

func (s *GRPCServer) timeoutInterceptor(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.requestTimeout <= 0 {
		return handler(ctx, req)
	}
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()
	return handler(ctx, req)
}

var rateLimitedMethods = map[string]bool{
	api.AuthService_Login_FullMethodName:    true,
	api.AuthService_Register_FullMethodName: true,
}

func (s *GRPCServer) rateLimitInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.limiter == nil || !rateLimitedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	if !s.limiter.Allow(peerKey(ctx)) {
		if s.metrics != nil {
			s.metrics.RateLimited.WithLabelValues(info.FullMethod).Inc()
		}
		return nil, status.Error(codes.ResourceExhausted, "too many attempts, try again later")
	}

	return handler(ctx, req)
}

var bearerMethods = map[string]bool{
	api.AuthService_WhoAmI_FullMethodName: true,
}

// bearerAuthInterceptor resolves the bearer token of protected methods and
// stores the identity id in the context.
func (s *GRPCServer) bearerAuthInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !bearerMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	token, ok := bearerToken(firstMetadata(ctx, common.AuthorizationHeaderName))
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	id, err := s.users.Identify(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorInvalid) {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		return nil, s.internal(ctx, "identify failed", err)
	}

	return handler(context.WithValue(ctx, userIDKey, id), req)
}

// bearerToken extracts the token from an "authorization" value. The scheme
// is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme := len(common.BearerScheme)
	if len(header) <= scheme || !strings.EqualFold(header[:scheme], common.BearerScheme) {
		return "", false
	}
	token := strings.TrimSpace(header[scheme:])
	return token, token != ""
}

func peerKey(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	return hostOf(p.Addr.String())
}
