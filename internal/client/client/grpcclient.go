package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/gophforum/internal/api"
	"github.com/dmitrijs2005/gophforum/internal/common"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      api.AuthServiceClient

	mu    sync.RWMutex
	token string
}

func withBearer(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerScheme+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) bearerInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.Token(); token != "" {
		ctx = withBearer(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient creates a client for endpointURL. Extra dial options are
// appended after the defaults (insecure transport, bearer interceptor).
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.bearerInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = api.NewAuthServiceClient(conn)
	return c, nil
}

// SetToken sets the session token sent with every following call. An empty
// token stops sending the header.
func (s *GRPCClient) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *GRPCClient) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *GRPCClient) Register(ctx context.Context, userName, email, password string) (int64, error) {
	resp, err := s.client.Register(ctx, &api.RegisterRequest{Username: userName, Email: email, Password: password})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.UserID, nil
}

func (s *GRPCClient) Login(ctx context.Context, userName, password string) (string, time.Time, error) {
	resp, err := s.client.Login(ctx, &api.LoginRequest{Username: userName, Password: password})
	if err != nil {
		return "", time.Time{}, s.mapError(err)
	}
	return resp.Token, resp.ExpiresAt, nil
}

func (s *GRPCClient) Authenticate(ctx context.Context, token string) (bool, error) {
	resp, err := s.client.Authenticate(ctx, &api.AuthenticateRequest{Token: token})
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.Valid, nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (int64, string, error) {
	resp, err := s.client.WhoAmI(ctx, &api.WhoAmIRequest{})
	if err != nil {
		return 0, "", s.mapError(err)
	}
	return resp.UserID, resp.Username, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// mapError converts gRPC status codes into package sentinels. The server's
// message is kept in the wrapped error.
func (s *GRPCClient) mapError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrUnavailable
		}
		return err
	}

	var sentinel error
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		sentinel = ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		sentinel = ErrUnavailable
	case codes.AlreadyExists:
		sentinel = ErrConflict
	case codes.InvalidArgument:
		sentinel = ErrInvalidInput
	case codes.ResourceExhausted:
		sentinel = ErrRateLimited
	default:
		return err
	}
	return fmt.Errorf("%w: %s", sentinel, st.Message())
}
