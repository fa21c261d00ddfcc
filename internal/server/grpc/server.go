package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/gophforum/internal/api"
	"github.com/dmitrijs2005/gophforum/internal/logging"
	"github.com/dmitrijs2005/gophforum/internal/server/metrics"
	"github.com/dmitrijs2005/gophforum/internal/server/models"
)

// userService is the slice of services.UserService the transport needs.
type userService interface {
	Register(ctx context.Context, username, email, password string) (int64, error)
	Login(ctx context.Context, username, password string) (*models.Session, error)
	Authenticate(ctx context.Context, token string) (bool, error)
	Identify(ctx context.Context, token string) (int64, error)
	WhoAmI(ctx context.Context, identityID int64) (*models.User, error)
}

// Options tune the interceptor chain. Zero values disable the feature.
type Options struct {
	RequestTimeout     time.Duration
	LoginRatePerMinute float64
	LoginBurst         int
	Metrics            *metrics.Metrics
}

type GRPCServer struct {
	api.UnimplementedAuthServiceServer
	address        string
	users          userService
	logger         logging.Logger
	metrics        *metrics.Metrics
	limiter        *peerLimiter
	requestTimeout time.Duration
}

func NewGRPCServer(a string, l logging.Logger, us userService, opts Options) *GRPCServer {
	return &GRPCServer{
		address:        a,
		logger:         l.With("module", "grpc_server"),
		users:          us,
		metrics:        opts.Metrics,
		limiter:        newPeerLimiter(opts.LoginRatePerMinute, opts.LoginBurst),
		requestTimeout: opts.RequestTimeout,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.observeInterceptor,
		s.timeoutInterceptor,
		s.rateLimitInterceptor,
		s.bearerAuthInterceptor,
	))
	api.RegisterAuthServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
