package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/gophforum/internal/api"
	"github.com/dmitrijs2005/gophforum/internal/common"
)

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.RegisterResponse, error) {

	id, err := s.users.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorInvalid):
			return nil, status.Error(codes.InvalidArgument, "username and password are required")
		case errors.Is(err, common.ErrorConflict):
			return nil, status.Error(codes.AlreadyExists, "username or email already taken")
		}
		return nil, s.internal(ctx, "register failed", err)
	}

	s.logger.Info(ctx, "Registered", "user_id", id, "request_id", requestIDFrom(ctx))
	return &api.RegisterResponse{UserID: id}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {

	session, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorInvalid) || errors.Is(err, common.ErrorNotFound) {
			return nil, status.Error(codes.Unauthenticated, "invalid credentials")
		}
		return nil, s.internal(ctx, "login failed", err)
	}

	return &api.LoginResponse{Token: session.Token, ExpiresAt: session.ExpiresAt}, nil
}

func (s *GRPCServer) Authenticate(ctx context.Context, req *api.AuthenticateRequest) (*api.AuthenticateResponse, error) {

	ok, err := s.users.Authenticate(ctx, req.Token)
	if err != nil {
		return nil, s.internal(ctx, "authenticate failed", err)
	}

	return &api.AuthenticateResponse{Valid: ok}, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *api.WhoAmIRequest) (*api.WhoAmIResponse, error) {

	id, ok := userIDFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing session")
	}

	user, err := s.users.WhoAmI(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, status.Error(codes.Unauthenticated, "unknown identity")
		}
		return nil, s.internal(ctx, "whoami failed", err)
	}

	return &api.WhoAmIResponse{UserID: user.ID, Username: user.UserName}, nil
}

// internal logs err and hides it behind a generic status. Deadline and
// cancellation keep their own codes so clients can tell them apart.
func (s *GRPCServer) internal(ctx context.Context, msg string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	}
	s.logger.Error(ctx, msg, "error", err, "request_id", requestIDFrom(ctx))
	return status.Error(codes.Internal, "internal error")
}
