package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/gophforum/internal/api"
	"github.com/dmitrijs2005/gophforum/internal/common"
	"github.com/dmitrijs2005/gophforum/internal/logging"
	"github.com/dmitrijs2005/gophforum/internal/server/models"
)

// ---- fakes ----

type fakeUser struct {
	regID  int64
	regErr error

	session  *models.Session
	loginErr error

	valid   bool
	authErr error

	identity    int64
	identifyErr error
	lastToken   string

	user      *models.User
	whoamiErr error
}

func (f *fakeUser) Register(ctx context.Context, username, email, password string) (int64, error) {
	return f.regID, f.regErr
}
func (f *fakeUser) Login(ctx context.Context, username, password string) (*models.Session, error) {
	return f.session, f.loginErr
}
func (f *fakeUser) Authenticate(ctx context.Context, token string) (bool, error) {
	return f.valid, f.authErr
}
func (f *fakeUser) Identify(ctx context.Context, token string) (int64, error) {
	f.lastToken = token
	return f.identity, f.identifyErr
}
func (f *fakeUser) WhoAmI(ctx context.Context, identityID int64) (*models.User, error) {
	return f.user, f.whoamiErr
}

func newServer(u userService) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop(), u, Options{})
}

func TestRegister_OK(t *testing.T) {
	s := newServer(&fakeUser{regID: 42})

	resp, err := s.Register(context.Background(), &api.RegisterRequest{Username: "alice", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.UserID != 42 {
		t.Fatalf("unexpected id: %d", resp.UserID)
	}
}

func TestRegister_ErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"invalid", common.ErrorInvalid, codes.InvalidArgument},
		{"conflict", fmt.Errorf("%w: dup", common.ErrorConflict), codes.AlreadyExists},
		{"storage", fmt.Errorf("%w: boom", common.ErrorStorage), codes.Internal},
		{"hashing", common.ErrorHashing, codes.Internal},
		{"deadline", fmt.Errorf("%w: %w", common.ErrorStorage, context.DeadlineExceeded), codes.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(&fakeUser{regErr: tt.err})
			_, err := s.Register(context.Background(), &api.RegisterRequest{})
			if status.Code(err) != tt.want {
				t.Fatalf("want %v, got %v", tt.want, status.Code(err))
			}
		})
	}
}

func TestRegister_InternalHidesCause(t *testing.T) {
	s := newServer(&fakeUser{regErr: errors.New("pq: relation users does not exist")})
	_, err := s.Register(context.Background(), &api.RegisterRequest{})
	if got := status.Convert(err).Message(); got != "internal error" {
		t.Fatalf("cause leaked to client: %q", got)
	}
}

func TestLogin_OK(t *testing.T) {
	exp := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s := newServer(&fakeUser{session: &models.Session{UserID: 1, Token: "tok", ExpiresAt: exp}})

	resp, err := s.Login(context.Background(), &api.LoginRequest{Username: "alice", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.Token != "tok" || !resp.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLogin_ErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"invalid", common.ErrorInvalid, codes.Unauthenticated},
		{"not found", common.ErrorNotFound, codes.Unauthenticated},
		{"verification", common.ErrorVerification, codes.Internal},
		{"storage", common.ErrorStorage, codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(&fakeUser{loginErr: tt.err})
			_, err := s.Login(context.Background(), &api.LoginRequest{})
			if status.Code(err) != tt.want {
				t.Fatalf("want %v, got %v", tt.want, status.Code(err))
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	s := newServer(&fakeUser{valid: true})
	resp, err := s.Authenticate(context.Background(), &api.AuthenticateRequest{Token: "x"})
	if err != nil || !resp.Valid {
		t.Fatalf("want valid, got %+v, %v", resp, err)
	}

	s = newServer(&fakeUser{authErr: common.ErrorStorage})
	_, err = s.Authenticate(context.Background(), &api.AuthenticateRequest{Token: "x"})
	if status.Code(err) != codes.Internal {
		t.Fatalf("want Internal, got %v", status.Code(err))
	}
}

func TestWhoAmI(t *testing.T) {
	s := newServer(&fakeUser{user: &models.User{ID: 7, UserName: "alice"}})

	if _, err := s.WhoAmI(context.Background(), &api.WhoAmIRequest{}); status.Code(err) != codes.Unauthenticated {
		t.Fatalf("want Unauthenticated without identity, got %v", status.Code(err))
	}

	ctx := context.WithValue(context.Background(), userIDKey, int64(7))
	resp, err := s.WhoAmI(ctx, &api.WhoAmIRequest{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.UserID != 7 || resp.Username != "alice" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	s = newServer(&fakeUser{whoamiErr: common.ErrorNotFound})
	if _, err := s.WhoAmI(ctx, &api.WhoAmIRequest{}); status.Code(err) != codes.Unauthenticated {
		t.Fatalf("want Unauthenticated for vanished identity, got %v", status.Code(err))
	}
}
