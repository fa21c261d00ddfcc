// Package services contains the application services of the GophForum
// client. AuthService talks to the server and keeps the issued session in
// the local state file so later invocations stay logged in.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophforum/internal/client/client"
	"github.com/dmitrijs2005/gophforum/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophforum/internal/common"
	"github.com/dmitrijs2005/gophforum/internal/dbx"
)

// ErrNotLoggedIn means there is no usable local session.
var ErrNotLoggedIn = errors.New("not logged in")

// Client is the remote API used by AuthService.
type Client interface {
	Register(ctx context.Context, username, email, password string) (int64, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error)
	Authenticate(ctx context.Context, token string) (bool, error)
	WhoAmI(ctx context.Context) (int64, string, error)
	SetToken(token string)
	Close() error
}

// Session is the locally stored login.
type Session struct {
	Server    string
	Username  string
	Token     string
	ExpiresAt time.Time
}

// AuthService defines the authentication operations of the CLI.
type AuthService interface {
	Register(ctx context.Context, username, email string, password []byte) (int64, error)
	Login(ctx context.Context, username string, password []byte) (*Session, error)
	WhoAmI(ctx context.Context) (int64, string, error)
	Status(ctx context.Context) (*Session, bool, error)
	Logout(ctx context.Context) error
	Close() error
}

type authService struct {
	client Client
	db     *sql.DB
	server string
	now    func() time.Time
}

// NewAuthService binds the API client c and the state database db. Sessions
// are only reused against the same server address.
func NewAuthService(c Client, db *sql.DB, server string) AuthService {
	return &authService{client: c, db: db, server: server, now: time.Now}
}

func (a *authService) getMetadataRepo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (a *authService) Register(ctx context.Context, username, email string, password []byte) (int64, error) {
	return a.client.Register(ctx, username, email, string(password))
}

// Login authenticates against the server and replaces the stored session.
func (a *authService) Login(ctx context.Context, username string, password []byte) (*Session, error) {
	token, expiresAt, err := a.client.Login(ctx, username, string(password))
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	s := &Session{Server: a.server, Username: username, Token: token, ExpiresAt: expiresAt}
	if err := a.saveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return s, nil
}

func (a *authService) saveSession(ctx context.Context, s *Session) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.getMetadataRepo(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		values := map[string]string{
			metadata.KeyServer:    s.Server,
			metadata.KeyUsername:  s.Username,
			metadata.KeyToken:     s.Token,
			metadata.KeyExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339Nano),
		}
		for k, v := range values {
			if err := repo.Set(ctx, k, []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

// loadSession returns ErrNotLoggedIn when nothing usable is stored for the
// current server.
func (a *authService) loadSession(ctx context.Context) (*Session, error) {
	repo := a.getMetadataRepo(a.db)

	get := func(key string) (string, error) {
		v, err := repo.Get(ctx, key)
		if errors.Is(err, common.ErrorNotFound) {
			return "", ErrNotLoggedIn
		}
		return string(v), err
	}

	s := &Session{}
	var err error
	if s.Server, err = get(metadata.KeyServer); err != nil {
		return nil, err
	}
	if s.Server != a.server {
		return nil, ErrNotLoggedIn
	}
	if s.Username, err = get(metadata.KeyUsername); err != nil {
		return nil, err
	}
	if s.Token, err = get(metadata.KeyToken); err != nil {
		return nil, err
	}
	if s.Token == "" {
		return nil, ErrNotLoggedIn
	}
	exp, err := get(metadata.KeyExpiresAt)
	if err != nil {
		return nil, err
	}
	if s.ExpiresAt, err = time.Parse(time.RFC3339Nano, exp); err != nil {
		return nil, fmt.Errorf("%w: corrupt expiry: %w", ErrNotLoggedIn, err)
	}
	return s, nil
}

// WhoAmI asks the server who the stored session belongs to. A session the
// server no longer honors is dropped.
func (a *authService) WhoAmI(ctx context.Context) (int64, string, error) {
	s, err := a.loadSession(ctx)
	if err != nil {
		return 0, "", err
	}
	if !a.now().Before(s.ExpiresAt) {
		_ = a.Logout(ctx)
		return 0, "", fmt.Errorf("%w: session expired", ErrNotLoggedIn)
	}

	a.client.SetToken(s.Token)
	defer a.client.SetToken("")

	id, name, err := a.client.WhoAmI(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			_ = a.Logout(ctx)
			return 0, "", fmt.Errorf("%w: %w", ErrNotLoggedIn, err)
		}
		return 0, "", err
	}
	return id, name, nil
}

// Status returns the stored session and whether the server still accepts
// its token.
func (a *authService) Status(ctx context.Context) (*Session, bool, error) {
	s, err := a.loadSession(ctx)
	if err != nil {
		return nil, false, err
	}
	ok, err := a.client.Authenticate(ctx, s.Token)
	if err != nil {
		return s, false, err
	}
	return s, ok, nil
}

// Logout forgets the stored session. Tokens are not revoked server side.
func (a *authService) Logout(ctx context.Context) error {
	return a.getMetadataRepo(a.db).Clear(ctx)
}

func (a *authService) Close() error {
	return a.client.Close()
}
