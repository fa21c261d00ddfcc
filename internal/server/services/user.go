// Package services contains server-side business logic. UserService exposes
// the register, login and authenticate entry points on top of the credential
// manager, the session authority and the user repository.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophforum/internal/common"
	"github.com/dmitrijs2005/gophforum/internal/logging"
	"github.com/dmitrijs2005/gophforum/internal/server/models"
	"github.com/dmitrijs2005/gophforum/internal/server/repositories/repomanager"
)

// CredentialManager derives and verifies password credentials.
type CredentialManager interface {
	Derive(password string) (models.Credential, error)
	Verify(password string, cred models.Credential) (bool, error)
	Dummy() (models.Credential, error)
}

// SessionAuthority issues and checks session tokens.
type SessionAuthority interface {
	IssueToken(ctx context.Context, identityID int64) (string, time.Time, error)
	ValidateToken(ctx context.Context, token string) (bool, error)
	ResolveIdentity(ctx context.Context, token string) (int64, error)
}

// UserService implements the user-facing authentication flows.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	credentials CredentialManager
	sessions    SessionAuthority
	logger      logging.Logger
	now         func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, c CredentialManager, s SessionAuthority, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		credentials: c,
		sessions:    s,
		logger:      logger.With("module", "services.user"),
		now:         time.Now,
	}
}

// Register creates an identity and returns its id. An empty username or
// password is common.ErrorInvalid; a taken username or email is
// common.ErrorConflict.
func (s *UserService) Register(ctx context.Context, username, email, password string) (int64, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" {
		return 0, fmt.Errorf("%w: username and password are required", common.ErrorInvalid)
	}

	cred, err := s.credentials.Derive(password)
	if err != nil {
		s.logger.Error(ctx, "derive credential failed", "username", username, "error", err)
		return 0, err
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		UserName:   username,
		Email:      email,
		Credential: cred,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return 0, common.ErrorConflict
		}
		s.logger.Error(ctx, "create user failed", "username", username, "error", err)
		return 0, fmt.Errorf("%w: create user: %w", common.ErrorStorage, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user.ID, nil
}

// Login checks the password and issues a new session. Unknown users and
// wrong passwords are both common.ErrorInvalid and cost one verification.
// A corrupt stored credential surfaces as common.ErrorVerification.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	username = strings.TrimSpace(username)

	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnVerification(ctx, password)
			return nil, common.ErrorInvalid
		}
		s.logger.Error(ctx, "lookup user failed", "username", username, "error", err)
		return nil, fmt.Errorf("%w: lookup user: %w", common.ErrorStorage, err)
	}

	ok, err := s.credentials.Verify(password, user.Credential)
	if err != nil {
		s.logger.Error(ctx, "stored credential is malformed", "user_id", user.ID, "error", err)
		return nil, err
	}
	if !ok {
		s.logger.Info(ctx, "login rejected", "user_id", user.ID)
		return nil, common.ErrorInvalid
	}

	token, expiresAt, err := s.sessions.IssueToken(ctx, user.ID)
	if err != nil {
		s.logger.Error(ctx, "issue token failed", "user_id", user.ID, "error", err)
		return nil, err
	}

	return &models.Session{UserID: user.ID, Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate reports whether token is currently honored.
func (s *UserService) Authenticate(ctx context.Context, token string) (bool, error) {
	ok, err := s.sessions.ValidateToken(ctx, token)
	if err != nil {
		s.logger.Error(ctx, "validate token failed", "error", err)
		return false, err
	}
	return ok, nil
}

// Identify resolves token to the identity it was issued to.
func (s *UserService) Identify(ctx context.Context, token string) (int64, error) {
	id, err := s.sessions.ResolveIdentity(ctx, token)
	if err != nil && errors.Is(err, common.ErrorStorage) {
		s.logger.Error(ctx, "resolve token failed", "error", err)
	}
	return id, err
}

// WhoAmI returns the id and username of identityID.
func (s *UserService) WhoAmI(ctx context.Context, identityID int64) (*models.User, error) {
	name, err := s.repomanager.Users(s.db).GetUsernameByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "lookup username failed", "user_id", identityID, "error", err)
		return nil, fmt.Errorf("%w: lookup username: %w", common.ErrorStorage, err)
	}
	return &models.User{ID: identityID, UserName: name}, nil
}

func (s *UserService) burnVerification(ctx context.Context, password string) {
	dummy, err := s.credentials.Dummy()
	if err != nil {
		s.logger.Warn(ctx, "dummy credential unavailable", "error", err)
		return
	}
	_, _ = s.credentials.Verify(password, dummy)
}
