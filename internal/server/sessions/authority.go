// Package sessions issues opaque bearer tokens at login and checks them on
// every authenticated request. Tokens are only ever validated against the
// store; nothing is cached in process.
package sessions

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/samber/oops"

	"github.com/dmitrijs2005/gophforum/internal/common"
	"github.com/dmitrijs2005/gophforum/internal/dbx"
	"github.com/dmitrijs2005/gophforum/internal/server/models"
	"github.com/dmitrijs2005/gophforum/internal/server/repositories/repomanager"
)

// Policy holds the session settings taken from the server config.
type Policy struct {
	TTL         time.Duration
	TokenLength int
	// ResolveRequiresUnexpired makes ResolveIdentity reject expired bindings.
	ResolveRequiresUnexpired bool
}

// DefaultPolicy issues 32 character tokens valid for 10 days.
func DefaultPolicy() Policy {
	return Policy{TTL: 240 * time.Hour, TokenLength: 32, ResolveRequiresUnexpired: true}
}

// Authority mints, validates and resolves session tokens.
type Authority struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	policy      Policy
	now         func() time.Time
	rand        io.Reader
}

// Option configures an Authority.
type Option func(*Authority)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) { a.now = now }
}

// WithRandom replaces crypto/rand as the token source.
func WithRandom(r io.Reader) Option {
	return func(a *Authority) { a.rand = r }
}

func NewAuthority(db *sql.DB, m repomanager.RepositoryManager, p Policy, opts ...Option) *Authority {
	d := DefaultPolicy()
	if p.TTL <= 0 {
		p.TTL = d.TTL
	}
	if p.TokenLength <= 0 {
		p.TokenLength = d.TokenLength
	}

	a := &Authority{db: db, repomanager: m, policy: p, now: time.Now, rand: rand.Reader}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// IssueToken creates a new session for identityID and returns its token and
// expiry. The identity is checked inside the same transaction as the insert;
// an unknown identity fails with common.ErrorNotFound.
func (a *Authority) IssueToken(ctx context.Context, identityID int64) (string, time.Time, error) {
	errb := oops.In("sessions").With("user_id", identityID)

	token, err := common.ReadRandAlnumString(a.rand, a.policy.TokenLength)
	if err != nil {
		return "", time.Time{}, errb.Code("SESSION_TOKEN_RAND").
			Wrap(fmt.Errorf("%w: generate token: %w", common.ErrorInternal, err))
	}

	now := a.now().UTC()
	session := &models.Session{
		UserID:    identityID,
		Token:     token,
		ExpiresAt: now.Add(a.policy.TTL),
		CreatedAt: now,
	}

	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := a.repomanager.Users(tx).GetUsernameByID(ctx, identityID); err != nil {
			return err
		}
		return a.repomanager.Sessions(tx).Create(ctx, session)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", time.Time{}, errb.Code("SESSION_IDENTITY_NOT_FOUND").Wrap(err)
		}
		return "", time.Time{}, errb.Code("SESSION_STORE").Wrap(storageError(err))
	}

	return session.Token, session.ExpiresAt, nil
}

// ValidateToken reports whether at least one binding for token is unexpired.
// Unknown and expired tokens are (false, nil); only store faults are errors.
func (a *Authority) ValidateToken(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	bindings, err := a.repomanager.Sessions(a.db).FindByToken(ctx, token)
	if err != nil {
		return false, oops.In("sessions").Code("SESSION_STORE").Wrap(storageError(err))
	}

	now := a.now()
	for _, b := range bindings {
		if b.ValidAt(now) {
			return true, nil
		}
	}
	return false, nil
}

// ResolveIdentity returns the identity bound to token. No binding is
// common.ErrorNotFound and more than one is common.ErrorStorage. With
// ResolveRequiresUnexpired an expired binding is common.ErrorInvalid.
func (a *Authority) ResolveIdentity(ctx context.Context, token string) (int64, error) {
	errb := oops.In("sessions")

	if token == "" {
		return 0, errb.Code("SESSION_NOT_FOUND").Wrap(common.ErrorNotFound)
	}

	bindings, err := a.repomanager.Sessions(a.db).FindByToken(ctx, token)
	if err != nil {
		return 0, errb.Code("SESSION_STORE").Wrap(storageError(err))
	}

	switch len(bindings) {
	case 0:
		return 0, errb.Code("SESSION_NOT_FOUND").Wrap(common.ErrorNotFound)
	case 1:
	default:
		return 0, errb.Code("SESSION_DUPLICATE_TOKEN").With("bindings", len(bindings)).
			Wrapf(common.ErrorStorage, "token bound %d times", len(bindings))
	}

	b := bindings[0]
	if a.policy.ResolveRequiresUnexpired && !b.ValidAt(a.now()) {
		return 0, errb.Code("SESSION_EXPIRED").With("user_id", b.UserID).Wrap(common.ErrorInvalid)
	}
	return b.UserID, nil
}

func storageError(err error) error {
	if errors.Is(err, common.ErrorStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrorStorage, err)
}
