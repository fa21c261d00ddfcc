// Package credentials turns plaintext passwords into durable argon2id
// credentials and verifies passwords against them.
//
// Hashes are stored in the PHC string format
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// with unpadded standard base64 for salt and key, so every credential carries
// the parameters it was derived with.
package credentials

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/gophforum/internal/common"
	"github.com/dmitrijs2005/gophforum/internal/server/models"
)

// Params are argon2id cost parameters. Memory is in KiB.
type Params struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	SaltLength uint32
	KeyLength  uint32
}

// DefaultParams are the OWASP-recommended argon2id settings.
func DefaultParams() Params {
	return Params{
		Time:       1,
		Memory:     64 * 1024,
		Threads:    4,
		SaltLength: 16,
		KeyLength:  32,
	}
}

const (
	minSaltLength = 8
	minKeyLength  = 16
	// Upper bounds applied to parameters read back from storage.
	maxMemoryKiB = 4 * 1024 * 1024
	maxTime      = 64
	maxKeyLength = 1024
)

// Manager derives and verifies credentials. It is safe for concurrent use.
type Manager struct {
	params Params
	rand   io.Reader

	dummy func() (models.Credential, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithRandom replaces crypto/rand as the salt source.
func WithRandom(r io.Reader) Option {
	return func(m *Manager) { m.rand = r }
}

// NewManager validates p and returns a Manager deriving with it.
func NewManager(p Params, opts ...Option) (*Manager, error) {
	errb := oops.In("credentials").Code("CREDENTIAL_PARAMS").With("params", p)
	switch {
	case p.Time < 1:
		return nil, errb.Errorf("time must be at least 1")
	case p.Threads < 1:
		return nil, errb.Errorf("threads must be at least 1")
	case p.Memory < 8*uint32(p.Threads):
		return nil, errb.Errorf("memory must be at least 8 KiB per thread")
	case p.SaltLength < minSaltLength:
		return nil, errb.Errorf("salt length must be at least %d bytes", minSaltLength)
	case p.KeyLength < minKeyLength || p.KeyLength > maxKeyLength:
		return nil, errb.Errorf("key length must be within [%d, %d]", minKeyLength, maxKeyLength)
	}

	m := &Manager{params: p, rand: rand.Reader}
	for _, opt := range opts {
		opt(m)
	}
	m.dummy = sync.OnceValues(func() (models.Credential, error) {
		password, err := common.ReadRandAlnumString(m.rand, 32)
		if err != nil {
			return models.Credential{}, oops.In("credentials").Code("CREDENTIAL_SALT_FAILED").
				Wrap(fmt.Errorf("%w: %w", common.ErrorHashing, err))
		}
		return m.Derive(password)
	})
	return m, nil
}

// Derive hashes password with a fresh random salt. It fails only when the
// random source does, with common.ErrorHashing. Password content is never
// rejected here.
func (m *Manager) Derive(password string) (models.Credential, error) {
	salt := make([]byte, m.params.SaltLength)
	if _, err := io.ReadFull(m.rand, salt); err != nil {
		return models.Credential{}, oops.In("credentials").Code("CREDENTIAL_SALT_FAILED").
			Wrap(fmt.Errorf("%w: read salt: %w", common.ErrorHashing, err))
	}

	key := argon2.IDKey([]byte(password), salt, m.params.Time, m.params.Memory, m.params.Threads, m.params.KeyLength)

	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	hash := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, m.params.Memory, m.params.Time, m.params.Threads,
		encodedSalt, base64.RawStdEncoding.EncodeToString(key))

	return models.Credential{Hash: hash, Salt: encodedSalt}, nil
}

// Verify reports whether password matches cred, re-deriving with the
// parameters embedded in cred.Hash and comparing in constant time. A
// mismatch is (false, nil). A malformed credential fails with
// common.ErrorVerification.
func (m *Manager) Verify(password string, cred models.Credential) (bool, error) {
	p, err := parseHash(cred.Hash)
	if err != nil {
		return false, err
	}
	if cred.Salt != p.encodedSalt {
		return false, malformed("salt column does not match the hash")
	}

	computed := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))

	return subtle.ConstantTimeCompare(computed, p.key) == 1, nil
}

// Dummy returns a valid credential for a random password, derived once per
// Manager. Verifying against it costs the same as a real verification, so
// callers can spend it on lookups of unknown users.
func (m *Manager) Dummy() (models.Credential, error) {
	return m.dummy()
}

type parsedHash struct {
	time, memory uint32
	threads      uint8
	encodedSalt  string
	salt, key    []byte
}

func malformed(format string, args ...any) error {
	return oops.In("credentials").Code("CREDENTIAL_MALFORMED").
		Wrapf(common.ErrorVerification, format, args...)
}

func parseHash(encoded string) (*parsedHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, malformed("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return nil, malformed("unsupported hash algorithm %q", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, malformed("invalid version field: %v", err)
	}
	if version != argon2.Version {
		return nil, malformed("unsupported argon2 version %d", version)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, malformed("invalid parameter field: %v", err)
	}
	if threads < 1 || threads > 255 {
		return nil, malformed("threads value %d out of range", threads)
	}
	if time < 1 || time > maxTime {
		return nil, malformed("time value %d out of range", time)
	}
	if memory < 8*threads || memory > maxMemoryKiB {
		return nil, malformed("memory value %d out of range", memory)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, malformed("invalid salt encoding: %v", err)
	}
	if len(salt) == 0 {
		return nil, malformed("empty salt")
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, malformed("invalid key encoding: %v", err)
	}
	if len(key) == 0 || len(key) > maxKeyLength {
		return nil, malformed("invalid key length %d", len(key))
	}

	return &parsedHash{
		time:        time,
		memory:      memory,
		threads:     uint8(threads),
		encodedSalt: parts[4],
		salt:        salt,
		key:         key,
	}, nil
}
