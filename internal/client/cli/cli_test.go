package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophforum/internal/client/client"
	"github.com/dmitrijs2005/gophforum/internal/client/config"
	"github.com/dmitrijs2005/gophforum/internal/client/services"
)

type fakeAuth struct {
	regUser  string
	regEmail string
	regPass  []byte
	regID    int64
	regErr   error

	loginUser string
	loginPass []byte
	session   *services.Session
	loginErr  error

	whoID   int64
	whoName string
	whoErr  error

	statusOK  bool
	statusErr error

	logoutCalled bool
	closeCalled  bool
}

func (f *fakeAuth) Register(_ context.Context, username, email string, password []byte) (int64, error) {
	f.regUser, f.regEmail, f.regPass = username, email, append([]byte(nil), password...)
	return f.regID, f.regErr
}
func (f *fakeAuth) Login(_ context.Context, username string, password []byte) (*services.Session, error) {
	f.loginUser, f.loginPass = username, append([]byte(nil), password...)
	return f.session, f.loginErr
}
func (f *fakeAuth) WhoAmI(context.Context) (int64, string, error) { return f.whoID, f.whoName, f.whoErr }
func (f *fakeAuth) Status(context.Context) (*services.Session, bool, error) {
	if f.statusErr != nil {
		return nil, false, f.statusErr
	}
	return f.session, f.statusOK, nil
}
func (f *fakeAuth) Logout(context.Context) error { f.logoutCalled = true; return nil }
func (f *fakeAuth) Close() error                 { f.closeCalled = true; return nil }

// run executes the command tree with fake dependencies and returns stdout.
func run(t *testing.T, fa *fakeAuth, stdin string, args ...string) (string, *config.Config, error) {
	t.Helper()

	var gotCfg *config.Config
	origApp, origPW := newApp, getPassword
	t.Cleanup(func() { newApp, getPassword = origApp, origPW })

	newApp = func(_ context.Context, cfg *config.Config, in io.Reader, out io.Writer) (*App, error) {
		gotCfg = cfg
		return &App{config: cfg, authService: fa, reader: bufio.NewReader(in), out: out, closers: []func() error{fa.Close}}, nil
	}
	getPassword = func(_ *bufio.Reader, _ io.Writer) ([]byte, error) { return []byte("secret"), nil }

	out := &bytes.Buffer{}
	root := NewRootCommand(strings.NewReader(stdin), out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), gotCfg, err
}

func TestRegister(t *testing.T) {
	fa := &fakeAuth{regID: 12}
	out, _, err := run(t, fa, "", "register", "alice", "--email", "a@x.com")
	require.NoError(t, err)

	assert.Equal(t, "alice", fa.regUser)
	assert.Equal(t, "a@x.com", fa.regEmail)
	assert.Equal(t, []byte("secret"), fa.regPass)
	assert.Contains(t, out, "Registered alice (id 12)")
	assert.True(t, fa.closeCalled)
}

func TestRegister_PromptsForUsername(t *testing.T) {
	fa := &fakeAuth{regID: 1}
	_, _, err := run(t, fa, "bob\n", "register")
	require.NoError(t, err)
	assert.Equal(t, "bob", fa.regUser)
}

func TestRegister_Conflict(t *testing.T) {
	fa := &fakeAuth{regErr: client.ErrConflict}
	_, _, err := run(t, fa, "", "register", "alice")
	require.ErrorIs(t, err, client.ErrConflict)
}

func TestLogin(t *testing.T) {
	fa := &fakeAuth{session: &services.Session{Username: "alice", ExpiresAt: time.Now().Add(time.Hour)}}
	out, _, err := run(t, fa, "", "login", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", fa.loginUser)
	assert.Contains(t, out, "Logged in as alice")
}

func TestWhoAmI(t *testing.T) {
	out, _, err := run(t, &fakeAuth{whoID: 3, whoName: "alice"}, "", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "alice (id 3)\n", out)
}

func TestWhoAmI_NotLoggedIn(t *testing.T) {
	_, _, err := run(t, &fakeAuth{whoErr: services.ErrNotLoggedIn}, "", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestStatus(t *testing.T) {
	s := &services.Session{Username: "alice", Server: "srv:1", ExpiresAt: time.Now().Add(time.Hour)}

	out, _, err := run(t, &fakeAuth{session: s, statusOK: true}, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice on srv:1")

	out, _, err = run(t, &fakeAuth{session: s, statusOK: false}, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "no longer valid")

	_, _, err = run(t, &fakeAuth{statusErr: client.ErrUnavailable}, "", "status")
	require.EqualError(t, err, "server unavailable")
}

func TestLogout(t *testing.T) {
	fa := &fakeAuth{}
	out, _, err := run(t, fa, "", "logout")
	require.NoError(t, err)
	assert.True(t, fa.logoutCalled)
	assert.Contains(t, out, "Logged out")
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_endpoint_addr":"json:1","state_path":"json.db","timeout":"3s"}`), 0o600))

	_, cfg, err := run(t, &fakeAuth{}, "", "logout", "-c", path, "-a", "flag:2")
	require.NoError(t, err)
	assert.Equal(t, "flag:2", cfg.ServerEndpointAddr)
	assert.Equal(t, "json.db", cfg.StatePath)
	assert.Equal(t, 3*time.Second, cfg.Timeout)

	_, cfg, err = run(t, &fakeAuth{}, "", "logout", "--timeout", "1m", "--state", "x.db")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Equal(t, "x.db", cfg.StatePath)
}

func TestHelpDoesNotBuildApp(t *testing.T) {
	origApp := newApp
	t.Cleanup(func() { newApp = origApp })
	newApp = func(context.Context, *config.Config, io.Reader, io.Writer) (*App, error) {
		return nil, errors.New("must not be called")
	}

	out := &bytes.Buffer{}
	root := NewRootCommand(strings.NewReader(""), out)
	root.SetArgs([]string{"help"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "whoami")
}

func TestGetSimpleText(t *testing.T) {
	w := &bytes.Buffer{}
	got, err := GetSimpleText(bufio.NewReader(strings.NewReader("  alice \n")), "Username", w)
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
	assert.Equal(t, "Username: ", w.String())

	got, err = GetSimpleText(bufio.NewReader(strings.NewReader("partial")), "U", io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "partial", got)

	_, err = GetSimpleText(bufio.NewReader(strings.NewReader("")), "U", io.Discard)
	require.ErrorIs(t, err, io.EOF)
}

func TestGetPassword(t *testing.T) {
	origTerm, origRead := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = origTerm, origRead })

	isTerminal = func(int) bool { return false }
	pw, err := GetPassword(bufio.NewReader(strings.NewReader("piped\r\n")), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, []byte("piped"), pw)

	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte("typed"), nil }
	pw, err = GetPassword(bufio.NewReader(strings.NewReader("")), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, []byte("typed"), pw)

	readPassword = func(int) ([]byte, error) { return nil, errors.New("tty gone") }
	_, err = GetPassword(bufio.NewReader(strings.NewReader("")), io.Discard)
	require.Error(t, err)
}

func TestAppClosedOnError(t *testing.T) {
	fa := &fakeAuth{whoErr: client.ErrUnavailable}
	_, _, err := run(t, fa, "", "whoami")
	require.Error(t, err)
	assert.True(t, fa.closeCalled)
}
