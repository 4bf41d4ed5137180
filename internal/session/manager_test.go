package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ankit-modi39/fi-inventory-management/internal/gateway"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionTTL = 30 * time.Minute

// signedToken builds a token the way the inventory service issues them.
func signedToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()

	tok, err := jwt.NewBuilder().
		Subject("alice").
		Expiration(time.Now().Add(expiresIn)).
		Build()
	require.NoError(t, err)

	key, err := jwk.Import([]byte("test-secret-key-0123456789abcdef"))
	require.NoError(t, err)

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), key))
	require.NoError(t, err)
	return string(signed)
}

func managerWithToken(t *testing.T, token string) *Manager {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			_, _ = w.Write([]byte(`{"access_token": "` + token + `", "token_type": "bearer"}`))
		case "/register":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"message": "User registered successfully"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail": "Not found"}`))
		}
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.DiscardHandler)
	gw := gateway.NewClient(srv.URL, srv.Client(), logger)
	return NewManager(gw, sessionTTL, 10, logger)
}

func Test_Manager_Login(t *testing.T) {
	// given
	m := managerWithToken(t, signedToken(t, 10*time.Minute))

	// when
	session, err := m.Login(context.Background(), "alice", "secret")

	// then: the session expires with the token, not the TTL
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "alice", session.Username)
	assert.NotNil(t, session.Controller)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), session.ExpiresAt, 5*time.Second)

	got, err := m.Get(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)
}

func Test_Manager_ExpiryCappedByTTL(t *testing.T) {
	// given: a token that outlives the configured TTL
	m := managerWithToken(t, signedToken(t, 2*time.Hour))

	// when
	session, err := m.Login(context.Background(), "alice", "secret")

	// then
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(sessionTTL), session.ExpiresAt, 5*time.Second)
}

func Test_Manager_OpaqueTokenFallsBackToTTL(t *testing.T) {
	// given: a token the console cannot read
	m := managerWithToken(t, "not-a-jwt")

	// when
	session, err := m.Login(context.Background(), "alice", "secret")

	// then
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(sessionTTL), session.ExpiresAt, 5*time.Second)
}

func Test_Manager_LoginFailure(t *testing.T) {
	// given: a service rejecting the credentials
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Invalid credentials"}`))
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.DiscardHandler)
	m := NewManager(gateway.NewClient(srv.URL, srv.Client(), logger), sessionTTL, 10, logger)

	// when
	_, err := m.Login(context.Background(), "alice", "wrong")

	// then: the service's detail message is preserved
	require.Error(t, err)
	var statusErr *gateway.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.Status)
	assert.Equal(t, "Invalid credentials", statusErr.Detail)
}

func Test_Manager_GetUnknownSession(t *testing.T) {
	m := managerWithToken(t, signedToken(t, 10*time.Minute))

	_, err := m.Get("no-such-session")

	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func Test_Manager_ExpiredSessionIsDropped(t *testing.T) {
	// given
	m := managerWithToken(t, signedToken(t, 10*time.Minute))
	session, err := m.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	// when
	session.ExpiresAt = time.Now().Add(-time.Minute)
	_, err = m.Get(session.ID)

	// then
	assert.ErrorIs(t, err, ErrSessionNotFound)
	m.mu.RLock()
	_, stillThere := m.sessions[session.ID]
	m.mu.RUnlock()
	assert.False(t, stillThere)
}

func Test_Manager_Logout(t *testing.T) {
	// given
	m := managerWithToken(t, signedToken(t, 10*time.Minute))
	session, err := m.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	// when
	m.Logout(session.ID)

	// then
	_, err = m.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
