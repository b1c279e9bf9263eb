package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type AuthFixture struct {
	*BaseFixture
	userStore UserStore
	authStore AuthStore
}

func NewAuthFixture(t *testing.T) *AuthFixture {
	base := NewBaseFixture(t)
	userStore := NewSQLiteUserStore(base.db)
	return &AuthFixture{
		BaseFixture: base,
		userStore:   userStore,
		authStore:   NewJWTAuthStore(userStore, []byte("secret"), time.Hour),
	}
}

func TestNewSession(t *testing.T) {
	f := NewAuthFixture(t)
	defer f.tearDown()

	ids := seedUsers(f.ctx, f.t, f.userStore, User{Username: "alice", Password: "secretpass"})

	session, err := f.authStore.NewSession(f.ctx, "alice", "secretpass")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, ids[0], session.UserID)
	assert.Equal(t, "alice", session.Username)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))
}

func TestNewSessionBadCredentials(t *testing.T) {
	f := NewAuthFixture(t)
	defer f.tearDown()

	seedUsers(f.ctx, f.t, f.userStore, User{Username: "alice", Password: "secretpass"})

	_, err := f.authStore.NewSession(f.ctx, "alice", "wrongpass1")
	require.ErrorIs(t, err, ErrBadCredentials)

	_, err = f.authStore.NewSession(f.ctx, "nobody", "secretpass")
	require.ErrorIs(t, err, ErrBadCredentials)
}

func TestSessionRoundTrip(t *testing.T) {
	f := NewAuthFixture(t)
	defer f.tearDown()

	seedUsers(f.ctx, f.t, f.userStore, User{Username: "alice", Password: "secretpass"})

	session, err := f.authStore.NewSession(f.ctx, "alice", "secretpass")
	require.NoError(t, err)

	got, err := f.authStore.Session(f.ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)
	assert.Equal(t, session.Username, got.Username)
}

func TestSessionRejectsBadToken(t *testing.T) {
	f := NewAuthFixture(t)
	defer f.tearDown()

	_, err := f.authStore.Session(f.ctx, "not.a.token")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSessionRejectsExpiredToken(t *testing.T) {
	f := NewAuthFixture(t)
	defer f.tearDown()

	seedUsers(f.ctx, f.t, f.userStore, User{Username: "alice", Password: "secretpass"})

	expired := NewJWTAuthStore(f.userStore, []byte("secret"), -time.Hour)
	session, err := expired.NewSession(f.ctx, "alice", "secretpass")
	require.NoError(t, err)

	_, err = f.authStore.Session(f.ctx, session.Token)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestDestroySessionIsStateless(t *testing.T) {
	f := NewAuthFixture(t)
	defer f.tearDown()

	seedUsers(f.ctx, f.t, f.userStore, User{Username: "alice", Password: "secretpass"})

	session, err := f.authStore.NewSession(f.ctx, "alice", "secretpass")
	require.NoError(t, err)

	require.NoError(t, f.authStore.DestroySession(f.ctx, *session))

	// the token stays valid until it expires
	_, err = f.authStore.Session(f.ctx, session.Token)
	require.NoError(t, err)
}
