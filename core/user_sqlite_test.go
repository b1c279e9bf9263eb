package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type UserFixture struct {
	*BaseFixture
	userStore UserStore
}

func NewUserFixture(t *testing.T) *UserFixture {
	base := NewBaseFixture(t)
	return &UserFixture{
		BaseFixture: base,
		userStore:   NewSQLiteUserStore(base.db),
	}
}

func TestCreateUser(t *testing.T) {
	f := NewUserFixture(t)
	defer f.tearDown()

	id, err := f.userStore.CreateUser(f.ctx, User{Username: "alice", Password: "secretpass"})
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	profile, err := f.userStore.GetUserByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "alice", profile.Username)
	assert.Empty(t, profile.Bio)
	assert.Empty(t, profile.Photo)
}

func TestCreateUserConflict(t *testing.T) {
	f := NewUserFixture(t)
	defer f.tearDown()

	_, err := f.userStore.CreateUser(f.ctx, User{Username: "alice", Password: "secretpass"})
	require.NoError(t, err)

	_, err = f.userStore.CreateUser(f.ctx, User{Username: "alice", Password: "otherpass1"})
	require.ErrorIs(t, err, ErrConflictedUser)
}

func TestGetUserByUsername(t *testing.T) {
	f := NewUserFixture(t)
	defer f.tearDown()

	seedUsers(f.ctx, f.t, f.userStore, User{Username: "alice", Password: "secretpass"})

	profile, err := f.userStore.GetUserByUsername(f.ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "alice", profile.Username)

	missing, err := f.userStore.GetUserByUsername(f.ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListUsersExcept(t *testing.T) {
	f := NewUserFixture(t)
	defer f.tearDown()

	ids := seedUsers(f.ctx, f.t, f.userStore,
		User{Username: "carol", Password: "secretpass"},
		User{Username: "alice", Password: "secretpass"},
		User{Username: "bob", Password: "secretpass"},
	)

	users, err := f.userStore.ListUsersExcept(f.ctx, ids[0])
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}

func TestListUsersExceptEmpty(t *testing.T) {
	f := NewUserFixture(t)
	defer f.tearDown()

	ids := seedUsers(f.ctx, f.t, f.userStore, User{Username: "alice", Password: "secretpass"})

	users, err := f.userStore.ListUsersExcept(f.ctx, ids[0])
	require.NoError(t, err)
	assert.Nil(t, users)
}

func TestSearchUsers(t *testing.T) {
	f := NewUserFixture(t)
	defer f.tearDown()

	seedUsers(f.ctx, f.t, f.userStore,
		User{Username: "alice", Password: "secretpass"},
		User{Username: "alicia", Password: "secretpass"},
		User{Username: "bob", Password: "secretpass"},
	)

	users, err := f.userStore.SearchUsers(f.ctx, "ali")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "alicia", users[1].Username)
}

func TestUpdateBioAndPhoto(t *testing.T) {
	f := NewUserFixture(t)
	defer f.tearDown()

	ids := seedUsers(f.ctx, f.t, f.userStore, User{Username: "alice", Password: "secretpass"})

	require.NoError(t, f.userStore.UpdateBio(f.ctx, ids[0], "hello there"))
	require.NoError(t, f.userStore.UpdatePhoto(f.ctx, ids[0], "/uploads/abc.png"))

	profile, err := f.userStore.GetUserByID(f.ctx, ids[0])
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "hello there", profile.Bio)
	assert.Equal(t, "/uploads/abc.png", profile.Photo)
}

func TestComparePassword(t *testing.T) {
	f := NewUserFixture(t)
	defer f.tearDown()

	ids := seedUsers(f.ctx, f.t, f.userStore, User{Username: "alice", Password: "secretpass"})

	id, ok, err := f.userStore.ComparePassword(f.ctx, "alice", "secretpass")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ids[0], id)

	_, ok, err = f.userStore.ComparePassword(f.ctx, "alice", "wrongpass1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = f.userStore.ComparePassword(f.ctx, "nobody", "secretpass")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordIsStoredHashed(t *testing.T) {
	f := NewUserFixture(t)
	defer f.tearDown()

	seedUsers(f.ctx, f.t, f.userStore, User{Username: "alice", Password: "secretpass"})

	var stored string
	err := f.db.QueryRowContext(f.ctx,
		"SELECT password FROM users WHERE username = ?", "alice").Scan(&stored)
	require.NoError(t, err)
	assert.NotEqual(t, "secretpass", stored)
}
