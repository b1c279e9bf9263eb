package core

import (
	"context"
	"errors"
)

// User represents a registered account. Password is only populated on input;
// it is stored hashed and never read back.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8"`
	Bio      string `json:"bio"`
	Photo    string `json:"photo"`
}

// Validate validates the user input for registration.
func (u *User) Validate() error {
	return validate.Struct(u)
}

// Profile is the public view of a user.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Photo    string `json:"photo"`
}

var (
	ErrConflictedUser = errors.New("user already exists")
)

type UserStore interface {
	// CreateUser creates a new user with a hashed password and returns the
	// assigned id. If the username is taken it returns ErrConflictedUser.
	CreateUser(ctx context.Context, user User) (int64, error)

	// GetUserByID returns the profile of the user with the given id.
	// If the user is not found, it returns nil.
	GetUserByID(ctx context.Context, id int64) (*Profile, error)

	// GetUserByUsername returns the profile of the user with the given username.
	// If the user is not found, it returns nil.
	GetUserByUsername(ctx context.Context, username string) (*Profile, error)

	// ListUsersExcept returns every user except the one with the given id,
	// ordered by username. A nil slice is returned when there are none.
	ListUsersExcept(ctx context.Context, id int64) ([]Profile, error)

	// SearchUsers returns users whose username contains q.
	SearchUsers(ctx context.Context, q string) ([]Profile, error)

	UpdateBio(ctx context.Context, id int64, bio string) error

	UpdatePhoto(ctx context.Context, id int64, photo string) error

	// ComparePassword reports whether the password matches the stored hash
	// for the username. The returned id is only valid when ok is true.
	ComparePassword(ctx context.Context, username, password string) (id int64, ok bool, err error)
}
