package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// JWTAuthStore issues and verifies stateless JWT sessions backed by the user
// store's credentials.
type JWTAuthStore struct {
	users  UserStore
	secret []byte
	exp    time.Duration
}

func NewJWTAuthStore(users UserStore, secret []byte, exp time.Duration) *JWTAuthStore {
	if exp == 0 {
		exp = 24 * time.Hour
	}
	return &JWTAuthStore{
		users:  users,
		secret: secret,
		exp:    exp,
	}
}

func (s *JWTAuthStore) NewSession(ctx context.Context, username, password string) (*Session, error) {
	id, ok, err := s.users.ComparePassword(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("ComparePassword: %w", err)
	}
	if !ok {
		return nil, ErrBadCredentials
	}

	token, exp, err := NewToken(Profile{ID: id, Username: username}, s.exp, s.secret)
	if err != nil {
		return nil, fmt.Errorf("NewToken: %w", err)
	}

	return &Session{
		UserID:    id,
		Username:  username,
		Token:     token,
		ExpiresAt: exp,
	}, nil
}

// DestroySession is a no-op: tokens are stateless and expire on their own.
// The HTTP layer clears the cookie.
func (s *JWTAuthStore) DestroySession(ctx context.Context, session Session) error {
	return nil
}

func (s *JWTAuthStore) Session(ctx context.Context, token string) (*Session, error) {
	claims, err := VerifyToken(token, s.secret)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrTokenInvalid) || errors.Is(err, ErrUnrecognizedToken) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("VerifyToken: %w", err)
	}

	return &Session{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
