package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type SQLiteUserStore struct {
	db *sql.DB
}

func NewSQLiteUserStore(db *sql.DB) *SQLiteUserStore {
	return &SQLiteUserStore{
		db: db,
	}
}

func (s *SQLiteUserStore) CreateUser(ctx context.Context, user User) (int64, error) {
	eu, err := s.GetUserByUsername(ctx, user.Username)
	if err != nil {
		return 0, fmt.Errorf("checking if user exists: %w", err)
	}

	if eu != nil {
		return 0, ErrConflictedUser
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hashing password: %w", err)
	}

	row := s.db.QueryRowContext(ctx,
		"INSERT INTO users (username, password, bio, photo) VALUES (@username, @password, @bio, @photo) RETURNING id",
		sql.Named("username", user.Username), sql.Named("password", string(hashed)),
		sql.Named("bio", user.Bio), sql.Named("photo", user.Photo))

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("creating user: %w", err)
	}

	return id, nil
}

func (s *SQLiteUserStore) GetUserByID(ctx context.Context, id int64) (*Profile, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, bio, photo FROM users WHERE id = ? LIMIT 1", id)
	return scanProfile(row)
}

func (s *SQLiteUserStore) GetUserByUsername(ctx context.Context, username string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, bio, photo FROM users WHERE username = ? LIMIT 1", username)
	return scanProfile(row)
}

func scanProfile(row *sql.Row) (*Profile, error) {
	profile := new(Profile)
	err := row.Scan(&profile.ID, &profile.Username, &profile.Bio, &profile.Photo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return profile, nil
}

func (s *SQLiteUserStore) ListUsersExcept(ctx context.Context, id int64) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, username, bio, photo FROM users WHERE id != ? ORDER BY username ASC", id)
	if err != nil {
		return nil, fmt.Errorf("QueryContext: %w", err)
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func (s *SQLiteUserStore) SearchUsers(ctx context.Context, q string) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, username, bio, photo FROM users WHERE username LIKE @q ORDER BY username ASC",
		sql.Named("q", "%"+q+"%"))
	if err != nil {
		return nil, fmt.Errorf("QueryContext: %w", err)
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func scanProfiles(rows *sql.Rows) ([]Profile, error) {
	var profiles []Profile
	for rows.Next() {
		var profile Profile
		if err := rows.Scan(&profile.ID, &profile.Username, &profile.Bio, &profile.Photo); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}
	return profiles, nil
}

func (s *SQLiteUserStore) UpdateBio(ctx context.Context, id int64, bio string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET bio = @bio WHERE id = @id",
		sql.Named("bio", bio), sql.Named("id", id))
	if err != nil {
		return fmt.Errorf("ExecContext: %w", err)
	}
	return nil
}

func (s *SQLiteUserStore) UpdatePhoto(ctx context.Context, id int64, photo string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET photo = @photo WHERE id = @id",
		sql.Named("photo", photo), sql.Named("id", id))
	if err != nil {
		return fmt.Errorf("ExecContext: %w", err)
	}
	return nil
}

func (s *SQLiteUserStore) ComparePassword(ctx context.Context, username, password string) (int64, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, password FROM users WHERE username = ? LIMIT 1", username)

	var id int64
	var storedPassword string

	err := row.Scan(&id, &storedPassword)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("scanning password: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(storedPassword), []byte(password)); err != nil {
		return 0, false, nil
	}

	return id, true, nil
}
