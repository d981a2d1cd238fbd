package db

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/hydra/internal/model"
)

// ErrProtectedUser is returned for attempts to delete or downgrade the
// seeded admin account.
var ErrProtectedUser = errors.New("the admin account cannot be deleted or downgraded")

// inserts a new user, returns the new user ID.
func (s *Store) CreateUser(username, hashedPassword, role string) (int, error) {
	conn, err := s.handle()
	if err != nil {
		return 0, err
	}
	res, err := conn.Exec(`
		INSERT INTO users (username, hashed_password, role)
		VALUES (?, ?, ?)`,
		username, hashedPassword, role)
	if err != nil {
		if !IsConflict(err) {
			log.Error().Err(err).Str("username", username).Msg("failed to create user")
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	return int(id), err
}

// fetches a user by username (case-insensitive). Returns sql.ErrNoRows if absent.
func (s *Store) GetUserByUsername(username string) (*model.User, error) {
	conn, err := s.handle()
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := conn.Get(&u, `
		SELECT id, username, hashed_password, role, created_at
		FROM users
		WHERE username = ?`, username); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByID(id int) (*model.User, error) {
	conn, err := s.handle()
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := conn.Get(&u, `
		SELECT id, username, hashed_password, role, created_at
		FROM users
		WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) ListUsers() ([]model.User, error) {
	conn, err := s.handle()
	if err != nil {
		return nil, err
	}
	var users []model.User
	err = conn.Select(&users, `
		SELECT id, username, hashed_password, role, created_at
		FROM users
		ORDER BY username`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
	}
	return users, err
}

// UpdateUserRole changes a user's role. The seeded admin account cannot be
// downgraded.
func (s *Store) UpdateUserRole(id int, role string) error {
	u, err := s.GetUserByID(id)
	if err != nil {
		return err
	}
	if u.Username == model.ProtectedUsername && role != model.RoleAdmin {
		return ErrProtectedUser
	}
	conn, err := s.handle()
	if err != nil {
		return err
	}
	_, err = conn.Exec(`UPDATE users SET role = ? WHERE id = ?`, role, id)
	return err
}

func (s *Store) UpdateUserPassword(id int, hashedPassword string) error {
	conn, err := s.handle()
	if err != nil {
		return err
	}
	_, err = conn.Exec(`UPDATE users SET hashed_password = ? WHERE id = ?`, hashedPassword, id)
	return err
}

// DeleteUser removes a user. The seeded admin account cannot be deleted.
func (s *Store) DeleteUser(id int) error {
	u, err := s.GetUserByID(id)
	if err != nil {
		return err
	}
	if u.Username == model.ProtectedUsername {
		return ErrProtectedUser
	}
	conn, err := s.handle()
	if err != nil {
		return err
	}
	_, err = conn.Exec(`DELETE FROM users WHERE id = ?`, id)
	return err
}
