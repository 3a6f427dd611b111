package sqlite

import (
	"context"
	"fmt"

	"scrum/internal/models"
)

const userColumns = `id, username, email, first_name, last_name, is_active`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.IsActive)
	return u, err
}

// identityColumn maps an identity field to its column; only known fields
// ever reach a query.
func identityColumn(field models.IdentityField) (string, error) {
	switch field {
	case models.IdentityUsername:
		return "username", nil
	case models.IdentityEmail:
		return "email", nil
	default:
		return "", fmt.Errorf("unsupported identity field %q", field)
	}
}

// ListUsers returns users ordered by the given identity field.
func (s *Store) ListUsers(ctx context.Context, field models.IdentityField) ([]models.User, error) {
	col, err := identityColumn(field)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY `+col+`, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser persists a new user.
func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO users(username, email, first_name, last_name, is_active) VALUES(?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.FirstName, u.LastName, u.IsActive)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("user id: %w", err)
	}
	return s.GetUser(ctx, id)
}

// GetUser fetches a single user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if isNoRows(err) {
		return models.User{}, notFound("user")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UserByIdentity fetches a user by the value of its identity field.
func (s *Store) UserByIdentity(ctx context.Context, field models.IdentityField, value string) (models.User, error) {
	col, err := identityColumn(field)
	if err != nil {
		return models.User{}, err
	}
	if value == "" {
		return models.User{}, notFound("user")
	}
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+col+` = ?`, value))
	if isNoRows(err) {
		return models.User{}, notFound("user")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user by %s: %w", col, err)
	}
	return u, nil
}

// IdentityTaken reports whether another user already holds value.
func (s *Store) IdentityTaken(ctx context.Context, field models.IdentityField, value string, excludeID int64) (bool, error) {
	col, err := identityColumn(field)
	if err != nil {
		return false, err
	}
	var n int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE `+col+` = ? AND id <> ?`, value, excludeID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", col, err)
	}
	return n > 0, nil
}

// UpdateUser overwrites the stored user with u.
func (s *Store) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET username = ?, email = ?, first_name = ?, last_name = ?, is_active = ? WHERE id = ?`,
		u.Username, u.Email, u.FirstName, u.LastName, u.IsActive, u.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	if err := checkAffected(res, "user"); err != nil {
		return models.User{}, err
	}
	return s.GetUser(ctx, u.ID)
}

// DeleteUser removes a user; their tasks become unassigned.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return checkAffected(res, "user")
}
