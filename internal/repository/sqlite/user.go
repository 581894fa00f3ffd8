package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/helpermatch/pkg/models"
	"github.com/garnizeh/helpermatch/pkg/repository"
)

const userColumns = `id, email, password_hash, phone, phone_confirmed_at, provider, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Phone, &u.PhoneConfirmedAt, &u.Provider, &u.Created); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (string, error) {
	if u == nil {
		return "", fmt.Errorf("user is nil")
	}
	if u.ID == "" {
		u.ID = newID()
	}
	if u.Provider == "" {
		u.Provider = "email"
	}
	u.Created = now()

	_, err := r.conn.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, nullString(u.Email), u.PasswordHash, nullString(u.Phone), nullInt64(u.PhoneConfirmedAt), u.Provider, u.Created)
	if err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	return u.ID, nil
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *SQLiteRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// ConfirmPhone records a verified phone number on the user.
func (r *SQLiteRepo) ConfirmPhone(ctx context.Context, userID, phone string, confirmedAt int64) error {
	res, err := r.conn.Exec(ctx, `UPDATE users SET phone = ?, phone_confirmed_at = ? WHERE id = ?`, phone, confirmedAt, userID)
	if err != nil {
		return fmt.Errorf("confirm phone: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) AddRole(ctx context.Context, userID string, role models.Role) error {
	if _, err := r.conn.Exec(ctx, `INSERT OR IGNORE INTO user_roles (user_id, role) VALUES (?, ?)`, userID, string(role)); err != nil {
		return fmt.Errorf("add role: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) ListRoles(ctx context.Context, userID string) ([]models.Role, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT role FROM user_roles WHERE user_id = ? ORDER BY role`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		out = append(out, models.Role(role))
	}
	return out, rows.Err()
}
