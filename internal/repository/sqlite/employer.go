package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/helpermatch/pkg/models"
	"github.com/garnizeh/helpermatch/pkg/repository"
)

func (r *SQLiteRepo) CreateEmployer(ctx context.Context, e *models.Employer) (string, error) {
	if e == nil {
		return "", fmt.Errorf("employer is nil")
	}
	e.ID = newID()
	e.Created = now()

	_, err := r.conn.Exec(ctx, `INSERT INTO employers (id, user_id, contact_name, company_name, phone, district, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.ContactName, nullString(e.CompanyName), nullString(e.Phone), nullString(e.District), e.Created)
	if err != nil {
		return "", fmt.Errorf("insert employer: %w", err)
	}
	return e.ID, nil
}

func (r *SQLiteRepo) GetEmployerByUserID(ctx context.Context, userID string) (*models.Employer, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, user_id, contact_name, company_name, phone, district, created_at FROM employers WHERE user_id = ?`, userID)
	var e models.Employer
	if err := row.Scan(&e.ID, &e.UserID, &e.ContactName, &e.CompanyName, &e.Phone, &e.District, &e.Created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// UpdateEmployer rewrites the editable fields of the employer owned by e.UserID.
func (r *SQLiteRepo) UpdateEmployer(ctx context.Context, e *models.Employer) error {
	res, err := r.conn.Exec(ctx, `UPDATE employers SET contact_name = ?, company_name = ?, phone = ?, district = ? WHERE user_id = ?`,
		e.ContactName, nullString(e.CompanyName), nullString(e.Phone), nullString(e.District), e.UserID)
	if err != nil {
		return fmt.Errorf("update employer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
