package sqlite

import (
	"context"
	"fmt"

	"github.com/garnizeh/helpermatch/pkg/models"
)

// CreateInquiry appends an inquiry. Inquiries are never updated.
func (r *SQLiteRepo) CreateInquiry(ctx context.Context, i *models.Inquiry) (string, error) {
	if i == nil {
		return "", fmt.Errorf("inquiry is nil")
	}
	i.ID = newID()
	i.Created = now()

	_, err := r.conn.Exec(ctx, `INSERT INTO inquiries (id, employer_id, worker_id, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		i.ID, i.EmployerID, i.WorkerID, nullString(i.Message), i.Created)
	if err != nil {
		return "", fmt.Errorf("insert inquiry: %w", err)
	}
	return i.ID, nil
}

func (r *SQLiteRepo) ListInquiriesByEmployer(ctx context.Context, employerID string) ([]models.Inquiry, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, employer_id, worker_id, message, created_at FROM inquiries WHERE employer_id = ? ORDER BY created_at DESC, rowid DESC`, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Inquiry
	for rows.Next() {
		var i models.Inquiry
		if err := rows.Scan(&i.ID, &i.EmployerID, &i.WorkerID, &i.Message, &i.Created); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}
