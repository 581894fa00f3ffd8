package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/helpermatch/pkg/models"
)

const mediaColumns = `id, worker_id, url, storage_path, type, caption, created_at`

func scanMedia(row interface{ Scan(...any) error }) (*models.WorkerMedia, error) {
	var m models.WorkerMedia
	if err := row.Scan(&m.ID, &m.WorkerID, &m.URL, &m.StoragePath, &m.Type, &m.Caption, &m.Created); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *SQLiteRepo) CreateMedia(ctx context.Context, m *models.WorkerMedia) (string, error) {
	if m == nil {
		return "", fmt.Errorf("media is nil")
	}
	m.ID = newID()
	if m.Created == 0 {
		m.Created = now()
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO worker_media (`+mediaColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.WorkerID, m.URL, m.StoragePath, string(m.Type), nullString(m.Caption), m.Created)
	if err != nil {
		return "", fmt.Errorf("insert media: %w", err)
	}
	return m.ID, nil
}

func (r *SQLiteRepo) GetMedia(ctx context.Context, id string) (*models.WorkerMedia, error) {
	m, err := scanMedia(r.conn.QueryRow(ctx, `SELECT `+mediaColumns+` FROM worker_media WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *SQLiteRepo) ListMediaByWorker(ctx context.Context, workerID string) ([]models.WorkerMedia, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+mediaColumns+` FROM worker_media WHERE worker_id = ? ORDER BY created_at DESC, rowid DESC`, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.WorkerMedia
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) DeleteMedia(ctx context.Context, id string) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM worker_media WHERE id = ?`, id)
	return err
}
