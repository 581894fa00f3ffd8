package sqlite

import (
	"context"
	"fmt"

	"github.com/garnizeh/helpermatch/pkg/models"
	"github.com/garnizeh/helpermatch/pkg/repository"
)

// feedQuery aggregates like counts and resolves the viewer's own like and
// bookmark in one pass. The viewer id is bound twice; an empty id matches no rows.
const feedQuery = `
SELECT m.id, m.worker_id, m.url, m.type, m.caption, m.created_at,
       w.name, w.nationality, w.photo_url,
       (SELECT COUNT(1) FROM media_likes l WHERE l.media_id = m.id),
       EXISTS (SELECT 1 FROM media_likes l WHERE l.media_id = m.id AND l.user_id = ?),
       EXISTS (SELECT 1 FROM media_bookmarks b WHERE b.media_id = m.id AND b.user_id = ?)
FROM worker_media m
JOIN workers w ON w.id = m.worker_id
ORDER BY m.created_at DESC, m.rowid DESC
LIMIT ?`

// Feed returns the newest media first. limit <= 0 means no limit.
func (r *SQLiteRepo) Feed(ctx context.Context, viewerID string, limit int) ([]models.FeedItem, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.conn.QueryRows(ctx, feedQuery, viewerID, viewerID, limit)
	if err != nil {
		return nil, fmt.Errorf("feed query: %w", err)
	}
	defer rows.Close()

	var out []models.FeedItem
	for rows.Next() {
		var it models.FeedItem
		if err := rows.Scan(&it.ID, &it.WorkerID, &it.URL, &it.Type, &it.Caption, &it.Created,
			&it.WorkerName, &it.Nationality, &it.PhotoURL,
			&it.LikeCount, &it.Liked, &it.Bookmarked); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Like and Bookmark are idempotent. A missing media row fails with
// repository.ErrNotFound.
func (r *SQLiteRepo) Like(ctx context.Context, mediaID, userID string) error {
	_, err := r.conn.Exec(ctx, `INSERT OR IGNORE INTO media_likes (media_id, user_id, created_at) VALUES (?, ?, ?)`, mediaID, userID, now())
	return toggleErr(err)
}

func (r *SQLiteRepo) Unlike(ctx context.Context, mediaID, userID string) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM media_likes WHERE media_id = ? AND user_id = ?`, mediaID, userID)
	return err
}

func (r *SQLiteRepo) Bookmark(ctx context.Context, mediaID, userID string) error {
	_, err := r.conn.Exec(ctx, `INSERT OR IGNORE INTO media_bookmarks (media_id, user_id, created_at) VALUES (?, ?, ?)`, mediaID, userID, now())
	return toggleErr(err)
}

func (r *SQLiteRepo) Unbookmark(ctx context.Context, mediaID, userID string) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM media_bookmarks WHERE media_id = ? AND user_id = ?`, mediaID, userID)
	return err
}

// INSERT OR IGNORE does not cover foreign keys.
func toggleErr(err error) error {
	if isForeignKeyViolation(err) {
		return repository.ErrNotFound
	}
	return err
}
