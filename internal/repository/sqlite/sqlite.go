package sqlite

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/garnizeh/helpermatch/internal/db"
	"github.com/garnizeh/helpermatch/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.UserRepo = (*SQLiteRepo)(nil)
var _ repository.EmployerRepo = (*SQLiteRepo)(nil)
var _ repository.WorkerRepo = (*SQLiteRepo)(nil)
var _ repository.MediaRepo = (*SQLiteRepo)(nil)
var _ repository.InquiryRepo = (*SQLiteRepo)(nil)
var _ repository.FeedRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

func newID() string {
	return uuid.NewString()
}

// nullable values are passed to the driver as nil or their dereferenced value.
func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func nullInt64(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	b := make([]byte, 0, 2*n)
	for i := range n {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}
