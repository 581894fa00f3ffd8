// Package media manages a worker's gallery: sequential batch uploads with
// captions, single-item deletes and listing.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/garnizeh/helpermatch/internal/storage"
	"github.com/garnizeh/helpermatch/pkg/models"
	"github.com/garnizeh/helpermatch/pkg/repository"
)

const (
	Bucket = "worker-assets"

	// MaxCaptionRunes is the caption length kept per item.
	MaxCaptionRunes = 100

	sniffLen = 3072
)

var (
	ErrNoProfile       = errors.New("worker profile not found")
	ErrNotFound        = errors.New("media not found")
	ErrNotOwner        = errors.New("media belongs to another worker")
	ErrUnsupportedType = errors.New("only images and videos can be uploaded")
)

// ObjectStore is the part of the object storage the gallery needs.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, objectPath string, r io.Reader, opts storage.UploadOptions) error
	Remove(ctx context.Context, bucket string, paths ...string) error
	PublicURL(bucket, objectPath string) string
}

// File is one item of an upload batch.
type File struct {
	Name    string
	Caption string
	Body    io.Reader
}

type Failure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// Result reports a batch per file. A batch is never rolled back; Uploaded
// holds every item that made it into the gallery.
type Result struct {
	Uploaded []models.WorkerMedia `json:"uploaded"`
	Failed   []Failure            `json:"failed"`
}

type Service struct {
	workers repository.WorkerRepo
	media   repository.MediaRepo
	store   ObjectStore
	logger  *slog.Logger
	now     func() time.Time
	suffix  func() string
}

func NewService(workers repository.WorkerRepo, media repository.MediaRepo, store ObjectStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		workers: workers,
		media:   media,
		store:   store,
		logger:  logger,
		now:     time.Now,
		suffix:  func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:10] },
	}
}

func (s *Service) worker(ctx context.Context, userID string) (*models.Worker, error) {
	w, err := s.workers.GetWorkerByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get worker: %w", err)
	}
	if w == nil {
		return nil, ErrNoProfile
	}
	return w, nil
}

// List returns the caller's gallery, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.WorkerMedia, error) {
	w, err := s.worker(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.media.ListMediaByWorker(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	return items, nil
}

// Upload stores files one after another. A file that fails is reported in
// Result.Failed and the batch carries on with the next one.
func (s *Service) Upload(ctx context.Context, userID string, files []File) (*Result, error) {
	w, err := s.worker(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := &Result{Uploaded: []models.WorkerMedia{}, Failed: []Failure{}}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, Failure{Name: f.Name, Error: err.Error()})
			continue
		}
		m, err := s.uploadOne(ctx, userID, w.ID, f)
		if err != nil {
			s.logger.WarnContext(ctx, "media upload failed", "user_id", userID, "file", f.Name, "error", err)
			res.Failed = append(res.Failed, Failure{Name: f.Name, Error: err.Error()})
			continue
		}
		res.Uploaded = append(res.Uploaded, *m)
	}
	s.logger.InfoContext(ctx, "media batch uploaded", "user_id", userID, "uploaded", len(res.Uploaded), "failed", len(res.Failed))
	return res, nil
}

func (s *Service) uploadOne(ctx context.Context, userID, workerID string, f File) (*models.WorkerMedia, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	var kind models.MediaType
	switch {
	case strings.HasPrefix(mt.String(), "video/"):
		kind = models.MediaVideo
	case strings.HasPrefix(mt.String(), "image/"):
		kind = models.MediaImage
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}

	ext := strings.ToLower(filepath.Ext(f.Name))
	if ext == "" {
		ext = mt.Extension()
	}
	created := s.now().UnixMilli()
	objectPath := userID + "/media/" + strconv.FormatInt(created, 10) + "-" + s.suffix() + ext

	body := io.MultiReader(bytes.NewReader(head), f.Body)
	if err := s.store.Upload(ctx, Bucket, objectPath, body, storage.UploadOptions{}); err != nil {
		return nil, fmt.Errorf("upload %s: %w", f.Name, err)
	}

	m := &models.WorkerMedia{
		WorkerID:    workerID,
		URL:         s.store.PublicURL(Bucket, objectPath),
		StoragePath: objectPath,
		Type:        kind,
		Caption:     Caption(f.Caption),
		Created:     created,
	}
	id, err := s.media.CreateMedia(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", f.Name, err)
	}
	m.ID = id
	return m, nil
}

// Delete removes the stored object and then the row. The two steps are not
// coordinated: a failed row delete leaves the row pointing at nothing.
func (s *Service) Delete(ctx context.Context, userID, mediaID string) error {
	w, err := s.worker(ctx, userID)
	if err != nil {
		return err
	}
	m, err := s.media.GetMedia(ctx, mediaID)
	if err != nil {
		return fmt.Errorf("get media: %w", err)
	}
	if m == nil {
		return ErrNotFound
	}
	if m.WorkerID != w.ID {
		return ErrNotOwner
	}

	if err := s.store.Remove(ctx, Bucket, m.StoragePath); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	if err := s.media.DeleteMedia(ctx, mediaID); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	s.logger.InfoContext(ctx, "media deleted", "user_id", userID, "media_id", mediaID)
	return nil
}

// Caption trims and cuts a caption to MaxCaptionRunes. Empty becomes nil.
func Caption(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if utf8.RuneCountInString(s) > MaxCaptionRunes {
		s = string([]rune(s)[:MaxCaptionRunes])
	}
	return &s
}
