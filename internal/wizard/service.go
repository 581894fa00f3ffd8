package wizard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/garnizeh/helpermatch/internal/storage"
	"github.com/garnizeh/helpermatch/pkg/models"
	"github.com/garnizeh/helpermatch/pkg/repository"
)

const (
	AssetsBucket = "worker-assets"
	photoName    = "profile.jpg"
	sniffLen     = 3072
)

var (
	ErrNoProfile     = errors.New("worker profile not found")
	ErrProfileExists = errors.New("worker profile already exists")
	ErrNotOwner      = errors.New("worker profile belongs to another user")
	ErrNotImage      = errors.New("profile photo must be an image")
)

// ObjectStore is the part of the object storage the wizard needs.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, objectPath string, r io.Reader, opts storage.UploadOptions) error
	PublicURL(bucket, objectPath string) string
}

// Profile is a stored worker with its child collections.
type Profile struct {
	Worker   *models.Worker              `json:"worker"`
	Overseas []models.OverseasExperience `json:"overseas"`
	Duties   []models.PreviousDuty       `json:"duties"`
}

// Service saves wizard forms and profile photos.
type Service struct {
	workers repository.WorkerRepo
	store   ObjectStore
	logger  *slog.Logger
	now     func() time.Time
}

var _ Saver = (*Service)(nil)
var _ PhotoUploader = (*Service)(nil)

func NewService(workers repository.WorkerRepo, store ObjectStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{workers: workers, store: store, logger: logger, now: time.Now}
}

// Load returns the caller's profile or ErrNoProfile.
func (s *Service) Load(ctx context.Context, userID string) (*Profile, error) {
	w, err := s.workers.GetWorkerByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get worker: %w", err)
	}
	if w == nil {
		return nil, ErrNoProfile
	}
	overseas, err := s.workers.ListOverseas(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("list overseas: %w", err)
	}
	duties, err := s.workers.ListDuties(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("list duties: %w", err)
	}
	return &Profile{Worker: w, Overseas: overseas, Duties: duties}, nil
}

// Edit starts an edit session for the caller's stored profile.
func (s *Service) Edit(ctx context.Context, userID string) (*Wizard, error) {
	p, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewEdit(userID, p.Worker.ID, FromStored(p.Worker, p.Overseas, p.Duties)), nil
}

// Register stores a new profile in pending status.
func (s *Service) Register(ctx context.Context, userID string, f Form) (string, error) {
	if strings.TrimSpace(f.Name) == "" {
		return "", ErrNameRequired
	}
	existing, err := s.workers.GetWorkerByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get worker: %w", err)
	}
	if existing != nil {
		return "", ErrProfileExists
	}

	w := f.Worker(userID)
	w.Status = models.StatusPending
	id, err := s.workers.RegisterWorker(ctx, w, f.OverseasRows(), f.DutyRows())
	if err != nil {
		// A concurrent registration won between the lookup and the insert.
		if errors.Is(err, repository.ErrConflict) {
			return "", ErrProfileExists
		}
		return "", fmt.Errorf("register worker: %w", err)
	}
	s.logger.InfoContext(ctx, "worker registered", "worker_id", id, "user_id", userID)
	return id, nil
}

// Update rewrites the profile and replaces both child collections. Status
// and photo are left as stored.
func (s *Service) Update(ctx context.Context, userID, workerID string, f Form) error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrNameRequired
	}
	existing, err := s.workers.GetWorkerByID(ctx, workerID)
	if err != nil {
		return fmt.Errorf("get worker: %w", err)
	}
	if existing == nil {
		return ErrNoProfile
	}
	if existing.UserID != userID {
		return ErrNotOwner
	}

	w := f.Worker(userID)
	w.ID = workerID
	if err := s.workers.UpdateWorker(ctx, w, f.OverseasRows(), f.DutyRows()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoProfile
		}
		return fmt.Errorf("update worker: %w", err)
	}
	s.logger.InfoContext(ctx, "worker updated", "worker_id", workerID, "user_id", userID)
	return nil
}

// UploadPhoto overwrites <userID>/profile.jpg and returns its public URL with
// a version suffix. Content that does not sniff as an image is rejected with
// ErrNotImage before anything is written. An existing profile gets the new URL
// stored.
func (s *Service) UploadPhoto(ctx context.Context, userID string, r io.Reader) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read photo: %w", err)
	}
	head = head[:n]
	if mt := mimetype.Detect(head); !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}

	objectPath := userID + "/" + photoName
	body := io.MultiReader(bytes.NewReader(head), r)
	if err := s.store.Upload(ctx, AssetsBucket, objectPath, body, storage.UploadOptions{Upsert: true}); err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	url := s.store.PublicURL(AssetsBucket, objectPath) + "?v=" + strconv.FormatInt(s.now().UnixMilli(), 10)

	w, err := s.workers.GetWorkerByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get worker: %w", err)
	}
	if w != nil {
		if err := s.workers.UpdatePhotoURL(ctx, w.ID, url); err != nil {
			return "", fmt.Errorf("update photo url: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "profile photo uploaded", "user_id", userID, "path", objectPath)
	return url, nil
}
