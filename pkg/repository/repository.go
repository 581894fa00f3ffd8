package repository

import (
	"context"

	"github.com/garnizeh/helpermatch/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
// Single-row lookups return (nil, nil) when the row does not exist.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (string, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ConfirmPhone(ctx context.Context, userID, phone string, confirmedAt int64) error
	AddRole(ctx context.Context, userID string, role models.Role) error
	ListRoles(ctx context.Context, userID string) ([]models.Role, error)
}

type EmployerRepo interface {
	CreateEmployer(ctx context.Context, e *models.Employer) (string, error)
	GetEmployerByUserID(ctx context.Context, userID string) (*models.Employer, error)
	UpdateEmployer(ctx context.Context, e *models.Employer) error
}

// WorkerRepo persists a worker together with its child collections. Register
// and Update write the parent row and both collections atomically.
type WorkerRepo interface {
	RegisterWorker(ctx context.Context, w *models.Worker, overseas []models.OverseasExperience, duties []models.PreviousDuty) (string, error)
	UpdateWorker(ctx context.Context, w *models.Worker, overseas []models.OverseasExperience, duties []models.PreviousDuty) error
	GetWorkerByID(ctx context.Context, id string) (*models.Worker, error)
	GetWorkerByUserID(ctx context.Context, userID string) (*models.Worker, error)
	ListOverseas(ctx context.Context, workerID string) ([]models.OverseasExperience, error)
	ListDuties(ctx context.Context, workerID string) ([]models.PreviousDuty, error)
	ListWorkersByStatus(ctx context.Context, statuses []models.WorkerStatus) ([]models.Worker, error)
	UpdatePhotoURL(ctx context.Context, workerID, url string) error
}

type MediaRepo interface {
	CreateMedia(ctx context.Context, m *models.WorkerMedia) (string, error)
	GetMedia(ctx context.Context, id string) (*models.WorkerMedia, error)
	ListMediaByWorker(ctx context.Context, workerID string) ([]models.WorkerMedia, error)
	DeleteMedia(ctx context.Context, id string) error
}

type InquiryRepo interface {
	CreateInquiry(ctx context.Context, i *models.Inquiry) (string, error)
	ListInquiriesByEmployer(ctx context.Context, employerID string) ([]models.Inquiry, error)
}

// FeedRepo serves the aggregated feed and the like/bookmark join rows. An
// empty viewerID resolves liked and bookmarked to false.
type FeedRepo interface {
	Feed(ctx context.Context, viewerID string, limit int) ([]models.FeedItem, error)
	Like(ctx context.Context, mediaID, userID string) error
	Unlike(ctx context.Context, mediaID, userID string) error
	Bookmark(ctx context.Context, mediaID, userID string) error
	Unbookmark(ctx context.Context, mediaID, userID string) error
}
