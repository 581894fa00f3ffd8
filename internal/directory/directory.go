// Package directory is the employer-facing side of the worker catalogue:
// listing cards, public detail views and inquiries.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/garnizeh/helpermatch/pkg/models"
	"github.com/garnizeh/helpermatch/pkg/repository"
)

// CardBadges is how many skill badges a listing card shows.
const CardBadges = 4

var (
	ErrNotFound         = errors.New("worker not found")
	ErrEmployerRequired = errors.New("找不到您的僱主資料，請先完成登記。")
)

// PublicWorker is a worker as employers see it. The HKID and the HK mobile
// number never leave the server.
type PublicWorker struct {
	*models.Worker
	HKID     *string `json:"hkid,omitempty"`
	HKMobile *string `json:"hk_mobile,omitempty"`
}

func Public(w *models.Worker) PublicWorker {
	cp := *w
	cp.HKID = nil
	cp.HKMobile = nil
	return PublicWorker{Worker: &cp}
}

// Card is one row of the directory listing.
type Card struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Nationality *string             `json:"nationality"`
	PhotoURL    *string             `json:"photo_url"`
	Status      models.WorkerStatus `json:"status"`
	StatusLabel string              `json:"status_label"`
	Badges      []string            `json:"badges"`
	MoreSkills  int                 `json:"more_skills"`
}

type Detail struct {
	Worker   PublicWorker                `json:"worker"`
	Skills   []string                    `json:"skills"`
	Overseas []models.OverseasExperience `json:"overseas"`
	Duties   []models.PreviousDuty       `json:"duties"`
}

// Badges returns the first n skill labels and how many more are set.
func Badges(s models.Skills, n int) ([]string, int) {
	labels := s.Labels()
	if len(labels) <= n {
		return labels, 0
	}
	return labels[:n], len(labels) - n
}

func StatusLabel(s models.WorkerStatus) string {
	if s == models.StatusAvailable {
		return "Available"
	}
	return "Processing"
}

type Service struct {
	workers   repository.WorkerRepo
	employers repository.EmployerRepo
	inquiries repository.InquiryRepo
	logger    *slog.Logger
}

func NewService(workers repository.WorkerRepo, employers repository.EmployerRepo, inquiries repository.InquiryRepo, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{workers: workers, employers: employers, inquiries: inquiries, logger: logger}
}

// List returns the listed workers, newest first.
func (s *Service) List(ctx context.Context) ([]Card, error) {
	ws, err := s.workers.ListWorkersByStatus(ctx, models.ListedStatuses)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	cards := make([]Card, 0, len(ws))
	for _, w := range ws {
		badges, more := Badges(w.Skills, CardBadges)
		if badges == nil {
			badges = []string{}
		}
		cards = append(cards, Card{
			ID:          w.ID,
			Name:        w.Name,
			Nationality: w.Nationality,
			PhotoURL:    w.PhotoURL,
			Status:      w.Status,
			StatusLabel: StatusLabel(w.Status),
			Badges:      badges,
			MoreSkills:  more,
		})
	}
	return cards, nil
}

// Detail looks a worker up by id regardless of status, so a direct link keeps
// working after the worker leaves the listing.
func (s *Service) Detail(ctx context.Context, workerID string) (*Detail, error) {
	w, err := s.workers.GetWorkerByID(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("get worker: %w", err)
	}
	if w == nil {
		return nil, ErrNotFound
	}
	overseas, err := s.workers.ListOverseas(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("list overseas: %w", err)
	}
	duties, err := s.workers.ListDuties(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("list duties: %w", err)
	}
	skills := w.Labels()
	if skills == nil {
		skills = []string{}
	}
	return &Detail{Worker: Public(w), Skills: skills, Overseas: overseas, Duties: duties}, nil
}

// Inquire records an inquiry from the employer profile of userID. A blank
// message is stored as NULL.
func (s *Service) Inquire(ctx context.Context, userID, workerID, message string) (*models.Inquiry, error) {
	emp, err := s.employers.GetEmployerByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get employer: %w", err)
	}
	if emp == nil {
		return nil, ErrEmployerRequired
	}
	w, err := s.workers.GetWorkerByID(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("get worker: %w", err)
	}
	if w == nil {
		return nil, ErrNotFound
	}

	inq := &models.Inquiry{EmployerID: emp.ID, WorkerID: w.ID}
	if msg := strings.TrimSpace(message); msg != "" {
		inq.Message = &msg
	}
	id, err := s.inquiries.CreateInquiry(ctx, inq)
	if err != nil {
		return nil, fmt.Errorf("create inquiry: %w", err)
	}
	inq.ID = id
	s.logger.InfoContext(ctx, "inquiry sent", "inquiry_id", id, "employer_id", emp.ID, "worker_id", w.ID)
	return inq, nil
}
