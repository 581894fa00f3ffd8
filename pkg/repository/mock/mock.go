package mock

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/garnizeh/helpermatch/pkg/models"
	"github.com/garnizeh/helpermatch/pkg/repository"
)

var (
	_ repository.UserRepo     = (*mockUserRepo)(nil)
	_ repository.EmployerRepo = (*mockEmployerRepo)(nil)
	_ repository.WorkerRepo   = (*mockWorkerRepo)(nil)
	_ repository.MediaRepo    = (*mockMediaRepo)(nil)
	_ repository.InquiryRepo  = (*mockInquiryRepo)(nil)
	_ repository.FeedRepo     = (*mockFeedRepo)(nil)
)

// Test helpers and mocks
type Mocks struct {
	UserRepo     *mockUserRepo
	EmployerRepo *mockEmployerRepo
	WorkerRepo   *mockWorkerRepo
	MediaRepo    *mockMediaRepo
	InquiryRepo  *mockInquiryRepo
	FeedRepo     *mockFeedRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		UserRepo:     &mockUserRepo{Users: map[string]*models.User{}, Roles: map[string][]models.Role{}},
		EmployerRepo: &mockEmployerRepo{Employers: map[string]*models.Employer{}},
		WorkerRepo:   &mockWorkerRepo{Workers: map[string]*models.Worker{}, Overseas: map[string][]models.OverseasExperience{}, Duties: map[string][]models.PreviousDuty{}},
		MediaRepo:    &mockMediaRepo{Media: map[string]*models.WorkerMedia{}},
		InquiryRepo:  &mockInquiryRepo{},
		FeedRepo:     &mockFeedRepo{Likes: map[pair]bool{}, Bookmarks: map[pair]bool{}},
	}
}

type mockUserRepo struct {
	mu         sync.Mutex
	seq        int
	Users      map[string]*models.User
	Roles      map[string][]models.Role
	CreateErr  error
	ConfirmErr error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	m.seq++
	id := fmt.Sprintf("user-%d", m.seq)
	cp := *u
	cp.ID = id
	m.Users[id] = &cp
	return id, nil
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Email != nil && *u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) ConfirmPhone(ctx context.Context, userID, phone string, confirmedAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConfirmErr != nil {
		return m.ConfirmErr
	}
	u, ok := m.Users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Phone = &phone
	u.PhoneConfirmedAt = &confirmedAt
	return nil
}

func (m *mockUserRepo) AddRole(ctx context.Context, userID string, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.Roles[userID], role) {
		m.Roles[userID] = append(m.Roles[userID], role)
	}
	return nil
}

func (m *mockUserRepo) ListRoles(ctx context.Context, userID string) ([]models.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Roles[userID]), nil
}

// mockEmployerRepo keys employers by user id.
type mockEmployerRepo struct {
	mu        sync.Mutex
	seq       int
	Employers map[string]*models.Employer
	CreateErr error
	UpdateErr error
}

func (m *mockEmployerRepo) CreateEmployer(ctx context.Context, e *models.Employer) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	m.seq++
	cp := *e
	cp.ID = fmt.Sprintf("employer-%d", m.seq)
	m.Employers[e.UserID] = &cp
	return cp.ID, nil
}

func (m *mockEmployerRepo) GetEmployerByUserID(ctx context.Context, userID string) (*models.Employer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.Employers[userID]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (m *mockEmployerRepo) UpdateEmployer(ctx context.Context, e *models.Employer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, ok := m.Employers[e.UserID]; !ok {
		return repository.ErrNotFound
	}
	cp := *e
	m.Employers[e.UserID] = &cp
	return nil
}

// mockWorkerRepo keys workers by worker id and counts writes so tests can
// assert that a rejected submit never reached the store.
type mockWorkerRepo struct {
	mu            sync.Mutex
	seq           int
	Workers       map[string]*models.Worker
	Overseas      map[string][]models.OverseasExperience
	Duties        map[string][]models.PreviousDuty
	RegisterErr   error
	UpdateErr     error
	RegisterCalls int
	UpdateCalls   int
}

func (m *mockWorkerRepo) RegisterWorker(ctx context.Context, w *models.Worker, overseas []models.OverseasExperience, duties []models.PreviousDuty) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RegisterCalls++
	if m.RegisterErr != nil {
		return "", m.RegisterErr
	}
	for _, existing := range m.Workers {
		if existing.UserID == w.UserID {
			return "", repository.ErrConflict
		}
	}
	m.seq++
	cp := *w
	cp.ID = fmt.Sprintf("worker-%d", m.seq)
	cp.Status = models.StatusPending
	m.Workers[cp.ID] = &cp
	m.Overseas[cp.ID] = slices.Clone(overseas)
	m.Duties[cp.ID] = slices.Clone(duties)
	return cp.ID, nil
}

func (m *mockWorkerRepo) UpdateWorker(ctx context.Context, w *models.Worker, overseas []models.OverseasExperience, duties []models.PreviousDuty) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	old, ok := m.Workers[w.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cp := *w
	cp.UserID = old.UserID
	cp.Status = old.Status
	cp.PhotoURL = old.PhotoURL
	m.Workers[w.ID] = &cp
	m.Overseas[w.ID] = slices.Clone(overseas)
	m.Duties[w.ID] = slices.Clone(duties)
	return nil
}

func (m *mockWorkerRepo) GetWorkerByID(ctx context.Context, id string) (*models.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.Workers[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, nil
}

func (m *mockWorkerRepo) GetWorkerByUserID(ctx context.Context, userID string) (*models.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.Workers {
		if w.UserID == userID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockWorkerRepo) ListOverseas(ctx context.Context, workerID string) ([]models.OverseasExperience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Overseas[workerID]), nil
}

func (m *mockWorkerRepo) ListDuties(ctx context.Context, workerID string) ([]models.PreviousDuty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Duties[workerID]), nil
}

// ListWorkersByStatus orders by Created descending like the SQL store.
func (m *mockWorkerRepo) ListWorkersByStatus(ctx context.Context, statuses []models.WorkerStatus) ([]models.Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Worker
	for _, w := range m.Workers {
		if slices.Contains(statuses, w.Status) {
			out = append(out, *w)
		}
	}
	slices.SortFunc(out, func(a, b models.Worker) int {
		return cmp.Compare(b.Created, a.Created)
	})
	return out, nil
}

func (m *mockWorkerRepo) UpdatePhotoURL(ctx context.Context, workerID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.Workers[workerID]
	if !ok {
		return repository.ErrNotFound
	}
	w.PhotoURL = &url
	return nil
}

type mockMediaRepo struct {
	mu        sync.Mutex
	seq       int
	Media     map[string]*models.WorkerMedia
	CreateErr error
	DeleteErr error
}

func (m *mockMediaRepo) CreateMedia(ctx context.Context, md *models.WorkerMedia) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	m.seq++
	cp := *md
	cp.ID = fmt.Sprintf("media-%d", m.seq)
	if cp.Created == 0 {
		cp.Created = int64(m.seq)
	}
	m.Media[cp.ID] = &cp
	return cp.ID, nil
}

func (m *mockMediaRepo) GetMedia(ctx context.Context, id string) (*models.WorkerMedia, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if md, ok := m.Media[id]; ok {
		cp := *md
		return &cp, nil
	}
	return nil, nil
}

func (m *mockMediaRepo) ListMediaByWorker(ctx context.Context, workerID string) ([]models.WorkerMedia, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WorkerMedia
	for _, md := range m.Media {
		if md.WorkerID == workerID {
			out = append(out, *md)
		}
	}
	slices.SortFunc(out, func(a, b models.WorkerMedia) int {
		return cmp.Compare(b.Created, a.Created)
	})
	return out, nil
}

func (m *mockMediaRepo) DeleteMedia(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.Media, id)
	return nil
}

type mockInquiryRepo struct {
	mu        sync.Mutex
	Inquiries []models.Inquiry
	CreateErr error
}

func (m *mockInquiryRepo) CreateInquiry(ctx context.Context, i *models.Inquiry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	cp := *i
	cp.ID = fmt.Sprintf("inquiry-%d", len(m.Inquiries)+1)
	m.Inquiries = append(m.Inquiries, cp)
	return cp.ID, nil
}

func (m *mockInquiryRepo) ListInquiriesByEmployer(ctx context.Context, employerID string) ([]models.Inquiry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Inquiry
	for _, i := range m.Inquiries {
		if i.EmployerID == employerID {
			out = append(out, i)
		}
	}
	return out, nil
}

type pair struct{ media, user string }

// mockFeedRepo resolves like counts and viewer flags from its join maps.
// Writes counts every like/bookmark mutation attempt. Once Items is set, liking
// or bookmarking an id missing from it fails with repository.ErrNotFound.
type mockFeedRepo struct {
	mu          sync.Mutex
	Items       []models.FeedItem
	Likes       map[pair]bool
	Bookmarks   map[pair]bool
	Writes      int
	LikeErr     error
	BookmarkErr error
}

func (m *mockFeedRepo) Feed(ctx context.Context, viewerID string, limit int) ([]models.FeedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.FeedItem, 0, len(m.Items))
	for _, it := range m.Items {
		it.LikeCount = 0
		for p := range m.Likes {
			if p.media == it.ID {
				it.LikeCount++
			}
		}
		it.Liked = viewerID != "" && m.Likes[pair{it.ID, viewerID}]
		it.Bookmarked = viewerID != "" && m.Bookmarks[pair{it.ID, viewerID}]
		out = append(out, it)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockFeedRepo) Like(ctx context.Context, mediaID, userID string) error {
	return m.set(m.Likes, m.LikeErr, mediaID, userID, true)
}

func (m *mockFeedRepo) Unlike(ctx context.Context, mediaID, userID string) error {
	return m.set(m.Likes, m.LikeErr, mediaID, userID, false)
}

func (m *mockFeedRepo) Bookmark(ctx context.Context, mediaID, userID string) error {
	return m.set(m.Bookmarks, m.BookmarkErr, mediaID, userID, true)
}

func (m *mockFeedRepo) Unbookmark(ctx context.Context, mediaID, userID string) error {
	return m.set(m.Bookmarks, m.BookmarkErr, mediaID, userID, false)
}

// IsLiked reports whether userID has a stored like on mediaID.
func (m *mockFeedRepo) IsLiked(mediaID, userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Likes[pair{mediaID, userID}]
}

// IsBookmarked reports whether userID has a stored bookmark on mediaID.
func (m *mockFeedRepo) IsBookmarked(mediaID, userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Bookmarks[pair{mediaID, userID}]
}

func (m *mockFeedRepo) set(rows map[pair]bool, fail error, mediaID, userID string, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Writes++
	if fail != nil {
		return fail
	}
	if on && m.Items != nil && !slices.ContainsFunc(m.Items, func(it models.FeedItem) bool { return it.ID == mediaID }) {
		return repository.ErrNotFound
	}
	if on {
		rows[pair{mediaID, userID}] = true
	} else {
		delete(rows, pair{mediaID, userID})
	}
	return nil
}
