package wizard

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	ErrNameRequired  = errors.New("請填寫全名")
	ErrTooManyDuties = errors.New("at most 3 previous duties")
)

// MaxDuties caps the previous-duty entries the wizard lets a worker add.
const MaxDuties = 3

type Mode int

const (
	ModeRegister Mode = iota
	ModeEdit
)

// Steps are the registration step titles, in order.
var Steps = []string{
	"基本資料",
	"聯絡及合約",
	"技能",
	"語言能力",
	"海外工作記錄",
	"過去工作詳情",
	"其他問題",
	"備注及提交",
}

// EditSteps differ from Steps only in the last title.
var EditSteps = []string{
	"基本資料",
	"聯絡及合約",
	"技能",
	"語言能力",
	"海外工作記錄",
	"過去工作詳情",
	"其他問題",
	"備注及儲存",
}

// Saver persists a submitted form.
type Saver interface {
	Register(ctx context.Context, userID string, f Form) (string, error)
	Update(ctx context.Context, userID, workerID string, f Form) error
}

// PhotoUploader stores a profile photo and returns its public URL.
type PhotoUploader interface {
	UploadPhoto(ctx context.Context, userID string, r io.Reader) (string, error)
}

// Wizard is one registration or edit session. Navigation never validates;
// the only blocking check happens on Submit.
type Wizard struct {
	Mode     Mode
	Step     int
	Form     Form
	UserID   string
	WorkerID string

	// Err is the last submit error, PhotoErr the last photo upload error.
	Err      error
	PhotoErr error
}

func NewRegister(userID string) *Wizard {
	return &Wizard{Mode: ModeRegister, Form: NewForm(), UserID: userID}
}

// NewEdit starts an edit session seeded from a stored profile.
func NewEdit(userID, workerID string, f Form) *Wizard {
	return &Wizard{Mode: ModeEdit, Form: f, UserID: userID, WorkerID: workerID}
}

func (w *Wizard) Titles() []string {
	if w.Mode == ModeEdit {
		return EditSteps
	}
	return Steps
}

func (w *Wizard) Title() string {
	return w.Titles()[w.Step]
}

func (w *Wizard) IsLast() bool {
	return w.Step == len(Steps)-1
}

func (w *Wizard) Next() {
	if w.Step < len(Steps)-1 {
		w.Step++
	}
}

func (w *Wizard) Prev() {
	if w.Step > 0 {
		w.Step--
	}
}

// Update applies fn to the shared form.
func (w *Wizard) Update(fn func(*Form)) {
	fn(&w.Form)
}

func (w *Wizard) Merge(patch []byte) error {
	return w.Form.Merge(patch)
}

func (w *Wizard) AddOverseas() {
	w.Form.Overseas = append(w.Form.Overseas, Overseas{})
}

func (w *Wizard) RemoveOverseas(i int) {
	if i < 0 || i >= len(w.Form.Overseas) {
		return
	}
	w.Form.Overseas = append(w.Form.Overseas[:i:i], w.Form.Overseas[i+1:]...)
}

func (w *Wizard) AddDuty() error {
	if len(w.Form.Duties) >= MaxDuties {
		return ErrTooManyDuties
	}
	w.Form.Duties = append(w.Form.Duties, Duty{})
	return nil
}

func (w *Wizard) RemoveDuty(i int) {
	if i < 0 || i >= len(w.Form.Duties) {
		return
	}
	w.Form.Duties = append(w.Form.Duties[:i:i], w.Form.Duties[i+1:]...)
}

// Submit saves the form. An empty name sends the user back to the first step
// without writing anything.
func (w *Wizard) Submit(ctx context.Context, s Saver) error {
	w.Err = nil
	if strings.TrimSpace(w.Form.Name) == "" {
		w.Step = 0
		w.Err = ErrNameRequired
		return ErrNameRequired
	}

	if w.Mode == ModeEdit {
		if err := s.Update(ctx, w.UserID, w.WorkerID, w.Form); err != nil {
			w.Err = err
			return err
		}
		return nil
	}

	id, err := s.Register(ctx, w.UserID, w.Form)
	if err != nil {
		w.Err = err
		return err
	}
	w.WorkerID = id
	return nil
}

// UploadPhoto replaces the profile photo. On failure the current photo URL
// is kept and PhotoErr is set.
func (w *Wizard) UploadPhoto(ctx context.Context, u PhotoUploader, r io.Reader) error {
	w.PhotoErr = nil
	url, err := u.UploadPhoto(ctx, w.UserID, r)
	if err != nil {
		w.PhotoErr = err
		return err
	}
	w.Form.PhotoURL = url
	return nil
}
