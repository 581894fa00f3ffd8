package directory

import (
	"context"
	"errors"

	"github.com/garnizeh/helpermatch/pkg/models"
)

var (
	ErrSignInRequired = errors.New("sign in required")
	ErrModalNotOpen   = errors.New("inquiry modal is not open")
)

// BlockedNotice is shown instead of the send button to a viewer without an
// employer profile.
const BlockedNotice = "請先完成僱主登記才可發送詢問。"

type ModalState int

const (
	Closed ModalState = iota
	Open
	Blocked
	Sent
)

// Viewer is who is looking at a worker detail page. Both ids are empty for
// an anonymous visitor.
type Viewer struct {
	UserID     string
	EmployerID string
}

type InquirySender interface {
	Inquire(ctx context.Context, userID, workerID, message string) (*models.Inquiry, error)
}

// InquiryModal gates the contact flow on a worker detail page. It is client
// state; the HTTP layer exposes the same rules through Service.Inquire.
type InquiryModal struct {
	WorkerID string
	State    ModalState
	Message  string
	Err      error

	viewer Viewer
}

func NewInquiryModal(workerID string) *InquiryModal {
	return &InquiryModal{WorkerID: workerID}
}

// Open shows the modal. Anonymous viewers are sent to sign in and the modal
// stays closed.
func (m *InquiryModal) Open(v Viewer) error {
	if v.UserID == "" {
		return ErrSignInRequired
	}
	m.viewer = v
	m.Err = nil
	if v.EmployerID == "" {
		m.State = Blocked
		return nil
	}
	m.State = Open
	return nil
}

func (m *InquiryModal) CanSend() bool {
	return m.State == Open
}

func (m *InquiryModal) Notice() string {
	if m.State == Blocked {
		return BlockedNotice
	}
	return ""
}

// Send submits the inquiry. A failure keeps the modal open with Err set so
// the user can retry; success is final.
func (m *InquiryModal) Send(ctx context.Context, s InquirySender) error {
	switch m.State {
	case Blocked:
		m.Err = ErrEmployerRequired
		return ErrEmployerRequired
	case Open:
	default:
		return ErrModalNotOpen
	}

	m.Err = nil
	if _, err := s.Inquire(ctx, m.viewer.UserID, m.WorkerID, m.Message); err != nil {
		m.Err = err
		return err
	}
	m.State = Sent
	return nil
}

func (m *InquiryModal) Close() {
	m.State = Closed
}
