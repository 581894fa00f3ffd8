package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/garnizeh/helpermatch/internal/wizard"
)

// WorkerProfileHandler serves the signed-in worker's own profile: the
// registration and edit wizards and the profile photo.
type WorkerProfileHandler struct {
	wizard    *wizard.Service
	maxUpload int64
}

func NewWorkerProfileHandler(svc *wizard.Service, maxUpload int64) *WorkerProfileHandler {
	return &WorkerProfileHandler{wizard: svc, maxUpload: maxUpload}
}

type formResponse struct {
	WorkerID  string      `json:"worker_id"`
	Form      wizard.Form `json:"form"`
	HKIDState string      `json:"hkid_state"`
	Steps     []string    `json:"steps"`
}

type saveResponse struct {
	WorkerID  string `json:"worker_id"`
	HKIDState string `json:"hkid_state"`
}

func wizardError(err error) error {
	switch {
	case errors.Is(err, wizard.ErrNameRequired):
		step := 0
		return &AppError{Status: http.StatusBadRequest, Code: "name_required", Message: err.Error(), Err: err, Step: &step}
	case errors.Is(err, wizard.ErrNoProfile):
		return notFound(err.Error())
	case errors.Is(err, wizard.ErrProfileExists):
		return newError(http.StatusConflict, CodeConflict, err.Error(), err)
	case errors.Is(err, wizard.ErrNotImage):
		return newError(http.StatusBadRequest, CodeBadRequest, err.Error(), err)
	case errors.Is(err, wizard.ErrNotOwner):
		return newError(http.StatusForbidden, CodeForbidden, err.Error(), err)
	}
	return newError(http.StatusInternalServerError, CodeInternal, err.Error(), err)
}

// readForm reads a JSON form body and checks it against the form schema.
func readForm(r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, badRequest("invalid request body")
	}
	msgs, err := wizard.ValidateForm(r.Context(), raw)
	if err != nil {
		return nil, badRequest("invalid request body")
	}
	if len(msgs) > 0 {
		return nil, &AppError{Status: http.StatusBadRequest, Code: CodeValidation, Message: "validation failed", Details: msgs}
	}
	return raw, nil
}

func (h *WorkerProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.wizard.Load(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, wizardError(err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Form returns the edit wizard seeded from the stored profile.
func (h *WorkerProfileHandler) Form(w http.ResponseWriter, r *http.Request) {
	wz, err := h.wizard.Edit(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, wizardError(err))
		return
	}
	writeJSON(w, http.StatusOK, formResponse{
		WorkerID:  wz.WorkerID,
		Form:      wz.Form,
		HKIDState: wz.Form.HKIDState(),
		Steps:     wz.Titles(),
	})
}

func (h *WorkerProfileHandler) Register(w http.ResponseWriter, r *http.Request) {
	raw, err := readForm(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	wz := wizard.NewRegister(UserIDFromContext(r.Context()))
	if err := wz.Merge(raw); err != nil {
		writeError(w, r, badRequest(err.Error()))
		return
	}
	if err := wz.Submit(r.Context(), h.wizard); err != nil {
		writeError(w, r, wizardError(err))
		return
	}
	writeJSON(w, http.StatusCreated, saveResponse{WorkerID: wz.WorkerID, HKIDState: wz.Form.HKIDState()})
}

// Update applies the body over the stored form. Fields left out keep their
// stored value; overseas and duties, when present, replace the stored lists.
func (h *WorkerProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	raw, err := readForm(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	wz, err := h.wizard.Edit(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, wizardError(err))
		return
	}
	if err := wz.Merge(raw); err != nil {
		writeError(w, r, badRequest(err.Error()))
		return
	}
	if err := wz.Submit(r.Context(), h.wizard); err != nil {
		writeError(w, r, wizardError(err))
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{WorkerID: wz.WorkerID, HKIDState: wz.Form.HKIDState()})
}

// UploadPhoto takes a multipart "photo" file and overwrites the profile photo.
func (h *WorkerProfileHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	f, _, err := r.FormFile("photo")
	if err != nil {
		writeError(w, r, badRequest("photo file is required"))
		return
	}
	defer f.Close()

	url, err := h.wizard.UploadPhoto(r.Context(), UserIDFromContext(r.Context()), f)
	if err != nil {
		writeError(w, r, wizardError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"photo_url": url})
}
