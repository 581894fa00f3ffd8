package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/helpermatch/internal/directory"
)

// WorkersHandler serves the employer-facing worker directory.
type WorkersHandler struct {
	directory *directory.Service
}

func NewWorkersHandler(d *directory.Service) *WorkersHandler {
	return &WorkersHandler{directory: d}
}

type inquiryRequest struct {
	Message string `json:"message" validate:"max=2000"`
}

func (h *WorkersHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.directory.List(r.Context())
	if err != nil {
		writeError(w, r, internal(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workers": cards})
}

func (h *WorkersHandler) Detail(w http.ResponseWriter, r *http.Request) {
	d, err := h.directory.Detail(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, directory.ErrNotFound) {
		writeError(w, r, notFound(err.Error()))
		return
	}
	if err != nil {
		writeError(w, r, internal(err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Inquire records an inquiry from the signed-in employer.
func (h *WorkersHandler) Inquire(w http.ResponseWriter, r *http.Request) {
	var req inquiryRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	inq, err := h.directory.Inquire(r.Context(), UserIDFromContext(r.Context()), mux.Vars(r)["id"], req.Message)
	switch {
	case errors.Is(err, directory.ErrEmployerRequired):
		writeError(w, r, newError(http.StatusForbidden, CodeEmployerRequired, err.Error(), err))
		return
	case errors.Is(err, directory.ErrNotFound):
		writeError(w, r, notFound(err.Error()))
		return
	case err != nil:
		writeError(w, r, newError(http.StatusInternalServerError, CodeInternal, err.Error(), err))
		return
	}
	writeJSON(w, http.StatusCreated, inq)
}
