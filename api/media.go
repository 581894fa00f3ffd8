package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/helpermatch/internal/media"
	"github.com/garnizeh/helpermatch/pkg/models"
)

type MediaHandler struct {
	media     *media.Service
	maxUpload int64
}

func NewMediaHandler(svc *media.Service, maxUpload int64) *MediaHandler {
	return &MediaHandler{media: svc, maxUpload: maxUpload}
}

func mediaError(err error) error {
	switch {
	case errors.Is(err, media.ErrNoProfile), errors.Is(err, media.ErrNotFound):
		return notFound(err.Error())
	case errors.Is(err, media.ErrNotOwner):
		return newError(http.StatusForbidden, CodeForbidden, err.Error(), err)
	}
	return newError(http.StatusInternalServerError, CodeInternal, err.Error(), err)
}

func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.media.List(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, mediaError(err))
		return
	}
	if items == nil {
		items = []models.WorkerMedia{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"media": items})
}

// Upload takes multipart "files" with an optional "captions" value per file,
// in the same order. Failed files are listed in the response.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, r, badRequest("invalid multipart body"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, r, badRequest("at least one file is required"))
		return
	}
	captions := r.MultipartForm.Value["captions"]

	files := make([]media.File, 0, len(headers))
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	for i, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, r, badRequest("cannot read "+fh.Filename))
			return
		}
		closers = append(closers, f)
		caption := ""
		if i < len(captions) {
			caption = captions[i]
		}
		files = append(files, media.File{Name: fh.Filename, Caption: caption, Body: f})
	}

	res, err := h.media.Upload(r.Context(), UserIDFromContext(r.Context()), files)
	if err != nil {
		writeError(w, r, mediaError(err))
		return
	}
	status := http.StatusCreated
	if len(res.Uploaded) == 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.media.Delete(r.Context(), UserIDFromContext(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, mediaError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
