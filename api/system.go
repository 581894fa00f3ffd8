package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/helpermatch/internal/storage"
)

type SystemHandler struct{}

func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "helpermatch"})
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": version, "buildTime": buildTime})
	}
}

// StorageHandler serves public objects under /storage/{bucket}/{path}.
type StorageHandler struct {
	store *storage.Store
}

func NewStorageHandler(store *storage.Store) *StorageHandler {
	return &StorageHandler{store: store}
}

func (h *StorageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := h.store.ServeObject(w, r, vars["bucket"], vars["path"])
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidPath):
		writeError(w, r, notFound("object not found"))
	default:
		writeError(w, r, internal(err))
	}
}
