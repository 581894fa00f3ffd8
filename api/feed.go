package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/garnizeh/helpermatch/pkg/models"
	"github.com/garnizeh/helpermatch/pkg/repository"
)

const defaultFeedLimit = 50

type FeedHandler struct {
	feedRepo repository.FeedRepo
}

func NewFeedHandler(fr repository.FeedRepo) *FeedHandler {
	return &FeedHandler{feedRepo: fr}
}

// List returns the newest media with like counts and the viewer's own
// liked/bookmarked flags. Anonymous viewers get both flags false.
func (h *FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultFeedLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 200 {
			writeError(w, r, badRequest("limit must be between 1 and 200"))
			return
		}
		limit = n
	}
	items, err := h.feedRepo.Feed(r.Context(), UserIDFromContext(r.Context()), limit)
	if err != nil {
		writeError(w, r, internal(err))
		return
	}
	if items == nil {
		items = []models.FeedItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type toggleFunc func(r *http.Request, mediaID, userID string) error

func (h *FeedHandler) toggle(fn toggleFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(r, mux.Vars(r)["mediaID"], UserIDFromContext(r.Context()))
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, notFound("media not found"))
			return
		}
		if err != nil {
			writeError(w, r, newError(http.StatusInternalServerError, CodeInternal, err.Error(), err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *FeedHandler) Like() http.HandlerFunc {
	return h.toggle(func(r *http.Request, mediaID, userID string) error {
		return h.feedRepo.Like(r.Context(), mediaID, userID)
	})
}

func (h *FeedHandler) Unlike() http.HandlerFunc {
	return h.toggle(func(r *http.Request, mediaID, userID string) error {
		return h.feedRepo.Unlike(r.Context(), mediaID, userID)
	})
}

func (h *FeedHandler) Bookmark() http.HandlerFunc {
	return h.toggle(func(r *http.Request, mediaID, userID string) error {
		return h.feedRepo.Bookmark(r.Context(), mediaID, userID)
	})
}

func (h *FeedHandler) Unbookmark() http.HandlerFunc {
	return h.toggle(func(r *http.Request, mediaID, userID string) error {
		return h.feedRepo.Unbookmark(r.Context(), mediaID, userID)
	})
}
