// Package feed is the viewer-side model of the media feed: a loaded page of
// items with optimistic like and bookmark toggles.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/garnizeh/helpermatch/pkg/models"
	"github.com/garnizeh/helpermatch/pkg/repository"
)

var (
	ErrSignInRequired = errors.New("sign in required")
	ErrUnknownItem    = errors.New("feed item not found")
	ErrInFlight       = errors.New("toggle already in flight")
)

// ToggleState tracks the write behind the last toggle of an item.
type ToggleState int

const (
	Idle ToggleState = iota
	Pending
	Confirmed
	Failed
)

func (s ToggleState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Writer persists the like and bookmark join rows.
type Writer interface {
	Like(ctx context.Context, mediaID, userID string) error
	Unlike(ctx context.Context, mediaID, userID string) error
	Bookmark(ctx context.Context, mediaID, userID string) error
	Unbookmark(ctx context.Context, mediaID, userID string) error
}

type Item struct {
	models.FeedItem

	LikeState     ToggleState
	BookmarkState ToggleState
	// Err is the error of the last failed toggle.
	Err error
}

// Session holds one viewer's loaded feed. An empty viewer is anonymous and
// can read but not toggle. It is client state; the HTTP layer serves the
// same store through api.FeedHandler.
type Session struct {
	viewer string
	w      Writer
	logger *slog.Logger

	mu    sync.Mutex
	items []Item
	index map[string]int
}

func NewSession(viewer string, items []models.FeedItem, w Writer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{viewer: viewer, w: w, logger: logger, index: make(map[string]int, len(items))}
	for i, it := range items {
		s.items = append(s.items, Item{FeedItem: it})
		s.index[it.ID] = i
	}
	return s
}

// Load reads the newest limit items resolved for viewer.
func Load(ctx context.Context, repo repository.FeedRepo, viewer string, limit int, logger *slog.Logger) (*Session, error) {
	items, err := repo.Feed(ctx, viewer, limit)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}
	return NewSession(viewer, items, repo, logger), nil
}

func (s *Session) Viewer() string { return s.viewer }

// Items returns a copy of the current items.
func (s *Session) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *Session) Item(mediaID string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[mediaID]
	if !ok {
		return Item{}, false
	}
	return s.items[i], true
}

// ToggleLike flips the viewer's like and the count at once, then writes. A
// failed write puts both back and marks the item Failed.
func (s *Session) ToggleLike(ctx context.Context, mediaID string) error {
	return s.toggle(ctx, mediaID,
		func(it *Item) *ToggleState { return &it.LikeState },
		func(it *Item) bool {
			it.Liked = !it.Liked
			if it.Liked {
				it.LikeCount++
			} else {
				it.LikeCount--
			}
			return it.Liked
		},
		s.w.Like, s.w.Unlike,
	)
}

// ToggleBookmark is ToggleLike for bookmarks, which carry no count.
func (s *Session) ToggleBookmark(ctx context.Context, mediaID string) error {
	return s.toggle(ctx, mediaID,
		func(it *Item) *ToggleState { return &it.BookmarkState },
		func(it *Item) bool {
			it.Bookmarked = !it.Bookmarked
			return it.Bookmarked
		},
		s.w.Bookmark, s.w.Unbookmark,
	)
}

type writeFunc func(ctx context.Context, mediaID, userID string) error

func (s *Session) toggle(ctx context.Context, mediaID string, state func(*Item) *ToggleState, flip func(*Item) bool, on, off writeFunc) error {
	if s.viewer == "" {
		return ErrSignInRequired
	}

	s.mu.Lock()
	i, ok := s.index[mediaID]
	if !ok {
		s.mu.Unlock()
		return ErrUnknownItem
	}
	it := &s.items[i]
	if *state(it) == Pending {
		s.mu.Unlock()
		return ErrInFlight
	}
	turnedOn := flip(it)
	*state(it) = Pending
	s.mu.Unlock()

	write := off
	if turnedOn {
		write = on
	}
	err := write(ctx, mediaID, s.viewer)

	s.mu.Lock()
	defer s.mu.Unlock()
	it = &s.items[i]
	if err != nil {
		flip(it)
		*state(it) = Failed
		it.Err = err
		s.logger.WarnContext(ctx, "feed toggle failed", "media_id", mediaID, "user_id", s.viewer, "error", err)
		return err
	}
	*state(it) = Confirmed
	it.Err = nil
	return nil
}
