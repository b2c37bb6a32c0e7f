package cache

import (
	"context"
	"time"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/logctx"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
)

// Source serves works from the cache when fresh and records every work
// fetched from the wrapped source.
type Source struct {
	next openalex.Source
	db   *DB
	ttl  time.Duration
}

// NewSource wraps next. Entries older than ttl are refetched; ttl <= 0
// keeps entries forever.
func NewSource(next openalex.Source, db *DB, ttl time.Duration) *Source {
	return &Source{next: next, db: db, ttl: ttl}
}

// WorkByDOI implements openalex.Source.
func (s *Source) WorkByDOI(ctx context.Context, doi string) (*openalex.Work, error) {
	if w, ok := s.cached(ctx, func() (*openalex.Work, bool, error) { return s.db.GetByDOI(ctx, doi, s.ttl) }); ok {
		return w, nil
	}
	w, err := s.next.WorkByDOI(ctx, doi)
	if err != nil {
		return nil, err
	}
	s.store(ctx, w)
	return w, nil
}

// SearchTitle implements openalex.Source. Searches always go to the network.
func (s *Source) SearchTitle(ctx context.Context, title string) (*openalex.Work, error) {
	w, err := s.next.SearchTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	s.store(ctx, w)
	return w, nil
}

// Work implements openalex.Source.
func (s *Source) Work(ctx context.Context, id string) (*openalex.Work, error) {
	if w, ok := s.cached(ctx, func() (*openalex.Work, bool, error) { return s.db.Get(ctx, id, s.ttl) }); ok {
		return w, nil
	}
	w, err := s.next.Work(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(ctx, w)
	return w, nil
}

// CitingWorks implements openalex.Source. The query always goes to the
// network; the returned works are cached.
func (s *Source) CitingWorks(ctx context.Context, id string, limit int) ([]openalex.Work, error) {
	works, err := s.next.CitingWorks(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	for i := range works {
		s.store(ctx, &works[i])
	}
	return works, nil
}

// cached runs a lookup; cache errors are logged and treated as misses.
func (s *Source) cached(ctx context.Context, get func() (*openalex.Work, bool, error)) (*openalex.Work, bool) {
	w, ok, err := get()
	if err != nil {
		logctx.From(ctx).Warn("work cache read failed", "error", err)
		return nil, false
	}
	return w, ok
}

func (s *Source) store(ctx context.Context, w *openalex.Work) {
	if err := s.db.Put(ctx, w); err != nil {
		logctx.From(ctx).Warn("work cache write failed", "error", err)
	}
}
