package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
)

func setupDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache", "works.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type countingSource struct {
	calls map[string]int
}

func (c *countingSource) inc(k string) {
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[k]++
}

func (c *countingSource) WorkByDOI(_ context.Context, doi string) (*openalex.Work, error) {
	c.inc("doi")
	return &openalex.Work{ID: "https://openalex.org/W1", DOI: "https://doi.org/" + doi, DisplayName: "One"}, nil
}

func (c *countingSource) SearchTitle(_ context.Context, title string) (*openalex.Work, error) {
	c.inc("title")
	return &openalex.Work{ID: "https://openalex.org/W2", DisplayName: title}, nil
}

func (c *countingSource) Work(_ context.Context, id string) (*openalex.Work, error) {
	c.inc("work")
	if id == "W404" {
		return nil, openalex.ErrNotFound
	}
	return &openalex.Work{ID: "https://openalex.org/" + openalex.ShortID(id), DisplayName: "Work " + id}, nil
}

func (c *countingSource) CitingWorks(_ context.Context, _ string, _ int) ([]openalex.Work, error) {
	c.inc("cites")
	return []openalex.Work{{ID: "https://openalex.org/W9", DisplayName: "Citer"}}, nil
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	w := &openalex.Work{
		ID:                    "https://openalex.org/W1",
		DOI:                   "https://doi.org/10.1234/ABC",
		DisplayName:           "A Work",
		ReferencedWorks:       []string{"https://openalex.org/W2"},
		AbstractInvertedIndex: map[string][]int{"Hi": {0}},
	}
	if err := db.Put(ctx, w); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok, err := db.Get(ctx, "W1", time.Hour)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v, %v", got, ok, err)
	}
	if got.DisplayName != "A Work" || len(got.ReferencedWorks) != 1 || got.Abstract() != "Hi" {
		t.Errorf("Get() = %+v", got)
	}

	if _, ok, _ := db.GetByDOI(ctx, "10.1234/abc", time.Hour); !ok {
		t.Error("GetByDOI() missed")
	}
	if _, ok, _ := db.Get(ctx, "W2", time.Hour); ok {
		t.Error("Get(unknown) hit")
	}
}

func TestGet_Expired(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	now := time.Unix(1_700_000_000, 0)
	db.now = func() time.Time { return now }

	if err := db.Put(ctx, &openalex.Work{ID: "https://openalex.org/W1"}); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Hour)

	if _, ok, _ := db.Get(ctx, "W1", time.Hour); ok {
		t.Error("expired entry returned")
	}
	if _, ok, _ := db.Get(ctx, "W1", 0); !ok {
		t.Error("maxAge 0 should ignore age")
	}
}

func TestStatsAndClear(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)

	s, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if s.Works != 0 || !s.Oldest.IsZero() {
		t.Errorf("empty Stats() = %+v", s)
	}

	for _, id := range []string{"W1", "W2", "W1"} {
		if err := db.Put(ctx, &openalex.Work{ID: "https://openalex.org/" + id}); err != nil {
			t.Fatal(err)
		}
	}
	s, _ = db.Stats(ctx)
	if s.Works != 2 || s.Bytes == 0 || s.Newest.IsZero() {
		t.Errorf("Stats() = %+v", s)
	}

	n, err := db.Clear(ctx)
	if err != nil || n != 2 {
		t.Errorf("Clear() = %d, %v", n, err)
	}
	s, _ = db.Stats(ctx)
	if s.Works != 0 {
		t.Errorf("Works after Clear = %d", s.Works)
	}
}

func TestSource(t *testing.T) {
	ctx := context.Background()
	next := &countingSource{}
	src := NewSource(next, setupDB(t), time.Hour)

	for i := 0; i < 3; i++ {
		if _, err := src.Work(ctx, "https://openalex.org/W5"); err != nil {
			t.Fatal(err)
		}
	}
	if next.calls["work"] != 1 {
		t.Errorf("Work fetched %d times, want 1", next.calls["work"])
	}

	if _, err := src.WorkByDOI(ctx, "10.1/x"); err != nil {
		t.Fatal(err)
	}
	if _, err := src.WorkByDOI(ctx, "10.1/x"); err != nil {
		t.Fatal(err)
	}
	if next.calls["doi"] != 1 {
		t.Errorf("WorkByDOI fetched %d times, want 1", next.calls["doi"])
	}

	// Works seen through a citing query are served from the cache later.
	if _, err := src.CitingWorks(ctx, "W5", 10); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Work(ctx, "W9"); err != nil {
		t.Fatal(err)
	}
	if next.calls["work"] != 1 {
		t.Errorf("citing work refetched")
	}

	for i := 0; i < 2; i++ {
		if _, err := src.SearchTitle(ctx, "Some Title"); err != nil {
			t.Fatal(err)
		}
	}
	if next.calls["title"] != 2 {
		t.Errorf("SearchTitle called %d times, want 2", next.calls["title"])
	}

	if _, err := src.Work(ctx, "W404"); !openalex.IsNotFound(err) {
		t.Errorf("Work(W404) error = %v, want not found", err)
	}
}
