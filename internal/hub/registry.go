// Package hub creates and maintains hub documents: one note per OpenAlex
// work that collects the citation edges around it.
package hub

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/citekey"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/document"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/logctx"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/vault"
)

// Section titles of a hub document.
const (
	SectionParent    = "Parent Paper"
	SectionDetails   = "Paper Details"
	SectionAbstract  = "Abstract"
	SectionConcepts  = "Key Concepts"
	SectionConnected = "Connected Papers"
	SectionCited     = "Cited"
	SectionCitedBy   = "Cited By"
	SectionNotes     = "Research Notes"
)

// IDKey is the frontmatter key holding the OpenAlex id of a hub.
const IDKey = "openalex_id"

var wikiLinkPattern = regexp.MustCompile(`\[\[([^\]|#]+)(?:[#|][^\]]*)?\]\]`)

// ParseError reports a hub document that could not be indexed.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing hub %s: %s", e.Path, e.Reason)
}

// Entry is one indexed hub.
type Entry struct {
	ID          string `json:"openalex_id"`
	Path        string `json:"path"`
	ParentPaper string `json:"parent_paper,omitempty"`
}

// Registry indexes hub documents by OpenAlex id and by parent paper name.
// It is derived from the hub documents and can be rebuilt at any time.
type Registry struct {
	store  vault.Store
	folder string

	mu      sync.RWMutex
	byID    map[string]Entry
	byPaper map[string]string
}

// NewRegistry returns an empty registry over the hubs in folder.
func NewRegistry(store vault.Store, folder string) *Registry {
	return &Registry{
		store:   store,
		folder:  folder,
		byID:    make(map[string]Entry),
		byPaper: make(map[string]string),
	}
}

// Folder returns the hub folder.
func (r *Registry) Folder() string {
	return r.folder
}

// LookupID returns the hub path registered for an OpenAlex id.
func (r *Registry) LookupID(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[openalex.ShortID(id)]
	return e.Path, ok
}

// LookupPaper returns the first hub registered with paperName as its
// Parent Paper.
func (r *Registry) LookupPaper(paperName string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byPaper[paperName]
	return p, ok
}

// Register records a hub in both indexes.
func (r *Registry) Register(id, paperName, hubPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[openalex.ShortID(id)] = Entry{ID: id, Path: hubPath, ParentPaper: paperName}
	if _, taken := r.byPaper[paperName]; paperName != "" && !taken {
		r.byPaper[paperName] = hubPath
	}
}

// Len returns the number of indexed hubs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Entries returns every indexed hub, sorted by path.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]Entry, 0, len(r.byID))
	for _, e := range r.byID {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}

// Rebuild replaces the indexes with the hubs currently in the hub folder.
// Hubs that cannot be parsed are logged, skipped and returned.
func (r *Registry) Rebuild(ctx context.Context) ([]*ParseError, error) {
	docs, err := r.store.List(ctx, r.folder)
	if err != nil {
		return nil, fmt.Errorf("listing hubs: %w", err)
	}

	byID := make(map[string]Entry)
	byPaper := make(map[string]string)
	var skipped []*ParseError
	log := logctx.From(ctx)

	for _, d := range docs {
		if !citekey.IsHubName(path.Base(d.Path)) {
			continue
		}
		e, perr := r.parse(ctx, d.Path)
		if perr != nil {
			log.Warn("skipping hub", "path", d.Path, "error", perr.Reason)
			skipped = append(skipped, perr)
			continue
		}
		byID[openalex.ShortID(e.ID)] = e
		if _, taken := byPaper[e.ParentPaper]; e.ParentPaper != "" && !taken {
			byPaper[e.ParentPaper] = e.Path
		}
	}

	r.mu.Lock()
	r.byID = byID
	r.byPaper = byPaper
	r.mu.Unlock()

	log.Debug("registry rebuilt", "hubs", len(byID), "skipped", len(skipped))
	return skipped, nil
}

func (r *Registry) parse(ctx context.Context, hubPath string) (Entry, *ParseError) {
	content, err := r.store.Read(ctx, hubPath)
	if err != nil {
		return Entry{}, &ParseError{Path: hubPath, Reason: err.Error()}
	}
	doc := document.Parse(content)
	if !doc.Front.Present() {
		return Entry{}, &ParseError{Path: hubPath, Reason: "no frontmatter"}
	}
	if _, _, err := doc.Front.Get(IDKey); err != nil {
		return Entry{}, &ParseError{Path: hubPath, Reason: err.Error()}
	}
	id := doc.Front.GetString(IDKey)
	if id == "" {
		return Entry{}, &ParseError{Path: hubPath, Reason: "missing " + IDKey}
	}
	return Entry{ID: id, Path: hubPath, ParentPaper: parentPaper(doc)}, nil
}

// parentPaper returns the first wiki link target under Parent Paper.
func parentPaper(doc *document.Document) string {
	s := doc.Find(SectionParent)
	if s == nil {
		return ""
	}
	for _, l := range s.Lines {
		if m := wikiLinkPattern.FindStringSubmatch(l); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
