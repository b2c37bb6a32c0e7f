package hub

import (
	"context"
	"fmt"
	"path"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/citekey"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/document"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/logctx"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/vault"
)

// Merger creates hub documents and merges new edges into existing ones.
type Merger struct {
	store    vault.Store
	registry *Registry
}

// NewMerger returns a Merger writing hubs into the registry's folder.
func NewMerger(store vault.Store, registry *Registry) *Merger {
	return &Merger{store: store, registry: registry}
}

// Registry returns the registry the merger keeps current.
func (m *Merger) Registry() *Registry {
	return m.registry
}

// EnsureHub returns the hub for work, creating it with paperName as its
// Parent Paper when none exists. An existing hub gains paperName as a
// connected paper.
func (m *Merger) EnsureHub(ctx context.Context, work *openalex.Work, paperName string) (string, error) {
	if work == nil || work.ID == "" {
		return "", fmt.Errorf("ensuring hub: work has no id")
	}
	log := logctx.From(ctx)

	if p, ok := m.registry.LookupID(work.ID); ok && m.store.Exists(ctx, p) {
		if err := m.UpdateConnection(ctx, p, paperName); err != nil {
			return "", err
		}
		return p, nil
	}

	folder := m.registry.Folder()
	if err := m.store.CreateFolder(ctx, folder); err != nil {
		return "", fmt.Errorf("creating hub folder: %w", err)
	}

	for _, name := range candidateNames(work) {
		p := path.Join(folder, name+".md")
		if !m.store.Exists(ctx, p) {
			if err := m.store.Create(ctx, p, Render(work, paperName)); err != nil {
				return "", fmt.Errorf("creating hub: %w", err)
			}
			m.registry.Register(work.ID, paperName, p)
			log.Info("created hub", "path", p, "openalex_id", work.ID)
			return p, nil
		}

		// The path is taken. Adopt it if it already belongs to this work.
		e, perr := m.registry.parse(ctx, p)
		if perr != nil || openalex.ShortID(e.ID) != openalex.ShortID(work.ID) {
			continue
		}
		m.registry.Register(e.ID, e.ParentPaper, p)
		if err := m.UpdateConnection(ctx, p, paperName); err != nil {
			return "", err
		}
		return p, nil
	}
	return "", fmt.Errorf("creating hub for %s: every candidate name is taken", work.ID)
}

// candidateNames returns the slug followed by the slug qualified with the
// work's short id.
func candidateNames(work *openalex.Work) []string {
	slug := citekey.Generate(work)
	suffix := "_" + openalex.ShortID(work.ID)
	base := []rune(slug)
	if limit := citekey.MaxLen - len([]rune(suffix)); len(base) > limit && limit > 0 {
		base = base[:limit]
	}
	return []string{slug, citekey.Sanitize(string(base) + suffix)}
}

// UpdateConnection records paperName under Connected Papers unless it is the
// hub's Parent Paper or is already listed.
func (m *Merger) UpdateConnection(ctx context.Context, hubPath, paperName string) error {
	if paperName == "" {
		return nil
	}
	content, err := m.store.Read(ctx, hubPath)
	if err != nil {
		return err
	}
	doc := document.Parse(content)
	if parentPaper(doc) == paperName {
		return nil
	}

	link := "[[" + paperName + "]]"
	s := doc.Find(SectionConnected)
	switch {
	case s == nil:
		doc.InsertBefore(firstPresent(doc, SectionCited, SectionCitedBy, SectionNotes), document.NewSection(SectionConnected, Link(paperName)))
	case s.Contains(link):
		return nil
	default:
		s.SetBody(append(s.Body(), Link(paperName)))
	}

	if err := m.store.Modify(ctx, hubPath, doc.String()); err != nil {
		return err
	}
	logctx.From(ctx).Debug("connected paper", "hub", hubPath, "paper", paperName)
	return nil
}

// MergeCitationSections replaces the Cited and Cited By lists of a hub. An
// empty list leaves the corresponding section as it is.
func (m *Merger) MergeCitationSections(ctx context.Context, hubPath string, cited, citedBy []string) error {
	if len(cited) == 0 && len(citedBy) == 0 {
		return nil
	}
	content, err := m.store.Read(ctx, hubPath)
	if err != nil {
		return err
	}
	doc := document.Parse(content)
	if len(cited) > 0 {
		doc.Upsert(SectionCited, Links(cited), firstPresent(doc, SectionCitedBy, SectionNotes))
	}
	if len(citedBy) > 0 {
		doc.Upsert(SectionCitedBy, Links(citedBy), firstPresent(doc, SectionNotes))
	}
	if err := m.store.Modify(ctx, hubPath, doc.String()); err != nil {
		return err
	}
	logctx.From(ctx).Debug("merged citations", "hub", hubPath, "cited", len(cited), "cited_by", len(citedBy))
	return nil
}

// firstPresent returns the first of titles that names a section in doc, or "".
func firstPresent(doc *document.Document, titles ...string) string {
	for _, t := range titles {
		if doc.Index(t) >= 0 {
			return t
		}
	}
	return ""
}
