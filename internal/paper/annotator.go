package paper

import (
	"context"
	"fmt"
	"strings"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/document"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/hub"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/logctx"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/vault"
)

// Section titles written into paper notes.
const (
	SectionMetadata = "OpenAlex Metadata"
	SectionHub      = "Citation Hub"
)

// MaxConcepts is the number of concepts copied into a note.
const MaxConcepts = 5

// Outcome is the result of annotating a note.
type Outcome int

const (
	// Annotated means the note was updated.
	Annotated Outcome = iota
	// AlreadyProcessed means the note was left untouched.
	AlreadyProcessed
)

func (o Outcome) String() string {
	switch o {
	case Annotated:
		return "annotated"
	case AlreadyProcessed:
		return "already processed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Annotator writes OpenAlex metadata into paper notes.
type Annotator struct {
	store vault.Store
}

// NewAnnotator returns an Annotator over store.
func NewAnnotator(store vault.Store) *Annotator {
	return &Annotator{store: store}
}

// Annotate merges work's metadata into the note at p and links it to the
// hub named hubName. Notes already marked processed are not modified.
func (a *Annotator) Annotate(ctx context.Context, p string, work *openalex.Work, hubName string) (Outcome, error) {
	content, err := a.store.Read(ctx, p)
	if err != nil {
		return 0, err
	}
	doc := document.Parse(content)
	if doc.Front.GetBool(KeyProcessed) {
		return AlreadyProcessed, nil
	}

	if work.PublicationYear > 0 {
		doc.Front.Set(KeyYear, work.PublicationYear)
	}
	if v := work.VenueName(); v != "" {
		doc.Front.Set(KeyVenue, v)
	}
	doc.Front.Set(KeyOpenAlexID, work.ID)
	doc.Front.Set(KeyCitedByCount, work.CitedByCount)
	doc.Front.Set(KeyConcepts, conceptNames(work.TopConcepts(MaxConcepts)))
	doc.Front.Set(KeyProcessed, true)

	if s := doc.Find(SectionMetadata); s != nil {
		s.SetBody(RenderMetadata(work))
	} else {
		doc.Insert(doc.TitleIndex(), document.NewSection(SectionMetadata, RenderMetadata(work)...))
	}

	if hubName != "" && doc.Find(SectionHub) == nil {
		doc.Append(document.NewSection(SectionHub, hub.Link(hubName)))
	}

	if err := a.store.Modify(ctx, p, doc.String()); err != nil {
		return 0, err
	}
	logctx.From(ctx).Info("annotated paper", "path", p, "openalex_id", work.ID)
	return Annotated, nil
}

// RenderMetadata returns the body of the OpenAlex Metadata section.
func RenderMetadata(work *openalex.Work) []string {
	lines := []string{"**Publication Details**"}
	if work.PublicationYear > 0 {
		lines = append(lines, fmt.Sprintf("- Year: %d", work.PublicationYear))
	}
	if v := work.VenueName(); v != "" {
		lines = append(lines, "- Venue: "+v)
	}
	if authors := work.AuthorNames(); len(authors) > 0 {
		lines = append(lines, "- Authors: "+strings.Join(authors, ", "))
	}
	if doi := work.BareDOI(); doi != "" {
		lines = append(lines, fmt.Sprintf("- DOI: [%s](https://doi.org/%s)", doi, doi))
	}
	lines = append(lines, fmt.Sprintf("- OpenAlex: [%s](%s)", openalex.ShortID(work.ID), work.ID))

	if concepts := work.TopConcepts(MaxConcepts); len(concepts) > 0 {
		lines = append(lines, "", "**Research Concepts**")
		for _, c := range concepts {
			lines = append(lines, fmt.Sprintf("- %s (%d%%)", c.DisplayName, hub.Percent(c.Score)))
		}
	}

	if abstract := work.Abstract(); abstract != "" {
		lines = append(lines, "", "**Abstract**", abstract)
	}

	lines = append(lines,
		"",
		"**Citation Network**",
		fmt.Sprintf("- References: %d", len(work.ReferencedWorks)),
		fmt.Sprintf("- Cited by: %d", work.CitedByCount),
	)
	return lines
}

func conceptNames(concepts []openalex.Concept) []string {
	names := make([]string, len(concepts))
	for i, c := range concepts {
		names[i] = c.DisplayName
	}
	return names
}
