package hub

import (
	"fmt"
	"math"
	"strings"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/document"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/frontmatter"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
)

// Tag is added to the tags of every hub document.
const Tag = "paper-hub"

// Link renders a wiki link bullet.
func Link(name string) string {
	return "- [[" + name + "]]"
}

// Links renders one wiki link bullet per name.
func Links(names []string) []string {
	lines := make([]string, len(names))
	for i, n := range names {
		lines[i] = Link(n)
	}
	return lines
}

// Render builds a new hub document for work with parentPaper as its
// Parent Paper.
func Render(work *openalex.Work, parentPaper string) string {
	front, _ := frontmatter.Split("")
	front.Set(IDKey, work.ID)
	front.Set("title", work.Name())
	if work.PublicationYear > 0 {
		front.Set("year", work.PublicationYear)
	}
	if v := work.VenueName(); v != "" {
		front.Set("venue", v)
	}
	if doi := work.BareDOI(); doi != "" {
		front.Set("doi", doi)
	}
	front.Set("cited_by_count", work.CitedByCount)
	front.Set("authors", work.AuthorNames())
	front.Set("concepts", conceptNames(work.TopConcepts(5)))
	front.Set("tags", []string{Tag})

	title := work.Name()
	if title == "" {
		title = "Untitled"
	}

	doc := &document.Document{Front: front}
	doc.Append(&document.Section{
		Heading: "# " + title,
		Lines:   []string{"", "> [!info] Citation hub", "> Links between this work and the papers in your vault, from OpenAlex.", ""},
	})

	parent := []string{}
	if parentPaper != "" {
		parent = append(parent, Link(parentPaper))
	}
	doc.Append(document.NewSection(SectionParent, parent...))
	doc.Append(document.NewSection(SectionDetails, details(work)...))
	if abstract := work.Abstract(); abstract != "" {
		doc.Append(document.NewSection(SectionAbstract, abstract))
	}
	if concepts := work.TopConcepts(5); len(concepts) > 0 {
		lines := make([]string, len(concepts))
		for i, c := range concepts {
			lines[i] = fmt.Sprintf("- %s (%d%%)", c.DisplayName, Percent(c.Score))
		}
		doc.Append(document.NewSection(SectionConcepts, lines...))
	}
	doc.Append(document.NewSection(SectionConnected))
	doc.Append(document.NewSection(SectionCited))
	doc.Append(document.NewSection(SectionCitedBy))
	doc.Append(document.NewSection(SectionNotes))
	return doc.String()
}

func details(work *openalex.Work) []string {
	var lines []string
	if authors := work.AuthorNames(); len(authors) > 0 {
		lines = append(lines, "- **Authors:** "+strings.Join(authors, ", "))
	}
	if work.PublicationYear > 0 {
		lines = append(lines, fmt.Sprintf("- **Year:** %d", work.PublicationYear))
	}
	if v := work.VenueName(); v != "" {
		lines = append(lines, "- **Venue:** "+v)
	}
	if doi := work.BareDOI(); doi != "" {
		lines = append(lines, fmt.Sprintf("- **DOI:** [%s](https://doi.org/%s)", doi, doi))
	}
	lines = append(lines,
		fmt.Sprintf("- **OpenAlex:** [%s](%s)", openalex.ShortID(work.ID), work.ID),
		fmt.Sprintf("- **Cited by:** %d", work.CitedByCount),
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

// Percent converts a relevance score in [0, 1] to a rounded percentage.
func Percent(score float64) int {
	return int(math.Round(score * 100))
}
