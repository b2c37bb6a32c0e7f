// Package paper reads identifiers from the user's paper notes and writes
// OpenAlex metadata back into them.
package paper

import (
	"context"
	"path"
	"strings"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/document"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/frontmatter"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/logctx"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/pdf"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/vault"
)

// Frontmatter keys read from and written to paper notes.
const (
	KeyDOI          = "doi"
	KeyTitle        = "title"
	KeyPDF          = "pdf"
	KeyProcessed    = "processed"
	KeyYear         = "year"
	KeyVenue        = "venue"
	KeyOpenAlexID   = "openalex_id"
	KeyCitedByCount = "cited_by_count"
	KeyConcepts     = "concepts"
)

// Identity is what a note tells us about the paper it describes.
type Identity struct {
	DOI   string
	Title string
}

// Empty reports whether neither a DOI nor a title is known.
func (id Identity) Empty() bool {
	return id.DOI == "" && id.Title == ""
}

// FileReader reads raw file content from the vault.
type FileReader interface {
	ReadBytes(ctx context.Context, p string) ([]byte, error)
}

// Note is a parsed paper note.
type Note struct {
	Path string
	Name string
	doc  *document.Document
	body string
}

// ParseNote parses the content of the note at p.
func ParseNote(p, content string) *Note {
	_, body := frontmatter.Split(content)
	return &Note{
		Path: p,
		Name: vault.NameOf(p),
		doc:  document.Parse(content),
		body: body,
	}
}

// Processed reports whether the note carries processed: true.
func (n *Note) Processed() bool {
	return n.doc.Front.GetBool(KeyProcessed)
}

// DOI returns the frontmatter doi, else the first DOI in the body.
func (n *Note) DOI() string {
	if doi := n.doc.Front.GetString(KeyDOI); doi != "" {
		return openalex.NormalizeDOI(doi)
	}
	return openalex.NormalizeDOI(openalex.FindDOI(n.body))
}

// Title returns the frontmatter title, else the first level-1 heading.
func (n *Note) Title() string {
	if t := n.doc.Front.GetString(KeyTitle); t != "" {
		return t
	}
	return n.doc.Title()
}

// PDF returns the vault path of the attached PDF, or "".
func (n *Note) PDF() string {
	v, _, _ := n.doc.Front.Get(KeyPDF)
	var p string
	switch t := v.(type) {
	case string:
		p = t
	case []any:
		// An unquoted [[link]] decodes as a nested YAML list.
		if len(t) == 1 {
			if inner, ok := t[0].([]any); ok && len(inner) == 1 {
				p, _ = inner[0].(string)
			}
		}
	}
	p = strings.TrimSpace(p)
	p = strings.TrimSuffix(strings.TrimPrefix(p, "[["), "]]")
	if i := strings.Index(p, "|"); i >= 0 {
		p = p[:i]
	}
	return strings.TrimSpace(p)
}

// Identity collects the note's identifiers. When the note names a PDF and
// has no DOI of its own, the PDF is searched for one; a PDF that cannot be
// read is logged and ignored.
func (n *Note) Identity(ctx context.Context, files FileReader) Identity {
	id := Identity{DOI: n.DOI(), Title: n.Title()}
	if id.DOI != "" || files == nil || n.PDF() == "" {
		return id
	}

	log := logctx.From(ctx)
	for _, p := range n.pdfCandidates() {
		data, err := files.ReadBytes(ctx, p)
		if err != nil {
			continue
		}
		doi, err := pdf.ExtractDOI(data)
		if err != nil {
			log.Warn("reading attached PDF", "note", n.Path, "pdf", p, "error", err)
			return id
		}
		id.DOI = openalex.NormalizeDOI(doi)
		return id
	}
	log.Debug("attached PDF not found", "note", n.Path, "pdf", n.PDF())
	return id
}

// pdfCandidates returns the PDF path as given and relative to the note.
func (n *Note) pdfCandidates() []string {
	p := vault.Clean(n.PDF())
	local := vault.Clean(path.Join(path.Dir(n.Path), n.PDF()))
	if local == p {
		return []string{p}
	}
	return []string{p, local}
}
