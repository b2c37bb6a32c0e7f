// Package document models a markdown note as frontmatter followed by an
// ordered list of sections, so that edits replace or insert whole sections
// and everything else is written back byte for byte.
package document

import (
	"regexp"
	"strings"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/frontmatter"
)

// MaxSectionLevel is the deepest heading that opens a new section. Deeper
// headings stay inside the enclosing section's body.
const MaxSectionLevel = 2

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})(\s+.*)?$`)
	rulePatterns   = []*regexp.Regexp{
		regexp.MustCompile(`^ {0,3}(- *){3,}$`),
		regexp.MustCompile(`^ {0,3}(\* *){3,}$`),
		regexp.MustCompile(`^ {0,3}(_ *){3,}$`),
	}
)

// Section is a heading line and the lines up to the next section boundary.
// Sections opened by a horizontal rule, and the text before the first
// heading, have an empty Heading.
type Section struct {
	Heading string
	Lines   []string
}

// Document is a parsed note.
type Document struct {
	Front    *frontmatter.Block
	Sections []*Section
}

// Parse splits content into frontmatter and sections.
func Parse(content string) *Document {
	front, body := frontmatter.Split(content)
	doc := &Document{Front: front}
	if body == "" {
		return doc
	}

	cur := &Section{}
	push := func() {
		if cur.Heading != "" || len(cur.Lines) > 0 {
			doc.Sections = append(doc.Sections, cur)
		}
	}

	inFence := false
	for _, l := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(l)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			cur.Lines = append(cur.Lines, l)
			continue
		}
		switch {
		case !inFence && HeadingLevel(l) > 0 && HeadingLevel(l) <= MaxSectionLevel:
			push()
			cur = &Section{Heading: l}
		case !inFence && isRule(l):
			push()
			cur = &Section{Lines: []string{l}}
		default:
			cur.Lines = append(cur.Lines, l)
		}
	}
	push()
	return doc
}

func isRule(l string) bool {
	for _, p := range rulePatterns {
		if p.MatchString(l) {
			return true
		}
	}
	return false
}

// HeadingLevel returns the ATX heading level of a line, or 0.
func HeadingLevel(l string) int {
	m := headingPattern.FindStringSubmatch(l)
	if m == nil {
		return 0
	}
	return len(m[1])
}

// String serializes the document.
func (d *Document) String() string {
	var lines []string
	for _, s := range d.Sections {
		if s.Heading != "" {
			lines = append(lines, s.Heading)
		}
		lines = append(lines, s.Lines...)
	}
	return d.Front.Render() + strings.Join(lines, "\n")
}

// NewSection returns a level-2 section with the given body, followed by a
// blank separator line.
func NewSection(title string, body ...string) *Section {
	s := &Section{Heading: "## " + title}
	s.SetBody(body)
	return s
}

// Title returns the heading text without the leading #s or an optional
// closing sequence of #s.
func (s *Section) Title() string {
	t := strings.TrimSpace(strings.TrimLeft(s.Heading, "#"))
	if closed := strings.TrimRight(t, "#"); closed != t {
		if closed == "" {
			return ""
		}
		if strings.HasSuffix(closed, " ") || strings.HasSuffix(closed, "\t") {
			t = strings.TrimSpace(closed)
		}
	}
	return t
}

// Level returns the heading level, or 0 for an anonymous section.
func (s *Section) Level() int {
	return HeadingLevel(s.Heading)
}

// SetBody replaces the section body.
func (s *Section) SetBody(body []string) {
	s.Lines = append(append([]string{}, body...), "")
}

// Body returns the section body with surrounding blank lines removed.
func (s *Section) Body() []string {
	lines := s.Lines
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Contains reports whether text occurs anywhere in the section body.
func (s *Section) Contains(text string) bool {
	for _, l := range s.Lines {
		if strings.Contains(l, text) {
			return true
		}
	}
	return false
}

// Index returns the position of the first section titled title
// (case-insensitive), or -1.
func (d *Document) Index(title string) int {
	for i, s := range d.Sections {
		if s.Heading != "" && strings.EqualFold(s.Title(), title) {
			return i
		}
	}
	return -1
}

// Find returns the first section titled title, or nil.
func (d *Document) Find(title string) *Section {
	if i := d.Index(title); i >= 0 {
		return d.Sections[i]
	}
	return nil
}

// Insert places s at position i, separating it from the previous section
// with a blank line.
func (d *Document) Insert(i int, s *Section) {
	if i < 0 || i > len(d.Sections) {
		i = len(d.Sections)
	}
	if i > 0 {
		prev := d.Sections[i-1]
		if n := len(prev.Lines); n == 0 || strings.TrimSpace(prev.Lines[n-1]) != "" {
			prev.Lines = append(prev.Lines, "")
		}
	}
	d.Sections = append(d.Sections, nil)
	copy(d.Sections[i+1:], d.Sections[i:])
	d.Sections[i] = s
}

// Append adds s at the end of the document.
func (d *Document) Append(s *Section) {
	d.Insert(len(d.Sections), s)
}

// InsertBefore places s before the section titled anchor, or appends it
// when there is no such section.
func (d *Document) InsertBefore(anchor string, s *Section) {
	if i := d.Index(anchor); i >= 0 {
		d.Insert(i, s)
		return
	}
	d.Append(s)
}

// Upsert replaces the body of the section titled title, or inserts a new
// section before anchor (appending if anchor is absent).
func (d *Document) Upsert(title string, body []string, anchor string) {
	if s := d.Find(title); s != nil {
		s.SetBody(body)
		return
	}
	d.InsertBefore(anchor, NewSection(title, body...))
}

// TitleIndex returns the index just after the first level-1 heading if it
// is the first heading in the document, otherwise 0.
func (d *Document) TitleIndex() int {
	for i, s := range d.Sections {
		if s.Heading == "" {
			if len(s.Body()) == 0 {
				continue
			}
			return 0
		}
		if s.Level() == 1 {
			return i + 1
		}
		return 0
	}
	return 0
}
