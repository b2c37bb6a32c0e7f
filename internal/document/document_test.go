package document

import (
	"reflect"
	"strings"
	"testing"
)

const sample = `---
openalex_id: "https://openalex.org/W1"
---
# Title

> [!info] blurb

## Parent Paper
- [[paper-a]]

## Connected Papers

## Cited
- [[hub_A]]

---
Footer text

## Research Notes
my own notes
### sub heading
more notes
`

func TestParse_RoundTrip(t *testing.T) {
	inputs := []string{
		sample,
		"",
		"no headings at all",
		"# Only title",
		"---\nkey: 1\n---\n",
		"```\n## not a heading\n```\n## Real\nbody\n",
	}
	for _, in := range inputs {
		if got := Parse(in).String(); got != in {
			t.Errorf("round trip mismatch:\ngot  %q\nwant %q", got, in)
		}
	}
}

func TestParse_Sections(t *testing.T) {
	doc := Parse(sample)

	var titles []string
	for _, s := range doc.Sections {
		titles = append(titles, s.Title())
	}
	want := []string{"Title", "Parent Paper", "Connected Papers", "Cited", "", "Research Notes"}
	if !reflect.DeepEqual(titles, want) {
		t.Errorf("section titles = %q, want %q", titles, want)
	}

	cited := doc.Find("cited")
	if cited == nil {
		t.Fatal("Find(cited) = nil")
	}
	if got := cited.Body(); !reflect.DeepEqual(got, []string{"- [[hub_A]]"}) {
		t.Errorf("Cited body = %q", got)
	}

	notes := doc.Find("Research Notes")
	if !notes.Contains("### sub heading") {
		t.Error("level-3 heading should stay inside Research Notes")
	}
}

func TestParse_FencedHeading(t *testing.T) {
	doc := Parse("```\n## not a heading\n```\n## Real\nbody\n")
	if doc.Find("not a heading") != nil {
		t.Error("heading inside code fence was treated as a section")
	}
	if doc.Find("Real") == nil {
		t.Error("Find(Real) = nil")
	}
}

func TestUpsert_ReplacesBody(t *testing.T) {
	doc := Parse(sample)
	doc.Upsert("Cited", []string{"- [[hub_B]]", "- [[hub_C]]"}, "Research Notes")
	out := doc.String()

	if strings.Contains(out, "hub_A") {
		t.Error("old Cited entry survived the replace")
	}
	if strings.Count(out, "## Cited\n") != 1 {
		t.Errorf("expected exactly one Cited section:\n%s", out)
	}
	if !strings.Contains(out, "## Cited\n- [[hub_B]]\n- [[hub_C]]\n\n---\nFooter text") {
		t.Errorf("Cited body not replaced in place:\n%s", out)
	}
}

func TestUpsert_InsertsBeforeAnchor(t *testing.T) {
	doc := Parse(sample)
	doc.Upsert("Cited By", []string{"- [[hub_Z]]"}, "Research Notes")
	out := doc.String()

	citedBy := strings.Index(out, "## Cited By")
	notes := strings.Index(out, "## Research Notes")
	if citedBy < 0 || notes < 0 || citedBy > notes {
		t.Errorf("Cited By not inserted before Research Notes:\n%s", out)
	}
	if !strings.Contains(out, "## Cited By\n- [[hub_Z]]\n\n## Research Notes") {
		t.Errorf("unexpected layout:\n%s", out)
	}
}

func TestUpsert_AppendsWithoutAnchor(t *testing.T) {
	doc := Parse("# Note\nsome text")
	doc.Upsert("Citation Hub", []string{"- [[hub_X]]"}, "Nonexistent")
	want := "# Note\nsome text\n\n## Citation Hub\n- [[hub_X]]\n"
	if got := doc.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTitleIndex(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"title first", "# Title\nintro\n## Next\n", 1},
		{"blank then title", "\n\n# Title\n", 2},
		{"text before title", "intro\n# Title\n", 0},
		{"no title", "## Section\n", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.content).TitleIndex(); got != tt.want {
				t.Errorf("TitleIndex() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFirstHeading(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"plain", "# Deep Networks\n\ntext", "Deep Networks"},
		{"emphasis", "# A *Study* of `Deep` Networks\n", "A Study of Deep Networks"},
		{"skips level two", "## Not this\n# This one\n", "This one"},
		{"none", "just text\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstHeading(tt.body, 1); got != tt.want {
				t.Errorf("FirstHeading() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDocument_Title(t *testing.T) {
	doc := Parse("---\ntitle: x\n---\n# From Heading\n")
	if got := doc.Title(); got != "From Heading" {
		t.Errorf("Title() = %q, want From Heading", got)
	}
}

func TestSection_Title(t *testing.T) {
	tests := []struct {
		heading string
		want    string
	}{
		{"## Cited", "Cited"},
		{"## Cited ##", "Cited"},
		{"## Cited By   #", "Cited By"},
		{"# Issue C#", "Issue C#"},
		{"## ##", ""},
		{"##", ""},
	}
	for _, tt := range tests {
		s := &Section{Heading: tt.heading}
		if got := s.Title(); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.heading, got, tt.want)
		}
	}
}

func TestUpsert_ClosedHeading(t *testing.T) {
	doc := Parse("# Hub\n\n## Cited ##\n- [[hub_A]]\n\n## Research Notes\nmine\n")
	doc.Upsert("Cited", []string{"- [[hub_B]]"}, "Research Notes")
	out := doc.String()
	if strings.Count(out, "## Cited") != 1 {
		t.Errorf("expected one Cited section:\n%s", out)
	}
	if strings.Contains(out, "hub_A") || !strings.Contains(out, "## Cited ##\n- [[hub_B]]") {
		t.Errorf("Cited body not replaced in place:\n%s", out)
	}
}
