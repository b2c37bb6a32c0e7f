package paper

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/document"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/vault"
)

func setupStore(t *testing.T, files map[string]string) *vault.FSStore {
	t.Helper()
	store, err := vault.NewMemStore()
	if err != nil {
		t.Fatalf("NewMemStore() error = %v", err)
	}
	for p, c := range files {
		if err := store.Create(context.Background(), p, c); err != nil {
			t.Fatalf("Create(%s) error = %v", p, err)
		}
	}
	return store
}

func testWork() *openalex.Work {
	return &openalex.Work{
		ID:              "https://openalex.org/W42",
		DisplayName:     "A Study of Deep Networks",
		PublicationYear: 2021,
		HostVenue:       &openalex.Venue{DisplayName: "Nature"},
		Authorships:     []openalex.Authorship{{Author: openalex.Author{DisplayName: "Jane Q. Smith"}}},
		CitedByCount:    12,
		Concepts: []openalex.Concept{
			{DisplayName: "A", Score: 0.918},
			{DisplayName: "B", Score: 0.5},
			{DisplayName: "C", Score: 0.4},
			{DisplayName: "D", Score: 0.3},
			{DisplayName: "E", Score: 0.2},
			{DisplayName: "F", Score: 0.1},
		},
		AbstractInvertedIndex: map[string][]int{"The": {0}, "cat": {1}, "sat": {2}},
		ReferencedWorks:       []string{"W1", "W2"},
	}
}

func TestNote_Identity(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Identity
	}{
		{
			name:    "frontmatter",
			content: "---\ndoi: \"https://doi.org/10.1234/ABC\"\ntitle: \"Given Title\"\n---\n# Heading\n",
			want:    Identity{DOI: "10.1234/abc", Title: "Given Title"},
		},
		{
			name:    "doi in body, title from heading",
			content: "# Heading Title\n\nSee doi:10.5555/xyz.123.\n",
			want:    Identity{DOI: "10.5555/xyz.123", Title: "Heading Title"},
		},
		{
			name:    "nothing",
			content: "just words\n",
			want:    Identity{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := ParseNote("Papers/p.md", tt.content)
			if got := n.Identity(context.Background(), nil); got != tt.want {
				t.Errorf("Identity() = %+v, want %+v", got, tt.want)
			}
			if n.Name != "p" {
				t.Errorf("Name = %q", n.Name)
			}
		})
	}
	if !(Identity{}).Empty() || (Identity{Title: "x"}).Empty() {
		t.Error("Identity.Empty() wrong")
	}
}

type fakeFiles struct {
	requested []string
}

func (f *fakeFiles) ReadBytes(_ context.Context, p string) ([]byte, error) {
	f.requested = append(f.requested, p)
	if p == "Papers/attachments/p.pdf" {
		return []byte("not really a pdf"), nil
	}
	return nil, errors.New("missing")
}

func TestNote_PDF(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"---\npdf: \"attachments/p.pdf\"\n---\n", "attachments/p.pdf"},
		{"---\npdf: [[attachments/p.pdf]]\n---\n", "attachments/p.pdf"},
		{"---\npdf: \"[[p.pdf|Paper]]\"\n---\n", "p.pdf"},
		{"# none\n", ""},
	}
	for _, tt := range tests {
		if got := ParseNote("Papers/p.md", tt.content).PDF(); got != tt.want {
			t.Errorf("PDF() for %q = %q, want %q", tt.content, got, tt.want)
		}
	}
}

func TestNote_IdentityFromUnreadablePDF(t *testing.T) {
	files := &fakeFiles{}
	n := ParseNote("Papers/p.md", "---\npdf: \"attachments/p.pdf\"\n---\n# T\n")
	got := n.Identity(context.Background(), files)
	if got.DOI != "" || got.Title != "T" {
		t.Errorf("Identity() = %+v", got)
	}
	want := []string{"attachments/p.pdf", "Papers/attachments/p.pdf"}
	if strings.Join(files.requested, ",") != strings.Join(want, ",") {
		t.Errorf("requested %v, want %v", files.requested, want)
	}
}

func TestNote_Processed(t *testing.T) {
	if !ParseNote("a.md", "---\nprocessed: true\n---\n").Processed() {
		t.Error("Processed() = false")
	}
	if ParseNote("a.md", "---\nprocessed: false\n---\n").Processed() {
		t.Error("Processed() = true")
	}
}

func TestAnnotate(t *testing.T) {
	ctx := context.Background()
	const p = "Papers/p.md"
	store := setupStore(t, map[string]string{
		p: "---\ndoi: \"10.1/x\"\nyear: 1999\nmine: keep\n---\n# My Paper\n\nIntro text.\n\n## Notes\nstuff\n",
	})
	a := NewAnnotator(store)

	out, err := a.Annotate(ctx, p, testWork(), "hub_Smith2021_StudyDeepNetworks")
	if err != nil {
		t.Fatalf("Annotate() error = %v", err)
	}
	if out != Annotated {
		t.Errorf("Annotate() = %v, want annotated", out)
	}

	content, _ := store.Read(ctx, p)
	doc := document.Parse(content)
	front := doc.Front

	if got := front.GetString("year"); got != "2021" {
		t.Errorf("year = %q", got)
	}
	if strings.Count(content, "\nyear:") != 1 {
		t.Errorf("year duplicated:\n%s", content)
	}
	if got := front.GetString("mine"); got != "keep" {
		t.Errorf("foreign key changed: %q", got)
	}
	if got := front.GetString("venue"); got != "Nature" {
		t.Errorf("venue = %q", got)
	}
	if !front.GetBool("processed") {
		t.Error("processed not set")
	}
	if !strings.Contains(content, `concepts: [ "A", "B", "C", "D", "E" ]`) {
		t.Errorf("concepts not top 5:\n%s", content)
	}

	var titles []string
	for _, s := range doc.Sections {
		titles = append(titles, s.Title())
	}
	want := "My Paper|OpenAlex Metadata|Notes|Citation Hub"
	if strings.Join(titles, "|") != want {
		t.Errorf("sections = %q, want %s", titles, want)
	}

	meta := strings.Join(doc.Find(SectionMetadata).Body(), "\n")
	for _, s := range []string{"- Year: 2021", "- A (92%)", "The cat sat", "- References: 2", "- Cited by: 12"} {
		if !strings.Contains(meta, s) {
			t.Errorf("metadata section missing %q:\n%s", s, meta)
		}
	}
	if !doc.Find(SectionHub).Contains("[[hub_Smith2021_StudyDeepNetworks]]") {
		t.Error("hub back-link missing")
	}
	if !strings.Contains(content, "# My Paper\n\nIntro text.\n\n## OpenAlex Metadata\n") {
		t.Errorf("metadata not inserted after the title section:\n%s", content)
	}
}

func TestAnnotate_Idempotent(t *testing.T) {
	ctx := context.Background()
	const p = "p.md"
	store := setupStore(t, map[string]string{p: "# T\n"})
	a := NewAnnotator(store)

	if _, err := a.Annotate(ctx, p, testWork(), "hub_X"); err != nil {
		t.Fatal(err)
	}
	first, _ := store.Read(ctx, p)

	out, err := a.Annotate(ctx, p, testWork(), "hub_Y")
	if err != nil {
		t.Fatal(err)
	}
	if out != AlreadyProcessed {
		t.Errorf("second Annotate() = %v, want already processed", out)
	}
	second, _ := store.Read(ctx, p)
	if first != second {
		t.Errorf("second run mutated the note:\n%s\n---\n%s", first, second)
	}
}

func TestAnnotate_ReplacesMetadata(t *testing.T) {
	ctx := context.Background()
	const p = "p.md"
	store := setupStore(t, map[string]string{
		p: "---\nprocessed: false\n---\n# T\n\n## OpenAlex Metadata\nold stuff\n\n## Citation Hub\n- [[hub_Old]]\n",
	})
	if _, err := NewAnnotator(store).Annotate(ctx, p, testWork(), "hub_New"); err != nil {
		t.Fatal(err)
	}
	content, _ := store.Read(ctx, p)
	if strings.Contains(content, "old stuff") {
		t.Error("previous metadata rendering survived")
	}
	if strings.Count(content, "## OpenAlex Metadata") != 1 || strings.Count(content, "## Citation Hub") != 1 {
		t.Errorf("duplicated sections:\n%s", content)
	}
	if strings.Contains(content, "hub_New") {
		t.Error("existing Citation Hub section was replaced")
	}
}

func TestRenderMetadata_Minimal(t *testing.T) {
	lines := RenderMetadata(&openalex.Work{ID: "https://openalex.org/W1"})
	got := strings.Join(lines, "\n")
	if strings.Contains(got, "Research Concepts") || strings.Contains(got, "Abstract") {
		t.Errorf("optional blocks rendered:\n%s", got)
	}
	if !strings.Contains(got, "- References: 0") {
		t.Errorf("citation counts missing:\n%s", got)
	}
}

func TestOutcome_String(t *testing.T) {
	if Annotated.String() != "annotated" || AlreadyProcessed.String() != "already processed" {
		t.Error("Outcome.String() mismatch")
	}
}
