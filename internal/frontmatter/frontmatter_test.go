package frontmatter

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantPresent bool
		wantKeys    []string
		wantBody    string
	}{
		{
			name:        "block and body",
			content:     "---\ndoi: \"10.1/x\"\ntitle: \"T\"\n---\n# Heading\n",
			wantPresent: true,
			wantKeys:    []string{"doi", "title"},
			wantBody:    "# Heading\n",
		},
		{
			name:        "no block",
			content:     "# Heading\n",
			wantPresent: false,
			wantBody:    "# Heading\n",
		},
		{
			name:        "unterminated block",
			content:     "---\ndoi: x\n# Heading\n",
			wantPresent: false,
			wantBody:    "---\ndoi: x\n# Heading\n",
		},
		{
			name:        "empty block at end of file",
			content:     "---\n---",
			wantPresent: true,
			wantBody:    "",
		},
		{
			name:        "list continuation lines",
			content:     "---\ntags:\n  - a\n  - b\nyear: 2020\n---\nbody",
			wantPresent: true,
			wantKeys:    []string{"tags", "year"},
			wantBody:    "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, body := Split(tt.content)
			if b.Present() != tt.wantPresent {
				t.Errorf("Present() = %v, want %v", b.Present(), tt.wantPresent)
			}
			if !reflect.DeepEqual(b.Keys(), tt.wantKeys) {
				t.Errorf("Keys() = %v, want %v", b.Keys(), tt.wantKeys)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	content := "---\ndoi: \"10.1/x\"\ncustom: keep   me\ntags:\n  - a\n---\n# Title\n\nText.\n"
	b, body := Split(content)
	if got := b.Render() + body; got != content {
		t.Errorf("round trip = %q, want %q", got, content)
	}
}

func TestGet(t *testing.T) {
	b, _ := Split("---\ndoi: 10.1234/abc\nyear: 2021\nprocessed: true\nconcepts: [ \"Biology\", \"Genetics\" ]\ntags:\n  - x\n  - y\nquoted: \"A: B\"\n---\n")

	if got := b.GetString("doi"); got != "10.1234/abc" {
		t.Errorf("GetString(doi) = %q", got)
	}
	if got := b.GetString("year"); got != "2021" {
		t.Errorf("GetString(year) = %q", got)
	}
	if !b.GetBool("processed") {
		t.Error("GetBool(processed) = false, want true")
	}
	if got := b.GetString("quoted"); got != "A: B" {
		t.Errorf("GetString(quoted) = %q", got)
	}

	v, ok, err := b.Get("concepts")
	if err != nil || !ok {
		t.Fatalf("Get(concepts) = %v, %v, %v", v, ok, err)
	}
	if !reflect.DeepEqual(v, []any{"Biology", "Genetics"}) {
		t.Errorf("Get(concepts) = %#v", v)
	}

	v, _, err = b.Get("tags")
	if err != nil {
		t.Fatalf("Get(tags) error = %v", err)
	}
	if !reflect.DeepEqual(v, []any{"x", "y"}) {
		t.Errorf("Get(tags) = %#v", v)
	}

	if _, ok, _ := b.Get("missing"); ok {
		t.Error("Get(missing) ok = true")
	}
	if b.GetBool("missing") {
		t.Error("GetBool(missing) = true")
	}
}

func TestSet(t *testing.T) {
	b, body := Split("---\ntitle: \"Old\"\ntags:\n  - a\n  - b\nauthor: \"Me\"\n---\nbody\n")

	b.Set("title", "New")
	b.Set("tags", []string{"c"})
	b.Set("year", 2021)
	b.Set("processed", true)

	want := "---\ntitle: \"New\"\ntags: [ \"c\" ]\nauthor: \"Me\"\nyear: 2021\nprocessed: true\n---\nbody\n"
	if got := b.Render() + body; got != want {
		t.Errorf("after Set:\n%s\nwant:\n%s", got, want)
	}

	// Setting again must not duplicate keys.
	b.Set("year", 2022)
	keys := b.Keys()
	count := 0
	for _, k := range keys {
		if k == "year" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("year appears %d times in %v", count, keys)
	}
	if got := b.GetString("year"); got != "2022" {
		t.Errorf("GetString(year) = %q, want 2022", got)
	}
}

func TestSet_CreatesBlock(t *testing.T) {
	b, body := Split("# Just a note\n")
	if b.Render() != "" {
		t.Fatalf("Render() of absent block = %q, want empty", b.Render())
	}
	b.Set("processed", false)
	want := "---\nprocessed: false\n---\n# Just a note\n"
	if got := b.Render() + body; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"plain", `"plain"`},
		{`with "quotes"`, `"with \"quotes\""`},
		{42, "42"},
		{int64(7), "7"},
		{0.5, "0.5"},
		{true, "true"},
		{[]string{"a", "b"}, `[ "a", "b" ]`},
		{[]string{}, "[]"},
		{nil, `""`},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
