package vault

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func setupStore(t *testing.T) *FSStore {
	t.Helper()
	s, err := NewMemStore()
	if err != nil {
		t.Fatalf("NewMemStore() error = %v", err)
	}
	return s
}

func TestCreateReadModify(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	if err := s.Create(ctx, "Paper Hubs/hub_A.md", "one"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !s.Exists(ctx, "Paper Hubs/hub_A.md") {
		t.Fatal("Exists() = false after Create")
	}
	if !s.Exists(ctx, "Paper Hubs") {
		t.Error("parent folder was not created")
	}

	got, err := s.Read(ctx, "Paper Hubs/hub_A.md")
	if err != nil || got != "one" {
		t.Fatalf("Read() = %q, %v", got, err)
	}

	if err := s.Modify(ctx, "Paper Hubs/hub_A.md", "two"); err != nil {
		t.Fatalf("Modify() error = %v", err)
	}
	got, _ = s.Read(ctx, "Paper Hubs/hub_A.md")
	if got != "two" {
		t.Errorf("Read() after Modify = %q, want two", got)
	}
}

func TestCreate_Exists(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	if err := s.Create(ctx, "a.md", "x"); err != nil {
		t.Fatal(err)
	}
	if err := s.Create(ctx, "a.md", "y"); !errors.Is(err, ErrExists) {
		t.Errorf("second Create() error = %v, want ErrExists", err)
	}
	if got, _ := s.Read(ctx, "a.md"); got != "x" {
		t.Errorf("content overwritten: %q", got)
	}
}

func TestModify_Missing(t *testing.T) {
	s := setupStore(t)
	if err := s.Modify(context.Background(), "missing.md", "x"); err == nil {
		t.Error("Modify() on missing document succeeded")
	}
}

func TestCreateFolder_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	for i := 0; i < 2; i++ {
		if err := s.CreateFolder(ctx, "Paper Hubs"); err != nil {
			t.Fatalf("CreateFolder() #%d error = %v", i+1, err)
		}
	}
	if err := s.CreateFolder(ctx, "."); err != nil {
		t.Errorf("CreateFolder(.) error = %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	for _, p := range []string{
		"Papers/b.md",
		"Papers/a.md",
		"Papers/notes.txt",
		"Paper Hubs/hub_X.md",
		".obsidian/workspace.md",
		"root.md",
	} {
		if err := s.Create(ctx, p, ""); err != nil {
			t.Fatalf("Create(%s) error = %v", p, err)
		}
	}

	docs, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var paths []string
	for _, d := range docs {
		paths = append(paths, d.Path)
	}
	want := []string{"Paper Hubs/hub_X.md", "Papers/a.md", "Papers/b.md", "root.md"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("List() = %v, want %v", paths, want)
	}

	docs, err = s.List(ctx, "Paper Hubs")
	if err != nil {
		t.Fatalf("List(Paper Hubs) error = %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "hub_X" {
		t.Errorf("List(Paper Hubs) = %+v", docs)
	}

	docs, err = s.List(ctx, "Nowhere")
	if err != nil || len(docs) != 0 {
		t.Errorf("List(missing folder) = %v, %v", docs, err)
	}
}

func TestNewOSStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "paper.md"), []byte("# P\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewOSStore(dir)
	if err != nil {
		t.Fatalf("NewOSStore() error = %v", err)
	}
	if got, err := s.Read(ctx, "paper.md"); err != nil || got != "# P\n" {
		t.Fatalf("Read() = %q, %v", got, err)
	}
	if err := s.Create(ctx, "Paper Hubs/hub_Y.md", "hub"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "Paper Hubs", "hub_Y.md"))
	if err != nil || string(data) != "hub" {
		t.Errorf("file on disk = %q, %v", data, err)
	}
}

func TestNewOSStore_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewOSStore(f); err == nil {
		t.Error("NewOSStore(file) succeeded")
	}
}

func TestNameOf(t *testing.T) {
	if got := NameOf("Paper Hubs/hub_A.md"); got != "hub_A" {
		t.Errorf("NameOf() = %q", got)
	}
	if got := Clean("/Papers//a.md"); got != "Papers/a.md" {
		t.Errorf("Clean() = %q", got)
	}
}
