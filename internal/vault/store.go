// Package vault is the document store: a folder tree of markdown notes
// addressed by vault-relative, slash-separated paths.
package vault

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	osfs "github.com/hack-pad/hackpadfs/os"
)

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

// ErrExists is returned by Create when the target path is already taken.
var ErrExists = errors.New("document already exists")

// Document identifies a note in the vault.
type Document struct {
	Path string // vault-relative, e.g. "Paper Hubs/hub_Smith2021_X.md"
	Name string // base name without extension
}

// Store is the document store the engine reads and writes.
type Store interface {
	List(ctx context.Context, folder string) ([]Document, error)
	Read(ctx context.Context, p string) (string, error)
	Modify(ctx context.Context, p, content string) error
	Create(ctx context.Context, p, content string) error
	CreateFolder(ctx context.Context, p string) error
	Exists(ctx context.Context, p string) bool
}

// FSStore implements Store on top of a hackpadfs file system.
type FSStore struct {
	fs hackpadfs.FS
}

// NewOSStore opens the vault rooted at the directory root.
func NewOSStore(root string) (*FSStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault path: %w", err)
	}
	info, err := hackpadfs.Stat(osfs.NewFS(), toFSPath(abs))
	if err != nil {
		return nil, fmt.Errorf("opening vault %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault %s is not a directory", root)
	}
	sub, err := osfs.NewFS().Sub(toFSPath(abs))
	if err != nil {
		return nil, fmt.Errorf("opening vault %s: %w", root, err)
	}
	return &FSStore{fs: sub}, nil
}

// NewMemStore returns an empty in-memory vault.
func NewMemStore() (*FSStore, error) {
	fs, err := mem.NewFS()
	if err != nil {
		return nil, fmt.Errorf("creating memory vault: %w", err)
	}
	return &FSStore{fs: fs}, nil
}

// toFSPath converts an absolute OS path to the rootless form hackpadfs expects.
func toFSPath(abs string) string {
	p := filepath.ToSlash(abs)
	if vol := filepath.VolumeName(abs); vol != "" {
		p = strings.TrimPrefix(p, filepath.ToSlash(vol))
	}
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "."
	}
	return p
}

// Clean normalizes a vault-relative path.
func Clean(p string) string {
	p = path.Clean(strings.TrimPrefix(filepath.ToSlash(p), "/"))
	if p == "/" || p == "" {
		return "."
	}
	return p
}

// NameOf returns the base name of p without its .md extension.
func NameOf(p string) string {
	return strings.TrimSuffix(path.Base(p), ".md")
}

// List returns every markdown document under folder ("" or "." for the
// whole vault), sorted by path. Dot directories such as .obsidian are skipped.
func (s *FSStore) List(ctx context.Context, folder string) ([]Document, error) {
	root := Clean(folder)
	var docs []Document
	if err := s.walk(ctx, root, &docs); err != nil {
		if errors.Is(err, hackpadfs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func (s *FSStore) walk(ctx context.Context, dir string, docs *[]Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := hackpadfs.ReadDir(s.fs, dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		p := path.Join(dir, name)
		if e.IsDir() {
			if err := s.walk(ctx, p, docs); err != nil {
				return err
			}
			continue
		}
		if strings.HasSuffix(name, ".md") {
			*docs = append(*docs, Document{Path: p, Name: NameOf(p)})
		}
	}
	return nil
}

// Read returns the content of the document at p.
func (s *FSStore) Read(_ context.Context, p string) (string, error) {
	data, err := hackpadfs.ReadFile(s.fs, Clean(p))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", p, err)
	}
	return string(data), nil
}

// ReadBytes returns the raw content of any file in the vault.
func (s *FSStore) ReadBytes(_ context.Context, p string) ([]byte, error) {
	data, err := hackpadfs.ReadFile(s.fs, Clean(p))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return data, nil
}

// Modify replaces the content of an existing document.
func (s *FSStore) Modify(_ context.Context, p, content string) error {
	p = Clean(p)
	if _, err := hackpadfs.Stat(s.fs, p); err != nil {
		return fmt.Errorf("modifying %s: %w", p, err)
	}
	if err := hackpadfs.WriteFullFile(s.fs, p, []byte(content), filePerm); err != nil {
		return fmt.Errorf("modifying %s: %w", p, err)
	}
	return nil
}

// Create writes a new document, creating parent folders as needed. It fails
// with ErrExists when p is already present.
func (s *FSStore) Create(ctx context.Context, p, content string) error {
	p = Clean(p)
	if s.Exists(ctx, p) {
		return fmt.Errorf("creating %s: %w", p, ErrExists)
	}
	if dir := path.Dir(p); dir != "." {
		if err := s.CreateFolder(ctx, dir); err != nil {
			return err
		}
	}
	if err := hackpadfs.WriteFullFile(s.fs, p, []byte(content), filePerm); err != nil {
		return fmt.Errorf("creating %s: %w", p, err)
	}
	return nil
}

// CreateFolder creates p and any missing parents. An existing folder is
// not an error.
func (s *FSStore) CreateFolder(_ context.Context, p string) error {
	p = Clean(p)
	if p == "." {
		return nil
	}
	if err := hackpadfs.MkdirAll(s.fs, p, dirPerm); err != nil && !errors.Is(err, hackpadfs.ErrExist) {
		return fmt.Errorf("creating folder %s: %w", p, err)
	}
	return nil
}

// Exists reports whether a file or folder is present at p.
func (s *FSStore) Exists(_ context.Context, p string) bool {
	_, err := hackpadfs.Stat(s.fs, Clean(p))
	return err == nil
}
