package engine

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/citekey"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/graph"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/hub"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/logctx"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/paper"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/vault"
)

// Status values reported for a processed document.
const (
	StatusProcessed = "processed"
	StatusSkipped   = "skipped"
	StatusBusy      = "busy"
	StatusFailed    = "failed"
)

// Options configures an Engine.
type Options struct {
	PaperFolder  string // "" scans the whole vault
	HubFolder    string
	Limits       graph.Limits
	PhantomLinks bool
	RequestDelay time.Duration
	Notifier     Notifier
}

// Report describes the outcome of processing one document.
type Report struct {
	Path       string `json:"path"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	OpenAlexID string `json:"openalex_id,omitempty"`
	Hub        string `json:"hub,omitempty"`
	Cited      int    `json:"cited"`
	CitedBy    int    `json:"cited_by"`
	Skipped    int    `json:"skipped_edges,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Engine processes paper notes one at a time.
type Engine struct {
	store       vault.Store
	resolver    *Resolver
	registry    *hub.Registry
	merger      *hub.Merger
	annotator   *paper.Annotator
	expander    *graph.Expander
	notifier    Notifier
	paperFolder string
	delay       time.Duration

	mu       sync.Mutex
	inFlight map[string]bool
}

// New wires an Engine over a document store and a bibliographic source.
func New(store vault.Store, source openalex.Source, opts Options) *Engine {
	registry := hub.NewRegistry(store, opts.HubFolder)
	merger := hub.NewMerger(store, registry)
	notifier := opts.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Engine{
		store:     store,
		resolver:  NewResolver(source),
		registry:  registry,
		merger:    merger,
		annotator: paper.NewAnnotator(store),
		expander: graph.NewExpander(source, merger,
			graph.WithLimits(opts.Limits),
			graph.WithPhantomLinks(opts.PhantomLinks),
			graph.WithRequestDelay(opts.RequestDelay),
		),
		notifier:    notifier,
		paperFolder: opts.PaperFolder,
		delay:       opts.RequestDelay,
		inFlight:    make(map[string]bool),
	}
}

// Registry returns the hub registry.
func (e *Engine) Registry() *hub.Registry {
	return e.registry
}

// Resolver returns the identity resolver.
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

// TryBegin marks p as in flight. It returns false if p already is.
func (e *Engine) TryBegin(p string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight[p] {
		return false
	}
	e.inFlight[p] = true
	return true
}

func (e *Engine) done(p string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, p)
}

// InFlight reports whether p is being processed.
func (e *Engine) InFlight(p string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight[p]
}

// IsHub reports whether p is a hub document rather than a paper note.
func (e *Engine) IsHub(p string) bool {
	p = vault.Clean(p)
	folder := vault.Clean(e.registry.Folder())
	return citekey.IsHubName(path.Base(p)) || (folder != "." && strings.HasPrefix(p, folder+"/"))
}

// Process synchronizes one paper note: resolve, ensure its hub, annotate
// the note, expand the graph. Notes already processed, hub documents and
// notes already in flight are skipped without error. Cancelling ctx does
// not interrupt a run that has begun.
func (e *Engine) Process(ctx context.Context, p string) (Report, error) {
	p = vault.Clean(p)
	rep := Report{Path: p}
	if e.IsHub(p) {
		rep.Status, rep.Reason = StatusSkipped, "hub document"
		return rep, nil
	}
	if !e.TryBegin(p) {
		rep.Status, rep.Reason = StatusBusy, "already in progress"
		return rep, nil
	}
	defer e.done(p)

	// A started run is never cancelled: the note is marked processed before
	// its edges are merged.
	log := logctx.From(ctx).With("paper", p)
	ctx = logctx.With(context.WithoutCancel(ctx), log)

	rep, err := e.process(ctx, rep)
	if err != nil {
		rep.Status, rep.Error = StatusFailed, err.Error()
		log.Error("processing failed", "error", err)
		e.notifier.Notify(p, err)
		return rep, err
	}
	return rep, nil
}

func (e *Engine) process(ctx context.Context, rep Report) (Report, error) {
	content, err := e.store.Read(ctx, rep.Path)
	if err != nil {
		return rep, err
	}
	note := paper.ParseNote(rep.Path, content)
	if note.Processed() {
		rep.Status, rep.Reason = StatusSkipped, paper.AlreadyProcessed.String()
		return rep, nil
	}

	var files paper.FileReader
	if fr, ok := e.store.(paper.FileReader); ok {
		files = fr
	}
	work, err := e.resolver.Resolve(ctx, note.Identity(ctx, files))
	if err != nil {
		return rep, err
	}
	rep.OpenAlexID = work.ID

	hubPath, err := e.merger.EnsureHub(ctx, work, note.Name)
	if err != nil {
		return rep, err
	}
	rep.Hub = hubPath

	outcome, err := e.annotator.Annotate(ctx, rep.Path, work, vault.NameOf(hubPath))
	if err != nil {
		return rep, err
	}
	if outcome == paper.AlreadyProcessed {
		rep.Status, rep.Reason = StatusSkipped, outcome.String()
		return rep, nil
	}

	res, err := e.expander.Expand(ctx, work, note.Name, hubPath)
	rep.Cited, rep.CitedBy, rep.Skipped = len(res.Cited), len(res.CitedBy), res.Skipped
	if err != nil {
		return rep, fmt.Errorf("expanding citations: %w", err)
	}
	rep.Status = StatusProcessed
	return rep, nil
}

// Pending lists paper notes that are not yet processed.
func (e *Engine) Pending(ctx context.Context) ([]vault.Document, error) {
	docs, err := e.store.List(ctx, e.paperFolder)
	if err != nil {
		return nil, err
	}
	var pending []vault.Document
	for _, d := range docs {
		if e.IsHub(d.Path) {
			continue
		}
		content, err := e.store.Read(ctx, d.Path)
		if err != nil {
			logctx.From(ctx).Warn("skipping unreadable note", "path", d.Path, "error", err)
			continue
		}
		if !paper.ParseNote(d.Path, content).Processed() {
			pending = append(pending, d)
		}
	}
	return pending, nil
}

// ProcessAll processes every pending note in turn, pausing the request
// delay between notes. A failed note does not stop the batch; cancelling
// ctx stops it between notes.
func (e *Engine) ProcessAll(ctx context.Context) ([]Report, error) {
	pending, err := e.Pending(ctx)
	if err != nil {
		return nil, err
	}
	log := logctx.From(ctx)
	log.Info("processing pending notes", "count", len(pending))

	reports := make([]Report, 0, len(pending))
	for i, d := range pending {
		if i > 0 {
			if err := sleep(ctx, e.delay); err != nil {
				return reports, err
			}
		} else if err := ctx.Err(); err != nil {
			return reports, err
		}
		rep, _ := e.Process(ctx, d.Path)
		reports = append(reports, rep)
	}
	return reports, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
