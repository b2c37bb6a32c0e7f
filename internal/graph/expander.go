// Package graph expands a resolved work one level outward: the works it
// references and the works that cite it.
package graph

import (
	"context"
	"time"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/citekey"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/hub"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/logctx"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/vault"
)

// Default fan-out limits.
const (
	DefaultMaxReferences = 50
	DefaultMaxCitedBy    = 50
)

// Limits caps how many edges are expanded per paper.
type Limits struct {
	MaxReferences int
	MaxCitedBy    int
}

// Expander walks references and citing works and records them on a hub.
type Expander struct {
	source       openalex.Source
	merger       *hub.Merger
	limits       Limits
	phantomLinks bool
	delay        time.Duration
}

// Option configures an Expander.
type Option func(*Expander)

// WithLimits sets the fan-out limits.
func WithLimits(l Limits) Option {
	return func(e *Expander) {
		e.limits = l
	}
}

// WithPhantomLinks creates hubs for every expanded work, not only for
// works already in the vault.
func WithPhantomLinks(enabled bool) Option {
	return func(e *Expander) {
		e.phantomLinks = enabled
	}
}

// WithRequestDelay sets the pause after each external call.
func WithRequestDelay(d time.Duration) Option {
	return func(e *Expander) {
		e.delay = d
	}
}

// NewExpander returns an Expander with default limits and phantom links on.
func NewExpander(source openalex.Source, merger *hub.Merger, opts ...Option) *Expander {
	e := &Expander{
		source:       source,
		merger:       merger,
		limits:       Limits{MaxReferences: DefaultMaxReferences, MaxCitedBy: DefaultMaxCitedBy},
		phantomLinks: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result lists the hub names recorded by an expansion.
type Result struct {
	Cited   []string `json:"cited"`
	CitedBy []string `json:"cited_by"`
	Skipped int      `json:"skipped"`
}

// Expand resolves work's references and citing works, then merges them
// into the Cited and Cited By sections of the hub at hubPath. Failures on
// single edges drop that edge; only a failed merge or a cancelled context
// is returned as an error.
func (e *Expander) Expand(ctx context.Context, work *openalex.Work, sourcePaper, hubPath string) (Result, error) {
	log := logctx.From(ctx).With("hub", hubPath)
	var res Result

	refs := work.ReferencedWorks
	if e.limits.MaxReferences >= 0 && len(refs) > e.limits.MaxReferences {
		refs = refs[:e.limits.MaxReferences]
	}
	for _, id := range refs {
		ref, err := e.source.Work(ctx, id)
		if perr := pace(ctx, e.delay); perr != nil {
			return res, perr
		}
		if err != nil {
			log.Warn("skipping reference", "id", id, "error", err)
			res.Skipped++
			continue
		}
		if name, ok := e.link(ctx, ref, sourcePaper); ok {
			res.Cited = append(res.Cited, name)
		} else {
			res.Skipped++
		}
	}

	if work.CitedByCount > 0 && e.limits.MaxCitedBy > 0 {
		citing, err := e.source.CitingWorks(ctx, work.ID, e.limits.MaxCitedBy)
		if err != nil {
			log.Warn("citing works query failed", "id", work.ID, "error", err)
		}
		for i := range citing {
			if name, ok := e.link(ctx, &citing[i], sourcePaper); ok {
				res.CitedBy = append(res.CitedBy, name)
			} else {
				res.Skipped++
			}
			if perr := pace(ctx, e.delay); perr != nil {
				return res, perr
			}
		}
	}

	if err := e.merger.MergeCitationSections(ctx, hubPath, res.Cited, res.CitedBy); err != nil {
		return res, err
	}
	log.Info("expanded citation graph", "cited", len(res.Cited), "cited_by", len(res.CitedBy), "skipped", res.Skipped)
	return res, nil
}

// link returns the hub name to link for w, creating the hub under the
// phantom link policy.
func (e *Expander) link(ctx context.Context, w *openalex.Work, sourcePaper string) (string, bool) {
	if !e.phantomLinks {
		if p, ok := e.merger.Registry().LookupID(w.ID); ok {
			return vault.NameOf(p), true
		}
		return citekey.Generate(w), true
	}
	p, err := e.merger.EnsureHub(ctx, w, sourcePaper)
	if err != nil {
		logctx.From(ctx).Warn("creating linked hub", "id", w.ID, "error", err)
		return "", false
	}
	return vault.NameOf(p), true
}

// pace waits d, returning early with the context's error if it is done.
func pace(ctx context.Context, d time.Duration) error {
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
