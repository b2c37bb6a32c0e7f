// Package engine drives citation graph synchronization for paper notes:
// it resolves each note to an OpenAlex work, maintains its hub, annotates
// the note and expands the graph one level.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/paper"
)

// ErrNoIdentifier is returned when a note has neither a DOI nor a title.
var ErrNoIdentifier = errors.New("no DOI or title to look up")

// Resolver turns a note's identity into an OpenAlex work.
type Resolver struct {
	source openalex.Source
}

// NewResolver returns a Resolver backed by source.
func NewResolver(source openalex.Source) *Resolver {
	return &Resolver{source: source}
}

// Resolve looks the work up by DOI when one is known, otherwise by title.
// It makes exactly one request and never retries.
func (r *Resolver) Resolve(ctx context.Context, id paper.Identity) (*openalex.Work, error) {
	switch {
	case id.DOI != "":
		w, err := r.source.WorkByDOI(ctx, id.DOI)
		if err != nil {
			var apiErr *openalex.APIError
			if errors.As(err, &apiErr) {
				return nil, fmt.Errorf("doi %s: %w (%v)", id.DOI, openalex.ErrNotFound, apiErr)
			}
			return nil, fmt.Errorf("doi %s: %w", id.DOI, err)
		}
		return w, nil
	case id.Title != "":
		w, err := r.source.SearchTitle(ctx, id.Title)
		if err != nil {
			return nil, fmt.Errorf("title %q: %w", id.Title, err)
		}
		return w, nil
	default:
		return nil, ErrNoIdentifier
	}
}
