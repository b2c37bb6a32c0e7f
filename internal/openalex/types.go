// Package openalex provides a client for the OpenAlex works API.
package openalex

import "context"

// Work represents a work from the OpenAlex API. Only the fields the hub
// engine consumes are decoded.
type Work struct {
	ID                    string           `json:"id"`
	DisplayName           string           `json:"display_name,omitempty"`
	Title                 string           `json:"title,omitempty"`
	PublicationYear       int              `json:"publication_year,omitempty"`
	HostVenue             *Venue           `json:"host_venue,omitempty"`
	PrimaryLocation       *Location        `json:"primary_location,omitempty"`
	Authorships           []Authorship     `json:"authorships,omitempty"`
	IDs                   IDs              `json:"ids,omitempty"`
	DOI                   string           `json:"doi,omitempty"`
	CitedByCount          int              `json:"cited_by_count"`
	Concepts              []Concept        `json:"concepts,omitempty"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index,omitempty"`
	ReferencedWorks       []string         `json:"referenced_works,omitempty"`
}

// Venue is the legacy host_venue object.
type Venue struct {
	DisplayName string `json:"display_name"`
}

// Location is the primary_location object that replaced host_venue.
type Location struct {
	Source *Venue `json:"source,omitempty"`
}

// Authorship links a work to one of its authors.
type Authorship struct {
	Author Author `json:"author"`
}

// Author represents an OpenAlex author.
type Author struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"display_name"`
}

// IDs contains the external identifiers of a work.
type IDs struct {
	OpenAlex string `json:"openalex,omitempty"`
	DOI      string `json:"doi,omitempty"`
	MAG      string `json:"mag,omitempty"`
	PMID     string `json:"pmid,omitempty"`
}

// Concept is a tagged research concept with a relevance score in [0, 1].
type Concept struct {
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

// WorksResponse is the envelope of list endpoints (search, filter).
type WorksResponse struct {
	Meta struct {
		Count   int `json:"count"`
		PerPage int `json:"per_page"`
	} `json:"meta"`
	Results []Work `json:"results"`
}

// Source is the bibliographic source the sync engine depends on.
type Source interface {
	// WorkByDOI fetches the work registered under a DOI.
	WorkByDOI(ctx context.Context, doi string) (*Work, error)
	// SearchTitle returns the single best match for a title.
	SearchTitle(ctx context.Context, title string) (*Work, error)
	// Work fetches a work by its OpenAlex id.
	Work(ctx context.Context, id string) (*Work, error)
	// CitingWorks returns up to limit works that cite id.
	CitingWorks(ctx context.Context, id string, limit int) ([]Work, error)
}

// Name returns the title of the work, preferring display_name.
func (w *Work) Name() string {
	if w.DisplayName != "" {
		return w.DisplayName
	}
	return w.Title
}

// VenueName returns the journal or venue, or "" if unknown.
func (w *Work) VenueName() string {
	if w.HostVenue != nil && w.HostVenue.DisplayName != "" {
		return w.HostVenue.DisplayName
	}
	if w.PrimaryLocation != nil && w.PrimaryLocation.Source != nil {
		return w.PrimaryLocation.Source.DisplayName
	}
	return ""
}

// BareDOI returns the DOI without its resolver prefix.
func (w *Work) BareDOI() string {
	if w.IDs.DOI != "" {
		return NormalizeDOI(w.IDs.DOI)
	}
	return NormalizeDOI(w.DOI)
}

// AuthorNames returns author display names in authorship order.
func (w *Work) AuthorNames() []string {
	names := make([]string, 0, len(w.Authorships))
	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" {
			names = append(names, a.Author.DisplayName)
		}
	}
	return names
}

// TopConcepts returns the first n concepts in the order OpenAlex provides
// them, which is already sorted by score.
func (w *Work) TopConcepts(n int) []Concept {
	if len(w.Concepts) <= n {
		return w.Concepts
	}
	return w.Concepts[:n]
}

// Abstract reconstructs the abstract text, or "" if the work has none.
func (w *Work) Abstract() string {
	return ReconstructAbstract(w.AbstractInvertedIndex)
}
