package openalex

import (
	"regexp"
	"sort"
	"strings"
)

// idPrefix is the URL prefix OpenAlex puts on every entity id.
const idPrefix = "https://openalex.org/"

// doiPattern matches a DOI token: 10.XXXX/... where XXXX is 4-9 digits.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// NormalizeDOI normalizes a DOI to a consistent format for comparison.
// It removes resolver prefixes (https://doi.org/, doi:) and lowercases.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	lower := strings.ToLower(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "doi.org/", "doi:"} {
		if strings.HasPrefix(lower, prefix) {
			doi = doi[len(prefix):]
			break
		}
	}
	return strings.ToLower(strings.TrimSpace(doi))
}

// FindDOI returns the first DOI-shaped token in text, or "".
func FindDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if IsValidDOI(match) {
			return match
		}
	}
	return ""
}

// IsValidDOI performs basic validation on a DOI.
func IsValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}

// ShortID strips the https://openalex.org/ prefix from an id ("W2741809807").
func ShortID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, idPrefix)
	return strings.TrimPrefix(id, "http://openalex.org/")
}

// ReconstructAbstract rebuilds abstract text from an inverted index by
// flattening (word, position) pairs, ordering by position and joining
// with single spaces.
func ReconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}

	type token struct {
		pos  int
		word string
	}
	var tokens []token
	for word, positions := range index {
		for _, p := range positions {
			tokens = append(tokens, token{pos: p, word: word})
		}
	}
	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].pos != tokens[j].pos {
			return tokens[i].pos < tokens[j].pos
		}
		return tokens[i].word < tokens[j].word
	})

	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.word
	}
	return strings.Join(words, " ")
}
