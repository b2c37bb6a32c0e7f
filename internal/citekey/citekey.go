// Package citekey derives the display name of a citation hub from a work.
package citekey

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
)

const (
	// Prefix marks hub documents in the hub folder.
	Prefix = "hub_"

	// MaxLen is the maximum length of a key in characters.
	MaxLen = 100

	titleWords = 3
)

// stopWords is the closed list of words skipped when picking title words.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"nor": true, "for": true, "yet": true, "so": true, "of": true, "in": true,
	"on": true, "at": true, "to": true, "by": true, "with": true, "from": true,
	"into": true, "onto": true, "upon": true, "about": true, "over": true,
	"under": true, "after": true, "before": true, "between": true, "through": true,
	"during": true, "without": true, "within": true, "across": true, "against": true,
	"among": true, "toward": true, "towards": true, "via": true, "per": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"being": true, "has": true, "have": true, "had": true, "does": true, "did": true,
	"can": true, "could": true, "will": true, "would": true, "should": true,
	"may": true, "might": true, "this": true, "that": true, "these": true,
	"those": true, "its": true, "their": true, "our": true, "your": true,
	"not": true, "all": true, "any": true, "some": true, "more": true, "most": true,
	"how": true, "what": true, "when": true, "where": true, "which": true,
	"who": true, "why": true, "than": true, "then": true, "new": true, "using": true,
}

// illegalChars are stripped because they cannot appear in file names.
const illegalChars = `<>:"/\|?*`

// Generate returns hub_<Surname><Year>_<TitleWords> for a work. It never
// fails: missing parts become Unknown, NoYear and UnknownTitle.
func Generate(work *openalex.Work) string {
	surname := "Unknown"
	year := "NoYear"
	title := ""
	if work != nil {
		if len(work.Authorships) > 0 {
			if parts := strings.Fields(work.Authorships[0].Author.DisplayName); len(parts) > 0 {
				surname = parts[len(parts)-1]
			}
		}
		if work.PublicationYear != 0 {
			year = strconv.Itoa(work.PublicationYear)
		}
		title = work.Name()
	}

	key := fmt.Sprintf("%s%s%s_%s", Prefix, surname, year, TitleWords(title))
	return Sanitize(key)
}

// TitleWords picks the first salient title words, title-cased and joined.
func TitleWords(title string) string {
	var cleaned strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			cleaned.WriteRune(r)
		}
	}

	var picked []string
	for _, word := range strings.Fields(cleaned.String()) {
		if utf8.RuneCountInString(word) <= 2 || stopWords[strings.ToLower(word)] {
			continue
		}
		picked = append(picked, capitalize(word))
		if len(picked) == titleWords {
			break
		}
	}

	if len(picked) == 0 {
		return "UnknownTitle"
	}
	return strings.Join(picked, "")
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(word string) string {
	first, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(first)) + strings.ToLower(word[size:])
}

// Sanitize makes s safe as a file name: illegal characters are removed,
// whitespace runs collapse to one space, and the result is trimmed and
// truncated to MaxLen characters.
func Sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalChars, r) {
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")

	if utf8.RuneCountInString(s) > MaxLen {
		s = strings.TrimSpace(string([]rune(s)[:MaxLen]))
	}
	return s
}

// IsHubName reports whether a file name follows the hub naming convention.
func IsHubName(name string) bool {
	return strings.HasPrefix(name, Prefix) && strings.HasSuffix(name, ".md")
}
