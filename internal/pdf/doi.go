// Package pdf extracts identifiers from PDF files attached to paper notes.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
)

// MaxPages is how many leading pages are searched for a DOI.
const MaxPages = 3

// ExtractDOI returns the first valid DOI on the first pages of a PDF.
// A PDF without a DOI yields "" and no error.
func ExtractDOI(data []byte) (string, error) {
	text, err := ExtractText(data, MaxPages)
	if err != nil {
		return "", err
	}
	return findDOI(text), nil
}

// ExtractText returns the plain text of the first maxPages pages
// (all pages when maxPages <= 0). Pages that fail to decode are skipped.
func ExtractText(data []byte, maxPages int) (text string, err error) {
	if len(data) == 0 {
		return "", fmt.Errorf("reading PDF: empty file")
	}
	// The reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("reading PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("reading PDF: %w", err)
	}

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(pageText)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// findDOI returns the first DOI in text, tolerating DOIs split by the line
// breaks PDF text extraction introduces.
func findDOI(text string) string {
	if doi := openalex.FindDOI(text); doi != "" {
		return doi
	}
	return openalex.FindDOI(strings.ReplaceAll(text, "\n", ""))
}
