package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/citekey"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/clipboard"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/engine"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/paper"
)

var (
	lookupDOI   string
	lookupTitle string
	lookupCopy  bool
)

func init() {
	lookupCmd.Flags().StringVar(&lookupDOI, "doi", "", "DOI to resolve")
	lookupCmd.Flags().StringVar(&lookupTitle, "title", "", "Title to search for")
	lookupCmd.Flags().BoolVar(&lookupCopy, "copy", false, "Copy the hub wikilink to the clipboard")
	rootCmd.AddCommand(lookupCmd)
}

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Resolve a DOI or title to an OpenAlex work",
	Long: `Resolve a DOI or title to an OpenAlex work and print it with the hub
name it would get. Nothing in the vault is read or written.

Examples:
  oara lookup --doi 10.1038/nature12373
  oara lookup --title "Attention is all you need" --human
  oara lookup --doi 10.1038/nature12373 --copy`,
	Args: cobra.NoArgs,
	RunE: runLookup,
}

// LookupResponse is the response for the lookup command.
type LookupResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Year         int      `json:"year,omitempty"`
	Venue        string   `json:"venue,omitempty"`
	DOI          string   `json:"doi,omitempty"`
	Authors      []string `json:"authors,omitempty"`
	CitedByCount int      `json:"cited_by_count"`
	References   int      `json:"references"`
	Hub          string   `json:"hub"`
	Copied       bool     `json:"copied,omitempty"`
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	ctx := cmd.Context()
	source, closeSource := newSource(ctx, cfg)
	defer closeSource()

	id := paper.Identity{
		DOI:   openalex.NormalizeDOI(lookupDOI),
		Title: strings.TrimSpace(lookupTitle),
	}
	work, err := engine.NewResolver(source).Resolve(ctx, id)
	if err != nil {
		closeSource()
		code := exitCodeFor(err)
		if code == ExitDataError {
			code = ExitError
		}
		exitWithError(code, "%v", err)
	}

	resp := LookupResponse{
		ID:           work.ID,
		Title:        work.Name(),
		Year:         work.PublicationYear,
		Venue:        work.VenueName(),
		DOI:          work.BareDOI(),
		Authors:      work.AuthorNames(),
		CitedByCount: work.CitedByCount,
		References:   len(work.ReferencedWorks),
		Hub:          citekey.Generate(work),
	}
	if lookupCopy {
		if err := clipboard.Copy(ctx, "[["+resp.Hub+"]]"); err != nil {
			outputError(ExitError, "copying to clipboard: %v", err)
		} else {
			resp.Copied = true
		}
	}
	if !humanOutput {
		return outputJSON(resp)
	}

	outputHuman("%s\n", truncateString(resp.Title, TitleMaxLen))
	outputHuman("  id:         %s\n", resp.ID)
	if resp.Year > 0 {
		outputHuman("  year:       %d\n", resp.Year)
	}
	if resp.Venue != "" {
		outputHuman("  venue:      %s\n", resp.Venue)
	}
	if resp.DOI != "" {
		outputHuman("  doi:        %s\n", resp.DOI)
	}
	if len(resp.Authors) > 0 {
		outputHuman("  authors:    %s\n", strings.Join(resp.Authors, ", "))
	}
	outputHuman("  references: %d\n", resp.References)
	outputHuman("  cited by:   %d\n", resp.CitedByCount)
	outputHuman("  hub:        %s\n", resp.Hub)
	if resp.Copied {
		outputHuman("  (hub link copied to clipboard)\n")
	}
	return nil
}
