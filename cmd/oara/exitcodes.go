package main

import (
	"errors"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/engine"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
)

// Exit codes returned by every command.
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (missing vault, invalid values)
	ExitDataError    = 3 // Data error (unreadable note, malformed hub)
	ExitNoIdentifier = 4 // Note has neither a DOI nor a title
	ExitNotFound     = 5 // OpenAlex has no matching work
	ExitTransport    = 6 // OpenAlex could not be reached or answered badly
)

// exitCodeFor maps an engine error to an exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, engine.ErrNoIdentifier):
		return ExitNoIdentifier
	case openalex.IsNotFound(err):
		return ExitNotFound
	case openalex.IsTransport(err):
		return ExitTransport
	default:
		return ExitDataError
	}
}
