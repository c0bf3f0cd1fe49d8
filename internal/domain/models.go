package domain

import "time"

// Domain contains core models shared across the import pipeline.

// Article is the normalized representation of one exported bookmark.
// Every article handed to the page publisher has a non-empty Title and URL.
type Article struct {
	Title     string
	URL       string
	Tags      []string
	AddedDate *time.Time
	TimeAdded string
	Status    string
}

// ImportResult aggregates the outcome of a single import run.
// It is assembled once at the end of the run and not mutated afterwards.
type ImportResult struct {
	Success       bool
	TotalArticles int
	Imported      int
	Errors        int
	SuccessRate   string
	DryRun        bool
	Err           string
}

// Failure builds a failed result carrying a human-readable reason.
func Failure(reason string) ImportResult {
	return ImportResult{Success: false, Err: reason}
}
