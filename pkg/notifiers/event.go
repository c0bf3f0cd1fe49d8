package notifiers

import (
	"time"

	"github.com/readstack-hq/pocket2notion/internal/domain"
)

// Event kinds emitted over an import run's lifecycle.
const (
	KindRunStarted      = "run_started"
	KindArticleImported = "article_imported"
	KindArticleFailed   = "article_failed"
	KindRunCompleted    = "run_completed"
)

// Event represents the payload delivered to notifier sinks.
type Event struct {
	Kind       string       `json:"kind"`
	File       string       `json:"file,omitempty"`
	Article    *ArticleInfo `json:"article,omitempty"`
	Totals     *RunTotals   `json:"totals,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// ArticleInfo identifies the article an event refers to.
type ArticleInfo struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// RunTotals carries the aggregate counters of a completed run.
type RunTotals struct {
	Total       int    `json:"total"`
	Imported    int    `json:"imported"`
	Errors      int    `json:"errors"`
	SuccessRate string `json:"success_rate"`
}

// NewRunStarted builds the event announcing an import run.
func NewRunStarted(file string, total int) Event {
	return Event{
		Kind:       KindRunStarted,
		File:       file,
		Totals:     &RunTotals{Total: total},
		OccurredAt: time.Now().UTC(),
	}
}

// NewArticleImported builds the event for one successfully created page.
func NewArticleImported(article domain.Article) Event {
	return Event{
		Kind:       KindArticleImported,
		Article:    &ArticleInfo{Title: article.Title, URL: article.URL},
		OccurredAt: time.Now().UTC(),
	}
}

// NewArticleFailed builds the event for one failed page creation.
func NewArticleFailed(article domain.Article, err error) Event {
	info := &ArticleInfo{Title: article.Title, URL: article.URL}
	if err != nil {
		info.Error = err.Error()
	}
	return Event{
		Kind:       KindArticleFailed,
		Article:    info,
		OccurredAt: time.Now().UTC(),
	}
}

// NewRunCompleted builds the event summarizing a finished run.
func NewRunCompleted(file string, result domain.ImportResult) Event {
	return Event{
		Kind: KindRunCompleted,
		File: file,
		Totals: &RunTotals{
			Total:       result.TotalArticles,
			Imported:    result.Imported,
			Errors:      result.Errors,
			SuccessRate: result.SuccessRate,
		},
		OccurredAt: time.Now().UTC(),
	}
}
