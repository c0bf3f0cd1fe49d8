package importer

import (
	"context"
	"time"

	"github.com/readstack-hq/pocket2notion/internal/domain"
	"github.com/readstack-hq/pocket2notion/internal/ledger"
	"github.com/readstack-hq/pocket2notion/pkg/notifiers"
	"github.com/readstack-hq/pocket2notion/pkg/notion"
)

// titleLogRunes caps how much of a title appears in log lines.
const titleLogRunes = 50

// PublishArticle creates one page for the article under the target database.
// The outcome lands in the run counters; publish errors are logged and
// swallowed so a single bad article never aborts the run.
func (imp *Importer) PublishArticle(ctx context.Context, article domain.Article) bool {
	properties := imp.buildProperties(article)

	if imp.dryRun {
		imp.imported++
		imp.log.InfoObj("dry run, page not created", "article_title", truncateRunes(article.Title, titleLogRunes))
		return true
	}

	page, err := imp.api.CreatePage(ctx, imp.databaseID, properties)
	if err != nil {
		imp.errored++
		imp.logPublishError(article, err)
		imp.sendEvent(ctx, notifiers.NewArticleFailed(article, err))
		return false
	}

	imp.imported++
	if err := imp.ledger.Record(ledger.Entry{
		URL:        article.URL,
		PageID:     page.ID,
		ImportedAt: time.Now().UTC(),
	}); err != nil {
		imp.log.WarnObj("ledger record failed", "ledger_error", err.Error())
	}

	imp.log.InfoObj("article imported", "article_title", truncateRunes(article.Title, titleLogRunes))
	imp.sendEvent(ctx, notifiers.NewArticleImported(article))
	return true
}

// logPublishError classifies the failure for the log line: remote API error,
// request timeout, or anything else.
func (imp *Importer) logPublishError(article domain.Article, err error) {
	title := truncateRunes(article.Title, titleLogRunes)

	if apiErr, ok := notion.AsAPIError(err); ok {
		imp.log.ErrorObj("notion api error", "publish_error", map[string]any{
			"article_title": title,
			"status":        apiErr.StatusCode,
			"code":          apiErr.Code,
			"error":         apiErr.Message,
		})
		return
	}
	if notion.IsTimeout(err) {
		imp.log.ErrorObj("request timeout", "publish_error", map[string]any{
			"article_title": title,
			"error":         err.Error(),
		})
		return
	}
	imp.log.ErrorObj("unexpected publish failure", "publish_error", map[string]any{
		"article_title": title,
		"error":         err.Error(),
	})
}
