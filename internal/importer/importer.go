package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/readstack-hq/pocket2notion/internal/archive"
	"github.com/readstack-hq/pocket2notion/internal/config"
	"github.com/readstack-hq/pocket2notion/internal/domain"
	"github.com/readstack-hq/pocket2notion/internal/ledger"
	"github.com/readstack-hq/pocket2notion/internal/logger"
	"github.com/readstack-hq/pocket2notion/internal/pocket"
	"github.com/readstack-hq/pocket2notion/pkg/notifiers"
	"github.com/readstack-hq/pocket2notion/pkg/notion"
	"github.com/readstack-hq/pocket2notion/pkg/profiles"
)

// NotionAPI is the remote surface the importer drives: one schema retrieval
// per run and one page creation per article.
type NotionAPI interface {
	RetrieveDatabase(ctx context.Context, databaseID string) (*notion.Database, error)
	CreatePage(ctx context.Context, databaseID string, properties notion.Properties) (*notion.Page, error)
}

// Enricher post-processes parsed articles before publishing.
type Enricher interface {
	Enrich(ctx context.Context, articles []domain.Article) []domain.Article
}

// Importer drives one import run: probe the database schema, parse the export
// file, and create one page per article. Counters are fields on the run-scoped
// instance, not process state; build a fresh Importer per run.
type Importer struct {
	api        NotionAPI
	databaseID string
	profile    profiles.Profile
	log        logger.Logger

	ledger   ledger.Ledger
	notify   *notifiers.Fanout
	enricher Enricher

	dryRun       bool
	delay        time.Duration
	delaySet     bool
	delaySetting string

	available map[string]struct{}
	imported  int
	errored   int
}

// Option customizes an Importer.
type Option func(*Importer)

// WithLogger injects the logger used for progress and error reporting.
func WithLogger(log logger.Logger) Option {
	return func(imp *Importer) {
		if log != nil {
			imp.log = log
		}
	}
}

// WithProfile selects the export-format profile (columns, source label, encodings).
func WithProfile(p profiles.Profile) Option {
	return func(imp *Importer) { imp.profile = p }
}

// WithLedger records created pages in the given ledger.
func WithLedger(l ledger.Ledger) Option {
	return func(imp *Importer) {
		if l != nil {
			imp.ledger = l
		}
	}
}

// WithNotifiers fans lifecycle events out to the given sinks.
func WithNotifiers(f *notifiers.Fanout) Option {
	return func(imp *Importer) { imp.notify = f }
}

// WithEnricher installs a post-parse article enrichment step.
func WithEnricher(e Enricher) Option {
	return func(imp *Importer) { imp.enricher = e }
}

// WithDryRun builds payloads and counts without creating remote pages.
func WithDryRun(dryRun bool) Option {
	return func(imp *Importer) { imp.dryRun = dryRun }
}

// WithDelay sets an explicit inter-call delay, overriding the configured value.
func WithDelay(d time.Duration) Option {
	return func(imp *Importer) {
		if d >= 0 {
			imp.delay = d
			imp.delaySet = true
		}
	}
}

// WithDelaySetting supplies the raw configured delay text (seconds). Invalid
// values fall back to the default with a warning when the run starts.
func WithDelaySetting(raw string) Option {
	return func(imp *Importer) { imp.delaySetting = raw }
}

// New builds a run-scoped importer for the target database.
func New(api NotionAPI, databaseID string, opts ...Option) (*Importer, error) {
	if api == nil {
		return nil, fmt.Errorf("notion api must not be nil")
	}
	if strings.TrimSpace(databaseID) == "" {
		return nil, fmt.Errorf("database id is empty")
	}

	imp := &Importer{
		api:        api,
		databaseID: databaseID,
		profile:    profiles.Default(),
		log:        logger.NopLogger{},
		ledger:     nil,
	}
	for _, opt := range opts {
		opt(imp)
	}
	if imp.ledger == nil {
		imp.ledger, _ = ledger.New("none", "")
	}
	return imp, nil
}

// Counts returns the per-run success and error counters.
func (imp *Importer) Counts() (imported, errored int) {
	return imp.imported, imp.errored
}

// Run executes the end-to-end import for the given export file.
// Schema and file problems abort the run with a failure result; per-article
// publish errors only increment counters. Pages created before a later
// failure remain: the run is not transactional.
func (imp *Importer) Run(ctx context.Context, filePath string) domain.ImportResult {
	imp.imported = 0
	imp.errored = 0

	delay := imp.resolveDelay()

	if !imp.CheckDatabaseProperties(ctx) {
		return domain.Failure("database property check failed")
	}

	articles, failure := imp.loadArticles(filePath)
	if failure != nil {
		return *failure
	}

	if len(articles) == 0 {
		imp.log.WarnObj("no articles found in export file", "file", filePath)
		return domain.Failure("no articles found in export file")
	}

	if imp.enricher != nil {
		articles = imp.enricher.Enrich(ctx, articles)
	}

	imp.log.InfoObj("import starting", "import_meta", map[string]any{
		"file":     filePath,
		"articles": len(articles),
		"delay":    delay.String(),
		"dry_run":  imp.dryRun,
	})
	imp.sendEvent(ctx, notifiers.NewRunStarted(filePath, len(articles)))

	for i, article := range articles {
		imp.log.InfoObj("processing article", "progress", map[string]any{
			"index": i + 1,
			"total": len(articles),
		})

		imp.PublishArticle(ctx, article)

		// Rate-limit mitigation: pause after every article except the last.
		if i < len(articles)-1 {
			if !sleepCtx(ctx, delay) {
				imp.log.WarnObj("import interrupted", "reason", ctx.Err())
				break
			}
		}
	}

	result := imp.summarize(len(articles))
	imp.log.InfoObj("import completed", "import_result", result)
	imp.sendEvent(ctx, notifiers.NewRunCompleted(filePath, result))
	return result
}

// loadArticles dispatches on the export file suffix and returns the combined
// article set, or a failure result when the file cannot be processed.
func (imp *Importer) loadArticles(filePath string) ([]domain.Article, *domain.ImportResult) {
	var (
		articles []domain.Article
		err      error
	)

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".zip":
		var csvFiles []string
		csvFiles, err = archive.ExtractCSV(filePath)
		if err == nil {
			for _, csvFile := range csvFiles {
				var parsed []domain.Article
				parsed, err = pocket.ParseFile(csvFile, imp.profile)
				if err != nil {
					break
				}
				articles = append(articles, parsed...)
			}
		}
	case ".csv":
		articles, err = pocket.ParseFile(filePath, imp.profile)
	default:
		failure := domain.Failure(fmt.Sprintf("unsupported file format %q (expected .csv or .zip)", filepath.Ext(filePath)))
		return nil, &failure
	}

	if err != nil {
		imp.log.ErrorObj("export file processing failed", "file_error", map[string]any{
			"file":  filePath,
			"error": err.Error(),
		})
		failure := domain.Failure(fmt.Sprintf("failed to process export file: %v", err))
		return nil, &failure
	}

	return articles, nil
}

// summarize assembles the aggregate result for a completed publish loop.
func (imp *Importer) summarize(total int) domain.ImportResult {
	rate := 0.0
	if total > 0 {
		rate = float64(imp.imported) / float64(total) * 100
	}
	return domain.ImportResult{
		Success:       true,
		TotalArticles: total,
		Imported:      imp.imported,
		Errors:        imp.errored,
		SuccessRate:   fmt.Sprintf("%.1f%%", rate),
		DryRun:        imp.dryRun,
	}
}

// resolveDelay picks the inter-call delay: explicit option, then the
// configured setting, then the default. Invalid settings warn and fall back.
func (imp *Importer) resolveDelay() time.Duration {
	if imp.delaySet {
		return imp.delay
	}

	raw := strings.TrimSpace(imp.delaySetting)
	if raw == "" {
		return config.DefaultAPIDelay
	}

	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds < 0 {
		imp.log.WarnObj("invalid api_delay value, using default", "api_delay", raw)
		return config.DefaultAPIDelay
	}
	return time.Duration(seconds * float64(time.Second))
}

// sleepCtx pauses for d, returning false if the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (imp *Importer) sendEvent(ctx context.Context, evt notifiers.Event) {
	if imp.notify == nil || imp.notify.Size() == 0 {
		return
	}
	if _, err := imp.notify.Send(ctx, evt); err != nil {
		imp.log.WarnObj("notifier delivery failed", "notifier_error", err.Error())
	}
}
