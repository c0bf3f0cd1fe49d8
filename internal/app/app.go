package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/readstack-hq/pocket2notion/internal/config"
	"github.com/readstack-hq/pocket2notion/internal/domain"
	"github.com/readstack-hq/pocket2notion/internal/enrich"
	"github.com/readstack-hq/pocket2notion/internal/importer"
	"github.com/readstack-hq/pocket2notion/internal/ledger"
	"github.com/readstack-hq/pocket2notion/internal/logger"
	"github.com/readstack-hq/pocket2notion/pkg/notifiers"
	"github.com/readstack-hq/pocket2notion/pkg/notion"
	"github.com/readstack-hq/pocket2notion/pkg/profiles"
)

// Options carries per-invocation overrides from the command line.
type Options struct {
	// FilePath overrides the configured export file when non-empty.
	FilePath string
	// Delay overrides the configured inter-call delay when non-negative.
	Delay time.Duration
	// DryRun builds payloads without creating remote pages.
	DryRun bool
}

// App wires the Notion client, export profile, ledger, and notifiers into a
// run-scoped importer.
type App struct {
	cfg      *config.Config
	log      logger.Logger
	importer *importer.Importer
	ledger   ledger.Ledger
	filePath string
}

// New builds the importer runtime from config plus command-line overrides.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	profile, err := resolveProfile(cfg)
	if err != nil {
		return nil, err
	}
	log.InfoObj("export profile resolved", "profile_meta", map[string]any{
		"id":        profile.ID,
		"label":     profile.Label,
		"encodings": profile.Encodings,
	})

	led, err := ledger.New(cfg.LedgerType, cfg.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("init ledger: %w", err)
	}
	log.InfoObj("ledger initialized", "ledger_config", map[string]any{
		"type": cfg.LedgerType,
		"path": cfg.LedgerPath,
	})

	fanout, err := buildNotifiers(ctx, cfg, log)
	if err != nil {
		led.Close()
		return nil, err
	}

	client := notion.NewClient(cfg.NotionToken, notion.WithTimeout(cfg.HTTPTimeout))

	importerOpts := []importer.Option{
		importer.WithLogger(log),
		importer.WithProfile(profile),
		importer.WithLedger(led),
		importer.WithNotifiers(fanout),
		importer.WithDelaySetting(cfg.APIDelay),
		importer.WithDryRun(opts.DryRun),
	}
	if opts.Delay >= 0 {
		importerOpts = append(importerOpts, importer.WithDelay(opts.Delay))
	}
	if cfg.EnrichTitles {
		importerOpts = append(importerOpts, importer.WithEnricher(enrich.NewTitleScraper(cfg.HTTPTimeout, log)))
	}

	imp, err := importer.New(client, cfg.NotionDatabaseID, importerOpts...)
	if err != nil {
		led.Close()
		return nil, fmt.Errorf("init importer: %w", err)
	}

	filePath := strings.TrimSpace(opts.FilePath)
	if filePath == "" {
		filePath = cfg.PocketFile
	}

	return &App{
		cfg:      cfg,
		log:      log,
		importer: imp,
		ledger:   led,
		filePath: filePath,
	}, nil
}

// Run executes one import run and returns its aggregate result.
func (a *App) Run(ctx context.Context) domain.ImportResult {
	if a == nil || a.importer == nil {
		return domain.Failure("importer is not initialized")
	}
	return a.importer.Run(ctx, a.filePath)
}

// CheckSchema runs only the database property probe.
func (a *App) CheckSchema(ctx context.Context) bool {
	if a == nil || a.importer == nil {
		return false
	}
	return a.importer.CheckDatabaseProperties(ctx)
}

// FilePath returns the export file the app will import.
func (a *App) FilePath() string {
	if a == nil {
		return ""
	}
	return a.filePath
}

// Close releases the ledger, logging any error encountered.
func (a *App) Close() {
	if a == nil || a.ledger == nil {
		return
	}
	if err := a.ledger.Close(); err != nil {
		a.log.ErrorObj("ledger close failed", "error", err)
	}
}

// resolveProfile loads the profile registry (when configured) and picks the
// selected export profile.
func resolveProfile(cfg *config.Config) (profiles.Profile, error) {
	reg := profiles.DefaultRegistry()
	if strings.TrimSpace(cfg.ProfilesFile) != "" {
		loaded, err := profiles.LoadRegistry(cfg.ProfilesFile)
		if err != nil {
			return profiles.Profile{}, fmt.Errorf("load profiles registry: %w", err)
		}
		reg = loaded
	}

	profile, ok := reg.ByID(cfg.Profile)
	if !ok {
		return profiles.Profile{}, fmt.Errorf("unknown export profile %q", cfg.Profile)
	}
	return profile, nil
}

// buildNotifiers assembles the lifecycle-event fanout; an unset notifiers
// file means no sinks.
func buildNotifiers(ctx context.Context, cfg *config.Config, log logger.Logger) (*notifiers.Fanout, error) {
	if strings.TrimSpace(cfg.NotifiersFile) == "" {
		return notifiers.NewFanout(nil), nil
	}

	reg, err := notifiers.LoadRegistry(cfg.NotifiersFile)
	if err != nil {
		return nil, fmt.Errorf("load notifiers registry: %w", err)
	}

	enabled := reg.Enabled()
	sinks, err := notifiers.BuildAll(ctx, notifiers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, sinkCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   sinkCfg.ID,
			"type": sinkCfg.Type,
		})
	}
	log.InfoObj("notifiers registry loaded", "notifiers_meta", map[string]any{
		"count":     len(summaries),
		"notifiers": summaries,
	})

	return notifiers.NewFanout(sinks), nil
}
