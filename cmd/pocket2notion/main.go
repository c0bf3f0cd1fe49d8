package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/readstack-hq/pocket2notion/internal/app"
	"github.com/readstack-hq/pocket2notion/internal/config"
	"github.com/readstack-hq/pocket2notion/internal/domain"
	"github.com/readstack-hq/pocket2notion/internal/logger"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	flagFile   string
	flagDelay  float64
	flagDryRun bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "pocket2notion",
		Short:         "Import Pocket bookmark exports into a Notion database",
		Long:          "Reads a Pocket export (CSV or ZIP bundle), normalizes each bookmark, and creates one page per article in the target Notion database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Run the import against the configured Notion database",
		RunE:  runImport,
	}
	importCmd.Flags().StringVar(&flagFile, "file", "", "Path to the export file (.csv or .zip); overrides POCKET_FILE")
	importCmd.Flags().Float64Var(&flagDelay, "delay", -1, "Seconds to pause between page creations; overrides API_DELAY")
	importCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Parse and build payloads without creating pages")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the Notion database has the required properties",
		RunE:  runCheck,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(version)
		},
	}

	rootCmd.AddCommand(importCmd, checkCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pocket2notion: %v\n", err)
		os.Exit(1)
	}
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx, a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	defer logger.Close()

	result := a.Run(ctx)
	printSummary(a.FilePath(), result)
	if !result.Success {
		return fmt.Errorf("import failed: %s", result.Err)
	}
	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx, a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	defer logger.Close()

	if !a.CheckSchema(ctx) {
		return fmt.Errorf("database property check failed")
	}
	fmt.Println("database properties OK")
	return nil
}

// setup loads config, initializes logging, and builds the app runtime.
func setup(cmd *cobra.Command) (context.Context, *app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	cobra.OnFinalize(stop)

	opts := app.Options{
		FilePath: flagFile,
		Delay:    -1,
		DryRun:   flagDryRun,
	}
	if cmd.Flags().Changed("delay") && flagDelay >= 0 {
		opts.Delay = time.Duration(flagDelay * float64(time.Second))
	}

	a, err := app.New(ctx, cfg, log, opts)
	if err != nil {
		logger.ErrorObj("failed to initialize importer", "error", err.Error())
		return nil, nil, err
	}
	return ctx, a, nil
}

// printSummary writes the human-readable run report to stdout.
func printSummary(file string, result domain.ImportResult) {
	if !result.Success {
		fmt.Printf("\nImport failed: %s\n", result.Err)
		return
	}

	fmt.Println("\nImport completed")
	if result.DryRun {
		fmt.Println("Mode: dry run (no pages created)")
	}
	fmt.Printf("File: %s\n", file)
	fmt.Printf("Total articles: %d\n", result.TotalArticles)
	fmt.Printf("Imported: %d\n", result.Imported)
	fmt.Printf("Errors: %d\n", result.Errors)
	fmt.Printf("Success rate: %s\n", result.SuccessRate)
}
