package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"pagereport/internal/config"
	"pagereport/internal/core/orchestrator"
	"pagereport/internal/core/report"

	"github.com/spf13/cobra"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape <url>",
		Short: "Scrape a URL and export its report to CSV",
		Long: `Scrape submits a URL to the extraction service, waits for the
categorized report, and writes CSV files into the output directory.

Without --category every non-empty category is exported to a
timestamped file. With --category (repeatable) only the named
categories are written, one <category>.csv each; an empty category
still produces a file with just the header row.

Examples:
  # Export everything the page yielded
  pagereport scrape https://example.com

  # Only headings and links, into ./out
  pagereport scrape --category headings --category links -o out example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runScrapeCmd,
	}

	cmd.Flags().StringP("endpoint", "e", "", "Extraction service endpoint (e.g. http://127.0.0.1:8090)")
	cmd.Flags().StringP("config", "c", "", "Config file path (default: ~/.pagereport.yaml)")
	cmd.Flags().IntP("timeout", "t", 0, "Request timeout in seconds")
	cmd.Flags().StringP("out", "o", "", "Output directory for CSV files")
	cmd.Flags().StringArrayP("category", "C", nil, "Category to export (repeatable; default: all non-empty)")

	return cmd
}

func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadClientConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	names, _ := cmd.Flags().GetStringArray("category")
	cats := make([]report.Category, 0, len(names))
	for _, name := range names {
		cat, ok := report.Parse(name)
		if !ok {
			return fmt.Errorf("unknown category %q", name)
		}
		cats = append(cats, cat)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch := orchestrator.New(orchestrator.NewClient(cfg.Endpoint, cfg.Timeout))
	defer orch.Close()

	seq, err := orch.Start(ctx, args[0])
	if err != nil {
		return err
	}
	update, err := orch.Wait(ctx, seq)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	printSummary(cmd, update.Report)

	if len(cats) == 0 {
		written, err := orch.ExportAll(cfg.OutputDir)
		if err != nil {
			return err
		}
		for _, path := range written {
			cmd.Printf("wrote %s\n", path)
		}
		if len(written) == 0 {
			cmd.Println("nothing to export: the page yielded no records")
		}
		return nil
	}

	for _, cat := range cats {
		path := filepath.Join(cfg.OutputDir, string(cat)+".csv")
		if err := orch.ExportCategory(cat, path); err != nil {
			return err
		}
		cmd.Printf("wrote %s (%d records)\n", path, update.Report.Len(cat))
	}
	return nil
}

// loadClientConfig resolves flag > environment > file precedence.
func loadClientConfig(cmd *cobra.Command) (config.ClientConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	explicit := cmd.Flags().Changed("config")
	if path == "" {
		path = config.DefaultClientConfigPath()
	}

	cfg, err := config.LoadClient(path, explicit)
	if err != nil {
		return cfg, err
	}

	if cmd.Flags().Changed("endpoint") {
		cfg.Endpoint, _ = cmd.Flags().GetString("endpoint")
	}
	if cmd.Flags().Changed("timeout") {
		seconds, _ := cmd.Flags().GetInt("timeout")
		cfg.TimeoutSeconds = seconds
	}
	if cmd.Flags().Changed("out") {
		cfg.OutputDir, _ = cmd.Flags().GetString("out")
	}
	return config.Finalize(cfg), nil
}

func printSummary(cmd *cobra.Command, rep *report.Report) {
	if rep == nil {
		return
	}
	cmd.Printf("scrape complete: %d records\n", rep.Total())
	for _, cat := range rep.NonEmpty() {
		cmd.Printf("  %-14s %d\n", cat, rep.Len(cat))
	}
}
