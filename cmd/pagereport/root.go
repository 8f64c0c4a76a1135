package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pagereport.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagereport",
		Short: "Scrape a web page into a categorized CSV-exportable report",
		Long: `pagereport talks to a pagereport extraction service: it submits a URL,
receives a report partitioned into fixed categories (headings, links,
images, tables, and more), and exports categories to CSV files.

The service endpoint comes from --endpoint, the PAGEREPORT_ENDPOINT
environment variable, or a YAML config file (~/.pagereport.yaml).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewCategoriesCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
