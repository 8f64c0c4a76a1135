package main

import (
	"strings"

	"pagereport/internal/core/report"

	"github.com/spf13/cobra"
)

// NewCategoriesCmd creates the categories command.
func NewCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List report categories and their CSV columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, cat := range report.Categories() {
				cmd.Printf("%-14s %s\n", cat, strings.Join(cat.Fields(), ","))
			}
			return nil
		},
	}
}
