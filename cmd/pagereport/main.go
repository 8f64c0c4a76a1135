// Package main provides the entry point for the pagereport CLI.
//
// pagereport drives the extraction service: it scrapes a URL into a
// categorized report and exports categories to CSV files.
//
// Usage:
//
//	pagereport scrape <url>
//	pagereport scrape --category headings --category links <url>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
