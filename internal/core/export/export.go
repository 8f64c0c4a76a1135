package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pagereport/internal/core/report"
)

// Category writes one category to a CSV file at path. The header row is
// always the category's declared fields; an empty category produces a
// header-only file.
func Category(rep *report.Report, cat report.Category, path string) error {
	fields := cat.Fields()
	if len(fields) == 0 {
		return fmt.Errorf("unknown category %q", cat)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(fields); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range rep.Records(cat) {
		row := make([]string, len(fields))
		for i, field := range fields {
			row[i] = rec[field]
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// All writes one timestamped file per non-empty category into dir and
// returns the written paths. A report with no records writes nothing.
func All(rep *report.Report, dir string) ([]string, error) {
	stamp := time.Now().Format("20060102_150405")
	var written []string
	for _, cat := range rep.NonEmpty() {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", cat, stamp))
		if err := Category(rep, cat, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
