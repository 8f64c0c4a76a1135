package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pagereport/internal/core/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryWritesHeaderAndRows(t *testing.T) {
	rep := report.New()
	rep.Append(report.CategoryHeadings, report.Record{"level": "h1", "text": "Example"})

	path := filepath.Join(t.TempDir(), "headings.csv")
	require.NoError(t, Category(rep, report.CategoryHeadings, path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "level,text\nh1,Example\n", string(b))
}

func TestCategoryEmptyWritesHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.csv")
	require.NoError(t, Category(report.New(), report.CategoryLinks, path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "text,url,type,title,target,rel\n", string(b))
}

func TestCategoryMissingFieldsLeftBlank(t *testing.T) {
	rep := report.New()
	rep.Append(report.CategoryMetaTags, report.Record{"name": "robots"})

	path := filepath.Join(t.TempDir(), "meta.csv")
	require.NoError(t, Category(rep, report.CategoryMetaTags, path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,content\nrobots,\n", string(b))
}

func TestCategoryUnknown(t *testing.T) {
	err := Category(report.New(), report.Category("widgets"), filepath.Join(t.TempDir(), "w.csv"))
	assert.Error(t, err)
}

func TestAllWritesOnlyNonEmptyCategories(t *testing.T) {
	rep := report.New()
	rep.Append(report.CategoryHeadings, report.Record{"level": "h1", "text": "Example"})
	rep.Append(report.CategoryContactInfo, report.Record{"type": "email", "value": "a@b.co"})

	dir := t.TempDir()
	written, err := All(rep, dir)
	require.NoError(t, err)
	require.Len(t, written, 2)

	assert.True(t, strings.HasPrefix(filepath.Base(written[0]), "headings_"))
	assert.True(t, strings.HasPrefix(filepath.Base(written[1]), "contact_info_"))
	for _, path := range written {
		assert.True(t, strings.HasSuffix(path, ".csv"))
		_, err := os.Stat(path)
		assert.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAllEmptyReportWritesNothing(t *testing.T) {
	dir := t.TempDir()
	written, err := All(report.New(), dir)
	require.NoError(t, err)
	assert.Empty(t, written)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
