package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdHasSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "scrape")
	assert.Contains(t, names, "categories")
}

func TestCategoriesCmdListsEveryCategory(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"categories"})

	require.NoError(t, cmd.Execute())

	got := out.String()
	for _, want := range []string{"headings", "links", "seo_summary", "level,text"} {
		assert.True(t, strings.Contains(got, want), "output should mention %s", want)
	}
}

func TestScrapeCmdUnknownCategory(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"scrape", "--endpoint", "http://127.0.0.1:8090", "--category", "widgets", "https://example.com"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown category "widgets"`)
}

func TestScrapeCmdRequiresEndpoint(t *testing.T) {
	t.Setenv("PAGEREPORT_ENDPOINT", "")
	t.Setenv("HOME", t.TempDir())

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"scrape", "https://example.com"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no extraction service endpoint configured")
}
