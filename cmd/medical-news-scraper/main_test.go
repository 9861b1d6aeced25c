package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"scrape", "listing", "run"})

	flag := root.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "configs/config.yaml", flag.DefValue)
}

func TestListingRequiresSource(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"listing"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source")
}

func TestMissingConfigFails(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"scrape", "--config", "does-not-exist.yaml", "--env-file", "does-not-exist.env"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestPrintJSONLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSONLines(&buf, []map[string]string{{"title": "а"}, {"title": "б"}}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, `{"title":"а"}`, lines[0])
}
