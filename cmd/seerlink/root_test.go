package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seerlink/seerlink/internal/media"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
jellyseerr:
  url: http://seerr.local:5055
  api_key: secret-key-1234
logging:
  level: error
`), 0o600))

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", configPath}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestTermsCommand(t *testing.T) {
	out, err := runCmd(t, "terms", "Se7en")
	require.NoError(t, err)

	terms := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "Se7en", terms[0])
	assert.Contains(t, terms, "Seven")
}

func TestConfigShowRedactsKey(t *testing.T) {
	out, err := runCmd(t, "config", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "url: http://seerr.local:5055")
	assert.Contains(t, out, "****1234")
	assert.NotContains(t, out, "secret-key")
}

func TestExtractCommand(t *testing.T) {
	page := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(page, []byte(`<html><head>
		<title>Heat (1995)</title>
		<meta property="og:title" content="Heat (1995)">
	</head></html>`), 0o600))

	out, err := runCmd(t, "extract", page, "--url", "https://example.com/film/heat")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Heat"`)
	assert.Contains(t, out, `"year": 1995`)
}

func TestQueryFromFlags(t *testing.T) {
	flags := &globalFlags{mediaType: "series", year: 2008}
	q := flags.query([]string{"Breaking", "Bad"})

	assert.Equal(t, "Breaking Bad", q.Title)
	assert.Equal(t, media.TypeTV, q.MediaType)
	assert.Equal(t, 2008, q.Year)
	assert.Equal(t, "cli", q.Source)
}

func TestStatusRequiresTitle(t *testing.T) {
	_, err := runCmd(t, "status")
	assert.Error(t, err)
}
