package logger

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", false)

	l.Info().Msg("hidden")
	l.Warn().Str("key", "value").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"key":"value"`)
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "chatty", false)

	l.Debug().Msg("debug")
	l.Info().Msg("info")

	assert.NotContains(t, buf.String(), `"message":"debug"`)
	assert.Contains(t, buf.String(), `"message":"info"`)
}

func TestComponentTagsEntries(t *testing.T) {
	var buf bytes.Buffer
	prev := *Get()
	Set(New(&buf, "debug", false))
	defer Set(prev)

	l := Component("query")
	l.Debug().Msg("hit")

	assert.Contains(t, buf.String(), `"component":"query"`)
}

func TestOpenOutputCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "portal.log")

	w, err := openOutput(path)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.FileExists(t, path)
}
