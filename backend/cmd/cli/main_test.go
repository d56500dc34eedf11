package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackrose-blackhat/cybershield/backend/internal/config"
	"github.com/blackrose-blackhat/cybershield/backend/internal/phishing"
)

func setupApp(t *testing.T) {
	t.Helper()
	application = &app{cfg: config.Defaults(), logger: zerolog.Nop()}
	t.Cleanup(func() {
		application.Close()
		application = nil
	})
}

func TestShellLoop(t *testing.T) {
	setupApp(t)
	ctx := context.Background()
	builder, err := application.Reports(ctx)
	require.NoError(t, err)

	in := strings.NewReader("help\nurl https://www.google.com/search\n\ni will kill you\nsimilar anything\nstats\nexit\nnever reached\n")
	var out bytes.Buffer

	require.NoError(t, shellLoop(ctx, in, &out, builder))

	text := out.String()
	assert.Contains(t, text, "Commands:")
	assert.Contains(t, text, "TRUSTED")
	assert.Contains(t, text, "ESCALATE")
	assert.Contains(t, text, "Threats and Violence")
	assert.Contains(t, text, "no reference corpus configured")
	assert.Contains(t, text, "cache: 1/1024 entries")
	assert.Contains(t, text, "Goodbye!")
	assert.NotContains(t, text, "never reached")
}

func TestShellLoop_EndOfInput(t *testing.T) {
	setupApp(t)
	builder, err := application.Reports(context.Background())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, shellLoop(context.Background(), strings.NewReader("url\n"), &out, builder))
	assert.Contains(t, out.String(), "usage: url <link>")
}

func TestPrintJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printJSON(&out, phishing.Analyze("https://github.com")))

	var got phishing.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.True(t, got.SafeDomain)
	assert.Equal(t, []string{phishing.ReasonTrusted}, got.Reasons)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "héll...", truncate("héllo world", 4))
}
