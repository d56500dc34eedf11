package mcp

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackrose-blackhat/cybershield/backend/internal/analyzer"
	"github.com/blackrose-blackhat/cybershield/backend/internal/cedar"
	"github.com/blackrose-blackhat/cybershield/backend/internal/corpus"
	"github.com/blackrose-blackhat/cybershield/backend/internal/crime"
	"github.com/blackrose-blackhat/cybershield/backend/internal/report"
)

func newTestServer(t *testing.T, corpusFn CorpusFunc) *Server {
	t.Helper()
	engine := analyzer.NewEngine(nil, analyzer.Options{})
	matcher, err := crime.NewDefaultMatcher()
	require.NoError(t, err)
	policy, err := cedar.NewEngine("", zerolog.Nop())
	require.NoError(t, err)

	return NewServer(Tools{
		Analyzer: engine,
		Crime:    matcher,
		Reports:  report.NewBuilder(engine, matcher, policy, nil, zerolog.Nop()),
		Corpus:   corpusFn,
	}, "test", zerolog.Nop())
}

func call(t *testing.T, s *Server, method string, params any) *Response {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	return s.Handle(context.Background(), Request{JSONRPC: "2.0", ID: 1, Method: method, Params: raw})
}

// toolText decodes the text payload of a successful tool call
func toolText(t *testing.T, resp *Response) string {
	t.Helper()
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	content := result["content"].([]any)
	require.Len(t, content, 1)
	return content[0].(map[string]any)["text"].(string)
}

func TestServe_Initialize(t *testing.T) {
	s := newTestServer(t, nil)
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize"}
{"jsonrpc":"2.0","method":"notifications/initialized"}

not json
{"jsonrpc":"2.0","id":2,"method":"bogus"}
`)
	var out bytes.Buffer
	require.NoError(t, s.Serve(context.Background(), in, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)

	var init Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &init))
	assert.Nil(t, init.Error)
	assert.Contains(t, lines[0], `"protocolVersion":"2024-11-05"`)
	assert.Contains(t, lines[0], `"name":"cybershield"`)

	var parseErr Response
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &parseErr))
	require.NotNil(t, parseErr.Error)
	assert.Equal(t, codeParseError, parseErr.Error.Code)

	var notFound Response
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &notFound))
	require.NotNil(t, notFound.Error)
	assert.Equal(t, codeMethodNotFound, notFound.Error.Code)
}

func TestToolsList(t *testing.T) {
	names := func(s *Server) []string {
		resp := call(t, s, "tools/list", nil)
		var out []string
		for _, tool := range resp.Result.(map[string]any)["tools"].([]any) {
			out = append(out, tool.(map[string]any)["name"].(string))
		}
		return out
	}

	assert.Equal(t, []string{"analyze_message", "detect_crime", "check_url", "file_report"}, names(newTestServer(t, nil)))

	withCorpus := newTestServer(t, func(context.Context) (*corpus.Corpus, error) { return corpus.Empty(), nil })
	assert.Contains(t, names(withCorpus), "find_similar")
}

func TestToolCalls(t *testing.T) {
	s := newTestServer(t, func(context.Context) (*corpus.Corpus, error) {
		return corpus.New([]corpus.Row{{MessageText: "send me your password now", CrimeType: "Phishing"}}), nil
	})

	tests := []struct {
		name string
		tool string
		args map[string]any
		want []string
	}{
		{"analyze", "analyze_message", map[string]any{"message": "i will kill you"}, []string{`"category": "high-risk"`, `"kill"`}},
		{"detect", "detect_crime", map[string]any{"message": "i will kill you"}, []string{"Threats and Violence", "Section 506"}},
		{"url", "check_url", map[string]any{"url": "https://github.com"}, []string{"Trusted Domain"}},
		{"similar", "find_similar", map[string]any{"message": "send me your password"}, []string{"Phishing"}},
		{"report", "file_report", map[string]any{"message": "i will kill you", "platform": "discord"}, []string{`"decision": "ESCALATE"`, `"platform": "discord"`, `"name": "mcp-client"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := toolText(t, call(t, s, "tools/call", map[string]any{"name": tt.tool, "arguments": tt.args}))
			for _, w := range tt.want {
				assert.Contains(t, text, w)
			}
		})
	}
}

func TestToolCall_Errors(t *testing.T) {
	s := newTestServer(t, func(context.Context) (*corpus.Corpus, error) {
		return nil, errors.New("corpus unavailable")
	})

	resp := call(t, s, "tools/call", map[string]any{"name": "analyze_message", "arguments": map[string]any{}})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)

	resp = call(t, s, "tools/call", map[string]any{"name": "nope", "arguments": map[string]any{"message": "x"}})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)

	resp = call(t, s, "tools/call", map[string]any{"name": "find_similar", "arguments": map[string]any{"message": "x"}})
	require.Nil(t, resp.Error)
	assert.Equal(t, true, resp.Result.(map[string]any)["isError"])

	resp = s.Handle(context.Background(), Request{ID: 3, Method: "tools/call", Params: json.RawMessage(`[]`)})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestResources(t *testing.T) {
	s := newTestServer(t, nil)

	list := call(t, s, "resources/list", nil)
	assert.Contains(t, list.Result.(map[string]any)["resources"].([]any)[0].(map[string]any)["uri"], rulesURI)

	read := call(t, s, "resources/read", map[string]string{"uri": rulesURI})
	require.Nil(t, read.Error)
	contents := read.Result.(map[string]any)["contents"].([]any)
	text := contents[0].(map[string]any)["text"].(string)

	var rs crime.RuleSet
	require.NoError(t, json.Unmarshal([]byte(text), &rs))
	assert.Len(t, rs.Rules, 7)

	unknown := call(t, s, "resources/read", map[string]string{"uri": "cybershield://other"})
	require.NotNil(t, unknown.Error)
}
