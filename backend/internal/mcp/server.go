// Package mcp serves the triage tools over the Model Context Protocol so an
// assistant can analyze messages and file reports.
package mcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/blackrose-blackhat/cybershield/backend/internal/corpus"
	"github.com/blackrose-blackhat/cybershield/backend/internal/crime"
	"github.com/blackrose-blackhat/cybershield/backend/internal/phishing"
	"github.com/blackrose-blackhat/cybershield/backend/internal/report"
	"github.com/blackrose-blackhat/cybershield/backend/internal/similarity"
)

const protocolVersion = "2024-11-05"

// JSON-RPC error codes
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// CorpusFunc returns the loaded reference corpus
type CorpusFunc func(ctx context.Context) (*corpus.Corpus, error)

// Tools are the components the server exposes. Corpus may be nil, in which
// case find_similar is not offered.
type Tools struct {
	Analyzer report.Analyzer
	Crime    *crime.Matcher
	Reports  *report.Builder
	Corpus   CorpusFunc
}

// Server implements the Model Context Protocol (MCP)
type Server struct {
	tools   Tools
	version string
	logger  zerolog.Logger
	mu      sync.Mutex
}

// NewServer creates a new MCP server
func NewServer(tools Tools, version string, logger zerolog.Logger) *Server {
	return &Server{
		tools:   tools,
		version: version,
		logger:  logger.With().Str("component", "mcp").Logger(),
	}
}

// Request represents a JSON-RPC request
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents a JSON-RPC response
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Serve reads one JSON-RPC message per line from in and writes responses
// to out until in is exhausted or ctx is done.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	encoder := json.NewEncoder(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req Request
		var resp *Response
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.logger.Warn().Err(err).Msg("failed to decode MCP request")
			resp = &Response{JSONRPC: "2.0", Error: &RPCError{Code: codeParseError, Message: "Parse error"}}
		} else {
			resp = s.Handle(ctx, req)
		}
		if resp == nil {
			continue
		}

		s.mu.Lock()
		err := encoder.Encode(resp)
		s.mu.Unlock()
		if err != nil {
			return fmt.Errorf("writing MCP response: %w", err)
		}
	}
	return scanner.Err()
}

// Handle answers a single request. Notifications get no response.
func (s *Server) Handle(ctx context.Context, req Request) *Response {
	var result any
	var rpcErr *RPCError

	switch req.Method {
	case "initialize":
		result = map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]any{
				"tools":     map[string]any{},
				"resources": map[string]any{},
			},
			"serverInfo": map[string]string{
				"name":    "cybershield",
				"version": s.version,
			},
		}

	case "tools/list":
		result = map[string]any{"tools": s.toolList()}

	case "tools/call":
		var params struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			rpcErr = &RPCError{Code: codeInvalidParams, Message: "Invalid params"}
		} else {
			result, rpcErr = s.callTool(ctx, params.Name, params.Arguments)
		}

	case "resources/list":
		result = map[string]any{
			"resources": []any{
				map[string]any{
					"uri":         rulesURI,
					"name":        "Crime rule table",
					"description": "Cyber crime categories with keywords, legal references and investigation steps",
					"mimeType":    "application/json",
				},
			},
		}

	case "resources/read":
		var params struct {
			URI string `json:"uri"`
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			rpcErr = &RPCError{Code: codeInvalidParams, Message: "Invalid params"}
		} else if params.URI != rulesURI {
			rpcErr = &RPCError{Code: codeInvalidParams, Message: "Unknown resource"}
		} else {
			result, rpcErr = s.readRules()
		}

	case "notifications/initialized":
		return nil

	default:
		rpcErr = &RPCError{Code: codeMethodNotFound, Message: fmt.Sprintf("Method %s not found", req.Method)}
	}

	if req.ID == nil {
		return nil
	}
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: result, Error: rpcErr}
}

const rulesURI = "cybershield://rules"

func (s *Server) readRules() (any, *RPCError) {
	data, err := json.MarshalIndent(crime.RuleSet{Version: s.tools.Crime.Version(), Rules: s.tools.Crime.Rules()}, "", "  ")
	if err != nil {
		return nil, &RPCError{Code: codeToolFailed, Message: err.Error()}
	}
	return map[string]any{
		"contents": []any{
			map[string]any{
				"uri":      rulesURI,
				"mimeType": "application/json",
				"text":     string(data),
			},
		},
	}, nil
}

func textSchema(field, description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			field: map[string]any{
				"type":        "string",
				"description": description,
			},
		},
		"required": []string{field},
	}
}

func (s *Server) toolList() []any {
	tools := []any{
		map[string]any{
			"name":        "analyze_message",
			"description": "Scores a message for toxicity, threat keywords, sentiment and the likely incident type",
			"inputSchema": textSchema("message", "The message to analyze"),
		},
		map[string]any{
			"name":        "detect_crime",
			"description": "Matches a message against cyber crime categories with legal references and investigation steps",
			"inputSchema": textSchema("message", "The message to check"),
		},
		map[string]any{
			"name":        "check_url",
			"description": "Scores a link for phishing signals such as typosquatting, raw IPs and suspicious keywords",
			"inputSchema": textSchema("url", "The link to check"),
		},
		map[string]any{
			"name":        "file_report",
			"description": "Builds an incident report with a PII-redacted message and an escalation decision",
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"message":  map[string]any{"type": "string", "description": "The reported message"},
					"source":   map[string]any{"type": "string", "description": "Where it was seen"},
					"platform": map[string]any{"type": "string", "description": "Platform it came from"},
					"sender":   map[string]any{"type": "string", "description": "Sender handle"},
				},
				"required": []string{"message"},
			},
		},
	}
	if s.tools.Corpus != nil {
		tools = append(tools, map[string]any{
			"name":        "find_similar",
			"description": "Finds reference corpus messages that resemble a message",
			"inputSchema": textSchema("message", "The message to look up"),
		})
	}
	return tools
}

var errArgMissing = errors.New("argument missing")

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%w: %s", errArgMissing, key)
	}
	return v, nil
}

func optionalArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func (s *Server) callTool(ctx context.Context, name string, args map[string]any) (any, *RPCError) {
	var payload any

	switch name {
	case "analyze_message", "detect_crime", "find_similar", "file_report":
		message, err := stringArg(args, "message")
		if err != nil {
			return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
		}

		switch name {
		case "analyze_message":
			payload = s.tools.Analyzer.Analyze(ctx, message)
		case "detect_crime":
			matches := s.tools.Crime.Detect(message)
			payload = map[string]any{"matches": matches, "summary": crime.Summarize(matches)}
		case "find_similar":
			if s.tools.Corpus == nil {
				return nil, &RPCError{Code: codeMethodNotFound, Message: "Tool not found"}
			}
			c, err := s.tools.Corpus(ctx)
			if err != nil {
				return toolError(err.Error()), nil
			}
			ranked := similarity.RankEntries(message, similarity.EntriesFromCorpus(c))
			if ranked == nil {
				ranked = []similarity.ScoredEntry{}
			}
			payload = ranked
		case "file_report":
			payload = s.tools.Reports.Build(ctx, report.Input{
				Message:  message,
				Source:   optionalArg(args, "source"),
				Platform: optionalArg(args, "platform"),
				Sender:   optionalArg(args, "sender"),
				Agent:    report.Agent{ID: "mcp", Name: "mcp-client"},
			})
		}

	case "check_url":
		u, err := stringArg(args, "url")
		if err != nil {
			return nil, &RPCError{Code: codeInvalidParams, Message: err.Error()}
		}
		payload = phishing.Analyze(u)

	default:
		return nil, &RPCError{Code: codeMethodNotFound, Message: "Tool not found"}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, &RPCError{Code: codeToolFailed, Message: err.Error()}
	}
	return map[string]any{
		"content": []any{
			map[string]any{"type": "text", "text": string(data)},
		},
		"isError": false,
	}, nil
}

func toolError(msg string) map[string]any {
	return map[string]any{
		"content": []any{
			map[string]any{"type": "text", "text": msg},
		},
		"isError": true,
	}
}
