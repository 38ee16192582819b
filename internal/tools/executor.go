package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"

	"eu5advisor/internal/logger"
	"eu5advisor/pkg/advisortypes"
)

const (
	// DefaultNumResults is used when web_search is called without num_results.
	DefaultNumResults = 3
	// MaxNumResults is the largest num_results web_search accepts.
	MaxNumResults = 10
)

// Executor runs tool calls against the knowledge and search gateways. Every outcome,
// including malformed arguments and gateway failures, is returned as text for the model.
type Executor struct {
	knowledge advisortypes.KnowledgeGateway
	search    advisortypes.SearchGateway
	logger    *log.Logger
}

// NewExecutor creates an executor. A nil search gateway reports web search as unavailable.
func NewExecutor(knowledge advisortypes.KnowledgeGateway, search advisortypes.SearchGateway) *Executor {
	return &Executor{
		knowledge: knowledge,
		search:    search,
		logger:    logger.NewStyledLogger("Tools"),
	}
}

// Execute runs one tool call and returns its textual result.
func (e *Executor) Execute(ctx context.Context, call advisortypes.ToolCall) string {
	args := strings.TrimSpace(call.Arguments)
	if !gjson.Valid(args) {
		return "Error: invalid tool arguments (JSON decode failed: " + decodeError(args) + ")"
	}
	parsed := gjson.Parse(args)
	fields := objectFields(parsed)

	e.logger.Debug("executing tool", "tool", call.Name, "id", call.ID)

	switch call.Name {
	case QueryKnowledge:
		category, ok := fields["category"]
		if !ok {
			return "Error: invalid tool arguments (missing 'category' for query_knowledge)"
		}
		if category.Type != gjson.String {
			return "Error: invalid tool arguments ('category' must be a string)"
		}
		subcategory := fields["subcategory"]
		if present(subcategory) && subcategory.Type != gjson.String {
			return "Error: invalid tool arguments ('subcategory' must be a string if provided)"
		}
		return e.queryKnowledge(ctx, category.String(), subcategory.String())

	case WebSearch:
		query, ok := fields["query"]
		if !ok {
			return "Error: invalid tool arguments (missing 'query' for web_search)"
		}
		if query.Type != gjson.String {
			return "Error: invalid tool arguments ('query' must be a string)"
		}
		numResults := DefaultNumResults
		if n := fields["num_results"]; present(n) {
			if !isInteger(n) {
				return "Error: invalid tool arguments ('num_results' must be an integer if provided)"
			}
			if v := n.Float(); v < 1 || v > MaxNumResults {
				return fmt.Sprintf("Error: invalid tool arguments ('num_results' must be between 1 and %d)", MaxNumResults)
			}
			numResults = int(n.Int())
		}
		return e.webSearch(ctx, query.String(), numResults)

	default:
		return "Unknown tool: " + call.Name
	}
}

func (e *Executor) queryKnowledge(ctx context.Context, category, subcategory string) string {
	result := e.knowledge.Lookup(ctx, category, subcategory)
	switch result.Outcome {
	case advisortypes.KnowledgeFound:
		return fmt.Sprintf("**Source: Local Knowledge Base (%s)**\n\n%s", result.SourceLabel, result.Text)
	case advisortypes.KnowledgeNeedsSpecificity:
		return result.Text
	default:
		return "Error: " + result.Message
	}
}

func (e *Executor) webSearch(ctx context.Context, query string, numResults int) string {
	if e.search == nil {
		return "Web search error: web search is not configured"
	}

	results, err := e.search.Search(ctx, query, numResults)
	if err != nil {
		e.logger.Warn("web search failed", "query", query, "error", err)
		return "Web search error: " + err.Error()
	}
	if len(results) == 0 {
		return "No results found for: " + query
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Source: Web Search** (Query: %s)\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, r.Title)
		fmt.Fprintf(&b, "   URL: %s\n", r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", r.Snippet)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// objectFields returns the members of a JSON object. A repeated key keeps its last
// value. Anything other than an object has no fields.
func objectFields(parsed gjson.Result) map[string]gjson.Result {
	fields := map[string]gjson.Result{}
	if !parsed.IsObject() {
		return fields
	}
	parsed.ForEach(func(key, value gjson.Result) bool {
		fields[key.String()] = value
		return true
	})
	return fields
}

// present treats JSON null like an absent field.
func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

func isInteger(r gjson.Result) bool {
	return r.Type == gjson.Number && !strings.ContainsAny(r.Raw, ".eE")
}

// decodeError reports why args is not valid JSON.
func decodeError(args string) string {
	if args == "" {
		return "empty input"
	}
	var v any
	if err := json.Unmarshal([]byte(args), &v); err != nil {
		return err.Error()
	}
	return "invalid JSON"
}
