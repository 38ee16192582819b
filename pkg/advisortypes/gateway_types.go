// Package advisortypes defines the collaborator contracts used as tool executors.
// This file contains the knowledge and search gateway interfaces and their result types.
package advisortypes

import "context"

// KnowledgeOutcome tags the variant held by a KnowledgeResult.
type KnowledgeOutcome int

// Knowledge lookup outcomes.
const (
	// KnowledgeFound carries document text and its source label.
	KnowledgeFound KnowledgeOutcome = iota
	// KnowledgeNeedsSpecificity carries a listing of the available subcategories.
	KnowledgeNeedsSpecificity
	// KnowledgeError carries a human-readable failure message.
	KnowledgeError
)

// String returns the outcome name.
func (o KnowledgeOutcome) String() string {
	switch o {
	case KnowledgeFound:
		return "found"
	case KnowledgeNeedsSpecificity:
		return "needs_specificity"
	case KnowledgeError:
		return "error"
	default:
		return "unknown"
	}
}

// KnowledgeResult is the result of a knowledge lookup.
type KnowledgeResult struct {
	Outcome     KnowledgeOutcome
	Text        string // document text (Found) or listing (NeedsSpecificity)
	SourceLabel string // category/subcategory (Found)
	File        string // manifest-relative file (Found)
	Size        int    // byte length of Text (Found)
	Message     string // failure description (Error)
}

// KnowledgeFoundResult builds a Found result.
func KnowledgeFoundResult(text, sourceLabel, file string) KnowledgeResult {
	return KnowledgeResult{
		Outcome:     KnowledgeFound,
		Text:        text,
		SourceLabel: sourceLabel,
		File:        file,
		Size:        len(text),
	}
}

// KnowledgeListing builds a NeedsSpecificity result.
func KnowledgeListing(text string) KnowledgeResult {
	return KnowledgeResult{Outcome: KnowledgeNeedsSpecificity, Text: text}
}

// KnowledgeFailure builds an Error result.
func KnowledgeFailure(message string) KnowledgeResult {
	return KnowledgeResult{Outcome: KnowledgeError, Message: message}
}

// KnowledgeGateway resolves a category and optional subcategory to markdown text.
type KnowledgeGateway interface {
	Lookup(ctx context.Context, category, subcategory string) KnowledgeResult
}

// SearchResult is one ranked web search hit. Snippet may be empty.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// SearchGateway runs a free-text web search. It may fail on transport errors.
type SearchGateway interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// ToolExecutor runs one tool call requested by the model. Every outcome, including
// invalid arguments and collaborator failures, is returned as text.
type ToolExecutor interface {
	Execute(ctx context.Context, call ToolCall) string
}
