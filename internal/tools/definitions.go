// Package tools defines the tools offered to the model and executes the calls it makes.
package tools

import (
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"

	"eu5advisor/pkg/advisortypes"
)

// Tool names as seen by the model.
const (
	QueryKnowledge = "query_knowledge"
	WebSearch      = "web_search"
)

// KnowledgeQuery is the argument object of query_knowledge.
type KnowledgeQuery struct {
	Category    string `json:"category" jsonschema_description:"The knowledge category to query"`
	Subcategory string `json:"subcategory,omitempty" jsonschema_description:"Specific topic within the category. Leave empty to see available options."`
}

// WebSearchQuery is the argument object of web_search.
type WebSearchQuery struct {
	Query      string `json:"query" jsonschema_description:"Search query. Format: 'EU5 [topic]' or 'Europa Universalis 5 [nation] strategy wiki'"`
	NumResults int    `json:"num_results,omitempty" jsonschema:"default=3,minimum=1,maximum=10" jsonschema_description:"Number of results to return (1-10, default: 3)"`
}

// Topics maps each knowledge category to its subcategories, in display order.
type Topics struct {
	Categories    []string
	Subcategories map[string][]string
}

func reflectSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	schema.Version = ""
	schema.ID = ""
	return schema
}

// Definitions returns the query_knowledge and web_search tools. The category enum and
// the subcategory hint are filled from topics.
func Definitions(topics Topics) []advisortypes.ToolDefinition {
	knowledge := reflectSchema[KnowledgeQuery]()
	if category, ok := knowledge.Properties.Get("category"); ok && len(topics.Categories) > 0 {
		category.Enum = lo.Map(topics.Categories, func(name string, _ int) any { return name })
	}
	if subcategory, ok := knowledge.Properties.Get("subcategory"); ok {
		subcategory.Description = subcategoryHint(topics)
	}

	return []advisortypes.ToolDefinition{
		{
			Name: QueryKnowledge,
			Description: "Query the EU5 strategy knowledge base for game mechanics, strategies, and nation guides. " +
				"ALWAYS TRY THIS FIRST before web search.",
			Parameters: knowledge,
		},
		{
			Name: WebSearch,
			Description: "Search the web for EU5 information not in the local knowledge base. " +
				"Use ONLY when local knowledge is insufficient. Prioritize eu5.paradoxwikis.com results.",
			Parameters: reflectSchema[WebSearchQuery](),
		},
	}
}

func subcategoryHint(topics Topics) string {
	hint := "Specific topic within the category."
	for _, category := range topics.Categories {
		names := topics.Subcategories[category]
		if len(names) == 0 {
			continue
		}
		hint += " For " + category + ": " + strings.Join(names, ", ") + "."
	}
	return hint + " Leave empty to see available options."
}
