package tools

import (
	"context"
	"strings"
)

// NoResultText is returned to the agent when a search yields nothing.
const NoResultText = "No good DuckDuckGo Search Result was found"

const duckDuckGoDescription = "Searches DuckDuckGo for information."

// SearchResult is a single hit of a search provider.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher executes a query against a search provider.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

type describer interface {
	Description() string
}

// SearchInput is the parameter object of the web search tool.
type SearchInput struct {
	Question string `json:"question" jsonschema_description:"The search query, written the way you would type it into a search engine" jsonschema:"required"`
}

// WebSearch adapts a Searcher to a free-text in, free-text out agent tool.
type WebSearch struct {
	searcher Searcher
}

func NewWebSearch(searcher Searcher) *WebSearch {
	return &WebSearch{searcher: searcher}
}

// Description tells the agent which provider answers its queries. Searchers
// without a description of their own are described as DuckDuckGo.
func (w *WebSearch) Description() string {
	if d, ok := w.searcher.(describer); ok {
		return d.Description()
	}
	return duckDuckGoDescription
}

// Run searches for input.Question and returns the result snippets joined by a
// single space. Provider errors are returned unchanged.
func (w *WebSearch) Run(ctx context.Context, input SearchInput) (string, error) {
	results, err := w.searcher.Search(ctx, input.Question)
	if err != nil {
		return "", err
	}
	var snippets []string
	for _, result := range results {
		if snippet := strings.TrimSpace(result.Snippet); snippet != "" {
			snippets = append(snippets, snippet)
		}
	}
	if len(snippets) == 0 {
		return NoResultText, nil
	}
	return strings.Join(snippets, " "), nil
}
