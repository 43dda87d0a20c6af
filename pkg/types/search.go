// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DefaultTopK is the number of results requested when none is configured.
const DefaultTopK = 5

// ResultItem is one entry in a query response. It is display data only:
// items carry no identity and are keyed by their position in the list.
type ResultItem struct {
	Title    string  `json:"title" yaml:"title"`
	Abstract string  `json:"abstract" yaml:"abstract"`
	URL      string  `json:"url" yaml:"url"`
	Score    float64 `json:"score" yaml:"score"`
}

// QueryRequest is the body of POST /query/.
type QueryRequest struct {
	Prompt string `json:"prompt"`
	TopK   int    `json:"top_k"`
}

// QueryResponse is the success body of POST /query/. A response without a
// results field decodes to a nil slice, which callers treat as empty.
type QueryResponse struct {
	Results []ResultItem `json:"results"`
}
