package models

type SearchPostRequest struct {
	// Query is the free text to search for.
	Query string `json:"query"`
}

type SearchPostResponse struct {
	Results []SearchResult `json:"results"`
}

// SearchResult is a single match. Every field is optional, nil means the
// backend didn't return a value.
type SearchResult struct {
	ID         *string  `json:"id,omitempty"`
	Score      *float64 `json:"score,omitempty"`
	Distance   *float64 `json:"distance,omitempty"`
	Text       *string  `json:"text,omitempty"`
	Title      *string  `json:"title,omitempty"`
	ChunkIndex *int64   `json:"chunkIndex,omitempty"`
}
