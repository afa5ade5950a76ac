package gateway

import (
	"strings"
)

const (
	// DefaultLimit is the maximum number of matches requested per search.
	DefaultLimit = 10
	// DefaultDistance is the nearText distance threshold.
	DefaultDistance = 0.7
	// DefaultCollection is the Weaviate class holding imported chunks.
	DefaultCollection = "Chunk"
)

// Fields names the properties fetched for each match.
type Fields struct {
	Text       string
	Title      string
	ChunkIndex string
}

// DefaultFields matches the schema created by the import command.
var DefaultFields = Fields{
	Text:       "content",
	Title:      "title",
	ChunkIndex: "chunk_index",
}

// Names returns the non-empty property names, in a stable order.
func (f Fields) Names() (names []string) {
	for _, n := range []string{f.Text, f.Title, f.ChunkIndex} {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// SearchRequest is a single nearText search.
type SearchRequest struct {
	query      string
	collection string
	limit      int
	distance   float32
	fields     Fields
}

// NewSearchRequest validates the query and builds a request with the fixed
// limit and distance.
func NewSearchRequest(query, collection string, fields Fields) (SearchRequest, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchRequest{}, &ValidationError{Reason: "query is empty"}
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return SearchRequest{
		query:      query,
		collection: collection,
		limit:      DefaultLimit,
		distance:   DefaultDistance,
		fields:     fields,
	}, nil
}

func (r SearchRequest) Query() string      { return r.query }
func (r SearchRequest) Collection() string { return r.collection }
func (r SearchRequest) Limit() int         { return r.limit }
func (r SearchRequest) Distance() float32  { return r.distance }
func (r SearchRequest) Fields() Fields     { return r.fields }
