package db

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/weaviatesearch/gateway"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
)

// Config is the Weaviate endpoint and credentials.
type Config struct {
	URL    string
	APIKey string
	// CohereAPIKey is forwarded to the text2vec-cohere vectorizer, if set.
	CohereAPIKey string
}

// NewConnector validates the configuration. It doesn't contact the server.
func NewConnector(cfg Config) (*Connector, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, &gateway.ConfigurationError{Field: "WEAVIATE_URL", Reason: "is not set"}
	}
	u, err := ParseWeaviateURL(cfg.URL)
	if err != nil {
		return nil, &gateway.ConfigurationError{Field: "WEAVIATE_URL", Reason: err.Error()}
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &gateway.ConfigurationError{Field: "WEAVIATE_API_KEY", Reason: "is not set"}
	}
	headers := map[string]string{
		"Authorization": "Bearer " + cfg.APIKey,
	}
	if cfg.CohereAPIKey != "" {
		headers["X-Cohere-Api-Key"] = cfg.CohereAPIKey
	}
	return &Connector{
		url:     u,
		headers: headers,
	}, nil
}

// Connector creates a new Weaviate client for every session.
// The API key is sent as a bearer header. The client rejects an AuthConfig
// alongside a ConnectionClient.
type Connector struct {
	url     WeaviateURL
	headers map[string]string
}

var ErrNotReady = errors.New("db: weaviate is not ready")

// Connect satisfies gateway.Connector.
func (c *Connector) Connect(ctx context.Context) (gateway.Session, error) {
	return c.Open(ctx)
}

// Open creates a client with its own transport and checks that the server is
// ready. The caller must Close the session.
func (c *Connector) Open(ctx context.Context) (s *Session, err error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	client, err := weaviate.NewClient(weaviate.Config{
		Host:             c.url.Host(),
		Scheme:           c.url.Scheme(),
		Headers:          c.headers,
		ConnectionClient: &http.Client{Transport: transport},
	})
	if err != nil {
		transport.CloseIdleConnections()
		return nil, fmt.Errorf("db: failed to create client: %w", err)
	}
	s = &Session{client: client, transport: transport}
	ready, err := client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("db: ready check failed: %w", err), s.Close())
	}
	if !ready {
		return nil, errors.Join(ErrNotReady, s.Close())
	}
	return s, nil
}

// Session is a client with its own transport, used for a single search or
// import.
type Session struct {
	client    *weaviate.Client
	transport *http.Transport
}

// Close releases the session's connections.
func (s *Session) Close() error {
	s.transport.CloseIdleConnections()
	return nil
}

// NearText finds objects in the request's collection that are conceptually
// similar to the query.
func (s *Session) NearText(ctx context.Context, req gateway.SearchRequest) ([]gateway.RawMatch, error) {
	fields := req.Fields()
	var gqlFields []graphql.Field
	for _, name := range fields.Names() {
		gqlFields = append(gqlFields, graphql.Field{Name: name})
	}
	gqlFields = append(gqlFields, graphql.Field{
		Name: "_additional",
		Fields: []graphql.Field{
			{Name: "id"},
			{Name: "distance"},
			{Name: "certainty"},
		},
	})

	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{req.Query()}).
		WithDistance(req.Distance())

	resp, err := s.client.GraphQL().Get().
		WithClassName(req.Collection()).
		WithFields(gqlFields...).
		WithNearText(nearText).
		WithLimit(req.Limit()).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("db: near text query failed: %w", err)
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}
		return nil, fmt.Errorf("db: near text query failed: %s", strings.Join(msgs, "; "))
	}
	return extractMatches(resp.Data["Get"], req.Collection())
}

// extractMatches reads Get.<collection>, a list of objects.
func extractMatches(data any, collection string) (matches []gateway.RawMatch, err error) {
	get, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("db: missing Get in response: %w", gateway.ErrMalformedResponse)
	}
	list, found := get[collection]
	if !found {
		return nil, fmt.Errorf("db: missing %s in response: %w", collection, gateway.ErrMalformedResponse)
	}
	if list == nil {
		return []gateway.RawMatch{}, nil
	}
	items, ok := list.([]any)
	if !ok {
		return nil, fmt.Errorf("db: %s is %T, not a list: %w", collection, list, gateway.ErrMalformedResponse)
	}
	matches = make([]gateway.RawMatch, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("db: %s[%d] is %T, not an object: %w", collection, i, item, gateway.ErrMalformedResponse)
		}
		matches[i] = obj
	}
	return matches, nil
}
