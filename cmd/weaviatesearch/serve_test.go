package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/weaviatesearch/client"
	"github.com/a-h/weaviatesearch/models"
	"github.com/google/go-cmp/cmp"
)

type fakeGateway struct {
	results []models.SearchResult
	queries []string
}

func (f *fakeGateway) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	f.queries = append(f.queries, query)
	return f.results, nil
}

func TestHostHandler(t *testing.T) {
	gw := &fakeGateway{results: []models.SearchResult{{ID: ptr("a"), Text: ptr("hello")}}}
	srv := httptest.NewServer(newHostHandler(newLogger(io.Discard, "error"), gw, map[string]string{"secret": "ui"}))
	defer srv.Close()

	t.Run("searches require a token", func(t *testing.T) {
		_, err := client.New(srv.URL, "wrong").SearchPost(context.Background(), models.SearchPostRequest{Query: "hello"})
		if err == nil {
			t.Fatal("expected error")
		}
		if len(gw.queries) != 0 {
			t.Errorf("expected no searches, got %v", gw.queries)
		}
	})
	t.Run("searches with a token return results", func(t *testing.T) {
		resp, err := client.New(srv.URL, "secret").SearchPost(context.Background(), models.SearchPostRequest{Query: "hello"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(gw.results, resp.Results); diff != "" {
			t.Error(diff)
		}
	})
	t.Run("metrics are available without a token", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(body), "weaviatesearch_searches_total") {
			t.Error("expected search metrics")
		}
	})
	t.Run("other routes are not found", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/search")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", resp.StatusCode)
		}
	})
}

func TestQueryCommand(t *testing.T) {
	s := &fakeSearcher{
		respond: func(query string) (models.SearchPostResponse, error) {
			return models.SearchPostResponse{Results: []models.SearchResult{{ID: ptr("a"), Score: ptr(0.5), Text: ptr("<p>hello</p>")}}}, nil
		},
	}
	var sb strings.Builder
	err := QueryCommand{Text: "hello", Format: "text"}.run(context.Background(), newLogger(io.Discard, "error"), s, &sb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := `Search Results:

1.
  Chunk Index: No index
  Text: hello
  ID: a
  Score: 0.50
`
	if diff := cmp.Diff(expected, sb.String()); diff != "" {
		t.Error(diff)
	}
}
