package integration

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/a-h/weaviatesearch/client"
	"github.com/a-h/weaviatesearch/gateway"
	"github.com/a-h/weaviatesearch/models"
	"github.com/a-h/weaviatesearch/render"
)

// These tests expect a host started with `weaviatesearch serve` against a
// Weaviate instance that has had the Albert_Einstein article imported.

func newClient() client.Client {
	url := os.Getenv("SEARCH_HOST_URL")
	if url == "" {
		url = "http://localhost:9020"
	}
	token := os.Getenv("SEARCH_HOST_TOKEN")
	if token == "" {
		token = "test-token"
	}
	return client.New(url, token)
}

func TestSearchPost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	resp, err := newClient().SearchPost(context.Background(), models.SearchPostRequest{
		Query: "theory of relativity",
	})
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected results")
	}
	if len(resp.Results) > gateway.DefaultLimit {
		t.Errorf("expected at most %d results, got %d", gateway.DefaultLimit, len(resp.Results))
	}
	m := render.Render(render.SucceededStatus(resp.Results))
	for i, item := range m.Items {
		if item.ID == render.NoID {
			t.Errorf("result %d: expected an ID", i)
		}
	}
}

func TestSearchPostBlankQuery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	_, err := newClient().SearchPost(context.Background(), models.SearchPostRequest{Query: " "})
	var ve *gateway.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSearchPostBadToken(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	url := os.Getenv("SEARCH_HOST_URL")
	if url == "" {
		url = "http://localhost:9020"
	}
	_, err := client.New(url, "not-a-token").SearchPost(context.Background(), models.SearchPostRequest{Query: "relativity"})
	var ce *gateway.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}
