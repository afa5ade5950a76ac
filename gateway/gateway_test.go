package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/a-h/weaviatesearch/models"
	"github.com/google/go-cmp/cmp"
)

type fakeConnector struct {
	connectErr error
	session    *fakeSession
	connects   int
}

func (c *fakeConnector) Connect(ctx context.Context) (Session, error) {
	c.connects++
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	return c.session, nil
}

type fakeSession struct {
	matches  []RawMatch
	err      error
	closeErr error
	block    bool

	requests []SearchRequest
	closed   int
}

func (s *fakeSession) NearText(ctx context.Context, req SearchRequest) ([]RawMatch, error) {
	s.requests = append(s.requests, req)
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.matches, s.err
}

func (s *fakeSession) Close() error {
	s.closed++
	return s.closeErr
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func ptr[T any](v T) *T {
	return &v
}

func TestSearchRejectsBlankQueries(t *testing.T) {
	for _, query := range []string{"", " ", "\t\n", "   \r\n  "} {
		t.Run(query, func(t *testing.T) {
			c := &fakeConnector{session: &fakeSession{}}
			g := New(discard, c, "", DefaultFields, 0)

			_, err := g.Search(context.Background(), query)

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if c.connects != 0 {
				t.Errorf("expected no connection attempt, got %d", c.connects)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	session := &fakeSession{
		matches: []RawMatch{
			{
				"content":     "<p>Machine learning is a field of study.</p>",
				"chunk_index": float64(3),
				"title":       "Machine learning",
				"_additional": map[string]any{"id": "a", "certainty": 0.91, "distance": 0.18},
			},
			{
				"content":     "Deep learning uses neural networks.",
				"chunk_index": float64(7),
				"_additional": map[string]any{"id": "b", "certainty": 0.8, "distance": 0.4},
			},
		},
	}
	c := &fakeConnector{session: session}
	g := New(discard, c, "Chunk", DefaultFields, time.Second)

	results, err := g.Search(context.Background(), "  machine learning ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(session.requests) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(session.requests))
	}
	req := session.requests[0]
	if req.Query() != "machine learning" {
		t.Errorf("expected trimmed query, got %q", req.Query())
	}
	if req.Limit() != 10 {
		t.Errorf("expected limit 10, got %d", req.Limit())
	}
	if req.Distance() != 0.7 {
		t.Errorf("expected distance 0.7, got %v", req.Distance())
	}
	if req.Collection() != "Chunk" {
		t.Errorf("expected collection Chunk, got %q", req.Collection())
	}

	expected := []models.SearchResult{
		{
			ID:         ptr("a"),
			Score:      ptr(0.91),
			Distance:   ptr(0.18),
			Text:       ptr("<p>Machine learning is a field of study.</p>"),
			Title:      ptr("Machine learning"),
			ChunkIndex: ptr(int64(3)),
		},
		{
			ID:         ptr("b"),
			Score:      ptr(0.8),
			Distance:   ptr(0.4),
			Text:       ptr("Deep learning uses neural networks."),
			ChunkIndex: ptr(int64(7)),
		},
	}
	if diff := cmp.Diff(expected, results); diff != "" {
		t.Error(diff)
	}
	if session.closed != 1 {
		t.Errorf("expected session to be closed once, got %d", session.closed)
	}
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	session := &fakeSession{matches: []RawMatch{}}
	g := New(discard, &fakeConnector{session: session}, "", DefaultFields, 0)

	results, err := g.Search(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil results, got %#v", results)
	}
}

func TestSearchBackendErrors(t *testing.T) {
	tests := []struct {
		name          string
		connector     *fakeConnector
		timeout       time.Duration
		expectedCause string
		expectClosed  bool
	}{
		{
			name:          "connection failures are reported",
			connector:     &fakeConnector{connectErr: errors.New("dial tcp: refused")},
			expectedCause: CauseConnectionFailed,
		},
		{
			name:          "request failures close the session",
			connector:     &fakeConnector{session: &fakeSession{err: errors.New("graphql: unknown class")}},
			expectedCause: CauseRequestFailed,
			expectClosed:  true,
		},
		{
			name:          "malformed responses close the session",
			connector:     &fakeConnector{session: &fakeSession{err: ErrMalformedResponse}},
			expectedCause: CauseMalformedResponse,
			expectClosed:  true,
		},
		{
			name:          "timeouts close the session",
			connector:     &fakeConnector{session: &fakeSession{block: true}},
			timeout:       10 * time.Millisecond,
			expectedCause: CauseTimeout,
			expectClosed:  true,
		},
		{
			name:          "close failures are reported",
			connector:     &fakeConnector{session: &fakeSession{matches: []RawMatch{{}}, closeErr: errors.New("close")}},
			expectedCause: CauseCloseFailed,
			expectClosed:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			g := New(slog.New(slog.NewJSONHandler(&logs, nil)), tt.connector, "", DefaultFields, tt.timeout)

			results, err := g.Search(context.Background(), "query")

			var be *BackendError
			if !errors.As(err, &be) {
				t.Fatalf("expected BackendError, got %v", err)
			}
			if be.Cause != tt.expectedCause {
				t.Errorf("expected cause %q, got %q", tt.expectedCause, be.Cause)
			}
			if results != nil {
				t.Errorf("expected no results, got %v", results)
			}
			if tt.expectClosed && tt.connector.session.closed != 1 {
				t.Errorf("expected session to be closed once, got %d", tt.connector.session.closed)
			}
			if !strings.Contains(logs.String(), `"level":"ERROR","msg":"search failed"`) {
				t.Errorf("expected the failure to be logged at error level, got %s", logs.String())
			}
			if !strings.Contains(logs.String(), tt.expectedCause) {
				t.Errorf("expected the log to contain the cause %q, got %s", tt.expectedCause, logs.String())
			}
		})
	}
}

func TestSearchDoesNotLogValidationErrorsAsFailures(t *testing.T) {
	var logs bytes.Buffer
	g := New(slog.New(slog.NewJSONHandler(&logs, nil)), &fakeConnector{session: &fakeSession{}}, "", DefaultFields, 0)

	if _, err := g.Search(context.Background(), " "); err == nil {
		t.Fatal("expected error")
	}
	if logs.Len() != 0 {
		t.Errorf("expected no logs, got %s", logs.String())
	}
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session := &fakeSession{block: true}
	g := New(discard, &fakeConnector{session: session}, "", DefaultFields, time.Minute)

	_, err := g.Search(ctx, "query")

	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if be.Cause != CauseCancelled {
		t.Errorf("expected cause %q, got %q", CauseCancelled, be.Cause)
	}
	if session.closed != 1 {
		t.Errorf("expected session to be closed once, got %d", session.closed)
	}
}
