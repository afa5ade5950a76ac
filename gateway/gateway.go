package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/a-h/weaviatesearch/models"
)

// Connector opens a session with the search backend. A session is used for
// exactly one search and then closed.
type Connector interface {
	Connect(ctx context.Context) (Session, error)
}

// Session is a single connection to the search backend.
type Session interface {
	NearText(ctx context.Context, req SearchRequest) ([]RawMatch, error)
	Close() error
}

// DefaultTimeout bounds a whole search, including connecting.
const DefaultTimeout = 10 * time.Second

// New creates a gateway for the collection. A zero timeout uses DefaultTimeout.
func New(log *slog.Logger, connector Connector, collection string, fields Fields, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		log:        log,
		connector:  connector,
		collection: collection,
		fields:     fields,
		timeout:    timeout,
	}
}

type Gateway struct {
	log        *slog.Logger
	connector  Connector
	collection string
	fields     Fields
	timeout    time.Duration
}

// Search runs a single nearText search for the query. Blank queries fail with
// a *ValidationError without contacting the backend, every other failure is a
// *BackendError.
func (g *Gateway) Search(ctx context.Context, query string) (results []models.SearchResult, err error) {
	req, err := NewSearchRequest(query, g.collection, g.fields)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		if err != nil {
			g.log.Error("search failed",
				slog.Int("queryLength", len(req.Query())),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	session, err := g.connector.Connect(ctx)
	if err != nil {
		return nil, backendError(ctx, CauseConnectionFailed, err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			g.log.Error("failed to close search session", slog.Any("error", closeErr))
			if err == nil {
				results = nil
				err = &BackendError{Cause: CauseCloseFailed, Err: closeErr}
			}
		}
	}()

	raw, err := session.NearText(ctx, req)
	if err != nil {
		if errors.Is(err, ErrMalformedResponse) {
			return nil, &BackendError{Cause: CauseMalformedResponse, Err: err}
		}
		return nil, backendError(ctx, CauseRequestFailed, err)
	}
	results = NormalizeAll(raw, req.Fields())

	g.log.Debug("search complete",
		slog.Int("queryLength", len(req.Query())),
		slog.Int("results", len(results)),
		slog.Duration("duration", time.Since(start)))
	return results, nil
}

func backendError(ctx context.Context, cause string, err error) *BackendError {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		cause = CauseTimeout
	case errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled):
		cause = CauseCancelled
	}
	return &BackendError{Cause: cause, Err: err}
}
