package post

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/respond"
	"github.com/a-h/weaviatesearch/auth"
	"github.com/a-h/weaviatesearch/gateway"
	"github.com/a-h/weaviatesearch/metrics"
	"github.com/a-h/weaviatesearch/models"
)

// Messages returned to the client. Backend detail is only logged.
const (
	MessageInvalidBody   = "failed to decode body"
	MessageEmptyQuery    = "Please enter a search term."
	MessageSearchFailed  = "An error occurred while searching."
	MessageSearchTimeout = "The search timed out."
	MessageNotConfigured = "search is not configured"
)

const maxRequestBodyBytes = 64 * 1024

type Searcher interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

func New(log *slog.Logger, searcher Searcher) Handler {
	return Handler{
		log:      log,
		searcher: searcher,
	}
}

type Handler struct {
	log      *slog.Logger
	searcher Searcher
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.GetPrincipal(r)
	if !ok {
		http.Error(w, "authentication not provided", http.StatusUnauthorized)
		return
	}

	var req models.SearchPostRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, MessageInvalidBody, http.StatusBadRequest)
		return
	}

	results, err := h.searcher.Search(r.Context(), req.Query)
	if err != nil {
		h.respondWithError(w, principal, err)
		return
	}

	metrics.ObserveSearch(metrics.OutcomeOK, len(results))
	h.log.Info("search complete", slog.String("principal", principal), slog.Int("results", len(results)))
	if results == nil {
		results = []models.SearchResult{}
	}
	respond.WithJSON(w, models.SearchPostResponse{Results: results}, http.StatusOK)
}

func (h Handler) respondWithError(w http.ResponseWriter, principal string, err error) {
	var ve *gateway.ValidationError
	if errors.As(err, &ve) {
		metrics.ObserveSearch(metrics.OutcomeInvalid, 0)
		h.log.Debug("search rejected", slog.String("principal", principal), slog.Any("error", err))
		respond.WithError(w, MessageEmptyQuery, http.StatusBadRequest)
		return
	}
	var ce *gateway.ConfigurationError
	if errors.As(err, &ce) {
		metrics.ObserveSearch(metrics.OutcomeConfiguration, 0)
		h.log.Error("search is not configured", slog.Any("error", err))
		respond.WithError(w, MessageNotConfigured, http.StatusInternalServerError)
		return
	}
	var be *gateway.BackendError
	if errors.As(err, &be) && be.Cause == gateway.CauseTimeout {
		metrics.ObserveSearch(metrics.OutcomeTimeout, 0)
		h.log.Error("search timed out", slog.String("principal", principal), slog.Any("error", err))
		respond.WithError(w, MessageSearchTimeout, http.StatusGatewayTimeout)
		return
	}
	metrics.ObserveSearch(metrics.OutcomeBackendError, 0)
	h.log.Error("search failed", slog.String("principal", principal), slog.Any("error", err))
	respond.WithError(w, MessageSearchFailed, http.StatusBadGateway)
}
