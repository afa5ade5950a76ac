package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareRecordsRoutePatternAndStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	tests := []struct {
		method         string
		path           string
		expectedStatus string
	}{
		{method: "POST", path: "/search", expectedStatus: "502"},
		{method: "GET", path: "/ok", expectedStatus: "200"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tt.method, tt.path, tt.expectedStatus))

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, http.NoBody))

			after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tt.method, tt.path, tt.expectedStatus))
			if after-before != 1 {
				t.Errorf("expected counter to increase by 1, got %v", after-before)
			}
		})
	}

	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestObserveSearch(t *testing.T) {
	before := testutil.ToFloat64(searchesTotal.WithLabelValues(OutcomeTimeout))
	ObserveSearch(OutcomeTimeout, 0)
	after := testutil.ToFloat64(searchesTotal.WithLabelValues(OutcomeTimeout))
	if after-before != 1 {
		t.Errorf("expected timeout counter to increase by 1, got %v", after-before)
	}

	ObserveSearch(OutcomeOK, 2)
	if testutil.CollectAndCount(searchResults) != 1 {
		t.Error("expected search_results to be collected")
	}
}
