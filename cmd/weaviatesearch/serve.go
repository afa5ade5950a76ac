package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/weaviatesearch/auth"
	searchpost "github.com/a-h/weaviatesearch/handlers/search/post"
	"github.com/a-h/weaviatesearch/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type ServeCommand struct {
	WeaviateFlags `embed:""`
	SearchTimeout time.Duration `help:"The maximum time a search may take." env:"SEARCH_TIMEOUT" default:"10s"`
	ListenAddr    string        `help:"The address to listen on." env:"LISTEN_ADDR" default:"localhost:9020"`
	TLSCertFile   string        `help:"The TLS certificate file." env:"TLS_CERT_FILE" default:""`
	TLSKeyFile    string        `help:"The TLS key file." env:"TLS_KEY_FILE" default:""`
	TokensFile    string        `help:"The file containing a JSON map of host tokens to client names." env:"TOKENS_FILE" default:"tokens.json"`
	LogLevel      string        `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

// newHostHandler exposes the search capability. Only /search requires a
// token, /metrics is open.
func newHostHandler(log *slog.Logger, searcher searchpost.Searcher, tokenToPrincipal map[string]string) http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Method(http.MethodPost, "/search", auth.New(tokenToPrincipal, searchpost.New(log, searcher)))
	return cors.AllowAll().Handler(r)
}

func (c ServeCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	gw, err := newGateway(log, c.WeaviateFlags, c.SearchTimeout)
	if err != nil {
		return err
	}
	log.Info("using weaviate", slog.String("url", c.WeaviateURL), slog.String("collection", c.Collection))

	tokenToPrincipal, err := auth.LoadFromFile(c.TokensFile)
	if err != nil {
		return fmt.Errorf("failed to load host tokens: %w", err)
	}

	log.Info("Listening", slog.String("addr", c.ListenAddr))
	s := &http.Server{
		Addr:              c.ListenAddr,
		Handler:           newHostHandler(log, gw, tokenToPrincipal),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if c.TLSCertFile != "" && c.TLSKeyFile != "" {
		log.Info("Enabling TLS mode")
		var cert tls.Certificate
		cert, err = tls.LoadX509KeyPair(c.TLSCertFile, c.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load cert: %w", err)
		}
		s.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
		return s.ListenAndServeTLS(c.TLSCertFile, c.TLSKeyFile)
	}
	return s.ListenAndServe()
}
