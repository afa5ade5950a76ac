package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/a-h/weaviatesearch/auth"
	"github.com/a-h/weaviatesearch/client"
)

type AppCommand struct {
	WeaviateFlags `embed:""`
	SearchTimeout time.Duration `help:"The maximum time a search may take." env:"SEARCH_TIMEOUT" default:"10s"`
	LogFile       string        `help:"The file to write logs to, logs are discarded if empty." env:"LOG_FILE" default:""`
	LogLevel      string        `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

// Run starts the host on a loopback port with a token that only this process
// knows, then runs the UI against it. The UI never sees the Weaviate key.
func (c AppCommand) Run(ctx context.Context) (err error) {
	log, closeLog, err := getFileLogger(c.LogFile, c.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	gw, err := newGateway(log, c.WeaviateFlags, c.SearchTimeout)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	token := auth.NewToken()
	s := &http.Server{
		Handler:           newHostHandler(log, gw, map[string]string{token: "ui"}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("host stopped", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = errors.Join(err, s.Shutdown(shutdownCtx))
	}()
	log.Info("host started", slog.String("addr", ln.Addr().String()))

	return runUI(ctx, log, client.New("http://"+ln.Addr().String(), token))
}
