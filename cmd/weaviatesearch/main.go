package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/a-h/weaviatesearch/db"
	"github.com/a-h/weaviatesearch/gateway"
	"github.com/alecthomas/kong"
)

type CLI struct {
	Serve   ServeCommand   `cmd:"serve" help:"Start the search host, which holds the Weaviate credentials."`
	App     AppCommand     `cmd:"app" default:"withargs" help:"Start a private search host and the search UI."`
	UI      UICommand      `cmd:"ui" help:"Start the search UI against a running host."`
	Query   QueryCommand   `cmd:"query" help:"Run a single search against a running host."`
	Import  ImportCommand  `cmd:"import" help:"Import chunked documents into Weaviate."`
	Version VersionCommand `cmd:"version" help:"Print the version."`
}

func main() {
	var cli CLI
	ctx := context.Background()
	kctx := kong.Parse(&cli, kong.UsageOnError(), kong.BindTo(ctx, (*context.Context)(nil)))
	if err := kctx.Run(); err != nil {
		log := getLogger("error")
		log.Error("error", slog.Any("error", err))
		os.Exit(1)
	}
}

func getLogger(level string) *slog.Logger {
	return newLogger(os.Stderr, level)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	ll := slog.LevelInfo
	switch level {
	case "debug":
		ll = slog.LevelDebug
	case "info":
		ll = slog.LevelInfo
	case "warn":
		ll = slog.LevelWarn
	case "error":
		ll = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ll,
	}))
}

// getFileLogger is used by commands that own the terminal. An empty name
// discards logs.
func getFileLogger(name, level string) (log *slog.Logger, closer func() error, err error) {
	if name == "" {
		return newLogger(io.Discard, level), func() error { return nil }, nil
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return newLogger(f, level), f.Close, nil
}

// WeaviateFlags are shared by the commands that talk to Weaviate directly.
type WeaviateFlags struct {
	WeaviateURL        string `help:"The URL of the Weaviate instance, including https://." env:"WEAVIATE_URL" default:""`
	WeaviateAPIKey     string `help:"The Weaviate API key." env:"WEAVIATE_API_KEY" default:""`
	CohereAPIKey       string `help:"The Cohere API key used by the text2vec-cohere vectorizer." env:"COHERE_API_KEY" default:""`
	Collection         string `help:"The Weaviate class to search." env:"WEAVIATE_COLLECTION" default:"Chunk"`
	TextProperty       string `help:"The property containing chunk text." env:"TEXT_PROPERTY" default:"content"`
	TitleProperty      string `help:"The property containing the title, empty to skip." env:"TITLE_PROPERTY" default:"title"`
	ChunkIndexProperty string `help:"The property containing the chunk index." env:"CHUNK_INDEX_PROPERTY" default:"chunk_index"`
}

func (f WeaviateFlags) Connector() (*db.Connector, error) {
	return db.NewConnector(db.Config{
		URL:          f.WeaviateURL,
		APIKey:       f.WeaviateAPIKey,
		CohereAPIKey: f.CohereAPIKey,
	})
}

func (f WeaviateFlags) Fields() gateway.Fields {
	return gateway.Fields{
		Text:       f.TextProperty,
		Title:      f.TitleProperty,
		ChunkIndex: f.ChunkIndexProperty,
	}
}

func newGateway(log *slog.Logger, f WeaviateFlags, timeout time.Duration) (*gateway.Gateway, error) {
	connector, err := f.Connector()
	if err != nil {
		return nil, err
	}
	return gateway.New(log, connector, f.Collection, f.Fields(), timeout), nil
}
