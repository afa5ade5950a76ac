package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/a-h/weaviatesearch/client"
	"github.com/a-h/weaviatesearch/models"
	"github.com/a-h/weaviatesearch/render"
)

type QueryCommand struct {
	HostURL   string `help:"The URL of the search host." env:"SEARCH_HOST_URL" default:"http://localhost:9020"`
	HostToken string `help:"The token for the search host." env:"SEARCH_HOST_TOKEN" default:""`
	Text      string `arg:"" help:"The text to search for."`
	Format    string `help:"The output format." enum:"text,json" default:"text"`
	Pretty    bool   `help:"Pretty print the JSON output." default:"true"`
	LogLevel  string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c QueryCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)
	return c.run(ctx, log, client.New(c.HostURL, c.HostToken), os.Stdout)
}

func (c QueryCommand) run(ctx context.Context, log *slog.Logger, s searcher, w io.Writer) (err error) {
	resp, err := s.SearchPost(ctx, models.SearchPostRequest{Query: c.Text})
	status := render.SucceededStatus(resp.Results)
	if err != nil {
		log.Error("search failed", slog.Any("error", err))
		status = render.FailedStatus(err)
	}
	dm := render.Render(status)

	if c.Format == "json" {
		enc := json.NewEncoder(w)
		if c.Pretty {
			enc.SetIndent("", "  ")
		}
		if err = enc.Encode(dm); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if err = render.WriteText(w, dm); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if status.Kind == render.Failed {
		return fmt.Errorf("search failed: %s", dm.Error)
	}
	return nil
}
