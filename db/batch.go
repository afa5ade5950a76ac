package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/a-h/weaviatesearch/gateway"
	"github.com/weaviate/weaviate/entities/models"
)

type Chunk struct {
	Title string
	Text  string
	Index int64
}

type ChunksPutArgs struct {
	Class  string
	Fields gateway.Fields
	Chunks []Chunk
	// BatchSize is the number of objects sent per request, defaults to 100.
	BatchSize int
}

// NewObject maps a chunk to a Weaviate object using the configured property names.
func NewObject(class string, fields gateway.Fields, c Chunk) *models.Object {
	props := map[string]any{}
	if fields.Text != "" {
		props[fields.Text] = c.Text
	}
	if fields.Title != "" {
		props[fields.Title] = c.Title
	}
	if fields.ChunkIndex != "" {
		props[fields.ChunkIndex] = c.Index
	}
	return &models.Object{
		Class:      class,
		Properties: props,
	}
}

// ChunksPut writes the chunks in batches and returns the number written.
// Per-object failures are joined into the returned error.
func (s *Session) ChunksPut(ctx context.Context, args ChunksPutArgs) (written int, err error) {
	size := args.BatchSize
	if size <= 0 {
		size = 100
	}
	var errs []error
	for start := 0; start < len(args.Chunks); start += size {
		end := min(start+size, len(args.Chunks))
		objects := make([]*models.Object, 0, end-start)
		for _, c := range args.Chunks[start:end] {
			objects = append(objects, NewObject(args.Class, args.Fields, c))
		}
		resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
		if err != nil {
			return written, fmt.Errorf("db: batch %d-%d failed: %w", start, end, err)
		}
		for _, r := range resp {
			if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
				for _, e := range r.Result.Errors.Error {
					errs = append(errs, errors.New(e.Message))
				}
				continue
			}
			written++
		}
	}
	return written, errors.Join(errs...)
}
