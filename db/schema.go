package db

import (
	"context"
	"fmt"

	"github.com/a-h/weaviatesearch/gateway"
	"github.com/weaviate/weaviate/entities/models"
)

// DefaultVectorizer is the module Weaviate uses to embed chunk text.
const DefaultVectorizer = "text2vec-cohere"

type ClassArgs struct {
	Class      string
	Vectorizer string
	Fields     gateway.Fields
	// Recreate deletes any existing class, and its objects, first.
	Recreate bool
}

// NewClass describes a class with text, title and chunk index properties.
func NewClass(args ClassArgs) *models.Class {
	vectorizer := args.Vectorizer
	if vectorizer == "" {
		vectorizer = DefaultVectorizer
	}
	c := &models.Class{
		Class:       args.Class,
		Description: "Text chunks imported for search",
		Vectorizer:  vectorizer,
	}
	if args.Fields.Text != "" {
		c.Properties = append(c.Properties, &models.Property{Name: args.Fields.Text, DataType: []string{"text"}})
	}
	if args.Fields.Title != "" {
		c.Properties = append(c.Properties, &models.Property{Name: args.Fields.Title, DataType: []string{"text"}})
	}
	if args.Fields.ChunkIndex != "" {
		c.Properties = append(c.Properties, &models.Property{Name: args.Fields.ChunkIndex, DataType: []string{"int"}})
	}
	return c
}

// EnsureClass creates the class if it doesn't exist. It returns true if the
// class was created.
func (s *Session) EnsureClass(ctx context.Context, args ClassArgs) (created bool, err error) {
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(args.Class).Do(ctx)
	if err != nil {
		return false, fmt.Errorf("db: failed to check for class %s: %w", args.Class, err)
	}
	if exists && args.Recreate {
		if err = s.client.Schema().ClassDeleter().WithClassName(args.Class).Do(ctx); err != nil {
			return false, fmt.Errorf("db: failed to delete class %s: %w", args.Class, err)
		}
		exists = false
	}
	if exists {
		return false, nil
	}
	if err = s.client.Schema().ClassCreator().WithClass(NewClass(args)).Do(ctx); err != nil {
		return false, fmt.Errorf("db: failed to create class %s: %w", args.Class, err)
	}
	return true, nil
}
