package main

import (
	"context"
	"fmt"

	"github.com/a-h/weaviatesearch"
)

type VersionCommand struct {
}

func (c VersionCommand) Run(ctx context.Context) (err error) {
	fmt.Println(weaviatesearch.Version)
	return nil
}
