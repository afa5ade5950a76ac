package weaviatesearch

// Version is overridden at build time with -ldflags "-X github.com/a-h/weaviatesearch.Version=...".
var Version = "v0.1.0"
