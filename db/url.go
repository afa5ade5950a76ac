package db

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseWeaviateURL parses an endpoint such as https://my-cluster.weaviate.network.
// The scheme is required, paths are ignored by the client so they are rejected.
func ParseWeaviateURL(s string) (u WeaviateURL, err error) {
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return u, fmt.Errorf("db: parse weaviate URL failed: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return u, fmt.Errorf("db: parse weaviate URL failed: invalid scheme %q, include https://", parsed.Scheme)
	}
	if parsed.Host == "" {
		return u, fmt.Errorf("db: parse weaviate URL failed: missing host")
	}
	if p := strings.Trim(parsed.Path, "/"); p != "" {
		return u, fmt.Errorf("db: parse weaviate URL failed: unexpected path %q", parsed.Path)
	}
	return WeaviateURL{URL: parsed}, nil
}

type WeaviateURL struct {
	URL *url.URL
}

func (wu WeaviateURL) Scheme() string {
	return wu.URL.Scheme
}

// Host includes the port, if one was given.
func (wu WeaviateURL) Host() string {
	return wu.URL.Host
}

// String omits any user info.
func (wu WeaviateURL) String() string {
	return (&url.URL{Scheme: wu.URL.Scheme, Host: wu.URL.Host}).String()
}
