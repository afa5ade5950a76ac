package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/jsonapi"
	"github.com/a-h/respond"
	"github.com/a-h/weaviatesearch/gateway"
	searchpost "github.com/a-h/weaviatesearch/handlers/search/post"
	"github.com/a-h/weaviatesearch/models"
)

// New creates a client for a search host. The token is the host's capability
// token, never the backend credential.
func New(baseURL, token string) Client {
	return Client{
		baseURL: baseURL,
		token:   token,
	}
}

type Client struct {
	baseURL string
	token   string
}

// SearchPost runs a search on the host. Blank queries are rejected without a
// request. Host failures are mapped back to the gateway error types.
func (c Client) SearchPost(ctx context.Context, req models.SearchPostRequest) (resp models.SearchPostResponse, err error) {
	if strings.TrimSpace(req.Query) == "" {
		return resp, &gateway.ValidationError{Reason: "query is empty"}
	}
	url, err := jsonapi.URL(c.baseURL).Path("search").String()
	if err != nil {
		return resp, &gateway.ConfigurationError{Field: "host URL", Reason: err.Error()}
	}
	resp, err = jsonapi.Post[models.SearchPostRequest, models.SearchPostResponse](ctx, url, req, jsonapi.WithRequestHeader("Authorization", "Bearer "+c.token))
	if err != nil {
		return resp, mapError(err)
	}
	return resp, nil
}

func mapError(err error) error {
	var ise jsonapi.InvalidStatusError
	if !errors.As(err, &ise) {
		if errors.Is(err, context.DeadlineExceeded) {
			return &gateway.BackendError{Cause: gateway.CauseTimeout, Err: err}
		}
		if errors.Is(err, context.Canceled) {
			return &gateway.BackendError{Cause: gateway.CauseCancelled, Err: err}
		}
		return &gateway.BackendError{Cause: gateway.CauseConnectionFailed, Err: fmt.Errorf("client: host request failed: %w", err)}
	}
	var body respond.Error
	_ = json.Unmarshal([]byte(ise.Body), &body)
	switch {
	case ise.Status == http.StatusBadRequest && body.Message == searchpost.MessageEmptyQuery:
		return &gateway.ValidationError{Reason: "query is empty"}
	case ise.Status == http.StatusUnauthorized:
		return &gateway.ConfigurationError{Field: "host token", Reason: "was rejected by the host"}
	case ise.Status == http.StatusInternalServerError && body.Message == searchpost.MessageNotConfigured:
		return &gateway.ConfigurationError{Field: "host", Reason: "search is not configured"}
	case ise.Status == http.StatusGatewayTimeout:
		return &gateway.BackendError{Cause: gateway.CauseTimeout, Err: ise}
	}
	return &gateway.BackendError{Cause: gateway.CauseRequestFailed, Err: ise}
}
