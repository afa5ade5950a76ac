package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/a-h/jsonapi"
	"github.com/a-h/weaviatesearch/models"
)

const (
	wikimediaAuthURL = "https://auth.enterprise.wikimedia.com/v1"
	wikimediaAPIURL  = "https://api.enterprise.wikimedia.com/v2"
)

var ErrArticleNotFound = errors.New("article not found")

func NewWikipediaFetcher(username, password string) *WikipediaFetcher {
	return &WikipediaFetcher{
		AuthURL:  wikimediaAuthURL,
		APIURL:   wikimediaAPIURL,
		Project:  "enwiki",
		username: username,
		password: password,
	}
}

// WikipediaFetcher downloads article wikitext from the Wikimedia Enterprise API.
type WikipediaFetcher struct {
	AuthURL  string
	APIURL   string
	Project  string
	username string
	password string
}

type wikimediaLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type wikimediaLoginResponse struct {
	AccessToken string `json:"access_token"`
}

type wikimediaFilter struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type wikimediaArticleRequest struct {
	Filters []wikimediaFilter `json:"filters"`
	Fields  []string          `json:"fields"`
	Limit   int               `json:"limit"`
}

type wikimediaArticle struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ArticleBody struct {
		Wikitext string `json:"wikitext"`
	} `json:"article_body"`
}

func (f *WikipediaFetcher) login(ctx context.Context) (token string, err error) {
	if f.username == "" || f.password == "" {
		return "", fmt.Errorf("WIKIMEDIA_USERNAME and WIKIMEDIA_PASSWORD must be set")
	}
	u, err := jsonapi.URL(f.AuthURL).Path("login").String()
	if err != nil {
		return "", fmt.Errorf("failed to create login URL: %w", err)
	}
	resp, err := jsonapi.Post[wikimediaLoginRequest, wikimediaLoginResponse](ctx, u, wikimediaLoginRequest{
		Username: f.username,
		Password: f.password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to authenticate: %w", err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("failed to authenticate: no access token returned")
	}
	return resp.AccessToken, nil
}

// Fetch returns the named article, e.g. Albert_Einstein.
func (f *WikipediaFetcher) Fetch(ctx context.Context, name string) (doc models.Document, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return doc, fmt.Errorf("article name is required")
	}
	token, err := f.login(ctx)
	if err != nil {
		return doc, err
	}
	u, err := jsonapi.URL(f.APIURL).Path("articles", name).String()
	if err != nil {
		return doc, fmt.Errorf("failed to create article URL: %w", err)
	}
	articles, err := jsonapi.Post[wikimediaArticleRequest, []wikimediaArticle](ctx, u, wikimediaArticleRequest{
		Filters: []wikimediaFilter{{Field: "is_part_of.identifier", Value: f.Project}},
		Fields:  []string{"name", "url", "article_body"},
		Limit:   1,
	}, jsonapi.WithRequestHeader("Authorization", "Bearer "+token))
	if err != nil {
		return doc, fmt.Errorf("failed to fetch article: %w", err)
	}
	if len(articles) == 0 || articles[0].ArticleBody.Wikitext == "" {
		return doc, fmt.Errorf("%s: %w", name, ErrArticleNotFound)
	}
	a := articles[0]
	doc.Title = a.Name
	if doc.Title == "" {
		doc.Title = strings.ReplaceAll(name, "_", " ")
	}
	doc.URL = a.URL
	doc.Text = a.ArticleBody.Wikitext
	return doc, nil
}
