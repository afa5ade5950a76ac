package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/weaviatesearch/db"
	"github.com/a-h/weaviatesearch/models"
	"github.com/pluja/pocketbase"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/textsplitter"
	"gopkg.in/yaml.v3"
)

type ImportCommand struct {
	WeaviateFlags        `embed:""`
	Source               string `help:"Where to import documents from." enum:"wikipedia,pocketbase" default:"wikipedia"`
	Article              string `help:"The Wikipedia article to import, e.g. Albert_Einstein." env:"ARTICLE" default:""`
	WikimediaUsername    string `help:"The Wikimedia Enterprise username." env:"WIKIMEDIA_USERNAME" default:""`
	WikimediaPassword    string `help:"The Wikimedia Enterprise password." env:"WIKIMEDIA_PASSWORD" default:""`
	PocketbaseURL        string `help:"The URL of the Pocketbase server." env:"POCKETBASE_URL" default:"http://localhost:8080"`
	ID                   string `help:"The ID of the document to import if you just want to import a single doc." env:"ID" default:""`
	PocketbaseCollection string `help:"The name of the Pocketbase collection to export from." env:"POCKETBASE_COLLECTION" default:"entities"`
	Expand               string `help:"The fields to expand." env:"EXPAND" default:""`
	Files                string `help:"Comma separated list of fields that contain Pocketbase file references." env:"FILES" default:""`
	ChunkSize            int    `help:"The maximum size of each chunk." env:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap         int    `help:"The overlap between chunks." env:"CHUNK_OVERLAP" default:"100"`
	BatchSize            int    `help:"The number of chunks to write per batch." env:"BATCH_SIZE" default:"100"`
	Recreate             bool   `help:"Delete and recreate the Weaviate class before importing." env:"RECREATE" default:"false"`
	DryRun               bool   `help:"Do not actually import the documents." env:"DRY_RUN" default:"false"`
	LogLevel             string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c ImportCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)
	docs, docsErr := c.documents(ctx)
	return c.run(ctx, log, docs, docsErr)
}

// run splits each document and writes the chunks to Weaviate. docsErr is
// checked once all documents have been read.
func (c ImportCommand) run(ctx context.Context, log *slog.Logger, docs iter.Seq[models.Document], docsErr func() error) (err error) {
	if c.DryRun {
		for doc := range docs {
			chunks, err := split(doc, c.ChunkSize, c.ChunkOverlap)
			if err != nil {
				return fmt.Errorf("failed to split %q: %w", doc.Title, err)
			}
			log.Info("skipping document import in dry run mode", slog.String("url", doc.URL), slog.String("title", doc.Title), slog.Int("chunks", len(chunks)))
		}
		return docsErr()
	}

	connector, err := c.Connector()
	if err != nil {
		return err
	}
	session, err := connector.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to weaviate: %w", err)
	}
	defer func() {
		err = errors.Join(err, session.Close())
	}()
	created, err := session.EnsureClass(ctx, db.ClassArgs{
		Class:    c.Collection,
		Fields:   c.Fields(),
		Recreate: c.Recreate,
	})
	if err != nil {
		return err
	}
	log.Info("class ready", slog.String("class", c.Collection), slog.Bool("created", created))

	for doc := range docs {
		chunks, err := split(doc, c.ChunkSize, c.ChunkOverlap)
		if err != nil {
			return fmt.Errorf("failed to split %q: %w", doc.Title, err)
		}
		log.Info("importing document", slog.String("url", doc.URL), slog.String("title", doc.Title), slog.Int("chunks", len(chunks)))
		written, err := session.ChunksPut(ctx, db.ChunksPutArgs{
			Class:     c.Collection,
			Fields:    c.Fields(),
			Chunks:    chunks,
			BatchSize: c.BatchSize,
		})
		if err != nil {
			return fmt.Errorf("failed to put chunks, %d of %d written: %w", written, len(chunks), err)
		}
		log.Info("document imported", slog.String("url", doc.URL), slog.Int("chunks", written))
	}
	return docsErr()
}

// documents returns the documents from the selected source. The returned
// function reports any error once iteration has finished.
func (c ImportCommand) documents(ctx context.Context) (docs iter.Seq[models.Document], errFunc func() error) {
	if c.Source == "pocketbase" {
		pbe := NewPocketbaseExporter(c.PocketbaseURL, pocketbase.NewClient(c.PocketbaseURL), c.PocketbaseCollection, c.Expand, c.Files)
		docs = func(yield func(models.Document) bool) {
			for doc := range pbe.Export(ctx) {
				if c.ID != "" && doc.ID != c.ID {
					continue
				}
				if !yield(doc.Document) {
					return
				}
			}
		}
		return docs, func() error { return pbe.Error }
	}
	var fetchErr error
	wf := NewWikipediaFetcher(c.WikimediaUsername, c.WikimediaPassword)
	docs = func(yield func(models.Document) bool) {
		var doc models.Document
		doc, fetchErr = wf.Fetch(ctx, c.Article)
		if fetchErr != nil {
			return
		}
		yield(doc)
	}
	return docs, func() error { return fetchErr }
}

// split chunks the document text. Chunk indexes start at zero.
func split(doc models.Document, size, overlap int) (chunks []db.Chunk, err error) {
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be less than chunk size %d", overlap, size)
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(size),
		textsplitter.WithChunkOverlap(overlap),
	)
	texts, err := splitter.SplitText(doc.Text)
	if err != nil {
		return nil, err
	}
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		chunks = append(chunks, db.Chunk{
			Title: doc.Title,
			Text:  text,
			Index: int64(len(chunks)),
		})
	}
	return chunks, nil
}

func NewPocketbaseExporter(baseURL string, client *pocketbase.Client, collection, expand, files string) *PocketbaseExporter {
	return &PocketbaseExporter{
		baseURL:    baseURL,
		client:     client,
		collection: collection,
		expand:     expand,
		files:      strings.Split(files, ","),
		PageSize:   10,
		Error:      nil,
	}
}

type PocketbaseExporter struct {
	// baseURL for downloading files, e.g. http://localhost:8090
	baseURL    string
	client     *pocketbase.Client
	collection string
	expand     string
	files      []string
	PageSize   int
	Error      error
}

func (p *PocketbaseExporter) Export(ctx context.Context) iter.Seq[ExportedDocument] {
	var page int
	return func(yield func(ExportedDocument) bool) {
		for {
			if ctx.Err() != nil {
				return
			}
			if p.Error != nil {
				return
			}
			page++
			response, err := p.client.List(p.collection, pocketbase.ParamsList{
				Page:   page,
				Size:   p.PageSize,
				Sort:   "-created",
				Expand: p.expand,
			})
			if err != nil {
				p.Error = err
				return
			}
			if len(response.Items) == 0 {
				return
			}
			for _, item := range response.Items {
				if !yield(p.createDocument(ctx, item)) {
					return
				}
			}
		}
	}
}

func useItemOrDefault(item map[string]any, keys []string, defaultValue string) string {
	for _, key := range keys {
		if value, ok := item[key].(string); ok {
			return value
		}
	}
	return defaultValue
}

type ExportedDocument struct {
	ID       string
	Document models.Document
}

func (p *PocketbaseExporter) createDocument(ctx context.Context, item map[string]any) (ed ExportedDocument) {
	ed.ID = item["id"].(string)
	ed.Document.URL = useItemOrDefault(item, []string{"url"}, fmt.Sprintf("%s/%s", url.PathEscape(p.collection), url.PathEscape(item["id"].(string))))
	ed.Document.Title = useItemOrDefault(item, []string{"title", "name"}, "Untitled")
	recursivelyApplyExpandedFields(item)
	recursivelyRemoveKeys(item, []string{"id", "collectionId", "collectionName", "created", "updated"})
	ed.Document.Summary = useItemOrDefault(item, []string{"summary"}, "")

	sb := new(strings.Builder)
	_ = yaml.NewEncoder(sb).Encode(item)

	for _, fileFieldName := range p.files {
		if ctx.Err() != nil {
			return
		}
		fileNames, fileNamesFieldExists := item[fileFieldName].([]any)
		if !fileNamesFieldExists || len(fileNames) == 0 {
			continue
		}
		for _, fileName := range fileNames {
			// Check if the file name is a string.
			fileName, ok := fileName.(string)
			if !ok {
				p.Error = fmt.Errorf("file name is not a string")
				continue
			}
			if !strings.EqualFold(filepath.Ext(fileName), ".pdf") {
				continue
			}
			// Get the file text.
			fileText, err := p.getPDFText(ctx, p.collection, ed.ID, fileName)
			if err != nil {
				p.Error = fmt.Errorf("failed to get file text: %w", err)
				continue
			}
			sb.WriteString(fileText)
		}
	}

	ed.Document.Text = sb.String()

	return
}

func (p *PocketbaseExporter) getPDFText(ctx context.Context, collection, id, filename string) (string, error) {
	// Start download.
	downloadURL, err := createURL(p.baseURL, "api", "files", collection, id, filename)
	if err != nil {
		return "", fmt.Errorf("failed to create download URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download file: unexpected status %d", resp.StatusCode)
	}

	// Create temp file.
	pdfFile, err := os.CreateTemp("", "weaviatesearch-import-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer pdfFile.Close()
	defer os.Remove(pdfFile.Name())

	// Write the HTTP response to the file.
	fileSize, err := io.Copy(pdfFile, resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	// Read the PDF text.
	pdf := documentloaders.NewPDF(pdfFile, fileSize)
	docs, err := pdf.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load PDF: %w", err)
	}

	// Create the output.
	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(doc.PageContent)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func createURL(baseURL string, pathSegments ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse baseURL: %w", err)
	}
	u.Path = strings.Join(pathSegments, "/")
	return u.String(), nil
}

func applyExpandedFields(data map[string]any) (changed bool) {
	for key, value := range data {
		if key == "expand" {
			expandMap, ok := value.(map[string]any)
			if !ok {
				continue
			}

			// Check parent keys for matches in expand.
			for parentKey := range data {
				if parentKey == "expand" {
					continue
				}
				if expandedValue, found := expandMap[parentKey]; found {
					data[parentKey] = expandedValue
					changed = true
				}
			}

			// Remove expand key.
			delete(data, "expand")
			changed = true
		} else if nestedMap, ok := value.(map[string]any); ok {
			// Recurse into nested maps.
			if applyExpandedFields(nestedMap) {
				changed = true
			}
		} else if nestedSlice, ok := value.([]any); ok {
			// Recurse into slices.
			for _, item := range nestedSlice {
				if itemMap, isMap := item.(map[string]any); isMap {
					if applyExpandedFields(itemMap) {
						changed = true
					}
				}
			}
		}
	}

	return changed
}

func recursivelyApplyExpandedFields(data map[string]any) {
	for {
		if changesMade := applyExpandedFields(data); !changesMade {
			return
		}
	}
}

func recursivelyRemoveKeys(item any, keys []string) {
	switch item := item.(type) {
	case map[string]any:
		for _, key := range keys {
			delete(item, key)
		}
		var emptyKeys []string
		for k, v := range item {
			switch v := v.(type) {
			case map[string]any:
				if len(v) == 0 {
					emptyKeys = append(emptyKeys, k)
				}
			case []any:
				if len(v) == 0 {
					emptyKeys = append(emptyKeys, k)
				}
			case string:
				if v == "" {
					emptyKeys = append(emptyKeys, k)
				}
			}
			recursivelyRemoveKeys(v, keys)
		}
		for _, key := range emptyKeys {
			delete(item, key)
		}
	case []any:
		for _, value := range item {
			recursivelyRemoveKeys(value, keys)
		}
	}
}
