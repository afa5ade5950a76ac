package render

import (
	"errors"
	"strconv"

	"github.com/a-h/weaviatesearch/gateway"
	"github.com/a-h/weaviatesearch/models"
)

const (
	LoadingMessage       = "Loading results..."
	NoResultsMessage     = "No results found."
	ValidationMessage    = "Please enter a search term."
	ConfigurationMessage = "Search is not configured. Check WEAVIATE_URL and WEAVIATE_API_KEY."
	ErrorMessage         = "An error occurred while searching."
)

// Placeholders for missing fields.
const (
	NoText  = "No text available"
	NoIndex = "No index"
	NoID    = "No ID available"
	NoScore = "No score"
)

// DisplayModel describes what the search page shows. At most one of
// StatusLine, Error and Message is set. Items are only set on success.
type DisplayModel struct {
	StatusLine string        `json:"statusLine,omitempty"`
	Error      string        `json:"error,omitempty"`
	Message    string        `json:"message,omitempty"`
	Items      []DisplayItem `json:"items,omitempty"`
}

type DisplayItem struct {
	ChunkIndex string `json:"chunkIndex"`
	Text       string `json:"text"`
	ID         string `json:"id"`
	Score      string `json:"score"`
	Title      string `json:"title,omitempty"`
}

type Field struct {
	Label string
	Value string
}

// Fields returns the labeled fields in display order. Title is only included
// when the match has one.
func (di DisplayItem) Fields() (fields []Field) {
	if di.Title != "" {
		fields = append(fields, Field{Label: "Title", Value: di.Title})
	}
	return append(fields,
		Field{Label: "Chunk Index", Value: di.ChunkIndex},
		Field{Label: "Text", Value: di.Text},
		Field{Label: "ID", Value: di.ID},
		Field{Label: "Score", Value: di.Score},
	)
}

// Render is a pure function of the status. Error details are never copied
// into the model, the caller is responsible for logging them.
func Render(status Status) (m DisplayModel) {
	switch status.Kind {
	case Loading:
		m.StatusLine = LoadingMessage
	case Failed:
		m.Error = ErrorText(status.Err)
	case Succeeded:
		if len(status.Results) == 0 {
			m.Message = NoResultsMessage
			return m
		}
		m.Items = make([]DisplayItem, len(status.Results))
		for i, r := range status.Results {
			m.Items[i] = Item(r)
		}
	}
	return m
}

// ErrorText maps an error to the message shown to the user.
func ErrorText(err error) string {
	var ve *gateway.ValidationError
	if errors.As(err, &ve) {
		return ValidationMessage
	}
	var ce *gateway.ConfigurationError
	if errors.As(err, &ce) {
		return ConfigurationMessage
	}
	return ErrorMessage
}

func Item(r models.SearchResult) (di DisplayItem) {
	di.ChunkIndex = NoIndex
	if r.ChunkIndex != nil {
		di.ChunkIndex = strconv.FormatInt(*r.ChunkIndex, 10)
	}
	di.Text = NoText
	if r.Text != nil {
		di.Text = Sanitize(*r.Text)
	}
	di.ID = NoID
	if r.ID != nil && *r.ID != "" {
		di.ID = *r.ID
	}
	di.Score = Score(r.Score)
	if r.Title != nil {
		di.Title = Sanitize(*r.Title)
	}
	return di
}

// Score formats to two decimal places.
func Score(score *float64) string {
	if score == nil {
		return NoScore
	}
	return strconv.FormatFloat(*score, 'f', 2, 64)
}
