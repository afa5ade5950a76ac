package models

// Document is a source document before it is split into chunks.
type Document struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Summary string `json:"summary"`
}
