package gateway

import (
	"encoding/json"
	"math"

	"github.com/a-h/weaviatesearch/models"
)

// RawMatch is a single object as returned by the backend, before normalization.
// Properties are top level keys, metadata lives under "_additional".
type RawMatch map[string]any

// Normalize maps a raw match to a SearchResult. Missing or wrongly typed
// values become nil.
func Normalize(raw RawMatch, fields Fields) (r models.SearchResult) {
	if fields.Text != "" {
		r.Text = stringValue(raw[fields.Text])
	}
	if fields.Title != "" {
		r.Title = stringValue(raw[fields.Title])
	}
	if fields.ChunkIndex != "" {
		r.ChunkIndex = intValue(raw[fields.ChunkIndex])
	}
	additional, ok := raw["_additional"].(map[string]any)
	if !ok {
		return r
	}
	r.ID = stringValue(additional["id"])
	r.Distance = floatValue(additional["distance"])
	r.Score = floatValue(additional["certainty"])
	if r.Score == nil {
		r.Score = floatValue(additional["score"])
	}
	return r
}

// NormalizeAll keeps the backend order.
func NormalizeAll(raw []RawMatch, fields Fields) []models.SearchResult {
	results := make([]models.SearchResult, len(raw))
	for i, m := range raw {
		results[i] = Normalize(m, fields)
	}
	return results
}

func stringValue(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func floatValue(v any) *float64 {
	var f float64
	switch v := v.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		var err error
		if f, err = v.Float64(); err != nil {
			return nil
		}
	case string:
		// Hybrid and BM25 searches report the score as a string.
		var err error
		if f, err = json.Number(v).Float64(); err != nil {
			return nil
		}
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func intValue(v any) *int64 {
	var i int64
	switch v := v.(type) {
	case int64:
		i = v
	case int:
		i = int64(v)
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil
		}
		i = int64(v)
	case json.Number:
		var err error
		if i, err = v.Int64(); err != nil {
			return nil
		}
	default:
		return nil
	}
	return &i
}
