package wordstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/wordiz/internal/schemas"
	"github.com/abhisek/wordiz/internal/vocab"
)

// Shape names one historical layout of a word list response.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeRejected
	ShapeReview
	ShapeCanonical
	ShapeLegacyArray
)

func (s Shape) String() string {
	switch s {
	case ShapeRejected:
		return "rejected"
	case ShapeReview:
		return "review"
	case ShapeCanonical:
		return "canonical"
	case ShapeLegacyArray:
		return "legacyArray"
	default:
		return "unknown"
	}
}

var (
	rejectedShape = schemas.Definition{
		Name: "batch_rejected",
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"success"},
			"properties": map[string]any{
				"success": map[string]any{"const": false},
			},
		},
	}

	reviewShape = schemas.Definition{
		Name: "batch_review",
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"review_words"},
			"properties": map[string]any{
				"success": map[string]any{"type": "boolean"},
				"review_words": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []string{"word"},
						"properties": map[string]any{
							"word":     map[string]any{"type": "string"},
							"mistakes": map[string]any{"type": "number"},
						},
					},
				},
				"totalPages": map[string]any{"type": "number"},
			},
		},
	}

	canonicalShape = schemas.Definition{
		Name: "batch_canonical",
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"words"},
			"properties": map[string]any{
				"success": map[string]any{"type": "boolean"},
				"words": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"totalPages": map[string]any{"type": "number"},
			},
		},
	}

	legacyArrayShape = schemas.Definition{
		Name: "batch_legacy_array",
		Schema: map[string]any{
			"type": "array",
		},
	}
)

// errUnrecognized is returned for payloads that match no known shape.
var errUnrecognized = errors.New("payload matches no known word list shape")

// Classify reports which shape a decoded payload has. Rejection is checked
// first so {success:false, words:[...]} never yields words.
func Classify(v any) Shape {
	switch {
	case schemas.Matches(rejectedShape, v):
		return ShapeRejected
	case schemas.Matches(reviewShape, v):
		return ShapeReview
	case schemas.Matches(canonicalShape, v):
		return ShapeCanonical
	case schemas.Matches(legacyArrayShape, v):
		return ShapeLegacyArray
	}
	return ShapeUnknown
}

type canonicalPayload struct {
	Words      []string `json:"words"`
	TotalPages float64  `json:"totalPages"`
	Completed  bool     `json:"completed"`
	Message    string   `json:"message"`
}

type reviewPayload struct {
	ReviewWords []vocab.ReviewWord `json:"review_words"`
	TotalPages  float64            `json:"totalPages"`
	Completed   bool               `json:"completed"`
	Message     string             `json:"message"`
}

type rejectedPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DecodeBatch maps a word list response body to a Batch.
//
// A *RejectedError is returned together with an empty batch when the server
// answered success:false; a *MalformedResponseError when the body is not JSON
// or matches no known shape. Callers that only want the normalized batch can
// ignore the error.
func DecodeBatch(op string, body []byte) (vocab.Batch, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return vocab.EmptyBatch(), &MalformedResponseError{Op: op, Body: body, Err: err}
	}

	shape := Classify(v)
	switch shape {
	case ShapeRejected:
		var p rejectedPayload
		_ = json.Unmarshal(body, &p)
		msg := p.Error
		if msg == "" {
			msg = p.Message
		}
		return vocab.EmptyBatch(), &RejectedError{Op: op, Message: msg}

	case ShapeReview:
		var p reviewPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return vocab.EmptyBatch(), &MalformedResponseError{Op: op, Body: body, Err: err}
		}
		words := make([]string, 0, len(p.ReviewWords))
		for _, rw := range p.ReviewWords {
			words = append(words, rw.Word)
		}
		return newBatch(words, p.TotalPages, p.Completed, p.Message), nil

	case ShapeCanonical:
		var p canonicalPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return vocab.EmptyBatch(), &MalformedResponseError{Op: op, Body: body, Err: err}
		}
		return newBatch(p.Words, p.TotalPages, p.Completed, p.Message), nil

	case ShapeLegacyArray:
		return newBatch(legacyWords(v.([]any)), 0, false, ""), nil
	}

	return vocab.EmptyBatch(), &MalformedResponseError{Op: op, Body: body, Err: errUnrecognized}
}

// legacyWords takes each element's "word" field if present, else the
// element itself when it is a string. Anything else is skipped.
func legacyWords(items []any) []string {
	words := make([]string, 0, len(items))
	for _, item := range items {
		switch it := item.(type) {
		case string:
			words = append(words, it)
		case map[string]any:
			if w, ok := it["word"].(string); ok {
				words = append(words, w)
			}
		}
	}
	return words
}

func newBatch(words []string, totalPages float64, completed bool, message string) vocab.Batch {
	b := vocab.Batch{
		Words:      dedupe(words),
		TotalPages: int(totalPages),
		Completed:  completed,
		Message:    message,
	}
	if b.TotalPages < 1 {
		b.TotalPages = 1
	}
	return b
}

// dedupe drops empty strings and repeats, keeping first occurrence order.
func dedupe(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// decodeReviewList accepts {review_words:[...]} or a bare array of
// {word, mistakes} objects or strings.
func decodeReviewList(body []byte) ([]vocab.ReviewWord, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}

	switch Classify(v) {
	case ShapeRejected:
		return nil, errors.New("server answered success=false")
	case ShapeReview:
		var p reviewPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, err
		}
		if p.ReviewWords == nil {
			return []vocab.ReviewWord{}, nil
		}
		return p.ReviewWords, nil
	case ShapeLegacyArray:
		items := v.([]any)
		out := make([]vocab.ReviewWord, 0, len(items))
		for _, item := range items {
			switch it := item.(type) {
			case string:
				out = append(out, vocab.ReviewWord{Word: it})
			case map[string]any:
				w, ok := it["word"].(string)
				if !ok {
					continue
				}
				n, _ := it["mistakes"].(float64)
				out = append(out, vocab.ReviewWord{Word: w, Mistakes: int(n)})
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("review list: %w", errUnrecognized)
}
