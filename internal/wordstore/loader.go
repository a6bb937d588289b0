package wordstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/abhisek/wordiz/internal/vocab"
)

// Loader fetches one page of words for a study mode. It keeps no state
// between calls.
type Loader struct {
	client *Client
	logger *zap.Logger
}

// NewLoader returns a Loader backed by client.
func NewLoader(client *Client, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{client: client, logger: logger}
}

// LoadBatch issues exactly one GET for the given mode and page.
//
// Rejected and unreadable payloads are normalized to an empty batch with a
// single page and logged. Only transport failures are returned as errors.
func (l *Loader) LoadBatch(ctx context.Context, mode vocab.Mode, page int) (vocab.Batch, error) {
	op, path, query, err := endpoint(mode, page)
	if err != nil {
		return vocab.Batch{}, err
	}

	body, err := l.client.get(ctx, op, path, query)
	if err != nil {
		return vocab.Batch{}, err
	}

	batch, err := DecodeBatch(op, body)
	if err != nil {
		var rejected *RejectedError
		if errors.As(err, &rejected) {
			l.logger.Warn("word store rejected batch request",
				zap.String("mode", string(mode)),
				zap.Int("page", page),
				zap.String("message", rejected.Message))
		} else {
			l.logger.Warn("unreadable batch payload",
				zap.String("mode", string(mode)),
				zap.Int("page", page),
				zap.Error(err))
		}
		return vocab.EmptyBatch(), nil
	}

	l.logger.Debug("batch loaded",
		zap.String("mode", string(mode)),
		zap.Int("page", page),
		zap.Int("words", batch.Len()),
		zap.Int("total_pages", batch.TotalPages))
	return batch, nil
}

func endpoint(mode vocab.Mode, page int) (op, path string, query url.Values, err error) {
	if page < 1 {
		page = 1
	}
	switch mode {
	case vocab.ModeLearn:
		return "get_learn_words", "/get_learn_words", url.Values{"page": {strconv.Itoa(page)}}, nil
	case vocab.ModeExam:
		return "get_exam_words", "/get_exam_words", nil, nil
	case vocab.ModeReview:
		return "get_review_words", "/get_review_words", url.Values{"page": {strconv.Itoa(page)}}, nil
	}
	return "", "", nil, fmt.Errorf("no word list for mode %q", mode)
}
