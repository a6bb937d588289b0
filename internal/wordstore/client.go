package wordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/wordiz/internal/vocab"
)

// DefaultTimeout bounds every word store request.
const DefaultTimeout = 15 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Client talks to the remote word store over its JSON endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	cookie     string
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the bounded wait applied to every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSessionCookie sends the given Cookie header with every request.
func WithSessionCookie(cookie string) Option {
	return func(c *Client) { c.cookie = cookie }
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client for the word store rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the root URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// successEnvelope is the minimal shape of a write acknowledgement.
type successEnvelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ReportMistakes forwards the learner's unknown words to the mistake list.
// Any failure is returned; the caller must not advance on error.
func (c *Client) ReportMistakes(ctx context.Context, words []string) error {
	const op = "update_mistakes_batch"
	body, err := c.post(ctx, op, "/update_mistakes_batch", map[string][]string{"words": words})
	if err != nil {
		return err
	}

	var env successEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &MalformedResponseError{Op: op, Body: body, Err: err}
	}
	if env.Success == nil {
		return &MalformedResponseError{Op: op, Body: body, Err: errors.New("missing success field")}
	}
	if !*env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return &RejectedError{Op: op, Message: msg}
	}
	return nil
}

// Speak asks the server to pronounce a single word. Only the status code
// matters; the body is ignored.
func (c *Client) Speak(ctx context.Context, word string) error {
	_, err := c.postUnbounded(ctx, "speak", "/speak", map[string]string{"word": word})
	return err
}

// Stats fetches the learner's progress counters.
func (c *Client) Stats(ctx context.Context) (vocab.Stats, error) {
	const op = "get_stats"
	body, err := c.get(ctx, op, "/get_stats", nil)
	if err != nil {
		return vocab.Stats{}, err
	}

	var env struct {
		Success bool         `json:"success"`
		Stats   *vocab.Stats `json:"stats"`
		Error   string       `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return vocab.Stats{}, &MalformedResponseError{Op: op, Body: body, Err: err}
	}
	if !env.Success || env.Stats == nil {
		return vocab.Stats{}, &RejectedError{Op: op, Message: env.Error}
	}
	return *env.Stats, nil
}

// ReviewWords fetches the full mistake list. Both the canonical envelope
// and the legacy bare array are accepted.
func (c *Client) ReviewWords(ctx context.Context) ([]vocab.ReviewWord, error) {
	const op = "get_all_review_words"
	body, err := c.get(ctx, op, "/get_all_review_words", nil)
	if err != nil {
		return nil, err
	}
	words, err := decodeReviewList(body)
	if err != nil {
		return nil, &MalformedResponseError{Op: op, Body: body, Err: err}
	}
	return words, nil
}

// get issues a bounded GET and returns the raw body of a 2xx response.
func (c *Client) get(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.do(ctx, op, http.MethodGet, u, nil, true)
}

// post issues a bounded JSON POST.
func (c *Client) post(ctx context.Context, op, path string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", op, err)
	}
	return c.do(ctx, op, http.MethodPost, c.baseURL+path, b, true)
}

// postUnbounded issues a JSON POST that is only limited by ctx. Audio
// synthesis has no intrinsic timeout; long words on slow engines must not
// be cut off.
func (c *Client) postUnbounded(ctx context.Context, op, path string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", op, err)
	}
	return c.do(ctx, op, http.MethodPost, c.baseURL+path, b, false)
}

func (c *Client) do(ctx context.Context, op, method, u string, body []byte, bounded bool) ([]byte, error) {
	if bounded {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("word store request failed",
			zap.String("op", op),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &NetworkError{Op: op, Timeout: true, Err: err}
		}
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &NetworkError{Op: op, Timeout: true, Err: err}
		}
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("word store request",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{Op: op, Status: resp.StatusCode}
	}
	return data, nil
}
