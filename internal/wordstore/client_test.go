package wordstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/wordiz/internal/vocab"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestLoadBatchEndpoints(t *testing.T) {
	tests := []struct {
		mode     vocab.Mode
		page     int
		wantPath string
		wantPage string
	}{
		{vocab.ModeLearn, 3, "/get_learn_words", "3"},
		{vocab.ModeExam, 1, "/get_exam_words", ""},
		{vocab.ModeReview, 2, "/get_review_words", "2"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			var calls atomic.Int32
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, tt.wantPath, r.URL.Path)
				assert.Equal(t, tt.wantPage, r.URL.Query().Get("page"))
				assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
				_, _ = w.Write([]byte(`{"words":["a","b"],"totalPages":5}`))
			})

			b, err := NewLoader(client, nil).LoadBatch(context.Background(), tt.mode, tt.page)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, b.Words)
			assert.Equal(t, 5, b.TotalPages)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestLoadBatchRejectedIsEmpty(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	})

	b, err := NewLoader(client, nil).LoadBatch(context.Background(), vocab.ModeReview, 1)
	require.NoError(t, err)
	assert.Empty(t, b.Words)
	assert.Equal(t, 1, b.TotalPages)
}

func TestLoadBatchUnreadableIsEmpty(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	b, err := NewLoader(client, nil).LoadBatch(context.Background(), vocab.ModeLearn, 1)
	require.NoError(t, err)
	assert.Empty(t, b.Words)
	assert.Equal(t, 1, b.TotalPages)
}

func TestLoadBatchHTTPError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := NewLoader(client, nil).LoadBatch(context.Background(), vocab.ModeLearn, 1)
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr), "got %v", err)
	assert.Equal(t, http.StatusInternalServerError, netErr.Status)
	assert.False(t, netErr.Timeout)
}

func TestLoadBatchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	client := New(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := NewLoader(client, nil).LoadBatch(context.Background(), vocab.ModeExam, 1)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr), "got %v", err)
	assert.True(t, netErr.Timeout)
}

func TestLoadBatchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewLoader(New(url), nil).LoadBatch(context.Background(), vocab.ModeLearn, 1)
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr), "got %v", err)
}

func TestLoadBatchListenHasNoEndpoint(t *testing.T) {
	_, err := NewLoader(New("http://127.0.0.1:1"), nil).LoadBatch(context.Background(), vocab.ModeListen, 1)
	require.Error(t, err)
}

func TestReportMistakes(t *testing.T) {
	var got []string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/update_mistakes_batch", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var req struct {
			Words []string `json:"words"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		got = req.Words
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	require.NoError(t, client.ReportMistakes(context.Background(), []string{"brave"}))
	assert.Equal(t, []string{"brave"}, got)
}

func TestReportMistakesFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		checkFn func(t *testing.T, err error)
	}{
		{
			name:   "rejected",
			status: http.StatusOK,
			body:   `{"success":false,"error":"not logged in"}`,
			checkFn: func(t *testing.T, err error) {
				var e *RejectedError
				require.True(t, errors.As(err, &e), "got %v", err)
				assert.Equal(t, "not logged in", e.Message)
			},
		},
		{
			name:   "malformed",
			status: http.StatusOK,
			body:   `ok`,
			checkFn: func(t *testing.T, err error) {
				var e *MalformedResponseError
				require.True(t, errors.As(err, &e), "got %v", err)
			},
		},
		{
			name:   "missing success",
			status: http.StatusOK,
			body:   `{}`,
			checkFn: func(t *testing.T, err error) {
				var e *MalformedResponseError
				require.True(t, errors.As(err, &e), "got %v", err)
			},
		},
		{
			name:   "http error",
			status: http.StatusBadGateway,
			body:   ``,
			checkFn: func(t *testing.T, err error) {
				var e *NetworkError
				require.True(t, errors.As(err, &e), "got %v", err)
				assert.Equal(t, http.StatusBadGateway, e.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			err := client.ReportMistakes(context.Background(), []string{"x"})
			require.Error(t, err)
			tt.checkFn(t, err)
		})
	}
}

func TestSessionCookie(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "session=abc", r.Header.Get("Cookie"))
		_, _ = w.Write([]byte(`["a"]`))
	})
	client.cookie = "session=abc"

	_, err := NewLoader(client, nil).LoadBatch(context.Background(), vocab.ModeExam, 1)
	require.NoError(t, err)
}

func TestSpeak(t *testing.T) {
	var word string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/speak", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		word = req["word"]
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.Speak(context.Background(), "zephyr"))
	assert.Equal(t, "zephyr", word)
}

func TestStats(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get_stats", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"stats":{"total":100,"known":40,"review":7,"current_position":41,"completion_percentage":40.5}}`))
	})

	stats, err := client.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, vocab.Stats{Total: 100, Known: 40, Review: 7, CurrentPosition: 41, CompletionPercentage: 40.5}, stats)
}

func TestReviewWords(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get_all_review_words", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"review_words":[{"word":"gale","mistakes":2}]}`))
	})

	words, err := client.ReviewWords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []vocab.ReviewWord{{Word: "gale", Mistakes: 2}}, words)
}
