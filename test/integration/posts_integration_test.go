//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebook/internal/adapters/clients"
	"github.com/jsamuelsen/quotebook/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotebook/internal/domain"
)

// postsAPI serves handler and returns a PostsClient pointed at it. tune may
// adjust the client settings before the client is built.
func postsAPI(t *testing.T, handler http.HandlerFunc, tune func(*clients.Config, *acl.PostsClientConfig)) *acl.PostsClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := remoteConfig(server.URL)
	pc := acl.PostsClientConfig{ServiceName: cfg.ServiceName}

	if tune != nil {
		tune(cfg, &pc)
	}

	client, err := clients.New(cfg)
	require.NoError(t, err)

	pc.Client = client

	return acl.NewPostsClient(pc)
}

func answer(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func singleAttempt(cfg *clients.Config, _ *acl.PostsClientConfig) {
	cfg.Retry.MaxAttempts = 1
}

func TestPosts_FetchTrimsAndCaps(t *testing.T) {
	posts := postsAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet+" /posts", r.Method+" "+r.URL.Path)

		answer(http.StatusOK, `[
			{"userId": 1, "id": 1, "title": "  first title ", "body": "ignored"},
			{"userId": 1, "id": 2, "title": "second title", "body": "ignored"},
			{"userId": 2, "id": 3, "title": "third title", "body": "ignored"}
		]`)(w, r)
	}, func(_ *clients.Config, pc *acl.PostsClientConfig) {
		pc.MaxItems = 2
	})

	quotes, err := posts.FetchQuotes(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.Quote{
		{ID: 1, Text: "first title", Category: acl.DefaultCategory},
		{ID: 2, Text: "second title", Category: acl.DefaultCategory},
	}, quotes)
}

func TestPosts_PublishSendsPostShape(t *testing.T) {
	posts := postsAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost+" /posts", r.Method+" "+r.URL.Path)

		var sent map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		assert.Equal(t, "Stay hungry.", sent["title"])
		assert.Equal(t, "Wisdom", sent["body"])
		assert.EqualValues(t, 7, sent["userId"])

		sent["id"] = 101

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(sent)
	}, func(_ *clients.Config, pc *acl.PostsClientConfig) {
		pc.UserID = 7
	})

	ack, err := posts.PublishQuote(context.Background(), domain.Quote{Text: "Stay hungry.", Category: "Wisdom"})

	require.NoError(t, err)
	assert.Equal(t, domain.Quote{ID: 101, Text: "Stay hungry.", Category: "Wisdom"}, ack)
}

func TestPosts_FailureKinds(t *testing.T) {
	tests := []struct {
		name string
		api  http.HandlerFunc
		kind error
	}{
		{"404", answer(http.StatusNotFound, ""), domain.ErrNotFound},
		{"400 with details", answer(http.StatusBadRequest, `{"error": {"code": "INVALID", "message": "bad", "details": {"title": "too long"}}}`), domain.ErrValidation},
		{"429", answer(http.StatusTooManyRequests, ""), domain.ErrUnavailable},
		{"500", answer(http.StatusInternalServerError, "internal server error"), domain.ErrUnavailable},
		{"html page", answer(http.StatusOK, `<html>maintenance</html>`), domain.ErrUnavailable},
		{"object instead of list", answer(http.StatusOK, `{"id": 1, "title": "x"}`), domain.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := postsAPI(t, tt.api, singleAttempt)

			quotes, err := posts.FetchQuotes(context.Background())

			require.ErrorIs(t, err, tt.kind)
			assert.Nil(t, quotes)
		})
	}
}

func TestPosts_InvalidPostsAreDropped(t *testing.T) {
	posts := postsAPI(t, answer(http.StatusOK, `[
		{"id": 1, "title": "ok"},
		{"id": 2, "title": ""},
		{"title": "no id"},
		{"id": 3, "title": "fine"}
	]`), nil)

	quotes, err := posts.FetchQuotes(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.Quote{
		{ID: 1, Text: "ok", Category: acl.DefaultCategory},
		{ID: 3, Text: "fine", Category: acl.DefaultCategory},
	}, quotes)
}

func TestPosts_FailedPublishIsSentOnce(t *testing.T) {
	var calls atomic.Int32

	posts := postsAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, nil)

	_, err := posts.PublishQuote(context.Background(), domain.Quote{Text: "Ship it.", Category: "Wisdom"})

	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPosts_OpenCircuitSkipsNetwork(t *testing.T) {
	var calls atomic.Int32

	posts := postsAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, func(cfg *clients.Config, _ *acl.PostsClientConfig) {
		cfg.Retry.MaxAttempts = 1
		cfg.Circuit.MaxFailures = 2
	})

	for range 2 {
		_, _ = posts.FetchQuotes(context.Background())
	}

	_, err := posts.FetchQuotes(context.Background())

	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Contains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, int32(2), calls.Load())
}

func TestPosts_BlankQuoteNeverSent(t *testing.T) {
	posts := postsAPI(t, func(http.ResponseWriter, *http.Request) {
		t.Error("remote called for a blank quote")
	}, nil)

	_, err := posts.PublishQuote(context.Background(), domain.Quote{Text: "  ", Category: "Wisdom"})

	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestPosts_HealthFollowsRemote(t *testing.T) {
	var down atomic.Bool

	posts := postsAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		answer(http.StatusOK, `[]`)(w, r)
	}, singleAttempt)

	assert.Equal(t, "quote-source", posts.Name())
	require.NoError(t, posts.Check(context.Background()))

	down.Store(true)
	assert.Error(t, posts.Check(context.Background()))
}
