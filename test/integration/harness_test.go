//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebook/internal/adapters/clients"
	"github.com/jsamuelsen/quotebook/internal/adapters/clients/acl"
	httpadapter "github.com/jsamuelsen/quotebook/internal/adapters/http"
	"github.com/jsamuelsen/quotebook/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotebook/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotebook/internal/adapters/storage/session"
	"github.com/jsamuelsen/quotebook/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/platform/config"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

// remoteConfig retries once quickly and opens the breaker after three
// failures, so failure scenarios finish in milliseconds.
func remoteConfig(baseURL string) *clients.Config {
	return &clients.Config{
		ServiceName: "quote-source",
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       100 * time.Millisecond,
			HalfOpenLimit: 2,
		},
	}
}

const defaultPosts = `[
	{"userId": 1, "id": 2, "title": "remote two", "body": ""},
	{"userId": 1, "id": 11, "title": "remote eleven", "body": ""}
]`

// remoteAPI fakes the posts API. Failures can be queued for fetches and
// publishes, and the request ids it receives are recorded.
type remoteAPI struct {
	*httptest.Server

	fetches   atomic.Int32
	published atomic.Int32

	mu           sync.Mutex
	posts        string
	failFetches  int
	failPublish  bool
	requestIDs   []string
	publishedIDs int64
}

func newRemoteAPI(t *testing.T) *remoteAPI {
	t.Helper()

	api := &remoteAPI{posts: defaultPosts, publishedIDs: 100}
	api.Server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.Close)

	return api
}

func (a *remoteAPI) serve(w http.ResponseWriter, r *http.Request) {
	_, _ = io.Copy(io.Discard, r.Body)

	a.mu.Lock()
	a.requestIDs = append(a.requestIDs, r.Header.Get(middleware.HeaderRequestID))

	fail := false
	if r.Method == http.MethodGet && a.failFetches > 0 {
		a.failFetches--
		fail = true
	}

	if r.Method == http.MethodPost && a.failPublish {
		fail = true
	}

	posts := a.posts
	if r.Method == http.MethodPost {
		a.publishedIDs++
	}
	id := a.publishedIDs
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet:
		a.fetches.Add(1)
	case r.Method == http.MethodPost && !fail:
		a.published.Add(1)
	}

	if fail {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"code": "UNAVAILABLE", "message": "posts backend restarting"}}`))

		return
	}

	if r.Method == http.MethodPost {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": `+itoa(id)+`, "title": "posted", "body": "Server"}`)

		return
	}

	_, _ = io.WriteString(w, posts)
}

func (a *remoteAPI) setPosts(posts string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.posts = posts
}

// failNextFetches makes the next n GET requests answer 503.
func (a *remoteAPI) failNextFetches(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.failFetches = n
}

func (a *remoteAPI) rejectPublishes(reject bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.failPublish = reject
}

func (a *remoteAPI) seenRequestIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]string(nil), a.requestIDs...)
}

// quotebook is one process lifetime of the service: the quote service behind
// the production router.
type quotebook struct {
	service *app.QuoteService
	router  *gin.Engine
}

// openSQLite opens path, closing it when the test ends.
func openSQLite(t *testing.T, path string) ports.KeyValueStore {
	t.Helper()

	kv, err := sqlite.Open(context.Background(), path, "kv")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	return kv
}

func tempSQLite(t *testing.T) ports.KeyValueStore {
	t.Helper()

	return openSQLite(t, filepath.Join(t.TempDir(), "quotebook.db"))
}

// openQuotebook starts a service over kv that syncs with and publishes to the
// posts API described by clientCfg.
func openQuotebook(t *testing.T, kv ports.KeyValueStore, clientCfg *clients.Config) *quotebook {
	t.Helper()

	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	sessions, err := session.New(session.Config{})
	require.NoError(t, err)
	t.Cleanup(sessions.Close)

	client, err := clients.New(clientCfg)
	require.NoError(t, err)

	posts := acl.NewPostsClient(acl.PostsClientConfig{Client: client, ServiceName: clientCfg.ServiceName, Logger: logger})

	persistence := app.NewPersistence(kv, sessions, app.Keys{}, logger)
	service := app.NewQuoteService(app.QuoteServiceConfig{
		Store:       app.NewQuoteStore(app.StoreConfig{Persistence: persistence}),
		Persistence: persistence,
		Source:      posts,
		SourceName:  posts.Name(),
		Publisher:   posts,
		Logger:      logger,
	})
	require.NoError(t, service.Start(ctx))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	httpadapter.SetupRouter(router, httpadapter.NewDefaultRouterConfig(
		logger,
		&config.AppConfig{Name: "quotebook", Environment: "test", Version: "test"},
		handlers.NewHealthHandler(nil, handlers.BuildInfo{}),
		handlers.NewQuoteHandler(service, app.NewNotices(5)),
	))

	return &quotebook{service: service, router: router}
}

func (qb *quotebook) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	return qb.doWithHeader(t, method, path, body, nil)
}

func (qb *quotebook) doWithHeader(t *testing.T, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range header {
		req.Header[k] = v
	}

	w := httptest.NewRecorder()
	qb.router.ServeHTTP(w, req)

	return w
}

func itoa(n int64) string {
	const digits = "0123456789"

	if n == 0 {
		return "0"
	}

	var buf [20]byte

	i := len(buf)
	for ; n > 0; n /= 10 {
		i--
		buf[i] = digits[n%10]
	}

	return string(buf[i:])
}
