package acl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/quotebook/internal/adapters/clients"
	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

const (
	postsPath = "/posts"

	// DefaultMaxItems is how many remote posts a fetch keeps.
	DefaultMaxItems = 10

	// DefaultCategory is the category assigned to every remote quote.
	DefaultCategory = "Server"

	// DefaultUserID is the author id sent with published quotes.
	DefaultUserID = 1

	defaultPostsServiceName = "quote-source"
)

// PostsClientConfig contains configuration for the posts client.
type PostsClientConfig struct {
	// Client is the HTTP client to use for requests.
	// The client's BaseURL should point at the posts API root.
	Client *clients.Client

	// ServiceName identifies the remote in errors and health checks.
	ServiceName string

	// MaxItems caps how many posts a fetch keeps. Zero uses DefaultMaxItems.
	MaxItems int

	// Category is assigned to every fetched quote. Empty uses DefaultCategory.
	Category string

	// UserID is sent as userId when publishing. Zero uses DefaultUserID.
	UserID int

	// Logger is the structured logger.
	Logger *slog.Logger
}

// PostsClient adapts a JSON posts API into a quote source and publisher.
// Posts map onto quotes as id = id, text = title; the category is fixed by config.
type PostsClient struct {
	BaseAdapter

	maxItems int
	category string
	userID   int
	logger   *slog.Logger
}

// NewPostsClient creates a posts client adapter.
// Panics if Client is nil.
func NewPostsClient(cfg PostsClientConfig) *PostsClient {
	if cfg.Client == nil {
		panic("PostsClient: Client is required")
	}

	name := cfg.ServiceName
	if name == "" {
		name = defaultPostsServiceName
	}

	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	category := strings.TrimSpace(cfg.Category)
	if category == "" {
		category = DefaultCategory
	}

	userID := cfg.UserID
	if userID <= 0 {
		userID = DefaultUserID
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &PostsClient{
		BaseAdapter: NewBaseAdapter(cfg.Client, name),
		maxItems:    maxItems,
		category:    category,
		userID:      userID,
		logger:      logger,
	}
}

// postDTO is the external representation of a post. Never exposed outside the ACL.
type postDTO struct {
	UserID int    `json:"userId,omitempty"`
	ID     int64  `json:"id,omitempty"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// FetchQuotes downloads the post list and translates the first MaxItems posts.
// Posts that fail validation are logged and left out; the rest are returned.
// Implements ports.RemoteSource.
func (c *PostsClient) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	c.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", postsPath))

	body, err := c.Get(ctx, postsPath, "fetch posts")
	if err != nil {
		return nil, err
	}

	posts, err := DecodeResponse[[]postDTO](body)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	kept := posts[:min(len(posts), c.maxItems)]

	skipped := 0
	quotes := TranslateSlice(kept, c.toDomain, func(i int, err error) {
		skipped++
		c.logger.WarnContext(ctx, "skipping invalid remote post",
			slog.Int("index", i),
			slog.Any("error", err))
	})

	c.logger.DebugContext(ctx, "fetched remote quotes",
		slog.Int("received", len(posts)),
		slog.Int("kept", len(quotes)),
		slog.Int("skipped", skipped))

	return quotes, nil
}

// PublishQuote submits q as a new post and returns the quote echoed by the server.
// Implements ports.QuotePublisher.
func (c *PostsClient) PublishQuote(ctx context.Context, q domain.Quote) (domain.Quote, error) {
	if err := ValidateRequired(strings.TrimSpace(q.Text), "text"); err != nil {
		return domain.Quote{}, err
	}

	req := postDTO{UserID: c.userID, Title: q.Text, Body: q.Category}

	c.logger.Log(ctx, logging.LevelTrace, "starting request",
		slog.String("path", postsPath),
		slog.String("category", q.Category))

	body, err := c.PostJSON(ctx, postsPath, req, "publish quote")
	if err != nil {
		return domain.Quote{}, err
	}

	ack, err := DecodeResponse[postDTO](body)
	if err != nil {
		return domain.Quote{}, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	c.logger.DebugContext(ctx, "quote published", slog.Int64("remote_id", ack.ID))

	return domain.Quote{ID: ack.ID, Text: ack.Title, Category: ack.Body}, nil
}

// toDomain validates a post and converts it to a quote in the configured category.
func (c *PostsClient) toDomain(p *postDTO) (domain.Quote, error) {
	if err := ValidatePositive(p.ID, "id"); err != nil {
		return domain.Quote{}, err
	}

	title := strings.TrimSpace(p.Title)
	if err := ValidateRequired(title, "title"); err != nil {
		return domain.Quote{}, fmt.Errorf("post %d: %w", p.ID, err)
	}

	return domain.Quote{ID: p.ID, Text: title, Category: c.category}, nil
}

// Name returns the health check name for this client.
// Implements ports.HealthChecker.
func (c *PostsClient) Name() string {
	return c.ServiceName()
}

// Advisory implements ports.Advisory. Quotes stay available from local
// storage while the posts API is down.
func (c *PostsClient) Advisory() bool { return true }

// Check verifies the posts endpoint answers with a success status.
// Implements ports.HealthChecker.
func (c *PostsClient) Check(ctx context.Context) error {
	body, err := c.Get(ctx, postsPath, "health check")
	if err != nil {
		return err
	}

	return body.Close()
}
