package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/hhblog/internal/client/models"
	"github.com/dmitrijs2005/hhblog/internal/common"
	"github.com/dmitrijs2005/hhblog/internal/logging"
	"github.com/google/uuid"
)

// Client is the blog REST API as seen by the views.
type Client interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	Register(ctx context.Context, req models.SignupRequest) (*Session, error)
	GetUser(ctx context.Context) (*models.User, error)
	ResetPassword(ctx context.Context, oldPassword, newPassword string) error
	UpdateProfile(ctx context.Context, in models.ProfileUpdate) (*models.User, error)

	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id int) (*models.Post, error)
	CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id int, in models.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, id int) error
	GetLikes(ctx context.Context, postID int) (*models.LikeState, error)
	ToggleLike(ctx context.Context, postID int) (*models.LikeState, error)
	ListComments(ctx context.Context, postID int) ([]models.Comment, error)
	CreateComment(ctx context.Context, postID int, text string) (*models.Comment, error)

	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int) (*models.Category, error)
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int) error

	ListNotifications(ctx context.Context) ([]models.Notification, error)

	Health(ctx context.Context) error
}

// TokenSource yields the current bearer credential. It is consulted before
// every request, so a logout in another process takes effect immediately.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Doer sends HTTP requests. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Option func(*HTTPClient)

func WithDoer(d Doer) Option {
	return func(c *HTTPClient) { c.http = d }
}

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if hc, ok := c.http.(*http.Client); ok {
			hc.Timeout = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

type HTTPClient struct {
	baseURL string
	tokens  TokenSource
	http    Doer
	log     logging.Logger
}

// New returns a client for the API rooted at baseURL. tokens may be nil for
// anonymous use.
func New(baseURL string, tokens TokenSource, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// do sends one request and returns the raw body of a 2xx response.
func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set(common.RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}
		if token != "" {
			req.Header.Set(common.AuthorizationHeader, common.BearerScheme+" "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug(ctx, "request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return nil, mapTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, mapTransportError(err)
	}

	c.log.Debug(ctx, "request done", "method", method, "path", path, "request_id", reqID,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in any) ([]byte, error) {
	if in == nil {
		return c.do(ctx, method, path, nil, "")
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(b), "application/json")
}

func mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// errorMessage extracts {"error": ...} or {"message": ...} from a failed
// response body.
func errorMessage(body []byte) string {
	var m struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	if s, ok := m.Error.(string); ok && s != "" {
		return s
	}
	return m.Message
}
