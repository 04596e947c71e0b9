// Package supabase implements service.Backend against a hosted Postgres REST
// endpoint and its password-based auth endpoint.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"todo/internal/config"
	"todo/internal/logger"
	"todo/internal/service"
)

const (
	// AuthPath is the prefix of the auth endpoints.
	AuthPath = "/auth/v1"

	// RestPath is the prefix of the table endpoints.
	RestPath = "/rest/v1"

	// TasksTable is the table every task call targets.
	TasksTable = "tasks"

	// singleObject asks the REST endpoint for exactly one row as an object.
	singleObject = "application/vnd.pgrst.object+json"
)

// Client implements service.Backend over HTTP.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *zap.Logger
}

// New creates a client from config.
func New(cfg *config.Config, log *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewWithHTTPClient(cfg.URL, cfg.AnonKey, &http.Client{}, cfg.RequestTimeout, log), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL, anonKey string, httpClient *http.Client, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: httpClient,
		timeout:    timeout,
		logger:     log,
	}
}

// credentials is the JSON body of the sign-up and sign-in calls.
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenResponse is returned by the token endpoint.
type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         service.User `json:"user"`
}

func (t tokenResponse) token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
	}
	switch {
	case t.ExpiresAt > 0:
		tok.Expiry = time.Unix(t.ExpiresAt, 0)
	case t.ExpiresIn > 0:
		tok.Expiry = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return tok
}

// SignUp registers a new account.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   AuthPath + "/signup",
		body:   credentials{Email: email, Password: password},
		auth:   true,
	}, nil)
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*service.Session, error) {
	resp, err := c.grant(ctx, "password", credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	tok := resp.token()
	return &service.Session{
		User:   resp.User,
		Token:  tok,
		Source: oauth2.ReuseTokenSource(tok, &refresher{client: c, refreshToken: tok.RefreshToken}),
	}, nil
}

func (c *Client) grant(ctx context.Context, grantType string, body any) (tokenResponse, error) {
	var resp tokenResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   AuthPath + "/token",
		query:  url.Values{"grant_type": {grantType}},
		body:   body,
		auth:   true,
	}, &resp)
	return resp, err
}

// refresher renews an expired access token with the refresh token grant.
// oauth2.ReuseTokenSource serializes calls to Token.
type refresher struct {
	client       *Client
	refreshToken string
}

func (r *refresher) Token() (*oauth2.Token, error) {
	if r.refreshToken == "" {
		return nil, service.NewError(service.KindAuth, "session expired")
	}
	resp, err := r.client.grant(context.Background(), "refresh_token", map[string]string{
		"refresh_token": r.refreshToken,
	})
	if err != nil {
		return nil, err
	}
	tok := resp.token()
	if tok.RefreshToken != "" {
		r.refreshToken = tok.RefreshToken
	}
	return tok, nil
}

// ListTasks returns all tasks ordered by id descending.
func (c *Client) ListTasks(ctx context.Context, sess *service.Session) ([]service.Task, error) {
	var tasks []service.Task
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    RestPath + "/" + TasksTable,
		query:   url.Values{"select": {"*"}, "order": {"id.desc"}},
		session: sess,
	}, &tasks)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// InsertTask inserts a task and returns the stored row.
func (c *Client) InsertTask(ctx context.Context, sess *service.Session, title string) (service.Task, error) {
	var rows []service.Task
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    RestPath + "/" + TasksTable,
		body:    map[string]string{"title": title},
		header:  http.Header{"Prefer": {"return=representation"}},
		session: sess,
	}, &rows)
	if err != nil {
		return service.Task{}, err
	}
	if len(rows) == 0 {
		return service.Task{Title: title}, nil
	}
	return rows[0], nil
}

// DeleteTask deletes the task with the given id.
func (c *Client) DeleteTask(ctx context.Context, sess *service.Session, id int64) error {
	return c.do(ctx, request{
		method:  http.MethodDelete,
		path:    RestPath + "/" + TasksTable,
		query:   url.Values{"id": {"eq." + strconv.FormatInt(id, 10)}},
		session: sess,
	}, nil)
}

// Probe runs a count query against the tasks table.
func (c *Client) Probe(ctx context.Context, sess *service.Session) error {
	return c.do(ctx, request{
		method:  http.MethodGet,
		path:    RestPath + "/" + TasksTable,
		query:   url.Values{"select": {"count"}},
		header:  http.Header{"Accept": {singleObject}},
		session: sess,
	}, nil)
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	header  http.Header
	session *service.Session

	// auth marks calls to the auth endpoints; their failures are auth errors.
	auth bool
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqID := uuid.NewString()
	ctx = logger.ContextWithRequestID(ctx, reqID)
	log := logger.WithRequestID(ctx, c.logger)

	bearer := c.anonKey
	if r.session != nil {
		tok, err := r.session.AccessToken()
		if err != nil {
			return classify(err, service.KindAuth)
		}
		if tok != "" {
			bearer = tok
		}
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("apikey", c.anonKey)
	httpReq.Header.Set("Authorization", "Bearer "+bearer)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-Id", reqID)
	if r.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range r.header {
		httpReq.Header[http.CanonicalHeaderKey(k)] = vs
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Debug("backend request failed", zap.String("method", r.method), zap.String("path", r.path), zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return service.WrapError(service.KindBackend, "request timed out", err)
		}
		return service.WrapError(service.KindBackend, err.Error(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return service.WrapError(service.KindBackend, "read response: "+err.Error(), err)
	}

	log.Debug("backend request",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, respBody, r.auth)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return service.WrapError(service.KindBackend, "unmarshal response: "+err.Error(), err)
	}
	return nil
}

func classify(err error, kind service.Kind) error {
	var e *service.Error
	if errors.As(err, &e) {
		return err
	}
	return service.WrapError(kind, err.Error(), err)
}
