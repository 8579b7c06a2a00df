package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"git.home.luguber.info/inful/docnotion/internal/foundation/errors"
	"git.home.luguber.info/inful/docnotion/internal/logfields"
	"git.home.luguber.info/inful/docnotion/internal/retry"
	"git.home.luguber.info/inful/docnotion/internal/version"
)

const (
	DefaultAPIURL     = "https://api.notion.com/v1"
	DefaultAPIVersion = "2022-06-28"
	pageSize          = 100
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	APIURL        string
	APIVersion    string
	Token         string
	RatePerSecond float64
	HTTPClient    *http.Client
	Retry         *retry.Executor
	Logger        *slog.Logger
	Recorder      CallRecorder
}

// CallRecorder observes every HTTP round trip, retried attempts included.
type CallRecorder interface {
	ObserveRemoteCall(operation string, d time.Duration, success bool)
}

// Client is the rate-limited, retrying remote content client. Every call shares
// one token bucket, so callers never exceed RatePerSecond requests.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiVersion string
	token      string
	limiter    *rate.Limiter
	retry      *retry.Executor
	logger     *slog.Logger
	recorder   CallRecorder
}

func NewClient(opts Options) *Client {
	c := &Client{
		httpClient: opts.HTTPClient,
		apiURL:     opts.APIURL,
		apiVersion: opts.APIVersion,
		token:      opts.Token,
		retry:      opts.Retry,
		logger:     opts.Logger,
		recorder:   opts.Recorder,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if c.apiURL == "" {
		c.apiURL = DefaultAPIURL
	}
	if c.apiVersion == "" {
		c.apiVersion = DefaultAPIVersion
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.retry == nil {
		c.retry = retry.NewExecutor(retry.DefaultPolicy(), retry.WithLogger(c.logger))
	}
	rps := opts.RatePerSecond
	if rps <= 0 {
		rps = 3
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// FetchMetadata returns the page object for id.
func (c *Client) FetchMetadata(ctx context.Context, id string) (*PageMetadata, error) {
	return retry.DoValue(ctx, c.retry, "pages.retrieve", func(ctx context.Context) (*PageMetadata, error) {
		var meta PageMetadata
		if err := c.get(ctx, "pages.retrieve", "pages/"+url.PathEscape(id), nil, &meta); err != nil {
			return nil, err
		}
		return &meta, nil
	})
}

type childrenPage struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// FetchChildren returns every child block of id, accumulated across all result
// pages, with numbered list items renumbered. A partial block aborts with an
// integrity error.
func (c *Client) FetchChildren(ctx context.Context, id string) ([]Block, error) {
	var blocks []Block
	cursor := ""
	for {
		q := url.Values{}
		q.Set("page_size", fmt.Sprint(pageSize))
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}
		page, err := retry.DoValue(ctx, c.retry, "blocks.children.list", func(ctx context.Context) (*childrenPage, error) {
			var p childrenPage
			if err := c.get(ctx, "blocks.children.list", "blocks/"+url.PathEscape(id)+"/children", q, &p); err != nil {
				return nil, err
			}
			return &p, nil
		})
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, page.Results...)
		if !page.HasMore || page.NextCursor == nil || *page.NextCursor == "" {
			break
		}
		cursor = *page.NextCursor
	}

	if err := CheckComplete(id, blocks); err != nil {
		return nil, err
	}
	NumberListItems(blocks)
	return blocks, nil
}

// Ping fetches the root page once to confirm the token and page id are usable.
func (c *Client) Ping(ctx context.Context, rootID string) error {
	if _, err := c.FetchMetadata(ctx, rootID); err != nil {
		return errors.AuthError("could not retrieve the root page").
			WithCause(err).
			WithContext("root_page", rootID).
			WithContext("hint", "check the root page id, the token, and that the integration is connected to the page").
			Build()
	}
	return nil
}

// CheckComplete rejects block lists containing partial objects.
func CheckComplete(parentID string, blocks []Block) error {
	for i, b := range blocks {
		if b.IsPartial() {
			return errors.IntegrityError("remote returned a partial block").
				WithContext("parent_id", parentID).
				WithContext("block_id", b.ID).
				WithContext("index", i).
				Build()
		}
	}
	return nil
}

// NumberListItems assigns 1-based numbers to runs of numbered list items,
// resetting on any other block type.
func NumberListItems(blocks []Block) {
	n := 0
	for i := range blocks {
		if blocks[i].Type == BlockNumberedListItem {
			n++
			blocks[i].Number = n
		} else {
			n = 0
		}
	}
}

func (c *Client) get(ctx context.Context, operation, endpoint string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "rate limiter wait aborted").Build()
	}
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, query)
	if err != nil {
		return err
	}
	started := time.Now()
	err = c.doRequest(req, out)
	elapsed := time.Since(started)
	if c.recorder != nil {
		c.recorder.ObserveRemoteCall(operation, elapsed, err == nil)
	}
	c.logger.Debug("Remote call",
		logfields.Operation(operation),
		logfields.Path(endpoint),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000),
		logfields.Error(err))
	return err
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values) (*http.Request, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, errors.ConfigError("failed to parse API URL").
			WithCause(err).
			WithContext("api_url", c.apiURL).
			Build()
	}
	u.Path = path.Join(strings.TrimSuffix(u.Path, "/"), strings.TrimPrefix(endpoint, "/"))
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), http.NoBody)
	if err != nil {
		return nil, errors.InternalError("failed to create request").
			WithCause(err).
			WithContext("method", method).
			WithContext("url", u.String()).
			Build()
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.apiVersion)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	return req, nil
}

// apiError is the error object the API returns with non-2xx responses.
type apiError struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) doRequest(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "request cancelled").Build()
		}
		return errors.NetworkError("failed to execute request").
			WithCause(err).
			WithContext("method", req.Method).
			WithContext("url", req.URL.String()).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var ae apiError
		_ = json.Unmarshal(body, &ae)
		return classifyResponse(resp.StatusCode, ae, req.URL.Path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.NetworkError("failed to decode response").
				WithCause(err).
				WithContext("url", req.URL.Path).
				Build()
		}
	}
	return nil
}

// classifyResponse maps an API failure to a classified error. Rate limits and
// temporary unavailability are transient; everything else is permanent.
func classifyResponse(status int, ae apiError, endpoint string) error {
	msg := ae.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	var b *errors.ErrorBuilder
	switch {
	case status == http.StatusTooManyRequests || ae.Code == "rate_limited":
		b = errors.NewError(errors.CategoryRemote, msg).RateLimit()
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable,
		status == http.StatusGatewayTimeout, status == http.StatusInternalServerError,
		ae.Code == "service_unavailable", ae.Code == "internal_server_error":
		b = errors.NewError(errors.CategoryRemote, msg).Retryable()
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		b = errors.AuthError(msg)
	case status == http.StatusNotFound:
		b = errors.NotFoundError(msg)
	case isTransientMessage(msg):
		b = errors.NewError(errors.CategoryRemote, msg).Retryable()
	default:
		b = errors.RemoteError(msg)
	}
	return b.WithContext("status", status).
		WithContext("code", ae.Code).
		WithContext("endpoint", endpoint).
		Build()
}

func isTransientMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "timeout") || strings.Contains(m, "limit")
}
