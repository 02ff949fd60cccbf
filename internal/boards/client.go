package boards

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raphi011/abt/internal/log"
)

const (
	// DefaultBaseURL is the Azure DevOps Services host.
	DefaultBaseURL = "https://dev.azure.com"
	// APIVersion is sent with every request.
	APIVersion = "7.0"
	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRateLimitRetries is how often a throttled request is retried.
	DefaultMaxRateLimitRetries = 3

	defaultRetryAfter = time.Second
)

// Auth schemes.
const (
	AuthPAT    = "pat"
	AuthBearer = "bearer"
)

// Options configures a Client.
type Options struct {
	BaseURL             string // defaults to DefaultBaseURL
	Organisation        string
	Project             string
	Team                string
	Token               string
	Auth                string        // AuthPAT (default) or AuthBearer
	Timeout             time.Duration // per request, defaults to DefaultTimeout
	MaxRateLimitRetries int           // 0 uses the default, negative disables
	UserAgent           string
	HTTPClient          *http.Client // optional, Timeout is ignored when set
}

// Client talks to one organisation/project/team. It is safe for concurrent use.
type Client struct {
	orgURL              string // base URL + organisation
	project             string
	team                string
	authHeader          string
	userAgent           string
	sessionID           string
	maxRateLimitRetries int
	httpCli             *http.Client
	sleep               func(ctx context.Context, d time.Duration) error
	now                 func() time.Time
}

// NewClient creates a client from opts.
func NewClient(opts Options) (*Client, error) {
	if opts.Organisation == "" {
		return nil, fmt.Errorf("boards: organisation is required")
	}
	if opts.Project == "" {
		return nil, fmt.Errorf("boards: project is required")
	}
	if opts.Token == "" {
		return nil, fmt.Errorf("boards: token is required")
	}

	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("boards: invalid base URL %q: %w", base, err)
	}
	base = strings.TrimRight(base, "/")

	var authHeader string
	switch opts.Auth {
	case "", AuthPAT:
		// Azure DevOps PATs use basic auth with an empty user name.
		authHeader = "Basic " + basicAuth("", opts.Token)
	case AuthBearer:
		authHeader = "Bearer " + opts.Token
	default:
		return nil, fmt.Errorf("boards: unknown auth scheme %q", opts.Auth)
	}

	httpCli := opts.HTTPClient
	if httpCli == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpCli = &http.Client{Timeout: timeout}
	}

	retries := opts.MaxRateLimitRetries
	switch {
	case retries == 0:
		retries = DefaultMaxRateLimitRetries
	case retries < 0:
		retries = 0
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "abt"
	}

	return &Client{
		orgURL:              base + "/" + url.PathEscape(opts.Organisation),
		project:             opts.Project,
		team:                opts.Team,
		authHeader:          authHeader,
		userAgent:           ua,
		sessionID:           uuid.NewString(),
		maxRateLimitRetries: retries,
		httpCli:             httpCli,
		sleep:               sleepCtx,
		now:                 time.Now,
	}, nil
}

// Project returns the project the client is bound to.
func (c *Client) Project() string { return c.project }

// Team returns the team the client is bound to.
func (c *Client) Team() string { return c.team }

// SessionID returns the correlation id sent with every request.
func (c *Client) SessionID() string { return c.sessionID }

// WebURL returns the browser URL of a work item.
func (c *Client) WebURL(id int) string {
	return fmt.Sprintf("%s/%s/_workitems/edit/%d", c.orgURL, url.PathEscape(c.project), id)
}

// projectURL builds {org}/{project}/_apis/<path>.
func (c *Client) projectURL(path string) string {
	return c.orgURL + "/" + url.PathEscape(c.project) + "/_apis/" + path
}

// teamURL builds {org}/{project}/{team}/_apis/<path>.
func (c *Client) teamURL(path string) string {
	return c.orgURL + "/" + url.PathEscape(c.project) + "/" + url.PathEscape(c.team) + "/_apis/" + path
}

// request describes one API call.
type request struct {
	op          string // short description used in errors
	method      string
	url         string
	query       url.Values
	body        any
	contentType string
}

// do sends req and decodes a JSON response into out (if non-nil).
// Transport failures are retried once, throttling up to maxRateLimitRetries.
func (c *Client) do(ctx context.Context, req request, out any) error {
	l := log.FromContext(ctx)

	q := req.query
	if q == nil {
		q = url.Values{}
	}
	q.Set("api-version", APIVersion)
	fullURL := req.url + "?" + q.Encode()

	var payload []byte
	if req.body != nil {
		var err error
		payload, err = json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", req.op, err)
		}
	}

	networkRetried := false
	rateRetries := 0
	for {
		httpReq, err := http.NewRequestWithContext(ctx, req.method, fullURL, bodyReader(payload))
		if err != nil {
			return fmt.Errorf("%s: create request: %w", req.op, err)
		}
		httpReq.Header.Set("Authorization", c.authHeader)
		httpReq.Header.Set("Accept", "application/json")
		httpReq.Header.Set("User-Agent", c.userAgent)
		httpReq.Header.Set("X-TFS-Session", c.sessionID)
		if payload != nil {
			ct := req.contentType
			if ct == "" {
				ct = "application/json"
			}
			httpReq.Header.Set("Content-Type", ct)
		}

		done := l.Request(req.method, fullURL)
		start := time.Now()
		resp, err := c.httpCli.Do(httpReq)
		if err != nil {
			done(0, time.Since(start))
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%s: %w", req.op, ctxErr)
			}
			if !networkRetried {
				networkRetried = true
				l.Debug("retrying after network error", "op", req.op, "error", err)
				continue
			}
			return &NetworkError{Op: req.op, Err: err}
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		done(resp.StatusCode, time.Since(start))
		if readErr != nil {
			if !networkRetried {
				networkRetried = true
				continue
			}
			return &NetworkError{Op: req.op, Err: readErr}
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests ||
			(resp.StatusCode == http.StatusServiceUnavailable && resp.Header.Get("Retry-After") != ""):
			wait := parseRetryAfter(resp.Header, c.now(), defaultRetryAfter)
			if rateRetries >= c.maxRateLimitRetries {
				return fmt.Errorf("%s: %w", req.op, &RateLimitError{RetryAfter: wait})
			}
			rateRetries++
			l.Debug("throttled, waiting", "op", req.op, "retry_after", wait, "attempt", rateRetries)
			if err := c.sleep(ctx, wait); err != nil {
				return fmt.Errorf("%s: %w", req.op, err)
			}
			continue
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%s: %w: %s", req.op, ErrUnauthorized, errorMessage(body, resp.Status))
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%s: %w", req.op, ErrNotFound)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return fmt.Errorf("%s: %w", req.op, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body, "")})
		}

		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%s: parse response: %w", req.op, err)
		}
		return nil
	}
}

func bodyReader(payload []byte) io.Reader {
	if payload == nil {
		return nil
	}
	return bytes.NewReader(payload)
}

// errorMessage extracts the "message" of an Azure DevOps error body.
func errorMessage(body []byte, fallback string) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	if s := strings.TrimSpace(string(body)); s != "" && len(s) < 300 {
		return s
	}
	return fallback
}

func basicAuth(user, pass string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// errBatchTooLarge is returned when GetWorkItemsBatch is called with more ids
// than the backend accepts per call.
var errBatchTooLarge = errors.New("too many ids for one batch")
