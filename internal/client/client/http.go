package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/go-resty/resty/v2"
)

type authMode int

const (
	authNone authMode = iota
	authOptional
	authRequired
)

// call describes one API request.
type call struct {
	op     string
	method string
	path   string
	params map[string]string
	query  map[string]string
	body   any
	result any
	auth   authMode
	retry  bool
}

type sessionRequest struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	Identity     models.Identity `json:"identity"`
	SessionToken string          `json:"session_token"`
}

type voteRequest struct {
	Type models.VoteAction `json:"type"`
}

type voteResponse struct {
	Upvotes   *int `json:"upvotes"`
	Downvotes *int `json:"downvotes"`
}

type notesResponse struct {
	Notes []models.Note `json:"notes"`
}

// HTTPClient implements Client over resty.
type HTTPClient struct {
	rc         *resty.Client
	tokens     TokenSource
	maxRetries int
	interval   time.Duration

	mu             sync.Mutex
	onUnauthorized func(ctx context.Context)
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the API rooted at baseURL. Recoverable
// failures of idempotent calls are retried up to retries times. tokens may
// be nil for anonymous use.
func NewHTTPClient(baseURL string, timeout time.Duration, retries int, tokens TokenSource) *HTTPClient {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	if retries < 0 {
		retries = 0
	}
	return &HTTPClient{
		rc:         rc,
		tokens:     tokens,
		maxRetries: retries,
		interval:   200 * time.Millisecond,
	}
}

// OnUnauthorized registers fn for requests that carried a bearer token and
// were answered with 401 or 403.
func (c *HTTPClient) OnUnauthorized(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// SetRetryInterval changes the initial backoff interval.
func (c *HTTPClient) SetRetryInterval(d time.Duration) {
	if d > 0 {
		c.interval = d
	}
}

func (c *HTTPClient) CreateSession(ctx context.Context, idpToken string) (*models.Identity, string, error) {
	var resp sessionResponse
	err := c.do(ctx, call{
		op:     "create session",
		method: http.MethodPost,
		path:   "/auth/session",
		body:   sessionRequest{Token: idpToken},
		result: &resp,
	})
	if err != nil {
		return nil, "", err
	}
	if !resp.Identity.Valid() || resp.SessionToken == "" {
		return nil, "", &HTTPError{Op: "create session", StatusCode: http.StatusOK, Message: "incomplete session response", Err: ErrRequestFailed}
	}
	return &resp.Identity, resp.SessionToken, nil
}

func (c *HTTPClient) WhoAmI(ctx context.Context) (*models.Identity, error) {
	var id models.Identity
	err := c.do(ctx, call{
		op:     "whoami",
		method: http.MethodGet,
		path:   "/auth/session",
		result: &id,
		auth:   authRequired,
		retry:  true,
	})
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (c *HTTPClient) RevokeSession(ctx context.Context) error {
	return c.do(ctx, call{
		op:     "revoke session",
		method: http.MethodPost,
		path:   "/auth/session/revoke",
		auth:   authRequired,
	})
}

func (c *HTTPClient) Vote(ctx context.Context, noteID string, action models.VoteAction) (*models.VoteCounts, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("invalid vote action %q", action)
	}

	var resp voteResponse
	err := c.do(ctx, call{
		op:     "vote",
		method: http.MethodPost,
		path:   "/notes/{id}/vote",
		params: map[string]string{"id": noteID},
		body:   voteRequest{Type: action},
		result: &resp,
		auth:   authRequired,
		retry:  true,
	})
	if err != nil {
		return nil, err
	}
	if resp.Upvotes == nil || resp.Downvotes == nil {
		return nil, nil
	}
	return &models.VoteCounts{Upvotes: *resp.Upvotes, Downvotes: *resp.Downvotes}, nil
}

func (c *HTTPClient) RecentNotes(ctx context.Context, num int) ([]models.Note, error) {
	query := map[string]string{}
	if num > 0 {
		query["num"] = strconv.Itoa(num)
	}

	var resp notesResponse
	err := c.do(ctx, call{
		op:     "recent notes",
		method: http.MethodGet,
		path:   "/notes",
		query:  query,
		result: &resp,
		auth:   authOptional,
		retry:  true,
	})
	return resp.Notes, err
}

func (c *HTTPClient) SearchNotes(ctx context.Context, q string) ([]models.Note, error) {
	var resp notesResponse
	err := c.do(ctx, call{
		op:     "search notes",
		method: http.MethodGet,
		path:   "/notes/search",
		query:  map[string]string{"query": q},
		result: &resp,
		auth:   authOptional,
		retry:  true,
	})
	return resp.Notes, err
}

func (c *HTTPClient) GetNote(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	err := c.do(ctx, call{
		op:     "get note",
		method: http.MethodGet,
		path:   "/notes/{id}",
		params: map[string]string{"id": id},
		result: &note,
		auth:   authOptional,
		retry:  true,
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// UploadNote is not retried: a lost response could otherwise create the
// note twice.
func (c *HTTPClient) UploadNote(ctx context.Context, draft models.NoteDraft) (*models.Note, error) {
	var note models.Note
	err := c.do(ctx, call{
		op:     "upload note",
		method: http.MethodPost,
		path:   "/notes/upload",
		body:   draft,
		result: &note,
		auth:   authRequired,
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, call{op: "ping", method: http.MethodGet, path: "/health"})
}

func (c *HTTPClient) do(ctx context.Context, cl call) error {
	sentBearer := false

	attempt := func() error {
		r := c.rc.R().SetContext(ctx)

		if cl.auth != authNone {
			token, ok := "", false
			if c.tokens != nil {
				token, ok = c.tokens.Token()
			}
			switch {
			case ok:
				r.SetHeader(common.AuthorizationHeaderName, common.BearerPrefix+token)
				sentBearer = true
			case cl.auth == authRequired:
				return backoff.Permanent(&HTTPError{Op: cl.op, Message: "not signed in", Err: ErrUnauthorized})
			}
		}
		if cl.params != nil {
			r.SetPathParams(cl.params)
		}
		if cl.query != nil {
			r.SetQueryParams(cl.query)
		}
		if cl.body != nil {
			r.SetBody(cl.body)
		}

		resp, err := r.Execute(cl.method, cl.path)
		if err != nil {
			nerr := newNetworkError(cl.op, err)
			if ctx.Err() != nil {
				return backoff.Permanent(nerr)
			}
			return nerr
		}

		if resp.IsError() {
			herr := newStatusError(cl.op, resp.StatusCode(), resp.Body())
			if !herr.Recoverable() {
				return backoff.Permanent(herr)
			}
			return herr
		}

		if cl.result != nil && len(resp.Body()) > 0 {
			if err := json.Unmarshal(resp.Body(), cl.result); err != nil {
				return backoff.Permanent(&HTTPError{
					Op:         cl.op,
					StatusCode: resp.StatusCode(),
					Message:    "malformed response",
					Err:        fmt.Errorf("%w: %w", ErrRequestFailed, err),
				})
			}
		}
		return nil
	}

	retries := 0
	if cl.retry {
		retries = c.maxRetries
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.interval
	exp.MaxInterval = 2 * time.Second
	exp.MaxElapsedTime = 0

	err := backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx))
	if err == nil {
		return nil
	}

	var herr *HTTPError
	if sentBearer && errors.As(err, &herr) && errors.Is(herr, ErrUnauthorized) {
		c.mu.Lock()
		fn := c.onUnauthorized
		c.mu.Unlock()
		if fn != nil {
			fn(ctx)
		}
	}

	if !errors.As(err, &herr) {
		// context ended between attempts
		return newNetworkError(cl.op, err)
	}
	return err
}
