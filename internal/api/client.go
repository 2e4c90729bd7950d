// Package api is the HTTP client for the spec-mix dashboard service.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/specboard/internal/cachemanager"
	"github.com/zjrosen/specboard/internal/log"
	"github.com/zjrosen/specboard/internal/tracing"
)

// maxBody caps how much of a response is read.
const maxBody = 32 << 20

// Service is everything the UI needs from the dashboard service.
type Service interface {
	Health(ctx context.Context) (Health, error)
	Features(ctx context.Context) ([]Feature, error)
	Kanban(ctx context.Context, featureID string) (Board, error)
	Artifact(ctx context.Context, featureID, name string) (string, error)
	Task(ctx context.Context, ref TaskRef) (TaskDetail, error)
	TaskCommits(ctx context.Context, ref TaskRef) ([]Commit, error)
	TaskFiles(ctx context.Context, ref TaskRef) ([]FileChange, error)
	TaskReviews(ctx context.Context, ref TaskRef) ([]Review, error)
	Diff(ctx context.Context, sha string) (string, error)
	Untracked(ctx context.Context) ([]UntrackedCommit, error)
	Constitution(ctx context.Context) (string, bool, error)
	Strings(ctx context.Context) (Strings, error)
}

var _ Service = (*Client)(nil)

// Client talks to the service over HTTP.
type Client struct {
	base    *url.URL
	http    *http.Client
	tracer  trace.Tracer
	diffs   *cachemanager.ReadThroughCache[string, string, string]
	diffTTL time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithTracer records a client span per request.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithDiffCache keeps fetched commit diffs in cache for ttl. Diffs of a
// commit never change, so only empty results are refetched.
func WithDiffCache(cache cachemanager.CacheManager[string, string], ttl time.Duration) Option {
	return func(c *Client) {
		c.diffs = cachemanager.NewReadThroughCache(cache, c.fetchDiff, false).
			KeepIf(func(d string) bool { return strings.TrimSpace(d) != "" })
		c.diffTTL = ttl
	}
}

// NewClient returns a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q: scheme must be http or https", baseURL)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: 10 * time.Second},
		tracer: tracing.Noop().Tracer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string { return c.base.String() }

// Health checks the service.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.getJSON(ctx, "api.health", &h, "api", "health")
	return h, err
}

// Features lists all features.
func (c *Client) Features(ctx context.Context) ([]Feature, error) {
	var fs []Feature
	if err := c.getJSON(ctx, "api.features", &fs, "api", "features"); err != nil {
		return nil, err
	}
	return fs, nil
}

// Kanban returns the board of a feature.
func (c *Client) Kanban(ctx context.Context, featureID string) (Board, error) {
	var b Board
	if err := c.getJSON(ctx, "api.kanban", &b, "api", "kanban", featureID); err != nil {
		return Board{}, err
	}
	if b.Error != "" {
		return b, fmt.Errorf("kanban %s: %s", featureID, b.Error)
	}
	return b, nil
}

// Artifact returns the Markdown source of a feature artifact. name may
// contain "/" for nested documents.
func (c *Client) Artifact(ctx context.Context, featureID, name string) (string, error) {
	elems := append([]string{"api", "artifact", featureID}, strings.Split(name, "/")...)
	return c.getText(ctx, "api.artifact", elems...)
}

// Task returns a task's details.
func (c *Client) Task(ctx context.Context, ref TaskRef) (TaskDetail, error) {
	var t TaskDetail
	err := c.getJSON(ctx, "api.task", &t, taskPath(ref)...)
	return t, err
}

// TaskCommits returns commits tagged with the task id.
func (c *Client) TaskCommits(ctx context.Context, ref TaskRef) ([]Commit, error) {
	var cs []Commit
	err := c.getJSON(ctx, "api.task.commits", &cs, append(taskPath(ref), "commits")...)
	return cs, err
}

// TaskFiles returns files changed by the task's commits.
func (c *Client) TaskFiles(ctx context.Context, ref TaskRef) ([]FileChange, error) {
	var fs []FileChange
	err := c.getJSON(ctx, "api.task.files", &fs, append(taskPath(ref), "files")...)
	return fs, err
}

// TaskReviews returns the reviews of a task.
func (c *Client) TaskReviews(ctx context.Context, ref TaskRef) ([]Review, error) {
	var rs []Review
	err := c.getJSON(ctx, "api.task.reviews", &rs, append(taskPath(ref), "reviews")...)
	return rs, err
}

// Diff returns the unified diff of a commit.
func (c *Client) Diff(ctx context.Context, sha string) (string, error) {
	if c.diffs == nil {
		return c.fetchDiff(ctx, sha)
	}
	return c.diffs.GetWithRefresh(ctx, sha, sha, c.diffTTL)
}

func (c *Client) fetchDiff(ctx context.Context, sha string) (string, error) {
	return c.getText(ctx, "api.diff", "api", "diff", sha)
}

// Untracked lists commits without a work package id.
func (c *Client) Untracked(ctx context.Context) ([]UntrackedCommit, error) {
	var cs []UntrackedCommit
	if err := c.getJSON(ctx, "api.untracked", &cs, "api", "untracked-commits"); err != nil {
		return nil, err
	}
	return cs, nil
}

// Constitution returns the project constitution. found is false when the
// project has none.
func (c *Client) Constitution(ctx context.Context) (text string, found bool, err error) {
	text, err = c.getText(ctx, "api.constitution", "api", "constitution")
	if IsNotFound(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

// Strings returns the UI string bundle, defaults filled in.
func (c *Client) Strings(ctx context.Context) (Strings, error) {
	var s Strings
	if err := c.getJSON(ctx, "api.i18n", &s, "api", "i18n", "current"); err != nil {
		return DefaultStrings(), err
	}
	return s.WithDefaults(), nil
}

func taskPath(ref TaskRef) []string {
	return []string{"api", "task", ref.FeatureID, ref.Lane, ref.TaskID}
}

func (c *Client) getJSON(ctx context.Context, route string, v any, elems ...string) error {
	body, err := c.do(ctx, route, elems...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", route, err)
	}
	return nil
}

func (c *Client) getText(ctx context.Context, route string, elems ...string) (string, error) {
	body, err := c.do(ctx, route, elems...)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// endpoint appends elems to the base path verbatim. Empty, "." and ".."
// segments are kept so the request names exactly what the location did.
func (c *Client) endpoint(elems []string) *url.URL {
	escaped := make([]string, len(elems))
	for i, e := range elems {
		escaped[i] = url.PathEscape(e)
	}
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.Join(elems, "/")
	u.RawPath = strings.TrimRight(c.base.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	return &u
}

// do issues a GET for the escaped path elems and returns the body of a
// 2xx response.
func (c *Client) do(ctx context.Context, route string, elems ...string) ([]byte, error) {
	u := c.endpoint(elems)
	requestID := uuid.New().String()

	ctx, span := c.tracer.Start(ctx, route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(tracing.AttrHTTPMethod, http.MethodGet),
			attribute.String(tracing.AttrHTTPPath, u.EscapedPath()),
			attribute.String(tracing.AttrRequestID, requestID),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.ErrorErr(log.CatAPI, "request failed", err, "path", u.Path, "request_id", requestID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("requesting %s: %w", u.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int(tracing.AttrHTTPStatus, resp.StatusCode))
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("reading %s: %w", u.Path, err)
	}

	log.Debug(log.CatAPI, "request done",
		"path", u.Path,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
		"request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{Path: u.Path, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		span.SetStatus(codes.Error, serr.Error())
		if resp.StatusCode != http.StatusNotFound {
			log.Warn(log.CatAPI, "unexpected status", "path", u.Path, "status", resp.StatusCode)
		}
		return nil, serr
	}
	return body, nil
}
