// Package remote talks to the content service that owns invitation records.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gojektech/heimdall/v6"
	"github.com/gojektech/heimdall/v6/httpclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ginvite/ginvite-api/internal/domain"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 4 << 20
	retryBackoff     = 200 * time.Millisecond
	retryJitter      = 5 * time.Millisecond
)

var (
	// ErrNotFound is returned when the content service has no record for the slug.
	ErrNotFound = errors.New("remote: invitation not found")
	// ErrInvalidSlug is returned for blank slugs before any request is made.
	ErrInvalidSlug = errors.New("remote: slug is required")
)

var tracer = otel.Tracer("github.com/ginvite/ginvite-api/internal/platform/remote")

// StatusError reports a non-success response from the content service.
type StatusError struct {
	Method  string
	URL     string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote: %s %s: %d %s", e.Method, e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("remote: %s %s: %d", e.Method, e.URL, e.Status)
}

// Client fetches invitation records and forwards drafts.
type Client struct {
	baseURL string
	reader  heimdall.Doer
	writer  heimdall.Doer
	headers map[string]string
}

// Option customises the client.
type Option func(*options)

type options struct {
	timeout time.Duration
	retries int
	headers map[string]string
	doer    heimdall.Doer
}

// WithTimeout bounds each outbound request.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithRetries sets how many times reads are retried on transport errors and 5xx responses.
// Writes are never retried.
func WithRetries(retries int) Option {
	return func(o *options) {
		if retries >= 0 {
			o.retries = retries
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// WithHTTPClient replaces the underlying transport for reads and writes.
func WithHTTPClient(doer heimdall.Doer) Option {
	return func(o *options) {
		o.doer = doer
	}
}

// New constructs a client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("remote: invalid base url %q", baseURL)
	}

	o := options{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	readerOpts := []httpclient.Option{
		httpclient.WithHTTPTimeout(o.timeout),
		httpclient.WithRetryCount(o.retries),
		httpclient.WithRetrier(heimdall.NewRetrier(heimdall.NewConstantBackoff(retryBackoff, retryJitter))),
	}
	writerOpts := []httpclient.Option{
		httpclient.WithHTTPTimeout(o.timeout),
	}
	if o.doer != nil {
		readerOpts = append(readerOpts, httpclient.WithHTTPClient(o.doer))
		writerOpts = append(writerOpts, httpclient.WithHTTPClient(o.doer))
	}

	return &Client{
		baseURL: trimmed,
		reader:  httpclient.NewClient(readerOpts...),
		writer:  httpclient.NewClient(writerOpts...),
		headers: o.headers,
	}, nil
}

// GetInvitation fetches the raw record for slug. The {"data": record} envelope is unwrapped.
func (c *Client) GetInvitation(ctx context.Context, slug string) ([]byte, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrInvalidSlug
	}
	body, err := c.do(ctx, c.reader, http.MethodGet, "/invitations/"+url.PathEscape(slug), nil)
	if err != nil {
		return nil, err
	}
	return domain.UnwrapRecord(body), nil
}

// ListInvitations fetches every published record.
func (c *Client) ListInvitations(ctx context.Context) ([]domain.Invitation, error) {
	body, err := c.do(ctx, c.reader, http.MethodGet, "/invitations?status=published", nil)
	if err != nil {
		return nil, err
	}
	list, err := domain.ParseRecordList(body)
	if err != nil {
		return nil, fmt.Errorf("remote: decode invitation list: %w", err)
	}
	return list, nil
}

// SubmitDraft forwards a draft save. It is sent once; callers own any retry policy.
func (c *Client) SubmitDraft(ctx context.Context, draft domain.Draft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("remote: encode draft: %w", err)
	}
	_, err = c.do(ctx, c.writer, http.MethodPost, "/drafts", payload)
	return err
}

func (c *Client) do(ctx context.Context, doer heimdall.Doer, method, path string, payload []byte) (body []byte, err error) {
	target := c.baseURL + path

	ctx, span := tracer.Start(ctx, "remote "+method+" "+strings.SplitN(path, "?", 2)[0], trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", target),
	)

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := doer.Do(req)
	if err != nil {
		// heimdall flattens retry errors into text; keep the context cause matchable.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("remote: %s %s: %w (%v)", method, target, ctxErr, err)
		}
		return nil, fmt.Errorf("remote: %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("remote: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound && method == http.MethodGet:
		return nil, ErrNotFound
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, &StatusError{Method: method, URL: target, Status: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
