// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package rest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/go-a2a/googleai-go/option"
	"github.com/go-a2a/googleai-go/pkg/logging"
	"github.com/go-a2a/googleai-go/types"
)

// ClientVersion is the version reported in the x-goog-api-client header.
const ClientVersion = "0.1.0"

const clientName = "googleai-go"

// Header names.
const (
	HeaderAPIKey    = "x-goog-api-key"
	HeaderAPIClient = "x-goog-api-client"
)

// Task is the operation of a request. Model tasks are appended to the model name
// in the URL; every task is used as the metrics and log label.
type Task string

// Model tasks.
const (
	TaskGenerateContent       Task = "generateContent"
	TaskStreamGenerateContent Task = "streamGenerateContent"
	TaskCountTokens           Task = "countTokens"
	TaskEmbedContent          Task = "embedContent"
	TaskBatchEmbedContents    Task = "batchEmbedContents"
)

// Cached content tasks.
const (
	TaskCreateCachedContent Task = "createCachedContent"
	TaskListCachedContents  Task = "listCachedContents"
	TaskGetCachedContent    Task = "getCachedContent"
	TaskUpdateCachedContent Task = "updateCachedContent"
	TaskDeleteCachedContent Task = "deleteCachedContent"
)

// Client sends requests with a fixed API key and [option.RequestOptions].
type Client struct {
	apiKey string
	opts   option.RequestOptions
}

// New returns a [Client].
func New(apiKey string, opts option.RequestOptions) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.BaseURL == "" {
		opts.BaseURL = option.DefaultBaseURL
	}
	if opts.APIVersion == "" {
		opts.APIVersion = option.DefaultAPIVersion
	}
	return &Client{
		apiKey: apiKey,
		opts:   opts,
	}
}

// Options returns the request options of c.
func (c *Client) Options() option.RequestOptions {
	return c.opts
}

// ModelURL returns the URL of task on model, e.g.
// https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent.
func (c *Client) ModelURL(model string, task Task) string {
	u := c.versionURL() + "/" + model + ":" + string(task)
	if task == TaskStreamGenerateContent {
		u += "?alt=sse"
	}
	return u
}

// ResourceURL returns the URL of the resource at path with the query parameters q.
func (c *Client) ResourceURL(path string, q url.Values) string {
	u := c.versionURL() + "/" + strings.TrimPrefix(path, "/")
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) versionURL() string {
	return strings.TrimSuffix(c.opts.BaseURL, "/") + "/" + c.opts.APIVersion
}

// Request is a single API call.
type Request struct {
	Task   Task
	Method string
	URL    string

	// Body is encoded as JSON when non-nil.
	Body any
}

// apiClientHeader returns the value of the x-goog-api-client header.
func (c *Client) apiClientHeader() string {
	v := clientName + "/" + ClientVersion
	if c.opts.APIClient != "" {
		v += " " + c.opts.APIClient
	}
	return v
}

// Headers returns the headers of a request, or an [*types.InputError] when the
// custom headers try to set a reserved header.
func (c *Client) Headers() (http.Header, error) {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set(HeaderAPIClient, c.apiClientHeader())
	if c.apiKey != "" {
		h.Set(HeaderAPIKey, c.apiKey)
	}

	for name, values := range c.opts.CustomHeaders {
		switch {
		case strings.EqualFold(name, HeaderAPIKey):
			return nil, types.NewInputError("Cannot set reserved header name %s", HeaderAPIKey)
		case strings.EqualFold(name, HeaderAPIClient):
			return nil, types.NewInputError("Header name %s can only be set using the apiClient field", HeaderAPIClient)
		}
		for _, v := range values {
			h.Add(name, v)
		}
	}
	return h, nil
}

// call is an in-flight request.
type call struct {
	ctx    context.Context
	task   Task
	url    string
	start  time.Time
	logger *slog.Logger
	cancel context.CancelFunc
}

// send issues req and returns the successful response. The caller owns the
// response body and must call the returned call's cancel once the body is consumed.
func (c *Client) send(ctx context.Context, req *Request) (*http.Response, *call, error) {
	header, err := c.Headers()
	if err != nil {
		return nil, nil, err
	}

	var body io.Reader
	if req.Body != nil {
		data, err := sonic.ConfigStd.Marshal(req.Body)
		if err != nil {
			return nil, nil, &types.Error{Message: "failed to encode request body", Err: err}
		}
		body = bytes.NewReader(data)
	}

	var cancel context.CancelFunc
	if c.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	cl := &call{
		ctx:    ctx,
		task:   req.Task,
		url:    req.URL,
		logger: logging.Resolve(ctx, c.opts.Logger).With(slog.String("request_id", uuid.NewString())),
		cancel: cancel,
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		cancel()
		return nil, nil, &types.Error{Message: "failed to build request", Err: err}
	}
	httpReq.Header = header

	if c.apiKey == "" && c.opts.TokenSource != nil {
		tok, err := c.opts.TokenSource.Token()
		if err != nil {
			cancel()
			return nil, nil, &types.Error{Message: "failed to obtain access token", Err: err}
		}
		tok.SetAuthHeader(httpReq)
	}

	if l := c.opts.RateLimiter; l != nil {
		if err := l.Wait(ctx); err != nil {
			cancel()
			return nil, nil, c.transportError(ctx, cl, err)
		}
	}

	cl.logger.DebugContext(ctx, "sending request",
		slog.String("task", string(req.Task)),
		slog.String("method", req.Method),
		slog.String("url", req.URL),
	)

	cl.start = time.Now()
	resp, err := c.opts.HTTPClient.Do(httpReq)
	if err != nil {
		c.opts.Metrics.Observe(string(req.Task), 0, time.Since(cl.start))
		cancel()
		return nil, nil, c.transportError(ctx, cl, err)
	}
	c.opts.Metrics.Observe(string(req.Task), resp.StatusCode, time.Since(cl.start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer cancel()
		defer resp.Body.Close()
		return nil, nil, c.statusError(ctx, cl, resp)
	}

	cl.logger.DebugContext(ctx, "received response",
		slog.String("task", string(req.Task)),
		slog.Int("status_code", resp.StatusCode),
		slog.Duration("elapsed", time.Since(cl.start)),
	)
	return resp, cl, nil
}

// Do sends req and decodes the JSON response into out. A nil out discards the body.
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	resp, cl, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer cl.cancel()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportError(ctx, cl, err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := sonic.ConfigStd.Unmarshal(data, out); err != nil {
		return &types.Error{Message: "Error parsing JSON response", Err: err}
	}
	return nil
}

// transportError maps a failure without a usable response.
func (c *Client) transportError(ctx context.Context, cl *call, err error) error {
	var rerr error = &types.RequestError{URL: cl.url, Err: err}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		cause := context.Cause(ctx)
		if cause == nil {
			cause = err
		}
		rerr = &types.AbortError{URL: cl.url, Err: cause}
	}

	cl.logger.WarnContext(ctx, "request failed",
		slog.String("task", string(cl.task)),
		slog.String("url", cl.url),
		slog.Any("error", err),
	)
	return rerr
}

// statusError maps a non-success response onto a [*types.RequestError].
func (c *Client) statusError(ctx context.Context, cl *call, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	rerr := &types.RequestError{
		URL:        cl.url,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       body,
	}
	if apiErr, ok := types.ParseAPIError(body); ok {
		rerr.Reason = apiErr.Status
		rerr.Message = apiErr.Message
		rerr.Details = apiErr.Details
	}

	cl.logger.WarnContext(ctx, "request returned an error status",
		slog.String("task", string(cl.task)),
		slog.String("url", cl.url),
		slog.Int("status_code", resp.StatusCode),
		slog.String("reason", rerr.Reason),
	)
	return rerr
}
