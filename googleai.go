// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package googleai

import (
	"os"

	"github.com/go-a2a/googleai-go/caching"
	"github.com/go-a2a/googleai-go/internal/rest"
	"github.com/go-a2a/googleai-go/model"
	"github.com/go-a2a/googleai-go/option"
	"github.com/go-a2a/googleai-go/types"
)

// Version is the version of the SDK reported in the x-goog-api-client header.
const Version = rest.ClientVersion

// EnvAPIKey is the environment variable read when [NewClient] is given no API key.
const EnvAPIKey = "GOOGLE_API_KEY"

// Client is the entry point of the SDK. It holds the credentials and request
// options shared by the models and the cache manager it creates.
type Client struct {
	apiKey string
	opts   []option.RequestOption
}

// NewClient returns a [Client] authenticated with apiKey.
//
// An empty apiKey falls back to the GOOGLE_API_KEY environment variable. It is
// an error to have neither an API key nor an [option.WithTokenSource].
func NewClient(apiKey string, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvAPIKey)
	}
	if apiKey == "" && option.Resolve(opts...).TokenSource == nil {
		return nil, &types.InputError{Message: "Must provide an API key or a token source. Set " + EnvAPIKey + " or use option.WithTokenSource."}
	}

	return &Client{
		apiKey: apiKey,
		opts:   opts,
	}, nil
}

// baseOptions returns the model options carrying the client credentials and
// request options, followed by opts.
func (c *Client) baseOptions(opts []model.Option) []model.Option {
	return append([]model.Option{
		model.WithAPIKey(c.apiKey),
		model.WithRequestOptions(c.opts...),
	}, opts...)
}

// GenerativeModel returns the [*model.GenerativeModel] name, e.g. "gemini-1.5-flash".
//
// Request options passed with [model.WithRequestOptions] are applied after the
// client's.
func (c *Client) GenerativeModel(name string, opts ...model.Option) (*model.GenerativeModel, error) {
	return model.New(name, c.baseOptions(opts)...)
}

// GenerativeModelFromCachedContent returns a [*model.GenerativeModel] that uses
// cc as context. See [model.NewFromCachedContent].
func (c *Client) GenerativeModelFromCachedContent(cc *types.CachedContent, opts ...model.Option) (*model.GenerativeModel, error) {
	return model.NewFromCachedContent(cc, c.baseOptions(opts)...)
}

// CacheManager returns a [*caching.CacheManager] sharing the client's credentials.
// Extra request options are applied after the client's.
func (c *Client) CacheManager(opts ...option.RequestOption) *caching.CacheManager {
	all := append(append([]option.RequestOption(nil), c.opts...), opts...)
	return caching.NewCacheManager(c.apiKey, all...)
}
