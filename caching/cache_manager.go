// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package caching

import (
	"context"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-a2a/googleai-go/internal/rest"
	"github.com/go-a2a/googleai-go/option"
	"github.com/go-a2a/googleai-go/pkg/logging"
	"github.com/go-a2a/googleai-go/types"
)

const cachedContentsPath = "cachedContents"

// CacheManager creates, lists, reads, updates and deletes cached contents.
type CacheManager struct {
	client *rest.Client
}

// NewCacheManager returns a [CacheManager] that authenticates with apiKey.
func NewCacheManager(apiKey string, opts ...option.RequestOption) *CacheManager {
	return &CacheManager{
		client: rest.New(apiKey, option.Resolve(opts...)),
	}
}

func (cm *CacheManager) logger(ctx context.Context) *slog.Logger {
	return logging.Resolve(ctx, cm.client.Options().Logger)
}

// resourceURL returns the URL of the cached content name.
func (cm *CacheManager) resourceURL(name string, q url.Values) (string, error) {
	id, err := types.ParseCacheName(name)
	if err != nil {
		return "", err
	}
	return cm.client.ResourceURL(cachedContentsPath+"/"+id, q), nil
}

// Create uploads a new cached content.
//
// The content is cached for params.Model until its expiration. Only models that
// support content caching can be used, and the server enforces a minimum token
// count for the cached contents.
//
// Parameters:
//   - ctx: Context for the request
//   - params: Creation parameters (must not be nil, Model is required)
//
// A bare model name is sent as "models/{name}". A TTL is sent as "<n>s" and an
// expire time in UTC. Invalid parameters are reported as [*types.InputError]
// before any request is sent.
//
// Returns the created cached content, including its server-assigned name, or an error.
func (cm *CacheManager) Create(ctx context.Context, params *types.CachedContentCreateParams) (*types.CachedContent, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	body := *params
	modelName, err := types.NormalizeModelName(params.Model)
	if err != nil {
		return nil, err
	}
	body.Model = modelName

	logger := cm.logger(ctx)
	logger.InfoContext(ctx, "Creating cached content",
		slog.String("model", body.Model),
		slog.String("display_name", body.DisplayName),
		slog.String("expiration", body.Expiration.String()),
	)

	var cc types.CachedContent
	req := &rest.Request{
		Task:   rest.TaskCreateCachedContent,
		Method: http.MethodPost,
		URL:    cm.client.ResourceURL(cachedContentsPath, nil),
		Body:   &body,
	}
	if err := cm.client.Do(ctx, req, &cc); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Cached content created successfully",
		slog.String("cache_name", cc.Name),
		slog.Time("expire_time", cc.ExpireTime),
	)
	return &cc, nil
}

// CreateFromJSON creates a cached content from a JSON payload in the shape
// accepted by [types.ParseCachedContentCreateParams].
func (cm *CacheManager) CreateFromJSON(ctx context.Context, data []byte) (*types.CachedContent, error) {
	params, err := types.ParseCachedContentCreateParams(data)
	if err != nil {
		return nil, err
	}
	return cm.Create(ctx, params)
}

// List returns one page of cached contents. A nil params lists the first page
// with the server's default page size.
func (cm *CacheManager) List(ctx context.Context, params *types.ListCachedContentsParams) (*types.ListCachedContentsResponse, error) {
	q := make(url.Values)
	if params != nil {
		if params.PageSize > 0 {
			q.Set("pageSize", strconv.FormatInt(int64(params.PageSize), 10))
		}
		if params.PageToken != "" {
			q.Set("pageToken", params.PageToken)
		}
	}

	cm.logger(ctx).InfoContext(ctx, "Listing cached content",
		slog.String("page_size", q.Get("pageSize")),
		slog.String("page_token", q.Get("pageToken")),
	)

	var resp types.ListCachedContentsResponse
	req := &rest.Request{
		Task:   rest.TaskListCachedContents,
		Method: http.MethodGet,
		URL:    cm.client.ResourceURL(cachedContentsPath, q),
	}
	if err := cm.client.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// All returns an iterator over every cached content, following page tokens
// until the last page. Iteration stops at the first error.
func (cm *CacheManager) All(ctx context.Context, pageSize int32) iter.Seq2[*types.CachedContent, error] {
	return func(yield func(*types.CachedContent, error) bool) {
		params := &types.ListCachedContentsParams{PageSize: pageSize}
		for {
			page, err := cm.List(ctx, params)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, cc := range page.CachedContents {
				if !yield(cc, nil) {
					return
				}
			}
			if page.NextPageToken == "" {
				return
			}
			params.PageToken = page.NextPageToken
		}
	}
}

// Get returns the cached content name.
func (cm *CacheManager) Get(ctx context.Context, name string) (*types.CachedContent, error) {
	u, err := cm.resourceURL(name, nil)
	if err != nil {
		return nil, err
	}

	var cc types.CachedContent
	req := &rest.Request{
		Task:   rest.TaskGetCachedContent,
		Method: http.MethodGet,
		URL:    u,
	}
	if err := cm.client.Do(ctx, req, &cc); err != nil {
		return nil, err
	}
	return &cc, nil
}

// Update changes the expiration of the cached content name.
//
// Parameters:
//   - ctx: Context for the request
//   - name: Resource name, "cachedContents/{id}" or "{id}"
//   - params: Update parameters (must not be nil)
//
// When params.UpdateMask is empty the mask is the expiration field that is set,
// "ttl" or "expireTime". Each entry is sent in snake_case, comma separated, as
// the update_mask query parameter.
//
// Returns the updated cached content or an error.
func (cm *CacheManager) Update(ctx context.Context, name string, params *types.CachedContentUpdateParams) (*types.CachedContent, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	mask := params.Mask()
	fields := make([]string, len(mask))
	for i, f := range mask {
		fields[i] = types.CamelToSnake(f)
	}
	q := url.Values{"update_mask": {strings.Join(fields, ",")}}

	u, err := cm.resourceURL(name, q)
	if err != nil {
		return nil, err
	}

	logger := cm.logger(ctx)
	logger.InfoContext(ctx, "Updating cached content",
		slog.String("cache_name", name),
		slog.Any("update_mask", fields),
	)

	var cc types.CachedContent
	req := &rest.Request{
		Task:   rest.TaskUpdateCachedContent,
		Method: http.MethodPatch,
		URL:    u,
		Body:   params,
	}
	if err := cm.client.Do(ctx, req, &cc); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Cached content updated successfully",
		slog.String("cache_name", cc.Name),
		slog.Time("expire_time", cc.ExpireTime),
	)
	return &cc, nil
}

// Delete removes the cached content name.
func (cm *CacheManager) Delete(ctx context.Context, name string) error {
	u, err := cm.resourceURL(name, nil)
	if err != nil {
		return err
	}

	logger := cm.logger(ctx)
	logger.InfoContext(ctx, "Deleting cached content", slog.String("cache_name", name))

	req := &rest.Request{
		Task:   rest.TaskDeleteCachedContent,
		Method: http.MethodDelete,
		URL:    u,
	}
	if err := cm.client.Do(ctx, req, nil); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Cached content deleted successfully", slog.String("cache_name", name))
	return nil
}
