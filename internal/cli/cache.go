// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sosodev/duration"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/go-a2a/googleai-go/caching"
	"github.com/go-a2a/googleai-go/internal/xiter"
	"github.com/go-a2a/googleai-go/types"
)

// deleteConcurrency bounds the number of deletes in flight.
const deleteConcurrency = 4

func newCacheCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cache",
		Aliases: []string{"caches"},
		Short:   "Manage cached contents",
		Long: heredoc.Doc(`
			Create, list, show, update and delete cached contents.

			Names may be given as "cachedContents/<id>" or as the bare id.
			Durations accept Go syntax (5m, 1h30m) and ISO 8601 (PT5M).
		`),
	}
	cmd.AddCommand(
		newCacheCreateCommand(app),
		newCacheListCommand(app),
		newCacheGetCommand(app),
		newCacheUpdateCommand(app),
		newCacheDeleteCommand(app),
	)
	return cmd
}

func (a *App) cacheManager() (*caching.CacheManager, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	return client.CacheManager(), nil
}

// parseTTL parses a Go duration or an ISO 8601 duration.
func parseTTL(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	d, err := duration.Parse(s)
	if err != nil {
		return 0, types.NewInputError("invalid ttl %q: want a duration such as 5m or PT5M", s)
	}
	return d.ToTimeDuration(), nil
}

// parseExpiration builds an expiration from the --ttl and --expire-time flags.
func parseExpiration(ttl, expireTime string) (types.Expiration, error) {
	switch {
	case ttl != "" && expireTime != "":
		return types.Expiration{}, &types.InputError{Message: "You cannot specify both `ttl` and `expireTime`. You must choose one."}
	case ttl != "":
		d, err := parseTTL(ttl)
		if err != nil {
			return types.Expiration{}, err
		}
		return types.TTL(d), nil
	case expireTime != "":
		t, err := time.Parse(time.RFC3339, expireTime)
		if err != nil {
			return types.Expiration{}, types.NewInputError("invalid expire time %q: want RFC 3339, e.g. 2025-01-02T15:04:05Z", expireTime)
		}
		return types.ExpireAt(t), nil
	default:
		return types.Expiration{}, nil
	}
}

// loadFileContent reads path into a user content. UTF-8 text is sent as text,
// anything else as inline data.
func loadFileContent(path string) (*genai.Content, error) {
	blob, err := loadFilePart(path)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(blob.MIMEType, "text/") && utf8.Valid(blob.Data) {
		return genai.NewContentFromText(string(blob.Data), genai.RoleUser), nil
	}
	return genai.NewContentFromBytes(blob.Data, blob.MIMEType, genai.RoleUser), nil
}

func readInput(in io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(in)
	}
	return os.ReadFile(path)
}

type cacheCreateOptions struct {
	model       string
	displayName string
	system      string
	ttl         string
	expireTime  string
	files       []string
	jsonPath    string
}

func newCacheCreateCommand(app *App) *cobra.Command {
	opts := &cacheCreateOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a cached content",
		Example: heredoc.Doc(`
			$ googleai cache create --model gemini-1.5-flash-001 --ttl 10m --file report.pdf --system "You answer questions about the report."
			$ googleai cache create --json cache.json
			$ echo '{"model":"gemini-1.5-flash-001","ttlSeconds":300,"contents":[...]}' | googleai cache create --json -
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runCacheCreate(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.model, "model", "m", "", "model name")
	f.StringVar(&opts.displayName, "display-name", "", "display name")
	f.StringVar(&opts.system, "system", "", "system instruction")
	f.StringVar(&opts.ttl, "ttl", "", "time to live, e.g. 5m or PT5M")
	f.StringVar(&opts.expireTime, "expire-time", "", "absolute expiry time in RFC 3339")
	f.StringSliceVarP(&opts.files, "file", "f", nil, "file added to the cached contents (repeatable)")
	f.StringVar(&opts.jsonPath, "json", "", `JSON creation payload file, "-" for stdin`)
	cmd.MarkFlagsMutuallyExclusive("json", "model")
	cmd.MarkFlagsMutuallyExclusive("json", "file")
	return cmd
}

func (a *App) runCacheCreate(ctx context.Context, o *cacheCreateOptions) error {
	cm, err := a.cacheManager()
	if err != nil {
		return err
	}

	var cc *types.CachedContent
	if o.jsonPath != "" {
		data, err := readInput(a.in, o.jsonPath)
		if err != nil {
			return fmt.Errorf("read %s: %w", o.jsonPath, err)
		}
		cc, err = cm.CreateFromJSON(ctx, data)
		if err != nil {
			return err
		}
	} else {
		exp, err := parseExpiration(o.ttl, o.expireTime)
		if err != nil {
			return err
		}
		params := &types.CachedContentCreateParams{
			Model:       o.model,
			DisplayName: o.displayName,
			Expiration:  exp,
		}
		if o.system != "" {
			params.SystemInstruction = types.SystemInstruction(o.system)
		}
		for _, path := range o.files {
			c, err := loadFileContent(path)
			if err != nil {
				return err
			}
			params.Contents = append(params.Contents, c)
		}
		cc, err = cm.Create(ctx, params)
		if err != nil {
			return err
		}
	}

	a.err.Successf("Created %s", cc.Name)
	return a.out.JSON(cc)
}

func newCacheListCommand(app *App) *cobra.Command {
	var (
		pageSize  int32
		pageToken string
		all       bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cached contents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cm, err := app.cacheManager()
			if err != nil {
				return err
			}

			if all {
				ccs, err := xiter.Collect(cm.All(ctx, pageSize))
				if err != nil {
					return err
				}
				app.out.CachedContents(ccs)
				return nil
			}

			page, err := cm.List(ctx, &types.ListCachedContentsParams{PageSize: pageSize, PageToken: pageToken})
			if err != nil {
				return err
			}
			app.out.CachedContents(page.CachedContents)
			if page.NextPageToken != "" {
				app.err.Infof("More results: --page-token %s", page.NextPageToken)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Int32Var(&pageSize, "page-size", 0, "maximum number of results per page")
	f.StringVar(&pageToken, "page-token", "", "page token of a previous listing")
	f.BoolVar(&all, "all", false, "follow page tokens and list everything")
	cmd.MarkFlagsMutuallyExclusive("all", "page-token")
	return cmd
}

func newCacheGetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a cached content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := app.cacheManager()
			if err != nil {
				return err
			}
			cc, err := cm.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return app.out.JSON(cc)
		},
	}
}

func newCacheUpdateCommand(app *App) *cobra.Command {
	var ttl, expireTime string

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Change the expiration of a cached content",
		Example: heredoc.Doc(`
			$ googleai cache update abc123 --ttl 1h
			$ googleai cache update cachedContents/abc123 --expire-time 2025-01-02T15:04:05Z
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := parseExpiration(ttl, expireTime)
			if err != nil {
				return err
			}
			cm, err := app.cacheManager()
			if err != nil {
				return err
			}
			cc, err := cm.Update(cmd.Context(), args[0], &types.CachedContentUpdateParams{Expiration: exp})
			if err != nil {
				return err
			}
			app.err.Successf("Updated %s", cc.Name)
			return app.out.JSON(cc)
		},
	}

	f := cmd.Flags()
	f.StringVar(&ttl, "ttl", "", "new time to live, e.g. 5m or PT5M")
	f.StringVar(&expireTime, "expire-time", "", "new absolute expiry time in RFC 3339")
	cmd.MarkFlagsOneRequired("ttl", "expire-time")
	cmd.MarkFlagsMutuallyExclusive("ttl", "expire-time")
	return cmd
}

func newCacheDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>...",
		Aliases: []string{"rm"},
		Short:   "Delete cached contents",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := app.cacheManager()
			if err != nil {
				return err
			}
			return app.deleteCaches(cmd.Context(), cm, args)
		},
	}
}

// deleteCaches deletes names concurrently and reports each result. It returns
// the first error after every delete has finished.
func (a *App) deleteCaches(ctx context.Context, cm *caching.CacheManager, names []string) error {
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(deleteConcurrency)

	for _, name := range names {
		g.Go(func() error {
			err := cm.Delete(ctx, name)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				a.err.Errorf("%s: %v", name, err)
				return err
			}
			a.err.Successf("Deleted %s", name)
			return nil
		})
	}
	return g.Wait()
}
