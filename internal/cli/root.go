// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	googleai "github.com/go-a2a/googleai-go"
	"github.com/go-a2a/googleai-go/metrics"
	"github.com/go-a2a/googleai-go/option"
	"github.com/go-a2a/googleai-go/pkg/logging"
)

// App is the state shared by the commands of one invocation.
type App struct {
	in  io.Reader
	out *printer
	err *printer

	v       *viper.Viper
	cfg     *Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	stopMetrics func(context.Context) error
}

// Execute runs the CLI with the process arguments and standard streams.
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
}

// NewRootCommand returns the googleai command reading from in and writing to out and errOut.
func NewRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	app := &App{
		in:  in,
		out: newPrinter(out),
		err: newPrinter(errOut),
		v:   viper.New(),
	}

	cmd := &cobra.Command{
		Use:     "googleai",
		Short:   "Google Generative Language API command line client",
		Version: googleai.Version,
		Long: heredoc.Doc(`
			Chat with Gemini models and manage cached contents of the
			Google Generative Language API.

			The API key is read from --api-key, $GOOGLEAI_API_KEY or
			$GOOGLE_API_KEY, in that order. A .env file in the working
			directory is loaded first.
		`),
		Example: heredoc.Doc(`
			# Start an interactive chat
			$ googleai chat

			# Ask one question about an image
			$ googleai chat --image photo.png "What is in this picture?"

			# Cache a document for five minutes
			$ googleai cache create --model gemini-1.5-flash-001 --ttl PT5M --file doc.txt
		`),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return app.teardown(cmd.Context())
		},
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.CompletionOptions.DisableDefaultCmd = true

	addPersistentFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newChatCommand(app),
		newCacheCommand(app),
	)
	return cmd
}

// setup resolves the configuration, logger and metrics of the invocation.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(a.v, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger, err := logging.New(a.err.w, level, logging.Format(cfg.LogFormat))
	if err != nil {
		return err
	}
	a.logger = logger
	cmd.SetContext(logging.NewContext(cmd.Context(), logger))

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		a.metrics = metrics.New(reg)
		stop, err := serveMetrics(cfg.MetricsAddr, reg, logger)
		if err != nil {
			return err
		}
		a.stopMetrics = stop
	}
	return nil
}

func (a *App) teardown(ctx context.Context) error {
	if a.stopMetrics == nil {
		return nil
	}
	return a.stopMetrics(ctx)
}

// client returns a [googleai.Client] for the resolved configuration.
func (a *App) client() (*googleai.Client, error) {
	if a.cfg == nil {
		return nil, fmt.Errorf("configuration is not loaded")
	}
	opts := append(a.cfg.requestOptions(),
		option.WithLogger(a.logger),
		option.WithMetrics(a.metrics),
	)
	return googleai.NewClient(a.cfg.APIKey, opts...)
}
