// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Command googleai is a command line client for the Google Generative Language API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-a2a/googleai-go/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "googleai:", err)
		stop()
		os.Exit(1)
	}
}
