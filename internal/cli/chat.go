// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/go-a2a/googleai-go/model"
	"github.com/go-a2a/googleai-go/types"
)

type chatOptions struct {
	model         string
	system        string
	cachedContent string
	seeds         []string
	images        []string
	stream        bool
	temperature   float32
	maxTokens     int32
}

func newChatCommand(app *App) *cobra.Command {
	opts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with a model",
		Long: heredoc.Doc(`
			Chat with a model. With a message argument the reply is printed
			and the command exits, otherwise an interactive session reads one
			message per line until EOF or "/exit".

			--seed adds earlier turns to the history as role:text, e.g.
			--seed "user:Hello, I have 2 dogs." --seed "model:Great to meet you."
			--image attaches files to the first message.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runChat(cmd.Context(), opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.model, "model", "m", "gemini-1.5-flash", "model name")
	f.StringVar(&opts.system, "system", "", "system instruction")
	f.StringVar(&opts.cachedContent, "cached-content", "", "cached content to use as context")
	f.StringArrayVar(&opts.seeds, "seed", nil, "history entry as role:text (repeatable)")
	f.StringSliceVar(&opts.images, "image", nil, "file attached to the first message (repeatable)")
	f.BoolVar(&opts.stream, "stream", false, "stream the reply as it is generated")
	f.Float32Var(&opts.temperature, "temperature", -1, "sampling temperature, negative for the model default")
	f.Int32Var(&opts.maxTokens, "max-tokens", 0, "maximum number of output tokens, 0 for the model default")
	return cmd
}

// parseSeed parses a role:text history entry.
func parseSeed(s string) (*genai.Content, error) {
	role, text, ok := strings.Cut(s, ":")
	if !ok || text == "" {
		return nil, types.NewInputError("invalid seed %q, want role:text", s)
	}
	return genai.NewContentFromText(text, genai.Role(strings.TrimSpace(role))), nil
}

// loadFilePart reads path into an inline data part of its detected MIME type.
func loadFilePart(path string) (model.Blob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Blob{}, fmt.Errorf("read %s: %w", path, err)
	}
	mt, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return model.Blob{MIMEType: mt, Data: data}, nil
}

func (o *chatOptions) modelOptions() []model.Option {
	var opts []model.Option
	if o.system != "" {
		opts = append(opts, model.WithSystemInstructionText(o.system))
	}

	var gc genai.GenerationConfig
	set := false
	if o.temperature >= 0 {
		gc.Temperature = genai.Ptr(o.temperature)
		set = true
	}
	if o.maxTokens > 0 {
		gc.MaxOutputTokens = o.maxTokens
		set = true
	}
	if set {
		opts = append(opts, model.WithGenerationConfig(&gc))
	}
	return opts
}

func (a *App) newChatModel(ctx context.Context, o *chatOptions) (*model.GenerativeModel, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	if o.cachedContent == "" {
		return client.GenerativeModel(o.model, o.modelOptions()...)
	}

	cc, err := client.CacheManager().Get(ctx, o.cachedContent)
	if err != nil {
		return nil, err
	}
	return client.GenerativeModelFromCachedContent(cc, o.modelOptions()...)
}

func (a *App) runChat(ctx context.Context, o *chatOptions, args []string) error {
	history := make([]*genai.Content, 0, len(o.seeds))
	for _, s := range o.seeds {
		c, err := parseSeed(s)
		if err != nil {
			return err
		}
		history = append(history, c)
	}

	var attachments []model.Part
	for _, path := range o.images {
		blob, err := loadFilePart(path)
		if err != nil {
			return err
		}
		attachments = append(attachments, blob)
	}

	m, err := a.newChatModel(ctx, o)
	if err != nil {
		return err
	}
	cs, err := m.StartChat(history...)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return a.sendTurn(ctx, cs, o.stream, append(attachments, model.Text(args[0])))
	}

	a.err.Infof("Chatting with %s. Type /exit or press Ctrl-D to quit.", m.Name())
	sc := bufio.NewScanner(a.in)
	for {
		a.err.Prompt("user")
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		}

		parts := append(attachments, model.Text(line))
		attachments = nil
		if err := a.sendTurn(ctx, cs, o.stream, parts); err != nil {
			a.err.Errorf("%v", err)
		}
	}
	return sc.Err()
}

// sendTurn sends one message and prints the reply.
func (a *App) sendTurn(ctx context.Context, cs *model.ChatSession, stream bool, parts []model.Part) error {
	if !stream {
		resp, err := cs.SendMessage(ctx, parts...)
		if err != nil {
			return err
		}
		text, err := resp.Text()
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out.w, text)
		return nil
	}

	res, err := cs.SendMessageStream(ctx, parts...)
	if err != nil {
		return err
	}
	defer res.Close()

	for chunk, err := range res.Stream() {
		if err != nil {
			return err
		}
		text, err := chunk.Text()
		if err != nil {
			return err
		}
		fmt.Fprint(a.out.w, text)
	}
	fmt.Fprintln(a.out.w)
	return nil
}
