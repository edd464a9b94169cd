// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"log/slog"

	"google.golang.org/genai"

	"github.com/go-a2a/googleai-go/option"
	"github.com/go-a2a/googleai-go/types"
)

// Config holds the parameters sent with every request of a [GenerativeModel].
type Config struct {
	// apiKey authenticates requests.
	apiKey string

	// requestOptions configure the transport.
	requestOptions []option.RequestOption

	// generationConfig contains configuration for generation.
	generationConfig *genai.GenerationConfig

	// safetySettings contains safety settings for content generation.
	safetySettings []*genai.SafetySetting

	tools             []*genai.Tool
	toolConfig        *genai.ToolConfig
	systemInstruction *genai.Content

	// cachedContent is the name of the cached content used as context.
	cachedContent string

	// logger is the logger used when the request context carries none.
	logger *slog.Logger
}

// Option is a function that modifies the [Config] model.
type Option interface {
	apply(base Config) Config
}

type apiKeyOption string

func (o apiKeyOption) apply(base Config) Config {
	base.apiKey = string(o)
	return base
}

// WithAPIKey sets the API key of the model.
func WithAPIKey(apiKey string) Option {
	return apiKeyOption(apiKey)
}

type requestOptionsOption []option.RequestOption

func (o requestOptionsOption) apply(base Config) Config {
	base.requestOptions = append(base.requestOptions, o...)
	return base
}

// WithRequestOptions appends transport options. Later options override earlier ones.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return requestOptionsOption(opts)
}

type generationConfigOption struct{ *genai.GenerationConfig }

func (o generationConfigOption) apply(base Config) Config {
	base.generationConfig = o.GenerationConfig
	return base
}

// WithGenerationConfig sets the generation configuration of the model.
func WithGenerationConfig(config *genai.GenerationConfig) Option {
	return generationConfigOption{config}
}

type safetySettingOption []*genai.SafetySetting

func (o safetySettingOption) apply(base Config) Config {
	base.safetySettings = append(base.safetySettings, o...)
	return base
}

// WithSafetySettings appends safety settings to the model.
func WithSafetySettings(settings ...*genai.SafetySetting) Option {
	return safetySettingOption(settings)
}

type toolsOption []*genai.Tool

func (o toolsOption) apply(base Config) Config {
	base.tools = append(base.tools, o...)
	return base
}

// WithTools appends tools the model may call.
func WithTools(tools ...*genai.Tool) Option {
	return toolsOption(tools)
}

type toolConfigOption struct{ *genai.ToolConfig }

func (o toolConfigOption) apply(base Config) Config {
	base.toolConfig = o.ToolConfig
	return base
}

// WithToolConfig sets the tool configuration of the model.
func WithToolConfig(config *genai.ToolConfig) Option {
	return toolConfigOption{config}
}

type systemInstructionOption struct{ *genai.Content }

func (o systemInstructionOption) apply(base Config) Config {
	base.systemInstruction = o.Content
	return base
}

// WithSystemInstruction sets the system instruction of the model.
func WithSystemInstruction(content *genai.Content) Option {
	return systemInstructionOption{content}
}

// WithSystemInstructionText sets a plain text system instruction.
func WithSystemInstructionText(text string) Option {
	return systemInstructionOption{types.SystemInstruction(text)}
}

type cachedContentOption string

func (o cachedContentOption) apply(base Config) Config {
	base.cachedContent = string(o)
	return base
}

// WithCachedContent makes every request use the named cached content as context.
//
// The name is sent as is, e.g. "cachedContents/abc123". Use
// [NewFromCachedContent] to also adopt the cache's tools and system instruction.
func WithCachedContent(name string) Option {
	return cachedContentOption(name)
}

type loggerOption struct{ *slog.Logger }

func (o loggerOption) apply(base Config) Config {
	base.logger = o.Logger
	return base
}

// WithLogger sets the logger of the model.
func WithLogger(logger *slog.Logger) Option {
	return loggerOption{logger}
}
