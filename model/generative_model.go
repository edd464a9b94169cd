// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"

	"google.golang.org/genai"

	"github.com/go-a2a/googleai-go/internal/rest"
	"github.com/go-a2a/googleai-go/option"
	"github.com/go-a2a/googleai-go/pkg/logging"
	"github.com/go-a2a/googleai-go/types"
)

// GenerativeModel sends generation, token counting and embedding requests to one model.
//
// A GenerativeModel is safe for concurrent use.
type GenerativeModel struct {
	name   string
	client *rest.Client

	generationConfig  *genai.GenerationConfig
	safetySettings    []*genai.SafetySetting
	tools             []*genai.Tool
	toolConfig        *genai.ToolConfig
	systemInstruction *genai.Content
	cachedContent     string
}

// New returns a [GenerativeModel] for name.
//
// A name without "/" is treated as "models/{name}".
func New(name string, opts ...Option) (*GenerativeModel, error) {
	cfg := Config{}
	for _, opt := range opts {
		cfg = opt.apply(cfg)
	}
	return newModel(name, cfg)
}

func newModel(name string, cfg Config) (*GenerativeModel, error) {
	normalized, err := types.NormalizeModelName(name)
	if err != nil {
		return nil, err
	}

	ropts := cfg.requestOptions
	if cfg.logger != nil {
		ropts = append(ropts, option.WithLogger(cfg.logger))
	}

	return &GenerativeModel{
		name:              normalized,
		client:            rest.New(cfg.apiKey, option.Resolve(ropts...)),
		generationConfig:  cfg.generationConfig,
		safetySettings:    cfg.safetySettings,
		tools:             cfg.tools,
		toolConfig:        cfg.toolConfig,
		systemInstruction: cfg.systemInstruction,
		cachedContent:     cfg.cachedContent,
	}, nil
}

// NewFromCachedContent returns a [GenerativeModel] that uses cc as context.
//
// The model, tools, tool config and system instruction of cc are adopted. A
// system instruction given in opts must match the one stored in cc.
func NewFromCachedContent(cc *types.CachedContent, opts ...Option) (*GenerativeModel, error) {
	if cc == nil || cc.Name == "" {
		return nil, &types.InputError{Message: "Cached content must contain a `name` field."}
	}
	if cc.Model == "" {
		return nil, &types.InputError{Message: "Cached content must contain a `model` field."}
	}

	cfg := Config{}
	for _, opt := range opts {
		cfg = opt.apply(cfg)
	}

	if cfg.systemInstruction != nil && cc.SystemInstruction != nil && !reflect.DeepEqual(cfg.systemInstruction, cc.SystemInstruction) {
		return nil, &types.InputError{Message: `Different value for "systemInstruction" specified in model options and cachedContent`}
	}

	cfg.tools = cc.Tools
	cfg.toolConfig = cc.ToolConfig
	cfg.systemInstruction = cc.SystemInstruction
	cfg.cachedContent = cc.Name

	return newModel(cc.Model, cfg)
}

// Name returns the resource name of the model, e.g. "models/gemini-1.5-flash".
func (m *GenerativeModel) Name() string {
	return m.name
}

// CachedContent returns the name of the cached content used as context, if any.
func (m *GenerativeModel) CachedContent() string {
	return m.cachedContent
}

// generateContentRequest is the body of generateContent and streamGenerateContent.
type generateContentRequest struct {
	Model             string                  `json:"model,omitempty"`
	Contents          []*genai.Content        `json:"contents"`
	GenerationConfig  *genai.GenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings    []*genai.SafetySetting  `json:"safetySettings,omitempty"`
	Tools             []*genai.Tool           `json:"tools,omitempty"`
	ToolConfig        *genai.ToolConfig       `json:"toolConfig,omitempty"`
	SystemInstruction *genai.Content          `json:"systemInstruction,omitempty"`
	CachedContent     string                  `json:"cachedContent,omitempty"`
}

func (m *GenerativeModel) newRequest(contents []*genai.Content) *generateContentRequest {
	return &generateContentRequest{
		Contents:          contents,
		GenerationConfig:  m.generationConfig,
		SafetySettings:    m.safetySettings,
		Tools:             m.tools,
		ToolConfig:        m.toolConfig,
		SystemInstruction: m.systemInstruction,
		CachedContent:     m.cachedContent,
	}
}

// GenerateContent generates a response to a single message built from parts.
func (m *GenerativeModel) GenerateContent(ctx context.Context, parts ...Part) (*Response, error) {
	msg, err := NewMessage(parts...)
	if err != nil {
		return nil, err
	}
	return m.Generate(ctx, []*genai.Content{msg})
}

// Generate generates a response to contents, a full conversation ending with
// the latest message.
func (m *GenerativeModel) Generate(ctx context.Context, contents []*genai.Content) (*Response, error) {
	var resp genai.GenerateContentResponse
	req := &rest.Request{
		Task:   rest.TaskGenerateContent,
		Method: http.MethodPost,
		URL:    m.client.ModelURL(m.name, rest.TaskGenerateContent),
		Body:   m.newRequest(contents),
	}
	if err := m.client.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &Response{&resp}, nil
}

// GenerateContentStream streams a response to a single message built from parts.
//
// The caller must drain the result or call [StreamResult.Close].
func (m *GenerativeModel) GenerateContentStream(ctx context.Context, parts ...Part) (*StreamResult, error) {
	msg, err := NewMessage(parts...)
	if err != nil {
		return nil, err
	}
	return m.GenerateStream(ctx, []*genai.Content{msg})
}

// GenerateStream streams a response to contents.
func (m *GenerativeModel) GenerateStream(ctx context.Context, contents []*genai.Content) (*StreamResult, error) {
	return m.generateStream(ctx, contents, nil)
}

func (m *GenerativeModel) generateStream(ctx context.Context, contents []*genai.Content, onDone func(*Response, error)) (*StreamResult, error) {
	s, err := rest.OpenStream[genai.GenerateContentResponse](ctx, m.client, &rest.Request{
		Task:   rest.TaskStreamGenerateContent,
		Method: http.MethodPost,
		URL:    m.client.ModelURL(m.name, rest.TaskStreamGenerateContent),
		Body:   m.newRequest(contents),
	})
	if err != nil {
		return nil, err
	}
	return newStreamResult(s, onDone), nil
}

type countTokensRequest struct {
	GenerateContentRequest *generateContentRequest `json:"generateContentRequest"`
}

// CountTokens counts the tokens of a single message built from parts, together
// with the model's system instruction, tools and cached content.
func (m *GenerativeModel) CountTokens(ctx context.Context, parts ...Part) (*genai.CountTokensResponse, error) {
	msg, err := NewMessage(parts...)
	if err != nil {
		return nil, err
	}
	return m.CountContentsTokens(ctx, []*genai.Content{msg})
}

// CountContentsTokens counts the tokens of contents.
func (m *GenerativeModel) CountContentsTokens(ctx context.Context, contents []*genai.Content) (*genai.CountTokensResponse, error) {
	body := m.newRequest(contents)
	body.Model = m.name

	var resp genai.CountTokensResponse
	req := &rest.Request{
		Task:   rest.TaskCountTokens,
		Method: http.MethodPost,
		URL:    m.client.ModelURL(m.name, rest.TaskCountTokens),
		Body:   &countTokensRequest{GenerateContentRequest: body},
	}
	if err := m.client.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TaskType is the intended downstream use of an embedding.
type TaskType string

// Embedding task types.
const (
	TaskTypeUnspecified        TaskType = "TASK_TYPE_UNSPECIFIED"
	TaskTypeRetrievalQuery     TaskType = "RETRIEVAL_QUERY"
	TaskTypeRetrievalDocument  TaskType = "RETRIEVAL_DOCUMENT"
	TaskTypeSemanticSimilarity TaskType = "SEMANTIC_SIMILARITY"
	TaskTypeClassification     TaskType = "CLASSIFICATION"
	TaskTypeClustering         TaskType = "CLUSTERING"
)

// EmbedContentRequest is a request to embed one content.
type EmbedContentRequest struct {
	// Model is set by the [GenerativeModel] in batch requests.
	Model string `json:"model,omitempty"`

	Content  *genai.Content `json:"content"`
	TaskType TaskType       `json:"taskType,omitempty"`

	// Title is only valid with [TaskTypeRetrievalDocument].
	Title string `json:"title,omitempty"`

	OutputDimensionality *int32 `json:"outputDimensionality,omitempty"`
}

// NewEmbedContentRequest returns an [EmbedContentRequest] for a user content built from parts.
func NewEmbedContentRequest(parts ...Part) *EmbedContentRequest {
	return &EmbedContentRequest{
		Content: genai.NewContentFromParts(toParts(parts), RoleUser),
	}
}

type embedContentResponse struct {
	Embedding *genai.ContentEmbedding `json:"embedding"`
}

// EmbedContent returns the embedding of req.
func (m *GenerativeModel) EmbedContent(ctx context.Context, req *EmbedContentRequest) (*genai.ContentEmbedding, error) {
	if req == nil || req.Content == nil {
		return nil, &types.InputError{Message: "embed content request must have a content"}
	}

	var resp embedContentResponse
	if err := m.client.Do(ctx, &rest.Request{
		Task:   rest.TaskEmbedContent,
		Method: http.MethodPost,
		URL:    m.client.ModelURL(m.name, rest.TaskEmbedContent),
		Body:   req,
	}, &resp); err != nil {
		return nil, err
	}
	return resp.Embedding, nil
}

type batchEmbedContentsRequest struct {
	Requests []*EmbedContentRequest `json:"requests"`
}

type batchEmbedContentsResponse struct {
	Embeddings []*genai.ContentEmbedding `json:"embeddings"`
}

// BatchEmbedContents returns the embeddings of reqs, in order, with a single request.
func (m *GenerativeModel) BatchEmbedContents(ctx context.Context, reqs ...*EmbedContentRequest) ([]*genai.ContentEmbedding, error) {
	body := &batchEmbedContentsRequest{
		Requests: make([]*EmbedContentRequest, len(reqs)),
	}
	for i, r := range reqs {
		if r == nil || r.Content == nil {
			return nil, types.NewInputError("embed content request %d must have a content", i)
		}
		withModel := *r
		withModel.Model = m.name
		body.Requests[i] = &withModel
	}

	var resp batchEmbedContentsResponse
	if err := m.client.Do(ctx, &rest.Request{
		Task:   rest.TaskBatchEmbedContents,
		Method: http.MethodPost,
		URL:    m.client.ModelURL(m.name, rest.TaskBatchEmbedContents),
		Body:   body,
	}, &resp); err != nil {
		return nil, err
	}

	logging.Resolve(ctx, m.client.Options().Logger).DebugContext(ctx, "embedded contents",
		slog.String("model", m.name),
		slog.Int("count", len(resp.Embeddings)),
	)
	return resp.Embeddings, nil
}
