// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	jsonv1 "github.com/go-json-experiment/json/v1"
	"google.golang.org/genai"
)

// RoleSystem is the role of a system instruction.
const RoleSystem = "system"

// wireOptions keeps the legacy omitempty behaviour expected by the nested genai types.
var wireOptions = json.JoinOptions(
	jsonv1.OmitEmptyWithLegacySemantics(true),
)

// CachedContent is a server-stored, reusable context blob that later generation
// calls reference by name.
type CachedContent struct {
	// Name is the server-generated resource name, "cachedContents/{id}".
	Name string

	// DisplayName is the user-generated meaningful display name.
	DisplayName string

	// Model is the fully qualified model name, "models/{model}".
	Model string

	Contents          []*genai.Content
	SystemInstruction *genai.Content
	Tools             []*genai.Tool
	ToolConfig        *genai.ToolConfig

	CreateTime time.Time
	UpdateTime time.Time
	ExpireTime time.Time

	UsageMetadata *genai.CachedContentUsageMetadata
}

// cachedContentWire is the JSON representation shared by every cached content payload.
type cachedContentWire struct {
	Name              string                            `json:"name,omitempty"`
	DisplayName       string                            `json:"displayName,omitempty"`
	Model             string                            `json:"model,omitempty"`
	Contents          []*genai.Content                  `json:"contents,omitempty"`
	SystemInstruction *genai.Content                    `json:"systemInstruction,omitempty"`
	Tools             []*genai.Tool                     `json:"tools,omitempty"`
	ToolConfig        *genai.ToolConfig                 `json:"toolConfig,omitempty"`
	TTL               string                            `json:"ttl,omitempty"`
	ExpireTime        *time.Time                        `json:"expireTime,omitempty"`
	CreateTime        *time.Time                        `json:"createTime,omitempty"`
	UpdateTime        *time.Time                        `json:"updateTime,omitempty"`
	UsageMetadata     *genai.CachedContentUsageMetadata `json:"usageMetadata,omitempty"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// MarshalJSON implements json.Marshaler.
func (c *CachedContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(&cachedContentWire{
		Name:              c.Name,
		DisplayName:       c.DisplayName,
		Model:             c.Model,
		Contents:          c.Contents,
		SystemInstruction: c.SystemInstruction,
		Tools:             c.Tools,
		ToolConfig:        c.ToolConfig,
		ExpireTime:        timePtr(c.ExpireTime),
		CreateTime:        timePtr(c.CreateTime),
		UpdateTime:        timePtr(c.UpdateTime),
		UsageMetadata:     c.UsageMetadata,
	}, wireOptions)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *CachedContent) UnmarshalJSON(data []byte) error {
	var w cachedContentWire
	if err := json.Unmarshal(data, &w, wireOptions); err != nil {
		return err
	}

	*c = CachedContent{
		Name:              w.Name,
		DisplayName:       w.DisplayName,
		Model:             w.Model,
		Contents:          w.Contents,
		SystemInstruction: w.SystemInstruction,
		Tools:             w.Tools,
		ToolConfig:        w.ToolConfig,
		UsageMetadata:     w.UsageMetadata,
	}
	if w.ExpireTime != nil {
		c.ExpireTime = *w.ExpireTime
	}
	if w.CreateTime != nil {
		c.CreateTime = *w.CreateTime
	}
	if w.UpdateTime != nil {
		c.UpdateTime = *w.UpdateTime
	}
	return nil
}

// CachedContentCreateParams are the parameters of a cached content creation.
type CachedContentCreateParams struct {
	// Model is required. A name without "/" is sent as "models/{Model}".
	Model string

	DisplayName       string
	Contents          []*genai.Content
	SystemInstruction *genai.Content
	Tools             []*genai.Tool
	ToolConfig        *genai.ToolConfig

	// Expiration is either a TTL or an absolute expire time.
	Expiration Expiration
}

// Validate reports an [*InputError] when p cannot be sent.
func (p *CachedContentCreateParams) Validate() error {
	if p == nil {
		return &InputError{Message: "cached content create params must not be nil"}
	}
	if p.Model == "" {
		return &InputError{Message: "Cached content must contain a `model` field."}
	}
	return p.Expiration.Validate()
}

// MarshalJSON implements json.Marshaler.
func (p *CachedContentCreateParams) MarshalJSON() ([]byte, error) {
	w := &cachedContentWire{
		DisplayName:       p.DisplayName,
		Model:             p.Model,
		Contents:          p.Contents,
		SystemInstruction: p.SystemInstruction,
		Tools:             p.Tools,
		ToolConfig:        p.ToolConfig,
	}
	w.TTL, w.ExpireTime = p.Expiration.wire()
	return json.Marshal(w, wireOptions)
}

// cachedContentCreateInput is the loosely typed creation payload accepted by
// [ParseCachedContentCreateParams].
type cachedContentCreateInput struct {
	Model             string            `json:"model"`
	DisplayName       string            `json:"displayName"`
	Contents          []*genai.Content  `json:"contents"`
	SystemInstruction jsontext.Value    `json:"systemInstruction"`
	Tools             []*genai.Tool     `json:"tools"`
	ToolConfig        *genai.ToolConfig `json:"toolConfig"`
	TTLSeconds        *int64            `json:"ttlSeconds"`
	ExpireTime        *time.Time        `json:"expireTime"`
}

// ParseCachedContentCreateParams decodes a creation payload of the form
//
//	{"model": "...", "ttlSeconds": 300, "expireTime": "...", "displayName": "...",
//	 "contents": [...], "systemInstruction": "..." | {...}, "tools": [...], "toolConfig": {...}}
//
// ttlSeconds and expireTime are mutually exclusive, and systemInstruction may be
// given as plain text.
func ParseCachedContentCreateParams(data []byte) (*CachedContentCreateParams, error) {
	var in cachedContentCreateInput
	if err := json.Unmarshal(data, &in, wireOptions); err != nil {
		return nil, NewInputError("invalid cached content payload: %v", err)
	}

	if in.TTLSeconds != nil && in.ExpireTime != nil {
		return nil, &InputError{Message: "You cannot specify both `ttlSeconds` and `expireTime` when creating a content cache. You must choose one."}
	}

	params := &CachedContentCreateParams{
		Model:       in.Model,
		DisplayName: in.DisplayName,
		Contents:    in.Contents,
		Tools:       in.Tools,
		ToolConfig:  in.ToolConfig,
	}
	switch {
	case in.TTLSeconds != nil:
		params.Expiration = TTLSeconds(*in.TTLSeconds)
	case in.ExpireTime != nil:
		params.Expiration = ExpireAt(*in.ExpireTime)
	}

	if len(in.SystemInstruction) > 0 {
		si, err := parseSystemInstruction(in.SystemInstruction)
		if err != nil {
			return nil, err
		}
		params.SystemInstruction = si
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

func parseSystemInstruction(v jsontext.Value) (*genai.Content, error) {
	switch v.Kind() {
	case 'n':
		return nil, nil
	case '"':
		var text string
		if err := json.Unmarshal(v, &text); err != nil {
			return nil, NewInputError("invalid systemInstruction: %v", err)
		}
		return SystemInstruction(text), nil
	default:
		var content genai.Content
		if err := json.Unmarshal(v, &content, wireOptions); err != nil {
			return nil, NewInputError("invalid systemInstruction: %v", err)
		}
		return &content, nil
	}
}

// SystemInstruction wraps text into a system role [*genai.Content].
func SystemInstruction(text string) *genai.Content {
	return &genai.Content{
		Role:  RoleSystem,
		Parts: []*genai.Part{genai.NewPartFromText(text)},
	}
}

// CachedContentUpdateParams are the parameters of a cached content update.
//
// Only the expiration of a cached content can be changed.
type CachedContentUpdateParams struct {
	Expiration Expiration

	// UpdateMask lists the camelCase field names to apply. When empty the mask
	// is derived from the fields set in the update.
	UpdateMask []string
}

// Validate reports an [*InputError] when p cannot be sent.
func (p *CachedContentUpdateParams) Validate() error {
	if p == nil {
		return &InputError{Message: "cached content update params must not be nil"}
	}
	if p.Expiration.IsZero() && len(p.UpdateMask) == 0 {
		return &InputError{Message: "Cached content update must set `ttl` or `expireTime`."}
	}
	return p.Expiration.Validate()
}

// Mask returns the camelCase update mask to send.
func (p *CachedContentUpdateParams) Mask() []string {
	if len(p.UpdateMask) > 0 {
		return p.UpdateMask
	}
	if f := p.Expiration.Field(); f != "" {
		return []string{f}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p *CachedContentUpdateParams) MarshalJSON() ([]byte, error) {
	var w cachedContentWire
	w.TTL, w.ExpireTime = p.Expiration.wire()
	return json.Marshal(&w, wireOptions)
}

// ListCachedContentsParams are the paging parameters of a cached content listing.
type ListCachedContentsParams struct {
	// PageSize is the maximum number of items to return. Zero lets the server decide.
	PageSize int32

	// PageToken is the NextPageToken of a previous listing.
	PageToken string
}

// ListCachedContentsResponse is one page of cached contents.
type ListCachedContentsResponse struct {
	CachedContents []*CachedContent `json:"cachedContents,omitempty"`
	NextPageToken  string           `json:"nextPageToken,omitempty"`
}
