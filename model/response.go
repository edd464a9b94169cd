// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"slices"

	"google.golang.org/genai"

	"github.com/go-a2a/googleai-go/internal/pool"
	"github.com/go-a2a/googleai-go/types"
)

// badFinishReasons are the finish reasons of a blocked candidate.
var badFinishReasons = []genai.FinishReason{
	genai.FinishReasonRecitation,
	genai.FinishReasonSafety,
	genai.FinishReasonLanguage,
}

// Response is a [*genai.GenerateContentResponse] with accessors that report blocked output.
type Response struct {
	*genai.GenerateContentResponse
}

func hadBadFinishReason(c *genai.Candidate) bool {
	return c != nil && slices.Contains(badFinishReasons, c.FinishReason)
}

// BlockMessage describes why r was blocked, or returns "" when it was not.
func (r *Response) BlockMessage() string {
	if r == nil || r.GenerateContentResponse == nil {
		return ""
	}

	sb := pool.String.Get()
	defer pool.String.Put(sb)

	switch {
	case len(r.Candidates) == 0 && r.PromptFeedback != nil:
		sb.WriteString("Response was blocked")
		if reason := r.PromptFeedback.BlockReason; reason != "" {
			sb.WriteString(" due to " + string(reason))
		}
		if msg := r.PromptFeedback.BlockReasonMessage; msg != "" {
			sb.WriteString(": " + msg)
		}
	case len(r.Candidates) > 0 && hadBadFinishReason(r.Candidates[0]):
		first := r.Candidates[0]
		sb.WriteString("Candidate was blocked due to " + string(first.FinishReason))
		if first.FinishMessage != "" {
			sb.WriteString(": " + first.FinishMessage)
		}
	}
	return sb.String()
}

// firstCandidate returns the first candidate, or an error when the response was blocked.
func (r *Response) firstCandidate() (*genai.Candidate, error) {
	if r == nil || r.GenerateContentResponse == nil {
		return nil, nil
	}
	switch {
	case len(r.Candidates) > 0:
		if hadBadFinishReason(r.Candidates[0]) {
			return nil, &types.ResponseError{Message: r.BlockMessage(), Response: r.GenerateContentResponse}
		}
		return r.Candidates[0], nil
	case r.PromptFeedback != nil:
		return nil, &types.ResponseError{Message: "Text not available. " + r.BlockMessage(), Response: r.GenerateContentResponse}
	default:
		return nil, nil
	}
}

// Text returns the text of the first candidate.
//
// Executable code and code execution results are rendered as fenced blocks.
// A [*types.ResponseError] is returned when the prompt or the candidate was blocked.
func (r *Response) Text() (string, error) {
	c, err := r.firstCandidate()
	if err != nil || c == nil || c.Content == nil {
		return "", err
	}

	sb := pool.String.Get()
	defer pool.String.Put(sb)

	for _, p := range c.Content.Parts {
		switch {
		case p == nil:
		case p.Text != "":
			sb.WriteString(p.Text)
		case p.ExecutableCode != nil:
			sb.WriteString("\n```" + string(p.ExecutableCode.Language) + "\n" + p.ExecutableCode.Code + "\n```\n")
		case p.CodeExecutionResult != nil:
			sb.WriteString("\n```\n" + p.CodeExecutionResult.Output + "\n```\n")
		}
	}
	return sb.String(), nil
}

// FunctionCalls returns the function calls requested by the first candidate.
func (r *Response) FunctionCalls() ([]*genai.FunctionCall, error) {
	c, err := r.firstCandidate()
	if err != nil || c == nil || c.Content == nil {
		return nil, err
	}

	var calls []*genai.FunctionCall
	for _, p := range c.Content.Parts {
		if p != nil && p.FunctionCall != nil {
			calls = append(calls, p.FunctionCall)
		}
	}
	return calls, nil
}

// aggregate merges streamed chunks into a single response.
//
// Candidates are matched by index. Parts are appended in arrival order, while
// finish reason, safety ratings and citation and grounding metadata come from the
// latest chunk that carried the candidate.
func aggregate(chunks []*genai.GenerateContentResponse) *genai.GenerateContentResponse {
	out := &genai.GenerateContentResponse{}
	if len(chunks) == 0 {
		return out
	}
	out.PromptFeedback = chunks[len(chunks)-1].PromptFeedback

	byIndex := make(map[int32]*genai.Candidate)
	for _, chunk := range chunks {
		if chunk == nil {
			continue
		}
		for _, c := range chunk.Candidates {
			if c == nil {
				continue
			}
			agg, ok := byIndex[c.Index]
			if !ok {
				agg = &genai.Candidate{Index: c.Index}
				byIndex[c.Index] = agg
				out.Candidates = append(out.Candidates, agg)
			}
			agg.CitationMetadata = c.CitationMetadata
			agg.GroundingMetadata = c.GroundingMetadata
			agg.FinishReason = c.FinishReason
			agg.FinishMessage = c.FinishMessage
			agg.SafetyRatings = c.SafetyRatings

			if c.Content == nil || len(c.Content.Parts) == 0 {
				continue
			}
			if agg.Content == nil {
				role := c.Content.Role
				if role == "" {
					role = RoleModel
				}
				agg.Content = &genai.Content{Role: role}
			}
			for _, p := range c.Content.Parts {
				if p == nil {
					continue
				}
				part := *p
				agg.Content.Parts = append(agg.Content.Parts, &part)
			}
		}

		if chunk.UsageMetadata != nil {
			out.UsageMetadata = chunk.UsageMetadata
		}
		if chunk.ModelVersion != "" {
			out.ModelVersion = chunk.ModelVersion
		}
		if chunk.ResponseID != "" {
			out.ResponseID = chunk.ResponseID
		}
		if !chunk.CreateTime.IsZero() {
			out.CreateTime = chunk.CreateTime
		}
	}

	slices.SortStableFunc(out.Candidates, func(a, b *genai.Candidate) int {
		return int(a.Index - b.Index)
	})
	return out
}
