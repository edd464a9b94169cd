// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"slices"

	"google.golang.org/genai"

	"github.com/go-a2a/googleai-go/types"
)

// Roles of a chat history entry.
const (
	RoleUser     = genai.RoleUser
	RoleModel    = genai.RoleModel
	RoleFunction = "function"
	RoleSystem   = types.RoleSystem
)

var validRoles = []string{RoleUser, RoleModel, RoleFunction, RoleSystem}

// partKind names the data field set on a part.
type partKind string

const (
	kindText                partKind = "text"
	kindInlineData          partKind = "inlineData"
	kindFunctionCall        partKind = "functionCall"
	kindFunctionResponse    partKind = "functionResponse"
	kindExecutableCode      partKind = "executableCode"
	kindCodeExecutionResult partKind = "codeExecutionResult"
)

var partKinds = []partKind{
	kindText,
	kindInlineData,
	kindFunctionCall,
	kindFunctionResponse,
	kindExecutableCode,
	kindCodeExecutionResult,
}

// validPartsPerRole lists the part kinds each role may carry.
var validPartsPerRole = map[string][]partKind{
	RoleUser:     {kindText, kindInlineData},
	RoleFunction: {kindFunctionResponse},
	RoleModel:    {kindText, kindFunctionCall, kindExecutableCode, kindCodeExecutionResult},
	RoleSystem:   {kindText},
}

func hasKind(p *genai.Part, k partKind) bool {
	switch k {
	case kindText:
		return p.Text != ""
	case kindInlineData:
		return p.InlineData != nil
	case kindFunctionCall:
		return p.FunctionCall != nil
	case kindFunctionResponse:
		return p.FunctionResponse != nil
	case kindExecutableCode:
		return p.ExecutableCode != nil
	case kindCodeExecutionResult:
		return p.CodeExecutionResult != nil
	default:
		return false
	}
}

// ValidateHistory reports an [*types.InputError] when history cannot seed a chat.
//
// The first entry must come from the user, every entry needs a known role and at
// least one part, and each role may only carry its own kinds of parts.
func ValidateHistory(history []*genai.Content) error {
	for i, content := range history {
		if content == nil {
			return types.NewInputError("history entry %d is nil", i)
		}

		role := content.Role
		if i == 0 && role != RoleUser {
			return types.NewInputError("First content should be with role 'user', got %s", role)
		}
		if !slices.Contains(validRoles, role) {
			return types.NewInputError("Each item should include role field. Got %s but valid roles are: %q", role, validRoles)
		}
		if len(content.Parts) == 0 {
			return types.NewInputError("Each Content should have at least one part")
		}

		allowed := validPartsPerRole[role]
		for _, kind := range partKinds {
			if slices.Contains(allowed, kind) {
				continue
			}
			for _, p := range content.Parts {
				if p != nil && hasKind(p, kind) {
					return types.NewInputError("Content with role '%s' can't contain '%s' part", role, kind)
				}
			}
		}
	}
	return nil
}

// NewMessage builds the content of a new message from parts.
//
// The message has the "function" role when every part is a function response,
// and the "user" role otherwise. Mixing function responses with other parts is an
// [*types.InputError].
func NewMessage(parts ...Part) (*genai.Content, error) {
	gparts := toParts(parts)

	var user, function []*genai.Part
	for _, p := range gparts {
		if p.FunctionResponse != nil {
			function = append(function, p)
			continue
		}
		user = append(user, p)
	}

	switch {
	case len(user) > 0 && len(function) > 0:
		return nil, &types.InputError{Message: "Within a single message, FunctionResponse cannot be mixed with other type of part in the request for sending chat message."}
	case len(user) > 0:
		return genai.NewContentFromParts(user, RoleUser), nil
	case len(function) > 0:
		return genai.NewContentFromParts(function, RoleFunction), nil
	default:
		return nil, &types.InputError{Message: "No content is provided for sending chat message."}
	}
}
