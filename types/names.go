// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"strings"
)

const (
	modelsPrefix         = "models/"
	cachedContentsPrefix = "cachedContents/"
)

// NormalizeModelName returns the resource name of a model.
//
// A name without "/" is prefixed with "models/", e.g. "gemini-1.5-flash" becomes
// "models/gemini-1.5-flash". Names that already contain "/", such as
// "tunedModels/my-model", are returned unchanged.
func NormalizeModelName(name string) (string, error) {
	if name == "" {
		return "", &InputError{Message: "Must provide a model name. Example: client.GenerativeModel(\"gemini-1.5-flash\")"}
	}
	if !strings.Contains(name, "/") {
		return modelsPrefix + name, nil
	}
	return name, nil
}

// ParseCacheName returns the id of a cached content resource name.
//
// Both "cachedContents/{id}" and a bare "{id}" are accepted. The id must not be empty.
func ParseCacheName(name string) (string, error) {
	id := strings.TrimPrefix(name, cachedContentsPrefix)
	if id == "" {
		return "", &Error{Message: `Invalid name ` + name + `. Must be in the format "cachedContents/name" or "name"`}
	}
	return id, nil
}

// CacheResourceName returns the "cachedContents/{id}" form of name.
func CacheResourceName(name string) (string, error) {
	id, err := ParseCacheName(name)
	if err != nil {
		return "", err
	}
	return cachedContentsPrefix + id, nil
}

// CamelToSnake converts a camelCase field name to snake_case by replacing each
// upper case letter with "_" followed by its lower case form.
func CamelToSnake(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	for _, r := range s {
		if 'A' <= r && r <= 'Z' {
			sb.WriteByte('_')
			sb.WriteRune(r + ('a' - 'A'))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
