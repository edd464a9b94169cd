// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"google.golang.org/genai"
)

// Part is one piece of a message sent to the model.
//
// [Text], [Blob], [FileData] and [FunctionResponse] implement Part, and
// [GenAIPart] adapts any [*genai.Part].
type Part interface {
	toPart() *genai.Part
}

// Text is a plain text part.
type Text string

func (t Text) toPart() *genai.Part {
	return genai.NewPartFromText(string(t))
}

// Blob is inline binary data, such as an image.
type Blob struct {
	MIMEType string
	Data     []byte
}

func (b Blob) toPart() *genai.Part {
	return genai.NewPartFromBytes(b.Data, b.MIMEType)
}

// ImageData returns a [Blob] of MIME type "image/{format}", e.g. ImageData("png", data).
func ImageData(format string, data []byte) Blob {
	return Blob{
		MIMEType: "image/" + format,
		Data:     data,
	}
}

// FileData references a file uploaded to the File API.
type FileData struct {
	MIMEType string
	URI      string
}

func (f FileData) toPart() *genai.Part {
	return genai.NewPartFromURI(f.URI, f.MIMEType)
}

// FunctionResponse is the result of a function call requested by the model.
type FunctionResponse struct {
	Name     string
	Response map[string]any
}

func (f FunctionResponse) toPart() *genai.Part {
	return genai.NewPartFromFunctionResponse(f.Name, f.Response)
}

type genaiPart struct{ *genai.Part }

func (p genaiPart) toPart() *genai.Part {
	return p.Part
}

// GenAIPart adapts p to a [Part].
func GenAIPart(p *genai.Part) Part {
	return genaiPart{p}
}

// Texts converts strings to [Text] parts.
func Texts(texts ...string) []Part {
	parts := make([]Part, len(texts))
	for i, t := range texts {
		parts[i] = Text(t)
	}
	return parts
}

func toParts(parts []Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p == nil {
			continue
		}
		if gp := p.toPart(); gp != nil {
			out = append(out, gp)
		}
	}
	return out
}
