// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/go-a2a/googleai-go/types"
)

// printer renders styled output for one writer.
type printer struct {
	w io.Writer

	bold    lipgloss.Style
	faint   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	user    lipgloss.Style
	model   lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:       w,
		bold:    r.NewStyle().Bold(true),
		faint:   r.NewStyle().Foreground(lipgloss.Color("245")),
		success: r.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		failure: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		user:    r.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		model:   r.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
	}
}

func (p *printer) Successf(format string, args ...any) {
	fmt.Fprintln(p.w, p.success.Render("✓")+" "+fmt.Sprintf(format, args...))
}

func (p *printer) Errorf(format string, args ...any) {
	fmt.Fprintln(p.w, p.failure.Render("✗")+" "+fmt.Sprintf(format, args...))
}

func (p *printer) Infof(format string, args ...any) {
	fmt.Fprintln(p.w, p.faint.Render(fmt.Sprintf(format, args...)))
}

// Prompt writes the chat prompt of role without a trailing newline.
func (p *printer) Prompt(role string) {
	style := p.user
	if role != "user" {
		style = p.model
	}
	fmt.Fprint(p.w, style.Render(role+">")+" ")
}

// JSON writes v as indented JSON.
func (p *printer) JSON(v any) error {
	data, err := json.Marshal(v, jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(data))
	return err
}

// CachedContents writes ccs as a table.
func (p *printer) CachedContents(ccs []*types.CachedContent) {
	if len(ccs) == 0 {
		p.Infof("No cached contents found")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.faint).
		Headers("NAME", "MODEL", "DISPLAY NAME", "TOKENS", "EXPIRES")
	for _, cc := range ccs {
		tokens := "-"
		if cc.UsageMetadata != nil {
			tokens = fmt.Sprint(cc.UsageMetadata.TotalTokenCount)
		}
		expires := "-"
		if !cc.ExpireTime.IsZero() {
			expires = cc.ExpireTime.Local().Format(time.DateTime)
		}
		t.Row(cc.Name, cc.Model, cc.DisplayName, tokens, expires)
	}
	fmt.Fprintln(p.w, t.String())
}
