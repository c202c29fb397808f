// Package publisher exports the note of a canvas as a standalone HTML page.
package publisher

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"codeberg.org/notecanvas/server/internal/state"
)

var ErrEmptyNote = errors.New("note is empty")

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

// notes are written line by line, so single newlines are kept as breaks
func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		)
	})

	return markdown
}

var pageTemplate = template.Must(template.New("note").Parse(`<!doctype html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { max-width: 640px; margin: 2rem auto; font-family: -apple-system, "PingFang SC", sans-serif; line-height: 1.7; }
.tags span { color: #ff2442; margin-right: .5rem; }
</style>
</head>
<body>
<article class="note">
{{.Body}}
</article>
{{- if .Tags}}
<p class="tags">{{range .Tags}}<span class="tag tag-{{.HeatLevel}}">#{{.Name}}</span>{{end}}</p>
{{- end}}
</body>
</html>
`))

type page struct {
	Title string
	Body  template.HTML
	Tags  []state.Tag
}

// NoteHTML renders the markdown body of a note. Raw HTML in the note is
// dropped by goldmark's default renderer.
func NoteHTML(note string) (string, error) {
	var buf bytes.Buffer
	if err := getMarkdown().Convert([]byte(note), &buf); err != nil {
		return "", fmt.Errorf("failed to render note: %w", err)
	}

	return buf.String(), nil
}

// Render returns a full HTML page with the note and its hashtags.
func Render(s state.AgentState) ([]byte, error) {
	if s.Note == "" {
		return nil, ErrEmptyNote
	}

	body, err := NoteHTML(s.Note)
	if err != nil {
		return nil, err
	}

	title := s.ProductInfo.Name
	if title == "" {
		title = "小红书笔记"
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page{
		Title: title,
		Body:  template.HTML(body), //nolint:gosec // goldmark output, raw html disabled
		Tags:  s.Tags,
	}); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	return buf.Bytes(), nil
}
