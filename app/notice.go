package app

import (
	"strings"

	"verisure/internal/confirm"
	"verisure/internal/errors"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
)

// NoticeKind tells the front-end how to present a notice
type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)

// Notice is a user-facing dialog. Message is plain text with newlines; HTML
// is the same text rendered for the browser.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
	HTML    string     `json:"html"`
}

// NewNotice builds an informational notice
func NewNotice(title, message string) Notice {
	return Notice{
		Kind:    NoticeInfo,
		Title:   title,
		Message: message,
		HTML:    renderMessage(message),
	}
}

// ErrorNotice converts an error into the notice shown for it
func ErrorNotice(err error) Notice {
	msg := errors.UserMessage(err)
	if msg == "" {
		msg = confirm.GenericFailure
	}
	n := NewNotice(errors.Title(err), msg)
	n.Kind = NoticeError
	return n
}

// renderMessage turns a plain message into HTML without interpreting it:
// the document is built directly so server text is never read as markdown.
// Single newlines become line breaks and blank lines separate paragraphs.
func renderMessage(message string) string {
	message = strings.ReplaceAll(message, "\r\n", "\n")
	if strings.TrimSpace(message) == "" {
		return ""
	}

	doc := &ast.Document{}
	var para *ast.Paragraph
	for _, line := range strings.Split(message, "\n") {
		if strings.TrimSpace(line) == "" {
			para = nil
			continue
		}
		if para == nil {
			para = &ast.Paragraph{}
			ast.AppendChild(doc, para)
		} else {
			ast.AppendChild(para, &ast.Hardbreak{})
		}
		ast.AppendChild(para, &ast.Text{Leaf: ast.Leaf{Literal: []byte(line)}})
	}

	r := html.NewRenderer(html.RendererOptions{Flags: html.SkipHTML})
	return string(markdown.Render(doc, r))
}
