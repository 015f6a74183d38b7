// Package richtext turns editor HTML into the plain text the local
// generator scores and the markdown the remote backend receives.
package richtext

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is an input in both representations.
type Document struct {
	Text     string
	Markdown string
	HTML     bool
}

var tagPattern = regexp.MustCompile(`(?i)<(p|div|br|span|ul|ol|li|h[1-6]|strong|em|b|i|u|table|tr|td|blockquote|section|article)\b[^>]*>`)

var converter = md.NewConverter("", true, nil)

// IsHTML reports whether s looks like editor markup.
func IsHTML(s string) bool {
	return tagPattern.MatchString(s)
}

// Convert derives text and markdown from s. Plain text passes through.
func Convert(s string) (Document, error) {
	if !IsHTML(s) {
		return Document{Text: s, Markdown: s}, nil
	}

	text, err := PlainText(s)
	if err != nil {
		return Document{}, err
	}
	markdown, err := Markdown(s)
	if err != nil {
		return Document{}, err
	}
	return Document{Text: text, Markdown: markdown, HTML: true}, nil
}

// Markdown converts HTML to markdown.
func Markdown(s string) (string, error) {
	out, err := converter.ConvertString(s)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// PlainText extracts readable text from HTML. Block elements end a line so
// sentence splitting still works on the result.
func PlainText(s string) (string, error) {
	root, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return "", err
	}

	doc := goquery.NewDocumentFromNode(root)
	doc.Find("script, style, noscript, template").Remove()

	var sb strings.Builder
	for _, n := range doc.Find("body").Nodes {
		writeText(&sb, n)
	}
	return tidy(sb.String()), nil
}

func writeText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.DataAtom == atom.Br {
			sb.WriteString("\n")
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}

	if n.Type == html.ElementNode && isBlock(n.DataAtom) {
		sb.WriteString("\n")
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Tr, atom.Blockquote, atom.Section, atom.Article, atom.Ul, atom.Ol, atom.Table, atom.Pre:
		return true
	}
	return false
}

// tidy collapses runs of spaces and drops empty lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
