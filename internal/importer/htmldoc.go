package importer

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/berkgokcam/gddstudio/internal/errors"
)

// HTML parses an exported HTML document by walking its element and text
// nodes in document order, re-synthesizing a markdown string, and
// delegating to the headed-markdown parser.
func HTML(data []byte) (*Result, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewInvalidImport("unparseable HTML: " + err.Error())
	}

	var b strings.Builder
	walk(doc, &b)

	md := b.String()
	if strings.TrimSpace(md) == "" {
		return nil, errors.NewInvalidImport("no readable content in HTML document")
	}
	return Markdown([]byte(md))
}

// walk renders block-level structure to markdown in document order.
func walk(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Head, atom.Title:
			return
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			level := int(n.Data[1] - '0')
			text := collapse(inlineText(n))
			if text != "" {
				b.WriteString(strings.Repeat("#", level) + " " + text + "\n\n")
			}
			return
		case atom.P:
			text := collapse(inlineText(n))
			if text != "" {
				b.WriteString(text + "\n\n")
			}
			return
		case atom.Li:
			text := collapse(inlineText(n))
			if text != "" {
				b.WriteString("- " + text + "\n")
			}
			return
		case atom.Ul, atom.Ol:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c, b)
			}
			b.WriteString("\n")
			return
		case atom.Hr:
			b.WriteString("---\n\n")
			return
		case atom.Pre:
			b.WriteString("```\n" + strings.TrimRight(rawText(n), "\n") + "\n```\n\n")
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, b)
	}
}

// inlineText renders a node's inline content with bold/italic markers.
func inlineText(n *html.Node) string {
	var b strings.Builder
	var render func(*html.Node)
	render = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Strong, atom.B:
				b.WriteString("**")
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					render(c)
				}
				b.WriteString("**")
				return
			case atom.Em, atom.I:
				b.WriteString("*")
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					render(c)
				}
				b.WriteString("*")
				return
			case atom.Br:
				b.WriteString("\n")
				return
			case atom.Code:
				b.WriteString("`" + rawText(n) + "`")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			render(c)
		}
	}
	render(n)
	return b.String()
}

// rawText concatenates all text nodes beneath n without markers.
func rawText(n *html.Node) string {
	var b strings.Builder
	var render func(*html.Node)
	render = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			render(c)
		}
	}
	render(n)
	return b.String()
}

// collapse normalizes runs of whitespace to single spaces, preserving
// explicit <br> line breaks.
func collapse(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	out := strings.Join(lines, "\n")
	return strings.TrimSpace(out)
}
