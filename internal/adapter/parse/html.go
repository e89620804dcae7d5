// Package parse extracts readable text and metadata from raw fetched content.
package parse

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"ragserve/internal/port"
)

// ContentParser handles text/html and text/plain content. Unsupported content
// types and unparseable input yield a zero document plus an error; callers
// treat that as a collaborator failure.
type ContentParser struct{}

// NewContentParser creates a parser.
func NewContentParser() *ContentParser {
	return &ContentParser{}
}

// textElements are the HTML elements whose text is considered document content.
var textElements = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true,
}

// Parse extracts text and metadata from raw content.
func (p *ContentParser) Parse(raw string, contentType string) (port.ParsedDocument, error) {
	if raw == "" {
		return port.ParsedDocument{}, fmt.Errorf("empty content")
	}

	switch normalizeContentType(contentType) {
	case "text/plain":
		return port.ParsedDocument{Text: raw, Metadata: map[string]any{}}, nil
	case "text/html":
		return parseHTML(raw)
	default:
		return port.ParsedDocument{}, fmt.Errorf("unsupported content type %q", contentType)
	}
}

func normalizeContentType(contentType string) string {
	ct := strings.TrimSpace(strings.ToLower(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

func parseHTML(raw string) (port.ParsedDocument, error) {
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return port.ParsedDocument{}, fmt.Errorf("html parse failed: %w", err)
	}

	doc := port.ParsedDocument{Metadata: map[string]any{}}
	var blocks []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case textElements[n.Data]:
				if text := nodeText(n); text != "" {
					blocks = append(blocks, text)
				}
				return
			case n.Data == "title":
				if text := nodeText(n); text != "" {
					doc.Metadata["title"] = text
				}
				return
			case n.Data == "meta":
				if attr(n, "name") == "description" {
					if content := strings.TrimSpace(attr(n, "content")); content != "" {
						doc.Metadata["description"] = content
					}
				}
				return
			case n.Data == "script" || n.Data == "style":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	doc.Text = strings.Join(blocks, "\n")
	return doc, nil
}

// nodeText collects the whitespace-normalized text content of a node.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
