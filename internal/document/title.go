package document

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// FirstHeading returns the plain text of the first heading of the given
// level in body (frontmatter must already be stripped), or "".
func FirstHeading(body string, level int) string {
	src := []byte(body)
	root := markdown.Parser().Parse(text.NewReader(src))

	var found string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != level {
			return ast.WalkContinue, nil
		}
		found = strings.TrimSpace(inlineText(h, src))
		return ast.WalkStop, nil
	})
	return found
}

// inlineText concatenates the text segments below n.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}

// Title returns the note title: the first level-1 heading of the body.
func (d *Document) Title() string {
	var lines []string
	for _, s := range d.Sections {
		if s.Heading != "" {
			lines = append(lines, s.Heading)
		}
		lines = append(lines, s.Lines...)
	}
	return FirstHeading(strings.Join(lines, "\n"), 1)
}
