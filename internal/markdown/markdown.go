// Package markdown renders post bodies to HTML with highlighted code blocks.
package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

const DefaultStyle = "github"

type Options struct {
	// Style is a chroma style name.
	Style string
	// Classes emits CSS classes instead of inline styles.
	Classes bool
}

// Renderer converts GitHub flavoured markdown to HTML. Fenced code blocks use
// the grammar named by their language hint and fall back to detecting it from
// the code. Raw HTML in the source is dropped. A Renderer is safe for
// concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

func New(opts Options) *Renderer {
	style := opts.Style
	if style == "" {
		style = DefaultStyle
	}

	formatOptions := []chromahtml.Option{
		chromahtml.WithClasses(opts.Classes),
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithGuessLanguage(true),
				highlighting.WithFormatOptions(formatOptions...),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	return &Renderer{md: md}
}

func (r *Renderer) Render(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) RenderString(source string) (string, error) {
	out, err := r.Render([]byte(source))
	if err != nil {
		return "", err
	}
	return string(out), nil
}
