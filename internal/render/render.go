// Package render writes session results to disk: images from their data-URL
// encoding, text results as markdown or as standalone HTML.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/atelier/internal/errors"
	"github.com/hpungsan/atelier/internal/studio"
)

const htmlShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { max-width: 42rem; margin: 2rem auto; padding: 0 1rem; font-family: sans-serif; line-height: 1.6; }
blockquote { border-left: 3px solid #ccc; margin-left: 0; padding-left: 1rem; color: #555; }
</style>
</head>
<body>
%s</body>
</html>
`

// MarkdownHTML renders a markdown body into a standalone HTML document.
func MarkdownHTML(title, md string) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return nil, errors.NewInternal(err)
	}
	doc := fmt.Sprintf(htmlShell, template.HTMLEscapeString(title), buf.String())
	return []byte(doc), nil
}

// SaveResult writes the result to path. Images are decoded from their data
// URL; text results become HTML when the path ends in .html, raw markdown
// otherwise. Grounding sources, when present, are appended as a section.
func SaveResult(res studio.Result, path string) error {
	switch res.Kind {
	case studio.KindEmpty:
		return errors.NewInvalidRequest("nothing to save: the current result is empty")
	case studio.KindImage:
		_, data, err := studio.ParseDataURL(res.Image)
		if err != nil {
			return err
		}
		return writeFile(path, data)
	case studio.KindText:
		body := res.Text
		if len(res.Sources) > 0 {
			body += "\n\n" + SourcesMarkdown(res.Sources)
		}
		if strings.EqualFold(filepath.Ext(path), ".html") {
			doc, err := MarkdownHTML("atelier result", body)
			if err != nil {
				return err
			}
			return writeFile(path, doc)
		}
		return writeFile(path, []byte(body))
	}
	return errors.NewInternal(fmt.Errorf("unhandled result kind %d", res.Kind))
}

// SourcesMarkdown formats grounding sources as a markdown list, in order.
func SourcesMarkdown(sources []studio.Source) string {
	var b strings.Builder
	b.WriteString("## Sources\n")
	for _, src := range sources {
		fmt.Fprintf(&b, "- [%s](%s)\n", src.Title, src.URI)
	}
	return b.String()
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
