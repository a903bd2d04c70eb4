package export

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/berkgokcam/gddstudio/internal/document"
	"github.com/berkgokcam/gddstudio/internal/errors"
)

// htmlShell wraps the rendered body in a standalone page with a print
// stylesheet. Each level-2 heading starts a new printed page.
const htmlShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body {
  font-family: Georgia, "Times New Roman", serif;
  max-width: 50rem;
  margin: 0 auto;
  padding: 2rem;
  line-height: 1.6;
  color: #1a1a1a;
}
h1 { border-bottom: 2px solid #1a1a1a; padding-bottom: 0.3rem; }
h2 { border-bottom: 1px solid #999; padding-bottom: 0.2rem; margin-top: 2.5rem; }
pre {
  background: #f4f4f4;
  padding: 0.8rem;
  overflow-x: auto;
  font-size: 0.9rem;
}
code { font-family: "SF Mono", Consolas, monospace; }
hr { border: none; border-top: 1px solid #ccc; }
@media print {
  body { max-width: none; padding: 0; }
  h2 { page-break-before: always; }
  h1 + p, h1 ~ hr { page-break-after: avoid; }
}
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`

var htmlTemplate = template.Must(template.New("export").Parse(htmlShell))

// HTML renders the document as a standalone print-ready HTML page. The
// body is the markdown export converted with goldmark, so the two
// formats always carry the same content.
func HTML(snap document.Snapshot) ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.Convert(Markdown(snap), &body); err != nil {
		return nil, errors.NewInternal(err)
	}

	var page bytes.Buffer
	err := htmlTemplate.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: snap.Project.Name + " - Game Design Document",
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return page.Bytes(), nil
}

// Filename builds a safe export filename from the project name.
func Filename(name, ext string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "gdd"
	}
	return slug + "." + ext
}
