package export

import (
	"strings"

	"github.com/berkgokcam/gddstudio/internal/document"
	"github.com/berkgokcam/gddstudio/internal/errors"
)

// Diagram returns a saved diagram's Mermaid source as a .mmd file. The
// source is exported verbatim so external renderers can consume it.
func Diagram(diagrams []document.Diagram, id string) (filename string, data []byte, err error) {
	for _, d := range diagrams {
		if d.ID == id {
			name := d.Label
			if name == "" {
				name = string(d.Type) + "-" + d.ID
			}
			source := d.Source
			if !strings.HasSuffix(source, "\n") {
				source += "\n"
			}
			return Filename(name, "mmd"), []byte(source), nil
		}
	}
	return "", nil, errors.NewNotFound("diagram " + id)
}
