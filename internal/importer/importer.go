// Package importer parses external document formats back into the store's
// shape. Three formats are accepted: the structured snapshot, headed
// markdown, and exported HTML. All three report a typed failure on missing
// structure and never touch the store themselves; the caller commits the
// result.
package importer

import (
	"bytes"

	"github.com/berkgokcam/gddstudio/internal/document"
	"github.com/berkgokcam/gddstudio/internal/registry"
)

// Result is a normalized import: the project plus the section content map.
// Ids are registry ids, or synthesized ids from the markdown level-1
// fallback.
type Result struct {
	Project *document.Project
	GDD     map[registry.SectionID]string
}

// Format identifies an input format.
type Format string

const (
	FormatSnapshot Format = "snapshot"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// DetectFormat sniffs the input format from the leading bytes.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	switch {
	case len(trimmed) > 0 && trimmed[0] == '{':
		return FormatSnapshot
	case len(trimmed) > 0 && trimmed[0] == '<':
		return FormatHTML
	default:
		return FormatMarkdown
	}
}

// Import parses data in the given format. An empty format is sniffed.
func Import(data []byte, format Format) (*Result, error) {
	if format == "" {
		format = DetectFormat(data)
	}
	switch format {
	case FormatSnapshot:
		return Snapshot(data)
	case FormatHTML:
		return HTML(data)
	default:
		return Markdown(data)
	}
}
