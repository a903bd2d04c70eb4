package importer

import (
	"strings"
	"time"

	"github.com/berkgokcam/gddstudio/internal/document"
	"github.com/berkgokcam/gddstudio/internal/errors"
	"github.com/berkgokcam/gddstudio/internal/registry"
)

// titleSuffix is stripped from the document's level-1 heading to recover
// the project name.
const titleSuffix = " - Game Design Document"

// metadataWindow bounds how far into the document the bold metadata lines
// are looked for.
const metadataWindow = 20

// boundary marks one matched section heading.
type boundary struct {
	id   registry.SectionID
	line int
}

// Markdown parses a headed markdown document.
//
// Level-2 headings whose normalized text exactly equals a normalized
// registry title become section boundaries; when none match the parser
// falls back to level-1 boundaries with synthesized ids for unmatched
// headings. Exact-match-only avoids false positives from numbered or
// emoji-decorated headings that merely resemble section titles.
func Markdown(data []byte) (*Result, error) {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	h1s, h2s := headingLines(lines)
	if len(h1s) == 0 {
		return nil, errors.NewInvalidImport("no level-1 heading found")
	}

	project := projectFromLines(lines, h1s[0])

	// Pass 1: level-2 boundaries, registry titles only.
	var boundaries []boundary
	for _, line := range h2s {
		if id, ok := registry.MatchTitle(headingText(lines[line])); ok {
			boundaries = append(boundaries, boundary{id: id, line: line})
		}
	}

	// Pass 2: fall back to level-1 boundaries after the title heading.
	if len(boundaries) == 0 {
		for _, line := range h1s[1:] {
			text := headingText(lines[line])
			id, ok := registry.MatchTitle(text)
			if !ok {
				id = registry.SynthesizeID(text)
				if id == "" {
					continue
				}
			}
			boundaries = append(boundaries, boundary{id: id, line: line})
		}
	}

	gdd := make(map[registry.SectionID]string, len(boundaries))
	for i, b := range boundaries {
		end := len(lines)
		if i+1 < len(boundaries) {
			end = boundaries[i+1].line
		}
		content := strings.TrimSpace(strings.Join(lines[b.line+1:end], "\n"))
		if content == "" || content == document.UnfilledPlaceholder {
			continue
		}
		gdd[b.id] = content
	}

	return &Result{Project: project, GDD: gdd}, nil
}

// headingLines returns the indexes of level-1 and level-2 heading lines,
// ignoring headings inside fenced code blocks.
func headingLines(lines []string) (h1s, h2s []int) {
	inFence := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		switch {
		case strings.HasPrefix(line, "# "):
			h1s = append(h1s, i)
		case strings.HasPrefix(line, "## "):
			h2s = append(h2s, i)
		}
	}
	return h1s, h2s
}

// headingText strips the leading hashes from a heading line.
func headingText(line string) string {
	return strings.TrimSpace(strings.TrimLeft(line, "#"))
}

// projectFromLines builds the project from the title heading and the bold
// metadata lines near the top of the document.
func projectFromLines(lines []string, titleLine int) *document.Project {
	name := headingText(lines[titleLine])
	if cut, found := strings.CutSuffix(name, titleSuffix); found {
		name = strings.TrimSpace(cut)
	}

	now := time.Now().Unix()
	project := &document.Project{
		Name:      name,
		Genre:     document.GenreUnspecified,
		CreatedAt: now,
		UpdatedAt: now,
	}

	window := len(lines)
	if window > metadataWindow {
		window = metadataWindow
	}
	for _, line := range lines[:window] {
		trimmed := strings.TrimSpace(line)
		if value, ok := metadataValue(trimmed, "created"); ok {
			if ts, ok := parseDate(value); ok {
				project.CreatedAt = ts
			}
			continue
		}
		if value, ok := metadataValue(trimmed, "genre"); ok {
			if value != "" {
				project.Genre = value
			}
			continue
		}
		if value, ok := metadataValue(trimmed, "platform(s)"); ok {
			project.Platforms = splitList(value)
			continue
		}
		if value, ok := metadataValue(trimmed, "platforms"); ok {
			project.Platforms = splitList(value)
		}
	}

	return project
}

// metadataValue matches a case-insensitive bold-label prefix like
// "**Genre:** Action" and returns the remainder.
func metadataValue(line, label string) (string, bool) {
	prefix := "**" + label + ":**"
	if len(line) < len(prefix) || !strings.EqualFold(line[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(prefix):]), true
}

func parseDate(value string) (int64, bool) {
	for _, layout := range []string{"2006-01-02", "January 2, 2006", "2/1/2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Unix(), true
		}
	}
	return 0, false
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
