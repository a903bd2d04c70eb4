// Package prompt builds the (prompt, system prompt) pairs for the three
// generation modes. Builders are pure: they read store state and produce
// text payloads, with no side effects.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/berkgokcam/gddstudio/internal/document"
	"github.com/berkgokcam/gddstudio/internal/errors"
	"github.com/berkgokcam/gddstudio/internal/registry"
	"github.com/berkgokcam/gddstudio/internal/relevance"
	"github.com/berkgokcam/gddstudio/internal/store"
)

// Context budgets. Sibling sections are clipped hard so the prompt stays
// bounded regardless of document size.
const (
	DefaultSectionBudget = 500 // sibling sections in section-fill mode
	SummaryLineBudget    = 100 // one-line summaries in chat mode
	DiagramDigestBudget  = 300 // section digests in diagram mode
	MaxChatTurns         = 10  // chat turns included verbatim
)

// Payload is a ready-to-send prompt pair.
type Payload struct {
	Prompt string
	System string
}

const designerSystem = "You are an experienced game designer co-authoring a " +
	"Game Design Document. Write clear, concrete markdown. Do not invent " +
	"project facts that contradict the provided context."

const chatSystem = "You are a game design assistant answering questions about " +
	"the project's Game Design Document. Ground every answer in the provided " +
	"document context and say so when the document does not cover something."

const diagramSystem = "You are a diagram author. Respond with Mermaid source " +
	"only: no prose, no markdown fences, no explanation."

// SectionFill builds the payload for filling one section.
//
// Sub-mode rule: existing content AND a custom instruction present → update
// (the model preserves unmentioned material and returns the complete
// revised section); otherwise fresh (stale content is deliberately left out
// of the prompt, the instruction alone steers if present).
func SectionFill(s *store.Store, id registry.SectionID, budget int, now time.Time) (Payload, error) {
	def, ok := registry.Get(id)
	if !ok {
		return Payload{}, errors.NewNotFound(string(id))
	}
	project := s.Project()
	if project == nil {
		return Payload{}, errors.NewInvalidRequest("no project: create one first")
	}
	if budget <= 0 {
		budget = DefaultSectionBudget
	}

	existing, hasExisting := s.Section(id)
	instruction, hasInstruction := s.Instruction(id)

	var b strings.Builder
	writeProjectBlock(&b, project)

	// Sibling context: every other filled section, clipped.
	for _, otherID := range s.FilledSections() {
		if otherID == id {
			continue
		}
		otherDef, ok := registry.Get(otherID)
		if !ok {
			continue
		}
		content, _ := s.Section(otherID)
		fmt.Fprintf(&b, "## %s\n%s\n\n", otherDef.Title, document.Clip(content, budget))
	}

	fmt.Fprintf(&b, "---\nTarget section: %s\n", def.Title)
	fmt.Fprintf(&b, "Guidance: %s\n\n", def.Guidance)

	if id == registry.SectionTimeline {
		fmt.Fprintf(&b, "Today's date is %s. Every date in the timeline must be "+
			"in the future relative to today.\n\n", now.Format("2006-01-02"))
	}

	if hasExisting && hasInstruction {
		// Update sub-mode: full existing content verbatim plus the delta.
		b.WriteString("The section already has content. Revise it according to " +
			"the instruction below. Preserve everything the instruction does not " +
			"mention, and return the complete revised section.\n\n")
		fmt.Fprintf(&b, "Current content:\n%s\n\n", existing)
		fmt.Fprintf(&b, "Instruction: %s\n", instruction)
	} else {
		b.WriteString("Write this section from scratch. Ignore any earlier " +
			"draft of it.\n")
		if hasInstruction {
			fmt.Fprintf(&b, "\nSteering hint: %s\n", instruction)
		}
	}

	return Payload{Prompt: b.String(), System: designerSystem}, nil
}

// Chat builds the payload for answering a free-text question. Relevant
// sections (per the relevance detector) are included in full; other filled
// sections shrink to a one-line summary; unfilled sections are listed by
// title only.
func Chat(s *store.Store, message string) (Payload, error) {
	project := s.Project()
	if project == nil {
		return Payload{}, errors.NewInvalidRequest("no project: create one first")
	}

	filled := s.FilledSections()
	relevant := relevance.Detect(message, filled)
	relevantSet := make(map[registry.SectionID]bool, len(relevant))
	for _, id := range relevant {
		relevantSet[id] = true
	}

	var b strings.Builder
	writeProjectBlock(&b, project)

	b.WriteString("Document state:\n\n")
	for _, def := range registry.All() {
		content, ok := s.Section(def.ID)
		switch {
		case !ok:
			fmt.Fprintf(&b, "- %s: (not written yet)\n", def.Title)
		case relevantSet[def.ID]:
			fmt.Fprintf(&b, "## %s\n%s\n\n", def.Title, content)
		default:
			summary := document.Clip(document.FirstContentLine(content), SummaryLineBudget)
			fmt.Fprintf(&b, "- %s: %s\n", def.Title, summary)
		}
	}
	b.WriteString("\n")

	turns := s.ChatLog()
	if len(turns) > MaxChatTurns {
		turns = turns[len(turns)-MaxChatTurns:]
	}
	if len(turns) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range turns {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "user: %s\n", message)

	return Payload{Prompt: b.String(), System: chatSystem}, nil
}

// Diagram builds the payload for drawing or revising a diagram.
//
// Sub-mode rule: existing source AND new user instructions present →
// modify (preserve existing nodes and edges, apply only the delta, return
// the complete updated source); otherwise fresh.
func Diagram(s *store.Store, typ registry.DiagramType, existingSource, instructions string) (Payload, error) {
	tmpl, ok := registry.DiagramInstruction(typ)
	if !ok {
		return Payload{}, errors.NewNotFound(string(typ))
	}
	project := s.Project()
	if project == nil {
		return Payload{}, errors.NewInvalidRequest("no project: create one first")
	}

	var b strings.Builder
	writeProjectBlock(&b, project)

	b.WriteString("Document digest:\n")
	for _, id := range s.FilledSections() {
		def, ok := registry.Get(id)
		if !ok {
			continue
		}
		content, _ := s.Section(id)
		fmt.Fprintf(&b, "## %s\n%s\n\n", def.Title, document.Clip(content, DiagramDigestBudget))
	}

	b.WriteString(tmpl)
	b.WriteString("\n")

	hasInstructions := strings.TrimSpace(instructions) != ""
	if existingSource != "" && hasInstructions {
		b.WriteString("\nAn earlier version of the diagram exists. Keep its " +
			"nodes and edges, apply only the change requested below, and return " +
			"the complete updated source.\n\n")
		fmt.Fprintf(&b, "Current source:\n%s\n\n", existingSource)
		fmt.Fprintf(&b, "Requested change: %s\n", instructions)
	} else if hasInstructions {
		fmt.Fprintf(&b, "\nAdditional instructions: %s\n", instructions)
	}

	return Payload{Prompt: b.String(), System: diagramSystem}, nil
}

func writeProjectBlock(b *strings.Builder, project *document.Project) {
	fmt.Fprintf(b, "Project: %s\n", project.Name)
	fmt.Fprintf(b, "Genre: %s\n", project.Genre)
	if len(project.Platforms) > 0 {
		fmt.Fprintf(b, "Platforms: %s\n", strings.Join(project.Platforms, ", "))
	}
	if strings.TrimSpace(project.Description) != "" {
		fmt.Fprintf(b, "Description: %s\n", project.Description)
	}
	b.WriteString("\n")
}
