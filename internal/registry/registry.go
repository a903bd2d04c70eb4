package registry

// SectionID identifies one of the fixed document sections.
type SectionID string

const (
	SectionOverview   SectionID = "overview"
	SectionGameplay   SectionID = "gameplay"
	SectionStory      SectionID = "story"
	SectionCharacters SectionID = "characters"
	SectionWorld      SectionID = "world"
	SectionArt        SectionID = "art"
	SectionAudio      SectionID = "audio"
	SectionUI         SectionID = "ui"
	SectionTechnical  SectionID = "technical"
	SectionTimeline   SectionID = "timeline"
)

// Definition describes one registry entry. The registry is immutable at runtime.
type Definition struct {
	ID       SectionID
	Title    string
	Guidance string
}

// sections is the fixed catalog, in document order.
var sections = []Definition{
	{
		ID:    SectionOverview,
		Title: "Game Overview",
		Guidance: "Summarize the game concept, target audience, platforms, and the " +
			"core fantasy in a few short paragraphs. Lead with the elevator pitch.",
	},
	{
		ID:    SectionGameplay,
		Title: "Gameplay Mechanics",
		Guidance: "Describe the core loop, player verbs, controls, progression " +
			"systems, and difficulty. Be concrete about rules and numbers where possible.",
	},
	{
		ID:    SectionStory,
		Title: "Story & Narrative",
		Guidance: "Outline the premise, setting, main conflict, act structure, and " +
			"how the narrative is delivered to the player.",
	},
	{
		ID:    SectionCharacters,
		Title: "Characters",
		Guidance: "Introduce the protagonist, antagonists, and key supporting cast " +
			"with motivations, abilities, and visual hooks.",
	},
	{
		ID:    SectionWorld,
		Title: "World & Level Design",
		Guidance: "Describe the world structure, major regions or levels, traversal, " +
			"and how level layout supports the core mechanics.",
	},
	{
		ID:    SectionArt,
		Title: "Art Style",
		Guidance: "Define the visual direction: style references, palette, shape " +
			"language, camera, and rendering constraints.",
	},
	{
		ID:    SectionAudio,
		Title: "Audio & Music",
		Guidance: "Define the sonic direction: music genre and mood per context, " +
			"key sound effects, and voice-over scope.",
	},
	{
		ID:    SectionUI,
		Title: "User Interface",
		Guidance: "Describe HUD elements, menus, onboarding flow, and accessibility " +
			"considerations. Keep it screen-by-screen.",
	},
	{
		ID:    SectionTechnical,
		Title: "Technical Requirements",
		Guidance: "List engine, target hardware, performance budgets, networking " +
			"needs, and third-party middleware.",
	},
	{
		ID:    SectionTimeline,
		Title: "Development Timeline",
		Guidance: "Lay out milestones from pre-production to launch with dates and " +
			"deliverables per milestone.",
	},
}

// All returns the registry entries in document order.
// The returned slice must not be mutated.
func All() []Definition {
	return sections
}

// Get returns the definition for id, or false if id is not in the registry.
func Get(id SectionID) (Definition, bool) {
	for _, def := range sections {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

// Valid reports whether id names a registry section.
func Valid(id SectionID) bool {
	_, ok := Get(id)
	return ok
}

// IDs returns all section ids in document order.
func IDs() []SectionID {
	ids := make([]SectionID, len(sections))
	for i, def := range sections {
		ids[i] = def.ID
	}
	return ids
}

// Order returns the document-order position of id, or len(sections) for
// unknown ids so they sort last.
func Order(id SectionID) int {
	for i, def := range sections {
		if def.ID == id {
			return i
		}
	}
	return len(sections)
}
