package registry

// DiagramType identifies one of the supported diagram categories.
type DiagramType string

const (
	DiagramFlowchart DiagramType = "flowchart"
	DiagramSequence  DiagramType = "sequence"
	DiagramClass     DiagramType = "class"
	DiagramGantt     DiagramType = "gantt"
	DiagramMindmap   DiagramType = "mindmap"
)

// diagramTemplates maps each diagram category to its generation instruction.
// Keyed by the typed enum so a new category without a template is caught by
// DiagramInstruction's ok result rather than a silent empty prompt.
var diagramTemplates = map[DiagramType]string{
	DiagramFlowchart: "Draw a Mermaid flowchart (graph TD) of the game's core loop " +
		"and key state transitions. Use short node labels and label every edge.",
	DiagramSequence: "Draw a Mermaid sequence diagram of one core gameplay " +
		"interaction between the player, the game systems, and the UI.",
	DiagramClass: "Draw a Mermaid class diagram of the main gameplay entities and " +
		"their relationships. Keep attributes to the essentials.",
	DiagramGantt: "Draw a Mermaid gantt chart of the development timeline with one " +
		"bar per milestone. Use dateFormat YYYY-MM-DD.",
	DiagramMindmap: "Draw a Mermaid mindmap with the game concept at the center " +
		"and one branch per design pillar.",
}

// DiagramTypes returns the supported categories in stable order.
func DiagramTypes() []DiagramType {
	return []DiagramType{
		DiagramFlowchart,
		DiagramSequence,
		DiagramClass,
		DiagramGantt,
		DiagramMindmap,
	}
}

// ValidDiagramType reports whether t names a supported diagram category.
func ValidDiagramType(t DiagramType) bool {
	_, ok := diagramTemplates[t]
	return ok
}

// DiagramInstruction returns the instruction template for t.
func DiagramInstruction(t DiagramType) (string, bool) {
	tmpl, ok := diagramTemplates[t]
	return tmpl, ok
}
