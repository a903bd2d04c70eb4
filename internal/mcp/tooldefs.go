package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var stringItems = map[string]any{"type": "string"}

var projectNewToolDef = mcp.NewTool("gdd_project_new",
	mcp.WithDescription("Start a new game design document, replacing the current one. The overview section is pre-filled from the metadata."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Project name")),
	mcp.WithArray("genres", mcp.Description("Genre tags"), mcp.Items(stringItems)),
	mcp.WithArray("platforms", mcp.Description("Target platforms"), mcp.Items(stringItems)),
	mcp.WithString("description", mcp.Description("Short pitch for the game")),
)

var statusToolDef = mcp.NewTool("gdd_status",
	mcp.WithDescription("Report the current project, filled sections, selected model and whether a section fill is in flight."),
)

var sectionGetToolDef = mcp.NewTool("gdd_section_get",
	mcp.WithDescription("Read one section's content, or the whole document when id is omitted."),
	mcp.WithString("id", mcp.Description("Section id, e.g. gameplay")),
)

var sectionSetToolDef = mcp.NewTool("gdd_section_set",
	mcp.WithDescription("Set a section's content manually. Empty content clears the section."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Section id")),
	mcp.WithString("content", mcp.Description("Markdown content; empty clears")),
)

var instructionSetToolDef = mcp.NewTool("gdd_instruction_set",
	mcp.WithDescription("Set the per-section steering instruction used by the next generation. Empty text clears it."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Section id")),
	mcp.WithString("text", mcp.Description("Instruction text; empty clears")),
)

var sectionGenerateToolDef = mcp.NewTool("gdd_section_generate",
	mcp.WithDescription("Generate a section with the local completion model and commit it on success. Rejected while another fill is in flight."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Section id")),
)

var chatToolDef = mcp.NewTool("gdd_chat",
	mcp.WithDescription("Ask the design assistant a question grounded in the document. Both turns are appended to the chat log."),
	mcp.WithString("message", mcp.Required(), mcp.Description("The question")),
)

var chatClearToolDef = mcp.NewTool("gdd_chat_clear",
	mcp.WithDescription("Clear the chat log."),
)

var diagramToolDef = mcp.NewTool("gdd_diagram",
	mcp.WithDescription("Generate a Mermaid diagram from the document, or modify an existing one when diagram_id is given."),
	mcp.WithString("type", mcp.Description("flowchart, sequence, class, gantt or mindmap")),
	mcp.WithString("label", mcp.Description("Display label; defaults to type plus timestamp")),
	mcp.WithString("instructions", mcp.Description("Free-text steering for the diagram")),
	mcp.WithString("diagram_id", mcp.Description("Existing diagram to modify")),
)

var exportToolDef = mcp.NewTool("gdd_export",
	mcp.WithDescription("Export the document to a file: markdown, html or snapshot."),
	mcp.WithString("format", mcp.Required(), mcp.Description("markdown, html or snapshot")),
	mcp.WithString("path", mcp.Description("Destination file path (defaults to the exports directory)")),
)

var importToolDef = mcp.NewTool("gdd_import",
	mcp.WithDescription("Import a document from a file, replacing the current state. Format is sniffed when omitted."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source file path")),
	mcp.WithString("format", mcp.Description("snapshot, markdown or html")),
)

var modelsToolDef = mcp.NewTool("gdd_models",
	mcp.WithDescription("List models installed on the local completion service."),
)
