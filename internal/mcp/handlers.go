package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/berkgokcam/gddstudio/internal/config"
	"github.com/berkgokcam/gddstudio/internal/errors"
	"github.com/berkgokcam/gddstudio/internal/export"
	"github.com/berkgokcam/gddstudio/internal/importer"
	"github.com/berkgokcam/gddstudio/internal/orchestrate"
	"github.com/berkgokcam/gddstudio/internal/registry"
	"github.com/berkgokcam/gddstudio/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store *store.Store
	orch  *orchestrate.Orchestrator
	cfg   *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(s *store.Store, orch *orchestrate.Orchestrator, cfg *config.Config) *Handlers {
	return &Handlers{store: s, orch: orch, cfg: cfg}
}

// Request types for each tool

// ProjectNewRequest represents the arguments for gdd_project_new.
type ProjectNewRequest struct {
	Name        string   `json:"name"`
	Genres      []string `json:"genres,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
	Description string   `json:"description,omitempty"`
}

// SectionGetRequest represents the arguments for gdd_section_get.
type SectionGetRequest struct {
	ID string `json:"id,omitempty"`
}

// SectionSetRequest represents the arguments for gdd_section_set.
type SectionSetRequest struct {
	ID      string `json:"id"`
	Content string `json:"content,omitempty"`
}

// InstructionSetRequest represents the arguments for gdd_instruction_set.
type InstructionSetRequest struct {
	ID   string `json:"id"`
	Text string `json:"text,omitempty"`
}

// SectionGenerateRequest represents the arguments for gdd_section_generate.
type SectionGenerateRequest struct {
	ID string `json:"id"`
}

// ChatRequest represents the arguments for gdd_chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// DiagramRequest represents the arguments for gdd_diagram.
type DiagramRequest struct {
	Type         string `json:"type,omitempty"`
	Label        string `json:"label,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	DiagramID    string `json:"diagram_id,omitempty"`
}

// ExportRequest represents the arguments for gdd_export.
type ExportRequest struct {
	Format string `json:"format"`
	Path   string `json:"path"`
}

// ImportRequest represents the arguments for gdd_import.
type ImportRequest struct {
	Path   string `json:"path"`
	Format string `json:"format,omitempty"`
}

// Handler implementations

// HandleProjectNew handles the gdd_project_new tool call.
func (h *Handlers) HandleProjectNew(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectNewRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	project, err := h.store.CreateProject(input.Name, input.Genres, input.Platforms, input.Description)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"project": project,
		"gdd":     h.store.GDD(),
	})
}

// HandleStatus handles the gdd_status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(map[string]any{
		"project":        h.store.Project(),
		"filled":         h.store.FilledSections(),
		"generating":     string(h.orch.Generating()),
		"selected_model": h.store.SelectedModel(),
		"default_model":  h.cfg.Model,
		"diagrams":       len(h.store.Diagrams()),
		"chat_turns":     len(h.store.ChatLog()),
	})
}

// HandleSectionGet handles the gdd_section_get tool call.
func (h *Handlers) HandleSectionGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SectionGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if input.ID == "" {
		return successResult(map[string]any{
			"gdd":    h.store.GDD(),
			"filled": h.store.FilledSections(),
		})
	}

	id := registry.SectionID(input.ID)
	content, filled := h.store.Section(id)
	if !registry.Valid(id) && !filled {
		return errorResult(errors.NewNotFound("section " + input.ID)), nil
	}
	instruction, _ := h.store.Instruction(id)
	return successResult(map[string]any{
		"id":          id,
		"content":     content,
		"filled":      filled,
		"instruction": instruction,
	})
}

// HandleSectionSet handles the gdd_section_set tool call.
func (h *Handlers) HandleSectionSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SectionSetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	id := registry.SectionID(input.ID)
	if err := h.store.SetSection(id, input.Content); err != nil {
		return errorResult(err), nil
	}
	content, filled := h.store.Section(id)
	return successResult(map[string]any{
		"id":      id,
		"content": content,
		"filled":  filled,
	})
}

// HandleInstructionSet handles the gdd_instruction_set tool call.
func (h *Handlers) HandleInstructionSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[InstructionSetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	id := registry.SectionID(input.ID)
	if err := h.store.SetInstruction(id, input.Text); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"id": id, "instruction": input.Text})
}

// HandleSectionGenerate handles the gdd_section_generate tool call. The
// tool call blocks until the fill completes; MCP has no delta stream.
func (h *Handlers) HandleSectionGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SectionGenerateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if h.store.Project() == nil {
		return errorResult(errors.NewNotFound("project")), nil
	}

	content, err := h.orch.FillSection(ctx, registry.SectionID(input.ID), nil)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"id":      input.ID,
		"content": content,
	})
}

// HandleChat handles the gdd_chat tool call.
func (h *Handlers) HandleChat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ChatRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if h.store.Project() == nil {
		return errorResult(errors.NewNotFound("project")), nil
	}

	reply, err := h.orch.Chat(ctx, input.Message, nil)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"reply": reply})
}

// HandleChatClear handles the gdd_chat_clear tool call.
func (h *Handlers) HandleChatClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.store.ClearChat()
	return successResult(map[string]any{"cleared": true})
}

// HandleDiagram handles the gdd_diagram tool call.
func (h *Handlers) HandleDiagram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DiagramRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if h.store.Project() == nil {
		return errorResult(errors.NewNotFound("project")), nil
	}

	typ := registry.DiagramType(input.Type)
	existing := ""
	if input.DiagramID != "" {
		found := false
		for _, d := range h.store.Diagrams() {
			if d.ID == input.DiagramID {
				existing = d.Source
				typ = d.Type
				found = true
				break
			}
		}
		if !found {
			return errorResult(errors.NewNotFound("diagram " + input.DiagramID)), nil
		}
	}

	diagram, err := h.orch.Diagram(ctx, typ, input.Label, existing, input.Instructions)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"diagram": diagram})
}

// HandleExport handles the gdd_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	project := h.store.Project()
	if project == nil {
		return errorResult(errors.NewNotFound("project")), nil
	}

	var data []byte
	var ext string
	switch input.Format {
	case "markdown":
		data, ext = export.Markdown(h.store.Snapshot()), "md"
	case "html":
		data, err = export.HTML(h.store.Snapshot())
		ext = "html"
	case "snapshot":
		data, err = export.Archive(h.store.Archive())
		ext = "json"
	default:
		return errorResult(errors.NewInvalidRequest("unknown export format: " + input.Format)), nil
	}
	if err != nil {
		return errorResult(err), nil
	}

	path := input.Path
	if path == "" {
		path = export.Filename(project.Name, ext)
		if h.cfg != nil && h.cfg.ExportsDir != "" {
			path = filepath.Join(h.cfg.ExportsDir, path)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errorResult(errors.NewInternal(err)), nil
	}
	return successResult(map[string]any{
		"path":  path,
		"bytes": len(data),
	})
}

// HandleImport handles the gdd_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		return errorResult(errors.NewInvalidRequest("unreadable file: " + input.Path)), nil
	}

	result, err := importer.Import(data, importer.Format(input.Format))
	if err != nil {
		return errorResult(err), nil
	}
	if err := h.store.Replace(result.Project, result.GDD); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"project":  h.store.Project(),
		"sections": len(result.GDD),
	})
}

// HandleModels handles the gdd_models tool call.
func (h *Handlers) HandleModels(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	models, err := h.orch.ListModels(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}
	return successResult(map[string]any{"models": names})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
func errorResult(err error) *mcp.CallToolResult {
	sErr := errors.From(err)
	errorObj := map[string]any{
		"code":    sErr.Code,
		"message": sErr.Message,
		"status":  sErr.Status,
	}
	// Only include details for non-internal errors to avoid leaking
	// sensitive info like file paths.
	if sErr.Code != errors.ErrInternal && sErr.Details != nil {
		errorObj["details"] = sErr.Details
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
