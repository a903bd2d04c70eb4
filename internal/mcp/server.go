// Package mcp exposes the studio's operations as MCP tools over stdio,
// so agent runtimes can drive the document without the HTTP API.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/berkgokcam/gddstudio/internal/config"
	"github.com/berkgokcam/gddstudio/internal/orchestrate"
	"github.com/berkgokcam/gddstudio/internal/store"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"gdd_project_new": {
		def:     projectNewToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProjectNew },
	},
	"gdd_status": {
		def:     statusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
	"gdd_section_get": {
		def:     sectionGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSectionGet },
	},
	"gdd_section_set": {
		def:     sectionSetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSectionSet },
	},
	"gdd_instruction_set": {
		def:     instructionSetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleInstructionSet },
	},
	"gdd_section_generate": {
		def:     sectionGenerateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSectionGenerate },
	},
	"gdd_chat": {
		def:     chatToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleChat },
	},
	"gdd_chat_clear": {
		def:     chatClearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleChatClear },
	},
	"gdd_diagram": {
		def:     diagramToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDiagram },
	},
	"gdd_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"gdd_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"gdd_models": {
		def:     modelsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleModels },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// NewServer creates a new MCP server with all studio tools registered.
func NewServer(s *store.Store, orch *orchestrate.Orchestrator, cfg *config.Config, version string) *server.MCPServer {
	srv := server.NewMCPServer(
		"gddstudio",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(s, orch, cfg)
	for _, entry := range toolRegistry {
		srv.AddTool(entry.def, entry.handler(h))
	}
	return srv
}

// Run starts the MCP server using stdio transport.
func Run(s *store.Store, orch *orchestrate.Orchestrator, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(s, orch, cfg, version))
}
