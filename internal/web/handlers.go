package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/berkgokcam/gddstudio/internal/config"
	"github.com/berkgokcam/gddstudio/internal/errors"
	"github.com/berkgokcam/gddstudio/internal/export"
	"github.com/berkgokcam/gddstudio/internal/importer"
	"github.com/berkgokcam/gddstudio/internal/orchestrate"
	"github.com/berkgokcam/gddstudio/internal/registry"
	"github.com/berkgokcam/gddstudio/internal/store"
)

// maxImportBytes bounds uploaded import payloads.
const maxImportBytes = 10 << 20

// Handlers contains HTTP route handlers for the studio API.
type Handlers struct {
	store   *store.Store
	orch    *orchestrate.Orchestrator
	cfg     *config.Config
	version string
}

// HandleStatus handles GET /api/status — service and generation state.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	_, err := h.orch.ListModels(ctx)

	renderJSON(w, http.StatusOK, map[string]any{
		"version":        h.version,
		"has_project":    h.store.Project() != nil,
		"generating":     string(h.orch.Generating()),
		"selected_model": h.store.SelectedModel(),
		"default_model":  h.cfg.Model,
		"dark_theme":     h.store.DarkTheme(),
		"ollama_up":      err == nil,
	})
}

// HandleModels handles GET /api/models — installed model names.
func (h *Handlers) HandleModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.orch.ListModels(r.Context())
	if err != nil {
		renderError(w, err)
		return
	}
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}
	renderJSON(w, http.StatusOK, map[string]any{"models": names})
}

// HandleRegistry handles GET /api/registry — the section catalog and
// diagram categories the front end builds its navigation from.
func (h *Handlers) HandleRegistry(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	sections := make([]entry, 0)
	for _, def := range registry.All() {
		sections = append(sections, entry{ID: string(def.ID), Title: def.Title})
	}
	renderJSON(w, http.StatusOK, map[string]any{
		"sections":      sections,
		"diagram_types": registry.DiagramTypes(),
	})
}

// HandleProject handles GET /api/project — the full working state.
func (h *Handlers) HandleProject(w http.ResponseWriter, r *http.Request) {
	project := h.store.Project()
	if project == nil {
		renderError(w, errors.NewNotFound("project"))
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{
		"project":        project,
		"gdd":            h.store.GDD(),
		"filled":         h.store.FilledSections(),
		"instructions":   h.store.Instructions(),
		"diagrams":       h.store.Diagrams(),
		"selected_model": h.store.SelectedModel(),
		"dark_theme":     h.store.DarkTheme(),
	})
}

// HandleCreateProject handles POST /api/project — start a new document,
// replacing the current one wholesale.
func (h *Handlers) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string   `json:"name"`
		Genres      []string `json:"genres"`
		Platforms   []string `json:"platforms"`
		Description string   `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	project, err := h.store.CreateProject(body.Name, body.Genres, body.Platforms, body.Description)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusCreated, map[string]any{
		"project": project,
		"gdd":     h.store.GDD(),
	})
}

// HandleSettings handles PUT /api/settings — model selection and theme.
func (h *Handlers) HandleSettings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SelectedModel *string `json:"selected_model"`
		DarkTheme     *bool   `json:"dark_theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	if body.SelectedModel != nil {
		if err := h.store.SetSelectedModel(*body.SelectedModel); err != nil {
			renderError(w, err)
			return
		}
	}
	if body.DarkTheme != nil {
		if err := h.store.SetDarkTheme(*body.DarkTheme); err != nil {
			renderError(w, err)
			return
		}
	}
	renderJSON(w, http.StatusOK, map[string]any{
		"selected_model": h.store.SelectedModel(),
		"dark_theme":     h.store.DarkTheme(),
	})
}

// HandleSections handles GET /api/sections — all section content.
func (h *Handlers) HandleSections(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{
		"gdd":    h.store.GDD(),
		"filled": h.store.FilledSections(),
	})
}

// HandleSection handles GET /api/sections/{id} — a single section.
func (h *Handlers) HandleSection(w http.ResponseWriter, r *http.Request) {
	id := registry.SectionID(r.PathValue("id"))
	content, filled := h.store.Section(id)
	if !registry.Valid(id) && !filled {
		renderError(w, errors.NewNotFound("section "+string(id)))
		return
	}
	instruction, _ := h.store.Instruction(id)
	renderJSON(w, http.StatusOK, map[string]any{
		"id":          id,
		"content":     content,
		"filled":      filled,
		"instruction": instruction,
	})
}

// HandleSetSection handles PUT /api/sections/{id} — manual edit. An
// empty content string clears the section.
func (h *Handlers) HandleSetSection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	id := registry.SectionID(r.PathValue("id"))
	if err := h.store.SetSection(id, body.Content); err != nil {
		renderError(w, err)
		return
	}
	content, filled := h.store.Section(id)
	renderJSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"content": content,
		"filled":  filled,
	})
}

// HandleInstruction handles PUT /api/sections/{id}/instruction — the
// per-section steering hint. Empty text clears it.
func (h *Handlers) HandleInstruction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	id := registry.SectionID(r.PathValue("id"))
	if err := h.store.SetInstruction(id, body.Text); err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{"id": id, "instruction": body.Text})
}

// HandleGenerate handles POST /api/sections/{id}/generate — streams the
// section fill as NDJSON delta events, ending with a done event carrying
// the committed content.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if h.store.Project() == nil {
		renderError(w, errors.NewNotFound("project"))
		return
	}
	id := registry.SectionID(r.PathValue("id"))

	streamNDJSON(w, func(emit func(any) bool) (any, error) {
		content, err := h.orch.FillSection(r.Context(), id, func(delta, total string) {
			emit(map[string]any{"delta": delta})
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"done": true, "id": id, "content": content}, nil
	})
}

// HandleChat handles POST /api/chat — streams the assistant reply.
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	if h.store.Project() == nil {
		renderError(w, errors.NewNotFound("project"))
		return
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	streamNDJSON(w, func(emit func(any) bool) (any, error) {
		reply, err := h.orch.Chat(r.Context(), body.Message, func(delta, total string) {
			emit(map[string]any{"delta": delta})
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"done": true, "reply": reply}, nil
	})
}

// HandleChatLog handles GET /api/chat.
func (h *Handlers) HandleChatLog(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{"turns": h.store.ChatLog()})
}

// HandleClearChat handles DELETE /api/chat.
func (h *Handlers) HandleClearChat(w http.ResponseWriter, r *http.Request) {
	h.store.ClearChat()
	renderJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

// HandleDiagrams handles GET /api/diagrams.
func (h *Handlers) HandleDiagrams(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{"diagrams": h.store.Diagrams()})
}

// HandleCreateDiagram handles POST /api/diagrams — generate a new
// diagram, or modify an existing one when diagram_id names it.
func (h *Handlers) HandleCreateDiagram(w http.ResponseWriter, r *http.Request) {
	if h.store.Project() == nil {
		renderError(w, errors.NewNotFound("project"))
		return
	}
	var body struct {
		Type         string `json:"type"`
		Label        string `json:"label"`
		Instructions string `json:"instructions"`
		DiagramID    string `json:"diagram_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	typ := registry.DiagramType(body.Type)
	existing := ""
	if body.DiagramID != "" {
		found := false
		for _, d := range h.store.Diagrams() {
			if d.ID == body.DiagramID {
				existing = d.Source
				typ = d.Type
				found = true
				break
			}
		}
		if !found {
			renderError(w, errors.NewNotFound("diagram "+body.DiagramID))
			return
		}
	}

	diagram, err := h.orch.Diagram(r.Context(), typ, body.Label, existing, body.Instructions)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusCreated, map[string]any{"diagram": diagram})
}

// HandleExportDiagram handles GET /api/diagrams/{id}/export — raw
// Mermaid source as a .mmd download.
func (h *Handlers) HandleExportDiagram(w http.ResponseWriter, r *http.Request) {
	filename, data, err := export.Diagram(h.store.Diagrams(), r.PathValue("id"))
	if err != nil {
		renderError(w, err)
		return
	}
	renderDownload(w, filename, "text/plain; charset=utf-8", data)
}

// HandleExport handles GET /api/export/{format} for markdown, html and
// snapshot downloads.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	project := h.store.Project()
	if project == nil {
		renderError(w, errors.NewNotFound("project"))
		return
	}

	switch r.PathValue("format") {
	case "markdown":
		data := export.Markdown(h.store.Snapshot())
		renderDownload(w, export.Filename(project.Name, "md"), "text/markdown; charset=utf-8", data)
	case "html":
		data, err := export.HTML(h.store.Snapshot())
		if err != nil {
			renderError(w, err)
			return
		}
		renderDownload(w, export.Filename(project.Name, "html"), "text/html; charset=utf-8", data)
	case "snapshot":
		data, err := export.Archive(h.store.Archive())
		if err != nil {
			renderError(w, err)
			return
		}
		renderDownload(w, export.Filename(project.Name, "json"), "application/json", data)
	default:
		renderError(w, errors.NewInvalidRequest("unknown export format: "+r.PathValue("format")))
	}
}

// HandleImport handles POST /api/import — parse an uploaded document and
// replace the working state. The store is untouched when parsing fails.
func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes+1))
	if err != nil {
		renderError(w, errors.NewInvalidRequest("unreadable request body"))
		return
	}
	if len(data) > maxImportBytes {
		renderError(w, errors.NewInvalidRequest("import payload too large"))
		return
	}

	result, err := importer.Import(data, importer.Format(r.URL.Query().Get("format")))
	if err != nil {
		renderError(w, err)
		return
	}
	if err := h.store.Replace(result.Project, result.GDD); err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{
		"project":  h.store.Project(),
		"sections": len(result.GDD),
	})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError writes a typed error as JSON with its mapped status.
func renderError(w http.ResponseWriter, err error) {
	sErr := errors.From(err)
	renderJSON(w, sErr.Status, map[string]any{
		"error": map[string]any{
			"code":    string(sErr.Code),
			"message": sErr.Message,
			"status":  sErr.Status,
		},
	})
}

// renderDownload writes bytes with an attachment disposition.
func renderDownload(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// streamNDJSON runs fn, forwarding emitted events as NDJSON lines. The
// response status is decided lazily: an error before the first event
// becomes a plain JSON error response, an error after it becomes a
// terminal error event on the stream.
func streamNDJSON(w http.ResponseWriter, fn func(emit func(any) bool) (any, error)) {
	flusher, _ := w.(http.Flusher)
	started := false

	writeLine := func(v any) bool {
		if !started {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.Header().Set("Cache-Control", "no-store")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if err := json.NewEncoder(w).Encode(v); err != nil {
			return false
		}
		if flusher != nil {
			flusher.Flush()
		}
		return true
	}

	final, err := fn(writeLine)
	if err != nil {
		if !started {
			renderError(w, err)
			return
		}
		sErr := errors.From(err)
		writeLine(map[string]any{
			"error": map[string]any{
				"code":    string(sErr.Code),
				"message": sErr.Message,
			},
		})
		return
	}
	writeLine(final)
}
