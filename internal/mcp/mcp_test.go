package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/berkgokcam/gddstudio/internal/config"
	"github.com/berkgokcam/gddstudio/internal/ollama"
	"github.com/berkgokcam/gddstudio/internal/orchestrate"
	"github.com/berkgokcam/gddstudio/internal/registry"
	"github.com/berkgokcam/gddstudio/internal/store"
)

// fakeCompleter returns a fixed reply without a live service.
type fakeCompleter struct {
	text string
	err  error
}

func (f *fakeCompleter) Generate(ctx context.Context, req ollama.Request) (string, error) {
	return f.text, f.err
}

func (f *fakeCompleter) GenerateStream(ctx context.Context, req ollama.Request) (<-chan ollama.Chunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan ollama.Chunk, 1)
	ch <- ollama.Chunk{Delta: f.text, Total: f.text}
	close(ch)
	return ch, nil
}

func (f *fakeCompleter) ListModels(ctx context.Context) ([]ollama.Model, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []ollama.Model{{Name: "llama3.1"}}, nil
}

func testSetup(t *testing.T, text string) (*Handlers, *store.Store) {
	t.Helper()
	s := store.New(nil, "test-client")
	cfg := config.DefaultConfig()
	orch := orchestrate.New(s, &fakeCompleter{text: text}, cfg)
	return NewHandlers(s, orch, cfg), s
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// resultPayload decodes the JSON text content of a tool result.
func resultPayload(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type %T", result.Content[0])
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Fatalf("decode payload: %v\n%s", err, text.Text)
	}
	return payload
}

func errorCode(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if !result.IsError {
		t.Fatal("expected IsError result")
	}
	payload := resultPayload(t, result)
	errObj := payload["error"].(map[string]any)
	return errObj["code"].(string)
}

func TestHandleProjectNew(t *testing.T) {
	h, s := testSetup(t, "")

	result, err := h.HandleProjectNew(context.Background(), makeRequest(map[string]any{
		"name":      "Nebula Run",
		"genres":    []string{"Racing"},
		"platforms": []string{"PC"},
	}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %v", resultPayload(t, result))
	}
	if s.Project().Name != "Nebula Run" {
		t.Errorf("name = %q", s.Project().Name)
	}
	payload := resultPayload(t, result)
	gdd := payload["gdd"].(map[string]any)
	if !strings.HasPrefix(gdd["overview"].(string), "# Nebula Run") {
		t.Errorf("overview = %v", gdd["overview"])
	}
}

func TestHandleProjectNew_EmptyName(t *testing.T) {
	h, _ := testSetup(t, "")

	result, _ := h.HandleProjectNew(context.Background(), makeRequest(map[string]any{"name": "  "}))
	if code := errorCode(t, result); code != "INVALID_REQUEST" {
		t.Errorf("code = %q", code)
	}
}

func TestHandleSectionSetAndGet(t *testing.T) {
	h, s := testSetup(t, "")
	if _, err := s.CreateProject("Nebula Run", nil, nil, ""); err != nil {
		t.Fatal(err)
	}

	result, _ := h.HandleSectionSet(context.Background(), makeRequest(map[string]any{
		"id":      "gameplay",
		"content": "Boost and drift.",
	}))
	if result.IsError {
		t.Fatalf("set failed: %v", resultPayload(t, result))
	}

	result, _ = h.HandleSectionGet(context.Background(), makeRequest(map[string]any{"id": "gameplay"}))
	payload := resultPayload(t, result)
	if payload["content"] != "Boost and drift." {
		t.Errorf("content = %v", payload["content"])
	}
}

func TestHandleSectionSet_UnknownID(t *testing.T) {
	h, s := testSetup(t, "")
	if _, err := s.CreateProject("Nebula Run", nil, nil, ""); err != nil {
		t.Fatal(err)
	}

	result, _ := h.HandleSectionSet(context.Background(), makeRequest(map[string]any{
		"id":      "bogus",
		"content": "x",
	}))
	if code := errorCode(t, result); code != "INVALID_REQUEST" {
		t.Errorf("code = %q", code)
	}
}

func TestHandleSectionGenerate(t *testing.T) {
	h, s := testSetup(t, "Run fast, drift hard.")
	if _, err := s.CreateProject("Nebula Run", nil, nil, ""); err != nil {
		t.Fatal(err)
	}

	result, _ := h.HandleSectionGenerate(context.Background(), makeRequest(map[string]any{"id": "gameplay"}))
	if result.IsError {
		t.Fatalf("generate failed: %v", resultPayload(t, result))
	}
	if content, _ := s.Section(registry.SectionGameplay); content != "Run fast, drift hard." {
		t.Errorf("stored = %q", content)
	}
}

func TestHandleSectionGenerate_NoProject(t *testing.T) {
	h, _ := testSetup(t, "text")

	result, _ := h.HandleSectionGenerate(context.Background(), makeRequest(map[string]any{"id": "gameplay"}))
	if code := errorCode(t, result); code != "NOT_FOUND" {
		t.Errorf("code = %q", code)
	}
}

func TestHandleChat(t *testing.T) {
	h, s := testSetup(t, "Consider a boost meter.")
	if _, err := s.CreateProject("Nebula Run", nil, nil, ""); err != nil {
		t.Fatal(err)
	}

	result, _ := h.HandleChat(context.Background(), makeRequest(map[string]any{
		"message": "How should gameplay feel?",
	}))
	if result.IsError {
		t.Fatalf("chat failed: %v", resultPayload(t, result))
	}
	if len(s.ChatLog()) != 2 {
		t.Errorf("chat turns = %d", len(s.ChatLog()))
	}
}

func TestHandleDiagram(t *testing.T) {
	h, s := testSetup(t, "flowchart TD\n  A --> B")
	if _, err := s.CreateProject("Nebula Run", nil, nil, ""); err != nil {
		t.Fatal(err)
	}

	result, _ := h.HandleDiagram(context.Background(), makeRequest(map[string]any{
		"type":  "flowchart",
		"label": "Core Loop",
	}))
	if result.IsError {
		t.Fatalf("diagram failed: %v", resultPayload(t, result))
	}
	if len(s.Diagrams()) != 1 {
		t.Fatalf("diagrams = %d", len(s.Diagrams()))
	}
}

func TestHandleExportAndImport(t *testing.T) {
	h, s := testSetup(t, "")
	if _, err := s.CreateProject("Nebula Run", []string{"Racing"}, []string{"PC"}, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSection(registry.SectionGameplay, "Boost and drift."); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out.md")
	result, _ := h.HandleExport(context.Background(), makeRequest(map[string]any{
		"format": "markdown",
		"path":   path,
	}))
	if result.IsError {
		t.Fatalf("export failed: %v", resultPayload(t, result))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "# Nebula Run - Game Design Document") {
		t.Error("missing title line in export")
	}

	// Re-import the file into a fresh store.
	h2, s2 := testSetup(t, "")
	result, _ = h2.HandleImport(context.Background(), makeRequest(map[string]any{"path": path}))
	if result.IsError {
		t.Fatalf("import failed: %v", resultPayload(t, result))
	}
	if s2.Project().Name != "Nebula Run" {
		t.Errorf("name = %q", s2.Project().Name)
	}
	if content, _ := s2.Section(registry.SectionGameplay); content != "Boost and drift." {
		t.Errorf("gameplay = %q", content)
	}
}

func TestHandleExport_DefaultsToExportsDir(t *testing.T) {
	h, s := testSetup(t, "")
	h.cfg.ExportsDir = t.TempDir()
	if _, err := s.CreateProject("Nebula Run", nil, nil, ""); err != nil {
		t.Fatal(err)
	}

	result, _ := h.HandleExport(context.Background(), makeRequest(map[string]any{
		"format": "markdown",
	}))
	if result.IsError {
		t.Fatalf("export failed: %v", resultPayload(t, result))
	}

	want := filepath.Join(h.cfg.ExportsDir, "nebula-run.md")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected export at %s: %v", want, err)
	}
}

func TestHandleImport_MissingFile(t *testing.T) {
	h, _ := testSetup(t, "")

	result, _ := h.HandleImport(context.Background(), makeRequest(map[string]any{
		"path": filepath.Join(t.TempDir(), "nope.md"),
	}))
	if code := errorCode(t, result); code != "INVALID_REQUEST" {
		t.Errorf("code = %q", code)
	}
}

func TestHandleStatus(t *testing.T) {
	h, s := testSetup(t, "")
	if _, err := s.CreateProject("Nebula Run", nil, nil, ""); err != nil {
		t.Fatal(err)
	}

	result, _ := h.HandleStatus(context.Background(), makeRequest(nil))
	payload := resultPayload(t, result)
	if payload["generating"] != "" {
		t.Errorf("generating = %v", payload["generating"])
	}
	project := payload["project"].(map[string]any)
	if project["name"] != "Nebula Run" {
		t.Errorf("project = %v", project["name"])
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != len(toolRegistry) {
		t.Fatalf("names = %d, registry = %d", len(names), len(toolRegistry))
	}
	for _, name := range names {
		if !strings.HasPrefix(name, "gdd_") {
			t.Errorf("tool %q missing gdd_ prefix", name)
		}
	}
}
