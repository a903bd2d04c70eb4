// Package orchestrate drives completion calls and commits results into the
// document store.
//
// Concurrency policy: section fills are single-flight — a second fill
// while one is generating is rejected with IN_FLIGHT. Chat and diagram are
// independent slots with no cross-exclusion; concurrent commits race on
// the store as last-write-wins.
package orchestrate

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/berkgokcam/gddstudio/internal/config"
	"github.com/berkgokcam/gddstudio/internal/document"
	"github.com/berkgokcam/gddstudio/internal/errors"
	"github.com/berkgokcam/gddstudio/internal/ollama"
	"github.com/berkgokcam/gddstudio/internal/prompt"
	"github.com/berkgokcam/gddstudio/internal/registry"
	"github.com/berkgokcam/gddstudio/internal/store"
)

// Completer is the slice of the ollama client the orchestrator needs.
// Satisfied by *ollama.Client; tests may substitute their own.
type Completer interface {
	Generate(ctx context.Context, req ollama.Request) (string, error)
	GenerateStream(ctx context.Context, req ollama.Request) (<-chan ollama.Chunk, error)
	ListModels(ctx context.Context) ([]ollama.Model, error)
}

// DeltaFunc observes streamed progress: each call carries the new text
// increment and the running total.
type DeltaFunc func(delta, total string)

// Orchestrator coordinates generation against one store.
type Orchestrator struct {
	store  *store.Store
	client Completer
	cfg    *config.Config

	mu         sync.Mutex
	generating registry.SectionID // "" when the section slot is idle
}

// New creates an orchestrator.
func New(s *store.Store, client Completer, cfg *config.Config) *Orchestrator {
	return &Orchestrator{store: s, client: client, cfg: cfg}
}

// Generating returns the section currently occupying the fill slot, or ""
// when idle. The UI uses this to disable that section's trigger.
func (o *Orchestrator) Generating() registry.SectionID {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generating
}

// FillSection generates content for one section and commits it on success.
// Streamed increments are forwarded to onDelta (may be nil). A concurrent
// fill for any section is rejected; the caller does not queue or retry.
func (o *Orchestrator) FillSection(ctx context.Context, id registry.SectionID, onDelta DeltaFunc) (string, error) {
	o.mu.Lock()
	if o.generating != "" {
		busy := o.generating
		o.mu.Unlock()
		return "", errors.NewInFlight(string(busy))
	}
	o.generating = id
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.generating = ""
		o.mu.Unlock()
	}()

	payload, err := prompt.SectionFill(o.store, id, o.cfg.SectionBudget, time.Now())
	if err != nil {
		return "", err
	}

	result, err := o.stream(ctx, payload, onDelta)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(result) == "" {
		return "", errors.NewUnavailable(nil)
	}

	if err := o.store.SetSection(id, result); err != nil {
		return "", err
	}
	return result, nil
}

// Chat answers a free-text question grounded in the document and appends
// both turns to the chat log on success. Runs concurrently with section
// fills by design.
func (o *Orchestrator) Chat(ctx context.Context, message string, onDelta DeltaFunc) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.NewInvalidRequest("message is required")
	}

	payload, err := prompt.Chat(o.store, message)
	if err != nil {
		return "", err
	}

	answer, err := o.stream(ctx, payload, onDelta)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return "", errors.NewUnavailable(nil)
	}

	o.store.AppendChatTurn(document.RoleUser, message)
	o.store.AppendChatTurn(document.RoleAssistant, answer)
	return answer, nil
}

// Diagram generates diagram source and saves it on success. existingSource
// plus non-empty instructions selects the modify sub-mode.
func (o *Orchestrator) Diagram(ctx context.Context, typ registry.DiagramType, label, existingSource, instructions string) (document.Diagram, error) {
	payload, err := prompt.Diagram(o.store, typ, existingSource, instructions)
	if err != nil {
		return document.Diagram{}, err
	}

	raw, err := o.client.Generate(ctx, ollama.Request{
		Model:   o.model(),
		Prompt:  payload.Prompt,
		System:  payload.System,
		Options: o.options(),
	})
	if err != nil {
		return document.Diagram{}, err
	}

	source := StripFences(raw)
	if strings.TrimSpace(source) == "" {
		return document.Diagram{}, errors.NewUnavailable(nil)
	}

	if label == "" {
		label = string(typ) + " " + time.Now().Format("2006-01-02 15:04")
	}
	return o.store.SaveDiagram(typ, label, source)
}

// ListModels proxies the service's model list.
func (o *Orchestrator) ListModels(ctx context.Context) ([]ollama.Model, error) {
	return o.client.ListModels(ctx)
}

func (o *Orchestrator) stream(ctx context.Context, payload prompt.Payload, onDelta DeltaFunc) (string, error) {
	chunks, err := o.client.GenerateStream(ctx, ollama.Request{
		Model:   o.model(),
		Prompt:  payload.Prompt,
		System:  payload.System,
		Options: o.options(),
	})
	if err != nil {
		return "", err
	}

	var total string
	for chunk := range chunks {
		total = chunk.Total
		if onDelta != nil {
			onDelta(chunk.Delta, chunk.Total)
		}
	}

	if err := ctx.Err(); err != nil {
		// Cancelled mid-stream: nothing is committed.
		return "", errors.NewUnavailable(err)
	}
	return total, nil
}

func (o *Orchestrator) model() string {
	if m := o.store.SelectedModel(); m != "" {
		return m
	}
	return o.cfg.Model
}

func (o *Orchestrator) options() ollama.Options {
	return ollama.Options{
		Temperature: o.cfg.Temperature,
		MaxTokens:   o.cfg.MaxTokens,
	}
}

// StripFences removes a wrapping markdown code fence from diagram output.
// Models often return ```mermaid ... ``` despite the system prompt.
func StripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}
	// Drop the opening fence line (``` or ```mermaid).
	lines = lines[1:]
	// Drop a closing fence if present.
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
