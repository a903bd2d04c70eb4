package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/berkgokcam/gddstudio/internal/db"
	"github.com/berkgokcam/gddstudio/internal/document"
	"github.com/berkgokcam/gddstudio/internal/errors"
	"github.com/berkgokcam/gddstudio/internal/registry"
)

// Store owns the in-memory document state and its durable snapshot. One
// instance is created at startup and passed to the components that read or
// write it; there is no ambient global state.
//
// All methods are safe for concurrent use. Writes from concurrent
// generation slots are last-write-wins: the mutex prevents torn state, not
// logical overwrites.
type Store struct {
	mu       sync.Mutex
	database *sql.DB
	clientID string

	project       *document.Project
	gdd           map[registry.SectionID]string
	chat          []document.ChatTurn
	instructions  map[registry.SectionID]string
	diagrams      []document.Diagram
	selectedModel string
	darkTheme     bool
}

// New creates an empty store bound to a database handle and client identity.
func New(database *sql.DB, clientID string) *Store {
	return &Store{
		database:     database,
		clientID:     clientID,
		gdd:          make(map[registry.SectionID]string),
		instructions: make(map[registry.SectionID]string),
	}
}

// CreateProject replaces the whole store state with a fresh project.
// The overview section is prefilled from the metadata. Fails if name is empty.
func (s *Store) CreateProject(name string, genres, platforms []string, description string) (*document.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewInvalidRequest("project name is required")
	}

	id, err := newULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := time.Now().Unix()
	project := &document.Project{
		ID:          id,
		Name:        name,
		Genre:       document.JoinGenres(genres),
		Platforms:   platforms,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.project = project
	s.gdd = map[registry.SectionID]string{
		registry.SectionOverview: document.OverviewSeed(name, platforms, description),
	}
	s.chat = nil
	s.instructions = make(map[registry.SectionID]string)
	s.diagrams = nil

	if err := s.persistLocked(); err != nil {
		return nil, err
	}

	out := *project
	return &out, nil
}

// Project returns a copy of the current project, or nil when none exists.
func (s *Store) Project() *document.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil
	}
	out := *s.project
	return &out
}

// Section returns a section's content. The second result is false when the
// section is unfilled.
func (s *Store) Section(id registry.SectionID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.gdd[id]
	return content, ok && content != ""
}

// SetSection overwrites a section's content wholesale, bumps the project's
// UpdatedAt, and persists. Section ids outside the registry are rejected.
func (s *Store) SetSection(id registry.SectionID, content string) error {
	if !registry.Valid(id) {
		return errors.NewInvalidRequest("unknown section id: " + string(id))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if content == "" {
		delete(s.gdd, id)
	} else {
		s.gdd[id] = content
	}
	s.touchLocked()
	return s.persistLocked()
}

// FilledSections returns ids of filled sections in registry order.
func (s *Store) FilledSections() []registry.SectionID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []registry.SectionID
	for _, def := range registry.All() {
		if s.gdd[def.ID] != "" {
			ids = append(ids, def.ID)
		}
	}
	return ids
}

// GDD returns a copy of the section content map.
func (s *Store) GDD() map[registry.SectionID]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[registry.SectionID]string, len(s.gdd))
	for id, content := range s.gdd {
		out[id] = content
	}
	return out
}

// Instruction returns the custom instruction for a section, if set.
func (s *Store) Instruction(id registry.SectionID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.instructions[id]
	return text, ok && text != ""
}

// SetInstruction stores a per-section custom instruction. An empty text
// clears it. Section ids outside the registry are rejected.
func (s *Store) SetInstruction(id registry.SectionID, text string) error {
	if !registry.Valid(id) {
		return errors.NewInvalidRequest("unknown section id: " + string(id))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		delete(s.instructions, id)
	} else {
		s.instructions[id] = text
	}
	return s.persistLocked()
}

// AppendChatTurn appends one turn to the chat log. The log is append-only;
// context building truncates, storage does not.
func (s *Store) AppendChatTurn(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = append(s.chat, document.ChatTurn{Role: role, Content: content})
}

// ChatLog returns a copy of the full chat log.
func (s *Store) ChatLog() []document.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]document.ChatTurn, len(s.chat))
	copy(out, s.chat)
	return out
}

// ClearChat empties the chat log.
func (s *Store) ClearChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = nil
}

// SaveDiagram prepends a diagram to the saved list, evicting the oldest
// entry once the list exceeds its bound, and persists.
func (s *Store) SaveDiagram(typ registry.DiagramType, label, source string) (document.Diagram, error) {
	if !registry.ValidDiagramType(typ) {
		return document.Diagram{}, errors.NewInvalidRequest("unknown diagram type: " + string(typ))
	}

	id, err := newULID()
	if err != nil {
		return document.Diagram{}, errors.NewInternal(err)
	}

	diagram := document.Diagram{
		ID:        id,
		Type:      typ,
		Label:     label,
		Source:    source,
		CreatedAt: time.Now().Unix(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.diagrams = append([]document.Diagram{diagram}, s.diagrams...)
	if len(s.diagrams) > document.MaxDiagrams {
		s.diagrams = s.diagrams[:document.MaxDiagrams]
	}
	s.touchLocked()

	if err := s.persistLocked(); err != nil {
		return document.Diagram{}, err
	}
	return diagram, nil
}

// Diagrams returns a copy of the saved diagram list, newest first.
func (s *Store) Diagrams() []document.Diagram {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]document.Diagram, len(s.diagrams))
	copy(out, s.diagrams)
	return out
}

// SelectedModel returns the persisted model selection.
func (s *Store) SelectedModel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedModel
}

// SetSelectedModel persists the model selection.
func (s *Store) SetSelectedModel(model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedModel = model
	return s.persistLocked()
}

// DarkTheme returns the persisted theme flag.
func (s *Store) DarkTheme() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.darkTheme
}

// SetDarkTheme persists the theme flag.
func (s *Store) SetDarkTheme(dark bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.darkTheme = dark
	return s.persistLocked()
}

// Replace swaps in an imported project and section map wholesale. Chat,
// instructions, and diagrams are reset; unknown section ids are kept only
// if they were synthesized by import fallback (registry ids are validated
// by the importer before calling).
func (s *Store) Replace(project *document.Project, gdd map[registry.SectionID]string) error {
	if project == nil {
		return errors.NewInvalidRequest("project is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.project = project
	s.gdd = make(map[registry.SectionID]string, len(gdd))
	for id, content := range gdd {
		if content != "" {
			s.gdd[id] = content
		}
	}
	s.chat = nil
	s.instructions = make(map[registry.SectionID]string)
	s.diagrams = nil

	return s.persistLocked()
}

// Snapshot returns the persisted form of the store (no chat log).
func (s *Store) Snapshot() document.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Archive returns the full-fidelity export form: the snapshot plus the
// chat log, tagged with the format version.
func (s *Store) Archive() document.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshotLocked()
	snap.Version = document.SnapshotVersion
	snap.Chat = make([]document.ChatTurn, len(s.chat))
	copy(snap.Chat, s.chat)
	return snap
}

// Persist serializes the snapshot and overwrites the stored row wholesale.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// Restore loads the stored snapshot. Missing or malformed data falls back
// to empty defaults without raising.
func (s *Store) Restore() error {
	payload, found, err := db.LoadSnapshot(s.database, s.clientID)
	if err != nil || !found {
		return nil
	}

	var snap document.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.project = snap.Project
	// Section ids are not filtered against the registry here: markdown
	// import fallback may have synthesized ids, and those must survive a
	// persist/restore round-trip. The registry subset invariant is
	// enforced on the setter paths.
	s.gdd = make(map[registry.SectionID]string)
	for id, content := range snap.GDD {
		if content != "" {
			s.gdd[id] = content
		}
	}
	s.instructions = make(map[registry.SectionID]string)
	for id, text := range snap.Instructions {
		if registry.Valid(id) && text != "" {
			s.instructions[id] = text
		}
	}
	s.diagrams = snap.Diagrams
	if len(s.diagrams) > document.MaxDiagrams {
		s.diagrams = s.diagrams[:document.MaxDiagrams]
	}
	s.selectedModel = snap.SelectedModel
	s.darkTheme = snap.DarkTheme
	return nil
}

// Instructions returns a copy of the custom instruction map.
func (s *Store) Instructions() map[registry.SectionID]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[registry.SectionID]string, len(s.instructions))
	for id, text := range s.instructions {
		out[id] = text
	}
	return out
}

func (s *Store) snapshotLocked() document.Snapshot {
	snap := document.Snapshot{
		GDD:           make(map[registry.SectionID]string, len(s.gdd)),
		SelectedModel: s.selectedModel,
		DarkTheme:     s.darkTheme,
	}
	if s.project != nil {
		project := *s.project
		snap.Project = &project
	}
	for id, content := range s.gdd {
		snap.GDD[id] = content
	}
	if len(s.instructions) > 0 {
		snap.Instructions = make(map[registry.SectionID]string, len(s.instructions))
		for id, text := range s.instructions {
			snap.Instructions[id] = text
		}
	}
	if len(s.diagrams) > 0 {
		snap.Diagrams = make([]document.Diagram, len(s.diagrams))
		copy(snap.Diagrams, s.diagrams)
	}
	return snap
}

func (s *Store) persistLocked() error {
	if s.database == nil {
		return nil
	}
	data, err := json.Marshal(s.snapshotLocked())
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := db.SaveSnapshot(s.database, s.clientID, string(data)); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func (s *Store) touchLocked() {
	if s.project != nil {
		s.project.UpdatedAt = time.Now().Unix()
	}
}

// newULID generates a new ULID.
func newULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
