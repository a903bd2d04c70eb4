package export

import (
	"strings"
	"testing"
	"time"

	"github.com/berkgokcam/gddstudio/internal/document"
	"github.com/berkgokcam/gddstudio/internal/errors"
	"github.com/berkgokcam/gddstudio/internal/importer"
	"github.com/berkgokcam/gddstudio/internal/registry"
)

func testSnapshot() document.Snapshot {
	created, _ := time.Parse("2006-01-02", "2025-03-01")
	return document.Snapshot{
		Project: &document.Project{
			ID:        "01TEST",
			Name:      "Nebula Run",
			Genre:     "Racing",
			Platforms: []string{"PC", "Switch"},
			CreatedAt: created.Unix(),
			UpdatedAt: created.Unix(),
		},
		GDD: map[registry.SectionID]string{
			registry.SectionOverview: "An anti-gravity racer.",
			registry.SectionGameplay: "Boost and drift.",
		},
	}
}

func TestMarkdownLayout(t *testing.T) {
	out := string(Markdown(testSnapshot()))

	if !strings.HasPrefix(out, "# Nebula Run - Game Design Document\n") {
		t.Errorf("missing title line:\n%s", out[:80])
	}
	for _, want := range []string{
		"**Created:** 2025-03-01",
		"**Genre:** Racing",
		"**Platform(s):** PC, Switch",
		"\n---\n",
		"## Game Overview\n\nAn anti-gravity racer.",
		"## Gameplay Mechanics\n\nBoost and drift.",
		"## Story & Narrative\n\n" + document.UnfilledPlaceholder,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}

	// Every catalog section appears exactly once, in registry order.
	last := -1
	for _, def := range registry.All() {
		idx := strings.Index(out, "\n## "+def.Title+"\n")
		if idx < 0 {
			t.Errorf("missing heading for %s", def.ID)
			continue
		}
		if idx < last {
			t.Errorf("heading %q out of order", def.Title)
		}
		last = idx
	}
}

func TestMarkdownSynthesizedSections(t *testing.T) {
	snap := testSnapshot()
	snap.GDD["risks-and-mitigations"] = "Scope creep."

	out := string(Markdown(snap))
	if !strings.Contains(out, "## Risks & Mitigations\n\nScope creep.") {
		t.Errorf("synthesized section missing:\n%s", out)
	}
}

func TestMarkdownImportRoundTrip(t *testing.T) {
	snap := testSnapshot()

	res, err := importer.Markdown(Markdown(snap))
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if res.Project.Name != "Nebula Run" {
		t.Errorf("name = %q", res.Project.Name)
	}
	if res.Project.Genre != "Racing" {
		t.Errorf("genre = %q", res.Project.Genre)
	}
	if res.Project.CreatedAt != snap.Project.CreatedAt {
		t.Errorf("created = %d, want %d", res.Project.CreatedAt, snap.Project.CreatedAt)
	}
	for id, want := range snap.GDD {
		if res.GDD[id] != want {
			t.Errorf("section %s = %q, want %q", id, res.GDD[id], want)
		}
	}
	// Unfilled sections must not reappear as placeholder text.
	for id := range res.GDD {
		if _, ok := snap.GDD[id]; !ok {
			t.Errorf("unfilled section %s came back as %q", id, res.GDD[id])
		}
	}
}

func TestArchiveImportRoundTrip(t *testing.T) {
	snap := testSnapshot()
	snap.Version = document.SnapshotVersion
	snap.Chat = []document.ChatTurn{{Role: document.RoleUser, Content: "hi"}}

	data, err := Archive(snap)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	res, err := importer.Snapshot(data)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if res.Project.Name != snap.Project.Name {
		t.Errorf("name = %q", res.Project.Name)
	}
	if res.GDD[registry.SectionGameplay] != "Boost and drift." {
		t.Errorf("gameplay = %q", res.GDD[registry.SectionGameplay])
	}
}

func TestHTML(t *testing.T) {
	data, err := HTML(testSnapshot())
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Nebula Run - Game Design Document</title>",
		"page-break-before: always",
		"<h2>Game Overview</h2>",
		"Boost and drift.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestHTMLImportRoundTrip(t *testing.T) {
	snap := testSnapshot()
	data, err := HTML(snap)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	res, err := importer.HTML(data)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if res.Project.Name != "Nebula Run" {
		t.Errorf("name = %q", res.Project.Name)
	}
	if res.GDD[registry.SectionOverview] != "An anti-gravity racer." {
		t.Errorf("overview = %q", res.GDD[registry.SectionOverview])
	}
	if _, ok := res.GDD[registry.SectionStory]; ok {
		t.Error("unfilled section should stay unfilled after round trip")
	}
}

func TestDiagram(t *testing.T) {
	diagrams := []document.Diagram{
		{ID: "d1", Type: registry.DiagramFlowchart, Label: "Core Loop", Source: "flowchart TD\n  A --> B"},
	}

	name, data, err := Diagram(diagrams, "d1")
	if err != nil {
		t.Fatalf("Diagram: %v", err)
	}
	if name != "core-loop.mmd" {
		t.Errorf("filename = %q", name)
	}
	if string(data) != "flowchart TD\n  A --> B\n" {
		t.Errorf("source = %q", data)
	}

	_, _, err = Diagram(diagrams, "missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Nebula Run", "nebula-run.md"},
		{"  !!!  ", "gdd.md"},
		{"Späce Gáme", "spce-gme.md"},
	}
	for _, c := range cases {
		if got := Filename(c.in, "md"); got != c.want {
			t.Errorf("Filename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
