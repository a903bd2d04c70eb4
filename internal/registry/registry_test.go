package registry

import "testing"

func TestAll_FixedCatalog(t *testing.T) {
	all := All()
	if len(all) != 10 {
		t.Fatalf("len(All()) = %d, want 10", len(all))
	}
	if all[0].ID != SectionOverview {
		t.Errorf("first section = %q, want %q", all[0].ID, SectionOverview)
	}
	if all[len(all)-1].ID != SectionTimeline {
		t.Errorf("last section = %q, want %q", all[len(all)-1].ID, SectionTimeline)
	}

	seen := make(map[SectionID]bool)
	for _, def := range all {
		if seen[def.ID] {
			t.Errorf("duplicate section id %q", def.ID)
		}
		seen[def.ID] = true
		if def.Title == "" {
			t.Errorf("section %q has empty title", def.ID)
		}
		if def.Guidance == "" {
			t.Errorf("section %q has empty guidance", def.ID)
		}
	}
}

func TestGet(t *testing.T) {
	def, ok := Get(SectionGameplay)
	if !ok {
		t.Fatal("Get(gameplay) not found")
	}
	if def.Title != "Gameplay Mechanics" {
		t.Errorf("Title = %q, want %q", def.Title, "Gameplay Mechanics")
	}

	if _, ok := Get("inventory"); ok {
		t.Error("Get(inventory) should not match")
	}
}

func TestOrder(t *testing.T) {
	if Order(SectionOverview) != 0 {
		t.Errorf("Order(overview) = %d, want 0", Order(SectionOverview))
	}
	if Order(SectionTimeline) != 9 {
		t.Errorf("Order(timeline) = %d, want 9", Order(SectionTimeline))
	}
	if Order("nope") != 10 {
		t.Errorf("Order(unknown) = %d, want 10", Order("nope"))
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Gameplay Mechanics", "gameplay mechanics"},
		{"trailing emoji", "Gameplay Mechanics 🎮", "gameplay mechanics"},
		{"leading emoji and numbering", "🎮 2. Gameplay Mechanics", "2 gameplay mechanics"},
		{"ampersand kept", "Story & Narrative", "story & narrative"},
		{"extra whitespace", "  Game   Overview\t", "game overview"},
		{"punctuation stripped", "User-Interface!", "userinterface"},
		{"turkish letters kept", "Hikâye & Anlatı", "hikâye & anlatı"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.input); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMatchTitle(t *testing.T) {
	tests := []struct {
		heading string
		wantID  SectionID
		wantOK  bool
	}{
		{"Gameplay Mechanics", SectionGameplay, true},
		{"Gameplay Mechanics 🎮", SectionGameplay, true},
		{"GAME OVERVIEW", SectionOverview, true},
		{"Story & Narrative", SectionStory, true},
		{"World & Level Design", SectionWorld, true},
		// Resemblance is not a match: exact normalized equality only.
		{"Gameplay", "", false},
		{"Advanced Gameplay Mechanics", "", false},
		{"Inventory", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.heading, func(t *testing.T) {
			id, ok := MatchTitle(tt.heading)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("MatchTitle(%q) = (%q, %v), want (%q, %v)",
					tt.heading, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestSynthesizeID(t *testing.T) {
	tests := []struct {
		heading string
		want    SectionID
	}{
		{"Monetization Plan", "monetization-plan"},
		{"Risks & Mitigations", "risks-and-mitigations"},
		{"  Post  Launch  ", "post-launch"},
	}

	for _, tt := range tests {
		if got := SynthesizeID(tt.heading); got != tt.want {
			t.Errorf("SynthesizeID(%q) = %q, want %q", tt.heading, got, tt.want)
		}
	}
}

func TestDiagramTemplates(t *testing.T) {
	for _, typ := range DiagramTypes() {
		if !ValidDiagramType(typ) {
			t.Errorf("ValidDiagramType(%q) = false", typ)
		}
		tmpl, ok := DiagramInstruction(typ)
		if !ok || tmpl == "" {
			t.Errorf("DiagramInstruction(%q) missing", typ)
		}
	}

	if ValidDiagramType("pie") {
		t.Error("ValidDiagramType(pie) = true, want false")
	}
}
