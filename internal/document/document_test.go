package document

import (
	"strings"
	"testing"
)

func TestJoinGenres(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want string
	}{
		{"empty", nil, "Unspecified"},
		{"whitespace only", []string{" ", ""}, "Unspecified"},
		{"single", []string{"Roguelike"}, "Roguelike"},
		{"multiple", []string{"Action", "RPG"}, "Action, RPG"},
		{"trimmed", []string{" Action ", "RPG"}, "Action, RPG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinGenres(tt.tags); got != tt.want {
				t.Errorf("JoinGenres(%v) = %q, want %q", tt.tags, got, tt.want)
			}
		})
	}
}

func TestOverviewSeed(t *testing.T) {
	seed := OverviewSeed("Nebula Run", []string{"PC"}, "A high-speed space runner.")

	if !strings.HasPrefix(seed, "# Nebula Run\n") {
		t.Errorf("seed should open with '# Nebula Run' heading, got %q", seed)
	}
	if !strings.Contains(seed, "**Platforms:** PC") {
		t.Errorf("seed missing platforms line: %q", seed)
	}
	if !strings.Contains(seed, "A high-speed space runner.") {
		t.Errorf("seed missing description: %q", seed)
	}
}

func TestOverviewSeed_NoPlatformsNoDescription(t *testing.T) {
	seed := OverviewSeed("Nebula Run", nil, "  ")

	if !strings.Contains(seed, "**Platforms:** TBD") {
		t.Errorf("seed should list TBD platforms, got %q", seed)
	}
	if strings.Contains(seed, "  ") && strings.HasSuffix(seed, "  \n") {
		t.Errorf("blank description should be omitted, got %q", seed)
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"under budget", "short", 10, "short"},
		{"exact budget", "12345", 5, "12345"},
		{"over budget", "1234567890", 5, "12345..."},
		{"multibyte safe", "héllo wörld", 4, "héll..."},
		{"zero budget", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clip(tt.text, tt.max); got != tt.want {
				t.Errorf("Clip(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
		})
	}
}

func TestFirstContentLine(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want string
	}{
		{"skips headings", "# Title\n\nThe real first line.\nSecond line.", "The real first line."},
		{"skips blanks", "\n\n  \nContent here", "Content here"},
		{"all headings", "# A\n## B", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstContentLine(tt.md); got != tt.want {
				t.Errorf("FirstContentLine = %q, want %q", got, tt.want)
			}
		})
	}
}
