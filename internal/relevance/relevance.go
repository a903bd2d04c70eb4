// Package relevance maps a free-text chat message to the document sections
// it is likely about. This is a bag-of-keywords heuristic, not NLP: false
// positives and negatives are acceptable, and the chat context builder
// degrades gracefully on an empty result.
package relevance

import (
	"sort"
	"strings"

	"github.com/berkgokcam/gddstudio/internal/registry"
)

// sectionKeywords maps each registry section to its domain terms, English
// first, Turkish equivalents after. Matching is case-insensitive substring
// containment.
var sectionKeywords = map[registry.SectionID][]string{
	registry.SectionOverview: {
		"overview", "concept", "pitch", "audience", "vision", "summary of the game",
		"genel bakış", "konsept", "hedef kitle", "vizyon",
	},
	registry.SectionGameplay: {
		"gameplay", "mechanic", "core loop", "control", "combat", "progression",
		"difficulty", "balance", "player verb",
		"oynanış", "mekanik", "kontrol", "zorluk", "denge", "ilerleme",
	},
	registry.SectionStory: {
		"story", "narrative", "plot", "lore", "dialogue", "quest", "ending",
		"hikaye", "hikâye", "anlatı", "senaryo", "diyalog", "görev",
	},
	registry.SectionCharacters: {
		"character", "protagonist", "antagonist", "hero", "villain", "npc", "boss",
		"karakter", "kahraman", "düşman", "kötü adam",
	},
	registry.SectionWorld: {
		"world", "level", "map", "environment", "biome", "zone", "layout",
		"dünya", "bölüm", "harita", "çevre", "seviye tasarım",
	},
	registry.SectionArt: {
		"art", "visual", "style", "palette", "animation", "shader", "aesthetic",
		"sanat", "görsel", "stil", "palet", "animasyon", "estetik",
	},
	registry.SectionAudio: {
		"audio", "music", "sound", "sfx", "soundtrack", "voice",
		"ses", "müzik", "ses efekt", "seslendirme",
	},
	registry.SectionUI: {
		"ui", "interface", "hud", "menu", "onboarding", "accessibility", "screen",
		"arayüz", "menü", "ekran", "erişilebilirlik",
	},
	registry.SectionTechnical: {
		"technical", "engine", "performance", "platform", "hardware", "networking",
		"middleware", "fps",
		"teknik", "motor", "performans", "donanım", "ağ",
	},
	registry.SectionTimeline: {
		"timeline", "schedule", "milestone", "deadline", "roadmap", "release date",
		"launch",
		"zaman çizelgesi", "takvim", "kilometre taşı", "yol haritası", "çıkış tarihi",
	},
}

// broadKeywords short-circuit detection: a message about the document as a
// whole is answered with every filled section in document order.
var broadKeywords = []string{
	"all sections", "whole document", "entire document", "everything",
	"summary", "summarize", "overall", "review", "gaps", "missing",
	"what's left", "complete",
	"tüm", "hepsi", "özet", "genel değerlendirme", "eksik",
}

// Detect maps message to an ordered list of section ids, most relevant
// first. filled is the current filled-section list in registry order; it is
// returned whole on a broad-question match. A message with no known
// keyword yields nil.
func Detect(message string, filled []registry.SectionID) []registry.SectionID {
	lower := strings.ToLower(message)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	for _, kw := range broadKeywords {
		if strings.Contains(lower, kw) {
			out := make([]registry.SectionID, len(filled))
			copy(out, filled)
			return out
		}
	}

	type scored struct {
		id    registry.SectionID
		score int
	}
	var hits []scored
	for _, def := range registry.All() {
		score := 0
		for _, kw := range sectionKeywords[def.ID] {
			score += strings.Count(lower, kw)
		}
		if score > 0 {
			hits = append(hits, scored{id: def.ID, score: score})
		}
	}
	if len(hits) == 0 {
		return nil
	}

	// Descending score; ties keep registry order (hits was built in it).
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	out := make([]registry.SectionID, len(hits))
	for i, h := range hits {
		out[i] = h.id
	}
	return out
}

// Keywords returns the keyword set for a section, for introspection.
func Keywords(id registry.SectionID) []string {
	return sectionKeywords[id]
}
