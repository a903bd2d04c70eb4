package importer

import (
	"encoding/json"
	"time"

	"github.com/berkgokcam/gddstudio/internal/document"
	"github.com/berkgokcam/gddstudio/internal/errors"
	"github.com/berkgokcam/gddstudio/internal/registry"
)

// Snapshot parses a structured snapshot (or full export archive). The
// payload is invalid when the top-level `project` and `gdd` fields are
// both absent.
func Snapshot(data []byte) (*Result, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewInvalidImport("not a JSON document")
	}

	_, hasProject := raw["project"]
	_, hasGDD := raw["gdd"]
	if !hasProject && !hasGDD {
		return nil, errors.NewInvalidImport("missing both project and gdd fields")
	}

	var snap document.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.NewInvalidImport("malformed snapshot: " + err.Error())
	}

	project := snap.Project
	if project == nil {
		now := time.Now().Unix()
		project = &document.Project{
			Name:      "Imported Project",
			Genre:     document.GenreUnspecified,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	if project.Name == "" {
		return nil, errors.NewInvalidImport("project name is empty")
	}

	gdd := make(map[registry.SectionID]string, len(snap.GDD))
	for id, content := range snap.GDD {
		if content != "" {
			gdd[id] = content
		}
	}

	return &Result{Project: project, GDD: gdd}, nil
}
