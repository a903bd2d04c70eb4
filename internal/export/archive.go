package export

import (
	"encoding/json"

	"github.com/berkgokcam/gddstudio/internal/document"
	"github.com/berkgokcam/gddstudio/internal/errors"
)

// Archive serializes the full snapshot, chat log included, as indented
// JSON. This is the lossless format: importing it restores everything
// the markdown and HTML exports cannot carry.
func Archive(snap document.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return append(data, '\n'), nil
}
