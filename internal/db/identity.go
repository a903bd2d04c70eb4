package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ClientID returns the opaque client identity keying the snapshot row.
// It is minted as a UUID on first run and kept in baseDir/identity.
func ClientID(baseDir string) (string, error) {
	path := filepath.Join(baseDir, "identity")

	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if _, parseErr := uuid.Parse(id); parseErr == nil {
			return id, nil
		}
		// Corrupt identity file: mint a fresh one below.
	}

	id := uuid.NewString()
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create base directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0600); err != nil {
		return "", fmt.Errorf("failed to write identity file: %w", err)
	}
	return id, nil
}
