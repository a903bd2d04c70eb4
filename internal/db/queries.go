package db

import (
	"database/sql"
	"time"
)

// SaveSnapshot overwrites the snapshot payload for clientID wholesale.
func SaveSnapshot(database *sql.DB, clientID, payload string) error {
	query := `
		INSERT INTO snapshots (client_id, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`
	_, err := database.Exec(query, clientID, payload, time.Now().Unix())
	return err
}

// LoadSnapshot returns the snapshot payload for clientID.
// The second return value is false when no snapshot exists.
func LoadSnapshot(database *sql.DB, clientID string) (string, bool, error) {
	var payload string
	err := database.QueryRow(
		"SELECT payload FROM snapshots WHERE client_id = ?", clientID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return payload, true, nil
}

// DeleteSnapshot removes the snapshot for clientID, if any.
func DeleteSnapshot(database *sql.DB, clientID string) error {
	_, err := database.Exec("DELETE FROM snapshots WHERE client_id = ?", clientID)
	return err
}
