package db

import (
	"testing"

	"github.com/google/uuid"
)

func TestInit_CreatesSchema(t *testing.T) {
	tmpDir := t.TempDir()

	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	version, err := GetUserVersion(database)
	if err != nil {
		t.Fatalf("GetUserVersion failed: %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestInit_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	first, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("first Init failed: %v", err)
	}
	first.Close()

	second, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	second.Close()
}

func TestSaveLoadSnapshot(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	if _, found, err := LoadSnapshot(database, "client-1"); err != nil || found {
		t.Fatalf("LoadSnapshot before save = (found=%v, err=%v), want (false, nil)", found, err)
	}

	if err := SaveSnapshot(database, "client-1", `{"project":null,"gdd":{}}`); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	payload, found, err := LoadSnapshot(database, "client-1")
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if !found {
		t.Fatal("snapshot not found after save")
	}
	if payload != `{"project":null,"gdd":{}}` {
		t.Errorf("payload = %q", payload)
	}
}

func TestSaveSnapshot_OverwritesWholesale(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	if err := SaveSnapshot(database, "client-1", "first"); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := SaveSnapshot(database, "client-1", "second"); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	payload, found, err := LoadSnapshot(database, "client-1")
	if err != nil || !found {
		t.Fatalf("LoadSnapshot = (found=%v, err=%v)", found, err)
	}
	if payload != "second" {
		t.Errorf("payload = %q, want %q", payload, "second")
	}
}

func TestDeleteSnapshot(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer database.Close()

	if err := SaveSnapshot(database, "client-1", "data"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := DeleteSnapshot(database, "client-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found, _ := LoadSnapshot(database, "client-1"); found {
		t.Error("snapshot still present after delete")
	}
}

func TestClientID_StableAcrossCalls(t *testing.T) {
	tmpDir := t.TempDir()

	first, err := ClientID(tmpDir)
	if err != nil {
		t.Fatalf("first ClientID failed: %v", err)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("ClientID %q is not a UUID: %v", first, err)
	}

	second, err := ClientID(tmpDir)
	if err != nil {
		t.Fatalf("second ClientID failed: %v", err)
	}
	if first != second {
		t.Errorf("ClientID changed between calls: %q vs %q", first, second)
	}
}
