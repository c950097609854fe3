package kvstore

import (
	"path/filepath"
	"testing"
)

func TestSQLitePutGetDelete(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_kv.db")

	s, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	defer s.Close()

	if _, ok, err := s.Get("saved_cities"); err != nil || ok {
		t.Fatalf("missing key: got ok=%v err=%v, want absent", ok, err)
	}

	if err := s.Put("saved_cities", `[{"name":"Oslo"}]`); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put("saved_cities", `[{"name":"Bergen"}]`); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, ok, err := s.Get("saved_cities")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if got != `[{"name":"Bergen"}]` {
		t.Fatalf("Get returned %q", got)
	}

	if err := s.Delete("saved_cities"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := s.Get("saved_cities"); ok {
		t.Fatal("key still present after Delete")
	}

	// Deleting an absent key is not an error.
	if err := s.Delete("never_written"); err != nil {
		t.Fatalf("Delete of absent key failed: %v", err)
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_kv.db")

	s, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	if err := s.Put("selected_city", `{"name":"Tokyo"}`); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.Get("selected_city")
	if err != nil || !ok {
		t.Fatalf("Get after reopen: ok=%v err=%v", ok, err)
	}
	if got != `{"name":"Tokyo"}` {
		t.Fatalf("Get after reopen returned %q", got)
	}
}
