package catalog

import (
	"path/filepath"
	"testing"

	"shotlist/internal/storage"
)

func TestImportServiceAccumulatesBibles(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	svc := NewImportService(db)
	if _, added, err := svc.ImportBible("NAME: Alice Hart\nNAME: Bob Stone\n", "ep1-bible.txt"); err != nil || added != 2 {
		t.Fatalf("first import added=%d err=%v", added, err)
	}
	if _, added, err := svc.ImportBible("NAME: BOB STONE\nNAME: Cara Lind\n", "ep2-bible.txt"); err != nil || added != 1 {
		t.Fatalf("second import added=%d err=%v", added, err)
	}
	if _, _, err := svc.ImportBible("no names here", "notes.txt"); err == nil {
		t.Fatalf("expected error for bible without names")
	}

	idx, err := svc.Index()
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if idx.Len() != 3 || idx.Names[1] != "Bob Stone" || idx.Names[2] != "Cara Lind" {
		t.Fatalf("names=%v", idx.Names)
	}
	if v, _ := db.GetMetadata("characters.last_source"); v == nil || *v != "ep2-bible.txt" {
		t.Fatalf("last source=%v", v)
	}

	if err := svc.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	idx, _ = svc.Index()
	if idx.Len() != 0 {
		t.Fatalf("reset left %v", idx.Names)
	}
}
