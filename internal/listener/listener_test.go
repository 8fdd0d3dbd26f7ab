package listener

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"shotlist/internal/config"
	"shotlist/internal/connectors"
	"shotlist/internal/pipeline"
	"shotlist/internal/storage"
)

func TestRunCycleExports(t *testing.T) {
	root := t.TempDir()
	cfg := config.Config{
		RawDir:              filepath.Join(root, "raw"),
		OutputDir:           filepath.Join(root, "out"),
		ListenerBatch:       10,
		ListenerAutoExport:  true,
		NameMaxEditDistance: 3,
		NamePrefixMatch:     true,
	}
	inbox := filepath.Join(root, "inbox")
	if err := os.MkdirAll(inbox, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	report := "//---SHOT_START---//\nSCENE: 1\nSHOT: 1A\nLOCATION: INT. HALL - DAY\nCHARACTERS: Tom\n//---SHOT_END---//\n"
	if err := os.WriteFile(filepath.Join(inbox, "ep 1.txt"), []byte(report), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	db, err := storage.Open(filepath.Join(root, "shotlist.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	processor := pipeline.NewProcessingService(db, cfg, nil)
	svc := NewService(db, cfg, connectors.NewDirSource(inbox), processor)
	if err := svc.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle: %v", err)
	}

	doc, err := db.GetDocumentByName("inbox", "ep 1.txt")
	if err != nil || doc == nil {
		t.Fatalf("doc=%v err=%v", doc, err)
	}
	if doc.Status != pipeline.StatusExported {
		t.Fatalf("status=%s", doc.Status)
	}
	for _, ext := range []string{".csv", ".xlsx"} {
		path := filepath.Join(cfg.OutputDir, "listener", "1_ep_1"+ext)
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing export %s: %v", path, err)
		}
	}

	if err := svc.RunCycle(context.Background()); err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	runs, _ := db.ListRuns(10)
	if len(runs) != 1 {
		t.Fatalf("unchanged document processed again: runs=%d", len(runs))
	}
}

func TestSanitizeName(t *testing.T) {
	if got := sanitizeName("ep 1/cut?.pdf"); got != "ep_1_cut_" {
		t.Fatalf("got %q", got)
	}
}
