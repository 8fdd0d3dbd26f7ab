package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shotlist/internal"
	"shotlist/internal/storage"
)

const sampleReport = `//---SHOT_START---//
SCENE: 1
SHOT: 1A
LOCATION: INT. LAB - NIGHT
CHARACTERS: she
PROPS (she): Torch
//---SHOT_END---//
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIWithDB(t, filepath.Join(t.TempDir(), "shotlist.db"), args...)
}

func runCLIWithDB(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("RULES_PATH", "")
	t.Setenv("LLM_PROVIDER", "mock")

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseWritesAllOutputs(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "report.txt", sampleReport)
	bible := writeFile(t, dir, "bible.txt", "NAME: Mara\n")
	outDir := filepath.Join(dir, "out")

	if _, err := runCLI(t, "parse", "--input", input, "--bible", bible, "--out-dir", outDir); err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, name := range parseFileNames {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	csv, err := os.ReadFile(filepath.Join(outDir, "shots.csv"))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if !strings.Contains(string(csv), "Torch") {
		t.Fatalf("csv missing props: %s", csv)
	}
}

func TestParseFailureWritesErrorText(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "empty.txt", "   \n")
	bible := writeFile(t, dir, "bible.txt", "NAME: Mara\n")
	outDir := filepath.Join(dir, "out")

	if _, err := runCLI(t, "parse", "--input", input, "--bible", bible, "--out-dir", outDir); err == nil {
		t.Fatalf("expected error for empty input")
	}
	blob, err := os.ReadFile(filepath.Join(outDir, "props.txt"))
	if err != nil {
		t.Fatalf("read props: %v", err)
	}
	if !strings.HasPrefix(string(blob), "ERROR") {
		t.Fatalf("props=%q", blob)
	}
}

func TestParseRequiresInput(t *testing.T) {
	if _, err := runCLI(t, "parse"); err == nil || !strings.Contains(err.Error(), "--input") {
		t.Fatalf("err=%v", err)
	}
}

func TestQCDeterministicKeepsShots(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "report.txt", sampleReport)

	out, err := runCLI(t, "qc", "--input", input, "--deterministic")
	if err != nil {
		t.Fatalf("qc: %v", err)
	}
	if !strings.Contains(out, "//---SHOT_START---//") || !strings.Contains(out, "SHOT: 1A") {
		t.Fatalf("out=%q", out)
	}
}

func TestUnresolvedListsStoredIssues(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "shotlist.db")
	db, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	doc, err := db.UpsertDocument("inbox", "ep1.txt", "breakdown", "2026-01-02T00:00:00Z", "h1", "", "processed")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	clean, err := db.UpsertDocument("inbox", "ep2.txt", "breakdown", "2026-01-03T00:00:00Z", "h2", "", "processed")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	err = db.InsertUnresolved(doc.ID, []internal.Unresolved{{
		ShotIndex: 0, ShotID: "1A", Field: "CHARACTERS",
		Kind: internal.UnresolvedPronoun, Value: "she", Suggestions: []string{"Mara", "Jonathan Hale"},
	}})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	db.Close()

	out, err := runCLIWithDB(t, dbPath, "unresolved", "--id", itoa(doc.ID))
	if err != nil {
		t.Fatalf("unresolved: %v", err)
	}
	for _, want := range []string{"1A", "ambiguous_pronoun", "she", "Mara, Jonathan Hale"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}

	out, err = runCLIWithDB(t, dbPath, "unresolved", "--id", itoa(clean.ID))
	if err != nil || !strings.Contains(out, "No unresolved references in ep2.txt") {
		t.Fatalf("out=%q err=%v", out, err)
	}

	if _, err := runCLIWithDB(t, dbPath, "unresolved", "--id", "999"); err == nil {
		t.Fatalf("expected error for unknown document")
	}
}
