package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"shotlist/internal"
	"shotlist/internal/catalog"
	"shotlist/internal/pipeline"
)

// outputSet maps output slot names to file paths. Empty paths are skipped.
type outputSet map[string]string

func (o outputSet) write(slot, content string) error {
	path := strings.TrimSpace(o[slot])
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// fail writes the same ERROR text into every requested output and returns
// err unchanged.
func (o outputSet) fail(err error) error {
	msg := pipeline.ErrorText(err)
	for slot := range o {
		_ = o.write(slot, msg)
	}
	return err
}

func readText(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(blob), nil
}

// loadDocument reads a breakdown report or a shot table. bible is only
// used for block-grammar input.
func (c *commandContext) loadDocument(input, biblePath string) (*pipeline.Document, error) {
	in, err := pipeline.ReadInputFile(input, "")
	if err != nil {
		return nil, err
	}
	if in.Table != nil {
		return pipeline.FromTable(in.Table, c.rules), nil
	}
	names, err := c.bibleIndex(biblePath)
	if err != nil {
		return nil, err
	}
	return pipeline.ProcessWithIndex(in.Text, names, pipeline.Options{
		Rules: c.rules,
		Match: pipeline.MatchOptionsFromConfig(c.config),
	})
}

// bibleIndex parses the bible file when given, else falls back to the names
// stored in the database.
func (c *commandContext) bibleIndex(path string) (*catalog.Index, error) {
	if strings.TrimSpace(path) != "" {
		in, err := pipeline.ReadInputFile(path, "")
		if err != nil {
			return nil, err
		}
		return catalog.ParseBible(in.Text), nil
	}
	db, err := c.openDB()
	if err != nil {
		return nil, err
	}
	return catalog.NewImportService(db).Index()
}

func printUnresolved(out io.Writer, issues []internal.Unresolved) {
	if len(issues) == 0 {
		return
	}
	rows := make([][]string, 0, len(issues))
	for _, u := range issues {
		rows = append(rows, []string{u.ShotID, u.Field, string(u.Kind), u.Value, strings.Join(u.Suggestions, ", ")})
	}
	fmt.Fprintln(out, renderTable([]string{"Shot", "Field", "Kind", "Value", "Suggestions"}, rows, nil))
}

func itoa(n int) string { return strconv.Itoa(n) }
