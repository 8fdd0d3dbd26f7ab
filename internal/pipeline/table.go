package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"shotlist/internal"
)

// PreferredColumns lead every table header, in this order, when present.
var PreferredColumns = []string{
	"SCENE", "LOCATION", "SHOT", "SHOT_TYPE", "SHOT_FRAMING", "Camera & Lens", "DESCRIPTION",
	"Movement & Angle", "CHARACTERS", "VFX", "Sound Design Cue", "SFX", "PERFORMANCE", "DIALOGUE",
	"Director's Rationale",
}

// Header is the union of all shot keys: preferred columns first, then the
// rest sorted.
func Header(shots []*internal.NormalizedShot) []string {
	present := map[string]struct{}{}
	for _, s := range shots {
		for _, k := range s.Keys() {
			present[k] = struct{}{}
		}
	}
	header := make([]string, 0, len(present))
	for _, k := range PreferredColumns {
		if _, ok := present[k]; ok {
			header = append(header, k)
			delete(present, k)
		}
	}
	rest := make([]string, 0, len(present))
	for k := range present {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(header, rest...)
}

// Rows lays shots out against header. Missing keys are empty strings.
func Rows(header []string, shots []*internal.NormalizedShot) [][]string {
	out := make([][]string, 0, len(shots))
	for _, s := range shots {
		row := make([]string, len(header))
		for i, h := range header {
			row[i] = s.Value(h)
		}
		out = append(out, row)
	}
	return out
}

// AssembleCSV renders the table with every field quoted and CRLF line ends.
func AssembleCSV(shots []*internal.NormalizedShot) string {
	header := Header(shots)
	var b strings.Builder
	writeRecord(&b, header)
	for _, row := range Rows(header, shots) {
		writeRecord(&b, row)
	}
	return b.String()
}

func writeRecord(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
}

// ReadTable parses a table produced by AssembleCSV (or any header-first CSV)
// back into shots. Rows whose cells are all blank are skipped.
func ReadTable(text string) ([]*internal.NormalizedShot, error) {
	if err := CheckInput(text); err != nil {
		return nil, err
	}
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read table header: %w", err)
	}
	var shots []*internal.NormalizedShot
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read table row: %w", err)
		}
		if shot := rowToShot(header, rec); shot != nil {
			shots = append(shots, shot)
		}
	}
	if len(shots) == 0 {
		return nil, ErrNoRows
	}
	return shots, nil
}

func rowToShot(header, cells []string) *internal.NormalizedShot {
	blank := true
	shot := internal.NewNormalizedShot()
	for i, h := range header {
		v := ""
		if i < len(cells) {
			v = cells[i]
		}
		if strings.TrimSpace(v) != "" {
			blank = false
		}
		shot.Set(h, v)
	}
	if blank {
		return nil
	}
	return shot
}
