package pipeline

import (
	"regexp"
	"strings"

	"shotlist/internal"
	"shotlist/internal/log"
	"shotlist/internal/util"
)

const (
	ShotStart = "//---SHOT_START---//"
	ShotEnd   = "//---SHOT_END---//"
)

var reKeyLine = regexp.MustCompile(`^\s*([^:]+?):\s*(.*)$`)

// Tokenize splits a breakdown report into deduplicated shot blocks.
func Tokenize(raw string) ([]internal.ShotBlock, error) {
	if err := CheckInput(raw); err != nil {
		return nil, err
	}
	chunks := splitBlocks(raw)
	if chunks == nil {
		return nil, ErrNoShotMarker
	}

	logger := log.WithComponent("tokenizer")
	seen := map[string]struct{}{}
	var out []internal.ShotBlock
	for i, chunk := range chunks {
		key := util.CollapseSpaces(chunk)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			logger.Debug("duplicate block dropped", "position", i)
			continue
		}
		seen[key] = struct{}{}

		fields := parseFields(chunk)
		if len(fields) == 0 {
			logger.Debug("block without fields dropped", "position", i)
			continue
		}
		out = append(out, internal.ShotBlock{Index: len(out), Fields: fields})
	}
	if len(out) == 0 {
		return nil, ErrNoShotData
	}
	return out, nil
}

// splitBlocks returns the text following each start marker up to the first
// end marker, the next start marker or the end of input. nil means the input
// has no start marker at all.
func splitBlocks(raw string) []string {
	parts := strings.Split(raw, ShotStart)
	if len(parts) < 2 {
		return nil
	}
	chunks := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		if i := strings.Index(part, ShotEnd); i != -1 {
			part = part[:i]
		}
		chunks = append(chunks, part)
	}
	return chunks
}

func parseFields(block string) []internal.Field {
	var fields []internal.Field
	var valueLines []string
	current := ""
	flush := func() {
		if current != "" {
			fields = append(fields, internal.Field{Key: current, Value: strings.Join(valueLines, " ")})
		}
	}
	for _, line := range util.SplitLines(block) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := reKeyLine.FindStringSubmatch(line); m != nil {
			flush()
			current = strings.TrimSpace(m[1])
			valueLines = valueLines[:0]
			if v := strings.TrimSpace(m[2]); v != "" {
				valueLines = append(valueLines, v)
			}
			continue
		}
		if current != "" {
			valueLines = append(valueLines, line)
		}
	}
	flush()
	return fields
}

// FormatBlocks renders shots back into the block grammar, one field per line.
func FormatBlocks(shots []*internal.NormalizedShot) string {
	var b strings.Builder
	for _, shot := range shots {
		b.WriteString(ShotStart)
		b.WriteString("\n")
		for _, key := range shot.Keys() {
			b.WriteString(key)
			b.WriteString(": ")
			b.WriteString(util.CollapseSpaces(shot.Value(key)))
			b.WriteString("\n")
		}
		b.WriteString(ShotEnd)
		b.WriteString("\n\n")
	}
	return b.String()
}
