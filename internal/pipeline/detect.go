package pipeline

import (
	"regexp"
	"strings"

	"shotlist/internal"
)

type DetectResult struct {
	Kind   internal.DocumentKind
	Score  float64
	Reason string
}

var (
	reBibleLine   = regexp.MustCompile(`(?im)^\s*NAME:\s*\S`)
	reSceneLine   = regexp.MustCompile(`(?im)^\W*(?:\d+\.\s*)?(?:INT|EXT)\.`)
	reSpeakerLine = regexp.MustCompile(`(?m)^\s*[A-Z][A-Z .'\-]{1,}(?:\s*\([^)]*\))?\s*$`)
)

// DetectDocumentKind guesses what an inbox document holds so the processing
// service knows which stage to run.
func DetectDocumentKind(name, text string) DetectResult {
	lowerName := strings.ToLower(name)
	if strings.HasSuffix(lowerName, ".csv") || strings.HasSuffix(lowerName, ".xlsx") {
		return DetectResult{Kind: internal.KindTable, Score: 1, Reason: "extension"}
	}
	if IsErrorText(text) {
		return DetectResult{Kind: internal.KindUnknown, Score: 0, Reason: "error_text"}
	}

	starts := strings.Count(text, ShotStart)
	if starts > 0 {
		score := 0.6 + 0.1*float64(min(starts, 4))
		return DetectResult{Kind: internal.KindBreakdown, Score: score, Reason: "shot_markers"}
	}

	names := len(reBibleLine.FindAllStringIndex(text, -1))
	if names > 0 && (strings.Contains(text, bibleBreakMarker) || names >= 2 || strings.Contains(lowerName, "bible")) {
		return DetectResult{Kind: internal.KindBible, Score: 0.8, Reason: "name_lines"}
	}

	scenes := len(reSceneLine.FindAllStringIndex(text, -1))
	if scenes > 0 {
		score := 0.5
		if len(reSpeakerLine.FindAllStringIndex(text, -1)) > 0 {
			score += 0.3
		}
		return DetectResult{Kind: internal.KindScreenplay, Score: score, Reason: "scene_headings"}
	}

	return DetectResult{Kind: internal.KindUnknown, Score: 0, Reason: "rules_negative"}
}

const bibleBreakMarker = "//---CHARACTER_BREAK---//"
