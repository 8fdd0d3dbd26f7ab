package pipeline

import (
	"regexp"
	"sort"
	"strings"

	"shotlist/internal/util"
)

var reAction = regexp.MustCompile(`(?s)^\((.*?)\)\s*(.*)`)

// SanitizeDialogue rewrites a dialogue cell as "Speaker: (action) line".
// The second return value is the speaker label when it could not be
// resolved to a canonical character, empty otherwise.
func SanitizeDialogue(text string, m *Matcher) (string, string) {
	if strings.TrimSpace(text) == "" || util.IsNoneValue(text) {
		return "None", ""
	}
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))

	var speaker, action, unresolved string
	dialogue := text
	candidate := ""
	if i := strings.Index(text, ":"); i != -1 {
		candidate = text[:i]
		dialogue = strings.TrimSpace(text[i+1:])
	}
	if am := reAction.FindStringSubmatch(dialogue); am != nil {
		action, dialogue = am[1], am[2]
	}

	if candidate != "" {
		normalized := m.Normalize(candidate)
		if m.IsCanonical(normalized) {
			speaker = normalized
		} else {
			speaker = strings.TrimSpace(candidate)
			if m.Index().Len() > 0 {
				unresolved = speaker
			}
		}
	} else {
		speaker, action, dialogue = leadingSpeaker(text, m, action, dialogue)
	}

	var parts []string
	if speaker != "" {
		parts = append(parts, speaker+":")
	}
	if a := strings.TrimSpace(action); a != "" {
		parts = append(parts, "("+a+")")
	}
	if d := strings.TrimSpace(dialogue); d != "" {
		parts = append(parts, d)
	}
	if len(parts) == 0 {
		return text, unresolved
	}
	return strings.Join(parts, " "), unresolved
}

// leadingSpeaker detects a canonical full name, or its first word, at the
// start of a line that has no explicit "SPEAKER:" label.
func leadingSpeaker(text string, m *Matcher, action, dialogue string) (string, string, string) {
	for _, name := range m.Index().Names {
		variations := []string{name}
		if first, _, ok := strings.Cut(name, " "); ok {
			variations = append(variations, first)
		}
		sort.SliceStable(variations, func(i, j int) bool { return len(variations[i]) > len(variations[j]) })
		for _, v := range variations {
			if len(text) < len(v) || !strings.EqualFold(text[:len(v)], v) {
				continue
			}
			rest := strings.TrimSpace(text[len(v):])
			if am := reAction.FindStringSubmatch(rest); am != nil {
				return name, am[1], am[2]
			}
			return name, "", rest
		}
	}
	return "", action, dialogue
}
