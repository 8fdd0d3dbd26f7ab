// Package breakdown turns a screenplay into a raw shot breakdown report by
// asking the LLM for one scene at a time and post-processing each answer.
package breakdown

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shotlist/internal/pipeline"
	"shotlist/internal/rules"
	"shotlist/internal/util"
)

var ErrNoScenes = errors.New("could not split screenplay into scenes")

var (
	reSceneHeading = regexp.MustCompile(`(?im)^\W*(?:\d+\.\s*)?(?:INT|EXT)\..*$`)
	reDialogueHead = regexp.MustCompile(`^\s*([A-Z\s().']{2,})\s*$`)
	reSlugline     = regexp.MustCompile(`^\s*(INT|EXT)\.`)
	reHeadSuffix   = regexp.MustCompile(`\s*\((V\.O\.|CONT'D)\)\s*$`)
	reShotLetter   = regexp.MustCompile(`(?im)^([ \t]*)SHOT:[ \t]*([A-Z])\b`)
	reAssetLine    = regexp.MustCompile(`(?i)^(PROPS|COSTUMES)\s*\(([^)]+)\):(.*)$`)
)

// SplitScenes cuts the screenplay at every INT./EXT. heading. Text before
// the first heading is dropped.
func SplitScenes(screenplay string) ([]string, error) {
	anchors := reSceneHeading.FindAllStringIndex(screenplay, -1)
	if len(anchors) == 0 {
		return nil, ErrNoScenes
	}
	scenes := make([]string, 0, len(anchors))
	for i, a := range anchors {
		end := len(screenplay)
		if i+1 < len(anchors) {
			end = anchors[i+1][0]
		}
		scenes = append(scenes, strings.TrimSpace(screenplay[a[0]:end]))
	}
	return scenes, nil
}

// SceneCharacters returns the sorted speaker names found in dialogue
// headings, with (V.O.) and (CONT'D) removed.
func SceneCharacters(scene string) []string {
	found := map[string]struct{}{}
	for _, line := range util.SplitLines(scene) {
		m := reDialogueHead.FindStringSubmatch(line)
		if m == nil || reSlugline.MatchString(line) {
			continue
		}
		name := strings.TrimSpace(reHeadSuffix.ReplaceAllString(strings.TrimSpace(m[1]), ""))
		if name != "" {
			found[name] = struct{}{}
		}
	}
	return util.SortedKeys(found)
}

// ResolveContextualPronouns replaces a CHARACTERS value that is only a
// pronoun with the scene's single speaker. Scenes with zero or several
// speakers are left untouched.
func ResolveContextualPronouns(breakdown, scene string, r *rules.Rules) string {
	speakers := SceneCharacters(scene)
	if len(speakers) != 1 {
		return breakdown
	}
	lines := util.SplitLines(breakdown)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToUpper(trimmed), "CHARACTERS:") {
			continue
		}
		key, value, _ := strings.Cut(trimmed, ":")
		if r.IsContextPronoun(value) {
			lines[i] = key + ": " + speakers[0]
		}
	}
	return strings.Join(lines, "\n")
}

// NormalizeNames expands first or last names in CHARACTERS lines and
// per-character asset keys to the title-cased full name of a screenplay
// speaker.
func NormalizeNames(breakdown, screenplay string) string {
	speakers := SceneCharacters(screenplay)
	if len(speakers) == 0 {
		return breakdown
	}
	title := cases.Title(language.Und)
	variations := map[string]string{}
	for _, full := range speakers {
		full = title.String(full)
		parts := strings.Fields(full)
		if len(parts) == 0 {
			continue
		}
		variations[parts[0]] = full
		if len(parts) > 1 {
			variations[parts[len(parts)-1]] = full
		}
	}
	expand := func(name string) string {
		if full, ok := variations[name]; ok {
			return full
		}
		return name
	}

	lines := util.SplitLines(breakdown)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToUpper(trimmed), "CHARACTERS:") {
			key, value, _ := strings.Cut(trimmed, ":")
			names := strings.Split(value, ",")
			for j := range names {
				names[j] = expand(strings.TrimSpace(names[j]))
			}
			lines[i] = key + ": " + strings.Join(names, ", ")
			continue
		}
		if m := reAssetLine.FindStringSubmatch(trimmed); m != nil {
			lines[i] = fmt.Sprintf("%s (%s):%s", strings.ToUpper(m[1]), expand(strings.TrimSpace(m[2])), m[3])
		}
	}
	return strings.Join(lines, "\n")
}

// RenumberShots prefixes each shot letter with the scene number and adds a
// SCENE line, so "SHOT: B" in scene 3 becomes "SCENE: 3\nSHOT: 3B".
func RenumberShots(breakdown string, sceneNum int) string {
	if !strings.HasPrefix(breakdown, pipeline.ShotStart) {
		breakdown = pipeline.ShotStart + "\n" + breakdown
	}
	return reShotLetter.ReplaceAllStringFunc(breakdown, func(m string) string {
		sub := reShotLetter.FindStringSubmatch(m)
		return fmt.Sprintf("%sSCENE: %d\n%sSHOT: %d%s", sub[1], sceneNum, sub[1], sceneNum, strings.ToUpper(sub[2]))
	})
}
