// Package report renders the human-readable companions of a shot list:
// the shot dossier, department notes and a printable PDF.
package report

import (
	"fmt"
	"strings"

	"shotlist/internal"
	"shotlist/internal/pipeline"
	"shotlist/internal/util"
)

const ShotBreak = "//---SHOT_BREAK---//"

const missing = "N/A"

// Notes bundles every text rendering produced for one document.
type Notes struct {
	Dossier        string
	Cinematography string
	SoundDesign    string
	Performance    string
	Characters     string
	Props          string
}

func Build(shots []*internal.NormalizedShot) Notes {
	return Notes{
		Dossier:        Dossier(shots),
		Cinematography: Cinematography(shots),
		SoundDesign:    SoundDesign(shots),
		Performance:    Performance(shots),
		Characters:     CharacterList(shots),
		Props:          PropList(shots),
	}
}

// field returns the stored value, "N/A" when the key is absent. A present
// but empty value stays empty.
func field(shot *internal.NormalizedShot, key string) string {
	if k, ok := shot.Find(key); ok {
		return shot.Value(k)
	}
	return missing
}

func labelled(shot *internal.NormalizedShot, keys ...string) string {
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("**%s:** %s", k, field(shot, k)))
	}
	return strings.Join(lines, "\n")
}

func Dossier(shots []*internal.NormalizedShot) string {
	parts := make([]string, 0, len(shots))
	for _, shot := range shots {
		parts = append(parts, strings.Join([]string{
			"**Scene:** " + field(shot, "SCENE"),
			"**Shot:** " + field(shot, "SHOT"),
			"**Description:** " + field(shot, "DESCRIPTION"),
			"**Characters:** " + field(shot, "CHARACTERS"),
			"**VFX:** " + field(shot, "VFX"),
		}, "\n"))
	}
	return strings.Join(parts, "\n\n"+ShotBreak+"\n\n")
}

func perShot(shots []*internal.NormalizedShot, keys ...string) string {
	parts := make([]string, 0, len(shots))
	for i, shot := range shots {
		parts = append(parts, fmt.Sprintf("//--- SHOT %s ---\n%s", pipeline.ShotID(shot, i), labelled(shot, keys...)))
	}
	return strings.Join(parts, "\n\n")
}

func Cinematography(shots []*internal.NormalizedShot) string {
	return perShot(shots, "SHOT_FRAMING", "Camera & Lens", "Movement & Angle")
}

func SoundDesign(shots []*internal.NormalizedShot) string {
	return perShot(shots, "Sound Design Cue", "SFX")
}

func Performance(shots []*internal.NormalizedShot) string {
	return perShot(shots, "PERFORMANCE", "DIALOGUE")
}

// CharacterList is the sorted union of resolved CHARACTERS values.
func CharacterList(shots []*internal.NormalizedShot) string {
	names := map[string]struct{}{}
	for _, shot := range shots {
		k, ok := shot.Find("CHARACTERS")
		if !ok || shot.Value(k) == "None" {
			continue
		}
		for _, name := range util.SplitList(shot.Value(k)) {
			names[name] = struct{}{}
		}
	}
	return strings.Join(util.SortedKeys(names), ", ")
}

// PropList is the sorted union of every per-character PROPS column, taken
// verbatim. The validated master list lives in the assets package.
func PropList(shots []*internal.NormalizedShot) string {
	props := map[string]struct{}{}
	for _, shot := range shots {
		for _, k := range shot.Keys() {
			if !strings.HasPrefix(k, "PROPS (") {
				continue
			}
			for _, p := range util.SplitList(shot.Value(k)) {
				props[p] = struct{}{}
			}
		}
	}
	return strings.Join(util.SortedKeys(props), ", ")
}
