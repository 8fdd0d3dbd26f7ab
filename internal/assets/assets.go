// Package assets builds the master production lists (characters, props,
// costumes, set dressing, effects) from normalized shot rows.
package assets

import (
	"sort"
	"strconv"
	"strings"

	"shotlist/internal"
	"shotlist/internal/pipeline"
	"shotlist/internal/rules"
	"shotlist/internal/util"
)

const (
	Characters  = "CHARACTERS"
	Props       = "PROPS"
	Costumes    = "COSTUMES"
	SetDressing = "SET_DRESSING"
	VFX         = "VFX"
	SFX         = "SFX"
)

// Categories lists every master list in display order.
var Categories = []string{Characters, Props, SetDressing, Costumes, VFX, SFX}

var rowCategories = map[string]bool{Characters: true, Props: true, Costumes: true, VFX: true, SFX: true}

type MasterAssets struct {
	items map[string]map[string]struct{}
	Sets  map[string]*internal.MasterSet
	Shots int
}

// Category returns the upper-cased key up to " (", so "PROPS (Mara)" is PROPS.
func Category(key string) string {
	key = strings.ToUpper(strings.TrimSpace(key))
	if i := strings.Index(key, " ("); i >= 0 {
		key = key[:i]
	}
	return key
}

func Collect(rows []*internal.NormalizedShot, r *rules.Rules) *MasterAssets {
	if r == nil {
		r = rules.Default()
	}
	m := &MasterAssets{items: map[string]map[string]struct{}{}, Shots: len(rows)}
	for _, c := range Categories {
		m.items[c] = map[string]struct{}{}
	}
	for _, row := range rows {
		for _, key := range row.Keys() {
			category := Category(key)
			if !rowCategories[category] {
				continue
			}
			addItems(m.items[category], row.Value(key), category, r)
		}
	}
	m.Sets = pipeline.Consolidate(rows, r)
	m.items[SetDressing] = pipeline.DressingUnion(m.Sets)
	return m
}

func addItems(target map[string]struct{}, value, category string, r *rules.Rules) {
	if strings.TrimSpace(value) == "" {
		return
	}
	for _, item := range strings.Split(value, ",") {
		item = rules.SanitizeItem(item)
		if !r.IsValid(item, category) {
			continue
		}
		if key := rules.NormalizeKey(r.Canonicalize(item, category)); key != "" {
			target[key] = struct{}{}
		}
	}
}

// List renders a category as a sorted, capitalized, comma separated string.
func (m *MasterAssets) List(category string) string {
	return util.JoinDisplay(m.items[strings.ToUpper(category)])
}

func (m *MasterAssets) Items(category string) []string {
	return util.DisplayList(m.items[strings.ToUpper(category)])
}

func (m *MasterAssets) Count(category string) int {
	return len(m.items[strings.ToUpper(category)])
}

// CharacterNames returns the normalized character keys in sorted order.
func (m *MasterAssets) CharacterNames() []string {
	return util.SortedKeys(m.items[Characters])
}

// CharacterCostumes collects the valid costume items from the
// "COSTUMES (name)" column. "None" when the character has none.
func CharacterCostumes(rows []*internal.NormalizedShot, name string, r *rules.Rules) string {
	if r == nil {
		r = rules.Default()
	}
	column := Costumes + " (" + strings.TrimSpace(name) + ")"
	found := map[string]struct{}{}
	for _, row := range rows {
		if key, ok := row.Find(column); ok {
			addItems(found, row.Value(key), Costumes, r)
		}
	}
	if len(found) == 0 {
		return "None"
	}
	return util.JoinDisplay(found)
}

// SceneSummary holds the shot-list navigation figures. Indices are 0-based
// row positions.
type SceneSummary struct {
	TotalShots       int      `json:"total_shots"`
	TotalCharacters  int      `json:"total_characters"`
	Scenes           []string `json:"scenes"`
	SceneStarts      []int    `json:"scene_start_indices"`
	SceneShotCounts  []int    `json:"scene_shot_counts"`
	UniqueSetIndices []int    `json:"unique_set_indices"`
}

func SceneStats(rows []*internal.NormalizedShot) SceneSummary {
	summary := SceneSummary{TotalShots: len(rows)}
	characters := map[string]struct{}{}
	counts := map[string]int{}
	seenLocations := map[string]bool{}
	lastScene := ""

	for i, row := range rows {
		if key, ok := row.Find(Characters); ok {
			value := row.Value(key)
			if !util.IsNoneValue(value) {
				for _, name := range util.SplitList(value) {
					if name = stripParenthetical(name); name != "" {
						characters[name] = struct{}{}
					}
				}
			}
		}
		if key, ok := row.Find("SCENE"); ok {
			if scene := strings.TrimSpace(row.Value(key)); scene != "" {
				counts[scene]++
				if scene != lastScene {
					summary.SceneStarts = append(summary.SceneStarts, i)
					lastScene = scene
				}
			}
		}
		if key, ok := row.Find("LOCATION"); ok {
			if loc := strings.TrimSpace(row.Value(key)); loc != "" && !seenLocations[loc] {
				seenLocations[loc] = true
				summary.UniqueSetIndices = append(summary.UniqueSetIndices, i)
			}
		}
	}

	summary.TotalCharacters = len(characters)
	summary.Scenes = util.SortedKeys(counts)
	sort.SliceStable(summary.Scenes, func(i, j int) bool {
		return sceneLess(summary.Scenes[i], summary.Scenes[j])
	})
	for _, scene := range summary.Scenes {
		summary.SceneShotCounts = append(summary.SceneShotCounts, counts[scene])
	}
	return summary
}

// sceneLess orders numeric scene ids numerically and everything else
// after them lexically.
func sceneLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

func stripParenthetical(name string) string {
	for {
		open := strings.Index(name, "(")
		if open < 0 {
			break
		}
		end := strings.Index(name[open:], ")")
		if end < 0 {
			break
		}
		name = name[:open] + name[open+end+1:]
	}
	return strings.TrimSpace(name)
}
