package pipeline

import (
	"sort"
	"strings"

	"shotlist/internal"
	"shotlist/internal/rules"
	"shotlist/internal/util"
)

const UnknownTimeOfDay = "UNKNOWN"

// ParseLocation splits a scene heading into base location and time of day.
// nil means the heading is not a usable location.
func ParseLocation(raw string, r *rules.Rules) *internal.Location {
	location := rules.SanitizeItem(raw)
	if !r.IsValid(location, "LOCATION") {
		return nil
	}
	base, label, ok := r.SplitTimeOfDay(location)
	if !ok {
		label = UnknownTimeOfDay
	}
	if base == "" {
		return nil
	}
	return &internal.Location{BaseName: base, TimeOfDay: label}
}

// Consolidate groups rows by base location. Row indices are 0-based.
func Consolidate(rows []*internal.NormalizedShot, r *rules.Rules) map[string]*internal.MasterSet {
	sets := map[string]*internal.MasterSet{}
	for idx, row := range rows {
		key, ok := row.Find("LOCATION")
		if !ok {
			continue
		}
		loc := ParseLocation(row.Value(key), r)
		if loc == nil {
			continue
		}
		set, ok := sets[loc.BaseName]
		if !ok {
			set = &internal.MasterSet{Name: loc.BaseName, TimesOfDay: map[string]struct{}{}, Dressing: map[string]struct{}{}}
			sets[loc.BaseName] = set
		}
		set.TimesOfDay[loc.TimeOfDay] = struct{}{}
		set.ShotIndices = append(set.ShotIndices, idx)

		if dk, ok := row.Find("SET_DRESSING"); ok {
			for _, item := range strings.Split(row.Value(dk), ",") {
				item = rules.SanitizeItem(item)
				if r.IsValid(item, "SET_DRESSING") {
					set.Dressing[rules.NormalizeKey(item)] = struct{}{}
				}
			}
		}
	}
	for _, set := range sets {
		sort.Ints(set.ShotIndices)
	}
	return sets
}

func SortedSetNames(sets map[string]*internal.MasterSet) []string {
	return util.SortedKeys(sets)
}

// SetHierarchy is the JSON view of one master set.
type SetHierarchy struct {
	MainSet          string   `json:"main_set"`
	TimesOfDay       []string `json:"times_of_day"`
	AllDressingItems []string `json:"all_dressing_items"`
	ShotIndices      []int    `json:"shot_indices"`
}

func Hierarchy(set *internal.MasterSet) SetHierarchy {
	indices := append([]int(nil), set.ShotIndices...)
	sort.Ints(indices)
	return SetHierarchy{
		MainSet:          set.Name,
		TimesOfDay:       util.SortedKeys(set.TimesOfDay),
		AllDressingItems: util.DisplayList(set.Dressing),
		ShotIndices:      indices,
	}
}

// DressingUnion merges the dressing of every set, for the master
// SET_DRESSING list.
func DressingUnion(sets map[string]*internal.MasterSet) map[string]struct{} {
	out := map[string]struct{}{}
	for _, set := range sets {
		for item := range set.Dressing {
			out[item] = struct{}{}
		}
	}
	return out
}
