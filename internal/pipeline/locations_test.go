package pipeline

import (
	"encoding/json"
	"strings"
	"testing"

	"shotlist/internal"
	"shotlist/internal/rules"
)

func TestParseLocation(t *testing.T) {
	r := rules.Default()
	cases := []struct {
		raw, base, tod string
		nilWant        bool
	}{
		{raw: "INT. LAB - NIGHT", base: "INT. LAB", tod: "NIGHT"},
		{raw: "EXT. ROOFTOP - Moments Later.", base: "EXT. ROOFTOP", tod: "MOMENTS LATER"},
		{raw: "INT. ATTIC", base: "INT. ATTIC", tod: "UNKNOWN"},
		{raw: "[INT. \"BARN\"] - DAWN", base: "INT. BARN", tod: "DAWN"},
		{raw: "None", nilWant: true},
		{raw: " - DAY", nilWant: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			loc := ParseLocation(tc.raw, r)
			if tc.nilWant {
				if loc != nil {
					t.Fatalf("expected nil, got %+v", loc)
				}
				return
			}
			if loc == nil || loc.BaseName != tc.base || loc.TimeOfDay != tc.tod {
				t.Fatalf("got %+v", loc)
			}
		})
	}
}

func TestConsolidateLabScenario(t *testing.T) {
	raw := ShotStart + "\nSHOT: 1A\nLOCATION: INT. LAB - NIGHT\nSET_DRESSING: Beaker, Emma's hand\n" + ShotEnd +
		ShotStart + "\nSHOT: 1B\nLOCATION: INT. LAB - DAY\n" + ShotEnd
	blocks, err := Tokenize(raw)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	r := rules.Default()
	sets := Consolidate(MergeBlocks(blocks, r), r)
	if len(sets) != 1 {
		t.Fatalf("sets=%v", SortedSetNames(sets))
	}
	lab := sets["INT. LAB"]
	if lab == nil {
		t.Fatalf("missing INT. LAB: %v", SortedSetNames(sets))
	}
	if _, ok := lab.TimesOfDay["NIGHT"]; !ok || len(lab.TimesOfDay) != 2 {
		t.Fatalf("times=%v", lab.TimesOfDay)
	}
	if _, ok := lab.TimesOfDay["DAY"]; !ok {
		t.Fatalf("times=%v", lab.TimesOfDay)
	}
	if len(lab.Dressing) != 1 {
		t.Fatalf("dressing=%v", lab.Dressing)
	}
	if _, ok := lab.Dressing["beaker"]; !ok {
		t.Fatalf("dressing=%v", lab.Dressing)
	}
	if len(lab.ShotIndices) != 2 || lab.ShotIndices[0] != 0 || lab.ShotIndices[1] != 1 {
		t.Fatalf("indices=%v", lab.ShotIndices)
	}

	blob, err := json.Marshal(Hierarchy(lab))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(blob), `"times_of_day":["DAY","NIGHT"]`) || !strings.Contains(string(blob), `"all_dressing_items":["Beaker"]`) {
		t.Fatalf("json=%s", blob)
	}
}

func TestConsolidateSkipsInvalidLocationRow(t *testing.T) {
	r := rules.Default()
	rows := []*internal.NormalizedShot{
		shotOf("location", "N/A"),
		shotOf("LOCATION", "EXT. PIER - DUSK", "SET_DRESSING", "Rope, none, Rope."),
	}
	sets := Consolidate(rows, r)
	pier := sets["EXT. PIER"]
	if len(sets) != 1 || pier == nil || pier.ShotIndices[0] != 1 || len(pier.Dressing) != 1 {
		t.Fatalf("sets=%+v", sets)
	}
}

func TestConsolidateKeepsAnatomyWordsInLocations(t *testing.T) {
	rows := []*internal.NormalizedShot{
		shotOf("LOCATION", "EXT. ARMS DEALER'S WAREHOUSE - NIGHT", "SET_DRESSING", "Crates, Dealer's hand"),
		shotOf("LOCATION", "EXT. ARMS DEALER'S WAREHOUSE - DAY"),
	}
	sets := Consolidate(rows, rules.Default())
	set, ok := sets["EXT. ARMS DEALERS WAREHOUSE"]
	if !ok || len(sets) != 1 {
		t.Fatalf("sets=%v", SortedSetNames(sets))
	}
	if len(set.TimesOfDay) != 2 || len(set.ShotIndices) != 2 {
		t.Fatalf("set=%+v", set)
	}
	if _, ok := set.Dressing["crates"]; !ok || len(set.Dressing) != 1 {
		t.Fatalf("dressing=%v", set.Dressing)
	}
}
