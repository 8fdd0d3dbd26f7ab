package pipeline

import (
	"encoding/json"
	"strings"
	"testing"

	"shotlist/internal"
)

func TestProcessDocument(t *testing.T) {
	report := ShotStart + `
SCENE: 1
SHOT: 1A
LOCATION: INT. LAB - NIGHT
SET_TYPE: WIDE SHOT
CHARACTERS: she
PROPS (she): Torch
PROPS (None): Dust
SET_DRESSING: Beakers, Hair
DIALOGUE: MARA (V.O.): (whispering) Who's there?
` + ShotEnd + `
` + ShotStart + `
SHOT: 1B
LOCATION: INT. LAB - DAY
CHARACTERS: Jon
` + ShotEnd

	doc, err := Process(report, "NAME: Mara\nNAME: Jonathan Hale", Options{
		SceneCharacters: map[string][]string{"1": {"Mara"}},
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(doc.Shots) != 2 || len(doc.Blocks) != 2 {
		t.Fatalf("shots=%d blocks=%d", len(doc.Shots), len(doc.Blocks))
	}

	first := doc.Shots[0]
	if got := first.Value("CHARACTERS"); got != "Mara" {
		t.Fatalf("characters=%q", got)
	}
	if got := first.Value("SHOT_TYPE"); got != "WIDE SHOT" {
		t.Fatalf("key alias not applied: %v", first.Keys())
	}
	if got := first.Value("PROPS (Mara)"); got != "Torch" {
		t.Fatalf("props=%q keys=%v", got, first.Keys())
	}
	if _, ok := first.Get("PROPS (None)"); ok {
		t.Fatalf("junk key kept")
	}
	if got := first.Value("DIALOGUE"); got != "Mara: (whispering) Who's there?" {
		t.Fatalf("dialogue=%q", got)
	}
	if got := doc.Shots[1].Value("CHARACTERS"); got != "Jonathan Hale" {
		t.Fatalf("second characters=%q", got)
	}

	var junk int
	for _, u := range doc.Unresolved {
		if u.Kind == internal.UnresolvedJunkKey {
			junk++
			if u.ShotID != "1A" || u.ShotIndex != 0 {
				t.Fatalf("issue location: %+v", u)
			}
		}
	}
	if junk != 1 {
		t.Fatalf("unresolved=%+v", doc.Unresolved)
	}

	set, ok := doc.Sets["INT. LAB"]
	if !ok || len(set.TimesOfDay) != 2 || len(set.ShotIndices) != 2 {
		t.Fatalf("sets=%+v", doc.Sets)
	}
	if _, ok := set.Dressing["beakers"]; !ok || len(set.Dressing) != 1 {
		t.Fatalf("dressing=%v", set.Dressing)
	}

	csv := doc.CSV()
	if !strings.HasPrefix(csv, `"SCENE","LOCATION","SHOT","SHOT_TYPE"`) {
		t.Fatalf("csv header: %q", strings.SplitN(csv, "\r\n", 2)[0])
	}
}

func TestDebugShot(t *testing.T) {
	doc, err := Process(ShotStart+"\nSHOT: 1A\nCHARACTERS: Al\n"+ShotEnd, "NAME: Alice Hart\nNAME: Alan Moss", Options{})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	out, err := doc.DebugShot(1)
	if err != nil {
		t.Fatalf("debug: %v", err)
	}
	var payload struct {
		Index      int                   `json:"index"`
		Total      int                   `json:"total"`
		Raw        [][2]string           `json:"raw"`
		Normalized map[string]string     `json:"normalized"`
		Unresolved []internal.Unresolved `json:"unresolved"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("json: %v\n%s", err, out)
	}
	if payload.Index != 1 || payload.Total != 1 || payload.Raw[1] != [2]string{"CHARACTERS", "Al"} {
		t.Fatalf("payload=%+v", payload)
	}
	if len(payload.Unresolved) != 1 || payload.Unresolved[0].Kind != internal.UnresolvedName {
		t.Fatalf("unresolved=%+v", payload.Unresolved)
	}
	if _, err := doc.DebugShot(2); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestFromTable(t *testing.T) {
	shots, err := ReadTable("\"SCENE\",\"LOCATION\"\r\n\"1\",\"EXT. FIELD - DUSK\"\r\n")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	doc := FromTable(shots, nil)
	if len(doc.Sets) != 1 || doc.Names.Len() != 0 {
		t.Fatalf("doc=%+v", doc)
	}
}
