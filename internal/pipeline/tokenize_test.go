package pipeline

import (
	"errors"
	"strings"
	"testing"

	"shotlist/internal"
	"shotlist/internal/rules"
)

const twoShotReport = `Intro text the model added.
//---SHOT_START---//
SCENE: 1
SHOT: 1A
DESCRIPTION: Alice enters the lab
  and looks around.

CHARACTERS: Alice
//---SHOT_END---//

//---SHOT_START---//
SCENE: 1
SHOT: 1B
SHOT TYPE: Close-up
DESCRIPTION: Bob waits.
//---SHOT_END---//
`

func TestTokenizeBasic(t *testing.T) {
	blocks, err := Tokenize(twoShotReport)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("len=%d", len(blocks))
	}
	first := blocks[0]
	if first.Index != 0 || len(first.Fields) != 4 {
		t.Fatalf("first block: %+v", first)
	}
	if first.Fields[2].Key != "DESCRIPTION" || first.Fields[2].Value != "Alice enters the lab and looks around." {
		t.Fatalf("continuation not joined: %+v", first.Fields[2])
	}
	if blocks[1].Index != 1 || blocks[1].Fields[2].Key != "SHOT TYPE" {
		t.Fatalf("second block: %+v", blocks[1])
	}
}

func TestTokenizeDedupWhitespaceEquivalent(t *testing.T) {
	raw := ShotStart + "\nSHOT: 1A\nDESCRIPTION: A  wide\tview\n" + ShotEnd +
		ShotStart + "\n  SHOT: 1A\n\nDESCRIPTION: A wide view\n" + ShotEnd +
		ShotStart + "\nSHOT: 1B\n" + ShotEnd
	blocks, err := Tokenize(raw)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("len=%d", len(blocks))
	}
	if blocks[1].Fields[0].Value != "1B" {
		t.Fatalf("unexpected second block: %+v", blocks[1])
	}
}

func TestTokenizeTruncatedFinalBlock(t *testing.T) {
	raw := ShotStart + "\nSHOT: 1A\n" + ShotStart + "\nSHOT: 1B\nDESCRIPTION: cut off"
	blocks, err := Tokenize(raw)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(blocks) != 2 || blocks[1].Fields[1].Value != "cut off" {
		t.Fatalf("blocks=%+v", blocks)
	}
}

func TestTokenizeFailures(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{name: "empty", raw: "  \n ", want: ErrEmptyInput},
		{name: "upstream error", raw: "ERROR: model timed out", want: ErrUpstream},
		{name: "no marker", raw: "SHOT: 1A\nDESCRIPTION: x", want: ErrNoShotMarker},
		{name: "markers without fields", raw: ShotStart + "\njust prose\n" + ShotEnd, want: ErrNoShotData},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Tokenize(tc.raw)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v want %v", err, tc.want)
			}
		})
	}
}

func TestErrorText(t *testing.T) {
	_, err := Tokenize("ERROR: model timed out")
	text := ErrorText(err)
	if !IsErrorText(text) || !strings.Contains(text, "model timed out") {
		t.Fatalf("got %q", text)
	}
	if ErrorText(errors.New("ERROR: already tagged")) != "ERROR: already tagged" {
		t.Fatalf("tag duplicated")
	}
}

func TestMergeBlockAliasesAndDuplicates(t *testing.T) {
	raw := ShotStart + "\nSHOT: 1A\nCAMERA: 35mm\nDESCRIPTION: first\nDESCRIPTION: second\nSET_TYPE: Wide\nNOTES:\nNOTES: later\n" + ShotEnd
	blocks, err := Tokenize(raw)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	shot := MergeBlock(blocks[0], rules.Default())
	want := []string{"SHOT", "Camera & Lens", "DESCRIPTION", "SHOT_TYPE", "NOTES"}
	got := shot.Keys()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("keys=%v", got)
	}
	if shot.Value("DESCRIPTION") != "first\nsecond" {
		t.Fatalf("description=%q", shot.Value("DESCRIPTION"))
	}
	if shot.Value("NOTES") != "later" {
		t.Fatalf("notes=%q", shot.Value("NOTES"))
	}
}

func TestFormatBlocksRoundTrip(t *testing.T) {
	r := rules.Default()
	blocks, err := Tokenize(twoShotReport)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	shots := MergeBlocks(blocks, r)
	shots[0].Append("DESCRIPTION", "Second line.", "\n")

	again, err := Tokenize(FormatBlocks(shots))
	if err != nil {
		t.Fatalf("re-tokenize: %v", err)
	}
	reshots := MergeBlocks(again, r)
	if len(reshots) != len(shots) {
		t.Fatalf("len=%d want %d", len(reshots), len(shots))
	}
	for i := range shots {
		if strings.Join(shots[i].Keys(), "|") != strings.Join(reshots[i].Keys(), "|") {
			t.Fatalf("shot %d keys %v vs %v", i, shots[i].Keys(), reshots[i].Keys())
		}
		for _, k := range shots[i].Keys() {
			want := strings.Join(strings.Fields(shots[i].Value(k)), " ")
			if reshots[i].Value(k) != want {
				t.Fatalf("shot %d %s: %q vs %q", i, k, reshots[i].Value(k), want)
			}
		}
	}
	if FormatBlocks(reshots) != FormatBlocks(MergeBlocks(mustTokenize(t, FormatBlocks(reshots)), r)) {
		t.Fatalf("format is not a fixed point")
	}
}

func mustTokenize(t *testing.T, raw string) []internal.ShotBlock {
	t.Helper()
	blocks, err := Tokenize(raw)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	return blocks
}
