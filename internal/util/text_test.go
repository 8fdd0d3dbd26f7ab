package util

import "testing"

func TestCollapseSpaces(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "tabs and newlines", input: "  SHOT:\tA\n\nLOCATION:  lab ", want: "SHOT: A LOCATION: lab"},
		{name: "already compact", input: "a b", want: "a b"},
		{name: "empty", input: "   ", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CollapseSpaces(tc.input); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestCapitalize(t *testing.T) {
	if got := Capitalize("pULSING light"); got != "Pulsing light" {
		t.Fatalf("got %q", got)
	}
	if got := Capitalize("écharpe"); got != "Écharpe" {
		t.Fatalf("got %q", got)
	}
	if got := Capitalize(""); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" Beaker, ,Microscope ,")
	if len(got) != 2 || got[0] != "Beaker" || got[1] != "Microscope" {
		t.Fatalf("got %v", got)
	}
}

func TestJoinDisplay(t *testing.T) {
	items := map[string]struct{}{"textbook": {}, "beaker": {}}
	if got := JoinDisplay(items); got != "Beaker, Textbook" {
		t.Fatalf("got %q", got)
	}
}

func TestCanonicalText(t *testing.T) {
	if got := CanonicalText("O’Brien"); got != "O'Brien" {
		t.Fatalf("got %q", got)
	}
}
