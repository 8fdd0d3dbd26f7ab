package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsValid(t *testing.T) {
	r := Default()
	cases := []struct {
		item     string
		category string
		want     bool
	}{
		{item: "Emma's face", category: "PROPS", want: false},
		{item: "Emma's hand", category: "SET_DRESSING", want: false},
		{item: "Textbook", category: "SET_DRESSING", want: true},
		{item: "None", category: "PROPS", want: false},
		{item: "Not specified.", category: "COSTUMES", want: false},
		{item: "No props visible", category: "PROPS", want: false},
		{item: "N/A - off screen", category: "PROPS", want: false},
		{item: "[ ]", category: "PROPS", want: false},
		{item: "Hairbrush", category: "PROPS", want: true},
		{item: "INT. LAB - NIGHT", category: "LOCATION", want: true},
		{item: "EXT. ARMS DEALER'S WAREHOUSE - NIGHT", category: "LOCATION", want: true},
		{item: "Scarf", category: "COSTUMES", want: true},
		{item: "Jon's scar", category: "LOCATION", want: false},
		{item: "Mara's hands", category: "COSTUMES", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.item, func(t *testing.T) {
			if got := r.IsValid(tc.item, tc.category); got != tc.want {
				t.Fatalf("IsValid(%q, %q)=%v want %v", tc.item, tc.category, got, tc.want)
			}
		})
	}
}

func TestSanitizeItem(t *testing.T) {
	if got := SanitizeItem(` "Old map (torn)." `); got != "Old map torn" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeKey(" Beaker. "); got != "beaker" {
		t.Fatalf("got %q", got)
	}
}

func TestCanonicalize(t *testing.T) {
	r := Default()
	if got := r.Canonicalize("Hiking Boots", "COSTUMES"); got != "sturdy boots" {
		t.Fatalf("got %q", got)
	}
	if got := r.Canonicalize("Pen", "props"); got != "writing tools" {
		t.Fatalf("got %q", got)
	}
	if got := r.Canonicalize("Pen", "SET_DRESSING"); got != "Pen" {
		t.Fatalf("alias leaked across categories: %q", got)
	}
}

func TestSplitTimeOfDay(t *testing.T) {
	r := Default()
	cases := []struct {
		in, base, label string
		ok              bool
	}{
		{in: "INT. LAB - NIGHT", base: "INT. LAB", label: "NIGHT", ok: true},
		{in: "EXT. PIER - moments later", base: "EXT. PIER", label: "MOMENTS LATER", ok: true},
		{in: "INT. LAB -DAY ", base: "INT. LAB", label: "DAY", ok: true},
		{in: "INT. DAYROOM", base: "INT. DAYROOM", ok: false},
	}
	for _, tc := range cases {
		base, label, ok := r.SplitTimeOfDay(tc.in)
		if base != tc.base || label != tc.label || ok != tc.ok {
			t.Fatalf("%q: got (%q,%q,%v)", tc.in, base, label, ok)
		}
	}
}

func TestKeyAliasAndPronouns(t *testing.T) {
	r := Default()
	if got := r.KeyAlias("shot type"); got != "SHOT_TYPE" {
		t.Fatalf("got %q", got)
	}
	if got := r.KeyAlias("DESCRIPTION"); got != "DESCRIPTION" {
		t.Fatalf("got %q", got)
	}
	if !r.IsPronoun("She") || r.IsPronoun("his") {
		t.Fatalf("unexpected parser pronoun set")
	}
	if !r.IsContextPronoun("his") {
		t.Fatalf("context pronouns should include his")
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	doc := "category_exclusions:\n  PROPS: [vehicle]\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r.IsValid("Rental vehicle", "PROPS") {
		t.Fatalf("category exclusion not applied")
	}
	if !r.IsValid("Rental vehicle", "SET_DRESSING") {
		t.Fatalf("exclusion leaked to other category")
	}
	if r.IsValid("None", "PROPS") {
		t.Fatalf("defaults lost after overlay")
	}
	if r.IsValid("Emma's hand", "SET_DRESSING") {
		t.Fatalf("default exclusions of other categories lost after overlay")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r.IsValid("Emma's face", "PROPS") {
		t.Fatalf("defaults not applied")
	}
}

func TestValidateRejectsUnknownSection(t *testing.T) {
	err := Validate([]byte("null_exact: [none]\nbogus: 1\n"))
	if err == nil || !strings.Contains(err.Error(), "schema") {
		t.Fatalf("expected schema error, got %v", err)
	}
	if err := Validate([]byte("pronouns: he\n")); err == nil {
		t.Fatalf("expected type error for scalar list")
	}
}
