package pipeline

import (
	"testing"

	"shotlist/internal"
	"shotlist/internal/catalog"
	"shotlist/internal/rules"
)

func shotOf(pairs ...string) *internal.NormalizedShot {
	s := internal.NewNormalizedShot()
	for i := 0; i+1 < len(pairs); i += 2 {
		s.Set(pairs[i], pairs[i+1])
	}
	return s
}

func newTestResolver(names ...string) *Resolver {
	return NewResolver(NewMatcher(DefaultMatchOptions(), catalog.BuildIndex(names)), rules.Default())
}

func TestResolvePronounSingleCharacter(t *testing.T) {
	rv := newTestResolver("Alice", "Bob")
	out, issues := rv.ResolveBlock(shotOf("SHOT", "1A", "CHARACTERS", "Alice", "PROPS (she)", "knife"), Scope{})
	if got, ok := out.Get("PROPS (Alice)"); !ok || got != "knife" {
		t.Fatalf("keys=%v", out.Keys())
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %+v", issues)
	}
}

func TestResolvePronounAmbiguousLeftAlone(t *testing.T) {
	rv := newTestResolver("Alice", "Bob")
	out, issues := rv.ResolveBlock(shotOf("CHARACTERS", "Alice, Bob", "PROPS (she)", "knife"), Scope{})
	if got, ok := out.Get("PROPS (she)"); !ok || got != "knife" {
		t.Fatalf("keys=%v", out.Keys())
	}
	if len(issues) != 1 || issues[0].Kind != internal.UnresolvedPronoun || issues[0].Value != "she" {
		t.Fatalf("issues=%+v", issues)
	}
}

func TestGroundTruthDropsPronounsAndNormalizes(t *testing.T) {
	rv := newTestResolver("Alice Hart", "Bob Stone")
	shot := shotOf("characters", "ALICE HART (V.O.), she, Bob, alice hart")
	truth, _ := rv.EstablishGroundTruth(shot, Scope{})
	if len(truth) != 2 || truth[0] != "Alice Hart" || truth[1] != "Bob Stone" {
		t.Fatalf("truth=%v", truth)
	}
	out, _ := rv.ResolveShot(shot, truth)
	if out.Value("characters") != "Alice Hart, Bob Stone" {
		t.Fatalf("characters=%q", out.Value("characters"))
	}
}

func TestGroundTruthNoneAndSceneScope(t *testing.T) {
	rv := newTestResolver("Alice Hart", "Bob Stone")

	out, _ := rv.ResolveBlock(shotOf("CHARACTERS", "N/A"), Scope{})
	if out.Value("CHARACTERS") != "None" {
		t.Fatalf("got %q", out.Value("CHARACTERS"))
	}

	out, _ = rv.ResolveBlock(shotOf("CHARACTERS", "He", "COSTUMES (him)", "coat"), Scope{SceneCharacters: []string{"Bob Stone"}})
	if out.Value("CHARACTERS") != "Bob Stone" || out.Value("COSTUMES (Bob Stone)") != "coat" {
		t.Fatalf("keys=%v chars=%q", out.Keys(), out.Value("CHARACTERS"))
	}

	out, issues := rv.ResolveBlock(shotOf("CHARACTERS", "He"), Scope{SceneCharacters: []string{"Alice Hart", "Bob Stone"}})
	if out.Value("CHARACTERS") != "None" {
		t.Fatalf("ambiguous scene pronoun should not resolve, got %q", out.Value("CHARACTERS"))
	}
	if len(issues) != 1 || issues[0].Kind != internal.UnresolvedPronoun || issues[0].Value != "He" ||
		issues[0].Field != "CHARACTERS" || len(issues[0].Suggestions) != 2 {
		t.Fatalf("issues=%+v", issues)
	}

	out, issues = rv.ResolveBlock(shotOf("CHARACTERS", "She"), Scope{})
	if out.Value("CHARACTERS") != "None" || len(issues) != 1 || issues[0].Kind != internal.UnresolvedPronoun {
		t.Fatalf("chars=%q issues=%+v", out.Value("CHARACTERS"), issues)
	}

	out, issues = rv.ResolveBlock(shotOf("CHARACTERS", "Alice, they"), Scope{})
	if out.Value("CHARACTERS") != "Alice Hart" || len(issues) != 1 || issues[0].Value != "they" {
		t.Fatalf("chars=%q issues=%+v", out.Value("CHARACTERS"), issues)
	}

	_, issues = rv.ResolveBlock(shotOf("CHARACTERS", "He"), Scope{SceneCharacters: []string{"Bob Stone"}})
	if len(issues) != 0 {
		t.Fatalf("resolved pronoun reported: %+v", issues)
	}
}

func TestResolveJunkKeyAndMerge(t *testing.T) {
	rv := newTestResolver("Alice Hart")
	shot := shotOf(
		"CHARACTERS", "Alice",
		"props (Alice)", "lamp",
		"PROPS (ALICE HART)", "map",
		"PROPS (None)", "nothing",
		"COSTUMES (Zed)", "cape",
	)
	out, issues := rv.ResolveBlock(shot, Scope{})
	if out.Value("PROPS (Alice Hart)") != "lamp, map" {
		t.Fatalf("merged props=%q keys=%v", out.Value("PROPS (Alice Hart)"), out.Keys())
	}
	if _, ok := out.Get("PROPS (None)"); ok {
		t.Fatalf("junk key kept")
	}
	if out.Value("COSTUMES (Zed)") != "cape" {
		t.Fatalf("unmatched name should pass through: %v", out.Keys())
	}
	kinds := map[internal.UnresolvedKind]int{}
	for _, is := range issues {
		kinds[is.Kind]++
	}
	if kinds[internal.UnresolvedJunkKey] != 1 || kinds[internal.UnresolvedName] != 1 {
		t.Fatalf("issues=%+v", issues)
	}
}

func TestSanitizeDialogue(t *testing.T) {
	m := newTestMatcher("Alice Hart", "Bob Stone")
	cases := []struct {
		in, want, unresolved string
	}{
		{in: "", want: "None"},
		{in: "none.", want: "None"},
		{in: "ALICE HART (V.O.): (whispering) Stay\nclose.", want: "Alice Hart: (whispering) Stay close."},
		{in: "Bob (quietly) Not yet.", want: "Bob Stone: (quietly) Not yet."},
		{in: "Alice Hart We go now.", want: "Alice Hart: We go now."},
		{in: "GUARD: Halt!", want: "GUARD: Halt!", unresolved: "GUARD"},
		{in: "(sighs)", want: "(sighs)"},
		{in: "Just a line.", want: "Just a line."},
	}
	for _, tc := range cases {
		got, unresolved := SanitizeDialogue(tc.in, m)
		if got != tc.want || unresolved != tc.unresolved {
			t.Fatalf("%q: got (%q,%q) want (%q,%q)", tc.in, got, unresolved, tc.want, tc.unresolved)
		}
	}
}

func testRules() *rules.Rules { return rules.Default() }
