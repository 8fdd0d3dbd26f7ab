package catalog

import "testing"

func TestParseBible(t *testing.T) {
	bible := "NAME: Alice Hart\nROLE: lead\n//---CHARACTER_BREAK---//\nname:   Bob Stone  \n" +
		"//---CHARACTER_BREAK---//NAME: alice hart\nNAME:\n"
	idx := ParseBible(bible)
	if idx.Len() != 2 {
		t.Fatalf("len=%d names=%v", idx.Len(), idx.Names)
	}
	if idx.Names[0] != "Alice Hart" || idx.Names[1] != "Bob Stone" {
		t.Fatalf("unexpected order: %v", idx.Names)
	}
	if !idx.Contains("Bob Stone") || idx.Contains("bob stone") {
		t.Fatalf("contains should be exact")
	}
	if got, ok := idx.Lookup(" ALICE HART "); !ok || got != "Alice Hart" {
		t.Fatalf("lookup=%q ok=%v", got, ok)
	}
}

func TestNilIndex(t *testing.T) {
	var idx *Index
	if idx.Len() != 0 || idx.Contains("x") {
		t.Fatalf("nil index should be empty")
	}
}
