package catalog

import (
	"regexp"
	"strings"

	"shotlist/internal/util"
)

// Index is the ordered canonical character set. Names are unique by
// case-insensitive comparison after trimming; the first spelling wins.
type Index struct {
	Names   []string
	ByLower map[string]string
}

var (
	reBibleName = regexp.MustCompile(`(?im)^[ \t]*NAME:[ \t]*(.*?)[ \t]*$`)
	bibleBreak  = "//---CHARACTER_BREAK---//"
)

func BuildIndex(names []string) *Index {
	idx := &Index{ByLower: map[string]string{}}
	for _, name := range names {
		name = util.CanonicalText(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := idx.ByLower[key]; ok {
			continue
		}
		idx.ByLower[key] = name
		idx.Names = append(idx.Names, name)
	}
	return idx
}

// ParseBible collects every "NAME: value" line of a character bible.
func ParseBible(text string) *Index {
	text = strings.ReplaceAll(text, bibleBreak, "\n")
	var names []string
	for _, m := range reBibleName.FindAllStringSubmatch(text, -1) {
		names = append(names, m[1])
	}
	return BuildIndex(names)
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Names)
}

// Contains reports exact (case-sensitive) membership, which is how callers
// tell a canonical name apart from an unresolved variation.
func (idx *Index) Contains(name string) bool {
	if idx == nil {
		return false
	}
	canonical, ok := idx.ByLower[strings.ToLower(name)]
	return ok && canonical == name
}

func (idx *Index) Lookup(name string) (string, bool) {
	if idx == nil {
		return "", false
	}
	canonical, ok := idx.ByLower[strings.ToLower(strings.TrimSpace(name))]
	return canonical, ok
}
