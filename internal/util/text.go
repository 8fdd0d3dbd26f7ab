package util

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces      = regexp.MustCompile(`\s+`)
	quoteReplacer = strings.NewReplacer("’", "'", "‘", "'", "“", `"`, "”", `"`, " ", " ")
)

// CollapseSpaces replaces every whitespace run with a single space and trims.
func CollapseSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// CanonicalText NFC-normalizes input and folds typographic quotes and
// non-breaking spaces so LLM output compares equal to hand-typed text.
func CanonicalText(input string) string {
	return quoteReplacer.Replace(norm.NFC.String(input))
}

// SplitList splits a comma separated value, trimming items and dropping empties.
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Capitalize upper-cases the first rune and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// JoinDisplay capitalizes every item, sorts and comma-joins them.
func JoinDisplay(items map[string]struct{}) string {
	if len(items) == 0 {
		return ""
	}
	return strings.Join(DisplayList(items), ", ")
}

func DisplayList(items map[string]struct{}) []string {
	out := make([]string, 0, len(items))
	for item := range items {
		out = append(out, Capitalize(item))
	}
	sort.Strings(out)
	return out
}

func SortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func IsNoneValue(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none", "none.", "n/a":
		return true
	}
	return false
}

func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
