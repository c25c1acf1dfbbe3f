package skills

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize returns the comparison key of a skill label.
// Only case is folded: whitespace, punctuation and synonyms are kept as is,
// so "Python" and "python" collide while "python3" stays a separate skill.
func Normalize(label string) string {
	return strings.ToLower(label)
}

// Set is a de-duplicated collection of normalized skill labels.
type Set map[string]struct{}

// NewSet normalizes labels into a set.
func NewSet(labels []string) Set {
	set := make(Set, len(labels))
	for _, label := range labels {
		set[Normalize(label)] = struct{}{}
	}
	return set
}

func (s Set) Has(label string) bool {
	_, ok := s[Normalize(label)]
	return ok
}

func (s Set) Len() int { return len(s) }

// Sorted returns the set members in lexical order. Never nil.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for label := range s {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// Display title-cases labels for presentation, dropping blanks and
// case-insensitive duplicates.
func Display(labels []string) []string {
	// A Caser keeps state between calls and cannot be shared.
	titleCaser := cases.Title(language.English)
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		key := Normalize(label)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, titleCaser.String(label))
	}
	sort.Strings(out)
	return out
}
