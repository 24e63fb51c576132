package matching

import (
	"regexp"
	"strings"
)

var (
	apostropheRegex = regexp.MustCompile("['`‘’ʼ]")
	separatorRegex  = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeTitle lowercases a title, drops apostrophes and turns every other
// run of punctuation or whitespace into a single space.
// "Schitt's Creek" and "Schitts Creek" normalize to the same string.
func NormalizeTitle(title string) string {
	normalized := strings.ToLower(title)
	normalized = apostropheRegex.ReplaceAllString(normalized, "")
	normalized = separatorRegex.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// TitleScore is the Jaccard similarity of the word sets of two titles,
// between 0 (nothing shared) and 1 (same words). It is reported in debug
// output only; Resolve does not use it.
func TitleScore(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	shared := 0
	for w := range setA {
		if setB[w] {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	return float64(shared) / float64(union)
}

func wordSet(title string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(NormalizeTitle(title)) {
		set[w] = true
	}
	return set
}
