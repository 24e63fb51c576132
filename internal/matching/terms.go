package matching

import (
	"regexp"
	"strings"
)

var (
	specialCharsRegex   = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	leadingArticleRegex = regexp.MustCompile(`(?i)^(the|a|an)\s+`)
	trailingYearRegex   = regexp.MustCompile(`\s*\(\d{4}\)\s*$`)
	curlyApostrophe     = regexp.MustCompile("[‘’ʼ]")
	multipleSpaceRegex  = regexp.MustCompile(`\s+`)
)

// TermGenerator produces alternate catalog queries for a page title.
type TermGenerator struct {
	substitutions []compiledSubstitution
	forRegex      *regexp.Regexp
	stopRegex     *regexp.Regexp
}

type compiledSubstitution struct {
	re          *regexp.Regexp
	replacement string
}

// NewTermGenerator compiles the substitution and stopword tables in opts.
func NewTermGenerator(opts Options) *TermGenerator {
	opts = opts.withDefaults()

	g := &TermGenerator{
		forRegex: regexp.MustCompile(`(?i)\s+for\s+`),
	}
	for _, s := range opts.Substitutions {
		if s.Pattern == "" {
			continue
		}
		pattern := regexp.QuoteMeta(s.Pattern)
		if s.IgnoreCase {
			pattern = "(?i)" + pattern
		}
		g.substitutions = append(g.substitutions, compiledSubstitution{
			re:          regexp.MustCompile(pattern),
			replacement: s.Replacement,
		})
	}

	words := make([]string, 0, len(opts.Stopwords))
	for _, w := range opts.Stopwords {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, regexp.QuoteMeta(w))
		}
	}
	if len(words) > 0 {
		g.stopRegex = regexp.MustCompile(`(?i)\s+(` + strings.Join(words, "|") + `)\s+`)
	}

	return g
}

// Generate returns title followed by its distinct variants, most faithful first.
// The first element is always title itself, unmodified.
func (g *TermGenerator) Generate(title string) []string {
	terms := []string{title}
	seen := map[string]bool{title: true}

	for _, variant := range g.variants(title) {
		cleaned := strings.TrimSpace(variant)
		if cleaned == "" || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		terms = append(terms, cleaned)
	}

	return terms
}

func (g *TermGenerator) variants(title string) []string {
	variants := make([]string, 0, len(g.substitutions)+12)

	for _, s := range g.substitutions {
		variants = append(variants, s.re.ReplaceAllLiteralString(title, s.replacement))
	}

	variants = append(variants,
		specialCharsRegex.ReplaceAllString(title, ""),
		leadingArticleRegex.ReplaceAllString(title, ""),
		cutAt(title, ":"),
		cutAt(title, " - "),
		cutAt(title, " –"),
		trailingYearRegex.ReplaceAllString(title, ""),
		curlyApostrophe.ReplaceAllString(title, "'"),
		strings.ReplaceAll(title, "'", "’"),
		replaceUntilStable(g.forRegex, title),
	)

	if g.stopRegex != nil {
		stripped := replaceUntilStable(g.stopRegex, title)
		variants = append(variants, multipleSpaceRegex.ReplaceAllString(stripped, " "))
	}

	return variants
}

// cutAt returns the part of s before the first sep.
func cutAt(s, sep string) string {
	before, _, _ := strings.Cut(s, sep)
	return before
}

// replaceUntilStable replaces interior whole-word matches with a single space.
// Matches consume their surrounding whitespace, so adjacent words need another pass.
func replaceUntilStable(re *regexp.Regexp, s string) string {
	for {
		next := re.ReplaceAllString(s, " ")
		if next == s {
			return next
		}
		s = next
	}
}
