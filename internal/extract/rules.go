package extract

import (
	"fmt"
	"regexp"
)

// Rules lists the generic selectors and patterns used to read a page.
// Selectors are tried in order; the first non-empty value wins.
type Rules struct {
	TitleSelectors    []string `mapstructure:"title_selectors" yaml:"title_selectors"`
	YearSelectors     []string `mapstructure:"year_selectors" yaml:"year_selectors"`
	MetadataSelector  string   `mapstructure:"metadata_selector" yaml:"metadata_selector"`
	PosterSelectors   []string `mapstructure:"poster_selectors" yaml:"poster_selectors"`
	OverviewSelectors []string `mapstructure:"overview_selectors" yaml:"overview_selectors"`
	IMDbSelectors     []string `mapstructure:"imdb_selectors" yaml:"imdb_selectors"`
	CleanupPatterns   []string `mapstructure:"cleanup_patterns" yaml:"cleanup_patterns"`
	TVURLPatterns     []string `mapstructure:"tv_url_patterns" yaml:"tv_url_patterns"`
	MovieURLPatterns  []string `mapstructure:"movie_url_patterns" yaml:"movie_url_patterns"`
	TVIndicators      []string `mapstructure:"tv_indicators" yaml:"tv_indicators"`
	TVSelectors       []string `mapstructure:"tv_selectors" yaml:"tv_selectors"`
	TVTextPatterns    []string `mapstructure:"tv_text_patterns" yaml:"tv_text_patterns"`
	PageTitleFallback bool     `mapstructure:"page_title_fallback" yaml:"page_title_fallback"`
}

// DefaultRules returns selectors that work on most media pages through
// standard heading and Open Graph markup.
func DefaultRules() Rules {
	return Rules{
		TitleSelectors: []string{
			`meta[property="og:title"]`,
			"h1",
		},
		YearSelectors: []string{
			".release-year",
			".year",
			"time[datetime]",
		},
		MetadataSelector: "ul li, .metadata span",
		PosterSelectors: []string{
			`meta[property="og:image"]`,
			"img.poster",
			".poster img",
		},
		OverviewSelectors: []string{
			`meta[property="og:description"]`,
			`meta[name="description"]`,
			".overview",
		},
		IMDbSelectors: []string{
			`a[href*="imdb.com/title/"]`,
			`a[href*="imdb.com"]`,
			`[href*="imdb"]`,
		},
		TVURLPatterns: []string{
			`^/tv/`,
			`^/shows?/`,
			`^/series/`,
		},
		MovieURLPatterns: []string{
			`^/movies?/`,
			`^/film/`,
			`^/m/`,
		},
		TVIndicators: []string{
			"TV Series",
			"TV Mini Series",
		},
		TVSelectors: []string{
			`meta[property="og:type"]`,
		},
		TVTextPatterns: []string{
			`(?i)video\.tv_show`,
			`(?i)video\.episode`,
		},
		PageTitleFallback: true,
	}
}

type compiledRules struct {
	Rules
	cleanup  []*regexp.Regexp
	tvURL    []*regexp.Regexp
	movieURL []*regexp.Regexp
	tvText   []*regexp.Regexp
}

func compile(r Rules) (*compiledRules, error) {
	c := &compiledRules{Rules: r}

	var err error
	if c.cleanup, err = compileAll("cleanup_patterns", r.CleanupPatterns); err != nil {
		return nil, err
	}
	if c.tvURL, err = compileAll("tv_url_patterns", r.TVURLPatterns); err != nil {
		return nil, err
	}
	if c.movieURL, err = compileAll("movie_url_patterns", r.MovieURLPatterns); err != nil {
		return nil, err
	}
	if c.tvText, err = compileAll("tv_text_patterns", r.TVTextPatterns); err != nil {
		return nil, err
	}
	return c, nil
}

func compileAll(field string, patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s entry %q: %w", field, p, err)
		}
		out = append(out, re)
	}
	return out, nil
}
