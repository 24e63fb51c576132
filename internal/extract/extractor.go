// Package extract reads media metadata out of an HTML page using CSS selectors.
package extract

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/seerlink/seerlink/internal/media"
)

// ErrNoTitle is returned when no title could be found on the page.
var ErrNoTitle = errors.New("no title found on page")

var (
	yearRegex          = regexp.MustCompile(`(\d{4})`)
	parenYearRegex     = regexp.MustCompile(`\((\d{4})\)`)
	slugYearRegex      = regexp.MustCompile(`_(\d{4})$`)
	imdbIDRegex        = regexp.MustCompile(`imdb\.com/title/(tt\d+)`)
	tmdbPathRegex      = regexp.MustCompile(`^/(movie|tv)/(\d+)`)
	tmdbLinkRegex      = regexp.MustCompile(`themoviedb\.org/(movie|tv)/(\d+)`)
	siteSuffixPipe     = regexp.MustCompile(` \| [^|]+$`)
	siteSuffixDash     = regexp.MustCompile(` - [^-]+$`)
	trailingYearRegex  = regexp.MustCompile(`\s*\(\d{4}\)\s*$`)
	standardCleanupSet = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^Season\s+\d+\s*–\s*`),
		regexp.MustCompile(`(?i)\s*–\s*Season\s+\d+`),
		trailingYearRegex,
		regexp.MustCompile(`(?i)\s*:\s*Season\s+\d+`),
	}
)

// Extractor turns HTML pages into media queries.
type Extractor struct {
	rules  *compiledRules
	logger zerolog.Logger
}

// New creates an extractor. It fails when a configured pattern does not compile.
func New(rules Rules, logger *zerolog.Logger) (*Extractor, error) {
	compiled, err := compile(rules)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		rules:  compiled,
		logger: logger.With().Str("component", "extract").Logger(),
	}, nil
}

// Page is a parsed document together with the URL it was loaded from.
type Page struct {
	doc *goquery.Document
	url *url.URL
}

// Parse reads an HTML document. pageURL may be empty.
func Parse(pageURL string, r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}
	return &Page{doc: doc, url: u}, nil
}

// Extract parses the page and returns the media query it describes.
func (e *Extractor) Extract(pageURL string, r io.Reader) (media.Query, error) {
	page, err := Parse(pageURL, r)
	if err != nil {
		return media.Query{}, err
	}
	return e.Query(page)
}

// Query builds a media query from a parsed page.
func (e *Extractor) Query(p *Page) (media.Query, error) {
	title := e.Title(p)
	if title == "" {
		return media.Query{}, ErrNoTitle
	}

	q := media.Query{
		Title:     title,
		Year:      e.Year(p),
		MediaType: e.MediaType(p),
		IMDBID:    e.IMDbID(p),
		PosterURL: e.PosterURL(p),
		Overview:  e.Overview(p),
		Source:    p.url.Hostname(),
	}
	if id, kind := e.TMDBID(p); id > 0 {
		q.TMDBID = id
		q.MediaType = kind
	}

	e.logger.Debug().
		Str("title", q.Title).
		Int("year", q.Year).
		Str("mediaType", string(q.MediaType)).
		Str("imdbId", q.IMDBID).
		Int("tmdbId", q.TMDBID).
		Str("source", q.Source).
		Msg("extracted media query")
	return q, nil
}

// Text returns the first non-empty value among selectors.
func (e *Extractor) Text(p *Page, selectors []string, context string) string {
	for _, selector := range selectors {
		if v := nodeValue(p.doc.Find(selector).First()); v != "" {
			e.logger.Trace().Str("field", context).Str("selector", selector).Str("value", v).Msg("selector matched")
			return v
		}
	}
	return ""
}

// Title returns the cleaned title, falling back to the document title.
func (e *Extractor) Title(p *Page) string {
	title := e.Text(p, e.rules.TitleSelectors, "title")

	if title == "" && e.rules.PageTitleFallback {
		title = pageTitle(p)
		title = siteSuffixPipe.ReplaceAllString(title, "")
		title = siteSuffixDash.ReplaceAllString(title, "")
		title = trailingYearRegex.ReplaceAllString(title, "")
	}

	return CleanupTitle(title, e.rules.cleanup...)
}

// CleanupTitle strips season markers and a trailing year, then any extra patterns.
func CleanupTitle(title string, extra ...*regexp.Regexp) string {
	for _, re := range standardCleanupSet {
		title = re.ReplaceAllString(title, "")
	}
	for _, re := range extra {
		title = re.ReplaceAllString(title, "")
	}
	return strings.TrimSpace(title)
}

// Year returns the release year, or 0 when none is found.
func (e *Extractor) Year(p *Page) int {
	for _, selector := range e.rules.YearSelectors {
		sel := p.doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		text := sel.Text()
		if dt, ok := sel.Attr("datetime"); ok {
			text = dt + " " + text
		}
		if y := firstYear(text); y > 0 {
			return y
		}
	}

	if e.rules.MetadataSelector != "" {
		year := 0
		p.doc.Find(e.rules.MetadataSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			year = firstYear(strings.TrimSpace(s.Text()))
			return year == 0
		})
		if year > 0 {
			return year
		}
	}

	if m := parenYearRegex.FindStringSubmatch(pageTitle(p)); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y
	}
	if m := slugYearRegex.FindStringSubmatch(p.url.Path); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y
	}
	return 0
}

// IMDbID returns the first IMDb title id linked from the page.
func (e *Extractor) IMDbID(p *Page) string {
	if m := imdbIDRegex.FindStringSubmatch(p.url.String()); m != nil {
		return m[1]
	}
	for _, selector := range e.rules.IMDbSelectors {
		id := ""
		p.doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, _ := s.Attr("href")
			if m := imdbIDRegex.FindStringSubmatch(href); m != nil {
				id = m[1]
				return false
			}
			return true
		})
		if id != "" {
			return id
		}
	}
	return ""
}

// TMDBID returns the catalog id when the page is, or links to, a TMDB entry.
func (e *Extractor) TMDBID(p *Page) (int, media.Type) {
	if strings.HasSuffix(p.url.Hostname(), "themoviedb.org") {
		if m := tmdbPathRegex.FindStringSubmatch(p.url.Path); m != nil {
			return tmdbMatch(m)
		}
	}

	var (
		id   int
		kind media.Type
	)
	p.doc.Find(`a[href*="themoviedb.org/"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if m := tmdbLinkRegex.FindStringSubmatch(href); m != nil {
			id, kind = tmdbMatch(m)
			return false
		}
		return true
	})
	return id, kind
}

// PosterURL returns an absolute poster image URL, skipping inline data URIs.
func (e *Extractor) PosterURL(p *Page) string {
	for _, selector := range e.rules.PosterSelectors {
		src := nodeValue(p.doc.Find(selector).First())
		if src == "" || strings.HasPrefix(src, "data:") {
			continue
		}
		ref, err := url.Parse(src)
		if err != nil {
			continue
		}
		return p.url.ResolveReference(ref).String()
	}
	return ""
}

func (e *Extractor) Overview(p *Page) string {
	return e.Text(p, e.rules.OverviewSelectors, "overview")
}

// MediaType classifies the page as movie or TV; movie when nothing indicates TV.
func (e *Extractor) MediaType(p *Page) media.Type {
	path := p.url.Path
	for _, re := range e.rules.tvURL {
		if re.MatchString(path) {
			return media.TypeTV
		}
	}
	for _, re := range e.rules.movieURL {
		if re.MatchString(path) {
			return media.TypeMovie
		}
	}

	body := p.doc.Find("body").Text()
	for _, indicator := range e.rules.TVIndicators {
		if strings.Contains(body, indicator) {
			return media.TypeTV
		}
	}

	for _, selector := range e.rules.TVSelectors {
		found := false
		p.doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := nodeValue(s)
			for _, re := range e.rules.tvText {
				if re.MatchString(text) {
					found = true
					return false
				}
			}
			return true
		})
		if found {
			return media.TypeTV
		}
	}

	return media.TypeMovie
}

// nodeValue reads meta content, image sources, or trimmed text.
func nodeValue(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	switch goquery.NodeName(sel) {
	case "meta":
		v, _ := sel.Attr("content")
		return strings.TrimSpace(v)
	case "img":
		v, _ := sel.Attr("src")
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(sel.Text())
}

func pageTitle(p *Page) string {
	return strings.TrimSpace(p.doc.Find("title").First().Text())
}

func firstYear(text string) int {
	m := yearRegex.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	y, _ := strconv.Atoi(m[1])
	return y
}

func tmdbMatch(m []string) (int, media.Type) {
	id, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, ""
	}
	return id, media.ParseType(m[1])
}
