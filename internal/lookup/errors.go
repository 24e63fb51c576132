package lookup

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoMatch is returned when every search term came back empty.
	ErrNoMatch = errors.New("no catalog match")
	// ErrStale is returned when a newer navigation superseded the lookup.
	ErrStale = errors.New("lookup superseded by newer navigation")
	// ErrInvalidQuery is returned for queries missing a title and catalog id.
	ErrInvalidQuery = errors.New("invalid media query")
)

// NoMatchError lists the search terms that were tried for a title.
type NoMatchError struct {
	Title string
	Terms []string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("Could not find %q in Jellyseerr database. Tried search terms: %s",
		e.Title, strings.Join(e.Terms, ", "))
}

func (e *NoMatchError) Unwrap() error {
	return ErrNoMatch
}

// IsNoMatch reports whether err means the catalog has no entry for the title.
func IsNoMatch(err error) bool {
	return errors.Is(err, ErrNoMatch)
}
