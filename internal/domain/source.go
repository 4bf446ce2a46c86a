package domain

import (
	"fmt"
	"strings"
)

// SourceType classifies the work a quote comes from.
type SourceType string

// Known source types.
const (
	SourceMovie SourceType = "movie"
	SourceBook  SourceType = "book"
	SourceSong  SourceType = "song"
	SourceOther SourceType = "other"
)

// SourceTypes lists every source type in display order.
var SourceTypes = []SourceType{SourceMovie, SourceBook, SourceSong, SourceOther}

var sourceTypeLabels = map[SourceType]string{
	SourceMovie: "Movie",
	SourceBook:  "Book",
	SourceSong:  "Song",
	SourceOther: "Other",
}

// legacy short codes accepted on input
var sourceTypeAliases = map[string]SourceType{
	"mov": SourceMovie,
}

// ParseSourceType parses a source type case-insensitively.
func ParseSourceType(s string) (SourceType, error) {
	key := strings.ToLower(strings.TrimSpace(s))

	if alias, ok := sourceTypeAliases[key]; ok {
		return alias, nil
	}

	t := SourceType(key)
	if !t.Valid() {
		return "", fmt.Errorf("unknown source type %q", s)
	}

	return t, nil
}

// Valid reports whether t is one of the known source types.
func (t SourceType) Valid() bool {
	_, ok := sourceTypeLabels[t]
	return ok
}

// Label returns the human readable name of the type.
func (t SourceType) Label() string {
	if label, ok := sourceTypeLabels[t]; ok {
		return label
	}

	return string(t)
}

// Source is the work a quote is attributed to.
type Source struct {
	ID   int64
	Name string
	Type SourceType
}

// String renders the source as "Book: 1984".
func (s Source) String() string {
	return s.Type.Label() + ": " + s.Name
}

// SourceSummary is a source together with the number of quotes it holds.
type SourceSummary struct {
	Source
	QuoteCount int
}
