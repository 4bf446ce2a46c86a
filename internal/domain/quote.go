package domain

import "time"

// DefaultWeight is used when a submission does not specify a weight.
const DefaultWeight = 1

// summaryLength is the number of characters kept by Quote.Summary.
const summaryLength = 50

// Quote is a piece of text attributed to a Source.
// Views, Likes and Dislikes are durable aggregates; Likes and Dislikes always
// equal the number of vote ledger entries in the matching state.
type Quote struct {
	ID       int64
	Text     string
	SourceID int64

	// Source is populated by the store when the quote is read.
	Source *Source

	// Weight controls the relative probability of being selected. Always >= 1.
	Weight int

	Views    int
	Likes    int
	Dislikes int

	CreatedAt time.Time
}

// Summary returns the first 50 characters of the text, with "..." appended
// when the text was cut.
func (q *Quote) Summary() string {
	runes := []rune(q.Text)
	if len(runes) <= summaryLength {
		return q.Text
	}

	return string(runes[:summaryLength]) + "..."
}

// SourceLabel returns the quote's source in "Type: Name" form, or an empty
// string when the source was not loaded.
func (q *Quote) SourceLabel() string {
	if q.Source == nil {
		return ""
	}

	return q.Source.String()
}
