package domain

import (
	"strings"
	"unicode/utf8"
)

// MaxQuotesPerSource is the number of quotes a single source may hold.
const MaxQuotesPerSource = 3

// MaxWeight bounds Quote.Weight so the selector's running sum cannot
// overflow.
const MaxWeight = 1_000_000

// MaxSourceNameLength bounds Source.Name in characters.
const MaxSourceNameLength = 200

// Submission field names, shared with the form and JSON adapters.
const (
	FieldText       = "text"
	FieldSourceName = "source_name"
	FieldSourceType = "source_type"
	FieldWeight     = "weight"
)

// Validation messages.
const (
	MsgEmptyText           = "empty text"
	MsgNonPositiveWeight   = "non-positive weight"
	MsgWeightTooLarge      = "weight too large"
	MsgSourceLimitExceeded = "source quote limit exceeded"
	MsgDuplicateText       = "duplicate text"
	MsgEmptySourceName     = "empty source name"
	MsgSourceNameTooLong   = "source name too long"
	MsgInvalidSourceType   = "invalid source type"
)

// Submission is a request to add a quote.
type Submission struct {
	Text       string
	SourceName string
	SourceType SourceType
	Weight     int
}

// Normalize trims surrounding whitespace from the text and the source name.
// Inner whitespace and case are kept, so uniqueness stays case-sensitive.
func (s *Submission) Normalize() {
	s.Text = strings.TrimSpace(s.Text)
	s.SourceName = strings.TrimSpace(s.SourceName)
}

// Validate checks the input-only rules and reports every failure at once.
// Rules that need the store (capacity, duplicates) live in
// CheckSourceCapacity and the application service.
func (s *Submission) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(s.Text) == "" {
		errs.Add(FieldText, MsgEmptyText)
	}

	name := strings.TrimSpace(s.SourceName)

	switch {
	case name == "":
		errs.Add(FieldSourceName, MsgEmptySourceName)
	case utf8.RuneCountInString(name) > MaxSourceNameLength:
		errs.Add(FieldSourceName, MsgSourceNameTooLong)
	}

	if !s.SourceType.Valid() {
		errs.Add(FieldSourceType, MsgInvalidSourceType)
	}

	switch {
	case s.Weight < 1:
		errs.Add(FieldWeight, MsgNonPositiveWeight)
	case s.Weight > MaxWeight:
		errs.Add(FieldWeight, MsgWeightTooLarge)
	}

	return errs.OrNil()
}

// CheckSourceCapacity enforces the per-source limit given the number of
// other quotes the source already holds.
func CheckSourceCapacity(existing int) error {
	if existing >= MaxQuotesPerSource {
		return NewValidationError("", MsgSourceLimitExceeded)
	}

	return nil
}
