package domain

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmission_Validate(t *testing.T) {
	valid := Submission{Text: "New test quote", SourceName: "New Movie", SourceType: SourceMovie, Weight: 3}

	tests := []struct {
		name     string
		mutate   func(*Submission)
		expected map[string][]string
	}{
		{
			name:     "valid",
			mutate:   func(*Submission) {},
			expected: nil,
		},
		{
			name:     "whitespace text",
			mutate:   func(s *Submission) { s.Text = "  \n\t" },
			expected: map[string][]string{FieldText: {MsgEmptyText}},
		},
		{
			name:     "zero weight",
			mutate:   func(s *Submission) { s.Weight = 0 },
			expected: map[string][]string{FieldWeight: {MsgNonPositiveWeight}},
		},
		{
			name:     "weight at the cap",
			mutate:   func(s *Submission) { s.Weight = MaxWeight },
			expected: nil,
		},
		{
			name:     "weight above the cap",
			mutate:   func(s *Submission) { s.Weight = math.MaxInt },
			expected: map[string][]string{FieldWeight: {MsgWeightTooLarge}},
		},
		{
			name: "empty text and invalid weight together",
			mutate: func(s *Submission) {
				s.Text = ""
				s.Weight = -4
			},
			expected: map[string][]string{
				FieldText:   {MsgEmptyText},
				FieldWeight: {MsgNonPositiveWeight},
			},
		},
		{
			name:     "missing source name",
			mutate:   func(s *Submission) { s.SourceName = " " },
			expected: map[string][]string{FieldSourceName: {MsgEmptySourceName}},
		},
		{
			name:     "overlong source name",
			mutate:   func(s *Submission) { s.SourceName = strings.Repeat("я", MaxSourceNameLength+1) },
			expected: map[string][]string{FieldSourceName: {MsgSourceNameTooLong}},
		},
		{
			name:     "unknown source type",
			mutate:   func(s *Submission) { s.SourceType = "poem" },
			expected: map[string][]string{FieldSourceType: {MsgInvalidSourceType}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := valid
			tt.mutate(&sub)

			err := sub.Validate()
			if tt.expected == nil {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, IsValidation(err))

			var errs *ValidationErrors
			require.True(t, errors.As(err, &errs))
			assert.Equal(t, tt.expected, errs.FieldErrors())
			assert.Empty(t, errs.NonFieldErrors())
		})
	}
}

func TestSubmission_Normalize(t *testing.T) {
	sub := Submission{Text: "\n  Keep  me \t", SourceName: "  1984 "}
	sub.Normalize()

	assert.Equal(t, "1984", sub.SourceName)
	assert.Equal(t, "Keep  me", sub.Text)
}

func TestCheckSourceCapacity(t *testing.T) {
	for existing := 0; existing < MaxQuotesPerSource; existing++ {
		assert.NoError(t, CheckSourceCapacity(existing), "existing=%d", existing)
	}

	err := CheckSourceCapacity(MaxQuotesPerSource)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, ve.Field)
	assert.Equal(t, MsgSourceLimitExceeded, ve.Message)
	assert.Error(t, CheckSourceCapacity(MaxQuotesPerSource+5))
}
