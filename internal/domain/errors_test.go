package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrConflict,
		ErrValidation,
		ErrUnavailable,
		ErrEmptyCorpus,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b,
					"sentinels should be distinct: %v vs %v", a, b)
			}
		}
	}
}

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name        string
		entity      string
		id          string
		expectedMsg string
	}{
		{
			name:        "with entity and ID",
			entity:      "quote",
			id:          "7",
			expectedMsg: `quote with id "7" not found`,
		},
		{
			name:        "with entity only",
			entity:      "source",
			id:          "",
			expectedMsg: "source not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewNotFoundError(tt.entity, tt.id)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrNotFound)

			var notFound *NotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, tt.entity, notFound.Entity)
			assert.Equal(t, tt.id, notFound.ID)
		})
	}
}

func TestConflictError(t *testing.T) {
	err := NewConflictError("source", "name taken")

	assert.Equal(t, "source conflict: name taken", err.Error())
	require.ErrorIs(t, err, ErrConflict)

	withDetails := &ConflictError{Entity: "quote", Reason: "lost update", Details: "id 3"}
	assert.Equal(t, "quote conflict: lost update (id 3)", withDetails.Error())
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		message     string
		expectedMsg string
	}{
		{
			name:        "with field",
			field:       FieldText,
			message:     MsgEmptyText,
			expectedMsg: "validation failed for text: empty text",
		},
		{
			name:        "without field",
			field:       "",
			message:     MsgSourceLimitExceeded,
			expectedMsg: "validation failed: source quote limit exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrValidation)

			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
			assert.Equal(t, tt.message, validation.Message)
		})
	}
}

func TestValidationErrors(t *testing.T) {
	t.Run("empty collection is nil", func(t *testing.T) {
		var errs ValidationErrors
		assert.NoError(t, errs.OrNil())
		assert.Equal(t, 0, errs.Len())
	})

	t.Run("groups field and form errors", func(t *testing.T) {
		var errs ValidationErrors
		errs.Add(FieldText, MsgEmptyText)
		errs.Add(FieldWeight, MsgNonPositiveWeight)
		errs.Add("", MsgSourceLimitExceeded)

		err := errs.OrNil()
		require.Error(t, err)
		require.ErrorIs(t, err, ErrValidation)
		assert.True(t, IsValidation(fmt.Errorf("submit: %w", err)))

		assert.Equal(t, map[string][]string{
			FieldText:   {MsgEmptyText},
			FieldWeight: {MsgNonPositiveWeight},
		}, errs.FieldErrors())
		assert.Equal(t, []string{MsgSourceLimitExceeded}, errs.NonFieldErrors())
		assert.True(t, errs.Has(MsgNonPositiveWeight))
		assert.False(t, errs.Has(MsgDuplicateText))
		assert.Equal(t,
			"validation failed: text: empty text; weight: non-positive weight; source quote limit exceeded",
			err.Error())
	})

	t.Run("merge flattens nested errors", func(t *testing.T) {
		var inner ValidationErrors
		inner.Add(FieldText, MsgDuplicateText)

		var outer ValidationErrors
		assert.True(t, outer.Merge(fmt.Errorf("wrapped: %w", &inner)))
		assert.True(t, outer.Merge(NewValidationError(FieldWeight, MsgNonPositiveWeight)))
		assert.False(t, outer.Merge(ErrNotFound))
		assert.Equal(t, 2, outer.Len())
	})
}

func TestUnavailableError(t *testing.T) {
	err := NewUnavailableError("sqlite", "database is locked")

	assert.Equal(t, `service "sqlite" unavailable: database is locked`, err.Error())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, `service "cache" unavailable`, NewUnavailableError("cache", "").Error())
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		isFunc   func(error) bool
		expected bool
	}{
		{"IsNotFound with NotFoundError", NewNotFoundError("quote", "1"), IsNotFound, true},
		{"IsNotFound with wrapped", fmt.Errorf("wrapped: %w", ErrNotFound), IsNotFound, true},
		{"IsNotFound with other error", ErrConflict, IsNotFound, false},
		{"IsNotFound with nil", nil, IsNotFound, false},

		{"IsConflict with ConflictError", NewConflictError("quote", "race"), IsConflict, true},
		{"IsConflict with other error", ErrNotFound, IsConflict, false},

		{"IsValidation with ValidationError", NewValidationError("text", "empty text"), IsValidation, true},
		{"IsValidation with ValidationErrors", &ValidationErrors{}, IsValidation, true},
		{"IsValidation with other error", ErrNotFound, IsValidation, false},

		{"IsUnavailable with UnavailableError", NewUnavailableError("db", "timeout"), IsUnavailable, true},
		{"IsUnavailable with nil", nil, IsUnavailable, false},

		{"IsEmptyCorpus with sentinel", ErrEmptyCorpus, IsEmptyCorpus, true},
		{"IsEmptyCorpus with wrapped", fmt.Errorf("random: %w", ErrEmptyCorpus), IsEmptyCorpus, true},
		{"IsEmptyCorpus with other error", ErrNotFound, IsEmptyCorpus, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.isFunc(tt.err))
		})
	}
}

func TestErrorWrappingChain(t *testing.T) {
	original := NewNotFoundError("quote", "42")
	wrapped := fmt.Errorf("layer2: %w", fmt.Errorf("layer1: %w", original))

	assert.True(t, IsNotFound(wrapped))

	var notFound *NotFoundError
	require.ErrorAs(t, wrapped, &notFound)
	assert.Equal(t, "42", notFound.ID)
	assert.Equal(t, "quote", notFound.Entity)
}
