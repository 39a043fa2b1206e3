package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bizdir/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("all rules pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.LenSlice("ids", []int{1, 2}, 2),
			validator.UniqueSlice("ids", []int{1, 2}),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failure", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.LenSlice("a", []int{1}, 2),
			validator.UniqueSlice("b", []string{"x", "x"}),
			validator.SubsetSlice("c", []int{9}, []int{1, 2}),
		)
		require.Error(t, err)

		verrs := validator.ExtractValidationErrors(err)
		require.Len(t, verrs, 3)
		assert.True(t, verrs.Has("a"))
		assert.True(t, verrs.Has("b"))
		assert.True(t, verrs.Has("c"))
		assert.False(t, verrs.Has("d"))
		assert.Equal(t, []string{"must have exactly 2 items"}, verrs.Get("a"))
		assert.Equal(t, "validation failed: a: must have exactly 2 items; b: must not contain duplicates; c: contains unknown items", err.Error())
	})
}

func TestExtractValidationErrors(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("invalid selection")
	verrs := validator.Apply(validator.LenSlice("ids", []int{}, 1))

	joined := errors.Join(sentinel, verrs)
	assert.Len(t, validator.ExtractValidationErrors(joined), 1)
	assert.True(t, validator.IsValidationError(joined))

	wrapped := fmt.Errorf("context: %w", verrs)
	assert.True(t, validator.IsValidationError(wrapped))

	assert.Nil(t, validator.ExtractValidationErrors(nil))
	assert.Nil(t, validator.ExtractValidationErrors(sentinel))
	assert.False(t, validator.IsValidationError(sentinel))
}

func TestSliceRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule validator.Rule
		ok   bool
		key  string
	}{
		{"exact length", validator.LenSlice("f", []int{1, 2, 3}, 3), true, ""},
		{"too short", validator.LenSlice("f", []int{1}, 3), false, "validation.exact_items"},
		{"zero expected, empty", validator.LenSlice[int]("f", nil, 0), true, ""},
		{"unique", validator.UniqueSlice("f", []string{"a", "b"}), true, ""},
		{"duplicate", validator.UniqueSlice("f", []string{"a", "b", "a"}), false, "validation.unique_items"},
		{"empty is unique", validator.UniqueSlice[string]("f", nil), true, ""},
		{"subset", validator.SubsetSlice("f", []int{1}, []int{1, 2}), true, ""},
		{"not a subset", validator.SubsetSlice("f", []int{3}, []int{1, 2}), false, "validation.subset_items"},
		{"empty subset", validator.SubsetSlice("f", nil, []int{1}), true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.ok, tt.rule.Check())
			if !tt.ok {
				assert.Equal(t, tt.key, tt.rule.Error.TranslationKey)
				assert.Equal(t, "f", tt.rule.Error.Field)
			}
		})
	}
}
