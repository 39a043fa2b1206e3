package validator

import "fmt"

// LenSlice requires exactly n items.
func LenSlice[T any](field string, value []T, n int) Rule {
	return Rule{
		Check: func() bool { return len(value) == n },
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must have exactly %d items", n),
			TranslationKey: "validation.exact_items",
			TranslationValues: map[string]any{
				"field": field,
				"count": n,
			},
		},
	}
}

// UniqueSlice requires that no value appears twice.
func UniqueSlice[T comparable](field string, value []T) Rule {
	return Rule{
		Check: func() bool {
			seen := make(map[T]struct{}, len(value))
			for _, v := range value {
				if _, dup := seen[v]; dup {
					return false
				}
				seen[v] = struct{}{}
			}
			return true
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must not contain duplicates",
			TranslationKey:    "validation.unique_items",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// SubsetSlice requires every value to be one of allowed.
func SubsetSlice[T comparable](field string, value, allowed []T) Rule {
	return Rule{
		Check: func() bool {
			set := make(map[T]struct{}, len(allowed))
			for _, a := range allowed {
				set[a] = struct{}{}
			}
			for _, v := range value {
				if _, ok := set[v]; !ok {
					return false
				}
			}
			return true
		},
		Error: ValidationError{
			Field:             field,
			Message:           "contains unknown items",
			TranslationKey:    "validation.subset_items",
			TranslationValues: map[string]any{"field": field},
		},
	}
}
