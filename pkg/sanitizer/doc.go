// Package sanitizer provides composable string transforms for cleaning
// user-entered free text before it is validated and stored.
//
// Transforms are plain func(string) string values chained with Apply or
// Compose:
//
//	clean := sanitizer.Compose(
//		sanitizer.StripHTML,
//		sanitizer.RemoveControlChars,
//		sanitizer.CollapseWhitespace,
//	)
//	reason := clean(input)
//
// Sanitizing is not validation: run validators on the cleaned value.
package sanitizer
