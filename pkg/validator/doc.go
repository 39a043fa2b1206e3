// Package validator builds declarative validation from small Rule values.
//
// A Rule pairs a Check with the ValidationError reported when the check
// fails. Apply evaluates every rule and aggregates the failures into
// ValidationErrors, which implements error:
//
//	err := validator.Apply(
//		validator.LenSlice("business_ids", sel.BusinessIDs, 2),
//		validator.UniqueSlice("business_ids", sel.BusinessIDs),
//		validator.SubsetSlice("business_ids", sel.BusinessIDs, owned),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//		for _, e := range verrs {
//			fmt.Println(e.Field, e.TranslationKey)
//		}
//	}
//
// Errors carry a TranslationKey and TranslationValues so callers can render
// localized messages; Message is the English fallback.
package validator
