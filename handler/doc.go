// Package handler binds HTTP requests into typed values and renders typed
// responses.
//
// A HandlerFunc receives a Context and the bound request and returns a
// Response. Wrap turns it into an http.HandlerFunc for any router:
//
//	r.Post("/downgrade", handler.Wrap(scheduleDowngrade,
//		handler.WithBinders[downgradeRequest](binder.JSON()),
//		handler.WithErrorHandler[downgradeRequest](handler.NewErrorHandler(log)),
//	))
//
// JSON bodies share one envelope: data on success, error with a code and
// optional per-field details on failure, and meta for anything else.
// HTTPError and ValidationError carry the status code of a failure.
package handler
