// Package requestid attaches a correlation ID to every HTTP request.
//
// Middleware reuses a client supplied X-Request-ID when it is well formed
// and otherwise generates one. The ID is stored in the request context,
// echoed in the response header and, through LoggerExtractor, added to
// every log record written with that context:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r.Use(requestid.Middleware)
package requestid
