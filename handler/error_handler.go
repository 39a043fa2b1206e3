package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/bizdir/pkg/logger"
	"github.com/dmitrymomot/bizdir/pkg/requestid"
)

// NewErrorHandler returns an ErrorHandler that logs the error and answers
// with the JSON error envelope. Client errors log at warn, the rest at error.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx Context, err error) {
		r := ctx.Request()
		resp := JSONError(err, WithJSONMeta(map[string]any{
			"request_id": requestid.FromContext(r.Context()),
		})).(*jsonResponse)

		level := slog.LevelError
		if resp.status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		log.LogAttrs(r.Context(), level, "request error",
			logger.Error(err),
			slog.Int("status_code", resp.status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("http"),
		)

		if renderErr := resp.Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response", logger.Error(renderErr))
		}
	}
}
