// Package logger builds the service's *slog.Logger.
//
// New takes functional options; WithEnvironment picks the format and level
// for a deployment, and WithContextExtractors injects request-scoped values
// (request ID, tenant ID) into every record written with a context:
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "bizdir"),
//	    logger.WithContextExtractors(
//	        requestid.LoggerExtractor(),
//	        tenant.LoggerExtractor(),
//	    ),
//	)
//	log.InfoContext(ctx, "downgrade scheduled",
//	    logger.PlanID(sub.PlanID),
//	    logger.Operation(subscription.OpScheduleDowngrade),
//	)
//
// Error and Errors return an empty attribute for nil errors, so they can be
// passed unconditionally.
package logger
