// Package logger builds *slog.Logger instances for the service.
//
// New creates a logger from functional options. The handler it returns is
// wrapped in a decorator that runs registered ContextExtractor callbacks on
// every record, which is how request ids end up on log lines emitted deep
// inside the tracking and mailer packages without threading a logger through
// every call.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "website"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "email sent",
//		logger.TrackingID(res.TrackingID),
//		logger.EmailType(string(res.EmailType)),
//	)
//
// Attribute helpers in attr.go keep key names consistent across packages.
package logger
