// Package logger builds slog loggers and provides attribute helpers.
//
//	log := logger.New(
//		logger.WithProduction("authscreens"),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.Info("code resent",
//		logger.Component("verification"),
//		logger.Email(email),
//	)
//
// WithDevelopment gives text output at debug level, WithProduction JSON at
// info level. NewFromConfig reads the same choices from a Config loaded from
// the environment, and adds a size-rotated log file (lumberjack) when
// LOG_FILE_PATH is set.
//
// Attribute helpers return an empty slog.Attr for missing values, so they can
// be passed unconditionally. Email masks the local part of an address.
package logger
