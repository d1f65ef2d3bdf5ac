// Package log provides the slog setup used by htmlgrader.
//
// Diagnostics go to stderr so that stdout carries nothing but the report.
// The SecureHandler wraps any slog.Handler and redacts values that may
// carry credentials before they are written:
//   - request headers such as Authorization, Cookie and X-Api-Key
//   - values that look like bearer/basic credentials or JWTs
//   - the user:password part of proxy and document URLs
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("request headers", slog.Group("headers",
//	    "Authorization", "Bearer abc", // written as ***REDACTED***
//	))
package log
