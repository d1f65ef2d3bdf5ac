// Package source obtains the raw HTML that htmlgrader evaluates.
//
// A document comes either from a local file (ReadFile) or from a single
// HTTP GET (Fetcher.Fetch). Resolve picks between them from a config.Config:
// a local file takes precedence over a URL, and having neither is an error.
//
// There is no caching and no retry. Every failure is returned to the caller,
// which ends the run.
package source
