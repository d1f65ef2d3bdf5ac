// Package database provides SQLite-based run history for htmlgrader.
//
// HistoryDB stores one row per saved run: the document location and its
// digest, the checks file, pass/fail counts and the report as JSON. The
// history and compare commands read it back to show how a page's checks
// change over time.
//
// The driver is modernc.org/sqlite, a CGO-free implementation, so the
// binary cross-compiles without a C toolchain. The database lives in a
// single file, htmlgrader.db, under the XDG data directory by default.
package database
