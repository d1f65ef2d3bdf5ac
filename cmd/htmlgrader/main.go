// Package main provides the entry point for the htmlgrader CLI.
//
// htmlgrader checks whether an HTML document, read from a local file or
// fetched from a URL, contains elements matching each CSS selector listed
// in a checks file, and prints a pass/fail report.
//
// Usage:
//
//	htmlgrader --checks checks.json --file index.html
//	htmlgrader --checks checks.json --url https://example.com
//
// See --help for all available options.
package main

func main() {
	Execute()
}
