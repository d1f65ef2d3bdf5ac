package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nao1215/htmlgrader/internal/config"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitOK     = 0
	exitError  = 1
	exitStrict = 2
)

// exitCodeError carries a process exit status other than 1.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string {
	return e.err.Error()
}

func (e *exitCodeError) Unwrap() error {
	return e.err
}

// exitCode maps an error returned by the root command to a process status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ec *exitCodeError
	if errors.As(err, &ec) {
		return ec.code
	}
	return exitError
}

// NewRootCmd creates the root command for htmlgrader.
// Running it without a subcommand performs the selector check.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "htmlgrader",
		Short: "Check an HTML document against a list of CSS selectors",
		Long: `htmlgrader verifies whether an HTML document contains elements matching
each CSS selector listed in a checks file, and prints a pass/fail report.

The checks file is a JSON array of selector strings:

  ["h1#title", "div.container > p", "a[href^='https://']"]

The document is read from a local file (--file) or fetched with a single
GET request (--url). When both are given, --file wins.

The default report is a JSON object mapping each selector to true (at least
one element matched) or false, with keys sorted ascending and indented with
four spaces.

Examples:
  # Check a local file
  htmlgrader -c checks.json -f index.html

  # Check a remote page
  htmlgrader -c checks.json -u https://example.com

  # Markdown report written to a file, run saved to history
  htmlgrader -f index.html --format markdown -o report.md --save

  # Fail with exit status 2 when any selector matches nothing
  htmlgrader -f index.html --strict`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCheckCmd,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("db-dir", config.XDGDataDir(),
		"Directory holding the run history database")

	addCheckFlags(cmd)

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits with the mapped status.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
