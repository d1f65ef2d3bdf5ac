package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/htmlgrader/internal/check"
	"github.com/nao1215/htmlgrader/internal/database"
	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [location]",
		Short: "Compare two saved runs",
		Long: `Compare shows which selectors changed result between two saved runs.

With a location argument the two most recent runs for that file path or
URL are compared. With --from and --to two runs are compared by ID
(see 'htmlgrader history').

The comparison lists selectors that:
- started passing (fixed)
- stopped passing (broken)
- were added to or removed from the checks file

Examples:
  # Compare the latest two runs of a page
  htmlgrader compare https://example.com

  # Compare two specific runs
  htmlgrader compare --from 1b4e28ba-... --to 6fa459ea-...

  # Output the comparison as JSON or Markdown
  htmlgrader compare --format json https://example.com
  htmlgrader compare --format markdown https://example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().String("from", "", "ID of the earlier run")
	cmd.Flags().String("to", "", "ID of the later run")
	cmd.Flags().String("format", "text", "Output format: text, json or markdown")

	return cmd
}

// comparison is the result of comparing two runs.
type comparison struct {
	Previous runSummary  `json:"previous"`
	Current  runSummary  `json:"current"`
	Diff     *check.Diff `json:"diff"`
}

// runSummary identifies one side of a comparison.
type runSummary struct {
	ID        string    `json:"id"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	Digest    string    `json:"digest,omitempty"`
	Passed    int       `json:"passed"`
	Failed    int       `json:"failed"`
}

func summarize(r *database.Run) runSummary {
	return runSummary{
		ID:        r.ID,
		Location:  r.Location,
		CreatedAt: r.CreatedAt,
		Digest:    r.Digest,
		Passed:    r.Passed,
		Failed:    r.Failed,
	}
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	from, err := cmd.Flags().GetString("from")
	if err != nil {
		return err
	}
	to, err := cmd.Flags().GetString("to")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	byID := from != "" || to != ""
	switch {
	case byID && (from == "" || to == ""):
		return errors.New("--from and --to must be used together")
	case byID && len(args) > 0:
		return errors.New("specify either a location or --from/--to, not both")
	case !byID && len(args) == 0:
		return errors.New("location is required (use 'htmlgrader history --locations' to see saved locations)")
	}
	switch format {
	case "text", "json", "markdown":
	default:
		return fmt.Errorf("unknown format %q: must be text, json or markdown", format)
	}

	db, err := database.Open(getDBDir(cmd), database.ReadOnlyOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var previous, current *database.Run
	if byID {
		previous, current, err = runsByID(ctx, db, from, to)
	} else {
		previous, current, err = latestTwoRuns(ctx, db, args[0])
	}
	if err != nil {
		return err
	}

	result := &comparison{
		Previous: summarize(previous),
		Current:  summarize(current),
		Diff:     check.Compare(previous.Report, current.Report),
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return writeJSON(out, result)
	case "markdown":
		return outputComparisonMarkdown(out, result)
	default:
		outputComparisonText(out, result)
		return nil
	}
}

func runsByID(ctx context.Context, db *database.HistoryDB, from, to string) (*database.Run, *database.Run, error) {
	previous, err := db.GetRun(ctx, from)
	if err != nil {
		return nil, nil, err
	}
	current, err := db.GetRun(ctx, to)
	if err != nil {
		return nil, nil, err
	}
	return previous, current, nil
}

func latestTwoRuns(ctx context.Context, db *database.HistoryDB, location string) (*database.Run, *database.Run, error) {
	runs, err := db.LatestRuns(ctx, location, 2)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get runs: %w", err)
	}
	if len(runs) == 0 {
		return nil, nil, fmt.Errorf("no saved runs found for %s", location)
	}
	if len(runs) < 2 {
		return nil, nil, fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
	}
	// LatestRuns is newest first.
	return runs[1], runs[0], nil
}

// formatDirection formats the change direction for display.
func formatDirection(d check.Direction) string {
	switch d {
	case check.DirectionImproved:
		return "IMPROVED (more selectors pass)"
	case check.DirectionRegressed:
		return "REGRESSED (fewer selectors pass)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}

// outputComparisonText writes the comparison in human-readable text.
func outputComparisonText(out io.Writer, c *comparison) {
	d := c.Diff

	fmt.Fprintf(out, "Run Comparison: %s\n", c.Current.Location)
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "\nStatus: %s\n", formatDirection(d.Direction))

	fmt.Fprintf(out, "\nPrevious run: %s  %s\n", c.Previous.ID, c.Previous.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Current run:  %s  %s\n", c.Current.ID, c.Current.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if c.Previous.Digest != "" && c.Previous.Digest == c.Current.Digest {
		fmt.Fprintln(out, "Document content is identical in both runs.")
	}

	fmt.Fprintf(out, "\n  %-10s  %-10s  %-10s  %-10s\n", "Result", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 45))
	fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", "Pass",
		c.Previous.Passed, c.Current.Passed, formatDelta(c.Current.Passed-c.Previous.Passed))
	fmt.Fprintf(out, "  %-10s  %-10d  %-10d  %-10s\n", "Fail",
		c.Previous.Failed, c.Current.Failed, formatDelta(c.Current.Failed-c.Previous.Failed))

	writeList := func(title, marker string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(out, "\n%s (%d):\n", title, len(items))
		for _, sel := range items {
			fmt.Fprintf(out, "  [%s] %s\n", marker, sel)
		}
	}
	writeList("Fixed", "+", d.Fixed)
	writeList("Broken", "-", d.Broken)
	writeList("Added", "new", d.Added)
	writeList("Removed", "old", d.Removed)

	if d.Unchanged > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d selectors\n", d.Unchanged)
	}
}

// outputComparisonMarkdown writes the comparison in Markdown.
func outputComparisonMarkdown(out io.Writer, c *comparison) error {
	d := c.Diff
	md := markdown.NewMarkdown(out)

	md.H1("Run Comparison: " + c.Current.Location)
	md.PlainText("")
	md.PlainTextf("**Status:** %s", formatDirection(d.Direction))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Run", "`" + c.Previous.ID + "`", "`" + c.Current.ID + "`", "-"},
			{"Date", c.Previous.CreatedAt.Format("2006-01-02 15:04"), c.Current.CreatedAt.Format("2006-01-02 15:04"), "-"},
			{"Pass", strconv.Itoa(c.Previous.Passed), strconv.Itoa(c.Current.Passed), formatDelta(c.Current.Passed - c.Previous.Passed)},
			{"Fail", strconv.Itoa(c.Previous.Failed), strconv.Itoa(c.Current.Failed), formatDelta(c.Current.Failed - c.Previous.Failed)},
		},
	})
	md.PlainText("")

	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		md.H2(fmt.Sprintf("%s (%d)", title, len(items)))
		md.PlainText("")
		code := make([]string, 0, len(items))
		for _, sel := range items {
			code = append(code, "`"+sel+"`")
		}
		md.BulletList(code...)
		md.PlainText("")
	}
	section("Fixed", d.Fixed)
	section("Broken", d.Broken)
	section("Added", d.Added)
	section("Removed", d.Removed)

	if !d.Changed() {
		md.Note("No selector changed result between the two runs.")
		md.PlainText("")
	}

	return md.Build()
}
