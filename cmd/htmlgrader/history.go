package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/htmlgrader/internal/database"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs listed when --limit is not given.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved runs",
		Long: `History lists runs saved with --save, newest first.

Examples:
  # List the most recent runs
  htmlgrader history

  # List runs for one document
  htmlgrader history --location https://example.com

  # List every document with saved runs
  htmlgrader history --locations

  # JSON output
  htmlgrader history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("location", "l", "",
		"Only list runs for this file path or URL")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolP("locations", "L", false,
		"List every location with saved runs")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	location, err := cmd.Flags().GetString("location")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	listLocations, err := cmd.Flags().GetBool("locations")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
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
	out := cmd.OutOrStdout()

	if listLocations {
		return printLocations(ctx, out, db, jsonOutput)
	}

	runs, err := db.ListRuns(ctx, location, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if jsonOutput {
		return writeJSON(out, historyJSON(runs))
	}
	printRuns(out, runs, location)
	return nil
}

// printLocations lists every location that has saved runs.
func printLocations(ctx context.Context, out io.Writer, db *database.HistoryDB, jsonOutput bool) error {
	locations, err := db.ListLocations(ctx)
	if err != nil {
		return fmt.Errorf("failed to list locations: %w", err)
	}

	if jsonOutput {
		return writeJSON(out, locations)
	}

	if len(locations) == 0 {
		fmt.Fprintln(out, "No saved runs found in the database.")
		fmt.Fprintln(out, "\nUse 'htmlgrader --save' to record a run.")
		return nil
	}

	fmt.Fprintf(out, "Checked locations (%d):\n\n", len(locations))
	for _, loc := range locations {
		fmt.Fprintf(out, "  • %s\n", loc)
	}
	fmt.Fprintln(out, "\nUse 'htmlgrader history --location <location>' to see its runs.")
	return nil
}

// printRuns writes runs as a text table.
func printRuns(out io.Writer, runs []*database.Run, location string) {
	if len(runs) == 0 {
		if location != "" {
			fmt.Fprintf(out, "No saved runs found for %s\n", location)
		} else {
			fmt.Fprintln(out, "No saved runs found in the database.")
		}
		fmt.Fprintln(out, "\nUse 'htmlgrader --save' to record a run.")
		return
	}

	fmt.Fprintf(out, "Saved runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-36s  %-19s  %-6s  %-6s  %s\n", "ID", "Date", "Pass", "Fail", "Location")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 90))
	for _, r := range runs {
		fmt.Fprintf(out, "  %-36s  %-19s  %-6d  %-6d  %s\n",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Passed,
			r.Failed,
			r.Location,
		)
	}
	fmt.Fprintln(out, "\nUse 'htmlgrader compare <location>' to compare the latest two runs.")
}

// historyEntry is the JSON form of a saved run without its report.
type historyEntry struct {
	ID         string   `json:"id"`
	CreatedAt  string   `json:"created_at"`
	Origin     string   `json:"origin"`
	Location   string   `json:"location"`
	Title      string   `json:"title,omitempty"`
	ChecksPath string   `json:"checks_path,omitempty"`
	Digest     string   `json:"digest,omitempty"`
	Passed     int      `json:"passed"`
	Failed     int      `json:"failed"`
	Invalid    []string `json:"invalid,omitempty"`
}

func historyJSON(runs []*database.Run) []historyEntry {
	entries := make([]historyEntry, 0, len(runs))
	for _, r := range runs {
		entries = append(entries, historyEntry{
			ID:         r.ID,
			CreatedAt:  r.CreatedAt.Format("2006-01-02T15:04:05.000000000Z07:00"),
			Origin:     r.Origin,
			Location:   r.Location,
			Title:      r.Title,
			ChecksPath: r.ChecksPath,
			Digest:     r.Digest,
			Passed:     r.Passed,
			Failed:     r.Failed,
			Invalid:    r.Invalid,
		})
	}
	return entries
}

// writeJSON encodes v with four-space indentation and no HTML escaping.
func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}
