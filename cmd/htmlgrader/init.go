package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/htmlgrader/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/checks.json
var checksTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter checks file",
		Long: `Initialize creates a checks.json file in the current directory.

The generated file is a JSON array of CSS selectors covering common
page structure (title, heading, viewport and description meta tags,
image alt text, links). Edit it to list the selectors your pages must
contain.

Examples:
  # Create checks.json in current directory
  htmlgrader init

  # Create the checks file at a specific path
  htmlgrader init -o site/checks.json

  # Force overwrite existing file
  htmlgrader init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultChecksFile,
		"Output file path for the checks file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing checks file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("checks file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := checksTemplate.ReadFile("templates/checks.json")
	if err != nil {
		return fmt.Errorf("failed to read checks template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write checks file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created checks file: %s\n", outputPath)
	fmt.Fprintln(out, "\nRun a check with:")
	fmt.Fprintf(out, "  htmlgrader -c %s -f index.html\n", outputPath)

	return nil
}
