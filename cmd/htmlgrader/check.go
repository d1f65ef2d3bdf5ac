package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/htmlgrader/internal/check"
	"github.com/nao1215/htmlgrader/internal/config"
	"github.com/nao1215/htmlgrader/internal/database"
	"github.com/nao1215/htmlgrader/internal/dom"
	applog "github.com/nao1215/htmlgrader/internal/log"
	"github.com/nao1215/htmlgrader/internal/report"
	"github.com/nao1215/htmlgrader/internal/source"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// addCheckFlags registers the flags of the selector check.
func addCheckFlags(cmd *cobra.Command) {
	// Input flags
	cmd.Flags().StringP("checks", "c", config.DefaultChecksFile,
		"Path to the checks file (JSON array of CSS selectors)")
	cmd.Flags().StringP("file", "f", "",
		"Path to a local HTML document (takes precedence over --url)")
	cmd.Flags().StringP("url", "u", "",
		"URL of a remote HTML document")

	// Fetch flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for fetching a remote document")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent when fetching")
	cmd.Flags().String("proxy", "",
		"Proxy URL for fetching (http, https, socks5 or socks5h)")
	cmd.Flags().StringToString("header", nil,
		"Extra request header, e.g. --header Authorization='Bearer x' (repeatable)")
	cmd.Flags().String("config", "",
		"Settings file path (default: .htmlgrader in current or home directory)")

	// Report flags
	cmd.Flags().String("format", config.FormatJSON,
		"Report format: json, markdown or text")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("strict", false,
		"Exit with status 2 when any selector matches nothing")
	cmd.Flags().Bool("save", false,
		"Save the run to the history database")
}

// runCheckCmd executes the selector check.
func runCheckCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// Missing files are reported as is; other problems get a prefix.
	if err := cfg.Validate(); err != nil {
		var missing *config.MissingFileError
		if errors.As(err, &missing) {
			return err
		}
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCheck(ctx, cfg, cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getDBDir retrieves the history database directory.
func getDBDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil || dir == "" {
		dir, err = cmd.Root().PersistentFlags().GetString("db-dir")
		if err != nil || dir == "" {
			return config.XDGDataDir()
		}
	}
	return dir
}

// buildConfig creates a Config from cobra command flags and the settings file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error

	if cfg.ChecksPath, err = flags.GetString("checks"); err != nil {
		return nil, err
	}
	if cfg.File, err = flags.GetString("file"); err != nil {
		return nil, err
	}
	if cfg.URL, err = flags.GetString("url"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.Proxy, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	headers, err := flags.GetStringToString("header")
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		cfg.Headers[k] = v
	}
	if cfg.SettingsPath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.Format, err = flags.GetString("format"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.Strict, err = flags.GetBool("strict"); err != nil {
		return nil, err
	}
	if cfg.SaveToDB, err = flags.GetBool("save"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.DBDir = getDBDir(cmd)

	// An explicitly given settings file must exist; the default lookup
	// silently finds nothing.
	settingsPath := config.FindSettingsFile(cfg.SettingsPath)
	switch {
	case settingsPath != "":
		settings, err := config.LoadSettingsFile(settingsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load settings file %s: %w", settingsPath, err)
		}
		explicit := map[string]bool{
			"user-agent": flags.Changed("user-agent"),
			"timeout":    flags.Changed("timeout"),
			"proxy":      flags.Changed("proxy"),
		}
		cfg.ApplySettings(settings, explicit)
	case cfg.SettingsPath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrSettingsNotFound, cfg.SettingsPath)
	}

	return cfg, nil
}

// runCheck loads the checks and the document, evaluates every selector and
// writes exactly one report.
func runCheck(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) error {
	logger.Debug("starting check",
		"checks", cfg.ChecksPath,
		"source", cfg.SourceType(),
		"file", cfg.File,
		"url", cfg.URL,
		"format", cfg.Format,
	)

	var fetcher *source.Fetcher
	if cfg.SourceType() == "url" {
		var err error
		fetcher, err = source.NewFetcherFromConfig(cfg, logger)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}

	// The checks file and the document load concurrently; evaluation starts
	// only after both have finished.
	var (
		selectors []string
		doc       *source.Document
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := config.LoadChecks(cfg.ChecksPath)
		if err != nil {
			return err
		}
		selectors = s
		return nil
	})
	g.Go(func() error {
		d, err := source.Resolve(gctx, cfg, fetcher)
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Debug("loaded inputs",
		"selectors", len(selectors),
		"location", doc.Location,
		"bytes", len(doc.Body),
		"digest", doc.Digest,
	)

	parsed, err := dom.ParseBytes(doc.Body)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", doc.Location, err)
	}

	result, err := check.Evaluate(parsed, selectors)
	if err != nil {
		return fmt.Errorf("failed to evaluate selectors: %w", err)
	}
	for _, sel := range result.Invalid() {
		logger.Warn("invalid selector counted as absent", "selector", sel, "error", result.InvalidError(sel))
	}

	meta := report.Meta{
		Location:   doc.Location,
		Title:      parsed.Title(),
		ChecksPath: cfg.ChecksPath,
		CheckedAt:  time.Now(),
	}
	if err := outputReport(cfg, stdout, meta, result); err != nil {
		return err
	}

	if cfg.SaveToDB {
		run := database.NewRun(string(doc.Origin), doc.Location, meta.Title, cfg.ChecksPath, doc.Digest, result)
		run.CreatedAt = meta.CheckedAt
		if err := saveRun(ctx, cfg.DBDir, run, logger); err != nil {
			return err
		}
	}

	if cfg.Strict && !result.AllPassed() {
		return &exitCodeError{
			code: exitStrict,
			err:  fmt.Errorf("%d of %d selector(s) matched nothing", len(result.Failed()), result.Len()),
		}
	}

	return nil
}

// outputReport writes the report in the configured format to stdout or
// cfg.ReportFile.
func outputReport(cfg *config.Config, stdout io.Writer, meta report.Meta, result *check.Report) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	w, err := report.NewWriter(cfg.Format, output, meta)
	if err != nil {
		return err
	}
	if _, err := w.Write(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// saveRun stores run in the history database under dbDir.
func saveRun(ctx context.Context, dbDir string, run *database.Run, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Info("run saved to history", "id", run.ID, "location", run.Location, "db", db.Path())
	return nil
}
