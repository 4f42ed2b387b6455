package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"emptylines/internal/diag"
	"emptylines/internal/diagfmt"
	"emptylines/internal/driver"
	"emptylines/internal/observ"
	"emptylines/internal/source"
	"emptylines/internal/version"
)

var checkCmd = &cobra.Command{
	Use:     "check [flags] <file|directory|->",
	Aliases: []string{"diag"},
	Short:   "Report runs of redundant empty lines",
	Long: `check analyses a file, every matching file under a directory, or stdin ("-")
and reports each run of empty lines that reaches the configured threshold.
The exit status is 1 when an error-severity diagnostic was reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory analysis (0=auto)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("preview", false, "show the fixed text for each suggestion")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("cache", false, "reuse results for unchanged files from the on-disk cache")
	checkCmd.Flags().Bool("clear-cache", false, "drop every cached result before analysing (implies --cache)")
	checkCmd.Flags().String("ui", "auto", "progress UI for directories (auto|on|off)")
	checkCmd.Flags().String("stdin-filename", "stdin.cs", "name used for stdin input; its extension selects the syntax")
	addRuleFlags(checkCmd)
}

type outputOptions struct {
	format    string
	withNotes bool
	suggest   bool
	preview   bool
	fullPath  bool
	color     bool
}

func runCheck(cmd *cobra.Command, args []string) error {
	target := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	preview, err := cmd.Flags().GetBool("preview")
	if err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}
	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	stdinName, err := cmd.Flags().GetString("stdin-filename")
	if err != nil {
		return fmt.Errorf("failed to get stdin-filename flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	colored, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	out := outputOptions{
		format:    format,
		withNotes: withNotes,
		suggest:   suggest,
		preview:   preview,
		fullPath:  fullPath,
		color:     colored,
	}
	if err := out.validate(); err != nil {
		return err
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, err := loadConfig(cmd, target)
	if err != nil {
		return err
	}
	opts := driver.Options{
		Config:         cfg,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
	}
	if showTimings {
		opts.Timer = observ.NewTimer()
	}
	if useCache || clearCache {
		cache, cacheErr := driver.OpenDiskCache("emptylines")
		if cacheErr != nil {
			return fmt.Errorf("failed to open cache: %w", cacheErr)
		}
		if clearCache {
			if cacheErr = cache.DropAll(); cacheErr != nil {
				return fmt.Errorf("failed to clear cache: %w", cacheErr)
			}
		}
		opts.Cache = cache
	}

	var result *driver.Result
	switch {
	case target == "-":
		content, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return fmt.Errorf("failed to read stdin: %w", readErr)
		}
		result = driver.AnalyzeSource(stdinName, content, opts)
	case !quiet && format == "pretty" && isDirPath(target) && shouldUseTUI(mode):
		result, err = runAnalyzeWithUI(cmd.Context(), "checking", target, opts)
	default:
		result, err = driver.Analyze(cmd.Context(), target, opts)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if err := printDiagnostics(cmd.OutOrStdout(), result.Bag, result.FileSet, out, os.Args[1:]); err != nil {
		return err
	}
	if !quiet && format == "pretty" && result.Bag.Len() == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No redundant empty lines in %d file(s).\n", len(result.Files))
	}
	printTimings(cmd.ErrOrStderr(), opts.Timer)

	if result.Bag.HasErrors() {
		return errFindings
	}
	return nil
}

func (o outputOptions) validate() error {
	switch o.format {
	case "pretty", "short", "json", "sarif":
		return nil
	default:
		return fmt.Errorf("unknown format: %s", o.format)
	}
}

func printDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet, o outputOptions, invocation []string) error {
	pathMode := diagfmt.PathModeAuto
	if o.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	showFixes := o.suggest || o.preview

	switch o.format {
	case "pretty":
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:       o.color,
			Context:     2,
			PathMode:    pathMode,
			ShowNotes:   o.withNotes,
			ShowFixes:   showFixes,
			ShowPreview: o.preview,
		})
	case "short":
		if output := diag.FormatShortDiagnostics(bag.Pointers(), fs, o.withNotes); output != "" {
			fmt.Fprintln(w, output)
		}
	case "json":
		err := diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     o.withNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  o.preview,
		})
		if err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	case "sarif":
		err := diagfmt.Sarif(w, bag, fs, diagfmt.SarifRunMeta{
			ToolName:       "emptylines",
			ToolVersion:    version.Version,
			InvocationArgs: invocation,
			PathMode:       pathMode,
		})
		if err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", o.format)
	}
	return nil
}

func isDirPath(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
