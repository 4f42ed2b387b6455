package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"emptylines/internal/driver"
	"emptylines/internal/fix"
	"emptylines/internal/observ"
	"emptylines/internal/textdiff"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file|directory>",
	Short: "Collapse runs of redundant empty lines in place",
	Long: `fix applies the rewrite attached to each reported run. With --all the
files are re-analysed after every pass until nothing is left to apply.`,
	Args: cobra.ExactArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply every fix, repeating until none remain")
	fixCmd.Flags().Bool("once", false, "apply the first available fix (default)")
	fixCmd.Flags().String("id", "", "apply the fix with a specific identifier")
	fixCmd.Flags().Bool("dry-run", false, "compute the fixes without writing files")
	fixCmd.Flags().Bool("diff", false, "print a unified diff of every changed file")
	fixCmd.Flags().Int("jobs", 0, "max parallel workers for directory analysis (0=auto)")
	fixCmd.Flags().String("ui", "off", "progress UI for directories (auto|on|off)")
	addRuleFlags(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) error {
	target := args[0]

	applyAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fmt.Errorf("failed to get all flag: %w", err)
	}
	applyOnce, err := cmd.Flags().GetBool("once")
	if err != nil {
		return fmt.Errorf("failed to get once flag: %w", err)
	}
	targetID, err := cmd.Flags().GetString("id")
	if err != nil {
		return fmt.Errorf("failed to get id flag: %w", err)
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	showDiff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return fmt.Errorf("failed to get diff flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
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

	if targetID != "" && (applyAll || applyOnce) {
		return fmt.Errorf("--id cannot be combined with --all or --once")
	}
	if applyAll && applyOnce {
		return fmt.Errorf("--all and --once are mutually exclusive")
	}
	applyMode := fix.ApplyModeOnce
	if targetID != "" {
		applyMode = fix.ApplyModeID
	} else if applyAll {
		applyMode = fix.ApplyModeAll
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
	opts := driver.FixOptions{
		Options: driver.Options{
			Config:         cfg,
			Jobs:           jobs,
			MaxDiagnostics: maxDiagnostics,
		},
		Mode:     applyMode,
		TargetID: targetID,
		DryRun:   dryRun,
	}
	if showTimings {
		opts.Timer = observ.NewTimer()
	}

	var res *driver.FixResult
	if !quiet && isDirPath(target) && shouldUseTUI(mode) {
		res, err = runFixWithUI(cmd.Context(), "fixing", target, opts)
	} else {
		res, err = driver.FixPath(cmd.Context(), target, opts)
	}
	if res == nil {
		return fmt.Errorf("fix: %w", err)
	}

	w := cmd.OutOrStdout()
	if showDiff {
		if diffErr := printDiffs(w, res.Files); diffErr != nil {
			return diffErr
		}
	}
	printTimings(cmd.ErrOrStderr(), opts.Timer)
	if quiet && err == nil {
		return nil
	}
	return handleFixResult(w, res, err, dryRun)
}

func printDiffs(w io.Writer, files []driver.FixedFile) error {
	for _, f := range files {
		diff, err := textdiff.Unified(f.Path, f.Original, f.Fixed)
		if err != nil {
			return fmt.Errorf("diff %s: %w", f.Path, err)
		}
		if _, err := io.WriteString(w, diff); err != nil {
			return err
		}
	}
	return nil
}

func handleFixResult(w io.Writer, res *driver.FixResult, applyErr error, dryRun bool) error {
	if len(res.Applied) > 0 {
		verb := "Applied"
		if dryRun {
			verb = "Would apply"
		}
		fmt.Fprintf(w, "%s %d fix(es) in %d pass(es):\n", verb, len(res.Applied), res.Passes)
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			fmt.Fprintf(w, "  %s [%s] %s (%d edits, %s)\n",
				item.Title, item.ID, location, item.EditCount, item.Applicability.String())
		}
	}

	if len(res.Files) > 0 {
		fmt.Fprintln(w, "Updated files:")
		for _, f := range res.Files {
			suffix := ""
			if !f.Written {
				suffix = " (not written)"
			}
			fmt.Fprintf(w, "  %s%s\n", f.Path, suffix)
		}
	}

	if len(res.Skipped) > 0 {
		fmt.Fprintln(w, "Skipped fixes:")
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			if skip.Title != "" {
				fmt.Fprintf(w, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				fmt.Fprintf(w, "  [%s]: %s\n", id, skip.Reason)
			}
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			fmt.Fprintln(w, "No applicable fixes found.")
			return nil
		}
		return applyErr
	}
	if n := res.Remaining.Len(); n > 0 {
		fmt.Fprintf(w, "%d diagnostic(s) remain.\n", n)
	}
	return nil
}
