package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"seasonmap/internal/config"
	"seasonmap/internal/input"
	"seasonmap/internal/logging"
	"seasonmap/internal/mapper"
	"seasonmap/internal/notifications"
	"seasonmap/internal/preflight"
	"seasonmap/internal/results"
)

const notifyTimeout = 15 * time.Second

type runOutput struct {
	RunID       string `json:"run_id"`
	OutputFile  string `json:"output_file"`
	Pending     int    `json:"pending"`
	Attempted   int    `json:"attempted"`
	Resumed     int    `json:"resumed"`
	Matched     int    `json:"matched"`
	Unresolved  int    `json:"unresolved"`
	NoMapping   int    `json:"no_mapping"`
	NoStartDate int    `json:"no_start_date"`
	Duplicates  int    `json:"duplicates"`
	Records     int    `json:"records"`
	Interrupted bool   `json:"interrupted"`
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var inputPath string
	var outputPath string
	var all bool
	var assumeYes bool
	var skipChecks bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Map a list of AniList IDs to TMDB seasons",
		Long: `Process AniList IDs one at a time and write match records to the output file.

IDs come from a newline-delimited input file, or with --all from every entry
in the anime-lists mapping dataset. Entries already present in the output file
are skipped, so an interrupted run continues where it stopped.

Examples:
  seasonmap run                       # Use the configured input file
  seasonmap run --input ids.txt       # Use a specific input file
  seasonmap run --all --yes           # Map the whole dataset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.newServices()
			if err != nil {
				return err
			}
			runCtx := cmd.Context()

			output := svc.cfg.Paths.OutputFile
			if strings.TrimSpace(outputPath) != "" {
				if output, err = config.ExpandPath(strings.TrimSpace(outputPath)); err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
			}
			if !skipChecks {
				checks := preflight.RunAll(runCtx, svc.cfg, preflight.Services{TMDB: svc.tmdb})
				if failed := preflight.Failed(checks); len(failed) > 0 {
					for _, check := range failed {
						logging.ErrorWithContext(svc.logger, "preflight check failed", "preflight_failed",
							logging.String("check", check.Name),
							logging.String("detail", check.Detail),
							logging.String(logging.FieldImpact, "run aborted before processing"))
					}
					return fmt.Errorf("preflight failed: %s: %s (use --skip-checks to bypass)", failed[0].Name, failed[0].Detail)
				}
			}

			store := results.NewStore(output, svc.logger)
			if err := store.Lock(); err != nil {
				if errors.Is(err, results.ErrLocked) {
					return fmt.Errorf("another seasonmap run is writing %s", output)
				}
				return err
			}
			defer store.Unlock()

			var items []mapper.Item
			if all {
				items, err = datasetItems(runCtx, svc)
				if err != nil {
					return err
				}
				if !assumeYes {
					if err := confirmBatch(cmd.InOrStdin(), cmd.OutOrStdout(), len(items)); err != nil {
						return err
					}
				}
			} else {
				path := svc.cfg.Paths.InputFile
				if strings.TrimSpace(inputPath) != "" {
					if path, err = config.ExpandPath(strings.TrimSpace(inputPath)); err != nil {
						return fmt.Errorf("resolve input path: %w", err)
					}
				}
				ids, err := input.LoadIDs(path, svc.logger)
				if err != nil {
					return err
				}
				items = make([]mapper.Item, 0, len(ids))
				for _, id := range ids {
					items = append(items, mapper.Item{AniListID: id})
				}
			}

			started := time.Now()
			prior := store.Load()
			runner := mapper.NewRunner(svc.mapper, svc.cfg.ItemDelay(), svc.logger,
				mapper.WithCheckpoint(store.Save))
			records, summary := runner.Run(runCtx, items, prior)

			// Notifications still go out after an interrupt, so they get
			// their own context.
			notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(runCtx), notifyTimeout)
			defer cancel()

			if err := store.Save(records); err != nil {
				logging.ErrorWithContext(svc.logger, "failed to save results", "results_save_failed",
					logging.Error(err),
					logging.String("path", output),
					logging.String(logging.FieldErrorHint, "check permissions on the output directory"))
				notify(svc, svc.notifier.NotifyError(notifyCtx, err, "saving results"))
				return err
			}
			if summary.Pending > 0 {
				notify(svc, svc.notifier.NotifyRunFinished(notifyCtx, notifications.RunStats{
					RunID:       summary.RunID,
					Attempted:   summary.Attempted,
					Pending:     summary.Pending,
					Matched:     summary.Matched,
					Unresolved:  summary.Unresolved,
					Skipped:     summary.NoMapping + summary.NoStartDate,
					Interrupted: summary.Interrupted,
					Duration:    time.Since(started),
				}))
			}

			report := runOutput{
				RunID:       summary.RunID,
				OutputFile:  output,
				Pending:     summary.Pending,
				Attempted:   summary.Attempted,
				Resumed:     summary.Resumed,
				Matched:     summary.Matched,
				Unresolved:  summary.Unresolved,
				NoMapping:   summary.NoMapping,
				NoStartDate: summary.NoStartDate,
				Duplicates:  summary.Duplicates,
				Records:     len(records),
				Interrupted: summary.Interrupted,
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, report)
			}
			printRunReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Newline-delimited AniList IDs (defaults to paths.input_file)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Results file (defaults to paths.output_file)")
	cmd.Flags().BoolVar(&all, "all", false, "Process every entry in the mapping dataset")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt for --all")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip the output directory and TMDB credential checks")
	cmd.MarkFlagsMutuallyExclusive("input", "all")
	return cmd
}

func datasetItems(ctx context.Context, svc *services) ([]mapper.Item, error) {
	index := svc.shows.Load(ctx)
	if index.Len() == 0 {
		return nil, errors.New("mapping dataset is unavailable or empty")
	}
	entries := index.Entries()
	items := make([]mapper.Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, mapper.Item{AniListID: entry.AniListID, TMDBShowID: entry.TMDBShowID})
	}
	svc.logger.Info("loaded mapping dataset", logging.Int("entries", len(items)))
	return items, nil
}

func confirmBatch(in io.Reader, out io.Writer, count int) error {
	if file, ok := in.(*os.File); !ok || !isatty.IsTerminal(file.Fd()) {
		return errors.New("--all without --yes needs an interactive terminal")
	}
	fmt.Fprintf(out, "Process all %d dataset entries? This can take many hours. [y/N] ", count)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return errors.New("aborted")
	}
}

func notify(svc *services, err error) {
	if err == nil {
		return
	}
	logging.WarnWithContext(svc.logger, "notification failed", "notification_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"))
}

func printRunReport(out io.Writer, report runOutput) {
	if report.Interrupted {
		fmt.Fprintln(out, "Run interrupted; partial results were kept")
	}
	if report.Pending == 0 {
		fmt.Fprintf(out, "Nothing to do: %d entries already in %s\n", report.Resumed, report.OutputFile)
		return
	}
	fmt.Fprintf(out, "Processed %d of %d pending entries (%d skipped from earlier runs)\n",
		report.Attempted, report.Pending, report.Resumed)
	if report.Duplicates > 0 {
		fmt.Fprintf(out, "Ignored %d repeated IDs in the input\n", report.Duplicates)
	}
	fmt.Fprintf(out, "Matched: %d  Unresolved: %d  No mapping: %d  No start date: %d\n",
		report.Matched, report.Unresolved, report.NoMapping, report.NoStartDate)
	if report.Records == 0 {
		fmt.Fprintln(out, "No results to save")
		return
	}
	fmt.Fprintf(out, "Saved %d records to %s\n", report.Records, report.OutputFile)
}
