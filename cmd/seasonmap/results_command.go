package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"seasonmap/internal/config"
	"seasonmap/internal/results"
)

func newResultsCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var unmatchedOnly bool

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show saved mapping records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			path := cfg.Paths.OutputFile
			if strings.TrimSpace(outputPath) != "" {
				if path, err = config.ExpandPath(strings.TrimSpace(outputPath)); err != nil {
					return fmt.Errorf("resolve results path: %w", err)
				}
			}

			records := results.NewStore(path, logger).Load()
			if unmatchedOnly {
				filtered := records[:0]
				for _, record := range records {
					if !record.Matched() {
						filtered = append(filtered, record)
					}
				}
				records = filtered
			}

			if ctx.jsonOutput() {
				if records == nil {
					records = []results.Record{}
				}
				return writeJSON(cmd, records)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "No results in %s\n", path)
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"AniList", "Title", "TMDB Show", "Season", "Air Date", "Days"},
				recordRows(records),
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft, alignRight},
			))
			matched := 0
			for _, record := range records {
				if record.Matched() {
					matched++
				}
			}
			fmt.Fprintf(out, "%d records, %d matched\n", len(records), matched)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Results file (defaults to paths.output_file)")
	cmd.Flags().BoolVar(&unmatchedOnly, "unmatched", false, "Only show records without a season")
	return cmd
}

func recordRows(records []results.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		season, days := "-", "-"
		if record.Matched() {
			season = strconv.Itoa(*record.TMDBSeasonNumber)
			days = strconv.Itoa(*record.DateDifferenceDays)
		}
		rows = append(rows, []string{
			strconv.FormatInt(record.AniListID, 10),
			valueOrDash(record.Title),
			strconv.FormatInt(record.TMDBShowID, 10),
			season,
			valueOrDash(record.MatchedDate),
			days,
		})
	}
	return rows
}
