package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"seasonmap/internal/mapper"
	"seasonmap/internal/results"
)

func newMapCommand(ctx *commandContext) *cobra.Command {
	var showID int64

	cmd := &cobra.Command{
		Use:   "map <anilist-id>",
		Short: "Look up the TMDB season for one AniList ID",
		Long: `Resolve a single AniList ID without touching the results file.

The TMDB show is looked up in the anime-lists dataset unless --tmdb-id is
given. The record is printed as it would be written by 'seasonmap run'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid anilist id %q", args[0])
			}
			if showID < 0 {
				return fmt.Errorf("invalid tmdb id %d", showID)
			}

			svc, err := ctx.newServices()
			if err != nil {
				return err
			}
			record, err := svc.mapper.ProcessItem(cmd.Context(), mapper.Item{AniListID: id, TMDBShowID: showID})
			switch {
			case errors.Is(err, mapper.ErrNoMapping):
				return fmt.Errorf("anilist %d has no tmdb show mapping; pass --tmdb-id to supply one", id)
			case errors.Is(err, mapper.ErrNoStartDate):
				return fmt.Errorf("anilist %d has no complete start date", id)
			case err != nil:
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, record)
			}
			printRecord(cmd.OutOrStdout(), *record)
			return nil
		},
	}

	cmd.Flags().Int64Var(&showID, "tmdb-id", 0, "TMDB show ID to use instead of the mapping dataset")
	return cmd
}

func printRecord(out io.Writer, record results.Record) {
	fmt.Fprintf(out, "AniList ID:   %d\n", record.AniListID)
	fmt.Fprintf(out, "Title:        %s\n", valueOrDash(record.Title))
	fmt.Fprintf(out, "TMDB show:    %d\n", record.TMDBShowID)
	if !record.Matched() {
		fmt.Fprintln(out, "Season:       no season within tolerance")
		return
	}
	fmt.Fprintf(out, "Season:       %d (id %d)\n", *record.TMDBSeasonNumber, *record.TMDBSeasonID)
	fmt.Fprintf(out, "Air date:     %s\n", valueOrDash(record.MatchedDate))
	fmt.Fprintf(out, "Days apart:   %d\n", *record.DateDifferenceDays)
}

func valueOrDash(value *string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "-"
	}
	return *value
}
