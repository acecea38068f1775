package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"seasonmap/internal/logging"
	"seasonmap/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var runID string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the seasonmap log file",
		Long: `Print the last lines of the log file written under paths.log_dir.

With --follow the command keeps printing new lines until interrupted, which
is handy for watching a long batch run from another terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if cfg.Paths.LogDir == "" {
				return errors.New("paths.log_dir is empty; logs are only written to the console")
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.FileName)

			out := cmd.OutOrStdout()
			filter := strings.TrimSpace(runID)
			emit := func(line string) {
				if filter == "" || strings.Contains(line, filter) {
					fmt.Fprintln(out, line)
				}
			}

			tail, offset, err := logs.Last(path, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				emit(line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, 500*time.Millisecond, emit)
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().StringVar(&runID, "run", "", "Only show lines containing this run id")
	return cmd
}
