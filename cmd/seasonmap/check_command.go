package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"seasonmap/internal/httpretry"
	"seasonmap/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check directories, credentials, and remote services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.newServices(httpretry.WithMaxAttempts(1))
			if err != nil {
				return err
			}
			checks := preflight.RunAll(cmd.Context(), svc.cfg, preflight.Services{
				TMDB:      svc.tmdb,
				AniList:   svc.anilist,
				Requester: svc.executor,
			})
			failed := preflight.Failed(checks)

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, checks); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(checks))
				for _, check := range checks {
					status := "ok"
					if !check.Passed {
						status = "FAIL"
					}
					rows = append(rows, []string{check.Name, status, check.Detail})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Check", "Status", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(checks))
			}
			return nil
		},
	}
}
