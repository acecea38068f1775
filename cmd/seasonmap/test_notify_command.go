package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"seasonmap/internal/httpretry"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.newServices(httpretry.WithMaxAttempts(1))
			if err != nil {
				return err
			}
			if strings.TrimSpace(svc.cfg.Notifications.NtfyTopic) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Notifications disabled; set notifications.ntfy_topic")
				return nil
			}
			if err := svc.notifier.TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
