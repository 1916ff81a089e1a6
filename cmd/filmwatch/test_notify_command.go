package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"filmwatch/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify <chat-id>",
		Short: "Send a test notification to a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid chat id %q", args[0])
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Telegram.Token == "" {
				return fmt.Errorf("telegram token is not configured")
			}

			service := notifications.NewService(cfg)
			if err := service.Test(cmd.Context(), chatID); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
