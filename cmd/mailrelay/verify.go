package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVerifyCommand(rt *runtimeState) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the configured transport accepts connections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sender, closeSender, err := newSender(rt.cfg, rt.log)
			if err != nil {
				return err
			}
			defer func() { _ = closeSender(cmd.Context()) }()

			m, err := newMailer(rt.cfg, rt.log, sender, nil)
			if err != nil {
				return err
			}

			status, err := m.TestConnection(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", status.Status, status.Message)
			return nil
		},
	}
}
