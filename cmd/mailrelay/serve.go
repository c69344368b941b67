package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailrelay/internal"
	"github.com/dmitrymomot/mailrelay/pkg/logger"
)

func newServeCommand(rt *runtimeState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sender, closeSender, err := newSender(rt.cfg, rt.log)
			if err != nil {
				return err
			}

			app, err := newApp(rt.cfg, rt.log, sender)
			if err != nil {
				return err
			}

			rt.log.Info("mail relay configured",
				slog.String("provider", rt.cfg.Provider),
				slog.Bool("metrics", rt.cfg.MetricsEnabled),
			)

			return app.Run(rt.cfg.HTTPAddr,
				internal.WithContext(cmd.Context()),
				internal.Logger(rt.log),
				internal.ShutdownTimeout(rt.cfg.ShutdownTimeout),
				internal.ShutdownHook(closeSender),
				internal.ShutdownHook(logger.Flush),
			)
		},
	}
}
