package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailrelay/internal/config"
	"github.com/dmitrymomot/mailrelay/middlewares"
	"github.com/dmitrymomot/mailrelay/pkg/logger"
)

type runtimeState struct {
	envFiles []string
	cfg      config.Config
	log      *slog.Logger
}

func newRootCommand(out io.Writer) *cobra.Command {
	rt := &runtimeState{}

	root := &cobra.Command{
		Use:          "mailrelay",
		Short:        "HTTP relay for transactional email",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "templates" {
				return nil
			}
			cfg, err := config.Load(rt.envFiles...)
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.log = logger.New(cfg.Logger, middlewares.RequestIDExtractor()).
				With(slog.String("component", "mailrelay"))
			return nil
		},
	}

	root.PersistentFlags().StringSliceVar(&rt.envFiles, "env-file", nil, "Dotenv files to load before reading the environment")
	root.SetOut(out)

	root.AddCommand(
		newServeCommand(rt),
		newVerifyCommand(rt),
		newTemplatesCommand(rt),
	)
	return root
}
