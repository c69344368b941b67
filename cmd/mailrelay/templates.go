package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/mailrelay/pkg/mailer"
)

func newTemplatesCommand(_ *runtimeState) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the built-in email templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := mailer.NewTemplateStore()
			if err != nil {
				return err
			}
			writer := cmd.OutOrStdout()

			switch outputFormat {
			case "json":
				encoder := json.NewEncoder(writer)
				encoder.SetIndent("", "  ")
				return encoder.Encode(store.Available())
			case "yaml":
				data, err := yaml.Marshal(store.Available())
				if err != nil {
					return fmt.Errorf("failed to marshal to YAML: %w", err)
				}
				_, _ = fmt.Fprint(writer, string(data))
				return nil
			case "", "table":
				tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "ID\tDESCRIPTION")
				available := store.Available()
				for _, id := range store.IDs() {
					_, _ = fmt.Fprintf(tw, "%s\t%s\n", id, available[id])
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unknown output format %q", outputFormat)
			}
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "", "Output format: table, json, yaml")

	return cmd
}
