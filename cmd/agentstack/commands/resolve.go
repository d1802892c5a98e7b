package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// Resolve returns the resolve command, which prints the partitioned configuration with
// secrets redacted.
func Resolve(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Print the resolved orchestrator configuration",
		Long: `Resolve reads every entry of the configured project whose name starts with the
configured prefix, and prints the plain values and secret names as JSON.

Secret values are never printed.

Example:
  agentstack resolve -c agentstack.yml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context(), opts, false)
			if err != nil {
				return err
			}

			cfg, err := s.resolve(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
}
