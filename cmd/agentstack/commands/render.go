package commands

import (
	"github.com/GlintPay/agentstack/topology"
	"github.com/spf13/cobra"
)

// Render returns the render command, which prints the manifests of the stack.
func Render(opts *globalOptions) *cobra.Command {
	var revealSecrets bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the Kubernetes manifests of the stack",
		Long: `Render resolves the configuration and prints every resource of the stack as
multi-document YAML, in the order it would be applied.

Secret values are redacted unless --reveal-secrets is given.

Example:
  agentstack render -c agentstack.yml > stack.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context(), opts, false)
			if err != nil {
				return err
			}

			stack, err := s.plan(cmd.Context())
			if err != nil {
				return err
			}

			if !revealSecrets {
				return stack.Render(cmd.OutOrStdout())
			}

			resources, err := stack.Materialize(cmd.Context())
			if err != nil {
				return err
			}
			return topology.Render(cmd.OutOrStdout(), resources)
		},
	}

	cmd.Flags().BoolVar(&revealSecrets, "reveal-secrets", false, "Include secret values in the output")

	return cmd
}
