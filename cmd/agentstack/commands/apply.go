package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Apply returns the apply command. Secrets are revealed here and in
// `render --reveal-secrets` only.
func Apply(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Provision the stack on the cluster",
		Long: `Apply creates the namespaces, RBAC, cleanup CronJob, configuration and
orchestrator Deployment and Service, updating any that already exist.

Example:
  agentstack apply -c agentstack.yml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context(), opts, true)
			if err != nil {
				return err
			}

			stack, err := s.plan(cmd.Context())
			if err != nil {
				return err
			}

			if err = s.provisioner().Apply(cmd.Context(), stack); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Orchestrator available at %s\n", stack.InternalURL())
			return err
		},
	}
}
