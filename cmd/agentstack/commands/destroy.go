package commands

import (
	"github.com/spf13/cobra"
)

// Destroy returns the destroy command.
func Destroy(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "destroy",
		Short: "Delete every resource of the stack",
		Long: `Destroy deletes the stack in reverse dependency order. Resources that are
already gone are skipped.

Example:
  agentstack destroy -c agentstack.yml

WARNING: deleting the namespaces also deletes any running agent pods.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context(), opts, true)
			if err != nil {
				return err
			}

			stack, err := s.plan(cmd.Context())
			if err != nil {
				return err
			}

			return s.provisioner().Destroy(cmd.Context(), stack)
		},
	}
}
