// Package commands defines the agentstack command tree.
package commands

import (
	"os"

	"github.com/GlintPay/agentstack/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath string
}

// Root returns the root command for the agentstack CLI.
func Root() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "agentstack",
		Short:         "Resolve configuration and provision the agent control plane",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// .env is optional
			_ = godotenv.Load()
			logging.Setup(os.Stderr)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to configuration file (defaults to $APP_CONFIG_FILE_YML_PATH or agentstack.yml)")

	cmd.AddCommand(Resolve(opts))
	cmd.AddCommand(Render(opts))
	cmd.AddCommand(Apply(opts))
	cmd.AddCommand(Destroy(opts))

	return cmd
}
