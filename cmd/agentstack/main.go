// Package main is the entry point for the agentstack CLI, which resolves the
// orchestrator configuration and provisions the agent control plane.
package main

import (
	"fmt"
	"os"

	"github.com/GlintPay/agentstack/cmd/agentstack/commands"
)

func main() {
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
